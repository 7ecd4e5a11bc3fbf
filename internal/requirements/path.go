package requirements

import (
	"context"
	"fmt"
	"os"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// PathType is the required filesystem object type for a path check.
type PathType string

const (
	PathAny       PathType = "any"
	PathFile      PathType = "file"
	PathDirectory PathType = "directory"
)

func (t PathType) valid() bool {
	switch t {
	case PathAny, PathFile, PathDirectory:
		return true
	}
	return false
}

// PathArgs holds the arguments for creating a filesystem path requirement.
type PathArgs struct {
	Name     string
	Optional bool
	Path     string   `mapstructure:"path"`
	Type     PathType `mapstructure:"type"`
}

// Path checks that a filesystem path exists and optionally enforces its type.
type Path struct {
	base
	path     string
	pathType PathType
}

// NewPath validates args and returns the requirement.
func NewPath(args PathArgs) (*Path, error) {
	if args.Path == "" {
		return nil, fmt.Errorf("%s: path must be non-empty", args.Name)
	}
	pathType := args.Type
	if pathType == "" {
		pathType = PathAny
	}
	if !pathType.valid() {
		return nil, fmt.Errorf("%s: invalid path type %q (want any, file, or directory)", args.Name, args.Type)
	}
	return &Path{
		base:     base{name: args.Name, optional: args.Optional},
		path:     args.Path,
		pathType: pathType,
	}, nil
}

func (p *Path) Check(ctx context.Context) models.CheckResult {
	return measured(func() models.CheckResult {
		info, err := os.Stat(p.path)
		if err != nil {
			switch p.pathType {
			case PathFile:
				return models.Failf("file missing: %s", p.path)
			case PathDirectory:
				return models.Failf("directory missing: %s", p.path)
			default:
				return models.Failf("path missing: %s", p.path)
			}
		}

		switch p.pathType {
		case PathFile:
			if info.IsDir() {
				return models.Failf("expected file: %s", p.path)
			}
		case PathDirectory:
			if !info.IsDir() {
				return models.Failf("expected directory: %s", p.path)
			}
		}
		return models.Pass()
	})
}

// FileSizeArgs holds the arguments for creating a file size requirement.
type FileSizeArgs struct {
	Name     string
	Optional bool
	Path     string `mapstructure:"path"`
	// SizeInBytes is the exact expected file size.
	SizeInBytes int64 `mapstructure:"size_in_bytes"`
}

// FileSize checks that a file exists with an exact size in bytes. Used for
// dataset manifest entries, where size is a cheap integrity proxy.
type FileSize struct {
	base
	path string
	size int64
}

// NewFileSize validates args and returns the requirement.
func NewFileSize(args FileSizeArgs) (*FileSize, error) {
	if args.Path == "" {
		return nil, fmt.Errorf("%s: path must be non-empty", args.Name)
	}
	if args.SizeInBytes < 0 {
		return nil, fmt.Errorf("%s: size_in_bytes must be >= 0, got %d", args.Name, args.SizeInBytes)
	}
	return &FileSize{
		base: base{name: args.Name, optional: args.Optional},
		path: args.Path,
		size: args.SizeInBytes,
	}, nil
}

func (f *FileSize) Check(ctx context.Context) models.CheckResult {
	return measured(func() models.CheckResult {
		info, err := os.Stat(f.path)
		if err != nil {
			return models.Failf("path missing: %s", f.path)
		}
		if info.IsDir() {
			return models.Failf("expected file: %s", f.path)
		}
		if info.Size() != f.size {
			return models.Failf("size mismatch for %s: got %d bytes, want %d", f.path, info.Size(), f.size)
		}
		return models.Pass()
	})
}
