package requirements

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

const defaultArtifactTimeout = 5 * time.Second

// ArtifactArgs holds the arguments for creating a benchmark artifact
// requirement.
type ArtifactArgs struct {
	Name     string
	Optional bool
	// Path, when set, must exist; it also selects the working directory for
	// the verification command (the path itself if a directory, its parent
	// otherwise).
	Path string `mapstructure:"path"`
	// Command is an optional verification argv.
	Command []string `mapstructure:"command"`
	// Signature is a literal substring that must appear in the command's raw
	// stdout or stderr.
	Signature string `mapstructure:"signature"`
	// TimeoutSeconds bounds the command; defaults to 5.
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
	// Env overrides environment variables for the subprocess.
	Env map[string]string `mapstructure:"env"`
}

// Artifact validates a benchmark prerequisite: a path that must exist, an
// optional verification command, and an optional output signature. The path
// check fails fast with a distinct reason before any command runs.
type Artifact struct {
	base
	path      string
	command   []string
	signature string
	timeout   time.Duration
	env       map[string]string
}

// NewArtifact validates args and returns the requirement.
func NewArtifact(args ArtifactArgs) (*Artifact, error) {
	if args.Path == "" && len(args.Command) == 0 {
		return nil, fmt.Errorf("%s: must specify at least one of path or command", args.Name)
	}
	for i, arg := range args.Command {
		if arg == "" {
			return nil, fmt.Errorf("%s: command argv entry %d is empty", args.Name, i)
		}
	}
	if args.Signature != "" && len(args.Command) == 0 {
		return nil, fmt.Errorf("%s: signature requires a command", args.Name)
	}

	timeout := defaultArtifactTimeout
	if args.TimeoutSeconds > 0 {
		timeout = time.Duration(args.TimeoutSeconds * float64(time.Second))
	}

	return &Artifact{
		base:      base{name: args.Name, optional: args.Optional},
		path:      args.Path,
		command:   args.Command,
		signature: args.Signature,
		timeout:   timeout,
		env:       args.Env,
	}, nil
}

func (a *Artifact) Check(ctx context.Context) models.CheckResult {
	return measured(func() models.CheckResult {
		var dir string
		if a.path != "" {
			info, err := os.Stat(a.path)
			if err != nil {
				return models.Failf("path missing: %s", a.path)
			}
			if info.IsDir() {
				dir = a.path
			} else {
				dir = filepath.Dir(a.path)
			}
		}

		// No command means this is a pure path check.
		if len(a.command) == 0 {
			res := models.Pass()
			res.Dir = dir
			return res
		}

		return runCommand(ctx, commandSpec{
			Argv:      a.command,
			Dir:       dir,
			Timeout:   a.timeout,
			Env:       a.env,
			Signature: a.signature,
		})
	})
}
