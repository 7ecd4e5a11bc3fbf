package requirements

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

const defaultCommandTimeout = 60 * time.Second

// CommandArgs holds the arguments for creating a build/command requirement.
type CommandArgs struct {
	Name     string
	Optional bool
	// Command is the argv to execute.
	Command []string `mapstructure:"command"`
	// Dir is the base working directory; it must exist.
	Dir string `mapstructure:"dir"`
	// RelativeWorkdir optionally selects a subdirectory of Dir as the actual
	// working directory. It must stay within Dir.
	RelativeWorkdir string `mapstructure:"relative_workdir"`
	// TimeoutSeconds bounds the command; defaults to 60.
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
	// ExpectedExit is the exit code that counts as success; defaults to 0.
	ExpectedExit int `mapstructure:"expected_exit"`
	// Env overrides environment variables for the subprocess.
	Env map[string]string `mapstructure:"env"`
}

// Command runs a build or install command within a working directory and
// passes iff the process exits with the expected code within the timeout.
// stdout/stderr are captured for diagnostics regardless of outcome.
type Command struct {
	base
	command      []string
	dir          string
	relWorkdir   string
	timeout      time.Duration
	expectedExit int
	env          map[string]string
}

// NewCommand validates args and returns the requirement.
func NewCommand(args CommandArgs) (*Command, error) {
	if len(args.Command) == 0 {
		return nil, fmt.Errorf("%s: command must be non-empty", args.Name)
	}
	for i, arg := range args.Command {
		if arg == "" {
			return nil, fmt.Errorf("%s: command argv entry %d is empty", args.Name, i)
		}
	}
	if args.Dir == "" {
		return nil, fmt.Errorf("%s: dir must be non-empty", args.Name)
	}
	if args.RelativeWorkdir != "" && filepath.IsAbs(args.RelativeWorkdir) {
		return nil, fmt.Errorf("%s: relative_workdir must be a relative path, got %q", args.Name, args.RelativeWorkdir)
	}
	for k := range args.Env {
		if k == "" {
			return nil, fmt.Errorf("%s: env contains an empty variable name", args.Name)
		}
	}

	timeout := defaultCommandTimeout
	if args.TimeoutSeconds > 0 {
		timeout = time.Duration(args.TimeoutSeconds * float64(time.Second))
	}

	return &Command{
		base:         base{name: args.Name, optional: args.Optional},
		command:      args.Command,
		dir:          args.Dir,
		relWorkdir:   args.RelativeWorkdir,
		timeout:      timeout,
		expectedExit: args.ExpectedExit,
		env:          args.Env,
	}, nil
}

func (c *Command) Check(ctx context.Context) models.CheckResult {
	return measured(func() models.CheckResult {
		if msg := requireDirectory(c.dir, "working directory"); msg != "" {
			res := models.Failf("%s", msg)
			res.Dir = c.dir
			return res
		}

		workdir := c.dir
		if c.relWorkdir != "" {
			workdir = filepath.Join(c.dir, c.relWorkdir)
			if msg := requireDirectory(workdir, "working directory"); msg != "" {
				res := models.Failf("%s", msg)
				res.Dir = workdir
				return res
			}
			within, err := isWithinDir(c.dir, workdir)
			if err != nil {
				res := models.Failf("failed to resolve working directory: %v", err)
				res.Dir = workdir
				return res
			}
			if !within {
				res := models.Failf("working directory escapes base dir: base=%s workdir=%s", c.dir, workdir)
				res.Dir = workdir
				return res
			}
		}

		res := runCommand(ctx, commandSpec{
			Argv:    c.command,
			Dir:     workdir,
			Timeout: c.timeout,
			Env:     c.env,
		})

		// A nonzero expected exit turns that code into the success case.
		if c.expectedExit != 0 && res.ExitCode != nil {
			if *res.ExitCode == c.expectedExit {
				out := models.Pass()
				out.Dir = res.Dir
				out.Stdout = res.Stdout
				out.Stderr = res.Stderr
				out.ExitCode = res.ExitCode
				return out
			}
			if *res.ExitCode == 0 {
				out := models.Failf("command exited 0 but expected rc = %d: %s%s", c.expectedExit, displayCommand(c.command), dirSuffix(workdir))
				out.Dir = res.Dir
				out.Stdout = res.Stdout
				out.Stderr = res.Stderr
				out.ExitCode = res.ExitCode
				return out
			}
		}

		return res
	})
}

// requireDirectory returns an error message if path is not an existing
// directory, empty otherwise.
func requireDirectory(path, label string) string {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("%s missing: %s", label, path)
	}
	if !info.IsDir() {
		return fmt.Sprintf("%s is not a directory: %s", label, path)
	}
	return ""
}

// isWithinDir reports whether target is inside base after resolving symlinks.
// Both paths must exist.
func isWithinDir(base, target string) (bool, error) {
	baseReal, err := filepath.EvalSymlinks(base)
	if err != nil {
		return false, err
	}
	targetReal, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(baseReal, targetReal)
	if err != nil {
		return false, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return !filepath.IsAbs(rel), nil
}
