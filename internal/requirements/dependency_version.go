package requirements

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// Comparator selects how a discovered version is validated against the
// required version.
type Comparator string

const (
	CompareEQ  Comparator = "eq"
	CompareGEQ Comparator = "geq"
	CompareGT  Comparator = "gt"
	CompareLEQ Comparator = "leq"
	CompareLT  Comparator = "lt"
)

func (c Comparator) valid() bool {
	switch c {
	case CompareEQ, CompareGEQ, CompareGT, CompareLEQ, CompareLT:
		return true
	}
	return false
}

func (c Comparator) symbol() string {
	switch c {
	case CompareEQ:
		return "=="
	case CompareGEQ:
		return ">="
	case CompareGT:
		return ">"
	case CompareLEQ:
		return "<="
	case CompareLT:
		return "<"
	}
	return string(c)
}

func (c Comparator) holds(cmp int) bool {
	switch c {
	case CompareEQ:
		return cmp == 0
	case CompareGEQ:
		return cmp >= 0
	case CompareGT:
		return cmp > 0
	case CompareLEQ:
		return cmp <= 0
	case CompareLT:
		return cmp < 0
	}
	return false
}

// versionTokenPattern extracts the first X.Y(.Z) token from version output.
var versionTokenPattern = regexp.MustCompile(`(?:^|\s)v?(\d+(?:\.\d+){0,2})`)

const defaultVersionTimeout = 5 * time.Second

// DependencyVersionArgs holds the arguments for creating a dependency version
// requirement.
type DependencyVersionArgs struct {
	Name     string
	Optional bool
	// Command is the argv used to query a version, e.g. ["python3", "--version"].
	Command []string `mapstructure:"command"`
	// RequiredVersion is the version to compare against, e.g. "3.10.0".
	RequiredVersion string `mapstructure:"required_version"`
	// Compare is the comparison operator; defaults to geq.
	Compare Comparator `mapstructure:"compare"`
	// VersionRegex optionally overrides version extraction; it must contain a
	// capturing group holding the version token.
	VersionRegex string `mapstructure:"version_regex"`
	// TimeoutSeconds bounds the version command; defaults to 5.
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
}

// DependencyVersion checks that an executable exists on PATH and reports a
// version satisfying the declared constraint.
type DependencyVersion struct {
	base
	command  []string
	required *semver.Version
	compare  Comparator
	pattern  *regexp.Regexp
	timeout  time.Duration
}

// NewDependencyVersion validates args and returns the requirement.
// Construction errors are configuration errors and surface immediately.
func NewDependencyVersion(args DependencyVersionArgs) (*DependencyVersion, error) {
	if len(args.Command) == 0 {
		return nil, fmt.Errorf("%s: command must be non-empty", args.Name)
	}
	required, err := semver.NewVersion(args.RequiredVersion)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid required_version %q: %w", args.Name, args.RequiredVersion, err)
	}

	cmpOp := args.Compare
	if cmpOp == "" {
		cmpOp = CompareGEQ
	}
	if !cmpOp.valid() {
		return nil, fmt.Errorf("%s: invalid compare %q (want one of eq, geq, gt, leq, lt)", args.Name, args.Compare)
	}

	pattern := versionTokenPattern
	if args.VersionRegex != "" {
		pattern, err = regexp.Compile("(?i)" + args.VersionRegex)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid version_regex: %w", args.Name, err)
		}
		if pattern.NumSubexp() < 1 {
			return nil, fmt.Errorf("%s: version_regex must contain a capturing group", args.Name)
		}
	}

	timeout := defaultVersionTimeout
	if args.TimeoutSeconds > 0 {
		timeout = time.Duration(args.TimeoutSeconds * float64(time.Second))
	}

	return &DependencyVersion{
		base:     base{name: args.Name, optional: args.Optional},
		command:  args.Command,
		required: required,
		compare:  cmpOp,
		pattern:  pattern,
		timeout:  timeout,
	}, nil
}

func (d *DependencyVersion) Check(ctx context.Context) models.CheckResult {
	return measured(func() models.CheckResult {
		executable := d.command[0]
		resolved, err := exec.LookPath(executable)
		if err != nil {
			return models.Failf("not found on PATH: %q", executable)
		}

		argv := append([]string{resolved}, d.command[1:]...)
		res := runCommand(ctx, commandSpec{Argv: argv, Timeout: d.timeout})
		if !res.Passed {
			return res
		}

		combined := strings.TrimSpace(res.Stdout + "\n" + res.Stderr)

		match := d.pattern.FindStringSubmatch(combined)
		if match == nil {
			out := models.Failf("could not parse version from output")
			out.Stdout = res.Stdout
			out.Stderr = res.Stderr
			out.ExitCode = res.ExitCode
			return out
		}
		found, err := semver.NewVersion(match[1])
		if err != nil {
			out := models.Failf("could not parse version from output: %q", match[1])
			out.Stdout = res.Stdout
			out.Stderr = res.Stderr
			out.ExitCode = res.ExitCode
			return out
		}

		if !d.compare.holds(found.Compare(d.required)) {
			out := models.Failf("version %s does not satisfy %s %s", found, d.compare.symbol(), d.required)
			out.Stdout = res.Stdout
			out.Stderr = res.Stderr
			out.ExitCode = res.ExitCode
			return out
		}

		return res
	})
}
