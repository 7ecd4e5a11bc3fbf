package requirements

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// EnvQuantifier is the matching mode for validating environment variable values.
type EnvQuantifier string

const (
	// EnvExact requires the whole value to equal the expectation.
	EnvExact EnvQuantifier = "exact"
	// EnvContains requires one entry of a path-list value to equal the
	// expectation, after per-entry normalization.
	EnvContains EnvQuantifier = "contains"
	// EnvRegex requires one entry of a path-list value to match the pattern.
	EnvRegex EnvQuantifier = "regex"
)

func (q EnvQuantifier) valid() bool {
	switch q {
	case EnvExact, EnvContains, EnvRegex:
		return true
	}
	return false
}

// EnvVarArgs holds the arguments for creating an environment variable requirement.
type EnvVarArgs struct {
	Name     string
	Optional bool
	Var      string        `mapstructure:"var"`
	Expected string        `mapstructure:"expected"`
	Match    EnvQuantifier `mapstructure:"match"`
}

// EnvVar validates an environment variable using exact, contains, or regex
// semantics.
type EnvVar struct {
	base
	envVar   string
	expected string
	match    EnvQuantifier
	pattern  *regexp.Regexp
}

// NewEnvVar validates args and returns the requirement.
func NewEnvVar(args EnvVarArgs) (*EnvVar, error) {
	if args.Var == "" {
		return nil, fmt.Errorf("%s: var must be non-empty", args.Name)
	}
	match := args.Match
	if match == "" {
		match = EnvExact
	}
	if !match.valid() {
		return nil, fmt.Errorf("%s: invalid match %q (want exact, contains, or regex)", args.Name, args.Match)
	}
	if (match == EnvContains || match == EnvRegex) && args.Expected == "" {
		return nil, fmt.Errorf("%s: expected must be non-empty for %s matching", args.Name, match)
	}

	var pattern *regexp.Regexp
	if match == EnvRegex {
		var err error
		pattern, err = regexp.Compile(args.Expected)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid regex: %w", args.Name, err)
		}
	}

	return &EnvVar{
		base:     base{name: args.Name, optional: args.Optional},
		envVar:   args.Var,
		expected: args.Expected,
		match:    match,
		pattern:  pattern,
	}, nil
}

func (e *EnvVar) Check(ctx context.Context) models.CheckResult {
	return measured(func() models.CheckResult {
		actual, ok := os.LookupEnv(e.envVar)
		if !ok {
			return models.Failf("%s not set", e.envVar)
		}

		switch e.match {
		case EnvExact:
			if actual == e.expected {
				return models.Pass()
			}
			return models.Failf("%s: expected %q, got %q", e.envVar, e.expected, actual)

		case EnvContains:
			want := normalizePathEntry(e.expected)
			for _, entry := range splitPathList(actual) {
				if normalizePathEntry(entry) == want {
					return models.Pass()
				}
			}
			return models.Failf("%s: missing entry %q", e.envVar, e.expected)

		default: // EnvRegex
			for _, entry := range splitPathList(actual) {
				if e.pattern.MatchString(entry) {
					return models.Pass()
				}
			}
			return models.Failf("%s: no entry matches regex %q", e.envVar, e.expected)
		}
	})
}

func splitPathList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, string(os.PathListSeparator)) {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizePathEntry(entry string) string {
	return filepath.Clean(strings.TrimSpace(entry))
}
