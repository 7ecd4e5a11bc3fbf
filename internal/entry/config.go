// Package entry provides the Config struct and loader for declarative
// evaluation entry bundles (entry.yaml files).
package entry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
	"gopkg.in/yaml.v3"
)

// Default values for entry configuration. These are the single source of
// truth; Load() references them and no other code should duplicate them.
const (
	DefaultSimilarityRatio = 0.75

	// HomeDirEnvVar overrides home_dir when set, so the same entry bundle
	// can run against different workspace checkouts.
	HomeDirEnvVar = "ARTEVAL_HOME"
)

// RequirementSpec is one declarative requirement inside a stage list. Params
// are decoded by the requirement factory according to Type.
type RequirementSpec struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Optional bool           `yaml:"optional,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
}

// Config is the top-level configuration loaded from an entry.yaml bundle.
// It is constructed once per run and never mutated afterwards.
type Config struct {
	Name             string                             `yaml:"name"`
	HomeDir          string                             `yaml:"home_dir,omitempty"`
	SimilarityRatio  float64                            `yaml:"similarity_ratio,omitempty"`
	RepositoryPaths  map[string]string                  `yaml:"repository_paths,omitempty"`
	ResultsPaths     map[string]string                  `yaml:"results_paths,omitempty"`
	GroundTruthPaths map[string]string                  `yaml:"ground_truth_paths,omitempty"`
	Stages           map[models.Stage][]RequirementSpec `yaml:"stages,omitempty"`

	// entryDir is the directory holding the entry file. Ground-truth paths
	// resolve against it, so reference data can live next to the bundle.
	entryDir string
}

// Load reads and validates an entry bundle. Relative home_dir resolves
// against the entry file's directory; the ARTEVAL_HOME environment variable
// overrides home_dir entirely when set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entry file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving entry path %q: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Dir(absPath))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals and validates entry YAML. entryDir anchors relative
// home_dir and ground-truth paths.
func Parse(data []byte, entryDir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.entryDir = entryDir

	if cfg.Name == "" {
		return nil, fmt.Errorf("entry name is required")
	}

	if env := os.Getenv(HomeDirEnvVar); env != "" {
		cfg.HomeDir = env
	}
	if cfg.HomeDir == "" {
		cfg.HomeDir = entryDir
	}
	if !filepath.IsAbs(cfg.HomeDir) {
		cfg.HomeDir = filepath.Join(entryDir, cfg.HomeDir)
	}

	if cfg.SimilarityRatio == 0 {
		cfg.SimilarityRatio = DefaultSimilarityRatio
	}
	if cfg.SimilarityRatio < 0 || cfg.SimilarityRatio > 1 {
		return nil, fmt.Errorf("similarity_ratio must be in [0, 1], got %v", cfg.SimilarityRatio)
	}

	for stage, specs := range cfg.Stages {
		if !stage.Valid() {
			return nil, fmt.Errorf("unknown stage %q", stage)
		}
		seen := map[string]bool{}
		for i, spec := range specs {
			if spec.Name == "" {
				return nil, fmt.Errorf("stage %s: requirement %d has no name", stage, i)
			}
			if spec.Type == "" {
				return nil, fmt.Errorf("stage %s: requirement %q has no type", stage, spec.Name)
			}
			if seen[spec.Name] {
				return nil, fmt.Errorf("stage %s: duplicate requirement name %q", stage, spec.Name)
			}
			seen[spec.Name] = true
		}
	}

	return &cfg, nil
}

// EntryDir returns the directory containing the entry file.
func (c *Config) EntryDir() string {
	return c.entryDir
}

// RepositoryPath resolves a named repository root against home_dir.
func (c *Config) RepositoryPath(key string) (string, error) {
	return c.resolve(c.RepositoryPaths, "repository_paths", key, c.HomeDir)
}

// ResultsPath resolves a named result output path against home_dir.
func (c *Config) ResultsPath(key string) (string, error) {
	return c.resolve(c.ResultsPaths, "results_paths", key, c.HomeDir)
}

// GroundTruthPath resolves a named ground-truth path against the entry
// file's directory.
func (c *Config) GroundTruthPath(key string) (string, error) {
	return c.resolve(c.GroundTruthPaths, "ground_truth_paths", key, c.entryDir)
}

// StageSpecs returns the requirement specs declared for a stage. A stage with
// no declared requirements gets an empty (vacuously passing) list.
func (c *Config) StageSpecs(stage models.Stage) []RequirementSpec {
	return c.Stages[stage]
}

func (c *Config) resolve(paths map[string]string, field, key, base string) (string, error) {
	p, ok := paths[key]
	if !ok {
		return "", fmt.Errorf("missing %s[%q]", field, key)
	}
	if p == "" {
		return "", fmt.Errorf("empty %s[%q]", field, key)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Join(base, p), nil
}
