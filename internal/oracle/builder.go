package oracle

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/compare"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/entry"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/refdata"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/requirements"
)

// Requirement spec types accepted in entry bundles.
const (
	TypeDependencyVersion = "dependency_version"
	TypeCommand           = "command"
	TypePath              = "path"
	TypeFileSize          = "file_size"
	TypeEnvVar            = "env_var"
	TypeArtifact          = "artifact"
	TypeDatasetManifest   = "dataset_manifest"
	TypeComparison        = "experiment_comparison"
	TypeFail              = "fail"
)

// Comparison policy names accepted in experiment_comparison params.
const (
	PolicySimilarity = "similarity"
	PolicyTolerance  = "tolerance"
)

// Builder turns an entry bundle's declarative requirement specs into
// executable requirements, resolving logical path keys against the bundle's
// directory layout.
type Builder struct {
	cfg *entry.Config
}

// NewBuilder returns a builder bound to a loaded entry bundle.
func NewBuilder(cfg *entry.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Oracle returns the oracle for a stage. Requirement construction happens
// inside the oracle's run so a bad spec surfaces as that stage's failure.
func (b *Builder) Oracle(stage models.Stage, log *slog.Logger) *Oracle {
	return New(stage, log, func() ([]requirements.Requirement, error) {
		return b.Stage(stage)
	})
}

// Stage builds the requirement list for one stage. A single spec may expand
// into several requirements (dataset manifests emit one per entry). A stage
// with no declared specs is vacuously empty and will pass.
func (b *Builder) Stage(stage models.Stage) ([]requirements.Requirement, error) {
	var reqs []requirements.Requirement
	for _, spec := range b.cfg.StageSpecs(stage) {
		built, err := b.build(spec)
		if err != nil {
			return nil, fmt.Errorf("requirement %q: %w", spec.Name, err)
		}
		reqs = append(reqs, built...)
	}
	return reqs, nil
}

func (b *Builder) build(spec entry.RequirementSpec) ([]requirements.Requirement, error) {
	switch spec.Type {
	case TypeDependencyVersion:
		var v struct {
			Command         []string `mapstructure:"command"`
			RequiredVersion string   `mapstructure:"required_version"`
			Compare         string   `mapstructure:"compare"`
			VersionRegex    string   `mapstructure:"version_regex"`
			TimeoutSeconds  float64  `mapstructure:"timeout_seconds"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}

		req, err := requirements.NewDependencyVersion(requirements.DependencyVersionArgs{
			Name:            spec.Name,
			Optional:        spec.Optional,
			Command:         v.Command,
			RequiredVersion: v.RequiredVersion,
			Compare:         requirements.Comparator(v.Compare),
			VersionRegex:    v.VersionRegex,
			TimeoutSeconds:  v.TimeoutSeconds,
		})
		return one(req, err)
	case TypeCommand:
		var v struct {
			Command         []string          `mapstructure:"command"`
			Repository      string            `mapstructure:"repository"`
			Dir             string            `mapstructure:"dir"`
			RelativeWorkdir string            `mapstructure:"relative_workdir"`
			TimeoutSeconds  float64           `mapstructure:"timeout_seconds"`
			ExpectedExit    int               `mapstructure:"expected_exit"`
			Env             map[string]string `mapstructure:"env"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}

		dir, err := b.resolveDir(v.Repository, v.Dir)
		if err != nil {
			return nil, err
		}

		req, err := requirements.NewCommand(requirements.CommandArgs{
			Name:            spec.Name,
			Optional:        spec.Optional,
			Command:         v.Command,
			Dir:             dir,
			RelativeWorkdir: v.RelativeWorkdir,
			TimeoutSeconds:  v.TimeoutSeconds,
			ExpectedExit:    v.ExpectedExit,
			Env:             v.Env,
		})
		return one(req, err)
	case TypePath:
		var v struct {
			Path       string `mapstructure:"path"`
			Repository string `mapstructure:"repository"`
			Type       string `mapstructure:"type"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}

		path, err := b.resolvePath(v.Repository, v.Path)
		if err != nil {
			return nil, err
		}

		req, err := requirements.NewPath(requirements.PathArgs{
			Name:     spec.Name,
			Optional: spec.Optional,
			Path:     path,
			Type:     requirements.PathType(v.Type),
		})
		return one(req, err)
	case TypeFileSize:
		var v struct {
			Path        string `mapstructure:"path"`
			Repository  string `mapstructure:"repository"`
			SizeInBytes int64  `mapstructure:"size_in_bytes"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}

		path, err := b.resolvePath(v.Repository, v.Path)
		if err != nil {
			return nil, err
		}

		req, err := requirements.NewFileSize(requirements.FileSizeArgs{
			Name:        spec.Name,
			Optional:    spec.Optional,
			Path:        path,
			SizeInBytes: v.SizeInBytes,
		})
		return one(req, err)
	case TypeEnvVar:
		var v struct {
			Var      string `mapstructure:"var"`
			Expected string `mapstructure:"expected"`
			Match    string `mapstructure:"match"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}

		req, err := requirements.NewEnvVar(requirements.EnvVarArgs{
			Name:     spec.Name,
			Optional: spec.Optional,
			Var:      v.Var,
			Expected: v.Expected,
			Match:    requirements.EnvQuantifier(v.Match),
		})
		return one(req, err)
	case TypeArtifact:
		var v struct {
			Path           string            `mapstructure:"path"`
			Repository     string            `mapstructure:"repository"`
			Command        []string          `mapstructure:"command"`
			Signature      string            `mapstructure:"signature"`
			TimeoutSeconds float64           `mapstructure:"timeout_seconds"`
			Env            map[string]string `mapstructure:"env"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}

		path := v.Path
		if path != "" {
			var err error
			path, err = b.resolvePath(v.Repository, v.Path)
			if err != nil {
				return nil, err
			}
		}

		req, err := requirements.NewArtifact(requirements.ArtifactArgs{
			Name:           spec.Name,
			Optional:       spec.Optional,
			Path:           path,
			Command:        v.Command,
			Signature:      v.Signature,
			TimeoutSeconds: v.TimeoutSeconds,
			Env:            v.Env,
		})
		return one(req, err)
	case TypeDatasetManifest:
		var v struct {
			Manifest   string `mapstructure:"manifest"`
			Repository string `mapstructure:"repository"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}
		return b.buildManifest(spec, v.Manifest, v.Repository)
	case TypeComparison:
		var v struct {
			Results   string  `mapstructure:"results"`
			Reference string  `mapstructure:"reference"`
			Policy    string  `mapstructure:"policy"`
			Metric    string  `mapstructure:"metric"`
			Threshold float64 `mapstructure:"threshold"`
			Absolute  float64 `mapstructure:"absolute"`
			Relative  float64 `mapstructure:"relative"`
			Format    string  `mapstructure:"format"`
			Field     string  `mapstructure:"field"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}
		return b.buildComparison(spec, comparisonParams{
			Results:   v.Results,
			Reference: v.Reference,
			Policy:    v.Policy,
			Metric:    v.Metric,
			Threshold: v.Threshold,
			Absolute:  v.Absolute,
			Relative:  v.Relative,
			Format:    v.Format,
			Field:     v.Field,
		})
	case TypeFail:
		var v struct {
			Message string `mapstructure:"message"`
		}
		if err := mapstructure.Decode(spec.Params, &v); err != nil {
			return nil, err
		}
		return []requirements.Requirement{requirements.NewFail(spec.Name, v.Message)}, nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid requirement type", spec.Type)
	}
}

// buildManifest expands a dataset manifest into one file-size requirement per
// entry. A manifest that cannot be loaded, and any entry that escapes the
// repository root, become always-failing requirements rather than aborting
// the sibling entries.
func (b *Builder) buildManifest(spec entry.RequirementSpec, manifestKey, repoKey string) ([]requirements.Requirement, error) {
	if manifestKey == "" {
		return nil, fmt.Errorf("manifest key is required")
	}
	manifestPath, err := b.cfg.GroundTruthPath(manifestKey)
	if err != nil {
		return nil, err
	}
	repoDir, err := b.cfg.RepositoryPath(repoKey)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return []requirements.Requirement{
			requirements.NewFail(spec.Name, fmt.Sprintf("failed to read manifest %s: %s", manifestPath, err)),
		}, nil
	}
	entries, err := refdata.ParseManifest(data)
	if err != nil {
		return []requirements.Requirement{
			requirements.NewFail(spec.Name, fmt.Sprintf("invalid manifest %s: %s", manifestPath, err)),
		}, nil
	}

	var reqs []requirements.Requirement
	for _, e := range entries {
		name := fmt.Sprintf("%s[%s]", spec.Name, e.Filepath)
		if bad := manifestPathError(e.Filepath); bad != "" {
			reqs = append(reqs, requirements.NewFail(name, bad))
			continue
		}
		req, err := requirements.NewFileSize(requirements.FileSizeArgs{
			Name:        name,
			Optional:    spec.Optional,
			Path:        filepath.Join(repoDir, e.Filepath),
			SizeInBytes: e.SizeInBytes,
		})
		if err != nil {
			reqs = append(reqs, requirements.NewFail(name, err.Error()))
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// manifestPathError returns a non-empty reason when a manifest filepath must
// be rejected: absolute paths and anything that climbs out of the repository
// root.
func manifestPathError(p string) string {
	if filepath.IsAbs(p) {
		return fmt.Sprintf("manifest path must be relative, got %s", p)
	}
	clean := filepath.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Sprintf("manifest path escapes the repository root: %s", p)
	}
	return ""
}

type comparisonParams struct {
	Results   string
	Reference string
	Policy    string
	Metric    string
	Threshold float64
	Absolute  float64
	Relative  float64
	Format    string
	Field     string
}

func (b *Builder) buildComparison(spec entry.RequirementSpec, p comparisonParams) ([]requirements.Requirement, error) {
	if p.Results == "" {
		return nil, fmt.Errorf("results key is required")
	}
	if p.Reference == "" {
		return nil, fmt.Errorf("reference key is required")
	}
	resultsPath, err := b.cfg.ResultsPath(p.Results)
	if err != nil {
		return nil, err
	}
	referencePath, err := b.cfg.GroundTruthPath(p.Reference)
	if err != nil {
		return nil, err
	}

	var policy compare.Policy
	switch p.Policy {
	case PolicySimilarity, "":
		threshold := p.Threshold
		if threshold == 0 {
			threshold = b.cfg.SimilarityRatio
		}
		policy, err = compare.NewSimilarityRatio(threshold, compare.Metric(p.Metric))
	case PolicyTolerance:
		policy, err = compare.NewTolerance(p.Absolute, p.Relative)
	default:
		return nil, fmt.Errorf("'%s' is not a valid comparison policy", p.Policy)
	}
	if err != nil {
		return nil, err
	}

	parse, err := comparisonParser(p.Format, p.Field, referencePath)
	if err != nil {
		return nil, err
	}

	req, err := requirements.NewExperimentComparison(requirements.ExperimentComparisonArgs{
		Name:          spec.Name,
		Optional:      spec.Optional,
		ResultsPath:   resultsPath,
		ReferencePath: referencePath,
		ParseResults:  parse,
		Policy:        policy,
	})
	return one(req, err)
}

// comparisonParser picks the sample parser for a comparison. The default
// "table" format is a flat JSON object of label to number. The "timings"
// format is the nested metric/tag/stats layout; when no stats field is
// declared the reference document drives discovery, and an unreadable or
// multi-field reference falls back to flattened labels.
func comparisonParser(format, field, referencePath string) (requirements.ParseFunc, error) {
	switch format {
	case "", "table":
		return refdata.ParseMetricTable, nil
	case "timings":
		if field == "" {
			if data, err := os.ReadFile(referencePath); err == nil {
				if fields, err := refdata.TimingFields(data); err == nil && len(fields) == 1 {
					field = fields[0]
				}
			}
		}
		selected := field
		return func(data []byte) ([]compare.Sample, error) {
			return refdata.ParseTimings(data, selected)
		}, nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid comparison format", format)
	}
}

// resolveDir resolves a working directory from either a repository key or an
// explicit dir, defaulting to the bundle's home directory.
func (b *Builder) resolveDir(repoKey, dir string) (string, error) {
	if repoKey != "" {
		return b.cfg.RepositoryPath(repoKey)
	}
	if dir == "" {
		return b.cfg.HomeDir, nil
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	return filepath.Join(b.cfg.HomeDir, dir), nil
}

// resolvePath anchors a relative path at the named repository root, or at the
// home directory when no repository is given.
func (b *Builder) resolvePath(repoKey, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	base := b.cfg.HomeDir
	if repoKey != "" {
		var err error
		base, err = b.cfg.RepositoryPath(repoKey)
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(base, path), nil
}

func one(req requirements.Requirement, err error) ([]requirements.Requirement, error) {
	if err != nil {
		return nil, err
	}
	return []requirements.Requirement{req}, nil
}
