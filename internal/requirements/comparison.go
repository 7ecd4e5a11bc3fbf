package requirements

import (
	"context"
	"fmt"
	"os"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/compare"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// ParseFunc turns the raw bytes of a results or reference file into labeled
// samples. Implementations must reject malformed top-level shapes explicitly;
// a parse error here is a hard failure of the requirement, not a skip.
type ParseFunc func(data []byte) ([]compare.Sample, error)

// ExperimentComparisonArgs holds the arguments for creating an experiment
// comparison requirement.
type ExperimentComparisonArgs struct {
	Name     string
	Optional bool
	// ResultsPath is the observed-results file produced by the agent's runs.
	ResultsPath string
	// ReferencePath is the ground-truth file.
	ReferencePath string
	// ParseResults and ParseReference extract labeled samples from each file.
	// ParseReference defaults to ParseResults.
	ParseResults   ParseFunc
	ParseReference ParseFunc
	// Policy decides whether the observed samples match the reference.
	Policy compare.Policy
}

// ExperimentComparison reads an observed-results file and a reference file,
// parses both, and applies a comparison policy. File read errors, parse
// errors, and policy mismatches are all failed outcomes with distinct
// messages; none abort the rest of the oracle.
type ExperimentComparison struct {
	base
	resultsPath    string
	referencePath  string
	parseResults   ParseFunc
	parseReference ParseFunc
	policy         compare.Policy
}

// NewExperimentComparison validates args and returns the requirement.
func NewExperimentComparison(args ExperimentComparisonArgs) (*ExperimentComparison, error) {
	if args.ResultsPath == "" {
		return nil, fmt.Errorf("%s: results path must be non-empty", args.Name)
	}
	if args.ReferencePath == "" {
		return nil, fmt.Errorf("%s: reference path must be non-empty", args.Name)
	}
	if args.ParseResults == nil {
		return nil, fmt.Errorf("%s: a results parse function is required", args.Name)
	}
	if args.Policy == nil {
		return nil, fmt.Errorf("%s: a comparison policy is required", args.Name)
	}

	parseReference := args.ParseReference
	if parseReference == nil {
		parseReference = args.ParseResults
	}

	return &ExperimentComparison{
		base:           base{name: args.Name, optional: args.Optional},
		resultsPath:    args.ResultsPath,
		referencePath:  args.ReferencePath,
		parseResults:   args.ParseResults,
		parseReference: parseReference,
		policy:         args.Policy,
	}, nil
}

func (e *ExperimentComparison) Check(ctx context.Context) models.CheckResult {
	return measured(func() models.CheckResult {
		reference, res := loadSamples(e.referencePath, e.parseReference, "reference")
		if !res.Passed {
			return res
		}
		observed, res := loadSamples(e.resultsPath, e.parseResults, "results")
		if !res.Passed {
			return res
		}

		outcome := e.policy.Compare(observed, reference)
		if outcome.Passed {
			return models.Pass()
		}

		msg := fmt.Sprintf("%s comparison failed", e.policy.Name())
		if outcome.Reason != "" {
			msg = fmt.Sprintf("%s comparison failed: %s", e.policy.Name(), outcome.Reason)
		} else if sim, ok := e.policy.(*compare.SimilarityRatio); ok && len(outcome.Missing) == 0 {
			msg = fmt.Sprintf("similarity %.6f < threshold %.6f", outcome.Score, sim.Threshold)
		}
		if detail := outcome.Summary(); detail != "" {
			msg = msg + "\n" + models.TruncateText(detail, models.DefaultMaxMessageChars)
		}
		return models.Failf("%s", msg)
	})
}

func loadSamples(path string, parse ParseFunc, label string) ([]compare.Sample, models.CheckResult) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.Failf("%s: failed to read %s: %v", label, path, err)
	}
	samples, err := parse(data)
	if err != nil {
		return nil, models.Failf("%s: parse error in %s: %v", label, path, err)
	}
	return samples, models.Pass()
}
