package compare

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// defaultMaxDiffs bounds the structured diff attached to a failed comparison.
const defaultMaxDiffs = 10

// Diff records one mismatched label in a failed comparison.
type Diff struct {
	Label     string  `json:"label"`
	Observed  float64 `json:"observed"`
	Reference float64 `json:"reference"`
	Delta     float64 `json:"delta"`
}

// Outcome is the result of applying a comparison policy.
type Outcome struct {
	Passed bool
	// Score is the aggregate similarity in [0,1], when the policy computes one.
	Score float64
	// Missing lists reference labels absent from the observed set, capped.
	Missing []string
	// Diffs lists mismatched labels, capped; TotalMismatches is uncapped.
	Diffs           []Diff
	TotalMismatches int
	// Reason, when set, names an input-validity problem that kept the policy
	// from scoring at all (a metric precondition violation). Score is
	// meaningless when Reason is set.
	Reason string
}

// Summary renders the outcome as a compact human-readable message.
func (o Outcome) Summary() string {
	var b strings.Builder
	if len(o.Missing) > 0 {
		b.WriteString("missing labels:")
		for _, label := range o.Missing {
			fmt.Fprintf(&b, "\n- %s", label)
		}
		if extra := o.TotalMismatches - len(o.Missing) - len(o.Diffs); extra > 0 && len(o.Diffs) == 0 {
			fmt.Fprintf(&b, "\n... (%d more)", extra)
		}
	}
	if len(o.Diffs) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("mismatches:")
		for _, d := range o.Diffs {
			fmt.Fprintf(&b, "\n- %s: observed=%v reference=%v delta=%v", d.Label, d.Observed, d.Reference, d.Delta)
		}
		if extra := o.TotalMismatches - len(o.Missing) - len(o.Diffs); extra > 0 {
			fmt.Fprintf(&b, "\n... (%d more)", extra)
		}
	}
	return b.String()
}

// Policy decides whether an observed sample set matches a reference set.
// The reference defines expectation: labels missing from the observed set are
// failures, labels present only in the observed set are ignored.
type Policy interface {
	Name() string
	Compare(observed, reference []Sample) Outcome
}

// Tolerance is the element-wise policy: every reference label must appear in
// the observed set with |observed - reference| <= Absolute + Relative*|reference|.
type Tolerance struct {
	Absolute float64
	Relative float64
	MaxDiffs int
}

// NewTolerance validates bounds and returns an element-wise tolerance policy.
func NewTolerance(absolute, relative float64) (*Tolerance, error) {
	if absolute < 0 || !isFinite(absolute) {
		return nil, fmt.Errorf("tolerance: absolute must be finite and >= 0, got %v", absolute)
	}
	if relative < 0 || !isFinite(relative) {
		return nil, fmt.Errorf("tolerance: relative must be finite and >= 0, got %v", relative)
	}
	return &Tolerance{Absolute: absolute, Relative: relative, MaxDiffs: defaultMaxDiffs}, nil
}

func (t *Tolerance) Name() string { return "tolerance" }

func (t *Tolerance) Compare(observed, reference []Sample) Outcome {
	obs := byLabel(observed)
	maxDiffs := t.MaxDiffs
	if maxDiffs <= 0 {
		maxDiffs = defaultMaxDiffs
	}

	out := Outcome{Passed: true}
	for _, ref := range sortedByLabel(reference) {
		got, ok := obs[ref.Label]
		if !ok {
			out.Passed = false
			out.TotalMismatches++
			if len(out.Missing) < maxDiffs {
				out.Missing = append(out.Missing, ref.Label)
			}
			continue
		}

		limit := t.Absolute + t.Relative*math.Abs(ref.Value)
		delta := math.Abs(got - ref.Value)
		if delta > limit || math.IsNaN(delta) {
			out.Passed = false
			out.TotalMismatches++
			if len(out.Diffs) < maxDiffs {
				out.Diffs = append(out.Diffs, Diff{
					Label:     ref.Label,
					Observed:  got,
					Reference: ref.Value,
					Delta:     got - ref.Value,
				})
			}
		}
	}
	return out
}

// SimilarityRatio is the aggregate policy: a single similarity score over the
// label-paired value vectors must reach Threshold. Used where exact per-metric
// matching is too strict, e.g. noisy timings.
type SimilarityRatio struct {
	Threshold float64
	Metric    Metric
	MaxDiffs  int
}

// NewSimilarityRatio validates the threshold and returns an aggregate
// similarity policy. An empty metric selects the element-mean default.
func NewSimilarityRatio(threshold float64, metric Metric) (*SimilarityRatio, error) {
	if !isFinite(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("similarity: threshold must be in [0,1], got %v", threshold)
	}
	if metric == "" {
		metric = MetricElementMean
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("similarity: unsupported metric %q", metric)
	}
	return &SimilarityRatio{Threshold: threshold, Metric: metric, MaxDiffs: defaultMaxDiffs}, nil
}

func (s *SimilarityRatio) Name() string { return "similarity" }

func (s *SimilarityRatio) Compare(observed, reference []Sample) Outcome {
	obs := byLabel(observed)
	maxDiffs := s.MaxDiffs
	if maxDiffs <= 0 {
		maxDiffs = defaultMaxDiffs
	}

	out := Outcome{}
	refs := sortedByLabel(reference)
	left := make([]float64, 0, len(refs))
	right := make([]float64, 0, len(refs))
	for _, ref := range refs {
		got, ok := obs[ref.Label]
		if !ok {
			out.TotalMismatches++
			if len(out.Missing) < maxDiffs {
				out.Missing = append(out.Missing, ref.Label)
			}
			continue
		}
		left = append(left, got)
		right = append(right, ref.Value)
	}
	if len(out.Missing) > 0 {
		return out
	}

	score, err := Similarity(s.Metric, left, right)
	if err != nil {
		// Metric preconditions (negative values, too few samples) are a
		// normal failed outcome at this layer; Reason names the cause so the
		// failure is not misread as a low score.
		out.Reason = err.Error()
		out.TotalMismatches = len(refs)
		return out
	}

	out.Score = score
	out.Passed = score >= s.Threshold
	if out.Passed {
		return out
	}

	// Attach the least-similar pairs so the caller sees what dragged the
	// score down.
	for i, ref := range refs {
		if ValueSimilarity(left[i], right[i]) >= s.Threshold {
			continue
		}
		out.TotalMismatches++
		if len(out.Diffs) < maxDiffs {
			out.Diffs = append(out.Diffs, Diff{
				Label:     ref.Label,
				Observed:  left[i],
				Reference: right[i],
				Delta:     left[i] - right[i],
			})
		}
	}
	return out
}

func byLabel(samples []Sample) map[string]float64 {
	m := make(map[string]float64, len(samples))
	for _, s := range samples {
		m[s.Label] = s.Value
	}
	return m
}

func sortedByLabel(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
