// Package compare implements the comparison policies used by experiment-run
// requirements: element-wise tolerance checks and aggregate similarity ratios
// over labeled numeric samples.
package compare

import (
	"fmt"
	"math"
)

// Sample is one labeled numeric value from an observed or reference dataset.
type Sample struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Metric identifies a list-level similarity function producing a single score.
type Metric string

const (
	// MetricElementMean is the mean of per-element relative similarities.
	MetricElementMean Metric = "element_mean"
	MetricJaccardSet  Metric = "jaccard_set"
	MetricDotProduct  Metric = "dot_product"
	MetricCosine      Metric = "cosine"
	MetricPearson     Metric = "pearson"
	MetricMinMax      Metric = "min_max"
)

// Valid reports whether m names a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricElementMean, MetricJaccardSet, MetricDotProduct, MetricCosine, MetricPearson, MetricMinMax:
		return true
	}
	return false
}

// Similarity computes the named metric over two equal-length vectors. The
// score is in [0,1] for all metrics except dot_product, which is unbounded,
// and pearson, which is clamped at 0 (anti-correlation scores zero, it is
// never "partially similar").
func Similarity(metric Metric, left, right []float64) (float64, error) {
	if len(left) != len(right) {
		return 0, fmt.Errorf("%s: length mismatch: left has %d, right has %d", metric, len(left), len(right))
	}
	switch metric {
	case MetricElementMean:
		return elementMeanSimilarity(left, right)
	case MetricJaccardSet:
		return jaccardSetSimilarity(left, right)
	case MetricDotProduct:
		return dotProduct(left, right)
	case MetricCosine:
		return cosineSimilarity(left, right)
	case MetricPearson:
		return pearsonSimilarity(left, right)
	case MetricMinMax:
		return minMaxSimilarity(left, right)
	default:
		return 0, fmt.Errorf("unsupported similarity metric %q", metric)
	}
}

// defaultAbsEpsilon guards the relative-error denominator near zero.
const defaultAbsEpsilon = 1e-12

// ValueSimilarity scores the closeness of two scalars in [0,1], where 1.0
// means identical and the score decreases with relative error:
//
//	score = 1 - |a-b| / max(|a|, |b|, eps)
//
// NaN compares similar only to NaN; infinities only to equal infinities.
func ValueSimilarity(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		if math.IsNaN(a) && math.IsNaN(b) {
			return 1.0
		}
		return 0.0
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		if a == b {
			return 1.0
		}
		return 0.0
	}

	denom := math.Max(math.Max(math.Abs(a), math.Abs(b)), defaultAbsEpsilon)
	score := 1.0 - math.Abs(a-b)/denom
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}

func elementMeanSimilarity(left, right []float64) (float64, error) {
	if len(left) == 0 {
		return 1.0, nil
	}
	total := 0.0
	for i := range left {
		total += ValueSimilarity(left[i], right[i])
	}
	return total / float64(len(left)), nil
}

// jaccardSetSimilarity treats both inputs as sets; duplicates are rejected so
// a multiset never silently collapses.
func jaccardSetSimilarity(left, right []float64) (float64, error) {
	a, err := toSet(left, "left")
	if err != nil {
		return 0, err
	}
	b, err := toSet(right, "right")
	if err != nil {
		return 0, err
	}

	union := len(a)
	common := 0
	for v := range b {
		if _, ok := a[v]; ok {
			common++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1.0, nil
	}
	return float64(common) / float64(union), nil
}

func toSet(values []float64, side string) (map[float64]struct{}, error) {
	set := make(map[float64]struct{}, len(values))
	for _, v := range values {
		// NaN != NaN, so map keys would leak duplicates; normalize first.
		if math.IsNaN(v) {
			v = math.Inf(-1) // sentinel slot shared by all NaNs
		}
		if _, dup := set[v]; dup {
			return nil, fmt.Errorf("jaccard_set: %s input contains duplicates (multiset not allowed)", side)
		}
		set[v] = struct{}{}
	}
	return set, nil
}

// dotProduct is the plain inner product, unbounded. Callers picking it for a
// thresholded comparison own the scale of their data.
func dotProduct(left, right []float64) (float64, error) {
	if err := requireFinite(left, "dot_product.left"); err != nil {
		return 0, err
	}
	if err := requireFinite(right, "dot_product.right"); err != nil {
		return 0, err
	}

	var dot float64
	for i := range left {
		dot += left[i] * right[i]
	}
	return dot, nil
}

// cosineSimilarity policy for zero vectors: both zero-norm compare identical
// (1.0), exactly one zero-norm compares dissimilar (0.0). Negative
// correlations clamp at 0.
func cosineSimilarity(left, right []float64) (float64, error) {
	if err := requireFinite(left, "cosine.left"); err != nil {
		return 0, err
	}
	if err := requireFinite(right, "cosine.right"); err != nil {
		return 0, err
	}

	var dot, normL, normR float64
	for i := range left {
		dot += left[i] * right[i]
		normL += left[i] * left[i]
		normR += right[i] * right[i]
	}
	if normL == 0 && normR == 0 {
		return 1.0, nil
	}
	if normL == 0 || normR == 0 {
		return 0.0, nil
	}
	return clamp01(dot / (math.Sqrt(normL) * math.Sqrt(normR))), nil
}

func pearsonSimilarity(left, right []float64) (float64, error) {
	if len(left) < 2 {
		return 0, fmt.Errorf("pearson: need at least 2 samples, got %d", len(left))
	}
	if err := requireFinite(left, "pearson.left"); err != nil {
		return 0, err
	}
	if err := requireFinite(right, "pearson.right"); err != nil {
		return 0, err
	}

	n := float64(len(left))
	var meanL, meanR float64
	for i := range left {
		meanL += left[i]
		meanR += right[i]
	}
	meanL /= n
	meanR /= n

	var cov, varL, varR float64
	for i := range left {
		dl := left[i] - meanL
		dr := right[i] - meanR
		cov += dl * dr
		varL += dl * dl
		varR += dr * dr
	}

	if varL == 0 && varR == 0 {
		if slicesEqual(left, right) {
			return 1.0, nil
		}
		return 0.0, nil
	}
	if varL == 0 || varR == 0 {
		return 0.0, nil
	}
	return clamp01(cov / (math.Sqrt(varL) * math.Sqrt(varR))), nil
}

// minMaxSimilarity = sum(min(x,y)) / sum(max(x,y)) for nonnegative vectors.
// All-zero inputs compare identical (1.0).
func minMaxSimilarity(left, right []float64) (float64, error) {
	if err := requireFinite(left, "min_max.left"); err != nil {
		return 0, err
	}
	if err := requireFinite(right, "min_max.right"); err != nil {
		return 0, err
	}

	var num, den float64
	for i := range left {
		if left[i] < 0 || right[i] < 0 {
			return 0, fmt.Errorf("min_max: negative value at index %d: left=%v, right=%v", i, left[i], right[i])
		}
		num += math.Min(left[i], right[i])
		den += math.Max(left[i], right[i])
	}
	if den == 0 {
		return 1.0, nil
	}
	return num / den, nil
}

func requireFinite(values []float64, label string) error {
	for i, v := range values {
		if !isFinite(v) {
			return fmt.Errorf("%s: non-finite value at index %d: %v", label, i, v)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func slicesEqual(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
