package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueSimilarity(t *testing.T) {
	t.Run("identical values score 1", func(t *testing.T) {
		require.Equal(t, 1.0, ValueSimilarity(5.0, 5.0))
		require.Equal(t, 1.0, ValueSimilarity(0.0, 0.0))
		require.Equal(t, 1.0, ValueSimilarity(-3.5, -3.5))
	})

	t.Run("relative error drives the score", func(t *testing.T) {
		// |80-100| / max(80,100) = 0.2
		require.InDelta(t, 0.8, ValueSimilarity(80, 100), 1e-9)
		require.InDelta(t, 0.8, ValueSimilarity(100, 80), 1e-9)
	})

	t.Run("opposite signs clamp at zero", func(t *testing.T) {
		require.Equal(t, 0.0, ValueSimilarity(-10, 10))
	})

	t.Run("nan only matches nan", func(t *testing.T) {
		nan := math.NaN()
		require.Equal(t, 1.0, ValueSimilarity(nan, nan))
		require.Equal(t, 0.0, ValueSimilarity(nan, 1.0))
		require.Equal(t, 0.0, ValueSimilarity(1.0, nan))
	})

	t.Run("infinities only match equal infinities", func(t *testing.T) {
		inf := math.Inf(1)
		require.Equal(t, 1.0, ValueSimilarity(inf, inf))
		require.Equal(t, 0.0, ValueSimilarity(inf, math.Inf(-1)))
		require.Equal(t, 0.0, ValueSimilarity(inf, 100))
	})
}

func TestSimilarity_ElementMean(t *testing.T) {
	t.Run("mean of per-element scores", func(t *testing.T) {
		// scores: 1.0 and 0.8
		score, err := Similarity(MetricElementMean, []float64{1, 80}, []float64{1, 100})
		require.NoError(t, err)
		require.InDelta(t, 0.9, score, 1e-9)
	})

	t.Run("empty vectors score 1", func(t *testing.T) {
		score, err := Similarity(MetricElementMean, nil, nil)
		require.NoError(t, err)
		require.Equal(t, 1.0, score)
	})

	t.Run("length mismatch is an error", func(t *testing.T) {
		_, err := Similarity(MetricElementMean, []float64{1}, []float64{1, 2})
		require.Error(t, err)
		require.Contains(t, err.Error(), "length mismatch")
	})
}

func TestSimilarity_JaccardSet(t *testing.T) {
	t.Run("set overlap", func(t *testing.T) {
		// sets {1,2,3} and {2,3,4}: intersection 2, union 4
		score, err := Similarity(MetricJaccardSet, []float64{1, 2, 3}, []float64{2, 3, 4})
		require.NoError(t, err)
		require.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("duplicates are rejected", func(t *testing.T) {
		_, err := Similarity(MetricJaccardSet, []float64{1, 1, 2}, []float64{1, 2, 3})
		require.Error(t, err)
		require.Contains(t, err.Error(), "duplicates")
	})

	t.Run("both empty score 1", func(t *testing.T) {
		score, err := Similarity(MetricJaccardSet, nil, nil)
		require.NoError(t, err)
		require.Equal(t, 1.0, score)
	})
}

func TestSimilarity_DotProduct(t *testing.T) {
	t.Run("plain inner product", func(t *testing.T) {
		score, err := Similarity(MetricDotProduct, []float64{1, 2, 3}, []float64{4, 5, 6})
		require.NoError(t, err)
		require.InDelta(t, 32.0, score, 1e-9)
	})

	t.Run("non-finite values are an error", func(t *testing.T) {
		_, err := Similarity(MetricDotProduct, []float64{1, math.Inf(1)}, []float64{1, 2})
		require.Error(t, err)
		require.Contains(t, err.Error(), "dot_product.left")
	})
}

func TestSimilarity_Cosine(t *testing.T) {
	t.Run("parallel vectors score 1", func(t *testing.T) {
		score, err := Similarity(MetricCosine, []float64{1, 2, 3}, []float64{2, 4, 6})
		require.NoError(t, err)
		require.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		score, err := Similarity(MetricCosine, []float64{1, 0}, []float64{0, 1})
		require.NoError(t, err)
		require.InDelta(t, 0.0, score, 1e-9)
	})

	t.Run("both zero vectors score 1", func(t *testing.T) {
		score, err := Similarity(MetricCosine, []float64{0, 0}, []float64{0, 0})
		require.NoError(t, err)
		require.Equal(t, 1.0, score)
	})

	t.Run("one zero vector scores 0", func(t *testing.T) {
		score, err := Similarity(MetricCosine, []float64{0, 0}, []float64{1, 2})
		require.NoError(t, err)
		require.Equal(t, 0.0, score)
	})

	t.Run("non-finite values are an error", func(t *testing.T) {
		_, err := Similarity(MetricCosine, []float64{math.NaN(), 1}, []float64{1, 2})
		require.Error(t, err)
	})
}

func TestSimilarity_Pearson(t *testing.T) {
	t.Run("perfectly correlated score 1", func(t *testing.T) {
		score, err := Similarity(MetricPearson, []float64{1, 2, 3}, []float64{10, 20, 30})
		require.NoError(t, err)
		require.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("anti-correlation clamps at 0", func(t *testing.T) {
		score, err := Similarity(MetricPearson, []float64{1, 2, 3}, []float64{3, 2, 1})
		require.NoError(t, err)
		require.Equal(t, 0.0, score)
	})

	t.Run("needs at least 2 samples", func(t *testing.T) {
		_, err := Similarity(MetricPearson, []float64{1}, []float64{1})
		require.Error(t, err)
	})

	t.Run("both constant and equal score 1", func(t *testing.T) {
		score, err := Similarity(MetricPearson, []float64{5, 5}, []float64{5, 5})
		require.NoError(t, err)
		require.Equal(t, 1.0, score)
	})

	t.Run("one constant scores 0", func(t *testing.T) {
		score, err := Similarity(MetricPearson, []float64{5, 5}, []float64{1, 2})
		require.NoError(t, err)
		require.Equal(t, 0.0, score)
	})
}

func TestSimilarity_MinMax(t *testing.T) {
	t.Run("overlap ratio", func(t *testing.T) {
		// min sum = 1+2 = 3, max sum = 2+4 = 6
		score, err := Similarity(MetricMinMax, []float64{1, 2}, []float64{2, 4})
		require.NoError(t, err)
		require.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("negative values are rejected", func(t *testing.T) {
		_, err := Similarity(MetricMinMax, []float64{-1, 2}, []float64{1, 2})
		require.Error(t, err)
		require.Contains(t, err.Error(), "negative")
	})

	t.Run("all zeros score 1", func(t *testing.T) {
		score, err := Similarity(MetricMinMax, []float64{0, 0}, []float64{0, 0})
		require.NoError(t, err)
		require.Equal(t, 1.0, score)
	})
}

func TestSimilarity_UnknownMetric(t *testing.T) {
	_, err := Similarity(Metric("bogus"), []float64{1}, []float64{1})
	require.Error(t, err)
}
