package refdata

import (
	"testing"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/compare"
	"github.com/stretchr/testify/require"
)

func TestParseMetricTable(t *testing.T) {
	t.Run("flat object sorted by label", func(t *testing.T) {
		samples, err := ParseMetricTable([]byte(`{"z": 3, "a": 1.5, "m": -2}`))
		require.NoError(t, err)
		require.Equal(t, []compare.Sample{
			{Label: "a", Value: 1.5},
			{Label: "m", Value: -2},
			{Label: "z", Value: 3},
		}, samples)
	})

	t.Run("top-level array is rejected", func(t *testing.T) {
		_, err := ParseMetricTable([]byte(`[1, 2, 3]`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be an object")
	})

	t.Run("non-numeric value is rejected", func(t *testing.T) {
		_, err := ParseMetricTable([]byte(`{"a": "fast"}`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "non-numeric")
	})

	t.Run("empty object parses to no samples", func(t *testing.T) {
		samples, err := ParseMetricTable([]byte(`{}`))
		require.NoError(t, err)
		require.Empty(t, samples)
	})
}

const timingsDoc = `{
	"merge": {
		"automerge": {"mean": 10.5, "p99": 20.0},
		"yjs":       {"mean": 8.0,  "p99": 15.0}
	},
	"load": {
		"automerge": {"mean": 3.0}
	}
}`

func TestTimingFields(t *testing.T) {
	fields, err := TimingFields([]byte(timingsDoc))
	require.NoError(t, err)
	require.Equal(t, []string{"mean", "p99"}, fields)
}

func TestParseTimings(t *testing.T) {
	t.Run("field selection skips rows without the field", func(t *testing.T) {
		samples, err := ParseTimings([]byte(timingsDoc), "p99")
		require.NoError(t, err)
		require.Equal(t, []compare.Sample{
			{Label: "merge.automerge", Value: 20.0},
			{Label: "merge.yjs", Value: 15.0},
		}, samples)
	})

	t.Run("empty field flattens every stats entry", func(t *testing.T) {
		samples, err := ParseTimings([]byte(timingsDoc), "")
		require.NoError(t, err)
		require.Equal(t, []compare.Sample{
			{Label: "load.automerge.mean", Value: 3.0},
			{Label: "merge.automerge.mean", Value: 10.5},
			{Label: "merge.automerge.p99", Value: 20.0},
			{Label: "merge.yjs.mean", Value: 8.0},
			{Label: "merge.yjs.p99", Value: 15.0},
		}, samples)
	})

	t.Run("wrong nesting is rejected", func(t *testing.T) {
		_, err := ParseTimings([]byte(`{"merge": 1}`), "mean")
		require.Error(t, err)
	})

	t.Run("non-numeric stats value is rejected", func(t *testing.T) {
		_, err := ParseTimings([]byte(`{"merge": {"yjs": {"mean": "fast"}}}`), "mean")
		require.Error(t, err)
		require.Contains(t, err.Error(), "merge.yjs.mean")
	})
}

func TestParseManifest(t *testing.T) {
	t.Run("well-formed manifest", func(t *testing.T) {
		entries, err := ParseManifest([]byte(`[
			{"filepath": "data/a.json", "sizeinbytes": 100},
			{"filepath": "data/b.json", "sizeinbytes": 0}
		]`))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "data/a.json", entries[0].Filepath)
		require.Equal(t, int64(100), entries[0].SizeInBytes)
	})

	t.Run("top-level object is rejected", func(t *testing.T) {
		_, err := ParseManifest([]byte(`{"filepath": "x", "sizeinbytes": 1}`))
		require.Error(t, err)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		_, err := ParseManifest([]byte(`[{"filepath": "x"}]`))
		require.Error(t, err)
	})

	t.Run("negative size is rejected", func(t *testing.T) {
		_, err := ParseManifest([]byte(`[{"filepath": "x", "sizeinbytes": -5}]`))
		require.Error(t, err)
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		_, err := ParseManifest([]byte(`not json`))
		require.Error(t, err)
	})

	t.Run("empty list is fine", func(t *testing.T) {
		entries, err := ParseManifest([]byte(`[]`))
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}
