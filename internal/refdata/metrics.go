// Package refdata loads and validates the JSON reference files kept under an
// entry's refs/ directory: expected metric tables, nested timing summaries,
// and dataset manifests.
package refdata

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/compare"
)

// ParseMetricTable parses a flat JSON object of label → number into labeled
// samples, sorted by label. A non-object top level is a hard error.
func ParseMetricTable(data []byte) ([]compare.Sample, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("top-level JSON must be an object of label to number: %w", err)
	}

	samples := make([]compare.Sample, 0, len(raw))
	for label, value := range raw {
		var num float64
		if err := json.Unmarshal(value, &num); err != nil {
			return nil, fmt.Errorf("%s: non-numeric value %s", label, string(value))
		}
		samples = append(samples, compare.Sample{Label: label, Value: num})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Label < samples[j].Label })
	return samples, nil
}
