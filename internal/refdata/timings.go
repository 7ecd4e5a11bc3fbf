package refdata

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/compare"
)

// Timing summaries are nested JSON: {metric: {tag: {field: number}}}. Rows are
// addressed by "metric.tag" and values by a stats field like "mean" or "p99".

type timingRow struct {
	key   string
	stats map[string]json.RawMessage
}

func parseTimingRows(data []byte) ([]timingRow, error) {
	var top map[string]map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("timings JSON must be an object of metric to tag to stats: %w", err)
	}

	var rows []timingRow
	for metric, tags := range top {
		for tag, stats := range tags {
			rows = append(rows, timingRow{key: metric + "." + tag, stats: stats})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })
	return rows, nil
}

// TimingFields returns the unique stats fields present in a timings document,
// sorted. Used to discover which fields the reference expects.
func TimingFields(data []byte) ([]string, error) {
	rows, err := parseTimingRows(data)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var fields []string
	for _, row := range rows {
		for field := range row.stats {
			if _, ok := seen[field]; !ok {
				seen[field] = struct{}{}
				fields = append(fields, field)
			}
		}
	}
	sort.Strings(fields)
	return fields, nil
}

// ParseTimings extracts labeled samples from a timings document.
//
// With a non-empty field, labels are "metric.tag" and values are stats[field];
// rows without the field are skipped, so the reference document defines
// expectation. With an empty field every stats entry is flattened to
// "metric.tag.field".
func ParseTimings(data []byte, field string) ([]compare.Sample, error) {
	rows, err := parseTimingRows(data)
	if err != nil {
		return nil, err
	}

	var samples []compare.Sample
	for _, row := range rows {
		if field != "" {
			raw, ok := row.stats[field]
			if !ok {
				continue
			}
			value, err := asNumber(raw, row.key+"."+field)
			if err != nil {
				return nil, err
			}
			samples = append(samples, compare.Sample{Label: row.key, Value: value})
			continue
		}

		fields := make([]string, 0, len(row.stats))
		for f := range row.stats {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			value, err := asNumber(row.stats[f], row.key+"."+f)
			if err != nil {
				return nil, err
			}
			samples = append(samples, compare.Sample{Label: row.key + "." + f, Value: value})
		}
	}
	return samples, nil
}

func asNumber(raw json.RawMessage, label string) (float64, error) {
	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, fmt.Errorf("%s: non-numeric value %s", label, string(raw))
	}
	return num, nil
}
