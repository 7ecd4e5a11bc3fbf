// Package reporting renders scorecards as JSON, JUnit XML, and text
// summaries.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// WriteScorecard writes a scorecard as indented JSON. A path ending in .gz is
// gzip-compressed.
func WriteScorecard(card *models.Scorecard, path string) error {
	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling scorecard: %w", err)
	}
	data = append(data, '\n')

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if _, err := w.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("flushing %s: %w", path, err)
		}
	}
	return f.Close()
}

// ReadScorecard reads a scorecard written by WriteScorecard, transparently
// decompressing .gz files.
func ReadScorecard(path string) (*models.Scorecard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var card models.Scorecard
	if err := json.NewDecoder(r).Decode(&card); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &card, nil
}
