// Package sink serializes collected records into one timestamped CSV per run.
// The column set is the union of every field seen across the records: fixed
// metadata columns lead, page-specific columns follow in first-seen order,
// URL and asset columns trail. Rows never drop columns; unseen fields render
// empty so every row has an identical column count.
package sink

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/use-agent/doccrawl/config"
	"github.com/use-agent/doccrawl/models"
)

// utf8BOM makes spreadsheet tools decode the mixed Devanagari/Latin content
// correctly (the original exports used utf-8-sig).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSink writes record batches into the output directory.
type CSVSink struct {
	dir string
	now func() time.Time
}

// New creates a CSVSink writing into cfg.Dir.
func New(cfg config.OutputConfig) *CSVSink {
	return &CSVSink{dir: cfg.Dir, now: time.Now}
}

// Write serializes records into <dir>/<slug>_<timestamp>.csv and returns the
// path. Zero records is not an error: a notice is logged and no file is
// written.
func (s *CSVSink) Write(records []models.Record, slug string) (string, error) {
	if len(records) == 0 {
		slog.Info("no records collected, skipping CSV write", "site", slug)
		return "", nil
	}

	columns := unionColumns(records)

	name := fmt.Sprintf("%s_%s.csv", slug, s.now().Format("20060102_150405"))
	outPath := filepath.Join(s.dir, name)

	f, err := os.Create(outPath)
	if err != nil {
		return "", models.NewCrawlError(models.ErrCodeOutput, "create CSV file", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", models.NewCrawlError(models.ErrCodeOutput, "write BOM", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", models.NewCrawlError(models.ErrCodeOutput, "write header", err)
	}
	row := make([]string, len(columns))
	for i := range records {
		for j, col := range columns {
			row[j] = records[i].Value(col)
		}
		if err := w.Write(row); err != nil {
			return "", models.NewCrawlError(models.ErrCodeOutput, "write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", models.NewCrawlError(models.ErrCodeOutput, "flush CSV", err)
	}

	slog.Info("CSV saved", "path", outPath, "rows", len(records))
	return outPath, nil
}

// unionColumns computes the full column schema for a record batch: the fixed
// leading fields, every extra field in order of first appearance, then the
// fixed trailing fields.
func unionColumns(records []models.Record) []string {
	columns := append([]string{}, models.LeadingFields...)
	seen := make(map[string]struct{}, len(columns))
	for _, c := range models.LeadingFields {
		seen[c] = struct{}{}
	}
	for _, c := range models.TrailingFields {
		seen[c] = struct{}{}
	}
	for _, rec := range records {
		for _, f := range rec.Extra {
			if _, dup := seen[f.Name]; dup {
				continue
			}
			seen[f.Name] = struct{}{}
			columns = append(columns, f.Name)
		}
	}
	return append(columns, models.TrailingFields...)
}
