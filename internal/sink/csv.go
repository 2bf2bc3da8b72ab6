package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
)

// CSVSink writes the membership records to a local CSV file, replacing any
// previous export.
type CSVSink struct {
	path string
	log  *logging.Logger
}

// NewCSVSink constructs the sink.
func NewCSVSink(path string, log *logging.Logger) *CSVSink {
	return &CSVSink{path: path, log: log}
}

// Name identifies the sink in logs and metrics.
func (s *CSVSink) Name() string { return "csv" }

// Write replaces the CSV file with the run's records.
func (s *CSVSink) Write(ctx context.Context, out Output) error {
	if len(out.RecordRows) == 0 {
		s.log.Info("no records for csv export", "path", s.path)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range out.RecordRows {
		if err := w.Write(csvRow(row)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}
