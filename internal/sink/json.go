package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
)

// JSONSink writes the rendered records as a JSON array. The file is the data
// source of the table viewer, so the field names come from RecordRow's tags.
type JSONSink struct {
	path string
	log  *logging.Logger
}

// NewJSONSink constructs the sink.
func NewJSONSink(path string, log *logging.Logger) *JSONSink {
	return &JSONSink{path: path, log: log}
}

// Name identifies the sink in logs and metrics.
func (s *JSONSink) Name() string { return "json" }

// Write replaces the JSON file with the run's records.
func (s *JSONSink) Write(ctx context.Context, out Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(out.RecordRows); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	return f.Close()
}
