package sink

import (
	"context"
	"time"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
)

// Output is the full result of one pipeline run, carried to every sink. The
// typed records feed the durable sinks; the rendered rows feed the display
// surfaces (CSV, JSON, Sheets) so all of them agree on formatting.
type Output struct {
	RunID       string
	GeneratedAt time.Time

	Records       []domain.MembershipRecord
	Cancellations []domain.CancellationRecord

	RecordRows       []domain.RecordRow
	CancellationRows []domain.CancellationRow
}

// Sink receives a completed run's output.
type Sink interface {
	Name() string
	Write(ctx context.Context, out Output) error
}

// Fanout delivers one output to every configured sink in order. A failing
// sink is logged and skipped rather than aborting delivery to the rest; the
// first error is still returned so the caller can flag the run as degraded.
type Fanout struct {
	sinks []Sink
	log   *logging.Logger
}

// NewFanout constructs the fan-out over the given sinks.
func NewFanout(log *logging.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, log: log}
}

// Write delivers the output to every sink.
func (f *Fanout) Write(ctx context.Context, out Output) error {
	var firstErr error
	for _, s := range f.sinks {
		start := time.Now()
		if err := s.Write(ctx, out); err != nil {
			f.log.Error("sink write failed", "sink", s.Name(), "run_id", out.RunID, "error", err)
			recordSinkWrite(s.Name(), "error")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		recordSinkWrite(s.Name(), "ok")
		f.log.Info("sink write complete", "sink", s.Name(), "run_id", out.RunID,
			"records", len(out.Records), "cancellations", len(out.Cancellations),
			"elapsed", time.Since(start).String())
	}
	return firstErr
}
