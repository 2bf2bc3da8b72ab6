package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/observability"
	"github.com/Jimmeey2323/freeze-history/internal/scheduler"
	"github.com/Jimmeey2323/freeze-history/internal/sink"
	"github.com/Jimmeey2323/freeze-history/internal/source"
)

// ErrNoWorkItems is returned when no (member, host) pairs could be sourced.
var ErrNoWorkItems = fmt.Errorf("no work items to process")

// Writer receives the completed output; satisfied by sink.Fanout.
type Writer interface {
	Write(ctx context.Context, out sink.Output) error
}

// Summary describes one completed pipeline run.
type Summary struct {
	RunID         string        `json:"runId"`
	StartedAt     time.Time     `json:"startedAt"`
	FinishedAt    time.Time     `json:"finishedAt"`
	Elapsed       time.Duration `json:"elapsed"`
	Pairs         int           `json:"pairs"`
	Fetched       int           `json:"fetched"`
	FailedFetches int           `json:"failedFetches"`
	Records       int           `json:"records"`
	Exceeded      int           `json:"exceeded"`
	Cancellations int           `json:"cancellations"`
	SinkDegraded  bool          `json:"sinkDegraded"`
}

// Result couples the summary with the produced data so callers (the HTTP
// API) can serve it without re-reading any sink.
type Result struct {
	Summary          Summary
	RecordRows       []domain.RecordRow
	CancellationRows []domain.CancellationRow
}

// Runner wires the full run: source pairs, fetch histories, reconstruct,
// classify, extract cancellations, render, deliver to sinks.
type Runner struct {
	source   source.PairSource
	sched    *scheduler.Scheduler
	policy   domain.PolicyTable
	renderer *domain.Renderer
	sinks    Writer
	log      *logging.Logger
	now      func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock overrides the runner's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner constructs a Runner.
func NewRunner(src source.PairSource, sched *scheduler.Scheduler, policy domain.PolicyTable, renderer *domain.Renderer, sinks Writer, log *logging.Logger, opts ...Option) *Runner {
	r := &Runner{
		source:   src,
		sched:    sched,
		policy:   policy,
		renderer: renderer,
		sinks:    sinks,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one full pipeline pass.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	started := r.now()
	log := r.log.With("run_id", runID)
	log.Info("pipeline run starting")

	items, err := r.source.Pairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("source work items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoWorkItems
	}
	log.Info("work items sourced", "pairs", len(items))

	results := r.sched.Run(ctx, items)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetched, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		fetched++
	}

	// The freeze and cancellation passes are independent derivations over
	// the same fetched histories, so they run concurrently.
	var (
		records       []domain.MembershipRecord
		cancellations []domain.CancellationRecord
	)
	now := r.now()
	var g errgroup.Group
	g.Go(func() error {
		records = r.reconstructAll(results, now)
		return nil
	})
	g.Go(func() error {
		cancellations = extractAll(results)
		return nil
	})
	_ = g.Wait()

	exceeded := 0
	for _, rec := range records {
		if rec.Status == domain.StatusExceeded {
			exceeded++
		}
	}

	out := sink.Output{
		RunID:            runID,
		GeneratedAt:      now,
		Records:          records,
		Cancellations:    cancellations,
		RecordRows:       make([]domain.RecordRow, 0, len(records)),
		CancellationRows: make([]domain.CancellationRow, 0, len(cancellations)),
	}
	for _, rec := range records {
		out.RecordRows = append(out.RecordRows, r.renderer.Row(rec))
	}
	for _, c := range cancellations {
		out.CancellationRows = append(out.CancellationRows, r.renderer.CancellationRow(c))
	}

	sinkErr := r.sinks.Write(ctx, out)

	finished := r.now()
	summary := Summary{
		RunID:         runID,
		StartedAt:     started,
		FinishedAt:    finished,
		Elapsed:       finished.Sub(started),
		Pairs:         len(items),
		Fetched:       fetched,
		FailedFetches: failed,
		Records:       len(records),
		Exceeded:      exceeded,
		Cancellations: len(cancellations),
		SinkDegraded:  sinkErr != nil,
	}
	observability.RecordRunCompleted(finished, len(records), len(cancellations), exceeded)

	log.Info("pipeline run complete",
		"pairs", summary.Pairs,
		"fetched", summary.Fetched,
		"failed_fetches", summary.FailedFetches,
		"records", summary.Records,
		"exceeded", summary.Exceeded,
		"cancellations", summary.Cancellations,
		"elapsed", summary.Elapsed.String(),
		"sink_degraded", summary.SinkDegraded,
	)

	return &Result{
		Summary:          summary,
		RecordRows:       out.RecordRows,
		CancellationRows: out.CancellationRows,
	}, nil
}

// reconstructAll derives classified membership records from every
// successfully fetched history.
func (r *Runner) reconstructAll(results []scheduler.ItemResult, now time.Time) []domain.MembershipRecord {
	var records []domain.MembershipRecord
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		recs := domain.Reconstruct(res.Entries, now)
		for i := range recs {
			r.policy.Apply(&recs[i])
		}
		records = append(records, recs...)
	}
	return records
}

// extractAll derives cancellation events from every successfully fetched
// history, falling back to the work item's identity when the log omits it.
func extractAll(results []scheduler.ItemResult) []domain.CancellationRecord {
	var out []domain.CancellationRecord
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		out = append(out, domain.ExtractCancellations(res.Entries, res.Item.MemberID, res.Item.HostID)...)
	}
	return out
}
