// Package scheduler runs work items against the upstream in bounded
// concurrent batches with inter-group pacing.
package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/workitem"
)

// Fetcher is the single upstream operation the scheduler drives.
type Fetcher interface {
	FetchHistory(ctx context.Context, item workitem.WorkItem) ([]domain.HistoryEntry, error)
}

// ItemResult pairs a work item with its fetch outcome. Exactly one of
// Entries/Err is meaningful.
type ItemResult struct {
	Item    workitem.WorkItem
	Entries []domain.HistoryEntry
	Err     error
}

// Config carries the two concurrency knobs and the pacing delay. Their
// product bounds the number of simultaneously outstanding requests; the
// delay between groups is what keeps the sustained rate under the
// upstream's limit (per-request backoff alone does not).
type Config struct {
	BatchSize         int
	ConcurrentBatches int
	InterGroupDelay   time.Duration
}

// Scheduler partitions work items into batches and runs groups of batches
// concurrently against a Fetcher.
type Scheduler struct {
	cfg     Config
	fetcher Fetcher
	log     *logging.Logger
}

// New constructs a Scheduler, applying the pipeline's default tuning for
// unset knobs.
func New(cfg Config, fetcher Fetcher, log *logging.Logger) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.ConcurrentBatches <= 0 {
		cfg.ConcurrentBatches = 2
	}
	return &Scheduler{cfg: cfg, fetcher: fetcher, log: log}
}

// Run fetches every item and returns one result per item in traversal
// order. Item failures are isolated: they surface in their ItemResult and in
// the per-batch counts, never as an error from Run. Cancellation is honored
// between groups; batches already dispatched run to completion.
func (s *Scheduler) Run(ctx context.Context, items []workitem.WorkItem) []ItemResult {
	if len(items) == 0 {
		return nil
	}

	results := make([]ItemResult, len(items))
	groupSpan := s.cfg.BatchSize * s.cfg.ConcurrentBatches
	totalBatches := (len(items) + s.cfg.BatchSize - 1) / s.cfg.BatchSize

	for groupStart := 0; groupStart < len(items); groupStart += groupSpan {
		grp, grpCtx := errgroup.WithContext(ctx)

		for j := 0; j < s.cfg.ConcurrentBatches; j++ {
			batchStart := groupStart + j*s.cfg.BatchSize
			if batchStart >= len(items) {
				break
			}
			batchEnd := batchStart + s.cfg.BatchSize
			if batchEnd > len(items) {
				batchEnd = len(items)
			}
			batchIndex := batchStart/s.cfg.BatchSize + 1

			start, end := batchStart, batchEnd
			grp.Go(func() error {
				s.runBatch(grpCtx, items[start:end], results[start:end], batchIndex, totalBatches)
				return nil
			})
		}
		_ = grp.Wait()

		if groupStart+groupSpan >= len(items) {
			break
		}
		if ctx.Err() != nil {
			s.log.Warn("scheduler cancelled between groups", "completed_items", groupStart+groupSpan)
			break
		}
		if err := sleepCtx(ctx, s.cfg.InterGroupDelay); err != nil {
			break
		}
	}

	return results
}

// runBatch dispatches every item in the batch concurrently and joins them,
// then reports the batch's success/failure split.
func (s *Scheduler) runBatch(ctx context.Context, items []workitem.WorkItem, out []ItemResult, batchIndex, totalBatches int) {
	started := time.Now()

	var grp errgroup.Group
	for i := range items {
		i := i
		grp.Go(func() error {
			entries, err := s.fetcher.FetchHistory(ctx, items[i])
			out[i] = ItemResult{Item: items[i], Entries: entries, Err: err}
			return nil
		})
	}
	_ = grp.Wait()

	succeeded, failed := 0, 0
	for i := range out {
		if out[i].Err != nil {
			failed++
		} else {
			succeeded++
		}
	}

	recordBatch(succeeded, failed, time.Since(started))
	s.log.Info("batch complete",
		"batch", batchIndex,
		"total_batches", totalBatches,
		"succeeded", succeeded,
		"failed", failed,
		"elapsed", time.Since(started).String(),
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
