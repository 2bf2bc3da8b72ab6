// Package source produces the deduplicated work-item list the pipeline runs
// over, either from the checkins spreadsheet or from the async report
// fallback.
package source

import (
	"context"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/workitem"
)

// PairSource yields the (member, host) pairs to process.
type PairSource interface {
	Pairs(ctx context.Context) ([]workitem.WorkItem, error)
}

// Fallback chains a primary source with a backup. The backup is consulted
// only when the primary fails or yields nothing; a non-empty primary result,
// however small, is taken as-is.
type Fallback struct {
	primary PairSource
	backup  PairSource
	log     *logging.Logger
}

// NewFallback constructs the chain.
func NewFallback(primary, backup PairSource, log *logging.Logger) *Fallback {
	return &Fallback{primary: primary, backup: backup, log: log}
}

// Pairs implements PairSource.
func (f *Fallback) Pairs(ctx context.Context) ([]workitem.WorkItem, error) {
	pairs, err := f.primary.Pairs(ctx)
	if err == nil && len(pairs) > 0 {
		return pairs, nil
	}
	if err != nil {
		f.log.Warn("primary work-item source failed, falling back to async reports", "error", err.Error())
	} else {
		f.log.Warn("primary work-item source empty, falling back to async reports")
	}
	return f.backup.Pairs(ctx)
}
