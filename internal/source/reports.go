package source

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/momence"
	"github.com/Jimmeey2323/freeze-history/internal/workitem"
)

// Reporter runs async session-bookings reports.
type Reporter interface {
	TriggerReport(ctx context.Context, hostID string, window momence.ReportWindow) (int64, error)
	PollReport(ctx context.Context, hostID string, runID int64, interval time.Duration, maxAttempts int) (*momence.ReportStatus, error)
}

// ReportSource derives work items from session-bookings reports, one per
// configured host. It is the fallback when the checkins sheet is unavailable.
type ReportSource struct {
	reporter     Reporter
	hostIDs      []string
	window       momence.ReportWindow
	pollInterval time.Duration
	pollAttempts int
	log          *logging.Logger
}

// NewReportSource constructs the source. The window covers the span of
// activity the report should return members for.
func NewReportSource(reporter Reporter, hostIDs []string, window momence.ReportWindow, pollInterval time.Duration, pollAttempts int, log *logging.Logger) *ReportSource {
	return &ReportSource{
		reporter:     reporter,
		hostIDs:      hostIDs,
		window:       window,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
		log:          log,
	}
}

// Pairs triggers a report per host concurrently, polls each to completion and
// consolidates the booked-member IDs into work items. A host whose report
// fails only drops that host's pairs; the error is logged, not propagated, so
// one bad host does not sink the whole fallback.
func (s *ReportSource) Pairs(ctx context.Context) ([]workitem.WorkItem, error) {
	var (
		mu  sync.Mutex
		raw []workitem.WorkItem
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, hostID := range s.hostIDs {
		hostID := hostID
		g.Go(func() error {
			items, err := s.hostPairs(gctx, hostID)
			if err != nil {
				s.log.Error("report fallback failed for host", "host_id", hostID, "error", err)
				return nil
			}
			mu.Lock()
			raw = append(raw, items...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := workitem.Build(raw)
	s.log.Info("report fallback consolidated", "hosts", len(s.hostIDs), "unique_pairs", len(items))
	return items, nil
}

func (s *ReportSource) hostPairs(ctx context.Context, hostID string) ([]workitem.WorkItem, error) {
	runID, err := s.reporter.TriggerReport(ctx, hostID, s.window)
	if err != nil {
		return nil, err
	}
	s.log.Info("report run triggered", "host_id", hostID, "report_run_id", runID)

	status, err := s.reporter.PollReport(ctx, hostID, runID, s.pollInterval, s.pollAttempts)
	if err != nil {
		return nil, err
	}

	items := make([]workitem.WorkItem, 0, len(status.Items()))
	for _, row := range status.Items() {
		if row.MemberID == 0 {
			continue
		}
		items = append(items, workitem.WorkItem{MemberID: row.MemberID, HostID: hostID})
	}
	return items, nil
}
