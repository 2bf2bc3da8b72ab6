package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/scheduler"
	"github.com/Jimmeey2323/freeze-history/internal/sink"
	"github.com/Jimmeey2323/freeze-history/internal/workitem"
)

type stubSource struct {
	pairs []workitem.WorkItem
	err   error
}

func (s *stubSource) Pairs(ctx context.Context) ([]workitem.WorkItem, error) {
	return s.pairs, s.err
}

// stubFetcher returns a canned history per member and an error for members
// in failing.
type stubFetcher struct {
	histories map[int64][]domain.HistoryEntry
	failing   map[int64]error
}

func (f *stubFetcher) FetchHistory(ctx context.Context, item workitem.WorkItem) ([]domain.HistoryEntry, error) {
	if err, ok := f.failing[item.MemberID]; ok {
		return nil, err
	}
	return f.histories[item.MemberID], nil
}

type captureSink struct {
	out  sink.Output
	err  error
	hits int
}

func (c *captureSink) Write(ctx context.Context, out sink.Output) error {
	c.hits++
	c.out = out
	return c.err
}

func fixedClock() func() time.Time {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newTestRunner(t *testing.T, src *stubSource, fetcher *stubFetcher, out *captureSink) *Runner {
	t.Helper()
	log := logging.NewNop()
	sched := scheduler.New(scheduler.Config{BatchSize: 2, ConcurrentBatches: 2}, fetcher, log)
	renderer, err := domain.NewRenderer("Asia/Kolkata")
	require.NoError(t, err)
	return NewRunner(src, sched, domain.DefaultPolicy(), renderer, out, log, WithClock(fixedClock()))
}

func membershipHistory(memberID, boughtID int64, plan string, activities ...domain.Activity) []domain.HistoryEntry {
	return []domain.HistoryEntry{{
		Type:               domain.EntryMembership,
		MemberID:           memberID,
		HostID:             13752,
		BoughtMembershipID: boughtID,
		MembershipName:     plan,
		Activities:         activities,
	}}
}

func TestRunEndToEnd(t *testing.T) {
	frozen := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	src := &stubSource{pairs: []workitem.WorkItem{
		{MemberID: 101, HostID: "13752"},
		{MemberID: 202, HostID: "13752"},
		{MemberID: 303, HostID: "33905"},
	}}
	fetcher := &stubFetcher{
		histories: map[int64][]domain.HistoryEntry{
			// Two freezes against a one-freeze plan: Exceeded.
			101: membershipHistory(101, 9001, "Studio 8 Class Package",
				domain.Activity{Type: domain.ActivityFreezeStart, CreatedAt: frozen},
				domain.Activity{Type: domain.ActivityFreezeEnd, CreatedAt: frozen.AddDate(0, 0, 3)},
				domain.Activity{Type: domain.ActivityFreezeStart, CreatedAt: frozen.AddDate(0, 0, 10)},
				domain.Activity{Type: domain.ActivityFreezeEnd, CreatedAt: frozen.AddDate(0, 0, 12)},
			),
			202: append(membershipHistory(202, 9002, "Studio Annual Unlimited Membership"),
				domain.HistoryEntry{
					Type:     domain.EntrySession,
					MemberID: 202,
					Activities: []domain.Activity{{
						Type:      domain.ActivityCancelledByMember,
						CreatedAt: frozen,
					}},
				}),
		},
		failing: map[int64]error{303: errors.New("host gone")},
	}
	out := &captureSink{}

	result, err := newTestRunner(t, src, fetcher, out).Run(context.Background())
	require.NoError(t, err)

	summary := result.Summary
	require.Equal(t, 3, summary.Pairs)
	require.Equal(t, 2, summary.Fetched)
	require.Equal(t, 1, summary.FailedFetches)
	require.Equal(t, 2, summary.Records)
	require.Equal(t, 1, summary.Exceeded)
	require.Equal(t, 1, summary.Cancellations)
	require.False(t, summary.SinkDegraded)
	require.NotEmpty(t, summary.RunID)

	require.Equal(t, 1, out.hits)
	require.Equal(t, summary.RunID, out.out.RunID)
	require.Len(t, out.out.Records, 2)
	require.Len(t, out.out.RecordRows, 2)
	require.Len(t, out.out.CancellationRows, 1)

	statuses := map[int64]domain.Status{}
	for _, rec := range out.out.Records {
		statuses[rec.MemberID] = rec.Status
	}
	require.Equal(t, domain.StatusExceeded, statuses[101])
	require.Equal(t, domain.StatusWithinLimits, statuses[202])
}

func TestRunNoWorkItems(t *testing.T) {
	out := &captureSink{}
	runner := newTestRunner(t, &stubSource{}, &stubFetcher{}, out)

	_, err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrNoWorkItems)
	require.Zero(t, out.hits)
}

func TestRunSourceFailurePropagates(t *testing.T) {
	runner := newTestRunner(t, &stubSource{err: errors.New("no sheet")}, &stubFetcher{}, &captureSink{})
	_, err := runner.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no sheet")
}

func TestRunSinkFailureDegradesButCompletes(t *testing.T) {
	src := &stubSource{pairs: []workitem.WorkItem{{MemberID: 101, HostID: "13752"}}}
	fetcher := &stubFetcher{histories: map[int64][]domain.HistoryEntry{
		101: membershipHistory(101, 9001, "Studio 8 Class Package"),
	}}
	out := &captureSink{err: errors.New("disk full")}

	result, err := newTestRunner(t, src, fetcher, out).Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Summary.SinkDegraded)
	require.Equal(t, 1, result.Summary.Records)
}
