package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/workitem"
)

// stubFetcher fails the members listed in failing and records peak
// concurrency across calls.
type stubFetcher struct {
	failing map[int64]error
	delay   time.Duration

	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int32
}

func (f *stubFetcher) FetchHistory(ctx context.Context, item workitem.WorkItem) ([]domain.HistoryEntry, error) {
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err, ok := f.failing[item.MemberID]; ok {
		return nil, err
	}
	return []domain.HistoryEntry{{Type: domain.EntryMembership, MemberID: item.MemberID, BoughtMembershipID: item.MemberID}}, nil
}

func makeItems(n int) []workitem.WorkItem {
	items := make([]workitem.WorkItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, workitem.WorkItem{MemberID: int64(i), HostID: fmt.Sprintf("h%d", i%2)})
	}
	return items
}

func TestRunReturnsResultsInOrder(t *testing.T) {
	fetcher := &stubFetcher{}
	sched := New(Config{BatchSize: 3, ConcurrentBatches: 2}, fetcher, logging.NewNop())

	items := makeItems(10)
	results := sched.Run(context.Background(), items)

	require.Len(t, results, 10)
	for i, res := range results {
		require.Equal(t, items[i], res.Item)
		require.NoError(t, res.Err)
		require.Len(t, res.Entries, 1)
	}
	require.Equal(t, int32(10), atomic.LoadInt32(&fetcher.calls))
}

func TestRunIsolatesItemFailures(t *testing.T) {
	boom := errors.New("upstream exploded")
	fetcher := &stubFetcher{failing: map[int64]error{2: boom, 5: boom}}
	sched := New(Config{BatchSize: 2, ConcurrentBatches: 2}, fetcher, logging.NewNop())

	results := sched.Run(context.Background(), makeItems(6))

	require.Len(t, results, 6)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			require.ErrorIs(t, res.Err, boom)
			continue
		}
		require.NotEmpty(t, res.Entries)
	}
	require.Equal(t, 2, failed)
}

func TestRunBoundsConcurrency(t *testing.T) {
	fetcher := &stubFetcher{delay: 20 * time.Millisecond}
	sched := New(Config{BatchSize: 2, ConcurrentBatches: 2}, fetcher, logging.NewNop())

	sched.Run(context.Background(), makeItems(12))

	// At most batchSize * concurrentBatches requests may be outstanding.
	require.LessOrEqual(t, fetcher.peak, 4)
	require.Greater(t, fetcher.peak, 1)
}

func TestRunHonorsCancellationBetweenGroups(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &cancellingFetcher{cancel: cancel}
	sched := New(Config{BatchSize: 2, ConcurrentBatches: 1, InterGroupDelay: time.Millisecond}, fetcher, logging.NewNop())

	results := sched.Run(ctx, makeItems(8))

	// The first group ran; later groups were skipped, leaving zero-value
	// results for their items.
	require.Len(t, results, 8)
	require.NotZero(t, results[0].Item.MemberID)
	require.Zero(t, results[7].Item.MemberID)
	require.LessOrEqual(t, int(atomic.LoadInt32(&fetcher.calls)), 2)
}

// cancellingFetcher cancels the run context on the first call.
type cancellingFetcher struct {
	cancel context.CancelFunc
	calls  int32
}

func (f *cancellingFetcher) FetchHistory(ctx context.Context, item workitem.WorkItem) ([]domain.HistoryEntry, error) {
	atomic.AddInt32(&f.calls, 1)
	f.cancel()
	return nil, ctx.Err()
}

func TestRunEmptyInput(t *testing.T) {
	sched := New(Config{}, &stubFetcher{}, logging.NewNop())
	require.Nil(t, sched.Run(context.Background(), nil))
}

func TestNewAppliesDefaults(t *testing.T) {
	sched := New(Config{}, &stubFetcher{}, logging.NewNop())
	require.Equal(t, 50, sched.cfg.BatchSize)
	require.Equal(t, 2, sched.cfg.ConcurrentBatches)
}
