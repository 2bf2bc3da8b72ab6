package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 10, 0, 0, 0, time.UTC)
}

func membershipEntry(memberID, boughtID int64, activities ...Activity) HistoryEntry {
	return HistoryEntry{
		Type:               EntryMembership,
		ID:                 boughtID * 10,
		MemberID:           memberID,
		HostID:             13752,
		BoughtMembershipID: boughtID,
		MemberName:         "Asha Rao",
		MembershipName:     "Studio 12 Month Unlimited",
		Activities:         activities,
	}
}

func freeze(at time.Time) Activity {
	return Activity{Type: ActivityFreezeStart, CreatedAt: at}
}

func unfreeze(at time.Time) Activity {
	return Activity{Type: ActivityFreezeEnd, CreatedAt: at}
}

func TestReconstructPairsIntervalsInOrder(t *testing.T) {
	entries := []HistoryEntry{
		membershipEntry(101, 9001,
			// Deliberately shuffled; pairing must sort by time first.
			unfreeze(day(5)),
			freeze(day(20)),
			freeze(day(1)),
			unfreeze(day(23)),
			freeze(day(10)),
			unfreeze(day(12)),
		),
	}

	records := Reconstruct(entries, testNow)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, 3, rec.FreezeAttempts)
	require.Len(t, rec.Intervals, 3)
	require.Equal(t, day(1), rec.Intervals[0].Start)
	require.Equal(t, day(5), rec.Intervals[0].End)
	require.Equal(t, day(10), rec.Intervals[1].Start)
	require.Equal(t, day(20), rec.Intervals[2].Start)
	require.Equal(t, 4+2+3, rec.FrozenDays)
	require.Equal(t, day(1), rec.FreezeStartDate)
	require.Equal(t, day(23), rec.FreezeEndDate)
	for _, interval := range rec.Intervals {
		require.False(t, interval.Ongoing)
	}
}

func TestReconstructOngoingFreezeMeasuredAtNow(t *testing.T) {
	start := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	entries := []HistoryEntry{membershipEntry(101, 9001, freeze(start))}

	records := Reconstruct(entries, testNow)
	require.Len(t, records, 1)

	rec := records[0]
	require.Len(t, rec.Intervals, 1)
	require.True(t, rec.Intervals[0].Ongoing)
	require.Equal(t, 10, rec.FrozenDays)
	require.True(t, rec.FreezeEndDate.IsZero())

	// Re-running with the same now must yield identical aggregates.
	again := Reconstruct(entries, testNow)
	require.Equal(t, rec.FrozenDays, again[0].FrozenDays)
	require.Equal(t, rec.Intervals, again[0].Intervals)
}

func TestReconstructDoubleStartCountsAttemptsOnce(t *testing.T) {
	entries := []HistoryEntry{
		membershipEntry(101, 9001,
			freeze(day(1)),
			freeze(day(3)), // second start while already open
			unfreeze(day(6)),
		),
	}

	rec := Reconstruct(entries, testNow)[0]
	// Both starts count as attempts, but only one interval opens and the
	// first start stays authoritative for its duration.
	require.Equal(t, 2, rec.FreezeAttempts)
	require.Len(t, rec.Intervals, 1)
	require.Equal(t, day(1), rec.Intervals[0].Start)
	require.Equal(t, 5, rec.FrozenDays)
}

func TestReconstructDanglingEndDropped(t *testing.T) {
	entries := []HistoryEntry{
		membershipEntry(101, 9001,
			unfreeze(day(2)), // truncated log: end with no start
			freeze(day(5)),
			unfreeze(day(8)),
		),
	}

	rec := Reconstruct(entries, testNow)[0]
	require.Equal(t, 1, rec.FreezeAttempts)
	require.Len(t, rec.Intervals, 1)
	require.Equal(t, day(5), rec.Intervals[0].Start)
	require.Equal(t, 3, rec.FrozenDays)
}

func TestReconstructPartialDayRoundsUp(t *testing.T) {
	entries := []HistoryEntry{
		membershipEntry(101, 9001,
			freeze(day(1)),
			unfreeze(day(1).Add(90 * time.Minute)),
		),
	}

	rec := Reconstruct(entries, testNow)[0]
	require.Equal(t, 1, rec.FrozenDays)
}

func TestReconstructSessionAttendanceAndLocation(t *testing.T) {
	entries := []HistoryEntry{
		{Type: EntrySession, BoughtMembershipID: 9001, MemberID: 101},
		{Type: EntrySession, BoughtMembershipID: 9001, MemberID: 101, LocationID: 4, LocationName: "Kemps Corner"},
		{Type: EntrySession, BoughtMembershipID: 9001, MemberID: 101, LocationID: 5, LocationName: "Bandra"},
		membershipEntry(101, 9001),
	}

	rec := Reconstruct(entries, testNow)[0]
	require.Equal(t, 3, rec.SessionsAttended)
	// First session with a usable location wins.
	require.Equal(t, int64(4), rec.LocationID)
	require.Equal(t, "Kemps Corner", rec.LocationName)
}

func TestReconstructSkipsEntriesWithoutMembershipLinkage(t *testing.T) {
	entries := []HistoryEntry{
		{Type: EntryMembership, MemberID: 101}, // no boughtMembershipId
		membershipEntry(101, 9001),
	}

	records := Reconstruct(entries, testNow)
	require.Len(t, records, 1)
	require.Equal(t, int64(9001), records[0].BoughtMembershipID)
}

func TestReconstructFreezesScopedPerMembership(t *testing.T) {
	entries := []HistoryEntry{
		membershipEntry(101, 9001, freeze(day(1)), unfreeze(day(3))),
		membershipEntry(101, 9002, freeze(day(10)), unfreeze(day(15))),
	}

	records := Reconstruct(entries, testNow)
	require.Len(t, records, 2)

	byID := map[int64]MembershipRecord{}
	for _, rec := range records {
		byID[rec.BoughtMembershipID] = rec
	}
	require.Equal(t, 2, byID[9001].FrozenDays)
	require.Equal(t, 5, byID[9002].FrozenDays)
}

func TestReconstructEmptyHistory(t *testing.T) {
	require.Nil(t, Reconstruct(nil, testNow))
	require.Empty(t, Reconstruct([]HistoryEntry{{Type: EntrySession}}, testNow))
}

func TestCeilDays(t *testing.T) {
	require.Equal(t, 0, ceilDays(0))
	require.Equal(t, 0, ceilDays(-time.Hour))
	require.Equal(t, 1, ceilDays(time.Second))
	require.Equal(t, 1, ceilDays(24*time.Hour))
	require.Equal(t, 2, ceilDays(24*time.Hour+time.Minute))
}
