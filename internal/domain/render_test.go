package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("Asia/Kolkata")
	require.NoError(t, err)
	return r
}

func TestFormatTimeDisplaysInDisplayZone(t *testing.T) {
	r := newTestRenderer(t)

	// 09:30 UTC is 15:00 IST (+05:30), rendered day-first.
	utc := time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)
	require.Equal(t, "04/03/2026 15:00", r.FormatTime(utc))
	require.Equal(t, "-", r.FormatTime(time.Time{}))
}

func TestFreezePairsRendering(t *testing.T) {
	r := newTestRenderer(t)

	start1 := time.Date(2026, time.January, 1, 4, 30, 0, 0, time.UTC) // 10:00 IST
	end1 := time.Date(2026, time.January, 5, 4, 30, 0, 0, time.UTC)
	start2 := time.Date(2026, time.February, 1, 4, 30, 0, 0, time.UTC)

	got := r.FreezePairs([]FreezeInterval{
		{Start: start1, End: end1},
		{Start: start2, Ongoing: true},
	})
	require.Equal(t,
		"Attempt 1: 01/01/2026 10:00 to 05/01/2026 10:00 | Attempt 2: 01/02/2026 10:00 to Ongoing",
		got)

	require.Equal(t, "", r.FreezePairs(nil))
}

func TestRowRendersAbsentValuesAsDash(t *testing.T) {
	r := newTestRenderer(t)

	row := r.Row(MembershipRecord{
		MemberID:       101,
		MemberName:     "Asha Rao",
		MembershipName: "Studio 8 Class Package",
		Status:         StatusWithinLimits,
	})

	require.Equal(t, "101", row.MemberID)
	require.Equal(t, "Asha Rao", row.MemberName)
	require.Equal(t, "-", row.DiscountCode)
	require.Equal(t, "-", row.ClassesLeft)
	require.Equal(t, "-", row.IsFreezed)
	require.Equal(t, "-", row.StartDate)
	require.Equal(t, "membership", row.HistoryType)
	require.Equal(t, "Within Limits", row.Status)
	// Never-frozen memberships leave the freeze dates blank, not dashed.
	require.Equal(t, "", row.FreezeStartDate)
	require.Equal(t, "", row.FreezeEndDate)
	require.Equal(t, "", row.AllFreezePairs)
}

func TestRowRendersPointerValues(t *testing.T) {
	r := newTestRenderer(t)

	classes := int64(5)
	frozen := true
	money := 1250.5
	row := r.Row(MembershipRecord{
		ClassesLeft: &classes,
		IsFreezed:   &frozen,
		MoneyLeft:   &money,
	})
	require.Equal(t, "5", row.ClassesLeft)
	require.Equal(t, "true", row.IsFreezed)
	require.Equal(t, "1250.5", row.MoneyLeft)
}

func TestNewRendererRejectsUnknownZone(t *testing.T) {
	_, err := NewRenderer("Not/AZone")
	require.Error(t, err)
}
