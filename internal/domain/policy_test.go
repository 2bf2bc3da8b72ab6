package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	rule := Rule{MaxAttempts: 1, MaxDays: 30}

	// At the limits is still within them.
	require.Equal(t, StatusWithinLimits, Classify(1, 30, rule))
	require.Equal(t, StatusWithinLimits, Classify(0, 0, rule))

	// Either dimension over the line exceeds.
	require.Equal(t, StatusExceeded, Classify(2, 30, rule))
	require.Equal(t, StatusExceeded, Classify(1, 31, rule))
	require.Equal(t, StatusExceeded, Classify(2, 31, rule))
}

func TestUnknownPlanGetsZeroTolerance(t *testing.T) {
	table := DefaultPolicy()
	rule := table.Rule("Mystery Plan")
	require.Equal(t, Rule{}, rule)

	// Any freeze usage at all exceeds an unknown plan's allowance.
	require.Equal(t, StatusExceeded, Classify(1, 0, rule))
	require.Equal(t, StatusExceeded, Classify(0, 1, rule))
	require.Equal(t, StatusWithinLimits, Classify(0, 0, rule))
}

func TestApplyStampsAllowanceAndStatus(t *testing.T) {
	table := DefaultPolicy()

	rec := MembershipRecord{
		MembershipName: "Studio 3 Month Unlimited Membership",
		FreezeAttempts: 2,
		FrozenDays:     45,
	}
	table.Apply(&rec)
	require.Equal(t, 3, rec.PermittedAttempts)
	require.Equal(t, 90, rec.PermittedDays)
	require.Equal(t, StatusWithinLimits, rec.Status)

	rec.FrozenDays = 91
	table.Apply(&rec)
	require.Equal(t, StatusExceeded, rec.Status)
}

func TestDefaultPolicyCoversKnownPlans(t *testing.T) {
	table := DefaultPolicy()
	require.Len(t, table, 16)
	require.Equal(t, Rule{MaxAttempts: 12, MaxDays: 360}, table.Rule("Studio Annual Unlimited Membership"))
	require.Equal(t, Rule{MaxAttempts: 1, MaxDays: 30}, table.Rule("Studio 8 Class Package"))
}
