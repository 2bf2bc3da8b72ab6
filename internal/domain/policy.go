package domain

// Status classifies a membership against its plan's freeze allowance.
type Status string

const (
	StatusWithinLimits Status = "Within Limits"
	StatusExceeded     Status = "Exceeded"
)

// Rule is the freeze allowance for one membership plan.
type Rule struct {
	MaxAttempts int
	MaxDays     int
}

// PolicyTable maps membership plan names to their freeze allowance. Plans
// not present in the table get a zero allowance.
type PolicyTable map[string]Rule

// DefaultPolicy returns the studio's plan allowances.
func DefaultPolicy() PolicyTable {
	return PolicyTable{
		"Studio 8 Class Package":                               {MaxAttempts: 1, MaxDays: 30},
		"Studio 12 Class Package":                              {MaxAttempts: 1, MaxDays: 30},
		"Studio 1 Month Unlimited Membership":                  {MaxAttempts: 1, MaxDays: 30},
		"Studio 3 Month Unlimited Membership":                  {MaxAttempts: 3, MaxDays: 90},
		"Studio 6 Month Unlimited Membership":                  {MaxAttempts: 6, MaxDays: 180},
		"Studio Annual Unlimited Membership":                   {MaxAttempts: 12, MaxDays: 360},
		"Studio 3 Month U/L Monthly Installment":               {MaxAttempts: 1, MaxDays: 30},
		"Studio 20 Single Class Pack":                          {MaxAttempts: 3, MaxDays: 90},
		"Studio 10 Single Class Pack":                          {MaxAttempts: 2, MaxDays: 60},
		"Studio 30 Single Class Pack":                          {MaxAttempts: 3, MaxDays: 90},
		"Limited Edition : 57 Class Pack":                      {MaxAttempts: 6, MaxDays: 180},
		"VIP ALL ACCESS - Studio 1 Month Unlimited Membership": {MaxAttempts: 1, MaxDays: 30},
		"Studio Private Class X 10":                            {MaxAttempts: 1, MaxDays: 30},
		"V'Day Special: Shared Studio 20 Single Class":         {MaxAttempts: 3, MaxDays: 90},
		"V'Day Special: Shared Studio 8 Class Package":         {MaxAttempts: 1, MaxDays: 30},
		"Studio 30 Private Class Package":                      {MaxAttempts: 3, MaxDays: 90},
	}
}

// Rule looks up the allowance for a plan name, defaulting to zero tolerance
// for unknown plans.
func (t PolicyTable) Rule(planName string) Rule {
	if rule, ok := t[planName]; ok {
		return rule
	}
	return Rule{}
}

// Classify compares reconstructed freeze usage against a rule. Exceeding
// either the attempt count or the day total exceeds the plan.
func Classify(freezeAttempts, frozenDays int, rule Rule) Status {
	if freezeAttempts > rule.MaxAttempts || frozenDays > rule.MaxDays {
		return StatusExceeded
	}
	return StatusWithinLimits
}

// Apply stamps the record with its plan's allowance and resulting status.
func (t PolicyTable) Apply(rec *MembershipRecord) {
	rule := t.Rule(rec.MembershipName)
	rec.PermittedAttempts = rule.MaxAttempts
	rec.PermittedDays = rule.MaxDays
	rec.Status = Classify(rec.FreezeAttempts, rec.FrozenDays, rule)
}
