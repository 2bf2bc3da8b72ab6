package domain

import "time"

// FreezeEvent is a single freeze or unfreeze transition extracted from a
// membership entry's activities.
type FreezeEvent struct {
	Kind FreezeEventKind
	At   time.Time
}

// FreezeEventKind discriminates freeze-start from freeze-end transitions.
type FreezeEventKind int

const (
	FreezeStart FreezeEventKind = iota
	FreezeEnd
)

// FreezeInterval is one paired (or still-open) suspension window. Intervals
// for a single membership are non-overlapping and ordered; at most one is
// ongoing and it is always the last.
type FreezeInterval struct {
	Start   time.Time
	End     time.Time // zero when Ongoing
	Ongoing bool
	Days    int // ceiling of elapsed whole days; ongoing measured at "now"
}

// MembershipRecord aggregates one purchased membership across the member's
// entire history: attendance, location attribution, and the reconstructed
// freeze picture. Policy fields are filled by the classifier.
type MembershipRecord struct {
	Timestamp          time.Time
	HistoryID          int64
	DiscountCode       string
	MemberName         string
	MembershipName     string
	MembershipID       int64
	MemberID           int64
	BoughtMembershipID int64
	HostID             string
	StartDate          time.Time
	EndDate            time.Time
	ClassesLeft        *int64
	UsageLimit         *int64
	CreatedAt          time.Time
	CreatedByUserID    int64
	CreatedByUserName  string
	IsFreezed          *bool
	IsVoided           *bool
	MoneyLeft          *float64
	PaymentTxnID       int64
	SaleItemID         int64
	MembershipType     string
	PaymentMethod      string
	PaymentSource      string
	AmountPaid         *float64

	SessionsAttended int
	LocationID       int64
	LocationName     string

	FreezeAttempts  int
	FrozenDays      int
	FreezeStartDate time.Time // first freeze-start ever seen
	FreezeEndDate   time.Time // last freeze-end ever seen; zero if none closed
	Intervals       []FreezeInterval

	PermittedAttempts int
	PermittedDays     int
	Status            Status
}

// CancellationRecord is one discrete session-booking cancellation event. It
// carries the activity payload verbatim and is not linked to freeze data.
type CancellationRecord struct {
	MemberID               int64
	MemberName             string
	HostID                 string
	SessionID              int64
	SessionName            string
	SessionStartsAt        time.Time
	BookingID              int64
	CancellationType       string
	CancelledAt            time.Time
	CancelledByUserID      int64
	CancelledByUserName    string
	LocationID             int64
	LocationName           string
	TeacherID              int64
	TeacherName            string
	IsLateCancelled        *bool
	IsCancelledAfterCutOff *bool
	MembershipID           int64
	MembershipName         string
	BoughtMembershipID     int64
	PaymentMethod          string
	PaymentSource          string
	RefundMoneyCredits     float64
	RefundEventCredits     float64
	IsMemberRefunded       bool
}
