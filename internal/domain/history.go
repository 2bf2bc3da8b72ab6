// Package domain defines the membership history model and the pure
// reconstruction, classification, and extraction logic over it.
package domain

import "time"

// EntryType discriminates the heterogeneous records returned by the member
// history endpoint.
type EntryType string

const (
	EntrySession    EntryType = "session"
	EntryMembership EntryType = "membership"
)

// Activity types observed inside history entries. Anything else is ignored.
const (
	ActivityFreezeStart       = "bought-membership-freezed"
	ActivityFreezeEnd         = "bought-membership-unfreezed"
	ActivityCancelledByMember = "session-booking-cancelled-by-member"
	ActivityCancelledByHost   = "session-booking-cancelled-by-host"
)

// TriggeredBy identifies the user behind an activity, when the upstream
// includes one.
type TriggeredBy struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ActivityPayload carries the refund metadata attached to cancellation
// activities. Other activity types leave it zero.
type ActivityPayload struct {
	RefundAmountInMoneyCredits float64 `json:"refundAmountInMoneyCredits"`
	RefundAmountInEventCredits float64 `json:"refundAmountInEventCredits"`
	IsMemberRefunded           bool    `json:"isMemberRefunded"`
}

// Activity is a single audit-trail event attached to a history entry. The
// upstream does not guarantee ordering; consumers must sort by CreatedAt.
type Activity struct {
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   int64           `json:"createdBy"`
	TriggeredBy *TriggeredBy    `json:"triggeredBy"`
	Payload     ActivityPayload `json:"payload"`
}

// HistoryEntry is one record of a member's activity log. The Type field
// selects which subset of fields the upstream populates: session entries
// carry session/booking/location fields, membership entries carry the
// purchased-membership fields. BoughtMembershipID links both shapes.
type HistoryEntry struct {
	Type               EntryType  `json:"type"`
	ID                 int64      `json:"id"`
	Timestamp          time.Time  `json:"timestamp"`
	MemberID           int64      `json:"memberId"`
	HostID             int64      `json:"hostId"`
	BoughtMembershipID int64      `json:"boughtMembershipId"`
	LocationID         int64      `json:"locationId"`
	LocationName       string     `json:"locationName"`
	Activities         []Activity `json:"activities"`

	// Membership entry fields.
	DiscountCode          string    `json:"discountCode"`
	MemberName            string    `json:"memberName"`
	MembershipName        string    `json:"membershipName"`
	MembershipID          int64     `json:"membershipId"`
	StartDate             time.Time `json:"startDate"`
	EndDate               time.Time `json:"endDate"`
	ClassesLeft           *int64    `json:"classesLeft"`
	UsageLimitForSessions *int64    `json:"usageLimitForSessions"`
	CreatedAt             time.Time `json:"createdAt"`
	CreatedByUserID       int64     `json:"createdByUserId"`
	CreatedByUserName     string    `json:"createdByUserName"`
	IsFreezed             *bool     `json:"isFreezed"`
	IsVoided              *bool     `json:"isVoided"`
	MoneyLeft             *float64  `json:"moneyLeft"`
	PaymentTransactionID  int64     `json:"paymentTransactionId"`
	SaleItemID            int64     `json:"saleItemId"`
	MembershipType        string    `json:"membershipType"`
	PaymentMethod         string    `json:"paymentMethod"`
	PaymentSource         string    `json:"paymentSource"`
	AmountPaid            *float64  `json:"paid"`

	// Session entry fields.
	SessionID              int64     `json:"sessionId"`
	SessionName            string    `json:"sessionName"`
	StartsAt               time.Time `json:"startsAt"`
	BookingID              int64     `json:"bookingId"`
	TeacherID              int64     `json:"teacherId"`
	TeacherName            string    `json:"teacherName"`
	IsLateCancelled        *bool     `json:"isLateCancelled"`
	IsCancelledAfterCutOff *bool     `json:"isCancelledAfterCutOff"`
	PayingMemberName       string    `json:"payingMemberName"`
}
