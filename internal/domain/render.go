package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// displayTimeLayout matches the sheet's day-first timestamp convention.
const displayTimeLayout = "02/01/2006 15:04"

// Renderer formats records for the output boundary (CSV, JSON, Sheets).
// Internally everything stays time.Time in UTC; only here do values become
// display strings in the configured timezone, with "-" standing in for
// absent values.
type Renderer struct {
	loc *time.Location
}

// NewRenderer resolves the display timezone by IANA name.
func NewRenderer(timezone string) (*Renderer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load display timezone %q: %w", timezone, err)
	}
	return &Renderer{loc: loc}, nil
}

// FormatTime renders a timestamp in the display timezone, "-" when unset.
func (r *Renderer) FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(r.loc).Format(displayTimeLayout)
}

// RecordRow is the display-ready projection of a MembershipRecord. The JSON
// field names are the contract with the table viewer's data.json.
type RecordRow struct {
	Timestamp             string `json:"timestamp"`
	HistoryType           string `json:"historyType"`
	HistoryID             string `json:"historyId"`
	DiscountCode          string `json:"discountCode"`
	MemberName            string `json:"memberName"`
	MembershipName        string `json:"membershipName"`
	MembershipID          string `json:"membershipId"`
	MemberID              string `json:"memberId"`
	BoughtMembershipID    string `json:"boughtMembershipId"`
	HostID                string `json:"hostId"`
	StartDate             string `json:"startDate"`
	EndDate               string `json:"endDate"`
	ClassesLeft           string `json:"classesLeft"`
	UsageLimitForSessions string `json:"usageLimitForSessions"`
	CreatedAt             string `json:"createdAt"`
	CreatedByUserID       string `json:"createdByUserId"`
	CreatedByUserName     string `json:"createdByUserName"`
	IsFreezed             string `json:"isFreezed"`
	IsVoided              string `json:"isVoided"`
	MoneyLeft             string `json:"moneyLeft"`
	PaymentTransactionID  string `json:"paymentTransactionId"`
	SaleItemID            string `json:"saleItemId"`
	MembershipType        string `json:"membershipType"`
	PaymentMethod         string `json:"paymentMethod"`
	PaymentSource         string `json:"paymentSource"`
	AmountPaid            string `json:"amountPaid"`
	SessionsAttended      int    `json:"sessionsAttended"`
	LocationID            string `json:"locationId"`
	LocationName          string `json:"locationName"`
	FreezeAttempts        int    `json:"freezeAttempts"`
	FrozenDays            int    `json:"frozenDays"`
	PermittedAttempts     int    `json:"permittedFreezeAttempts"`
	PermittedDays         int    `json:"permittedFreezeDays"`
	Status                string `json:"status"`
	FreezeStartDate       string `json:"freezeStartDate"`
	FreezeEndDate         string `json:"freezeEndDate"`
	AllFreezePairs        string `json:"allFreezePairs"`
}

// Row projects a MembershipRecord into its display form.
func (r *Renderer) Row(rec MembershipRecord) RecordRow {
	return RecordRow{
		Timestamp:             r.FormatTime(rec.Timestamp),
		HistoryType:           string(EntryMembership),
		HistoryID:             dashInt(rec.HistoryID),
		DiscountCode:          dash(rec.DiscountCode),
		MemberName:            dash(rec.MemberName),
		MembershipName:        dash(rec.MembershipName),
		MembershipID:          dashInt(rec.MembershipID),
		MemberID:              dashInt(rec.MemberID),
		BoughtMembershipID:    dashInt(rec.BoughtMembershipID),
		HostID:                dash(rec.HostID),
		StartDate:             r.FormatTime(rec.StartDate),
		EndDate:               r.FormatTime(rec.EndDate),
		ClassesLeft:           dashIntPtr(rec.ClassesLeft),
		UsageLimitForSessions: dashIntPtr(rec.UsageLimit),
		CreatedAt:             r.FormatTime(rec.CreatedAt),
		CreatedByUserID:       dashInt(rec.CreatedByUserID),
		CreatedByUserName:     dash(rec.CreatedByUserName),
		IsFreezed:             dashBoolPtr(rec.IsFreezed),
		IsVoided:              dashBoolPtr(rec.IsVoided),
		MoneyLeft:             dashFloatPtr(rec.MoneyLeft),
		PaymentTransactionID:  dashInt(rec.PaymentTxnID),
		SaleItemID:            dashInt(rec.SaleItemID),
		MembershipType:        dash(rec.MembershipType),
		PaymentMethod:         dash(rec.PaymentMethod),
		PaymentSource:         dash(rec.PaymentSource),
		AmountPaid:            dashFloatPtr(rec.AmountPaid),
		SessionsAttended:      rec.SessionsAttended,
		LocationID:            dashInt(rec.LocationID),
		LocationName:          dash(rec.LocationName),
		FreezeAttempts:        rec.FreezeAttempts,
		FrozenDays:            rec.FrozenDays,
		PermittedAttempts:     rec.PermittedAttempts,
		PermittedDays:         rec.PermittedDays,
		Status:                string(rec.Status),
		FreezeStartDate:       zeroEmpty(r, rec.FreezeStartDate),
		FreezeEndDate:         zeroEmpty(r, rec.FreezeEndDate),
		AllFreezePairs:        r.FreezePairs(rec.Intervals),
	}
}

// FreezePairs renders the interval list as the 1-indexed human-readable
// summary used in the sheet: "Attempt 1: <start> to <end> | Attempt 2: ...".
func (r *Renderer) FreezePairs(intervals []FreezeInterval) string {
	if len(intervals) == 0 {
		return ""
	}
	parts := make([]string, 0, len(intervals))
	for i, interval := range intervals {
		end := "Ongoing"
		if !interval.Ongoing {
			end = r.FormatTime(interval.End)
		}
		parts = append(parts, fmt.Sprintf("Attempt %d: %s to %s", i+1, r.FormatTime(interval.Start), end))
	}
	return strings.Join(parts, " | ")
}

// CancellationRow is the display-ready projection of a CancellationRecord.
type CancellationRow struct {
	MemberID               string `json:"memberId"`
	MemberName             string `json:"memberName"`
	HostID                 string `json:"hostId"`
	SessionID              string `json:"sessionId"`
	SessionName            string `json:"sessionName"`
	SessionStartsAt        string `json:"sessionStartsAt"`
	BookingID              string `json:"bookingId"`
	CancellationType       string `json:"cancellationType"`
	CancelledAt            string `json:"cancelledAt"`
	CancelledByUserID      string `json:"cancelledByUserId"`
	CancelledByUserName    string `json:"cancelledByUserName"`
	LocationID             string `json:"locationId"`
	LocationName           string `json:"locationName"`
	TeacherID              string `json:"teacherId"`
	TeacherName            string `json:"teacherName"`
	IsLateCancelled        string `json:"isLateCancelled"`
	IsCancelledAfterCutOff string `json:"isCancelledAfterCutOff"`
	MembershipID           string `json:"membershipId"`
	MembershipName         string `json:"membershipName"`
	BoughtMembershipID     string `json:"boughtMembershipId"`
	PaymentMethod          string `json:"paymentMethod"`
	PaymentSource          string `json:"paymentSource"`
	RefundMoneyCredits     string `json:"refundAmountInMoneyCredits"`
	RefundEventCredits     string `json:"refundAmountInEventCredits"`
	IsMemberRefunded       string `json:"isMemberRefunded"`
}

// CancellationRow projects a CancellationRecord into its display form.
func (r *Renderer) CancellationRow(rec CancellationRecord) CancellationRow {
	return CancellationRow{
		MemberID:               dashInt(rec.MemberID),
		MemberName:             dash(rec.MemberName),
		HostID:                 dash(rec.HostID),
		SessionID:              dashInt(rec.SessionID),
		SessionName:            dash(rec.SessionName),
		SessionStartsAt:        r.FormatTime(rec.SessionStartsAt),
		BookingID:              dashInt(rec.BookingID),
		CancellationType:       dash(rec.CancellationType),
		CancelledAt:            r.FormatTime(rec.CancelledAt),
		CancelledByUserID:      dashInt(rec.CancelledByUserID),
		CancelledByUserName:    dash(strings.TrimSpace(rec.CancelledByUserName)),
		LocationID:             dashInt(rec.LocationID),
		LocationName:           dash(rec.LocationName),
		TeacherID:              dashInt(rec.TeacherID),
		TeacherName:            dash(rec.TeacherName),
		IsLateCancelled:        dashBoolPtr(rec.IsLateCancelled),
		IsCancelledAfterCutOff: dashBoolPtr(rec.IsCancelledAfterCutOff),
		MembershipID:           dashInt(rec.MembershipID),
		MembershipName:         dash(rec.MembershipName),
		BoughtMembershipID:     dashInt(rec.BoughtMembershipID),
		PaymentMethod:          dash(rec.PaymentMethod),
		PaymentSource:          dash(rec.PaymentSource),
		RefundMoneyCredits:     strconv.FormatFloat(rec.RefundMoneyCredits, 'f', -1, 64),
		RefundEventCredits:     strconv.FormatFloat(rec.RefundEventCredits, 'f', -1, 64),
		IsMemberRefunded:       strconv.FormatBool(rec.IsMemberRefunded),
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dashInt(v int64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func dashIntPtr(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func dashFloatPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func dashBoolPtr(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}

// zeroEmpty renders a zero time as empty rather than "-": the sheet leaves
// freeze start/end blank for memberships that never froze.
func zeroEmpty(r *Renderer, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return r.FormatTime(t)
}
