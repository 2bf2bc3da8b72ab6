package sink

import (
	"strconv"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
)

// csvHeader is the column set of the freezes CSV export, a deliberate subset
// of the sheet columns.
var csvHeader = []string{
	"Timestamp", "History Type", "History Id", "Discount Code",
	"Member Name", "Membership Name", "Membership Id", "Member Id",
	"Bought Membership Id", "Host Id", "Start Date", "End Date",
	"Classes Left", "Usage Limit For Sessions", "Created At",
	"Payment Method", "Payment Source", "Amount Paid", "Sessions Attended",
	"Freeze Attempts", "Frozen Days", "Permitted Freeze Attempts",
	"Permitted Freeze Days", "Status", "All Freeze Attempt Pairs",
}

func csvRow(r domain.RecordRow) []string {
	return []string{
		r.Timestamp, r.HistoryType, r.HistoryID, r.DiscountCode,
		r.MemberName, r.MembershipName, r.MembershipID, r.MemberID,
		r.BoughtMembershipID, r.HostID, r.StartDate, r.EndDate,
		r.ClassesLeft, r.UsageLimitForSessions, r.CreatedAt,
		r.PaymentMethod, r.PaymentSource, r.AmountPaid,
		strconv.Itoa(r.SessionsAttended),
		strconv.Itoa(r.FreezeAttempts), strconv.Itoa(r.FrozenDays),
		strconv.Itoa(r.PermittedAttempts), strconv.Itoa(r.PermittedDays),
		r.Status, r.AllFreezePairs,
	}
}

// freezesHeader is the Freezes sheet column set, columns A through AG.
var freezesHeader = []string{
	"Member Name", "Membership Name", "Membership Id", "Member Id", "Bought Membership Id",
	"Host Id", "Start Date", "End Date", "Classes Left", "Usage Limit For Sessions",
	"Created At", "Created By User Id", "Created By User Name", "Is Freezed", "Is Voided",
	"Money Left", "Payment Transaction Id", "Sale Item Id", "Membership Type",
	"Payment Method", "Payment Source", "Amount Paid", "Sessions Attended", "Location Id", "Location Name",
	"Freeze Attempts", "Frozen Days", "Permitted Freeze Attempts", "Permitted Freeze Days", "Status",
	"Freeze Start Date", "Freeze End Date", "All Freeze Attempt Pairs",
}

func freezesRow(r domain.RecordRow) []interface{} {
	return []interface{}{
		r.MemberName, r.MembershipName, r.MembershipID, r.MemberID, r.BoughtMembershipID,
		r.HostID, r.StartDate, r.EndDate, r.ClassesLeft, r.UsageLimitForSessions,
		r.CreatedAt, r.CreatedByUserID, r.CreatedByUserName, r.IsFreezed, r.IsVoided,
		r.MoneyLeft, r.PaymentTransactionID, r.SaleItemID, r.MembershipType,
		r.PaymentMethod, r.PaymentSource, r.AmountPaid, r.SessionsAttended, r.LocationID, r.LocationName,
		r.FreezeAttempts, r.FrozenDays, r.PermittedAttempts, r.PermittedDays,
		r.Status, r.FreezeStartDate, r.FreezeEndDate, r.AllFreezePairs,
	}
}

// cancellationsHeader is the Cancellations sheet column set, columns A through Y.
var cancellationsHeader = []string{
	"Member Id", "Member Name", "Host Id", "Session Id", "Session Name", "Session Starts At",
	"Booking Id", "Cancellation Type", "Cancelled At", "Cancelled By User Id", "Cancelled By User Name",
	"Location Id", "Location Name", "Teacher Id", "Teacher Name", "Is Late Cancelled",
	"Is Cancelled After Cut Off", "Membership Id", "Membership Name", "Bought Membership Id",
	"Payment Method", "Payment Source", "Refund Amount Money Credits", "Refund Amount Event Credits", "Is Member Refunded",
}

func cancellationRow(r domain.CancellationRow) []interface{} {
	return []interface{}{
		r.MemberID, r.MemberName, r.HostID, r.SessionID, r.SessionName, r.SessionStartsAt,
		r.BookingID, r.CancellationType, r.CancelledAt, r.CancelledByUserID, r.CancelledByUserName,
		r.LocationID, r.LocationName, r.TeacherID, r.TeacherName, r.IsLateCancelled,
		r.IsCancelledAfterCutOff, r.MembershipID, r.MembershipName, r.BoughtMembershipID,
		r.PaymentMethod, r.PaymentSource, r.RefundMoneyCredits, r.RefundEventCredits, r.IsMemberRefunded,
	}
}
