package domain

// ExtractCancellations scans session entries for booking-cancellation
// activities and emits one record per match. fallbackMemberID and
// fallbackHostID fill gaps when the upstream omits the identifiers on the
// entry itself (they are always known from the work item that was fetched).
func ExtractCancellations(entries []HistoryEntry, fallbackMemberID int64, fallbackHostID string) []CancellationRecord {
	var out []CancellationRecord
	for _, entry := range entries {
		if entry.Type != EntrySession || len(entry.Activities) == 0 {
			continue
		}
		for _, activity := range entry.Activities {
			if activity.Type != ActivityCancelledByMember && activity.Type != ActivityCancelledByHost {
				continue
			}

			rec := CancellationRecord{
				MemberID:               entry.MemberID,
				MemberName:             entry.PayingMemberName,
				HostID:                 formatHostID(entry.HostID),
				SessionID:              entry.SessionID,
				SessionName:            entry.SessionName,
				SessionStartsAt:        entry.StartsAt,
				BookingID:              entry.BookingID,
				CancellationType:       activity.Type,
				CancelledAt:            activity.CreatedAt,
				CancelledByUserID:      activity.CreatedBy,
				LocationID:             entry.LocationID,
				LocationName:           entry.LocationName,
				TeacherID:              entry.TeacherID,
				TeacherName:            entry.TeacherName,
				IsLateCancelled:        entry.IsLateCancelled,
				IsCancelledAfterCutOff: entry.IsCancelledAfterCutOff,
				MembershipID:           entry.MembershipID,
				MembershipName:         entry.MembershipName,
				BoughtMembershipID:     entry.BoughtMembershipID,
				PaymentMethod:          entry.PaymentMethod,
				PaymentSource:          entry.PaymentSource,
				RefundMoneyCredits:     activity.Payload.RefundAmountInMoneyCredits,
				RefundEventCredits:     activity.Payload.RefundAmountInEventCredits,
				IsMemberRefunded:       activity.Payload.IsMemberRefunded,
			}
			if rec.MemberName == "" {
				rec.MemberName = entry.MemberName
			}
			if rec.MemberID == 0 {
				rec.MemberID = fallbackMemberID
			}
			if rec.HostID == "" {
				rec.HostID = fallbackHostID
			}
			if activity.TriggeredBy != nil {
				rec.CancelledByUserName = activity.TriggeredBy.FirstName + " " + activity.TriggeredBy.LastName
			}
			out = append(out, rec)
		}
	}
	return out
}
