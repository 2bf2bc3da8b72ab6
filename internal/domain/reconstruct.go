package domain

import (
	"sort"
	"strconv"
	"time"
)

type freezeKey struct {
	memberID           int64
	boughtMembershipID int64
}

type sessionStats struct {
	attended     int
	locationID   int64
	locationName string
}

// Reconstruct derives one MembershipRecord per membership entry from a
// member's raw history. It is a pure function of entries and now: now is the
// reference point for the duration of a still-open freeze, injected so runs
// are reproducible under test.
func Reconstruct(entries []HistoryEntry, now time.Time) []MembershipRecord {
	if len(entries) == 0 {
		return nil
	}

	// Session pass: attendance counts and first-seen location per membership.
	stats := make(map[int64]*sessionStats)
	for _, entry := range entries {
		if entry.Type != EntrySession || entry.BoughtMembershipID == 0 {
			continue
		}
		st, ok := stats[entry.BoughtMembershipID]
		if !ok {
			st = &sessionStats{}
			stats[entry.BoughtMembershipID] = st
		}
		st.attended++
		if st.locationName == "" && entry.LocationID != 0 && entry.LocationName != "" {
			st.locationID = entry.LocationID
			st.locationName = entry.LocationName
		}
	}

	// Membership pass: candidate records plus freeze events per key.
	events := make(map[freezeKey][]FreezeEvent)
	records := make([]MembershipRecord, 0)
	for _, entry := range entries {
		if entry.Type != EntryMembership {
			continue
		}
		if entry.BoughtMembershipID == 0 {
			// Truncated log entry with no membership linkage; skip it rather
			// than abort the member.
			continue
		}

		rec := MembershipRecord{
			Timestamp:          entry.Timestamp,
			HistoryID:          entry.ID,
			DiscountCode:       entry.DiscountCode,
			MemberName:         entry.MemberName,
			MembershipName:     entry.MembershipName,
			MembershipID:       entry.MembershipID,
			MemberID:           entry.MemberID,
			BoughtMembershipID: entry.BoughtMembershipID,
			HostID:             formatHostID(entry.HostID),
			StartDate:          entry.StartDate,
			EndDate:            entry.EndDate,
			ClassesLeft:        entry.ClassesLeft,
			UsageLimit:         entry.UsageLimitForSessions,
			CreatedAt:          entry.CreatedAt,
			CreatedByUserID:    entry.CreatedByUserID,
			CreatedByUserName:  entry.CreatedByUserName,
			IsFreezed:          entry.IsFreezed,
			IsVoided:           entry.IsVoided,
			MoneyLeft:          entry.MoneyLeft,
			PaymentTxnID:       entry.PaymentTransactionID,
			SaleItemID:         entry.SaleItemID,
			MembershipType:     entry.MembershipType,
			PaymentMethod:      entry.PaymentMethod,
			PaymentSource:      entry.PaymentSource,
			AmountPaid:         entry.AmountPaid,
			LocationID:         entry.LocationID,
			LocationName:       entry.LocationName,
		}

		if st, ok := stats[entry.BoughtMembershipID]; ok {
			rec.SessionsAttended = st.attended
			if st.locationName != "" {
				rec.LocationID = st.locationID
				rec.LocationName = st.locationName
			}
		}

		key := freezeKey{memberID: entry.MemberID, boughtMembershipID: entry.BoughtMembershipID}
		for _, activity := range entry.Activities {
			switch activity.Type {
			case ActivityFreezeStart:
				events[key] = append(events[key], FreezeEvent{Kind: FreezeStart, At: activity.CreatedAt})
			case ActivityFreezeEnd:
				events[key] = append(events[key], FreezeEvent{Kind: FreezeEnd, At: activity.CreatedAt})
			}
		}

		records = append(records, rec)
	}

	for i := range records {
		key := freezeKey{memberID: records[i].MemberID, boughtMembershipID: records[i].BoughtMembershipID}
		pairFreezeEvents(&records[i], events[key], now)
	}

	return records
}

// pairFreezeEvents walks the sorted freeze transitions for one membership and
// fills the record's interval list and aggregates. A start only opens an
// interval when none is open (the first open start stays authoritative); an
// end with nothing open is dropped as a truncated-log artifact.
func pairFreezeEvents(rec *MembershipRecord, evts []FreezeEvent, now time.Time) {
	if len(evts) == 0 {
		return
	}

	sorted := make([]FreezeEvent, len(evts))
	copy(sorted, evts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	var (
		openStart time.Time
		open      bool
	)
	for _, evt := range sorted {
		switch evt.Kind {
		case FreezeStart:
			rec.FreezeAttempts++
			if rec.FreezeStartDate.IsZero() {
				rec.FreezeStartDate = evt.At
			}
			if !open {
				openStart = evt.At
				open = true
			}
		case FreezeEnd:
			if !open {
				continue
			}
			days := ceilDays(evt.At.Sub(openStart))
			rec.Intervals = append(rec.Intervals, FreezeInterval{Start: openStart, End: evt.At, Days: days})
			rec.FrozenDays += days
			rec.FreezeEndDate = evt.At
			open = false
		}
	}

	if open {
		days := ceilDays(now.Sub(openStart))
		rec.Intervals = append(rec.Intervals, FreezeInterval{Start: openStart, Ongoing: true, Days: days})
		rec.FrozenDays += days
	}
}

// ceilDays rounds a duration up to whole days, never below zero.
func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func formatHostID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
