package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/workitem"
)

// Checkins column positions (zero-based): member ID in A, host ID in W.
const (
	checkinsMemberCol = 0
	checkinsHostCol   = 22
)

// SheetsSource reads (member, host) pairs from the checkins spreadsheet.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	log           *logging.Logger
}

// NewSheetsSource constructs the source.
func NewSheetsSource(service *sheets.Service, spreadsheetID, sheetName string, log *logging.Logger) *SheetsSource {
	return &SheetsSource{service: service, spreadsheetID: spreadsheetID, sheetName: sheetName, log: log}
}

// Pairs reads the checkins sheet and returns the deduplicated work items.
// The header row is skipped; rows without both identifiers are ignored.
func (s *SheetsSource) Pairs(ctx context.Context) ([]workitem.WorkItem, error) {
	readRange := fmt.Sprintf("%s!A:W", s.sheetName)
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read checkins sheet: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	raw := make([]workitem.WorkItem, 0, len(resp.Values))
	for i, row := range resp.Values {
		if i == 0 {
			continue
		}
		memberID := cellInt64(row, checkinsMemberCol)
		hostID := cellString(row, checkinsHostCol)
		if memberID == 0 || hostID == "" {
			continue
		}
		raw = append(raw, workitem.WorkItem{MemberID: memberID, HostID: hostID})
	}

	items := workitem.Build(raw)
	s.log.Info("checkins sheet read", "rows", len(resp.Values), "unique_pairs", len(items))
	return items, nil
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func cellInt64(row []interface{}, idx int) int64 {
	v, err := strconv.ParseInt(cellString(row, idx), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
