package sink

import (
	"context"
	"fmt"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
)

// SheetsSink publishes the run to the Freezes and Cancellations tabs of the
// reporting spreadsheet. Each tab is cleared, given a header row, and filled
// in batches so large runs stay inside the Sheets API payload limits.
type SheetsSink struct {
	service            *sheets.Service
	spreadsheetID      string
	freezesSheet       string
	cancellationsSheet string
	batchSize          int
	log                *logging.Logger
}

// NewSheetsSink constructs the sink. batchSize caps rows per update call.
func NewSheetsSink(service *sheets.Service, spreadsheetID, freezesSheet, cancellationsSheet string, batchSize int, log *logging.Logger) *SheetsSink {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &SheetsSink{
		service:            service,
		spreadsheetID:      spreadsheetID,
		freezesSheet:       freezesSheet,
		cancellationsSheet: cancellationsSheet,
		batchSize:          batchSize,
		log:                log,
	}
}

// Name identifies the sink in logs and metrics.
func (s *SheetsSink) Name() string { return "sheets" }

// Write replaces both tabs with the run's rows.
func (s *SheetsSink) Write(ctx context.Context, out Output) error {
	freezes := make([][]interface{}, 0, len(out.RecordRows))
	for _, row := range out.RecordRows {
		freezes = append(freezes, freezesRow(row))
	}
	if err := s.writeSheet(ctx, s.freezesSheet, "AG", freezesHeader, freezes); err != nil {
		return fmt.Errorf("freezes sheet: %w", err)
	}

	cancellations := make([][]interface{}, 0, len(out.CancellationRows))
	for _, row := range out.CancellationRows {
		cancellations = append(cancellations, cancellationRow(row))
	}
	if err := s.writeSheet(ctx, s.cancellationsSheet, "Y", cancellationsHeader, cancellations); err != nil {
		return fmt.Errorf("cancellations sheet: %w", err)
	}
	return nil
}

// writeSheet clears the tab, writes the header, then streams rows in batches
// starting at row 2.
func (s *SheetsSink) writeSheet(ctx context.Context, sheetName, lastCol string, header []string, rows [][]interface{}) error {
	clearRange := fmt.Sprintf("%s!A:%s", sheetName, lastCol)
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	headerRange := fmt.Sprintf("%s!A1:%s1", sheetName, lastCol)
	if err := s.update(ctx, headerRange, [][]interface{}{headerRow}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < len(rows); i += s.batchSize {
		end := i + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]
		startRow := i + 2
		writeRange := fmt.Sprintf("%s!A%d:%s%d", sheetName, startRow, lastCol, startRow+len(batch)-1)
		if err := s.update(ctx, writeRange, batch); err != nil {
			return fmt.Errorf("write rows %d-%d: %w", startRow, startRow+len(batch)-1, err)
		}
		s.log.Info("sheet batch written", "sheet", sheetName, "batch", i/s.batchSize+1, "written", end, "total", len(rows))
	}
	return nil
}

func (s *SheetsSink) update(ctx context.Context, writeRange string, values [][]interface{}) error {
	_, err := s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
