package momence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrReportTimedOut is returned when a report run never completes within the
// polling budget.
var ErrReportTimedOut = fmt.Errorf("report run timed out")

// ReportWindow bounds the session-bookings report.
type ReportWindow struct {
	Start    time.Time
	End      time.Time
	TimeZone string
}

type reportRequest struct {
	TimeZone            string  `json:"timeZone"`
	StartDate           string  `json:"startDate"`
	EndDate             string  `json:"endDate"`
	IncludeVatInRevenue bool    `json:"includeVatInRevenue"`
	ComputedSaleValue   bool    `json:"computedSaleValue"`
	MembershipTagIDs    []int64 `json:"membershipTagIds"`
	SessionTagIDs       []int64 `json:"sessionTagIds"`
	DatePreset          int     `json:"datePreset"`
}

// ReportStatus is the polled state of an async report run. The upstream has
// shipped several shapes for "done" over time, so completion is judged
// across all of them.
type ReportStatus struct {
	Status      string `json:"status"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	IsCompleted bool   `json:"isCompleted"`
	Failed      bool   `json:"failed"`
	Error       bool   `json:"error"`
	ReportData  struct {
		Items []ReportItem `json:"items"`
	} `json:"reportData"`
	// Items stays a pointer so an empty-but-present data.items array still
	// counts as completion.
	Data struct {
		Items *[]ReportItem `json:"items"`
	} `json:"data"`
}

// ReportItem is one row of a completed session-bookings report.
type ReportItem struct {
	MemberID int64 `json:"memberId"`
}

// done reports whether the run finished successfully.
func (s *ReportStatus) done() bool {
	status := strings.ToUpper(s.Status)
	state := strings.ToUpper(s.State)
	if status == "COMPLETED" || status == "SUCCESS" || state == "COMPLETED" || state == "FINISHED" {
		return true
	}
	if s.Completed || s.IsCompleted {
		return true
	}
	return s.Data.Items != nil
}

// failed reports whether the run terminally failed.
func (s *ReportStatus) failed() bool {
	status := strings.ToUpper(s.Status)
	state := strings.ToUpper(s.State)
	return status == "FAILED" || status == "ERROR" || state == "FAILED" || s.Failed || s.Error
}

// Items returns the report rows regardless of which envelope carried them.
func (s *ReportStatus) Items() []ReportItem {
	if len(s.ReportData.Items) > 0 {
		return s.ReportData.Items
	}
	if s.Data.Items != nil {
		return *s.Data.Items
	}
	return nil
}

// TriggerReport starts an async session-bookings report for a host and
// returns the report run ID.
func (c *Client) TriggerReport(ctx context.Context, hostID string, window ReportWindow) (int64, error) {
	url := fmt.Sprintf("%s/host/%s/reports/session-bookings/async", c.cfg.BaseURL, hostID)

	payload := reportRequest{
		TimeZone:            window.TimeZone,
		StartDate:           window.Start.UTC().Format(time.RFC3339Nano),
		EndDate:             window.End.UTC().Format(time.RFC3339Nano),
		IncludeVatInRevenue: true,
		ComputedSaleValue:   true,
		MembershipTagIDs:    []int64{},
		SessionTagIDs:       []int64{},
		DatePreset:          4,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Cookies != "" {
		req.Header.Set("Cookie", c.cfg.Cookies)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("trigger report host=%s: status %d: %s", hostID, resp.StatusCode, string(raw))
	}

	var out struct {
		ReportRunID int64 `json:"reportRunId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode report trigger response: %w", err)
	}
	if out.ReportRunID == 0 {
		return 0, fmt.Errorf("trigger report host=%s: missing reportRunId", hostID)
	}
	return out.ReportRunID, nil
}

// PollReport polls a report run at the given interval until it completes,
// fails, or the attempt budget is exhausted. In-between states just log and
// wait; transport errors propagate immediately.
func (c *Client) PollReport(ctx context.Context, hostID string, runID int64, interval time.Duration, maxAttempts int) (*ReportStatus, error) {
	url := fmt.Sprintf("%s/host/%s/reports/session-bookings/report-runs/%d", c.cfg.BaseURL, hostID, runID)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		status, err := c.getReportStatus(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("poll report run %d host=%s: %w", runID, hostID, err)
		}

		switch {
		case status.done():
			c.log.Info("report run completed", "host_id", hostID, "report_run_id", runID)
			return status, nil
		case status.failed():
			return nil, fmt.Errorf("report run %d host=%s failed", runID, hostID)
		}

		c.log.Debug("report run pending", "host_id", hostID, "report_run_id", runID, "attempt", attempt+1)
		if err := sleepCtx(ctx, interval); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: run %d host=%s after %d attempts", ErrReportTimedOut, runID, hostID, maxAttempts)
}

func (c *Client) getReportStatus(ctx context.Context, url string) (*ReportStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Cookies != "" {
		req.Header.Set("Cookie", c.cfg.Cookies)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	var status ReportStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode report status: %w", err)
	}
	return &status, nil
}
