// Package momence talks to the Momence host API: per-member history lookups
// under a tiered retry discipline, plus the async session-bookings report
// flow used as a work-item fallback.
package momence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/workitem"
)

// FailureKind distinguishes terminal fetch failures by the retry tier that
// produced them.
type FailureKind string

const (
	// RateLimitExhausted means the upstream kept answering 429 through every
	// backoff attempt.
	RateLimitExhausted FailureKind = "rate_limit_exhausted"
	// ServerFaultExhausted means transient 5xx/timeout faults persisted
	// through every backoff attempt.
	ServerFaultExhausted FailureKind = "server_fault_exhausted"
	// Permanent covers client errors, network failures without a retryable
	// class, and malformed responses. Never retried.
	Permanent FailureKind = "permanent"
)

// FetchError is the terminal error for one work item's history fetch.
type FetchError struct {
	Kind       FailureKind
	MemberID   int64
	HostID     string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch history member=%d host=%s: %s after %d attempt(s) (status=%d): %v",
		e.MemberID, e.HostID, e.Kind, e.Attempts, e.StatusCode, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ClientConfig carries the upstream endpoint and retry tuning.
type ClientConfig struct {
	BaseURL        string
	Cookies        string
	Timeout        time.Duration // per-attempt bound
	MaxRetries     int           // retries after the initial attempt
	RetryDelay     time.Duration // 5xx/timeout backoff seed, grows 1.5x
	RateLimitDelay time.Duration // 429 backoff seed, doubles
}

// Client issues authenticated requests against the Momence API. The
// underlying transport is shared and must admit the scheduler's full
// in-flight fan-out without head-of-line blocking.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *logging.Logger
}

// Option adjusts optional Client behaviour.
type Option func(*Client)

// WithHTTPClient overrides the transport. Tests use it to point at stubs.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient constructs a Client.
func NewClient(cfg ClientConfig, log *logging.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchHistory performs one logical history lookup for a work item. 429
// responses back off exponentially from the rate-limit seed (doubling per
// attempt); 5xx and per-attempt timeouts back off from the gentler retry
// seed (x1.5 per attempt); both give up after MaxRetries retries. Any other
// failure is terminal immediately. The returned error, when non-nil and not
// a context error, is always a *FetchError.
func (c *Client) FetchHistory(ctx context.Context, item workitem.WorkItem) ([]domain.HistoryEntry, error) {
	url := fmt.Sprintf("%s/host/%s/customers/%d/history", c.cfg.BaseURL, item.HostID, item.MemberID)

	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 0; ; attempt++ {
		recordFetchAttempt()

		entries, status, err := c.getHistory(ctx, url)
		if err == nil {
			recordFetchSuccess()
			return entries, nil
		}
		lastStatus, lastErr = status, err

		// A cancelled run stops retrying outright.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		kind, delay := c.classify(status, err, attempt)

		c.log.Warn("history fetch attempt failed",
			"member_id", item.MemberID,
			"host_id", item.HostID,
			"status", status,
			"attempt", attempt+1,
			"error", err.Error(),
		)

		if kind == Permanent || attempt >= c.cfg.MaxRetries {
			recordFetchFailure(string(kind))
			return nil, &FetchError{
				Kind:       kind,
				MemberID:   item.MemberID,
				HostID:     item.HostID,
				StatusCode: lastStatus,
				Attempts:   attempt + 1,
				Err:        lastErr,
			}
		}

		recordFetchRetry(string(kind))
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// classify maps a failed attempt onto its retry tier and the backoff delay
// for the given attempt index.
func (c *Client) classify(status int, err error, attempt int) (FailureKind, time.Duration) {
	switch {
	case status == http.StatusTooManyRequests:
		return RateLimitExhausted, c.cfg.RateLimitDelay * time.Duration(1<<uint(attempt))
	case status >= 500 && status <= 599, isTimeout(err):
		delay := time.Duration(float64(c.cfg.RetryDelay) * math.Pow(1.5, float64(attempt)))
		return ServerFaultExhausted, delay
	default:
		return Permanent, 0
	}
}

// getHistory performs a single attempt with its own timeout.
func (c *Client) getHistory(ctx context.Context, url string) ([]domain.HistoryEntry, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Cookies != "" {
		req.Header.Set("Cookie", c.cfg.Cookies)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var entries []domain.HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode history response: %w", err)
	}
	return entries, resp.StatusCode, nil
}

// isTimeout reports whether the attempt died on its per-attempt deadline or
// a network timeout; those count as transient server faults.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
