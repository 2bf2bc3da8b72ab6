package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "https://api.momence.com", cfg.MomenceBaseURL)
	require.Equal(t, 3, cfg.MaxRetryAttempts)
	require.Equal(t, 2*time.Second, cfg.RetryDelay)
	require.Equal(t, 5*time.Second, cfg.RateLimitDelay)
	require.Equal(t, 50, cfg.BatchSize)
	require.Equal(t, 2, cfg.ConcurrentBatches)
	require.Equal(t, []string{"13752", "33905"}, cfg.ReportHosts)
	require.Equal(t, 100, cfg.MaxPollingAttempts)
	require.Equal(t, "Asia/Kolkata", cfg.DisplayTimezone)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("REPORT_HOSTS", "111, 222 ,333")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg := Load()
	require.Equal(t, 10, cfg.BatchSize)
	require.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	require.Equal(t, []string{"111", "222", "333"}, cfg.ReportHosts)
	require.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BATCH_SIZE", "many")
	t.Setenv("FETCH_TIMEOUT", "soon")

	cfg := Load()
	require.Equal(t, 50, cfg.BatchSize)
	require.Equal(t, 30*time.Second, cfg.FetchTimeout)
}
