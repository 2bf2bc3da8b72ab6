// Package config centralises configuration parsing for the freeze pipeline.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration values for the pipeline and API server.
type Config struct {
	// Upstream (Momence) access.
	MomenceBaseURL string
	MomenceCookies string
	FetchTimeout   time.Duration

	// Retry tuning for history fetches.
	MaxRetryAttempts int           // Retries per item after the initial request.
	RetryDelay       time.Duration // Base delay for 5xx/timeout backoff.
	RateLimitDelay   time.Duration // Base delay for 429 backoff.

	// Batch scheduling.
	BatchSize         int
	ConcurrentBatches int
	InterGroupDelay   time.Duration

	// Report-polling fallback.
	ReportHosts        []string
	ReportWindowDays   int
	PollingInterval    time.Duration
	MaxPollingAttempts int

	// Google Sheets access.
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRefreshToken   string
	SpreadsheetID        string
	CheckinsSheetID      string
	FreezesSheetName     string
	CheckinsSheetName    string
	CancellationsSheet   string
	SheetsWriteBatchSize int

	// File sinks.
	OutputCSVPath  string
	OutputJSONPath string

	// Optional sinks.
	PostgresURL  string
	KafkaBrokers []string
	KafkaTopic   string

	// Display rendering.
	DisplayTimezone string

	// API server.
	HTTPAddress string
	JWTSecret   string
	JWTIssuer   string

	LogMode string
}

// Load reads environment variables into Config, applying the tuning the
// pipeline shipped with for local dev.
func Load() Config {
	cfg := Config{
		MomenceBaseURL: getEnv("MOMENCE_BASE_URL", "https://api.momence.com"),
		MomenceCookies: getEnv("MOMENCE_ALL_COOKIES", ""),
		FetchTimeout:   getDurationEnv("FETCH_TIMEOUT", 30*time.Second),

		MaxRetryAttempts: getIntEnv("MAX_RETRY_ATTEMPTS", 3),
		RetryDelay:       getDurationEnv("RETRY_DELAY", 2*time.Second),
		RateLimitDelay:   getDurationEnv("RATE_LIMIT_DELAY", 5*time.Second),

		BatchSize:         getIntEnv("BATCH_SIZE", 50),
		ConcurrentBatches: getIntEnv("CONCURRENT_BATCHES", 2),
		InterGroupDelay:   getDurationEnv("INTER_GROUP_DELAY", 5*time.Second),

		ReportWindowDays:   getIntEnv("REPORT_WINDOW_DAYS", 180),
		PollingInterval:    getDurationEnv("POLLING_INTERVAL", 5*time.Second),
		MaxPollingAttempts: getIntEnv("MAX_POLLING_ATTEMPTS", 100),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken:   getEnv("GOOGLE_REFRESH_TOKEN", ""),
		SpreadsheetID:        getEnv("SPREADSHEET_ID", ""),
		CheckinsSheetID:      getEnv("CHECKINS_SPREADSHEET_ID", ""),
		FreezesSheetName:     getEnv("FREEZES_SHEET_NAME", "Freezes"),
		CheckinsSheetName:    getEnv("CHECKINS_SHEET_NAME", "Checkins"),
		CancellationsSheet:   getEnv("CANCELLATIONS_SHEET_NAME", "Cancellations"),
		SheetsWriteBatchSize: getIntEnv("SHEETS_WRITE_BATCH_SIZE", 1000),

		OutputCSVPath:  getEnv("OUTPUT_CSV_PATH", "freezes.csv"),
		OutputJSONPath: getEnv("OUTPUT_JSON_PATH", "data.json"),

		PostgresURL: getEnv("POSTGRES_URL", ""),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "freeze_compliance_events"),

		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Asia/Kolkata"),

		HTTPAddress: getEnv("HTTP_ADDRESS", ":8080"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:   getEnv("JWT_ISSUER", "freeze-history"),

		LogMode: getEnv("LOG_MODE", "dev"),
	}

	cfg.ReportHosts = splitAndTrim(getEnv("REPORT_HOSTS", "13752,33905"))
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
