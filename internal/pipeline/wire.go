package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/Jimmeey2323/freeze-history/internal/config"
	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/gsheets"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/momence"
	"github.com/Jimmeey2323/freeze-history/internal/scheduler"
	"github.com/Jimmeey2323/freeze-history/internal/sink"
	"github.com/Jimmeey2323/freeze-history/internal/source"
)

// Bootstrap assembles a Runner from configuration: upstream client,
// scheduler, work-item sources, and every sink the config enables. The
// returned cleanup releases connection pools and producers.
func Bootstrap(ctx context.Context, cfg config.Config, log *logging.Logger) (*Runner, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	client := momence.NewClient(momence.ClientConfig{
		BaseURL:        cfg.MomenceBaseURL,
		Cookies:        cfg.MomenceCookies,
		Timeout:        cfg.FetchTimeout,
		MaxRetries:     cfg.MaxRetryAttempts,
		RetryDelay:     cfg.RetryDelay,
		RateLimitDelay: cfg.RateLimitDelay,
	}, log)

	sched := scheduler.New(scheduler.Config{
		BatchSize:         cfg.BatchSize,
		ConcurrentBatches: cfg.ConcurrentBatches,
		InterGroupDelay:   cfg.InterGroupDelay,
	}, client, log)

	renderer, err := domain.NewRenderer(cfg.DisplayTimezone)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	now := time.Now()
	reportSrc := source.NewReportSource(client, cfg.ReportHosts, momence.ReportWindow{
		Start:    now.AddDate(0, 0, -cfg.ReportWindowDays),
		End:      now,
		TimeZone: cfg.DisplayTimezone,
	}, cfg.PollingInterval, cfg.MaxPollingAttempts, log)

	creds := gsheets.Credentials{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: cfg.GoogleRefreshToken,
	}

	var (
		src      source.PairSource = reportSrc
		sheetSvc *sheets.Service
	)
	if creds.Valid() {
		svc, err := gsheets.NewService(ctx, creds)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("google sheets service: %w", err)
		}
		sheetSvc = svc
		primary := source.NewSheetsSource(svc, cfg.CheckinsSheetID, cfg.CheckinsSheetName, log)
		src = source.NewFallback(primary, reportSrc, log)
	} else {
		log.Warn("google credentials not configured, using report fallback as the only source")
	}

	sinks := []sink.Sink{
		sink.NewCSVSink(cfg.OutputCSVPath, log),
		sink.NewJSONSink(cfg.OutputJSONPath, log),
	}
	if sheetSvc != nil && cfg.SpreadsheetID != "" {
		sinks = append(sinks, sink.NewSheetsSink(sheetSvc, cfg.SpreadsheetID,
			cfg.FreezesSheetName, cfg.CancellationsSheet, cfg.SheetsWriteBatchSize, log))
	}
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		pg := sink.NewPostgresSink(pool, log)
		if err := pg.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		sinks = append(sinks, pg)
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := sink.NewKafkaProducer(cfg.KafkaBrokers)
		cleanups = append(cleanups, func() { _ = producer.Close() })
		sinks = append(sinks, sink.NewKafkaSink(producer, cfg.KafkaTopic, log))
	}

	runner := NewRunner(src, sched, domain.DefaultPolicy(), renderer, sink.NewFanout(log, sinks...), log)
	return runner, cleanup, nil
}
