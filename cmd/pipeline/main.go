package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jimmeey2323/freeze-history/internal/config"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/pipeline"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		log.Warn("shutdown signal received, stopping between batches")
		cancel()
	}()

	runner, cleanup, err := pipeline.Bootstrap(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", "error", err)
	}
	defer cleanup()

	result, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoWorkItems) {
			log.Warn("nothing to do", "error", err)
			return
		}
		log.Fatal("pipeline run failed", "error", err)
	}

	if result.Summary.SinkDegraded {
		log.Warn("run finished with degraded sink delivery", "run_id", result.Summary.RunID)
		os.Exit(1)
	}
}
