package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/voluntra/opportunity-search/internal/config"
	"github.com/voluntra/opportunity-search/internal/elasticsearch"
	"github.com/voluntra/opportunity-search/internal/logger"
)

func main() {
	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient := connectWithRetry(ctx, log, cfg)
	if esClient == nil {
		log.Error("failed to connect to elasticsearch after retries")
		os.Exit(1)
	}
	log.Info("connected to elasticsearch")

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.CronSpec, func() {
		runOnce(ctx, log, esClient, cfg)
	})
	if err != nil {
		log.Error("invalid cron spec", slog.String("spec", cfg.CronSpec), slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("retention job scheduled",
		slog.String("cron", cfg.CronSpec),
		slog.Duration("max_age", cfg.MaxAge),
	)

	// One pass at startup so a long cron gap never leaves stale data behind.
	runOnce(ctx, log, esClient, cfg)

	scheduler.Start()
	<-ctx.Done()
	log.Info("shutdown signal received")

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		log.Warn("timed out waiting for running retention job")
	}
}

// connectWithRetry dials Elasticsearch with bounded exponential backoff.
// Returns nil when retries are exhausted or shutdown begins.
func connectWithRetry(ctx context.Context, log *slog.Logger, cfg *config.Retention) *elasticsearch.Client {
	const maxRetries = 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := esClient.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				return esClient
			}
			log.Warn("elasticsearch ping failed, retrying",
				slog.Any("err", pingErr),
				slog.Int("attempt", i+1),
				slog.Duration("retry_in", retryDelay),
			)
		} else {
			log.Warn("failed to create elasticsearch client, retrying",
				slog.Any("err", err),
				slog.Int("attempt", i+1),
			)
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil
		}
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}
	return nil
}

func runOnce(ctx context.Context, log *slog.Logger, esClient *elasticsearch.Client, cfg *config.Retention) {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-cfg.MaxAge)
	deleted, err := esClient.DeleteEndedBefore(subCtx, cutoff, cfg.BatchSize)
	if err != nil {
		log.Warn("retention run failed (will retry on next schedule)", slog.Any("err", err))
		return
	}

	if deleted > 0 {
		log.Info("retention run completed", slog.Int64("deleted", deleted))
	} else {
		log.Debug("retention run completed, no ended opportunities found")
	}
}
