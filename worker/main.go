package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/voluntra/opportunity-search/internal/config"
	"github.com/voluntra/opportunity-search/internal/dedupe"
	"github.com/voluntra/opportunity-search/internal/elasticsearch"
	"github.com/voluntra/opportunity-search/internal/logger"
	"github.com/voluntra/opportunity-search/internal/models"
	"github.com/voluntra/opportunity-search/internal/normalize"
)

// rawSubmission is the wire shape organizations publish when they create or
// update an opportunity.
type rawSubmission struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Organization   string   `json:"organization"`
	Location       string   `json:"location"`
	Category       string   `json:"category"`
	Verified       bool     `json:"verified"`
	SpotsAvailable int      `json:"spots_available"`
	SpotsTotal     int      `json:"spots_total"`
	DistanceKm     *float64 `json:"distance_km"`
	Date           string   `json:"date"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Source         string   `json:"source"`
}

type opportunityIndexer interface {
	IndexOpportunity(ctx context.Context, doc models.Opportunity) error
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			} else {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// sendToDLQ forwards a poison message with error context, retrying with
// exponential backoff. Returns true when the write eventually succeeded.
func sendToDLQ(ctx context.Context, log *slog.Logger, writer *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		if err := writer.WriteMessages(ctx, dlqMsg); err == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		} else {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Warn("DLQ write failed, retrying",
				slog.Any("err", err),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return false
			}
		}
	}
	return false
}

func processMessage(ctx context.Context, log *slog.Logger, indexer opportunityIndexer, cache *dedupe.Cache, msg kafka.Message) error {
	var payload rawSubmission
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return err
	}

	doc, err := buildOpportunity(payload)
	if err != nil {
		return err
	}

	if cache.Seen(doc.ID) {
		log.Debug("duplicate submission", slog.String("id", doc.ID))
		return nil
	}

	if err := indexer.IndexOpportunity(ctx, doc); err != nil {
		return err
	}

	cache.Observe(doc.ID)
	log.Info("indexed opportunity", slog.String("id", doc.ID), slog.String("title", doc.Title))
	return nil
}

// buildOpportunity normalizes a raw submission into the canonical document,
// applying the defensive defaults the search engine relies on.
func buildOpportunity(payload rawSubmission) (models.Opportunity, error) {
	title := normalize.CleanText(payload.Title)
	org := normalize.CleanText(payload.Organization)
	if title == "" || org == "" {
		return models.Opportunity{}, errors.New("submission missing title or organization")
	}

	doc := models.Opportunity{
		Title:          title,
		Description:    normalize.CleanText(payload.Description),
		Organization:   org,
		Location:       normalize.CleanText(payload.Location),
		Category:       normalize.Category(payload.Category),
		Verified:       payload.Verified,
		SpotsAvailable: normalize.Spots(payload.SpotsAvailable),
		SpotsTotal:     normalize.Spots(payload.SpotsTotal),
		DistanceKm:     payload.DistanceKm,
		Source:         strings.TrimSpace(payload.Source),
		CreatedAt:      time.Now().UTC(),
	}
	if doc.Source == "" {
		doc.Source = "unknown"
	}
	if doc.SpotsAvailable > doc.SpotsTotal && doc.SpotsTotal > 0 {
		doc.SpotsAvailable = doc.SpotsTotal
	}

	if ts := normalize.ParseDate(payload.Date); !ts.IsZero() {
		doc.Date = &ts
	}
	if ts := normalize.ParseDate(payload.StartDate); !ts.IsZero() {
		doc.StartDate = &ts
	}
	if ts := normalize.ParseDate(payload.EndDate); !ts.IsZero() {
		doc.EndDate = &ts
	}

	fingerprintDate := doc.EffectiveDate()
	doc.ID = normalize.Fingerprint(doc.Title, doc.Organization, fingerprintDate)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	return doc, nil
}
