// Package analytics publishes search events for observability. Recording is
// fire-and-forget: a broken broker never affects search behavior.
package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// Event is one recorded search interaction.
type Event struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	ClickedID   string    `json:"clicked_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// publisher abstracts the Kafka writer for tests.
type publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Recorder publishes events to a Kafka topic. A nil Recorder is a valid
// no-op, so callers without a configured broker can skip the nil checks.
type Recorder struct {
	writer publisher
	log    *slog.Logger
}

// New builds a Recorder writing to topic on brokers. With no brokers
// configured it returns nil, which disables recording.
func New(brokers []string, topic string, log *slog.Logger) *Recorder {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		MaxAttempts: 3,
	})
	return &Recorder{writer: writer, log: log}
}

// Record publishes a search event asynchronously. clickedID may be empty
// for plain query events.
func (r *Recorder) Record(query string, resultCount int, clickedID string) {
	if r == nil {
		return
	}

	event := Event{
		ID:          uuid.NewString(),
		Query:       query,
		ResultCount: resultCount,
		ClickedID:   clickedID,
		Timestamp:   time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := r.publish(ctx, event); err != nil {
			r.log.Warn("record search event", slog.Any("err", err), slog.String("query", query))
		}
	}()
}

func (r *Recorder) publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	if closer, ok := r.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
