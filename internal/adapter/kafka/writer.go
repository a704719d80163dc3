package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/wems/internal/alert"
)

const (
	defaultAttempts   = 3
	initialBackoff    = 200 * time.Millisecond
	maxPublishBackoff = 2 * time.Second
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes fired alerts to a Kafka topic.
// It implements alert.Publisher.
type Writer struct {
	writer   messageWriter
	attempts int
	logger   *slog.Logger
}

// NewWriter creates a Kafka producer for the alert topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, attempts: defaultAttempts, logger: logger}
}

// Publish writes one alert, keyed by category so alerts of one hazard stay
// ordered within a partition. Broker errors are retried with backoff until
// the attempts run out or ctx is done.
func (w *Writer) Publish(ctx context.Context, a alert.Alert) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		return err
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err = w.writer.WriteMessages(ctx, msg)
		if err == nil {
			w.logger.Debug("alert published", "alert_id", a.ID, "category", a.Category, "attempt", attempt)
			return nil
		}
		if attempt >= w.attempts || ctx.Err() != nil {
			break
		}
		w.logger.Warn("alert publish failed, retrying", "alert_id", a.ID, "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxPublishBackoff)
	}
	return fmt.Errorf("write alert %s: %w", a.ID, err)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Alert into a Kafka message.
func serializeToMessage(a alert.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.Category),
		Value: data,
		Time:  a.FiredAt,
		Headers: []kafkago.Header{
			{Key: "alert_id", Value: []byte(a.ID)},
			{Key: "category", Value: []byte(a.Category)},
			{Key: "event_id", Value: []byte(a.EventID)},
			{Key: "fired_at", Value: []byte(a.FiredAt.Format(time.RFC3339))},
		},
	}, nil
}
