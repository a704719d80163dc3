//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/wems/internal/adapter/kafka"
	"github.com/couchcryptid/wems/internal/alert"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
)

const testAlertTopic = "test-hazard-alerts"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("wems-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func readAlert(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (alert.Alert, map[string]string) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from alert topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var a alert.Alert
	require.NoError(t, json.Unmarshal(msg.Value, &a), "unmarshal alert")
	return a, headers
}

// TestWriterPublish round-trips one alert through a real broker.
func TestWriterPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	writer := kafka.NewWriter([]string{broker}, testAlertTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	fired := alert.Alert{
		ID:       "alert-1",
		Category: domain.Volcano,
		EventID:  "volcano-311120",
		Payload:  map[string]any{"volcano_name": "Great Sitkin", "alert_level": "watch"},
		FiredAt:  time.Date(2024, 5, 10, 18, 22, 0, 0, time.UTC),
	}
	require.NoError(t, writer.Publish(ctx, fired))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, headers := readAlert(ctx, t, consumer)
	assert.Equal(t, "alert-1", headers["alert_id"])
	assert.Equal(t, "volcano", headers["category"])
	_, err := time.Parse(time.RFC3339, headers["fired_at"])
	assert.NoError(t, err, "fired_at should be valid RFC3339")
	assert.Equal(t, "volcano-311120", got.EventID)
	assert.Equal(t, "Great Sitkin", got.Payload["volcano_name"])
}

// TestDispatcherPublishesToKafka fires an earthquake alert through the
// dispatcher with a webhook that is down, and expects the alert on the
// topic anyway.
func TestDispatcherPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	writer := kafka.NewWriter([]string{broker}, testAlertTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	store := alert.NewStore(map[domain.Category]alert.Rule{
		domain.Earthquake: {"webhook": "http://127.0.0.1:1/unreachable", "min_magnitude": 5.0},
	})
	dispatcher := alert.NewDispatcher(store, &http.Client{}, 15*time.Second, writer,
		discardLogger(), observability.NewMetricsForTesting())

	recs := []domain.Record{{"id": "us7000big", "magnitude": 7.5, "location": "Off the coast of Chile", "time": "2024-05-10T00:00:00Z"}}
	fired := dispatcher.Dispatch(ctx, domain.Normalize(domain.Earthquake, "usgs", recs))
	require.Equal(t, 1, fired)
	dispatcher.Wait()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-dispatch-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, _ := readAlert(ctx, t, consumer)
	assert.Equal(t, domain.Earthquake, got.Category)
	assert.Equal(t, "us7000big", got.EventID)
	assert.Equal(t, "major", got.Payload["alert_level"])
}
