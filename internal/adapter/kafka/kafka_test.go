package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wems/internal/alert"
	"github.com/couchcryptid/wems/internal/domain"
)

var firedAt = time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

func quakeAlert() alert.Alert {
	return alert.Alert{
		ID:       "alert-1",
		Category: domain.Earthquake,
		EventID:  "us7000abcd",
		Payload:  map[string]any{"magnitude": 7.5, "alert_level": "major"},
		FiredAt:  firedAt,
	}
}

// scriptedWriter fails its first `failures` writes, then succeeds.
type scriptedWriter struct {
	failures int
	writes   int
	sent     []kafkago.Message
}

func (s *scriptedWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	s.writes++
	if s.writes <= s.failures {
		return kafkago.LeaderNotAvailable
	}
	s.sent = append(s.sent, msgs...)
	return nil
}

func (s *scriptedWriter) Close() error { return nil }

func testWriter(mw messageWriter) *Writer {
	return &Writer{writer: mw, attempts: defaultAttempts, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(quakeAlert())
	require.NoError(t, err)

	assert.Equal(t, []byte("earthquake"), msg.Key)
	assert.Equal(t, firedAt, msg.Time)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{
		"alert_id": "alert-1",
		"category": "earthquake",
		"event_id": "us7000abcd",
		"fired_at": "2024-04-26T15:10:00Z",
	}, headers)

	var decoded alert.Alert
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "us7000abcd", decoded.EventID)
	assert.Equal(t, "major", decoded.Payload["alert_level"])
}

func TestSerializeToMessage_UnsupportedPayload(t *testing.T) {
	_, err := serializeToMessage(alert.Alert{Payload: map[string]any{"bad": make(chan int)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serialize alert")
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		wantErr    bool
		wantWrites int
	}{
		{"first try", 0, false, 1},
		{"recovers after transient errors", 2, false, 3},
		{"gives up after all attempts", 5, true, defaultAttempts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := &scriptedWriter{failures: tt.failures}

			err := testWriter(mw).Publish(context.Background(), quakeAlert())

			assert.Equal(t, tt.wantWrites, mw.writes)
			if tt.wantErr {
				require.ErrorIs(t, err, kafkago.LeaderNotAvailable)
				assert.Contains(t, err.Error(), "write alert alert-1")
				assert.Empty(t, mw.sent)
				return
			}
			require.NoError(t, err)
			require.Len(t, mw.sent, 1)
			assert.Equal(t, []byte("earthquake"), mw.sent[0].Key)
		})
	}
}

func TestPublish_StopsOnCancelledContext(t *testing.T) {
	mw := &scriptedWriter{failures: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := testWriter(mw).Publish(ctx, quakeAlert())

	require.Error(t, err)
	assert.Equal(t, 1, mw.writes)
	assert.True(t, errors.Is(err, kafkago.LeaderNotAvailable))
}
