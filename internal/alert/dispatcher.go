package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
)

// Alert is one fired notification.
type Alert struct {
	ID       string          `json:"id"`
	Category domain.Category `json:"category"`
	EventID  string          `json:"event_id"`
	Payload  map[string]any  `json:"payload"`
	FiredAt  time.Time       `json:"fired_at"`
}

// Publisher fans fired alerts out to a second channel besides the webhook.
type Publisher interface {
	Publish(ctx context.Context, a Alert) error
}

// Dispatcher evaluates alert rules against surfaced events and delivers
// notifications in the background. Delivery failures are logged, counted,
// and dropped; nothing is retried and nothing reaches the caller.
type Dispatcher struct {
	store     *Store
	client    *http.Client
	timeout   time.Duration
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. publisher may be nil.
func NewDispatcher(store *Store, client *http.Client, timeout time.Duration, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		store:     store,
		client:    client,
		timeout:   timeout,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		now:       domain.Now,
	}
}

// Dispatch evaluates each event's category rule and starts at most one
// delivery per qualifying event. It returns the number of alerts fired and
// never blocks on delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.Event) int {
	ctx = context.WithoutCancel(ctx)
	fired := 0
	seen := make(map[string]bool, len(events))

	for _, e := range events {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true

		a, webhook, ok := d.evaluate(e)
		if !ok {
			continue
		}
		fired++

		d.wg.Go(func() { d.deliver(ctx, webhook, a) })
	}
	return fired
}

// Wait blocks until every in-flight delivery has finished. Used at shutdown
// and by tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) evaluate(e domain.Event) (Alert, string, bool) {
	rule, ok := d.store.Rule(e.Category)
	if !ok || !rule.Enabled() {
		return Alert{}, "", false
	}
	webhook := rule.Webhook()
	if webhook == "" {
		return Alert{}, "", false
	}
	trigger, ok := triggers[e.Category]
	if !ok {
		return Alert{}, "", false
	}
	fields, ok := trigger(rule, e)
	if !ok {
		return Alert{}, "", false
	}

	firedAt := d.now()
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = firedAt
	}

	payload := map[string]any{
		"event_type": string(e.Category),
		"timestamp":  ts.UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		payload[k] = v
	}

	return Alert{
		ID:       uuid.NewString(),
		Category: e.Category,
		EventID:  e.ID,
		Payload:  payload,
		FiredAt:  firedAt,
	}, webhook, true
}

func (d *Dispatcher) deliver(ctx context.Context, webhook string, a Alert) {
	category := string(a.Category)

	if err := d.post(ctx, webhook, a.Payload); err != nil {
		d.logger.Warn("webhook delivery failed, dropping",
			"category", category,
			"event_id", a.EventID,
			"error", err,
		)
		d.metrics.Webhooks.WithLabelValues(category, "failed").Inc()
	} else {
		d.metrics.Webhooks.WithLabelValues(category, "sent").Inc()
	}

	if d.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.publisher.Publish(pubCtx, a); err != nil {
		d.logger.Warn("alert publish failed, dropping", "category", category, "alert_id", a.ID, "error", err)
		d.metrics.AlertsPublished.WithLabelValues("error").Inc()
		return
	}
	d.metrics.AlertsPublished.WithLabelValues("success").Inc()
}

func (d *Dispatcher) post(ctx context.Context, url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
