package mqhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"habitpact/pkg/circuitbreaker"
)

// WebhookSender forwards miss events to an external notification hook
// (Slack-style incoming webhook). Protected by a circuit breaker so a
// dead endpoint doesn't stall the consumer.
type WebhookSender struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewWebhookSender(url string, logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

// Send posts the payload to the configured webhook. A blank URL disables
// delivery entirely.
func (w *WebhookSender) Send(ctx context.Context, payload interface{}) error {
	if w.url == "" {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	return w.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned error: status %d", resp.StatusCode)
		}
		return nil
	})
}
