// Package service contains the delivery-side adapters: the channels a
// notification can travel over and the sender that drives them.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/pkg/circuitbreaker"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEBHOOK CHANNEL
// ══════════════════════════════════════════════════════════════════════════════

// webhookPayload is the JSON body posted to the configured endpoint.
type webhookPayload struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// WebhookChannel posts notifications to an HTTP endpoint. The endpoint
// is outside our control, so every call goes through a circuit breaker.
type WebhookChannel struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// WebhookConfig configures the webhook channel.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// NewWebhookChannel creates the channel.
func NewWebhookChannel(cfg WebhookConfig, log *logger.Logger) *WebhookChannel {
	if log == nil {
		log = logger.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	ch := &WebhookChannel{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With(logger.String("channel", "webhook")),
	}
	ch.breaker = circuitbreaker.WebhookBreaker(func(name string, from, to circuitbreaker.State) {
		ch.log.Warn("circuit state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()))
	})
	return ch
}

// Type implements notification.Channel.
func (c *WebhookChannel) Type() notification.ChannelType {
	return notification.ChannelTypeWebhook
}

// Send implements notification.Channel. A 4xx response is permanent;
// network errors and 5xx responses are retryable. An open circuit is
// reported as retryable so the sender can fall through to another
// channel.
func (c *WebhookChannel) Send(ctx context.Context, n *notification.Notification) (notification.DeliveryResult, error) {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.post(ctx, n)
	})
	if err == nil {
		return notification.NewSuccessResult(c.Type()), nil
	}

	retryable := true
	var pe *permanentStatusError
	if errors.As(err, &pe) {
		retryable = false
	}
	return notification.NewFailureResult(c.Type(), err, retryable), err
}

func (c *WebhookChannel) post(ctx context.Context, n *notification.Notification) error {
	payload := webhookPayload{
		ID:        n.ID.String(),
		AccountID: string(n.AccountID),
		Type:      string(n.Type),
		Priority:  n.Priority.String(),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &permanentStatusError{status: resp.StatusCode}
	default:
		return fmt.Errorf("webhook: endpoint returned %d", resp.StatusCode)
	}
}

// permanentStatusError marks 4xx responses that a retry cannot fix.
type permanentStatusError struct {
	status int
}

func (e *permanentStatusError) Error() string {
	return fmt.Sprintf("webhook: endpoint rejected notification with %d", e.status)
}

var _ notification.Channel = (*WebhookChannel)(nil)
