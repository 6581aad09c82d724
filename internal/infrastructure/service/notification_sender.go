package service

import (
	"context"
	"fmt"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
	"github.com/paddle-hub/paddle-practice-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SENDER
// ══════════════════════════════════════════════════════════════════════════════

// NotificationSender implements notification.Sender. It walks the
// configured channels in order and stops at the first success. Only
// retryable failures are retried; a permanent rejection moves straight
// to the next channel.
type NotificationSender struct {
	channels []notification.Channel
	retrier  *retry.Retrier
	log      *logger.Logger
}

// NewNotificationSender creates the sender. Channel order is delivery
// preference; at least one channel is required.
func NewNotificationSender(log *logger.Logger, channels ...notification.Channel) (*NotificationSender, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("service: notification sender needs at least one channel")
	}
	if log == nil {
		log = logger.Default()
	}
	return &NotificationSender{
		channels: channels,
		retrier:  retry.WebhookRetrier(),
		log:      log.With(logger.String("component", "notification_sender")),
	}, nil
}

// Deliver implements notification.Sender. The final status is recorded
// on the entity: MarkSent on any success, MarkFailed when every channel
// is exhausted.
func (s *NotificationSender) Deliver(ctx context.Context, n *notification.Notification) error {
	var lastErr error
	for _, ch := range s.channels {
		if err := s.deliverVia(ctx, ch, n); err != nil {
			lastErr = err
			s.log.Warn("channel delivery failed",
				logger.String("notification_id", n.ID.String()),
				logger.String("channel", ch.Type().String()),
				logger.Err(err))
			continue
		}
		n.MarkSent(time.Now().UTC())
		return nil
	}

	n.MarkFailed(lastErr)
	return fmt.Errorf("service: all channels failed for notification %s: %w", n.ID, lastErr)
}

// deliverVia pushes one notification through one channel, retrying
// transient failures.
func (s *NotificationSender) deliverVia(ctx context.Context, ch notification.Channel, n *notification.Notification) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		result, err := ch.Send(ctx, n)
		if err == nil {
			return nil
		}
		if result.Retryable {
			return retry.Retryable(err)
		}
		return retry.Permanent(err)
	})
}

var _ notification.Sender = (*NotificationSender)(nil)
