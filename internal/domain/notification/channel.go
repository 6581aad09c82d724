package notification

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL
// ══════════════════════════════════════════════════════════════════════════════

// ChannelType identifies a delivery transport.
type ChannelType string

const (
	// ChannelTypeWebhook posts the notification to a configured HTTP endpoint.
	ChannelTypeWebhook ChannelType = "webhook"

	// ChannelTypeLog writes the notification to the structured log. Used
	// when no webhook is configured and in tests.
	ChannelTypeLog ChannelType = "log"
)

func (ct ChannelType) String() string {
	return string(ct)
}

// DeliveryResult reports the outcome of one delivery attempt.
type DeliveryResult struct {
	Success     bool
	Channel     ChannelType
	DeliveredAt time.Time
	Error       error

	// Retryable marks failures worth retrying (timeouts, 5xx).
	Retryable bool
}

// NewSuccessResult builds a successful delivery result.
func NewSuccessResult(channel ChannelType) DeliveryResult {
	return DeliveryResult{
		Success:     true,
		Channel:     channel,
		DeliveredAt: time.Now().UTC(),
	}
}

// NewFailureResult builds a failed delivery result.
func NewFailureResult(channel ChannelType, err error, retryable bool) DeliveryResult {
	return DeliveryResult{
		Channel:   channel,
		Error:     err,
		Retryable: retryable,
	}
}

// Channel delivers notifications over one transport.
type Channel interface {
	// Send delivers the notification. A non-nil error means the attempt
	// failed; the DeliveryResult carries whether a retry is worthwhile.
	Send(ctx context.Context, n *Notification) (DeliveryResult, error)

	// Type identifies the transport.
	Type() ChannelType
}

// Sender is the application-facing delivery port. Implementations pick a
// channel, apply retry policy and record the final status on the entity.
type Sender interface {
	Deliver(ctx context.Context, n *Notification) error
}
