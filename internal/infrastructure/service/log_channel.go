package service

import (
	"context"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// LogChannel writes notifications to the structured log. It is the
// delivery of last resort and never fails.
type LogChannel struct {
	log *logger.Logger
}

// NewLogChannel creates the channel.
func NewLogChannel(log *logger.Logger) *LogChannel {
	if log == nil {
		log = logger.Default()
	}
	return &LogChannel{log: log.With(logger.String("channel", "log"))}
}

// Type implements notification.Channel.
func (c *LogChannel) Type() notification.ChannelType {
	return notification.ChannelTypeLog
}

// Send implements notification.Channel.
func (c *LogChannel) Send(_ context.Context, n *notification.Notification) (notification.DeliveryResult, error) {
	c.log.Info("notification",
		logger.String("id", n.ID.String()),
		logger.String("account_id", string(n.AccountID)),
		logger.String("type", string(n.Type)),
		logger.String("title", n.Title),
		logger.String("body", n.Body))
	return notification.NewSuccessResult(c.Type()), nil
}

var _ notification.Channel = (*LogChannel)(nil)
