package eventhandler

import (
	"context"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/badge"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON BADGE UNLOCKED HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// OnBadgeUnlockedHandler reacts to BadgeUnlockedEvent.
type OnBadgeUnlockedHandler struct {
	sender notification.Sender
	log    *logger.Logger
}

// NewOnBadgeUnlockedHandler creates a new OnBadgeUnlockedHandler.
func NewOnBadgeUnlockedHandler(sender notification.Sender, log *logger.Logger) *OnBadgeUnlockedHandler {
	return &OnBadgeUnlockedHandler{
		sender: sender,
		log:    log.With(logger.String("handler", "on_badge_unlocked")),
	}
}

// HandledTypes implements shared.EventHandler.
func (h *OnBadgeUnlockedHandler) HandledTypes() []shared.EventType {
	return []shared.EventType{shared.EventBadgeUnlocked}
}

// Handle implements shared.EventHandler.
func (h *OnBadgeUnlockedHandler) Handle(event shared.Event) error {
	ev, ok := event.(shared.BadgeUnlockedEvent)
	if !ok {
		h.log.Warn("unexpected event type", logger.String("type", string(event.EventType())))
		return nil
	}

	def, found := badge.Find(ev.BadgeID)
	if !found {
		h.log.Warn("unknown badge id in event", logger.String("badge_id", ev.BadgeID))
		return nil
	}

	n, err := notification.BadgeUnlocked(shared.AccountID(ev.AccountID), def.Name, def.Description)
	if err != nil {
		return err
	}

	if err := h.sender.Deliver(context.Background(), n); err != nil {
		h.log.Warn("badge notification delivery failed",
			logger.String("account_id", ev.AccountID),
			logger.String("badge_id", ev.BadgeID),
			logger.Err(err))
		return nil
	}

	h.log.Info("badge celebration sent",
		logger.String("account_id", ev.AccountID),
		logger.String("badge_id", ev.BadgeID))
	return nil
}
