// Package eventhandler contains domain event handlers. They are the
// reactive part of the system: they watch progression events and fire
// side effects like celebration notifications and cache invalidation,
// keeping the write path free of delivery concerns.
package eventhandler

import (
	"context"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON LEVEL UP HANDLER
// Sends the level-up celebration when an attempt crosses a ladder tier
// boundary.
// ══════════════════════════════════════════════════════════════════════════════

// OnLevelUpHandler reacts to LevelUpEvent.
type OnLevelUpHandler struct {
	sender notification.Sender
	log    *logger.Logger
}

// NewOnLevelUpHandler creates a new OnLevelUpHandler.
func NewOnLevelUpHandler(sender notification.Sender, log *logger.Logger) *OnLevelUpHandler {
	return &OnLevelUpHandler{
		sender: sender,
		log:    log.With(logger.String("handler", "on_level_up")),
	}
}

// HandledTypes implements shared.EventHandler.
func (h *OnLevelUpHandler) HandledTypes() []shared.EventType {
	return []shared.EventType{shared.EventLevelUp}
}

// Handle implements shared.EventHandler.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	ev, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.log.Warn("unexpected event type", logger.String("type", string(event.EventType())))
		return nil
	}

	rating := ratingForLevelName(ev.NewLevel)
	n, err := notification.LevelUp(shared.AccountID(ev.AccountID), ev.NewLevel, rating)
	if err != nil {
		return err
	}

	if err := h.sender.Deliver(context.Background(), n); err != nil {
		// Celebrations are best effort; the level itself is already
		// committed.
		h.log.Warn("level-up notification delivery failed",
			logger.String("account_id", ev.AccountID),
			logger.Err(err))
		return nil
	}

	h.log.Info("level-up celebration sent",
		logger.String("account_id", ev.AccountID),
		logger.String("new_level", ev.NewLevel))
	return nil
}

// ratingForLevelName resolves a ladder tier name back to its rating.
func ratingForLevelName(name string) float64 {
	for _, tier := range player.Ladder {
		if tier.Name == name {
			return tier.Rating
		}
	}
	return player.Ladder[0].Rating
}
