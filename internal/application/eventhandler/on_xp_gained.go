package eventhandler

import (
	"context"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON XP GAINED HANDLER
// Invalidates the cached leaderboard whenever any account's XP moves, so
// reads never serve a board older than the last progression commit plus
// the rebuild interval.
// ══════════════════════════════════════════════════════════════════════════════

// OnXPGainedHandler reacts to XPGainedEvent.
type OnXPGainedHandler struct {
	cache leaderboard.Cache
	log   *logger.Logger
}

// NewOnXPGainedHandler creates a new OnXPGainedHandler.
func NewOnXPGainedHandler(cache leaderboard.Cache, log *logger.Logger) *OnXPGainedHandler {
	return &OnXPGainedHandler{
		cache: cache,
		log:   log.With(logger.String("handler", "on_xp_gained")),
	}
}

// HandledTypes implements shared.EventHandler.
func (h *OnXPGainedHandler) HandledTypes() []shared.EventType {
	return []shared.EventType{shared.EventXPGained}
}

// Handle implements shared.EventHandler.
func (h *OnXPGainedHandler) Handle(event shared.Event) error {
	if err := h.cache.Invalidate(context.Background()); err != nil {
		h.log.Warn("leaderboard cache invalidation failed", logger.Err(err))
	}
	return nil
}
