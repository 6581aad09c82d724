package command

import (
	"context"
	"fmt"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE ATTEMPT COMMAND
// Removes one attempt from the log. Progression totals are intentionally
// NOT rewound: xp, streak and badges earned from the attempt stay.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteAttemptCommand identifies the attempt to remove.
type DeleteAttemptCommand struct {
	AccountID shared.AccountID
	AttemptID string
}

// Validate validates the command.
func (c DeleteAttemptCommand) Validate() error {
	if !c.AccountID.IsValid() {
		return shared.NewDomainError("command", "DeleteAttempt", shared.ErrInvalidID, "account id is required")
	}
	if c.AttemptID == "" {
		return shared.NewDomainError("command", "DeleteAttempt", shared.ErrInvalidID, "attempt id is required")
	}
	return nil
}

// DeleteAttemptResult reports the deletion.
type DeleteAttemptResult struct {
	AttemptID string

	// RemainingAttempts is the committed attempt count after deletion.
	RemainingAttempts int
}

// DeleteAttemptHandler handles DeleteAttemptCommand.
type DeleteAttemptHandler struct {
	ledgers  *LedgerRegistry
	attempts attempt.Repository
	events   shared.EventPublisher
}

// NewDeleteAttemptHandler creates a new DeleteAttemptHandler.
func NewDeleteAttemptHandler(
	ledgers *LedgerRegistry,
	attempts attempt.Repository,
	events shared.EventPublisher,
) *DeleteAttemptHandler {
	return &DeleteAttemptHandler{
		ledgers:  ledgers,
		attempts: attempts,
		events:   events,
	}
}

// Handle executes the delete attempt command.
func (h *DeleteAttemptHandler) Handle(ctx context.Context, cmd DeleteAttemptCommand) (*DeleteAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ledger, err := h.ledgers.ForAccount(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	var result *DeleteAttemptResult
	txErr := ledger.Execute(func(s *Session) error {
		if err := h.attempts.Delete(ctx, cmd.AccountID, cmd.AttemptID); err != nil {
			return fmt.Errorf("delete_attempt: %w", err)
		}
		// The profile keeps everything the attempt earned. Category stats
		// recompute from the log, so they shrink on the next read.
		s.RemoveAttempt()
		result = &DeleteAttemptResult{
			AttemptID:         cmd.AttemptID,
			RemainingAttempts: s.Attempts - 1,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	_ = h.events.Publish(shared.NewAttemptDeletedEvent(cmd.AttemptID, string(cmd.AccountID)))
	return result, nil
}
