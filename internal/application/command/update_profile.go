package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROFILE COMMAND
// Edits the player-facing profile fields. The self-reported DUPR rating
// is display metadata and unlocks along the XP ladder; drill locking
// always uses the rating derived from accumulated XP.
// ══════════════════════════════════════════════════════════════════════════════

const maxUsernameLen = 30

// Self-reported DUPR bounds. The real scale runs 2.0 to 8.0.
const (
	minSelfRating = 2.0
	maxSelfRating = 8.0
)

// UpdateProfileCommand carries the edited fields. Nil pointers mean
// "leave unchanged".
type UpdateProfileCommand struct {
	AccountID shared.AccountID
	Username  *string
	Rating    *float64
}

// Validate validates the command.
func (c UpdateProfileCommand) Validate() error {
	if !c.AccountID.IsValid() {
		return shared.NewDomainError("command", "UpdateProfile", shared.ErrInvalidID, "account id is required")
	}
	if c.Username == nil && c.Rating == nil {
		return shared.NewDomainError("command", "UpdateProfile", shared.ErrEmptyValue, "nothing to update")
	}
	if c.Username != nil {
		name := strings.TrimSpace(*c.Username)
		if name == "" {
			return shared.NewDomainError("command", "UpdateProfile", shared.ErrEmptyValue, "username cannot be blank")
		}
		if len(name) > maxUsernameLen {
			return shared.NewDomainError("command", "UpdateProfile", shared.ErrOutOfRange,
				fmt.Sprintf("username exceeds %d characters", maxUsernameLen))
		}
	}
	if c.Rating != nil {
		if *c.Rating < minSelfRating || *c.Rating > maxSelfRating {
			return shared.NewDomainError("command", "UpdateProfile", shared.ErrOutOfRange,
				fmt.Sprintf("rating must be between %.1f and %.1f", minSelfRating, maxSelfRating))
		}
	}
	return nil
}

// UpdateProfileResult returns the committed profile.
type UpdateProfileResult struct {
	Profile *player.Profile

	// ChangedFields lists which fields were updated.
	ChangedFields []string
}

// UpdateProfileHandler handles UpdateProfileCommand.
type UpdateProfileHandler struct {
	ledgers  *LedgerRegistry
	profiles player.Repository
	events   shared.EventPublisher
}

// NewUpdateProfileHandler creates a new UpdateProfileHandler.
func NewUpdateProfileHandler(
	ledgers *LedgerRegistry,
	profiles player.Repository,
	events shared.EventPublisher,
) *UpdateProfileHandler {
	return &UpdateProfileHandler{
		ledgers:  ledgers,
		profiles: profiles,
		events:   events,
	}
}

// Handle executes the update profile command.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*UpdateProfileResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ledger, err := h.ledgers.ForAccount(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	var result *UpdateProfileResult
	txErr := ledger.Execute(func(s *Session) error {
		var changed []string
		if cmd.Username != nil {
			s.Profile.Username = strings.TrimSpace(*cmd.Username)
			changed = append(changed, "username")
		}
		if cmd.Rating != nil {
			// Self-reported ratings unlock with the XP ladder; a fresh
			// account cannot claim DUPR 5.0.
			if !player.RatingUnlocked(*cmd.Rating, s.Profile.XP) {
				return shared.NewDomainError("command", "UpdateProfile", shared.ErrLocked,
					fmt.Sprintf("rating %.1f is locked at the current experience level", *cmd.Rating))
			}
			s.Profile.Rating = *cmd.Rating
			changed = append(changed, "rating")
		}

		if err := h.profiles.UpdateProfile(ctx, s.Profile); err != nil {
			return fmt.Errorf("update_profile: %w", err)
		}

		result = &UpdateProfileResult{
			Profile:       s.Profile.Clone(),
			ChangedFields: changed,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	_ = h.events.Publish(shared.NewProfileUpdatedEvent(string(cmd.AccountID), result.ChangedFields))
	return result, nil
}
