package player

import (
	"context"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// UpdateOutcome reports how much of a progression update was persisted.
type UpdateOutcome int

const (
	// UpdateFailed - nothing was persisted.
	UpdateFailed UpdateOutcome = iota

	// UpdateApplied - the full update was persisted.
	UpdateApplied

	// UpdatePartial - xp/streak persisted but the known-unstable badge
	// column did not. Degraded success: the caller decides what to
	// surface, nothing is silently swallowed.
	UpdatePartial
)

// String returns a human-readable outcome name.
func (o UpdateOutcome) String() string {
	switch o {
	case UpdateApplied:
		return "applied"
	case UpdatePartial:
		return "partial"
	default:
		return "failed"
	}
}

// ProgressUpdate carries the post-attempt progression values to persist.
type ProgressUpdate struct {
	XP     shared.XP
	Streak int
	Badges []string
}

// Repository is the persistence contract for profile records.
type Repository interface {
	// GetByID returns the profile, or shared.ErrNotFound.
	GetByID(ctx context.Context, id shared.AccountID) (*Profile, error)

	// Create inserts a new profile record.
	Create(ctx context.Context, p *Profile) error

	// UpdateProgress persists xp/streak/badges after a logged attempt.
	// A failure confined to the badge column yields (UpdatePartial, err)
	// where err wraps shared.ErrPartialUpdate; any other failure yields
	// (UpdateFailed, err).
	UpdateProgress(ctx context.Context, id shared.AccountID, upd ProgressUpdate) (UpdateOutcome, error)

	// UpdateProfile persists username/rating edits.
	UpdateProfile(ctx context.Context, p *Profile) error

	// TopByXP returns up to limit profiles ordered by XP descending.
	TopByXP(ctx context.Context, limit int) ([]*Profile, error)
}
