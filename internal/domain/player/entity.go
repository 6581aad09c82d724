package player

import (
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE (Account Progression State)
// One record per account, backed by the remote profiles table. The
// Progression Ledger owns all mutation; everything else reads snapshots.
// ══════════════════════════════════════════════════════════════════════════════

// Profile is the account-level progression state.
type Profile struct {
	// ID is the account ID assigned by the identity boundary.
	ID shared.AccountID

	// Username is the display name ("Player" until edited).
	Username string

	// XP is the cumulative experience total. Never decreases.
	XP shared.XP

	// Streak counts consecutive logging events.
	Streak int

	// Rating is the self-reported DUPR rating shown on the profile.
	// The level-derived rating (LevelFor) drives drill locks, not this.
	Rating float64

	// Badges holds the unlocked badge IDs. Grows monotonically; a badge
	// once unlocked is never revoked.
	Badges []string

	// PasswordHash is set by onboarding; the core never inspects it.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Defaults for freshly provisioned profiles.
const (
	DefaultUsername = "Player"
	DefaultRating   = 2.5
)

// NewProfile creates a profile with provisioning defaults.
func NewProfile(id shared.AccountID) (*Profile, error) {
	if !id.IsValid() {
		return nil, shared.ErrInvalidAccountID
	}
	now := time.Now().UTC()
	return &Profile{
		ID:        id,
		Username:  DefaultUsername,
		XP:        0,
		Streak:    0,
		Rating:    DefaultRating,
		Badges:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Level returns the ladder position for the profile's XP total.
func (p *Profile) Level() Level {
	return LevelFor(p.XP)
}

// HasBadge reports whether the badge is already unlocked.
func (p *Profile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The Ledger snapshots state through this so a
// failed persistence attempt can never leak partial mutations.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Badges = make([]string, len(p.Badges))
	copy(cp.Badges, p.Badges)
	return &cp
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS SNAPSHOT
// Immutable aggregate view handed to the Badge Evaluator (REDESIGN: badge
// predicates never see live mutable state).
// ══════════════════════════════════════════════════════════════════════════════

// StatsSnapshot captures post-attempt aggregate stats at a point in time.
type StatsSnapshot struct {
	// XP is the cumulative experience including the triggering attempt.
	XP shared.XP

	// Streak includes the increment from the triggering attempt.
	Streak int

	// TotalAttempts includes the triggering attempt.
	TotalAttempts int
}
