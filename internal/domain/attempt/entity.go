// Package attempt contains the Attempt Log domain model: the committed
// practice attempt record, the repository contract, and the category
// aggregates derived from the log.
// This is pure business logic - no external dependencies.
package attempt

import (
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT
// Immutable once committed. Deletable by ID; never mutated.
// ══════════════════════════════════════════════════════════════════════════════

// Attempt is one committed practice session result.
type Attempt struct {
	// ID identifies the record (UUID assigned at submission).
	ID string

	// AccountID owns the attempt.
	AccountID shared.AccountID

	// Category and DrillName reference the catalog entry scored against.
	Category  string
	DrillName string

	// Date is the practice date chosen by the player (day precision).
	Date time.Time

	// RawCount is the submitted count for reps/counter drills.
	RawCount int

	// Checked holds the checked goal labels for checklist drills.
	Checked []string

	// ResultSummary is the derived human-readable result.
	ResultSummary string

	// Mastery is the derived 1..5 tier.
	Mastery shared.Mastery

	// SuccessPct is only defined for reps drills.
	SuccessPct *int

	// XPEarned is the experience awarded for this attempt.
	XPEarned shared.XP

	// Notes is free text from the player.
	Notes string

	// CreatedAt is the submission timestamp (drives time-of-day badges).
	CreatedAt time.Time
}

// Validate checks the invariants a committed attempt must satisfy.
func (a *Attempt) Validate() error {
	if a.ID == "" {
		return shared.NewDomainError("attempt", "Validate", shared.ErrInvalidID, "attempt ID is required")
	}
	if !a.AccountID.IsValid() {
		return shared.NewDomainError("attempt", "Validate", shared.ErrInvalidID, "account ID is required")
	}
	if a.Category == "" || a.DrillName == "" {
		return shared.NewDomainError("attempt", "Validate", shared.ErrEmptyValue, "category and drill name are required")
	}
	if !a.Mastery.IsValid() {
		return shared.NewDomainError("attempt", "Validate", shared.ErrOutOfRange, "mastery tier out of range")
	}
	if a.XPEarned < 0 {
		return shared.NewDomainError("attempt", "Validate", shared.ErrNegativeValue, "xp earned cannot be negative")
	}
	return nil
}
