// Package drill contains the drill catalog domain model and the scoring
// engine that turns a raw practice attempt into a mastery tier.
// This is pure business logic - no external dependencies.
package drill

import (
	"fmt"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING TYPE
// ══════════════════════════════════════════════════════════════════════════════

// ScoringType defines how raw input for a drill is interpreted.
type ScoringType string

const (
	// TypeReps - a count of successes out of a fixed total.
	TypeReps ScoringType = "reps"

	// TypeCounter - a raw count with no fixed total. With Inverse set,
	// lower counts are better (e.g. unforced errors).
	TypeCounter ScoringType = "counter"

	// TypeChecklist - a set of checked goal items.
	TypeChecklist ScoringType = "checklist"
)

// IsValid checks that the scoring type is one of the known values.
func (t ScoringType) IsValid() bool {
	switch t {
	case TypeReps, TypeCounter, TypeChecklist:
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// DRILL DEFINITION
// ══════════════════════════════════════════════════════════════════════════════

// Thresholds maps mastery tier 1..5 to its numeric cutoff. For normal
// drills a cutoff is the floor for earning that tier; for inverse counter
// drills it is the ceiling.
type Thresholds map[shared.Mastery]int

// MediaRef points to an external instructional clip. Playback is a
// presentation concern; the core only carries the reference.
type MediaRef struct {
	Type   string // "video", "youtube", "image"
	URL    string
	Poster string
}

// Definition is an immutable drill description supplied by the catalog.
type Definition struct {
	// Category groups drills (e.g. "Dinking"). Name is unique within it.
	Category string
	Name     string

	// Free text shown to the player.
	Description  string
	Goal         string
	Duration     string
	Instructions []string

	// Scoring configuration.
	Type    ScoringType
	Unit    string   // unit label ("serves", "errors", ...)
	Total   int      // reps: total attempts the count is out of
	Inverse bool     // counter: lower is better
	Items   []string // checklist: goal items

	Thresholds Thresholds

	// MinRating gates the drill behind a proficiency level (0 = open).
	MinRating float64

	// XPAward overrides the default per-attempt experience award (0 = default).
	XPAward int

	Media *MediaRef
}

// Validate checks structural invariants of the definition, including the
// threshold monotonicity implied by the scoring type.
func (d Definition) Validate() error {
	if d.Category == "" {
		return shared.NewDomainError("drill", "Validate", shared.ErrEmptyValue, "category is required")
	}
	if d.Name == "" {
		return shared.NewDomainError("drill", "Validate", shared.ErrEmptyValue, "name is required")
	}
	if !d.Type.IsValid() {
		return shared.NewDomainError("drill", "Validate", shared.ErrInvalidEntity,
			fmt.Sprintf("unknown scoring type %q", d.Type))
	}

	switch d.Type {
	case TypeReps:
		if d.Total <= 0 {
			return shared.NewDomainError("drill", "Validate", shared.ErrInvalidEntity,
				fmt.Sprintf("%s: reps drill requires a positive total", d.Name))
		}
	case TypeChecklist:
		if len(d.Items) == 0 {
			return shared.NewDomainError("drill", "Validate", shared.ErrInvalidEntity,
				fmt.Sprintf("%s: checklist drill requires goal items", d.Name))
		}
	case TypeCounter:
		if d.Unit == "" {
			return shared.NewDomainError("drill", "Validate", shared.ErrInvalidEntity,
				fmt.Sprintf("%s: counter drill requires a unit label", d.Name))
		}
	}

	return d.validateThresholds()
}

// validateThresholds checks that all five tiers are defined and that the
// cutoffs are monotonic in the direction implied by the scoring type.
func (d Definition) validateThresholds() error {
	for tier := shared.MasteryMin; tier <= shared.MasteryMax; tier++ {
		if _, ok := d.Thresholds[tier]; !ok {
			return shared.NewDomainError("drill", "Validate", shared.ErrInvalidEntity,
				fmt.Sprintf("%s: missing threshold for tier %d", d.Name, tier))
		}
	}

	inverse := d.Type == TypeCounter && d.Inverse
	for tier := shared.MasteryMin; tier < shared.MasteryMax; tier++ {
		lo, hi := d.Thresholds[tier], d.Thresholds[tier+1]
		if inverse {
			// Lower is better: cutoffs must not increase towards tier 5.
			if hi > lo {
				return shared.NewDomainError("drill", "Validate", shared.ErrInvalidEntity,
					fmt.Sprintf("%s: inverse thresholds must be non-increasing (tier %d=%d, tier %d=%d)",
						d.Name, tier, lo, tier+1, hi))
			}
		} else {
			if hi < lo {
				return shared.NewDomainError("drill", "Validate", shared.ErrInvalidEntity,
					fmt.Sprintf("%s: thresholds must be non-decreasing (tier %d=%d, tier %d=%d)",
						d.Name, tier, lo, tier+1, hi))
			}
		}
	}
	return nil
}

// LockedFor reports whether the drill is gated above the given rating.
func (d Definition) LockedFor(currentRating float64) bool {
	return d.MinRating > 0 && d.MinRating > currentRating
}
