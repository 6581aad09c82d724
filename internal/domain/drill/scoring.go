package drill

import (
	"fmt"
	"math"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING ENGINE
// Pure function: Drill Definition + raw input -> mastery tier + summary.
// ══════════════════════════════════════════════════════════════════════════════

// Input is the raw attempt input. Count is used by reps and counter drills;
// Checked holds the checked goal labels for checklist drills.
type Input struct {
	Count   int
	Checked []string
}

// Result is the outcome of scoring one attempt.
type Result struct {
	// Tier is the 1..5 mastery classification.
	Tier shared.Mastery

	// Summary is the human-readable result ("7/10 serves", "2 goals met").
	Summary string

	// SuccessPct is only defined for reps drills.
	SuccessPct *int
}

// Typed scoring errors.
var (
	// ErrDrillLocked - the drill's minimum rating gate is above the
	// account's current level.
	ErrDrillLocked = shared.NewDomainError("drill", "Score", shared.ErrLocked, "drill is locked at the current level")

	// ErrNegativeCount - counts cannot be negative.
	ErrNegativeCount = shared.NewDomainError("drill", "Score", shared.ErrNegativeValue, "count cannot be negative")

	// ErrZeroCount - zero is rejected for every count-based drill,
	// inverse counters included.
	ErrZeroCount = shared.NewDomainError("drill", "Score", shared.ErrInvalidInput, "count must be greater than zero")

	// ErrNothingChecked - checklist submissions need at least one goal.
	ErrNothingChecked = shared.NewDomainError("drill", "Score", shared.ErrEmptyValue, "at least one goal must be checked")
)

// Score classifies a raw attempt against the drill's threshold table.
// currentRating is the account's level-derived rating, used for the lock
// gate. Score never mutates anything; the Ledger owns state changes.
func Score(d Definition, in Input, currentRating float64) (Result, error) {
	if d.LockedFor(currentRating) {
		return Result{}, ErrDrillLocked
	}

	switch d.Type {
	case TypeReps:
		return scoreReps(d, in)
	case TypeCounter:
		return scoreCounter(d, in)
	case TypeChecklist:
		return scoreChecklist(d, in)
	}
	return Result{}, shared.NewDomainError("drill", "Score", shared.ErrInvalidEntity,
		fmt.Sprintf("unknown scoring type %q", d.Type))
}

func scoreReps(d Definition, in Input) (Result, error) {
	if in.Count < 0 {
		return Result{}, ErrNegativeCount
	}
	if in.Count == 0 {
		return Result{}, ErrZeroCount
	}

	pct := int(math.Round(float64(in.Count) / float64(d.Total) * 100))
	return Result{
		Tier:       floorTier(d.Thresholds, in.Count),
		Summary:    fmt.Sprintf("%d/%d %s", in.Count, d.Total, d.Unit),
		SuccessPct: &pct,
	}, nil
}

func scoreCounter(d Definition, in Input) (Result, error) {
	if in.Count < 0 {
		return Result{}, ErrNegativeCount
	}
	if in.Count == 0 {
		return Result{}, ErrZeroCount
	}

	tier := floorTier(d.Thresholds, in.Count)
	if d.Inverse {
		tier = ceilingTier(d.Thresholds, in.Count)
	}
	return Result{
		Tier:    tier,
		Summary: fmt.Sprintf("%d %s", in.Count, d.Unit),
	}, nil
}

func scoreChecklist(d Definition, in Input) (Result, error) {
	if len(in.Checked) == 0 {
		return Result{}, ErrNothingChecked
	}

	checked := len(in.Checked)
	return Result{
		Tier:    floorTier(d.Thresholds, checked),
		Summary: fmt.Sprintf("%d goals met", checked),
	}, nil
}

// floorTier walks tiers 5->1 and returns the first whose cutoff <= value.
// Tier 1 cutoffs are typically 0, so a match is normally guaranteed; if
// nothing matches, the lowest tier applies.
func floorTier(t Thresholds, value int) shared.Mastery {
	for tier := shared.MasteryMax; tier >= shared.MasteryMin; tier-- {
		if value >= t[tier] {
			return tier
		}
	}
	return shared.MasteryMin
}

// ceilingTier walks tiers 5->1 and returns the first whose cutoff >= value.
// Used by inverse counter drills, where lower counts earn higher tiers.
func ceilingTier(t Thresholds, value int) shared.Mastery {
	for tier := shared.MasteryMax; tier >= shared.MasteryMin; tier-- {
		if value <= t[tier] {
			return tier
		}
	}
	return shared.MasteryMin
}
