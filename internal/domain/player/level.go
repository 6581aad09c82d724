// Package player contains the account progression domain model: the
// profile record backing it, the level ladder, and the repository
// contract the persistence adapter implements.
// This is pure business logic - no external dependencies.
package player

import (
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL LADDER
// Pure function: cumulative XP -> current/next tier + progress fraction.
// ══════════════════════════════════════════════════════════════════════════════

// Tier is one rung of the proficiency ladder.
type Tier struct {
	// Name is the display name ("DUPR 3.0").
	Name string

	// Rating is the numeric rating the tier corresponds to. Drill lock
	// gates compare against this, never against parsed names.
	Rating float64

	// MinXP is the experience threshold where the tier starts.
	MinXP shared.XP
}

// MaxTierName marks the synthetic tier above the top of the ladder.
const MaxTierName = "MAX"

// Ladder is the ordered proficiency ladder: ascending thresholds, first
// tier at zero.
var Ladder = []Tier{
	{Name: "DUPR 2.5", Rating: 2.5, MinXP: 0},
	{Name: "DUPR 3.0", Rating: 3.0, MinXP: 1000},
	{Name: "DUPR 3.5", Rating: 3.5, MinXP: 2500},
	{Name: "DUPR 4.0", Rating: 4.0, MinXP: 5000},
	{Name: "DUPR 4.5", Rating: 4.5, MinXP: 10000},
	{Name: "DUPR 5.0", Rating: 5.0, MinXP: 20000},
}

// Level describes where an XP total sits on the ladder.
type Level struct {
	// Current is the last tier whose threshold is <= the XP total.
	Current Tier

	// Next is the following tier, or a synthetic MAX tier at the top.
	Next Tier

	// ProgressPct is the progress towards Next in [0,100]; 100 at MAX.
	ProgressPct float64
}

// AtMax reports whether the ladder is exhausted.
func (l Level) AtMax() bool {
	return l.Next.Name == MaxTierName
}

// LevelFor maps cumulative experience to the current ladder position.
// Negative XP is the caller's responsibility to reject; this function
// treats it as zero progress on the first tier.
func LevelFor(xp shared.XP) Level {
	idx := 0
	for i, tier := range Ladder {
		if xp >= tier.MinXP {
			idx = i
		}
	}

	current := Ladder[idx]
	if idx == len(Ladder)-1 {
		return Level{
			Current:     current,
			Next:        Tier{Name: MaxTierName, Rating: current.Rating, MinXP: xp},
			ProgressPct: 100,
		}
	}

	next := Ladder[idx+1]
	span := float64(next.MinXP - current.MinXP)
	pct := float64(xp-current.MinXP) / span * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Level{Current: current, Next: next, ProgressPct: pct}
}

// RatingUnlocked reports whether xp has crossed the ladder threshold for
// the given self-reported rating. A rating between two rungs inherits
// the threshold of the rung below it; anything under the first rung is
// always unlocked.
func RatingUnlocked(rating float64, xp shared.XP) bool {
	for i := len(Ladder) - 1; i >= 0; i-- {
		if rating >= Ladder[i].Rating {
			return xp >= Ladder[i].MinXP
		}
	}
	return true
}
