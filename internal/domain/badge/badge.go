// Package badge contains the milestone badge definitions and the
// evaluator that decides which badges a logged attempt newly unlocks.
// Predicates are pure rule records over an immutable stats snapshot -
// never closures over live mutable state.
package badge

import (
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE DEFINITIONS
// ══════════════════════════════════════════════════════════════════════════════

// Predicate decides whether a badge is unlocked given the post-attempt
// stats snapshot and the just-logged attempt (nil when re-evaluating
// without a trigger). Must be pure and side-effect free.
type Predicate func(stats player.StatsSnapshot, a *attempt.Attempt) bool

// Definition is one statically defined milestone badge.
type Definition struct {
	// ID is the stable identifier persisted in the profile badge set.
	ID string

	// Name and Description are display metadata.
	Name        string
	Description string

	// Icon and Color hint the presentation layer.
	Icon  string
	Color string

	// Unlocked is the badge's predicate.
	Unlocked Predicate
}

// Badge IDs.
const (
	IDFirstSteps   = "first_steps"
	IDOnFire       = "on_fire"
	IDNightOwl     = "night_owl"
	IDEarlyBird    = "early_bird"
	IDWarrior      = "warrior"
	IDSharpshooter = "sharpshooter"
	IDDedicated    = "dedicated"
)

// All is the static badge table, evaluated in order (order is not
// significant - predicates must not depend on each other).
var All = []Definition{
	{
		ID:          IDFirstSteps,
		Name:        "First Steps",
		Description: "Log your first drill",
		Icon:        "trophy",
		Color:       "yellow",
		Unlocked: func(stats player.StatsSnapshot, _ *attempt.Attempt) bool {
			return stats.TotalAttempts >= 1
		},
	},
	{
		ID:          IDOnFire,
		Name:        "On Fire",
		Description: "Achieve a 3-day streak",
		Icon:        "flame",
		Color:       "orange",
		Unlocked: func(stats player.StatsSnapshot, _ *attempt.Attempt) bool {
			return stats.Streak >= 3
		},
	},
	{
		ID:          IDNightOwl,
		Name:        "Night Owl",
		Description: "Log a drill after 8 PM",
		Icon:        "moon",
		Color:       "indigo",
		Unlocked: func(_ player.StatsSnapshot, a *attempt.Attempt) bool {
			return a != nil && a.CreatedAt.Hour() >= 20
		},
	},
	{
		ID:          IDEarlyBird,
		Name:        "Early Bird",
		Description: "Log a drill before 8 AM",
		Icon:        "sun",
		Color:       "amber",
		Unlocked: func(_ player.StatsSnapshot, a *attempt.Attempt) bool {
			return a != nil && a.CreatedAt.Hour() < 8
		},
	},
	{
		ID:          IDWarrior,
		Name:        "Warrior",
		Description: "Log 100 total drills",
		Icon:        "swords",
		Color:       "red",
		Unlocked: func(stats player.StatsSnapshot, _ *attempt.Attempt) bool {
			return stats.TotalAttempts >= 100
		},
	},
	{
		ID:          IDSharpshooter,
		Name:        "Sharpshooter",
		Description: "Achieve 5/5 Mastery",
		Icon:        "target",
		Color:       "green",
		Unlocked: func(_ player.StatsSnapshot, a *attempt.Attempt) bool {
			return a != nil && a.Mastery == 5
		},
	},
	{
		ID:          IDDedicated,
		Name:        "Dedicated",
		Description: "Reach Level 10 (DUPR 3.0)",
		Icon:        "crown",
		Color:       "purple",
		Unlocked: func(stats player.StatsSnapshot, _ *attempt.Attempt) bool {
			return stats.XP >= 1000
		},
	},
}

// Find returns the definition for a badge ID, or false.
func Find(id string) (Definition, bool) {
	for _, d := range All {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// Evaluate returns the IDs of badges newly unlocked by the attempt, in
// table order. Badges already in alreadyUnlocked are never re-issued, so
// re-evaluating an unchanged snapshot yields the empty set.
func Evaluate(alreadyUnlocked []string, stats player.StatsSnapshot, a *attempt.Attempt) []string {
	unlocked := make(map[string]bool, len(alreadyUnlocked))
	for _, id := range alreadyUnlocked {
		unlocked[id] = true
	}

	var newly []string
	for _, d := range All {
		if unlocked[d.ID] {
			continue
		}
		if d.Unlocked(stats, a) {
			newly = append(newly, d.ID)
		}
	}
	return newly
}
