package attempt

import (
	"sort"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORY AGGREGATES
// Derived, never stored: a pure fold over the current attempt log,
// recomputed on read.
// ══════════════════════════════════════════════════════════════════════════════

// Category level breakpoints: cumulative category XP -> bucketed level 1..5.
var categoryLevelBreakpoints = []int{100, 500, 1000, 2500}

// CategoryLevel buckets category experience into a 1..5 level.
func CategoryLevel(xp shared.XP) int {
	level := 1
	for _, bp := range categoryLevelBreakpoints {
		if int(xp) >= bp {
			level++
		}
	}
	return level
}

// CategoryStat is the derived aggregate for one category.
type CategoryStat struct {
	Category string
	XP       shared.XP
	Attempts int
	Level    int
}

// CategoryExperience folds the log into per-category XP totals.
func CategoryExperience(log []*Attempt) map[string]shared.XP {
	out := make(map[string]shared.XP)
	for _, a := range log {
		out[a.Category] += a.XPEarned
	}
	return out
}

// CategoryStats folds the log into per-category stats, sorted by category.
func CategoryStats(log []*Attempt) []CategoryStat {
	xp := make(map[string]shared.XP)
	counts := make(map[string]int)
	for _, a := range log {
		xp[a.Category] += a.XPEarned
		counts[a.Category]++
	}

	out := make([]CategoryStat, 0, len(xp))
	for cat, total := range xp {
		out = append(out, CategoryStat{
			Category: cat,
			XP:       total,
			Attempts: counts[cat],
			Level:    CategoryLevel(total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// AverageMastery returns the mean mastery tier over the log, 0 if empty.
func AverageMastery(log []*Attempt) float64 {
	if len(log) == 0 {
		return 0
	}
	sum := 0
	for _, a := range log {
		sum += a.Mastery.Int()
	}
	return float64(sum) / float64(len(log))
}

// ══════════════════════════════════════════════════════════════════════════════
// WEEKLY ACTIVITY
// ══════════════════════════════════════════════════════════════════════════════

// DayActivity is one day's bucket of the weekly view.
type DayActivity struct {
	Date     time.Time
	Attempts int
	XP       shared.XP
}

// WeeklyActivity buckets the log into the 7 days ending at now (inclusive),
// oldest day first. Bucketing uses the attempt's practice date.
func WeeklyActivity(log []*Attempt, now time.Time) []DayActivity {
	days := make([]DayActivity, 7)
	index := make(map[string]int, 7)
	for i, d := range timeutil.LastNDays(now, 7) {
		days[i] = DayActivity{Date: d}
		index[timeutil.DayKey(d)] = i
	}

	for _, a := range log {
		if i, ok := index[timeutil.DayKey(a.Date)]; ok {
			days[i].Attempts++
			days[i].XP += a.XPEarned
		}
	}
	return days
}
