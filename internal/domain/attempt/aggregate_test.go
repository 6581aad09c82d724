package attempt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

func makeAttempt(id, category string, xp shared.XP, mastery shared.Mastery, date time.Time) *Attempt {
	return &Attempt{
		ID:        id,
		AccountID: "acct-1",
		Category:  category,
		DrillName: "some drill",
		Date:      date,
		Mastery:   mastery,
		XPEarned:  xp,
		CreatedAt: date,
	}
}

func TestCategoryLevel(t *testing.T) {
	tests := []struct {
		xp   shared.XP
		want int
	}{
		{0, 1}, {99, 1}, {100, 2}, {499, 2}, {500, 3}, {999, 3}, {1000, 4}, {2499, 4}, {2500, 5}, {9000, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryLevel(tt.xp), "xp=%d", tt.xp)
	}
}

func TestCategoryStatsFold(t *testing.T) {
	day := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	log := []*Attempt{
		makeAttempt("a1", "Dinking", 10, 3, day),
		makeAttempt("a2", "Dinking", 10, 5, day),
		makeAttempt("a3", "Volleys", 120, 4, day),
	}

	stats := CategoryStats(log)
	require.Len(t, stats, 2)

	// Sorted by category name.
	assert.Equal(t, "Dinking", stats[0].Category)
	assert.Equal(t, shared.XP(20), stats[0].XP)
	assert.Equal(t, 2, stats[0].Attempts)
	assert.Equal(t, 1, stats[0].Level)

	assert.Equal(t, "Volleys", stats[1].Category)
	assert.Equal(t, shared.XP(120), stats[1].XP)
	assert.Equal(t, 2, stats[1].Level)
}

func TestCategoryStatsRecomputedAfterDelete(t *testing.T) {
	day := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	log := []*Attempt{
		makeAttempt("a1", "Dinking", 10, 3, day),
		makeAttempt("a2", "Dinking", 10, 5, day),
	}

	before := CategoryExperience(log)
	assert.Equal(t, shared.XP(20), before["Dinking"])

	// Deleting from the log changes the fold on the next read; nothing
	// is cached across mutations.
	log = log[:1]
	after := CategoryExperience(log)
	assert.Equal(t, shared.XP(10), after["Dinking"])
}

func TestAverageMastery(t *testing.T) {
	day := time.Now()
	assert.Equal(t, 0.0, AverageMastery(nil))

	log := []*Attempt{
		makeAttempt("a1", "Dinking", 10, 3, day),
		makeAttempt("a2", "Dinking", 10, 4, day),
	}
	assert.InDelta(t, 3.5, AverageMastery(log), 0.001)
}

func TestWeeklyActivity(t *testing.T) {
	now := time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	log := []*Attempt{
		makeAttempt("a1", "Dinking", 10, 3, now),
		makeAttempt("a2", "Dinking", 15, 4, now.AddDate(0, 0, -2)),
		makeAttempt("a3", "Volleys", 10, 2, now.AddDate(0, 0, -2)),
		makeAttempt("a4", "Volleys", 10, 2, now.AddDate(0, 0, -9)), // outside window
	}

	days := WeeklyActivity(log, now)
	require.Len(t, days, 7)

	// Oldest day first, today last.
	assert.Equal(t, 1, days[6].Attempts)
	assert.Equal(t, shared.XP(10), days[6].XP)

	assert.Equal(t, 2, days[4].Attempts)
	assert.Equal(t, shared.XP(25), days[4].XP)

	total := 0
	for _, d := range days {
		total += d.Attempts
	}
	assert.Equal(t, 3, total, "attempt outside the window is excluded")
}

func TestAttemptValidate(t *testing.T) {
	day := time.Now()
	a := makeAttempt("a1", "Dinking", 10, 3, day)
	assert.NoError(t, a.Validate())

	bad := makeAttempt("", "Dinking", 10, 3, day)
	assert.ErrorIs(t, bad.Validate(), shared.ErrInvalidID)

	bad = makeAttempt("a2", "Dinking", 10, 9, day)
	assert.ErrorIs(t, bad.Validate(), shared.ErrOutOfRange)
}
