package badge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/badge"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

func attemptAt(hour int, mastery int) *attempt.Attempt {
	return &attempt.Attempt{
		Mastery:   shared.Mastery(mastery),
		CreatedAt: time.Date(2026, 3, 14, hour, 30, 0, 0, time.UTC),
	}
}

func TestEvaluate_FirstAttempt(t *testing.T) {
	stats := player.StatsSnapshot{XP: 10, Streak: 1, TotalAttempts: 1}

	newly := badge.Evaluate(nil, stats, attemptAt(12, 3))

	assert.Equal(t, []string{badge.IDFirstSteps}, newly)
}

func TestEvaluate_NeverReissues(t *testing.T) {
	stats := player.StatsSnapshot{XP: 10, Streak: 1, TotalAttempts: 1}

	first := badge.Evaluate(nil, stats, attemptAt(12, 3))
	require.NotEmpty(t, first)

	again := badge.Evaluate(first, stats, attemptAt(12, 3))
	assert.Empty(t, again)
}

func TestEvaluate_TimeOfDay(t *testing.T) {
	stats := player.StatsSnapshot{XP: 500, Streak: 1, TotalAttempts: 5}
	have := []string{badge.IDFirstSteps}

	tests := []struct {
		name string
		hour int
		want []string
	}{
		{name: "midday unlocks nothing", hour: 12, want: nil},
		{name: "8 PM unlocks night owl", hour: 20, want: []string{badge.IDNightOwl}},
		{name: "7 AM unlocks early bird", hour: 7, want: []string{badge.IDEarlyBird}},
		{name: "8 AM is not early", hour: 8, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newly := badge.Evaluate(have, stats, attemptAt(tt.hour, 3))
			assert.Equal(t, tt.want, newly)
		})
	}
}

func TestEvaluate_ThresholdBadges(t *testing.T) {
	have := []string{badge.IDFirstSteps, badge.IDOnFire}

	stats := player.StatsSnapshot{XP: 1000, Streak: 5, TotalAttempts: 100}
	newly := badge.Evaluate(have, stats, attemptAt(12, 5))

	assert.ElementsMatch(t,
		[]string{badge.IDWarrior, badge.IDSharpshooter, badge.IDDedicated},
		newly,
	)
}

func TestEvaluate_NilAttemptSkipsAttemptBadges(t *testing.T) {
	stats := player.StatsSnapshot{XP: 2000, Streak: 10, TotalAttempts: 200}

	newly := badge.Evaluate(nil, stats, nil)

	assert.NotContains(t, newly, badge.IDNightOwl)
	assert.NotContains(t, newly, badge.IDEarlyBird)
	assert.NotContains(t, newly, badge.IDSharpshooter)
	assert.Contains(t, newly, badge.IDWarrior)
}

func TestFind(t *testing.T) {
	d, ok := badge.Find(badge.IDOnFire)
	require.True(t, ok)
	assert.Equal(t, "On Fire", d.Name)

	_, ok = badge.Find("no_such_badge")
	assert.False(t, ok)
}

func TestAll_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range badge.All {
		assert.False(t, seen[d.ID], "duplicate badge id %s", d.ID)
		seen[d.ID] = true
		assert.NotEmpty(t, d.Name)
		assert.NotNil(t, d.Unlocked)
	}
	assert.Len(t, badge.All, 7)
}
