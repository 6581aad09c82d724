package drill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

func repsDrill() Definition {
	return Definition{
		Category:   "Serve & Return",
		Name:       "Deep Target Practice",
		Type:       TypeReps,
		Unit:       "serves",
		Total:      10,
		Thresholds: Thresholds{5: 9, 4: 8, 3: 6, 2: 4, 1: 0},
	}
}

func inverseCounterDrill() Definition {
	return Definition{
		Category:   "Third Shot Drive",
		Name:       "Drive & Defend",
		Type:       TypeCounter,
		Unit:       "errors",
		Inverse:    true,
		Thresholds: Thresholds{5: 0, 4: 2, 3: 4, 2: 6, 1: 100},
	}
}

func checklistDrill() Definition {
	return Definition{
		Category:   "Strategy & Positioning",
		Name:       "Call & Cover",
		Type:       TypeChecklist,
		Items:      []string{"Called every middle ball", "Switched on lobs", "Communicated 'out' balls"},
		Thresholds: Thresholds{5: 3, 4: 2, 3: 1, 2: 0, 1: -1},
	}
}

func TestScoreReps(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		wantTier shared.Mastery
		wantPct  int
	}{
		{"nine of ten is tier five", 9, 5, 90},
		{"eight of ten is tier four", 8, 4, 80},
		{"six of ten is tier three", 6, 3, 60},
		{"five of ten is tier two", 5, 2, 50},
		{"one of ten is tier one", 1, 1, 10},
		{"full count is tier five", 10, 5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(repsDrill(), Input{Count: tt.count}, 2.5)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, got.Tier)
			require.NotNil(t, got.SuccessPct)
			assert.Equal(t, tt.wantPct, *got.SuccessPct)
		})
	}
}

func TestScoreRepsSummary(t *testing.T) {
	got, err := Score(repsDrill(), Input{Count: 7}, 2.5)
	require.NoError(t, err)
	assert.Equal(t, "7/10 serves", got.Summary)
}

func TestScoreRepsTierMonotonicInCount(t *testing.T) {
	prev := shared.Mastery(0)
	for count := 1; count <= 10; count++ {
		got, err := Score(repsDrill(), Input{Count: count}, 2.5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Tier, prev, "tier dropped at count %d", count)
		prev = got.Tier
	}
}

func TestScoreRepsRejectsNegative(t *testing.T) {
	_, err := Score(repsDrill(), Input{Count: -1}, 2.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
}

func TestScoreRejectsZeroCount(t *testing.T) {
	_, err := Score(repsDrill(), Input{Count: 0}, 2.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	d := Definition{
		Category:   "Dinking",
		Name:       "Crosscourt Dink Battle",
		Type:       TypeCounter,
		Unit:       "consecutive dinks",
		Thresholds: Thresholds{5: 20, 4: 15, 3: 10, 2: 5, 1: 0},
	}
	_, err = Score(d, Input{Count: 0}, 2.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

// A zero on an inverse counter would be the best possible run, but an
// unfilled form also reads as zero, so it is still rejected.
func TestScoreInverseCounterRejectsZeroCount(t *testing.T) {
	_, err := Score(inverseCounterDrill(), Input{Count: 0}, 2.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestScoreCounter(t *testing.T) {
	d := Definition{
		Category:   "Dinking",
		Name:       "Crosscourt Dink Battle",
		Type:       TypeCounter,
		Unit:       "consecutive dinks",
		Thresholds: Thresholds{5: 20, 4: 15, 3: 10, 2: 5, 1: 0},
	}

	got, err := Score(d, Input{Count: 17}, 2.5)
	require.NoError(t, err)
	assert.Equal(t, shared.Mastery(4), got.Tier)
	assert.Equal(t, "17 consecutive dinks", got.Summary)
	assert.Nil(t, got.SuccessPct, "counter drills have no success percentage")
}

func TestScoreInverseCounter(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		wantTier shared.Mastery
	}{
		{"one error is tier four", 1, 4},
		{"two errors is tier four", 2, 4},
		{"three errors is tier three", 3, 3},
		{"five errors is tier two", 5, 2},
		{"fifty errors is tier one", 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(inverseCounterDrill(), Input{Count: tt.count}, 2.5)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, got.Tier)
		})
	}
}

func TestScoreInverseCounterTierNonIncreasingInCount(t *testing.T) {
	prev := shared.MasteryMax + 1
	for count := 1; count <= 20; count++ {
		got, err := Score(inverseCounterDrill(), Input{Count: count}, 2.5)
		require.NoError(t, err)
		assert.LessOrEqual(t, got.Tier, prev, "tier rose at count %d", count)
		prev = got.Tier
	}
}

func TestScoreChecklist(t *testing.T) {
	got, err := Score(checklistDrill(), Input{Checked: []string{"Called every middle ball", "Switched on lobs"}}, 2.5)
	require.NoError(t, err)
	assert.Equal(t, shared.Mastery(4), got.Tier)
	assert.Equal(t, "2 goals met", got.Summary)
}

func TestScoreChecklistRejectsEmptySelection(t *testing.T) {
	_, err := Score(checklistDrill(), Input{}, 2.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestScoreLockedDrill(t *testing.T) {
	d := repsDrill()
	d.MinRating = 4.0

	_, err := Score(d, Input{Count: 9}, 3.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrLocked)

	// At or above the gate the drill scores normally.
	got, err := Score(d, Input{Count: 9}, 4.0)
	require.NoError(t, err)
	assert.Equal(t, shared.Mastery(5), got.Tier)
}

func TestScoreNoThresholdMatchFallsToLowestTier(t *testing.T) {
	d := repsDrill()
	d.Thresholds = Thresholds{5: 9, 4: 8, 3: 6, 2: 4, 1: 2}

	got, err := Score(d, Input{Count: 1}, 2.5)
	require.NoError(t, err)
	assert.Equal(t, shared.MasteryMin, got.Tier)
}
