package drill

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	assert.Equal(t, 13, c.Len())

	for _, d := range c.List() {
		assert.NoError(t, d.Validate(), "drill %q", d.Name)
	}
}

func TestCatalogCategoriesSortedUnique(t *testing.T) {
	c := Default()
	cats := c.Categories()

	assert.True(t, sort.StringsAreSorted(cats))
	seen := make(map[string]bool)
	for _, cat := range cats {
		assert.False(t, seen[cat], "duplicate category %q", cat)
		seen[cat] = true
	}
}

func TestCatalogFind(t *testing.T) {
	c := Default()

	d, err := c.Find("Drive & Defend")
	require.NoError(t, err)
	assert.Equal(t, TypeCounter, d.Type)
	assert.True(t, d.Inverse)

	_, err = c.Find("No Such Drill")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCatalogByCategoryPreservesOrder(t *testing.T) {
	c := Default()
	dinking := c.ByCategory("Dinking")

	require.Len(t, dinking, 2)
	assert.Equal(t, "Crosscourt Dink Battle", dinking[0].Name)
	assert.Equal(t, "Dink to Attack Recognition", dinking[1].Name)
}

func TestNewCatalogRejectsDuplicateName(t *testing.T) {
	d := repsDrill()
	_, err := NewCatalog([]Definition{d, d})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestValidateThresholdMonotonicity(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr bool
	}{
		{"valid reps thresholds", func(d *Definition) {}, false},
		{
			"decreasing cutoff towards tier five",
			func(d *Definition) { d.Thresholds = Thresholds{5: 2, 4: 8, 3: 6, 2: 4, 1: 0} },
			true,
		},
		{
			"missing tier",
			func(d *Definition) { d.Thresholds = Thresholds{5: 9, 4: 8, 3: 6, 2: 4} },
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := repsDrill()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateInverseThresholds(t *testing.T) {
	d := inverseCounterDrill()
	assert.NoError(t, d.Validate())

	// Increasing cutoffs towards tier 5 are invalid in inverse mode.
	d.Thresholds = Thresholds{5: 10, 4: 2, 3: 4, 2: 6, 1: 100}
	assert.Error(t, d.Validate())
}

func TestLockedFor(t *testing.T) {
	d := repsDrill()
	assert.False(t, d.LockedFor(2.5), "ungated drill is never locked")

	d.MinRating = 4.0
	assert.True(t, d.LockedFor(3.5))
	assert.False(t, d.LockedFor(4.0))
	assert.False(t, d.LockedFor(4.5))
}
