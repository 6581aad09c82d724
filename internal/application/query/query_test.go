package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/application/query"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/badge"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

const testAccount = shared.AccountID("acc-q")

type stubAttemptRepo struct {
	records []*attempt.Attempt
}

func (s *stubAttemptRepo) Insert(context.Context, *attempt.Attempt) error { return nil }
func (s *stubAttemptRepo) Delete(context.Context, shared.AccountID, string) error {
	return nil
}
func (s *stubAttemptRepo) ListByAccount(_ context.Context, id shared.AccountID) ([]*attempt.Attempt, error) {
	var out []*attempt.Attempt
	for _, a := range s.records {
		if a.AccountID == id {
			out = append(out, a)
		}
	}
	return out, nil
}
func (s *stubAttemptRepo) CountByAccount(_ context.Context, id shared.AccountID) (int, error) {
	list, _ := s.ListByAccount(context.Background(), id)
	return len(list), nil
}

type stubProfileRepo struct {
	profiles map[shared.AccountID]*player.Profile
}

func (s *stubProfileRepo) GetByID(_ context.Context, id shared.AccountID) (*player.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p.Clone(), nil
}
func (s *stubProfileRepo) Create(context.Context, *player.Profile) error { return nil }
func (s *stubProfileRepo) UpdateProgress(context.Context, shared.AccountID, player.ProgressUpdate) (player.UpdateOutcome, error) {
	return player.UpdateApplied, nil
}
func (s *stubProfileRepo) UpdateProfile(context.Context, *player.Profile) error { return nil }
func (s *stubProfileRepo) TopByXP(_ context.Context, limit int) ([]*player.Profile, error) {
	var out []*player.Profile
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	return out, nil
}

type stubBoardCache struct {
	board *leaderboard.Board
}

func (s *stubBoardCache) Store(_ context.Context, b *leaderboard.Board) error {
	s.board = b
	return nil
}
func (s *stubBoardCache) Top(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	if s.board == nil {
		return nil, shared.ErrNotFound
	}
	return s.board.Top(limit), nil
}
func (s *stubBoardCache) RankOf(_ context.Context, id shared.AccountID) (leaderboard.Entry, error) {
	if s.board == nil {
		return leaderboard.Entry{}, shared.ErrNotFound
	}
	if row, ok := s.board.Find(id); ok {
		return row, nil
	}
	return leaderboard.Entry{}, shared.ErrNotFound
}
func (s *stubBoardCache) Invalidate(context.Context) error {
	s.board = nil
	return nil
}

func seedAttempt(id string, category string, mastery int, xp int, daysAgo int) *attempt.Attempt {
	at := time.Now().UTC().AddDate(0, 0, -daysAgo)
	return &attempt.Attempt{
		ID:            id,
		AccountID:     testAccount,
		Category:      category,
		DrillName:     "some drill",
		Date:          at,
		ResultSummary: "7/10 serves",
		Mastery:       shared.Mastery(mastery),
		XPEarned:      shared.XP(xp),
		CreatedAt:     at,
	}
}

func TestGetProfile(t *testing.T) {
	profile, err := player.NewProfile(testAccount)
	require.NoError(t, err)
	profile.XP = 1200
	profile.Streak = 3
	profile.Badges = []string{badge.IDFirstSteps, "legacy_badge"}

	attempts := &stubAttemptRepo{records: []*attempt.Attempt{
		seedAttempt("a1", "Dinking", 4, 10, 0),
		seedAttempt("a2", "Dinking", 2, 10, 1),
	}}
	handler := query.NewGetProfileHandler(
		&stubProfileRepo{profiles: map[shared.AccountID]*player.Profile{testAccount: profile}},
		attempts,
	)

	dto, err := handler.Handle(context.Background(), query.GetProfileQuery{AccountID: testAccount})
	require.NoError(t, err)

	assert.Equal(t, 1200, dto.XP)
	assert.Equal(t, "DUPR 3.0", dto.Level.Name)
	assert.False(t, dto.Level.AtMax)
	assert.Equal(t, 2, dto.TotalAttempts)
	assert.InDelta(t, 3.0, dto.AvgMastery, 0.001)

	require.Len(t, dto.Badges, 2)
	assert.Equal(t, "First Steps", dto.Badges[0].Name)
	// Unknown stored IDs surface as-is instead of disappearing.
	assert.Equal(t, "legacy_badge", dto.Badges[1].Name)
}

func TestGetHistory_FilterAndLimit(t *testing.T) {
	attempts := &stubAttemptRepo{records: []*attempt.Attempt{
		seedAttempt("a1", "Dinking", 3, 10, 0),
		seedAttempt("a2", "Volleys", 3, 10, 1),
		seedAttempt("a3", "Dinking", 3, 10, 2),
	}}
	handler := query.NewGetHistoryHandler(attempts)

	dto, err := handler.Handle(context.Background(), query.GetHistoryQuery{
		AccountID: testAccount,
		Category:  "Dinking",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, dto.Total)
	require.Len(t, dto.Attempts, 2)
	assert.Equal(t, "a1", dto.Attempts[0].ID)

	limited, err := handler.Handle(context.Background(), query.GetHistoryQuery{
		AccountID: testAccount,
		Limit:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, limited.Total)
	assert.Len(t, limited.Attempts, 1)
}

func TestGetCategoryStats_IncludesEmptyCategories(t *testing.T) {
	attempts := &stubAttemptRepo{records: []*attempt.Attempt{
		seedAttempt("a1", "Dinking", 3, 60, 0),
		seedAttempt("a2", "Dinking", 3, 60, 1),
	}}
	handler := query.NewGetCategoryStatsHandler(attempts, drill.Default())

	dto, err := handler.Handle(context.Background(), query.GetCategoryStatsQuery{AccountID: testAccount})
	require.NoError(t, err)

	assert.Len(t, dto.Categories, len(drill.Default().Categories()))
	var dinking *query.CategoryStatDTO
	for i := range dto.Categories {
		if dto.Categories[i].Category == "Dinking" {
			dinking = &dto.Categories[i]
		} else {
			assert.Zero(t, dto.Categories[i].Attempts)
		}
	}
	require.NotNil(t, dinking)
	assert.Equal(t, 120, dinking.XP)
	assert.Equal(t, 2, dinking.Attempts)
	assert.Equal(t, 2, dinking.Level)
}

func TestGetWeeklyActivity(t *testing.T) {
	attempts := &stubAttemptRepo{records: []*attempt.Attempt{
		seedAttempt("a1", "Dinking", 3, 10, 0),
		seedAttempt("a2", "Dinking", 3, 15, 0),
		seedAttempt("a3", "Volleys", 3, 10, 9),
	}}
	handler := query.NewGetWeeklyActivityHandler(attempts)

	dto, err := handler.Handle(context.Background(), query.GetWeeklyActivityQuery{AccountID: testAccount})
	require.NoError(t, err)

	require.Len(t, dto.Days, 7)
	today := dto.Days[6]
	assert.Equal(t, 2, today.Attempts)
	assert.Equal(t, 25, today.XP)

	var total int
	for _, d := range dto.Days {
		total += d.Attempts
	}
	// The nine-day-old attempt falls outside the window.
	assert.Equal(t, 2, total)
}

func TestGetLeaderboard_CacheMissFallsBackAndRepopulates(t *testing.T) {
	p1, _ := player.NewProfile("acc-1")
	p1.Username = "Ann"
	p1.XP = 500
	p2, _ := player.NewProfile("acc-2")
	p2.Username = "Bo"
	p2.XP = 900

	cache := &stubBoardCache{}
	handler := query.NewGetLeaderboardHandler(cache, &stubProfileRepo{
		profiles: map[shared.AccountID]*player.Profile{p1.ID: p1, p2.ID: p2},
	})

	dto, err := handler.Handle(context.Background(), query.GetLeaderboardQuery{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.False(t, dto.FromCache)
	require.Len(t, dto.Entries, 2)
	assert.Equal(t, shared.AccountID("acc-2"), dto.Entries[0].AccountID)
	require.NotNil(t, dto.Me)
	assert.Equal(t, leaderboard.Rank(2), dto.Me.Rank)
	require.NotNil(t, cache.board)

	cached, err := handler.Handle(context.Background(), query.GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
}

func TestGetDrills_LockStateFollowsLadderRating(t *testing.T) {
	profile, _ := player.NewProfile(testAccount)
	profile.XP = 5100 // ladder rating 4.0

	handler := query.NewGetDrillsHandler(drill.Default(), &stubProfileRepo{
		profiles: map[shared.AccountID]*player.Profile{testAccount: profile},
	})

	dto, err := handler.Handle(context.Background(), query.GetDrillsQuery{
		AccountID: testAccount,
		Category:  "Serve & Return",
	})
	require.NoError(t, err)
	require.Len(t, dto.Drills, 2)

	for _, d := range dto.Drills {
		switch d.Name {
		case "Deep Target Practice":
			assert.False(t, d.Locked)
		case "Pro Target Practice (Small)":
			// MinRating 4.0 is satisfied at ladder rating 4.0.
			assert.False(t, d.Locked)
		}
	}

	anon, err := handler.Handle(context.Background(), query.GetDrillsQuery{Category: "Serve & Return"})
	require.NoError(t, err)
	for _, d := range anon.Drills {
		if d.Name == "Pro Target Practice (Small)" {
			assert.True(t, d.Locked)
		}
	}
}
