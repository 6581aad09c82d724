package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Serves from the Redis-cached board; on a cache miss it ranks directly
// from the profile table and repopulates the cache.
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultBoardLimit = 10
	maxBoardLimit     = 100
)

// GetLeaderboardQuery requests the top of the board; AccountID is
// optional and adds the caller's own rank even when outside the top.
type GetLeaderboardQuery struct {
	Limit     int
	AccountID shared.AccountID
}

// Validate applies limit defaults.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = defaultBoardLimit
	}
	if q.Limit > maxBoardLimit {
		q.Limit = maxBoardLimit
	}
	return nil
}

// LeaderboardDTO is the ranking payload.
type LeaderboardDTO struct {
	Entries []leaderboard.Entry `json:"entries"`

	// Me is the caller's own row when AccountID was given and ranked.
	Me *leaderboard.Entry `json:"me,omitempty"`

	// FromCache marks whether the cached board served the request.
	FromCache bool `json:"-"`
}

// GetLeaderboardHandler handles GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	cache    leaderboard.Cache
	profiles player.Repository
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
func NewGetLeaderboardHandler(cache leaderboard.Cache, profiles player.Repository) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{cache: cache, profiles: profiles}
}

// Handle executes the query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*LeaderboardDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		entries, err := h.cache.Top(ctx, q.Limit)
		if err == nil {
			dto := &LeaderboardDTO{Entries: entries, FromCache: true}
			h.attachCaller(ctx, q, dto)
			return dto, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("get_leaderboard: cache: %w", err)
		}
	}

	board, err := h.rankFromProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		// Best effort repopulation; the scheduled rebuild is authoritative.
		_ = h.cache.Store(ctx, board)
	}

	dto := &LeaderboardDTO{Entries: board.Top(q.Limit)}
	if q.AccountID.IsValid() {
		if row, ok := board.Find(q.AccountID); ok {
			dto.Me = &row
		}
	}
	return dto, nil
}

func (h *GetLeaderboardHandler) attachCaller(ctx context.Context, q GetLeaderboardQuery, dto *LeaderboardDTO) {
	if !q.AccountID.IsValid() {
		return
	}
	row, err := h.cache.RankOf(ctx, q.AccountID)
	if err != nil {
		return
	}
	dto.Me = &row
}

func (h *GetLeaderboardHandler) rankFromProfiles(ctx context.Context) (*leaderboard.Board, error) {
	profiles, err := h.profiles.TopByXP(ctx, maxBoardLimit)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: rank from profiles: %w", err)
	}
	entries := make([]leaderboard.Entry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, leaderboard.EntryFromProfile(p))
	}
	return leaderboard.NewBoard(entries, time.Now().UTC()), nil
}
