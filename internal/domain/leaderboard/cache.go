package leaderboard

import (
	"context"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// Cache stores the ranked board between rebuilds. The Redis adapter backs
// it with a sorted set; a cache miss is signalled with shared.ErrNotFound
// and falls back to a direct database ranking.
type Cache interface {
	// Store replaces the cached board.
	Store(ctx context.Context, board *Board) error

	// Top returns up to limit rows, best first. shared.ErrNotFound when
	// the cache is empty or expired.
	Top(ctx context.Context, limit int) ([]Entry, error)

	// RankOf returns the account's row. shared.ErrNotFound when the
	// account is not on the cached board.
	RankOf(ctx context.Context, accountID shared.AccountID) (Entry, error)

	// Invalidate drops the cached board.
	Invalidate(ctx context.Context) error
}
