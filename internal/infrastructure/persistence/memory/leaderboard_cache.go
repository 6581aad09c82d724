// Package memory provides process-local adapters for development runs
// without external services.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// LeaderboardCache keeps the ranked board in process memory. It honors
// the same TTL contract as the Redis adapter so callers cannot tell the
// difference; the snapshot is lost on restart.
type LeaderboardCache struct {
	mu    sync.RWMutex
	board *leaderboard.Board
	ttl   time.Duration
}

// NewLeaderboardCache creates a cache whose snapshot expires after ttl.
// ttl <= 0 means entries never expire.
func NewLeaderboardCache(ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{ttl: ttl}
}

// Store replaces the cached board.
func (c *LeaderboardCache) Store(_ context.Context, board *leaderboard.Board) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board = board
	return nil
}

// Top returns up to limit rows, best first.
func (c *LeaderboardCache) Top(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	board, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return board.Top(limit), nil
}

// RankOf returns the account's row.
func (c *LeaderboardCache) RankOf(_ context.Context, accountID shared.AccountID) (leaderboard.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	board, err := c.snapshot()
	if err != nil {
		return leaderboard.Entry{}, err
	}
	if row, ok := board.Find(accountID); ok {
		return row, nil
	}
	return leaderboard.Entry{}, shared.ErrNotFound
}

// Invalidate drops the cached board.
func (c *LeaderboardCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board = nil
	return nil
}

// snapshot returns the live board or shared.ErrNotFound when empty or
// past its TTL. Callers hold at least a read lock.
func (c *LeaderboardCache) snapshot() (*leaderboard.Board, error) {
	if c.board == nil {
		return nil, shared.ErrNotFound
	}
	if c.ttl > 0 && time.Since(c.board.GeneratedAt) > c.ttl {
		return nil, shared.ErrNotFound
	}
	return c.board, nil
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)
