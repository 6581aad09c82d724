package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// The ranked board lives in three keys written together:
//   leaderboard:xp      - sorted set, member=account id, score=xp
//   leaderboard:entries - hash, account id -> entry JSON
//   leaderboard:meta    - board generation timestamp
// All three carry the same TTL, so the board expires as a unit.
// ══════════════════════════════════════════════════════════════════════════════

const (
	keyBoardXP      = PrefixLeaderboard + "xp"
	keyBoardEntries = PrefixLeaderboard + "entries"
	keyBoardMeta    = PrefixLeaderboard + "meta"
)

// LeaderboardCache implements leaderboard.Cache on Redis sorted sets.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a new LeaderboardCache. A zero ttl uses
// the default.
func NewLeaderboardCache(cache *Cache, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = TTLLeaderboard
	}
	return &LeaderboardCache{client: cache.Client(), ttl: ttl}
}

// Store implements leaderboard.Cache.
func (c *LeaderboardCache) Store(ctx context.Context, board *leaderboard.Board) error {
	members := make([]redis.Z, 0, board.Len())
	entries := make(map[string]interface{}, board.Len())
	for _, e := range board.Entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		members = append(members, redis.Z{Score: float64(e.XP), Member: string(e.AccountID)})
		entries[string(e.AccountID)] = data
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keyBoardXP, keyBoardEntries, keyBoardMeta)
	if len(members) > 0 {
		pipe.ZAdd(ctx, keyBoardXP, members...)
		pipe.HSet(ctx, keyBoardEntries, entries)
	}
	pipe.Set(ctx, keyBoardMeta, board.GeneratedAt.Format(time.RFC3339Nano), c.ttl)
	pipe.Expire(ctx, keyBoardXP, c.ttl)
	pipe.Expire(ctx, keyBoardEntries, c.ttl)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboard store: %w", err)
	}
	return nil
}

// Top implements leaderboard.Cache.
func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	ids, err := c.client.ZRevRange(ctx, keyBoardXP, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	if len(ids) == 0 {
		return nil, shared.NewDomainError("leaderboard", "Top", shared.ErrNotFound, "board not cached")
	}

	raw, err := c.client.HMGet(ctx, keyBoardEntries, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: entries: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(ids))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			// Entry hash expired out from under the sorted set.
			return nil, shared.NewDomainError("leaderboard", "Top", shared.ErrNotFound, "board partially evicted")
		}
		var e leaderboard.Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		e.Rank = leaderboard.Rank(i + 1)
		entries = append(entries, e)
	}
	return entries, nil
}

// RankOf implements leaderboard.Cache.
func (c *LeaderboardCache) RankOf(ctx context.Context, accountID shared.AccountID) (leaderboard.Entry, error) {
	rank, err := c.client.ZRevRank(ctx, keyBoardXP, string(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return leaderboard.Entry{}, shared.NewDomainError("leaderboard", "RankOf", shared.ErrNotFound,
				fmt.Sprintf("account %s not on board", accountID))
		}
		return leaderboard.Entry{}, fmt.Errorf("leaderboard rank: %w", err)
	}

	raw, err := c.client.HGet(ctx, keyBoardEntries, string(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return leaderboard.Entry{}, shared.NewDomainError("leaderboard", "RankOf", shared.ErrNotFound,
				"board partially evicted")
		}
		return leaderboard.Entry{}, fmt.Errorf("leaderboard rank: entry: %w", err)
	}

	var e leaderboard.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return leaderboard.Entry{}, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	e.Rank = leaderboard.Rank(rank + 1)
	return e, nil
}

// Invalidate implements leaderboard.Cache.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, keyBoardXP, keyBoardEntries, keyBoardMeta).Err()
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)
