// Package jobs contains the scheduled jobs of the practice hub.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildLeaderboardJob projects all profiles into a ranked board and
// refreshes the cache. The on-request fallback in the query layer covers
// cache misses between runs; this job keeps the common path warm.
type RebuildLeaderboardJob struct {
	profiles player.Repository
	cache    leaderboard.Cache
	events   shared.EventPublisher
	log      *logger.Logger
	config   RebuildLeaderboardConfig
}

// RebuildLeaderboardConfig configures the rebuild job.
type RebuildLeaderboardConfig struct {
	// MaxEntries bounds how many profiles the board holds.
	MaxEntries int

	// Timeout is the maximum duration for one rebuild.
	Timeout time.Duration
}

// DefaultRebuildLeaderboardConfig returns sensible defaults.
func DefaultRebuildLeaderboardConfig() RebuildLeaderboardConfig {
	return RebuildLeaderboardConfig{
		MaxEntries: 500,
		Timeout:    time.Minute,
	}
}

// NewRebuildLeaderboardJob creates the job.
func NewRebuildLeaderboardJob(
	profiles player.Repository,
	cache leaderboard.Cache,
	events shared.EventPublisher,
	log *logger.Logger,
	config RebuildLeaderboardConfig,
) *RebuildLeaderboardJob {
	if log == nil {
		log = logger.Default()
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultRebuildLeaderboardConfig().MaxEntries
	}
	return &RebuildLeaderboardJob{
		profiles: profiles,
		cache:    cache,
		events:   events,
		log:      log.With(logger.String("job", "rebuild_leaderboard")),
		config:   config,
	}
}

// Name returns the job name.
func (j *RebuildLeaderboardJob) Name() string { return "rebuild_leaderboard" }

// Description returns a human-readable description.
func (j *RebuildLeaderboardJob) Description() string {
	return "Projects profile XP into the ranked leaderboard and refreshes the cache"
}

// Run executes one rebuild.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	profiles, err := j.profiles.TopByXP(ctx, j.config.MaxEntries)
	if err != nil {
		return fmt.Errorf("rebuild leaderboard: load profiles: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, leaderboard.EntryFromProfile(p))
	}
	board := leaderboard.NewBoard(entries, time.Now().UTC())

	if err := j.cache.Store(ctx, board); err != nil {
		return fmt.Errorf("rebuild leaderboard: store board: %w", err)
	}

	duration := time.Since(startedAt)
	if j.events != nil {
		_ = j.events.Publish(shared.NewLeaderboardRebuiltEvent(board.Len(), duration))
	}

	j.log.Info("leaderboard rebuilt",
		logger.Int("entries", board.Len()),
		logger.Duration("duration", duration))
	return nil
}
