package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
	"github.com/paddle-hub/paddle-practice-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK DIGEST JOB
// ══════════════════════════════════════════════════════════════════════════════

// StreakDigestJob reminds players with an active streak who have not
// logged an attempt today. Reminders are best-effort; a delivery failure
// for one account never blocks the rest of the sweep.
type StreakDigestJob struct {
	profiles player.Repository
	attempts attempt.Repository
	sender   notification.Sender
	log      *logger.Logger
	config   StreakDigestConfig

	// now is swapped out in tests.
	now func() time.Time
}

// StreakDigestConfig configures the digest job.
type StreakDigestConfig struct {
	// MaxAccounts bounds how many profiles one sweep inspects.
	MaxAccounts int

	// MinStreak is the smallest streak worth protecting with a reminder.
	MinStreak int

	// Timeout is the maximum duration for one sweep.
	Timeout time.Duration
}

// DefaultStreakDigestConfig returns sensible defaults.
func DefaultStreakDigestConfig() StreakDigestConfig {
	return StreakDigestConfig{
		MaxAccounts: 500,
		MinStreak:   2,
		Timeout:     2 * time.Minute,
	}
}

// NewStreakDigestJob creates the job.
func NewStreakDigestJob(
	profiles player.Repository,
	attempts attempt.Repository,
	sender notification.Sender,
	log *logger.Logger,
	config StreakDigestConfig,
) *StreakDigestJob {
	if log == nil {
		log = logger.Default()
	}
	if config.MaxAccounts <= 0 {
		config.MaxAccounts = DefaultStreakDigestConfig().MaxAccounts
	}
	if config.MinStreak <= 0 {
		config.MinStreak = DefaultStreakDigestConfig().MinStreak
	}
	return &StreakDigestJob{
		profiles: profiles,
		attempts: attempts,
		sender:   sender,
		log:      log.With(logger.String("job", "streak_digest")),
		config:   config,
		now:      time.Now,
	}
}

// Name returns the job name.
func (j *StreakDigestJob) Name() string { return "streak_digest" }

// Description returns a human-readable description.
func (j *StreakDigestJob) Description() string {
	return "Sends streak reminders to players who have not practiced today"
}

// Run executes one reminder sweep.
func (j *StreakDigestJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	profiles, err := j.profiles.TopByXP(ctx, j.config.MaxAccounts)
	if err != nil {
		return fmt.Errorf("streak digest: load profiles: %w", err)
	}

	var reminded, failed int
	for _, p := range profiles {
		if p.Streak < j.config.MinStreak {
			continue
		}

		practiced, err := j.practicedToday(ctx, p)
		if err != nil {
			failed++
			j.log.Warn("skipping account, attempt log unavailable",
				logger.String("account_id", string(p.ID)),
				logger.Err(err))
			continue
		}
		if practiced {
			continue
		}

		n, err := notification.StreakReminder(p.ID, p.Streak)
		if err != nil {
			failed++
			continue
		}
		if err := j.sender.Deliver(ctx, n); err != nil {
			failed++
			j.log.Warn("reminder delivery failed",
				logger.String("account_id", string(p.ID)),
				logger.Err(err))
			continue
		}
		reminded++
	}

	j.log.Info("streak digest completed",
		logger.Int("inspected", len(profiles)),
		logger.Int("reminded", reminded),
		logger.Int("failed", failed))
	return nil
}

// practicedToday reports whether the newest attempt falls in today's
// day bucket.
func (j *StreakDigestJob) practicedToday(ctx context.Context, p *player.Profile) (bool, error) {
	attempts, err := j.attempts.ListByAccount(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if len(attempts) == 0 {
		return false, nil
	}

	return timeutil.SameDay(attempts[0].Date, j.now()), nil
}
