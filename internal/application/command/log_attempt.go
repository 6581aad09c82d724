package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/badge"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG ATTEMPT COMMAND
// The write path of the progression engine: score the submission against
// the catalog drill, derive xp/streak/badges, persist, then commit the
// account's ledger. Persistence failure rolls the whole attempt back.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultXPAward is granted per attempt when the drill does not override it.
const DefaultXPAward = 10

// LogAttemptCommand contains one drill submission.
type LogAttemptCommand struct {
	// AccountID is the authenticated account logging the attempt.
	AccountID shared.AccountID

	// Category and DrillName select the catalog entry.
	Category  string
	DrillName string

	// Count is the submitted count for reps and counter drills.
	Count int

	// Checked holds the checked goal labels for checklist drills.
	Checked []string

	// Date is the practice date (defaults to today if zero).
	Date time.Time

	// Notes is free text from the player.
	Notes string
}

// Validate checks the command's surface before any scoring happens.
func (c LogAttemptCommand) Validate() error {
	if !c.AccountID.IsValid() {
		return shared.NewDomainError("command", "LogAttempt", shared.ErrInvalidID, "account id is required")
	}
	if c.Category == "" {
		return shared.NewDomainError("command", "LogAttempt", shared.ErrEmptyValue, "category is required")
	}
	if c.DrillName == "" {
		return shared.NewDomainError("command", "LogAttempt", shared.ErrEmptyValue, "drill name is required")
	}
	return nil
}

// LogAttemptResult reports the committed outcome of a logged attempt.
type LogAttemptResult struct {
	AttemptID string

	// Mastery and Summary are the scoring verdict.
	Mastery shared.Mastery
	Summary string

	// SuccessPct is set for reps drills only.
	SuccessPct *int

	// XPEarned is the award for this single attempt.
	XPEarned shared.XP

	// TotalXP and Streak are the committed post-attempt values.
	TotalXP shared.XP
	Streak  int

	// NewBadges lists badge IDs unlocked by this attempt.
	NewBadges []string

	// LeveledUp is true when the attempt crossed a ladder boundary;
	// Level is the post-attempt level either way.
	LeveledUp bool
	Level     player.Level

	// Status distinguishes a clean commit from a degraded one where the
	// badge column could not be persisted.
	Status CommitStatus
}

// LogAttemptHandler handles LogAttemptCommand.
type LogAttemptHandler struct {
	catalog  *drill.Catalog
	ledgers  *LedgerRegistry
	attempts attempt.Repository
	profiles player.Repository
	events   shared.EventPublisher
}

// NewLogAttemptHandler creates a new LogAttemptHandler.
func NewLogAttemptHandler(
	catalog *drill.Catalog,
	ledgers *LedgerRegistry,
	attempts attempt.Repository,
	profiles player.Repository,
	events shared.EventPublisher,
) *LogAttemptHandler {
	return &LogAttemptHandler{
		catalog:  catalog,
		ledgers:  ledgers,
		attempts: attempts,
		profiles: profiles,
		events:   events,
	}
}

// Handle executes the log attempt command.
func (h *LogAttemptHandler) Handle(ctx context.Context, cmd LogAttemptCommand) (*LogAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	def, err := h.catalog.FindInCategory(cmd.Category, cmd.DrillName)
	if err != nil {
		return nil, fmt.Errorf("log_attempt: %w", err)
	}

	ledger, err := h.ledgers.ForAccount(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	var (
		result    *LogAttemptResult
		published []shared.Event
		persisted bool
	)

	txErr := ledger.Execute(func(s *Session) error {
		// The lock gate uses the rating derived from accumulated XP, not
		// the self-reported profile rating.
		levelBefore := s.Profile.Level()

		score, err := drill.Score(def, drill.Input{Count: cmd.Count, Checked: cmd.Checked}, levelBefore.Current.Rating)
		if err != nil {
			return err
		}

		award := shared.XP(DefaultXPAward)
		if def.XPAward > 0 {
			award = shared.XP(def.XPAward)
		}

		date := cmd.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}

		rec := &attempt.Attempt{
			ID:            uuid.NewString(),
			AccountID:     cmd.AccountID,
			Category:      def.Category,
			DrillName:     def.Name,
			Date:          date,
			RawCount:      cmd.Count,
			Checked:       cmd.Checked,
			ResultSummary: score.Summary,
			Mastery:       score.Tier,
			SuccessPct:    score.SuccessPct,
			XPEarned:      award,
			Notes:         cmd.Notes,
			CreatedAt:     time.Now().UTC(),
		}
		if err := rec.Validate(); err != nil {
			return err
		}

		// Candidate progression state. Every attempt advances the streak
		// counter; the daily reset lives with the profile source of truth.
		s.Profile.XP = s.Profile.XP.Add(award)
		s.Profile.Streak++
		s.Profile.UpdatedAt = rec.CreatedAt

		snapshot := player.StatsSnapshot{
			XP:            s.Profile.XP,
			Streak:        s.Profile.Streak,
			TotalAttempts: s.Attempts + 1,
		}
		newBadges := badge.Evaluate(s.Profile.Badges, snapshot, rec)
		s.Profile.Badges = append(s.Profile.Badges, newBadges...)

		if err := h.attempts.Insert(ctx, rec); err != nil {
			return fmt.Errorf("log_attempt: persist attempt: %w", err)
		}
		persisted = true
		s.RecordAttempt()

		outcome, err := h.profiles.UpdateProgress(ctx, cmd.AccountID, player.ProgressUpdate{
			XP:     s.Profile.XP,
			Streak: s.Profile.Streak,
			Badges: s.Profile.Badges,
		})
		switch outcome {
		case player.UpdateApplied:
		case player.UpdatePartial:
			// Badge column failed; xp/streak landed. Commit anyway and
			// surface the degradation to the caller.
			s.Status = CommitDegraded
		default:
			return fmt.Errorf("log_attempt: persist progression: %w", err)
		}

		levelAfter := s.Profile.Level()
		leveledUp := levelAfter.Current.Name != levelBefore.Current.Name

		result = &LogAttemptResult{
			AttemptID:  rec.ID,
			Mastery:    score.Tier,
			Summary:    score.Summary,
			SuccessPct: score.SuccessPct,
			XPEarned:   award,
			TotalXP:    s.Profile.XP,
			Streak:     s.Profile.Streak,
			NewBadges:  newBadges,
			LeveledUp:  leveledUp,
			Level:      levelAfter,
			Status:     s.Status,
		}

		published = append(published,
			shared.NewAttemptLoggedEvent(rec.ID, string(cmd.AccountID), def.Category, def.Name, int(score.Tier), int(award)),
			shared.NewXPGainedEvent(string(cmd.AccountID), int(s.Profile.XP)-int(award), int(s.Profile.XP)),
			shared.NewStreakUpdatedEvent(string(cmd.AccountID), s.Profile.Streak),
		)
		if leveledUp {
			published = append(published,
				shared.NewLevelUpEvent(string(cmd.AccountID), levelBefore.Current.Name, levelAfter.Current.Name, int(s.Profile.XP)))
		}
		for _, id := range newBadges {
			published = append(published, shared.NewBadgeUnlockedEvent(string(cmd.AccountID), id))
		}
		return nil
	})
	if txErr != nil {
		if persisted {
			// The attempt row landed but the transaction rolled back, so
			// the cached ledger no longer mirrors the database. Drop it
			// and reload committed state on the next command.
			h.ledgers.Evict(cmd.AccountID)
		}
		return nil, txErr
	}

	// Events go out only for committed attempts.
	for _, ev := range published {
		_ = h.events.Publish(ev)
	}

	return result, nil
}
