package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/application/command"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/badge"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

const testAccount = shared.AccountID("acc-1")

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeAttemptRepo struct {
	mu        sync.Mutex
	records   []*attempt.Attempt
	insertErr error
	deleteErr error
}

func (f *fakeAttemptRepo) Insert(_ context.Context, a *attempt.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records = append(f.records, a)
	return nil
}

func (f *fakeAttemptRepo) Delete(_ context.Context, accountID shared.AccountID, attemptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, a := range f.records {
		if a.ID == attemptID && a.AccountID == accountID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeAttemptRepo) ListByAccount(_ context.Context, accountID shared.AccountID) ([]*attempt.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*attempt.Attempt
	for _, a := range f.records {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) CountByAccount(_ context.Context, accountID shared.AccountID) (int, error) {
	list, _ := f.ListByAccount(context.Background(), accountID)
	return len(list), nil
}

type fakeProfileRepo struct {
	mu          sync.Mutex
	profiles    map[shared.AccountID]*player.Profile
	progressErr error
	outcome     player.UpdateOutcome
}

func newFakeProfileRepo(profiles ...*player.Profile) *fakeProfileRepo {
	m := make(map[shared.AccountID]*player.Profile)
	for _, p := range profiles {
		m[p.ID] = p.Clone()
	}
	return &fakeProfileRepo{profiles: m, outcome: player.UpdateApplied}
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id shared.AccountID) (*player.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p.Clone(), nil
}

func (f *fakeProfileRepo) Create(_ context.Context, p *player.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.ID]; ok {
		return shared.ErrAlreadyExists
	}
	f.profiles[p.ID] = p.Clone()
	return nil
}

func (f *fakeProfileRepo) UpdateProgress(_ context.Context, id shared.AccountID, upd player.ProgressUpdate) (player.UpdateOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome == player.UpdateFailed {
		return player.UpdateFailed, f.progressErr
	}
	p := f.profiles[id]
	p.XP = upd.XP
	p.Streak = upd.Streak
	if f.outcome == player.UpdateApplied {
		p.Badges = upd.Badges
		return player.UpdateApplied, nil
	}
	return player.UpdatePartial, shared.ErrPartialUpdate
}

func (f *fakeProfileRepo) UpdateProfile(_ context.Context, p *player.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p.Clone()
	return nil
}

func (f *fakeProfileRepo) TopByXP(_ context.Context, limit int) ([]*player.Profile, error) {
	return nil, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func (f *fakeBus) Publish(ev shared.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeBus) byType(t shared.EventType) []shared.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shared.Event
	for _, ev := range f.events {
		if ev.EventType() == t {
			out = append(out, ev)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURE
// ══════════════════════════════════════════════════════════════════════════════

type fixture struct {
	attempts *fakeAttemptRepo
	profiles *fakeProfileRepo
	bus      *fakeBus
	ledgers  *command.LedgerRegistry
	log      *command.LogAttemptHandler
	del      *command.DeleteAttemptHandler
}

func newFixture(t *testing.T, startXP int) *fixture {
	t.Helper()
	profile, err := player.NewProfile(testAccount)
	require.NoError(t, err)
	profile.XP = shared.XP(startXP)

	attempts := &fakeAttemptRepo{}
	profiles := newFakeProfileRepo(profile)
	bus := &fakeBus{}
	ledgers := command.NewLedgerRegistry(profiles, attempts)

	return &fixture{
		attempts: attempts,
		profiles: profiles,
		bus:      bus,
		ledgers:  ledgers,
		log:      command.NewLogAttemptHandler(drill.Default(), ledgers, attempts, profiles, bus),
		del:      command.NewDeleteAttemptHandler(ledgers, attempts, bus),
	}
}

func deepTargetCmd(count int) command.LogAttemptCommand {
	return command.LogAttemptCommand{
		AccountID: testAccount,
		Category:  "Serve & Return",
		DrillName: "Deep Target Practice",
		Count:     count,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestLogAttempt_HappyPath(t *testing.T) {
	fx := newFixture(t, 0)

	res, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
	require.NoError(t, err)

	assert.Equal(t, shared.Mastery(4), res.Mastery)
	assert.Equal(t, "8/10 serves", res.Summary)
	require.NotNil(t, res.SuccessPct)
	assert.Equal(t, 80, *res.SuccessPct)
	assert.Equal(t, shared.XP(command.DefaultXPAward), res.XPEarned)
	assert.Equal(t, shared.XP(10), res.TotalXP)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, []string{badge.IDFirstSteps}, res.NewBadges)
	assert.Equal(t, command.CommitApplied, res.Status)
	assert.False(t, res.LeveledUp)

	require.Len(t, fx.attempts.records, 1)
	assert.Len(t, fx.bus.byType(shared.EventAttemptLogged), 1)
	assert.Len(t, fx.bus.byType(shared.EventBadgeUnlocked), 1)
}

func TestLogAttempt_RollbackOnInsertFailure(t *testing.T) {
	fx := newFixture(t, 0)
	fx.attempts.insertErr = errors.New("connection refused")

	_, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
	require.Error(t, err)

	ledger, lerr := fx.ledgers.ForAccount(context.Background(), testAccount)
	require.NoError(t, lerr)
	profile, count := ledger.Snapshot()
	assert.Equal(t, shared.XP(0), profile.XP)
	assert.Equal(t, 0, profile.Streak)
	assert.Empty(t, profile.Badges)
	assert.Equal(t, 0, count)
	assert.Empty(t, fx.bus.events)
}

func TestLogAttempt_RollbackOnProgressFailure(t *testing.T) {
	fx := newFixture(t, 0)
	fx.profiles.outcome = player.UpdateFailed
	fx.profiles.progressErr = errors.New("write timeout")

	_, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
	require.Error(t, err)

	ledger, lerr := fx.ledgers.ForAccount(context.Background(), testAccount)
	require.NoError(t, lerr)
	profile, _ := ledger.Snapshot()
	assert.Equal(t, shared.XP(0), profile.XP)
	assert.Empty(t, fx.bus.events)
}

func TestLogAttempt_FailedCommitDropsCachedLedger(t *testing.T) {
	fx := newFixture(t, 0)
	fx.profiles.outcome = player.UpdateFailed
	fx.profiles.progressErr = errors.New("write timeout")

	_, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
	require.Error(t, err)

	// The attempt row landed before the progression write failed, so the
	// registry must reload instead of serving the stale cached count.
	ledger, lerr := fx.ledgers.ForAccount(context.Background(), testAccount)
	require.NoError(t, lerr)
	profile, count := ledger.Snapshot()
	assert.Equal(t, shared.XP(0), profile.XP)
	assert.Equal(t, 1, count)
}

func TestLogAttempt_DegradedCommitOnBadgeColumnFailure(t *testing.T) {
	fx := newFixture(t, 0)
	fx.profiles.outcome = player.UpdatePartial

	res, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
	require.NoError(t, err)

	assert.Equal(t, command.CommitDegraded, res.Status)
	assert.Equal(t, shared.XP(10), res.TotalXP)

	// In-memory state commits the badge even when the column failed.
	ledger, _ := fx.ledgers.ForAccount(context.Background(), testAccount)
	profile, count := ledger.Snapshot()
	assert.Contains(t, profile.Badges, badge.IDFirstSteps)
	assert.Equal(t, 1, count)
}

func TestLogAttempt_LevelUpFlag(t *testing.T) {
	fx := newFixture(t, 995)

	res, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
	require.NoError(t, err)

	assert.True(t, res.LeveledUp)
	assert.Equal(t, shared.XP(1005), res.TotalXP)
	assert.InDelta(t, 3.0, res.Level.Current.Rating, 0.001)
	assert.Len(t, fx.bus.byType(shared.EventLevelUp), 1)
}

func TestLogAttempt_ZeroCountRejected(t *testing.T) {
	fx := newFixture(t, 0)

	_, err := fx.log.Handle(context.Background(), deepTargetCmd(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Empty(t, fx.attempts.records)
	assert.Empty(t, fx.bus.events)
}

func TestLogAttempt_LockedDrillRejected(t *testing.T) {
	// Fresh account has ladder rating 2.5; Pro Target Practice needs 4.0.
	fx := newFixture(t, 0)

	_, err := fx.log.Handle(context.Background(), command.LogAttemptCommand{
		AccountID: testAccount,
		Category:  "Serve & Return",
		DrillName: "Pro Target Practice (Small)",
		Count:     9,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrLocked)
	assert.Empty(t, fx.attempts.records)
}

func TestLogAttempt_UnknownDrill(t *testing.T) {
	fx := newFixture(t, 0)

	_, err := fx.log.Handle(context.Background(), command.LogAttemptCommand{
		AccountID: testAccount,
		Category:  "Serve & Return",
		DrillName: "No Such Drill",
		Count:     5,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteAttempt_DoesNotRewindProgression(t *testing.T) {
	fx := newFixture(t, 0)

	res, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
	require.NoError(t, err)

	delRes, err := fx.del.Handle(context.Background(), command.DeleteAttemptCommand{
		AccountID: testAccount,
		AttemptID: res.AttemptID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, delRes.RemainingAttempts)
	assert.Empty(t, fx.attempts.records)

	// XP, streak and badges earned from the attempt stay.
	ledger, _ := fx.ledgers.ForAccount(context.Background(), testAccount)
	profile, count := ledger.Snapshot()
	assert.Equal(t, shared.XP(10), profile.XP)
	assert.Equal(t, 1, profile.Streak)
	assert.Contains(t, profile.Badges, badge.IDFirstSteps)
	assert.Equal(t, 0, count)
}

func TestDeleteAttempt_NotFound(t *testing.T) {
	fx := newFixture(t, 0)

	_, err := fx.del.Handle(context.Background(), command.DeleteAttemptCommand{
		AccountID: testAccount,
		AttemptID: "missing",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLogAttempt_SerializedPerAccount(t *testing.T) {
	fx := newFixture(t, 0)

	const n = 25
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := fx.log.Handle(context.Background(), deepTargetCmd(8))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ledger, _ := fx.ledgers.ForAccount(context.Background(), testAccount)
	profile, count := ledger.Snapshot()
	assert.Equal(t, shared.XP(n*command.DefaultXPAward), profile.XP)
	assert.Equal(t, n, profile.Streak)
	assert.Equal(t, n, count)
	assert.Len(t, fx.attempts.records, n)
}

func TestUpdateProfile(t *testing.T) {
	// 2500 XP unlocks the 3.5 rung.
	fx := newFixture(t, 2500)
	handler := command.NewUpdateProfileHandler(fx.ledgers, fx.profiles, fx.bus)

	name := "  DinkMaster  "
	rating := 3.5
	res, err := handler.Handle(context.Background(), command.UpdateProfileCommand{
		AccountID: testAccount,
		Username:  &name,
		Rating:    &rating,
	})
	require.NoError(t, err)
	assert.Equal(t, "DinkMaster", res.Profile.Username)
	assert.InDelta(t, 3.5, res.Profile.Rating, 0.001)
	assert.ElementsMatch(t, []string{"username", "rating"}, res.ChangedFields)

	stored, err := fx.profiles.GetByID(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, "DinkMaster", stored.Username)
}

func TestUpdateProfile_RatingLockedUntilEarned(t *testing.T) {
	fx := newFixture(t, 0)
	handler := command.NewUpdateProfileHandler(fx.ledgers, fx.profiles, fx.bus)

	// A fresh account sits on the bottom rung; 3.0 needs 1000 XP.
	rating := 3.0
	_, err := handler.Handle(context.Background(), command.UpdateProfileCommand{
		AccountID: testAccount,
		Rating:    &rating,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrLocked)
	assert.Empty(t, fx.bus.events)

	stored, gerr := fx.profiles.GetByID(context.Background(), testAccount)
	require.NoError(t, gerr)
	assert.InDelta(t, player.Ladder[0].Rating, stored.Rating, 0.001)
}

func TestUpdateProfile_RatingUnlocksWithXP(t *testing.T) {
	fx := newFixture(t, 1000)
	handler := command.NewUpdateProfileHandler(fx.ledgers, fx.profiles, fx.bus)

	rating := 3.0
	res, err := handler.Handle(context.Background(), command.UpdateProfileCommand{
		AccountID: testAccount,
		Rating:    &rating,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.Profile.Rating, 0.001)

	// The next rung stays locked.
	rating = 3.5
	_, err = handler.Handle(context.Background(), command.UpdateProfileCommand{
		AccountID: testAccount,
		Rating:    &rating,
	})
	assert.ErrorIs(t, err, shared.ErrLocked)
}

func TestUpdateProfile_Validation(t *testing.T) {
	fx := newFixture(t, 0)
	handler := command.NewUpdateProfileHandler(fx.ledgers, fx.profiles, fx.bus)

	blank := "   "
	_, err := handler.Handle(context.Background(), command.UpdateProfileCommand{
		AccountID: testAccount,
		Username:  &blank,
	})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	tooHigh := 9.5
	_, err = handler.Handle(context.Background(), command.UpdateProfileCommand{
		AccountID: testAccount,
		Rating:    &tooHigh,
	})
	assert.ErrorIs(t, err, shared.ErrOutOfRange)

	_, err = handler.Handle(context.Background(), command.UpdateProfileCommand{
		AccountID: testAccount,
	})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}
