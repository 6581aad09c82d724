// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION LEDGER
// The ledger is the per-account authority on progression state. Commands
// for one account are serialized through its ledger; in-memory state is
// replaced only after persistence succeeds, so a failed write leaves the
// committed state untouched.
// ══════════════════════════════════════════════════════════════════════════════

// CommitStatus describes how a ledger transaction finished.
type CommitStatus int

const (
	// CommitFailed - nothing was persisted, committed state is unchanged.
	CommitFailed CommitStatus = iota

	// CommitApplied - every write landed.
	CommitApplied

	// CommitDegraded - the primary writes landed but a non-essential part
	// (the badge column) could not be stored. The transaction still
	// commits in memory.
	CommitDegraded
)

func (s CommitStatus) String() string {
	switch s {
	case CommitApplied:
		return "applied"
	case CommitDegraded:
		return "degraded"
	default:
		return "failed"
	}
}

// Session is the working state a ledger transaction mutates. Profile is a
// deep clone of the committed profile; mutations become visible only when
// the transaction function returns nil.
type Session struct {
	// Profile is the working copy. Safe to mutate.
	Profile *player.Profile

	// Attempts is the committed total attempt count for the account.
	Attempts int

	// Status is set by the transaction to report a degraded commit.
	// Defaults to CommitApplied.
	Status CommitStatus

	attemptsDelta int
}

// RecordAttempt marks that the transaction persisted one new attempt.
func (s *Session) RecordAttempt() {
	s.attemptsDelta++
}

// RemoveAttempt marks that the transaction deleted one attempt.
func (s *Session) RemoveAttempt() {
	s.attemptsDelta--
}

// Ledger serializes progression writes for one account and holds its
// committed in-memory state.
type Ledger struct {
	mu        sync.Mutex
	accountID shared.AccountID
	profile   *player.Profile
	attempts  int
}

// NewLedger builds a ledger seeded with the persisted state.
func NewLedger(profile *player.Profile, attemptCount int) *Ledger {
	return &Ledger{
		accountID: profile.ID,
		profile:   profile,
		attempts:  attemptCount,
	}
}

// AccountID returns the account the ledger belongs to.
func (l *Ledger) AccountID() shared.AccountID {
	return l.accountID
}

// Snapshot returns a clone of the committed profile and the attempt count.
func (l *Ledger) Snapshot() (*player.Profile, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile.Clone(), l.attempts
}

// Execute runs fn under the ledger lock with a working session. When fn
// returns nil the session's profile and attempt delta replace the
// committed state; on error the committed state is left exactly as it
// was.
func (l *Ledger) Execute(fn func(s *Session) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	session := &Session{
		Profile:  l.profile.Clone(),
		Attempts: l.attempts,
		Status:   CommitApplied,
	}

	if err := fn(session); err != nil {
		return err
	}

	l.profile = session.Profile
	l.attempts += session.attemptsDelta
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER REGISTRY
// ══════════════════════════════════════════════════════════════════════════════

// LedgerRegistry hands out one ledger per account, loading committed
// state from persistence on first use.
type LedgerRegistry struct {
	mu      sync.Mutex
	ledgers map[shared.AccountID]*Ledger

	profiles player.Repository
	attempts attempt.Repository
}

// NewLedgerRegistry creates an empty registry backed by the repositories.
func NewLedgerRegistry(profiles player.Repository, attempts attempt.Repository) *LedgerRegistry {
	return &LedgerRegistry{
		ledgers:  make(map[shared.AccountID]*Ledger),
		profiles: profiles,
		attempts: attempts,
	}
}

// ForAccount returns the account's ledger, creating and seeding it on
// first access. Returns shared.ErrNotFound when no profile exists.
func (r *LedgerRegistry) ForAccount(ctx context.Context, accountID shared.AccountID) (*Ledger, error) {
	r.mu.Lock()
	if ledger, ok := r.ledgers[accountID]; ok {
		r.mu.Unlock()
		return ledger, nil
	}
	r.mu.Unlock()

	profile, err := r.profiles.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ledger: load profile %s: %w", accountID, err)
	}
	count, err := r.attempts.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ledger: count attempts for %s: %w", accountID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have seeded the ledger while we were loading.
	if ledger, ok := r.ledgers[accountID]; ok {
		return ledger, nil
	}
	ledger := NewLedger(profile, count)
	r.ledgers[accountID] = ledger
	return ledger, nil
}

// Register seeds a ledger directly, used after provisioning a fresh
// profile so the first command does not round-trip to the database.
func (r *LedgerRegistry) Register(profile *player.Profile) *Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger := NewLedger(profile.Clone(), 0)
	r.ledgers[profile.ID] = ledger
	return ledger
}

// Evict drops the account's ledger so the next command reloads from
// persistence.
func (r *LedgerRegistry) Evict(accountID shared.AccountID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ledgers, accountID)
}
