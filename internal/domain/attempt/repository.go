package attempt

import (
	"context"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// Repository is the persistence contract for the attempt log. The
// concrete adapter must tolerate the drifting remote column layout; the
// domain only sees fully-shaped Attempt records.
type Repository interface {
	// Insert writes a new attempt record.
	Insert(ctx context.Context, a *Attempt) error

	// Delete removes an attempt by ID. shared.ErrNotFound if absent.
	Delete(ctx context.Context, accountID shared.AccountID, attemptID string) error

	// ListByAccount returns the account's attempts, newest first.
	ListByAccount(ctx context.Context, accountID shared.AccountID) ([]*Attempt, error)

	// CountByAccount returns the number of committed attempts.
	CountByAccount(ctx context.Context, accountID shared.AccountID) (int, error)
}
