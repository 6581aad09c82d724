package postgres

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT REPOSITORY
// The drill_logs table exists in two known layouts. The primary shape
// stores the raw numeric score; the legacy shape stores a preformatted
// result string under different column names. Statements are tried in
// shape order and advance ONLY on a typed schema mismatch (undefined
// column or table); any other failure is returned as-is. At most one
// alternate shape is attempted per operation.
// ══════════════════════════════════════════════════════════════════════════════

// logShape names one known drill_logs layout.
type logShape int

const (
	shapePrimary logShape = iota // user_id, drill_id, score
	shapeLegacy                  // user_id, drill, result
	shapeCount
)

func (s logShape) String() string {
	if s == shapeLegacy {
		return "legacy"
	}
	return "primary"
}

// AttemptRepository implements attempt.Repository over drill_logs.
type AttemptRepository struct {
	db      Querier
	catalog *drill.Catalog
	log     *logger.Logger

	// active is the shape that last succeeded; operations start there.
	active atomic.Int32
}

// NewAttemptRepository creates a new AttemptRepository. The catalog is
// used to reconstruct result summaries for rows stored in the primary
// shape, which keeps only the raw score.
func NewAttemptRepository(db Querier, catalog *drill.Catalog, log *logger.Logger) *AttemptRepository {
	return &AttemptRepository{
		db:      db,
		catalog: catalog,
		log:     log.With(logger.String("repo", "attempts")),
	}
}

// shapeOrder returns the shapes to try, active one first.
func (r *AttemptRepository) shapeOrder() [2]logShape {
	if logShape(r.active.Load()) == shapeLegacy {
		return [2]logShape{shapeLegacy, shapePrimary}
	}
	return [2]logShape{shapePrimary, shapeLegacy}
}

// markActive records the shape that just succeeded.
func (r *AttemptRepository) markActive(s logShape) {
	if logShape(r.active.Load()) != s {
		r.log.Warn("drill_logs shape changed", logger.String("shape", s.String()))
	}
	r.active.Store(int32(s))
}

// Insert implements attempt.Repository.
func (r *AttemptRepository) Insert(ctx context.Context, a *attempt.Attempt) error {
	order := r.shapeOrder()
	var firstErr error
	for i, shape := range order[:] {
		var err error
		switch shape {
		case shapePrimary:
			_, err = r.db.Exec(ctx, `
				INSERT INTO drill_logs
					(id, user_id, drill_id, category, score, mastery, xp_earned, notes, logged_on, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				a.ID, string(a.AccountID), a.DrillName, a.Category,
				rawScore(a), int(a.Mastery), int(a.XPEarned), a.Notes,
				a.Date, a.CreatedAt)
		case shapeLegacy:
			_, err = r.db.Exec(ctx, `
				INSERT INTO drill_logs
					(id, user_id, drill, category, result, mastery, xp_earned, notes, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				a.ID, string(a.AccountID), a.DrillName, a.Category,
				a.ResultSummary, int(a.Mastery), int(a.XPEarned), a.Notes,
				a.CreatedAt)
		}
		if err == nil {
			r.markActive(shape)
			return nil
		}
		if !IsSchemaMismatch(err) {
			return fmt.Errorf("attempt insert (%s shape): %w", shape, err)
		}
		if i == 0 {
			firstErr = err
			continue
		}
	}
	return shared.WrapDomainError("attempt", "Insert", shared.ErrSchemaMismatch,
		"drill_logs matches no known shape", firstErr)
}

// Delete implements attempt.Repository.
func (r *AttemptRepository) Delete(ctx context.Context, accountID shared.AccountID, attemptID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM drill_logs WHERE id = $1 AND user_id = $2`,
		attemptID, string(accountID))
	if err != nil {
		return fmt.Errorf("attempt delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("attempt", "Delete", shared.ErrNotFound,
			fmt.Sprintf("attempt %s not found", attemptID))
	}
	return nil
}

// ListByAccount implements attempt.Repository.
func (r *AttemptRepository) ListByAccount(ctx context.Context, accountID shared.AccountID) ([]*attempt.Attempt, error) {
	order := r.shapeOrder()
	var firstErr error
	for i, shape := range order[:] {
		list, err := r.listShaped(ctx, accountID, shape)
		if err == nil {
			r.markActive(shape)
			return list, nil
		}
		if !IsSchemaMismatch(err) {
			return nil, fmt.Errorf("attempt list (%s shape): %w", shape, err)
		}
		if i == 0 {
			firstErr = err
		}
	}
	return nil, shared.WrapDomainError("attempt", "ListByAccount", shared.ErrSchemaMismatch,
		"drill_logs matches no known shape", firstErr)
}

func (r *AttemptRepository) listShaped(ctx context.Context, accountID shared.AccountID, shape logShape) ([]*attempt.Attempt, error) {
	var sql string
	switch shape {
	case shapePrimary:
		sql = `
			SELECT id, drill_id, category, score, mastery, xp_earned, notes, logged_on, created_at
			FROM drill_logs WHERE user_id = $1 ORDER BY created_at DESC`
	case shapeLegacy:
		sql = `
			SELECT id, drill, category, result, mastery, xp_earned, notes, created_at
			FROM drill_logs WHERE user_id = $1 ORDER BY created_at DESC`
	}

	rows, err := r.db.Query(ctx, sql, string(accountID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*attempt.Attempt
	for rows.Next() {
		a := &attempt.Attempt{AccountID: accountID}
		var mastery, xp int
		switch shape {
		case shapePrimary:
			var score int
			if err := rows.Scan(&a.ID, &a.DrillName, &a.Category, &score, &mastery, &xp, &a.Notes, &a.Date, &a.CreatedAt); err != nil {
				return nil, err
			}
			a.RawCount = score
			r.reconstructResult(a, score)
		case shapeLegacy:
			if err := rows.Scan(&a.ID, &a.DrillName, &a.Category, &a.ResultSummary, &mastery, &xp, &a.Notes, &a.CreatedAt); err != nil {
				return nil, err
			}
			a.Date = a.CreatedAt
		}
		a.Mastery = shared.Mastery(mastery)
		a.XPEarned = shared.XP(xp)
		list = append(list, a)
	}
	return list, rows.Err()
}

// CountByAccount implements attempt.Repository.
func (r *AttemptRepository) CountByAccount(ctx context.Context, accountID shared.AccountID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM drill_logs WHERE user_id = $1`,
		string(accountID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("attempt count: %w", err)
	}
	return count, nil
}

// reconstructResult rebuilds the display summary for primary-shape rows
// from the raw score and the catalog definition.
func (r *AttemptRepository) reconstructResult(a *attempt.Attempt, score int) {
	def, err := r.catalog.FindInCategory(a.Category, a.DrillName)
	if err != nil {
		// Drill no longer in the catalog; show the bare score.
		a.ResultSummary = strconv.Itoa(score)
		return
	}
	switch def.Type {
	case drill.TypeReps:
		a.ResultSummary = fmt.Sprintf("%d/%d %s", score, def.Total, def.Unit)
		if def.Total > 0 {
			pct := int(math.Round(float64(score) / float64(def.Total) * 100))
			a.SuccessPct = &pct
		}
	case drill.TypeCounter:
		a.ResultSummary = fmt.Sprintf("%d %s", score, def.Unit)
	case drill.TypeChecklist:
		a.ResultSummary = fmt.Sprintf("%d goals met", score)
	default:
		a.ResultSummary = strconv.Itoa(score)
	}
}

// rawScore reduces an attempt to the single integer the primary shape
// stores: the submitted count, or the number of checked goals.
func rawScore(a *attempt.Attempt) int {
	if len(a.Checked) > 0 {
		return len(a.Checked)
	}
	return a.RawCount
}

var _ attempt.Repository = (*AttemptRepository)(nil)
