package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY
// The profiles table is stable except for the badges jsonb column, which
// is absent on some deployments. Badge writes are therefore issued as a
// separate statement: xp/streak land first and a badge-column failure
// degrades the update instead of failing it.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements player.Repository over profiles.
type ProfileRepository struct {
	db  Querier
	log *logger.Logger
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db Querier, log *logger.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: log.With(logger.String("repo", "profiles")),
	}
}

// GetByID implements player.Repository.
func (r *ProfileRepository) GetByID(ctx context.Context, id shared.AccountID) (*player.Profile, error) {
	p := &player.Profile{ID: id}
	var badgesRaw []byte
	err := r.db.QueryRow(ctx, `
		SELECT username, xp, streak, dupr_rating, badges, COALESCE(password_hash, ''), created_at, updated_at
		FROM profiles WHERE id = $1`,
		string(id)).Scan(&p.Username, &p.XP, &p.Streak, &p.Rating, &badgesRaw, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)

	if IsSchemaMismatch(err) {
		// No badges column on this deployment; load without it.
		err = r.db.QueryRow(ctx, `
			SELECT username, xp, streak, dupr_rating, COALESCE(password_hash, ''), created_at, updated_at
			FROM profiles WHERE id = $1`,
			string(id)).Scan(&p.Username, &p.XP, &p.Streak, &p.Rating, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	}
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("player", "GetByID", shared.ErrNotFound,
				fmt.Sprintf("profile %s not found", id))
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}

	if len(badgesRaw) > 0 {
		if err := json.Unmarshal(badgesRaw, &p.Badges); err != nil {
			// A corrupt badge blob must not take the profile down.
			r.log.Warn("unreadable badges column", logger.String("account_id", string(id)), logger.Err(err))
			p.Badges = nil
		}
	}
	return p, nil
}

// Create implements player.Repository.
func (r *ProfileRepository) Create(ctx context.Context, p *player.Profile) error {
	badges, err := json.Marshal(badgeList(p.Badges))
	if err != nil {
		return fmt.Errorf("profile create: encode badges: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO profiles (id, username, xp, streak, dupr_rating, badges, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, NULLIF($7, ''), $8, $9)`,
		string(p.ID), p.Username, int(p.XP), p.Streak, p.Rating, badges, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if IsSchemaMismatch(err) {
		_, err = r.db.Exec(ctx, `
			INSERT INTO profiles (id, username, xp, streak, dupr_rating, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`,
			string(p.ID), p.Username, int(p.XP), p.Streak, p.Rating, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	}
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapDomainError("player", "Create", shared.ErrAlreadyExists,
				fmt.Sprintf("profile %s already exists", p.ID), err)
		}
		if IsNotNullViolation(err) {
			// The remote schema demands a column this build left empty.
			return shared.WrapDomainError("player", "Create", shared.ErrInvalidInput,
				fmt.Sprintf("profile %s rejected by a required column", p.ID), err)
		}
		return fmt.Errorf("profile create: %w", err)
	}
	return nil
}

// UpdateProgress implements player.Repository. The xp/streak statement
// must succeed; the badge statement may degrade the outcome.
func (r *ProfileRepository) UpdateProgress(ctx context.Context, id shared.AccountID, upd player.ProgressUpdate) (player.UpdateOutcome, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET xp = $1, streak = $2, updated_at = NOW() WHERE id = $3`,
		int(upd.XP), upd.Streak, string(id))
	if err != nil {
		return player.UpdateFailed, fmt.Errorf("progress update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return player.UpdateFailed, shared.NewDomainError("player", "UpdateProgress", shared.ErrNotFound,
			fmt.Sprintf("profile %s not found", id))
	}

	badges, err := json.Marshal(badgeList(upd.Badges))
	if err != nil {
		return player.UpdatePartial, shared.WrapDomainError("player", "UpdateProgress",
			shared.ErrPartialUpdate, "badges not persisted: encode failed", err)
	}
	if _, err := r.db.Exec(ctx,
		`UPDATE profiles SET badges = $1::jsonb WHERE id = $2`,
		badges, string(id)); err != nil {
		r.log.Warn("badge column update failed, progression persisted without it",
			logger.String("account_id", string(id)), logger.Err(err))
		return player.UpdatePartial, shared.WrapDomainError("player", "UpdateProgress",
			shared.ErrPartialUpdate, "badges not persisted", err)
	}
	return player.UpdateApplied, nil
}

// UpdateProfile implements player.Repository.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, p *player.Profile) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET username = $1, dupr_rating = $2, updated_at = NOW() WHERE id = $3`,
		p.Username, p.Rating, string(p.ID))
	if err != nil {
		return fmt.Errorf("profile update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("player", "UpdateProfile", shared.ErrNotFound,
			fmt.Sprintf("profile %s not found", p.ID))
	}
	return nil
}

// TopByXP implements player.Repository.
func (r *ProfileRepository) TopByXP(ctx context.Context, limit int) ([]*player.Profile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, xp, streak, dupr_rating, created_at, updated_at
		FROM profiles ORDER BY xp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("profiles top: %w", err)
	}
	defer rows.Close()

	var out []*player.Profile
	for rows.Next() {
		p := &player.Profile{}
		var id string
		if err := rows.Scan(&id, &p.Username, &p.XP, &p.Streak, &p.Rating, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("profiles top: scan: %w", err)
		}
		p.ID = shared.AccountID(id)
		out = append(out, p)
	}
	return out, rows.Err()
}

// badgeList normalizes nil to an empty slice so the jsonb column never
// stores SQL NULL.
func badgeList(badges []string) []string {
	if badges == nil {
		return []string{}
	}
	return badges
}

var _ player.Repository = (*ProfileRepository)(nil)
