// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/badge"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// The profile page payload: identity, ladder position, badges and the
// aggregate stats derived from the attempt log.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery identifies the account.
type GetProfileQuery struct {
	AccountID shared.AccountID
}

// Validate validates the query.
func (q GetProfileQuery) Validate() error {
	if !q.AccountID.IsValid() {
		return shared.NewDomainError("query", "GetProfile", shared.ErrInvalidID, "account id is required")
	}
	return nil
}

// LevelDTO describes the ladder position.
type LevelDTO struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	NextName    string  `json:"next_name"`
	NextMinXP   int     `json:"next_min_xp"`
	ProgressPct float64 `json:"progress_pct"`
	AtMax       bool    `json:"at_max"`
}

// BadgeDTO is one unlocked badge with its display metadata.
type BadgeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// ProfileDTO is the full profile payload.
type ProfileDTO struct {
	AccountID     shared.AccountID `json:"account_id"`
	Username      string           `json:"username"`
	XP            int              `json:"xp"`
	Streak        int              `json:"streak"`
	Rating        float64          `json:"rating"`
	Level         LevelDTO         `json:"level"`
	Badges        []BadgeDTO       `json:"badges"`
	TotalAttempts int              `json:"total_attempts"`
	AvgMastery    float64          `json:"avg_mastery"`
	CreatedAt     time.Time        `json:"created_at"`
}

// GetProfileHandler handles GetProfileQuery.
type GetProfileHandler struct {
	profiles player.Repository
	attempts attempt.Repository
}

// NewGetProfileHandler creates a new GetProfileHandler.
func NewGetProfileHandler(profiles player.Repository, attempts attempt.Repository) *GetProfileHandler {
	return &GetProfileHandler{profiles: profiles, attempts: attempts}
}

// Handle executes the query.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*ProfileDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	profile, err := h.profiles.GetByID(ctx, q.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get_profile: %w", err)
	}
	log, err := h.attempts.ListByAccount(ctx, q.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get_profile: load attempts: %w", err)
	}

	level := profile.Level()
	dto := &ProfileDTO{
		AccountID: profile.ID,
		Username:  profile.Username,
		XP:        int(profile.XP),
		Streak:    profile.Streak,
		Rating:    profile.Rating,
		Level: LevelDTO{
			Name:        level.Current.Name,
			Rating:      level.Current.Rating,
			NextName:    level.Next.Name,
			NextMinXP:   int(level.Next.MinXP),
			ProgressPct: level.ProgressPct,
			AtMax:       level.AtMax(),
		},
		Badges:        make([]BadgeDTO, 0, len(profile.Badges)),
		TotalAttempts: len(log),
		AvgMastery:    attempt.AverageMastery(log),
		CreatedAt:     profile.CreatedAt,
	}
	for _, id := range profile.Badges {
		def, ok := badge.Find(id)
		if !ok {
			// Unknown IDs can appear in old rows; keep the ID visible.
			dto.Badges = append(dto.Badges, BadgeDTO{ID: id, Name: id})
			continue
		}
		dto.Badges = append(dto.Badges, BadgeDTO{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Color:       def.Color,
		})
	}
	return dto, nil
}
