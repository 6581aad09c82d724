package query

import (
	"context"
	"fmt"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CATEGORY STATS QUERY
// Per-category xp, attempt counts and category levels, recomputed from
// the attempt log on every read. Deleting an attempt shrinks these on
// the next call even though profile totals never rewind.
// ══════════════════════════════════════════════════════════════════════════════

// GetCategoryStatsQuery identifies the account.
type GetCategoryStatsQuery struct {
	AccountID shared.AccountID
}

// Validate validates the query.
func (q GetCategoryStatsQuery) Validate() error {
	if !q.AccountID.IsValid() {
		return shared.NewDomainError("query", "GetCategoryStats", shared.ErrInvalidID, "account id is required")
	}
	return nil
}

// CategoryStatDTO is one category row.
type CategoryStatDTO struct {
	Category string `json:"category"`
	XP       int    `json:"xp"`
	Attempts int    `json:"attempts"`
	Level    int    `json:"level"`
}

// CategoryStatsDTO is the stats payload. Categories with no attempts are
// included with zero values so the client renders the full catalog.
type CategoryStatsDTO struct {
	Categories []CategoryStatDTO `json:"categories"`
}

// GetCategoryStatsHandler handles GetCategoryStatsQuery.
type GetCategoryStatsHandler struct {
	attempts attempt.Repository
	catalog  *drill.Catalog
}

// NewGetCategoryStatsHandler creates a new GetCategoryStatsHandler.
func NewGetCategoryStatsHandler(attempts attempt.Repository, catalog *drill.Catalog) *GetCategoryStatsHandler {
	return &GetCategoryStatsHandler{attempts: attempts, catalog: catalog}
}

// Handle executes the query.
func (h *GetCategoryStatsHandler) Handle(ctx context.Context, q GetCategoryStatsQuery) (*CategoryStatsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	log, err := h.attempts.ListByAccount(ctx, q.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get_category_stats: %w", err)
	}

	byCategory := make(map[string]attempt.CategoryStat, len(h.catalog.Categories()))
	for _, stat := range attempt.CategoryStats(log) {
		byCategory[stat.Category] = stat
	}

	dto := &CategoryStatsDTO{}
	for _, category := range h.catalog.Categories() {
		stat := byCategory[category]
		dto.Categories = append(dto.Categories, CategoryStatDTO{
			Category: category,
			XP:       int(stat.XP),
			Attempts: stat.Attempts,
			Level:    attempt.CategoryLevel(stat.XP),
		})
		delete(byCategory, category)
	}
	// Categories logged before a catalog change still show up.
	for _, stat := range byCategory {
		dto.Categories = append(dto.Categories, CategoryStatDTO{
			Category: stat.Category,
			XP:       int(stat.XP),
			Attempts: stat.Attempts,
			Level:    stat.Level,
		})
	}
	return dto, nil
}
