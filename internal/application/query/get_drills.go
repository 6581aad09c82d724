package query

import (
	"context"
	"fmt"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DRILLS QUERY
// The catalog payload, with each drill's lock state resolved against the
// caller's ladder-derived rating.
// ══════════════════════════════════════════════════════════════════════════════

// GetDrillsQuery lists the catalog; Category filters when non-empty.
// AccountID resolves lock gates; without it every gated drill reports
// locked at the entry rating.
type GetDrillsQuery struct {
	AccountID shared.AccountID
	Category  string
}

// MediaDTO mirrors a drill's demo media reference.
type MediaDTO struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Poster string `json:"poster,omitempty"`
}

// DrillDTO is one catalog entry.
type DrillDTO struct {
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Goal         string    `json:"goal"`
	Duration     string    `json:"duration"`
	Type         string    `json:"type"`
	Unit         string    `json:"unit,omitempty"`
	Total        int       `json:"total,omitempty"`
	Inverse      bool      `json:"inverse,omitempty"`
	Items        []string  `json:"items,omitempty"`
	Instructions []string  `json:"instructions,omitempty"`
	MinRating    float64   `json:"min_rating,omitempty"`
	Locked       bool      `json:"locked"`
	Media        *MediaDTO `json:"media,omitempty"`
}

// DrillsDTO is the catalog payload grouped flat, catalog order.
type DrillsDTO struct {
	Drills []DrillDTO `json:"drills"`
}

// GetDrillsHandler handles GetDrillsQuery.
type GetDrillsHandler struct {
	catalog  *drill.Catalog
	profiles player.Repository
}

// NewGetDrillsHandler creates a new GetDrillsHandler.
func NewGetDrillsHandler(catalog *drill.Catalog, profiles player.Repository) *GetDrillsHandler {
	return &GetDrillsHandler{catalog: catalog, profiles: profiles}
}

// Handle executes the query.
func (h *GetDrillsHandler) Handle(ctx context.Context, q GetDrillsQuery) (*DrillsDTO, error) {
	rating := player.Ladder[0].Rating
	if q.AccountID.IsValid() {
		profile, err := h.profiles.GetByID(ctx, q.AccountID)
		if err != nil {
			return nil, fmt.Errorf("get_drills: %w", err)
		}
		rating = profile.Level().Current.Rating
	}

	defs := h.catalog.List()
	if q.Category != "" {
		defs = h.catalog.ByCategory(q.Category)
	}

	dto := &DrillsDTO{Drills: make([]DrillDTO, 0, len(defs))}
	for _, d := range defs {
		row := DrillDTO{
			Category:     d.Category,
			Name:         d.Name,
			Description:  d.Description,
			Goal:         d.Goal,
			Duration:     d.Duration,
			Type:         string(d.Type),
			Unit:         d.Unit,
			Total:        d.Total,
			Inverse:      d.Inverse,
			Items:        d.Items,
			Instructions: d.Instructions,
			MinRating:    d.MinRating,
			Locked:       d.LockedFor(rating),
		}
		if d.Media != nil {
			row.Media = &MediaDTO{Type: d.Media.Type, URL: d.Media.URL, Poster: d.Media.Poster}
		}
		dto.Drills = append(dto.Drills, row)
	}
	return dto, nil
}
