package query

import (
	"context"
	"fmt"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HISTORY QUERY
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// GetHistoryQuery lists an account's logged attempts, newest first.
type GetHistoryQuery struct {
	AccountID shared.AccountID

	// Category filters to one category when non-empty.
	Category string

	// Limit caps the page size (default 50, max 200).
	Limit int
}

// Validate validates the query and applies limit defaults.
func (q *GetHistoryQuery) Validate() error {
	if !q.AccountID.IsValid() {
		return shared.NewDomainError("query", "GetHistory", shared.ErrInvalidID, "account id is required")
	}
	if q.Limit <= 0 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}
	return nil
}

// AttemptDTO is one history row.
type AttemptDTO struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	DrillName     string    `json:"drill_name"`
	Date          time.Time `json:"date"`
	ResultSummary string    `json:"result_summary"`
	Mastery       int       `json:"mastery"`
	SuccessPct    *int      `json:"success_pct,omitempty"`
	XPEarned      int       `json:"xp_earned"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryDTO is the paged history payload.
type HistoryDTO struct {
	Attempts []AttemptDTO `json:"attempts"`
	Total    int          `json:"total"`
}

// GetHistoryHandler handles GetHistoryQuery.
type GetHistoryHandler struct {
	attempts attempt.Repository
}

// NewGetHistoryHandler creates a new GetHistoryHandler.
func NewGetHistoryHandler(attempts attempt.Repository) *GetHistoryHandler {
	return &GetHistoryHandler{attempts: attempts}
}

// Handle executes the query.
func (h *GetHistoryHandler) Handle(ctx context.Context, q GetHistoryQuery) (*HistoryDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	log, err := h.attempts.ListByAccount(ctx, q.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get_history: %w", err)
	}

	dto := &HistoryDTO{Attempts: make([]AttemptDTO, 0, q.Limit)}
	for _, a := range log {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		dto.Total++
		if len(dto.Attempts) >= q.Limit {
			continue
		}
		dto.Attempts = append(dto.Attempts, AttemptDTO{
			ID:            a.ID,
			Category:      a.Category,
			DrillName:     a.DrillName,
			Date:          a.Date,
			ResultSummary: a.ResultSummary,
			Mastery:       int(a.Mastery),
			SuccessPct:    a.SuccessPct,
			XPEarned:      int(a.XPEarned),
			Notes:         a.Notes,
			CreatedAt:     a.CreatedAt,
		})
	}
	return dto, nil
}
