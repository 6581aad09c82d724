package query

import (
	"context"
	"fmt"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	"github.com/paddle-hub/paddle-practice-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET WEEKLY ACTIVITY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetWeeklyActivityQuery identifies the account; Now overrides the
// window anchor in tests (zero = time.Now).
type GetWeeklyActivityQuery struct {
	AccountID shared.AccountID
	Now       time.Time
}

// Validate validates the query.
func (q *GetWeeklyActivityQuery) Validate() error {
	if !q.AccountID.IsValid() {
		return shared.NewDomainError("query", "GetWeeklyActivity", shared.ErrInvalidID, "account id is required")
	}
	if q.Now.IsZero() {
		q.Now = time.Now().UTC()
	}
	return nil
}

// DayActivityDTO is one day bucket, oldest first.
type DayActivityDTO struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Attempts int    `json:"attempts"`
	XP       int    `json:"xp"`
}

// WeeklyActivityDTO is the seven-day activity payload.
type WeeklyActivityDTO struct {
	Days []DayActivityDTO `json:"days"`
}

// GetWeeklyActivityHandler handles GetWeeklyActivityQuery.
type GetWeeklyActivityHandler struct {
	attempts attempt.Repository
}

// NewGetWeeklyActivityHandler creates a new GetWeeklyActivityHandler.
func NewGetWeeklyActivityHandler(attempts attempt.Repository) *GetWeeklyActivityHandler {
	return &GetWeeklyActivityHandler{attempts: attempts}
}

// Handle executes the query.
func (h *GetWeeklyActivityHandler) Handle(ctx context.Context, q GetWeeklyActivityQuery) (*WeeklyActivityDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	log, err := h.attempts.ListByAccount(ctx, q.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get_weekly_activity: %w", err)
	}

	dto := &WeeklyActivityDTO{Days: make([]DayActivityDTO, 0, 7)}
	for _, day := range attempt.WeeklyActivity(log, q.Now) {
		dto.Days = append(dto.Days, DayActivityDTO{
			Date:     timeutil.DayKey(day.Date),
			Weekday:  day.Date.Weekday().String()[:3],
			Attempts: day.Attempts,
			XP:       int(day.XP),
		})
	}
	return dto, nil
}
