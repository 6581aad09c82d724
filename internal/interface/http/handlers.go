package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/paddle-hub/paddle-practice-hub/internal/application/command"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/query"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/saga"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
	"github.com/paddle-hub/paddle-practice-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Paddle Practice Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":      "/health",
			"drills":      "/api/v1/drills",
			"attempts":    "/api/v1/attempts",
			"profile":     "/api/v1/profile",
			"leaderboard": "/api/v1/leaderboard",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		status := s.deps.Health.Check(r.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// logAttemptRequest is the POST /api/v1/attempts body.
type logAttemptRequest struct {
	Category  string   `json:"category"`
	DrillName string   `json:"drill_name"`
	Count     int      `json:"count"`
	Checked   []string `json:"checked,omitempty"`
	Date      string   `json:"date,omitempty"` // "2006-01-02"
	Notes     string   `json:"notes,omitempty"`
}

// logAttemptResponse mirrors command.LogAttemptResult for the wire.
type logAttemptResponse struct {
	AttemptID  string   `json:"attempt_id"`
	Mastery    int      `json:"mastery"`
	Summary    string   `json:"summary"`
	SuccessPct *int     `json:"success_pct,omitempty"`
	XPEarned   int      `json:"xp_earned"`
	TotalXP    int      `json:"total_xp"`
	Streak     int      `json:"streak"`
	NewBadges  []string `json:"new_badges,omitempty"`
	LeveledUp  bool     `json:"leveled_up"`
	Level      string   `json:"level"`
	Rating     float64  `json:"rating"`
	Degraded   bool     `json:"degraded,omitempty"`
}

// handleLogAttempt handles POST /api/v1/attempts
func (s *Server) handleLogAttempt(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	var req logAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	cmd := command.LogAttemptCommand{
		AccountID: account,
		Category:  req.Category,
		DrillName: req.DrillName,
		Count:     req.Count,
		Checked:   req.Checked,
		Notes:     req.Notes,
	}
	if req.Date != "" {
		date, err := timeutil.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		cmd.Date = date
	}

	result, err := s.deps.LogAttempt.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Warn("log attempt rejected",
			logger.String("account_id", account.String()),
			logger.Err(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, logAttemptResponse{
		AttemptID:  result.AttemptID,
		Mastery:    int(result.Mastery),
		Summary:    result.Summary,
		SuccessPct: result.SuccessPct,
		XPEarned:   int(result.XPEarned),
		TotalXP:    int(result.TotalXP),
		Streak:     result.Streak,
		NewBadges:  result.NewBadges,
		LeveledUp:  result.LeveledUp,
		Level:      result.Level.Current.Name,
		Rating:     result.Level.Current.Rating,
		Degraded:   result.Status == command.CommitDegraded,
	})
}

// handleGetHistory handles GET /api/v1/attempts
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	q := query.GetHistoryQuery{
		AccountID: account,
		Category:  r.URL.Query().Get("category"),
		Limit:     queryInt(r, "limit", 0),
	}
	result, err := s.deps.GetHistory.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDeleteAttempt handles DELETE /api/v1/attempts/{id}
func (s *Server) handleDeleteAttempt(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	cmd := command.DeleteAttemptCommand{
		AccountID: account,
		AttemptID: r.PathValue("id"),
	}
	result, err := s.deps.DeleteAttempt.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attempt_id":         result.AttemptID,
		"remaining_attempts": result.RemainingAttempts,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProfile handles GET /api/v1/profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	result, err := s.deps.GetProfile.Handle(r.Context(), query.GetProfileQuery{AccountID: account})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// updateProfileRequest is the PUT /api/v1/profile body. Absent fields
// stay unchanged.
type updateProfileRequest struct {
	Username *string  `json:"username,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
}

// handleUpdateProfile handles PUT /api/v1/profile
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	cmd := command.UpdateProfileCommand{
		AccountID: account,
		Username:  req.Username,
		Rating:    req.Rating,
	}
	result, err := s.deps.UpdateProfile.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":       result.Profile.Username,
		"rating":         result.Profile.Rating,
		"changed_fields": result.ChangedFields,
	})
}

// provisionRequest is the POST /api/v1/accounts body.
type provisionRequest struct {
	Username string  `json:"username,omitempty"`
	Password string  `json:"password,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
}

// handleProvisionAccount handles POST /api/v1/accounts
func (s *Server) handleProvisionAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	result, err := s.deps.Provisioning.Execute(r.Context(), saga.ProvisioningInput{
		AccountID: account,
		Username:  req.Username,
		Password:  req.Password,
		Rating:    req.Rating,
	})
	if err != nil {
		s.logger.Error("provisioning failed",
			logger.String("account_id", account.String()),
			logger.Err(err))
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"account_id": result.Profile.ID,
		"username":   result.Profile.Username,
		"created":    result.Created,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG, STATS & LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetDrills handles GET /api/v1/drills
// The account header is optional: anonymous callers see lock gates
// resolved at the entry rating.
func (s *Server) handleGetDrills(w http.ResponseWriter, r *http.Request) {
	q := query.GetDrillsQuery{
		Category: r.URL.Query().Get("category"),
	}
	if account, ok := accountID(r); ok {
		q.AccountID = account
	}

	result, err := s.deps.GetDrills.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetCategoryStats handles GET /api/v1/stats/categories
func (s *Server) handleGetCategoryStats(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	result, err := s.deps.GetCategoryStats.Handle(r.Context(), query.GetCategoryStatsQuery{AccountID: account})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetWeeklyActivity handles GET /api/v1/stats/weekly
func (s *Server) handleGetWeeklyActivity(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "X-Account-ID header is required")
		return
	}

	result, err := s.deps.GetWeeklyActivity.Handle(r.Context(), query.GetWeeklyActivityQuery{AccountID: account})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := query.GetLeaderboardQuery{
		Limit: queryInt(r, "limit", 0),
	}
	if account, ok := accountID(r); ok {
		q.AccountID = account
	}

	result, err := s.deps.GetLeaderboard.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// queryInt parses an integer query parameter, falling back on absence
// or garbage.
func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
