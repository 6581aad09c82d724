package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/application/command"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/query"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/saga"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/attempt"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
	httpapi "github.com/paddle-hub/paddle-practice-hub/internal/interface/http"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
)

const testAccount = "acc-http"

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type memAttemptRepo struct {
	mu      sync.Mutex
	records []*attempt.Attempt
}

func (m *memAttemptRepo) Insert(_ context.Context, a *attempt.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]*attempt.Attempt{a}, m.records...)
	return nil
}

func (m *memAttemptRepo) Delete(_ context.Context, accountID shared.AccountID, attemptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.records {
		if a.ID == attemptID && a.AccountID == accountID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memAttemptRepo) ListByAccount(_ context.Context, accountID shared.AccountID) ([]*attempt.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*attempt.Attempt
	for _, a := range m.records {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAttemptRepo) CountByAccount(_ context.Context, accountID shared.AccountID) (int, error) {
	list, _ := m.ListByAccount(context.Background(), accountID)
	return len(list), nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[shared.AccountID]*player.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[shared.AccountID]*player.Profile)}
}

func (m *memProfileRepo) GetByID(_ context.Context, id shared.AccountID) (*player.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *memProfileRepo) Create(_ context.Context, p *player.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; ok {
		return shared.ErrAlreadyExists
	}
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *memProfileRepo) UpdateProgress(_ context.Context, id shared.AccountID, upd player.ProgressUpdate) (player.UpdateOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return player.UpdateFailed, shared.ErrNotFound
	}
	p.XP = upd.XP
	p.Streak = upd.Streak
	p.Badges = upd.Badges
	return player.UpdateApplied, nil
}

func (m *memProfileRepo) UpdateProfile(_ context.Context, p *player.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; !ok {
		return shared.ErrNotFound
	}
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *memProfileRepo) TopByXP(_ context.Context, limit int) ([]*player.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*player.Profile
	for _, p := range m.profiles {
		out = append(out, p.Clone())
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memBoardCache struct {
	mu    sync.Mutex
	board *leaderboard.Board
}

func (m *memBoardCache) Store(_ context.Context, b *leaderboard.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = b
	return nil
}

func (m *memBoardCache) Top(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.board == nil {
		return nil, shared.ErrNotFound
	}
	return m.board.Top(limit), nil
}

func (m *memBoardCache) RankOf(_ context.Context, id shared.AccountID) (leaderboard.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.board == nil {
		return leaderboard.Entry{}, shared.ErrNotFound
	}
	if row, ok := m.board.Find(id); ok {
		return row, nil
	}
	return leaderboard.Entry{}, shared.ErrNotFound
}

func (m *memBoardCache) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = nil
	return nil
}

type noopSender struct{}

func (noopSender) Deliver(_ context.Context, n *notification.Notification) error {
	n.MarkSkipped("test")
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(shared.Event) error { return nil }

// ══════════════════════════════════════════════════════════════════════════════
// TEST STACK
// ══════════════════════════════════════════════════════════════════════════════

// testStack wires the full application over in-memory repositories.
type testStack struct {
	server   *httpapi.Server
	profiles *memProfileRepo
	attempts *memAttemptRepo
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	profiles := newMemProfileRepo()
	attempts := &memAttemptRepo{}
	cache := &memBoardCache{}
	catalog := drill.Default()
	ledgers := command.NewLedgerRegistry(profiles, attempts)
	events := noopPublisher{}

	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})

	deps := httpapi.Dependencies{
		LogAttempt:        command.NewLogAttemptHandler(catalog, ledgers, attempts, profiles, events),
		DeleteAttempt:     command.NewDeleteAttemptHandler(ledgers, attempts, events),
		UpdateProfile:     command.NewUpdateProfileHandler(ledgers, profiles, events),
		Provisioning:      saga.NewProvisioningSaga(profiles, ledgers, noopSender{}, events),
		GetProfile:        query.NewGetProfileHandler(profiles, attempts),
		GetHistory:        query.NewGetHistoryHandler(attempts),
		GetDrills:         query.NewGetDrillsHandler(catalog, profiles),
		GetCategoryStats:  query.NewGetCategoryStatsHandler(attempts, catalog),
		GetWeeklyActivity: query.NewGetWeeklyActivityHandler(attempts),
		GetLeaderboard:    query.NewGetLeaderboardHandler(cache, profiles),
		Logger:            log,
	}

	return &testStack{
		server:   httpapi.NewServer(httpapi.DefaultConfig(), deps),
		profiles: profiles,
		attempts: attempts,
	}
}

// do performs a request against the fully wrapped handler chain.
func (ts *testStack) do(t *testing.T, method, path, account string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if account != "" {
		req.Header.Set("X-Account-ID", account)
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (map[string]interface{}, map[string]interface{}) {
	t.Helper()

	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
		Error   map[string]interface{} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data, envelope.Error
}

func (ts *testStack) provision(t *testing.T, account string) {
	t.Helper()
	rec := ts.do(t, nethttp.MethodPost, "/api/v1/accounts", account, map[string]interface{}{})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestServer_Health(t *testing.T) {
	ts := newTestStack(t)

	rec := ts.do(t, nethttp.MethodGet, "/health", "", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_RequiresAccountHeader(t *testing.T) {
	ts := newTestStack(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{nethttp.MethodPost, "/api/v1/attempts"},
		{nethttp.MethodGet, "/api/v1/attempts"},
		{nethttp.MethodGet, "/api/v1/profile"},
		{nethttp.MethodGet, "/api/v1/stats/categories"},
		{nethttp.MethodGet, "/api/v1/stats/weekly"},
	} {
		rec := ts.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)

		_, apiErr := decodeEnvelope(t, rec)
		assert.Equal(t, "unauthorized", apiErr["code"])
	}
}

func TestServer_ProvisionAccount(t *testing.T) {
	ts := newTestStack(t)

	rec := ts.do(t, nethttp.MethodPost, "/api/v1/accounts", testAccount, map[string]interface{}{
		"username": "Dinker",
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	data, _ := decodeEnvelope(t, rec)
	assert.Equal(t, testAccount, data["account_id"])
	assert.Equal(t, "Dinker", data["username"])
	assert.Equal(t, true, data["created"])

	// Provisioning is idempotent: the second call returns the existing
	// profile with 200.
	rec = ts.do(t, nethttp.MethodPost, "/api/v1/accounts", testAccount, map[string]interface{}{})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	data, _ = decodeEnvelope(t, rec)
	assert.Equal(t, false, data["created"])
	assert.Equal(t, "Dinker", data["username"])
}

func TestServer_LogAttemptFlow(t *testing.T) {
	ts := newTestStack(t)
	ts.provision(t, testAccount)

	rec := ts.do(t, nethttp.MethodPost, "/api/v1/attempts", testAccount, map[string]interface{}{
		"category":   "Serve & Return",
		"drill_name": "Deep Target Practice",
		"count":      9,
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	data, _ := decodeEnvelope(t, rec)
	assert.Equal(t, float64(5), data["mastery"])
	assert.NotEmpty(t, data["attempt_id"])
	assert.Greater(t, data["xp_earned"], float64(0))
	assert.Equal(t, float64(1), data["streak"])

	// The attempt now shows up in history.
	rec = ts.do(t, nethttp.MethodGet, "/api/v1/attempts", testAccount, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	data, _ = decodeEnvelope(t, rec)
	assert.Equal(t, float64(1), data["total"])
}

func TestServer_LogAttemptUnknownDrill(t *testing.T) {
	ts := newTestStack(t)
	ts.provision(t, testAccount)

	rec := ts.do(t, nethttp.MethodPost, "/api/v1/attempts", testAccount, map[string]interface{}{
		"category":   "Serve & Return",
		"drill_name": "No Such Drill",
		"count":      5,
	})
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	_, apiErr := decodeEnvelope(t, rec)
	assert.Equal(t, "not_found", apiErr["code"])
}

func TestServer_LogAttemptMalformedBody(t *testing.T) {
	ts := newTestStack(t)
	ts.provision(t, testAccount)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/attempts", bytes.NewReader([]byte("{broken")))
	req.Header.Set("X-Account-ID", testAccount)
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestServer_DeleteAttempt(t *testing.T) {
	ts := newTestStack(t)
	ts.provision(t, testAccount)

	rec := ts.do(t, nethttp.MethodPost, "/api/v1/attempts", testAccount, map[string]interface{}{
		"category":   "Serve & Return",
		"drill_name": "Deep Target Practice",
		"count":      8,
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code)
	data, _ := decodeEnvelope(t, rec)
	attemptID, _ := data["attempt_id"].(string)
	require.NotEmpty(t, attemptID)

	rec = ts.do(t, nethttp.MethodDelete, "/api/v1/attempts/"+attemptID, testAccount, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	data, _ = decodeEnvelope(t, rec)
	assert.Equal(t, float64(0), data["remaining_attempts"])

	// Deleting it again is a 404.
	rec = ts.do(t, nethttp.MethodDelete, "/api/v1/attempts/"+attemptID, testAccount, nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestServer_UpdateProfile(t *testing.T) {
	ts := newTestStack(t)
	ts.provision(t, testAccount)

	rec := ts.do(t, nethttp.MethodPut, "/api/v1/profile", testAccount, map[string]interface{}{
		"username": "Bangers",
		"rating":   2.5,
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	data, _ := decodeEnvelope(t, rec)
	assert.Equal(t, "Bangers", data["username"])
	assert.Equal(t, 2.5, data["rating"])
	assert.ElementsMatch(t, []interface{}{"username", "rating"}, data["changed_fields"])

	// Higher DUPR rungs stay locked until the XP threshold is crossed.
	rec = ts.do(t, nethttp.MethodPut, "/api/v1/profile", testAccount, map[string]interface{}{
		"rating": 3.5,
	})
	assert.Equal(t, nethttp.StatusForbidden, rec.Code, rec.Body.String())
}

func TestServer_GetProfileNotProvisioned(t *testing.T) {
	ts := newTestStack(t)

	rec := ts.do(t, nethttp.MethodGet, "/api/v1/profile", "ghost", nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestServer_DrillsArePublic(t *testing.T) {
	ts := newTestStack(t)

	rec := ts.do(t, nethttp.MethodGet, "/api/v1/drills", "", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = ts.do(t, nethttp.MethodGet, "/api/v1/drills?category=Dinking", "", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestServer_Leaderboard(t *testing.T) {
	ts := newTestStack(t)
	ts.provision(t, testAccount)

	// Cache is empty, so the query falls back to the profile store.
	rec := ts.do(t, nethttp.MethodGet, "/api/v1/leaderboard?limit=10", testAccount, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	data, _ := decodeEnvelope(t, rec)
	entries, ok := data["entries"].([]interface{})
	require.True(t, ok)
	assert.Len(t, entries, 1)
}

func TestServer_UnknownRouteIs404(t *testing.T) {
	ts := newTestStack(t)

	rec := ts.do(t, nethttp.MethodGet, "/api/v2/nothing", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}
