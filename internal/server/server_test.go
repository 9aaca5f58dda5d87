package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartparking/backend/internal/config"
	"github.com/smartparking/backend/internal/db"
	"github.com/smartparking/backend/internal/hub"
	"github.com/smartparking/backend/internal/models"
	"github.com/smartparking/backend/internal/repository"
	"github.com/smartparking/backend/internal/serial"
	"github.com/smartparking/backend/internal/services"
	"github.com/smartparking/backend/internal/utils"
)

type fakeLink struct {
	open     bool
	commands []string
}

func (l *fakeLink) IsOpen() bool { return l.open }

func (l *fakeLink) WriteCommand(cmd string) error {
	l.commands = append(l.commands, cmd)
	return nil
}

type testServer struct {
	e     *echo.Echo
	repos *repository.Repositories
	hub   *hub.Hub
	link  *fakeLink
	mon   *services.MonitorService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gormDB, err := db.Open(db.Config{DatabaseURL: "sqlite::memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.AppConfig{
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		CORSAllowedOrigins: []string{"https://dacn-orcin.vercel.app"},
		CORSOriginPatterns: []string{`^https?://localhost(:\d+)?$`},
	}
	repos := repository.New(gormDB)
	h := hub.NewHub()
	link := &fakeLink{open: true}
	auth := services.NewAuthService(repos.Accounts, repos.LoginAttempts, h, services.AuthConfig{JWTSecret: cfg.JWTSecret, JWTExpiry: cfg.JWTExpiry})
	mon := services.NewMonitorService(services.MonitorDeps{
		GateEvents: repos.GateEvents,
		Alerts:     repos.Alerts,
		Snapshots:  repos.Snapshots,
		EmailLogs:  repos.EmailLogs,
		Bus:        h,
		Link:       link,
		Clients:    h,
	})

	e := echo.New()
	_, err = New(e, cfg, Deps{DB: gormDB, Auth: auth, Monitor: mon, Hub: h, Link: link})
	require.NoError(t, err)
	return &testServer{e: e, repos: repos, hub: h, link: link, mon: mon}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) register(t *testing.T, username string) services.Session {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     "ADMIN",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[services.Session](t, rec)
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("adminpass1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, ts.repos.Accounts.Create(context.Background(), &models.Account{
		Username: "root", Email: "root@example.com", PasswordHash: string(hash), Role: models.RoleAdmin, IsActive: true,
	}))
	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "root", "password": "adminpass1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[services.Session](t, rec).Token
}

func TestRegisterIgnoresRoleAndLoginWorks(t *testing.T) {
	ts := newTestServer(t)

	session := ts.register(t, "alice")
	assert.Equal(t, models.RoleUser, session.User.Role)

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[meResponse](t, rec)
	assert.Equal(t, "alice", me.User.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthErrorsMapToStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob", "email": "bob@example.com", "password": "short1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "password must be at least 8 characters", body.Error)

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "email": "x@example.com", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/gate-events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/gate-events", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "alice")

	rec := ts.do(t, http.MethodGet, "/api/admin/login-history", user.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/gmail-logs", user.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := ts.adminToken(t)
	rec = ts.do(t, http.MethodGet, "/api/admin/login-history", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[repository.Page[models.LoginAttemptWithAccount]](t, rec)
	assert.Equal(t, int64(1), page.Total)

	rec = ts.do(t, http.MethodGet, "/api/email-logs", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDisabledAccountCannotLogIn(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "alice")
	admin := ts.adminToken(t)

	rec := ts.do(t, http.MethodPatch, "/api/admin/accounts/"+itoa(user.User.ID)+"/active", admin, map[string]bool{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/api/admin/accounts/"+itoa(user.User.ID)+"/active", admin, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGateEventCRUD(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	rec := ts.do(t, http.MethodPost, "/api/gate-events", token, map[string]any{"event_type": "CAR_IN", "free_slots": 1, "gate_angle": 90, "state": "OPEN"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[models.GateEvent](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/gate-events", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[repository.Page[models.GateEvent]](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)

	rec = ts.do(t, http.MethodPut, "/api/gate-events/"+itoa(created.ID), token, map[string]any{"event_type": "CAR_OUT"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CAR_OUT", decode[models.GateEvent](t, rec).EventType)

	rec = ts.do(t, http.MethodPut, "/api/gate-events/9999", token, map[string]any{"event_type": "CAR_OUT"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/gate-events/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", decode[errorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodDelete, "/api/gate-events/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/gate-events", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaginationQuery(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token
	for i := 0; i < 15; i++ {
		_, err := ts.mon.CreateSnapshot(context.Background(), services.SnapshotInput{})
		require.NoError(t, err)
	}

	rec := ts.do(t, http.MethodGet, "/api/slot-snapshots?page=2&limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[repository.Page[models.SlotSnapshot]](t, rec)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(15), page.Total)

	rec = ts.do(t, http.MethodGet, "/api/slot-snapshots?page=-4&limit=abc", token, nil)
	page = decode[repository.Page[models.SlotSnapshot]](t, rec)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)

	rec = ts.do(t, http.MethodGet, "/api/slot-snapshots?limit=2000000000", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[repository.Page[models.SlotSnapshot]](t, rec)
	assert.Equal(t, utils.MaxLimit, page.Limit)
	assert.Len(t, page.Items, 15)
}

func TestAlertHandleAndReset(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	rec := ts.do(t, http.MethodPost, "/api/alerts", token, map[string]any{"alert_type": "TAILGATE", "message": "manual"})
	require.Equal(t, http.StatusOK, rec.Code)
	alert := decode[models.Alert](t, rec)

	for i := 0; i < 2; i++ {
		rec = ts.do(t, http.MethodPatch, "/api/alerts/"+itoa(alert.ID)+"/handle", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[successResponse](t, rec).Success)
	}

	rec = ts.do(t, http.MethodPost, "/api/alerts/reset-from-ui", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{serial.CommandReset}, ts.link.commands)

	ts.link.open = false
	rec = ts.do(t, http.MethodPost, "/api/alerts/reset-from-ui", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "hardware link is not connected", decode[errorResponse](t, rec).Error)
}

func TestDashboardAndHealth(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	rec := ts.do(t, http.MethodGet, "/api/dashboard/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[models.DashboardSummary](t, rec)
	assert.True(t, summary.HardwareConnected)

	rec = ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSOriginPolicy(t *testing.T) {
	ts := newTestServer(t)

	for origin, allowed := range map[string]bool{
		"https://dacn-orcin.vercel.app": true,
		"http://localhost:5173":         true,
		"https://evil.example.com":      false,
	} {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set(echo.HeaderOrigin, origin)
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rec := httptest.NewRecorder()
		ts.e.ServeHTTP(rec, req)
		if allowed {
			assert.Equal(t, origin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin), origin)
		} else {
			assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin), origin)
		}
	}
}

func TestRealtimeReceivesWrites(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice").Token

	srv := httptest.NewServer(ts.e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return ts.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	rec := ts.do(t, http.MethodPost, "/api/slot-snapshots", token, map[string]any{"slot1_occupied": true, "free_slots": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type    string              `json:"type"`
		Payload models.SlotSnapshot `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, hub.SnapshotCreated, msg.Type)
	assert.True(t, *msg.Payload.Slot1Occupied)
}

func TestRealtimeRejectsForeignOrigin(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.e)
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
