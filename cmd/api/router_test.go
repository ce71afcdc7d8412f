package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "leadbook-backend/internal/auth/domain"
	authdto "leadbook-backend/internal/auth/dto"
	"leadbook-backend/internal/catalog"
	dashboardUsecase "leadbook-backend/internal/dashboard/usecase"
	leadRepo "leadbook-backend/internal/lead/repository"
	leadUsecase "leadbook-backend/internal/lead/usecase"
	todoRepo "leadbook-backend/internal/todo/repository"
	todoUsecase "leadbook-backend/internal/todo/usecase"
	"leadbook-backend/pkg/config"
	"leadbook-backend/pkg/docstore"
	"leadbook-backend/pkg/sse"
)

type tokenAuth struct{}

func (tokenAuth) Login(*authdto.LoginRequest) (*authdto.TokenResponse, error) {
	return nil, authdomain.ErrInvalidCredentials
}

func (tokenAuth) FirebaseSignIn(context.Context, string) (*authdto.TokenResponse, error) {
	return nil, authdomain.ErrInvalidToken
}

func (tokenAuth) RefreshToken(string) (*authdto.TokenResponse, error) {
	return nil, authdomain.ErrInvalidToken
}

func (tokenAuth) Logout(string) error { return nil }

func (tokenAuth) ValidateToken(token string) (*authdomain.User, error) {
	if token != "good" {
		return nil, authdomain.ErrInvalidToken
	}
	return &authdomain.User{ID: "u1"}, nil
}

func (tokenAuth) EnsureAdmin(string, string) error { return nil }

func (tokenAuth) RegisterFCMToken(string, *authdto.RegisterFCMTokenRequest) error { return nil }

func (tokenAuth) UnregisterFCMToken(string, string) error { return nil }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	store := docstore.NewMemoryStore(docstore.WithClock(clock))
	leads := leadUsecase.NewLeadUsecase(leadRepo.NewLeadRepository(store), catalog.Default(), clock, time.UTC)
	todos := todoUsecase.NewTodoUsecase(todoRepo.NewTodoRepository(store), nil, clock, time.UTC)
	dashboard := dashboardUsecase.NewDashboardUsecase(leads, todos, clock, time.UTC)

	sseManager := sse.NewManager()
	go sseManager.Run()
	t.Cleanup(sseManager.Stop)

	h := NewHandler(tokenAuth{}, leads, todos, dashboard, sseManager, &config.Config{Env: "test"})
	return h.Engine()
}

func request(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	w := request(newTestEngine(t), http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestEngine(t)
	for _, path := range []string{"/api/leads", "/api/todos/today", "/api/dashboard", "/api/dashboard/pipeline", "/api/auth/me"} {
		assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, path, "", "").Code, path)
		assert.Equal(t, http.StatusOK, request(r, http.MethodGet, path, "good", "").Code, path)
	}
}

func TestLeadAndTodoRoundTrip(t *testing.T) {
	r := newTestEngine(t)

	w := request(r, http.MethodPost, "/api/leads", "good", `{"full_name":"Ada Lovelace","cell":"+15550001"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, http.MethodPost, "/api/todos", "good", `{"text":"call Ada"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, http.MethodGet, "/api/dashboard", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Contains(t, w.Body.String(), `"call Ada"`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	newTestEngine(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
