package app

import (
	"context"
	"growth_assessment/internal/config"
	"growth_assessment/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func newTestApp(t *testing.T, authEnabled bool) (*App, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"advice":"keep going"}`))
	}))
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: "test"},
		Advice: config.AdviceConfig{BackendURL: backend.URL, UpstreamFailureMode: config.FailureModeUnavailable},
		JWT:    config.JWTConfig{Secret: secret, ExpireTime: time.Hour},
		Auth:   config.AuthConfig{Enabled: authEnabled},
		Storage: config.StorageConfig{
			Type:      util.StorageLocal,
			LocalPath: t.TempDir(),
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}

	a := NewApp(cfg)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a, backend
}

func serve(a *App, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestRoutesWithoutAuth(t *testing.T) {
	a, _ := newTestApp(t, false)

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/sections", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/metrics", "", "").Code)

	w := serve(a, http.MethodPost, "/api/llm-advice", `{"userId":"u","assessmentData":{"a":1}}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"advice":"keep going"}`, w.Body.String())

	w = serve(a, http.MethodPost, "/api/llm-advice", `{"userId":"u"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(a, http.MethodPost, "/api/users/u/submit", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Submission-ID"))
}

func TestUserRoutesRequireMatchingToken(t *testing.T) {
	a, _ := newTestApp(t, true)

	w := serve(a, http.MethodGet, "/api/users/alice/answers", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := util.GenerateJWT("alice", secret, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/users/alice/answers", "", token).Code)
	assert.Equal(t, http.StatusForbidden, serve(a, http.MethodGet, "/api/users/bob/answers", "", token).Code)

	// the gateway stays public
	w = serve(a, http.MethodPost, "/api/llm-advice", `{"userId":"x","assessmentData":{"a":1}}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConfigReloadSwapsBackendAndSecret(t *testing.T) {
	a, _ := newTestApp(t, true)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	next := *a.Config
	next.Advice = config.AdviceConfig{BackendURL: failing.URL, UpstreamFailureMode: config.FailureModeInternal}
	next.JWT.Secret = strings.Repeat("z", 32)
	a.applyConfig(&next)

	w := serve(a, http.MethodPost, "/api/llm-advice", `{"userId":"u","assessmentData":{"a":1}}`, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Backend API error: 502")

	old, err := util.GenerateJWT("alice", secret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(a, http.MethodGet, "/api/users/alice/answers", "", old).Code)

	fresh, err := util.GenerateJWT("alice", next.JWT.Secret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/users/alice/answers", "", fresh).Code)
}

func TestApplyConfigFansOutInOrder(t *testing.T) {
	a := &App{}
	var seen []string
	a.RegisterConfigCallback(func(cfg *config.Config) { seen = append(seen, "first:"+cfg.Server.Mode) })
	a.RegisterConfigCallback(func(cfg *config.Config) {
		seen = append(seen, "second:"+cfg.Server.Mode)
		// subscribing from a callback must not deadlock or run in this pass
		a.RegisterConfigCallback(func(*config.Config) { seen = append(seen, "late") })
	})

	a.applyConfig(&config.Config{Server: config.ServerConfig{Mode: "release"}})
	assert.Equal(t, []string{"first:release", "second:release"}, seen)

	seen = nil
	a.applyConfig(&config.Config{Server: config.ServerConfig{Mode: "debug"}})
	assert.Equal(t, []string{"first:debug", "second:debug", "late"}, seen)
}
