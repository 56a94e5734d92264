package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sthar2820/portfolio-website/analytics"
	"github.com/sthar2820/portfolio-website/config"
	"github.com/sthar2820/portfolio-website/database"
	"github.com/sthar2820/portfolio-website/handlers"
	"github.com/sthar2820/portfolio-website/metrics"
	"github.com/sthar2820/portfolio-website/reporting"
	"github.com/sthar2820/portfolio-website/store"
	"github.com/sthar2820/portfolio-website/utils"
)

func testApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.Open(ctx, "sqlite", "", filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(db.Close)

	cfg := &config.Config{
		FrontendOrigin: "http://localhost:3000",
		Auth:           config.AuthConfig{AdminEmail: "admin@example.com", AdminPassword: "hunter22"},
		Site:           config.DefaultSite(),
	}
	users := store.NewUserStore(db)
	if err := seedAdmin(ctx, users, cfg.Auth); err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}

	tokens, _ := utils.NewTokenIssuer("secret", time.Hour)
	revocations := store.NewMemoryRevocations()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := analytics.NewService(reporting.Credentials{}, nil, cfg.Site.OwnerName, cfg.Site.Projects, m)

	return newRouter(&app{
		cfg:         cfg,
		analytics:   handlers.NewAnalyticsHandlers(svc),
		auth:        handlers.NewAuthHandlers(users, tokens, revocations, false),
		blog:        handlers.NewBlogHandlers(store.NewBlogStore(store.NewSQLKV(db), cfg.Site.DefaultPosts)),
		track:       handlers.NewTrackHandlers(nil, m),
		tokens:      tokens,
		revocations: revocations,
		metrics:     m,
		gatherer:    reg,
	})
}

func do(r *gin.Engine, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	r := testApp(t)

	if w := do(r, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Errorf("healthz: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/analytics?days=7", "", ""); w.Code != http.StatusOK ||
		!strings.Contains(w.Body.String(), `"totalVisitors":0`) {
		t.Errorf("analytics: %d %s", w.Code, w.Body)
	}
	if w := do(r, http.MethodPost, "/api/analytics", "", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("analytics POST: %d", w.Code)
	}
	preflight := httptest.NewRequest(http.MethodOptions, "/api/analytics", nil)
	preflight.Header.Set("Access-Control-Request-Method", "GET")
	pw := httptest.NewRecorder()
	r.ServeHTTP(pw, preflight)
	if pw.Code != http.StatusMethodNotAllowed {
		t.Errorf("analytics preflight: %d, want 405", pw.Code)
	}
	if w := do(r, http.MethodGet, "/api/blog", "", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":"b1"`) {
		t.Errorf("blog: %d %s", w.Code, w.Body)
	}

	w := do(r, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `analytics_snapshots_total{source="unconfigured"} 1`) {
		t.Errorf("metrics: %d\n%s", w.Code, w.Body)
	}
}

func TestAdminFlow(t *testing.T) {
	r := testApp(t)

	if w := do(r, http.MethodPost, "/api/admin/blog", `{"title":"x","content":"y"}`, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated save: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"wrong"}`, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"hunter22"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}
	var login struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &login)

	if w := do(r, http.MethodPost, "/api/admin/blog", `{"title":"Hello","content":"World"}`, login.Token); w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body)
	}
	w = do(r, http.MethodGet, "/api/blog", "", "")
	var posts []map[string]any
	json.Unmarshal(w.Body.Bytes(), &posts)
	if len(posts) != 3 || posts[0]["title"] != "Hello" {
		t.Errorf("posts after save = %v", posts)
	}

	if w := do(r, http.MethodDelete, "/api/admin/blog/b1", "", login.Token); w.Code != http.StatusNoContent {
		t.Errorf("delete: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/events", "", login.Token); w.Code != http.StatusServiceUnavailable {
		t.Errorf("events without clickhouse: %d", w.Code)
	}

	if w := do(r, http.MethodPost, "/api/admin/logout", "", login.Token); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/session", "", login.Token); w.Code != http.StatusUnauthorized {
		t.Errorf("session after logout: %d", w.Code)
	}
}
