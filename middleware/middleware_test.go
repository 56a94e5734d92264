package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sthar2820/portfolio-website/metrics"
	"github.com/sthar2820/portfolio-website/models"
	"github.com/sthar2820/portfolio-website/store"
	"github.com/sthar2820/portfolio-website/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://portfolio.example"))
	r.Any("/api/analytics", func(c *gin.Context) { c.Status(http.StatusMethodNotAllowed) })

	req := httptest.NewRequest(http.MethodOptions, "/api/analytics", nil)
	req.Header.Set("Origin", "https://portfolio.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://portfolio.example" {
		t.Errorf("allow origin = %q", got)
	}

	// Routes that own their preflight get the handler's answer.
	own := gin.New()
	own.Use(CORSMiddleware("https://portfolio.example", "/api/analytics"))
	own.Any("/api/analytics", func(c *gin.Context) { c.Status(http.StatusMethodNotAllowed) })
	own.POST("/api/track", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = httptest.NewRecorder()
	own.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("analytics preflight status = %d, want 405", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://portfolio.example" {
		t.Errorf("allow origin on skipped preflight = %q", got)
	}
	trackPreflight := httptest.NewRequest(http.MethodOptions, "/api/track", nil)
	trackPreflight.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	own.ServeHTTP(w, trackPreflight)
	if w.Code != http.StatusNoContent {
		t.Errorf("track preflight status = %d, want 204", w.Code)
	}

	// A bare OPTIONS is not a preflight and reaches the handler.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/analytics", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("plain OPTIONS status = %d", w.Code)
	}
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Time) error { return nil }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestAuthRequired(t *testing.T) {
	tokens, _ := utils.NewTokenIssuer("secret", time.Hour)
	token, claims, _ := tokens.GenerateJWT(&models.AdminUser{ID: 3, Email: "admin@example.com"})

	revocations := store.NewMemoryRevocations()
	newRouter := func(rs store.RevocationStore) *gin.Engine {
		r := gin.New()
		r.GET("/private", AuthRequired(tokens, rs), func(c *gin.Context) {
			got := c.MustGet(ClaimsKey).(*utils.Claims)
			c.String(http.StatusOK, got.Email)
		})
		return r
	}
	call := func(r *gin.Engine, header string) int {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	r := newRouter(revocations)
	if code := call(r, ""); code != http.StatusUnauthorized {
		t.Errorf("no token: %d", code)
	}
	if code := call(r, "Bearer garbage"); code != http.StatusUnauthorized {
		t.Errorf("garbage token: %d", code)
	}
	if code := call(r, "Bearer "+token); code != http.StatusOK {
		t.Errorf("valid token: %d", code)
	}

	revocations.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time)
	if code := call(r, "Bearer "+token); code != http.StatusUnauthorized {
		t.Errorf("revoked token: %d", code)
	}

	if code := call(newRouter(failingRevocations{}), "Bearer "+token); code != http.StatusServiceUnavailable {
		t.Errorf("revocation store down: %d", code)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/blog", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/blog", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/blog", "200")); got != 2 {
		t.Errorf("/api/blog count = %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched count = %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsInFlight); got != 0 {
		t.Errorf("in flight = %v", got)
	}
}
