package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/sthar2820/portfolio-website/analytics"
	"github.com/sthar2820/portfolio-website/config"
	"github.com/sthar2820/portfolio-website/database"
	"github.com/sthar2820/portfolio-website/handlers"
	"github.com/sthar2820/portfolio-website/metrics"
	"github.com/sthar2820/portfolio-website/middleware"
	"github.com/sthar2820/portfolio-website/reporting"
	"github.com/sthar2820/portfolio-website/store"
	"github.com/sthar2820/portfolio-website/utils"
)

type app struct {
	cfg         *config.Config
	analytics   *handlers.AnalyticsHandlers
	auth        *handlers.AuthHandlers
	blog        *handlers.BlogHandlers
	track       *handlers.TrackHandlers
	tokens      *utils.TokenIssuer
	revocations store.RevocationStore
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// --- SQL database (admin users, blog posts) ---
	dbClient, err := database.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, cfg.Store.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to initialize %s database: %v", cfg.Store.Driver, err)
	}
	defer dbClient.Close()

	// --- Redis (optional: blog backend, session revocation) ---
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer rdb.Close()
	}

	// --- ClickHouse (optional: tracking event mirror) ---
	var events handlers.EventSink
	if cfg.ClickHouse.Enabled() {
		chClient, err := database.NewClickHouseDB(cfg.ClickHouse)
		if err != nil {
			log.Printf("ERROR: ClickHouse unavailable, tracking events will be dropped: %v", err)
		} else {
			defer chClient.Close()
			events = store.NewEventStore(chClient)
		}
	}

	// --- Stores ---
	userStore := store.NewUserStore(dbClient)
	if err := seedAdmin(ctx, userStore, cfg.Auth); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	var kv store.KVStore = store.NewSQLKV(dbClient)
	var revocations store.RevocationStore = store.NewMemoryRevocations()
	if rdb != nil {
		revocations = store.NewRedisRevocations(rdb)
		if cfg.Store.BlogBackend == "redis" {
			kv = store.NewRedisKV(rdb)
		}
	} else if cfg.Store.BlogBackend == "redis" {
		log.Println("BLOG_BACKEND=redis but REDIS_ADDR is not set; keeping blog posts in SQL")
	}
	blogStore := store.NewBlogStore(kv, cfg.Site.DefaultPosts)

	// --- Sessions ---
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = utils.GenerateSessionSecret(); err != nil {
			log.Fatalf("Failed to create session secret: %v", err)
		}
	}
	tokens, err := utils.NewTokenIssuer(secret, cfg.Auth.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Analytics pipeline ---
	creds := reporting.Credentials{
		PropertyID:  cfg.Analytics.PropertyID,
		ClientEmail: cfg.Analytics.ClientEmail,
		PrivateKey:  cfg.Analytics.PrivateKey,
	}
	if !creds.Configured() {
		log.Println("Analytics credentials not configured; /api/analytics will serve zeroed snapshots")
	}
	reportClient := reporting.NewClient(nil, cfg.Analytics.TokenURL, cfg.Analytics.ReportBaseURL, cfg.Analytics.Timeout)
	svc := analytics.NewService(creds, reportClient, cfg.Site.OwnerName, cfg.Site.Projects, m)

	r := newRouter(&app{
		cfg:         cfg,
		analytics:   handlers.NewAnalyticsHandlers(svc),
		auth:        handlers.NewAuthHandlers(userStore, tokens, revocations, cfg.Auth.SecureCookie),
		blog:        handlers.NewBlogHandlers(blogStore),
		track:       handlers.NewTrackHandlers(events, m),
		tokens:      tokens,
		revocations: revocations,
		metrics:     m,
		gatherer:    reg,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Portfolio API server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Portfolio API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// analyticsRoute answers every method itself, preflights included.
const analyticsRoute = "/api/analytics"

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORSMiddleware(a.cfg.FrontendOrigin, analyticsRoute))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(a.gatherer)))

	api := r.Group("/api")
	{
		api.Any(strings.TrimPrefix(analyticsRoute, "/api"), a.analytics.GetAnalytics)
		api.GET("/blog", a.blog.List)
		api.POST("/track", a.track.Track)
		api.POST("/admin/login", a.auth.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(a.tokens, a.revocations))
		{
			admin.POST("/logout", a.auth.Logout)
			admin.GET("/session", a.auth.Session)
			admin.POST("/blog", a.blog.Save)
			admin.PUT("/blog", a.blog.Reorder)
			admin.DELETE("/blog/:id", a.blog.Delete)
			admin.GET("/events", a.track.EventCounts)
		}
	}
	return r
}

// seedAdmin writes the admin account from ADMIN_EMAIL / ADMIN_PASSWORD. Without
// both, no account exists and login always fails.
func seedAdmin(ctx context.Context, users *store.UserStore, auth config.AuthConfig) error {
	if auth.AdminEmail == "" || auth.AdminPassword == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set; admin login disabled")
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = users.UpsertAdmin(ctx, auth.AdminEmail, hashed)
	return err
}
