package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"facultypool/internal/auth"
	"facultypool/internal/booking"
	"facultypool/internal/config"
	"facultypool/internal/dashboard"
	"facultypool/internal/directory"
	"facultypool/internal/httpmiddleware"
	"facultypool/internal/logging"
	"facultypool/internal/mailer"
	"facultypool/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logging.New(cfg.Env)
	defer func() { _ = logger.Sync() }()

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(ctx, db.Client); err != nil {
		return err
	}
	if version, err := store.MigrationVersion(ctx, db.Client); err == nil {
		logger.Info("database ready", zap.Int64("schema_version", version))
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	// Directory.
	dirRepo := directory.NewRepository(db.Client)
	dirSvc := directory.NewService(dirRepo)
	dirHandler := directory.NewHandler(dirSvc, logger)

	// Booking.
	bookRepo := booking.NewRepository(db.Client)
	bookSvc := booking.NewService(dirSvc, bookRepo, cfg.EmailDomain, cfg.PhonePrefix, booking.DefaultLimits, logger)
	bookHandler := booking.NewHandler(bookSvc, logger)

	// Dashboard.
	dashRepo := dashboard.NewRepository(db.Client)
	dashSvc, err := dashboard.NewService(dashRepo, cfg.DisplayTimeZone, cfg.AttendanceCutoff, cfg.DashboardWindow, logger)
	if err != nil {
		return err
	}
	dashHandler := dashboard.NewHandler(dashSvc, logger)

	// Auth.
	sessions := auth.NewRedisSessionStore(redisClient.Client, cfg.SessionTTL)
	codes := auth.NewRedisCodeStore(redisClient.Client, cfg.OTPTTL)
	creds := auth.NewCredentialStore(db.Client)
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	authSvc := auth.NewService(creds, sessions, codes, mail,
		cfg.EmailDomain, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.SessionTTL, logger)
	authHandler := auth.NewHandler(authSvc, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	v1 := r.Group("/v1")
	dirHandler.Register(v1)
	bookHandler.Register(v1)
	authHandler.Register(v1)

	authed := r.Group("/v1", auth.SessionAuth(cfg.JWTSigningKey, cfg.JWTIssuer, sessions))
	dashHandler.Register(authed)
	authHandler.RegisterAuthenticated(authed)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
