package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"idcard/internal/apiclient"
	"idcard/internal/app"
	"idcard/internal/config"
	"idcard/internal/httpmiddleware"
	"idcard/internal/storage"
	"idcard/internal/web"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func newBackend(cfg config.App, logger *slog.Logger) storage.Backend {
	opts := storage.Options{TTL: cfg.StorageTTL}
	if cfg.StorageBackend == "redis" {
		logger.Info("using redis storage", "addr", cfg.RedisAddr)
		return storage.NewRedis(cfg.RedisAddr, opts)
	}
	logger.Info("using in-memory storage; admin logins do not survive restarts")
	return storage.NewMemory(opts)
}

func runHTTP(cfg config.App, logger *slog.Logger) error {
	if cfg.Production() && cfg.VisitorSigningKey == config.DevSigningKey {
		return errors.New("VISITOR_SIGNING_KEY must be set in production")
	}

	backend := newBackend(cfg, logger)
	defer func() {
		_ = backend.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := apiclient.New(cfg.APIBaseURL, cfg.AssetBaseURL, cfg.APITimeout)
	registry := app.NewRegistry(api, backend, logger, app.Options{
		IdleTTL:            cfg.WorkspaceIdleTTL,
		SettingsCloseDelay: cfg.SettingsCloseDelay,
	})
	if cfg.WorkspaceIdleTTL > 0 {
		go registry.Run(ctx, time.Minute)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin).Writes())

	web.New(registry, backend, logger, web.Options{
		MaxUploadBytes:     int64(cfg.MaxUploadMB) << 20,
		VisitorSigningKey:  cfg.VisitorSigningKey,
		VisitorTTL:         cfg.VisitorTTL,
		SecureCookies:      cfg.Production(),
		SettingsCloseDelay: cfg.SettingsCloseDelay,
	}).Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.HTTPPort, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", "error", err)
	}

	logger.Info("server exited")
	return nil
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
