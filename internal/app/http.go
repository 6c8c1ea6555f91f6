package app

import (
	"context"
	"net/http"
	"time"

	"github.com/KevinAcruz/acru/internal/config"
	"github.com/KevinAcruz/acru/internal/logger"
	"github.com/KevinAcruz/acru/internal/snapshot"
	"github.com/KevinAcruz/acru/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	store := telemetry.NewRedisStore(infra.Redis.Client)
	service := telemetry.NewService(store, telemetry.Config{
		SessionTTL:         time.Duration(cfg.SessionTTLSec) * time.Second,
		RecentPingLimit:    cfg.RecentPingLimit,
		RateLimitWindow:    time.Duration(cfg.RateLimitWindowSec) * time.Second,
		RateLimitMax:       int64(cfg.RateLimitMaxPerWindow),
		GeoPingMinInterval: time.Duration(cfg.GeoPingMinIntervalSec) * time.Second,
	})

	telemetryHandler := telemetry.NewHandler(service)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	telemetryHandler.RegisterRoutes(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "portfolio-web",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// ----------------------------
	// Snapshot archive (optional)
	// ----------------------------

	if infra.DB != nil {
		repo := snapshot.NewRepo(infra.DB.DB)
		snapshot.NewHandler(repo).RegisterRoutes(router)

		archiver := snapshot.NewArchiver(repo, service, cfg.SnapshotInterval)
		go archiver.Run(ctx)
	}

	// ----------------------------
	// Cleanup
	// ----------------------------

	cleanup := func() error {
		if infra.DB != nil {
			if err := infra.DB.Close(); err != nil {
				return err
			}
		}
		return infra.Redis.Close()
	}

	return router, cleanup, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request", map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
	}
}
