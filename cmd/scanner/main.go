// Gate-device binary. Runs on the handheld scanner at the door: keeps a
// local credential cache fresh, verifies scans offline when the venue link
// drops, and replays the queued scans once connectivity returns.
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

	"nightgate/internal/handler/middleware"
	"nightgate/internal/pkg/backoff"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/config"
	"nightgate/internal/pkg/qrtoken"
	"nightgate/internal/scanner"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func main() {
	cfg, err := config.LoadDeviceConfig()
	if err != nil {
		slog.Error("failed to load device config", "error", err)
		os.Exit(1)
	}

	logger := middleware.NewLogger(config.LogConfig{Level: "info"}).GetSlogLogger()
	logger = logger.With("device_id", cfg.DeviceID, "event_id", cfg.EventID)

	store, err := scanner.NewSQLiteStore(cfg.QueuePath)
	if err != nil {
		logger.Error("failed to open offline queue", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	source := scanner.NewHTTPSnapshotSource(cfg.ServerURL, cfg.AuthToken, cfg.EventID)
	cache := scanner.NewCache(source)
	clk := clock.NewRealClock()
	scn := scanner.NewScanner(cfg.DeviceID, cache, store, qrtoken.NewSigner(cfg.QRSecret), clk)
	verifier := scanner.NewHTTPVerifier(cfg.ServerURL, cfg.AuthToken)
	reconciler := scanner.NewReconciler(store, verifier, backoff.NewPolicy(cfg.BackoffBase, cfg.BackoffMax), clk)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// First refresh before doors open; an error is tolerable here because
	// the device may boot without connectivity and serve from the queue.
	if err := cache.Refresh(ctx); err != nil {
		logger.Warn("initial snapshot refresh failed", "error", err)
	} else {
		logger.Info("snapshot cached", "credentials", cache.Size())
	}

	go refreshLoop(ctx, cache, cfg.RefreshInterval, logger)
	go syncLoop(ctx, reconciler, cfg.SyncInterval, logger)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: deviceRouter(scn, store, cache),
	}

	go func() {
		logger.Info("device api listening", "address", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("device api failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("device api shutdown failed", "error", err)
	}

	// Final sync attempt so a graceful power-off drains what it can.
	if _, err := reconciler.Sync(shutdownCtx); err != nil {
		logger.Warn("final sync failed", "error", err)
	}
}

func refreshLoop(ctx context.Context, cache *scanner.Cache, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := cache.Refresh(ctx); err != nil {
				logger.Warn("snapshot refresh failed", "error", err)
				continue
			}
			logger.Debug("snapshot refreshed", "credentials", cache.Size())
		}
	}
}

func syncLoop(ctx context.Context, reconciler *scanner.Reconciler, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := reconciler.Sync(ctx)
			if err != nil {
				logger.Warn("queue sync failed", "error", err)
				continue
			}
			if stats.Synced > 0 || stats.Conflicts > 0 || stats.Failed > 0 {
				logger.Info("queue sync",
					"synced", stats.Synced,
					"conflicts", stats.Conflicts,
					"failed", stats.Failed,
					"purged", stats.Purged,
				)
			}
		}
	}
}

type scanRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// deviceRouter exposes the local API the scan UI talks to on-device.
func deviceRouter(scn *scanner.Scanner, store *scanner.SQLiteStore, cache *scanner.Cache) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/scan", func(c *gin.Context) {
		var req scanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "credential is required"})
			return
		}

		result, err := scn.ScanOffline(c.Request.Context(), req.Credential)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"accepted": result.Accepted,
			"reason":   result.Reason.String(),
			"re_entry": result.ReEntry,
		})
	})

	r.GET("/queue", func(c *gin.Context) {
		entries, err := store.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read queue"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"entries":    entries,
			"cache_size": cache.Size(),
		})
	})

	return r
}
