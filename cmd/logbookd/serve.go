package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"pilot-logbook-backend/internal/api"
	"pilot-logbook-backend/internal/db"
	"pilot-logbook-backend/internal/maintenance"
	"pilot-logbook-backend/internal/metrics"
	"pilot-logbook-backend/internal/scanner"
	"pilot-logbook-backend/internal/store"
)

func runServe(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	hub := api.NewHub()
	go hub.Run(ctx)

	scannerSvc := scanner.NewService(cfg, appStore, hub, m)
	go scannerSvc.Run(ctx)

	var webpushOptions *webpush.Options
	if cfg.PushEnabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}
	if cfg.Auth.DisableRoleChecks {
		slog.Warn("role checks are disabled; any caller may modify the fleet and logbooks")
	}

	router := api.NewRouter(appStore, api.Options{
		Webpush:      webpushOptions,
		Location:     cfg.Alerts.Location,
		RateLimit:    rate.Limit(cfg.Server.RateLimitPerSec),
		RateBurst:    cfg.Server.RateLimitBurst,
		CacheTTL:     cfg.Server.CacheTTL,
		EnforceRoles: !cfg.Auth.DisableRoleChecks,
		Hub:          hub,
		Metrics:      m,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping services")
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	slog.Info("server gracefully stopped")
	return nil
}

func runMigrate(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	// Init migrates as part of opening the database.
	if _, err := db.Init(&cfg.Database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("migration complete")
	return nil
}

func runAlerts(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	snap, err := store.NewGormStore(gormDB).Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read fleet: %w", err)
	}
	report := maintenance.BuildReport(snap.Aircraft, snap.MaintenanceRecords, time.Now(), cfg.Alerts.Location)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
