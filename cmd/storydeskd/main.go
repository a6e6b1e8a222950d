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

	sqliteadapter "github.com/storydesk/storydesk/internal/adapter/driven/sqlite"
	studioadapter "github.com/storydesk/storydesk/internal/adapter/driven/studio"
	httphandler "github.com/storydesk/storydesk/internal/adapter/driving/http"
	"github.com/storydesk/storydesk/internal/application"
	"github.com/storydesk/storydesk/internal/bridge"
	"github.com/storydesk/storydesk/internal/config"
	"github.com/storydesk/storydesk/internal/version"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"bridge_socket", cfg.BridgeSocket,
		"db_path", cfg.DBPath,
		"encryption_enabled", cfg.SecretKey != nil,
		"studio_configured", cfg.StudioCmd != "",
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	launcher := studioadapter.NewLauncher(cfg.StudioCmd, slog.Default())
	if cfg.SecretKey == nil {
		slog.Warn("no encryption key configured, credential operations will fail until STORYDESK_SECRET_KEY is set")
	}

	// 6. Create the bridge service and start the UI bridge.
	bridgeSvc := application.NewBridgeService(credentialStore, launcher, slog.Default())

	bridgeServer := &bridge.Server{
		SocketPath: cfg.BridgeSocket,
		Service:    bridgeSvc,
		Logger:     slog.Default(),
	}
	if err := bridgeServer.Start(ctx); err != nil {
		return err
	}
	defer bridgeServer.Stop()

	// 7. Create HTTP handler and start the local API server.
	apiHandler := httphandler.NewHandler(bridgeSvc, version.Version, cfg.ImageDir, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("storydeskd started",
		"listen_addr", cfg.ListenAddr,
		"bridge_socket", cfg.BridgeSocket,
		"version", version.Version,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain; the
	// deferred bridgeServer.Stop drains in-flight bridge calls.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
