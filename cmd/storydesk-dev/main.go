package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/storydesk/storydesk/internal/devserver"
	"github.com/storydesk/storydesk/internal/uibuild"
	"github.com/storydesk/storydesk/internal/version"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("storydesk-dev", pflag.ExitOnError)
	configPath := flags.String("config", "ui.build.yaml", "UI toolchain config file")
	port := flags.Int("port", 0, "dev server port (overrides config)")
	sourceDir := flags.String("source", "", "UI source root (overrides config)")
	backendOrigin := flags.String("backend", "", "backend origin to proxy to (overrides config)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := uibuild.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.DevPort = *port
	}
	if *sourceDir != "" {
		cfg.SourceDir = *sourceDir
	}
	if *backendOrigin != "" {
		cfg.BackendOrigin = *backendOrigin
	}

	server := &devserver.Server{
		Config:  cfg,
		Version: version.Version,
		Logger:  slog.Default(),
	}
	handler, err := server.Handler()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.DevPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("dev server starting",
			"addr", srv.Addr,
			"source_dir", cfg.SourceDir,
			"backend_origin", cfg.BackendOrigin,
			"proxy_prefixes", cfg.ProxyPrefixes,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("dev server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("dev server shutdown error", "error", err)
	}

	return nil
}
