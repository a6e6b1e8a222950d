package main

import (
	"log/slog"
	"os"

	"github.com/spf13/pflag"

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
	flags := pflag.NewFlagSet("storydesk-build", pflag.ExitOnError)
	configPath := flags.String("config", "ui.build.yaml", "UI toolchain config file")
	sourceDir := flags.String("source", "", "UI source root (overrides config)")
	outputDir := flags.String("out", "", "build output directory (overrides config)")
	buildVersion := flags.String("version", version.Version, "version injected into the built UI")
	_ = flags.Parse(os.Args[1:])

	cfg, err := uibuild.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *sourceDir != "" {
		cfg.SourceDir = *sourceDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	builder := &uibuild.Builder{
		Config:  cfg,
		Version: *buildVersion,
		Logger:  slog.Default(),
	}
	return builder.Run()
}
