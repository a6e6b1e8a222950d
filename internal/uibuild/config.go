// Package uibuild implements the UI toolchain: build/dev-server settings,
// Content-Security-Policy rewriting, version injection, and the build step
// that post-processes the UI bundle.
package uibuild

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the UI build and dev-server settings, loaded from
// ui.build.yaml with flag overrides applied by the commands.
type Config struct {
	// SourceDir is the UI source root served by the dev server and copied
	// by the build step.
	SourceDir string `yaml:"source_dir"`

	// OutputDir is the build output directory, cleaned on every build.
	OutputDir string `yaml:"output_dir"`

	// DevPort is the local port the dev server listens on.
	DevPort int `yaml:"dev_port"`

	// BackendOrigin is the backend the dev server proxies API and image
	// traffic to, and one of the allowed connect-src origins in the CSP.
	BackendOrigin string `yaml:"backend_origin"`

	// ProxyPrefixes are the path prefixes forwarded to BackendOrigin.
	ProxyPrefixes []string `yaml:"proxy_prefixes"`

	// ExternalAPIHost is the external API origin allowed by the CSP.
	ExternalAPIHost string `yaml:"external_api_host"`
}

// DefaultConfig returns the settings the original shell shipped with.
func DefaultConfig() Config {
	return Config{
		SourceDir:       "ui",
		OutputDir:       "dist",
		DevPort:         5173,
		BackendOrigin:   "http://127.0.0.1:8000",
		ProxyPrefixes:   []string{"/api/", "/imgs/"},
		ExternalAPIHost: "https://api.openai.com",
	}
}

// LoadConfig reads path and overlays it on the defaults. A missing file is
// not an error; the defaults are returned unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DevPort <= 0 || cfg.DevPort > 65535 {
		return Config{}, fmt.Errorf("config %s: dev_port %d out of range", path, cfg.DevPort)
	}

	return cfg, nil
}

// CSPPolicy returns the Content-Security-Policy value written into emitted
// HTML: default sources restricted to self, inline and wasm-eval scripts
// from self, network connections to self plus the backend and external API
// origins, inline styles from self.
func (c Config) CSPPolicy() string {
	return fmt.Sprintf(
		"default-src 'self'; script-src 'self' 'unsafe-inline' 'wasm-unsafe-eval'; connect-src 'self' %s %s; style-src 'self' 'unsafe-inline'",
		c.BackendOrigin,
		c.ExternalAPIHost,
	)
}
