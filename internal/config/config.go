// Package config loads backend daemon configuration from environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
)

// Config holds the daemon configuration loaded from environment variables.
type Config struct {
	// ListenAddr is the local HTTP API address the dev-server proxy targets.
	ListenAddr string

	// BridgeSocket is the Unix socket path the UI bridge listens on.
	BridgeSocket string

	// DBPath is the SQLite database file holding encrypted credentials.
	DBPath string

	// SecretKey is the 32-byte AES-256 key for credential encryption, or
	// nil when STORYDESK_SECRET_KEY is unset. Without it the daemon runs
	// but every credential operation reports a failed outcome.
	SecretKey []byte

	// StudioCmd is the command spawned to open the Chapter Studio surface.
	// Empty means studio open requests are rejected.
	StudioCmd string

	// ImageDir is the directory served under /imgs/. Empty disables it.
	ImageDir string
}

// Load reads configuration from environment variables and returns a validated Config.
// STORYDESK_SECRET_KEY (base64, 32 bytes decoded) and STORYDESK_STUDIO_CMD are
// optional; without them the corresponding bridge operations degrade to failed
// outcomes instead of preventing startup. Optional variables with defaults:
// STORYDESK_LISTEN_ADDR (127.0.0.1:8000), STORYDESK_BRIDGE_SOCKET
// (storydesk-bridge.sock), STORYDESK_DB_PATH (storydesk.db).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8000"
	if v, ok := os.LookupEnv("STORYDESK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	bridgeSocket := "storydesk-bridge.sock"
	if v, ok := os.LookupEnv("STORYDESK_BRIDGE_SOCKET"); ok {
		bridgeSocket = v
	}

	dbPath := "storydesk.db"
	if v, ok := os.LookupEnv("STORYDESK_DB_PATH"); ok {
		dbPath = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("STORYDESK_SECRET_KEY"); ok && v != "" {
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("STORYDESK_SECRET_KEY is not valid base64: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("STORYDESK_SECRET_KEY must decode to 32 bytes, got %d", len(decoded))
		}
		secretKey = decoded
	}

	return &Config{
		ListenAddr:   listenAddr,
		BridgeSocket: bridgeSocket,
		DBPath:       dbPath,
		SecretKey:    secretKey,
		StudioCmd:    os.Getenv("STORYDESK_STUDIO_CMD"),
		ImageDir:     os.Getenv("STORYDESK_IMAGE_DIR"),
	}, nil
}
