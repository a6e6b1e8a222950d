package config

import (
	"encoding/base64"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Setenv registers restoration of any ambient value; unset afterwards
	// so the defaults are exercised.
	for _, key := range []string{
		"STORYDESK_LISTEN_ADDR", "STORYDESK_BRIDGE_SOCKET", "STORYDESK_DB_PATH",
		"STORYDESK_SECRET_KEY", "STORYDESK_STUDIO_CMD", "STORYDESK_IMAGE_DIR",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8000", cfg.ListenAddr)
	assert.Equal(t, "storydesk-bridge.sock", cfg.BridgeSocket)
	assert.Equal(t, "storydesk.db", cfg.DBPath)
	assert.Nil(t, cfg.SecretKey)
	assert.Empty(t, cfg.StudioCmd)
	assert.Empty(t, cfg.ImageDir)
}

func TestLoad_Overrides(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	t.Setenv("STORYDESK_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("STORYDESK_BRIDGE_SOCKET", "/run/storydesk/bridge.sock")
	t.Setenv("STORYDESK_DB_PATH", "/var/lib/storydesk/creds.db")
	t.Setenv("STORYDESK_SECRET_KEY", key)
	t.Setenv("STORYDESK_STUDIO_CMD", "/usr/lib/storydesk/studio")
	t.Setenv("STORYDESK_IMAGE_DIR", "/var/lib/storydesk/imgs")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "/run/storydesk/bridge.sock", cfg.BridgeSocket)
	assert.Equal(t, "/var/lib/storydesk/creds.db", cfg.DBPath)
	assert.Len(t, cfg.SecretKey, 32)
	assert.Equal(t, "/usr/lib/storydesk/studio", cfg.StudioCmd)
	assert.Equal(t, "/var/lib/storydesk/imgs", cfg.ImageDir)
}

func TestLoad_RejectsBadSecretKey(t *testing.T) {
	t.Setenv("STORYDESK_SECRET_KEY", "not-base64!!!")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsShortSecretKey(t *testing.T) {
	t.Setenv("STORYDESK_SECRET_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	_, err := Load()
	assert.ErrorContains(t, err, "32 bytes")
}
