package studio

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLauncher_NoCommandConfigured(t *testing.T) {
	launcher := NewLauncher("", slog.New(slog.DiscardHandler))

	err := launcher.Open(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNoStudioCommand)
}

func TestLauncher_CommandNotFound(t *testing.T) {
	launcher := NewLauncher(filepath.Join(t.TempDir(), "missing-studio"), slog.New(slog.DiscardHandler))

	err := launcher.Open(context.Background(), 1, 2)
	assert.ErrorContains(t, err, "start studio")
}

func TestLauncher_PassesIdentifiersAsFlags(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "args.txt")
	script := filepath.Join(dir, "studio.sh")

	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+outFile+"\n"), 0o755))

	launcher := NewLauncher(script, slog.New(slog.DiscardHandler))
	require.NoError(t, launcher.Open(context.Background(), 12, 34))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(outFile)
		return err == nil && len(data) > 0
	}, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "--project 12 --chapter-card 34\n", string(data))
}

func TestLauncher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	launcher := NewLauncher("/bin/true", slog.New(slog.DiscardHandler))
	err := launcher.Open(ctx, 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
