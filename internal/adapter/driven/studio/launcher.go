// Package studio spawns the external Chapter Studio process. The editing
// surface itself lives outside the backend; this adapter only dispatches
// open requests to it.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/storydesk/storydesk/internal/domain/port/driven"
)

// ErrNoStudioCommand is returned by Open when no studio command has been
// configured (STORYDESK_STUDIO_CMD).
var ErrNoStudioCommand = errors.New("no studio command configured: set STORYDESK_STUDIO_CMD")

// Compile-time interface satisfaction check.
var _ driven.StudioLauncher = (*Launcher)(nil)

// Launcher starts the studio command with the target identifiers as flags.
// The spawned process is not supervised; the studio owns its own lifecycle.
type Launcher struct {
	command string
	logger  *slog.Logger
}

// NewLauncher creates a Launcher for the given command. command may be empty,
// in which case every Open is rejected with ErrNoStudioCommand.
func NewLauncher(command string, logger *slog.Logger) *Launcher {
	return &Launcher{command: command, logger: logger}
}

// Open spawns the studio for the project/chapter card pair. Only process
// startup is awaited; the studio outliving the originating bridge call is
// expected, so the command is deliberately not bound to ctx.
func (l *Launcher) Open(ctx context.Context, projectID, chapterCardID int64) error {
	if l.command == "" {
		return ErrNoStudioCommand
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(l.command,
		"--project", strconv.FormatInt(projectID, 10),
		"--chapter-card", strconv.FormatInt(chapterCardID, 10),
	)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start studio %q: %w", l.command, err)
	}

	l.logger.Debug("studio process started",
		"pid", cmd.Process.Pid,
		"project_id", projectID,
		"chapter_card_id", chapterCardID,
	)

	// Reap the process so it does not linger as a zombie.
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("studio process exited", "error", err)
		}
	}()

	return nil
}
