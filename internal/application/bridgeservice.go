package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/storydesk/storydesk/internal/domain/model"
	"github.com/storydesk/storydesk/internal/domain/port/driven"
)

// recentStudioCap bounds the in-memory record of studio open requests.
const recentStudioCap = 20

// BridgeService implements the privileged side of the UI bridge: encrypted
// API key storage and Chapter Studio dispatch. It depends only on port
// interfaces. Key values never appear in log output.
type BridgeService struct {
	credentials driven.CredentialStore
	studio      driven.StudioLauncher
	logger      *slog.Logger

	mu     sync.Mutex
	recent []model.StudioRequest // newest first, capped at recentStudioCap
}

// NewBridgeService creates a BridgeService with the required dependencies.
func NewBridgeService(credentials driven.CredentialStore, studio driven.StudioLauncher, logger *slog.Logger) *BridgeService {
	return &BridgeService{
		credentials: credentials,
		studio:      studio,
		logger:      logger,
	}
}

// SetAPIKey persists or overwrites the API key for the identifier.
func (s *BridgeService) SetAPIKey(ctx context.Context, id int64, apiKey string) error {
	if err := s.credentials.Set(ctx, id, apiKey); err != nil {
		return err
	}
	s.logger.Info("api key stored", "credential_id", id)
	return nil
}

// GetAPIKey returns the stored API key, or ("", nil) when no key is stored
// for the identifier. Absence is a valid outcome, not an error.
func (s *BridgeService) GetAPIKey(ctx context.Context, id int64) (string, error) {
	return s.credentials.Get(ctx, id)
}

// OpenChapterStudio validates the identifier pair and dispatches the open
// request to the launcher. Accepted requests are recorded for the HTTP API.
func (s *BridgeService) OpenChapterStudio(ctx context.Context, projectID, chapterCardID int64) error {
	if projectID <= 0 || chapterCardID <= 0 {
		return fmt.Errorf("invalid studio target: project %d, chapter card %d", projectID, chapterCardID)
	}

	if err := s.studio.Open(ctx, projectID, chapterCardID); err != nil {
		return err
	}

	s.mu.Lock()
	s.recent = append([]model.StudioRequest{{
		ProjectID:     projectID,
		ChapterCardID: chapterCardID,
		RequestedAt:   time.Now().UTC(),
	}}, s.recent...)
	if len(s.recent) > recentStudioCap {
		s.recent = s.recent[:recentStudioCap]
	}
	s.mu.Unlock()

	s.logger.Info("chapter studio opened", "project_id", projectID, "chapter_card_id", chapterCardID)
	return nil
}

// RecentStudioRequests returns the recorded studio open requests, newest first.
func (s *BridgeService) RecentStudioRequests() []model.StudioRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.StudioRequest, len(s.recent))
	copy(out, s.recent)
	return out
}
