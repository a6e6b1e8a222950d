package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storydesk/storydesk/internal/domain/model"
)

// stubCredentialStore is an in-memory CredentialStore for service tests.
type stubCredentialStore struct {
	keys   map[int64]string
	setErr error
	getErr error
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{keys: make(map[int64]string)}
}

func (s *stubCredentialStore) Set(_ context.Context, id int64, apiKey string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.keys[id] = apiKey
	return nil
}

func (s *stubCredentialStore) Get(_ context.Context, id int64) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.keys[id], nil
}

func (s *stubCredentialStore) List(_ context.Context) ([]model.Credential, error) {
	return nil, nil
}

func (s *stubCredentialStore) Delete(_ context.Context, id int64) error {
	delete(s.keys, id)
	return nil
}

// stubLauncher records open requests and optionally rejects them.
type stubLauncher struct {
	opens   [][2]int64
	openErr error
}

func (l *stubLauncher) Open(_ context.Context, projectID, chapterCardID int64) error {
	if l.openErr != nil {
		return l.openErr
	}
	l.opens = append(l.opens, [2]int64{projectID, chapterCardID})
	return nil
}

func newTestService(store *stubCredentialStore, launcher *stubLauncher) *BridgeService {
	return NewBridgeService(store, launcher, slog.New(slog.DiscardHandler))
}

func TestBridgeService_SetAndGetAPIKey(t *testing.T) {
	store := newStubCredentialStore()
	svc := newTestService(store, &stubLauncher{})
	ctx := context.Background()

	require.NoError(t, svc.SetAPIKey(ctx, 1, "sk-abc123"))

	key, err := svc.GetAPIKey(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc123", key)
}

func TestBridgeService_GetAPIKeyMissing(t *testing.T) {
	svc := newTestService(newStubCredentialStore(), &stubLauncher{})

	key, err := svc.GetAPIKey(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestBridgeService_SetAPIKeyStoreError(t *testing.T) {
	store := newStubCredentialStore()
	store.setErr = errors.New("disk full")
	svc := newTestService(store, &stubLauncher{})

	err := svc.SetAPIKey(context.Background(), 1, "sk-abc")
	assert.ErrorContains(t, err, "disk full")
}

func TestBridgeService_OpenChapterStudio(t *testing.T) {
	launcher := &stubLauncher{}
	svc := newTestService(newStubCredentialStore(), launcher)

	require.NoError(t, svc.OpenChapterStudio(context.Background(), 12, 34))

	require.Len(t, launcher.opens, 1)
	assert.Equal(t, [2]int64{12, 34}, launcher.opens[0])

	recent := svc.RecentStudioRequests()
	require.Len(t, recent, 1)
	assert.Equal(t, int64(12), recent[0].ProjectID)
	assert.Equal(t, int64(34), recent[0].ChapterCardID)
	assert.False(t, recent[0].RequestedAt.IsZero())
}

func TestBridgeService_OpenChapterStudioInvalidIDs(t *testing.T) {
	launcher := &stubLauncher{}
	svc := newTestService(newStubCredentialStore(), launcher)
	ctx := context.Background()

	assert.Error(t, svc.OpenChapterStudio(ctx, 0, 34))
	assert.Error(t, svc.OpenChapterStudio(ctx, 12, -1))
	assert.Empty(t, launcher.opens, "invalid ids must not reach the launcher")
	assert.Empty(t, svc.RecentStudioRequests())
}

func TestBridgeService_OpenChapterStudioRejectionNotRecorded(t *testing.T) {
	launcher := &stubLauncher{openErr: errors.New("no studio configured")}
	svc := newTestService(newStubCredentialStore(), launcher)

	err := svc.OpenChapterStudio(context.Background(), 12, 34)
	assert.Error(t, err)
	assert.Empty(t, svc.RecentStudioRequests())
}

func TestBridgeService_RecentStudioRequestsNewestFirstAndCapped(t *testing.T) {
	svc := newTestService(newStubCredentialStore(), &stubLauncher{})
	ctx := context.Background()

	for i := 1; i <= recentStudioCap+5; i++ {
		require.NoError(t, svc.OpenChapterStudio(ctx, int64(i), int64(i)))
	}

	recent := svc.RecentStudioRequests()
	require.Len(t, recent, recentStudioCap)
	assert.Equal(t, int64(recentStudioCap+5), recent[0].ProjectID, "newest request first")
	assert.Equal(t, int64(6), recent[len(recent)-1].ProjectID)
}
