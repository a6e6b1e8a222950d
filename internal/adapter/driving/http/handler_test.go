package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storydesk/storydesk/internal/application"
	"github.com/storydesk/storydesk/internal/domain/model"
)

// nopCredentialStore satisfies the store port for handler tests; the HTTP
// API never touches credentials.
type nopCredentialStore struct{}

func (nopCredentialStore) Set(context.Context, int64, string) error         { return nil }
func (nopCredentialStore) Get(context.Context, int64) (string, error)       { return "", nil }
func (nopCredentialStore) List(context.Context) ([]model.Credential, error) { return nil, nil }
func (nopCredentialStore) Delete(context.Context, int64) error              { return nil }

// nopLauncher accepts every studio request.
type nopLauncher struct{}

func (nopLauncher) Open(context.Context, int64, int64) error { return nil }

func newTestServer(t *testing.T, imageDir string) (*httptest.Server, *application.BridgeService) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	svc := application.NewBridgeService(nopCredentialStore{}, nopLauncher{}, logger)
	handler := NewHandler(svc, "1.2.3", imageDir, logger)

	srv := httptest.NewServer(NewServeMux(handler, logger))
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestHandler_Health(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Time)
}

func TestHandler_Version(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/api/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body VersionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1.2.3", body.Version)
}

func TestHandler_RecentStudioRequests(t *testing.T) {
	srv, svc := newTestServer(t, "")

	require.NoError(t, svc.OpenChapterStudio(context.Background(), 12, 34))

	resp, err := http.Get(srv.URL + "/api/studio/recent")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []StudioRequestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, int64(12), body[0].ProjectID)
	assert.Equal(t, int64(34), body[0].ChapterCardID)
	assert.NotEmpty(t, body[0].RequestedAt)
}

func TestHandler_RecentStudioRequestsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/api/studio/recent")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body []StudioRequestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body)
}

func TestHandler_ServesImages(t *testing.T) {
	imageDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "cover.png"), []byte("png-bytes"), 0o644))

	srv, _ := newTestServer(t, imageDir)

	resp, err := http.Get(srv.URL + "/imgs/cover.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := http.Get(srv.URL + "/imgs/nope.png")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHandler_ImagesDisabledWithoutDirectory(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/imgs/cover.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
