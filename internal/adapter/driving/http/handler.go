package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/storydesk/storydesk/internal/application"
)

// Handler is the HTTP driving adapter for the backend's local API. It serves
// the endpoints the UI reaches through the dev-server proxy: health, version,
// recent studio activity, and the project image files.
type Handler struct {
	bridgeSvc *application.BridgeService
	version   string
	imageDir  string
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. imageDir may
// be empty, in which case /imgs/ responds 404.
func NewHandler(bridgeSvc *application.BridgeService, version, imageDir string, logger *slog.Logger) *Handler {
	return &Handler{
		bridgeSvc: bridgeSvc,
		version:   version,
		imageDir:  imageDir,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/version", h.Version)
	mux.HandleFunc("GET /api/studio/recent", h.RecentStudioRequests)

	if h.imageDir != "" {
		mux.Handle("GET /imgs/", http.StripPrefix("/imgs/", http.FileServer(http.Dir(h.imageDir))))
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Version reports the build version injected at link time.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: h.version})
}

// RecentStudioRequests returns the latest studio open requests, newest first.
func (h *Handler) RecentStudioRequests(w http.ResponseWriter, r *http.Request) {
	recent := h.bridgeSvc.RecentStudioRequests()

	resp := make([]StudioRequestResponse, 0, len(recent))
	for _, req := range recent {
		resp = append(resp, toStudioRequestResponse(req))
	}

	writeJSON(w, http.StatusOK, resp)
}
