package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/storydesk/storydesk/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// VersionResponse is the JSON representation of the version endpoint.
type VersionResponse struct {
	Version string `json:"version"`
}

// StudioRequestResponse is the JSON representation of a studio open request.
type StudioRequestResponse struct {
	ProjectID     int64  `json:"project_id"`
	ChapterCardID int64  `json:"chapter_card_id"`
	RequestedAt   string `json:"requested_at"`
}

// toStudioRequestResponse converts a domain StudioRequest to its JSON representation.
func toStudioRequestResponse(req model.StudioRequest) StudioRequestResponse {
	return StudioRequestResponse{
		ProjectID:     req.ProjectID,
		ChapterCardID: req.ChapterCardID,
		RequestedAt:   req.RequestedAt.UTC().Format(time.RFC3339),
	}
}
