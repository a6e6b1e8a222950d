// Package bridge implements the request/response channel between the UI
// process and the privileged backend. Each call is a newline-delimited JSON
// envelope over a Unix domain socket: the request carries a UUID correlation
// id and a method name, and the matching response resolves exactly one
// pending caller. Failures on the privileged side are converted into outcome
// envelopes with success=false; they never propagate as faults across the
// process boundary.
package bridge

import "encoding/json"

// Bridge method names as they appear on the wire.
const (
	MethodSetAPIKey         = "setApiKey"
	MethodGetAPIKey         = "getApiKey"
	MethodOpenChapterStudio = "openChapterStudio"
)

// Request is a single bridge call envelope.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the envelope resolving one Request, matched by ID.
// APIKey is populated only for getApiKey; Error only on failure, and never
// for openChapterStudio, which declares a bare success flag.
type Response struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	APIKey  string `json:"apiKey,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SetAPIKeyParams are the parameters for the setApiKey method.
type SetAPIKeyParams struct {
	ID     int64  `json:"id"`
	APIKey string `json:"apiKey"`
}

// GetAPIKeyParams are the parameters for the getApiKey method.
type GetAPIKeyParams struct {
	ID int64 `json:"id"`
}

// OpenChapterStudioParams are the parameters for the openChapterStudio method.
type OpenChapterStudioParams struct {
	ProjectID     int64 `json:"projectId"`
	ChapterCardID int64 `json:"chapterCardId"`
}

// Outcome is the caller-facing result of a bridge operation. Success is the
// sole failure signal; Error is free text for display and diagnostics only.
type Outcome struct {
	Success bool
	Error   string
}

// KeyOutcome is the caller-facing result of getApiKey. An empty APIKey with
// Success=true means no key is stored for the identifier.
type KeyOutcome struct {
	Outcome
	APIKey string
}
