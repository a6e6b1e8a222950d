package model

import "time"

// Credential holds an API key owned by the privileged process. ID is the
// integer identifier the UI uses to address the key; the value is an opaque
// secret (e.g. an LLM provider key) and is never interpreted by the backend.
type Credential struct {
	ID        int64
	APIKey    string
	UpdatedAt time.Time
}
