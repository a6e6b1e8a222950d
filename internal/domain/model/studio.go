package model

import "time"

// StudioRequest records a request to open the Chapter Studio editing surface
// for a chapter card within a project. The surface itself is owned by a
// separate process; the backend only validates and dispatches the request.
type StudioRequest struct {
	ProjectID     int64
	ChapterCardID int64
	RequestedAt   time.Time
}
