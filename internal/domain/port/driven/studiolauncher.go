package driven

import "context"

// StudioLauncher defines the driven port for opening the Chapter Studio
// editing surface. The surface runs outside the backend process; Open only
// dispatches the request and reports whether it was accepted.
type StudioLauncher interface {
	// Open requests the studio surface for the given project and chapter
	// card. A rejection (invalid ids, no studio configured, spawn failure)
	// is returned as an error; callers translate it into a failed outcome
	// rather than propagating it across the bridge.
	Open(ctx context.Context, projectID, chapterCardID int64) error
}
