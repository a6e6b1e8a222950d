// Package version exposes the application version stamped at link time.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/storydesk/storydesk/internal/version.Version=1.2.3"
var Version = "dev"
