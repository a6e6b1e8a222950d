// Package devserver serves the UI source tree during development and
// reverse-proxies API and image traffic to the local backend, so the UI
// talks to one origin exactly as it does in the packaged application.
package devserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/storydesk/storydesk/internal/uibuild"
)

// Server builds the dev-server handler from the UI toolchain settings.
type Server struct {
	Config  uibuild.Config
	Version string
	Logger  *slog.Logger
}

// Handler returns the composed handler: proxy routes for the configured
// prefixes, static assets for everything else. HTML files get the same CSP
// and version rewrites the build step applies, so dev output matches the
// packaged bundle.
func (s *Server) Handler() (http.Handler, error) {
	target, err := url.Parse(s.Config.BackendOrigin)
	if err != nil {
		return nil, fmt.Errorf("parse backend origin %q: %w", s.Config.BackendOrigin, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("backend origin %q must include scheme and host", s.Config.BackendOrigin)
	}

	proxy := newProxy(target, s.Logger)

	mux := http.NewServeMux()
	for _, prefix := range s.Config.ProxyPrefixes {
		mux.Handle(prefix, proxy)
	}
	mux.HandleFunc("/", s.serveAsset)

	return mux, nil
}

// newProxy forwards requests to the backend, rewriting the Origin header to
// the target origin. The backend only accepts its own origin; the rewrite
// is the local development cross-origin bypass.
func newProxy(target *url.URL, logger *slog.Logger) *httputil.ReverseProxy {
	targetOrigin := target.Scheme + "://" + target.Host

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			pr.Out.Header.Set("Origin", targetOrigin)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("proxy request failed", "path", r.URL.Path, "error", err)
			http.Error(w, "backend unreachable", http.StatusBadGateway)
		},
	}
}

// serveAsset serves a file from the UI source root. Directory requests fall
// back to index.html; HTML documents are rewritten on the fly.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if rel == "." || rel == "" {
		rel = "index.html"
	}
	// Clean above collapses any ".." the request smuggled in; an absolute
	// escape would surface here as a leading "..".
	if strings.HasPrefix(rel, "..") {
		http.NotFound(w, r)
		return
	}

	filePath := filepath.Join(s.Config.SourceDir, filepath.FromSlash(rel))

	info, err := os.Stat(filePath)
	if err == nil && info.IsDir() {
		filePath = filepath.Join(filePath, "index.html")
		info, err = os.Stat(filePath)
	}
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(filePath, ".html") || strings.HasSuffix(filePath, ".htm") {
		data, _ = uibuild.RewriteCSP(data, s.Config.CSPPolicy())
		data = uibuild.InjectVersion(data, s.Version)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}

	http.ServeContent(w, r, filePath, info.ModTime(), strings.NewReader(string(data)))
}
