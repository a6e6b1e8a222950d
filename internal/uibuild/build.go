package uibuild

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Builder copies the UI source tree into the output directory and
// post-processes the emitted HTML: the Content-Security-Policy meta tag is
// rewritten to the canonical policy and the version placeholder is
// substituted. The output directory is cleaned on every run.
type Builder struct {
	Config  Config
	Version string
	Logger  *slog.Logger
}

// Run executes the build. It returns an error if the source root is missing
// or any file cannot be written.
func (b *Builder) Run() error {
	sourceInfo, err := os.Stat(b.Config.SourceDir)
	if err != nil {
		return fmt.Errorf("source dir %s: %w", b.Config.SourceDir, err)
	}
	if !sourceInfo.IsDir() {
		return fmt.Errorf("source dir %s is not a directory", b.Config.SourceDir)
	}

	if err := os.RemoveAll(b.Config.OutputDir); err != nil {
		return fmt.Errorf("clean output dir %s: %w", b.Config.OutputDir, err)
	}
	if err := os.MkdirAll(b.Config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", b.Config.OutputDir, err)
	}

	var fileCount, htmlCount int

	err = filepath.WalkDir(b.Config.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(b.Config.SourceDir, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(b.Config.OutputDir, rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			return os.MkdirAll(outPath, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		if isHTML(path) {
			data = b.postProcess(rel, data)
			htmlCount++
		}

		if err := atomic.WriteFile(outPath, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fileCount++
		return nil
	})
	if err != nil {
		return err
	}

	b.Logger.Info("ui build complete",
		"output_dir", b.Config.OutputDir,
		"files", fileCount,
		"html_files", htmlCount,
		"version", b.Version,
	)
	return nil
}

// postProcess applies the HTML rewrites to one document.
func (b *Builder) postProcess(name string, doc []byte) []byte {
	doc, replaced := RewriteCSP(doc, b.Config.CSPPolicy())
	if !replaced {
		b.Logger.Warn("no content-security-policy meta tag found", "file", name)
	}
	return InjectVersion(doc, b.Version)
}

// isHTML reports whether the file is post-processed as an HTML document.
func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
