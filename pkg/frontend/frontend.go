// Package frontend provides a static file server for the frontend assets
package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/Masterminds/sprig/v3"

	static "github.com/salesdash/salesdash/frontend"
	"github.com/salesdash/salesdash/pkg/report"
)

const indexFile = "index.html"

type handler struct {
	fileHandler http.Handler
	filesystem  fs.FS
	index       []byte
}

// page is the data the index template is rendered with
type page struct {
	Title    string
	Locale   string
	APIBase  string
	Sections []string
}

// NewHandler creates a new frontend HTTP handler with SPA fallback support.
// index.html is rendered once from cfg.
func NewHandler(cfg *Config) (http.Handler, error) {
	frontendFS, err := fs.Sub(static.FS, "build/frontend")
	if err != nil {
		return nil, fmt.Errorf("failed to load frontend filesystem: %w", err)
	}

	locale, err := report.ParseLocale(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid frontend locale: %w", err)
	}

	index, err := renderIndex(frontendFS, page{
		Title:    cfg.Title,
		Locale:   string(locale),
		APIBase:  "/api/v1",
		Sections: sectionIDs(),
	})
	if err != nil {
		return nil, err
	}

	h := &handler{
		filesystem:  frontendFS,
		fileHandler: http.FileServer(http.FS(frontendFS)),
		index:       index,
	}

	return h, nil
}

func renderIndex(fsys fs.FS, data page) ([]byte, error) {
	tmpl, err := template.New(indexFile).Funcs(sprig.HtmlFuncMap()).ParseFS(fsys, indexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", indexFile, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", indexFile, err)
	}

	return buf.Bytes(), nil
}

// ServeHTTP handles frontend requests with SPA fallback support
func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Check if the file exists
	path := strings.TrimPrefix(req.URL.Path, "/")
	if path != "" && path != indexFile && h.fileExists(path) {
		h.fileHandler.ServeHTTP(w, req)
		return
	}

	// Fall back to the rendered index.html for SPA routing
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.index)
}

// fileExists checks if a file exists in the frontend filesystem
func (h *handler) fileExists(path string) bool {
	info, err := fs.Stat(h.filesystem, path)
	return err == nil && !info.IsDir()
}

func sectionIDs() []string {
	ids := make([]string, 0, len(report.Sections()))
	for _, id := range report.Sections() {
		ids = append(ids, string(id))
	}

	return ids
}
