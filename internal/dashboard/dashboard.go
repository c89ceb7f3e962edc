// Package dashboard serves the embedded web dashboard and installs a copy
// into the data directory so it can be opened directly from disk.
package dashboard

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

//go:embed dashboard.html
var pageHTML []byte

const fileName = "dashboard.html"

// Handler serves the dashboard page. Registered at "/" so any non-API path
// lands on the dashboard.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/"+fileName {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(pageHTML)
	})
}

// Install writes the dashboard page into dataDir, overwriting any previous
// copy so upgrades refresh it. Returns the written path.
func Install(dataDir string) (string, error) {
	path := filepath.Join(dataDir, fileName)
	if err := os.WriteFile(path, pageHTML, 0o644); err != nil {
		return "", fmt.Errorf("install dashboard: %w", err)
	}
	return path, nil
}
