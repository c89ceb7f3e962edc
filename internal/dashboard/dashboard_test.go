package dashboard

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandler_ServesPage(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(w.Body.String(), "usageChart") {
		t.Error("page body missing chart markup")
	}
}

func TestHandler_UnknownPathNotFound(t *testing.T) {
	req := httptest.NewRequest("GET", "/nope", nil)
	w := httptest.NewRecorder()

	Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestInstall_WritesPage(t *testing.T) {
	dir := t.TempDir()

	path, err := Install(dir)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if path != filepath.Join(dir, "dashboard.html") {
		t.Errorf("path = %q, want dashboard.html under data dir", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read installed page: %v", err)
	}
	if !strings.Contains(string(data), "Internet Kit") {
		t.Error("installed page missing title")
	}
}
