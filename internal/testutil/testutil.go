// Package testutil provides test helpers shared across packages.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// PathService starts a stub path computation API that answers every
// shortest-path query with the given uSID. Registers cleanup.
func PathService(t *testing.T, usid string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"srv6_data": map[string]interface{}{
				"srv6_usid":     usid,
				"srv6_sid_list": []string{usid},
			},
			"hopcount": 2,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// FailingPathService starts a stub path service that answers every query
// with the given status and body. Registers cleanup.
func FailingPathService(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, body, status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// WriteDocument writes a YAML document to a temp file and returns its path.
func WriteDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing document fixture: %v", err)
	}
	return path
}
