package configsrc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// TestOpenPicksSource verifies URLs become HTTP sources and other
// locations become file sources.
func TestOpenPicksSource(t *testing.T) {
	if Open("") != nil {
		t.Error("Open(\"\") should be nil")
	}
	if _, ok := Open("https://example.com/menus.json").(*HTTP); !ok {
		t.Error("https location should open an HTTP source")
	}
	if _, ok := Open("config/menus-config.json").(File); !ok {
		t.Error("path location should open a File source")
	}
}

func TestFileFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menus.json")
	if err := os.WriteFile(path, []byte(`{"menus":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := File{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"menus":[]}` {
		t.Errorf("data = %q", data)
	}

	if _, err := (File{Path: filepath.Join(t.TempDir(), "missing.json")}).Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestHTTPFetch verifies non-200 responses are treated as failures.
func TestHTTPFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"players":[]}`))
	}))
	defer ts.Close()

	data, err := NewHTTP(ts.URL + "/member-config.json").Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"players":[]}` {
		t.Errorf("data = %q", data)
	}

	if _, err := NewHTTP(ts.URL + "/missing.json").Fetch(context.Background()); err == nil {
		t.Error("expected error for 404")
	}
}
