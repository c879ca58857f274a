package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/meltforce/practiceboard/internal/board"
	"github.com/meltforce/practiceboard/internal/catalog"
	"github.com/meltforce/practiceboard/internal/export"
	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/roster"
	"github.com/meltforce/practiceboard/internal/schedule"
	"github.com/meltforce/practiceboard/internal/storage"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

type recordingExports struct {
	logs []storage.ExportLog
}

func (r *recordingExports) InsertExportLog(_ context.Context, l storage.ExportLog) (int64, error) {
	r.logs = append(r.logs, l)
	return int64(len(r.logs)), nil
}

func (r *recordingExports) QueryExportLogs(_ context.Context, limit int) ([]storage.ExportLog, error) {
	return r.logs, nil
}

func newAPIServer(t *testing.T) *Server {
	t.Helper()
	log := slog.Default()
	cat := catalog.New(nil, log)
	cat.Load(context.Background())
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	b := board.New(cat, roster.New(nil, log), schedule.New(15, now), log)
	renderer, err := export.NewRenderer("", 0)
	if err != nil {
		t.Fatal(err)
	}
	return New(b, renderer, nil, "test-key", log)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestEligibleMenusEndpoint verifies counts drive the candidate list and the
// category filter narrows it.
func TestEligibleMenusEndpoint(t *testing.T) {
	s := newAPIServer(t)

	if rec := do(t, s, http.MethodPut, "/api/v1/counts", `{"P":2,"IF":3,"OF":3}`); rec.Code != http.StatusOK {
		t.Fatalf("PUT counts status = %d: %s", rec.Code, rec.Body)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/menus/eligible?category=%E6%8A%95", "")
	var menus []models.Menu
	if err := json.NewDecoder(rec.Body).Decode(&menus); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(menus) != 1 || menus[0].ID != "pitching" {
		t.Errorf("eligible 投 menus = %+v, want [pitching]", menus)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/counts", `{"P":-1,"IF":0,"OF":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative counts status = %d, want 400", rec.Code)
	}
}

// TestExportRefusedWhileOverlapping verifies the 409 response lists the
// offending pair and that export succeeds once the overlap is removed.
func TestExportRefusedWhileOverlapping(t *testing.T) {
	s := newAPIServer(t)
	store := &recordingExports{}
	s.exports = store

	rec := do(t, s, http.MethodPost, "/api/v1/blocks", `{"title":"A","lane_id":"lane1","start":"10:00","duration_min":30}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST block status = %d: %s", rec.Code, rec.Body)
	}
	var placed struct {
		Block schedule.Block `json:"block"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&placed); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	do(t, s, http.MethodPost, "/api/v1/blocks", `{"title":"B","lane_id":"lane1","start":"10:20","duration_min":20}`)

	rec = do(t, s, http.MethodGet, "/api/v1/export", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("export status = %d, want 409", rec.Code)
	}
	var refused struct {
		Overlaps []board.Overlap `json:"overlaps"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&refused); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(refused.Overlaps) != 1 {
		t.Fatalf("overlaps = %d, want 1", len(refused.Overlaps))
	}

	if rec := do(t, s, http.MethodDelete, "/api/v1/blocks/"+placed.Block.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content-type = %q, want image/jpeg", ct)
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("content-disposition: %v", err)
	}
	if want := "2026年10月25日 練習スケジュール.jpg"; params["filename"] != want {
		t.Errorf("filename = %q, want %q", params["filename"], want)
	}

	if len(store.logs) != 2 {
		t.Fatalf("export logs = %d, want 2", len(store.logs))
	}
	if store.logs[0].Status != storage.ExportRefused || store.logs[0].Overlaps != 1 {
		t.Errorf("first log = %+v, want refused with 1 overlap", store.logs[0])
	}
	if store.logs[1].Status != storage.ExportSuccess || store.logs[1].Bytes == 0 {
		t.Errorf("second log = %+v, want success with bytes", store.logs[1])
	}
}

// TestBlockErrors verifies domain errors map to 400 and 404.
func TestBlockErrors(t *testing.T) {
	s := newAPIServer(t)

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"unknown menu", http.MethodPost, "/api/v1/blocks", `{"menu_id":"curling"}`, http.StatusBadRequest},
		{"manual without title", http.MethodPost, "/api/v1/blocks", `{"lane_id":"lane1"}`, http.StatusBadRequest},
		{"unknown lane", http.MethodPost, "/api/v1/blocks", `{"title":"x","lane_id":"lane7"}`, http.StatusBadRequest},
		{"malformed start", http.MethodPost, "/api/v1/blocks", `{"title":"x","start":"9am"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/v1/blocks", `{`, http.StatusBadRequest},
		{"patch unknown block", http.MethodPatch, "/api/v1/blocks/nope", `{"start":"10:00"}`, http.StatusNotFound},
		{"delete unknown block", http.MethodDelete, "/api/v1/blocks/nope", "", http.StatusNotFound},
		{"malformed session", http.MethodPut, "/api/v1/session", `{"start":"25:xx"}`, http.StatusBadRequest},
		{"bad session date", http.MethodPut, "/api/v1/session", `{"date":"10/25/2026"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

// TestLaneRenameEndpoints verifies soft validation on rename and the reset route.
func TestLaneRenameEndpoints(t *testing.T) {
	s := newAPIServer(t)

	type result struct {
		Lane    schedule.Lane `json:"lane"`
		Changed bool          `json:"changed"`
	}
	decode := func(rec *httptest.ResponseRecorder) result {
		var r result
		if err := json.NewDecoder(rec.Body).Decode(&r); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		return r
	}

	got := decode(do(t, s, http.MethodPut, "/api/v1/lanes/lane1", `{"name":"Team B"}`))
	if !got.Changed || got.Lane.Name != "Team B" {
		t.Errorf("rename = %+v, want changed to Team B", got)
	}
	got = decode(do(t, s, http.MethodPut, "/api/v1/lanes/lane1", `{"name":""}`))
	if got.Changed || got.Lane.Name != "Team B" {
		t.Errorf("empty rename = %+v, want unchanged", got)
	}
	got = decode(do(t, s, http.MethodPut, "/api/v1/lanes/global", `{"name":"All"}`))
	if got.Changed {
		t.Error("global lane should not be renamable")
	}
	got = decode(do(t, s, http.MethodDelete, "/api/v1/lanes/lane1/name", ""))
	if got.Lane.Name != "他1" {
		t.Errorf("reset name = %q, want 他1", got.Lane.Name)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/lanes/lane9", `{"name":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown lane status = %d, want 404", rec.Code)
	}
}

// TestSlotsEndpoint verifies the default display window.
func TestSlotsEndpoint(t *testing.T) {
	s := newAPIServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/slots", "")
	var grid board.Grid
	if err := json.NewDecoder(rec.Body).Decode(&grid); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if grid.Start != "09:00" || grid.End != "12:00" || len(grid.Slots) != 13 {
		t.Errorf("grid = %s-%s with %d slots, want 09:00-12:00 with 13", grid.Start, grid.End, len(grid.Slots))
	}
}

// TestReloadRequiresAPIKey verifies the reload route is protected when a key is configured.
func TestReloadRequiresAPIKey(t *testing.T) {
	s := newAPIServer(t)

	if rec := do(t, s, http.MethodPost, "/api/v1/catalog/reload", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", nil)
	req.Header.Set("X-API-Key", "test-key")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with key status = %d, want 200", rec.Code)
	}
}

// TestExportLogsWithoutDatabase verifies an empty list when no database is configured.
func TestExportLogsWithoutDatabase(t *testing.T) {
	s := newAPIServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/exports", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

// TestFrontendFallback verifies unknown paths serve index.html.
func TestFrontendFallback(t *testing.T) {
	s := newAPIServer(t)
	s.SetFrontend(fstest.MapFS{
		"index.html": {Data: []byte("<html>board</html>")},
		"app.js":     {Data: []byte("console.log(1)")},
	})

	rec := do(t, s, http.MethodGet, "/app.js", "")
	if !strings.Contains(rec.Body.String(), "console.log") {
		t.Errorf("app.js body = %q", rec.Body.String())
	}
	rec = do(t, s, http.MethodGet, "/some/client/route", "")
	if !strings.Contains(rec.Body.String(), "board") {
		t.Errorf("fallback body = %q, want index.html", rec.Body.String())
	}
}
