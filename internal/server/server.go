package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/practiceboard/internal/board"
	"github.com/meltforce/practiceboard/internal/export"
	"github.com/meltforce/practiceboard/internal/storage"
)

// ExportLogStore records and lists export attempts. *storage.DB satisfies it.
type ExportLogStore interface {
	InsertExportLog(ctx context.Context, log storage.ExportLog) (int64, error)
	QueryExportLogs(ctx context.Context, limit int) ([]storage.ExportLog, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	board    *board.Board
	renderer *export.Renderer
	exports  ExportLogStore
	users    UserStore
	log      *slog.Logger
	apiKey   string
	identMW  func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured. db may be nil, in
// which case export attempts are only logged.
func New(b *board.Board, renderer *export.Renderer, db *storage.DB, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		board:    b,
		renderer: renderer,
		log:      log,
		apiKey:   apiKey,
		identMW:  DevIdentity,
		router:   chi.NewRouter(),
	}
	if db != nil {
		s.exports = db
		s.users = db
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity from the dev user to Tailscale WhoIs.
func (s *Server) SetTailscale(wc WhoIser) {
	s.identMW = TailscaleIdentity(wc, s.users, s.log)
}

// identity applies whichever identity middleware is current.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.identMW(next).ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/board", s.handleSnapshot)

		// Catalog and counts
		r.Get("/menus", s.handleMenus)
		r.Get("/menus/eligible", s.handleEligibleMenus)
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/catalog/reload", s.handleReload)
		})
		r.Get("/counts", s.handleGetCounts)
		r.Put("/counts", s.handleSetCounts)
		r.Get("/roster", s.handleRoster)
		r.Put("/roster/selection", s.handleSelectRoster)

		// Schedule
		r.Get("/session", s.handleGetSession)
		r.Put("/session", s.handleSetSession)
		r.Get("/slots", s.handleSlots)
		r.Get("/lanes", s.handleLanes)
		r.Put("/lanes/{id}", s.handleRenameLane)
		r.Delete("/lanes/{id}/name", s.handleResetLane)
		r.Get("/blocks", s.handleBlocks)
		r.Post("/blocks", s.handlePlaceBlock)
		r.Patch("/blocks/{id}", s.handleUpdateBlock)
		r.Delete("/blocks/{id}", s.handleRemoveBlock)
		r.Get("/overlaps", s.handleOverlaps)

		// Export
		r.Get("/export", s.handleExport)
		r.Get("/exports", s.handleExportLogs)
	})
}

// SetMCP mounts the streamable MCP handler at /mcp behind identity.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.identity).Handle("/mcp", h)
}

// SetFrontend mounts the static frontend filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
