package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/practiceboard/internal/board"
	"github.com/meltforce/practiceboard/internal/eligibility"
	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/schedule"
	"github.com/meltforce/practiceboard/internal/timegrid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.board.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMenus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"origin":     s.board.CatalogOrigin(),
		"categories": s.board.Categories(),
		"menus":      s.board.Menus(),
	})
}

func (s *Server) handleEligibleMenus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Candidates(r.URL.Query().Get("category")))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	menus := s.board.Reload(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"origin": s.board.CatalogOrigin(),
		"menus":  menus,
	})
}

func (s *Server) handleGetCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Counts())
}

func (s *Server) handleSetCounts(w http.ResponseWriter, r *http.Request) {
	var c models.Counts
	if !decodeJSON(w, r, &c) {
		return
	}
	st, err := s.board.SetCounts(c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Players())
}

func (s *Server) handleSelectRoster(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerIDs []string `json:"player_ids"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, s.board.SelectRoster(body.PlayerIDs))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Session())
}

func (s *Server) handleSetSession(w http.ResponseWriter, r *http.Request) {
	var sess schedule.Session
	if !decodeJSON(w, r, &sess) {
		return
	}
	updated, err := s.board.SetSession(sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	grid, err := s.board.Grid()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) handleLanes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Lanes())
}

func (s *Server) handleRenameLane(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	lane, changed, err := s.board.RenameLane(schedule.LaneID(chi.URLParam(r, "id")), body.Name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lane": lane, "changed": changed})
}

func (s *Server) handleResetLane(w http.ResponseWriter, r *http.Request) {
	lane, changed, err := s.board.ResetLane(schedule.LaneID(chi.URLParam(r, "id")))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lane": lane, "changed": changed})
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Blocks())
}

func (s *Server) handlePlaceBlock(w http.ResponseWriter, r *http.Request) {
	var p board.Placement
	if !decodeJSON(w, r, &p) {
		return
	}
	blk, err := s.board.Place(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"block":    blk,
		"overlaps": s.board.Overlaps(),
	})
}

func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	var c board.Change
	if !decodeJSON(w, r, &c) {
		return
	}
	blk, err := s.board.Update(chi.URLParam(r, "id"), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"block":    blk,
		"overlaps": s.board.Overlaps(),
	})
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverlaps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Overlaps())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// writeError maps domain errors to a status code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, schedule.ErrUnknownBlock):
		status = http.StatusNotFound
	case errors.Is(err, schedule.ErrUnknownLane),
		errors.Is(err, schedule.ErrInvalidDuration),
		errors.Is(err, schedule.ErrMinimumDuration),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, timegrid.ErrMalformedTime),
		errors.Is(err, timegrid.ErrInvalidStep),
		errors.Is(err, eligibility.ErrInvalidCounts),
		errors.Is(err, board.ErrUnknownMenu),
		errors.Is(err, board.ErrMissingTitle):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
