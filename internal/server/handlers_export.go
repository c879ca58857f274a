package server

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/meltforce/practiceboard/internal/board"
	"github.com/meltforce/practiceboard/internal/overlap"
	"github.com/meltforce/practiceboard/internal/storage"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var buf bytes.Buffer
	res, err := s.board.Export(&buf, s.renderer)

	var violation *overlap.Violation
	if errors.As(err, &violation) {
		overlaps := s.board.Overlaps()
		s.log.Warn("export refused", "overlaps", len(overlaps))
		s.logExport(r, storage.ExportLog{
			SessionDate: s.board.Session().Date,
			Status:      storage.ExportRefused,
			Overlaps:    len(overlaps),
		}, err, start)
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "schedule has overlapping blocks",
			"overlaps": overlaps,
		})
		return
	}
	if err != nil {
		s.log.Error("export error", "error", err)
		s.logExport(r, storage.ExportLog{
			SessionDate: s.board.Session().Date,
			Status:      storage.ExportError,
		}, err, start)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("schedule exported",
		"file", res.Filename,
		"blocks", res.Blocks,
		"size", humanize.Bytes(uint64(buf.Len())),
		"by", userInfoFromContext(r).Login,
	)
	s.logExport(r, exportLogFor(res, buf.Len()), nil, start)

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func exportLogFor(res board.ExportResult, size int) storage.ExportLog {
	return storage.ExportLog{
		SessionDate: res.Date,
		Filename:    res.Filename,
		Status:      storage.ExportSuccess,
		Blocks:      res.Blocks,
		Bytes:       int64(size),
	}
}

func (s *Server) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	if s.exports == nil {
		writeJSON(w, http.StatusOK, []storage.ExportLog{})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.exports.QueryExportLogs(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// logExport records an export attempt to the export_logs table.
func (s *Server) logExport(r *http.Request, entry storage.ExportLog, exportErr error, start time.Time) {
	if s.exports == nil {
		return
	}
	entry.UserID = userIDFromContext(r)
	durationMs := int(time.Since(start).Milliseconds())
	entry.DurationMs = &durationMs
	if exportErr != nil {
		msg := exportErr.Error()
		entry.ErrorMessage = &msg
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.exports.InsertExportLog(ctx, entry); err != nil {
		s.log.Error("failed to log export", "status", entry.Status, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
