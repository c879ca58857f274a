package storage

import (
	"context"
	"fmt"
	"time"
)

// Export log statuses.
const (
	ExportSuccess = "success"
	ExportRefused = "refused"
	ExportError   = "error"
)

// ExportLog represents a single export attempt's outcome.
type ExportLog struct {
	ID           int64     `json:"id"`
	UserID       int       `json:"user_id"`
	Login        string    `json:"login"`
	CreatedAt    time.Time `json:"created_at"`
	SessionDate  string    `json:"session_date"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"`
	Blocks       int       `json:"blocks"`
	Overlaps     int       `json:"overlaps"`
	Bytes        int64     `json:"bytes"`
	DurationMs   *int      `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message"`
}

// InsertExportLog records an export attempt and returns its ID.
func (db *DB) InsertExportLog(ctx context.Context, log ExportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO export_logs (user_id, session_date, filename, status, blocks, overlaps,
		 bytes, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING id`,
		log.UserID, log.SessionDate, log.Filename, log.Status, log.Blocks, log.Overlaps,
		log.Bytes, log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting export log: %w", err)
	}
	return id, nil
}

// QueryExportLogs returns the most recent export attempts.
func (db *DB) QueryExportLogs(ctx context.Context, limit int) ([]ExportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT e.id, e.user_id, u.login, e.created_at, e.session_date, e.filename, e.status,
		 e.blocks, e.overlaps, e.bytes, e.duration_ms, e.error_message
		 FROM export_logs e
		 JOIN users u ON u.id = e.user_id
		 ORDER BY e.created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying export logs: %w", err)
	}
	defer rows.Close()

	result := []ExportLog{}
	for rows.Next() {
		var l ExportLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Login, &l.CreatedAt, &l.SessionDate, &l.Filename,
			&l.Status, &l.Blocks, &l.Overlaps, &l.Bytes, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning export log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
