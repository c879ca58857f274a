package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyLogin is returned when a caller has no login to record.
var ErrEmptyLogin = errors.New("empty login")

// normalizeLogin trims and lower-cases a tailnet login so one coach maps
// to one users row whatever case the identity provider reports.
func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// GetOrCreateUser returns the users row id for the coach signed in as
// login, creating it on first sight. last_seen is bumped on every call and
// display_name only when a non-empty one is given. Export log entries
// reference this id.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	login = normalizeLogin(login)
	if login == "" {
		return 0, ErrEmptyLogin
	}

	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, strings.TrimSpace(displayName)).Scan(&id)
	return id, err
}
