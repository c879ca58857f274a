// Package configcache keeps the last successfully fetched copy of each
// configuration document in a local SQLite database.
package configcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meltforce/practiceboard/internal/configsrc"
	_ "modernc.org/sqlite"
)

// Cache stores documents keyed by source name.
type Cache struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the cache database at dir/config-cache.db.
func Open(dir string, log *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "config-cache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		source     TEXT PRIMARY KEY,
		hash       TEXT NOT NULL,
		body       BLOB NOT NULL,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	return &Cache{db: db, log: log}, nil
}

// Get returns the cached body for source, if any.
func (c *Cache) Get(ctx context.Context, source string) ([]byte, bool, error) {
	var body []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE source = ?`, source,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached %s: %w", source, err)
	}
	return body, true, nil
}

// Put records body as the latest good copy of source. Unchanged documents
// are not rewritten.
func (c *Cache) Put(ctx context.Context, source string, body []byte) error {
	hash := HashBytes(body)

	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE source = ? AND hash = ?`, source, hash,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking cached %s: %w", source, err)
	}
	if count > 0 {
		return nil
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (source, hash, body, fetched_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		source, hash, body,
	)
	if err != nil {
		return fmt.Errorf("caching %s: %w", source, err)
	}
	return nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Wrap returns a Source that serves src and falls back to the cached copy
// when src fails or returns a document validate rejects. Only accepted
// documents are cached.
func (c *Cache) Wrap(src configsrc.Source, validate func([]byte) error) configsrc.Source {
	return &cachedSource{cache: c, src: src, validate: validate}
}

type cachedSource struct {
	cache    *Cache
	src      configsrc.Source
	validate func([]byte) error
}

func (s *cachedSource) Name() string { return s.src.Name() }

func (s *cachedSource) Fetch(ctx context.Context) ([]byte, error) {
	body, fetchErr := s.src.Fetch(ctx)
	if fetchErr == nil && s.validate != nil {
		if err := s.validate(body); err != nil {
			fetchErr = fmt.Errorf("validating %s: %w", s.src.Name(), err)
		}
	}
	if fetchErr == nil {
		if err := s.cache.Put(ctx, s.src.Name(), body); err != nil {
			s.cache.log.Warn("config cache write failed", "source", s.src.Name(), "error", err)
		}
		return body, nil
	}

	cached, ok, err := s.cache.Get(ctx, s.src.Name())
	if err != nil {
		s.cache.log.Warn("config cache read failed", "source", s.src.Name(), "error", err)
	}
	if !ok {
		return nil, fetchErr
	}
	s.cache.log.Warn("using cached config document", "source", s.src.Name(), "error", fetchErr)
	return cached, nil
}
