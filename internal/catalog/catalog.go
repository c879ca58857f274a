// Package catalog holds the menu catalog: the activity templates the board
// can suggest, loaded from a configuration document with a built-in fallback.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meltforce/practiceboard/internal/configsrc"
	"github.com/meltforce/practiceboard/internal/models"
)

// ErrInvalidDocument is returned when a catalog document is unusable.
var ErrInvalidDocument = errors.New("invalid menu catalog document")

// Origin tells where the current menus came from.
type Origin string

const (
	OriginNone    Origin = ""
	OriginSource  Origin = "source"
	OriginBuiltin Origin = "builtin"
)

// Document is the menu configuration file format.
type Document struct {
	Menus []models.Menu `json:"menus"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) ([]models.Menu, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Menus == nil {
		return nil, fmt.Errorf("%w: missing menus", ErrInvalidDocument)
	}

	seen := make(map[string]bool, len(doc.Menus))
	for i, m := range doc.Menus {
		switch {
		case m.ID == "":
			return nil, fmt.Errorf("%w: menu %d has no id", ErrInvalidDocument, i)
		case m.Name == "":
			return nil, fmt.Errorf("%w: menu %q has no name", ErrInvalidDocument, m.ID)
		case m.Category == "":
			return nil, fmt.Errorf("%w: menu %q has no category", ErrInvalidDocument, m.ID)
		case m.DurationDefaultMin <= 0:
			return nil, fmt.Errorf("%w: menu %q has durationDefaultMin %d", ErrInvalidDocument, m.ID, m.DurationDefaultMin)
		case seen[m.ID]:
			return nil, fmt.Errorf("%w: duplicate menu id %q", ErrInvalidDocument, m.ID)
		}
		seen[m.ID] = true
	}
	return doc.Menus, nil
}

// Validate reports whether data is a usable catalog document.
func Validate(data []byte) error {
	_, err := Parse(data)
	return err
}

// Catalog is the menu list for one running board. It is loaded once; later
// calls to Load return the same menus until Reload is called.
type Catalog struct {
	src configsrc.Source
	log *slog.Logger

	// fetchMu serializes fetches so concurrent first loads fetch once.
	fetchMu sync.Mutex

	mu      sync.RWMutex
	menus   []models.Menu
	byID    map[string]models.Menu
	loaded  bool
	origin  Origin
	lastErr error
}

// New creates a catalog backed by src. A nil src always yields the
// built-in menus. Until loaded, Menus returns the built-in menus.
func New(src configsrc.Source, log *slog.Logger) *Catalog {
	c := &Catalog{src: src, log: log}
	c.set(Builtin(), OriginNone, nil)
	return c
}

// Load fetches the catalog on first use and returns the cached menus on
// every later call.
func (c *Catalog) Load(ctx context.Context) []models.Menu {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()
	if c.Loaded() {
		return c.Menus()
	}
	return c.reload(ctx)
}

// Reload fetches the document again. Any failure installs the built-in
// menus and is kept for Err; it is never returned to the caller.
func (c *Catalog) Reload(ctx context.Context) []models.Menu {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()
	return c.reload(ctx)
}

func (c *Catalog) reload(ctx context.Context) []models.Menu {
	menus, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("menu catalog load failed, using built-in menus", "error", err)
		c.set(Builtin(), OriginBuiltin, err)
	} else {
		c.log.Info("menu catalog loaded", "source", c.src.Name(), "menus", len(menus))
		c.set(menus, OriginSource, nil)
	}
	return c.Menus()
}

func (c *Catalog) fetch(ctx context.Context) ([]models.Menu, error) {
	if c.src == nil {
		return nil, errors.New("no catalog source configured")
	}
	data, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", c.src.Name(), err)
	}
	return Parse(data)
}

func (c *Catalog) set(menus []models.Menu, origin Origin, err error) {
	own := make([]models.Menu, len(menus))
	byID := make(map[string]models.Menu, len(menus))
	for i, m := range menus {
		own[i] = m.Clone()
		byID[m.ID] = own[i]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.menus = own
	c.byID = byID
	c.origin = origin
	c.lastErr = err
	c.loaded = origin != OriginNone
}

// Loaded reports whether Load or Reload has completed.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Origin reports whether the menus came from the source or the fallback.
func (c *Catalog) Origin() Origin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origin
}

// Err returns the failure that caused the last fallback, if any.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Menus returns a copy of the menus in catalog order.
func (c *Catalog) Menus() []models.Menu {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Menu, len(c.menus))
	for i, m := range c.menus {
		out[i] = m.Clone()
	}
	return out
}

// Lookup finds a menu by id.
func (c *Catalog) Lookup(id string) (models.Menu, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	if !ok {
		return models.Menu{}, false
	}
	return m.Clone(), true
}

// Category returns the category of menu id, or "" when unknown.
func (c *Catalog) Category(id string) string {
	m, ok := c.Lookup(id)
	if !ok {
		return ""
	}
	return m.Category
}

// CategoryShorts lists the distinct short labels in catalog order, for
// building category filters.
func (c *Catalog) CategoryShorts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	seen := make(map[string]bool)
	for _, m := range c.menus {
		if m.CategoryShort != "" && !seen[m.CategoryShort] {
			seen[m.CategoryShort] = true
			out = append(out, m.CategoryShort)
		}
	}
	return out
}
