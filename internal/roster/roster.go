// Package roster loads the team roster and derives participant counts from
// a selection of present members.
package roster

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

// ErrInvalidDocument is returned when a roster document is unusable.
var ErrInvalidDocument = errors.New("invalid roster document")

// Document is the roster configuration file format.
type Document struct {
	Players []models.Player `json:"players"`
}

// Parse decodes a roster document. Position labels are normalized to
// P/IF/OF; unknown labels are rejected.
func Parse(data []byte) ([]models.Player, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	seen := make(map[string]bool, len(doc.Players))
	players := make([]models.Player, 0, len(doc.Players))
	for i, p := range doc.Players {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: player %d has no id", ErrInvalidDocument, i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %q", ErrInvalidDocument, p.ID)
		}
		seen[p.ID] = true

		if p.Position != nil {
			code, ok := models.NormalizePosition(*p.Position)
			if !ok {
				return nil, fmt.Errorf("%w: player %q has unknown position %q", ErrInvalidDocument, p.ID, *p.Position)
			}
			p.Position = &code
		}
		subs := make([]string, 0, len(p.SubPositions))
		for _, s := range p.SubPositions {
			code, ok := models.NormalizePosition(s)
			if !ok {
				return nil, fmt.Errorf("%w: player %q has unknown sub-position %q", ErrInvalidDocument, p.ID, s)
			}
			subs = append(subs, code)
		}
		p.SubPositions = subs
		players = append(players, p)
	}
	return players, nil
}

// Validate reports whether data is a usable roster document.
func Validate(data []byte) error {
	_, err := Parse(data)
	return err
}

// Roster is the list of members that can be selected as present.
type Roster struct {
	src configsrc.Source
	log *slog.Logger

	// fetchMu serializes fetches so concurrent first loads fetch once.
	fetchMu sync.Mutex

	mu      sync.RWMutex
	players []models.Player
	byID    map[string]models.Player
	loaded  bool
	lastErr error
}

// New creates a roster backed by src. A nil src yields an empty roster.
func New(src configsrc.Source, log *slog.Logger) *Roster {
	return &Roster{src: src, log: log, byID: map[string]models.Player{}}
}

// Load fetches the roster on first use. A missing or broken document
// leaves the roster empty, which makes roster-mode counts all zero.
func (r *Roster) Load(ctx context.Context) []models.Player {
	r.fetchMu.Lock()
	defer r.fetchMu.Unlock()
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return r.Players()
	}
	return r.reload(ctx)
}

// Reload fetches the roster document again.
func (r *Roster) Reload(ctx context.Context) []models.Player {
	r.fetchMu.Lock()
	defer r.fetchMu.Unlock()
	return r.reload(ctx)
}

func (r *Roster) reload(ctx context.Context) []models.Player {
	players, err := r.fetch(ctx)
	if err != nil {
		r.log.Warn("roster load failed, using empty roster", "error", err)
		players = nil
	} else {
		r.log.Info("roster loaded", "source", r.src.Name(), "players", len(players))
	}

	byID := make(map[string]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	r.mu.Lock()
	r.players = players
	r.byID = byID
	r.loaded = true
	r.lastErr = err
	r.mu.Unlock()
	return r.Players()
}

func (r *Roster) fetch(ctx context.Context) ([]models.Player, error) {
	if r.src == nil {
		return nil, errors.New("no roster source configured")
	}
	data, err := r.src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", r.src.Name(), err)
	}
	return Parse(data)
}

// Err returns the failure from the last load, if any.
func (r *Roster) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Players returns every member in document order.
func (r *Roster) Players() []models.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Player, len(r.players))
	copy(out, r.players)
	return out
}

// Player finds a member by id.
func (r *Roster) Player(id string) (models.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// ByPosition returns members whose primary position is code.
func (r *Roster) ByPosition(code string) []models.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Player
	for _, p := range r.players {
		if p.Position != nil && *p.Position == code {
			out = append(out, p)
		}
	}
	return out
}

// Counts derives participant counts from the selected member ids. Unknown
// and repeated ids are ignored.
func (r *Roster) Counts(selected []string) models.Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()

	picked := make([]models.Player, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		p, ok := r.byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		picked = append(picked, p)
	}
	return Aggregate(picked)
}

// Aggregate counts each player once per distinct position they can cover,
// primary and sub-positions alike. Total is the number of players, so
// members without a position still count toward it.
func Aggregate(players []models.Player) models.Counts {
	var c models.Counts
	total := len(players)
	c.Total = &total

	for _, p := range players {
		covered := map[string]bool{}
		if p.Position != nil {
			covered[*p.Position] = true
		}
		for _, s := range p.SubPositions {
			covered[s] = true
		}
		if covered[models.PositionPitcher] {
			c.P++
		}
		if covered[models.PositionInfield] {
			c.IF++
		}
		if covered[models.PositionOutfield] {
			c.OF++
		}

		if p.Attributes == nil {
			continue
		}
		if p.Attributes.CanCatch {
			c.CanCatch++
		}
		for _, skill := range p.Attributes.Skills {
			if c.Skills == nil {
				c.Skills = map[string]int{}
			}
			c.Skills[skill]++
		}
	}
	return c
}
