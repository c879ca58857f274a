// Package board holds the running state of one practice board: the
// catalog, the roster, the current counts and the schedule. All access
// goes through a Board, which serializes mutations.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/meltforce/practiceboard/internal/catalog"
	"github.com/meltforce/practiceboard/internal/eligibility"
	"github.com/meltforce/practiceboard/internal/export"
	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/overlap"
	"github.com/meltforce/practiceboard/internal/roster"
	"github.com/meltforce/practiceboard/internal/schedule"
)

// Mode says where the counts come from.
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeRoster Mode = "roster"
)

var (
	// ErrUnknownMenu is returned when placing a menu id the catalog lacks.
	ErrUnknownMenu = errors.New("unknown menu")
	// ErrMissingTitle is returned for a manual placement without a title.
	ErrMissingTitle = errors.New("title is required without a menu")
)

// Board is safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	roster   *roster.Roster
	sched    *schedule.Schedule
	mode     Mode
	counts   models.Counts
	selected []string
	log      *slog.Logger
}

// New creates a board in direct-count mode with all counts zero. The
// catalog and roster should already be loaded.
func New(cat *catalog.Catalog, ros *roster.Roster, sched *schedule.Schedule, log *slog.Logger) *Board {
	return &Board{
		catalog:  cat,
		roster:   ros,
		sched:    sched,
		mode:     ModeDirect,
		selected: []string{},
		log:      log,
	}
}

// CountState is the current count source and values.
type CountState struct {
	Mode     Mode          `json:"mode"`
	Counts   models.Counts `json:"counts"`
	Selected []string      `json:"selected"`
}

// Counts returns the current counts.
func (b *Board) Counts() CountState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.countState()
}

func (b *Board) countState() CountState {
	return CountState{
		Mode:     b.mode,
		Counts:   b.counts,
		Selected: append([]string(nil), b.selected...),
	}
}

// SetCounts switches to direct mode with counts c. Negative values are
// rejected.
func (b *Board) SetCounts(c models.Counts) (CountState, error) {
	if err := eligibility.ValidateCounts(c); err != nil {
		return CountState{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = ModeDirect
	b.counts = c
	b.selected = []string{}
	return b.countState(), nil
}

// SelectRoster switches to roster mode and derives the counts from the
// selected player ids.
func (b *Board) SelectRoster(ids []string) CountState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = ModeRoster
	b.selected = append([]string{}, ids...)
	b.counts = b.roster.Counts(b.selected)
	return b.countState()
}

// Players returns the roster.
func (b *Board) Players() []models.Player {
	return b.roster.Players()
}

// Menus returns the full catalog.
func (b *Board) Menus() []models.Menu {
	return b.catalog.Menus()
}

// Categories lists the distinct short category labels in catalog order.
func (b *Board) Categories() []string {
	return b.catalog.CategoryShorts()
}

// CatalogOrigin reports where the catalog came from.
func (b *Board) CatalogOrigin() catalog.Origin {
	return b.catalog.Origin()
}

// Candidates returns the menus eligible for the current counts, optionally
// restricted to one categoryShort, in catalog order.
func (b *Board) Candidates(categoryShort string) []models.Menu {
	b.mu.Lock()
	counts := b.counts
	b.mu.Unlock()
	return eligibility.Candidates(b.catalog.Menus(), counts, categoryShort)
}

// Reload fetches the catalog and roster again. Counts in roster mode are
// recomputed against the new roster.
func (b *Board) Reload(ctx context.Context) []models.Menu {
	menus := b.catalog.Reload(ctx)
	b.roster.Reload(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mode == ModeRoster {
		b.counts = b.roster.Counts(b.selected)
	}
	b.log.Info("config reloaded", "menus", len(menus), "origin", b.catalog.Origin(), "players", len(b.roster.Players()))
	return menus
}

// Session returns the session metadata.
func (b *Board) Session() schedule.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sched.Session
}

// SetSession replaces the session metadata. Nothing changes when any
// field is invalid.
func (b *Board) SetSession(sess schedule.Session) (schedule.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.sched.Session
	if err := b.sched.SetDate(sess.Date); err != nil {
		return prev, err
	}
	if err := b.sched.SetWindow(sess.Start, sess.End); err != nil {
		b.sched.Session = prev
		return prev, err
	}
	b.sched.SetLocation(sess.Location)
	return b.sched.Session, nil
}

// Grid is the normalized display window and its slots.
type Grid struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Step  int      `json:"step"`
	Slots []string `json:"slots"`
}

// Grid returns the display window, with defaults applied and the ends
// swapped when reversed, and its slots.
func (b *Board) Grid() (Grid, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end := b.sched.DisplayWindow()
	slots, err := b.sched.Slots()
	if err != nil {
		return Grid{}, err
	}
	return Grid{Start: start, End: end, Step: b.sched.Step(), Slots: slots}, nil
}

// Lanes returns the lanes in grid order.
func (b *Board) Lanes() []schedule.Lane {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sched.Lanes()
}

// RenameLane renames an editable lane. Invalid names and the global lane
// are ignored; changed reports whether the name was applied.
func (b *Board) RenameLane(id schedule.LaneID, name string) (lane schedule.Lane, changed bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sched.Lane(id); !ok {
		return schedule.Lane{}, false, fmt.Errorf("%w: %q", schedule.ErrUnknownLane, id)
	}
	changed = b.sched.RenameLane(id, name)
	lane, _ = b.sched.Lane(id)
	return lane, changed, nil
}

// ResetLane restores the default name of an editable lane.
func (b *Board) ResetLane(id schedule.LaneID) (lane schedule.Lane, changed bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sched.Lane(id); !ok {
		return schedule.Lane{}, false, fmt.Errorf("%w: %q", schedule.ErrUnknownLane, id)
	}
	changed = b.sched.ResetLaneName(id)
	lane, _ = b.sched.Lane(id)
	return lane, changed, nil
}

// Blocks returns copies of the placed blocks in insertion order.
func (b *Board) Blocks() []schedule.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyBlocks(b.sched.Blocks())
}

func copyBlocks(in []*schedule.Block) []schedule.Block {
	out := make([]schedule.Block, len(in))
	for i, blk := range in {
		out[i] = *blk
	}
	return out
}

// Placement describes a block to place. With a MenuID, Title and
// DurationMin default to the menu's name and default duration. Start
// defaults to the session start, or 09:00, and LaneID to the global lane.
type Placement struct {
	MenuID      string          `json:"menu_id,omitempty"`
	Title       string          `json:"title,omitempty"`
	LaneID      schedule.LaneID `json:"lane_id,omitempty"`
	Start       string          `json:"start,omitempty"`
	DurationMin int             `json:"duration_min,omitempty"`
}

// Place adds a block. Overlaps are allowed.
func (b *Board) Place(p Placement) (schedule.Block, error) {
	if p.MenuID != "" {
		m, ok := b.catalog.Lookup(p.MenuID)
		if !ok {
			return schedule.Block{}, fmt.Errorf("%w: %q", ErrUnknownMenu, p.MenuID)
		}
		if p.Title == "" {
			p.Title = m.Name
		}
		if p.DurationMin == 0 {
			p.DurationMin = m.DurationDefaultMin
		}
	} else if p.Title == "" {
		return schedule.Block{}, ErrMissingTitle
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if p.LaneID == "" {
		p.LaneID = schedule.LaneGlobal
	}
	if p.Start == "" {
		p.Start = b.sched.Session.Start
		if p.Start == "" {
			p.Start = schedule.DefaultDisplayStart
		}
	}
	if p.DurationMin == 0 {
		p.DurationMin = b.sched.Step()
	}

	blk, err := b.sched.AddBlock(p.MenuID, p.Title, p.LaneID, p.Start, p.DurationMin)
	if err != nil {
		return schedule.Block{}, err
	}
	b.log.Debug("block placed", "id", blk.ID, "menu", blk.MenuID, "lane", blk.LaneID, "start", blk.Start, "duration", blk.DurationMin)
	return *blk, nil
}

// Change is a partial update of a placed block. Nil fields are kept.
type Change struct {
	LaneID      *schedule.LaneID `json:"lane_id,omitempty"`
	Start       *string          `json:"start,omitempty"`
	DurationMin *int             `json:"duration_min,omitempty"`
}

// Update moves and/or resizes a block. Nothing changes on error.
func (b *Board) Update(id string, c Change) (schedule.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	blk, ok := b.sched.Block(id)
	if !ok {
		return schedule.Block{}, fmt.Errorf("%w: %q", schedule.ErrUnknownBlock, id)
	}
	if c.DurationMin != nil && *c.DurationMin < b.sched.Step() {
		return schedule.Block{}, fmt.Errorf("%w: %d < %d", schedule.ErrMinimumDuration, *c.DurationMin, b.sched.Step())
	}

	if c.LaneID != nil || c.Start != nil {
		lane, start := blk.LaneID, blk.Start
		if c.LaneID != nil {
			lane = *c.LaneID
		}
		if c.Start != nil {
			start = *c.Start
		}
		if err := b.sched.MoveBlock(blk, lane, start); err != nil {
			return schedule.Block{}, err
		}
	}
	if c.DurationMin != nil {
		if err := b.sched.ResizeBlock(blk, *c.DurationMin); err != nil {
			return schedule.Block{}, err
		}
	}
	return *blk, nil
}

// Remove deletes a block.
func (b *Board) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	blk, ok := b.sched.Block(id)
	if !ok {
		return fmt.Errorf("%w: %q", schedule.ErrUnknownBlock, id)
	}
	b.sched.RemoveBlock(blk)
	return nil
}

// Overlap is one overlapping pair, resolved for display.
type Overlap struct {
	LaneID   schedule.LaneID `json:"lane_id"`
	LaneName string          `json:"lane_name"`
	A        schedule.Block  `json:"a"`
	B        schedule.Block  `json:"b"`
	Message  string          `json:"message"`
}

// Overlaps lists every overlapping pair, lanes in grid order.
func (b *Board) Overlaps() []Overlap {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlaps()
}

func (b *Board) overlaps() []Overlap {
	err := overlap.Check(b.sched)
	var v *overlap.Violation
	if !errors.As(err, &v) {
		return []Overlap{}
	}
	out := make([]Overlap, len(v.Pairs))
	for i, p := range v.Pairs {
		lane, _ := b.sched.Lane(p.LaneID)
		out[i] = Overlap{
			LaneID:   p.LaneID,
			LaneName: lane.Name,
			A:        *p.A,
			B:        *p.B,
			Message:  v.Describe(p),
		}
	}
	return out
}

// ExportResult describes a written export.
type ExportResult struct {
	Filename string
	Date     string
	Blocks   int
}

// Export writes the schedule image to w. While blocks overlap it returns
// an *overlap.Violation and writes nothing.
func (b *Board) Export(w io.Writer, r *export.Renderer) (ExportResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name, err := r.Export(w, b.sched, b.catalog.Category)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{
		Filename: name,
		Date:     b.sched.Session.Date,
		Blocks:   len(b.sched.Blocks()),
	}, nil
}

// Snapshot is the whole board state at one instant.
type Snapshot struct {
	Session  schedule.Session `json:"session"`
	Grid     Grid             `json:"grid"`
	Lanes    []schedule.Lane  `json:"lanes"`
	Blocks   []schedule.Block `json:"blocks"`
	Overlaps []Overlap        `json:"overlaps"`
	Counts   CountState       `json:"counts"`
}

// Snapshot captures the board under one lock.
func (b *Board) Snapshot() (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end := b.sched.DisplayWindow()
	slots, err := b.sched.Slots()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Session:  b.sched.Session,
		Grid:     Grid{Start: start, End: end, Step: b.sched.Step(), Slots: slots},
		Lanes:    b.sched.Lanes(),
		Blocks:   copyBlocks(b.sched.Blocks()),
		Overlaps: b.overlaps(),
		Counts:   b.countState(),
	}, nil
}
