// Package plan reads a practice plan document and builds a schedule from
// it, for rendering outside the server.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/schedule"
)

// ErrInvalidLaneName is returned when a lane rename in the plan is rejected.
var ErrInvalidLaneName = errors.New("invalid lane name")

// Plan is the on-disk form of one practice schedule.
type Plan struct {
	Session     schedule.Session `json:"session"`
	StepMinutes int              `json:"step_minutes,omitempty"`
	Lanes       []LaneName       `json:"lanes,omitempty"`
	Blocks      []Entry          `json:"blocks"`
}

// LaneName renames one lane.
type LaneName struct {
	ID   schedule.LaneID `json:"id"`
	Name string          `json:"name"`
}

// Entry is one block. Title and duration fall back to the menu, lane to
// global and start to the session start.
type Entry struct {
	MenuID      string          `json:"menu_id,omitempty"`
	Title       string          `json:"title,omitempty"`
	LaneID      schedule.LaneID `json:"lane_id,omitempty"`
	Start       string          `json:"start,omitempty"`
	DurationMin int             `json:"duration_min,omitempty"`
}

// Parse decodes a plan document.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	return &p, nil
}

// Lookup resolves a menu id.
type Lookup func(id string) (models.Menu, bool)

// Build creates a schedule from p. A blank session date keeps the next
// Sunday after now. Overlapping blocks are accepted; callers check them
// before export.
func (p *Plan) Build(lookup Lookup, now time.Time) (*schedule.Schedule, error) {
	s := schedule.New(p.StepMinutes, now)
	if p.Session.Date != "" {
		if err := s.SetDate(p.Session.Date); err != nil {
			return nil, err
		}
	}
	if err := s.SetWindow(p.Session.Start, p.Session.End); err != nil {
		return nil, fmt.Errorf("session window: %w", err)
	}
	s.SetLocation(p.Session.Location)

	for _, l := range p.Lanes {
		if _, ok := s.Lane(l.ID); !ok {
			return nil, fmt.Errorf("lane %q: %w", l.ID, schedule.ErrUnknownLane)
		}
		if !s.RenameLane(l.ID, l.Name) {
			return nil, fmt.Errorf("%w: lane %q name %q", ErrInvalidLaneName, l.ID, l.Name)
		}
	}

	for i, e := range p.Blocks {
		if err := e.place(s, lookup); err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
	}
	return s, nil
}

func (e Entry) place(s *schedule.Schedule, lookup Lookup) error {
	title, duration := e.Title, e.DurationMin
	if e.MenuID != "" && lookup != nil {
		m, ok := lookup(e.MenuID)
		if !ok {
			return fmt.Errorf("unknown menu %q", e.MenuID)
		}
		if title == "" {
			title = m.Name
		}
		if duration == 0 {
			duration = m.DurationDefaultMin
		}
	}
	if title == "" {
		return errors.New("title is required")
	}
	if duration == 0 {
		duration = s.Step()
	}
	lane := e.LaneID
	if lane == "" {
		lane = schedule.LaneGlobal
	}
	start := e.Start
	if start == "" {
		start = s.Session.Start
	}
	if start == "" {
		start = schedule.DefaultDisplayStart
	}
	_, err := s.AddBlock(e.MenuID, title, lane, start, duration)
	return err
}
