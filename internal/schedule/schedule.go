// Package schedule is the in-memory model of one practice session: its
// metadata, lanes, and placed blocks. A Schedule is not safe for concurrent
// use; callers serialize mutations.
package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/meltforce/practiceboard/internal/timegrid"
	"golang.org/x/text/unicode/norm"
)

// Display window used when the session has no start or end yet.
const (
	DefaultDisplayStart = "09:00"
	DefaultDisplayEnd   = "12:00"
)

var (
	// ErrUnknownLane is returned for a lane id that is not on the board.
	ErrUnknownLane = errors.New("unknown lane")
	// ErrUnknownBlock is returned for a block that is not on the board.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrInvalidDuration is returned for a non-positive duration.
	ErrInvalidDuration = errors.New("duration must be positive")
	// ErrMinimumDuration is returned when a resize would go below one slot.
	ErrMinimumDuration = errors.New("cannot shrink below one slot")
	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

// Schedule owns the session, its lanes and its blocks. Block order is
// insertion order.
type Schedule struct {
	Session Session

	step   int
	lanes  []*Lane
	blocks []*Block
}

// New creates a schedule with the default lanes, dated the next Sunday
// after now, and no time window.
func New(step int, now time.Time) *Schedule {
	if step <= 0 {
		step = timegrid.DefaultStep
	}
	s := &Schedule{
		Session: Session{Date: NextFutureSunday(now)},
		step:    step,
	}
	for _, id := range LaneOrder {
		s.lanes = append(s.lanes, &Lane{
			ID:       id,
			Name:     defaultLaneNames[id],
			Editable: id != LaneGlobal,
		})
	}
	return s
}

// NextFutureSunday returns the date of the next Sunday strictly after
// now's day, as YYYY-MM-DD.
func NextFutureSunday(now time.Time) string {
	days := (7 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days).Format("2006-01-02")
}

// Step returns the slot size in minutes.
func (s *Schedule) Step() int { return s.step }

// SetWindow sets the session start and end. Blank values clear that end of
// the window; non-blank values must be "HH:MM" and are stored zero-padded.
// Start after end is kept as entered.
func (s *Schedule) SetWindow(start, end string) error {
	start, err := canonical(start)
	if err != nil {
		return err
	}
	end, err = canonical(end)
	if err != nil {
		return err
	}
	s.Session.Start = start
	s.Session.End = end
	return nil
}

// SetDate sets the session date. Blank clears it; otherwise it must be
// YYYY-MM-DD.
func (s *Schedule) SetDate(date string) error {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
		}
	}
	s.Session.Date = date
	return nil
}

// SetLocation sets the free-text location.
func (s *Schedule) SetLocation(location string) {
	s.Session.Location = strings.TrimSpace(location)
}

// DisplayWindow returns the window the grid shows: the session window with
// blanks replaced by the defaults, swapped if start is not before end.
func (s *Schedule) DisplayWindow() (string, string) {
	start, end := s.Session.Start, s.Session.End
	if start == "" {
		start = DefaultDisplayStart
	}
	if end == "" {
		end = DefaultDisplayEnd
	}
	return timegrid.NormalizeWindow(start, end)
}

// Slots enumerates the display window at the schedule's step.
func (s *Schedule) Slots() ([]string, error) {
	start, end := s.DisplayWindow()
	return timegrid.EnumerateSlots(start, end, s.step)
}

// Lanes returns the lanes in grid order.
func (s *Schedule) Lanes() []Lane {
	out := make([]Lane, len(s.lanes))
	for i, l := range s.lanes {
		out[i] = *l
	}
	return out
}

// Lane returns the lane with id.
func (s *Schedule) Lane(id LaneID) (Lane, bool) {
	l := s.lane(id)
	if l == nil {
		return Lane{}, false
	}
	return *l, true
}

func (s *Schedule) lane(id LaneID) *Lane {
	for _, l := range s.lanes {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LaneIDs returns the lane ids in grid order.
func (s *Schedule) LaneIDs() []LaneID {
	out := make([]LaneID, len(s.lanes))
	for i, l := range s.lanes {
		out[i] = l.ID
	}
	return out
}

// RenameLane sets the name of an editable lane. The name is trimmed and
// NFC-normalized and must be 1 to 20 characters. It reports whether the
// name changed; invalid requests are ignored.
func (s *Schedule) RenameLane(id LaneID, name string) bool {
	l := s.lane(id)
	if l == nil || !l.Editable {
		return false
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	n := utf8.RuneCountInString(name)
	if n < MinLaneNameLen || n > MaxLaneNameLen {
		return false
	}
	l.Name = name
	return true
}

// ResetLaneName restores the default name of an editable lane.
func (s *Schedule) ResetLaneName(id LaneID) bool {
	l := s.lane(id)
	if l == nil || !l.Editable {
		return false
	}
	l.Name = defaultLaneNames[id]
	return true
}

// Blocks returns the placed blocks in insertion order. The pointers are
// live; mutate them only through the Schedule.
func (s *Schedule) Blocks() []*Block {
	return slices.Clone(s.blocks)
}

// Block finds a placed block by id.
func (s *Schedule) Block(id string) (*Block, bool) {
	for _, b := range s.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// AddBlock appends a block. Overlaps are allowed here; they are reported
// by the overlap detector and block export. The lane must exist and the
// duration must be positive. Start is stored as zero-padded "HH:MM" so it
// matches the slot labels; it is not required to lie in the window.
func (s *Schedule) AddBlock(menuID, title string, laneID LaneID, start string, durationMin int) (*Block, error) {
	if s.lane(laneID) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLane, laneID)
	}
	m, err := timegrid.ParseTime(start)
	if err != nil {
		return nil, err
	}
	if durationMin <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, durationMin)
	}

	b := &Block{
		ID:          uuid.NewString(),
		MenuID:      menuID,
		Title:       title,
		LaneID:      laneID,
		Start:       timegrid.FormatTime(m),
		DurationMin: durationMin,
	}
	s.blocks = append(s.blocks, b)
	return b, nil
}

// RemoveBlock removes b by identity. It reports whether b was present.
func (s *Schedule) RemoveBlock(b *Block) bool {
	i := slices.Index(s.blocks, b)
	if i < 0 {
		return false
	}
	s.blocks = slices.Delete(s.blocks, i, i+1)
	return true
}

// MoveBlock changes the lane and start of b in place. Start is stored
// zero-padded; alignment to the slot grid is the caller's concern.
func (s *Schedule) MoveBlock(b *Block, laneID LaneID, start string) error {
	if !slices.Contains(s.blocks, b) {
		return ErrUnknownBlock
	}
	if s.lane(laneID) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownLane, laneID)
	}
	m, err := timegrid.ParseTime(start)
	if err != nil {
		return err
	}
	b.LaneID = laneID
	b.Start = timegrid.FormatTime(m)
	return nil
}

// ResizeBlock sets the duration of b, which must be at least one slot.
func (s *Schedule) ResizeBlock(b *Block, durationMin int) error {
	if !slices.Contains(s.blocks, b) {
		return ErrUnknownBlock
	}
	if durationMin < s.step {
		return fmt.Errorf("%w: %d < %d", ErrMinimumDuration, durationMin, s.step)
	}
	b.DurationMin = durationMin
	return nil
}

// canonical trims t and rewrites it as zero-padded "HH:MM". Blank stays blank.
func canonical(t string) (string, error) {
	t = strings.TrimSpace(t)
	if t == "" {
		return "", nil
	}
	m, err := timegrid.ParseTime(t)
	if err != nil {
		return "", err
	}
	return timegrid.FormatTime(m), nil
}
