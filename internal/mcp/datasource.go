package mcp

import (
	"github.com/meltforce/practiceboard/internal/board"
	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/schedule"
)

// Board abstracts the running board for MCP tools.
type Board interface {
	Menus() []models.Menu
	Candidates(categoryShort string) []models.Menu
	Counts() board.CountState
	SetCounts(c models.Counts) (board.CountState, error)
	SelectRoster(ids []string) board.CountState
	Players() []models.Player
	Snapshot() (board.Snapshot, error)
	SetSession(sess schedule.Session) (schedule.Session, error)
	Place(p board.Placement) (schedule.Block, error)
	Update(id string, c board.Change) (schedule.Block, error)
	Remove(id string) error
	Overlaps() []board.Overlap
	RenameLane(id schedule.LaneID, name string) (schedule.Lane, bool, error)
	ResetLane(id schedule.LaneID) (schedule.Lane, bool, error)
}

// Compile-time check: *board.Board satisfies Board.
var _ Board = (*board.Board)(nil)
