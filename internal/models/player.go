package models

import "strings"

// Canonical position codes.
const (
	PositionPitcher  = "P"
	PositionInfield  = "IF"
	PositionOutfield = "OF"
)

// Player is one roster member. Position is nil for members without an
// assigned position; they still count toward the headcount.
type Player struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Position     *string           `json:"position"`
	SubPositions []string          `json:"subPositions,omitempty"`
	Attributes   *PlayerAttributes `json:"attributes,omitempty"`
}

// PlayerAttributes carries optional per-player details.
type PlayerAttributes struct {
	Skills   []string `json:"skills,omitempty"`
	CanCatch bool     `json:"canCatch,omitempty"`
}

// positionMap maps lowercased position labels to their canonical code.
// Roster files are hand-written, so both codes and common Japanese and
// English labels are accepted.
var positionMap = map[string]string{
	"p":  PositionPitcher,
	"if": PositionInfield,
	"of": PositionOutfield,

	// English
	"pitcher":    PositionPitcher,
	"infield":    PositionInfield,
	"infielder":  PositionInfield,
	"outfield":   PositionOutfield,
	"outfielder": PositionOutfield,

	// Japanese
	"投手":  PositionPitcher,
	"投":   PositionPitcher,
	"内野":  PositionInfield,
	"内野手": PositionInfield,
	"外野":  PositionOutfield,
	"外野手": PositionOutfield,
}

// NormalizePosition maps a position label to "P", "IF" or "OF". The second
// return value reports whether the label was recognized.
func NormalizePosition(label string) (string, bool) {
	code, ok := positionMap[strings.ToLower(strings.TrimSpace(label))]
	return code, ok
}
