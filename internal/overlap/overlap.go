// Package overlap finds blocks that share a lane and overlap in time.
package overlap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meltforce/practiceboard/internal/schedule"
	"github.com/meltforce/practiceboard/internal/timegrid"
)

// Pair is two blocks in the same lane whose times overlap. A starts no
// later than B.
type Pair struct {
	LaneID schedule.LaneID `json:"lane_id"`
	A      *schedule.Block `json:"a"`
	B      *schedule.Block `json:"b"`
}

type span struct {
	block      *schedule.Block
	start, end int
}

// Find reports every overlapping pair lane by lane, in the order of
// laneIDs. Within a lane blocks are sorted by start (stable, so insertion
// order breaks ties) and swept once, keeping the blocks still running at
// each start. Every pair found by comparing sorted neighbours is included,
// and a long block is reported against each later block it covers. A block
// ending exactly when the next starts does not overlap it. Blocks whose
// start cannot be parsed are skipped.
func Find(blocks []*schedule.Block, laneIDs []schedule.LaneID) []Pair {
	byLane := make(map[schedule.LaneID][]span, len(laneIDs))
	for _, b := range blocks {
		start, err := timegrid.ParseTime(b.Start)
		if err != nil {
			continue
		}
		byLane[b.LaneID] = append(byLane[b.LaneID], span{block: b, start: start, end: start + b.DurationMin})
	}

	var pairs []Pair
	for _, id := range laneIDs {
		spans := byLane[id]
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

		var active []span
		for _, s := range spans {
			running := active[:0]
			for _, a := range active {
				if a.end > s.start {
					running = append(running, a)
				}
			}
			active = running
			for _, a := range active {
				pairs = append(pairs, Pair{LaneID: id, A: a.block, B: s.block})
			}
			active = append(active, s)
		}
	}
	return pairs
}

// Violation is returned when an export is attempted while blocks overlap.
type Violation struct {
	Pairs []Pair
	// LaneName resolves lane ids for the message; ids are used when nil.
	LaneName func(schedule.LaneID) string
}

func (v *Violation) Error() string {
	lines := make([]string, 0, len(v.Pairs)+1)
	lines = append(lines, fmt.Sprintf("%d overlapping block pair(s)", len(v.Pairs)))
	for _, p := range v.Pairs {
		lines = append(lines, v.Describe(p))
	}
	return strings.Join(lines, "\n")
}

// Describe renders one pair as "lane: title (start, N分) / title (start, N分)".
func (v *Violation) Describe(p Pair) string {
	lane := string(p.LaneID)
	if v.LaneName != nil {
		lane = v.LaneName(p.LaneID)
	}
	return fmt.Sprintf("%s: %s (%s, %d分) / %s (%s, %d分)",
		lane,
		p.A.Title, p.A.Start, p.A.DurationMin,
		p.B.Title, p.B.Start, p.B.DurationMin)
}

// Check returns a *Violation when blocks overlap, nil otherwise.
func Check(s *schedule.Schedule) error {
	pairs := Find(s.Blocks(), s.LaneIDs())
	if len(pairs) == 0 {
		return nil
	}
	return &Violation{
		Pairs: pairs,
		LaneName: func(id schedule.LaneID) string {
			if l, ok := s.Lane(id); ok {
				return l.Name
			}
			return string(id)
		},
	}
}
