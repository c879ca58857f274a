package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/meltforce/practiceboard/internal/overlap"
	"github.com/meltforce/practiceboard/internal/schedule"
	"github.com/meltforce/practiceboard/internal/timegrid"
)

const (
	timeColWidth = 7
	laneColWidth = 26
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(laneColWidth)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(timeColWidth)

	cellStyle = lipgloss.NewStyle().
			Width(laneColWidth)

	blockStyle = cellStyle.
			Foreground(lipgloss.Color("34"))

	conflictStyle = cellStyle.
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Preview writes a terminal timetable of s: one row per slot, one column
// per lane. Blocks are labelled at their start slot and continued with a
// bar; cells where blocks overlap are highlighted.
func Preview(w io.Writer, s *schedule.Schedule) error {
	slots, err := s.Slots()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("タイムスケジュール"))
	b.WriteString("  ")
	b.WriteString(s.Session.Date)
	if s.Session.Location != "" {
		b.WriteString("  @ " + s.Session.Location)
	}
	b.WriteString("\n\n")

	lanes := s.Lanes()
	header := []string{timeStyle.Render("")}
	for _, l := range lanes {
		header = append(header, headerStyle.Render(l.Name))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	conflicted := conflicts(s)
	for _, slot := range slots {
		row := []string{timeStyle.Render(slot)}
		for _, l := range lanes {
			row = append(row, cell(s, conflicted, l.ID, slot))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	if len(s.Blocks()) == 0 {
		b.WriteString(dimStyle.Render("(no blocks)"))
		b.WriteString("\n")
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// cell renders one lane at one slot.
func cell(s *schedule.Schedule, conflicted map[string]bool, lane schedule.LaneID, slot string) string {
	at := timegrid.MustParseTime(slot)
	var labels []string
	covered, clash := false, false
	for _, blk := range s.Blocks() {
		if blk.LaneID != lane {
			continue
		}
		start, err := timegrid.ParseTime(blk.Start)
		if err != nil || at < start || at >= start+blk.DurationMin {
			continue
		}
		if conflicted[blk.ID] {
			clash = true
		}
		if at == start {
			labels = append(labels, fmt.Sprintf("%s (%d分)", blk.Title, blk.DurationMin))
		} else {
			covered = true
		}
	}

	style := blockStyle
	if clash {
		style = conflictStyle
	}
	switch {
	case len(labels) > 0:
		return style.Render(truncate(strings.Join(labels, " / "), laneColWidth))
	case covered:
		return style.Render("┃")
	default:
		return cellStyle.Render("")
	}
}

func conflicts(s *schedule.Schedule) map[string]bool {
	out := make(map[string]bool)
	for _, p := range overlap.Find(s.Blocks(), s.LaneIDs()) {
		out[p.A.ID] = true
		out[p.B.ID] = true
	}
	return out
}

// truncate shortens s to max display cells, ending in "…".
func truncate(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)+"…") > max {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
