// Package timegrid converts between "HH:MM" strings and minute offsets and
// enumerates the discrete slots of a schedule window.
package timegrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultStep is the slot size used by the board, in minutes.
const DefaultStep = 15

var (
	// ErrMalformedTime is returned for strings that are not "HH:MM".
	ErrMalformedTime = errors.New("malformed time")
	// ErrInvalidStep is returned for a non-positive slot step.
	ErrInvalidStep = errors.New("step must be positive")
)

// ParseTime converts "HH:MM" to minutes since midnight. Hours are not capped
// at 23 so that values produced by FormatTime past midnight round-trip.
func ParseTime(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || hh == "" || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || strings.ContainsAny(hh, "+-") {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || strings.ContainsAny(mm, "+-") {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return h*60 + m, nil
}

// MustParseTime is ParseTime for literals known to be valid.
func MustParseTime(s string) int {
	m, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FormatTime renders minutes since midnight as zero-padded "HH:MM".
// Values of 1440 and above produce hours of 24 or more.
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// EnumerateSlots lists every slot from start up to and including the last
// slot that does not pass end. It returns an empty slice when start is after end.
func EnumerateSlots(start, end string, step int) ([]string, error) {
	if step <= 0 {
		return nil, ErrInvalidStep
	}
	from, err := ParseTime(start)
	if err != nil {
		return nil, fmt.Errorf("window start: %w", err)
	}
	to, err := ParseTime(end)
	if err != nil {
		return nil, fmt.Errorf("window end: %w", err)
	}

	slots := []string{}
	for t := from; t <= to; t += step {
		slots = append(slots, FormatTime(t))
	}
	return slots, nil
}

// SlotIndex returns the position of t in slots, or -1. Times that fall
// between slots are not interpolated.
func SlotIndex(slots []string, t string) int {
	for i, s := range slots {
		if s == t {
			return i
		}
	}
	return -1
}

// NormalizeWindow swaps start and end when both parse and start is not
// before end. It is a display step; callers keep the values as entered.
func NormalizeWindow(start, end string) (string, string) {
	s, errS := ParseTime(start)
	e, errE := ParseTime(end)
	if errS != nil || errE != nil {
		return start, end
	}
	if s >= e {
		return end, start
	}
	return start, end
}

// EndOf returns the minute offset at which an activity starting at start
// and lasting durationMin minutes finishes.
func EndOf(start string, durationMin int) (int, error) {
	s, err := ParseTime(start)
	if err != nil {
		return 0, err
	}
	return s + durationMin, nil
}
