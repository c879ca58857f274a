package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/meltforce/practiceboard/internal/timegrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newTestSchedule() *Schedule {
	return New(timegrid.DefaultStep, monday)
}

func TestNewDefaults(t *testing.T) {
	s := newTestSchedule()
	assert.Equal(t, "2026-10-25", s.Session.Date)
	assert.False(t, s.Session.HasWindow())
	assert.Equal(t, 15, s.Step())

	lanes := s.Lanes()
	require.Len(t, lanes, 3)
	assert.Equal(t, Lane{ID: LaneGlobal, Name: "全体", Editable: false}, lanes[0])
	assert.Equal(t, Lane{ID: Lane1, Name: "他1", Editable: true}, lanes[1])
	assert.Equal(t, Lane{ID: Lane2, Name: "他2", Editable: true}, lanes[2])
}

func TestNextFutureSunday(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "2026-10-25"}, // Monday
		{time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC), "2026-10-25"}, // Saturday
		{time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), "2026-11-01"}, // Sunday moves a week ahead
		{time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC), "2027-01-03"}, // year boundary
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextFutureSunday(tt.now), tt.now.Weekday().String())
	}
}

func TestRenameLane(t *testing.T) {
	s := newTestSchedule()

	assert.False(t, s.RenameLane(Lane1, ""))
	assert.False(t, s.RenameLane(Lane1, "   "))
	assert.False(t, s.RenameLane(Lane1, strings.Repeat("AB", 11)))
	l, _ := s.Lane(Lane1)
	assert.Equal(t, "他1", l.Name)

	assert.True(t, s.RenameLane(Lane1, "  Team B "))
	l, _ = s.Lane(Lane1)
	assert.Equal(t, "Team B", l.Name)

	assert.True(t, s.ResetLaneName(Lane1))
	l, _ = s.Lane(Lane1)
	assert.Equal(t, "他1", l.Name)
}

// TestRenameLaneCountsCharacters verifies the length limit is in
// characters, not bytes.
func TestRenameLaneCountsCharacters(t *testing.T) {
	s := newTestSchedule()
	assert.True(t, s.RenameLane(Lane2, strings.Repeat("投", 20)))
	assert.False(t, s.RenameLane(Lane2, strings.Repeat("投", 21)))
}

func TestGlobalLaneIsFixed(t *testing.T) {
	s := newTestSchedule()
	assert.False(t, s.RenameLane(LaneGlobal, "Everyone"))
	assert.False(t, s.ResetLaneName(LaneGlobal))
	assert.False(t, s.RenameLane("lane9", "x"))
	l, _ := s.Lane(LaneGlobal)
	assert.Equal(t, "全体", l.Name)
}

func TestAddAndRemoveBlock(t *testing.T) {
	s := newTestSchedule()

	a, err := s.AddBlock("all_knock", "全体ノック", LaneGlobal, "09:00", 30)
	require.NoError(t, err)
	b, err := s.AddBlock("", "ミーティング", Lane1, "07:00", 15) // outside the window is allowed
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []*Block{a, b}, s.Blocks())

	got, ok := s.Block(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)

	assert.True(t, s.RemoveBlock(a))
	assert.False(t, s.RemoveBlock(a))
	assert.Equal(t, []*Block{b}, s.Blocks())
}

func TestAddBlockRejectsBrokenInvariants(t *testing.T) {
	s := newTestSchedule()

	_, err := s.AddBlock("warmup", "アップ", "lane3", "09:00", 15)
	assert.ErrorIs(t, err, ErrUnknownLane)

	_, err = s.AddBlock("warmup", "アップ", Lane1, "09:00", 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = s.AddBlock("warmup", "アップ", Lane1, "9am", 15)
	assert.ErrorIs(t, err, timegrid.ErrMalformedTime)

	assert.Empty(t, s.Blocks())
}

func TestMoveBlock(t *testing.T) {
	s := newTestSchedule()
	b, err := s.AddBlock("pepper", "ゴロペッパー", LaneGlobal, "09:00", 15)
	require.NoError(t, err)

	require.NoError(t, s.MoveBlock(b, Lane2, "10:07"))
	assert.Equal(t, Lane2, b.LaneID)
	assert.Equal(t, "10:07", b.Start)

	assert.ErrorIs(t, s.MoveBlock(b, "nowhere", "10:00"), ErrUnknownLane)
	assert.ErrorIs(t, s.MoveBlock(&Block{}, Lane1, "10:00"), ErrUnknownBlock)
	assert.Equal(t, Lane2, b.LaneID)
}

// TestStartsAreZeroPadded verifies loosely written times are stored in the
// same form as the slot labels, so the block lands on its grid row.
func TestStartsAreZeroPadded(t *testing.T) {
	s := newTestSchedule()
	require.NoError(t, s.SetWindow(" 9:00", "10:00"))
	assert.Equal(t, "09:00", s.Session.Start)

	b, err := s.AddBlock("warmup", "アップ", LaneGlobal, "9:00", 15)
	require.NoError(t, err)
	assert.Equal(t, "09:00", b.Start)

	slots, err := s.Slots()
	require.NoError(t, err)
	assert.Equal(t, 0, timegrid.SlotIndex(slots, b.Start))

	require.NoError(t, s.MoveBlock(b, Lane1, " 9:30"))
	assert.Equal(t, "09:30", b.Start)
	assert.Equal(t, 2, timegrid.SlotIndex(slots, b.Start))
}

func TestResizeBlock(t *testing.T) {
	s := newTestSchedule()
	b, err := s.AddBlock("pitching", "ピッチング練習", Lane1, "10:00", 30)
	require.NoError(t, err)

	require.NoError(t, s.ResizeBlock(b, 15))
	assert.Equal(t, 15, b.DurationMin)

	assert.ErrorIs(t, s.ResizeBlock(b, 10), ErrMinimumDuration)
	assert.Equal(t, 15, b.DurationMin)

	assert.ErrorIs(t, s.ResizeBlock(&Block{}, 30), ErrUnknownBlock)
}

func TestSessionFields(t *testing.T) {
	s := newTestSchedule()

	require.NoError(t, s.SetWindow("13:00", "16:30"))
	assert.True(t, s.Session.HasWindow())
	assert.Error(t, s.SetWindow("13", "16:30"))
	assert.Equal(t, "13:00", s.Session.Start)

	require.NoError(t, s.SetDate("2026-11-01"))
	assert.ErrorIs(t, s.SetDate("11/01/2026"), ErrInvalidDate)
	assert.Equal(t, "2026-11-01", s.Session.Date)
	require.NoError(t, s.SetDate(""))
	assert.Equal(t, "", s.Session.Date)

	s.SetLocation(" 河川敷グラウンド ")
	assert.Equal(t, "河川敷グラウンド", s.Session.Location)
}

// TestDisplayWindow verifies the defaults for a blank window and that a
// reversed window is swapped for display without touching the session.
func TestDisplayWindow(t *testing.T) {
	s := newTestSchedule()
	start, end := s.DisplayWindow()
	assert.Equal(t, "09:00", start)
	assert.Equal(t, "12:00", end)

	slots, err := s.Slots()
	require.NoError(t, err)
	assert.Len(t, slots, 13)

	require.NoError(t, s.SetWindow("15:00", "13:00"))
	start, end = s.DisplayWindow()
	assert.Equal(t, "13:00", start)
	assert.Equal(t, "15:00", end)
	assert.Equal(t, "15:00", s.Session.Start)
	assert.Equal(t, "13:00", s.Session.End)

	require.NoError(t, s.SetWindow("14:00", ""))
	start, end = s.DisplayWindow()
	assert.Equal(t, "12:00", start)
	assert.Equal(t, "14:00", end)
}
