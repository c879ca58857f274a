package timegrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:15", 555, false},
		{"9:15", 555, false},
		{"23:59", 1439, false},
		{"24:30", 1470, false},
		{"", 0, true},
		{"0915", 0, true},
		{"09:5", 0, true},
		{"09:60", 0, true},
		{"-1:00", 0, true},
		{"+1:00", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrMalformedTime, "ParseTime(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseTime(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseTime(%q)", tt.in)
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "00:00", FormatTime(0))
	assert.Equal(t, "09:05", FormatTime(545))
	assert.Equal(t, "24:15", FormatTime(1455))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for m := 0; m < 1600; m += 7 {
		got, err := ParseTime(FormatTime(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestEnumerateSlots(t *testing.T) {
	slots, err := EnumerateSlots("09:00", "10:00", 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:15", "09:30", "09:45", "10:00"}, slots)

	// The last slot must not pass end.
	slots, err = EnumerateSlots("09:00", "09:40", 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:15", "09:30"}, slots)

	slots, err = EnumerateSlots("09:00", "09:00", 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, slots)
}

func TestEnumerateSlotsReversedIsEmpty(t *testing.T) {
	slots, err := EnumerateSlots("12:00", "09:00", 15)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestEnumerateSlotsErrors(t *testing.T) {
	_, err := EnumerateSlots("09:00", "10:00", 0)
	assert.True(t, errors.Is(err, ErrInvalidStep))

	_, err = EnumerateSlots("nine", "10:00", 15)
	assert.ErrorIs(t, err, ErrMalformedTime)

	_, err = EnumerateSlots("09:00", "", 15)
	assert.ErrorIs(t, err, ErrMalformedTime)
}

// TestEnumerateSlotsProperties checks that slots are non-decreasing, start
// at the window start, never pass the end, and are all found by SlotIndex.
func TestEnumerateSlotsProperties(t *testing.T) {
	windows := []struct{ start, end string }{
		{"06:00", "21:00"}, {"09:10", "11:55"}, {"13:00", "13:14"}, {"00:00", "23:59"},
	}
	for _, step := range []int{5, 10, 15, 30, 60} {
		for _, w := range windows {
			slots, err := EnumerateSlots(w.start, w.end, step)
			require.NoError(t, err)
			require.NotEmpty(t, slots)

			first := MustParseTime(slots[0])
			assert.Equal(t, MustParseTime(w.start), first)
			prev := first
			for i, s := range slots {
				m := MustParseTime(s)
				assert.GreaterOrEqual(t, m, prev)
				assert.LessOrEqual(t, m, MustParseTime(w.end))
				assert.Equal(t, i, SlotIndex(slots, s))
				prev = m
			}
		}
	}
}

func TestSlotIndex(t *testing.T) {
	slots := []string{"09:00", "09:15", "09:30"}
	assert.Equal(t, 1, SlotIndex(slots, "09:15"))
	assert.Equal(t, -1, SlotIndex(slots, "09:10"))
	assert.Equal(t, -1, SlotIndex(nil, "09:00"))
}

func TestNormalizeWindow(t *testing.T) {
	s, e := NormalizeWindow("12:00", "09:00")
	assert.Equal(t, "09:00", s)
	assert.Equal(t, "12:00", e)

	s, e = NormalizeWindow("09:00", "12:00")
	assert.Equal(t, "09:00", s)
	assert.Equal(t, "12:00", e)

	// Unparseable input passes through untouched.
	s, e = NormalizeWindow("", "09:00")
	assert.Equal(t, "", s)
	assert.Equal(t, "09:00", e)
}

func TestEndOf(t *testing.T) {
	end, err := EndOf("10:00", 30)
	require.NoError(t, err)
	assert.Equal(t, 630, end)

	_, err = EndOf("10", 30)
	assert.Error(t, err)
}
