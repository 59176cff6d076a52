package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestCanonicalList(t *testing.T) {
	labels := Canonical()
	require.Len(t, labels, 12)
	assert.Equal(t, "5:00 PM", labels[0])
	assert.Equal(t, "10:30 PM", labels[11])

	// Returned slice is a copy.
	labels[0] = "mutated"
	assert.Equal(t, "5:00 PM", Canonical()[0])
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("7:00 PM"))
	assert.False(t, IsCanonical("7:00 AM"))
	assert.False(t, IsCanonical("11:00 PM"))
	assert.False(t, IsCanonical(""))
}

func TestSlotID(t *testing.T) {
	assert.Equal(t, "7:00pm", SlotID("7:00 PM"))
	assert.Equal(t, "10:30pm", SlotID("10:30 PM"))
}

func TestParseLabel(t *testing.T) {
	hour, minute, err := ParseLabel("7:30 PM")
	require.NoError(t, err)
	assert.Equal(t, 19, hour)
	assert.Equal(t, 30, minute)

	hour, minute, err = ParseLabel("12:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 12, hour)
	assert.Equal(t, 0, minute)

	hour, _, err = ParseLabel("12:15 AM")
	require.NoError(t, err)
	assert.Equal(t, 0, hour)

	for _, bad := range []string{"", "7 PM", "25:00 PM", "7:00", "7:00 XX"} {
		_, _, err := ParseLabel(bad)
		assert.Error(t, err, bad)
	}
}

func TestStartTime(t *testing.T) {
	loc := kolkata(t)
	day := time.Date(2025, 5, 21, 0, 0, 0, 0, loc)

	start, err := StartTime(day, "7:00 PM", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 21, 19, 0, 0, 0, loc), start)
}

func TestDayWindow(t *testing.T) {
	loc := kolkata(t)
	at := time.Date(2025, 5, 21, 19, 30, 0, 0, loc)

	start, end := DayWindow(at, loc)
	assert.Equal(t, time.Date(2025, 5, 21, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 5, 21, 23, 59, 59, 999000000, loc), end)
}

func TestDayWindowCrossesUTCBoundary(t *testing.T) {
	loc := kolkata(t)
	// 01:00 IST on the 21st is still the 20th in UTC; the window must follow
	// teacher-local wall clock.
	at := time.Date(2025, 5, 21, 1, 0, 0, 0, loc)

	start, _ := DayWindow(at.UTC(), loc)
	assert.Equal(t, 21, start.Day())
}

func TestDayKey(t *testing.T) {
	loc := kolkata(t)
	at := time.Date(2025, 5, 21, 19, 0, 0, 0, loc)
	assert.Equal(t, "2025-05-21", DayKey(at, loc))
	assert.Equal(t, "2025-05-21", DayKey(at.UTC(), loc))
}

func TestParseDay(t *testing.T) {
	loc := kolkata(t)

	day, err := ParseDay("2025-05-21", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 21, 0, 0, 0, 0, loc), day)

	day, err = ParseDay("2025-05-21T19:00:00+05:30", loc)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-21", DayKey(day, loc))

	_, err = ParseDay("05/21/2025", loc)
	assert.Error(t, err)
}

func TestNextWednesdays(t *testing.T) {
	loc := kolkata(t)

	// 2025-05-21 is a Wednesday and should count as the first.
	from := time.Date(2025, 5, 21, 10, 0, 0, 0, loc)
	days := NextWednesdays(from, 4, loc)
	require.Len(t, days, 4)
	assert.Equal(t, "2025-05-21", DayKey(days[0], loc))
	assert.Equal(t, "2025-05-28", DayKey(days[1], loc))
	assert.Equal(t, "2025-06-04", DayKey(days[2], loc))
	assert.Equal(t, "2025-06-11", DayKey(days[3], loc))

	// From a Thursday the first hit is six days out.
	from = time.Date(2025, 5, 22, 10, 0, 0, 0, loc)
	days = NextWednesdays(from, 1, loc)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-05-28", DayKey(days[0], loc))

	for _, d := range NextWednesdays(time.Now(), 4, loc) {
		assert.Equal(t, time.Wednesday, d.Weekday())
	}
}
