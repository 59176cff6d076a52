// Package slots holds the canonical class-slot table and the calendar
// arithmetic around it. Slot labels are wall-clock times in the teacher's
// timezone; every day-bucketing decision in the service goes through
// DayWindow/DayKey so the boundary policy lives in one place.
package slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// canonical is the fixed ordered slot list. Classes run Wednesday evenings in
// half-hour blocks from 5:00 PM through 10:30 PM.
var canonical = []string{
	"5:00 PM",
	"5:30 PM",
	"6:00 PM",
	"6:30 PM",
	"7:00 PM",
	"7:30 PM",
	"8:00 PM",
	"8:30 PM",
	"9:00 PM",
	"9:30 PM",
	"10:00 PM",
	"10:30 PM",
}

// Canonical returns the slot labels in display order.
func Canonical() []string {
	out := make([]string, len(canonical))
	copy(out, canonical)
	return out
}

// IsCanonical reports whether label is one of the fixed slots.
func IsCanonical(label string) bool {
	for _, s := range canonical {
		if s == label {
			return true
		}
	}
	return false
}

// SlotID converts a label to the identifier the booking page uses for slot
// elements, e.g. "7:00 PM" -> "7:00pm".
func SlotID(label string) string {
	return strings.ToLower(strings.ReplaceAll(label, " ", ""))
}

// ParseLabel converts a slot label into hour and minute on a 24h clock.
func ParseLabel(label string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(label), " ", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	clock := strings.SplitN(parts[0], ":", 2)
	if len(clock) != 2 {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	hour, err = strconv.Atoi(clock[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	minute, err = strconv.Atoi(clock[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("slot label %q out of range", label)
	}
	switch strings.ToUpper(parts[1]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	default:
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	return hour, minute, nil
}

// StartTime combines a calendar day with the wall-clock start of the slot in
// loc.
func StartTime(day time.Time, label string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseLabel(label)
	if err != nil {
		return time.Time{}, err
	}
	local := day.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc), nil
}

// DayWindow returns the inclusive [00:00:00.000, 23:59:59.999] range of t's
// calendar day in loc.
func DayWindow(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// DayKey formats t's calendar day in loc as YYYY-MM-DD, the key used by the
// availability override map and the bookings day column.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// ParseDay interprets a YYYY-MM-DD or RFC3339 value as a calendar day in loc.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t.In(loc), nil
}

// NextWednesdays returns the next n Wednesdays in loc starting from "from";
// when from falls on a Wednesday it counts as the first. Used to synthesise
// default availability.
func NextWednesdays(from time.Time, n int, loc *time.Location) []time.Time {
	local := from.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	offset := (int(time.Wednesday) - int(day.Weekday()) + 7) % 7
	day = day.AddDate(0, 0, offset)

	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, day)
		day = day.AddDate(0, 0, 7)
	}
	return out
}
