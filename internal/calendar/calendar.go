package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/daily-hours/internal/model"
)

// KeyLayout is the layout of date keys (DD/MM/YYYY). Stored rows use the same
// format, so it must not change.
const KeyLayout = "02/01/2006"

// ErrBadKey is returned when a string is not a valid date key.
var ErrBadKey = errors.New("invalid date key")

// Day is one calendar day shown in the grid.
type Day struct {
	Date    time.Time
	Key     string
	Weekday string
	Weekend bool
}

// NewDay builds the Day for t's calendar date.
func NewDay(t time.Time) Day {
	d := StartOfDay(t)
	wd := d.Weekday()
	return Day{
		Date:    d,
		Key:     Key(d),
		Weekday: wd.String(),
		Weekend: wd == time.Saturday || wd == time.Sunday,
	}
}

// Key returns the date key for t's calendar date.
func Key(t time.Time) string {
	return t.Format(KeyLayout)
}

// ParseKey parses a date key into midnight of that day in loc.
func ParseKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(KeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrBadKey, key, err)
	}
	return t, nil
}

// Grid returns the days visible for ref in the given view mode.
func Grid(ref time.Time, mode model.ViewMode) []Day {
	switch mode {
	case model.ViewDay:
		return []Day{NewDay(ref)}
	case model.ViewWeek:
		start := WeekStart(ref)
		days := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			days = append(days, NewDay(start.AddDate(0, 0, i)))
		}
		return days
	default:
		n := DaysInMonth(ref)
		days := make([]Day, 0, n)
		for i := 1; i <= n; i++ {
			days = append(days, NewDay(time.Date(ref.Year(), ref.Month(), i, 0, 0, 0, 0, ref.Location())))
		}
		return days
	}
}

// WeekStart returns midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	back := wd - 1
	if wd == 0 {
		back = 6
	}
	return StartOfDay(t.AddDate(0, 0, -back))
}

// DaysInMonth returns the number of days in t's month. Day 0 of the next
// month is the last day of this one.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// Navigate moves ref by one unit of mode in direction dir (+1 or -1).
// Month steps use calendar arithmetic, so Jan 31 + 1 month normalizes into March.
func Navigate(ref time.Time, mode model.ViewMode, dir int) time.Time {
	switch mode {
	case model.ViewDay:
		return ref.AddDate(0, 0, dir)
	case model.ViewWeek:
		return ref.AddDate(0, 0, 7*dir)
	default:
		return ref.AddDate(0, dir, 0)
	}
}

// MonthTitle returns a label like "January 2024".
func MonthTitle(t time.Time) string {
	return t.Format("January 2006")
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
