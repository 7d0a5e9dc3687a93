package totals

import (
	"strconv"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/model"
)

// Entries looks up a day's entry by date key.
type Entries interface {
	Get(key string) (model.DayEntry, bool)
}

// TaskHours is t's hours as a number; blank or non-numeric counts as 0.
func TaskHours(t model.Task) float64 {
	return t.Hours.Value()
}

// DayHours sums the hours of all tasks of entry.
func DayHours(entry model.DayEntry) float64 {
	var sum float64
	for _, t := range entry.Tasks {
		sum += TaskHours(t)
	}
	return sum
}

// VisibleHours sums the hours logged on all visible days.
func VisibleHours(days []calendar.Day, entries Entries) float64 {
	var sum float64
	for _, d := range days {
		if e, ok := entries.Get(d.Key); ok {
			sum += DayHours(e)
		}
	}
	return sum
}

// Label describes what VisibleHours covers for the given view.
func Label(mode model.ViewMode, days []calendar.Day, todayKey string) string {
	switch mode {
	case model.ViewMonth:
		return "Total Hours logged this month"
	case model.ViewWeek:
		return "Total Hours logged this week"
	}
	key := ""
	if len(days) > 0 {
		key = days[0].Key
	}
	if key == todayKey {
		return "Total Hours logged today"
	}
	return "Total Hours logged on " + key
}

// Format renders hours without trailing zeros, e.g. "7.5" or "8".
func Format(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// Map adapts a plain map to Entries.
type Map map[string]model.DayEntry

func (m Map) Get(key string) (model.DayEntry, bool) {
	e, ok := m[key]
	return e, ok
}
