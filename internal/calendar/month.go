package calendar

import "time"

// MonthLayout returns the cells of a Sunday-first month sheet for t's month.
// Leading cells before day 1 are zero Days (Key == "").
func MonthLayout(t time.Time) []Day {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	lead := int(first.Weekday())
	n := DaysInMonth(t)

	cells := make([]Day, lead, lead+n)
	for i := 0; i < n; i++ {
		cells = append(cells, NewDay(first.AddDate(0, 0, i)))
	}
	return cells
}
