package view

import (
	"time"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/model"
	"github.com/Tiliavir/daily-hours/internal/tasks"
	"github.com/Tiliavir/daily-hours/internal/totals"
)

// DayView is one visible day with everything needed to draw it.
type DayView struct {
	Day    calendar.Day
	Entry  model.DayEntry
	Rows   []model.Row
	Policy tasks.Policy
	Hours  float64
	Today  bool
}

// Grid is a consistent snapshot of the visible days.
type Grid struct {
	Selection Selection
	Title     string
	Days      []DayView
	Total     float64
	Label     string
}

// Snapshot captures the current selection and its days.
func (s *Session) Snapshot() Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ShowSnapshot is Show followed by Snapshot, without another caller's
// selection change in between.
func (s *Session) ShowSnapshot(sel Selection) Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = sel
	s.reload()
	return s.snapshot()
}

// DayView returns the view of a single day, visible or not.
func (s *Session) DayView(key string) (DayView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, entry, err := s.day(key)
	if err != nil {
		return DayView{}, err
	}
	return newDayView(day, entry, s.now()), nil
}

func newDayView(d calendar.Day, e model.DayEntry, now time.Time) DayView {
	return DayView{
		Day:    d,
		Entry:  e,
		Rows:   tasks.Rows(e),
		Policy: tasks.PolicyFor(d, e),
		Hours:  totals.DayHours(e),
		Today:  calendar.SameDay(d.Date, now),
	}
}

// snapshot builds the grid. Callers hold mu.
func (s *Session) snapshot() Grid {
	sel, entries := s.sel, s.entries
	now := s.now()
	days := calendar.Grid(sel.Date, sel.Mode)
	g := Grid{
		Selection: sel,
		Title:     calendar.MonthTitle(sel.Date),
		Days:      make([]DayView, len(days)),
		Total:     totals.VisibleHours(days, entries),
		Label:     totals.Label(sel.Mode, days, calendar.Key(now)),
	}
	for i, d := range days {
		g.Days[i] = newDayView(d, entries.Entry(d.Key), now)
	}
	return g
}
