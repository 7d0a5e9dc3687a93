package tasks

import (
	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/model"
)

// Policy says which actions the interface offers for one day.
type Policy struct {
	Weekend bool
	Leave   bool
	rows    int
}

// PolicyFor returns the action policy for day with the given entry.
func PolicyFor(day calendar.Day, entry model.DayEntry) Policy {
	return Policy{Weekend: day.Weekend, Leave: entry.IsLeave, rows: len(Rows(entry))}
}

// CanAdd reports whether another task may be added.
func (p Policy) CanAdd() bool { return !p.Weekend && !p.Leave }

// Editable reports whether task fields accept input.
func (p Policy) Editable() bool { return !p.Leave }

// CanToggleLeave reports whether leave may be marked. Weekends never are.
func (p Policy) CanToggleLeave() bool { return !p.Weekend }

// CanRemove reports whether row may be removed. The last row of a day stays.
func (p Policy) CanRemove(row model.Row) bool {
	return !row.Placeholder && !p.Weekend && !p.Leave && p.rows > 1
}
