package tasks

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Tiliavir/daily-hours/internal/ids"
	"github.com/Tiliavir/daily-hours/internal/model"
)

// Field names an editable task column.
type Field string

const (
	FieldDescription Field = "description"
	FieldHours       Field = "hours"
)

var (
	ErrUnknownField = errors.New("unknown task field")
	ErrBadHours     = errors.New("hours must be a non-negative number")
)

// ParseField converts user input into a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldDescription, FieldHours:
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownField, s)
}

// ValidateHours accepts blank input or a finite, non-negative number.
func ValidateHours(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %q", ErrBadHours, v)
	}
	return nil
}

func set(t *model.Task, field Field, value string) {
	switch field {
	case FieldDescription:
		t.Description = value
	case FieldHours:
		t.Hours = model.Hours(value)
	}
}

// UpdateField returns a copy of entry with the field of task id replaced.
// An unknown id gets a new task appended carrying only that field.
func UpdateField(entry model.DayEntry, id string, field Field, value string) model.DayEntry {
	out := entry.Clone()
	for i := range out.Tasks {
		if out.Tasks[i].ID == id {
			set(&out.Tasks[i], field, value)
			return out
		}
	}
	t := model.Task{ID: id}
	set(&t, field, value)
	out.Tasks = append(out.Tasks, t)
	return out
}

// Add returns a copy of entry with a new blank task appended, and that task.
func Add(entry model.DayEntry, gen ids.Generator) (model.DayEntry, model.Task) {
	t := model.Task{ID: gen()}
	out := entry.Clone()
	out.Tasks = append(out.Tasks, t)
	return out, t
}

// Remove returns a copy of entry without task id.
func Remove(entry model.DayEntry, id string) model.DayEntry {
	out := model.DayEntry{IsLeave: entry.IsLeave, Tasks: make([]model.Task, 0, len(entry.Tasks))}
	for _, t := range entry.Tasks {
		if t.ID != id {
			out.Tasks = append(out.Tasks, t)
		}
	}
	return out
}

// ToggleLeave flips the leave flag. Tasks are kept as they are.
func ToggleLeave(entry model.DayEntry) model.DayEntry {
	out := entry.Clone()
	out.IsLeave = !out.IsLeave
	return out
}

// Rows returns the displayed rows of entry: its tasks, or a single
// placeholder when there are none.
func Rows(entry model.DayEntry) []model.Row {
	if len(entry.Tasks) == 0 {
		return []model.Row{{Placeholder: true}}
	}
	rows := make([]model.Row, len(entry.Tasks))
	for i, t := range entry.Tasks {
		rows[i] = model.Row{Task: t}
	}
	return rows
}

// EditRow applies an edit made on a displayed row. Typing a description into
// the placeholder materializes a real task first; hours typed into the
// placeholder are ignored. changed is false when nothing was applied.
func EditRow(entry model.DayEntry, row model.Row, field Field, value string, gen ids.Generator) (model.DayEntry, bool) {
	if !row.Placeholder {
		return UpdateField(entry, row.Task.ID, field, value), true
	}
	if field != FieldDescription {
		return entry, false
	}
	out, t := Add(entry, gen)
	return UpdateField(out, t.ID, field, value), true
}
