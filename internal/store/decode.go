package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Tiliavir/daily-hours/internal/ids"
	"github.com/Tiliavir/daily-hours/internal/model"
)

// Decoded is a stored entry in one of the shapes found in the wild:
// CurrentEntry or LegacyEntry.
type Decoded interface {
	// Normalize converts the entry to the current shape. dirty reports
	// whether the stored document differs from the result and needs saving.
	Normalize(gen ids.Generator) (entry model.DayEntry, dirty bool)
}

// CurrentEntry is an entry stored with a tasks list.
type CurrentEntry struct {
	Entry model.DayEntry
}

func (c CurrentEntry) Normalize(ids.Generator) (model.DayEntry, bool) {
	return c.Entry, false
}

// LegacyEntry is an entry from before multiple tasks per day existed: one
// task text and one hours value, or nothing at all.
type LegacyEntry struct {
	IsLeave bool
	Task    string
	Hours   model.Hours
	// HasWork is false when neither task nor hours carried a value.
	HasWork bool
}

func (l LegacyEntry) Normalize(gen ids.Generator) (model.DayEntry, bool) {
	e := model.DayEntry{IsLeave: l.IsLeave, Tasks: []model.Task{}}
	if l.HasWork {
		e.Tasks = append(e.Tasks, model.Task{ID: gen(), Description: l.Task, Hours: l.Hours})
	}
	return e, true
}

type storedEntry struct {
	IsLeave json.RawMessage `json:"isLeave"`
	Tasks   *[]model.Task   `json:"tasks"`
	Task    json.RawMessage `json:"task"`
	Hours   json.RawMessage `json:"hours"`
}

// Decode reads a stored entry document.
func Decode(data json.RawMessage) (Decoded, error) {
	var s storedEntry
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	leave := truthy(s.IsLeave)

	if s.Tasks != nil {
		return CurrentEntry{Entry: model.DayEntry{IsLeave: leave, Tasks: *s.Tasks}}, nil
	}

	l := LegacyEntry{IsLeave: leave}
	if truthy(s.Task) {
		var task string
		if err := json.Unmarshal(s.Task, &task); err != nil {
			task = strings.Trim(string(s.Task), `"`)
		}
		l.Task = task
		l.HasWork = true
	}
	if truthy(s.Hours) {
		// A malformed hours value is dropped rather than failing the row.
		_ = json.Unmarshal(s.Hours, &l.Hours)
		l.HasWork = true
	}
	return l, nil
}

// truthy follows the loose rules the entries were written with: missing,
// null, false, "" and 0 all count as no value.
func truthy(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	return true
}
