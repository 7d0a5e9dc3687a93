package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PlaceholderID is the id under which the placeholder row is exposed to
// outward formats. It is never stored.
const PlaceholderID = "empty"

// Hours is the hours value of a task as the user typed it. Blank means unset,
// which is different from zero.
type Hours string

// UnmarshalJSON accepts both strings and numbers; older rows stored numbers.
func (h *Hours) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*h = Hours(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("hours must be a string or number: %w", err)
	}
	*h = Hours(n.String())
	return nil
}

// Blank reports whether no hours have been entered.
func (h Hours) Blank() bool {
	return strings.TrimSpace(string(h)) == ""
}

// Value returns the numeric value of h. Blank, non-numeric or non-finite
// input counts as 0.
func (h Hours) Value() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(h)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Task is a single line of work logged on a day.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Hours       Hours  `json:"hours"`
}

// DayEntry is one user's record for one calendar day.
type DayEntry struct {
	IsLeave bool   `json:"isLeave"`
	Tasks   []Task `json:"tasks"`
}

// Clone returns a copy of e that shares no task storage with it.
func (e DayEntry) Clone() DayEntry {
	out := DayEntry{IsLeave: e.IsLeave, Tasks: make([]Task, len(e.Tasks))}
	copy(out.Tasks, e.Tasks)
	return out
}

// MarshalJSON always writes a tasks list, never null.
func (e DayEntry) MarshalJSON() ([]byte, error) {
	type plain DayEntry
	p := plain(e)
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	return json.Marshal(p)
}

// Row is one displayed line of a day: either a real task or the placeholder
// shown when the day has no tasks yet.
type Row struct {
	Task        Task
	Placeholder bool
}

// ID returns the task id, or PlaceholderID for the placeholder row.
func (r Row) ID() string {
	if r.Placeholder {
		return PlaceholderID
	}
	return r.Task.ID
}
