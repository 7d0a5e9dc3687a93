package view

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/ids"
	"github.com/Tiliavir/daily-hours/internal/model"
	"github.com/Tiliavir/daily-hours/internal/store"
	"github.com/Tiliavir/daily-hours/internal/tasks"
)

// memRows is an in-memory RowStore.
type memRows struct {
	mu   sync.Mutex
	rows map[string]store.Row
}

func newMemRows() *memRows { return &memRows{rows: map[string]store.Row{}} }

func (m *memRows) FetchRows(_ context.Context, userID string) ([]store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Row
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRows) UpsertRow(_ context.Context, r store.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.UserID+"|"+r.DateKey] = r
	return nil
}

func (m *memRows) stored(t *testing.T, user, key string) model.DayEntry {
	t.Helper()
	m.mu.Lock()
	r, ok := m.rows[user+"|"+key]
	m.mu.Unlock()
	if !ok {
		t.Fatalf("no stored row for %s", key)
	}
	var e model.DayEntry
	if err := json.Unmarshal(r.Data, &e); err != nil {
		t.Fatalf("stored row %s: %v", key, err)
	}
	return e
}

// Tuesday, 2 January 2024.
var testNow = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

func openTest(t *testing.T, rows *memRows, sel Selection) *Session {
	t.Helper()
	a := store.NewAdapter(rows)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return Open(context.Background(), a, "u1", sel,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(ids.Sequence("t")))
}

func TestOpenDefaults(t *testing.T) {
	s := openTest(t, newMemRows(), Selection{})
	sel := s.Selection()
	if !sel.Date.Equal(testNow) || sel.Mode != model.ViewDay {
		t.Errorf("selection = %+v", sel)
	}
	if got := s.Label(); got != "Total Hours logged today" {
		t.Errorf("Label = %q", got)
	}
}

func TestSelectionChanges(t *testing.T) {
	s := openTest(t, newMemRows(), Selection{Date: testNow, Mode: model.ViewWeek})

	s.Navigate(1)
	if got := calendar.Key(s.Selection().Date); got != "09/01/2024" {
		t.Errorf("after week forward = %s", got)
	}
	s.SetMode(model.ViewMonth)
	s.Navigate(-1)
	if got := calendar.Key(s.Selection().Date); got != "09/12/2023" {
		t.Errorf("after month back = %s", got)
	}
	if got := len(s.Days()); got != 31 {
		t.Errorf("December days = %d", got)
	}

	s.JumpToDay(time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC))
	if sel := s.Selection(); sel.Mode != model.ViewDay || calendar.Key(sel.Date) != "24/12/2023" {
		t.Errorf("after jump = %+v", sel)
	}
	if got := s.Label(); got != "Total Hours logged on 24/12/2023" {
		t.Errorf("Label = %q", got)
	}

	s.Today()
	if !calendar.SameDay(s.Selection().Date, testNow) {
		t.Errorf("Today = %v", s.Selection().Date)
	}
}

func TestTaskLifecycle(t *testing.T) {
	rows := newMemRows()
	s := openTest(t, rows, Selection{Date: testNow})
	const key = "02/01/2024"

	task, err := s.AddTask(key)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.ID != "t-1" {
		t.Errorf("task id = %q", task.ID)
	}
	row := model.Row{Task: task}
	if err := s.EditDescription(key, row, "Review"); err != nil {
		t.Fatalf("EditDescription: %v", err)
	}
	if err := s.EditHours(key, row, "2.5"); err != nil {
		t.Fatalf("EditHours: %v", err)
	}
	if _, err := s.AddTask(key); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := s.EditHours(key, model.Row{Task: model.Task{ID: "t-2"}}, "5"); err != nil {
		t.Fatalf("EditHours: %v", err)
	}

	if got := s.Total(); got != 7.5 {
		t.Errorf("Total = %v", got)
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	stored := rows.stored(t, "u1", key)
	if len(stored.Tasks) != 2 || stored.Tasks[0].Description != "Review" || stored.Tasks[0].Hours != "2.5" {
		t.Errorf("stored = %+v", stored)
	}

	if err := s.RemoveTask(key, "t-1"); err != nil {
		t.Fatalf("RemoveTask: %v", err)
	}
	if err := s.RemoveTask(key, "t-2"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("removing last task = %v, want ErrNotAllowed", err)
	}
	if err := s.RemoveTask(key, "nope"); !errors.Is(err, ErrNoSuchTask) {
		t.Errorf("removing unknown task = %v, want ErrNoSuchTask", err)
	}
}

func TestPlaceholderEdits(t *testing.T) {
	s := openTest(t, newMemRows(), Selection{Date: testNow})
	const key = "02/01/2024"

	ph, err := s.Row(key, model.PlaceholderID)
	if err != nil || !ph.Placeholder {
		t.Fatalf("Row(placeholder) = %+v, %v", ph, err)
	}
	if err := s.EditHours(key, ph, "3"); err != nil {
		t.Fatalf("EditHours: %v", err)
	}
	if got := s.Entry(key); len(got.Tasks) != 0 {
		t.Errorf("hours on placeholder created %+v", got.Tasks)
	}

	if err := s.EditDescription(key, ph, "Standup"); err != nil {
		t.Fatalf("EditDescription: %v", err)
	}
	got := s.Entry(key)
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "t-1" || got.Tasks[0].Description != "Standup" {
		t.Errorf("tasks = %+v", got.Tasks)
	}
	if _, err := s.Row(key, model.PlaceholderID); !errors.Is(err, ErrNoSuchTask) {
		t.Errorf("placeholder still present: %v", err)
	}
}

func TestPolicyEnforced(t *testing.T) {
	s := openTest(t, newMemRows(), Selection{Date: testNow, Mode: model.ViewWeek})
	const saturday = "06/01/2024"
	const weekday = "03/01/2024"

	if _, err := s.AddTask(saturday); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("AddTask on weekend = %v", err)
	}
	if err := s.ToggleLeave(saturday); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("ToggleLeave on weekend = %v", err)
	}

	if err := s.ToggleLeave(weekday); err != nil {
		t.Fatalf("ToggleLeave: %v", err)
	}
	if !s.Entry(weekday).IsLeave {
		t.Fatal("leave not set")
	}
	if _, err := s.AddTask(weekday); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("AddTask on leave = %v", err)
	}
	ph := model.Row{Placeholder: true}
	if err := s.EditDescription(weekday, ph, "x"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("edit on leave = %v", err)
	}
	if err := s.ToggleLeave(weekday); err != nil || s.Entry(weekday).IsLeave {
		t.Errorf("second toggle = %v, leave %v", err, s.Entry(weekday).IsLeave)
	}
}

func TestInvalidInput(t *testing.T) {
	s := openTest(t, newMemRows(), Selection{Date: testNow})
	if err := s.EditHours("02/01/2024", model.Row{Placeholder: true}, "abc"); !errors.Is(err, tasks.ErrBadHours) {
		t.Errorf("bad hours = %v", err)
	}
	if _, err := s.AddTask("2024-01-02"); !errors.Is(err, calendar.ErrBadKey) {
		t.Errorf("bad key = %v", err)
	}
}

func TestReloadSeesQueuedWrites(t *testing.T) {
	rows := newMemRows()
	s := openTest(t, rows, Selection{Date: testNow})
	if err := s.ToggleLeave("02/01/2024"); err != nil {
		t.Fatal(err)
	}
	s.Navigate(1)
	s.Navigate(-1)
	if !s.Entry("02/01/2024").IsLeave {
		t.Error("reloaded collection lost the saved entry")
	}
}

func TestSnapshot(t *testing.T) {
	rows := newMemRows()
	rows.rows["u1|01/01/2024"] = store.Row{UserID: "u1", DateKey: "01/01/2024",
		Data: json.RawMessage(`{"isLeave":false,"tasks":[{"id":"a","description":"x","hours":"4"}]}`)}
	rows.rows["u1|02/01/2024"] = store.Row{UserID: "u1", DateKey: "02/01/2024",
		Data: json.RawMessage(`{"isLeave":false,"tasks":[{"id":"b","description":"y","hours":"3.5"}]}`)}
	rows.rows["u1|08/01/2024"] = store.Row{UserID: "u1", DateKey: "08/01/2024",
		Data: json.RawMessage(`{"isLeave":false,"tasks":[{"id":"c","description":"z","hours":"8"}]}`)}

	s := openTest(t, rows, Selection{Date: testNow, Mode: model.ViewWeek})
	g := s.Snapshot()
	if len(g.Days) != 7 || g.Days[0].Day.Key != "01/01/2024" {
		t.Fatalf("days = %d, first %+v", len(g.Days), g.Days[0].Day)
	}
	if g.Total != 7.5 || g.Label != "Total Hours logged this week" || g.Title != "January 2024" {
		t.Errorf("grid = total %v label %q title %q", g.Total, g.Label, g.Title)
	}
	if !g.Days[1].Today || g.Days[0].Today {
		t.Error("today flag misplaced")
	}
	if g.Days[0].Hours != 4 || !g.Days[5].Policy.Weekend || g.Days[5].Policy.CanAdd() {
		t.Errorf("day views = %+v / %+v", g.Days[0], g.Days[5].Policy)
	}
	if !g.Days[2].Rows[0].Placeholder {
		t.Errorf("empty day rows = %+v", g.Days[2].Rows)
	}
}
