package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/ids"
	"github.com/Tiliavir/daily-hours/internal/model"
	"github.com/Tiliavir/daily-hours/internal/store"
	"github.com/Tiliavir/daily-hours/internal/tasks"
	"github.com/Tiliavir/daily-hours/internal/totals"
)

var (
	// ErrNotAllowed is returned for an action the day's policy does not offer.
	ErrNotAllowed = errors.New("not allowed on this day")
	// ErrNoSuchTask is returned when a row id matches nothing on the day.
	ErrNoSuchTask = errors.New("no such task")
)

// Store is what a Session needs from the entry store.
type Store interface {
	Load(ctx context.Context, userID string) (*store.Collection, store.MigrationResult)
	Save(c *store.Collection, userID, key string, e model.DayEntry)
	Flush(ctx context.Context) error
}

// Selection is the selected date and view mode.
type Selection struct {
	Date time.Time
	Mode model.ViewMode
}

// Session holds one user's selection and loaded entries. All methods are
// safe for concurrent use.
type Session struct {
	ctx    context.Context
	store  Store
	userID string
	gen    ids.Generator
	now    func() time.Time

	mu        sync.Mutex
	sel       Selection
	entries   *store.Collection
	migration store.MigrationResult
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, e.g. in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator sets the id source for new tasks.
func WithIDGenerator(gen ids.Generator) Option {
	return func(s *Session) { s.gen = gen }
}

// Open starts a session for userID on sel and loads the user's entries.
// A zero sel.Date means today; an empty sel.Mode means the day view.
func Open(ctx context.Context, st Store, userID string, sel Selection, opts ...Option) *Session {
	s := &Session{
		ctx:    ctx,
		store:  st,
		userID: userID,
		gen:    ids.UUID,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if sel.Date.IsZero() {
		sel.Date = s.now()
	}
	if sel.Mode == "" {
		sel.Mode = model.ViewDay
	}
	s.sel = sel
	s.reload()
	return s
}

// UserID returns the session's user.
func (s *Session) UserID() string { return s.userID }

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Migration returns the counters of the most recent load.
func (s *Session) Migration() store.MigrationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migration
}

// Entries returns the loaded collection.
func (s *Session) Entries() *store.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// Show replaces the whole selection and reloads.
func (s *Session) Show(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = sel
	s.reload()
}

// Navigate moves the selected date by one day, week or month.
func (s *Session) Navigate(dir int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Date = calendar.Navigate(s.sel.Date, s.sel.Mode, dir)
	s.reload()
}

// Select picks date and keeps the view mode.
func (s *Session) Select(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Date = date
	s.reload()
}

// JumpToDay opens date in the day view.
func (s *Session) JumpToDay(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = Selection{Date: date, Mode: model.ViewDay}
	s.reload()
}

// Today selects the current date.
func (s *Session) Today() {
	s.Select(s.now())
}

// SetMode switches the view mode.
func (s *Session) SetMode(mode model.ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Mode = mode
	s.reload()
}

// reload replaces the collection with a fresh fetch. Queued writes are
// flushed first so the fetch sees them. Callers hold mu.
func (s *Session) reload() {
	_ = s.store.Flush(s.ctx)
	s.entries, s.migration = s.store.Load(s.ctx, s.userID)
}

// Days returns the visible days.
func (s *Session) Days() []calendar.Day {
	sel := s.Selection()
	return calendar.Grid(sel.Date, sel.Mode)
}

// Entry returns the entry of key, empty if none is stored.
func (s *Session) Entry(key string) model.DayEntry {
	return s.Entries().Entry(key)
}

// Rows returns the displayed rows of key.
func (s *Session) Rows(key string) []model.Row {
	return tasks.Rows(s.Entry(key))
}

// Total sums the hours of the visible days.
func (s *Session) Total() float64 {
	return totals.VisibleHours(s.Days(), s.Entries())
}

// Label describes Total for the current view.
func (s *Session) Label() string {
	return totals.Label(s.Selection().Mode, s.Days(), calendar.Key(s.now()))
}

// Row finds the displayed row with id on key. The placeholder is found by
// model.PlaceholderID while the day has no tasks.
func (s *Session) Row(key, id string) (model.Row, error) {
	for _, r := range s.Rows(key) {
		if r.ID() == id {
			return r, nil
		}
	}
	return model.Row{}, fmt.Errorf("%w %q on %s", ErrNoSuchTask, id, key)
}

// AddTask appends a blank task to key.
func (s *Session) AddTask(key string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, entry, err := s.day(key)
	if err != nil {
		return model.Task{}, err
	}
	if !tasks.PolicyFor(day, entry).CanAdd() {
		return model.Task{}, fmt.Errorf("adding a task on %s: %w", key, ErrNotAllowed)
	}
	entry, t := tasks.Add(entry, s.gen)
	s.store.Save(s.entries, s.userID, key, entry)
	return t, nil
}

// EditDescription sets the description of row on key.
func (s *Session) EditDescription(key string, row model.Row, v string) error {
	return s.edit(key, row, tasks.FieldDescription, v)
}

// EditHours sets the hours of row on key. v must be blank or a
// non-negative number.
func (s *Session) EditHours(key string, row model.Row, v string) error {
	if err := tasks.ValidateHours(v); err != nil {
		return err
	}
	return s.edit(key, row, tasks.FieldHours, v)
}

func (s *Session) edit(key string, row model.Row, field tasks.Field, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, entry, err := s.day(key)
	if err != nil {
		return err
	}
	if !tasks.PolicyFor(day, entry).Editable() {
		return fmt.Errorf("editing %s: %w", key, ErrNotAllowed)
	}
	entry, changed := tasks.EditRow(entry, row, field, v, s.gen)
	if changed {
		s.store.Save(s.entries, s.userID, key, entry)
	}
	return nil
}

// RemoveTask deletes task id from key.
func (s *Session) RemoveTask(key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, entry, err := s.day(key)
	if err != nil {
		return err
	}
	if !hasTask(entry, id) {
		return fmt.Errorf("%w %q on %s", ErrNoSuchTask, id, key)
	}
	row := model.Row{Task: model.Task{ID: id}}
	if !tasks.PolicyFor(day, entry).CanRemove(row) {
		return fmt.Errorf("removing %q on %s: %w", id, key, ErrNotAllowed)
	}
	s.store.Save(s.entries, s.userID, key, tasks.Remove(entry, id))
	return nil
}

// ToggleLeave flips the leave flag of key.
func (s *Session) ToggleLeave(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, entry, err := s.day(key)
	if err != nil {
		return err
	}
	if !tasks.PolicyFor(day, entry).CanToggleLeave() {
		return fmt.Errorf("marking leave on %s: %w", key, ErrNotAllowed)
	}
	s.store.Save(s.entries, s.userID, key, tasks.ToggleLeave(entry))
	return nil
}

// Flush waits for queued remote writes.
func (s *Session) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

// day resolves key and its entry. Callers hold mu.
func (s *Session) day(key string) (calendar.Day, model.DayEntry, error) {
	t, err := calendar.ParseKey(key, s.sel.Date.Location())
	if err != nil {
		return calendar.Day{}, model.DayEntry{}, err
	}
	return calendar.NewDay(t), s.entries.Entry(key), nil
}

func hasTask(e model.DayEntry, id string) bool {
	for _, t := range e.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
