package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/Tiliavir/daily-hours/internal/ids"
	"github.com/Tiliavir/daily-hours/internal/model"
)

// ErrClosed is reported for writes issued after Close.
var ErrClosed = errors.New("store closed")

// MigrationResult holds counters for one Load.
type MigrationResult struct {
	Loaded   int
	Skipped  int
	Migrated int
	Failed   int
}

// Adapter sits between the in-memory Collection and a RowStore. Local
// updates are applied immediately; remote writes are queued per date key
// and applied in issue order. Remote failures are logged, never returned.
type Adapter struct {
	rows RowStore
	gen  ids.Generator
	log  *log.Logger
	ctx  context.Context

	mu       sync.Mutex
	idle     *sync.Cond
	queues   map[string]*keyQueue
	inflight int
	closed   bool
}

type write struct {
	row  Row
	done chan error
}

type keyQueue struct {
	pending []write
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets where swallowed remote errors are reported.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithIDGenerator sets the id source for tasks created during migration.
func WithIDGenerator(gen ids.Generator) Option {
	return func(a *Adapter) { a.gen = gen }
}

// NewAdapter returns an Adapter writing through rows.
func NewAdapter(rows RowStore, opts ...Option) *Adapter {
	a := &Adapter{
		rows:   rows,
		gen:    ids.UUID,
		log:    log.New(io.Discard, "", 0),
		ctx:    context.Background(),
		queues: map[string]*keyQueue{},
	}
	a.idle = sync.NewCond(&a.mu)
	for _, o := range opts {
		o(a)
	}
	return a
}

// Load fetches all of userID's entries. Old-shaped entries are converted and
// written back one at a time before Load returns. A failed fetch yields an
// empty collection.
func (a *Adapter) Load(ctx context.Context, userID string) (*Collection, MigrationResult) {
	var res MigrationResult
	c := NewCollection()

	rows, err := a.rows.FetchRows(ctx, userID)
	if err != nil {
		a.log.Printf("Error fetching entries for %s: %v", userID, err)
		return c, res
	}

	var dirty []string
	for _, r := range rows {
		d, err := Decode(r.Data)
		if err != nil {
			a.log.Printf("Skipping entry %s: %v", r.DateKey, err)
			res.Skipped++
			continue
		}
		e, changed := d.Normalize(a.gen)
		c.Set(r.DateKey, e)
		res.Loaded++
		if changed {
			dirty = append(dirty, r.DateKey)
		}
	}

	for _, key := range dirty {
		if err := <-a.enqueue(userID, key, c.Entry(key)); err != nil {
			a.log.Printf("Error migrating entry %s: %v", key, err)
			res.Failed++
			continue
		}
		res.Migrated++
	}
	return c, res
}

// Save stores e in c right away and queues the remote upsert.
func (a *Adapter) Save(c *Collection, userID, key string, e model.DayEntry) {
	c.Set(key, e)
	a.enqueue(userID, key, e)
}

// SaveWait is Save, but waits for the remote write and returns its error.
// The local update stays in place either way.
func (a *Adapter) SaveWait(ctx context.Context, c *Collection, userID, key string, e model.DayEntry) error {
	c.Set(key, e)
	select {
	case err := <-a.enqueue(userID, key, e):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every queued write has been attempted.
func (a *Adapter) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.mu.Lock()
		for a.inflight > 0 {
			a.idle.Wait()
		}
		a.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further writes and flushes the queued ones.
func (a *Adapter) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush(ctx)
}

func (a *Adapter) enqueue(userID, key string, e model.DayEntry) <-chan error {
	done := make(chan error, 1)
	data, err := json.Marshal(e)
	if err != nil {
		done <- err
		return done
	}
	w := write{row: Row{UserID: userID, DateKey: key, Data: data}, done: done}

	qk := userID + "\x00" + key
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		done <- ErrClosed
		return done
	}
	a.inflight++
	if q, ok := a.queues[qk]; ok {
		q.pending = append(q.pending, w)
		return done
	}
	q := &keyQueue{pending: []write{w}}
	a.queues[qk] = q
	go a.drain(qk, q)
	return done
}

// drain applies the writes of one key in order. It owns q until the queue
// runs empty and is removed from the map.
func (a *Adapter) drain(qk string, q *keyQueue) {
	for {
		a.mu.Lock()
		if len(q.pending) == 0 {
			delete(a.queues, qk)
			a.mu.Unlock()
			return
		}
		w := q.pending[0]
		q.pending = q.pending[1:]
		a.mu.Unlock()

		err := a.rows.UpsertRow(a.ctx, w.row)
		if err != nil {
			a.log.Printf("Error saving entry %s: %v", w.row.DateKey, err)
		}
		w.done <- err

		a.mu.Lock()
		a.inflight--
		if a.inflight == 0 {
			a.idle.Broadcast()
		}
		a.mu.Unlock()
	}
}
