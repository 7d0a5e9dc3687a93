package store

import (
	"sort"
	"sync"

	"github.com/Tiliavir/daily-hours/internal/model"
)

// Collection is the local cache of one user's entries, keyed by date key.
// It is replaced wholesale on every load.
type Collection struct {
	mu      sync.RWMutex
	entries map[string]model.DayEntry
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{entries: map[string]model.DayEntry{}}
}

// Get returns a copy of the entry stored under key.
func (c *Collection) Get(key string) (model.DayEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return model.DayEntry{}, false
	}
	return e.Clone(), true
}

// Entry returns the entry under key, or an empty working-day entry.
func (c *Collection) Entry(key string) model.DayEntry {
	if e, ok := c.Get(key); ok {
		return e
	}
	return model.DayEntry{Tasks: []model.Task{}}
}

// Set stores e under key.
func (c *Collection) Set(key string, e model.DayEntry) {
	c.mu.Lock()
	c.entries[key] = e.Clone()
	c.mu.Unlock()
}

// Len returns the number of stored days.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns all date keys in lexical order.
func (c *Collection) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
