package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotSignedIn is returned when no stored session exists.
var ErrNotSignedIn = errors.New("not signed in (run `hrs login`)")

// SessionFile persists a Session as JSON, e.g. ~/.hrs/auth/session.json.
type SessionFile struct {
	Path string
}

// Load reads the stored session.
func (f *SessionFile) Load() (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file (delete %s to sign in again): %w", f.Path, err)
	}
	if s.Token == nil || s.User.ID == "" {
		return nil, ErrNotSignedIn
	}
	return &s, nil
}

// Save writes s atomically with owner-only permissions.
func (f *SessionFile) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}
	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving session file: %w", err)
	}
	return nil
}

// Delete removes the stored session. A missing file is not an error.
func (f *SessionFile) Delete() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
