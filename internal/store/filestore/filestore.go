package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/store"
)

// Store keeps one JSON file per user and day under Base:
// <base>/<user>/YYYY/MM/DD.json.
type Store struct {
	Base string
}

// New returns a Store rooted at base.
func New(base string) *Store {
	return &Store{Base: base}
}

// dayFile is the document stored in each daily JSON file.
type dayFile struct {
	DateKey string          `json:"date_key"`
	Data    json.RawMessage `json:"data"`
}

func (s *Store) userDir(userID string) string {
	return filepath.Join(s.Base, url.PathEscape(userID))
}

// dayFilePath returns the path for the given date's JSON file.
func (s *Store) dayFilePath(userID string, t time.Time) string {
	return filepath.Join(s.userDir(userID), t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// FetchRows loads every day file of userID, oldest first. A corrupt file is
// moved aside to <file>.corrupt and reported as an error.
func (s *Store) FetchRows(ctx context.Context, userID string) ([]store.Row, error) {
	dir := s.userDir(userID)
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error listing %s: %w", dir, err)
	}
	sort.Strings(paths)

	rows := make([]store.Row, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		df, err := readDayFile(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, store.Row{UserID: userID, DateKey: df.DateKey, Data: df.Data})
	}
	return rows, nil
}

func readDayFile(path string) (dayFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	var df dayFile
	if err := json.Unmarshal(data, &df); err != nil || df.DateKey == "" {
		if err == nil {
			err = errors.New("missing date_key")
		}
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return dayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// UpsertRow atomically writes the day file for row.
func (s *Store) UpsertRow(ctx context.Context, row store.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	day, err := calendar.ParseKey(row.DateKey, time.UTC)
	if err != nil {
		return err
	}
	path := s.dayFilePath(row.UserID, day)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(dayFile{DateKey: row.DateKey, Data: row.Data}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
