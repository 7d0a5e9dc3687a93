package prefs

import (
	"fmt"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Theme is the colour scheme of the interface.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ThemeKey is the key the theme is stored under.
const ThemeKey = "app_theme"

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Store keeps local preferences as small files under a directory.
type Store struct {
	d *diskv.Diskv
}

// Open returns a Store rooted at dir. The directory is created on first write.
func Open(dir string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 1024,
	})}
}

// Theme returns the stored theme. A missing or unreadable value means Light.
func (s *Store) Theme() Theme {
	if !s.d.Has(ThemeKey) {
		return Light
	}
	v, err := s.d.Read(ThemeKey)
	if err != nil {
		return Light
	}
	t, err := ParseTheme(string(v))
	if err != nil {
		return Light
	}
	return t
}

// SetTheme stores t.
func (s *Store) SetTheme(t Theme) error {
	if err := s.d.Write(ThemeKey, []byte(t)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Store) ToggleTheme() (Theme, error) {
	t := s.Theme().Toggled()
	return t, s.SetTheme(t)
}
