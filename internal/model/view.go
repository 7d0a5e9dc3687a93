package model

import (
	"fmt"
	"strings"
)

// ViewMode selects how many days the grid shows.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// ParseViewMode converts user input into a ViewMode.
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewDay, ViewWeek, ViewMonth:
		return m, nil
	}
	return "", fmt.Errorf("invalid view mode %q (want day, week or month)", s)
}
