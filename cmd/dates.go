package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/model"
)

// parseDate accepts today, yesterday, tomorrow, YYYY-MM-DD or DD/MM/YYYY,
// relative to now and in now's location.
func parseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return calendar.StartOfDay(now), nil
	case "yesterday":
		return calendar.StartOfDay(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return calendar.StartOfDay(now.AddDate(0, 0, 1)), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := calendar.ParseKey(s, now.Location()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadDate, s)
}

// dateKeyArg resolves a date argument to its key.
func dateKeyArg(s string) (string, error) {
	t, err := parseDate(s, time.Now())
	if err != nil {
		return "", err
	}
	return calendar.Key(t), nil
}

// rowArg picks a displayed row by its 1-based number.
func rowArg(rows []model.Row, s string) (model.Row, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || n < 1 || n > len(rows) {
		return model.Row{}, fmt.Errorf("row must be a number between 1 and %d, got %q", len(rows), s)
	}
	return rows[n-1], nil
}
