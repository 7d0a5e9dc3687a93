package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/daily-hours/internal/store"
)

// pageSize stays at or below PostgREST's default max-rows.
const pageSize = 1000

var upsertHeaders = map[string]string{
	"Prefer": "resolution=merge-duplicates,return=minimal",
}

// Tables is an authenticated view on the project's tables. It implements
// store.RowStore over the timesheets table.
type Tables struct {
	c  *Client
	hc *http.Client
}

// Tables returns table access authorized by ts. ts is asked for a token on
// every request, so a source whose token changes is honoured right away.
// An *http.Client stored in ctx under oauth2.HTTPClient supplies the base
// transport.
func (c *Client) Tables(ctx context.Context, ts oauth2.TokenSource) *Tables {
	base := http.DefaultTransport
	if hc, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && hc.Transport != nil {
		base = hc.Transport
	}
	return &Tables{c: c, hc: &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: base},
		Timeout:   30 * time.Second,
	}}
}

type timesheetRow struct {
	UserID  string          `json:"user_id,omitempty"`
	DateKey string          `json:"date_key"`
	Data    json.RawMessage `json:"data"`
}

// FetchRows pages through all timesheet rows of userID.
func (t *Tables) FetchRows(ctx context.Context, userID string) ([]store.Row, error) {
	var all []store.Row
	for offset := 0; ; offset += pageSize {
		path := fmt.Sprintf("/rest/v1/timesheets?select=date_key,data&user_id=eq.%s&order=date_key&limit=%d&offset=%d",
			url.QueryEscape(userID), pageSize, offset)

		var page []timesheetRow
		if err := t.c.do(ctx, t.hc, http.MethodGet, path, "", nil, nil, &page); err != nil {
			return nil, fmt.Errorf("fetching timesheets: %w", err)
		}
		for _, r := range page {
			all = append(all, store.Row{UserID: userID, DateKey: r.DateKey, Data: r.Data})
		}
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// UpsertRow inserts or replaces the row keyed by (user_id, date_key).
func (t *Tables) UpsertRow(ctx context.Context, row store.Row) error {
	body := timesheetRow{UserID: row.UserID, DateKey: row.DateKey, Data: row.Data}
	err := t.c.do(ctx, t.hc, http.MethodPost, "/rest/v1/timesheets?on_conflict=user_id,date_key", "",
		upsertHeaders, body, nil)
	if err != nil {
		return fmt.Errorf("saving %s: %w", row.DateKey, err)
	}
	return nil
}

// Profile is the user's row in the profiles table.
type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
}

// Profile returns the profile of userID, or nil when there is none yet.
func (t *Tables) Profile(ctx context.Context, userID string) (*Profile, error) {
	var rows []Profile
	path := "/rest/v1/profiles?select=*&id=eq." + url.QueryEscape(userID)
	if err := t.c.do(ctx, t.hc, http.MethodGet, path, "", nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateProfile upserts p.
func (t *Tables) UpdateProfile(ctx context.Context, p Profile) error {
	if err := t.c.do(ctx, t.hc, http.MethodPost, "/rest/v1/profiles", "", upsertHeaders, p, nil); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}
