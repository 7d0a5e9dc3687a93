package store

import (
	"context"
	"encoding/json"
)

// Row is one persisted day as the remote store sees it: the day's entry as an
// opaque JSON document, unique per (UserID, DateKey).
type Row struct {
	UserID  string          `json:"user_id"`
	DateKey string          `json:"date_key"`
	Data    json.RawMessage `json:"data"`
}

// RowStore is the remote row store. UpsertRow must insert or replace the row
// with the same (UserID, DateKey).
type RowStore interface {
	FetchRows(ctx context.Context, userID string) ([]Row, error)
	UpsertRow(ctx context.Context, row Row) error
}
