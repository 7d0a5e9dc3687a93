package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Tiliavir/daily-hours/internal/store"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// Store keeps rows in a timesheets table keyed by (user_id, date_key).
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite opens (and creates if needed) the SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	// Expand tilde to home directory if present
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[1:])
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open(string(SQLite), path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return New(db, SQLite)
}

// OpenPostgres connects to PostgreSQL using dsn.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := sql.Open(string(Postgres), dsn)
	if err != nil {
		return nil, err
	}
	return New(db, Postgres)
}

// New wraps db and ensures the schema exists.
func New(db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS timesheets (
			user_id    TEXT NOT NULL,
			date_key   TEXT NOT NULL,
			data       TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date_key)
		)
	`)
	if err != nil {
		return fmt.Errorf("creating timesheets table: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FetchRows returns all rows of userID ordered by date key.
func (s *Store) FetchRows(ctx context.Context, userID string) ([]store.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT date_key, data FROM timesheets WHERE user_id = ? ORDER BY date_key`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying timesheets: %w", err)
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, err
		}
		out = append(out, store.Row{UserID: userID, DateKey: key, Data: json.RawMessage(data)})
	}
	return out, rows.Err()
}

// UpsertRow inserts the row or replaces the data of the existing one.
func (s *Store) UpsertRow(ctx context.Context, row store.Row) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO timesheets (user_id, date_key, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, date_key)
		DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`),
		row.UserID, row.DateKey, string(row.Data),
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", row.DateKey, err)
	}
	return nil
}
