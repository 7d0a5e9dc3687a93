package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Tiliavir/daily-hours/internal/config"
	"github.com/Tiliavir/daily-hours/internal/model"
	"github.com/Tiliavir/daily-hours/internal/prefs"
	"github.com/Tiliavir/daily-hours/internal/store"
	"github.com/Tiliavir/daily-hours/internal/store/filestore"
	"github.com/Tiliavir/daily-hours/internal/store/sqlstore"
	"github.com/Tiliavir/daily-hours/internal/supabase"
	"github.com/Tiliavir/daily-hours/internal/view"
)

// flushTimeout bounds how long a command waits for queued writes on exit.
const flushTimeout = 30 * time.Second

// app is the wiring shared by the data commands.
type app struct {
	cfg     config.Config
	log     *log.Logger
	prefs   *prefs.Store
	userID  string
	adapter *store.Adapter
	closer  io.Closer
}

// newLogger returns the diagnostics log: stderr with -v, otherwise discarded.
func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "hrs: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// loadConfig reads and validates the configuration, exiting on failure.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// openApp connects to the configured backend. Storage errors exit with 2.
func openApp(ctx context.Context) *app {
	cfg := loadConfig()
	a := &app{
		cfg:   cfg,
		log:   newLogger(),
		prefs: prefs.Open(cfg.PrefsDir()),
	}

	rows, err := a.openRows(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// Remote save failures are reported even without -v.
	warn := log.New(os.Stderr, "Warning: ", 0)
	a.adapter = store.NewAdapter(rows, store.WithLogger(warn))
	return a
}

func (a *app) openRows(ctx context.Context) (store.RowStore, error) {
	switch a.cfg.Backend {
	case config.BackendSupabase:
		client := supabaseClient(a.cfg)
		file := &supabase.SessionFile{Path: a.cfg.SessionPath()}
		sess, err := file.Load()
		if err != nil {
			return nil, err
		}
		a.userID = sess.User.ID
		return client.Tables(ctx, client.TokenSource(ctx, sess, file)), nil
	case config.BackendSQLite:
		s, err := sqlstore.OpenSQLite(a.cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.userID, a.closer = a.cfg.User, s
		return s, nil
	case config.BackendPostgres:
		s, err := sqlstore.OpenPostgres(a.cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.userID, a.closer = a.cfg.User, s
		return s, nil
	default:
		a.userID = a.cfg.User
		return filestore.New(a.cfg.File.Dir), nil
	}
}

func supabaseClient(cfg config.Config) *supabase.Client {
	return supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey)
}

// openSession loads the user's entries for the selection given by --view
// and --date.
func (a *app) openSession(ctx context.Context) (*view.Session, error) {
	sel, err := selectionFromFlags(time.Now())
	if err != nil {
		return nil, err
	}
	sess := view.Open(ctx, a.adapter, a.userID, sel)
	m := sess.Migration()
	a.log.Printf("loaded %d entries (%d migrated, %d failed, %d skipped)", m.Loaded, m.Migrated, m.Failed, m.Skipped)
	return sess, nil
}

// close waits for queued writes and releases the backend.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := a.adapter.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: not all changes were saved: %v\n", err)
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Printf("closing backend: %v", err)
		}
	}
}

// selectionFromFlags builds the selection from --view and --date.
func selectionFromFlags(now time.Time) (view.Selection, error) {
	mode, err := model.ParseViewMode(viewFlag)
	if err != nil {
		return view.Selection{}, err
	}
	date, err := parseDate(dateFlag, now)
	if err != nil {
		return view.Selection{}, err
	}
	return view.Selection{Date: date, Mode: mode}, nil
}

var errBadDate = errors.New("date must be today, yesterday, tomorrow, YYYY-MM-DD or DD/MM/YYYY")
