package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsboard/internal/timeofday"
)

// SaveWindow records the last committed timeline range for a view.
func (s Store) SaveWindow(ctx context.Context, view string, r timeofday.Range) error {
	view = strings.TrimSpace(view)
	if view == "" {
		return errors.New("window: missing view")
	}
	if err := r.Validate(); err != nil {
		return err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO windows(view, start_min, end_min, updated_at_unixms) VALUES(?, ?, ?, ?)`,
		view, r.Start.Minutes(), r.End.Minutes(), time.Now().UTC().UnixMilli())
	return err
}

// LoadWindow returns ErrNotFound when nothing was saved for view.
func (s Store) LoadWindow(ctx context.Context, view string) (timeofday.Range, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return timeofday.Range{}, err
	}
	defer db.Close()

	var startMin, endMin int
	err = db.QueryRowContext(ctx, `SELECT start_min, end_min FROM windows WHERE view = ?`, strings.TrimSpace(view)).Scan(&startMin, &endMin)
	if errors.Is(err, sql.ErrNoRows) {
		return timeofday.Range{}, fmt.Errorf("window %q: %w", view, ErrNotFound)
	}
	if err != nil {
		return timeofday.Range{}, err
	}
	return timeofday.NewRange(timeofday.FromMinutes(startMin), timeofday.FromMinutes(endMin))
}

// WindowOrDefault loads view's window, falling back to def on any error.
func (s Store) WindowOrDefault(ctx context.Context, view string, def timeofday.Range) timeofday.Range {
	r, err := s.LoadWindow(ctx, view)
	if err != nil {
		return def
	}
	return r
}
