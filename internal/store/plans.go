package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsboard/internal/hospital"

	"github.com/google/uuid"
)

// SavePlan upserts the unit's red stretch plan and appends a history row.
// Revision and UpdatedAt are assigned here.
func (s Store) SavePlan(ctx context.Context, p *hospital.RedStretchPlan) error {
	if p == nil {
		return errors.New("nil plan")
	}
	unit := strings.TrimSpace(p.UnitID)
	if unit == "" {
		return errors.New("plan: missing unit id")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	rev := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO plans(unit_id, text, revision, updated_at_unixms) VALUES(?, ?, ?, ?)`,
		unit, p.Text, rev, now.UnixMilli()); err != nil {
		return fmt.Errorf("save plan %s: %w", unit, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO plan_history(revision, unit_id, text, updated_at_unixms) VALUES(?, ?, ?, ?)`,
		rev, unit, p.Text, now.UnixMilli()); err != nil {
		return fmt.Errorf("save plan history %s: %w", unit, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	p.UnitID = unit
	p.Revision = rev
	p.UpdatedAt = time.UnixMilli(now.UnixMilli()).UTC()
	return nil
}

// LoadPlan returns ErrNotFound when the unit has no plan yet.
func (s Store) LoadPlan(ctx context.Context, unitID string) (*hospital.RedStretchPlan, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var p hospital.RedStretchPlan
	var ms int64
	err = db.QueryRowContext(ctx, `SELECT unit_id, text, revision, updated_at_unixms FROM plans WHERE unit_id = ?`,
		strings.TrimSpace(unitID)).Scan(&p.UnitID, &p.Text, &p.Revision, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %q: %w", unitID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = time.UnixMilli(ms).UTC()
	return &p, nil
}

func (s Store) ListPlans(ctx context.Context) ([]hospital.RedStretchPlan, error) {
	return s.queryPlans(ctx, `SELECT unit_id, text, revision, updated_at_unixms FROM plans ORDER BY unit_id`)
}

// PlanHistory lists saved revisions for a unit, newest first.
func (s Store) PlanHistory(ctx context.Context, unitID string) ([]hospital.RedStretchPlan, error) {
	return s.queryPlans(ctx, `SELECT unit_id, text, revision, updated_at_unixms FROM plan_history WHERE unit_id = ? ORDER BY updated_at_unixms DESC, rowid DESC`,
		strings.TrimSpace(unitID))
}

func (s Store) queryPlans(ctx context.Context, q string, args ...any) ([]hospital.RedStretchPlan, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []hospital.RedStretchPlan{}
	for rows.Next() {
		var p hospital.RedStretchPlan
		var ms int64
		if err := rows.Scan(&p.UnitID, &p.Text, &p.Revision, &ms); err != nil {
			return nil, err
		}
		p.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
