package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"opsboard/internal/hospital"
)

// SaveCycleProgress persists the phase and iteration of a PDSA cycle.
func (s Store) SaveCycleProgress(ctx context.Context, c hospital.PDSACycle) error {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return fmt.Errorf("pdsa: missing cycle id")
	}
	switch c.Phase {
	case hospital.PhasePlan, hospital.PhaseDo, hospital.PhaseStudy, hospital.PhaseAct:
	default:
		return fmt.Errorf("pdsa %s: unknown phase %q", id, c.Phase)
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO pdsa_progress(cycle_id, phase, iteration, updated_at_unixms) VALUES(?, ?, ?, ?)`,
		id, string(c.Phase), c.Iteration, time.Now().UTC().UnixMilli())
	return err
}

// ApplyCycleProgress overlays saved progress onto the dataset's cycles.
// Progress rows for cycles no longer in the dataset are ignored.
func (s Store) ApplyCycleProgress(ctx context.Context, ds *hospital.Dataset) error {
	if ds == nil {
		return nil
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT cycle_id, phase, iteration FROM pdsa_progress`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id, phase string
		var iter int
		if err := rows.Scan(&id, &phase, &iter); err != nil {
			return err
		}
		if c, ok := ds.Cycle(id); ok {
			c.Phase = hospital.Phase(phase)
			c.Iteration = iter
		}
	}
	return rows.Err()
}
