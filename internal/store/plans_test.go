package store

import (
	"context"
	"errors"
	"testing"

	"opsboard/internal/hospital"
	"opsboard/internal/timeofday"
)

func TestPlans_SaveLoadHistory(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	if _, err := s.LoadPlan(ctx, "4W"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound; got %v", err)
	}

	p := &hospital.RedStretchPlan{UnitID: " 4W ", Text: "Open 4 flex beds on 4E"}
	if err := s.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if p.UnitID != "4W" || p.Revision == "" || p.UpdatedAt.IsZero() {
		t.Fatalf("expected save to fill metadata; got %+v", p)
	}
	first := p.Revision

	p.Text = "Open 4 flex beds on 4E; call in float pool"
	if err := s.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan (2): %v", err)
	}
	if p.Revision == first {
		t.Fatalf("expected a new revision")
	}

	got, err := s.LoadPlan(ctx, "4W")
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if got.Text != p.Text || got.Revision != p.Revision {
		t.Fatalf("unexpected plan: %+v", got)
	}

	hist, err := s.PlanHistory(ctx, "4W")
	if err != nil {
		t.Fatalf("PlanHistory: %v", err)
	}
	if len(hist) != 2 || hist[0].Revision != p.Revision || hist[1].Revision != first {
		t.Fatalf("unexpected history: %+v", hist)
	}

	if err := s.SavePlan(ctx, &hospital.RedStretchPlan{UnitID: "ICU", Text: "Divert"}); err != nil {
		t.Fatalf("SavePlan ICU: %v", err)
	}
	all, err := s.ListPlans(ctx)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(all) != 2 || all[0].UnitID != "4W" || all[1].UnitID != "ICU" {
		t.Fatalf("unexpected plans: %+v", all)
	}

	if err := s.SavePlan(ctx, &hospital.RedStretchPlan{Text: "x"}); err == nil {
		t.Fatalf("expected missing unit error")
	}
}

func TestWindows_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	if _, err := s.LoadWindow(ctx, "or"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound; got %v", err)
	}
	if got := s.WindowOrDefault(ctx, "or", timeofday.DefaultRange()); got != timeofday.DefaultRange() {
		t.Fatalf("expected default; got %s", got)
	}

	want := timeofday.Range{Start: timeofday.MustNew(7, 15), End: timeofday.EndOfDay()}
	if err := s.SaveWindow(ctx, "or", want); err != nil {
		t.Fatalf("SaveWindow: %v", err)
	}
	got, err := s.LoadWindow(ctx, "or")
	if err != nil {
		t.Fatalf("LoadWindow: %v", err)
	}
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}

	bad := timeofday.Range{Start: timeofday.MustNew(9, 0), End: timeofday.MustNew(9, 0)}
	if err := s.SaveWindow(ctx, "or", bad); !errors.Is(err, timeofday.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange; got %v", err)
	}
}
