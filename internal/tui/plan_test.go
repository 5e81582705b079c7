package tui

import (
	"context"
	"testing"
	"time"

	"opsboard/internal/hospital"
	"opsboard/internal/store"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPlanEditor_FullResultQueueStillSavesAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dir := t.TempDir()
	ds := hospital.Seed(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	p := newPlanEditor(store.Store{Dir: dir}, ds.Units, ds.Units[0].ID, time.Hour, zap.New(core))
	defer p.close()

	for i := 0; i < cap(p.saved); i++ {
		p.saved <- planSavedMsg{}
	}

	p.saver.Notify("call float pool")
	if err := p.saver.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := store.Store{Dir: dir}.LoadPlan(context.Background(), p.unitID())
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if got.Text != "call float pool" {
		t.Fatalf("unexpected stored plan: %q", got.Text)
	}
	if n := logs.FilterMessage("plan save result dropped").Len(); n != 1 {
		t.Fatalf("expected one dropped-result log; got %d", n)
	}
	if len(p.saved) != cap(p.saved) {
		t.Fatalf("queue should still be full")
	}
}
