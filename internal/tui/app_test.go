package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"opsboard/internal/hospital"
	"opsboard/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T, dir string, cfg *store.Config) appModel {
	t.Helper()
	th := LightTheme()
	th.ASCII = true
	m := newAppModel(Options{
		Store:   store.Store{Dir: dir},
		Config:  cfg,
		Dataset: hospital.Seed(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
		Theme:   th,
	})
	// 101 columns => 97-cell track at x=2, same geometry as the timeline tests.
	return send(t, m, tea.WindowSizeMsg{Width: 101, Height: 40})
}

func send(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("expected appModel; got %T", next)
	}
	return am
}

// drive feeds msg and then every message its commands produce.
func drive(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next, cmd := m.Update(cur)
		m = next.(appModel)
		if cmd == nil {
			continue
		}
		if out := cmd(); out != nil {
			if _, quit := out.(tea.QuitMsg); !quit {
				queue = append(queue, out)
			}
		}
	}
	return m
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_DragOnORTabPersistsWindow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newTestApp(t, dir, nil)
	m = send(t, m, runeKey("5"))
	if m.tab != tabOR {
		t.Fatalf("expected OR tab; got %v", m.tab)
	}

	m = drive(t, m, press(26, 4))
	m = drive(t, m, motion(50, 4))
	m = drive(t, m, release(0, 0))

	if got := m.orWindow.Range().String(); got != "12:00-20:00" {
		t.Fatalf("unexpected OR window: %s", got)
	}
	if !strings.Contains(m.status, "or window 12:00-20:00") {
		t.Fatalf("expected save status; got %q", m.status)
	}

	s := store.Store{Dir: dir}
	r, err := s.LoadWindow(context.Background(), viewOR)
	if err != nil {
		t.Fatalf("LoadWindow: %v", err)
	}
	if r.String() != "12:00-20:00" {
		t.Fatalf("unexpected persisted window: %s", r)
	}

	// The discharge timeline is independent.
	if _, err := s.LoadWindow(context.Background(), viewDischarge); err == nil {
		t.Fatalf("expected no discharge window yet")
	}

	reopened := newTestApp(t, dir, nil)
	if got := reopened.orWindow.Range().String(); got != "12:00-20:00" {
		t.Fatalf("expected window restored on relaunch; got %s", got)
	}
}

func TestApp_SwitchingTabMidDragCommits(t *testing.T) {
	t.Parallel()

	m := newTestApp(t, t.TempDir(), nil)
	m = send(t, m, runeKey("4"))
	m = drive(t, m, press(82, 4))
	m = drive(t, m, motion(66, 4))
	if !m.dischargeWindow.ctrl.Dragging() {
		t.Fatalf("expected a drag in progress")
	}

	next, cmd := m.Update(runeKey("1"))
	m = next.(appModel)
	if m.tab != tabCensus {
		t.Fatalf("expected census tab")
	}
	if m.dischargeWindow.ctrl.Dragging() {
		t.Fatalf("expected the drag to end on tab switch")
	}
	msg := committed(t, cmd)
	if msg.View != viewDischarge || msg.Range.String() != "06:00-16:00" {
		t.Fatalf("unexpected commit: %+v", msg)
	}
}

func TestApp_DischargeWindowFiltersTable(t *testing.T) {
	t.Parallel()

	m := newTestApp(t, t.TempDir(), nil)
	m = send(t, m, runeKey("4"))
	all := len(m.discharges.Rows())
	if all == 0 {
		t.Fatalf("expected seeded discharges in the default window")
	}

	// Pull the end handle back to 10:00 (column 40).
	m = drive(t, m, press(82, 4))
	m = drive(t, m, motion(42, 4))
	m = drive(t, m, release(42, 4))

	w := m.dischargeWindow.Range()
	if w.String() != "06:00-10:00" {
		t.Fatalf("unexpected window: %s", w)
	}
	for _, row := range m.discharges.Rows() {
		if row[0] < "06:00" || row[0] >= "10:00" {
			t.Fatalf("row outside window: %v", row)
		}
	}
	if len(m.discharges.Rows()) >= all {
		t.Fatalf("expected fewer rows after narrowing; got %d of %d", len(m.discharges.Rows()), all)
	}

	m = send(t, m, runeKey("b"))
	for _, row := range m.discharges.Rows() {
		if row[4] == "-" {
			t.Fatalf("barrier filter kept %v", row)
		}
	}
}

func TestApp_PlanAutosavesAfterQuietPeriod(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newTestApp(t, dir, &store.Config{AutosaveDelay: "30ms"})
	m = send(t, m, runeKey("7"))
	m = send(t, m, runeKey("e"))
	if !m.plan.editing {
		t.Fatalf("expected edit mode")
	}
	for _, r := range "Open 4E" {
		m = send(t, m, runeKey(string(r)))
	}
	if !m.plan.saver.Pending() {
		t.Fatalf("expected a pending autosave")
	}

	select {
	case msg := <-m.plan.saved:
		if msg.Err != nil {
			t.Fatalf("autosave failed: %v", msg.Err)
		}
		if msg.Plan.Text != "Open 4E" || msg.Plan.UnitID != m.plan.unitID() {
			t.Fatalf("unexpected saved plan: %+v", msg.Plan)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for autosave")
	}

	p, err := store.Store{Dir: dir}.LoadPlan(context.Background(), m.plan.unitID())
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if p.Text != "Open 4E" {
		t.Fatalf("unexpected stored plan: %q", p.Text)
	}
	m.plan.close()
}

func TestApp_QuitFlushesPlanAndSavesState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Long quiet period: only the flush on quit can save.
	m := newTestApp(t, dir, &store.Config{AutosaveDelay: "1h"})
	m = send(t, m, runeKey("7"))
	m = send(t, m, runeKey("u"))
	unit := m.plan.unitID()
	m = send(t, m, runeKey("e"))
	m = send(t, m, runeKey("x"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.plan.editing {
		t.Fatalf("expected esc to leave edit mode")
	}

	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}

	s := store.Store{Dir: dir}
	p, err := s.LoadPlan(context.Background(), unit)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if p.Text != "x" {
		t.Fatalf("expected flushed text; got %q", p.Text)
	}
	st, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Tab != "plan" || st.PlanUnit != unit {
		t.Fatalf("unexpected tui state: %+v", st)
	}

	reopened := newTestApp(t, dir, nil)
	if reopened.tab != tabPlan || reopened.plan.unitID() != unit || reopened.plan.area.Value() != "x" {
		t.Fatalf("expected plan tab restored for %s", unit)
	}
	reopened.plan.close()
}

func TestApp_AdvancePDSAPersists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newTestApp(t, dir, nil)
	m = send(t, m, runeKey("6"))
	before := m.ds.PDSA[0]
	m = drive(t, m, runeKey("a"))
	if m.ds.PDSA[0].Phase != before.Phase.Next() {
		t.Fatalf("expected phase %s; got %s", before.Phase.Next(), m.ds.PDSA[0].Phase)
	}

	reopened := newTestApp(t, dir, nil)
	if reopened.ds.PDSA[0].Phase != before.Phase.Next() {
		t.Fatalf("expected advanced phase after relaunch")
	}
	reopened = send(t, reopened, runeKey("6"))
	if !strings.Contains(reopened.View(), before.Title) {
		t.Fatalf("expected cycle title in view")
	}
}

func TestApp_ViewRendersEveryTab(t *testing.T) {
	t.Parallel()

	m := newTestApp(t, t.TempDir(), nil)
	want := map[tab]string{
		tabCensus:    "House occupancy",
		tabBeds:      "Avail",
		tabStaffing:  "Sched",
		tabDischarge: "Discharge window",
		tabOR:        "Cases in window",
		tabPDSA:      "Improvement cycles",
		tabPlan:      "Red stretch plan",
	}
	for i := tab(0); i < tabCount; i++ {
		m = send(t, m, runeKey(string(rune('1'+int(i)))))
		v := m.View()
		if !strings.Contains(v, want[i]) {
			t.Fatalf("tab %s: expected %q in view:\n%s", i, want[i], v)
		}
		if n := len(strings.Split(v, "\n")); n != 40 {
			t.Fatalf("tab %s: expected 40 lines; got %d", i, n)
		}
	}
}
