package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"opsboard/internal/hospital"
	"opsboard/internal/store"
	"opsboard/internal/timeofday"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type tab int

const (
	tabCensus tab = iota
	tabBeds
	tabStaffing
	tabDischarge
	tabOR
	tabPDSA
	tabPlan
	tabCount
)

var tabNames = [tabCount]string{"census", "beds", "staffing", "discharge", "or", "pdsa", "plan"}

var tabTitles = [tabCount]string{"Census", "Beds", "Staffing", "Discharges", "OR", "PDSA", "Red stretch"}

func (t tab) String() string { return tabNames[t] }

func parseTab(s string) (tab, bool) {
	for i, n := range tabNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return tab(i), true
		}
	}
	return tabCensus, false
}

// Timeline view ids, also used as keys in the windows table.
const (
	viewOR        = "or"
	viewDischarge = "discharge"
)

// Screen rows. The timeline sits right below the tab bar so mouse hit
// testing does not depend on page content.
const (
	rowTimeline = 3
	pageMargin  = 2
)

type windowSavedMsg struct {
	View  string
	Range timeofday.Range
	Err   error
}

type cycleSavedMsg struct {
	ID  string
	Err error
}

// Options configures the dashboard. Theme is resolved once by the caller.
type Options struct {
	Store   store.Store
	Config  *store.Config
	Dataset *hospital.Dataset
	Theme   Theme
	Logger  *zap.Logger
}

type appModel struct {
	store  store.Store
	ds     *hospital.Dataset
	thr    hospital.Thresholds
	prime  timeofday.Range
	theme  Theme
	logger *zap.Logger

	width  int
	height int

	tab  tab
	keys keyMap
	help help.Model

	orWindow        timelineModel
	dischargeWindow timelineModel

	dischargeUnit string
	barrierOnly   bool
	discharges    table.Model

	pdsaSel int
	plan    planEditor

	status string
}

func newAppModel(opts Options) appModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ds := opts.Dataset
	if ds == nil {
		ds = hospital.Seed(time.Now())
	}
	cfg := opts.Config
	s := opts.Store

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ApplyCycleProgress(ctx, ds); err != nil {
		logger.Warn("load pdsa progress failed", zap.Error(err))
	}

	st, err := s.LoadTUIState()
	if err != nil || st == nil {
		st = &store.TUIState{Version: 1}
	}

	def := timeofday.DefaultRange()
	m := appModel{
		store:         s,
		ds:            ds,
		thr:           cfg.EffectiveThresholds(),
		prime:         cfg.PrimeTimeRange(),
		theme:         opts.Theme,
		logger:        logger,
		keys:          defaultKeyMap(),
		help:          help.New(),
		dischargeUnit: st.DischargeUnit,
		barrierOnly:   st.DischargeBarrierOnly,
		discharges:    newDischargeTable(opts.Theme),
	}
	if t, ok := parseTab(st.Tab); ok {
		m.tab = t
	}
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(opts.Theme.Fg)
	m.help.Styles.ShortDesc = opts.Theme.muted()
	m.help.Styles.ShortSeparator = opts.Theme.muted()

	m.orWindow = newTimeline(viewOR, "OR window", s.WindowOrDefault(ctx, viewOR, def), opts.Theme)
	m.dischargeWindow = newTimeline(viewDischarge, "Discharge window", s.WindowOrDefault(ctx, viewDischarge, def), opts.Theme)
	m.plan = newPlanEditor(s, ds.Units, st.PlanUnit, cfg.AutosaveQuietPeriod(), logger)

	m.layout()
	m.refreshDischarges()
	return m
}

func (m appModel) Init() tea.Cmd { return waitForPlanSave(m.plan.saved) }

func (m *appModel) layout() {
	w := m.width
	if w <= 0 {
		w = 100
	}
	h := m.height
	if h <= 0 {
		h = 30
	}
	trackW := w - 2*pageMargin
	m.orWindow.setGeometry(pageMargin, rowTimeline, trackW)
	m.dischargeWindow.setGeometry(pageMargin, rowTimeline, trackW)
	m.help.Width = w - 2*pageMargin

	m.discharges.SetColumns(dischargeColumns(trackW))
	m.discharges.SetWidth(trackW)
	m.discharges.SetHeight(max(3, h-rowTimeline-timelineHeight-4))

	m.plan.setSize(trackW, max(3, h-10))
}

func (m *appModel) refreshDischarges() {
	r := m.dischargeWindow.Range()
	cands := m.ds.FilterDischarges(hospital.DischargeFilter{
		UnitID:      m.dischargeUnit,
		BarrierOnly: m.barrierOnly,
		Window:      &r,
	})
	m.discharges.SetRows(dischargeRows(cands))
	if n := len(cands); n > 0 && m.discharges.Cursor() >= n {
		m.discharges.SetCursor(n - 1)
	}
}

func (m *appModel) cycleDischargeUnit() {
	ids := []string{""}
	for _, u := range m.ds.Units {
		ids = append(ids, u.ID)
	}
	next := 0
	for i, id := range ids {
		if id == m.dischargeUnit {
			next = (i + 1) % len(ids)
		}
	}
	m.dischargeUnit = ids[next]
}

// activeTimeline returns the timeline shown on the current tab, if any.
func (m *appModel) activeTimeline() *timelineModel {
	switch m.tab {
	case tabOR:
		return &m.orWindow
	case tabDischarge:
		return &m.dischargeWindow
	}
	return nil
}

// switchTab ends any drag in progress; a hidden timeline never sees the release.
func (m *appModel) switchTab(t tab) tea.Cmd {
	if t == m.tab {
		return nil
	}
	var cmd tea.Cmd
	if tl := m.activeTimeline(); tl != nil {
		*tl, cmd = tl.release()
	}
	if m.tab == tabPlan {
		m.plan.stopEditing()
	}
	m.tab = t
	return cmd
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case rangeCommittedMsg:
		m.logger.Info("range committed",
			zap.String("view", msg.View),
			zap.String("start", msg.Range.Start.String()),
			zap.String("end", msg.Range.End.String()))
		if msg.View == viewDischarge {
			m.refreshDischarges()
		}
		return m, m.saveWindowCmd(msg.View, msg.Range)

	case windowSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("save window failed", zap.String("view", msg.View), zap.Error(msg.Err))
			m.status = "window not saved: " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("%s window %s", msg.View, msg.Range)
		}
		return m, nil

	case planSavedMsg:
		if msg.Err != nil {
			m.status = "plan not saved: " + msg.Err.Error()
		} else {
			if msg.Plan.UnitID == m.plan.unitID() {
				p := msg.Plan
				m.plan.last = &p
			}
			m.status = "saved " + msg.Plan.UnitID + " plan"
		}
		return m, waitForPlanSave(m.plan.saved)

	case cycleSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("save pdsa progress failed", zap.String("cycle", msg.ID), zap.Error(msg.Err))
			m.status = "cycle not saved: " + msg.Err.Error()
		}
		return m, nil

	case tea.MouseMsg:
		if tl := m.activeTimeline(); tl != nil {
			var cmd tea.Cmd
			*tl, cmd = tl.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.tab == tabPlan && m.plan.editing {
		var cmd tea.Cmd
		m.plan, cmd = m.plan.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tab == tabPlan && m.plan.editing {
		switch {
		case msg.String() == "ctrl+c":
			return m.quit()
		case key.Matches(msg, m.keys.Done):
			m.plan.stopEditing()
			return m, nil
		case key.Matches(msg, m.keys.Save):
			return m, m.plan.flushCmd()
		}
		var cmd tea.Cmd
		m.plan, cmd = m.plan.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab((m.tab + tabCount - 1) % tabCount)
	case key.Matches(msg, m.keys.JumpTab):
		n := int(msg.Runes[0] - '1')
		return m, m.switchTab(tab(n))
	}

	switch m.tab {
	case tabDischarge:
		switch {
		case key.Matches(msg, m.keys.Unit):
			m.cycleDischargeUnit()
			m.refreshDischarges()
			return m, nil
		case key.Matches(msg, m.keys.Barrier):
			m.barrierOnly = !m.barrierOnly
			m.refreshDischarges()
			return m, nil
		case key.Matches(msg, m.keys.Up, m.keys.Down):
			var cmd tea.Cmd
			m.discharges, cmd = m.discharges.Update(msg)
			return m, cmd
		}
	case tabPDSA:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.pdsaSel = max(0, m.pdsaSel-1)
		case key.Matches(msg, m.keys.Down):
			m.pdsaSel = min(len(m.ds.PDSA)-1, m.pdsaSel+1)
		case key.Matches(msg, m.keys.Advance):
			return m, m.advanceCycle()
		}
		return m, nil
	case tabPlan:
		switch {
		case key.Matches(msg, m.keys.Unit):
			m.plan.cycleUnit()
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			return m, m.plan.startEditing()
		}
		return m, nil
	}

	if tl := m.activeTimeline(); tl != nil {
		var cmd tea.Cmd
		*tl, cmd = tl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) advanceCycle() tea.Cmd {
	if m.pdsaSel < 0 || m.pdsaSel >= len(m.ds.PDSA) {
		return nil
	}
	c := &m.ds.PDSA[m.pdsaSel]
	c.Advance()
	m.status = fmt.Sprintf("%s: %s (iteration %d)", c.Title, c.Phase.Label(), c.Iteration)
	s, snapshot := m.store, *c
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return cycleSavedMsg{ID: snapshot.ID, Err: s.SaveCycleProgress(ctx, snapshot)}
	}
}

func (m appModel) saveWindowCmd(view string, r timeofday.Range) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return windowSavedMsg{View: view, Range: r, Err: s.SaveWindow(ctx, view, r)}
	}
}

// quit flushes the plan editor and records where the user was.
func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.plan.close()
	st := &store.TUIState{
		Version:              1,
		Tab:                  m.tab.String(),
		DischargeUnit:        m.dischargeUnit,
		DischargeBarrierOnly: m.barrierOnly,
		PlanUnit:             m.plan.unitID(),
	}
	if err := m.store.SaveTUIState(st); err != nil {
		m.logger.Warn("save tui state failed", zap.Error(err))
	}
	return m, tea.Quit
}

func (m appModel) View() string {
	th := m.theme
	w := m.width
	if w <= 0 {
		w = 100
	}
	inner := w - 2*pageMargin
	pad := strings.Repeat(" ", pageMargin)

	header := th.header().Render("opsboard") + th.muted().Render("  as of "+hospital.FormatDate(m.ds.AsOf))
	tabs := make([]string, 0, tabCount)
	for i := tab(0); i < tabCount; i++ {
		tabs = append(tabs, th.tabStyle(i == m.tab).Render(fmt.Sprintf("%d %s", i+1, tabTitles[i])))
	}

	lines := []string{
		pad + header,
		pad + strings.Join(tabs, ""),
		"",
	}
	if tl := m.activeTimeline(); tl != nil {
		for _, ln := range strings.Split(tl.View(), "\n") {
			lines = append(lines, pad+ln)
		}
		lines = append(lines, "")
	}

	body := m.pageView(inner)
	for _, ln := range strings.Split(body, "\n") {
		lines = append(lines, pad+ln)
	}

	footer := []string{"", pad + th.muted().Render(m.statusLine()), pad + m.help.ShortHelpView(m.keys.bindingsFor(m.tab, m.plan.editing))}
	if m.height > 0 {
		bodyH := m.height - len(footer)
		return fitPane(strings.Join(lines, "\n"), w, bodyH) + "\n" + fitPane(strings.Join(footer, "\n"), w, 0)
	}
	return strings.Join(append(lines, footer...), "\n")
}

func (m appModel) statusLine() string {
	if m.tab == tabPlan {
		return m.plan.status()
	}
	return m.status
}

func (m appModel) pageView(width int) string {
	th := m.theme
	switch m.tab {
	case tabBeds:
		return renderBeds(th, m.ds, m.thr)
	case tabStaffing:
		return renderStaffing(th, m.ds, m.thr)
	case tabDischarge:
		unit := "all units"
		if m.dischargeUnit != "" {
			unit = m.ds.UnitName(m.dischargeUnit)
		}
		filter := th.muted().Render(fmt.Sprintf("%s  barriers only: %t  rows: %d", unit, m.barrierOnly, len(m.discharges.Rows())))
		return filter + "\n" + m.discharges.View()
	case tabOR:
		return renderOR(th, m.ds, m.orWindow.Range(), m.prime, m.thr)
	case tabPDSA:
		return renderPDSA(th, m.ds, m.pdsaSel, width)
	case tabPlan:
		title := th.header().Render("Red stretch plan  ") + lipgloss.NewStyle().Foreground(th.Accent).Render(m.ds.UnitName(m.plan.unitID()))
		if !m.plan.editing {
			title += th.muted().Render("  (e to edit)")
		}
		return title + "\n\n" + m.plan.area.View()
	default:
		return renderCensus(th, m.ds, m.thr)
	}
}
