package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"opsboard/internal/autosave"
	"opsboard/internal/hospital"
	"opsboard/internal/store"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const planFlushTimeout = 2 * time.Second

type planSavedMsg struct {
	Plan hospital.RedStretchPlan
	Err  error
}

// planEditor edits one unit's red stretch plan at a time. Every keystroke
// re-arms the autosave debouncer; switching units or quitting flushes it.
type planEditor struct {
	store  store.Store
	units  []hospital.Unit
	quiet  time.Duration
	logger *zap.Logger

	unit    int
	area    textarea.Model
	editing bool
	saver   *autosave.Debouncer
	saved   chan planSavedMsg
	last    *hospital.RedStretchPlan
}

func newPlanEditor(s store.Store, units []hospital.Unit, unitID string, quiet time.Duration, logger *zap.Logger) planEditor {
	ta := textarea.New()
	ta.Placeholder = "Who opens which beds, who gets called in, when the ED escalates..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetWidth(60)
	ta.SetHeight(8)

	p := planEditor{
		store:  s,
		units:  units,
		quiet:  quiet,
		logger: logger,
		area:   ta,
		saved:  make(chan planSavedMsg, 8),
	}
	for i, u := range units {
		if strings.EqualFold(u.ID, unitID) {
			p.unit = i
		}
	}
	p.load()
	return p
}

func (p planEditor) unitID() string {
	if len(p.units) == 0 {
		return ""
	}
	return p.units[p.unit].ID
}

// load reads the current unit's plan and arms a fresh debouncer for it.
func (p *planEditor) load() {
	unit := p.unitID()
	p.last = nil
	text := ""
	if unit != "" {
		ctx, cancel := context.WithTimeout(context.Background(), planFlushTimeout)
		plan, err := p.store.LoadPlan(ctx, unit)
		cancel()
		switch {
		case err == nil:
			p.last = plan
			text = plan.Text
		case !errors.Is(err, store.ErrNotFound):
			p.logger.Warn("load plan failed", zap.String("unit", unit), zap.Error(err))
		}
	}
	p.area.SetValue(text)

	saved := p.saved
	s := p.store
	logger := p.logger
	p.saver = autosave.New(autosave.Opts{
		QuietPeriod: p.quiet,
		Logger:      logger.With(zap.String("unit", unit)),
		Save: func(ctx context.Context, content string) error {
			plan := &hospital.RedStretchPlan{UnitID: unit, Text: content}
			err := s.SavePlan(ctx, plan)
			select {
			case saved <- planSavedMsg{Plan: *plan, Err: err}:
			default:
				// The status line keeps the previous save time until the next result.
				logger.Debug("plan save result dropped", zap.String("unit", unit), zap.Bool("failed", err != nil))
			}
			return err
		},
	})
}

// close flushes pending edits and cancels the debounce timer.
func (p *planEditor) close() {
	if p.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), planFlushTimeout)
	defer cancel()
	if err := p.saver.Flush(ctx); err != nil {
		p.logger.Warn("flush plan failed", zap.String("unit", p.unitID()), zap.Error(err))
	}
	p.saver.Stop()
}

func (p *planEditor) cycleUnit() {
	if len(p.units) == 0 {
		return
	}
	p.close()
	p.unit = (p.unit + 1) % len(p.units)
	p.load()
}

func (p *planEditor) setSize(width, height int) {
	p.area.SetWidth(max(20, width))
	p.area.SetHeight(max(3, height))
}

func (p *planEditor) startEditing() tea.Cmd {
	p.editing = true
	return p.area.Focus()
}

func (p *planEditor) stopEditing() {
	p.editing = false
	p.area.Blur()
}

func (p planEditor) Update(msg tea.Msg) (planEditor, tea.Cmd) {
	before := p.area.Value()
	var cmd tea.Cmd
	p.area, cmd = p.area.Update(msg)
	if after := p.area.Value(); after != before {
		p.saver.Notify(after)
	}
	return p, cmd
}

// flushCmd saves immediately off the UI goroutine; the result arrives as a planSavedMsg.
func (p planEditor) flushCmd() tea.Cmd {
	saver := p.saver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), planFlushTimeout)
		defer cancel()
		_ = saver.Flush(ctx)
		return nil
	}
}

func waitForPlanSave(ch <-chan planSavedMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (p planEditor) status() string {
	switch {
	case p.saver != nil && p.saver.Pending():
		return "unsaved changes (autosave after " + p.quietLabel() + " idle)"
	case p.last != nil:
		return "saved " + p.last.UpdatedAt.Local().Format("15:04:05")
	default:
		return "no plan yet"
	}
}

func (p planEditor) quietLabel() string {
	if p.quiet <= 0 {
		return autosave.DefaultQuietPeriod.String()
	}
	return p.quiet.String()
}
