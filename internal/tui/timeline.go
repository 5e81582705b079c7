package tui

import (
	"fmt"
	"math"
	"strings"

	"opsboard/internal/hospital"
	"opsboard/internal/rangeselect"
	"opsboard/internal/timeofday"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	timelineMinWidth = 25
	timelineStep     = 15
	// Rows relative to the timeline origin.
	timelineRowTitle  = 0
	timelineRowTrack  = 1
	timelineRowTicks  = 2
	timelineRowLabels = 3
	timelineHeight    = 4
)

// rangeCommittedMsg is emitted once per completed drag (or keyboard nudge).
type rangeCommittedMsg struct {
	View  string
	Range timeofday.Range
}

// commitBox collects controller callbacks so Update can turn them into messages.
type commitBox struct {
	committed *timeofday.Range
	rejected  int
}

func (b *commitBox) take() (timeofday.Range, bool) {
	if b.committed == nil {
		return timeofday.Range{}, false
	}
	r := *b.committed
	b.committed = nil
	return r, true
}

type timelineModel struct {
	id    string
	title string
	ctrl  *rangeselect.Controller
	box   *commitBox
	theme Theme

	// Screen position of the title row and the track width in cells.
	x, y  int
	width int

	focus rangeselect.Handle
}

func newTimeline(id, title string, initial timeofday.Range, theme Theme) timelineModel {
	box := &commitBox{}
	ctrl := rangeselect.NewWithRange(initial)
	ctrl.OnChange = func(r timeofday.Range) { box.committed = &r }
	ctrl.OnRejectedMove = func(rangeselect.Rejection) { box.rejected++ }
	return timelineModel{
		id:    id,
		title: title,
		ctrl:  ctrl,
		box:   box,
		theme: theme,
		width: timelineMinWidth,
		focus: rangeselect.HandleStart,
	}
}

func (m *timelineModel) setGeometry(x, y, width int) {
	if width < timelineMinWidth {
		width = timelineMinWidth
	}
	m.x, m.y, m.width = x, y, width
}

func (m timelineModel) Range() timeofday.Range { return m.ctrl.Range() }

// Rejected counts candidates the controller ignored since start.
func (m timelineModel) Rejected() int { return m.box.rejected }

func (m timelineModel) bounds() rangeselect.Bounds {
	return rangeselect.Bounds{Left: float64(m.x), Width: float64(m.width - 1)}
}

func (m timelineModel) colFor(t timeofday.TimeOfDay) int {
	return int(math.Round(timeofday.ToPercentage(t) / 100 * float64(m.width-1)))
}

// handleAt returns the thumb under a pointer press, allowing one cell of slack.
func (m timelineModel) handleAt(x, y int) rangeselect.Handle {
	if y != m.y+timelineRowTrack && y != m.y+timelineRowTicks {
		return rangeselect.HandleNone
	}
	r := m.ctrl.Range()
	col := x - m.x
	ds := abs(col - m.colFor(r.Start))
	de := abs(col - m.colFor(r.End))
	switch {
	case ds > 1 && de > 1:
		return rangeselect.HandleNone
	case ds < de:
		return rangeselect.HandleStart
	case de < ds:
		return rangeselect.HandleEnd
	case col <= m.colFor(r.Start):
		// Overlapping thumbs: the side of the press decides.
		return rangeselect.HandleStart
	default:
		return rangeselect.HandleEnd
	}
}

func (m timelineModel) Update(msg tea.Msg) (timelineModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch {
		case msg.Action == tea.MouseActionRelease:
			// Releases arrive from anywhere on the screen.
			m.ctrl.PointerUp()
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			if h := m.handleAt(msg.X, msg.Y); h != rangeselect.HandleNone {
				m.ctrl.PointerDown(h)
				m.focus = h
			}
		case msg.Action == tea.MouseActionMotion && m.ctrl.Dragging():
			m.ctrl.PointerMove(float64(msg.X), m.bounds())
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if m.focus == rangeselect.HandleStart {
				m.focus = rangeselect.HandleEnd
			} else {
				m.focus = rangeselect.HandleStart
			}
		case "left":
			m.ctrl.Step(m.focus, -timelineStep)
		case "right":
			m.ctrl.Step(m.focus, timelineStep)
		case "shift+left":
			m.ctrl.Step(m.focus, -60)
		case "shift+right":
			m.ctrl.Step(m.focus, 60)
		}
	}
	return m, m.drain()
}

// release ends any drag, e.g. when the view is hidden mid-drag.
func (m timelineModel) release() (timelineModel, tea.Cmd) {
	m.ctrl.PointerUp()
	return m, m.drain()
}

func (m timelineModel) drain() tea.Cmd {
	r, ok := m.box.take()
	if !ok {
		return nil
	}
	id := m.id
	return func() tea.Msg { return rangeCommittedMsg{View: id, Range: r} }
}

func (m timelineModel) View() string {
	th := m.theme
	r := m.ctrl.Range()
	sc, ec := m.colFor(r.Start), m.colFor(r.End)
	dragging := m.ctrl.Dragging()
	active := m.ctrl.Active()

	title := th.header().Render(m.title) + "  " +
		lipgloss.NewStyle().Foreground(th.Accent).Bold(true).Render(r.Start.String()+" - "+r.End.String()) +
		th.muted().Render(fmt.Sprintf("  (%s)", hospital.FormatMinutes(r.Duration())))
	if dragging {
		title += th.muted().Render("  dragging " + active.String())
	} else {
		title += th.muted().Render("  tab: " + m.focus.String() + " handle")
	}

	trackSt := lipgloss.NewStyle().Foreground(th.Track)
	fillSt := lipgloss.NewStyle().Foreground(th.Fill)
	var track strings.Builder
	for c := 0; c < m.width; c++ {
		switch {
		case c == sc || c == ec:
			h := rangeselect.HandleStart
			if c == ec && (c != sc || active == rangeselect.HandleEnd || (!dragging && m.focus == rangeselect.HandleEnd)) {
				h = rangeselect.HandleEnd
			}
			track.WriteString(m.renderThumb(h, dragging && active == h))
		case c > sc && c < ec:
			track.WriteString(fillSt.Render(th.glyphTrack(true)))
		default:
			track.WriteString(trackSt.Render(th.glyphTrack(false)))
		}
	}

	ticks := make([]string, m.width)
	labels := make([]byte, m.width)
	for i := range ticks {
		ticks[i] = " "
		labels[i] = ' '
	}
	majorSt := lipgloss.NewStyle().Foreground(th.Fg)
	minorSt := th.muted()
	lastLabelEnd := -1
	for h := 0; h < 24; h++ {
		col := m.colFor(timeofday.TimeOfDay{Hour: h})
		major := h%4 == 0
		if major {
			ticks[col] = majorSt.Render(th.glyphTick(true))
		} else if ticks[col] == " " {
			ticks[col] = minorSt.Render(th.glyphTick(false))
		}
		if !major {
			continue
		}
		lbl := fmt.Sprintf("%02d:00", h)
		if col <= lastLabelEnd || col+len(lbl) > m.width {
			continue
		}
		copy(labels[col:], lbl)
		lastLabelEnd = col + len(lbl)
	}

	return strings.Join([]string{
		title,
		track.String(),
		strings.Join(ticks, ""),
		th.muted().Render(string(labels)),
	}, "\n")
}

func (m timelineModel) renderThumb(h rangeselect.Handle, enlarged bool) string {
	th := m.theme
	st := lipgloss.NewStyle().Foreground(th.Accent)
	if enlarged {
		st = st.Bold(true).Foreground(th.AccentFg).Background(th.Accent)
	} else if h == m.focus {
		st = st.Bold(true)
	}
	return st.Render(th.glyphThumb(enlarged))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
