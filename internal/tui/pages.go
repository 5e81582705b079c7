package tui

import (
	"fmt"
	"strconv"
	"strings"

	"opsboard/internal/hospital"
	"opsboard/internal/timeofday"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type column struct {
	title string
	width int
	right bool
}

// renderGrid lays out pre-styled cells in fixed-width columns. bubbles/table
// measures raw bytes, so colored cells are laid out here instead.
func renderGrid(th Theme, cols []column, rows [][]string) string {
	var b strings.Builder
	hdr := make([]string, len(cols))
	for i, c := range cols {
		hdr[i] = cell(c, c.title)
	}
	b.WriteString(th.header().Render(strings.Join(hdr, " ")))
	for _, r := range rows {
		b.WriteString("\n")
		parts := make([]string, len(cols))
		for i, c := range cols {
			v := ""
			if i < len(r) {
				v = r[i]
			}
			parts[i] = cell(c, v)
		}
		b.WriteString(strings.Join(parts, " "))
	}
	return b.String()
}

func cell(c column, v string) string {
	if c.right {
		return padLeft(v, c.width)
	}
	return fitCell(v, c.width)
}

func meter(th Theme, pct float64, width int, l hospital.Level) string {
	if width <= 0 {
		return ""
	}
	n := int(pct / 100 * float64(width))
	n = max(0, min(width, n))
	return th.level(l).Render(strings.Repeat(th.glyphBar(true), n)) +
		th.muted().Render(strings.Repeat(th.glyphBar(false), width-n))
}

func renderCensus(th Theme, ds *hospital.Dataset, thr hospital.Thresholds) string {
	cols := []column{
		{title: "Unit", width: 22},
		{title: "Occ", width: 7, right: true},
		{title: "Occ%", width: 5, right: true},
		{title: "", width: 12},
		{title: "Proj", width: 5, right: true},
		{title: "Proj%", width: 6, right: true},
		{title: "Board", width: 5, right: true},
	}
	var rows [][]string
	for _, s := range ds.CensusSummaries(thr) {
		lv := th.level(s.Level)
		rows = append(rows, []string{
			th.level(s.Level).Render(th.glyphDot()) + " " + s.UnitName,
			fmt.Sprintf("%d/%d", s.Occupied, s.StaffedBeds),
			lv.Render(hospital.FormatPercent(s.Occupancy)),
			meter(th, s.Occupancy, 12, s.Level),
			strconv.Itoa(s.ProjectedCensus),
			th.level(thr.Occupancy(s.ProjectedOccupancy)).Render(hospital.FormatPercent(s.ProjectedOccupancy)),
			strconv.Itoa(s.Boarders),
		})
	}
	house := ds.HospitalOccupancy()
	summary := th.header().Render("House occupancy ") +
		th.level(thr.Occupancy(house)).Render(hospital.FormatPercent(house))
	return summary + "\n\n" + renderGrid(th, cols, rows)
}

func renderBeds(th Theme, ds *hospital.Dataset, thr hospital.Thresholds) string {
	cols := []column{
		{title: "Unit", width: 22},
		{title: "Total", width: 5, right: true},
		{title: "Occ", width: 5, right: true},
		{title: "Clean", width: 5, right: true},
		{title: "Dirty", width: 5, right: true},
		{title: "Block", width: 5, right: true},
		{title: "Avail", width: 5, right: true},
	}
	var rows [][]string
	for _, s := range ds.BedSummaries(thr) {
		avail := strconv.Itoa(s.Available)
		rows = append(rows, []string{
			th.level(s.Level).Render(th.glyphDot()) + " " + s.UnitName,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Occupied),
			strconv.Itoa(s.Clean),
			strconv.Itoa(s.Dirty),
			strconv.Itoa(s.Blocked),
			th.level(s.Level).Render(avail),
		})
	}
	return renderGrid(th, cols, rows)
}

func renderStaffing(th Theme, ds *hospital.Dataset, thr hospital.Thresholds) string {
	cols := []column{
		{title: "Unit", width: 22},
		{title: "Shift", width: 6},
		{title: "Role", width: 6},
		{title: "Req", width: 4, right: true},
		{title: "Sched", width: 5, right: true},
		{title: "Gap", width: 4, right: true},
		{title: "Fill", width: 5, right: true},
	}
	var rows [][]string
	for _, s := range ds.StaffingSummaries(thr) {
		gap := strconv.Itoa(s.Gap)
		if s.Gap > 0 {
			gap = th.level(s.Level).Render(gap)
		}
		rows = append(rows, []string{
			s.UnitName,
			s.Shift,
			s.Role,
			strconv.Itoa(s.Required),
			strconv.Itoa(s.Scheduled),
			gap,
			th.level(s.Level).Render(hospital.FormatPercent(s.Fill)),
		})
	}
	return renderGrid(th, cols, rows)
}

func renderOR(th Theme, ds *hospital.Dataset, window, prime timeofday.Range, thr hospital.Thresholds) string {
	cols := []column{
		{title: "Room", width: 6},
		{title: "Cases", width: 5, right: true},
		{title: "Booked", width: 8, right: true},
		{title: "Util", width: 5, right: true},
		{title: "", width: 20},
		{title: "Prime", width: 8, right: true},
		{title: "Non-prime", width: 9, right: true},
	}
	var rows [][]string
	for _, r := range ds.ORUtilization(window, prime, thr) {
		rows = append(rows, []string{
			r.Room,
			strconv.Itoa(r.Cases),
			hospital.FormatMinutes(r.BookedMinutes),
			th.level(r.Level).Render(hospital.FormatPercent(r.Utilization)),
			meter(th, r.Utilization, 20, r.Level),
			hospital.FormatMinutes(r.PrimeMinutes),
			hospital.FormatMinutes(r.NonPrimeMinutes),
		})
	}

	var cases strings.Builder
	cases.WriteString(th.header().Render("Cases in window"))
	cases.WriteString(th.muted().Render(fmt.Sprintf("  prime time %s", prime)))
	for _, c := range ds.CasesIn(window) {
		mark := " "
		if hospital.IsPrimeTime(c, prime) {
			mark = lipgloss.NewStyle().Foreground(th.Accent).Render(th.glyphDot())
		}
		cases.WriteString("\n")
		cases.WriteString(fmt.Sprintf("%s %s  %-5s %-8s %s", mark, c.Scheduled, c.Room, c.Service, c.Procedure))
	}
	return renderGrid(th, cols, rows) + "\n\n" + cases.String()
}

func dischargeColumns(width int) []table.Column {
	barrier := max(12, width-8-6-8-6-8)
	return []table.Column{
		{Title: "Time", Width: 6},
		{Title: "Unit", Width: 6},
		{Title: "Patient", Width: 8},
		{Title: "Conf", Width: 4},
		{Title: "Barrier", Width: barrier},
	}
}

func dischargeRows(cands []hospital.DischargeCandidate) []table.Row {
	rows := make([]table.Row, 0, len(cands))
	for _, c := range cands {
		conf := ""
		if c.Confirmed {
			conf = "yes"
		}
		barrier := c.Barrier
		if barrier == "" {
			barrier = "-"
		}
		rows = append(rows, table.Row{c.ExpectedAt.String(), c.UnitID, c.PatientRef, conf, barrier})
	}
	return rows
}

func newDischargeTable(th Theme) table.Model {
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(th.Fg).BorderForeground(th.Track)
	st.Selected = st.Selected.Foreground(th.AccentFg).Background(th.Accent).Bold(false)
	return table.New(
		table.WithColumns(dischargeColumns(60)),
		table.WithFocused(true),
		table.WithHeight(8),
		table.WithStyles(st),
	)
}

func renderPDSA(th Theme, ds *hospital.Dataset, selected, width int) string {
	var list strings.Builder
	list.WriteString(th.header().Render("Improvement cycles"))
	for i, c := range ds.PDSA {
		line := fmt.Sprintf("%-6s #%d  %s", c.Phase.Label(), c.Iteration, c.Title)
		list.WriteString("\n")
		if i == selected {
			list.WriteString(lipgloss.NewStyle().Foreground(th.AccentFg).Background(th.Accent).Render(fitCell(line, max(20, width))))
		} else {
			list.WriteString(line)
		}
	}
	if selected < 0 || selected >= len(ds.PDSA) {
		return list.String()
	}
	c := ds.PDSA[selected]
	detail := []string{
		"",
		th.header().Render(c.Title),
		th.muted().Render(fmt.Sprintf("Owner %s  started %s  iteration %d", c.Owner, hospital.FormatDate(c.StartedOn), c.Iteration)),
		"Aim: " + c.Aim,
		"Phase: " + phaseStrip(th, c.Phase),
	}
	if notes := renderMarkdown(c.Notes, width, th); notes != "" {
		detail = append(detail, "", notes)
	}
	return list.String() + "\n" + strings.Join(detail, "\n")
}

func phaseStrip(th Theme, cur hospital.Phase) string {
	parts := make([]string, 0, 4)
	for _, p := range []hospital.Phase{hospital.PhasePlan, hospital.PhaseDo, hospital.PhaseStudy, hospital.PhaseAct} {
		parts = append(parts, th.tabStyle(p == cur).Render(p.Label()))
	}
	return strings.Join(parts, " ")
}
