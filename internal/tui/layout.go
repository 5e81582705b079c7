package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// fitPane forces s to exactly width columns (ANSI-aware) and, when height > 0,
// exactly height lines. Over-long lines end in an ellipsis.
func fitPane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		lines[i] = fitCell(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitCell pads or truncates a single styled line to width columns.
func fitCell(s string, width int) string {
	w := xansi.StringWidth(s)
	if w > width {
		switch {
		case width <= 0:
			return ""
		case width == 1:
			s = xansi.Cut(s, 0, 1)
		default:
			s = xansi.Cut(s, 0, width-1) + "…"
		}
		w = xansi.StringWidth(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// padLeft right-aligns s in width columns; used for numeric cells.
func padLeft(s string, width int) string {
	w := xansi.StringWidth(s)
	if w >= width {
		return fitCell(s, width)
	}
	return strings.Repeat(" ", width-w) + s
}
