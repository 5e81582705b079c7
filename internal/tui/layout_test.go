package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestFitPane_PadsTruncatesAndFixesHeight(t *testing.T) {
	t.Parallel()

	got := fitPane("abcdef\nab", 4, 3)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines; got %d", len(lines))
	}
	if lines[0] != "abc…" || lines[1] != "ab  " || lines[2] != "    " {
		t.Fatalf("unexpected pane: %q", lines)
	}
}

func TestFitCell_IsANSIAware(t *testing.T) {
	t.Parallel()

	styled := lipgloss.NewStyle().Bold(true).Render("occupied") + "\x1b[31m!\x1b[0m"
	got := fitCell(styled, 12)
	if w := xansi.StringWidth(got); w != 12 {
		t.Fatalf("expected width 12; got %d (%q)", w, got)
	}
	if got := padLeft("95%", 5); got != "  95%" {
		t.Fatalf("unexpected right alignment: %q", got)
	}
}
