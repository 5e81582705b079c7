package tui

import (
	"os"
	"strconv"
	"strings"

	"opsboard/internal/hospital"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the palette handed to every render function. Nothing below the
// program entry point reads the terminal background or env on its own.
type Theme struct {
	Dark  bool
	ASCII bool

	Fg         lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	AccentFg   lipgloss.Color
	Track      lipgloss.Color
	Fill       lipgloss.Color
	SelectedBg lipgloss.Color

	OK       lipgloss.Color
	Watch    lipgloss.Color
	Critical lipgloss.Color
}

func LightTheme() Theme {
	return Theme{
		Fg:         "235",
		Muted:      "240",
		Accent:     "27",
		AccentFg:   "255",
		Track:      "250",
		Fill:       "33",
		SelectedBg: "#e9e9e9",
		OK:         "28",
		Watch:      "172",
		Critical:   "160",
	}
}

func DarkTheme() Theme {
	return Theme{
		Dark:       true,
		Fg:         "252",
		Muted:      "243",
		Accent:     "62",
		AccentFg:   "235",
		Track:      "238",
		Fill:       "69",
		SelectedBg: "#262626",
		OK:         "78",
		Watch:      "214",
		Critical:   "203",
	}
}

// ResolveTheme picks a palette once at startup.
//
// Priority:
// 1) OPSBOARD_TUI_THEME=light|dark|auto
// 2) pref (config.yaml theme)
// 3) COLORFGBG heuristic ("15;0" = fg;bg)
// 4) lipgloss background detection
func ResolveTheme(pref string) Theme {
	choice := strings.ToLower(strings.TrimSpace(os.Getenv("OPSBOARD_TUI_THEME")))
	if choice == "" || choice == "auto" {
		choice = strings.ToLower(strings.TrimSpace(pref))
	}
	var dark bool
	switch choice {
	case "light":
		dark = false
	case "dark":
		dark = true
	default:
		dark = detectDarkBackground()
	}

	th := LightTheme()
	if dark {
		th = DarkTheme()
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OPSBOARD_TUI_GLYPHS"))) {
	case "ascii":
		th.ASCII = true
	}
	return th
}

func detectDarkBackground() bool {
	// COLORFGBG avoids a terminal query, which can block on some terminals.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// xterm palette: 0-6 dark, 7-15 light.
			return bg < 7
		}
	}
	return lipgloss.HasDarkBackground()
}

// applyColorProfilePreference only honors NO_COLOR and otherwise follows the
// terminal. termenv.EnvColorProfile would also honor CLICOLOR, which can
// disable colors in a TUI by accident.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if profile != termenv.Ascii && (strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit")) {
		profile = termenv.TrueColor
	} else if profile == termenv.ANSI && strings.Contains(strings.ToLower(os.Getenv("TERM")), "256color") {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

func (t Theme) muted() lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(t.Muted)
	// Faint text on light terminals is often illegible.
	if t.Dark {
		st = st.Faint(true)
	}
	return st
}

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Fg)
}

func (t Theme) tabStyle(active bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1)
	if active {
		return st.Bold(true).Foreground(t.AccentFg).Background(t.Accent)
	}
	return st.Foreground(t.Muted)
}

func (t Theme) levelColor(l hospital.Level) lipgloss.Color {
	switch l {
	case hospital.LevelCritical:
		return t.Critical
	case hospital.LevelWatch:
		return t.Watch
	default:
		return t.OK
	}
}

func (t Theme) level(l hospital.Level) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(t.levelColor(l))
	if l == hospital.LevelCritical {
		st = st.Bold(true)
	}
	return st
}

// Glyphs.

func (t Theme) glyphDot() string {
	if t.ASCII {
		return "*"
	}
	return "●"
}

func (t Theme) glyphBar(filled bool) string {
	switch {
	case t.ASCII && filled:
		return "#"
	case t.ASCII:
		return "."
	case filled:
		return "█"
	default:
		return "░"
	}
}

func (t Theme) glyphTrack(filled bool) string {
	switch {
	case t.ASCII && filled:
		return "="
	case t.ASCII:
		return "-"
	case filled:
		return "━"
	default:
		return "─"
	}
}

func (t Theme) glyphThumb(dragging bool) string {
	switch {
	case t.ASCII && dragging:
		return "@"
	case t.ASCII:
		return "O"
	case dragging:
		return "◉"
	default:
		return "●"
	}
}

func (t Theme) glyphTick(major bool) string {
	switch {
	case t.ASCII && major:
		return "|"
	case t.ASCII:
		return "'"
	case major:
		return "┃"
	default:
		return "╵"
	}
}
