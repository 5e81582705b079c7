package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by theme + wrap width. WithAutoStyle can trigger terminal
	// background queries that block on some terminals.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders PDSA notes without block margins so they sit flush
// with the surrounding page.
func renderMarkdown(md string, width int, th Theme) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	key := markdownStyleName(th) + ":" + string(th.Fg) + ":" + strconv.Itoa(width)
	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		cfg := markdownStyleConfig(th)
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleName(th Theme) string {
	switch {
	case th.ASCII:
		return "ascii"
	case th.Dark:
		return "dark"
	default:
		return "light"
	}
}

func markdownStyleConfig(th Theme) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	switch markdownStyleName(th) {
	case "ascii":
		cfg = styles.ASCIIStyleConfig
	case "dark":
		cfg = styles.DarkStyleConfig
	default:
		cfg = styles.LightStyleConfig
	}

	zero := uint(0)
	cfg.Document.Margin = &zero
	cfg.Paragraph.Margin = &zero
	cfg.List.Margin = &zero

	fg := string(th.Fg)
	cfg.Text.Color = &fg
	cfg.Heading.Color = &fg
	cfg.H1.Color = &fg
	cfg.H2.Color = &fg
	cfg.H3.Color = &fg
	accent := string(th.Accent)
	cfg.Link.Color = &accent
	cfg.LinkText.Color = &accent
	// Emphasis inherits the base text color.
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	return cfg
}
