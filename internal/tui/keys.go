package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	JumpTab  key.Binding
	Handle   key.Binding
	Nudge    key.Binding
	NudgeBig key.Binding
	Unit     key.Binding
	Barrier  key.Binding
	Up       key.Binding
	Down     key.Binding
	Advance  key.Binding
	Edit     key.Binding
	Save     key.Binding
	Done     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextTab:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev tab")),
		JumpTab:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "jump")),
		Handle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "start/end")),
		Nudge:    key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "15m")),
		NudgeBig: key.NewBinding(key.WithKeys("shift+left", "shift+right"), key.WithHelp("shift+←/→", "1h")),
		Unit:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unit")),
		Barrier:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "barriers only")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Advance:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "advance phase")),
		Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save now")),
		Done:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
	}
}

// bindingsFor lists the help entries shown in the footer for the current screen.
func (k keyMap) bindingsFor(t tab, editing bool) []key.Binding {
	if editing {
		return []key.Binding{k.Save, k.Done}
	}
	out := []key.Binding{k.PrevTab, k.NextTab, k.JumpTab}
	switch t {
	case tabDischarge:
		out = append(out, k.Handle, k.Nudge, k.NudgeBig, k.Unit, k.Barrier, k.Up, k.Down)
	case tabOR:
		out = append(out, k.Handle, k.Nudge, k.NudgeBig)
	case tabPDSA:
		out = append(out, k.Up, k.Down, k.Advance)
	case tabPlan:
		out = append(out, k.Unit, k.Edit)
	}
	return append(out, k.Quit)
}
