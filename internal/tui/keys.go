package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next        key.Binding
	Prev        key.Binding
	Toggle      key.Binding
	Up          key.Binding
	Down        key.Binding
	Close       key.Binding
	Remove      key.Binding
	Submit      key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
	CardUp      key.Binding
	CardDown    key.Binding
	Rate        key.Binding
	ExportJSON  key.Binding
	ExportCSV   key.Binding
	SaveFilter  key.Binding
	OpenFilters key.Binding
	Delete      key.Binding
	Reset       key.Binding
	History     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:        key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Toggle:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Up:          key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑/↓", "navigate")),
		Down:        key.NewBinding(key.WithKeys("down", "ctrl+n")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Remove:      key.NewBinding(key.WithKeys("x", "backspace"), key.WithHelp("x", "remove")),
		Submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "recommend")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
		CardUp:      key.NewBinding(key.WithKeys("k"), key.WithHelp("j/k", "card")),
		CardDown:    key.NewBinding(key.WithKeys("j")),
		Rate:        key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "rate")),
		ExportJSON:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e/E", "export json/csv")),
		ExportCSV:   key.NewBinding(key.WithKeys("E")),
		SaveFilter:  key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "save filter")),
		OpenFilters: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "saved filters")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reset:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		History:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "history")),
	}
}

func (k keyMap) formHelp(hasCards bool) []key.Binding {
	out := []key.Binding{k.Next, k.Toggle, k.Remove, k.Submit}
	if hasCards {
		out = append(out, k.CardUp, k.Rate, k.ExportJSON)
	}
	return append(out, k.SaveFilter, k.OpenFilters, k.History, k.Reset, k.Quit)
}

func (k keyMap) dropdownHelp(multi bool) []key.Binding {
	sel := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	if multi {
		sel = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle"))
	}
	return []key.Binding{k.Up, sel, k.Close, k.Next}
}

func (k keyMap) filtersHelp() []key.Binding {
	apply := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	nav := key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "navigate"))
	return []key.Binding{nav, apply, k.Delete, k.Close}
}

func (k keyMap) historyHelp() []key.Binding {
	apply := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "reuse"))
	nav := key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "navigate"))
	return []key.Binding{nav, apply, k.Close}
}

func (k keyMap) nameHelp() []key.Binding {
	save := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save"))
	return []key.Binding{save, k.Close}
}
