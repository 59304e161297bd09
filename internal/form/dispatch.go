package form

// Target is the innermost element an input event landed on.
type Target int

const (
	// TargetOutside is anything not inside a widget.
	TargetOutside Target = iota
	// TargetDisplay is a widget's collapsed summary (the open/close toggle).
	TargetDisplay
	// TargetTagRemove is the remove control on one selected tag.
	TargetTagRemove
	// TargetDropdown is the open panel itself, outside any option row.
	TargetDropdown
	// TargetOption is one option row in the open panel.
	TargetOption
	// TargetSearch is the search box of the open panel.
	TargetSearch
)

// Event is one user input routed through Dispatch.
type Event struct {
	Target Target
	Widget WidgetID
	Value  string // option or tag value
	Text   string // search box contents
}

// Outcome describes what Dispatch did.
type Outcome struct {
	// Handled is set by the handler that consumed the event. The document
	// level close-all handler only runs when nothing more specific did.
	Handled bool
	// Changed is set when a selection changed.
	Changed bool
	// FocusSearch names a widget whose search box should be focused after
	// the dropdown is drawn.
	FocusSearch WidgetID
}

type handler func(c *Controller, ev Event, out *Outcome)

// bubblePath lists, innermost first, the handlers an event passes through.
// The last entry is always the document handler.
func bubblePath(t Target) []handler {
	switch t {
	case TargetTagRemove:
		return []handler{handleTagRemove, handleDisplay, handleDocument}
	case TargetOption:
		return []handler{handleOption, handleDropdown, handleDocument}
	case TargetSearch:
		return []handler{handleSearch, handleDropdown, handleDocument}
	case TargetDropdown:
		return []handler{handleDropdown, handleDocument}
	case TargetDisplay:
		return []handler{handleDisplay, handleDocument}
	default:
		return []handler{handleDocument}
	}
}

// Dispatch is the single entry point for input events. Handlers run from the
// innermost target outward and stop at the first one that marks the event
// handled, so a tag removal never toggles its dropdown and a click inside a
// dropdown never closes it.
func (c *Controller) Dispatch(ev Event) Outcome {
	var out Outcome
	for _, h := range bubblePath(ev.Target) {
		h(c, ev, &out)
		if out.Handled {
			break
		}
	}
	return out
}

func handleTagRemove(c *Controller, ev Event, out *Outcome) {
	if c.widgets[ev.Widget] == nil {
		return
	}
	before := len(c.widgets[ev.Widget].Selection())
	c.Remove(ev.Widget, ev.Value)
	out.Changed = len(c.widgets[ev.Widget].Selection()) != before
	out.Handled = true
}

func handleDisplay(c *Controller, ev Event, out *Outcome) {
	if c.widgets[ev.Widget] == nil {
		return
	}
	if c.ToggleOpen(ev.Widget) {
		out.FocusSearch = ev.Widget
	}
	out.Handled = true
}

func handleOption(c *Controller, ev Event, out *Outcome) {
	if !c.IsOpen(ev.Widget) {
		return
	}
	out.Changed = c.Choose(ev.Widget, ev.Value)
	out.Handled = true
}

func handleSearch(c *Controller, ev Event, out *Outcome) {
	if !c.IsOpen(ev.Widget) {
		return
	}
	c.SetFilter(ev.Widget, ev.Text)
	out.Handled = true
}

// handleDropdown swallows clicks on the panel background.
func handleDropdown(c *Controller, ev Event, out *Outcome) {
	if c.IsOpen(ev.Widget) {
		out.Handled = true
	}
}

func handleDocument(c *Controller, _ Event, out *Outcome) {
	c.CloseAll()
	out.Handled = true
}
