// Package selectlist implements the filterable dropdown used for every field
// of the recommendation form. One Widget type covers both single-select and
// multi-select fields; the form controller owns which widget is open.
package selectlist

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/restopick/internal/catalog"
)

// Cardinality is how many options a widget may hold at once.
type Cardinality int

const (
	// Single holds zero or one option.
	Single Cardinality = iota
	// Multi holds zero or more options in insertion order.
	Multi
)

func (c Cardinality) String() string {
	if c == Multi {
		return "multi"
	}
	return "single"
}

const (
	maxSuggestions      = 3
	suggestionThreshold = 0.6
)

// Config describes one widget instance.
type Config struct {
	ID           string
	Title        string
	Placeholder  string // shown in the display region when nothing is selected
	EmptyMessage string // shown as the only option row when the filter matches nothing
	Cardinality  Cardinality
	Searchable   bool
	Options      []catalog.Option
}

// Row is one line of the rendered option list. Exactly one placeholder row is
// produced when the filter matches nothing.
type Row struct {
	Option      catalog.Option
	Selected    bool
	Cursor      bool
	Placeholder bool
	Text        string
}

// Tag is one selected item in the display region.
type Tag struct {
	Value string
	Label string
}

// Display is the collapsed summary of a widget. Tags is empty exactly when
// Placeholder should be shown.
type Display struct {
	Placeholder string
	Tags        []Tag
}

// Empty reports whether the display shows the placeholder.
func (d Display) Empty() bool { return len(d.Tags) == 0 }

// Widget is a selectable list with an optional search query.
type Widget struct {
	cfg      Config
	labels   map[string]string
	filtered []catalog.Option
	query    string
	cursor   int
	open     bool
	selected []string
}

// New builds a closed widget with an empty selection.
func New(cfg Config) *Widget {
	w := &Widget{
		cfg:    cfg,
		labels: make(map[string]string, len(cfg.Options)),
	}
	w.cfg.Options = append([]catalog.Option(nil), cfg.Options...)
	for _, opt := range w.cfg.Options {
		w.labels[opt.Value] = opt.Label
	}
	if strings.TrimSpace(w.cfg.EmptyMessage) == "" {
		w.cfg.EmptyMessage = "No results found"
	}
	w.rebuildFiltered()
	return w
}

func (w *Widget) ID() string               { return w.cfg.ID }
func (w *Widget) Title() string            { return w.cfg.Title }
func (w *Widget) Cardinality() Cardinality { return w.cfg.Cardinality }
func (w *Widget) Searchable() bool         { return w.cfg.Searchable }
func (w *Widget) IsOpen() bool             { return w.open }
func (w *Widget) Query() string            { return w.query }
func (w *Widget) Cursor() int              { return w.cursor }

// Show resets the query and cursor and marks the dropdown visible. Callers
// that need exclusivity go through the form controller.
func (w *Widget) Show() {
	w.query = ""
	w.cursor = 0
	w.open = true
	w.rebuildFiltered()
}

// Hide marks the dropdown hidden. The query is kept until the next Show.
func (w *Widget) Hide() {
	w.open = false
}

// SetFilter recomputes the visible options as the case-insensitive substring
// matches of text, in catalog order. Widgets without a search box ignore it.
func (w *Widget) SetFilter(text string) {
	if !w.cfg.Searchable {
		return
	}
	w.query = text
	w.rebuildFiltered()
}

// Filtered returns the options matching the current query.
func (w *Widget) Filtered() []catalog.Option {
	return append([]catalog.Option(nil), w.filtered...)
}

// Select replaces the selection with value on a single-select widget. It
// reports false when the widget is multi-select or value is not an option.
func (w *Widget) Select(value string) bool {
	if w.cfg.Cardinality != Single {
		return false
	}
	if _, ok := w.labels[value]; !ok {
		return false
	}
	w.selected = []string{value}
	return true
}

// Toggle removes value if it is selected and appends it otherwise. It reports
// false when the widget is single-select or value is not an option.
func (w *Widget) Toggle(value string) bool {
	if w.cfg.Cardinality != Multi {
		return false
	}
	if _, ok := w.labels[value]; !ok {
		return false
	}
	if w.IsSelected(value) {
		w.remove(value)
		return true
	}
	w.selected = append(w.selected, value)
	return true
}

// Clear drops the whole selection of a single-select widget, or exactly value
// from a multi-select widget.
func (w *Widget) Clear(value string) {
	if w.cfg.Cardinality == Single {
		w.selected = nil
		return
	}
	w.remove(value)
}

// Reset drops every selected option regardless of cardinality.
func (w *Widget) Reset() {
	w.selected = nil
}

// SetSelection restores a selection, skipping unknown values and duplicates.
// Single-select widgets keep only the first known value.
func (w *Widget) SetSelection(values []string) {
	w.selected = nil
	for _, v := range values {
		if _, ok := w.labels[v]; !ok || w.IsSelected(v) {
			continue
		}
		w.selected = append(w.selected, v)
		if w.cfg.Cardinality == Single {
			break
		}
	}
}

// Selection returns the selected values in insertion order.
func (w *Widget) Selection() []string {
	if len(w.selected) == 0 {
		return nil
	}
	return append([]string(nil), w.selected...)
}

// Value returns the single selected value, if any.
func (w *Widget) Value() (string, bool) {
	if len(w.selected) == 0 {
		return "", false
	}
	return w.selected[0], true
}

func (w *Widget) IsSelected(value string) bool {
	for _, v := range w.selected {
		if v == value {
			return true
		}
	}
	return false
}

// Label returns the display label for value.
func (w *Widget) Label(value string) string {
	if l, ok := w.labels[value]; ok {
		return l
	}
	return value
}

// Display returns the collapsed summary: a placeholder, or one tag per
// selected option.
func (w *Widget) Display() Display {
	d := Display{Placeholder: w.cfg.Placeholder}
	for _, v := range w.selected {
		d.Tags = append(d.Tags, Tag{Value: v, Label: w.Label(v)})
	}
	return d
}

// Rows renders the option list. An empty match yields a single placeholder
// row carrying the empty message and, when close options exist, a hint.
func (w *Widget) Rows() []Row {
	if len(w.filtered) == 0 {
		text := w.cfg.EmptyMessage
		if s := w.Suggestions(); len(s) > 0 {
			text += ". Did you mean: " + strings.Join(s, ", ") + "?"
		}
		return []Row{{Placeholder: true, Text: text}}
	}
	rows := make([]Row, 0, len(w.filtered))
	for i, opt := range w.filtered {
		rows = append(rows, Row{
			Option:   opt,
			Selected: w.IsSelected(opt.Value),
			Cursor:   i == w.cursor,
			Text:     opt.Label,
		})
	}
	return rows
}

// Suggestions returns up to three options whose labels are close to the
// current query by edit distance. Filtering itself never uses this.
func (w *Widget) Suggestions() []string {
	q := strings.ToLower(strings.TrimSpace(w.query))
	if q == "" {
		return nil
	}
	type scored struct {
		label string
		score float64
		index int
	}
	var candidates []scored
	for i, opt := range w.cfg.Options {
		label := strings.ToLower(opt.Label)
		longest := len(label)
		if len(q) > longest {
			longest = len(q)
		}
		if longest == 0 {
			continue
		}
		score := 1 - float64(levenshtein.ComputeDistance(q, label))/float64(longest)
		if score >= suggestionThreshold {
			candidates = append(candidates, scored{label: opt.Label, score: score, index: i})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].index < candidates[j].index
	})
	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].label)
	}
	return out
}

func (w *Widget) CursorUp() {
	if w.cursor > 0 {
		w.cursor--
	}
}

func (w *Widget) CursorDown() {
	maxIdx := len(w.filtered) - 1
	if maxIdx < 0 {
		w.cursor = 0
		return
	}
	if w.cursor < maxIdx {
		w.cursor++
	}
}

// Current returns the option under the cursor.
func (w *Widget) Current() (catalog.Option, bool) {
	if len(w.filtered) == 0 {
		return catalog.Option{}, false
	}
	idx := w.cursor
	if idx < 0 {
		idx = 0
	}
	if idx >= len(w.filtered) {
		idx = len(w.filtered) - 1
	}
	return w.filtered[idx], true
}

func (w *Widget) remove(value string) {
	out := w.selected[:0]
	for _, v := range w.selected {
		if v != value {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		w.selected = nil
		return
	}
	w.selected = out
}

func (w *Widget) rebuildFiltered() {
	q := strings.ToLower(w.query)
	out := make([]catalog.Option, 0, len(w.cfg.Options))
	for _, opt := range w.cfg.Options {
		if q == "" || strings.Contains(strings.ToLower(opt.Label), q) {
			out = append(out, opt)
		}
	}
	w.filtered = out

	maxIdx := len(w.filtered) - 1
	if maxIdx < 0 {
		w.cursor = 0
	} else if w.cursor > maxIdx {
		w.cursor = maxIdx
	}
	if w.cursor < 0 {
		w.cursor = 0
	}
}
