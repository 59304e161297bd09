// Package form owns the recommendation filter form: the three selectable-list
// widgets, which of them is open, how input events reach them, and the
// submission state machine.
package form

import (
	"errors"

	"github.com/google/uuid"

	"github.com/jask/restopick/internal/catalog"
	"github.com/jask/restopick/internal/selectlist"
)

// WidgetID names a form field.
type WidgetID string

const (
	Locality WidgetID = "locality"
	Price    WidgetID = "price"
	Cuisine  WidgetID = "cuisine"
)

// Phase is the submission state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrSubmissionInFlight is returned when a submission starts while another is
// still awaiting its response.
var ErrSubmissionInFlight = errors.New("form: a submission is already in flight")

// Submission is one accepted submit attempt. Token identifies it when the
// response comes back.
type Submission struct {
	Token    string
	Criteria Criteria
}

// Controller holds the form state. Exactly one widget may be open; the open
// widget is tracked here rather than on the widgets.
type Controller struct {
	widgets   map[WidgetID]*selectlist.Widget
	order     []WidgetID
	active    WidgetID
	minRating string

	phase    Phase
	last     Phase
	inflight string
}

// NewController builds the locality, price and cuisine widgets from the
// static catalogs.
func NewController() *Controller {
	c := &Controller{
		widgets: make(map[WidgetID]*selectlist.Widget, 3),
		order:   []WidgetID{Locality, Price, Cuisine},
	}
	c.widgets[Locality] = selectlist.New(selectlist.Config{
		ID:           string(Locality),
		Title:        "Locality",
		Placeholder:  "Select locality...",
		EmptyMessage: "No localities found",
		Cardinality:  selectlist.Single,
		Searchable:   true,
		Options:      catalog.Localities(),
	})
	c.widgets[Price] = selectlist.New(selectlist.Config{
		ID:          string(Price),
		Title:       "Price Range",
		Placeholder: "Select price range...",
		Cardinality: selectlist.Single,
		Options:     catalog.PriceRanges(),
	})
	c.widgets[Cuisine] = selectlist.New(selectlist.Config{
		ID:           string(Cuisine),
		Title:        "Cuisine",
		Placeholder:  "Select cuisines...",
		EmptyMessage: "No cuisines found",
		Cardinality:  selectlist.Multi,
		Searchable:   true,
		Options:      catalog.Cuisines(),
	})
	return c
}

// Widget returns the widget for id, or nil.
func (c *Controller) Widget(id WidgetID) *selectlist.Widget { return c.widgets[id] }

// WidgetIDs returns the fields in form order.
func (c *Controller) WidgetIDs() []WidgetID { return append([]WidgetID(nil), c.order...) }

// Active returns the open widget, if any.
func (c *Controller) Active() (WidgetID, bool) {
	return c.active, c.active != ""
}

// IsOpen reports whether id is the open widget.
func (c *Controller) IsOpen(id WidgetID) bool { return c.active != "" && c.active == id }

// Open closes every widget, then resets and shows id. It reports whether the
// widget has a search box that should receive focus once the dropdown is
// drawn.
func (c *Controller) Open(id WidgetID) bool {
	w := c.widgets[id]
	if w == nil {
		return false
	}
	c.CloseAll()
	w.Show()
	c.active = id
	return w.Searchable()
}

// CloseAll hides every dropdown and clears the active field.
func (c *Controller) CloseAll() {
	for _, id := range c.order {
		c.widgets[id].Hide()
	}
	c.active = ""
}

// ToggleOpen opens id when it is closed and closes everything when it is the
// open widget. The result is the same as Open's.
func (c *Controller) ToggleOpen(id WidgetID) bool {
	if c.IsOpen(id) {
		c.CloseAll()
		return false
	}
	return c.Open(id)
}

// SetFilter updates the query of id. It never changes which widget is open.
func (c *Controller) SetFilter(id WidgetID, text string) {
	if w := c.widgets[id]; w != nil {
		w.SetFilter(text)
	}
}

// Choose applies a click on an option row: single-select widgets take the
// value and close, multi-select widgets toggle it and stay open.
func (c *Controller) Choose(id WidgetID, value string) bool {
	w := c.widgets[id]
	if w == nil {
		return false
	}
	if w.Cardinality() == selectlist.Multi {
		return w.Toggle(value)
	}
	if !w.Select(value) {
		return false
	}
	c.CloseAll()
	return true
}

// Remove applies a tag removal. It never opens or closes a dropdown.
func (c *Controller) Remove(id WidgetID, value string) {
	if w := c.widgets[id]; w != nil {
		w.Clear(value)
	}
}

// MinRating returns the raw minimum rating input.
func (c *Controller) MinRating() string { return c.minRating }

// SetMinRating stores the raw minimum rating input.
func (c *Controller) SetMinRating(raw string) { c.minRating = raw }

// Restore overwrites every widget selection from saved criteria. Validation
// still runs at submit time.
func (c *Controller) Restore(crit Criteria) {
	c.widgets[Locality].SetSelection(nonEmpty(crit.City))
	c.widgets[Price].SetSelection(nonEmpty(crit.PriceRange))
	c.widgets[Cuisine].SetSelection(crit.Cuisines)
	c.minRating = ""
	if crit.MinRating > 0 {
		c.minRating = formatRating(crit.MinRating)
	}
}

// Reset clears every selection and the minimum rating and closes any open
// dropdown. An in-flight submission is left alone.
func (c *Controller) Reset() {
	c.CloseAll()
	for _, id := range c.order {
		c.widgets[id].Reset()
	}
	c.minRating = ""
}

// Criteria validates the form. City is checked before price range.
func (c *Controller) Criteria() (Criteria, error) {
	city, ok := c.widgets[Locality].Value()
	if !ok {
		return Criteria{}, &ValidationError{Field: string(Locality), Message: MsgLocalityRequired}
	}
	price, ok := c.widgets[Price].Value()
	if !ok {
		return Criteria{}, &ValidationError{Field: string(Price), Message: MsgPriceRangeRequired}
	}
	return Criteria{
		City:       city,
		PriceRange: price,
		Cuisines:   c.widgets[Cuisine].Selection(),
		MinRating:  ParseMinRating(c.minRating),
	}, nil
}

// Phase returns the current submission state.
func (c *Controller) Phase() Phase { return c.phase }

// LastOutcome returns the terminal phase of the most recent finished
// submission, or PhaseIdle if none has finished.
func (c *Controller) LastOutcome() Phase { return c.last }

// SubmitEnabled reports whether the submit control accepts input.
func (c *Controller) SubmitEnabled() bool { return c.inflight == "" }

// BeginSubmit validates the form and, on success, marks a submission in
// flight. Validation failures return to idle without a token.
func (c *Controller) BeginSubmit() (Submission, error) {
	if c.inflight != "" {
		return Submission{}, ErrSubmissionInFlight
	}
	c.phase = PhaseValidating
	crit, err := c.Criteria()
	if err != nil {
		c.phase = PhaseIdle
		c.last = PhaseFailed
		return Submission{}, err
	}
	c.CloseAll()
	c.phase = PhaseSubmitting
	c.inflight = uuid.NewString()
	return Submission{Token: c.inflight, Criteria: crit}, nil
}

// Finish ends the submission identified by token and returns the form to
// idle. It reports false for tokens that are not in flight, which callers
// treat as a stale response.
func (c *Controller) Finish(token string, ok bool) bool {
	if token == "" || token != c.inflight {
		return false
	}
	c.inflight = ""
	if ok {
		c.last = PhaseSuccess
	} else {
		c.last = PhaseFailed
	}
	c.phase = PhaseIdle
	return true
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
