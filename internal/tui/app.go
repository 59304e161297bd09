package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/restopick/internal/database/repository"
	"github.com/jask/restopick/internal/export"
	"github.com/jask/restopick/internal/form"
	"github.com/jask/restopick/internal/recommend"
	"github.com/jask/restopick/internal/service"
)

const appName = "Restopick"

const (
	// searchFocusDelay defers focusing a search box until its dropdown has
	// been drawn once.
	searchFocusDelay = 50 * time.Millisecond
	historyLimit     = 20
	// cardRevealInterval staggers result cards as they appear.
	cardRevealInterval = 60 * time.Millisecond
)

// Recommender runs one submission.
type Recommender interface {
	Recommend(ctx context.Context, submissionID string, crit form.Criteria) service.Result
}

// Rater sends feedback for one restaurant.
type Rater interface {
	Rate(ctx context.Context, submissionID, restaurant string, rating int, comment string) error
}

// Exporter writes the current result set to disk.
type Exporter interface {
	Write(recs []recommend.Recommendation, format export.Format) (string, error)
}

// FilterStore persists saved filters.
type FilterStore interface {
	Save(ctx context.Context, f repository.SavedFilter) (repository.SavedFilter, error)
	List(ctx context.Context) ([]repository.SavedFilter, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// HistoryStore reads past submissions.
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]service.HistoryEntry, error)
}

// Deps are the collaborators the form talks to. Only Recommender is
// required.
type Deps struct {
	Recommender Recommender
	Feedback    Rater
	Exporter    Exporter
	Filters     FilterStore
	History     HistoryStore
	Log         *zap.Logger

	CurrencySymbol   string
	DefaultMinRating float64

	// OnCardsRendered runs after result cards are inserted. Nil is a no-op.
	OnCardsRendered func(count int)
}

type focusField int

const (
	focusLocality focusField = iota
	focusPrice
	focusCuisine
	focusMinRating
	focusSubmit
	focusCount
)

var fieldWidgets = map[focusField]form.WidgetID{
	focusLocality: form.Locality,
	focusPrice:    form.Price,
	focusCuisine:  form.Cuisine,
}

type appMode int

const (
	modeForm appMode = iota
	modeSaveFilter
	modeFilters
	modeHistory
)

// ---------------------------------------------------------------------------
// Bubble Tea messages
// ---------------------------------------------------------------------------

type focusSearchMsg struct {
	widget form.WidgetID
	gen    int
}

type submitDoneMsg struct {
	token  string
	result service.Result
}

type revealMsg struct {
	token string
}

type feedbackDoneMsg struct {
	restaurant string
	rating     int
	err        error
}

type exportDoneMsg struct {
	path string
	err  error
}

type filtersLoadedMsg struct {
	filters []repository.SavedFilter
	err     error
}

type filterSavedMsg struct {
	filter repository.SavedFilter
	err    error
}

type historyLoadedMsg struct {
	entries []service.HistoryEntry
	err     error
}

type filterDeletedMsg struct {
	id  string
	err error
}

// App is the filter form and its result region.
type App struct {
	ctx  context.Context
	deps Deps
	keys keyMap
	form *form.Controller

	focus     focusField
	search    textinput.Model
	searchFor form.WidgetID
	focusGen  int
	minRating textinput.Model
	nameInput textinput.Model
	spinner   spinner.Model

	loading      bool
	submissionID string
	errText      string
	status       string
	statusErr    bool
	summary      string
	cards        []recommend.Recommendation
	revealed     int
	cardCursor   int
	rated        map[int]int

	mode         appMode
	filters      []repository.SavedFilter
	filterCursor int

	history       []service.HistoryEntry
	historyCursor int

	width  int
	height int
}

// New builds the form. ctx bounds every request the form issues.
func New(ctx context.Context, deps Deps) *App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.CurrencySymbol == "" {
		deps.CurrencySymbol = "₹"
	}

	search := textinput.New()
	search.Prompt = "⌕ "
	search.Placeholder = "Search..."
	search.CharLimit = 64

	minRating := textinput.New()
	minRating.Prompt = ""
	minRating.Placeholder = "0"
	minRating.CharLimit = 4

	name := textinput.New()
	name.Prompt = "Name: "
	name.CharLimit = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	a := &App{
		ctx:       ctx,
		deps:      deps,
		keys:      defaultKeys(),
		form:      form.NewController(),
		search:    search,
		minRating: minRating,
		nameInput: name,
		spinner:   sp,
		rated:     make(map[int]int),
	}
	if deps.DefaultMinRating > 0 {
		a.setMinRating(formatNumber(deps.DefaultMinRating))
	}
	return a
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	case focusSearchMsg:
		return a, a.focusSearch(msg)
	case submitDoneMsg:
		return a, a.finishSubmit(msg)
	case revealMsg:
		return a, a.revealNext(msg)
	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case feedbackDoneMsg:
		if msg.err != nil {
			a.setError(fmt.Sprintf("Feedback for %s not sent: %v", msg.restaurant, msg.err))
		} else {
			a.setStatus(fmt.Sprintf("Thank you for your feedback on %s (%d★)", msg.restaurant, msg.rating))
		}
		return a, nil
	case exportDoneMsg:
		if msg.err != nil {
			a.setError("Export failed: " + msg.err.Error())
		} else {
			a.setStatus("Exported to " + msg.path)
		}
		return a, nil
	case filtersLoadedMsg:
		if msg.err != nil {
			a.mode = modeForm
			a.setError("Load saved filters: " + msg.err.Error())
			return a, nil
		}
		a.filters = msg.filters
		if a.filterCursor >= len(a.filters) {
			a.filterCursor = max(0, len(a.filters)-1)
		}
		return a, nil
	case filterSavedMsg:
		if msg.err != nil {
			a.setError("Save filter: " + msg.err.Error())
		} else {
			a.setStatus(fmt.Sprintf("Saved filter %q", msg.filter.Name))
		}
		return a, nil
	case historyLoadedMsg:
		if msg.err != nil {
			a.mode = modeForm
			a.setError("Load history: " + msg.err.Error())
			return a, nil
		}
		a.history = msg.entries
		a.historyCursor = 0
		return a, nil
	case filterDeletedMsg:
		if msg.err != nil {
			a.setError("Delete filter: " + msg.err.Error())
			return a, nil
		}
		a.setStatus("Deleted filter " + msg.id)
		return a, a.loadFiltersCmd()
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Key handling
// ---------------------------------------------------------------------------

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.ForceQuit) {
		return tea.Quit
	}
	switch a.mode {
	case modeSaveFilter:
		return a.handleNameKey(msg)
	case modeFilters:
		return a.handleFiltersKey(msg)
	case modeHistory:
		return a.handleHistoryKey(msg)
	}

	if key.Matches(msg, a.keys.Submit) {
		return a.submit()
	}
	if id, open := a.form.Active(); open {
		return a.handleDropdownKey(id, msg)
	}
	if a.focus == focusMinRating {
		return a.handleMinRatingKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Next):
		return a.moveFocus(1)
	case key.Matches(msg, a.keys.Prev):
		return a.moveFocus(-1)
	case key.Matches(msg, a.keys.Toggle):
		if a.focus == focusSubmit {
			return a.submit()
		}
		return a.toggleField()
	case key.Matches(msg, a.keys.Remove):
		a.removeLastTag()
		return nil
	case key.Matches(msg, a.keys.CardDown):
		a.moveCard(1)
		return nil
	case key.Matches(msg, a.keys.CardUp):
		a.moveCard(-1)
		return nil
	case key.Matches(msg, a.keys.Rate):
		return a.rateCard(int(msg.Runes[0] - '0'))
	case key.Matches(msg, a.keys.ExportJSON):
		return a.exportCmd(export.JSON)
	case key.Matches(msg, a.keys.ExportCSV):
		return a.exportCmd(export.CSV)
	case key.Matches(msg, a.keys.SaveFilter):
		return a.beginSaveFilter()
	case key.Matches(msg, a.keys.OpenFilters):
		return a.openFilters()
	case key.Matches(msg, a.keys.History):
		return a.openHistory()
	case key.Matches(msg, a.keys.Reset):
		a.resetForm()
		return nil
	}
	return nil
}

func (a *App) handleDropdownKey(id form.WidgetID, msg tea.KeyMsg) tea.Cmd {
	w := a.form.Widget(id)
	switch {
	case key.Matches(msg, a.keys.Close):
		a.closeDropdowns()
		return nil
	case key.Matches(msg, a.keys.Next):
		a.closeDropdowns()
		return a.moveFocus(1)
	case key.Matches(msg, a.keys.Prev):
		a.closeDropdowns()
		return a.moveFocus(-1)
	case key.Matches(msg, a.keys.Up):
		w.CursorUp()
		return nil
	case key.Matches(msg, a.keys.Down):
		w.CursorDown()
		return nil
	case msg.Type == tea.KeyEnter:
		opt, ok := w.Current()
		if !ok {
			// the "no results" row is inert
			a.form.Dispatch(form.Event{Target: form.TargetDropdown, Widget: id})
			return nil
		}
		a.form.Dispatch(form.Event{Target: form.TargetOption, Widget: id, Value: opt.Value})
		if !a.form.IsOpen(id) {
			a.blurSearch()
		}
		return nil
	}

	if a.searchFor != id {
		return nil
	}
	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if v := a.search.Value(); v != before {
		a.form.Dispatch(form.Event{Target: form.TargetSearch, Widget: id, Text: v})
	}
	return cmd
}

func (a *App) handleMinRatingKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Next):
		return a.moveFocus(1)
	case key.Matches(msg, a.keys.Prev):
		return a.moveFocus(-1)
	case msg.Type == tea.KeyEnter:
		return a.submit()
	case msg.Type == tea.KeyRunes && !ratingRunes(msg.Runes):
		return nil
	}
	var cmd tea.Cmd
	a.minRating, cmd = a.minRating.Update(msg)
	a.form.SetMinRating(a.minRating.Value())
	return cmd
}

func ratingRunes(rs []rune) bool {
	for _, r := range rs {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return len(rs) > 0
}

func (a *App) moveFocus(delta int) tea.Cmd {
	a.focus = focusField((int(a.focus) + delta + int(focusCount)) % int(focusCount))
	if a.focus == focusMinRating {
		return a.minRating.Focus()
	}
	a.minRating.Blur()
	return nil
}

// toggleField opens or closes the widget under focus. Opening a searchable
// widget schedules focus onto its search box.
func (a *App) toggleField() tea.Cmd {
	id, ok := fieldWidgets[a.focus]
	if !ok {
		return nil
	}
	a.blurSearch()
	out := a.form.Dispatch(form.Event{Target: form.TargetDisplay, Widget: id})
	if out.FocusSearch == "" {
		return nil
	}
	a.focusGen++
	gen := a.focusGen
	return tea.Tick(searchFocusDelay, func(time.Time) tea.Msg {
		return focusSearchMsg{widget: id, gen: gen}
	})
}

func (a *App) focusSearch(msg focusSearchMsg) tea.Cmd {
	if msg.gen != a.focusGen || !a.form.IsOpen(msg.widget) {
		return nil
	}
	a.searchFor = msg.widget
	a.search.SetValue(a.form.Widget(msg.widget).Query())
	return a.search.Focus()
}

func (a *App) blurSearch() {
	a.searchFor = ""
	a.search.Blur()
	a.search.Reset()
}

func (a *App) closeDropdowns() {
	a.form.Dispatch(form.Event{Target: form.TargetOutside})
	a.blurSearch()
}

func (a *App) removeLastTag() {
	id, ok := fieldWidgets[a.focus]
	if !ok {
		return
	}
	tags := a.form.Widget(id).Display().Tags
	if len(tags) == 0 {
		return
	}
	a.form.Dispatch(form.Event{Target: form.TargetTagRemove, Widget: id, Value: tags[len(tags)-1].Value})
}

func (a *App) resetForm() {
	a.blurSearch()
	a.form.Reset()
	a.minRating.SetValue("")
	a.setStatus("Form reset")
}

func (a *App) setMinRating(v string) {
	a.minRating.SetValue(v)
	a.form.SetMinRating(v)
}

// ---------------------------------------------------------------------------
// Submission
// ---------------------------------------------------------------------------

// submit validates and, when valid, sends the criteria. A validation
// failure only replaces the error text; prior results and an open dropdown
// stay as they are. Results are cleared once the request is on its way.
func (a *App) submit() tea.Cmd {
	sub, err := a.form.BeginSubmit()
	if errors.Is(err, form.ErrSubmissionInFlight) {
		return nil
	}
	if err != nil {
		a.showError(err.Error())
		return nil
	}
	a.blurSearch()
	a.clearResults()
	a.loading = true
	a.submissionID = sub.Token
	a.deps.Log.Debug("submit", zap.String("submission_id", sub.Token), zap.Stringer("criteria", sub.Criteria))
	return tea.Batch(a.spinner.Tick, a.submitCmd(sub))
}

func (a *App) submitCmd(sub form.Submission) tea.Cmd {
	rec := a.deps.Recommender
	ctx := a.ctx
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("recommend: %v", r)
				msg = submitDoneMsg{token: sub.Token, result: failedResult(sub.Token, err)}
			}
		}()
		if rec == nil {
			return submitDoneMsg{token: sub.Token, result: failedResult(sub.Token, errors.New(recommend.DefaultFailureMessage))}
		}
		return submitDoneMsg{token: sub.Token, result: rec.Recommend(ctx, sub.Token, sub.Criteria)}
	}
}

func failedResult(id string, err error) service.Result {
	return service.Result{Kind: service.OutcomeFailed, SubmissionID: id, Message: err.Error(), Err: err}
}

// finishSubmit restores the loading indicator and submit control on every
// outcome before rendering it.
func (a *App) finishSubmit(msg submitDoneMsg) tea.Cmd {
	res := msg.result
	if !a.form.Finish(msg.token, res.OK()) {
		a.deps.Log.Debug("stale submission result dropped", zap.String("submission_id", msg.token))
		return nil
	}
	a.loading = false

	if !res.OK() {
		a.showError(res.Message)
		return nil
	}
	a.summary = res.Summary
	a.cards = res.Recommendations
	a.cardCursor = 0
	a.revealed = 0
	return a.revealNext(revealMsg{token: msg.token})
}

func (a *App) revealNext(msg revealMsg) tea.Cmd {
	if msg.token != a.submissionID || a.revealed >= len(a.cards) {
		return nil
	}
	a.revealed++
	if a.revealed == len(a.cards) {
		if a.deps.OnCardsRendered != nil {
			a.deps.OnCardsRendered(len(a.cards))
		}
		return nil
	}
	token := msg.token
	return tea.Tick(cardRevealInterval, func(time.Time) tea.Msg { return revealMsg{token: token} })
}

func (a *App) clearResults() {
	a.errText = ""
	a.summary = ""
	a.cards = nil
	a.revealed = 0
	a.cardCursor = 0
	a.rated = make(map[int]int)
	a.status = ""
	a.statusErr = false
}

func (a *App) showError(text string) {
	a.errText = text
	a.statusErr = false
	a.status = ""
}

// ---------------------------------------------------------------------------
// Results actions
// ---------------------------------------------------------------------------

func (a *App) moveCard(delta int) {
	if len(a.cards) == 0 {
		return
	}
	next := a.cardCursor + delta
	if next < 0 || next >= len(a.cards) {
		return
	}
	a.cardCursor = next
}

func (a *App) rateCard(rating int) tea.Cmd {
	if len(a.cards) == 0 || a.deps.Feedback == nil {
		return nil
	}
	idx := a.cardCursor
	name := a.cards[idx].Name
	a.rated[idx] = rating
	rater, ctx, sub := a.deps.Feedback, a.ctx, a.submissionID
	return func() tea.Msg {
		err := rater.Rate(ctx, sub, name, rating, "")
		return feedbackDoneMsg{restaurant: name, rating: rating, err: err}
	}
}

func (a *App) exportCmd(format export.Format) tea.Cmd {
	if len(a.cards) == 0 || a.deps.Exporter == nil {
		return nil
	}
	recs := append([]recommend.Recommendation(nil), a.cards...)
	exp := a.deps.Exporter
	return func() tea.Msg {
		path, err := exp.Write(recs, format)
		return exportDoneMsg{path: path, err: err}
	}
}

// ---------------------------------------------------------------------------
// Saved filters
// ---------------------------------------------------------------------------

func (a *App) beginSaveFilter() tea.Cmd {
	if a.deps.Filters == nil {
		return nil
	}
	if _, err := a.form.Criteria(); err != nil {
		a.setError(err.Error())
		return nil
	}
	a.mode = modeSaveFilter
	a.nameInput.Reset()
	return a.nameInput.Focus()
}

func (a *App) handleNameKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Close):
		a.mode = modeForm
		a.nameInput.Blur()
		return nil
	case msg.Type == tea.KeyEnter:
		name := a.nameInput.Value()
		a.mode = modeForm
		a.nameInput.Blur()
		return a.saveFilterCmd(name)
	}
	var cmd tea.Cmd
	a.nameInput, cmd = a.nameInput.Update(msg)
	return cmd
}

func (a *App) saveFilterCmd(name string) tea.Cmd {
	crit, err := a.form.Criteria()
	if err != nil {
		a.setError(err.Error())
		return nil
	}
	store, ctx := a.deps.Filters, a.ctx
	return func() tea.Msg {
		f, err := store.Save(ctx, repository.SavedFilter{
			Name:       name,
			City:       crit.City,
			PriceRange: crit.PriceRange,
			Cuisines:   crit.Cuisines,
			MinRating:  crit.MinRating,
		})
		return filterSavedMsg{filter: f, err: err}
	}
}

func (a *App) openFilters() tea.Cmd {
	if a.deps.Filters == nil {
		return nil
	}
	a.closeDropdowns()
	a.mode = modeFilters
	a.filterCursor = 0
	return a.loadFiltersCmd()
}

func (a *App) loadFiltersCmd() tea.Cmd {
	store, ctx := a.deps.Filters, a.ctx
	return func() tea.Msg {
		list, err := store.List(ctx)
		return filtersLoadedMsg{filters: list, err: err}
	}
}

func (a *App) handleFiltersKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Close), key.Matches(msg, a.keys.Quit):
		a.mode = modeForm
		return nil
	case key.Matches(msg, a.keys.Down), key.Matches(msg, a.keys.CardDown):
		if a.filterCursor < len(a.filters)-1 {
			a.filterCursor++
		}
		return nil
	case key.Matches(msg, a.keys.Up), key.Matches(msg, a.keys.CardUp):
		if a.filterCursor > 0 {
			a.filterCursor--
		}
		return nil
	case key.Matches(msg, a.keys.Delete):
		if len(a.filters) == 0 {
			return nil
		}
		id := a.filters[a.filterCursor].ID
		store, ctx := a.deps.Filters, a.ctx
		return func() tea.Msg { return filterDeletedMsg{id: id, err: store.Delete(ctx, id)} }
	case msg.Type == tea.KeyEnter:
		if len(a.filters) == 0 {
			return nil
		}
		f := a.filters[a.filterCursor]
		a.applyFilter(f)
		store, ctx := a.deps.Filters, a.ctx
		log := a.deps.Log
		return func() tea.Msg {
			if err := store.Touch(ctx, f.ID, time.Now()); err != nil {
				log.Warn("touch saved filter", zap.String("id", f.ID), zap.Error(err))
			}
			return nil
		}
	}
	return nil
}

func (a *App) applyFilter(f repository.SavedFilter) {
	crit := form.Criteria{City: f.City, PriceRange: f.PriceRange, Cuisines: f.Cuisines, MinRating: f.MinRating}
	a.applyCriteria(crit, fmt.Sprintf("Applied filter %q", f.Name))
}

func (a *App) applyCriteria(crit form.Criteria, status string) {
	a.form.Restore(crit)
	a.minRating.SetValue(a.form.MinRating())
	a.mode = modeForm
	a.setStatus(status)
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func (a *App) openHistory() tea.Cmd {
	if a.deps.History == nil {
		return nil
	}
	a.closeDropdowns()
	a.mode = modeHistory
	a.history = nil
	a.historyCursor = 0
	store, ctx := a.deps.History, a.ctx
	return func() tea.Msg {
		entries, err := store.Recent(ctx, historyLimit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (a *App) handleHistoryKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Close), key.Matches(msg, a.keys.Quit):
		a.mode = modeForm
	case key.Matches(msg, a.keys.Down), key.Matches(msg, a.keys.CardDown):
		if a.historyCursor < len(a.history)-1 {
			a.historyCursor++
		}
	case key.Matches(msg, a.keys.Up), key.Matches(msg, a.keys.CardUp):
		if a.historyCursor > 0 {
			a.historyCursor--
		}
	case msg.Type == tea.KeyEnter:
		if len(a.history) == 0 {
			return nil
		}
		s := a.history[a.historyCursor].Submission
		crit := form.Criteria{City: s.City, PriceRange: s.PriceRange, Cuisines: s.Cuisines, MinRating: s.MinRating}
		a.applyCriteria(crit, "Reusing search from "+s.CreatedAt.Local().Format("Jan 2 15:04"))
	}
	return nil
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(s string) {
	a.status = s
	a.statusErr = true
}
