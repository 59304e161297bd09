package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/restopick/internal/database/repository"
	"github.com/jask/restopick/internal/export"
	"github.com/jask/restopick/internal/form"
	"github.com/jask/restopick/internal/recommend"
	"github.com/jask/restopick/internal/service"
)

type fakeRecommender struct {
	mu     sync.Mutex
	calls  int
	crits  []form.Criteria
	result service.Result
	panics bool
}

func (f *fakeRecommender) Recommend(_ context.Context, id string, crit form.Criteria) service.Result {
	f.mu.Lock()
	f.calls++
	f.crits = append(f.crits, crit)
	f.mu.Unlock()
	if f.panics {
		panic("connection reset")
	}
	res := f.result
	res.SubmissionID = id
	return res
}

type fakeRater struct {
	names   []string
	ratings []int
}

func (f *fakeRater) Rate(_ context.Context, _ string, restaurant string, rating int, _ string) error {
	f.names = append(f.names, restaurant)
	f.ratings = append(f.ratings, rating)
	return nil
}

type fakeExporter struct {
	formats []export.Format
	count   int
}

func (f *fakeExporter) Write(recs []recommend.Recommendation, format export.Format) (string, error) {
	f.formats = append(f.formats, format)
	f.count = len(recs)
	return "/tmp/recommendations." + string(format), nil
}

type fakeFilters struct {
	saved   []repository.SavedFilter
	touched []string
}

func (f *fakeFilters) Save(_ context.Context, sf repository.SavedFilter) (repository.SavedFilter, error) {
	sf.ID = repository.SlugifyFilterID(sf.Name)
	f.saved = append(f.saved, sf)
	return sf, nil
}

func (f *fakeFilters) List(context.Context) ([]repository.SavedFilter, error) {
	return append([]repository.SavedFilter(nil), f.saved...), nil
}

func (f *fakeFilters) Touch(_ context.Context, id string, _ time.Time) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeFilters) Delete(_ context.Context, id string) error {
	for i, sf := range f.saved {
		if sf.ID == id {
			f.saved = append(f.saved[:i], f.saved[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeHistory struct {
	entries []service.HistoryEntry
	limit   int
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]service.HistoryEntry, error) {
	f.limit = limit
	return f.entries, nil
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(a *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(keyMsg(k))
	}
	return cmd
}

// drain runs cmd and every command it produces, feeding messages back into
// the app. Spinner ticks are dropped so loading never loops.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch m := msg.(type) {
		case nil, spinner.TickMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, m...)
			continue
		}
		_, next := a.Update(msg)
		queue = append(queue, next)
	}
}

func newTestApp(rec Recommender) *App {
	return New(context.Background(), Deps{Recommender: rec})
}

func fillRequired(a *App) {
	a.form.Widget(form.Locality).Select("Btm")
	a.form.Widget(form.Price).Select("budget")
}

func TestSubmitWithoutLocalityNeverCallsBackend(t *testing.T) {
	rec := &fakeRecommender{}
	a := newTestApp(rec)

	cmd := press(a, "ctrl+s")
	if cmd != nil {
		t.Fatalf("expected no command for invalid form")
	}
	if rec.calls != 0 {
		t.Fatalf("backend called %d times", rec.calls)
	}
	if a.errText != form.MsgLocalityRequired {
		t.Fatalf("error = %q", a.errText)
	}
	if a.loading || !a.form.SubmitEnabled() {
		t.Fatalf("form should stay idle")
	}
	if !strings.Contains(a.View(), "Locality is required!") {
		t.Fatalf("view does not show validation message")
	}
}

func TestSubmitWithoutPriceShowsPriceMessage(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	a.form.Widget(form.Locality).Select("Btm")
	press(a, "ctrl+s")
	if a.errText != form.MsgPriceRangeRequired {
		t.Fatalf("error = %q", a.errText)
	}
}

func TestEmptyResultShowsMessageWithoutCards(t *testing.T) {
	rec := &fakeRecommender{result: service.Result{Kind: service.OutcomeEmpty, Message: "none"}}
	a := newTestApp(rec)
	fillRequired(a)

	cmd := press(a, "ctrl+s")
	if !a.loading || a.form.SubmitEnabled() {
		t.Fatalf("expected loading with submit disabled")
	}
	drain(t, a, cmd)

	if a.errText != "none" {
		t.Fatalf("error = %q", a.errText)
	}
	if len(a.cards) != 0 || a.revealed != 0 {
		t.Fatalf("no cards should render")
	}
	if a.loading || !a.form.SubmitEnabled() {
		t.Fatalf("loading state not restored")
	}
}

func TestSuccessRendersCardsInOrder(t *testing.T) {
	rec := &fakeRecommender{result: service.Result{
		Kind:    service.OutcomeSuccess,
		Summary: "Why you'll like it: great food",
		Recommendations: []recommend.Recommendation{
			{Name: "Alpha Diner", Rating: 4.5, Cuisines: "Thai", AverageCost: 800, Address: "1 Road"},
			{Name: "Beta Bistro", Rating: 4.1, Cuisines: "Chinese", AverageCost: 600, Address: "2 Road"},
		},
	}}
	rendered := -1
	a := New(context.Background(), Deps{
		Recommender:     rec,
		OnCardsRendered: func(n int) { rendered = n },
	})
	fillRequired(a)

	drain(t, a, press(a, "ctrl+s"))

	if a.errText != "" {
		t.Fatalf("unexpected error box %q", a.errText)
	}
	if a.revealed != 2 {
		t.Fatalf("revealed = %d", a.revealed)
	}
	if rendered != 2 {
		t.Fatalf("icon callback got %d", rendered)
	}
	view := a.View()
	ia, ib := strings.Index(view, "Alpha Diner"), strings.Index(view, "Beta Bistro")
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("cards not rendered in order A, B")
	}
	if strings.Contains(view, "⚠") {
		t.Fatalf("error box rendered on success")
	}
	if a.loading || !a.form.SubmitEnabled() {
		t.Fatalf("loading state not restored")
	}
	if a.form.LastOutcome() != form.PhaseSuccess {
		t.Fatalf("last outcome = %s", a.form.LastOutcome())
	}
}

func TestFailedCallRestoresForm(t *testing.T) {
	cases := []struct {
		name string
		rec  *fakeRecommender
		want string
	}{
		{
			name: "request error",
			rec: &fakeRecommender{result: service.Result{
				Kind:    service.OutcomeFailed,
				Message: "database unavailable",
				Err:     &recommend.RequestError{Op: "recommend", Status: 500, Detail: "database unavailable"},
			}},
			want: "database unavailable",
		},
		{
			name: "panic",
			rec:  &fakeRecommender{panics: true},
			want: "connection reset",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestApp(tc.rec)
			fillRequired(a)
			drain(t, a, press(a, "ctrl+s"))

			if a.loading {
				t.Fatalf("loading indicator still shown")
			}
			if !a.form.SubmitEnabled() {
				t.Fatalf("submit control still disabled")
			}
			if !strings.Contains(a.errText, tc.want) {
				t.Fatalf("error = %q, want %q", a.errText, tc.want)
			}
			if a.form.Widget(form.Locality).Selection()[0] != "Btm" {
				t.Fatalf("selection should survive a failed submission")
			}
		})
	}
}

func TestMissingRecommenderFails(t *testing.T) {
	a := newTestApp(nil)
	fillRequired(a)
	drain(t, a, press(a, "ctrl+s"))
	if a.errText != recommend.DefaultFailureMessage || a.loading {
		t.Fatalf("error = %q loading = %v", a.errText, a.loading)
	}
}

func TestSecondSubmitWhileInFlightIsIgnored(t *testing.T) {
	rec := &fakeRecommender{result: service.Result{Kind: service.OutcomeEmpty, Message: "none"}}
	a := newTestApp(rec)
	fillRequired(a)

	first := press(a, "ctrl+s")
	if second := press(a, "ctrl+s"); second != nil {
		t.Fatalf("second submit should be ignored")
	}
	drain(t, a, first)
	if rec.calls != 1 {
		t.Fatalf("calls = %d", rec.calls)
	}
}

func TestNewSubmissionClearsPreviousResults(t *testing.T) {
	rec := &fakeRecommender{result: service.Result{
		Kind:            service.OutcomeSuccess,
		Recommendations: []recommend.Recommendation{{Name: "Alpha Diner"}},
	}}
	a := newTestApp(rec)
	fillRequired(a)
	drain(t, a, press(a, "ctrl+s"))

	press(a, "ctrl+s")
	if len(a.cards) != 0 || a.errText != "" {
		t.Fatalf("results should clear when a new submission starts")
	}
}

func TestValidationFailureKeepsPreviousResults(t *testing.T) {
	rec := &fakeRecommender{result: service.Result{
		Kind:    service.OutcomeSuccess,
		Summary: "Both are great.",
		Recommendations: []recommend.Recommendation{
			{Name: "Alpha Diner"}, {Name: "Beta Bistro"},
		},
	}}
	a := New(context.Background(), Deps{Recommender: rec, Feedback: &fakeRater{}})
	fillRequired(a)
	drain(t, a, press(a, "ctrl+s"))
	drain(t, a, press(a, "4"))

	a.form.Widget(form.Locality).Clear("")
	if cmd := press(a, "ctrl+s"); cmd != nil {
		t.Fatalf("invalid form should not send")
	}
	if a.errText != form.MsgLocalityRequired {
		t.Fatalf("error = %q", a.errText)
	}
	if len(a.cards) != 2 || a.revealed != 2 || a.summary != "Both are great." {
		t.Fatalf("results lost: cards=%d revealed=%d summary=%q", len(a.cards), a.revealed, a.summary)
	}
	if a.rated[0] != 4 {
		t.Fatalf("rating lost: %v", a.rated)
	}
	if rec.calls != 1 {
		t.Fatalf("calls = %d", rec.calls)
	}
}

func TestValidationFailureKeepsSearchWorking(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	a.Update(press(a, "enter")())

	press(a, "ctrl+s")
	if a.errText != form.MsgLocalityRequired {
		t.Fatalf("error = %q", a.errText)
	}
	if !a.form.IsOpen(form.Locality) || a.searchFor != form.Locality {
		t.Fatalf("open dropdown lost its search box: open=%v searchFor=%q", a.form.IsOpen(form.Locality), a.searchFor)
	}
	press(a, "k", "o", "r")
	if got := len(a.form.Widget(form.Locality).Filtered()); got != 4 {
		t.Fatalf("filtered = %d after typing, want 4", got)
	}
}

func TestCardsRenderedCallbackRunsAfterReveal(t *testing.T) {
	calls := 0
	a := New(context.Background(), Deps{
		Recommender:     &fakeRecommender{},
		OnCardsRendered: func(n int) { calls++ },
	})
	fillRequired(a)
	press(a, "ctrl+s")
	token := a.submissionID

	a.Update(submitDoneMsg{token: token, result: service.Result{
		Kind:            service.OutcomeSuccess,
		Recommendations: []recommend.Recommendation{{Name: "Alpha Diner"}, {Name: "Beta Bistro"}},
	}})
	if a.revealed != 1 || calls != 0 {
		t.Fatalf("callback ran before every card was shown: revealed=%d calls=%d", a.revealed, calls)
	}
	a.Update(revealMsg{token: token})
	if a.revealed != 2 || calls != 1 {
		t.Fatalf("revealed=%d calls=%d", a.revealed, calls)
	}
	a.Update(revealMsg{token: token})
	if calls != 1 {
		t.Fatalf("callback ran %d times", calls)
	}
}

func TestResetClearsForm(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	fillRequired(a)
	a.form.Widget(form.Cuisine).Toggle("Thai")
	a.setMinRating("4")

	press(a, "ctrl+r")
	for _, id := range a.form.WidgetIDs() {
		if got := a.form.Widget(id).Selection(); got != nil {
			t.Fatalf("%s selection = %v", id, got)
		}
	}
	if a.minRating.Value() != "" || a.form.MinRating() != "" {
		t.Fatalf("min rating not cleared")
	}
	if a.status != "Form reset" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestHistoryReusesPastSearch(t *testing.T) {
	hist := &fakeHistory{entries: []service.HistoryEntry{
		{
			Submission: repository.Submission{
				ID: "s2", City: "Hsr", PriceRange: "premium", Cuisines: []string{"Thai"}, MinRating: 4,
				Outcome: repository.OutcomeSuccess, ResultCount: 3, CreatedAt: time.Now(),
			},
			Ratings: []repository.Feedback{{RestaurantName: "Alpha Diner", Rating: 5}},
		},
		{
			Submission: repository.Submission{
				ID: "s1", City: "Btm", PriceRange: "budget",
				Outcome: repository.OutcomeEmpty, CreatedAt: time.Now().Add(-time.Hour),
			},
		},
	}}
	a := New(context.Background(), Deps{Recommender: &fakeRecommender{}, History: hist})

	drain(t, a, press(a, "ctrl+t"))
	if a.mode != modeHistory || len(a.history) != 2 || hist.limit != historyLimit {
		t.Fatalf("mode=%d entries=%d limit=%d", a.mode, len(a.history), hist.limit)
	}
	view := a.View()
	for _, want := range []string{"Recent searches", "3 results", "no results", "rated Alpha Diner 5★"} {
		if !strings.Contains(view, want) {
			t.Fatalf("history view missing %q", want)
		}
	}

	press(a, "j", "k", "enter")
	if a.mode != modeForm {
		t.Fatalf("mode = %d", a.mode)
	}
	crit, err := a.form.Criteria()
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}
	if crit.City != "Hsr" || crit.PriceRange != "premium" || crit.MinRating != 4 || len(crit.Cuisines) != 1 {
		t.Fatalf("criteria = %+v", crit)
	}
	if a.minRating.Value() != "4" {
		t.Fatalf("min rating input = %q", a.minRating.Value())
	}
}

func TestStaleSubmitResultIsDropped(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	fillRequired(a)
	press(a, "ctrl+s")

	a.Update(submitDoneMsg{token: "not-the-token", result: service.Result{Kind: service.OutcomeEmpty, Message: "stale"}})
	if !a.loading || a.errText == "stale" {
		t.Fatalf("stale result should not finish the submission")
	}
}

func TestSearchFocusIsDeferred(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	cmd := press(a, "enter")
	if !a.form.IsOpen(form.Locality) {
		t.Fatalf("locality should be open")
	}
	if a.searchFor != "" {
		t.Fatalf("search focused before the dropdown was drawn")
	}
	if cmd == nil {
		t.Fatalf("expected deferred focus command")
	}
	a.Update(cmd())
	if a.searchFor != form.Locality || !a.search.Focused() {
		t.Fatalf("search box not focused after delay")
	}
}

func TestStaleFocusIsIgnored(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	cmd := press(a, "enter")
	press(a, "esc")
	a.Update(cmd())
	if a.searchFor != "" || a.search.Focused() {
		t.Fatalf("focus applied to a closed dropdown")
	}
}

func TestTypeToFilterAndSelect(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	a.Update(press(a, "enter")())
	press(a, "k", "o", "r", "a")

	w := a.form.Widget(form.Locality)
	if got := len(w.Filtered()); got != 4 {
		t.Fatalf("filtered = %d, want 4 Koramangala blocks", got)
	}
	press(a, "down", "enter")
	if v, _ := w.Value(); v != "Koramangala 5Th Block" {
		t.Fatalf("selected %q", v)
	}
	if a.form.IsOpen(form.Locality) || a.searchFor != "" {
		t.Fatalf("single select should close the dropdown")
	}
}

func TestNoMatchRowIsInert(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	a.Update(press(a, "enter")())
	press(a, "z", "z", "z", "enter")
	if !a.form.IsOpen(form.Locality) {
		t.Fatalf("enter on the no-results row should keep the dropdown open")
	}
	if !strings.Contains(a.View(), "No localities found") {
		t.Fatalf("placeholder row not rendered")
	}
}

func TestCuisineMultiSelectAndRemove(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	press(a, "tab", "tab")
	if a.focus != focusCuisine {
		t.Fatalf("focus = %d", a.focus)
	}
	a.Update(press(a, "enter")())
	press(a, "t", "h", "a", "i")
	rows := a.form.Widget(form.Cuisine).Filtered()
	if len(rows) != 2 || rows[0].Value != "Mithai" || rows[1].Value != "Thai" {
		t.Fatalf("filtered = %v", rows)
	}
	press(a, "down", "enter")
	for range "thai" {
		press(a, "backspace")
	}
	press(a, "c", "h", "i", "n", "e", "s", "e", "enter")
	if !a.form.IsOpen(form.Cuisine) {
		t.Fatalf("multi select should stay open")
	}
	press(a, "esc")

	w := a.form.Widget(form.Cuisine)
	got := w.Selection()
	if len(got) != 2 || got[0] != "Thai" || got[1] != "Chinese" {
		t.Fatalf("selection = %v", got)
	}
	press(a, "x")
	if got := w.Selection(); len(got) != 1 || got[0] != "Thai" {
		t.Fatalf("after remove = %v", got)
	}
	if a.form.IsOpen(form.Cuisine) {
		t.Fatalf("tag removal must not open the dropdown")
	}
}

func TestOpeningAnotherWidgetClosesFirst(t *testing.T) {
	a := newTestApp(&fakeRecommender{})
	press(a, "enter")
	press(a, "tab")
	if _, open := a.form.Active(); open {
		t.Fatalf("tab should close the open dropdown")
	}
	press(a, "enter")
	if !a.form.IsOpen(form.Price) || a.form.IsOpen(form.Locality) {
		t.Fatalf("only the price dropdown should be open")
	}
}

func TestMinRatingAcceptsNumbersOnly(t *testing.T) {
	rec := &fakeRecommender{result: service.Result{Kind: service.OutcomeEmpty, Message: "none"}}
	a := newTestApp(rec)
	fillRequired(a)
	press(a, "tab", "tab", "tab")
	if a.focus != focusMinRating {
		t.Fatalf("focus = %d", a.focus)
	}
	press(a, "4", "x", ".", "5")
	if a.minRating.Value() != "4.5" {
		t.Fatalf("min rating = %q", a.minRating.Value())
	}
	drain(t, a, press(a, "enter"))
	if rec.calls != 1 || rec.crits[0].MinRating != 4.5 {
		t.Fatalf("criteria = %+v", rec.crits)
	}
}

func TestRateAndExportCards(t *testing.T) {
	rater := &fakeRater{}
	exp := &fakeExporter{}
	a := New(context.Background(), Deps{
		Recommender: &fakeRecommender{result: service.Result{
			Kind: service.OutcomeSuccess,
			Recommendations: []recommend.Recommendation{
				{Name: "Alpha Diner"}, {Name: "Beta Bistro"},
			},
		}},
		Feedback: rater,
		Exporter: exp,
	})
	fillRequired(a)
	drain(t, a, press(a, "ctrl+s"))

	press(a, "j")
	drain(t, a, press(a, "4"))
	if len(rater.names) != 1 || rater.names[0] != "Beta Bistro" || rater.ratings[0] != 4 {
		t.Fatalf("feedback = %v %v", rater.names, rater.ratings)
	}
	if !strings.Contains(a.status, "Beta Bistro") {
		t.Fatalf("status = %q", a.status)
	}

	drain(t, a, press(a, "E"))
	if len(exp.formats) != 1 || exp.formats[0] != export.CSV || exp.count != 2 {
		t.Fatalf("export = %v (%d)", exp.formats, exp.count)
	}
	if !strings.Contains(a.status, "Exported to") {
		t.Fatalf("status = %q", a.status)
	}
}

func TestSaveAndApplyFilter(t *testing.T) {
	store := &fakeFilters{}
	a := New(context.Background(), Deps{Recommender: &fakeRecommender{}, Filters: store})

	press(a, "ctrl+w")
	if a.mode != modeForm || !a.statusErr {
		t.Fatalf("saving an invalid form should report an error")
	}

	fillRequired(a)
	a.form.Widget(form.Cuisine).Toggle("Thai")
	press(a, "ctrl+w")
	if a.mode != modeSaveFilter {
		t.Fatalf("expected name prompt")
	}
	press(a, "L", "u", "n", "c", "h")
	drain(t, a, press(a, "enter"))
	if len(store.saved) != 1 || store.saved[0].Name != "Lunch" || store.saved[0].Cuisines[0] != "Thai" {
		t.Fatalf("saved = %+v", store.saved)
	}

	a.form.Restore(form.Criteria{})
	drain(t, a, press(a, "ctrl+o"))
	if a.mode != modeFilters || len(a.filters) != 1 {
		t.Fatalf("filters = %+v", a.filters)
	}
	drain(t, a, press(a, "enter"))
	if v, _ := a.form.Widget(form.Locality).Value(); v != "Btm" {
		t.Fatalf("filter not applied, locality = %q", v)
	}
	if len(store.touched) != 1 || store.touched[0] != "lunch" {
		t.Fatalf("touched = %v", store.touched)
	}
}

func TestEmphasizeMarksReasoning(t *testing.T) {
	out := emphasize("Great biryani. why you'll like it: fast service")
	if !strings.Contains(out, "why you'll like it:") {
		t.Fatalf("marker lost: %q", out)
	}
	if !strings.Contains(out, "fast service") {
		t.Fatalf("text lost: %q", out)
	}
}

func TestDescribeCriteria(t *testing.T) {
	got := describeCriteria(form.Criteria{City: "Btm", PriceRange: "budget", Cuisines: []string{"Thai"}, MinRating: 4})
	if got != "Btm · Budget (₹ < 500) · Thai · 4★+" {
		t.Fatalf("describe = %q", got)
	}
}

func TestFailedResultHelper(t *testing.T) {
	res := failedResult("id", errors.New("boom"))
	if res.OK() || res.Message != "boom" {
		t.Fatalf("result = %+v", res)
	}
}
