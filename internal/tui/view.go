package tui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/restopick/internal/catalog"
	"github.com/jask/restopick/internal/database/repository"
	"github.com/jask/restopick/internal/form"
	"github.com/jask/restopick/internal/selectlist"
)

const (
	maxDropdownRows = 8
	minFieldWidth   = 32
)

var fieldTitles = map[focusField]string{
	focusLocality:  "Locality *",
	focusPrice:     "Price Range *",
	focusCuisine:   "Cuisines",
	focusMinRating: "Minimum Rating",
}

func (a *App) View() string {
	var body string
	switch a.mode {
	case modeSaveFilter:
		body = a.renderForm() + "\n" + a.renderNamePrompt()
	case modeFilters:
		body = a.renderFilterList()
	case modeHistory:
		body = a.renderHistory()
	default:
		body = a.renderForm() + a.renderResults()
	}
	return renderHeader(a.width) + "\n" + body + "\n" + a.renderStatus() + "\n" + a.renderFooter(a.helpBindings())
}

func (a *App) helpBindings() []key.Binding {
	switch a.mode {
	case modeSaveFilter:
		return a.keys.nameHelp()
	case modeFilters:
		return a.keys.filtersHelp()
	case modeHistory:
		return a.keys.historyHelp()
	}
	if id, open := a.form.Active(); open {
		return a.keys.dropdownHelp(a.form.Widget(id).Cardinality() == selectlist.Multi)
	}
	return a.keys.formHelp(len(a.cards) > 0)
}

// ---------------------------------------------------------------------------
// Chrome
// ---------------------------------------------------------------------------

func renderHeader(width int) string {
	content := headerAppStyle.Render(appName) + "  " + helpDescStyle.Background(colorMantle).Render("restaurant recommendations")
	if width <= 0 {
		return headerBarStyle.Render(content)
	}
	return headerBarStyle.Width(width).Render(content)
}

func (a *App) renderFooter(bindings []key.Binding) string {
	// Build help text where every character carries the footer background.
	bg := colorMantle
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(help.Key)+space+descStyle.Render(help.Desc))
	}
	content := strings.Join(parts, sep)
	if a.width == 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(a.width).Render(content)
}

func (a *App) renderStatus() string {
	flat := strings.ReplaceAll(a.status, "\n", " ")
	style := statusBarStyle
	if a.statusErr {
		style = style.Foreground(colorError)
	}
	if a.width == 0 {
		return style.Render(flat)
	}
	return style.Width(a.width).Render(flat)
}

// ---------------------------------------------------------------------------
// Form
// ---------------------------------------------------------------------------

func (a *App) fieldWidth() int {
	w := a.width/2 - 4
	if w < minFieldWidth {
		return minFieldWidth
	}
	return w
}

func (a *App) renderForm() string {
	var rows []string
	for _, f := range []focusField{focusLocality, focusPrice, focusCuisine} {
		rows = append(rows, a.renderWidget(f, fieldWidgets[f]))
	}
	rows = append(rows, a.renderMinRating(), a.renderSubmit())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderLabel(f focusField) string {
	if a.focus == f {
		return fieldLabelActiveStyle.Render("▸ " + fieldTitles[f])
	}
	return fieldLabelStyle.Render("  " + fieldTitles[f])
}

func (a *App) renderWidget(f focusField, id form.WidgetID) string {
	w := a.form.Widget(id)
	style := displayStyle
	if a.focus == f || a.form.IsOpen(id) {
		style = displayFocusStyle
	}
	out := a.renderLabel(f) + "\n" + style.Width(a.fieldWidth()).Render(renderDisplay(w.Display()))
	if a.form.IsOpen(id) {
		out += "\n" + a.renderDropdown(id, w)
	}
	return out
}

// renderDisplay shows the placeholder or one tag per selected item, each with
// its own remove marker.
func renderDisplay(d selectlist.Display) string {
	if d.Empty() {
		return placeholderStyle.Render(d.Placeholder)
	}
	tags := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		tags = append(tags, tagStyle.Render(t.Label)+tagRemoveStyle.Render("× "))
	}
	return strings.Join(tags, " ")
}

func (a *App) renderDropdown(id form.WidgetID, w *selectlist.Widget) string {
	var lines []string
	if w.Searchable() {
		if a.searchFor == id {
			lines = append(lines, a.search.View())
		} else {
			lines = append(lines, placeholderStyle.Render("⌕ "+a.search.Placeholder))
		}
	}
	rows := w.Rows()
	start, end := visibleWindow(len(rows), w.Cursor(), maxDropdownRows)
	for _, r := range rows[start:end] {
		lines = append(lines, renderOptionRow(r, w.Cardinality()))
	}
	if end < len(rows) {
		lines = append(lines, placeholderStyle.Render(fmt.Sprintf("  … %d more", len(rows)-end)))
	}
	return dropdownStyle.Width(a.fieldWidth()).Render(strings.Join(lines, "\n"))
}

func renderOptionRow(r selectlist.Row, c selectlist.Cardinality) string {
	if r.Placeholder {
		return noResultsStyle.Render(r.Text)
	}
	mark := "   "
	if c == selectlist.Multi {
		mark = "[ ]"
		if r.Selected {
			mark = optionCheckStyle.Render("[x]")
		}
	} else if r.Selected {
		mark = optionCheckStyle.Render(" ✓ ")
	}
	line := mark + " " + r.Text
	if r.Cursor {
		return optionCursorStyle.Render(line)
	}
	return line
}

// visibleWindow keeps cursor inside a window of at most size rows.
func visibleWindow(total, cursor, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}

func (a *App) renderMinRating() string {
	style := displayStyle
	if a.focus == focusMinRating {
		style = displayFocusStyle
	}
	return a.renderLabel(focusMinRating) + "\n" + style.Width(a.fieldWidth()).Render(a.minRating.View())
}

func (a *App) renderSubmit() string {
	label := " Get Recommendations "
	var btn string
	switch {
	case !a.form.SubmitEnabled():
		btn = submitDisabledStyle.Render(" Finding... ")
	case a.focus == focusSubmit:
		btn = submitFocusStyle.Render(label)
	default:
		btn = submitStyle.Render(label)
	}
	return "\n" + btn + "\n"
}

func (a *App) renderNamePrompt() string {
	return modalStyle.Render(modalTitleStyle.Render("Save filter") + "\n" + a.nameInput.View())
}

func (a *App) renderFilterList() string {
	lines := []string{modalTitleStyle.Render("Saved filters")}
	if len(a.filters) == 0 {
		lines = append(lines, noResultsStyle.Render("No saved filters yet"))
	}
	for i, f := range a.filters {
		crit := form.Criteria{City: f.City, PriceRange: f.PriceRange, Cuisines: f.Cuisines, MinRating: f.MinRating}
		line := fmt.Sprintf("%-24s %s", f.Name, cardMetaStyle.Render(describeCriteria(crit)))
		if i == a.filterCursor {
			line = optionCursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderHistory() string {
	lines := []string{modalTitleStyle.Render("Recent searches")}
	if len(a.history) == 0 {
		lines = append(lines, noResultsStyle.Render("No searches yet"))
	}
	for i, e := range a.history {
		s := e.Submission
		crit := form.Criteria{City: s.City, PriceRange: s.PriceRange, Cuisines: s.Cuisines, MinRating: s.MinRating}
		line := fmt.Sprintf("%s  %s  %s",
			s.CreatedAt.Local().Format("Jan 2 15:04"),
			describeCriteria(crit),
			cardMetaStyle.Render(describeOutcome(s)),
		)
		if len(e.Ratings) > 0 {
			line += "  " + optionCheckStyle.Render(describeRatings(e.Ratings))
		}
		if i == a.historyCursor {
			line = optionCursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func describeOutcome(s repository.Submission) string {
	switch s.Outcome {
	case repository.OutcomeSuccess:
		return fmt.Sprintf("%d results", s.ResultCount)
	case repository.OutcomeEmpty:
		return "no results"
	case repository.OutcomeFailed:
		return "failed: " + s.Message
	}
	return s.Outcome
}

func describeRatings(fs []repository.Feedback) string {
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, fmt.Sprintf("%s %d★", f.RestaurantName, f.Rating))
	}
	return "rated " + strings.Join(parts, ", ")
}

func describeCriteria(c form.Criteria) string {
	parts := []string{c.City, catalog.PriceLabel(c.PriceRange)}
	if len(c.Cuisines) > 0 {
		parts = append(parts, strings.Join(c.Cuisines, ", "))
	}
	if c.MinRating > 0 {
		parts = append(parts, formatNumber(c.MinRating)+"★+")
	}
	return strings.Join(parts, " · ")
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

func (a *App) renderResults() string {
	var blocks []string
	if a.loading {
		blocks = append(blocks, loadingStyle.Render(a.spinner.View()+" Finding the best restaurants for you..."))
	}
	if a.errText != "" {
		blocks = append(blocks, errorBoxStyle.Width(a.fieldWidth()).Render("⚠ "+a.errText))
	}
	if a.summary != "" && len(a.cards) > 0 {
		blocks = append(blocks, summaryStyle.Render(emphasize(a.summary)))
	}
	for i := 0; i < a.revealed && i < len(a.cards); i++ {
		blocks = append(blocks, a.renderCard(i))
	}
	if len(blocks) == 0 {
		return ""
	}
	return "\n" + strings.Join(blocks, "\n")
}

func (a *App) renderCard(i int) string {
	r := a.cards[i]
	title := cardTitleStyle.Render(fmt.Sprintf("%d. %s", i+1, r.Name))
	rating := cardRatingStyle.Render(fmt.Sprintf("★ %.1f", r.Rating))
	if r.Votes > 0 {
		rating += cardMetaStyle.Render(fmt.Sprintf(" (%d votes)", r.Votes))
	}
	if n, ok := a.rated[i]; ok {
		rating += "  " + optionCheckStyle.Render(fmt.Sprintf("you rated %d★", n))
	}
	lines := []string{
		title + "  " + rating,
		cardMetaStyle.Render("🍽  " + r.Cuisines),
		cardCostStyle.Render(fmt.Sprintf("💰 %s%s for two", a.deps.CurrencySymbol, formatNumber(r.AverageCost))),
		cardMetaStyle.Render("📍 " + r.Address),
	}
	if strings.TrimSpace(r.Reasoning) != "" {
		lines = append(lines, "", emphasize(r.Reasoning))
	}
	style := cardStyle
	if i == a.cardCursor {
		style = cardFocusStyle
	}
	card := style.Width(a.fieldWidth()).Render(strings.Join(lines, "\n"))
	// stagger
	return lipgloss.NewStyle().MarginLeft(i % 3).Render(card)
}

var whyRe = regexp.MustCompile(`(?i)why you'll like it:`)

// emphasize renders every "Why you'll like it:" marker bold.
func emphasize(s string) string {
	return whyRe.ReplaceAllStringFunc(s, func(m string) string { return emphasisStyle.Render(m) })
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
