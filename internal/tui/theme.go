package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values.
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

// ---------------------------------------------------------------------------
// Semantic color aliases
// ---------------------------------------------------------------------------

const (
	colorAccent  = colorPink
	colorBrand   = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	headerAppStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle).
			Padding(0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	fieldLabelStyle       = lipgloss.NewStyle().Foreground(colorSubtext0)
	fieldLabelActiveStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)

	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)
	displayFocusStyle = displayStyle.BorderForeground(colorFocus)
	placeholderStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Background(colorMauve).
			Padding(0, 1)
	tagRemoveStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Background(colorMauve).
			Bold(true)

	dropdownStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
	optionCursorStyle = lipgloss.NewStyle().Background(colorSurface1).Bold(true)
	optionCheckStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	noResultsStyle    = lipgloss.NewStyle().Foreground(colorOverlay1).Italic(true)

	submitStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Background(colorBlue).
			Bold(true).
			Padding(0, 2)
	submitFocusStyle    = submitStyle.Background(colorFocus)
	submitDisabledStyle = lipgloss.NewStyle().
				Foreground(colorOverlay0).
				Background(colorSurface0).
				Padding(0, 2)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Foreground(colorError).
			Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().Foreground(colorInfo)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorTeal).
			Foreground(colorSubtext1).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface2).
			Padding(0, 1)
	cardFocusStyle  = cardStyle.BorderForeground(colorAccent)
	cardTitleStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	cardRatingStyle = lipgloss.NewStyle().Foreground(colorYellow)
	cardMetaStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	cardCostStyle   = lipgloss.NewStyle().Foreground(colorPeach)
	emphasisStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
	modalTitleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
)
