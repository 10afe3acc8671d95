package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset mm2ledger renders with.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

// Status styles shared with the command line output.
var (
	TitleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	InfoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
)

var (
	filterLabelStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	filterInputStyle = lipgloss.NewStyle().Foreground(colorPeach)
	metaStyle        = lipgloss.NewStyle().Foreground(colorSubtext0)
	labelStyle       = lipgloss.NewStyle().Foreground(colorText)
	cursorRowStyle   = lipgloss.NewStyle().Background(colorSurface1).Bold(true)
	checkedStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	footerStyle      = lipgloss.NewStyle().Foreground(colorOverlay1)
	frameStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
)
