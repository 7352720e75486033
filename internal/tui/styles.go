package tui

import "github.com/charmbracelet/lipgloss"

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorSurface0 = lipgloss.Color("#313244") // card bg
	colorSurface1 = lipgloss.Color("#45475A") // lighter surface
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted, borders

	colorAccent = lipgloss.Color("#CBA6F7") // mauve – brand
	colorBlue   = lipgloss.Color("#89B4FA") // section headers
	colorGreen  = lipgloss.Color("#A6E3A1") // low usage
	colorYellow = lipgloss.Color("#F9E2AF") // medium usage
	colorRed    = lipgloss.Color("#F38BA8") // high usage
	colorTeal   = lipgloss.Color("#94E2D5") // sparkline
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
