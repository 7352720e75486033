package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tokentop/internal/metrics"
)

// RenderUsageGauge produces a text-based gauge that fills from left to right
// as budget usage increases (0=empty, 100=full). Colors follow the usage
// tier: green below 25%, yellow to 74%, red from 75%.
func RenderUsageGauge(percent int, width int) string {
	if width < 5 {
		width = 5
	}

	display := percent
	if display > 100 {
		display = 100
	}
	if display < 0 {
		display = 0
	}

	filled := display * width / 100
	empty := width - filled

	color := tierColor(metrics.UsageTier(percent))
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("░", empty))

	pct := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%3d%%", percent))
	return bar + " " + pct
}

func tierColor(tier metrics.Tier) lipgloss.Color {
	switch tier {
	case metrics.TierLow:
		return colorGreen
	case metrics.TierMedium:
		return colorYellow
	default:
		return colorRed
	}
}
