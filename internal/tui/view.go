package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/samber/lo"

	"tokentop/internal/metrics"
)

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCard())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.renderHelp())
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	brand := headerBrandStyle.Render("tokentop")
	dir := dimStyle.Render(ansi.Truncate(m.acc.Dir(), max(m.width-14, 10), "…"))
	return " " + brand + "  " + dir
}

func (m Model) renderCard() string {
	if !m.hasData {
		return cardStyle.Render(dimStyle.Render("waiting for first poll..."))
	}

	totals := m.totals
	pricing := metrics.Pricing{PerKInput: m.cfg.PricePerKInput, PerKOutput: m.cfg.PricePerKOutput}

	total := metrics.TotalTokens(totals.InputTokens, totals.OutputTokens)
	percent := metrics.UsagePercent(total, m.cfg.TokenBudget)
	remaining := metrics.Remaining(m.cfg.TokenBudget, total)
	cost := metrics.Cost(totals.InputTokens, totals.OutputTokens, pricing)
	duration := metrics.DurationSeconds(totals.SessionStart, m.now())

	if total == 0 && totals.SessionStart == "" {
		return cardStyle.Render(
			sectionHeaderStyle.Render("no data yet") + "\n" +
				dimStyle.Render("waiting for the session to produce usage records"))
	}

	gaugeWidth := max(min(m.width-24, 50), 10)

	rows := []string{
		sectionHeaderStyle.Render("Session"),
		row("Tokens", fmt.Sprintf("%s in · %s out",
			valueStyle.Render(formatCount(totals.InputTokens)),
			valueStyle.Render(formatCount(totals.OutputTokens)))),
		row("Cache", fmt.Sprintf("%s read · %s written",
			formatCount(totals.CacheReadInputTokens),
			formatCount(totals.CacheCreationInputTokens))),
		row("Total", valueStyle.Render(formatCount(total))),
		"",
		row("Budget", RenderUsageGauge(percent, gaugeWidth)),
		row("Remaining", valueStyle.Render(formatCount(remaining))),
		row("Cost", valueStyle.Render(fmt.Sprintf("$%.2f", cost))),
		row("Elapsed", valueStyle.Render(metrics.FormatDuration(duration))),
	}

	if m.burnSamples > 1 {
		m.burn.Draw()
		rows = append(rows, "", sectionHeaderStyle.Render("Burn"), m.burn.View())
	}

	return cardStyle.Width(max(m.width-4, 30)).Render(strings.Join(rows, "\n"))
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-10s", label)) + value
}

func (m Model) renderHelp() string {
	keys := []struct{ key, desc string }{
		{"q", "quit"},
		{"r", "refresh now"},
		{"R", "reset totals"},
		{"?", "toggle help"},
	}
	lines := lo.Map(keys, func(k struct{ key, desc string }, _ int) string {
		return "  " + valueStyle.Render(k.key) + "  " + labelStyle.Render(k.desc)
	})
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	parts := []string{
		"q quit · r refresh · R reset · ? help",
		fmt.Sprintf("poll %s", m.interval),
	}
	if m.polling {
		parts = append(parts, "polling…")
	}
	footer := footerStyle.Render(" " + strings.Join(parts, "  ·  "))
	if m.updateNotice != "" {
		footer = lipgloss.JoinHorizontal(lipgloss.Top, footer, "  ", noticeStyle.Render(m.updateNotice))
	}
	return footer
}

// formatCount renders an integer with thousands separators.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
