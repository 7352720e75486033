// Package tui renders the tokentop dashboard: a single-screen bubbletea
// program showing running token totals, estimated cost, and budget headroom
// for one monitored session.
package tui

import (
	"context"
	"log"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tokentop/internal/config"
	"tokentop/internal/history"
	"tokentop/internal/metrics"
	"tokentop/internal/monitor"
)

// RefreshHintMsg asks the model to poll ahead of the next tick. The watcher
// sends it when a transcript changes on disk.
type RefreshHintMsg struct{}

// UpdateNoticeMsg carries the release-check result into the footer.
type UpdateNoticeMsg struct {
	LatestVersion string
}

type tickMsg time.Time

type pollDoneMsg struct {
	changed  bool
	totals   monitor.Totals
	interval time.Duration
}

const sparklineHeight = 2

type Model struct {
	acc   *monitor.Accumulator
	cfg   config.Config
	store *history.Store // nil when history persistence is unavailable
	ctx   context.Context

	width  int
	height int

	totals         monitor.Totals
	hasData        bool
	polling        bool
	pendingRefresh bool
	showHelp       bool
	updateNotice   string
	interval       time.Duration

	burn            sparkline.Model
	burnSamples     int
	lastTotalTokens int64

	now func() time.Time
}

func NewModel(ctx context.Context, acc *monitor.Accumulator, cfg config.Config, store *history.Store) Model {
	return Model{
		acc:      acc,
		cfg:      cfg,
		store:    store,
		ctx:      ctx,
		polling:  true, // Init issues the first poll
		interval: acc.Interval(),
		burn: sparkline.New(40, sparklineHeight,
			sparkline.WithStyle(lipgloss.NewStyle().Foreground(colorTeal))),
		now: time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return m.pollCmd()
}

// pollCmd runs one poll cycle off the Update goroutine. Only one poll is in
// flight at a time; Update guards with m.polling.
func (m Model) pollCmd() tea.Cmd {
	acc, cfg, store, ctx := m.acc, m.cfg, m.store, m.ctx
	return func() tea.Msg {
		changed := acc.Poll(ctx)
		totals := acc.Totals()

		if changed && store != nil {
			cost := metrics.Cost(totals.InputTokens, totals.OutputTokens,
				metrics.Pricing{PerKInput: cfg.PricePerKInput, PerKOutput: cfg.PricePerKOutput})
			err := store.Append(ctx, history.Snapshot{
				SessionDir:               acc.Dir(),
				InputTokens:              totals.InputTokens,
				OutputTokens:             totals.OutputTokens,
				CacheReadInputTokens:     totals.CacheReadInputTokens,
				CacheCreationInputTokens: totals.CacheCreationInputTokens,
				CostUSD:                  cost,
			})
			if err != nil {
				log.Printf("[tui] %v", err)
			}
		}

		return pollDoneMsg{changed: changed, totals: totals, interval: acc.Interval()}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.burn.Resize(sparklineWidth(m.width), sparklineHeight)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m.requestPoll()
		case "R":
			m.acc.Reset()
			m.totals = monitor.Totals{}
			m.burn = sparkline.New(sparklineWidth(m.width), sparklineHeight,
				sparkline.WithStyle(lipgloss.NewStyle().Foreground(colorTeal)))
			m.burnSamples = 0
			m.lastTotalTokens = 0
			return m.requestPoll()
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		}
		return m, nil

	case RefreshHintMsg:
		return m.requestPoll()

	case tickMsg:
		if m.polling {
			return m, nil
		}
		m.polling = true
		return m, m.pollCmd()

	case pollDoneMsg:
		m.polling = false
		m.hasData = true
		m.interval = msg.interval
		if msg.changed {
			m.recordBurn(msg.totals)
			m.totals = msg.totals
		}
		if m.pendingRefresh {
			// The next tick is scheduled when this follow-up poll lands.
			m.pendingRefresh = false
			m.polling = true
			return m, m.pollCmd()
		}
		return m, tickCmd(m.interval)

	case UpdateNoticeMsg:
		if msg.LatestVersion != "" {
			m.updateNotice = "update available: " + msg.LatestVersion
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) requestPoll() (tea.Model, tea.Cmd) {
	if m.polling {
		m.pendingRefresh = true
		return *m, nil
	}
	m.polling = true
	return *m, m.pollCmd()
}

// recordBurn feeds the sparkline with tokens consumed since the previous
// changed poll.
func (m *Model) recordBurn(totals monitor.Totals) {
	total := metrics.TotalTokens(totals.InputTokens, totals.OutputTokens)
	delta := total - m.lastTotalTokens
	if delta < 0 {
		delta = total
	}
	m.lastTotalTokens = total
	m.burn.Push(float64(delta))
	m.burnSamples++
}

func sparklineWidth(termWidth int) int {
	w := termWidth - 12
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	return w
}
