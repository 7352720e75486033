package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tokentop/internal/config"
	"tokentop/internal/monitor"
)

func testModel(t *testing.T) Model {
	t.Helper()
	acc := monitor.NewAccumulator(t.TempDir(), 2*time.Second, 60*time.Second)
	return NewModel(context.Background(), acc, config.DefaultConfig(), nil)
}

func TestUpdate_QuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	}
	for _, key := range keys {
		m := testModel(t)
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Errorf("key %q should produce a quit command", key.String())
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %q produced %T, want tea.QuitMsg", key.String(), cmd())
		}
	}
}

func TestUpdate_PollDoneAppliesTotalsAndSchedulesTick(t *testing.T) {
	m := testModel(t)

	totals := monitor.Totals{InputTokens: 100, OutputTokens: 20, SessionStart: "2026-08-01T10:00:00.000Z"}
	next, cmd := m.Update(pollDoneMsg{changed: true, totals: totals, interval: 2 * time.Second})
	got := next.(Model)

	if got.totals.InputTokens != 100 {
		t.Errorf("totals not applied: %+v", got.totals)
	}
	if !got.hasData {
		t.Error("hasData should be set after a poll result")
	}
	if got.polling {
		t.Error("polling flag should clear on poll completion")
	}
	if cmd == nil {
		t.Error("a tick should be scheduled after a poll")
	}
}

func TestUpdate_UnchangedPollKeepsTotals(t *testing.T) {
	m := testModel(t)
	first, _ := m.Update(pollDoneMsg{changed: true, totals: monitor.Totals{InputTokens: 50}, interval: 2 * time.Second})
	m = first.(Model)

	second, _ := m.Update(pollDoneMsg{changed: false, totals: monitor.Totals{}, interval: 2 * time.Second})
	got := second.(Model)
	if got.totals.InputTokens != 50 {
		t.Errorf("unchanged poll should not disturb totals, got %+v", got.totals)
	}
}

func TestUpdate_RefreshHintWhilePollingDefers(t *testing.T) {
	m := testModel(t)
	// NewModel starts in polling state (Init issues the first poll).
	next, cmd := m.Update(RefreshHintMsg{})
	got := next.(Model)
	if cmd != nil {
		t.Error("no new poll should start while one is in flight")
	}
	if !got.pendingRefresh {
		t.Error("hint during a poll should set pendingRefresh")
	}

	// Completing the poll runs the deferred refresh.
	after, cmd := got.Update(pollDoneMsg{interval: 2 * time.Second})
	if !after.(Model).polling {
		t.Error("deferred refresh should start immediately after the poll")
	}
	if cmd == nil {
		t.Error("expected a follow-up command")
	}
}

func TestUpdate_HelpToggle(t *testing.T) {
	m := testModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !next.(Model).showHelp {
		t.Error("? should open help")
	}
	again, _ := next.(Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if again.(Model).showHelp {
		t.Error("? should close help")
	}
}

func TestView_NoDataState(t *testing.T) {
	m := testModel(t)
	m.width = 80
	m.height = 24

	view := m.View()
	if !strings.Contains(view, "waiting for first poll") {
		t.Errorf("expected waiting state, got:\n%s", view)
	}
}

func TestView_RendersTotals(t *testing.T) {
	m := testModel(t)
	m.width = 80
	m.height = 24
	m.hasData = true
	m.totals = monitor.Totals{
		InputTokens:  12345,
		OutputTokens: 678,
		SessionStart: "2026-08-01T10:00:00.000Z",
	}
	m.now = func() time.Time { return time.Date(2026, 8, 1, 11, 2, 3, 0, time.UTC) }

	view := m.View()
	for _, want := range []string{"12,345", "678", "01:02:03", "Budget"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestUpdate_UpdateNotice(t *testing.T) {
	m := testModel(t)
	next, _ := m.Update(UpdateNoticeMsg{LatestVersion: "v1.2.0"})
	m = next.(Model)
	m.width = 80
	if !strings.Contains(m.View(), "v1.2.0") {
		t.Error("footer should surface the update notice")
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatCount(tt.n); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
