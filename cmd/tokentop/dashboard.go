package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tokentop/internal/appupdate"
	"tokentop/internal/config"
	"tokentop/internal/history"
	"tokentop/internal/monitor"
	"tokentop/internal/session"
	"tokentop/internal/tui"
	"tokentop/internal/version"
	"tokentop/internal/watch"
)

// maxBackoffFactor bounds how far the adaptive interval can drift from the
// configured base.
const maxBackoffFactor = 8

func runDashboard(cfg config.Config, projectPath string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir, err := session.Resolve(projectsRoot(cfg), projectPath)
	if err != nil {
		return err
	}

	base := time.Duration(cfg.RefreshSeconds) * time.Second
	acc := monitor.NewAccumulator(dir, base, maxBackoffFactor*base)

	store, err := history.Open(config.HistoryPath())
	if err != nil {
		log.Printf("[dashboard] history disabled: %v", err)
		store = nil
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewModel(ctx, acc, cfg, store)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go watch.Run(ctx, dir, []string{session.SubagentsDirName}, func() {
		program.Send(tui.RefreshHintMsg{})
	})

	go func() {
		result, err := appupdate.Check(ctx, appupdate.CheckOptions{CurrentVersion: version.Version})
		if err != nil || !result.UpdateAvailable {
			return
		}
		program.Send(tui.UpdateNoticeMsg{LatestVersion: result.LatestVersion})
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("TUI error: %v", err)
	}
	return nil
}
