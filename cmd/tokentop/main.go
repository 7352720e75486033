package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"tokentop/internal/config"
	"tokentop/internal/session"
	"tokentop/internal/version"
)

func main() {
	if os.Getenv("TOKENTOP_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	var flags struct {
		project        string
		refreshSeconds int
		tokenBudget    int64
	}

	root := cobra.Command{
		Use:   "tokentop",
		Short: "tokentop is a live terminal dashboard for Claude Code token usage and spend.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyFlags(&cfg, cmd, flags.refreshSeconds, flags.tokenBudget)
			return runDashboard(cfg, flags.project)
		},
	}
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentFlags().StringVarP(&flags.project, "project", "p", "",
		"project path to monitor (default: most recent session)")
	root.PersistentFlags().IntVar(&flags.refreshSeconds, "refresh", 0, "base poll interval in seconds")
	root.PersistentFlags().Int64Var(&flags.tokenBudget, "budget", 0, "token budget for the run")

	root.AddCommand(newOnceCommand(&cfg, &flags.project))
	root.AddCommand(newHistoryCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the tokentop version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.String())
		},
	})

	if err := root.Execute(); err != nil {
		reportStartupError(err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, cmd *cobra.Command, refreshSeconds int, tokenBudget int64) {
	if cmd.Flags().Changed("refresh") {
		cfg.RefreshSeconds = refreshSeconds
	}
	if cmd.Flags().Changed("budget") {
		cfg.TokenBudget = tokenBudget
	}
}

// reportStartupError keeps the two fatal startup classes distinguishable: a
// missing session tells the user to start Claude Code, anything else is a
// configuration problem.
func reportStartupError(err error) {
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(os.Stderr, "No Claude Code session found.")
		fmt.Fprintln(os.Stderr, "Start Claude Code in the project you want to monitor, then retry.")
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func projectsRoot(cfg config.Config) string {
	if cfg.ProjectsDir != "" {
		return cfg.ProjectsDir
	}
	return session.DefaultProjectsRoot()
}
