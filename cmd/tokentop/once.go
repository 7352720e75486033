package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tokentop/internal/config"
	"tokentop/internal/metrics"
	"tokentop/internal/monitor"
	"tokentop/internal/session"
)

// newOnceCommand aggregates a single snapshot and prints it as plain text,
// for scripts and status lines that cannot host the full dashboard.
func newOnceCommand(cfg *config.Config, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Print a single usage snapshot and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("refresh") {
				if v, err := cmd.Flags().GetInt("refresh"); err == nil {
					cfg.RefreshSeconds = v
				}
			}
			if cmd.Flags().Changed("budget") {
				if v, err := cmd.Flags().GetInt64("budget"); err == nil {
					cfg.TokenBudget = v
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			dir, err := session.Resolve(projectsRoot(*cfg), *project)
			if err != nil {
				return err
			}

			acc := monitor.NewAccumulator(dir, monitor.MinInterval, monitor.MinInterval)
			acc.Poll(cmd.Context())
			totals := acc.Totals()

			pricing := metrics.Pricing{PerKInput: cfg.PricePerKInput, PerKOutput: cfg.PricePerKOutput}
			total := metrics.TotalTokens(totals.InputTokens, totals.OutputTokens)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session:    %s\n", dir)
			fmt.Fprintf(out, "input:      %d\n", totals.InputTokens)
			fmt.Fprintf(out, "output:     %d\n", totals.OutputTokens)
			fmt.Fprintf(out, "cache r/w:  %d / %d\n", totals.CacheReadInputTokens, totals.CacheCreationInputTokens)
			fmt.Fprintf(out, "total:      %d (%d%% of %d budget)\n",
				total, metrics.UsagePercent(total, cfg.TokenBudget), cfg.TokenBudget)
			fmt.Fprintf(out, "remaining:  %d\n", metrics.Remaining(cfg.TokenBudget, total))
			fmt.Fprintf(out, "cost:       $%.2f\n", metrics.Cost(totals.InputTokens, totals.OutputTokens, pricing))
			fmt.Fprintf(out, "elapsed:    %s\n",
				metrics.FormatDuration(metrics.DurationSeconds(totals.SessionStart, time.Now())))
			return nil
		},
	}
}
