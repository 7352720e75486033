package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tokentop/internal/config"
	"tokentop/internal/history"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent persisted poll snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.Open(config.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			snaps, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no history recorded yet")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s  %10s  %10s  %10s  %10s  %8s\n",
				"recorded", "input", "output", "cache-r", "cache-w", "cost")
			for _, s := range snaps {
				fmt.Fprintf(out, "%-20s  %10d  %10d  %10d  %10d  $%7.2f\n",
					s.RecordedAt.Local().Format(time.DateTime),
					s.InputTokens, s.OutputTokens,
					s.CacheReadInputTokens, s.CacheCreationInputTokens,
					s.CostUSD)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of snapshots to show")
	return cmd
}
