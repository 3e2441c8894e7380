package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	history := &cobra.Command{
		Use:   "history <company>",
		Short: "Show a company's recorded decisions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
	history.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Max entries")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show decision log statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	RootCmd.AddCommand(history, stats)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open decision log: %w", err)
	}
	defer s.Close()

	entries, err := s.History(cmd.Context(), args[0], historyLimit)
	if err != nil {
		return err
	}
	if textFormat() {
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %-16s %+.3f %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.TickID, e.Intent, e.Score, e.Reason)
		}
		return nil
	}
	return printJSON(cmd, entries)
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open decision log: %w", err)
	}
	defer s.Close()

	st, err := s.Stats(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, st)
}
