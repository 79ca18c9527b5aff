package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/esom/core/history"
)

var (
	histScenario string
	histStatus   string
	histRunID    string
	histSince    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scenario outcomes",
	RunE:  listHistory,
}

func init() {
	historyCmd.Flags().StringVar(&histScenario, "scenario", "", "filter by scenario name")
	historyCmd.Flags().StringVar(&histStatus, "status", "", "filter by status")
	historyCmd.Flags().StringVar(&histRunID, "run", "", "filter by run id")
	historyCmd.Flags().DurationVar(&histSince, "since", 0, "only records newer than this duration")
	rootCmd.AddCommand(historyCmd)
}

func listHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := history.New(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	q := history.Query{Scenario: histScenario, Status: histStatus, RunID: histRunID}
	if histSince > 0 {
		q.Start = time.Now().Add(-histSince)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tSCENARIO\tSTATUS\tOBJECTIVE\tDURATION_MS")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.6g\t%d\n",
			r.Timestamp.Format(time.RFC3339), r.RunID, r.Scenario, r.Status, r.Objective, r.DurationMS)
	}
	return tw.Flush()
}
