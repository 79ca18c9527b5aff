package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/esom/app"
	"github.com/kilianp07/esom/core/scenario"
)

var (
	runCatalog string
	runOnly    []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve the configured scenarios and write the result files",
	RunE:  runScenarios,
}

func init() {
	runCmd.Flags().StringVar(&runCatalog, "scenarios", "", "scenario catalog (YAML), overrides data.scenarios")
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "run only the named scenarios")
	rootCmd.AddCommand(runCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	return withService(runCatalog, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Run(ctx, runOnly)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tSTATUS\tOBJECTIVE\tEMISSIONS_T\tDURATION")
		failed := 0
		for _, r := range res {
			obj, em := "-", "-"
			if r.Status == scenario.StatusOptimal {
				obj = fmt.Sprintf("%.6g", r.Objective)
				em = fmt.Sprintf("%.6g", r.Summary.Emissions)
			} else {
				failed++
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Scenario, r.Status, obj, em, r.Duration.Round(time.Millisecond))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d scenarios did not solve to optimality\n", failed, len(res))
		}
		return nil
	})
}
