package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/esom/app"
	"github.com/kilianp07/esom/core/dispatch"
	"github.com/kilianp07/esom/core/lp"
	"github.com/kilianp07/esom/core/scenario"
)

var (
	lpOutput  string
	lpCatalog string
)

var lpCmd = &cobra.Command{
	Use:   "lp <scenario>",
	Short: "Write the model of a scenario in CPLEX LP format",
	Args:  cobra.ExactArgs(1),
	RunE:  writeModel,
}

func init() {
	lpCmd.Flags().StringVarP(&lpOutput, "output", "o", "", "output file (default stdout)")
	lpCmd.Flags().StringVar(&lpCatalog, "scenarios", "", "scenario catalog (YAML), overrides data.scenarios")
	rootCmd.AddCommand(lpCmd)
}

func writeModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ref, err := app.LoadReference(cfg)
	if err != nil {
		return err
	}
	params, system, err := app.LoadParams(cfg, lpCatalog)
	if err != nil {
		return err
	}
	if system != nil {
		ref.System = *system
	}
	selected, err := scenario.Select(params, args)
	if err != nil {
		return err
	}
	sc, _, err := scenario.Prepare(ref, selected[0])
	if err != nil {
		return err
	}
	m, err := dispatch.Build(sc)
	if err != nil {
		return err
	}

	if lpOutput == "" {
		if err := lp.WriteLP(cmd.OutOrStdout(), m); err != nil {
			return fmt.Errorf("write model: %w", err)
		}
		return nil
	}
	f, err := os.Create(lpOutput)
	if err != nil {
		return err
	}
	if err := lp.WriteLP(f, m); err != nil {
		_ = f.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d variables, %d constraints\n", lpOutput, m.NumVariables(), m.NumConstraints())
	return nil
}
