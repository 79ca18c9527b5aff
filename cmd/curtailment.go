package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/esom/app"
	"github.com/kilianp07/esom/core/dispatch"
	"github.com/kilianp07/esom/core/scenario"
	"github.com/kilianp07/esom/infra/timeseries"
)

var (
	curtShare  float64
	curtMargin float64
	curtMix    map[string]string
)

var curtailmentCmd = &cobra.Command{
	Use:   "curtailment",
	Short: "Report baseline curtailment of a renewable target on the configured profiles",
	RunE:  reportCurtailment,
}

func init() {
	curtailmentCmd.Flags().Float64Var(&curtShare, "share", 0.8, "renewable share of demand")
	curtailmentCmd.Flags().Float64Var(&curtMargin, "margin", scenario.DefaultRenewableMargin, "capacity safety margin")
	curtailmentCmd.Flags().StringToStringVar(&curtMix, "mix", map[string]string{"cf_wind": "0.6", "cf_solar": "0.4"}, "capacity share per profile column")
	rootCmd.AddCommand(curtailmentCmd)
}

func reportCurtailment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ref, err := app.LoadReference(cfg)
	if err != nil {
		return err
	}
	demand := ref.Profiles[timeseries.DemandColumn]
	demandTWh := scenario.EnergyTWh(demand)
	gw, err := scenario.DeriveRenewableCapacity(demandTWh, curtShare, curtMargin)
	if err != nil {
		return err
	}

	vres := make([]float64, len(demand))
	for col, raw := range curtMix {
		share, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("mix %s: %w", col, err)
		}
		cf, ok := ref.Profiles[col]
		if !ok {
			return fmt.Errorf("profile %s not found", col)
		}
		for h := range vres {
			if h < len(cf) {
				vres[h] += gw * dispatch.MWPerGW * share * cf[h]
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "demand:              %.3f TWh\n", demandTWh)
	fmt.Fprintf(out, "renewable capacity:  %.1f GW\n", gw)
	fmt.Fprintf(out, "renewable energy:    %.3f TWh\n", scenario.EnergyTWh(vres))
	fmt.Fprintf(out, "baseline curtailment: %.3f TWh\n", scenario.BaselineCurtailment(demand, vres))
	fmt.Fprintf(out, "utilization:         %.1f %%\n", scenario.Utilization(demand, vres))
	return nil
}
