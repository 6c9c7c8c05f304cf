package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ledger"
)

func newForecastCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Configure and run driver-based forecasts",
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change a forecast scenario",
	}
	configCmd.AddCommand(newForecastShowCommand(opts), newForecastSetCommand(opts))

	cmd.AddCommand(configCmd, newForecastRunCommand(opts))
	return cmd
}

func newForecastShowCommand(opts *globalOptions) *cobra.Command {
	var companyID, scenario string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a scenario's drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := a.Forecasts.GetConfig(cmd.Context(), companyID, scenario)
			if err != nil {
				return err
			}
			printConfig(cmd, *cfg, currencyOf(cmd, a, companyID))
			return nil
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario name (default scenario when empty)")
	return cmd
}

func printConfig(cmd *cobra.Command, cfg ledger.ForecastConfig, cur string) {
	base := "-"
	if cfg.BasePeriod != nil {
		base = ledger.FormatDate(*cfg.BasePeriod)
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "scenario\t%s\n", cfg.ScenarioName)
	fmt.Fprintf(tw, "base period\t%s\n", base)
	fmt.Fprintf(tw, "periods\t%d\n", cfg.NumPeriods)
	fmt.Fprintf(tw, "revenue growth\t%s\n", formatBps(cfg.RevenueGrowthBps))
	fmt.Fprintf(tw, "cogs of revenue\t%s\n", formatBps(cfg.COGSPctBps))
	fmt.Fprintf(tw, "opex growth\t%s\n", formatBps(cfg.OpexGrowthBps))
	fmt.Fprintf(tw, "tax rate\t%s\n", formatBps(cfg.TaxRateBps))
	fmt.Fprintf(tw, "working capital of revenue\t%s\n", formatBps(cfg.WCPctBps))
	fmt.Fprintf(tw, "capex per period\t%s\n", formatCents(cfg.CapexCents, cur))
	fmt.Fprintf(tw, "d&a per period\t%s\n", formatCents(cfg.DACents, cur))
	_ = tw.Flush()
}

type forecastSetFlags struct {
	companyID, scenario       string
	basePeriod                string
	numPeriods                int
	revenueGrowth, cogs, opex string
	tax, workingCapital       string
	capex, da                 string
}

func newForecastSetCommand(opts *globalOptions) *cobra.Command {
	var f forecastSetFlags

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a scenario; unset flags keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := a.Forecasts.GetConfig(cmd.Context(), f.companyID, f.scenario)
			switch {
			case errors.Is(err, forecast.ErrConfigNotFound):
				name := f.scenario
				if name == "" {
					name = a.Forecasts.DefaultScenario()
				}
				d := forecast.DefaultConfig(f.companyID, name)
				cfg = &d
			case err != nil:
				return err
			}

			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			saved, err := a.Forecasts.UpsertConfig(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			printConfig(cmd, *saved, currencyOf(cmd, a, f.companyID))
			return nil
		},
	}

	companyFlag(cmd, &f.companyID)
	fl := cmd.Flags()
	fl.StringVar(&f.scenario, "scenario", "", "scenario name (default scenario when empty)")
	fl.StringVar(&f.basePeriod, "base-period", "", "imported period the forecast starts from, YYYY-MM-DD")
	fl.IntVar(&f.numPeriods, "periods", 0, fmt.Sprintf("number of monthly periods, 1-%d", forecast.MaxPeriods))
	fl.StringVar(&f.revenueGrowth, "revenue-growth", "", "monthly revenue growth, e.g. 5%")
	fl.StringVar(&f.cogs, "cogs", "", "cost of goods sold as a share of revenue")
	fl.StringVar(&f.opex, "opex-growth", "", "monthly operating expense growth")
	fl.StringVar(&f.tax, "tax-rate", "", "tax rate on positive EBT")
	fl.StringVar(&f.workingCapital, "working-capital", "", "net working capital as a share of revenue")
	fl.StringVar(&f.capex, "capex", "", "capital expenditure per period, e.g. 2500.00")
	fl.StringVar(&f.da, "da", "", "depreciation and amortisation per period")
	return cmd
}

// apply copies the flags the user set onto cfg.
func (f *forecastSetFlags) apply(cmd *cobra.Command, cfg *ledger.ForecastConfig) error {
	changed := cmd.Flags().Changed

	if changed("base-period") {
		d, err := ledger.ParseDate(f.basePeriod)
		if err != nil {
			return err
		}
		cfg.BasePeriod = &d
	}
	if changed("periods") {
		cfg.NumPeriods = f.numPeriods
	}

	percents := []struct {
		flag string
		raw  string
		dst  *int64
	}{
		{"revenue-growth", f.revenueGrowth, &cfg.RevenueGrowthBps},
		{"cogs", f.cogs, &cfg.COGSPctBps},
		{"opex-growth", f.opex, &cfg.OpexGrowthBps},
		{"tax-rate", f.tax, &cfg.TaxRateBps},
		{"working-capital", f.workingCapital, &cfg.WCPctBps},
	}
	for _, p := range percents {
		if !changed(p.flag) {
			continue
		}
		bps, err := parsePercent(p.raw)
		if err != nil {
			return fmt.Errorf("--%s: %w", p.flag, err)
		}
		*p.dst = bps
	}

	amounts := []struct {
		flag string
		raw  string
		dst  *int64
	}{
		{"capex", f.capex, &cfg.CapexCents},
		{"da", f.da, &cfg.DACents},
	}
	for _, p := range amounts {
		if !changed(p.flag) {
			continue
		}
		cents, err := parseAmount(p.raw)
		if err != nil {
			return fmt.Errorf("--%s: %w", p.flag, err)
		}
		*p.dst = cents
	}
	return nil
}

func newForecastRunCommand(opts *globalOptions) *cobra.Command {
	var companyID, scenario, csvPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Project a scenario from its base period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Forecasts.Run(cmd.Context(), companyID, scenario)
			if err != nil {
				return err
			}

			if csvPath != "" {
				w := cmd.OutOrStdout()
				if csvPath != "-" {
					f, err := os.Create(csvPath)
					if err != nil {
						return fmt.Errorf("creating %s: %w", csvPath, err)
					}
					defer f.Close()
					w = f
				}
				return forecast.WriteCSV(w, res.Projections)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			cur := currencyOf(cmd, a, companyID)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scenario %s from %s\n", res.Config.ScenarioName, res.BasePeriod)
			tw := newTable(out)
			fmt.Fprintln(tw, "PERIOD\tREVENUE\tEBITDA\tNET INCOME\tCFO\tENDING CASH")
			for _, p := range res.Projections {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.Period,
					formatCents(p.RevenueCents, cur),
					formatCents(p.EBITDACents, cur),
					formatCents(p.NetIncomeCents, cur),
					formatCents(p.NetCashFromOperationsCents, cur),
					formatCents(p.EndingCashCents, cur))
			}
			return tw.Flush()
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario name (default scenario when empty)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the projections as CSV to this path, - for stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
