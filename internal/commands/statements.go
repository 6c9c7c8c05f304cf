package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/statements"
)

func newStatementsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Derive income statements, balance sheets and cash flow statements",
	}
	cmd.AddCommand(
		newIncomeCommand(opts),
		newBalanceCommand(opts),
		newCashFlowCommand(opts),
		newSummaryCommand(opts),
	)
	return cmd
}

// selectionFlags is the --periods or --from/--to choice shared by the
// period-flow statements.
type selectionFlags struct {
	companyID string
	periods   string
	from, to  string
	asJSON    bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	companyFlag(cmd, &f.companyID)
	cmd.Flags().StringVar(&f.periods, "periods", "", "comma-separated period dates, one statement each")
	cmd.Flags().StringVar(&f.from, "from", "", "range start YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "range end YYYY-MM-DD")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("periods", "from")
	cmd.MarkFlagsMutuallyExclusive("periods", "to")
}

func (f *selectionFlags) resolve() ([]time.Time, ledger.DateRange, error) {
	if f.periods != "" {
		ds, err := parseDateList(f.periods)
		return ds, ledger.DateRange{}, err
	}
	if f.from == "" || f.to == "" {
		return nil, ledger.DateRange{}, errors.New("either --periods or both --from and --to are required")
	}
	start, err := ledger.ParseDate(f.from)
	if err != nil {
		return nil, ledger.DateRange{}, err
	}
	end, err := ledger.ParseDate(f.to)
	if err != nil {
		return nil, ledger.DateRange{}, err
	}
	if end.Before(start) {
		return nil, ledger.DateRange{}, errors.New("--to is before --from")
	}
	return nil, ledger.DateRange{Start: start, End: end}, nil
}

func parseDateList(raw string) ([]time.Time, error) {
	var out []time.Time
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		d, err := ledger.ParseDate(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, errors.New("--periods lists no dates")
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newIncomeCommand(opts *globalOptions) *cobra.Command {
	var f selectionFlags

	cmd := &cobra.Command{
		Use:   "income",
		Short: "Income statement for a date range or a list of periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			periods, rng, err := f.resolve()
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var out []statements.IncomeStatement
			if periods != nil {
				out, err = a.Statements.IncomeStatements(cmd.Context(), f.companyID, periods)
			} else {
				var is *statements.IncomeStatement
				if is, err = a.Statements.IncomeStatement(cmd.Context(), f.companyID, rng); err == nil {
					out = []statements.IncomeStatement{*is}
				}
			}
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			cur := currencyOf(cmd, a, f.companyID)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PERIOD\tREVENUE\tEXPENSES\tNET INCOME")
			for _, is := range out {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", is.Period,
					formatCents(is.TotalRevenuesCents, cur),
					formatCents(is.TotalExpensesCents, cur),
					formatCents(is.NetIncomeCents, cur))
			}
			return tw.Flush()
		},
	}
	f.register(cmd)
	return cmd
}

func newBalanceCommand(opts *globalOptions) *cobra.Command {
	var (
		companyID, asOf, periods string
		asJSON                   bool
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Inception-to-date balance sheet as of one or more dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := periods
			if raw == "" {
				raw = asOf
			}
			if raw == "" {
				return errors.New("either --as-of or --periods is required")
			}
			dates, err := parseDateList(raw)
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := make([]statements.BalanceSheet, 0, len(dates))
			var violation error
			for _, d := range dates {
				bs, err := a.Statements.BalanceSheet(cmd.Context(), companyID, d)
				if bs == nil {
					return err
				}
				if err != nil && violation == nil {
					violation = err
				}
				out = append(out, *bs)
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
				return violation
			}

			cur := currencyOf(cmd, a, companyID)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "AS OF\tASSETS\tLIABILITIES\tEQUITY\tUNMAPPED\tBALANCED")
			for _, bs := range out {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", bs.PeriodDate,
					formatCents(bs.TotalAssetsCents, cur),
					formatCents(bs.TotalLiabilitiesCents, cur),
					formatCents(bs.TotalEquityCents, cur),
					formatCents(bs.UnmappedBalanceCents, cur),
					bs.IsBalancedEquation)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return violation
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().StringVar(&asOf, "as-of", "", "balance sheet date YYYY-MM-DD")
	cmd.Flags().StringVar(&periods, "periods", "", "comma-separated balance sheet dates")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("as-of", "periods")
	return cmd
}

func newCashFlowCommand(opts *globalOptions) *cobra.Command {
	var f selectionFlags

	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Indirect-method cash flow statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			periods, rng, err := f.resolve()
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var out []statements.CashFlowStatement
			if periods != nil {
				out, err = a.Statements.CashFlows(cmd.Context(), f.companyID, periods)
			} else {
				var cf *statements.CashFlowStatement
				if cf, err = a.Statements.CashFlow(cmd.Context(), f.companyID, rng); err == nil {
					out = []statements.CashFlowStatement{*cf}
				}
			}
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			cur := currencyOf(cmd, a, f.companyID)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PERIOD\tNET INCOME\tOPERATING\tINVESTING\tFINANCING\tNET CHANGE\tENDING CASH")
			for _, cf := range out {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", cf.Period,
					formatCents(cf.NetIncomeCents, cur),
					formatCents(cf.NetCashFromOperationsCents, cur),
					formatCents(cf.NetCashFromInvestingCents, cur),
					formatCents(cf.NetCashFromFinancingCents, cur),
					formatCents(cf.NetChangeInCashCents, cur),
					formatCents(cf.EndingCashCents, cur))
			}
			return tw.Flush()
		},
	}
	f.register(cmd)
	return cmd
}

func newSummaryCommand(opts *globalOptions) *cobra.Command {
	var companyID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Actual periods followed by the default-scenario forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.Forecasts.Dashboard(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			cur := currencyOf(cmd, a, companyID)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PERIOD\tTYPE\tREVENUE\tEBITDA\tNET INCOME\tCASH")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Period, r.Type,
					formatCents(r.Revenue, cur),
					formatCents(r.EBITDA, cur),
					formatCents(r.NetIncome, cur),
					formatCents(r.Cash, cur))
			}
			return tw.Flush()
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
