package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/threestatement/internal/ledger"
)

func newPeriodsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List, delete and check imported periods",
	}
	cmd.AddCommand(newPeriodsListCommand(opts), newPeriodsDeleteCommand(opts), newPeriodsValidateCommand(opts))
	return cmd
}

func newPeriodsListCommand(opts *globalOptions) *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported period dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			dates, err := a.Store.ListPeriods(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Fprintln(cmd.OutOrStdout(), ledger.FormatDate(d))
			}
			return nil
		},
	}
	companyFlag(cmd, &companyID)
	return cmd
}

func newPeriodsDeleteCommand(opts *globalOptions) *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "delete <YYYY-MM-DD>",
		Short: "Delete a period and any accounts left without entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := ledger.ParseDate(args[0])
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Store.DeletePeriod(cmd.Context(), companyID, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted period %s: %d entries, %d accounts, %d mappings\n",
				ledger.FormatDate(date), res.EntriesDeleted, res.AccountsDeleted, res.MappingsDeleted)
			return nil
		},
	}
	companyFlag(cmd, &companyID)
	return cmd
}

func newPeriodsValidateCommand(opts *globalOptions) *cobra.Command {
	var companyID, asOf string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every period sums to zero and report mapping completeness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := ledger.ParseDate(asOf)
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.Integrity.ComprehensiveValidation(cmd.Context(), companyID, date)
			if err != nil {
				return err
			}
			failed := 0
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "CHECK\tPERIOD\tRESULT\tMESSAGE")
			for _, r := range results {
				result := "ok"
				if !r.IsValid {
					result = "FAIL"
					failed++
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ValidationType, r.PeriodDate, result, r.Message)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d checks failed", failed)
			}
			return nil
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().StringVar(&asOf, "as-of", ledger.FormatDate(time.Now().UTC()), "date for the completeness check")
	return cmd
}
