package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/threestatement/internal/ingest"
	"github.com/example/threestatement/internal/ledger"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var companyID, period string

	cmd := &cobra.Command{
		Use:   "import <file.csv|->",
		Short: "Import a trial balance CSV as one period, replacing any earlier import of that date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := ledger.ParseDate(period)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening trial balance: %w", err)
				}
				defer f.Close()
				r = f
			}
			rows, err := ingest.ReadCSV(r)
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Importer.Import(cmd.Context(), companyID, date, rows)
			if err != nil {
				return err
			}

			verb := "Replaced"
			if res.PeriodCreated {
				verb = "Imported"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s period %s: %d entries, %d new accounts\n",
				verb, ledger.FormatDate(res.PeriodDate), res.EntriesWritten, res.AccountsAdded)

			c, err := a.Mappings.Completeness(cmd.Context(), companyID, res.PeriodDate)
			if err != nil {
				return err
			}
			if !c.Complete() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d accounts are unmapped; run `tsm mappings unmapped --company %s`\n", c.UnmappedAccounts, companyID)
			}
			return nil
		},
	}

	companyFlag(cmd, &companyID)
	cmd.Flags().StringVar(&period, "period", "", "period date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}
