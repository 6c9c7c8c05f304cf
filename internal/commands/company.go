package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/threestatement/internal/ledger"
)

func newCompanyCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Create and list companies",
	}
	cmd.AddCommand(newCompanyCreateCommand(opts), newCompanyListCommand(opts))
	return cmd
}

func newCompanyCreateCommand(opts *globalOptions) *cobra.Command {
	var (
		name          string
		fiscalYearEnd int
		currency      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return errors.New("--name must not be blank")
			}
			if fiscalYearEnd < 1 || fiscalYearEnd > 12 {
				return fmt.Errorf("--fiscal-year-end must be 1-12, got %d", fiscalYearEnd)
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Store.CreateCompany(cmd.Context(), ledger.Company{
				Name:          strings.TrimSpace(name),
				FiscalYearEnd: fiscalYearEnd,
				Currency:      currency,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created company %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().IntVar(&fiscalYearEnd, "fiscal-year-end", 12, "month the fiscal year ends (1-12)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")
	return cmd
}

func newCompanyListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			companies, err := a.Store.ListCompanies(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tFYE\tCURRENCY")
			for _, c := range companies {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ID, c.Name, c.FiscalYearEnd, c.Currency)
			}
			return tw.Flush()
		},
	}
}

// companyFlag registers the --company flag shared by per-company commands.
func companyFlag(cmd *cobra.Command, id *string) {
	cmd.Flags().StringVar(id, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")
}
