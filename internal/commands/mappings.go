package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/threestatement/internal/app"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/mapping"
)

func newMappingsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Map company accounts to the master chart",
	}
	cmd.AddCommand(
		newMappingsListCommand(opts),
		newMappingsSetCommand(opts),
		newMappingsUnmappedCommand(opts),
		newMappingsResetCommand(opts),
	)
	return cmd
}

func newMappingsListCommand(opts *globalOptions) *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List company accounts with their master account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ms, err := a.Mappings.Mappings(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NUMBER\tNAME\tMASTER\tCATEGORY")
			for _, m := range ms {
				code, category := "-", "-"
				if m.Master != nil {
					code, category = m.Master.Code, string(m.Master.Category)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ImportAccountNumber, m.ImportAccountName, code, category)
			}
			return tw.Flush()
		},
	}
	companyFlag(cmd, &companyID)
	return cmd
}

func newMappingsSetCommand(opts *globalOptions) *cobra.Command {
	var companyID, mappedBy string

	cmd := &cobra.Command{
		Use:     "set <account-number>=<master-code>...",
		Short:   "Map imported account numbers to master account codes",
		Example: "  tsm mappings set --company $ID 1000=1000 4100=4000",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			updates, err := resolvePairs(cmd, a, companyID, pairs)
			if err != nil {
				return err
			}
			n, err := a.Mappings.SetMappings(cmd.Context(), companyID, updates, mappedBy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mapped %d accounts\n", n)

			c, err := a.Mappings.Completeness(cmd.Context(), companyID, time.Now().UTC())
			if err != nil {
				return err
			}
			if !c.Complete() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d accounts remain unmapped (%s)\n", c.UnmappedAccounts, formatCents(c.UnmappedCents, currencyOf(cmd, a, companyID)))
			}
			return nil
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().StringVar(&mappedBy, "mapped-by", "tsm", "recorded author of the mappings")
	return cmd
}

type pair struct{ number, code string }

func parsePairs(args []string) ([]pair, error) {
	out := make([]pair, 0, len(args))
	for _, arg := range args {
		number, code, ok := strings.Cut(arg, "=")
		number, code = strings.TrimSpace(number), strings.TrimSpace(code)
		if !ok || number == "" || code == "" {
			return nil, fmt.Errorf("invalid mapping %q: want <account-number>=<master-code>", arg)
		}
		out = append(out, pair{number: number, code: code})
	}
	return out, nil
}

func resolvePairs(cmd *cobra.Command, a *app.App, companyID string, pairs []pair) ([]mapping.Update, error) {
	ctx := cmd.Context()
	updates := make([]mapping.Update, 0, len(pairs))
	for _, p := range pairs {
		acct, err := a.Store.FindCompanyAccount(ctx, companyID, p.number)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return nil, fmt.Errorf("%w: no imported account %s", mapping.ErrUnknownAccount, p.number)
			}
			return nil, err
		}
		master, err := a.Store.GetMasterAccountByCode(ctx, p.code)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return nil, fmt.Errorf("%w: no master account %s", mapping.ErrUnknownAccount, p.code)
			}
			return nil, err
		}
		updates = append(updates, mapping.Update{CompanyAccountID: acct.ID, MasterAccountID: master.ID})
	}
	return updates, nil
}

func newMappingsUnmappedCommand(opts *globalOptions) *cobra.Command {
	var companyID, asOf string

	cmd := &cobra.Command{
		Use:   "unmapped",
		Short: "List active accounts without a mapping and their balances",
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

			list, err := a.Mappings.Unmapped(cmd.Context(), companyID, date)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All active accounts are mapped")
				return nil
			}
			cur := currencyOf(cmd, a, companyID)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NUMBER\tNAME\tBALANCE")
			for _, u := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ImportAccountNumber, u.ImportAccountName, formatCents(u.BalanceCents, cur))
			}
			return tw.Flush()
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().StringVar(&asOf, "as-of", ledger.FormatDate(time.Now().UTC()), "balances from inception through this date")
	return cmd
}

func newMappingsResetCommand(opts *globalOptions) *cobra.Command {
	var companyID string
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every mapping of a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset removes all mappings; pass --yes to confirm")
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Mappings.ClearMappings(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d mappings\n", n)
			return nil
		},
	}
	companyFlag(cmd, &companyID)
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

// currencyOf falls back to USD when the company cannot be read.
func currencyOf(cmd *cobra.Command, a *app.App, companyID string) string {
	c, err := a.Store.GetCompany(cmd.Context(), companyID)
	if err != nil || c.Currency == "" {
		return "USD"
	}
	return c.Currency
}
