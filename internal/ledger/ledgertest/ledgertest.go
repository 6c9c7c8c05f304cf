// Package ledgertest opens migrated, seeded in-memory ledger stores for tests.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/ledger"
)

// NewStore returns an in-memory SQLite store with the default chart seeded.
func NewStore(t testing.TB) *ledger.Store {
	t.Helper()

	s, err := ledger.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	_, err = s.SeedChart(ctx, coa.DefaultChart())
	require.NoError(t, err)
	return s
}

// NewCompany creates a USD company.
func NewCompany(t testing.TB, s *ledger.Store, name string) *ledger.Company {
	t.Helper()

	c, err := s.CreateCompany(context.Background(), ledger.Company{Name: name, FiscalYearEnd: 12, Currency: "USD"})
	require.NoError(t, err)
	return c
}

// Line is one trial-balance row for Load.
type Line struct {
	Number  string
	Name    string
	Balance int64
}

// Load writes a period directly through the store, bypassing ingestion
// checks, and returns the company account ids keyed by number.
func Load(t testing.TB, s *ledger.Store, companyID, date string, lines ...Line) map[string]string {
	t.Helper()

	d, err := ledger.ParseDate(date)
	require.NoError(t, err)

	ids := map[string]string{}
	ctx := context.Background()
	err = s.InTx(ctx, func(tx *ledger.Tx) error {
		p, _, err := tx.UpsertPeriod(ctx, companyID, d)
		if err != nil {
			return err
		}
		entries := make([]ledger.Entry, 0, len(lines))
		for _, l := range lines {
			id, _, err := tx.UpsertCompanyAccount(ctx, companyID, l.Number, l.Name)
			if err != nil {
				return err
			}
			ids[l.Number] = id
			entries = append(entries, ledger.Entry{CompanyAccountID: id, Balance: l.Balance})
		}
		return tx.ReplaceEntries(ctx, p.ID, entries)
	})
	require.NoError(t, err)
	return ids
}

// MapByNumber maps company accounts, keyed by import number, to the master
// accounts with the given codes.
func MapByNumber(t testing.TB, s *ledger.Store, companyID string, numberToCode map[string]string) {
	t.Helper()

	ctx := context.Background()
	for number, code := range numberToCode {
		a, err := s.FindCompanyAccount(ctx, companyID, number)
		require.NoError(t, err)
		m, err := s.GetMasterAccountByCode(ctx, code)
		require.NoError(t, err)
		err = s.InTx(ctx, func(tx *ledger.Tx) error {
			return tx.SetMapping(ctx, a.ID, m.ID, "test", time.Now())
		})
		require.NoError(t, err)
	}
}

// SameCodes maps every listed number to the master code of the same value.
func SameCodes(numbers ...string) map[string]string {
	out := make(map[string]string, len(numbers))
	for _, n := range numbers {
		out[n] = n
	}
	return out
}
