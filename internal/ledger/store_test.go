package ledger_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/ledger/ledgertest"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ledger.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestSeedChartIsIdempotent(t *testing.T) {
	s := ledgertest.NewStore(t)
	ctx := context.Background()

	n, err := s.SeedChart(ctx, coa.DefaultChart())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	chart, err := s.ListMasterAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, chart, 12)
	assert.Equal(t, "1000", chart[0].Code)
	assert.Equal(t, coa.Asset, chart[0].Category)

	cash, err := s.GetMasterAccountByCode(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, "Cash and Cash Equivalents", cash.Name)

	_, err = s.GetMasterAccountByCode(ctx, "9999")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCompanies(t *testing.T) {
	s := ledgertest.NewStore(t)
	ctx := context.Background()

	c, err := s.CreateCompany(ctx, ledger.Company{Name: "Acme", Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", c.Currency)
	assert.Equal(t, 12, c.FiscalYearEnd)

	got, err := s.GetCompany(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	c.Name = "Acme Corp"
	c.FiscalYearEnd = 6
	updated, err := s.UpdateCompany(ctx, *c)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, 6, updated.FiscalYearEnd)

	all, err := s.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.GetCompany(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = s.UpdateCompany(ctx, ledger.Company{ID: "missing", Name: "x", FiscalYearEnd: 1, Currency: "USD"})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestReplaceEntriesDiscardsPreviousUpload(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ctx := context.Background()

	ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 500},
		ledgertest.Line{Number: "4000", Name: "Sales", Balance: -500},
	)
	ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash renamed", Balance: 700},
		ledgertest.Line{Number: "4000", Name: "Sales", Balance: -700},
	)

	p, err := s.GetPeriod(ctx, c.ID, date(t, "2024-01-31"))
	require.NoError(t, err)
	entries, err := s.PeriodEntries(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var total int64
	for _, e := range entries {
		total += e.Balance
		assert.Contains(t, []int64{700, -700}, e.Balance)
	}
	assert.Zero(t, total)

	a, err := s.FindCompanyAccount(ctx, c.ID, "1000")
	require.NoError(t, err)
	assert.Equal(t, "Cash", a.ImportAccountName, "account name is not a key and keeps the first name")
}

func TestListPeriodsNewestFirst(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	other := ledgertest.NewCompany(t, s, "Other")

	for _, d := range []string{"2024-02-29", "2024-01-31", "2024-03-31"} {
		ledgertest.Load(t, s, c.ID, d, ledgertest.Line{Number: "1000", Name: "Cash", Balance: 0})
	}
	ledgertest.Load(t, s, other.ID, "2023-12-31", ledgertest.Line{Number: "1000", Name: "Cash", Balance: 0})

	periods, err := s.ListPeriods(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, "2024-03-31", ledger.FormatDate(periods[0]))
	assert.Equal(t, "2024-01-31", ledger.FormatDate(periods[2]))
}

func TestSumBalanceFilters(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ctx := context.Background()

	ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 1000},
		ledgertest.Line{Number: "1100", Name: "AR", Balance: 300},
		ledgertest.Line{Number: "4000", Name: "Sales", Balance: -1500},
		ledgertest.Line{Number: "6000", Name: "Salaries", Balance: 400},
		ledgertest.Line{Number: "9000", Name: "Suspense", Balance: -200},
	)
	ledgertest.Load(t, s, c.ID, "2024-02-29",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 100},
		ledgertest.Line{Number: "4000", Name: "Sales", Balance: -100},
	)
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes("1000", "1100", "4000", "6000"))

	jan := ledger.DateRange{Start: date(t, "2024-01-01"), End: date(t, "2024-01-31")}
	all := ledger.InceptionTo(date(t, "2024-12-31"))

	tests := []struct {
		name   string
		r      ledger.DateRange
		filter ledger.Filter
		want   int64
	}{
		{"everything", all, ledger.Filter{}, 0},
		{"revenue jan", jan, ledger.Filter{Categories: []coa.Category{coa.Revenue}}, -1500},
		{"revenue inception", all, ledger.Filter{Categories: []coa.Category{coa.Revenue}}, -1600},
		{"revenue and expense", jan, ledger.Filter{Categories: []coa.Category{coa.Revenue, coa.Expense}}, -1100},
		{"cash code", all, ledger.Filter{AccountCode: "1000"}, 1100},
		{"assets", jan, ledger.Filter{Categories: []coa.Category{coa.Asset}}, 1300},
		{"operating assets excluding cash", jan, ledger.Filter{
			Categories:   []coa.Category{coa.Asset, coa.Liability},
			CashFlow:     coa.Operating,
			ExcludeCodes: []string{"1000"},
		}, 300},
		{"non cash", jan, ledger.Filter{CashFlow: coa.NonCash}, 1000},
		{"unmapped", all, ledger.Filter{Unmapped: true}, -200},
		{"outside range", ledger.DateRange{Start: date(t, "2025-01-01"), End: date(t, "2025-12-31")}, ledger.Filter{Categories: []coa.Category{coa.Asset}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SumBalance(ctx, c.ID, tt.r, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := s.SumBalance(ctx, "no-such-company", all, ledger.Filter{})
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = s.SumBalance(ctx, c.ID, all, ledger.Filter{Unmapped: true, AccountCode: "1000"})
	assert.ErrorIs(t, err, ledger.ErrInvalidFilter)
}

func TestSumBalanceOverflowIsTyped(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ctx := context.Background()

	const half = math.MaxInt64/2 + 1
	for _, d := range []string{"2024-01-31", "2024-02-29"} {
		ledgertest.Load(t, s, c.ID, d,
			ledgertest.Line{Number: "1000", Name: "Cash", Balance: half},
			ledgertest.Line{Number: "4000", Name: "Sales", Balance: -half},
		)
	}
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes("1000", "4000"))

	got, err := s.SumBalance(ctx, c.ID, ledger.DateRange{Start: date(t, "2024-01-31"), End: date(t, "2024-01-31")}, ledger.Filter{AccountCode: "1000"})
	require.NoError(t, err)
	assert.Equal(t, int64(half), got)

	_, err = s.SumBalance(ctx, c.ID, ledger.InceptionTo(date(t, "2024-02-29")), ledger.Filter{AccountCode: "1000"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrBalanceOverflow)
	assert.Contains(t, err.Error(), "2024-02-29")
}

func TestSetMappingUpsertsInPlace(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ctx := context.Background()

	ids := ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "100", Name: "Bank", Balance: 10},
		ledgertest.Line{Number: "400", Name: "Sales", Balance: -10},
	)
	ledgertest.MapByNumber(t, s, c.ID, map[string]string{"100": "1100"})
	ledgertest.MapByNumber(t, s, c.ID, map[string]string{"100": "1000"})

	mappings, err := s.ListAccountMappings(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, ids["100"], mappings[0].ID)
	require.NotNil(t, mappings[0].Master)
	assert.Equal(t, "1000", mappings[0].Master.Code)
	assert.Nil(t, mappings[1].Master)

	unmapped, err := s.ListUnmapped(ctx, c.ID, date(t, "2024-12-31"))
	require.NoError(t, err)
	require.Len(t, unmapped, 1)
	assert.Equal(t, "400", unmapped[0].ImportAccountNumber)
	assert.Equal(t, int64(-10), unmapped[0].BalanceCents)

	unmapped, err = s.ListUnmapped(ctx, c.ID, date(t, "2023-12-31"))
	require.NoError(t, err)
	require.Len(t, unmapped, 1)
	assert.Zero(t, unmapped[0].BalanceCents)

	n, err := s.ClearMappings(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unmapped, err = s.ListUnmapped(ctx, c.ID, date(t, "2024-12-31"))
	require.NoError(t, err)
	assert.Len(t, unmapped, 2)
}

func TestDeletePeriodRemovesOrphans(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ctx := context.Background()

	ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 50},
		ledgertest.Line{Number: "2000", Name: "AP", Balance: -50},
	)
	ledgertest.Load(t, s, c.ID, "2024-02-29",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 80},
		ledgertest.Line{Number: "4000", Name: "Sales", Balance: -80},
	)
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes("1000", "2000", "4000"))

	res, err := s.DeletePeriod(ctx, c.ID, date(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.EntriesDeleted)
	assert.Equal(t, int64(1), res.AccountsDeleted)
	assert.Equal(t, int64(1), res.MappingsDeleted)

	_, err = s.FindCompanyAccount(ctx, c.ID, "2000")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = s.FindCompanyAccount(ctx, c.ID, "1000")
	assert.NoError(t, err)

	periods, err := s.ListPeriods(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "2024-02-29", ledger.FormatDate(periods[0]))

	_, err = s.DeletePeriod(ctx, c.ID, date(t, "2024-01-31"))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestForecastConfigUpsertReplacesAllFields(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ctx := context.Background()

	_, err := s.GetForecastConfig(ctx, c.ID, "base")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	base := date(t, "2024-01-31")
	_, err = s.UpsertForecastConfig(ctx, ledger.ForecastConfig{
		CompanyID: c.ID, ScenarioName: "base", BasePeriod: &base, NumPeriods: 3,
		RevenueGrowthBps: 500, COGSPctBps: 6000, OpexGrowthBps: 300, TaxRateBps: 2100,
		CapexCents: 100, DACents: 50, WCPctBps: 1000,
	})
	require.NoError(t, err)

	_, err = s.UpsertForecastConfig(ctx, ledger.ForecastConfig{
		CompanyID: c.ID, ScenarioName: "base", NumPeriods: 6,
		RevenueGrowthBps: -200, COGSPctBps: 5000,
	})
	require.NoError(t, err)

	got, err := s.GetForecastConfig(ctx, c.ID, "base")
	require.NoError(t, err)
	assert.Nil(t, got.BasePeriod)
	assert.Equal(t, 6, got.NumPeriods)
	assert.Equal(t, int64(-200), got.RevenueGrowthBps)
	assert.Zero(t, got.TaxRateBps)
	assert.Zero(t, got.CapexCents)
}

func TestValidatorReportsPeriodTotals(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ctx := context.Background()

	ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 50},
		ledgertest.Line{Number: "4000", Name: "Sales", Balance: -50},
	)
	ledgertest.Load(t, s, c.ID, "2024-02-29",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 75},
	)
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes("1000"))

	v := ledger.NewValidator(s)
	results, err := v.ComprehensiveValidation(ctx, c.ID, date(t, "2024-12-31"))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].IsValid)
	assert.False(t, results[1].IsValid)
	assert.Contains(t, results[1].Message, "75 cents")
	assert.False(t, results[2].IsValid)
	assert.Equal(t, int64(-50), results[2].Details["unmapped_cents"])
}
