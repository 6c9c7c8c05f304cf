package statements_test

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
	"github.com/example/threestatement/internal/statements"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ledger.ParseDate(s)
	require.NoError(t, err)
	return d
}

var janLines = []ledgertest.Line{
	{Number: "1000", Name: "Cash", Balance: 1_000_000},
	{Number: "1100", Name: "Accounts Receivable", Balance: 200_000},
	{Number: "1500", Name: "PP&E", Balance: 500_000},
	{Number: "1600", Name: "Accumulated Depreciation", Balance: -50_000},
	{Number: "2000", Name: "Accounts Payable", Balance: -150_000},
	{Number: "2500", Name: "Long-Term Debt", Balance: -300_000},
	{Number: "3000", Name: "Common Stock", Balance: -600_000},
	{Number: "4000", Name: "Revenue", Balance: -1_000_000},
	{Number: "5000", Name: "COGS", Balance: 250_000},
	{Number: "6000", Name: "Salaries", Balance: 100_000},
	{Number: "6500", Name: "Depreciation", Balance: 50_000},
}

func mappedCompany(t *testing.T) (*ledger.Store, *ledger.Company) {
	t.Helper()
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ledgertest.Load(t, s, c.ID, "2024-01-31", janLines...)
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes(
		"1000", "1100", "1500", "1600", "2000", "2500", "3000", "4000", "5000", "6000", "6500",
	))
	return s, c
}

func TestIncomeStatementFlipsRevenue(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 600_000},
		ledgertest.Line{Number: "4000", Name: "Revenue", Balance: -1_000_000},
		ledgertest.Line{Number: "6000", Name: "Expenses", Balance: 400_000},
	)
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes("1000", "4000", "6000"))

	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)
	is, err := agg.IncomeStatement(context.Background(), c.ID, ledger.DateRange{Start: day(t, "2024-01-01"), End: day(t, "2024-01-31")})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01 to 2024-01-31", is.Period)
	assert.Equal(t, int64(1_000_000), is.TotalRevenuesCents)
	assert.Equal(t, int64(400_000), is.TotalExpensesCents)
	assert.Equal(t, int64(600_000), is.NetIncomeCents)
}

func TestBalanceSheetIsInceptionToDate(t *testing.T) {
	s, c := mappedCompany(t)
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)
	ctx := context.Background()

	bs, err := agg.BalanceSheet(ctx, c.ID, day(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, statements.BalanceSheet{
		PeriodDate:            "2024-01-31",
		TotalAssetsCents:      1_650_000,
		TotalLiabilitiesCents: 450_000,
		TotalEquityCents:      1_200_000,
		UnmappedBalanceCents:  0,
		IsBalancedEquation:    true,
	}, *bs)
	assert.Equal(t, bs.TotalAssetsCents, bs.TotalLiabilitiesCents+bs.TotalEquityCents)

	before, err := agg.BalanceSheet(ctx, c.ID, day(t, "2023-12-31"))
	require.NoError(t, err)
	assert.Zero(t, before.TotalAssetsCents)
	assert.True(t, before.IsBalancedEquation)
}

func TestBalanceSheetTracksUnmappedResidual(t *testing.T) {
	s, c := mappedCompany(t)
	ledgertest.Load(t, s, c.ID, "2024-02-29",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 700},
		ledgertest.Line{Number: "9100", Name: "Suspense", Balance: -700},
	)
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)

	bs, err := agg.BalanceSheet(context.Background(), c.ID, day(t, "2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, int64(-700), bs.UnmappedBalanceCents)
	assert.Equal(t, int64(1_650_700), bs.TotalAssetsCents)
	assert.True(t, bs.IsBalancedEquation)
}

func TestBalanceSheetInvariantViolation(t *testing.T) {
	s, c := mappedCompany(t)
	ledgertest.Load(t, s, c.ID, "2024-02-29",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 125},
	)
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)

	bs, err := agg.BalanceSheet(context.Background(), c.ID, day(t, "2024-02-29"))
	require.ErrorIs(t, err, statements.ErrInvariantViolation)
	assert.Contains(t, err.Error(), "125 cents")
	require.NotNil(t, bs)
	assert.False(t, bs.IsBalancedEquation)
}

func TestBalanceSheetSurfacesSumOverflow(t *testing.T) {
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	const half = math.MaxInt64/2 + 1
	for _, d := range []string{"2024-01-31", "2024-02-29"} {
		ledgertest.Load(t, s, c.ID, d,
			ledgertest.Line{Number: "1000", Name: "Cash", Balance: half},
			ledgertest.Line{Number: "4000", Name: "Revenue", Balance: -half},
		)
	}
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes("1000", "4000"))
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)

	bs, err := agg.BalanceSheet(context.Background(), c.ID, day(t, "2024-02-29"))
	assert.Nil(t, bs)
	assert.ErrorIs(t, err, ledger.ErrBalanceOverflow)
	assert.NotErrorIs(t, err, statements.ErrInvariantViolation)

	is, err := agg.IncomeStatement(context.Background(), c.ID, ledger.DateRange{Start: day(t, "2024-02-29"), End: day(t, "2024-02-29")})
	require.NoError(t, err)
	assert.Equal(t, int64(half), is.TotalRevenuesCents)
}

func TestCashFlowStatement(t *testing.T) {
	s, c := mappedCompany(t)
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)

	cf, err := agg.CashFlow(context.Background(), c.ID, ledger.DateRange{Start: day(t, "2024-01-01"), End: day(t, "2024-01-31")})
	require.NoError(t, err)

	assert.Equal(t, int64(600_000), cf.NetIncomeCents)
	// cash, accumulated depreciation and depreciation expense are all NON_CASH in the seeded chart
	assert.Equal(t, int64(1_000_000), cf.NonCashAdjustmentsCents)
	assert.Equal(t, int64(-50_000), cf.OperatingWCDeltaCents)
	assert.Equal(t, int64(1_550_000), cf.NetCashFromOperationsCents)
	assert.Equal(t, int64(-500_000), cf.NetCashFromInvestingCents)
	assert.Equal(t, int64(900_000), cf.NetCashFromFinancingCents)
	assert.Equal(t, int64(1_950_000), cf.NetChangeInCashCents)
	assert.Equal(t, int64(1_000_000), cf.EndingCashCents)
	assert.Equal(t, cf.EndingCashCents-cf.NetChangeInCashCents, cf.BeginningCashCents)
}

func TestCashFlowUsesInjectedCodes(t *testing.T) {
	s, c := mappedCompany(t)
	agg := statements.NewAggregator(s, coa.Codes{Cash: "1100", RetainedEarnings: "3000"}, nil)

	cf, err := agg.CashFlow(context.Background(), c.ID, ledger.DateRange{Start: day(t, "2024-01-01"), End: day(t, "2024-01-31")})
	require.NoError(t, err)
	assert.Equal(t, int64(200_000), cf.EndingCashCents)
	assert.Equal(t, int64(150_000), cf.OperatingWCDeltaCents)
	assert.Equal(t, int64(300_000), cf.NetCashFromFinancingCents)
}

func TestAggregatorIsTotal(t *testing.T) {
	s := ledgertest.NewStore(t)
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)
	ctx := context.Background()

	is, err := agg.IncomeStatement(ctx, "missing", ledger.InceptionTo(day(t, "2024-12-31")))
	require.NoError(t, err)
	assert.Zero(t, is.NetIncomeCents)

	bs, err := agg.BalanceSheet(ctx, "missing", day(t, "2024-12-31"))
	require.NoError(t, err)
	assert.True(t, bs.IsBalancedEquation)

	cf, err := agg.CashFlow(ctx, "missing", ledger.InceptionTo(day(t, "2024-12-31")))
	require.NoError(t, err)
	assert.Zero(t, cf.EndingCashCents)

	list, err := agg.IncomeStatements(ctx, "missing", nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	rows, err := agg.Summary(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPerPeriodStatementsAndSummary(t *testing.T) {
	s, c := mappedCompany(t)
	ledgertest.Load(t, s, c.ID, "2024-02-29",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 80_000},
		ledgertest.Line{Number: "4000", Name: "Revenue", Balance: -100_000},
		ledgertest.Line{Number: "5000", Name: "COGS", Balance: 20_000},
	)
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)
	ctx := context.Background()
	periods := []time.Time{day(t, "2024-01-31"), day(t, "2024-02-29")}

	iss, err := agg.IncomeStatements(ctx, c.ID, periods)
	require.NoError(t, err)
	require.Len(t, iss, 2)
	assert.Equal(t, "2024-02-29", iss[1].Period)
	assert.Equal(t, int64(100_000), iss[1].TotalRevenuesCents)
	assert.Equal(t, int64(80_000), iss[1].NetIncomeCents)

	bss, err := agg.BalanceSheets(ctx, c.ID, periods)
	require.NoError(t, err)
	require.Len(t, bss, 2)
	assert.Equal(t, int64(1_730_000), bss[1].TotalAssetsCents)

	cfs, err := agg.CashFlows(ctx, c.ID, periods)
	require.NoError(t, err)
	require.Len(t, cfs, 2)
	assert.Equal(t, int64(1_080_000), cfs[1].EndingCashCents)

	rows, err := agg.Summary(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, statements.SummaryRow{
		Period: "2024-01-31", Revenue: 1_000_000, EBITDA: 600_000, NetIncome: 600_000, Cash: 1_000_000, Type: statements.RowActual,
	}, rows[0])
	assert.Equal(t, "2024-02-29", rows[1].Period)
	assert.Equal(t, int64(1_080_000), rows[1].Cash)
}

func TestActualsSeed(t *testing.T) {
	s, c := mappedCompany(t)
	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)

	a, err := agg.Actuals(context.Background(), c.ID, day(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, statements.Actuals{
		RevenueCents:           1_000_000,
		ExpensesCents:          400_000,
		NetIncomeCents:         600_000,
		CashCents:              1_000_000,
		NetWorkingCapitalCents: 50_000,
	}, *a)
}
