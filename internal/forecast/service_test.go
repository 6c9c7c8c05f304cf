package forecast_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/ledger/ledgertest"
	"github.com/example/threestatement/internal/statements"
)

func newService(t *testing.T) (*forecast.Service, *ledger.Company) {
	t.Helper()
	s := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, s, "Acme")
	ledgertest.Load(t, s, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 600_000},
		ledgertest.Line{Number: "4000", Name: "Revenue", Balance: -1_000_000},
		ledgertest.Line{Number: "6000", Name: "Expenses", Balance: 400_000},
	)
	ledgertest.MapByNumber(t, s, c.ID, ledgertest.SameCodes("1000", "4000", "6000"))

	agg := statements.NewAggregator(s, coa.DefaultCodes(), nil)
	return forecast.NewService(s, agg, nil), c
}

func withBase(cfg ledger.ForecastConfig, date string) ledger.ForecastConfig {
	d, _ := ledger.ParseDate(date)
	cfg.BasePeriod = &d
	return cfg
}

func TestRunSeedsFromBasePeriod(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()

	_, err := svc.UpsertConfig(ctx, withBase(forecast.DefaultConfig(c.ID, ""), "2024-01-31"))
	require.NoError(t, err)

	res, err := svc.Run(ctx, c.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-31", res.BasePeriod)
	assert.Equal(t, statements.Actuals{
		RevenueCents:   1_000_000,
		ExpensesCents:  400_000,
		NetIncomeCents: 600_000,
		CashCents:      600_000,
	}, res.Actuals)
	require.Len(t, res.Projections, 3)
	assert.Equal(t, "2024-02-29", res.Projections[0].Period)
	assert.Equal(t, int64(1_050_000), res.Projections[0].RevenueCents)
	assert.Equal(t, int64(600_000), res.Projections[0].BeginningCashCents)
	assert.Equal(t, int64(501_320), res.Projections[0].EndingCashCents)
	assert.Equal(t, "2024-04-30", res.Projections[2].Period)
	assert.Equal(t, forecast.DefaultScenario, res.Config.ScenarioName)
}

func TestRunPreconditions(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()

	_, err := svc.Run(ctx, c.ID, "base")
	assert.ErrorIs(t, err, forecast.ErrMissingBaseConfiguration)

	_, err = svc.UpsertConfig(ctx, forecast.DefaultConfig(c.ID, "base"))
	require.NoError(t, err)
	_, err = svc.Run(ctx, c.ID, "base")
	assert.ErrorIs(t, err, forecast.ErrMissingBaseConfiguration)

	_, err = svc.UpsertConfig(ctx, withBase(forecast.DefaultConfig(c.ID, "base"), "2024-02-29"))
	require.NoError(t, err)
	_, err = svc.Run(ctx, c.ID, "base")
	require.ErrorIs(t, err, forecast.ErrBasePeriodNotImported)
	var notImported *forecast.BasePeriodNotImportedError
	require.ErrorAs(t, err, &notImported)
	assert.Equal(t, "2024-02-29", notImported.Period)
}

func TestUpsertConfigReplacesScenario(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()

	_, err := svc.GetConfig(ctx, c.ID, "upside")
	assert.ErrorIs(t, err, forecast.ErrConfigNotFound)

	cfg := withBase(forecast.DefaultConfig(c.ID, "upside"), "2024-01-31")
	cfg.RevenueGrowthBps = 1_500
	cfg.CapexCents = 12_345
	_, err = svc.UpsertConfig(ctx, cfg)
	require.NoError(t, err)

	cfg.RevenueGrowthBps = 200
	cfg.CapexCents = 0
	cfg.NumPeriods = 6
	_, err = svc.UpsertConfig(ctx, cfg)
	require.NoError(t, err)

	got, err := svc.GetConfig(ctx, c.ID, "upside")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.RevenueGrowthBps)
	assert.Equal(t, int64(0), got.CapexCents)
	assert.Equal(t, 6, got.NumPeriods)
	require.NotNil(t, got.BasePeriod)
	assert.Equal(t, "2024-01-31", ledger.FormatDate(*got.BasePeriod))

	_, err = svc.GetConfig(ctx, c.ID, "base")
	assert.ErrorIs(t, err, forecast.ErrConfigNotFound)
}

func TestUpsertConfigRejects(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()

	cfg := forecast.DefaultConfig(c.ID, "")
	cfg.NumPeriods = 13
	_, err := svc.UpsertConfig(ctx, cfg)
	assert.ErrorIs(t, err, forecast.ErrInvalidConfig)

	_, err = svc.UpsertConfig(ctx, forecast.DefaultConfig("missing", ""))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDashboardAppendsDefaultScenario(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()

	rows, err := svc.Dashboard(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, statements.RowActual, rows[0].Type)

	_, err = svc.UpsertConfig(ctx, withBase(forecast.DefaultConfig(c.ID, ""), "2024-01-31"))
	require.NoError(t, err)

	rows, err = svc.Dashboard(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, statements.SummaryRow{
		Period: "2024-01-31", Revenue: 1_000_000, EBITDA: 600_000, NetIncome: 600_000, Cash: 600_000, Type: statements.RowActual,
	}, rows[0])
	for _, r := range rows[1:] {
		assert.Equal(t, statements.RowForecast, r.Type)
	}
	assert.Equal(t, int64(8_000), rows[1].EBITDA)
	assert.Equal(t, int64(501_320), rows[1].Cash)
}

func TestWriteCSV(t *testing.T) {
	base := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	cfg := forecast.DefaultConfig("c1", "")
	cfg.BasePeriod = &base
	out, err := forecast.Project(cfg, forecast.Seed{RevenueCents: 1_000_000, OpexCents: 400_000})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, forecast.WriteCSV(&buf, out))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "period", records[0][0])
	assert.Equal(t, "revenue_cents", records[0][1])
	assert.Equal(t, []string{"2024-02-29", "1050000", "630000", "420000"}, records[1][:4])
}
