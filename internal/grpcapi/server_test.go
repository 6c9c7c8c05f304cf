package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	rpc "github.com/example/threestatement/api/statementsrpc"
	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/ledger/ledgertest"
	"github.com/example/threestatement/internal/statements"
)

type fixture struct {
	conn      *grpc.ClientConn
	client    rpc.StatementServiceClient
	forecasts *forecast.Service
	companyID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := ledgertest.NewStore(t)
	c := ledgertest.NewCompany(t, store, "Acme")
	ledgertest.Load(t, store, c.ID, "2024-01-31",
		ledgertest.Line{Number: "1000", Name: "Cash", Balance: 600_000},
		ledgertest.Line{Number: "4000", Name: "Revenue", Balance: -1_000_000},
		ledgertest.Line{Number: "6000", Name: "Expenses", Balance: 400_000},
	)
	ledgertest.MapByNumber(t, store, c.ID, ledgertest.SameCodes("1000", "4000", "6000"))

	agg := statements.NewAggregator(store, coa.DefaultCodes(), nil)
	fc := forecast.NewService(store, agg, nil)
	gs := NewGRPCServer(NewServer(store, agg, fc, nil), nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{conn: conn, client: rpc.NewStatementServiceClient(conn), forecasts: fc, companyID: c.ID}
}

func TestIncomeStatementRange(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.IncomeStatement(context.Background(), &rpc.StatementRequest{
		CompanyID:   f.companyID,
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	})
	require.NoError(t, err)
	require.Len(t, resp.Statements, 1)
	assert.Equal(t, statements.IncomeStatement{
		Period:             "2024-01-01 to 2024-01-31",
		TotalRevenuesCents: 1_000_000,
		TotalExpensesCents: 400_000,
		NetIncomeCents:     600_000,
	}, resp.Statements[0])
}

func TestBalanceSheetAndCashFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bs, err := f.client.BalanceSheet(ctx, &rpc.BalanceSheetRequest{CompanyID: f.companyID, PeriodDate: "2024-01-31"})
	require.NoError(t, err)
	require.Len(t, bs.Statements, 1)
	assert.Equal(t, int64(600_000), bs.Statements[0].TotalAssetsCents)
	assert.Equal(t, int64(600_000), bs.Statements[0].TotalEquityCents)
	assert.True(t, bs.Statements[0].IsBalancedEquation)

	cf, err := f.client.CashFlow(ctx, &rpc.StatementRequest{CompanyID: f.companyID, Periods: []string{"2024-01-31"}})
	require.NoError(t, err)
	require.Len(t, cf.Statements, 1)
	assert.Equal(t, int64(600_000), cf.Statements[0].NetIncomeCents)
	assert.Equal(t, int64(600_000), cf.Statements[0].EndingCashCents)
}

func TestForecastPreconditionAndRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Forecast(ctx, &rpc.ForecastRequest{CompanyID: f.companyID})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	cfg := forecast.DefaultConfig(f.companyID, "")
	base, _ := ledger.ParseDate("2024-01-31")
	cfg.BasePeriod = &base
	_, err = f.forecasts.UpsertConfig(ctx, cfg)
	require.NoError(t, err)

	resp, err := f.client.Forecast(ctx, &rpc.ForecastRequest{CompanyID: f.companyID})
	require.NoError(t, err)
	assert.Equal(t, forecast.DefaultScenario, resp.Scenario)
	assert.Equal(t, "2024-01-31", resp.BasePeriod)
	require.Len(t, resp.Projections, 3)
	assert.Equal(t, int64(1_050_000), resp.Projections[0].RevenueCents)
}

func TestListPeriodsCarriesCorrelationID(t *testing.T) {
	f := newFixture(t)

	ctx := metadata.AppendToOutgoingContext(context.Background(), correlationKey, "cid-42")
	var header metadata.MD
	resp, err := f.client.ListPeriods(ctx, &rpc.ListPeriodsRequest{CompanyID: f.companyID}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-31"}, resp.Periods)
	assert.Equal(t, []string{"cid-42"}, header.Get(correlationKey))
}

func TestInvalidArguments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"missing company", func() error {
			_, err := f.client.ListPeriods(ctx, &rpc.ListPeriodsRequest{})
			return err
		}},
		{"missing range", func() error {
			_, err := f.client.IncomeStatement(ctx, &rpc.StatementRequest{CompanyID: f.companyID})
			return err
		}},
		{"bad date", func() error {
			_, err := f.client.BalanceSheet(ctx, &rpc.BalanceSheetRequest{CompanyID: f.companyID, PeriodDate: "31/01/2024"})
			return err
		}},
		{"inverted range", func() error {
			_, err := f.client.CashFlow(ctx, &rpc.StatementRequest{CompanyID: f.companyID, PeriodStart: "2024-02-01", PeriodEnd: "2024-01-01"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, codes.InvalidArgument, status.Code(tt.call()))
		})
	}
}

func TestHealthServing(t *testing.T) {
	f := newFixture(t)

	resp, err := healthpb.NewHealthClient(f.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestStatusMapping(t *testing.T) {
	s := NewServer(nil, nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"projection overflow", fmt.Errorf("period 2024-04-30: %w", forecast.ErrOverflow), codes.InvalidArgument},
		{"sum overflow", fmt.Errorf("balance sheet: %w", ledger.ErrBalanceOverflow), codes.OutOfRange},
		{"missing config", forecast.ErrConfigNotFound, codes.NotFound},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"unknown", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(s.toStatus(ctx, "Test", tt.err)))
		})
	}
}
