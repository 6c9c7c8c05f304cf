// Package grpcapi serves statements and forecasts over gRPC.
package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	rpc "github.com/example/threestatement/api/statementsrpc"
	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ingest"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/statements"
)

// Periods lists the imported reporting dates of a company.
type Periods interface {
	ListPeriods(ctx context.Context, companyID string) ([]time.Time, error)
}

type Server struct {
	rpc.UnimplementedStatementServiceServer

	periods    Periods
	statements *statements.Aggregator
	forecasts  *forecast.Service
	logger     *slog.Logger
}

func NewServer(periods Periods, stmts *statements.Aggregator, forecasts *forecast.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{periods: periods, statements: stmts, forecasts: forecasts, logger: logger}
}

func (s *Server) IncomeStatement(ctx context.Context, req *rpc.StatementRequest) (*rpc.IncomeStatementResponse, error) {
	if err := requireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	periods, rng, err := selection(req.Periods, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	if periods != nil {
		out, err := s.statements.IncomeStatements(ctx, req.CompanyID, periods)
		if err != nil {
			return nil, s.toStatus(ctx, "IncomeStatement", err)
		}
		return &rpc.IncomeStatementResponse{Statements: out}, nil
	}
	is, err := s.statements.IncomeStatement(ctx, req.CompanyID, rng)
	if err != nil {
		return nil, s.toStatus(ctx, "IncomeStatement", err)
	}
	return &rpc.IncomeStatementResponse{Statements: []statements.IncomeStatement{*is}}, nil
}

func (s *Server) BalanceSheet(ctx context.Context, req *rpc.BalanceSheetRequest) (*rpc.BalanceSheetResponse, error) {
	if err := requireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	dates := req.Periods
	if len(dates) == 0 {
		if req.PeriodDate == "" {
			return nil, status.Error(codes.InvalidArgument, "period_date or periods is required")
		}
		dates = []string{req.PeriodDate}
	}
	periods, err := parseDates(dates)
	if err != nil {
		return nil, err
	}

	out, err := s.statements.BalanceSheets(ctx, req.CompanyID, periods)
	if err != nil {
		return nil, s.toStatus(ctx, "BalanceSheet", err)
	}
	return &rpc.BalanceSheetResponse{Statements: out}, nil
}

func (s *Server) CashFlow(ctx context.Context, req *rpc.StatementRequest) (*rpc.CashFlowResponse, error) {
	if err := requireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	periods, rng, err := selection(req.Periods, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	if periods != nil {
		out, err := s.statements.CashFlows(ctx, req.CompanyID, periods)
		if err != nil {
			return nil, s.toStatus(ctx, "CashFlow", err)
		}
		return &rpc.CashFlowResponse{Statements: out}, nil
	}
	cf, err := s.statements.CashFlow(ctx, req.CompanyID, rng)
	if err != nil {
		return nil, s.toStatus(ctx, "CashFlow", err)
	}
	return &rpc.CashFlowResponse{Statements: []statements.CashFlowStatement{*cf}}, nil
}

func (s *Server) Forecast(ctx context.Context, req *rpc.ForecastRequest) (*rpc.ForecastResponse, error) {
	if err := requireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	res, err := s.forecasts.Run(ctx, req.CompanyID, req.Scenario)
	if err != nil {
		return nil, s.toStatus(ctx, "Forecast", err)
	}
	return &rpc.ForecastResponse{
		Scenario:    res.Config.ScenarioName,
		BasePeriod:  res.BasePeriod,
		Actuals:     res.Actuals,
		Projections: res.Projections,
	}, nil
}

func (s *Server) ListPeriods(ctx context.Context, req *rpc.ListPeriodsRequest) (*rpc.ListPeriodsResponse, error) {
	if err := requireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	ds, err := s.periods.ListPeriods(ctx, req.CompanyID)
	if err != nil {
		return nil, s.toStatus(ctx, "ListPeriods", err)
	}
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = ledger.FormatDate(d)
	}
	return &rpc.ListPeriodsResponse{Periods: out}, nil
}

func requireCompany(id string) error {
	if strings.TrimSpace(id) == "" {
		return status.Error(codes.InvalidArgument, "company_id is required")
	}
	return nil
}

// selection returns either explicit periods or one inclusive range.
func selection(list []string, start, end string) ([]time.Time, ledger.DateRange, error) {
	var rng ledger.DateRange
	if len(list) > 0 {
		periods, err := parseDates(list)
		return periods, rng, err
	}
	if start == "" || end == "" {
		return nil, rng, status.Error(codes.InvalidArgument, "period_start and period_end are required")
	}
	ds, err := parseDates([]string{start, end})
	if err != nil {
		return nil, rng, err
	}
	if ds[1].Before(ds[0]) {
		return nil, rng, status.Error(codes.InvalidArgument, "period_end is before period_start")
	}
	return nil, ledger.DateRange{Start: ds[0], End: ds[1]}, nil
}

func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, v := range raw {
		d, err := ledger.ParseDate(strings.TrimSpace(v))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		out = append(out, d)
	}
	return out, nil
}

// toStatus maps domain errors to gRPC codes. Unrecognised errors are logged
// and returned as Internal without detail.
func (s *Server) toStatus(ctx context.Context, method string, err error) error {
	var notImported *forecast.BasePeriodNotImportedError
	switch {
	case errors.As(err, &notImported),
		errors.Is(err, forecast.ErrMissingBaseConfiguration):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, forecast.ErrInvalidConfig),
		errors.Is(err, ledger.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, forecast.ErrConfigNotFound),
		errors.Is(err, ingest.ErrCompanyNotFound),
		errors.Is(err, ledger.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	default:
		s.logger.ErrorContext(ctx, "rpc failed", "method", method, "err", err)
		return status.Error(codes.Internal, "internal error")
	}
}
