package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/statements"
)

// Store is the subset of the ledger the forecast service reads and writes.
type Store interface {
	GetCompany(ctx context.Context, id string) (*ledger.Company, error)
	GetPeriod(ctx context.Context, companyID string, date time.Time) (*ledger.Period, error)
	GetForecastConfig(ctx context.Context, companyID, scenario string) (*ledger.ForecastConfig, error)
	UpsertForecastConfig(ctx context.Context, c ledger.ForecastConfig) (*ledger.ForecastConfig, error)
}

// Statements supplies the actual figures a forecast is seeded from.
type Statements interface {
	Actuals(ctx context.Context, companyID string, base time.Time) (*statements.Actuals, error)
	Summary(ctx context.Context, companyID string) ([]statements.SummaryRow, error)
}

// Result is one forecast run.
type Result struct {
	BasePeriod  string                `json:"base_period"`
	Actuals     statements.Actuals    `json:"actuals"`
	Projections []Projection          `json:"projections"`
	Config      ledger.ForecastConfig `json:"config"`
}

type Service struct {
	store           Store
	statements      Statements
	logger          *slog.Logger
	defaultScenario string
}

func NewService(store Store, stmts Statements, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, statements: stmts, logger: logger, defaultScenario: DefaultScenario}
}

// SetDefaultScenario changes the scenario used when callers pass none.
func (s *Service) SetDefaultScenario(name string) {
	if name != "" {
		s.defaultScenario = name
	}
}

func (s *Service) DefaultScenario() string { return s.defaultScenario }

func (s *Service) scenario(name string) string {
	if name == "" {
		return s.defaultScenario
	}
	return name
}

// GetConfig returns the stored scenario or ErrConfigNotFound.
func (s *Service) GetConfig(ctx context.Context, companyID, scenario string) (*ledger.ForecastConfig, error) {
	scenario = s.scenario(scenario)
	cfg, err := s.store.GetForecastConfig(ctx, companyID, scenario)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, scenario)
		}
		return nil, err
	}
	return cfg, nil
}

// UpsertConfig validates and fully replaces a scenario. The base period is
// not required to be imported yet.
func (s *Service) UpsertConfig(ctx context.Context, cfg ledger.ForecastConfig) (*ledger.ForecastConfig, error) {
	cfg.ScenarioName = s.scenario(cfg.ScenarioName)
	if cfg.BasePeriod != nil {
		d := ledger.Day(*cfg.BasePeriod)
		cfg.BasePeriod = &d
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCompany(ctx, cfg.CompanyID); err != nil {
		return nil, err
	}

	saved, err := s.store.UpsertForecastConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.logger.Info("forecast config saved",
		"company_id", cfg.CompanyID,
		"scenario", cfg.ScenarioName,
		"num_periods", cfg.NumPeriods,
	)
	return saved, nil
}

// Run projects a scenario from its base period.
func (s *Service) Run(ctx context.Context, companyID, scenario string) (*Result, error) {
	scenario = s.scenario(scenario)
	cfg, err := s.store.GetForecastConfig(ctx, companyID, scenario)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("%w: scenario %s is not configured", ErrMissingBaseConfiguration, scenario)
		}
		return nil, err
	}
	if cfg.BasePeriod == nil {
		return nil, fmt.Errorf("%w: scenario %s has no base period", ErrMissingBaseConfiguration, scenario)
	}

	base := *cfg.BasePeriod
	if _, err := s.store.GetPeriod(ctx, companyID, base); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, &BasePeriodNotImportedError{Period: ledger.FormatDate(base)}
		}
		return nil, err
	}

	actuals, err := s.statements.Actuals(ctx, companyID, base)
	if err != nil {
		return nil, err
	}

	projections, err := Project(*cfg, Seed{
		RevenueCents:           actuals.RevenueCents,
		OpexCents:              actuals.ExpensesCents,
		NetWorkingCapitalCents: actuals.NetWorkingCapitalCents,
		CashCents:              actuals.CashCents,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("forecast run",
		"company_id", companyID,
		"scenario", scenario,
		"base_period", ledger.FormatDate(base),
		"periods", len(projections),
	)
	return &Result{
		BasePeriod:  ledger.FormatDate(base),
		Actuals:     *actuals,
		Projections: projections,
		Config:      *cfg,
	}, nil
}

// Dashboard returns the actual summary rows followed by the default
// scenario's projections. A scenario that cannot run yet contributes no rows.
func (s *Service) Dashboard(ctx context.Context, companyID string) ([]statements.SummaryRow, error) {
	rows, err := s.statements.Summary(ctx, companyID)
	if err != nil {
		return nil, err
	}

	res, err := s.Run(ctx, companyID, s.defaultScenario)
	switch {
	case errors.Is(err, ErrMissingBaseConfiguration), errors.Is(err, ErrBasePeriodNotImported):
		return rows, nil
	case err != nil:
		return nil, err
	}

	for _, p := range res.Projections {
		rows = append(rows, statements.SummaryRow{
			Period:    p.Period,
			Revenue:   p.RevenueCents,
			EBITDA:    p.EBITDACents,
			NetIncome: p.NetIncomeCents,
			Cash:      p.EndingCashCents,
			Type:      statements.RowForecast,
		})
	}
	return rows, nil
}
