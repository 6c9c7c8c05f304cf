package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ingest"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/mapping"
	"github.com/example/threestatement/internal/security"
	"github.com/example/threestatement/internal/statements"
)

// Ledger is the part of the store the handlers read and write directly.
type Ledger interface {
	Ping(ctx context.Context) error
	CreateCompany(ctx context.Context, c ledger.Company) (*ledger.Company, error)
	UpdateCompany(ctx context.Context, c ledger.Company) (*ledger.Company, error)
	GetCompany(ctx context.Context, id string) (*ledger.Company, error)
	ListCompanies(ctx context.Context) ([]ledger.Company, error)
	ListMasterAccounts(ctx context.Context) ([]coa.MasterAccount, error)
	ListPeriods(ctx context.Context, companyID string) ([]time.Time, error)
	DeletePeriod(ctx context.Context, companyID string, date time.Time) (*ledger.DeletePeriodResult, error)
}

type Dependencies struct {
	Logger *slog.Logger

	Ledger     Ledger
	Importer   *ingest.Validator
	Mappings   *mapping.Resolver
	Statements *statements.Aggregator
	Forecasts  *forecast.Service
	Integrity  *ledger.Validator

	RateLimiter  *security.RedisTokenBucket
	MaxBodyBytes int64
}

func (d Dependencies) validate() error {
	switch {
	case d.Ledger == nil:
		return errors.New("api: ledger is required")
	case d.Importer == nil:
		return errors.New("api: importer is required")
	case d.Mappings == nil:
		return errors.New("api: mapping resolver is required")
	case d.Statements == nil:
		return errors.New("api: statement aggregator is required")
	case d.Forecasts == nil:
		return errors.New("api: forecast service is required")
	case d.Integrity == nil:
		return errors.New("api: ledger validator is required")
	}
	return nil
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	createCompanyV, err := security.NewJSONSchemaValidator("create_company", createCompanySchema)
	if err != nil {
		return nil, err
	}
	updateCompanyV, err := security.NewJSONSchemaValidator("update_company", updateCompanySchema)
	if err != nil {
		return nil, err
	}
	trialBalanceV, err := security.NewJSONSchemaValidator("trial_balance", trialBalanceSchema)
	if err != nil {
		return nil, err
	}
	mappingsV, err := security.NewJSONSchemaValidator("mappings", mappingsSchema)
	if err != nil {
		return nil, err
	}
	forecastConfigV, err := security.NewJSONSchemaValidator("forecast_config", forecastConfigSchema)
	if err != nil {
		return nil, err
	}

	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limit = security.RateLimitMiddleware(deps.RateLimiter, rateLimitKeyByIP)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(security.BodySizeLimit(deps.MaxBodyBytes))

	r.Get("/healthz", handleHealth(deps))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/master-coa", handleListMasterAccounts(deps))

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", handleListCompanies(deps))
			r.With(limit, createCompanyV.Middleware).Post("/", handleCreateCompany(deps))

			r.Route("/{companyID}", func(r chi.Router) {
				r.Get("/", handleGetCompany(deps))
				r.With(limit, updateCompanyV.Middleware).Put("/", handleUpdateCompany(deps))

				r.With(limit, trialBalanceV.Middleware).Post("/trial-balances", handleImportTrialBalance(deps))
				r.With(limit).Post("/trial-balances/upload", handleUploadTrialBalance(deps))

				r.Get("/periods", handleListPeriods(deps))
				r.With(limit).Delete("/periods/{periodDate}", handleDeletePeriod(deps))

				r.Get("/mappings", handleListMappings(deps))
				r.Get("/mappings/unmapped", handleListUnmapped(deps))
				r.With(limit, mappingsV.Middleware).Put("/mappings", handleSetMappings(deps))
				r.With(limit).Delete("/mappings/reset", handleResetMappings(deps))

				r.Get("/statements/income-statement", handleIncomeStatement(deps))
				r.Get("/statements/balance-sheet", handleBalanceSheet(deps))
				r.Get("/statements/cash-flow", handleCashFlow(deps))

				r.Get("/forecast/config", handleGetForecastConfig(deps))
				r.With(limit, forecastConfigV.Middleware).Put("/forecast/config", handlePutForecastConfig(deps))
				r.Get("/forecast/statements", handleForecastStatements(deps))
				r.Get("/export/forecast.csv", handleExportForecast(deps))

				r.Get("/dashboard/summary", handleDashboard(deps))
				r.Get("/validation", handleValidation(deps))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r, nil
}

func rateLimitKeyByIP(r *http.Request) string {
	ip := security.ClientIP(r)
	if ip == "" {
		return ""
	}
	return "ip:" + ip
}
