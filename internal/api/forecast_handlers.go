package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/security"
	"github.com/example/threestatement/internal/statements"
)

// forecastConfigBody is the wire form of a scenario: dates as YYYY-MM-DD,
// rates in basis points.
type forecastConfigBody struct {
	CompanyID        string     `json:"company_id,omitempty"`
	ScenarioName     string     `json:"scenario_name"`
	BasePeriod       *string    `json:"base_period"`
	NumPeriods       int        `json:"num_periods"`
	RevenueGrowthPct int64      `json:"revenue_growth_pct"`
	COGSPctOfRevenue int64      `json:"cogs_pct_of_revenue"`
	OpexGrowthPct    int64      `json:"opex_growth_pct"`
	TaxRatePct       int64      `json:"tax_rate_pct"`
	CapexCents       int64      `json:"capex_cents"`
	DACents          int64      `json:"da_cents"`
	WCPctOfRevenue   int64      `json:"wc_pct_of_revenue"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func configBody(c ledger.ForecastConfig) forecastConfigBody {
	b := forecastConfigBody{
		CompanyID:        c.CompanyID,
		ScenarioName:     c.ScenarioName,
		NumPeriods:       c.NumPeriods,
		RevenueGrowthPct: c.RevenueGrowthBps,
		COGSPctOfRevenue: c.COGSPctBps,
		OpexGrowthPct:    c.OpexGrowthBps,
		TaxRatePct:       c.TaxRateBps,
		CapexCents:       c.CapexCents,
		DACents:          c.DACents,
		WCPctOfRevenue:   c.WCPctBps,
	}
	if c.BasePeriod != nil {
		s := ledger.FormatDate(*c.BasePeriod)
		b.BasePeriod = &s
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		b.UpdatedAt = &t
	}
	return b
}

func (b forecastConfigBody) config(companyID string) (ledger.ForecastConfig, error) {
	c := ledger.ForecastConfig{
		CompanyID:        companyID,
		ScenarioName:     b.ScenarioName,
		NumPeriods:       b.NumPeriods,
		RevenueGrowthBps: b.RevenueGrowthPct,
		COGSPctBps:       b.COGSPctOfRevenue,
		OpexGrowthBps:    b.OpexGrowthPct,
		TaxRateBps:       b.TaxRatePct,
		CapexCents:       b.CapexCents,
		DACents:          b.DACents,
		WCPctBps:         b.WCPctOfRevenue,
	}
	if b.BasePeriod != nil && *b.BasePeriod != "" {
		d, err := ledger.ParseDate(*b.BasePeriod)
		if err != nil {
			return c, fmt.Errorf("%w: base_period: %v", forecast.ErrInvalidConfig, err)
		}
		c.BasePeriod = &d
	}
	return c, nil
}

type forecastConfigResponse struct {
	CorrelationID string `json:"correlation_id"`
	forecastConfigBody
}

type forecastResponse struct {
	CorrelationID string                `json:"correlation_id"`
	CompanyID     string                `json:"company_id"`
	Scenario      string                `json:"scenario"`
	BasePeriod    string                `json:"base_period"`
	Actuals       statements.Actuals    `json:"actuals"`
	Projections   []forecast.Projection `json:"projections"`
	Config        forecastConfigBody    `json:"config"`
}

func handleGetForecastConfig(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := deps.Forecasts.GetConfig(r.Context(), chi.URLParam(r, "companyID"), r.URL.Query().Get("scenario"))
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, forecastConfigResponse{
			CorrelationID:      security.CorrelationIDFromContext(r.Context()),
			forecastConfigBody: configBody(*cfg),
		})
	}
}

// handlePutForecastConfig replaces a scenario. Fields absent from the body
// take the default driver values.
func handlePutForecastConfig(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		body := configBody(forecast.DefaultConfig(companyID, deps.Forecasts.DefaultScenario()))
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		cfg, err := body.config(companyID)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		saved, err := deps.Forecasts.UpsertConfig(r.Context(), cfg)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, forecastConfigResponse{
			CorrelationID:      security.CorrelationIDFromContext(r.Context()),
			forecastConfigBody: configBody(*saved),
		})
	}
}

func handleForecastStatements(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		res, err := deps.Forecasts.Run(r.Context(), companyID, r.URL.Query().Get("scenario"))
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, forecastResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			CompanyID:     companyID,
			Scenario:      res.Config.ScenarioName,
			BasePeriod:    res.BasePeriod,
			Actuals:       res.Actuals,
			Projections:   res.Projections,
			Config:        configBody(res.Config),
		})
	}
}

func handleExportForecast(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		res, err := deps.Forecasts.Run(r.Context(), companyID, r.URL.Query().Get("scenario"))
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}

		filename := fmt.Sprintf("forecast_%s_%s.csv", res.Config.ScenarioName, res.BasePeriod)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if err := forecast.WriteCSV(w, res.Projections); err != nil {
			deps.Logger.Error("forecast export failed", "company_id", companyID, "err", err)
		}
	}
}
