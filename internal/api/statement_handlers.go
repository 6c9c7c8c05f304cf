package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/security"
	"github.com/example/threestatement/internal/statements"
)

type incomeStatementsResponse struct {
	CorrelationID string                       `json:"correlation_id"`
	Statements    []statements.IncomeStatement `json:"statements"`
}

type balanceSheetsResponse struct {
	CorrelationID string                    `json:"correlation_id"`
	Statements    []statements.BalanceSheet `json:"statements"`
}

type cashFlowsResponse struct {
	CorrelationID string                         `json:"correlation_id"`
	Statements    []statements.CashFlowStatement `json:"statements"`
}

type dashboardResponse struct {
	CorrelationID string                  `json:"correlation_id"`
	CompanyID     string                  `json:"company_id"`
	Summary       []statements.SummaryRow `json:"summary"`
}

var errRangeParams = errors.New("period_start and period_end are required")

// statementQuery reads either an explicit comma-separated periods list or a
// period_start/period_end range.
func statementQuery(r *http.Request) (periods []time.Time, rng ledger.DateRange, err error) {
	if raw := r.URL.Query().Get("periods"); raw != "" {
		periods, err = dateList(raw)
		return periods, rng, err
	}
	start, okStart, err := dateParam(r, "period_start")
	if err != nil {
		return nil, rng, err
	}
	end, okEnd, err := dateParam(r, "period_end")
	if err != nil {
		return nil, rng, err
	}
	if !okStart || !okEnd {
		return nil, rng, errRangeParams
	}
	if end.Before(start) {
		return nil, rng, errors.New("period_end is before period_start")
	}
	return nil, ledger.DateRange{Start: start, End: end}, nil
}

func handleIncomeStatement(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		periods, rng, err := statementQuery(r)
		if err != nil {
			writeBadParam(w, r, "period", err.Error())
			return
		}

		if periods != nil {
			out, err := deps.Statements.IncomeStatements(r.Context(), companyID, periods)
			if err != nil {
				writeError(deps.Logger, w, r, err)
				return
			}
			writeJSON(w, r, http.StatusOK, incomeStatementsResponse{
				CorrelationID: security.CorrelationIDFromContext(r.Context()),
				Statements:    out,
			})
			return
		}

		is, err := deps.Statements.IncomeStatement(r.Context(), companyID, rng)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, is)
	}
}

func handleBalanceSheet(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")

		if raw := r.URL.Query().Get("periods"); raw != "" {
			periods, err := dateList(raw)
			if err != nil {
				writeBadParam(w, r, "periods", err.Error())
				return
			}
			out, err := deps.Statements.BalanceSheets(r.Context(), companyID, periods)
			if err != nil {
				writeError(deps.Logger, w, r, err)
				return
			}
			writeJSON(w, r, http.StatusOK, balanceSheetsResponse{
				CorrelationID: security.CorrelationIDFromContext(r.Context()),
				Statements:    out,
			})
			return
		}

		asOf, ok, err := dateParam(r, "period_date")
		if err != nil || !ok {
			writeBadParam(w, r, "period_date", "is required as YYYY-MM-DD")
			return
		}
		bs, err := deps.Statements.BalanceSheet(r.Context(), companyID, asOf)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, bs)
	}
}

func handleCashFlow(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		periods, rng, err := statementQuery(r)
		if err != nil {
			writeBadParam(w, r, "period", err.Error())
			return
		}

		if periods != nil {
			out, err := deps.Statements.CashFlows(r.Context(), companyID, periods)
			if err != nil {
				writeError(deps.Logger, w, r, err)
				return
			}
			writeJSON(w, r, http.StatusOK, cashFlowsResponse{
				CorrelationID: security.CorrelationIDFromContext(r.Context()),
				Statements:    out,
			})
			return
		}

		cf, err := deps.Statements.CashFlow(r.Context(), companyID, rng)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, cf)
	}
}

func handleDashboard(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		rows, err := deps.Forecasts.Dashboard(r.Context(), companyID)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, dashboardResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			CompanyID:     companyID,
			Summary:       rows,
		})
	}
}
