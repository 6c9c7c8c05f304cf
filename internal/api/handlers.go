package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/security"
)

type healthResponse struct {
	Status string `json:"status"`
}

type listMasterAccountsResponse struct {
	CorrelationID string              `json:"correlation_id"`
	Accounts      []coa.MasterAccount `json:"accounts"`
}

type companyRequest struct {
	Name          *string `json:"name"`
	FiscalYearEnd *int    `json:"fiscal_year_end"`
	Currency      *string `json:"currency"`
}

type companyResponse struct {
	CorrelationID string          `json:"correlation_id"`
	Company       *ledger.Company `json:"company"`
}

type listCompaniesResponse struct {
	CorrelationID string           `json:"correlation_id"`
	Companies     []ledger.Company `json:"companies"`
}

type listPeriodsResponse struct {
	CorrelationID string   `json:"correlation_id"`
	CompanyID     string   `json:"company_id"`
	Periods       []string `json:"periods"`
}

type deletePeriodResponse struct {
	CorrelationID string `json:"correlation_id"`
	PeriodDate    string `json:"period_date"`
	*ledger.DeletePeriodResult
}

func handleHealth(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Ledger.Ping(r.Context()); err != nil {
			deps.Logger.Warn("health check failed", "err", err)
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "database_unavailable")
			return
		}
		writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
	}
}

func handleListMasterAccounts(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := deps.Ledger.ListMasterAccounts(r.Context())
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listMasterAccountsResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Accounts:      accounts,
		})
	}
}

func handleListCompanies(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companies, err := deps.Ledger.ListCompanies(r.Context())
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listCompaniesResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Companies:     companies,
		})
	}
}

func (req companyRequest) apply(c *ledger.Company) {
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.FiscalYearEnd != nil {
		c.FiscalYearEnd = *req.FiscalYearEnd
	}
	if req.Currency != nil {
		c.Currency = *req.Currency
	}
}

func handleCreateCompany(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req companyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		var c ledger.Company
		req.apply(&c)
		created, err := deps.Ledger.CreateCompany(r.Context(), c)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, companyResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Company:       created,
		})
	}
}

func handleGetCompany(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := deps.Ledger.GetCompany(r.Context(), chi.URLParam(r, "companyID"))
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, companyResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Company:       c,
		})
	}
}

func handleUpdateCompany(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req companyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		c, err := deps.Ledger.GetCompany(r.Context(), chi.URLParam(r, "companyID"))
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		req.apply(c)
		updated, err := deps.Ledger.UpdateCompany(r.Context(), *c)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, companyResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Company:       updated,
		})
	}
}

func handleListPeriods(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		periods, err := deps.Ledger.ListPeriods(r.Context(), companyID)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listPeriodsResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			CompanyID:     companyID,
			Periods:       formatDates(periods),
		})
	}
}

func handleDeletePeriod(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		d, err := ledger.ParseDate(chi.URLParam(r, "periodDate"))
		if err != nil {
			writeBadParam(w, r, "periodDate", "must be YYYY-MM-DD")
			return
		}

		res, err := deps.Ledger.DeletePeriod(r.Context(), companyID, d)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		deps.Logger.Info("period deleted",
			"company_id", companyID,
			"period_date", ledger.FormatDate(d),
			"entries_deleted", res.EntriesDeleted,
			"accounts_deleted", res.AccountsDeleted,
		)
		writeJSON(w, r, http.StatusOK, deletePeriodResponse{
			CorrelationID:      security.CorrelationIDFromContext(r.Context()),
			PeriodDate:         ledger.FormatDate(d),
			DeletePeriodResult: res,
		})
	}
}
