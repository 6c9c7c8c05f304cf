package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/mapping"
	"github.com/example/threestatement/internal/security"
)

type listMappingsResponse struct {
	CorrelationID string                  `json:"correlation_id"`
	Mappings      []ledger.AccountMapping `json:"mappings"`
}

type listUnmappedResponse struct {
	CorrelationID string                   `json:"correlation_id"`
	AsOf          string                   `json:"as_of"`
	Accounts      []ledger.UnmappedAccount `json:"accounts"`
}

type setMappingsRequest struct {
	MappedBy string           `json:"mapped_by"`
	Mappings []mapping.Update `json:"mappings"`
}

type setMappingsResponse struct {
	CorrelationID string `json:"correlation_id"`
	Updated       int    `json:"updated"`
}

type resetMappingsResponse struct {
	CorrelationID string `json:"correlation_id"`
	Deleted       int64  `json:"deleted"`
}

type validationResponse struct {
	CorrelationID string                     `json:"correlation_id"`
	IsValid       bool                       `json:"is_valid"`
	Results       []*ledger.ValidationResult `json:"results"`
}

// asOfParam defaults to today when the parameter is absent.
func asOfParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	d, present, err := dateParam(r, "as_of")
	if err != nil {
		writeBadParam(w, r, "as_of", "must be YYYY-MM-DD")
		return time.Time{}, false
	}
	if !present {
		d = ledger.Day(time.Now())
	}
	return d, true
}

func handleListMappings(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := deps.Mappings.Mappings(r.Context(), chi.URLParam(r, "companyID"))
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listMappingsResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Mappings:      ms,
		})
	}
}

func handleListUnmapped(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, ok := asOfParam(w, r)
		if !ok {
			return
		}
		accounts, err := deps.Mappings.Unmapped(r.Context(), chi.URLParam(r, "companyID"), asOf)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listUnmappedResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			AsOf:          ledger.FormatDate(asOf),
			Accounts:      accounts,
		})
	}
}

func handleSetMappings(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setMappingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		n, err := deps.Mappings.SetMappings(r.Context(), chi.URLParam(r, "companyID"), req.Mappings, req.MappedBy)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, setMappingsResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Updated:       n,
		})
	}
}

func handleResetMappings(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := deps.Mappings.ClearMappings(r.Context(), chi.URLParam(r, "companyID"))
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resetMappingsResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Deleted:       n,
		})
	}
}

func handleValidation(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, ok := asOfParam(w, r)
		if !ok {
			return
		}
		results, err := deps.Integrity.ComprehensiveValidation(r.Context(), chi.URLParam(r, "companyID"), asOf)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		valid := true
		for _, res := range results {
			valid = valid && res.IsValid
		}
		writeJSON(w, r, http.StatusOK, validationResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			IsValid:       valid,
			Results:       results,
		})
	}
}
