package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/threestatement/internal/ingest"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/security"
)

// lexeme is a JSON string or number kept as its literal text.
type lexeme string

func (l *lexeme) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = lexeme(s)
		return nil
	}
	*l = lexeme(b)
	return nil
}

type trialBalanceRequest struct {
	Rows []struct {
		AccountNumber lexeme `json:"account_number"`
		AccountName   string `json:"account_name"`
		Balance       lexeme `json:"balance"`
	} `json:"rows"`
}

type importResponse struct {
	CorrelationID    string `json:"correlation_id"`
	CompanyID        string `json:"company_id"`
	PeriodID         string `json:"reporting_period_id"`
	PeriodDate       string `json:"period_date"`
	PeriodCreated    bool   `json:"period_created"`
	EntriesProcessed int    `json:"entries_processed"`
	AccountsCreated  int    `json:"accounts_created"`
}

func periodDateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("period_date"))
	if raw == "" {
		writeBadParam(w, r, "period_date", "is required")
		return "", false
	}
	if _, err := ledger.ParseDate(raw); err != nil {
		writeBadParam(w, r, "period_date", "must be YYYY-MM-DD")
		return "", false
	}
	return raw, true
}

func runImport(deps Dependencies, w http.ResponseWriter, r *http.Request, periodDate string, rows []ingest.Row) {
	companyID := chi.URLParam(r, "companyID")
	d, _ := ledger.ParseDate(periodDate)

	res, err := deps.Importer.Import(r.Context(), companyID, d, rows)
	if err != nil {
		writeError(deps.Logger, w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, importResponse{
		CorrelationID:    security.CorrelationIDFromContext(r.Context()),
		CompanyID:        companyID,
		PeriodID:         res.PeriodID,
		PeriodDate:       ledger.FormatDate(res.PeriodDate),
		PeriodCreated:    res.PeriodCreated,
		EntriesProcessed: res.EntriesWritten,
		AccountsCreated:  res.AccountsAdded,
	})
}

func handleImportTrialBalance(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periodDate, ok := periodDateParam(w, r)
		if !ok {
			return
		}

		var req trialBalanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}
		rows := make([]ingest.Row, len(req.Rows))
		for i, row := range req.Rows {
			rows[i] = ingest.Row{
				AccountNumber: string(row.AccountNumber),
				AccountName:   row.AccountName,
				Balance:       string(row.Balance),
			}
		}
		runImport(deps, w, r, periodDate, rows)
	}
}

// handleUploadTrialBalance accepts a raw text/csv body or a multipart form
// with the file in the "file" field.
func handleUploadTrialBalance(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periodDate, ok := periodDateParam(w, r)
		if !ok {
			return
		}

		var body io.Reader = r.Body
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, security.ErrorResponse{
					Error:   "invalid_request",
					Message: "multipart upload must carry a file field",
				})
				return
			}
			defer f.Close()
			body = f
		}

		rows, err := ingest.ReadCSV(body)
		if err != nil {
			writeError(deps.Logger, w, r, err)
			return
		}
		runImport(deps, w, r, periodDate, rows)
	}
}
