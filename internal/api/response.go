package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ingest"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/mapping"
	"github.com/example/threestatement/internal/security"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	cid := security.CorrelationIDFromContext(r.Context())
	if cid != "" {
		w.Header().Set(security.CorrelationIDHeader, cid)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadParam(w http.ResponseWriter, r *http.Request, name, message string) {
	security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, security.ErrorResponse{
		Error:   "invalid_parameter",
		Message: name + " " + message,
	})
}

// writeError maps domain errors to the HTTP error envelope. Anything not
// recognised is logged and reported as internal_error without detail.
func writeError(l *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var (
		oob         *ingest.OutOfBalanceError
		malformed   *ingest.MalformedRowError
		notImported *forecast.BasePeriodNotImportedError
	)
	switch {
	case errors.As(err, &oob):
		security.WriteJSONErrorDetail(w, r, http.StatusUnprocessableEntity, security.ErrorResponse{
			Error:   "out_of_balance",
			Message: oob.Error(),
			Details: map[string]int64{"discrepancy_cents": oob.Discrepancy},
		})
	case errors.As(err, &malformed):
		security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, security.ErrorResponse{
			Error:   "malformed_row",
			Message: malformed.Error(),
			Details: map[string]any{"row": malformed.Row, "field": malformed.Field},
		})
	case errors.As(err, &notImported):
		security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, security.ErrorResponse{
			Error:   "base_period_not_imported",
			Message: notImported.Error(),
			Details: map[string]string{"base_period": notImported.Period},
		})
	case errors.Is(err, forecast.ErrMissingBaseConfiguration):
		security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, security.ErrorResponse{
			Error:   "missing_base_configuration",
			Message: err.Error(),
		})
	case errors.Is(err, forecast.ErrInvalidConfig):
		security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, security.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	case errors.Is(err, mapping.ErrUnknownAccount):
		security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, security.ErrorResponse{
			Error:   "unknown_account",
			Message: err.Error(),
		})
	case errors.Is(err, ledger.ErrBalanceOverflow):
		security.WriteJSONErrorDetail(w, r, http.StatusUnprocessableEntity, security.ErrorResponse{
			Error:   "balance_overflow",
			Message: err.Error(),
		})
	case errors.Is(err, forecast.ErrConfigNotFound),
		errors.Is(err, ingest.ErrCompanyNotFound),
		errors.Is(err, ledger.ErrNotFound):
		security.WriteJSONErrorDetail(w, r, http.StatusNotFound, security.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	default:
		l.Error("request failed",
			"cid", security.CorrelationIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
	}
}

func dateParam(r *http.Request, name string) (time.Time, bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, false, nil
	}
	d, err := ledger.ParseDate(v)
	if err != nil {
		return time.Time{}, true, err
	}
	return d, true, nil
}

func dateList(raw string) ([]time.Time, error) {
	parts := strings.Split(raw, ",")
	out := make([]time.Time, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := ledger.ParseDate(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func formatDates(ds []time.Time) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = ledger.FormatDate(d)
	}
	return out
}
