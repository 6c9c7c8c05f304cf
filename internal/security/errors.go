package security

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every failed HTTP request. Error is a stable
// machine code; Message and Details are optional.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	Details       any    `json:"details,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func WriteJSONError(w http.ResponseWriter, r *http.Request, status int, code string) {
	WriteJSONErrorDetail(w, r, status, ErrorResponse{Error: code})
}

func WriteJSONErrorDetail(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	cid := CorrelationIDFromContext(r.Context())
	if cid != "" {
		w.Header().Set(CorrelationIDHeader, cid)
	}
	body.CorrelationID = cid

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
