package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/services"
)

type ErrorResponse struct {
	Error  string                `json:"error"`
	Fields []services.FieldError `json:"fields,omitempty"`
}

// writeJSON encodes v before committing status, so an encoding failure
// becomes a 500 instead of a truncated 2xx.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError maps manager and backend errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: services.UserMessage(err)}

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Fields = verr.Fields
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, services.ErrUnknownFilter),
		errors.Is(err, services.ErrConfirmationMismatch),
		errors.Is(err, services.ErrNoTarget),
		errors.Is(err, services.ErrGateClosed),
		errors.Is(err, services.ErrDraftClosed):
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, services.ErrMutationInFlight):
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, services.ErrReadOnly):
		writeJSON(w, http.StatusMethodNotAllowed, resp)
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, resp)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, resp)
	default:
		log.Printf("dashboard: backend call failed: %v", err)
		writeJSON(w, http.StatusBadGateway, resp)
	}
}
