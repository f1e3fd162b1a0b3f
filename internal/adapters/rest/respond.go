package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	errCodeValidation   = "VALIDATION_ERROR"
	errCodeNotFound     = "NOT_FOUND"
	errCodeInsufficient = "INSUFFICIENT_DATA"
	errCodeUpstream     = "UPSTREAM_UNAVAILABLE"
	errCodePersistence  = "PERSISTENCE_ERROR"
	errCodeInternal     = "INTERNAL_ERROR"
)

// envelope is the shape of every response body.
type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: data})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeErrorWithCode(w, http.StatusBadRequest, message, errCodeValidation)
}

func writeErrorWithCode(w http.ResponseWriter, status int, message string, code string) {
	writeJSON(w, status, envelope{Status: statusError, Message: message, Code: code})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Insufficient data is a legitimate outcome, so it is sent with 200.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeValidationError(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	case errors.Is(err, domain.ErrInsufficientData):
		writeErrorWithCode(w, http.StatusOK, err.Error(), errCodeInsufficient)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		h.logger.Error("rest: upstream failure", "path", r.URL.Path, "error", err)
		writeErrorWithCode(w, http.StatusInternalServerError, err.Error(), errCodeUpstream)
	case errors.Is(err, domain.ErrPersistence):
		h.logger.Error("rest: persistence failure", "path", r.URL.Path, "error", err)
		writeErrorWithCode(w, http.StatusInternalServerError, err.Error(), errCodePersistence)
	default:
		h.logger.Error("rest: request failed", "path", r.URL.Path, "error", err)
		writeErrorWithCode(w, http.StatusInternalServerError, err.Error(), errCodeInternal)
	}
}

// splitList parses a comma-separated query value.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// queryLimit reads ?limit=; zero means the service default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.InvalidInputError{Field: "limit", Reason: "must be a non-negative integer"}
	}
	return n, nil
}
