package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/chairtime/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the wire taxonomy. Inactive resources
// are reported as not_found so existence does not leak.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInactive):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: "not found"})
	case errors.Is(err, domain.ErrOverlap):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "overlap", Message: "time range already booked"})
	case errors.Is(err, domain.ErrExpired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "expired", Message: "payment intent expired"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Code: "forbidden", Message: "insufficient role"})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Code: "rate_limited", Message: "too many requests"})
	case errors.Is(err, domain.ErrUpstream):
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "upstream_unavailable", Message: "upstream provider unavailable"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "validation", Message: verr.Message, Field: verr.Field})
	default:
		log.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal", Message: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: message})
}
