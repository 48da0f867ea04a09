package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/pkg/circuitbreaker"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Retryable bool     `json:"retryable"`
	Fields    []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondErr maps err onto a status code. Known sentinels win over the
// generic error kinds; anything unclassified is a retryable 503.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	case errors.Is(err, identity.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	case errors.Is(err, identity.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email_taken", err.Error())
		return
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
		return
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, "submission_in_progress", err.Error())
		return
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
		return
	case errors.Is(err, orders.ErrOrderNotFound) && apperr.KindOf(err) != apperr.KindNotFound:
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
		return
	}

	appErr := apperr.As(err)
	resp := ErrorResponse{
		Error:     appErr.Message,
		Retryable: appErr.Retryable(),
		Fields:    appErr.Fields,
	}
	var status int
	switch appErr.Kind {
	case apperr.KindValidation:
		status, resp.Code = http.StatusBadRequest, "validation_error"
	case apperr.KindNotFound:
		status, resp.Code = http.StatusNotFound, "not_found"
	case apperr.KindPersistence:
		status, resp.Code = http.StatusInternalServerError, "persistence_error"
	default:
		status, resp.Code = http.StatusServiceUnavailable, "service_unavailable"
		if errors.Is(err, circuitbreaker.ErrOpen) {
			resp.Code = "circuit_open"
		}
	}
	if status >= http.StatusInternalServerError {
		requestLogger(r).Error("request failed", zap.Error(err))
	}
	respondJSON(w, status, resp)
}
