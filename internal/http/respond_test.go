package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErr(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"validation", apperr.Validation("bad input", "email"), http.StatusBadRequest, "validation_error", false},
		{"not found", apperr.NotFound("order not found", orders.ErrOrderNotFound), http.StatusNotFound, "not_found", false},
		{"bare order not found", fmt.Errorf("failed to get order: %w", orders.ErrOrderNotFound), http.StatusNotFound, "order_not_found", false},
		{"persistence", apperr.Persistence("save failed", errors.New("disk")), http.StatusInternalServerError, "persistence_error", false},
		{"service", apperr.Service("try again", errors.New("timeout")), http.StatusServiceUnavailable, "service_unavailable", true},
		{"unclassified", errors.New("boom"), http.StatusServiceUnavailable, "service_unavailable", true},
		{"breaker open", fmt.Errorf("failed to get order: %w", circuitbreaker.ErrOpen), http.StatusServiceUnavailable, "circuit_open", true},
		{"bad credentials", identity.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", false},
		{"email taken", identity.ErrEmailTaken, http.StatusConflict, "email_taken", false},
		{"illegal step", checkout.ErrIllegalTransition, http.StatusConflict, "illegal_transition", false},
		{"busy", checkout.ErrSubmissionInProgress, http.StatusConflict, "submission_in_progress", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			respondErr(recorder, request, tt.err)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.retryable, resp.Retryable)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRespondErr_ValidationFields(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respondErr(recorder, request, apperr.Validation("shipping details are incomplete", "city", "zip_code"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, []string{"city", "zip_code"}, resp.Fields)
	assert.Equal(t, "shipping details are incomplete", resp.Error)
}
