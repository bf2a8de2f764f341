package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/yofoo_cart/internal/api"
	"github.com/fjod/yofoo_cart/internal/checkout"
	"github.com/fjod/yofoo_cart/internal/wallet"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps core errors to HTTP answers.
func handleError(w http.ResponseWriter, err error) {
	var vErr *checkout.ValidationError
	var apiErr *api.APIError

	switch {
	case errors.As(err, &vErr):
		code := "validation_error"
		if errors.Is(err, checkout.ErrEmptyCart) {
			code = "empty_cart"
		}
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Message, Code: code, Details: vErr.Field})
	case errors.Is(err, checkout.ErrAttemptInProgress):
		respondError(w, http.StatusConflict, "attempt_in_progress", err.Error())
	case errors.Is(err, wallet.ErrBalanceLoading):
		respondError(w, http.StatusConflict, "balance_loading", err.Error())
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "not_found", apiErr.Message)
			return
		}
		respondJSON(w, http.StatusBadGateway, ErrorResponse{Error: apiErr.Message, Code: "backend_error", Details: http.StatusText(apiErr.StatusCode)})
	case errors.Is(err, api.ErrTimeout):
		respondError(w, http.StatusGatewayTimeout, "timeout", api.Message(err))
	case errors.Is(err, api.ErrNetwork):
		respondError(w, http.StatusBadGateway, "network_error", api.Message(err))
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
