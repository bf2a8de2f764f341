package http

import (
	"errors"
	"net/http"

	"github.com/fjod/yofoo_cart/internal/gateway"
	"github.com/go-chi/chi/v5"
)

// PaymentsHandler lets the presentation layer answer open gateway sessions.
// bridge is nil when the daemon runs against the sandbox gateway.
type PaymentsHandler struct {
	bridge *gateway.Bridge
}

func NewPaymentsHandler(bridge *gateway.Bridge) *PaymentsHandler {
	return &PaymentsHandler{bridge: bridge}
}

type CompletePaymentRequestDTO struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
}

type FailPaymentRequestDTO struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason,omitempty"`
}

func (h *PaymentsHandler) available(w http.ResponseWriter) bool {
	if h.bridge == nil {
		respondError(w, http.StatusNotFound, "bridge_disabled", "payment sessions are not handed to the client in this mode")
		return false
	}
	return true
}

func (h *PaymentsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	respondJSON(w, http.StatusOK, h.bridge.Pending())
}

func (h *PaymentsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	orderID := chi.URLParam(r, "order_id")

	var req CompletePaymentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaymentID == "" || req.Signature == "" {
		respondError(w, http.StatusBadRequest, "invalid_result", "paymentId and signature are required")
		return
	}

	err := h.bridge.Complete(orderID, gateway.Result{PaymentID: req.PaymentID, OrderID: req.OrderID, Signature: req.Signature})
	h.resolved(w, err)
}

func (h *PaymentsHandler) Fail(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	orderID := chi.URLParam(r, "order_id")

	var req FailPaymentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.bridge.Fail(orderID, &gateway.Error{Code: req.Code, Description: req.Description, Reason: req.Reason})
	h.resolved(w, err)
}

func (h *PaymentsHandler) resolved(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, gateway.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	default:
		handleError(w, err)
	}
}
