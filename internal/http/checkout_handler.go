package http

import (
	"context"
	"net/http"

	"github.com/fjod/yofoo_cart/internal/checkout"
	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/shopspring/decimal"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	topUp        *checkout.TopUp
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, topUp *checkout.TopUp) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator, topUp: topUp}
}

type CheckoutRequestDTO struct {
	PaymentMode domain.PaymentMode `json:"paymentMode"`
}

type TopUpRequestDTO struct {
	Amount decimal.Decimal `json:"amount"`
}

// attemptStatus is 202 while the attempt is still running.
func attemptStatus(a domain.PaymentAttempt) int {
	if a.Phase.IsProcessing() {
		return http.StatusAccepted
	}
	return http.StatusOK
}

// StartCheckout begins an attempt and answers without waiting for it. The
// attempt outlives the request; progress is on the events stream.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	attempt, _, err := h.orchestrator.Start(context.WithoutCancel(r.Context()), req.PaymentMode)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, attemptStatus(attempt), attempt)
}

func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orchestrator.State())
}

func (h *CheckoutHandler) RetryCheckout(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.orchestrator.Retry()
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, attempt)
}

func (h *CheckoutHandler) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.Reset(); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) StartTopUp(w http.ResponseWriter, r *http.Request) {
	var req TopUpRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	attempt, _, err := h.topUp.Start(context.WithoutCancel(r.Context()), req.Amount)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, attemptStatus(attempt), attempt)
}

func (h *CheckoutHandler) GetTopUp(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.topUp.State())
}

func (h *CheckoutHandler) RetryTopUp(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.topUp.Retry()
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, attempt)
}
