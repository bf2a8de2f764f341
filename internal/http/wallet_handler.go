package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/wallet"
)

type WalletHandler struct {
	balance *wallet.BalanceCache
	feed    *wallet.TransactionFeed
}

func NewWalletHandler(balance *wallet.BalanceCache, feed *wallet.TransactionFeed) *WalletHandler {
	return &WalletHandler{balance: balance, feed: feed}
}

type WalletResponseDTO struct {
	Wallet       domain.WalletBalance `json:"wallet"`
	QuickAmounts []int64              `json:"quickAmounts"`
}

type TransactionsResponseDTO struct {
	Transactions []domain.WalletTransaction `json:"transactions"`
	Page         int                        `json:"page"`
	HasMore      bool                       `json:"hasMore"`
	Summary      wallet.Summary             `json:"summary"`
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	b, err := h.balance.Get(r.Context())
	if errors.Is(err, wallet.ErrBalanceLoading) {
		respondJSON(w, http.StatusAccepted, map[string]bool{"loading": true})
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, WalletResponseDTO{Wallet: b, QuickAmounts: wallet.QuickAmounts})
}

// GetTransactions returns every transaction up to the requested page. Page 1
// (the default) reloads the history from scratch.
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			respondError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
			return
		}
		page = p
	}

	if page == 1 {
		h.feed.Reset()
	}
	for h.feed.Loaded() < page && h.feed.HasMore() {
		before := h.feed.Loaded()
		if _, err := h.feed.Next(r.Context()); err != nil {
			handleError(w, err)
			return
		}
		if h.feed.Loaded() == before {
			break
		}
	}

	items := h.feed.Items()
	respondJSON(w, http.StatusOK, TransactionsResponseDTO{
		Transactions: items,
		Page:         h.feed.Loaded(),
		HasMore:      h.feed.HasMore(),
		Summary:      wallet.Summarize(items),
	})
}
