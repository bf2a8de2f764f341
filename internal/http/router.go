package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Wallet   *WalletHandler
	Payments *PaymentsHandler
	Orders   *OrdersHandler
	Events   *Hub
}

// NewRouter builds the daemon's HTTP surface, instrumented with otelhttp.
// Browser callers must come from a loopback page or allowedOrigins.
func NewRouter(hs Handlers, requestTimeout time.Duration, allowedOrigins []string, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(OriginGuard(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// long-lived, so outside the timeout and compression group
		r.Get("/events", hs.Events.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Use(middleware.Compress(5))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", hs.Cart.GetCart)
				r.Delete("/", hs.Cart.ClearCart)
				r.Post("/items", hs.Cart.AddItem)
				r.Put("/items/{item_id}", hs.Cart.UpdateQuantity)
				r.Delete("/items/{item_id}", hs.Cart.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", hs.Checkout.StartCheckout)
				r.Get("/", hs.Checkout.GetCheckout)
				r.Delete("/", hs.Checkout.ResetCheckout)
				r.Post("/retry", hs.Checkout.RetryCheckout)
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", hs.Wallet.GetBalance)
				r.Get("/transactions", hs.Wallet.GetTransactions)
				r.Post("/topup", hs.Checkout.StartTopUp)
				r.Get("/topup", hs.Checkout.GetTopUp)
				r.Post("/topup/retry", hs.Checkout.RetryTopUp)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/pending", hs.Payments.Pending)
				r.Post("/{order_id}/complete", hs.Payments.Complete)
				r.Post("/{order_id}/fail", hs.Payments.Fail)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", hs.Orders.ListOrders)
				r.Get("/{order_id}", hs.Orders.GetOrder)
			})
		})
	})

	return otelhttp.NewHandler(r, "cartd")
}
