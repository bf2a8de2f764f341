package checkout

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/gateway"
)

type userSource interface {
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

// openPaymentUI hands the intent to the gateway and waits for the user.
func openPaymentUI(ctx context.Context, gw gateway.Checkout, users userSource, cfg Config, s State, description string, log *slog.Logger) Event {
	intent := s.Intent
	if intent == nil {
		return Failed{Message: fallbackFor(s.Attempt.Kind), Kind: domain.ErrorKindRemote}
	}

	amount := intent.GatewayOrder.AmountMinor
	if amount <= 0 {
		amount = domain.ToMinorUnits(intent.Amount)
	}
	currency := intent.GatewayOrder.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	opts := gateway.Options{
		Key:         cfg.Gateway.KeyID,
		Name:        cfg.Gateway.Name,
		Description: description,
		Image:       cfg.Gateway.Image,
		Currency:    currency,
		Amount:      amount,
		OrderID:     intent.GatewayOrder.ID,
		Prefill:     prefill(ctx, users, cfg, log),
		ThemeColor:  cfg.Gateway.ThemeColor,
	}

	res, err := gw.Open(ctx, opts)
	if err != nil {
		var gwErr *gateway.Error
		msg := fallbackFor(s.Attempt.Kind)
		if errors.As(err, &gwErr) && gwErr.Description != "" {
			msg = gwErr.Description
		}
		log.InfoContext(ctx, "external payment not completed", "attempt_id", s.Attempt.ID, "gateway_order_id", opts.OrderID, "error", err)
		return Failed{Message: msg, Kind: domain.ErrorKindExternalPayment}
	}
	return PaymentCompleted{Result: *res}
}

// prefill is best effort; the gateway UI asks for what is missing.
func prefill(ctx context.Context, users userSource, cfg Config, log *slog.Logger) gateway.Prefill {
	callCtx, cancel := callContext(ctx, cfg.Timeout)
	defer cancel()
	u, err := users.GetCurrentUser(callCtx)
	if err != nil {
		log.DebugContext(ctx, "no user for gateway prefill", "error", err)
		return gateway.Prefill{}
	}
	p := gateway.Prefill{Name: u.Name, Email: u.Email}
	if u.PhoneNumber != nil {
		p.Contact = *u.PhoneNumber
	}
	return p
}

func verifyRequest(s State, orderID string) domain.VerifyPaymentRequest {
	req := domain.VerifyPaymentRequest{OrderID: orderID}
	if s.Result != nil {
		req.GatewayPaymentID = s.Result.PaymentID
		req.GatewayOrderID = s.Result.OrderID
		req.Signature = s.Result.Signature
	}
	if req.GatewayOrderID == "" && s.Intent != nil {
		req.GatewayOrderID = s.Intent.GatewayOrder.ID
	}
	return req
}

func fallbackFor(kind domain.AttemptKind) string {
	if kind == domain.AttemptKindTopUp {
		return MessageTopUpFailed
	}
	return MessageCheckoutFailed
}
