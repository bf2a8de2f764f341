package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/yofoo_cart/internal/api"
	"github.com/fjod/yofoo_cart/internal/cart"
	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/gateway"
)

// Orchestrator runs checkouts for one screen. At most one attempt is active
// at a time; the cart is only cleared by a successful attempt.
type Orchestrator struct {
	*flow
	cart     cart.Store
	api      OrderAPI
	balance  Balance
	gw       gateway.Checkout
	recorder Recorder
	cfg      Config
}

// NewOrchestrator wires a checkout screen. recorder may be nil.
func NewOrchestrator(store cart.Store, orders OrderAPI, balance Balance, gw gateway.Checkout, recorder Recorder, cfg Config, log *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		flow:     newFlow(domain.AttemptKindCheckout, log),
		cart:     store,
		api:      orders,
		balance:  balance,
		gw:       gw,
		recorder: recorder,
		cfg:      cfg.withDefaults(),
	}
	o.exec = o.execute
	return o
}

// Checkout places the cart as an order paid with mode and waits for the
// attempt to settle. Rejections (invalid input, an attempt already running,
// a wallet balance still loading) are returned as errors and leave the phase
// untouched. Everything that goes wrong once the attempt has started ends in
// the failed phase of the returned attempt instead.
func (o *Orchestrator) Checkout(ctx context.Context, mode domain.PaymentMode) (domain.PaymentAttempt, error) {
	_, done, err := o.Start(ctx, mode)
	if err != nil {
		return o.State(), err
	}
	return <-done, nil
}

// Start is Checkout without the wait: it returns the attempt as first
// published and a channel that yields the settled attempt. ctx must outlive
// the attempt.
func (o *Orchestrator) Start(ctx context.Context, mode domain.PaymentMode) (domain.PaymentAttempt, <-chan domain.PaymentAttempt, error) {
	if !mode.Checkoutable() {
		return o.State(), nil, &ValidationError{Field: "paymentMode", Message: fmt.Sprintf("unsupported payment mode %q", mode)}
	}
	c := o.cart.Snapshot()
	if c.IsEmpty() || c.RestaurantID == "" {
		return o.State(), nil, &ValidationError{Field: "cart", Message: ErrEmptyCart.Error(), Err: ErrEmptyCart}
	}

	if _, err := o.claim(); err != nil {
		return o.State(), nil, err
	}

	s := NewState(o.newID(), domain.AttemptKindCheckout, mode, c.TotalAmount, o.now())
	s.Cart = c

	if mode == domain.PaymentModeWallet {
		settled, err := o.checkBalance(ctx, s)
		if err != nil {
			o.release()
			return o.State(), nil, err
		}
		if settled != nil {
			o.release()
			return settled.Attempt, settledChan(settled.Attempt), nil
		}
	}

	next, effects, err := o.apply(ctx, s, Start{})
	if err != nil {
		o.release()
		return o.State(), nil, err
	}
	return next.Attempt, o.launch(ctx, next, effects), nil
}

// checkBalance returns a settled state when the attempt cannot go on, or an
// error when it must not start at all.
func (o *Orchestrator) checkBalance(ctx context.Context, s State) (*State, error) {
	callCtx, cancel := callContext(ctx, o.cfg.Timeout)
	bal, err := o.balance.Get(callCtx)
	cancel()

	var ev Event
	switch {
	case errors.Is(err, ErrBalanceLoading):
		return nil, err
	case err != nil:
		o.log.WarnContext(ctx, "wallet balance unavailable", "attempt_id", s.Attempt.ID, "error", err)
		ev = Failed{Message: messageOr(err, MessageBalanceFailed), Kind: domain.ErrorKindRemote}
	case bal.Balance.LessThan(s.Attempt.Amount):
		o.log.InfoContext(ctx, "insufficient wallet balance", "attempt_id", s.Attempt.ID, "balance", bal.Balance, "total", s.Attempt.Amount)
		ev = BalanceInsufficient{Balance: bal.Balance}
	default:
		return nil, nil
	}

	next, _, err := o.apply(ctx, s, ev)
	if err != nil {
		return nil, err
	}
	o.commit(ctx, next)
	return &next, nil
}

// Retry returns a failed or blocked attempt to idle. The cart is untouched.
func (o *Orchestrator) Retry() (domain.PaymentAttempt, error) {
	return o.retry()
}

// Reset discards a settled attempt, as when the screen goes away.
func (o *Orchestrator) Reset() error {
	return o.reset()
}

func (o *Orchestrator) State() domain.PaymentAttempt {
	return o.current()
}

// Subscribe registers fn for every phase change. fn must not call back into
// Checkout, Retry or Reset synchronously.
func (o *Orchestrator) Subscribe(fn func(domain.PaymentAttempt)) func() {
	return o.subscribe(fn)
}

func (o *Orchestrator) execute(ctx context.Context, s State, e Effect) Event {
	switch e {
	case EffectCreateOrder:
		return o.createOrder(ctx, s)
	case EffectCreatePaymentIntent:
		return o.createPaymentIntent(ctx, s)
	case EffectOpenPaymentUI:
		return openPaymentUI(ctx, o.gw, o.api, o.cfg, s, checkoutDescription, o.log)
	case EffectVerifyPayment:
		return o.verifyPayment(ctx, s)
	case EffectClearCart:
		o.cart.ClearCart()
	case EffectInvalidateWallet:
		o.balance.Invalidate(ctx)
	case EffectReportOrphan:
		o.reportOrphan(ctx, s)
	case EffectRecordCompleted:
		o.recordCompleted(ctx, s)
	default:
		o.log.ErrorContext(ctx, "unhandled checkout effect", "effect", e)
	}
	return nil
}

// messageOr returns the user-facing message carried by err, or fallback.
func messageOr(err error, fallback string) string {
	if msg := api.Message(err); msg != "" {
		return msg
	}
	return fallback
}
