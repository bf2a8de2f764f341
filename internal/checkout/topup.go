package checkout

import (
	"context"
	"log/slog"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/gateway"
	"github.com/fjod/yofoo_cart/internal/wallet"
	"github.com/shopspring/decimal"
)

// TopUp runs wallet top-ups for the wallet screen. It has the shape of a
// gateway checkout without the order step; success refreshes the wallet.
type TopUp struct {
	*flow
	api     WalletAPI
	balance Balance
	history TransactionHistory
	gw      gateway.Checkout
	cfg     Config
}

// NewTopUp wires a wallet screen. history may be nil.
func NewTopUp(wallets WalletAPI, balance Balance, history TransactionHistory, gw gateway.Checkout, cfg Config, log *slog.Logger) *TopUp {
	t := &TopUp{
		flow:    newFlow(domain.AttemptKindTopUp, log),
		api:     wallets,
		balance: balance,
		history: history,
		gw:      gw,
		cfg:     cfg.withDefaults(),
	}
	t.exec = t.execute
	return t
}

// TopUp adds amount to the wallet and waits for the attempt to settle.
func (t *TopUp) TopUp(ctx context.Context, amount decimal.Decimal) (domain.PaymentAttempt, error) {
	_, done, err := t.Start(ctx, amount)
	if err != nil {
		return t.State(), err
	}
	return <-done, nil
}

// Start begins a top-up without waiting. ctx must outlive the attempt.
func (t *TopUp) Start(ctx context.Context, amount decimal.Decimal) (domain.PaymentAttempt, <-chan domain.PaymentAttempt, error) {
	if err := wallet.ValidateTopUpAmount(amount); err != nil {
		return t.State(), nil, &ValidationError{Field: "amount", Message: err.Error(), Err: err}
	}
	if _, err := t.claim(); err != nil {
		return t.State(), nil, err
	}

	s := NewState(t.newID(), domain.AttemptKindTopUp, domain.PaymentModeGateway, amount, t.now())
	next, effects, err := t.apply(ctx, s, Start{})
	if err != nil {
		t.release()
		return t.State(), nil, err
	}
	return next.Attempt, t.launch(ctx, next, effects), nil
}

func (t *TopUp) Retry() (domain.PaymentAttempt, error) {
	return t.retry()
}

func (t *TopUp) Reset() error {
	return t.reset()
}

func (t *TopUp) State() domain.PaymentAttempt {
	return t.current()
}

func (t *TopUp) Subscribe(fn func(domain.PaymentAttempt)) func() {
	return t.subscribe(fn)
}

func (t *TopUp) execute(ctx context.Context, s State, e Effect) Event {
	switch e {
	case EffectCreateTopUpIntent:
		callCtx, cancel := callContext(ctx, t.cfg.Timeout)
		defer cancel()
		intent, err := t.api.CreateWalletTopUp(callCtx, s.Attempt.Amount)
		if err != nil {
			t.log.ErrorContext(ctx, "failed to create top-up intent", "attempt_id", s.Attempt.ID, "error", err)
			return Failed{Message: messageOr(err, MessageTopUpFailed), Kind: domain.ErrorKindRemote}
		}
		return IntentCreated{Intent: *intent}
	case EffectOpenPaymentUI:
		return openPaymentUI(ctx, t.gw, t.api, t.cfg, s, topUpDescription, t.log)
	case EffectVerifyTopUp:
		callCtx, cancel := callContext(ctx, t.cfg.Timeout)
		defer cancel()
		if err := t.api.VerifyWalletTopUp(callCtx, verifyRequest(s, "")); err != nil {
			t.log.ErrorContext(ctx, "top-up verification failed", "attempt_id", s.Attempt.ID, "error", err)
			return Failed{Message: messageOr(err, MessageTopUpFailed), Kind: domain.ErrorKindRemote}
		}
		return Verified{}
	case EffectInvalidateWallet:
		t.balance.Invalidate(ctx)
		if t.history != nil {
			t.history.Reset()
		}
	default:
		t.log.ErrorContext(ctx, "unhandled top-up effect", "effect", e)
	}
	return nil
}
