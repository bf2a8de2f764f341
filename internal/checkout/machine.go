package checkout

import (
	"fmt"
	"time"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/gateway"
	"github.com/shopspring/decimal"
)

// State is everything the machine knows about one attempt.
type State struct {
	Attempt domain.PaymentAttempt
	// Cart is the cart as submitted; checkout only.
	Cart   domain.Cart
	Intent *domain.PaymentIntent
	Result *gateway.Result
}

// NewState returns an idle attempt ready for Start.
func NewState(id string, kind domain.AttemptKind, mode domain.PaymentMode, amount decimal.Decimal, at time.Time) State {
	return State{Attempt: domain.PaymentAttempt{
		ID:        id,
		Kind:      kind,
		Mode:      mode,
		Phase:     domain.PhaseIdle,
		Amount:    amount,
		StartedAt: at,
		UpdatedAt: at,
	}}
}

type Event interface{ event() }

type (
	Start               struct{}
	BalanceInsufficient struct{ Balance decimal.Decimal }
	OrderCreated        struct{ OrderID string }
	IntentCreated       struct{ Intent domain.PaymentIntent }
	PaymentCompleted    struct{ Result gateway.Result }
	Verified            struct{}
	Failed              struct {
		Message string
		Kind    domain.ErrorKind
	}
	Retry struct{}
)

func (Start) event()               {}
func (BalanceInsufficient) event() {}
func (OrderCreated) event()        {}
func (IntentCreated) event()       {}
func (PaymentCompleted) event()    {}
func (Verified) event()            {}
func (Failed) event()              {}
func (Retry) event()               {}

// Effect is work the caller must perform after a transition.
type Effect int

const (
	EffectCreateOrder Effect = iota + 1
	EffectCreatePaymentIntent
	EffectCreateTopUpIntent
	EffectOpenPaymentUI
	EffectVerifyPayment
	EffectVerifyTopUp
	EffectClearCart
	EffectInvalidateWallet
	EffectReportOrphan
	EffectRecordCompleted
)

var effectNames = map[Effect]string{
	EffectCreateOrder:         "create_order",
	EffectCreatePaymentIntent: "create_payment_intent",
	EffectCreateTopUpIntent:   "create_topup_intent",
	EffectOpenPaymentUI:       "open_payment_ui",
	EffectVerifyPayment:       "verify_payment",
	EffectVerifyTopUp:         "verify_topup",
	EffectClearCart:           "clear_cart",
	EffectInvalidateWallet:    "invalidate_wallet",
	EffectReportOrphan:        "report_orphan",
	EffectRecordCompleted:     "record_completed",
}

func (e Effect) String() string {
	if n, ok := effectNames[e]; ok {
		return n
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

// AwaitsResult reports whether the effect is a remote step whose outcome is
// the next event.
func (e Effect) AwaitsResult() bool {
	switch e {
	case EffectCreateOrder, EffectCreatePaymentIntent, EffectCreateTopUpIntent,
		EffectOpenPaymentUI, EffectVerifyPayment, EffectVerifyTopUp:
		return true
	}
	return false
}

// Machine is the pure transition function for checkout and top-up attempts.
// It performs no I/O; callers execute the returned effects in order.
type Machine struct{}

func (Machine) Apply(s State, ev Event) (State, []Effect, error) {
	a := s.Attempt
	switch ev := ev.(type) {
	case Start:
		next := domain.PhaseCreatingOrder
		effect := EffectCreateOrder
		if a.Kind == domain.AttemptKindTopUp {
			next, effect = domain.PhaseCreatingTopUpIntent, EffectCreateTopUpIntent
		}
		if err := check(a.Phase, next); err != nil {
			return s, nil, err
		}
		s.Attempt.Phase = next
		return s, []Effect{effect}, nil

	case BalanceInsufficient:
		if err := check(a.Phase, domain.PhaseInsufficientBalance); err != nil {
			return s, nil, err
		}
		s.Attempt.Phase = domain.PhaseInsufficientBalance
		s.Attempt.Error = MessageInsufficient
		s.Attempt.ErrorKind = domain.ErrorKindInsufficientBalance
		return s, nil, nil

	case OrderCreated:
		if a.Phase != domain.PhaseCreatingOrder {
			return s, nil, unexpected(a.Phase, ev)
		}
		s.Attempt.OrderID = ev.OrderID
		if a.Mode == domain.PaymentModeGateway {
			s.Attempt.Phase = domain.PhaseCreatingPaymentIntent
			return s, []Effect{EffectCreatePaymentIntent}, nil
		}
		s.Attempt.Phase = domain.PhaseSuccess
		effects := []Effect{EffectClearCart}
		if a.Mode == domain.PaymentModeWallet {
			effects = append(effects, EffectInvalidateWallet)
		}
		return s, append(effects, EffectRecordCompleted), nil

	case IntentCreated:
		if a.Phase != domain.PhaseCreatingPaymentIntent && a.Phase != domain.PhaseCreatingTopUpIntent {
			return s, nil, unexpected(a.Phase, ev)
		}
		intent := ev.Intent
		s.Intent = &intent
		s.Attempt.GatewayOrderID = intent.GatewayOrder.ID
		if a.Kind == domain.AttemptKindTopUp {
			s.Attempt.OrderID = intent.TopUpRequestID
		}
		s.Attempt.Phase = domain.PhaseAwaitingExternalPayment
		return s, []Effect{EffectOpenPaymentUI}, nil

	case PaymentCompleted:
		if a.Phase != domain.PhaseAwaitingExternalPayment {
			return s, nil, unexpected(a.Phase, ev)
		}
		res := ev.Result
		s.Result = &res
		s.Attempt.Phase = domain.PhaseVerifyingSignature
		if a.Kind == domain.AttemptKindTopUp {
			return s, []Effect{EffectVerifyTopUp}, nil
		}
		return s, []Effect{EffectVerifyPayment}, nil

	case Verified:
		if a.Phase != domain.PhaseVerifyingSignature {
			return s, nil, unexpected(a.Phase, ev)
		}
		s.Attempt.Phase = domain.PhaseSuccess
		if a.Kind == domain.AttemptKindTopUp {
			return s, []Effect{EffectInvalidateWallet}, nil
		}
		return s, []Effect{EffectClearCart, EffectRecordCompleted}, nil

	case Failed:
		if err := check(a.Phase, domain.PhaseFailed); err != nil {
			return s, nil, err
		}
		s.Attempt.Phase = domain.PhaseFailed
		s.Attempt.Error = ev.Message
		s.Attempt.ErrorKind = ev.Kind
		// an order the backend already created is left behind
		if a.Kind == domain.AttemptKindCheckout && a.OrderID != "" {
			return s, []Effect{EffectReportOrphan}, nil
		}
		return s, nil, nil

	case Retry:
		if a.Phase == domain.PhaseIdle {
			return s, nil, nil
		}
		if a.Phase != domain.PhaseFailed && a.Phase != domain.PhaseInsufficientBalance {
			return s, nil, unexpected(a.Phase, ev)
		}
		s.Attempt.Phase = domain.PhaseIdle
		s.Attempt.Error = ""
		s.Attempt.ErrorKind = domain.ErrorKindNone
		return s, nil, nil
	}
	return s, nil, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
}

func check(from, to domain.Phase) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func unexpected(p domain.Phase, ev Event) error {
	return fmt.Errorf("%w: %T in phase %s", ErrInvalidTransition, ev, p)
}
