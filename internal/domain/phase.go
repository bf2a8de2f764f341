package domain

type Phase string

const (
	PhaseIdle                    Phase = "idle"
	PhaseCreatingOrder           Phase = "creating_order"
	PhaseCreatingPaymentIntent   Phase = "creating_payment_intent"
	PhaseCreatingTopUpIntent     Phase = "creating_topup_intent"
	PhaseAwaitingExternalPayment Phase = "awaiting_external_payment"
	PhaseVerifyingSignature      Phase = "verifying_signature"
	PhaseInsufficientBalance     Phase = "insufficient_balance"
	PhaseSuccess                 Phase = "success"
	PhaseFailed                  Phase = "failed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle: {
		PhaseCreatingOrder,
		PhaseCreatingTopUpIntent,
		PhaseInsufficientBalance,
		PhaseFailed,
	},
	PhaseCreatingOrder: {
		PhaseCreatingPaymentIntent,
		PhaseSuccess,
		PhaseFailed,
	},
	PhaseCreatingPaymentIntent:   {PhaseAwaitingExternalPayment, PhaseFailed},
	PhaseCreatingTopUpIntent:     {PhaseAwaitingExternalPayment, PhaseFailed},
	PhaseAwaitingExternalPayment: {PhaseVerifyingSignature, PhaseFailed},
	PhaseVerifyingSignature:      {PhaseSuccess, PhaseFailed},
	PhaseInsufficientBalance:     {PhaseIdle},
	PhaseFailed:                  {PhaseIdle},
	PhaseSuccess:                 {PhaseIdle},
}

// CanTransitionTo reports whether next is a legal successor of p.
func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true only for success; failed and insufficient_balance can be retried.
func (p Phase) IsTerminal() bool {
	return p == PhaseSuccess
}

// IsProcessing is true while remote calls or the external UI are outstanding.
func (p Phase) IsProcessing() bool {
	switch p {
	case PhaseCreatingOrder, PhaseCreatingPaymentIntent, PhaseCreatingTopUpIntent,
		PhaseAwaitingExternalPayment, PhaseVerifyingSignature:
		return true
	}
	return false
}

func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

// String representation (for logging)
func (p Phase) String() string {
	return string(p)
}
