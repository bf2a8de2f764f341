package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Approver decides how a sandbox payment ends; returning a non-nil *Error fails it.
type Approver func(ctx context.Context, opts Options) *Error

// ApproveAll approves every payment.
func ApproveAll(context.Context, Options) *Error { return nil }

// Sandbox simulates the gateway's test mode: approved payments are signed
// with the shared secret the way the real gateway signs them.
type Sandbox struct {
	secret  string
	approve Approver
}

func NewSandbox(secret string, approve Approver) *Sandbox {
	if approve == nil {
		approve = ApproveAll
	}
	return &Sandbox{secret: secret, approve: approve}
}

func (s *Sandbox) Open(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Code: CodeCancelled, Description: CancelledDescription, Reason: err.Error()}
	}
	if gwErr := s.approve(ctx, opts); gwErr != nil {
		return nil, gwErr
	}

	paymentID := fmt.Sprintf("pay_%s", uuid.NewString()[:14])
	return &Result{
		PaymentID: paymentID,
		OrderID:   opts.OrderID,
		Signature: Sign(opts.OrderID, paymentID, s.secret),
	}, nil
}
