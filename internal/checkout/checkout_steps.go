package checkout

import (
	"context"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/outbox"
)

func (o *Orchestrator) createOrder(ctx context.Context, s State) Event {
	req := domain.CreateOrderRequest{
		RestaurantID: s.Cart.RestaurantID,
		Items:        s.Cart.OrderItems(),
		PaymentMode:  s.Attempt.Mode,
	}

	callCtx, cancel := callContext(ctx, o.cfg.Timeout)
	defer cancel()
	order, err := o.api.CreateOrder(callCtx, req)
	if err != nil {
		o.log.ErrorContext(ctx, "failed to create order", "attempt_id", s.Attempt.ID, "error", err)
		fallback := MessageOrderFailed
		if s.Attempt.Mode == domain.PaymentModeGateway {
			fallback = MessageCheckoutFailed
		}
		return Failed{Message: messageOr(err, fallback), Kind: domain.ErrorKindRemote}
	}
	return OrderCreated{OrderID: order.ID}
}

func (o *Orchestrator) createPaymentIntent(ctx context.Context, s State) Event {
	callCtx, cancel := callContext(ctx, o.cfg.Timeout)
	defer cancel()
	intent, err := o.api.CreatePaymentOrder(callCtx, s.Attempt.OrderID)
	if err != nil {
		o.log.ErrorContext(ctx, "failed to create payment intent", "attempt_id", s.Attempt.ID, "order_id", s.Attempt.OrderID, "error", err)
		return Failed{Message: messageOr(err, MessageCheckoutFailed), Kind: domain.ErrorKindRemote}
	}
	return IntentCreated{Intent: *intent}
}

func (o *Orchestrator) verifyPayment(ctx context.Context, s State) Event {
	callCtx, cancel := callContext(ctx, o.cfg.Timeout)
	defer cancel()
	if err := o.api.VerifyPayment(callCtx, verifyRequest(s, s.Attempt.OrderID)); err != nil {
		o.log.ErrorContext(ctx, "payment verification failed", "attempt_id", s.Attempt.ID, "order_id", s.Attempt.OrderID, "error", err)
		return Failed{Message: messageOr(err, MessageCheckoutFailed), Kind: domain.ErrorKindRemote}
	}
	return Verified{}
}

func (o *Orchestrator) reportOrphan(ctx context.Context, s State) {
	o.log.WarnContext(ctx, "order left without payment",
		"attempt_id", s.Attempt.ID,
		"order_id", s.Attempt.OrderID,
		"phase", s.Attempt.Phase,
		"reason", s.Attempt.Error,
	)
	if o.recorder == nil {
		return
	}
	err := o.recorder.RecordOrphan(context.WithoutCancel(ctx), outbox.OrphanedOrder{
		OrderID:        s.Attempt.OrderID,
		AttemptID:      s.Attempt.ID,
		GatewayOrderID: s.Attempt.GatewayOrderID,
		Mode:           s.Attempt.Mode,
		Amount:         s.Attempt.Amount,
		Reason:         s.Attempt.Error,
		OccurredAt:     s.Attempt.UpdatedAt,
	})
	if err != nil {
		o.log.ErrorContext(ctx, "failed to record orphaned order", "order_id", s.Attempt.OrderID, "error", err)
	}
}

func (o *Orchestrator) recordCompleted(ctx context.Context, s State) {
	if o.recorder == nil {
		return
	}
	err := o.recorder.RecordCompleted(context.WithoutCancel(ctx), outbox.CompletedCheckout{
		OrderID:      s.Attempt.OrderID,
		AttemptID:    s.Attempt.ID,
		RestaurantID: s.Cart.RestaurantID,
		Mode:         s.Attempt.Mode,
		Amount:       s.Attempt.Amount,
		CompletedAt:  s.Attempt.UpdatedAt,
	})
	if err != nil {
		o.log.ErrorContext(ctx, "failed to record completed checkout", "order_id", s.Attempt.OrderID, "error", err)
	}
}
