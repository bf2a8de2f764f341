package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/yofoo_cart/internal/repository"
)

type Recorder struct {
	repo repository.OutboxRepository
}

func NewRecorder(repo repository.OutboxRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) RecordOrphan(ctx context.Context, o OrphanedOrder) error {
	return r.insert(ctx, o.OrderID, EventOrderOrphaned, o)
}

func (r *Recorder) RecordCompleted(ctx context.Context, c CompletedCheckout) error {
	return r.insert(ctx, c.OrderID, EventCheckoutCompleted, c)
}

func (r *Recorder) insert(ctx context.Context, aggregateID, eventType string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	if err := r.repo.InsertEvent(ctx, aggregateID, eventType, payload); err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", eventType, aggregateID, err)
	}
	return nil
}
