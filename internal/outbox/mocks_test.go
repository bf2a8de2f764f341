package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fjod/yofoo_cart/internal/repository"
	"github.com/segmentio/kafka-go"
)

var errBrokerDown = errors.New("broker down")

type MockRepository struct {
	mu           sync.Mutex
	Events       []*repository.OutboxEvent
	InsertErr    error
	GetErr       error
	PurgeErr     error
	Processed    []int64
	PurgedBefore time.Time
	nextID       int64
}

func (m *MockRepository) InsertEvent(_ context.Context, aggregateID, eventType string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.nextID++
	m.Events = append(m.Events, &repository.OutboxEvent{
		ID:          m.nextID,
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     json.RawMessage(payload),
		CreatedAt:   time.Now(),
	})
	return nil
}

func (m *MockRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*repository.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var out []*repository.OutboxEvent
	for _, e := range m.Events {
		if e.ProcessedAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, e := range m.Events {
		if e.ID == id {
			e.ProcessedAt = &now
		}
	}
	m.Processed = append(m.Processed, id)
	return nil
}

func (m *MockRepository) PurgeProcessedEvents(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PurgedBefore = before
	return 0, m.PurgeErr
}

func (m *MockRepository) ProcessedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.Processed...)
}

// MockWriter records messages, failing the first FailFirst writes.
type MockWriter struct {
	mu        sync.Mutex
	Messages  []kafka.Message
	FailFirst int
	calls     int
}

func (w *MockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.calls <= w.FailFirst {
		return errBrokerDown
	}
	w.Messages = append(w.Messages, msgs...)
	return nil
}

func (w *MockWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func (w *MockWriter) Close() error { return nil }
