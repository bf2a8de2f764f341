package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/yofoo_cart/internal/repository"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the poller uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Poller struct {
	timeout   time.Duration
	eventTick time.Duration
	purgeTick time.Duration
	retention time.Duration
	batch     int
	repo      repository.OutboxRepository
	writer    MessageWriter
	log       *slog.Logger
}

func NewWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewPoller(repo repository.OutboxRepository, writer MessageWriter, log *slog.Logger) *Poller {
	return &Poller{
		timeout:   5 * time.Second,
		eventTick: time.Second,
		purgeTick: time.Hour,
		retention: 7 * 24 * time.Hour,
		batch:     100,
		repo:      repo,
		writer:    writer,
		log:       log,
	}
}

func (p *Poller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	purgeTicker := time.NewTicker(p.purgeTick)
	defer eventTicker.Stop()
	defer purgeTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-purgeTicker.C:
			p.purgeProcessed(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) Close() error {
	return p.writer.Close()
}

func (p *Poller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batch)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to fetch outbox events", "error", err)
		return
	}

	// The batch stops at the first failure so later events never overtake
	// the one left behind. It is retried from there next tick.
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.log.WarnContext(ctx, "failed to publish outbox event", "id", event.ID, "event_type", event.EventType, "error", err)
			return
		}
		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.ErrorContext(ctx, "failed to mark outbox event as processed", "id", event.ID, "error", err)
			return
		}
	}
}

func (p *Poller) purgeProcessed(ctx context.Context) {
	n, err := p.repo.PurgeProcessedEvents(ctx, time.Now().Add(-p.retention))
	if err != nil {
		p.log.ErrorContext(ctx, "failed to purge outbox events", "error", err)
		return
	}
	if n > 0 {
		p.log.InfoContext(ctx, "purged outbox events", "count", n)
	}
}

func (p *Poller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // same key, same partition
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
