package outbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Message is one event read back from the topic.
type Message struct {
	Key       string
	EventType string
	Payload   []byte
	Offset    int64
}

type Handler func(ctx context.Context, m Message) error

// Consumer tails the checkout events topic.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(groupID string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Run delivers messages to h until ctx is done or h fails.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("error reading message: %w", err)
		}
		if err := h(ctx, toMessage(m)); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func toMessage(m kafka.Message) Message {
	out := Message{Key: string(m.Key), Payload: m.Value, Offset: m.Offset}
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			out.EventType = string(h.Value)
		}
	}
	return out
}
