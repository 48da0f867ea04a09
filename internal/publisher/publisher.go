// Package publisher announces placed orders on Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderPlaced     = "order-placed"
	EventTypeOrderPlaced = "order.placed"
)

type OrderPlacedItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type OrderPlaced struct {
	OrderID       string            `json:"order_id"`
	UserID        string            `json:"user_id"`
	Email         string            `json:"email,omitempty"`
	Items         []OrderPlacedItem `json:"items"`
	Subtotal      float64           `json:"subtotal"`
	Shipping      float64           `json:"shipping"`
	Tax           float64           `json:"tax"`
	Total         float64           `json:"total"`
	PaymentMethod string            `json:"payment_method"`
	PlacedAt      time.Time         `json:"placed_at"`
}

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderEvents struct {
	writer MessageWriter
}

func NewOrderEvents(brokers ...string) *OrderEvents {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicOrderPlaced,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
	}
	return NewOrderEventsWithWriter(w)
}

func NewOrderEventsWithWriter(w MessageWriter) *OrderEvents {
	return &OrderEvents{writer: w}
}

// PublishOrderPlaced writes the event keyed by order id so all events of one
// order land on the same partition.
func (p *OrderEvents) PublishOrderPlaced(ctx context.Context, event OrderPlaced) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order placed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", event.OrderID, err)
	}
	return nil
}

func (p *OrderEvents) Close() error {
	return p.writer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

func (Nop) Close() error { return nil }
