package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NopPublisher{}
	_ Publisher = (*MockEventPublisher)(nil)
)

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderItemRemoved(ctx context.Context, order *models.Order, item *models.OrderItem) error
	PublishOrderCompensated(ctx context.Context, order *models.Order, reason string) error
	Close() error
}

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderItemRemoved   EventType = "order.item_removed"
	EventTypeOrderCompensated   EventType = "order.compensated"
)

// OrderEvent represents an order-related event.
type OrderEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	OrderID       int64             `json:"order_id"`
	UserID        int64             `json:"user_id"`
	PharmacyID    int64             `json:"pharmacy_id"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// NewOrderEvent builds an event envelope, taking the correlation id from
// the request context when present.
func NewOrderEvent(ctx context.Context, eventType EventType, order *models.Order, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        order.UserID,
		PharmacyID:    order.PharmacyID,
		Data:          data,
		Metadata:      make(map[string]string),
		Timestamp:     time.Now().UTC(),
		CorrelationID: middleware.RequestIDFromContext(ctx),
	}
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *logging.LoggerV2
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.OrdersTopic,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.logger.Debug("Publishing order created event", logging.Fields{
		"order_id": order.ID,
	})

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, NewOrderEvent(ctx, EventTypeOrderCreated, order, data))
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	p.logger.Debug("Publishing order status changed event", logging.Fields{
		"order_id":        order.ID,
		"previous_status": previousStatus,
		"new_status":      order.Status,
	})

	data, err := json.Marshal(StatusChangedPayload{
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	})
	if err != nil {
		return err
	}
	return p.publish(ctx, NewOrderEvent(ctx, EventTypeOrderStatusChanged, order, data))
}

// PublishOrderItemRemoved publishes the removed item and the new total.
func (p *KafkaPublisher) PublishOrderItemRemoved(ctx context.Context, order *models.Order, item *models.OrderItem) error {
	data, err := json.Marshal(ItemRemovedPayload{
		Item:  item,
		Total: order.Total.StringFixed(2),
	})
	if err != nil {
		return err
	}
	return p.publish(ctx, NewOrderEvent(ctx, EventTypeOrderItemRemoved, order, data))
}

// PublishOrderCompensated publishes the cancellation of an order created by
// a checkout that failed part-way.
func (p *KafkaPublisher) PublishOrderCompensated(ctx context.Context, order *models.Order, reason string) error {
	p.logger.Debug("Publishing order compensated event", logging.Fields{
		"order_id": order.ID,
		"reason":   reason,
	})

	data, err := json.Marshal(CompensatedPayload{Reason: reason})
	if err != nil {
		return err
	}
	return p.publish(ctx, NewOrderEvent(ctx, EventTypeOrderCompensated, order, data))
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
		"topic":      p.topic,
	})
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

type StatusChangedPayload struct {
	PreviousStatus models.OrderStatus `json:"previous_status"`
	NewStatus      models.OrderStatus `json:"new_status"`
}

type ItemRemovedPayload struct {
	Item  *models.OrderItem `json:"item"`
	Total string            `json:"total"`
}

type CompensatedPayload struct {
	Reason string `json:"reason"`
}

// NopPublisher drops every event. Used when order events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *models.Order) error { return nil }

func (NopPublisher) PublishOrderStatusChanged(context.Context, *models.Order, models.OrderStatus) error {
	return nil
}

func (NopPublisher) PublishOrderItemRemoved(context.Context, *models.Order, *models.OrderItem) error {
	return nil
}

func (NopPublisher) PublishOrderCompensated(context.Context, *models.Order, string) error { return nil }

func (NopPublisher) Close() error { return nil }

// MockEventPublisher is a mock implementation for testing.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*OrderEvent
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*OrderEvent, 0),
	}
}

func (m *MockEventPublisher) record(ctx context.Context, eventType EventType, order *models.Order, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	data, _ := json.Marshal(payload)
	m.Events = append(m.Events, NewOrderEvent(ctx, eventType, order, data))
	return nil
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return m.record(ctx, EventTypeOrderCreated, order, order)
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	return m.record(ctx, EventTypeOrderStatusChanged, order, StatusChangedPayload{
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	})
}

func (m *MockEventPublisher) PublishOrderItemRemoved(ctx context.Context, order *models.Order, item *models.OrderItem) error {
	return m.record(ctx, EventTypeOrderItemRemoved, order, ItemRemovedPayload{
		Item:  item,
		Total: order.Total.StringFixed(2),
	})
}

func (m *MockEventPublisher) PublishOrderCompensated(ctx context.Context, order *models.Order, reason string) error {
	return m.record(ctx, EventTypeOrderCompensated, order, CompensatedPayload{Reason: reason})
}

func (m *MockEventPublisher) Close() error { return nil }

// Types returns the recorded event types in publish order.
func (m *MockEventPublisher) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}
