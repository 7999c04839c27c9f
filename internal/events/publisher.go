package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/service"
)

// Ensure KafkaPublisher implements service.EventPublisher
var _ service.EventPublisher = (*KafkaPublisher)(nil)

// EventType represents the type of shipping tax event.
type EventType string

const (
	EventTypeShippingTaxCalculated EventType = "shipping_tax.calculated"
)

// ShippingTaxEvent is the envelope written to the shipping tax topic.
type ShippingTaxEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	CartID        string            `json:"cart_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes shipping tax events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logging.LoggerV2
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ShippingTaxTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.ShippingTaxTopic,
		logger: logger,
	}
}

// PublishShippingTaxCalculated publishes the outcome of an allocation.
func (p *KafkaPublisher) PublishShippingTaxCalculated(ctx context.Context, cartID string, resp *models.CalculateShippingTaxResponse) error {
	p.logger.Debug("Publishing shipping tax calculated event", logging.Fields{
		"cart_id": cartID,
	})

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	event := p.createEvent(ctx, EventTypeShippingTaxCalculated, cartID, data)
	return p.publish(ctx, event)
}

func (p *KafkaPublisher) createEvent(ctx context.Context, eventType EventType, cartID string, data []byte) *ShippingTaxEvent {
	event := &ShippingTaxEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		CartID:    cartID,
		Data:      data,
		Metadata:  map[string]string{"topic": p.topic},
		Timestamp: time.Now().UTC(),
	}

	if requestID := clients.RequestIDFromContext(ctx); requestID != "" {
		event.CorrelationID = requestID
	}

	return event
}

func (p *KafkaPublisher) publish(ctx context.Context, event *ShippingTaxEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := event.CartID
	if key == "" {
		key = event.ID
	}

	msg := kafka.Message{
		Key:   []byte(key),
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
			"cart_id":    event.CartID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"cart_id":    event.CartID,
	})

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}
