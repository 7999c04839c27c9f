package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
)

// TaxRateEventType represents a change to the host tax table.
type TaxRateEventType string

const (
	TaxRateEventCreated  TaxRateEventType = "tax_rate.created"
	TaxRateEventUpdated  TaxRateEventType = "tax_rate.updated"
	TaxRateEventDeleted  TaxRateEventType = "tax_rate.deleted"
	TaxClassEventUpdated TaxRateEventType = "tax_class.updated"
)

const invalidationSourceEvents = "event"

// TaxRateEvent is published by the catalog when tax configuration changes.
type TaxRateEvent struct {
	ID        string           `json:"id"`
	Type      TaxRateEventType `json:"type"`
	RateID    string           `json:"rate_id,omitempty"`
	TaxClass  string           `json:"tax_class,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// RateInvalidator is implemented by service.ShippingTaxService.
type RateInvalidator interface {
	InvalidateRates(ctx context.Context, source string) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer invalidates cached tax rates when the tax table changes.
type KafkaConsumer struct {
	reader      messageReader
	invalidator RateInvalidator
	logger      *logging.LoggerV2
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewKafkaConsumer creates a new Kafka-based tax rate event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, invalidator RateInvalidator, logger *logging.LoggerV2) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.TaxRatesTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:      reader,
		invalidator: invalidator,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Start begins consuming events. It returns when ctx is done or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					c.logger.Info("Kafka consumer stopped")
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.reader.Close()
	})
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event TaxRateEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	switch event.Type {
	case TaxRateEventCreated, TaxRateEventUpdated, TaxRateEventDeleted, TaxClassEventUpdated:
		c.handleTaxTableChanged(ctx, &event)
	default:
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
	}
}

func (c *KafkaConsumer) handleTaxTableChanged(ctx context.Context, event *TaxRateEvent) {
	c.logger.Info("Handling tax table change", logging.Fields{
		"event_type": event.Type,
		"rate_id":    event.RateID,
		"tax_class":  event.TaxClass,
	})

	if err := c.invalidator.InvalidateRates(ctx, invalidationSourceEvents); err != nil {
		c.logger.Error("Failed to invalidate tax rates", logging.Fields{
			"event_id": event.ID,
			"error":    err.Error(),
		})
	}
}
