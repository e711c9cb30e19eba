package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/pkg/kafka"
)

// EventPublisher publishes reservation lifecycle events
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error
	PublishReservationConfirmed(ctx context.Context, reservation *domain.Reservation) error
	PublishReservationFailed(ctx context.Context, reservation *domain.Reservation) error
	PublishReservationExpired(ctx context.Context, reservation *domain.Reservation) error
	PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error

	Close(ctx context.Context) error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "reservation-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ticketing"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ticketing-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishReservationCreated publishes a reservation created event
func (p *KafkaEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationEventCreated, reservation)
}

// PublishReservationConfirmed publishes a reservation confirmed event
func (p *KafkaEventPublisher) PublishReservationConfirmed(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationEventConfirmed, reservation)
}

// PublishReservationFailed publishes a reservation failed event
func (p *KafkaEventPublisher) PublishReservationFailed(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationEventFailed, reservation)
}

// PublishReservationExpired publishes a reservation expired event
func (p *KafkaEventPublisher) PublishReservationExpired(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationEventExpired, reservation)
}

// PublishReservationCancelled publishes a reservation cancelled event
func (p *KafkaEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationEventCancelled, reservation)
}

// Close flushes and closes the underlying producer
func (p *KafkaEventPublisher) Close(ctx context.Context) error {
	if p.producer != nil {
		return p.producer.Close(ctx)
	}
	return nil
}

func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.ReservationEventType, reservation *domain.Reservation) error {
	eventID := uuid.New().String()
	event := domain.NewReservationEvent(eventType, reservation, eventID)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(eventType),
			"event_id":     eventID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher used when
// Kafka is unreachable and in tests
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

func (p *NoOpEventPublisher) PublishReservationConfirmed(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

func (p *NoOpEventPublisher) PublishReservationFailed(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

func (p *NoOpEventPublisher) PublishReservationExpired(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

func (p *NoOpEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

func (p *NoOpEventPublisher) Close(ctx context.Context) error {
	return nil
}
