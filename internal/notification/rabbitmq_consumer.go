package notification

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/supark0206/ticketing/pkg/logger"
)

// Handler processes one email notification. Returning an error requeues
// the delivery once.
type Handler func(ctx context.Context, notification *EmailNotification) error

// Consumer drains the email queue and dispatches each message to a handler
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	handler Handler
}

// NewConsumer connects to RabbitMQ and declares the email queue
func NewConsumer(cfg *NotifierConfig, handler Handler) (*Consumer, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	queue := cfg.EmailQueue
	if queue == "" {
		queue = "notification.email"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := channel.Qos(10, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   queue,
		handler: handler,
	}, nil
}

// Run consumes until the context is cancelled or the channel closes
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log := logger.Get()
	log.Info("notification consumer started", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("rabbitmq channel closed")
			}
			c.handleDelivery(ctx, delivery)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	log := logger.Get()

	var notification EmailNotification
	if err := json.Unmarshal(delivery.Body, &notification); err != nil {
		log.Error("failed to decode notification, dropping",
			zap.Error(err),
		)
		_ = delivery.Nack(false, false)
		return
	}

	if err := c.handler(ctx, &notification); err != nil {
		log.Error("failed to handle notification",
			zap.String("reservation_id", notification.ReservationID),
			zap.Error(err),
		)
		// Requeue once; a redelivered failure is dropped
		_ = delivery.Nack(false, !delivery.Redelivered)
		return
	}

	_ = delivery.Ack(false)
}

// Close closes the channel and connection
func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
