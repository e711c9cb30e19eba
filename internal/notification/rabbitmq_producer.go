package notification

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/supark0206/ticketing/pkg/telemetry"
)

// RabbitMQNotifier publishes email notifications to a durable RabbitMQ queue
type RabbitMQNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NotifierConfig contains configuration for the RabbitMQ notifier
type NotifierConfig struct {
	URL        string
	EmailQueue string
}

// NewRabbitMQNotifier connects to RabbitMQ and declares the email queue
func NewRabbitMQNotifier(cfg *NotifierConfig) (*RabbitMQNotifier, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
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

	if _, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &RabbitMQNotifier{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// SendBookingConfirmation publishes the notification as a persistent message
func (n *RabbitMQNotifier) SendBookingConfirmation(ctx context.Context, notification *EmailNotification) error {
	ctx, span := telemetry.StartSpan(ctx, "notification.rabbitmq.send")
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", notification.ReservationID),
		attribute.String("queue", n.queue),
	)

	body, err := json.Marshal(notification)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = n.channel.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Close closes the channel and connection
func (n *RabbitMQNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// Ensure RabbitMQNotifier implements Notifier
var _ Notifier = (*RabbitMQNotifier)(nil)
