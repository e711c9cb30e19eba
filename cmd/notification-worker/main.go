package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/notification"
	"github.com/supark0206/ticketing/pkg/config"
	"github.com/supark0206/ticketing/pkg/logger"
)

// Notification worker: drains the email queue and delivers booking
// confirmations. Delivery here is a log line standing in for the real
// mail provider integration.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: "notification-worker",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting notification worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := notification.NewConsumer(&notification.NotifierConfig{
		URL:        cfg.RabbitMQ.URL,
		EmailQueue: cfg.RabbitMQ.EmailQueue,
	}, sendEmail)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("RabbitMQ connection failed: %v", err))
	}
	defer consumer.Close()

	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		appLog.Fatal(fmt.Sprintf("Consumer stopped: %v", err))
	}

	appLog.Info("Notification worker exited")
}

func sendEmail(ctx context.Context, n *notification.EmailNotification) error {
	logger.Get().Info("booking confirmation email sent",
		zap.String("to", n.To),
		zap.String("reservation_id", n.ReservationID),
		zap.String("transaction_id", n.TransactionID),
		zap.Float64("amount", n.Amount),
	)
	return nil
}
