package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/internal/worker"
	"github.com/supark0206/ticketing/pkg/config"
	"github.com/supark0206/ticketing/pkg/database"
	"github.com/supark0206/ticketing/pkg/logger"
	pkgredis "github.com/supark0206/ticketing/pkg/redis"
)

// Standalone expiry sweeper. The API server runs the same sweep in
// process; this binary exists for deployments that scale the API
// horizontally and want exactly one sweeper.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: "expiry-worker",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting expiry worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()

	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      20,
		MinIdleConns:  2,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()

	reservationRepo := repository.NewPostgresReservationRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	lockRepo := repository.NewRedisSeatLockRepository(redisClient)
	if err := lockRepo.LoadScripts(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to pre-load Lua scripts: %v", err))
	}

	lockService := service.NewSeatLockService(lockRepo, &service.SeatLockServiceConfig{
		LockTTL: cfg.Booking.SeatLockTTL,
	})

	var publisher service.EventPublisher
	publisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: "expiry-worker",
		ClientID:    cfg.Kafka.ClientID + "-expiry",
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		publisher = service.NewNoOpEventPublisher()
	}

	guard := service.NewExpirationGuard(reservationRepo, paymentRepo, lockService, publisher)
	w := worker.NewExpiryWorker(nil, reservationRepo, guard)

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	<-ctx.Done()
	appLog.Info("Shutting down expiry worker...")

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		appLog.Warn("Sweep did not finish before shutdown deadline")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = publisher.Close(closeCtx)

	appLog.Info("Expiry worker exited")
}
