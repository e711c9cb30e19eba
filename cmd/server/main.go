package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supark0206/ticketing/internal/di"
	"github.com/supark0206/ticketing/internal/gateway"
	"github.com/supark0206/ticketing/internal/metrics"
	"github.com/supark0206/ticketing/internal/middleware"
	"github.com/supark0206/ticketing/internal/notification"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/internal/worker"
	"github.com/supark0206/ticketing/pkg/config"
	"github.com/supark0206/ticketing/pkg/database"
	"github.com/supark0206/ticketing/pkg/logger"
	pkgredis "github.com/supark0206/ticketing/pkg/redis"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info(fmt.Sprintf("Starting %s...", cfg.App.Name))

	ctx := context.Background()

	// Telemetry
	telCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telCfg); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry init failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()
	if err := telemetry.InitMetrics(ctx, telCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Metric pipeline init failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.ShutdownMetrics(shutdownCtx)
	}()
	metrics.Init()

	// PostgreSQL
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Redis
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Kafka event publisher, no-op fallback when brokers are unreachable
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected")
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = eventPublisher.Close(closeCtx)
		}()
	}

	// RabbitMQ notifier, no-op fallback when unreachable
	var notifier notification.Notifier
	notifier, err = notification.NewRabbitMQNotifier(&notification.NotifierConfig{
		URL:        cfg.RabbitMQ.URL,
		EmailQueue: cfg.RabbitMQ.EmailQueue,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("RabbitMQ connection failed, using no-op notifier: %v", err))
		notifier = notification.NewNoOpNotifier()
	} else {
		appLog.Info("RabbitMQ notifier connected")
		defer notifier.Close()
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		Config:         cfg,
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		Notifier:       notifier,
		Gateway:        gateway.NewMockGateway(nil),
	})

	// Pre-load Lua scripts into Redis
	if lockRepo, ok := container.SeatLockRepo.(*repository.RedisSeatLockRepository); ok {
		if err := lockRepo.LoadScripts(ctx); err != nil {
			appLog.Warn(fmt.Sprintf("Failed to pre-load Lua scripts: %v", err))
		} else {
			appLog.Info("Lua scripts pre-loaded into Redis")
		}
	}

	// Background expiry sweep
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	expiryWorker := worker.NewExpiryWorker(nil, container.ReservationRepo, container.ExpirationGuard)
	go expiryWorker.Start(workerCtx)

	// Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))

	router.GET("/health", container.HealthHandler.Live)
	router.GET("/health/ready", container.HealthHandler.Ready)

	auth := middleware.Auth(cfg.JWT.Secret)
	admin := middleware.RequireRole("admin")

	v1 := router.Group("/api/v1")
	{
		// Public catalog
		v1.GET("/concerts", container.ConcertHandler.List)
		v1.GET("/concerts/:id", container.ConcertHandler.Get)
		v1.GET("/concerts/:id/seats", container.SeatHandler.List)
		v1.GET("/concerts/:id/seats/map", container.SeatHandler.SeatMap)

		// Booking flow
		v1.POST("/seats/:id/select", auth, container.SeatHandler.Select)
		v1.POST("/payments", auth, container.PaymentHandler.Start)
		v1.POST("/payments/webhook", container.PaymentHandler.Webhook)
		v1.POST("/reservations/cancel", auth, container.ReservationHandler.Cancel)
		v1.GET("/reservations", auth, container.ReservationHandler.ListMine)
		v1.GET("/reservations/:id", auth, container.ReservationHandler.Get)

		// Waiting queue
		v1.POST("/queue", auth, container.QueueHandler.Join)
		v1.GET("/queue/:concertId", auth, container.QueueHandler.Status)
		v1.GET("/queue/:concertId/stream", auth, container.QueueHandler.Stream)

		// Admin
		adminGroup := v1.Group("/admin", auth, admin)
		{
			adminGroup.POST("/concerts", container.ConcertHandler.Create)
			adminGroup.PUT("/concerts/:id", container.ConcertHandler.Update)
			adminGroup.DELETE("/concerts/:id", container.ConcertHandler.Delete)
			adminGroup.GET("/concerts/:id/reservations", container.ReservationHandler.ListByConcert)
			adminGroup.POST("/seats", container.SeatHandler.CreateBatch)
			adminGroup.PUT("/seats/:id", container.SeatHandler.Update)
			adminGroup.DELETE("/seats/:id", container.SeatHandler.Delete)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No write timeout: the queue stream holds its connection open
		// until the user reaches the front of the line
		WriteTimeout:      0,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("%s listening on %s", cfg.App.Name, addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
