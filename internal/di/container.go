package di

import (
	"github.com/supark0206/ticketing/internal/gateway"
	"github.com/supark0206/ticketing/internal/handler"
	"github.com/supark0206/ticketing/internal/notification"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/pkg/config"
	"github.com/supark0206/ticketing/pkg/database"
	"github.com/supark0206/ticketing/pkg/redis"
)

// Container holds all dependencies for the ticketing service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	ConcertRepo     repository.ConcertRepository
	SeatRepo        repository.SeatRepository
	ReservationRepo repository.ReservationRepository
	PaymentRepo     repository.PaymentRepository
	SeatLockRepo    repository.SeatLockRepository
	QueueRepo       repository.QueueRepository

	// Collaborators
	EventPublisher service.EventPublisher
	Notifier       notification.Notifier
	Gateway        gateway.PaymentGateway

	// Services
	SeatLockService    service.SeatLockService
	QueueService       service.QueueService
	ConcertService     service.ConcertService
	SeatService        service.SeatService
	ReservationService service.ReservationService
	PaymentService     service.PaymentService
	ExpirationGuard    *service.ExpirationGuard

	// Handlers
	HealthHandler      *handler.HealthHandler
	ConcertHandler     *handler.ConcertHandler
	SeatHandler        *handler.SeatHandler
	QueueHandler       *handler.QueueHandler
	PaymentHandler     *handler.PaymentHandler
	ReservationHandler *handler.ReservationHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config         *config.Config
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	Notifier       notification.Notifier
	Gateway        gateway.PaymentGateway
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
		Notifier:       cfg.Notifier,
		Gateway:        cfg.Gateway,
	}
	booking := cfg.Config.Booking

	// Repositories
	c.ConcertRepo = repository.NewPostgresConcertRepository(c.DB)
	c.SeatRepo = repository.NewPostgresSeatRepository(c.DB)
	c.ReservationRepo = repository.NewPostgresReservationRepository(c.DB)
	c.PaymentRepo = repository.NewPostgresPaymentRepository(c.DB)
	c.SeatLockRepo = repository.NewRedisSeatLockRepository(c.Redis)
	c.QueueRepo = repository.NewRedisQueueRepository(c.Redis)

	// Services
	c.SeatLockService = service.NewSeatLockService(c.SeatLockRepo, &service.SeatLockServiceConfig{
		LockTTL: booking.SeatLockTTL,
	})
	c.QueueService = service.NewQueueService(c.QueueRepo, c.SeatRepo, c.SeatLockRepo, &service.QueueServiceConfig{
		WaitPerSlot:   booking.QueueWaitPerSlot,
		MembershipTTL: booking.QueueMembershipTTL,
	})
	c.ExpirationGuard = service.NewExpirationGuard(c.ReservationRepo, c.PaymentRepo, c.SeatLockService, c.EventPublisher)
	c.ConcertService = service.NewConcertService(c.ConcertRepo)
	c.SeatService = service.NewSeatService(c.SeatRepo, c.ConcertRepo, c.ReservationRepo, c.SeatLockService)
	c.ReservationService = service.NewReservationService(
		c.ReservationRepo,
		c.PaymentRepo,
		c.ConcertRepo,
		c.ExpirationGuard,
		c.EventPublisher,
		&service.ReservationServiceConfig{
			HoldDuration: booking.HoldDuration,
			CancelWindow: booking.CancelWindow,
		},
	)
	c.PaymentService = service.NewPaymentService(
		c.PaymentRepo,
		c.ReservationRepo,
		c.SeatRepo,
		c.SeatLockService,
		c.ReservationService,
		c.ExpirationGuard,
		c.EventPublisher,
		c.Notifier,
	)

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.ConcertHandler = handler.NewConcertHandler(c.ConcertService)
	c.SeatHandler = handler.NewSeatHandler(c.SeatService)
	c.QueueHandler = handler.NewQueueHandler(c.QueueService, &handler.QueueHandlerConfig{
		PollInterval: booking.QueuePollInterval,
	})
	c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService, c.Gateway)
	c.ReservationHandler = handler.NewReservationHandler(c.ReservationService)

	return c
}
