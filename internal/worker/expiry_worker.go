package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/pkg/logger"
)

// ExpiryWorkerConfig holds configuration for the expiry worker
type ExpiryWorkerConfig struct {
	// SweepInterval is the time between sweeps (default: 30 seconds)
	SweepInterval time.Duration
	// BatchSize caps how many reservations one sweep processes (default: 100)
	BatchSize int
}

// DefaultExpiryWorkerConfig returns default configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		SweepInterval: 30 * time.Second,
		BatchSize:     100,
	}
}

// ExpiryWorker periodically sweeps reservations whose hold window has
// passed while still in progress. The confirm and cancel read paths
// already expire lazily; the sweep bounds how stale an abandoned
// reservation can get.
type ExpiryWorker struct {
	config          *ExpiryWorkerConfig
	reservationRepo repository.ReservationRepository
	guard           *service.ExpirationGuard

	mu           sync.Mutex
	totalExpired int64
	lastSweep    time.Time
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(
	cfg *ExpiryWorkerConfig,
	reservationRepo repository.ReservationRepository,
	guard *service.ExpirationGuard,
) *ExpiryWorker {
	if cfg == nil {
		cfg = DefaultExpiryWorkerConfig()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &ExpiryWorker{
		config:          cfg,
		reservationRepo: reservationRepo,
		guard:           guard,
	}
}

// Start runs the sweep loop until the context is cancelled
func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	logger.Get().Info("expiry worker started",
		zap.Duration("interval", w.config.SweepInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Get().Info("expiry worker stopping")
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires one batch of overdue reservations and returns how
// many were expired
func (w *ExpiryWorker) SweepOnce(ctx context.Context) int {
	log := logger.Get()

	reservations, err := w.reservationRepo.FindExpiredInProgress(ctx, time.Now().UTC(), w.config.BatchSize)
	if err != nil {
		log.Error("failed to find expired reservations", zap.Error(err))
		return 0
	}
	if len(reservations) == 0 {
		return 0
	}

	expired := 0
	for _, reservation := range reservations {
		select {
		case <-ctx.Done():
			return expired
		default:
		}

		if err := w.guard.ExpireNow(ctx, reservation); err != nil {
			// A concurrent confirm or cancel may have won the race;
			// the next sweep will not see this row again
			log.Warn("failed to expire reservation",
				zap.String("reservation_id", reservation.ID),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	w.mu.Lock()
	w.totalExpired += int64(expired)
	w.lastSweep = time.Now()
	w.mu.Unlock()

	if expired > 0 {
		log.Info("expired overdue reservations",
			zap.Int("count", expired),
			zap.Int("found", len(reservations)),
		)
	}
	return expired
}

// Metrics returns the total expired count and the last sweep time
func (w *ExpiryWorker) Metrics() (totalExpired int64, lastSweep time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalExpired, w.lastSweep
}
