package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/supark0206/ticketing/pkg/telemetry"
)

var (
	// Reservation counters
	ReservationsCreated   *telemetry.Counter
	ReservationsConfirmed *telemetry.Counter
	ReservationsFailed    *telemetry.Counter
	ReservationsExpired   *telemetry.Counter
	ReservationsCanceled  *telemetry.Counter

	// Seat lock counters
	SeatLocksAcquired  *telemetry.Counter
	SeatLockConflicts  *telemetry.Counter

	// Queue counters
	QueueJoined   *telemetry.Counter
	QueueAdmitted *telemetry.Counter

	// Histograms
	ConfirmationLatency *telemetry.Histogram

	// Gauges
	ActiveReservations *telemetry.UpDownCounter
	QueueDepth         *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all booking metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	ReservationsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_reservations_created_total",
		Description: "Total number of reservations opened",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_reservations_confirmed_total",
		Description: "Total number of reservations confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_reservations_failed_total",
		Description: "Total number of reservations failed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_reservations_expired_total",
		Description: "Total number of reservations expired",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsCanceled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_reservations_canceled_total",
		Description: "Total number of reservations canceled with refund",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SeatLocksAcquired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_seat_locks_acquired_total",
		Description: "Total number of seat locks acquired",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SeatLockConflicts, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_seat_lock_conflicts_total",
		Description: "Total number of seat lock acquisition conflicts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	QueueJoined, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_queue_joins_total",
		Description: "Total number of users joining a concert queue",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	QueueAdmitted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticketing_queue_admissions_total",
		Description: "Total number of users admitted from a concert queue",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ConfirmationLatency, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticketing_confirmation_latency_seconds",
		Description: "Duration from reservation creation to payment confirmation",
		Unit:        "s",
	}, []float64{1, 5, 10, 30, 60, 120, 300, 600})
	if err != nil {
		return err
	}

	ActiveReservations, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "ticketing_active_reservations",
		Description: "Current number of IN_PROGRESS reservations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	QueueDepth, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "ticketing_queue_depth",
		Description: "Current number of users waiting across queues",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordReservationCreated records a new reservation
func RecordReservationCreated(ctx context.Context, concertID string) {
	if ReservationsCreated != nil {
		ReservationsCreated.Inc(ctx, attribute.String("concert_id", concertID))
	}
	if ActiveReservations != nil {
		ActiveReservations.Inc(ctx)
	}
}

// RecordConfirmation records a confirmed reservation
func RecordConfirmation(ctx context.Context, concertID string, latencySeconds float64) {
	if ReservationsConfirmed != nil {
		ReservationsConfirmed.Inc(ctx, attribute.String("concert_id", concertID))
	}
	if ConfirmationLatency != nil {
		ConfirmationLatency.Record(ctx, latencySeconds, attribute.String("concert_id", concertID))
	}
	if ActiveReservations != nil {
		ActiveReservations.Dec(ctx)
	}
}

// RecordFailure records a failed reservation
func RecordFailure(ctx context.Context, concertID string) {
	if ReservationsFailed != nil {
		ReservationsFailed.Inc(ctx, attribute.String("concert_id", concertID))
	}
	if ActiveReservations != nil {
		ActiveReservations.Dec(ctx)
	}
}

// RecordExpiration records expired reservations
func RecordExpiration(ctx context.Context, concertID string, count int64) {
	if ReservationsExpired != nil {
		ReservationsExpired.Add(ctx, count, attribute.String("concert_id", concertID))
	}
	if ActiveReservations != nil {
		ActiveReservations.Add(ctx, -count)
	}
}

// RecordCancellation records a canceled reservation
func RecordCancellation(ctx context.Context, concertID string) {
	if ReservationsCanceled != nil {
		ReservationsCanceled.Inc(ctx, attribute.String("concert_id", concertID))
	}
}

// RecordLockAcquired records an acquired seat lock
func RecordLockAcquired(ctx context.Context, concertID string) {
	if SeatLocksAcquired != nil {
		SeatLocksAcquired.Inc(ctx, attribute.String("concert_id", concertID))
	}
}

// RecordLockConflict records a seat lock conflict
func RecordLockConflict(ctx context.Context, concertID string) {
	if SeatLockConflicts != nil {
		SeatLockConflicts.Inc(ctx, attribute.String("concert_id", concertID))
	}
}

// RecordQueueJoin records a user entering the waiting line
func RecordQueueJoin(ctx context.Context, concertID string) {
	if QueueJoined != nil {
		QueueJoined.Inc(ctx, attribute.String("concert_id", concertID))
	}
	if QueueDepth != nil {
		QueueDepth.Inc(ctx)
	}
}

// RecordQueueAdmission records a user leaving the line through admission
func RecordQueueAdmission(ctx context.Context, concertID string) {
	if QueueAdmitted != nil {
		QueueAdmitted.Inc(ctx, attribute.String("concert_id", concertID))
	}
	if QueueDepth != nil {
		QueueDepth.Dec(ctx)
	}
}
