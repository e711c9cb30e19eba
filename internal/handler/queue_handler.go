package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/dto"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/pkg/logger"
	"github.com/supark0206/ticketing/pkg/response"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// QueueHandler handles queue HTTP requests
type QueueHandler struct {
	queueService service.QueueService
	pollInterval time.Duration
}

// QueueHandlerConfig contains configuration for the queue handler
type QueueHandlerConfig struct {
	PollInterval time.Duration
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queueService service.QueueService, cfg *QueueHandlerConfig) *QueueHandler {
	interval := 3 * time.Second
	if cfg != nil && cfg.PollInterval > 0 {
		interval = cfg.PollInterval
	}

	return &QueueHandler{
		queueService: queueService,
		pollInterval: interval,
	}
}

// Join handles POST /api/v1/queue
func (h *QueueHandler) Join(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.queue.join")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("concert_id", req.ConcertID),
	)

	registration, err := h.queueService.Register(ctx, req.ConcertID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	total, err := h.queueService.Size(ctx, req.ConcertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	result := &dto.JoinQueueResponse{
		ConcertID:  req.ConcertID,
		Position:   registration.Position,
		TotalQueue: total,
	}
	switch registration.Outcome {
	case domain.QueueOutcomeAdmitted:
		result.AdmittedImmediately = true
		result.Message = "admitted, proceed to seat selection"
	case domain.QueueOutcomeAlreadyQueued:
		result.Message = "already in queue"
	default:
		result.Message = "queued"
	}

	span.SetAttributes(
		attribute.String("outcome", string(registration.Outcome)),
		attribute.Int64("position", registration.Position),
	)
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// Stream handles GET /api/v1/queue/:concertId/stream. It emits the queue
// status as server-sent events until the user reaches the front of the
// line or the client disconnects.
func (h *QueueHandler) Stream(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.queue.stream")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	concertID := c.Param("concertId")
	if concertID == "" {
		span.SetStatus(codes.Error, "concert id required")
		response.BadRequest(c, "concert id required")
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("concert_id", concertID),
	)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	// First tick immediately so the client does not wait a full interval
	// for its initial position
	emit := func() (done bool) {
		snapshot, err := h.queueService.StatusSnapshot(ctx, concertID, userID)
		if err != nil {
			logger.Get().Warn("queue status snapshot failed",
				zap.String("concert_id", concertID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			c.SSEvent("error", gin.H{"message": "queue status unavailable"})
			return true
		}

		event := &dto.QueueStatusEvent{
			Position:             snapshot.Position,
			TotalQueue:           snapshot.TotalQueue,
			EstimatedWaitSeconds: snapshot.EstimatedWaitSeconds,
			CanEnter:             snapshot.CanEnter,
			Timestamp:            snapshot.Timestamp,
		}

		if snapshot.Position == 0 {
			c.SSEvent("queue-complete", event)
			return true
		}
		c.SSEvent("queue-status", event)
		return false
	}

	span.SetStatus(codes.Ok, "")
	done := emit()
	c.Writer.Flush()
	if done {
		return
	}
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			return !emit()
		}
	})
}

// Status handles GET /api/v1/queue/:concertId, a one-shot position check
func (h *QueueHandler) Status(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.queue.status")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	concertID := c.Param("concertId")
	if concertID == "" {
		span.SetStatus(codes.Error, "concert id required")
		response.BadRequest(c, "concert id required")
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("concert_id", concertID),
	)

	snapshot, err := h.queueService.StatusSnapshot(ctx, concertID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, &dto.QueueStatusEvent{
		Position:             snapshot.Position,
		TotalQueue:           snapshot.TotalQueue,
		EstimatedWaitSeconds: snapshot.EstimatedWaitSeconds,
		CanEnter:             snapshot.CanEnter,
		Timestamp:            snapshot.Timestamp,
	})
}
