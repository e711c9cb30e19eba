package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/supark0206/ticketing/internal/dto"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/pkg/response"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// SeatHandler handles seat HTTP requests
type SeatHandler struct {
	seatService service.SeatService
}

// NewSeatHandler creates a new seat handler
func NewSeatHandler(seatService service.SeatService) *SeatHandler {
	return &SeatHandler{seatService: seatService}
}

// Select handles POST /api/v1/seats/:id/select
func (h *SeatHandler) Select(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.select")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	seatID := c.Param("id")
	if seatID == "" {
		span.SetStatus(codes.Error, "seat id required")
		response.BadRequest(c, "seat id required")
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("seat_id", seatID),
	)

	result, err := h.seatService.Select(ctx, seatID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetAttributes(attribute.String("lock_status", result.LockStatus))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SeatMap handles GET /api/v1/concerts/:id/seats/map
func (h *SeatHandler) SeatMap(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.seat_map")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	concertID := c.Param("id")
	if concertID == "" {
		span.SetStatus(codes.Error, "concert id required")
		response.BadRequest(c, "concert id required")
		return
	}

	span.SetAttributes(attribute.String("concert_id", concertID))

	entries, err := h.seatService.SeatMap(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, entries)
}

// List handles GET /api/v1/concerts/:id/seats
func (h *SeatHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	concertID := c.Param("id")
	grade := c.Query("grade")

	span.SetAttributes(attribute.String("concert_id", concertID))

	seats, err := h.seatService.ListByConcert(ctx, concertID, grade)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, seats)
}

// CreateBatch handles POST /api/v1/admin/seats
func (h *SeatHandler) CreateBatch(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.create_batch")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("concert_id", req.ConcertID),
		attribute.Int("seat_count", len(req.Seats)),
	)

	seats, err := h.seatService.CreateBatch(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, seats)
}

// Update handles PUT /api/v1/admin/seats/:id
func (h *SeatHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	seatID := c.Param("id")

	var req dto.UpdateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("seat_id", seatID))

	seat, err := h.seatService.Update(ctx, seatID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, seat)
}

// Delete handles DELETE /api/v1/admin/seats/:id
func (h *SeatHandler) Delete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	seatID := c.Param("id")
	span.SetAttributes(attribute.String("seat_id", seatID))

	if err := h.seatService.Delete(ctx, seatID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"deleted": true})
}
