package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/supark0206/ticketing/internal/dto"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/pkg/response"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// ConcertHandler handles concert HTTP requests
type ConcertHandler struct {
	concertService service.ConcertService
}

// NewConcertHandler creates a new concert handler
func NewConcertHandler(concertService service.ConcertService) *ConcertHandler {
	return &ConcertHandler{concertService: concertService}
}

// List handles GET /api/v1/concerts
func (h *ConcertHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.concert.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	concerts, err := h.concertService.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, concerts)
}

// Get handles GET /api/v1/concerts/:id
func (h *ConcertHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.concert.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	concertID := c.Param("id")
	span.SetAttributes(attribute.String("concert_id", concertID))

	concert, err := h.concertService.GetByID(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, concert)
}

// Create handles POST /api/v1/admin/concerts
func (h *ConcertHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.concert.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateConcertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	concert, err := h.concertService.Create(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetAttributes(attribute.String("concert_id", concert.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, concert)
}

// Update handles PUT /api/v1/admin/concerts/:id
func (h *ConcertHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.concert.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	concertID := c.Param("id")

	var req dto.UpdateConcertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("concert_id", concertID))

	concert, err := h.concertService.Update(ctx, concertID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, concert)
}

// Delete handles DELETE /api/v1/admin/concerts/:id
func (h *ConcertHandler) Delete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.concert.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	concertID := c.Param("id")
	span.SetAttributes(attribute.String("concert_id", concertID))

	if err := h.concertService.Delete(ctx, concertID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"deleted": true})
}
