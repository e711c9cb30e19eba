package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/supark0206/ticketing/internal/dto"
	"github.com/supark0206/ticketing/internal/gateway"
	"github.com/supark0206/ticketing/internal/service"
	"github.com/supark0206/ticketing/pkg/response"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
	gateway        gateway.PaymentGateway
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService service.PaymentService, gw gateway.PaymentGateway) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		gateway:        gw,
	}
}

// Start handles POST /api/v1/payments
func (h *PaymentHandler) Start(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.start")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.StartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("seat_id", req.SeatID),
	)

	result, err := h.paymentService.Start(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetAttributes(attribute.String("reservation_id", result.ReservationID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// Webhook handles POST /api/v1/payments/webhook. When the callback omits
// the success verdict the gateway is consulted directly, which also serves
// local testing against the mock gateway.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.webhook")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("transaction_id", req.TransactionID))

	var success bool
	if req.Success != nil {
		success = *req.Success
	} else {
		settled, err := h.gateway.Settle(ctx, req.TransactionID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			response.ServiceUnavailable(c, "payment gateway unavailable")
			return
		}
		success = settled
	}

	span.SetAttributes(attribute.Bool("success", success))

	result, err := h.paymentService.Confirm(ctx, req.TransactionID, success)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleDomainError(c, err)
		return
	}

	span.SetAttributes(attribute.String("reservation_status", result.ReservationStatus))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
