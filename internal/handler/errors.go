package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/pkg/response"
)

// handleDomainError converts a domain error to its HTTP response. The
// mapping follows the error taxonomy: not-found 404, conflict 409,
// unprocessable state 422, validation 400, infrastructure 503 so clients
// know to retry.
func handleDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	case domain.IsUnprocessableError(err):
		response.UnprocessableEntity(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsInfrastructureError(err):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
