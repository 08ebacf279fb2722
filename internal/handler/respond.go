package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/apperr"
)

// ErrorResponse is the structured error shape returned to clients.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func httpStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Conflict, apperr.IntegrityViolation:
		return http.StatusConflict
	case apperr.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a taxonomy error onto an HTTP response. Unclassified
// errors are logged and surfaced as an opaque 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		logger.Error("Unclassified error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	status := httpStatus(ae.Kind)
	if status == http.StatusInternalServerError {
		logger.Error("Internal error", zap.Error(err))
		c.JSON(status, ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(status, ErrorResponse{Error: ae.Message, Details: ae.Details})
}
