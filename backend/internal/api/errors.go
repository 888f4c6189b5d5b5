package api

import (
	"errors"
	"net/http"

	"graphite/backend/internal/metrics"
	apperrors "graphite/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a handler error to a status code. Store outages become
// 503 with a degraded status so clients can tell them apart from empty data.
func (s *Server) respondError(c *gin.Context, operation string, err error) {
	var invalid *apperrors.ErrInvalidRoster
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsUnavailable(err):
		metrics.StoreUnavailable.WithLabelValues(c.FullPath()).Inc()
		s.logger.Error("Graph store unavailable",
			zap.String("operation", operation),
			zap.Bool("retryable", apperrors.IsRetryable(err)),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "Graph store unavailable",
			"status": "degraded",
		})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Request failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + operation})
	}
}

// badRequest rejects malformed input
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
