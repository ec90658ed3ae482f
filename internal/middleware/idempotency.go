package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulseflow-board-api/internal/idempotency"
)

// IdempotencyHeader carries the client-generated key for non-idempotent writes
const IdempotencyHeader = "Idempotency-Key"

// Idempotency returns a middleware that rejects replayed write requests.
// Requests without the header pass through untouched. A key that was already
// recorded for the same actor means the write was applied before, so the
// request is answered with 409 instead of being re-executed. Keys are
// released again when the handler fails with a 5xx so the client may retry.
func Idempotency(deduper idempotency.Deduper, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		actorValue, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}
		actorID, ok := actorValue.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		added, err := deduper.Add(c.Request.Context(), actorID, key)
		if err != nil {
			// Redis being down must not take writes down with it.
			logger.Warn("Idempotency check unavailable, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !added {
			c.JSON(http.StatusConflict, gin.H{
				"error": gin.H{
					"code":    "ALREADY_EXISTS",
					"message": "Duplicate request",
				},
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := deduper.Remove(c.Request.Context(), actorID, key); err != nil {
				logger.Warn("Failed to release idempotency key",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}
}
