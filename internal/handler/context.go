package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pulseflow-board-api/internal/response"
)

// actorContext copies the authenticated user id from the gin context into the
// request context so services can read it. Returns false after writing a 401
// when the auth middleware did not run.
func actorContext(c *gin.Context) (context.Context, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return nil, false
	}
	return context.WithValue(c.Request.Context(), "user_id", userUUID), true
}
