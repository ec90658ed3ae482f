package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateShareRequest grants an already-registered user access to a board
type CreateShareRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ShareResponse is a persisted share grant
type ShareResponse struct {
	BoardID   uuid.UUID `json:"board_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRow is the identity directory row returned by email lookup
type UserRow struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}
