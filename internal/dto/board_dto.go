package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubtaskPayload is a subtask inside a create/update request. A nil ID means
// the row is new; a set ID must match an existing row, which is updated in
// place so identifiers stay stable across round-trips.
type SubtaskPayload struct {
	ID          *uuid.UUID `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
}

// TaskPayload is a task inside a create/update request
type TaskPayload struct {
	ID          *uuid.UUID       `json:"id"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Subtasks    []SubtaskPayload `json:"subtasks"`
}

// ColumnPayload is a column inside a create/update request. Slice order is
// the persisted order.
type ColumnPayload struct {
	ID    *uuid.UUID    `json:"id"`
	Name  string        `json:"name" binding:"required"`
	Tasks []TaskPayload `json:"tasks"`
}

// CreateBoardRequest is the request body for creating a board
type CreateBoardRequest struct {
	Name    string          `json:"name" binding:"required"`
	Columns []ColumnPayload `json:"columns"`
}

// UpdateBoardRequest is the request body for updating a board. Columns are
// diffed by ID against the stored board: missing IDs are cascade-deleted,
// new entries (nil ID) are created, the rest are renamed/reordered.
type UpdateBoardRequest struct {
	Name    string          `json:"name" binding:"required"`
	Columns []ColumnPayload `json:"columns"`
}

// SubtaskRow is a persisted subtask as returned to clients
type SubtaskRow struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	Position    int       `json:"position"`
}

// TaskRow is a persisted task as returned to clients. Status is derived from
// the containing column's name and never stored.
type TaskRow struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Position    int          `json:"position"`
	Subtasks    []SubtaskRow `json:"subtasks"`
}

// ColumnRow is a persisted column as returned to clients
type ColumnRow struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
	Tasks    []TaskRow `json:"tasks"`
}

// BoardRow is a persisted board joined with its owner identity and
// collaborator set
type BoardRow struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	OwnerEmail      string      `json:"owner_email"`
	OwnerName       string      `json:"owner_name"`
	CollaboratorIDs []uuid.UUID `json:"collaborator_ids"`
	Columns         []ColumnRow `json:"columns"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
