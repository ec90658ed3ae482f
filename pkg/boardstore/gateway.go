package boardstore

import (
	"context"

	"github.com/google/uuid"
)

// Gateway is the persistence boundary the store talks through. Implementations
// must return *Error values so the store can classify failures.
//
// Entity IDs equal to uuid.Nil in a board passed to InsertBoard or UpdateBoard
// mean "not yet persisted"; the remote side assigns identities and the
// returned board carries them.
type Gateway interface {
	// FetchBoards returns every board the authenticated actor owns or has
	// been shared, in stable order.
	FetchBoards(ctx context.Context) ([]Board, error)

	// InsertBoard persists a new board tree and returns it with server
	// assigned identities.
	InsertBoard(ctx context.Context, board Board) (Board, error)

	// UpdateBoard replaces a board's name and tree and returns the
	// authoritative persisted state.
	UpdateBoard(ctx context.Context, board Board) (Board, error)

	// DeleteBoard removes a board and its whole tree.
	DeleteBoard(ctx context.Context, boardID uuid.UUID) error

	// FindUserByEmail resolves an email to a directory row.
	FindUserByEmail(ctx context.Context, email string) (User, error)

	// InsertShare grants a user access to a board. Granting an existing
	// collaborator again succeeds.
	InsertShare(ctx context.Context, boardID, userID uuid.UUID) error
}
