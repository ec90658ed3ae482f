// Package access holds the ownership-or-share predicate that gates every
// board read and write. The same function backs the server-side authoritative
// check and the client store's advisory UI gating, so the two cannot drift.
package access

import "github.com/google/uuid"

// Mode distinguishes read from write access
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// CanAccess reports whether an actor may access a board. Owners and
// collaborators get both read and write; there is no viewer-only role.
func CanAccess(actorID, ownerID uuid.UUID, collaboratorIDs []uuid.UUID, mode Mode) bool {
	if actorID == uuid.Nil {
		return false
	}
	if actorID == ownerID {
		return true
	}
	for _, id := range collaboratorIDs {
		if id == actorID {
			return true
		}
	}
	return false
}
