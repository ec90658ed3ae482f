package boardstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulseflow-board-api/internal/access"
)

// ShareState is the lifecycle of one sharing attempt
type ShareState string

const (
	ShareStateIdle       ShareState = "idle"
	ShareStateValidating ShareState = "validating"
	ShareStateSubmitting ShareState = "submitting"
	ShareStateSucceeded  ShareState = "succeeded"
	ShareStateFailed     ShareState = "failed"
)

// ShareFlow tracks one sharing attempt from validation through submission.
// A flow that fails validation never reaches the network.
type ShareFlow struct {
	mu         sync.Mutex
	state      ShareState
	message    string
	inviteLink string
	err        error
	done       chan struct{}
}

func newShareFlow() *ShareFlow {
	return &ShareFlow{state: ShareStateIdle, done: make(chan struct{})}
}

// State returns the current lifecycle state
func (f *ShareFlow) State() ShareState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message returns the success message once the flow has succeeded
func (f *ShareFlow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// InviteLink returns the board link once the flow has succeeded
func (f *ShareFlow) InviteLink() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inviteLink
}

// Err returns the failure, if any. Only valid after Done is closed.
func (f *ShareFlow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Done is closed once the flow has succeeded or failed
func (f *ShareFlow) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the flow completes or the context is cancelled
func (f *ShareFlow) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *ShareFlow) transition(state ShareState) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

func (f *ShareFlow) fail(err error) {
	f.mu.Lock()
	f.state = ShareStateFailed
	f.err = err
	f.mu.Unlock()
	close(f.done)
}

func (f *ShareFlow) succeed(message, inviteLink string) {
	f.mu.Lock()
	f.state = ShareStateSucceeded
	f.message = message
	f.inviteLink = inviteLink
	f.mu.Unlock()
	close(f.done)
}

// ShareBoard grants a user, named by email, access to a board. The email is
// validated against the organization domain policy before any remote call;
// only a policy-clean address reaches the directory lookup. Sharing with an
// existing collaborator succeeds without duplicating the grant.
func (s *Store) ShareBoard(boardID uuid.UUID, email string) *ShareFlow {
	flow := newShareFlow()
	flow.transition(ShareStateValidating)

	email = strings.TrimSpace(email)
	if email == "" {
		flow.fail(newValidationError("email must not be empty"))
		return flow
	}
	if s.cfg.AllowedDomain != "" &&
		!strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(s.cfg.AllowedDomain)) {
		flow.fail(newValidationError("only %s addresses can be invited", s.cfg.AllowedDomain))
		return flow
	}

	s.mu.Lock()
	id := s.resolveIDLocked(boardID)
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		flow.fail(newNotFoundError("board %s not found", boardID))
		return flow
	}
	board := &s.boards[idx]
	if !access.CanAccess(s.actorID, board.OwnerID, board.Collaborators, access.ModeWrite) {
		s.mu.Unlock()
		flow.fail(newPermissionError("you do not have access to this board"))
		return flow
	}
	s.mu.Unlock()

	flow.transition(ShareStateSubmitting)
	if !s.lanes.enqueue(id, func() { s.runShare(id, email, flow) }) {
		flow.fail(newTransportError("store is closed", nil))
	}
	return flow
}

// runShare resolves the invitee and submits the grant
func (s *Store) runShare(boardID uuid.UUID, email string, flow *ShareFlow) {
	ctx := context.Background()
	id := s.resolveID(boardID)

	invitee, err := s.gateway.FindUserByEmail(ctx, email)
	if err != nil {
		flow.fail(err)
		return
	}
	if err := s.gateway.InsertShare(ctx, id, invitee.ID); err != nil {
		flow.fail(err)
		return
	}

	s.mu.Lock()
	if idx := s.indexOfLocked(id); idx >= 0 {
		board := &s.boards[idx]
		found := false
		for _, collab := range board.Collaborators {
			if collab == invitee.ID {
				found = true
				break
			}
		}
		if !found {
			board.Collaborators = append(board.Collaborators, invitee.ID)
		}
	}
	s.mu.Unlock()

	s.logger.Info("Board shared",
		zap.String("board_id", id.String()),
		zap.String("invitee", email))
	flow.succeed(
		fmt.Sprintf("Board shared with %s", email),
		fmt.Sprintf("%s/board/%s", strings.TrimRight(s.cfg.Origin, "/"), id),
	)
}
