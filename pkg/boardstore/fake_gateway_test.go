package boardstore

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// fakeGateway is an in-memory Gateway with the same identity-assignment
// behavior as the real API: nil entity IDs get server identities, grants are
// idempotent, lookups are case-insensitive.
type fakeGateway struct {
	mu     sync.Mutex
	boards []Board
	users  map[string]User
	shares map[string]bool
	calls  map[string]int

	failFetch  error
	failInsert error
	failUpdate error
	failDelete error
	failLookup error
	failShare  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		users:  make(map[string]User),
		shares: make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (g *fakeGateway) record(op string) {
	g.calls[op]++
}

func (g *fakeGateway) callCount(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

func (g *fakeGateway) addUser(email, name string) User {
	g.mu.Lock()
	defer g.mu.Unlock()
	user := User{ID: uuid.New(), Email: email, Name: name}
	g.users[strings.ToLower(email)] = user
	return user
}

func (g *fakeGateway) seedBoard(board Board) Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	assignIDs(&board)
	g.boards = append(g.boards, board.clone())
	return board
}

func (g *fakeGateway) shareCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.shares)
}

func (g *fakeGateway) FetchBoards(ctx context.Context) ([]Board, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("fetch")
	if g.failFetch != nil {
		return nil, g.failFetch
	}
	out := make([]Board, len(g.boards))
	for i := range g.boards {
		out[i] = g.boards[i].clone()
	}
	return out, nil
}

func (g *fakeGateway) InsertBoard(ctx context.Context, board Board) (Board, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("insert")
	if g.failInsert != nil {
		return Board{}, g.failInsert
	}
	assignIDs(&board)
	g.boards = append(g.boards, board.clone())
	return board.clone(), nil
}

func (g *fakeGateway) UpdateBoard(ctx context.Context, board Board) (Board, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("update")
	if g.failUpdate != nil {
		return Board{}, g.failUpdate
	}
	for i := range g.boards {
		if g.boards[i].ID == board.ID {
			stored := board.clone()
			stored.OwnerID = g.boards[i].OwnerID
			stored.Collaborators = g.boards[i].Collaborators
			assignIDs(&stored)
			g.boards[i] = stored.clone()
			return stored, nil
		}
	}
	return Board{}, newNotFoundError("board %s not found", board.ID)
}

func (g *fakeGateway) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("delete")
	if g.failDelete != nil {
		return g.failDelete
	}
	for i := range g.boards {
		if g.boards[i].ID == boardID {
			g.boards = append(g.boards[:i], g.boards[i+1:]...)
			return nil
		}
	}
	return newNotFoundError("board %s not found", boardID)
}

func (g *fakeGateway) FindUserByEmail(ctx context.Context, email string) (User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("lookup")
	if g.failLookup != nil {
		return User{}, g.failLookup
	}
	user, ok := g.users[strings.ToLower(email)]
	if !ok {
		return User{}, newNotFoundError("no user with email %s", email)
	}
	return user, nil
}

func (g *fakeGateway) InsertShare(ctx context.Context, boardID, userID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("share")
	if g.failShare != nil {
		return g.failShare
	}
	g.shares[boardID.String()+"|"+userID.String()] = true
	for i := range g.boards {
		if g.boards[i].ID != boardID {
			continue
		}
		found := false
		for _, collab := range g.boards[i].Collaborators {
			if collab == userID {
				found = true
			}
		}
		if !found {
			g.boards[i].Collaborators = append(g.boards[i].Collaborators, userID)
		}
	}
	return nil
}

// assignIDs gives server identities to every entity still carrying a nil ID
func assignIDs(b *Board) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	for i := range b.Columns {
		col := &b.Columns[i]
		if col.ID == uuid.Nil {
			col.ID = uuid.New()
		}
		for j := range col.Tasks {
			task := &col.Tasks[j]
			if task.ID == uuid.Nil {
				task.ID = uuid.New()
			}
			for k := range task.Subtasks {
				if task.Subtasks[k].ID == uuid.Nil {
					task.Subtasks[k].ID = uuid.New()
				}
			}
		}
	}
}
