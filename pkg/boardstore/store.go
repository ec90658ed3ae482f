package boardstore

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulseflow-board-api/internal/access"
)

// Config carries store-wide policy
type Config struct {
	// AllowedDomain is the organization email suffix invitees must match.
	// Empty disables the client-side policy check.
	AllowedDomain string
	// Origin is the web origin used to build invite links,
	// e.g. "https://boards.pulseflow.com".
	Origin string
	Logger *zap.Logger
}

// Store holds the client's board state. Commands mutate the local copy first
// and reconcile with the remote store through the gateway; a failed remote
// write restores the snapshot taken when the command was issued.
//
// Commands are safe for concurrent use. Remote writes against the same board
// are applied in the order their commands were issued.
type Store struct {
	mu      sync.Mutex
	gateway Gateway
	actorID uuid.UUID
	cfg     Config
	logger  *zap.Logger
	lanes   *laneDispatcher

	boards []Board
	// temp holds entity IDs assigned locally and not yet confirmed by the
	// remote store. They are sent over the wire as nil so the server assigns
	// real identities.
	temp map[uuid.UUID]bool
	// alias maps a temporary board ID to the server-assigned one after
	// reconciliation, so commands issued against the old ID still land.
	alias map[uuid.UUID]uuid.UUID
}

// New creates a store for the given actor
func New(gateway Gateway, actorID uuid.UUID, cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store{
		gateway: gateway,
		actorID: actorID,
		cfg:     cfg,
		logger:  cfg.Logger,
		lanes:   newLaneDispatcher(),
		temp:    make(map[uuid.UUID]bool),
		alias:   make(map[uuid.UUID]uuid.UUID),
	}
}

// Close waits for every queued remote write to finish
func (s *Store) Close() {
	s.lanes.close()
}

// Boards returns a deep copy of the current board list
func (s *Store) Boards() []Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Board, len(s.boards))
	for i := range s.boards {
		out[i] = s.boards[i].clone()
	}
	return out
}

// ActiveBoard returns a copy of the active board, if any
func (s *Store) ActiveBoard() (Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.boards {
		if s.boards[i].IsActive {
			return s.boards[i].clone(), true
		}
	}
	return Board{}, false
}

// BoardByID returns a copy of one board
func (s *Store) BoardByID(boardID uuid.UUID) (Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(s.resolveIDLocked(boardID))
	if idx < 0 {
		return Board{}, false
	}
	return s.boards[idx].clone(), true
}

// LoadBoards replaces the local state with the remote one and marks the
// first board active. On failure the local state falls back to an empty
// list and the error is returned for the caller to surface.
func (s *Store) LoadBoards(ctx context.Context) error {
	boards, err := s.gateway.FetchBoards(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.boards = nil
		s.logger.Warn("Failed to load boards", zap.Error(err))
		return err
	}
	for i := range boards {
		boards[i].IsActive = false
		boards[i].refreshStatuses()
	}
	if len(boards) > 0 {
		boards[0].IsActive = true
	}
	s.boards = boards
	s.temp = make(map[uuid.UUID]bool)
	s.alias = make(map[uuid.UUID]uuid.UUID)
	return nil
}

// SelectBoard makes the given board the active one. Local only.
func (s *Store) SelectBoard(boardID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(s.resolveIDLocked(boardID))
	if idx < 0 {
		return newNotFoundError("board %s not found", boardID)
	}
	for i := range s.boards {
		s.boards[i].IsActive = i == idx
	}
	return nil
}

// CreateBoard adds a board with the given empty columns. The board appears
// immediately under a temporary identity that is replaced by the server
// assigned one once the insert lands; on failure the board is removed again.
func (s *Store) CreateBoard(name string, columnNames []string) (*Pending, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("board name must not be empty")
	}
	for _, colName := range columnNames {
		if strings.TrimSpace(colName) == "" {
			return nil, newValidationError("column name must not be empty")
		}
	}

	s.mu.Lock()
	board := Board{
		ID:      s.newTempIDLocked(),
		Name:    name,
		OwnerID: s.actorID,
	}
	for _, colName := range columnNames {
		board.Columns = append(board.Columns, Column{
			ID:   s.newTempIDLocked(),
			Name: strings.TrimSpace(colName),
		})
	}
	if s.activeIndexLocked() < 0 {
		board.IsActive = true
	}
	s.boards = append(s.boards, board)
	tempID := board.ID
	s.mu.Unlock()

	p := newPending()
	if !s.lanes.enqueue(tempID, func() { s.runInsert(tempID, p) }) {
		s.mu.Lock()
		s.removeBoardLocked(tempID)
		s.mu.Unlock()
		p.resolve(newTransportError("store is closed", nil))
	}
	return p, nil
}

// EditBoard renames a board and reconciles its column set. Columns are
// matched by ID: entries with a nil ID are created, existing entries are
// renamed and reordered keeping their tasks, columns absent from the input
// are removed together with their tasks.
func (s *Store) EditBoard(boardID uuid.UUID, name string, columns []Column) (*Pending, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("board name must not be empty")
	}
	for _, col := range columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, newValidationError("column name must not be empty")
		}
	}

	return s.updateCommand(boardID, func(b *Board) error {
		next := make([]Column, 0, len(columns))
		for _, col := range columns {
			if col.ID == uuid.Nil {
				next = append(next, Column{
					ID:   s.newTempIDLocked(),
					Name: strings.TrimSpace(col.Name),
				})
				continue
			}
			existing := b.findColumn(col.ID)
			if existing == nil {
				return newNotFoundError("column %s not found on board", col.ID)
			}
			kept := *existing
			kept.Name = strings.TrimSpace(col.Name)
			next = append(next, kept)
		}
		b.Name = name
		b.Columns = next
		return nil
	})
}

// DeleteBoard removes a board. The board disappears immediately; if the
// remote delete fails it is restored at its old position.
func (s *Store) DeleteBoard(boardID uuid.UUID) (*Pending, error) {
	s.mu.Lock()
	id := s.resolveIDLocked(boardID)
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, newNotFoundError("board %s not found", boardID)
	}
	board := &s.boards[idx]
	if !access.CanAccess(s.actorID, board.OwnerID, board.Collaborators, access.ModeWrite) {
		s.mu.Unlock()
		return nil, newPermissionError("you do not have access to this board")
	}
	snapshot := board.clone()
	wasActive := board.IsActive
	s.boards = append(s.boards[:idx], s.boards[idx+1:]...)
	if wasActive && len(s.boards) > 0 {
		s.boards[0].IsActive = true
	}
	s.mu.Unlock()

	p := newPending()
	if !s.lanes.enqueue(id, func() { s.runDelete(id, snapshot, idx, p) }) {
		s.mu.Lock()
		s.reinsertLocked(snapshot, idx)
		s.mu.Unlock()
		p.resolve(newTransportError("store is closed", nil))
	}
	return p, nil
}

// CreateColumn appends an empty column to a board
func (s *Store) CreateColumn(boardID uuid.UUID, name string) (*Pending, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("column name must not be empty")
	}
	return s.updateCommand(boardID, func(b *Board) error {
		b.Columns = append(b.Columns, Column{ID: s.newTempIDLocked(), Name: name})
		return nil
	})
}

// DeleteColumn removes a column and every task in it
func (s *Store) DeleteColumn(boardID, columnID uuid.UUID) (*Pending, error) {
	return s.updateCommand(boardID, func(b *Board) error {
		for i := range b.Columns {
			if b.Columns[i].ID == columnID {
				b.Columns = append(b.Columns[:i], b.Columns[i+1:]...)
				return nil
			}
		}
		return newNotFoundError("column %s not found on board", columnID)
	})
}

// CreateTask appends a task to a column, with one unchecked subtask per
// given title
func (s *Store) CreateTask(boardID, columnID uuid.UUID, title, description string, subtaskTitles []string) (*Pending, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, newValidationError("task title must not be empty")
	}
	return s.updateCommand(boardID, func(b *Board) error {
		col := b.findColumn(columnID)
		if col == nil {
			return newNotFoundError("column %s not found on board", columnID)
		}
		task := Task{
			ID:          s.newTempIDLocked(),
			Title:       title,
			Description: description,
		}
		for _, subTitle := range subtaskTitles {
			task.Subtasks = append(task.Subtasks, Subtask{
				ID:    s.newTempIDLocked(),
				Title: subTitle,
			})
		}
		col.Tasks = append(col.Tasks, task)
		return nil
	})
}

// EditTask replaces a task's title, description and subtask list. Subtasks
// with a nil ID are created; subtasks absent from the input are removed.
func (s *Store) EditTask(boardID, taskID uuid.UUID, title, description string, subtasks []Subtask) (*Pending, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, newValidationError("task title must not be empty")
	}
	return s.updateCommand(boardID, func(b *Board) error {
		_, task := b.findTask(taskID)
		if task == nil {
			return newNotFoundError("task %s not found on board", taskID)
		}
		next := make([]Subtask, 0, len(subtasks))
		for _, sub := range subtasks {
			if sub.ID == uuid.Nil {
				sub.ID = s.newTempIDLocked()
			}
			next = append(next, sub)
		}
		task.Title = title
		task.Description = description
		task.Subtasks = next
		return nil
	})
}

// DeleteTask removes a task and its subtasks
func (s *Store) DeleteTask(boardID, taskID uuid.UUID) (*Pending, error) {
	return s.updateCommand(boardID, func(b *Board) error {
		for i := range b.Columns {
			col := &b.Columns[i]
			for j := range col.Tasks {
				if col.Tasks[j].ID == taskID {
					col.Tasks = append(col.Tasks[:j], col.Tasks[j+1:]...)
					return nil
				}
			}
		}
		return newNotFoundError("task %s not found on board", taskID)
	})
}

// MoveTask places a task at the given index of the target column, removing
// it from wherever it currently sits. Repeating a move with the same
// arguments is a no-op, so retries cannot shuffle the ordering.
func (s *Store) MoveTask(boardID, taskID, toColumnID uuid.UUID, toIndex int) (*Pending, error) {
	if toIndex < 0 {
		return nil, newValidationError("task index must not be negative")
	}
	return s.updateCommand(boardID, func(b *Board) error {
		if b.findColumn(toColumnID) == nil {
			return newNotFoundError("column %s not found on board", toColumnID)
		}
		var moved *Task
		for i := range b.Columns {
			col := &b.Columns[i]
			for j := range col.Tasks {
				if col.Tasks[j].ID == taskID {
					task := col.Tasks[j]
					col.Tasks = append(col.Tasks[:j], col.Tasks[j+1:]...)
					moved = &task
					break
				}
			}
			if moved != nil {
				break
			}
		}
		if moved == nil {
			return newNotFoundError("task %s not found on board", taskID)
		}
		target := b.findColumn(toColumnID)
		at := toIndex
		if at > len(target.Tasks) {
			at = len(target.Tasks)
		}
		target.Tasks = append(target.Tasks, Task{})
		copy(target.Tasks[at+1:], target.Tasks[at:])
		target.Tasks[at] = *moved
		return nil
	})
}

// updateCommand applies a mutation to the board under the write predicate,
// then queues a full-state push on the board's lane. The snapshot taken
// before the mutation is restored if the remote write fails.
func (s *Store) updateCommand(boardID uuid.UUID, mutate func(*Board) error) (*Pending, error) {
	s.mu.Lock()
	id := s.resolveIDLocked(boardID)
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, newNotFoundError("board %s not found", boardID)
	}
	board := &s.boards[idx]
	if !access.CanAccess(s.actorID, board.OwnerID, board.Collaborators, access.ModeWrite) {
		s.mu.Unlock()
		return nil, newPermissionError("you do not have access to this board")
	}
	snapshot := board.clone()
	if err := mutate(board); err != nil {
		s.boards[idx] = snapshot
		s.mu.Unlock()
		return nil, err
	}
	board.refreshStatuses()
	s.mu.Unlock()

	p := newPending()
	if !s.lanes.enqueue(id, func() { s.runUpdate(id, snapshot, p) }) {
		s.mu.Lock()
		s.restoreLocked(snapshot)
		s.mu.Unlock()
		p.resolve(newTransportError("store is closed", nil))
	}
	return p, nil
}

// runInsert pushes a locally created board to the remote store
func (s *Store) runInsert(tempID uuid.UUID, p *Pending) {
	s.mu.Lock()
	idx := s.indexOfLocked(tempID)
	if idx < 0 {
		s.mu.Unlock()
		p.resolve(newNotFoundError("board %s no longer exists", tempID))
		return
	}
	payload := s.wirePayloadLocked(s.boards[idx])
	payload.ID = uuid.Nil
	s.mu.Unlock()

	created, err := s.gateway.InsertBoard(context.Background(), payload)

	s.mu.Lock()
	if err != nil {
		s.removeBoardLocked(tempID)
		s.logger.Warn("Board create rolled back", zap.Error(err))
	} else {
		s.adoptLocked(tempID, created)
	}
	s.mu.Unlock()
	p.resolve(err)
}

// runUpdate pushes the board's current full state to the remote store.
// Building the payload at run time rather than at issue time means a queued
// write always carries the identities reconciled by the writes before it.
func (s *Store) runUpdate(boardID uuid.UUID, snapshot Board, p *Pending) {
	id := s.resolveID(boardID)
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		p.resolve(newNotFoundError("board %s no longer exists", boardID))
		return
	}
	payload := s.wirePayloadLocked(s.boards[idx])
	s.mu.Unlock()

	updated, err := s.gateway.UpdateBoard(context.Background(), payload)

	s.mu.Lock()
	if err != nil {
		s.restoreLocked(snapshot)
		s.logger.Warn("Board update rolled back",
			zap.String("board_id", id.String()), zap.Error(err))
	} else {
		s.adoptLocked(id, updated)
	}
	s.mu.Unlock()
	p.resolve(err)
}

// runDelete pushes a board removal. A board already gone remotely counts as
// success; any other failure restores the board at its old position.
func (s *Store) runDelete(boardID uuid.UUID, snapshot Board, index int, p *Pending) {
	id := s.resolveID(boardID)
	err := s.gateway.DeleteBoard(context.Background(), id)
	if err != nil && KindOf(err) == KindNotFound {
		err = nil
	}
	if err != nil {
		s.mu.Lock()
		s.reinsertLocked(snapshot, index)
		s.mu.Unlock()
		s.logger.Warn("Board delete rolled back",
			zap.String("board_id", id.String()), zap.Error(err))
	}
	p.resolve(err)
}

// adoptLocked replaces local board state with the authoritative server copy,
// keeping the local selection. Temporary IDs the server has now assigned
// real identities for are retired.
func (s *Store) adoptLocked(localID uuid.UUID, server Board) {
	idx := s.indexOfLocked(localID)
	if idx < 0 {
		return
	}
	old := s.boards[idx]
	server.IsActive = old.IsActive
	server.refreshStatuses()
	if server.ID != localID {
		s.alias[localID] = server.ID
	}
	s.pruneTempLocked(old)
	s.boards[idx] = server
}

// restoreLocked rolls a board back to a snapshot, keeping the current
// selection. A board deleted in the meantime stays deleted.
func (s *Store) restoreLocked(snapshot Board) {
	idx := s.indexOfLocked(s.resolveIDLocked(snapshot.ID))
	if idx < 0 {
		return
	}
	snapshot.IsActive = s.boards[idx].IsActive
	s.boards[idx] = snapshot
}

// reinsertLocked puts a removed board back at its old position
func (s *Store) reinsertLocked(snapshot Board, index int) {
	if index > len(s.boards) {
		index = len(s.boards)
	}
	if snapshot.IsActive {
		for i := range s.boards {
			s.boards[i].IsActive = false
		}
	}
	s.boards = append(s.boards, Board{})
	copy(s.boards[index+1:], s.boards[index:])
	s.boards[index] = snapshot
}

// removeBoardLocked drops a board and reselects if it was active
func (s *Store) removeBoardLocked(boardID uuid.UUID) {
	idx := s.indexOfLocked(boardID)
	if idx < 0 {
		return
	}
	wasActive := s.boards[idx].IsActive
	s.pruneTempLocked(s.boards[idx])
	s.boards = append(s.boards[:idx], s.boards[idx+1:]...)
	if wasActive && len(s.boards) > 0 {
		s.boards[0].IsActive = true
	}
}

// wirePayloadLocked clones a board for the gateway, marking locally assigned
// identities as nil so the server creates them
func (s *Store) wirePayloadLocked(b Board) Board {
	out := b.clone()
	for i := range out.Columns {
		col := &out.Columns[i]
		if s.temp[col.ID] {
			col.ID = uuid.Nil
		}
		for j := range col.Tasks {
			task := &col.Tasks[j]
			if s.temp[task.ID] {
				task.ID = uuid.Nil
			}
			for k := range task.Subtasks {
				if s.temp[task.Subtasks[k].ID] {
					task.Subtasks[k].ID = uuid.Nil
				}
			}
		}
	}
	return out
}

// newTempIDLocked allocates a local identity. Random UUIDs cannot collide
// with server-assigned ones.
func (s *Store) newTempIDLocked() uuid.UUID {
	id := uuid.New()
	s.temp[id] = true
	return id
}

// pruneTempLocked retires the temporary IDs of a board that has been
// replaced or removed
func (s *Store) pruneTempLocked(b Board) {
	delete(s.temp, b.ID)
	for _, col := range b.Columns {
		delete(s.temp, col.ID)
		for _, task := range col.Tasks {
			delete(s.temp, task.ID)
			for _, sub := range task.Subtasks {
				delete(s.temp, sub.ID)
			}
		}
	}
}

func (s *Store) resolveID(id uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveIDLocked(id)
}

func (s *Store) resolveIDLocked(id uuid.UUID) uuid.UUID {
	for i := 0; i < len(s.alias); i++ {
		next, ok := s.alias[id]
		if !ok {
			return id
		}
		id = next
	}
	return id
}

func (s *Store) indexOfLocked(id uuid.UUID) int {
	for i := range s.boards {
		if s.boards[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) activeIndexLocked() int {
	for i := range s.boards {
		if s.boards[i].IsActive {
			return i
		}
	}
	return -1
}
