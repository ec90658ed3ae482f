package boardstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *fakeGateway, uuid.UUID) {
	t.Helper()
	actor := uuid.New()
	gw := newFakeGateway()
	store := New(gw, actor, Config{
		AllowedDomain: "pulseflow.com",
		Origin:        "https://boards.pulseflow.com",
	})
	t.Cleanup(store.Close)
	return store, gw, actor
}

func waitDone(t *testing.T, p *Pending) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	select {
	case <-p.Done():
		return p.Err()
	case <-ctx.Done():
		t.Fatal("command did not complete in time")
		return nil
	}
}

// webDesignBoard is the usual fixture: Todo holds two tasks, the first with
// two subtasks.
func webDesignBoard(owner uuid.UUID) Board {
	return Board{
		Name:    "Web Design",
		OwnerID: owner,
		Columns: []Column{
			{Name: "Todo", Tasks: []Task{
				{Title: "Design homepage", Description: "Hero and nav", Subtasks: []Subtask{
					{Title: "Sketch layout"},
					{Title: "Pick palette", Completed: true},
				}},
				{Title: "Write copy"},
			}},
			{Name: "Doing"},
			{Name: "Done"},
		},
	}
}

func TestLoadBoards_FirstBoardActive(t *testing.T) {
	store, gw, actor := newTestStore(t)
	gw.seedBoard(webDesignBoard(actor))
	gw.seedBoard(Board{Name: "Roadmap", OwnerID: actor})

	require.NoError(t, store.LoadBoards(context.Background()))

	boards := store.Boards()
	require.Len(t, boards, 2)
	assert.True(t, boards[0].IsActive)
	assert.False(t, boards[1].IsActive)
	assert.Equal(t, "Web Design", boards[0].Name)
}

func TestLoadBoards_DerivesTaskStatus(t *testing.T) {
	store, gw, actor := newTestStore(t)
	gw.seedBoard(webDesignBoard(actor))

	require.NoError(t, store.LoadBoards(context.Background()))

	board := store.Boards()[0]
	for _, task := range board.Columns[0].Tasks {
		assert.Equal(t, "Todo", task.Status)
	}
}

func TestLoadBoards_TransportFailure(t *testing.T) {
	store, gw, actor := newTestStore(t)
	gw.seedBoard(webDesignBoard(actor))
	gw.failFetch = newTransportError("connection refused", nil)

	err := store.LoadBoards(context.Background())

	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Empty(t, store.Boards())
}

func TestCreateBoard_TempIdentityReplaced(t *testing.T) {
	store, gw, _ := newTestStore(t)
	require.NoError(t, store.LoadBoards(context.Background()))

	p, err := store.CreateBoard("Web Design", []string{"Todo", "Doing"})
	require.NoError(t, err)

	// The board is visible immediately under a temporary identity.
	boards := store.Boards()
	require.Len(t, boards, 1)
	tempID := boards[0].ID
	require.NotEqual(t, uuid.Nil, tempID)
	assert.True(t, boards[0].IsActive)

	require.NoError(t, waitDone(t, p))

	boards = store.Boards()
	require.Len(t, boards, 1)
	assert.NotEqual(t, tempID, boards[0].ID, "server identity should replace the temporary one")
	assert.True(t, boards[0].IsActive)
	require.Len(t, boards[0].Columns, 2)
	assert.Equal(t, "Todo", boards[0].Columns[0].Name)
	for _, col := range boards[0].Columns {
		assert.NotEqual(t, uuid.Nil, col.ID)
	}
	assert.Equal(t, 1, gw.callCount("insert"))
}

func TestCreateBoard_OldIdentityStillResolves(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.LoadBoards(context.Background()))

	p, err := store.CreateBoard("Web Design", []string{"Todo"})
	require.NoError(t, err)
	tempID := store.Boards()[0].ID
	require.NoError(t, waitDone(t, p))

	// Commands issued against the temporary identity still land.
	edit, err := store.EditBoard(tempID, "Web Design v2", []Column{
		{ID: store.Boards()[0].Columns[0].ID, Name: "Todo"},
	})
	require.NoError(t, err)
	require.NoError(t, waitDone(t, edit))
	assert.Equal(t, "Web Design v2", store.Boards()[0].Name)
}

func TestCreateBoard_ValidationBeforeNetwork(t *testing.T) {
	store, gw, _ := newTestStore(t)

	_, err := store.CreateBoard("   ", nil)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = store.CreateBoard("Web Design", []string{"Todo", ""})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	assert.Zero(t, gw.totalCalls())
	assert.Empty(t, store.Boards())
}

func TestCreateBoard_RemovedOnFailure(t *testing.T) {
	store, gw, _ := newTestStore(t)
	gw.failInsert = newTransportError("connection refused", nil)

	p, err := store.CreateBoard("Web Design", []string{"Todo"})
	require.NoError(t, err)
	require.Len(t, store.Boards(), 1)

	err = waitDone(t, p)
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Empty(t, store.Boards(), "failed create should roll the board back out")
}

func TestEditBoard_RenameAndReconcileColumns(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))

	todo := seeded.Columns[0]
	doing := seeded.Columns[1]

	// Rename the board, rename Todo, drop Done, add Review.
	p, err := store.EditBoard(seeded.ID, "Web Design v2", []Column{
		{ID: todo.ID, Name: "Backlog"},
		{ID: doing.ID, Name: "Doing"},
		{Name: "Review"},
	})
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	board := store.Boards()[0]
	assert.Equal(t, "Web Design v2", board.Name)
	require.Len(t, board.Columns, 3)
	assert.Equal(t, todo.ID, board.Columns[0].ID, "kept column keeps its identity")
	assert.Equal(t, "Backlog", board.Columns[0].Name)
	require.Len(t, board.Columns[0].Tasks, 2, "renamed column keeps its tasks")
	assert.Equal(t, "Backlog", board.Columns[0].Tasks[0].Status)
	assert.NotEqual(t, uuid.Nil, board.Columns[2].ID)
}

func TestDeleteBoard_ThenEditIsRejected(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))

	del, err := store.DeleteBoard(seeded.ID)
	require.NoError(t, err)

	// The edit issued after the delete must not silently apply.
	_, err = store.EditBoard(seeded.ID, "Zombie", nil)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, waitDone(t, del))
	assert.Empty(t, store.Boards())
	assert.Zero(t, gw.callCount("update"), "rejected edit never reaches the gateway")
}

func TestDeleteBoard_RestoredOnFailure(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	gw.seedBoard(Board{Name: "Roadmap", OwnerID: actor})
	require.NoError(t, store.LoadBoards(context.Background()))
	gw.failDelete = newTransportError("connection refused", nil)

	p, err := store.DeleteBoard(seeded.ID)
	require.NoError(t, err)
	require.Len(t, store.Boards(), 1, "board disappears optimistically")

	err = waitDone(t, p)
	require.Error(t, err)

	boards := store.Boards()
	require.Len(t, boards, 2)
	assert.Equal(t, seeded.ID, boards[0].ID, "board restored at its old position")
	assert.True(t, boards[0].IsActive, "selection restored with it")
}

func TestDeleteBoard_ReselectsNextBoard(t *testing.T) {
	store, gw, actor := newTestStore(t)
	first := gw.seedBoard(webDesignBoard(actor))
	second := gw.seedBoard(Board{Name: "Roadmap", OwnerID: actor})
	require.NoError(t, store.LoadBoards(context.Background()))

	p, err := store.DeleteBoard(first.ID)
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	boards := store.Boards()
	require.Len(t, boards, 1)
	assert.Equal(t, second.ID, boards[0].ID)
	assert.True(t, boards[0].IsActive)
}

func TestSelectBoard_ExactlyOneActive(t *testing.T) {
	store, gw, actor := newTestStore(t)
	gw.seedBoard(webDesignBoard(actor))
	second := gw.seedBoard(Board{Name: "Roadmap", OwnerID: actor})
	require.NoError(t, store.LoadBoards(context.Background()))

	require.NoError(t, store.SelectBoard(second.ID))

	active := 0
	for _, board := range store.Boards() {
		if board.IsActive {
			active++
			assert.Equal(t, second.ID, board.ID)
		}
	}
	assert.Equal(t, 1, active)

	err := store.SelectBoard(uuid.New())
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateTask_AppliedThenConfirmed(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))
	doing := seeded.Columns[1]

	p, err := store.CreateTask(seeded.ID, doing.ID, "Build nav", "Sticky header", []string{"Mobile", "Desktop"})
	require.NoError(t, err)

	// Applied optimistically with a derived status.
	board, _ := store.BoardByID(seeded.ID)
	require.Len(t, board.Columns[1].Tasks, 1)
	assert.Equal(t, "Doing", board.Columns[1].Tasks[0].Status)

	require.NoError(t, waitDone(t, p))
	board, _ = store.BoardByID(seeded.ID)
	task := board.Columns[1].Tasks[0]
	assert.Equal(t, "Build nav", task.Title)
	assert.NotEqual(t, uuid.Nil, task.ID)
	require.Len(t, task.Subtasks, 2)
	assert.False(t, task.Subtasks[0].Completed)
}

func TestCreateTask_RollbackOnFailure(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))
	before, _ := store.BoardByID(seeded.ID)
	gw.failUpdate = newTransportError("connection refused", nil)

	p, err := store.CreateTask(seeded.ID, seeded.Columns[1].ID, "Build nav", "", nil)
	require.NoError(t, err)
	err = waitDone(t, p)
	require.Error(t, err)

	after, _ := store.BoardByID(seeded.ID)
	assert.Equal(t, before, after, "failed write restores the snapshot")
}

func TestEditTask_ReplacesSubtasks(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))
	task := seeded.Columns[0].Tasks[0]
	keep := task.Subtasks[0]

	p, err := store.EditTask(seeded.ID, task.ID, "Design homepage", "Updated", []Subtask{
		{ID: keep.ID, Title: keep.Title, Completed: true},
		{Title: "Ship it"},
	})
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	board, _ := store.BoardByID(seeded.ID)
	edited := board.Columns[0].Tasks[0]
	assert.Equal(t, "Updated", edited.Description)
	require.Len(t, edited.Subtasks, 2)
	assert.Equal(t, keep.ID, edited.Subtasks[0].ID)
	assert.True(t, edited.Subtasks[0].Completed)
	assert.NotEqual(t, uuid.Nil, edited.Subtasks[1].ID)
}

func TestDeleteColumn_CascadesTasks(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))

	p, err := store.DeleteColumn(seeded.ID, seeded.Columns[0].ID)
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	board, _ := store.BoardByID(seeded.ID)
	require.Len(t, board.Columns, 2)
	assert.Equal(t, "Doing", board.Columns[0].Name)
}

func TestDeleteTask(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))
	task := seeded.Columns[0].Tasks[0]

	p, err := store.DeleteTask(seeded.ID, task.ID)
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	board, _ := store.BoardByID(seeded.ID)
	require.Len(t, board.Columns[0].Tasks, 1)
	assert.Equal(t, "Write copy", board.Columns[0].Tasks[0].Title)
}

func TestMoveTask_StatusFollowsColumn(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))
	task := seeded.Columns[0].Tasks[0]
	doing := seeded.Columns[1]

	p, err := store.MoveTask(seeded.ID, task.ID, doing.ID, 0)
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	board, _ := store.BoardByID(seeded.ID)
	require.Len(t, board.Columns[0].Tasks, 1)
	require.Len(t, board.Columns[1].Tasks, 1)
	moved := board.Columns[1].Tasks[0]
	assert.Equal(t, task.ID, moved.ID, "moving keeps the task identity")
	assert.Equal(t, "Doing", moved.Status)
	assert.Len(t, moved.Subtasks, 2, "subtasks travel with the task")
}

func TestMoveTask_RepeatIsNoOp(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))
	task := seeded.Columns[0].Tasks[1]
	doing := seeded.Columns[1]

	p, err := store.MoveTask(seeded.ID, task.ID, doing.ID, 0)
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))
	once, _ := store.BoardByID(seeded.ID)

	p, err = store.MoveTask(seeded.ID, task.ID, doing.ID, 0)
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))
	twice, _ := store.BoardByID(seeded.ID)

	assert.Equal(t, once, twice, "repeating a move with the same arguments changes nothing")
}

func TestMoveTask_IndexClamped(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(webDesignBoard(actor))
	require.NoError(t, store.LoadBoards(context.Background()))

	p, err := store.MoveTask(seeded.ID, seeded.Columns[0].Tasks[0].ID, seeded.Columns[2].ID, 99)
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	board, _ := store.BoardByID(seeded.ID)
	require.Len(t, board.Columns[2].Tasks, 1)
}

func TestWriteCommands_RequireAccess(t *testing.T) {
	store, gw, _ := newTestStore(t)
	foreign := gw.seedBoard(Board{Name: "Not Yours", OwnerID: uuid.New(),
		Columns: []Column{{Name: "Todo"}}})
	require.NoError(t, store.LoadBoards(context.Background()))

	_, err := store.EditBoard(foreign.ID, "Mine Now", nil)
	require.Error(t, err)
	assert.Equal(t, KindPermission, KindOf(err))

	_, err = store.DeleteBoard(foreign.ID)
	require.Error(t, err)
	assert.Equal(t, KindPermission, KindOf(err))

	assert.Equal(t, 1, gw.totalCalls(), "only the initial fetch reaches the gateway")
}

func TestCollaborator_CanWrite(t *testing.T) {
	store, gw, actor := newTestStore(t)
	shared := webDesignBoard(uuid.New())
	shared.Collaborators = []uuid.UUID{actor}
	seeded := gw.seedBoard(shared)
	require.NoError(t, store.LoadBoards(context.Background()))

	p, err := store.CreateColumn(seeded.ID, "Review")
	require.NoError(t, err)
	require.NoError(t, waitDone(t, p))

	board, _ := store.BoardByID(seeded.ID)
	assert.Equal(t, "Review", board.Columns[len(board.Columns)-1].Name)
}

func TestQueuedWritesOnSameBoard_ApplyInOrder(t *testing.T) {
	store, gw, actor := newTestStore(t)
	seeded := gw.seedBoard(Board{Name: "Web Design", OwnerID: actor,
		Columns: []Column{{Name: "Todo"}}})
	require.NoError(t, store.LoadBoards(context.Background()))
	todo := seeded.Columns[0]

	var pendings []*Pending
	titles := []string{"First", "Second", "Third"}
	for _, title := range titles {
		p, err := store.CreateTask(seeded.ID, todo.ID, title, "", nil)
		require.NoError(t, err)
		pendings = append(pendings, p)
	}
	for _, p := range pendings {
		require.NoError(t, waitDone(t, p))
	}

	board, _ := store.BoardByID(seeded.ID)
	require.Len(t, board.Columns[0].Tasks, 3)
	for i, title := range titles {
		assert.Equal(t, title, board.Columns[0].Tasks[i].Title)
	}
}
