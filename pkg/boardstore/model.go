// Package boardstore is the client-side state store for kanban boards. It
// keeps an in-memory copy of every board the actor can see, applies commands
// optimistically, and reconciles with the remote API through a Gateway. All
// remote writes against the same board are serialized in issue order;
// different boards proceed concurrently.
package boardstore

import "github.com/google/uuid"

// Subtask is a checklist entry under a task
type Subtask struct {
	ID        uuid.UUID
	Title     string
	Completed bool
}

// Task is a card on a board. Status always equals the name of the containing
// column; the store recomputes it on every mutation and it is never an input.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      string
	Subtasks    []Subtask
}

// Column is an ordered lane of tasks. Slice order is display order.
type Column struct {
	ID    uuid.UUID
	Name  string
	Tasks []Task
}

// Board is a full board tree plus its owner identity and collaborator set.
// At most one board in the store has IsActive set.
type Board struct {
	ID            uuid.UUID
	Name          string
	OwnerID       uuid.UUID
	OwnerEmail    string
	OwnerName     string
	Collaborators []uuid.UUID
	Columns       []Column
	IsActive      bool
}

// User is a directory row resolved from an email lookup
type User struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// clone deep-copies the board tree so snapshots and payloads never alias
// live store state
func (b Board) clone() Board {
	out := b
	out.Collaborators = append([]uuid.UUID(nil), b.Collaborators...)
	out.Columns = make([]Column, len(b.Columns))
	for i, col := range b.Columns {
		c := col
		c.Tasks = make([]Task, len(col.Tasks))
		for j, task := range col.Tasks {
			t := task
			t.Subtasks = append([]Subtask(nil), task.Subtasks...)
			c.Tasks[j] = t
		}
		out.Columns[i] = c
	}
	return out
}

// refreshStatuses derives every task's Status from its containing column
func (b *Board) refreshStatuses() {
	for i := range b.Columns {
		for j := range b.Columns[i].Tasks {
			b.Columns[i].Tasks[j].Status = b.Columns[i].Name
		}
	}
}

// findColumn returns the column with the given ID, or nil
func (b *Board) findColumn(columnID uuid.UUID) *Column {
	for i := range b.Columns {
		if b.Columns[i].ID == columnID {
			return &b.Columns[i]
		}
	}
	return nil
}

// findTask returns the task with the given ID and its containing column,
// or nils
func (b *Board) findTask(taskID uuid.UUID) (*Column, *Task) {
	for i := range b.Columns {
		for j := range b.Columns[i].Tasks {
			if b.Columns[i].Tasks[j].ID == taskID {
				return &b.Columns[i], &b.Columns[i].Tasks[j]
			}
		}
	}
	return nil, nil
}
