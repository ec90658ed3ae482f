package domain

import (
	"github.com/google/uuid"
)

// Board is the top-level container of ordered columns. It is owned by one
// user and may be shared with collaborators through Share rows.
type Board struct {
	BaseModel
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index:idx_boards_owner_id" json:"owner_id"`
	Name    string    `gorm:"type:varchar(255);not null" json:"name"`
	Columns []Column  `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
	Shares  []Share   `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"shares,omitempty"`
	Owner   User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// Column is an ordered container of tasks within a board. Position is the
// zero-based ordering index and is authoritative across round-trips.
type Column struct {
	BaseModel
	BoardID  uuid.UUID `gorm:"type:uuid;not null;index:idx_columns_board_id" json:"board_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Position int       `gorm:"not null;index:idx_columns_board_position,priority:2" json:"position"`
	Tasks    []Task    `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// Task is a unit of work within a column. Its display status is the name of
// the containing column and is never stored, only derived.
type Task struct {
	BaseModel
	ColumnID    uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_column_id" json:"column_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `gorm:"not null" json:"position"`
	Subtasks    []Subtask `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks,omitempty"`
}

// Subtask is a checklist item belonging to a task
type Subtask struct {
	BaseModel
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index:idx_subtasks_task_id" json:"task_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	Position    int       `gorm:"not null" json:"position"`
}

// TableName specifies the table name for Board
func (Board) TableName() string {
	return "boards"
}

// TableName specifies the table name for Column
func (Column) TableName() string {
	return "columns"
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TableName specifies the table name for Subtask
func (Subtask) TableName() string {
	return "subtasks"
}
