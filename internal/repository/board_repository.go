package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pulseflow-board-api/internal/domain"
)

// BoardRepository defines the interface for board data access. All queries
// are scoped by the ownership-or-share predicate where an actor is involved;
// callers above this layer never see another user's rows.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FindAccessibleByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	Update(ctx context.Context, board *domain.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// boardRepositoryImpl is the GORM implementation of BoardRepository
type boardRepositoryImpl struct {
	db *gorm.DB
}

// NewBoardRepository creates a new instance of BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepositoryImpl{db: db}
}

// withTree preloads the full board tree in containment order plus the owner
// identity and share rows
func withTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner").
		Preload("Shares").
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("columns.position ASC")
		}).
		Preload("Columns.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.position ASC")
		}).
		Preload("Columns.Tasks.Subtasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("subtasks.position ASC")
		})
}

// Create inserts a board together with its column/task/subtask tree. Slice
// order becomes the persisted position.
func (r *boardRepositoryImpl) Create(ctx context.Context, board *domain.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if board.ID == uuid.Nil {
			board.ID = uuid.New()
		}
		if err := tx.Omit(clause.Associations).Create(board).Error; err != nil {
			return err
		}
		for i := range board.Columns {
			col := &board.Columns[i]
			col.BoardID = board.ID
			col.Position = i
			if col.ID == uuid.Nil {
				col.ID = uuid.New()
			}
			if err := tx.Omit(clause.Associations).Create(col).Error; err != nil {
				return err
			}
			if err := createTasks(tx, col); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a board by its ID with the full tree preloaded
func (r *boardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var board domain.Board
	if err := withTree(r.db.WithContext(ctx)).First(&board, "boards.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// FindAccessibleByUser returns every board the user owns or has been shared,
// oldest first so client ordering is stable across loads.
func (r *boardRepositoryImpl) FindAccessibleByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	var boards []*domain.Board
	shared := r.db.Model(&domain.Share{}).Select("board_id").Where("user_id = ?", userID)
	if err := withTree(r.db.WithContext(ctx)).
		Where("boards.owner_id = ? OR boards.id IN (?)", userID, shared).
		Order("boards.created_at ASC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// Update persists a full board tree, diffing children by ID: rows absent from
// the incoming tree are cascade-deleted, rows with a nil ID are created, the
// rest are updated in place. Runs in one transaction so a partial write never
// becomes visible.
func (r *boardRepositoryImpl) Update(ctx context.Context, board *domain.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Board{}).Where("id = ?", board.ID).Update("name", board.Name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var existing []domain.Column
		if err := tx.Where("board_id = ?", board.ID).Find(&existing).Error; err != nil {
			return err
		}
		incoming := make(map[uuid.UUID]bool, len(board.Columns))
		for i := range board.Columns {
			if board.Columns[i].ID != uuid.Nil {
				incoming[board.Columns[i].ID] = true
			}
		}
		var removed []uuid.UUID
		for _, col := range existing {
			if !incoming[col.ID] {
				removed = append(removed, col.ID)
			}
		}
		if err := cascadeDeleteColumns(tx, removed); err != nil {
			return err
		}

		for i := range board.Columns {
			col := &board.Columns[i]
			col.BoardID = board.ID
			col.Position = i
			if col.ID == uuid.Nil {
				col.ID = uuid.New()
				if err := tx.Omit(clause.Associations).Create(col).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Model(&domain.Column{}).Where("id = ?", col.ID).
					Updates(map[string]interface{}{"name": col.Name, "position": col.Position}).Error; err != nil {
					return err
				}
			}
			if err := saveTasks(tx, col); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a board and every descendant column, task, subtask and
// share row. Cascades explicitly rather than relying on database constraints
// so behavior is identical across drivers.
func (r *boardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var columnIDs []uuid.UUID
		if err := tx.Model(&domain.Column{}).Where("board_id = ?", id).
			Pluck("id", &columnIDs).Error; err != nil {
			return err
		}
		if err := cascadeDeleteColumns(tx, columnIDs); err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&domain.Share{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Board{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// createTasks inserts a column's tasks and subtasks, assigning positions from
// slice order
func createTasks(tx *gorm.DB, col *domain.Column) error {
	for i := range col.Tasks {
		task := &col.Tasks[i]
		task.ColumnID = col.ID
		task.Position = i
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		for j := range task.Subtasks {
			sub := &task.Subtasks[j]
			sub.TaskID = task.ID
			sub.Position = j
			if sub.ID == uuid.Nil {
				sub.ID = uuid.New()
			}
			if err := tx.Create(sub).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// saveTasks reconciles a column's stored tasks against the incoming slice
func saveTasks(tx *gorm.DB, col *domain.Column) error {
	var existing []domain.Task
	if err := tx.Where("column_id = ?", col.ID).Find(&existing).Error; err != nil {
		return err
	}
	incoming := make(map[uuid.UUID]bool, len(col.Tasks))
	for i := range col.Tasks {
		if col.Tasks[i].ID != uuid.Nil {
			incoming[col.Tasks[i].ID] = true
		}
	}
	var removed []uuid.UUID
	for _, task := range existing {
		if !incoming[task.ID] {
			removed = append(removed, task.ID)
		}
	}
	if err := cascadeDeleteTasks(tx, removed); err != nil {
		return err
	}

	for i := range col.Tasks {
		task := &col.Tasks[i]
		task.ColumnID = col.ID
		task.Position = i
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
			if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&domain.Task{}).Where("id = ?", task.ID).
				Updates(map[string]interface{}{
					"column_id":   col.ID,
					"title":       task.Title,
					"description": task.Description,
					"position":    task.Position,
				}).Error; err != nil {
				return err
			}
		}
		if err := saveSubtasks(tx, task); err != nil {
			return err
		}
	}
	return nil
}

// saveSubtasks reconciles a task's stored subtasks against the incoming slice
func saveSubtasks(tx *gorm.DB, task *domain.Task) error {
	var existing []domain.Subtask
	if err := tx.Where("task_id = ?", task.ID).Find(&existing).Error; err != nil {
		return err
	}
	incoming := make(map[uuid.UUID]bool, len(task.Subtasks))
	for i := range task.Subtasks {
		if task.Subtasks[i].ID != uuid.Nil {
			incoming[task.Subtasks[i].ID] = true
		}
	}
	var removed []uuid.UUID
	for _, sub := range existing {
		if !incoming[sub.ID] {
			removed = append(removed, sub.ID)
		}
	}
	if len(removed) > 0 {
		if err := tx.Where("id IN ?", removed).Delete(&domain.Subtask{}).Error; err != nil {
			return err
		}
	}

	for i := range task.Subtasks {
		sub := &task.Subtasks[i]
		sub.TaskID = task.ID
		sub.Position = i
		if sub.ID == uuid.Nil {
			sub.ID = uuid.New()
			if err := tx.Create(sub).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&domain.Subtask{}).Where("id = ?", sub.ID).
				Updates(map[string]interface{}{
					"task_id":      task.ID,
					"title":        sub.Title,
					"is_completed": sub.IsCompleted,
					"position":     sub.Position,
				}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// cascadeDeleteColumns deletes columns together with their tasks and subtasks
func cascadeDeleteColumns(tx *gorm.DB, columnIDs []uuid.UUID) error {
	if len(columnIDs) == 0 {
		return nil
	}
	var taskIDs []uuid.UUID
	if err := tx.Model(&domain.Task{}).Where("column_id IN ?", columnIDs).
		Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if err := cascadeDeleteTasks(tx, taskIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", columnIDs).Delete(&domain.Column{}).Error
}

// cascadeDeleteTasks deletes tasks together with their subtasks
func cascadeDeleteTasks(tx *gorm.DB, taskIDs []uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&domain.Subtask{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", taskIDs).Delete(&domain.Task{}).Error
}
