package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseflow-board-api/internal/access"
	"pulseflow-board-api/internal/domain"
	"pulseflow-board-api/internal/dto"
	"pulseflow-board-api/internal/metrics"
	"pulseflow-board-api/internal/repository"
	"pulseflow-board-api/internal/response"
)

// BoardService defines the interface for board business logic
type BoardService interface {
	ListBoards(ctx context.Context) ([]*dto.BoardRow, error)
	CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardRow, error)
	UpdateBoard(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardRow, error)
	DeleteBoard(ctx context.Context, boardID uuid.UUID) error
}

// boardServiceImpl is the implementation of BoardService
type boardServiceImpl struct {
	boardRepo repository.BoardRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewBoardService creates a new instance of BoardService
func NewBoardService(boardRepo repository.BoardRepository, m *metrics.Metrics, logger *zap.Logger) BoardService {
	return &boardServiceImpl{
		boardRepo: boardRepo,
		metrics:   m,
		logger:    logger,
	}
}

// actorFromContext extracts the authenticated actor set by the auth middleware
func actorFromContext(ctx context.Context) (uuid.UUID, error) {
	actorID, ok := ctx.Value("user_id").(uuid.UUID)
	if !ok || actorID == uuid.Nil {
		return uuid.Nil, response.NewAppError(response.ErrCodeUnauthorized, "User ID not found in context", "")
	}
	return actorID, nil
}

// ListBoards returns every board the actor owns or has been shared, with the
// full column/task/subtask tree in containment order.
func (s *boardServiceImpl) ListBoards(ctx context.Context) ([]*dto.BoardRow, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	boards, err := s.boardRepo.FindAccessibleByUser(ctx, actorID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch boards", err.Error())
	}

	rows := make([]*dto.BoardRow, len(boards))
	for i, board := range boards {
		rows[i] = toBoardRow(board)
	}
	return rows, nil
}

// CreateBoard creates a new board owned by the actor
func (s *boardServiceImpl) CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardRow, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := validateBoardInput(req.Name, req.Columns); err != nil {
		return nil, err
	}

	board := &domain.Board{
		OwnerID: actorID,
		Name:    strings.TrimSpace(req.Name),
		Columns: toDomainColumns(req.Columns),
	}

	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create board", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementBoardCreated()
	}

	// Reload so the response carries server-assigned ids and owner identity
	created, err := s.boardRepo.FindByID(ctx, board.ID)
	if err != nil {
		s.logger.Warn("Failed to reload board after create",
			zap.String("board_id", board.ID.String()),
			zap.Error(err))
		return toBoardRow(board), nil
	}
	return toBoardRow(created), nil
}

// UpdateBoard renames a board and reconciles its column tree. Columns missing
// from the request are cascade-deleted together with their tasks and subtasks;
// surviving columns keep their ids and take their new slice order.
func (s *boardServiceImpl) UpdateBoard(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardRow, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := validateBoardInput(req.Name, req.Columns); err != nil {
		return nil, err
	}

	board, err := s.findAuthorized(ctx, actorID, boardID)
	if err != nil {
		return nil, err
	}

	board.Name = strings.TrimSpace(req.Name)
	board.Columns = toDomainColumns(req.Columns)

	if err := s.boardRepo.Update(ctx, board); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Board not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update board", err.Error())
	}

	updated, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to reload board", err.Error())
	}
	return toBoardRow(updated), nil
}

// DeleteBoard removes a board and all descendants
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := s.findAuthorized(ctx, actorID, boardID); err != nil {
		return err
	}

	if err := s.boardRepo.Delete(ctx, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Board not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete board", err.Error())
	}
	return nil
}

// findAuthorized loads a board and verifies the actor passes the
// ownership-or-share predicate. Unauthorized attempts are logged as misuse
// signals and never return board data.
func (s *boardServiceImpl) findAuthorized(ctx context.Context, actorID, boardID uuid.UUID) (*domain.Board, error) {
	board, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Board not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch board", err.Error())
	}

	if !access.CanAccess(actorID, board.OwnerID, collaboratorIDs(board), access.ModeWrite) {
		s.logger.Warn("Rejected board access",
			zap.String("board_id", boardID.String()),
			zap.String("actor_id", actorID.String()))
		return nil, response.NewAppError(response.ErrCodeForbidden, "Access denied", "")
	}
	return board, nil
}

// validateBoardInput rejects empty board and column names before any write
func validateBoardInput(name string, columns []dto.ColumnPayload) error {
	if strings.TrimSpace(name) == "" {
		return response.NewAppError(response.ErrCodeValidation, "Board name must not be empty", "")
	}
	for _, col := range columns {
		if strings.TrimSpace(col.Name) == "" {
			return response.NewAppError(response.ErrCodeValidation, "Column name must not be empty", "")
		}
		for _, task := range col.Tasks {
			if strings.TrimSpace(task.Title) == "" {
				return response.NewAppError(response.ErrCodeValidation, "Task title must not be empty", "")
			}
		}
	}
	return nil
}

// collaboratorIDs extracts the collaborator set from a board's share rows
func collaboratorIDs(board *domain.Board) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(board.Shares))
	for _, share := range board.Shares {
		ids = append(ids, share.UserID)
	}
	return ids
}

// toDomainColumns converts request payloads to the domain tree. Nil payload
// ids map to uuid.Nil, which the repository treats as rows to create.
func toDomainColumns(payloads []dto.ColumnPayload) []domain.Column {
	columns := make([]domain.Column, len(payloads))
	for i, cp := range payloads {
		col := domain.Column{Name: strings.TrimSpace(cp.Name)}
		if cp.ID != nil {
			col.ID = *cp.ID
		}
		col.Tasks = make([]domain.Task, len(cp.Tasks))
		for j, tp := range cp.Tasks {
			task := domain.Task{Title: tp.Title, Description: tp.Description}
			if tp.ID != nil {
				task.ID = *tp.ID
			}
			task.Subtasks = make([]domain.Subtask, len(tp.Subtasks))
			for k, sp := range tp.Subtasks {
				sub := domain.Subtask{Title: sp.Title, IsCompleted: sp.IsCompleted}
				if sp.ID != nil {
					sub.ID = *sp.ID
				}
				task.Subtasks[k] = sub
			}
			col.Tasks[j] = task
		}
		columns[i] = col
	}
	return columns
}

// toBoardRow converts a domain board to its wire row, deriving each task's
// status from the containing column
func toBoardRow(board *domain.Board) *dto.BoardRow {
	columns := make([]dto.ColumnRow, len(board.Columns))
	for i, col := range board.Columns {
		tasks := make([]dto.TaskRow, len(col.Tasks))
		for j, task := range col.Tasks {
			subtasks := make([]dto.SubtaskRow, len(task.Subtasks))
			for k, sub := range task.Subtasks {
				subtasks[k] = dto.SubtaskRow{
					ID:          sub.ID,
					Title:       sub.Title,
					IsCompleted: sub.IsCompleted,
					Position:    sub.Position,
				}
			}
			tasks[j] = dto.TaskRow{
				ID:          task.ID,
				Title:       task.Title,
				Description: task.Description,
				Status:      col.Name,
				Position:    task.Position,
				Subtasks:    subtasks,
			}
		}
		columns[i] = dto.ColumnRow{
			ID:       col.ID,
			Name:     col.Name,
			Position: col.Position,
			Tasks:    tasks,
		}
	}

	return &dto.BoardRow{
		ID:              board.ID,
		Name:            board.Name,
		OwnerID:         board.OwnerID,
		OwnerEmail:      board.Owner.Email,
		OwnerName:       board.Owner.Name,
		CollaboratorIDs: collaboratorIDs(board),
		Columns:         columns,
		CreatedAt:       board.CreatedAt,
		UpdatedAt:       board.UpdatedAt,
	}
}
