package service

import (
	"context"

	"github.com/google/uuid"

	"pulseflow-board-api/internal/domain"
)

// MockBoardRepository is a mock implementation of BoardRepository
type MockBoardRepository struct {
	CreateFunc               func(ctx context.Context, board *domain.Board) error
	FindByIDFunc             func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FindAccessibleByUserFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	UpdateFunc               func(ctx context.Context, board *domain.Board) error
	DeleteFunc               func(ctx context.Context, id uuid.UUID) error
}

func (m *MockBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBoardRepository) FindAccessibleByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	if m.FindAccessibleByUserFunc != nil {
		return m.FindAccessibleByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockBoardRepository) Update(ctx context.Context, board *domain.Board) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockShareRepository is a mock implementation of ShareRepository
type MockShareRepository struct {
	CreateFunc             func(ctx context.Context, share *domain.Share) error
	FindByBoardAndUserFunc func(ctx context.Context, boardID, userID uuid.UUID) (*domain.Share, error)
	FindByBoardIDFunc      func(ctx context.Context, boardID uuid.UUID) ([]*domain.Share, error)
	DeleteFunc             func(ctx context.Context, boardID, userID uuid.UUID) error
	FindOrphanedFunc       func(ctx context.Context) ([]*domain.Share, error)
	DeleteBatchFunc        func(ctx context.Context, ids []uuid.UUID) error
}

func (m *MockShareRepository) Create(ctx context.Context, share *domain.Share) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, share)
	}
	return nil
}

func (m *MockShareRepository) FindByBoardAndUser(ctx context.Context, boardID, userID uuid.UUID) (*domain.Share, error) {
	if m.FindByBoardAndUserFunc != nil {
		return m.FindByBoardAndUserFunc(ctx, boardID, userID)
	}
	return nil, nil
}

func (m *MockShareRepository) FindByBoardID(ctx context.Context, boardID uuid.UUID) ([]*domain.Share, error) {
	if m.FindByBoardIDFunc != nil {
		return m.FindByBoardIDFunc(ctx, boardID)
	}
	return nil, nil
}

func (m *MockShareRepository) Delete(ctx context.Context, boardID, userID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, boardID, userID)
	}
	return nil
}

func (m *MockShareRepository) FindOrphaned(ctx context.Context) ([]*domain.Share, error) {
	if m.FindOrphanedFunc != nil {
		return m.FindOrphanedFunc(ctx)
	}
	return nil, nil
}

func (m *MockShareRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if m.DeleteBatchFunc != nil {
		return m.DeleteBatchFunc(ctx, ids)
	}
	return nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}
