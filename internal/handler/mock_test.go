package handler

import (
	"context"

	"github.com/google/uuid"

	"pulseflow-board-api/internal/dto"
)

// MockBoardService is a function-field mock of service.BoardService
type MockBoardService struct {
	ListBoardsFunc  func(ctx context.Context) ([]*dto.BoardRow, error)
	CreateBoardFunc func(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardRow, error)
	UpdateBoardFunc func(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardRow, error)
	DeleteBoardFunc func(ctx context.Context, boardID uuid.UUID) error
}

func (m *MockBoardService) ListBoards(ctx context.Context) ([]*dto.BoardRow, error) {
	return m.ListBoardsFunc(ctx)
}

func (m *MockBoardService) CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardRow, error) {
	return m.CreateBoardFunc(ctx, req)
}

func (m *MockBoardService) UpdateBoard(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardRow, error) {
	return m.UpdateBoardFunc(ctx, boardID, req)
}

func (m *MockBoardService) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	return m.DeleteBoardFunc(ctx, boardID)
}

// MockShareService is a function-field mock of service.ShareService
type MockShareService struct {
	ShareBoardFunc func(ctx context.Context, boardID uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error)
	LookupUserFunc func(ctx context.Context, email string) (*dto.UserRow, error)
}

func (m *MockShareService) ShareBoard(ctx context.Context, boardID uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error) {
	return m.ShareBoardFunc(ctx, boardID, req)
}

func (m *MockShareService) LookupUser(ctx context.Context, email string) (*dto.UserRow, error) {
	return m.LookupUserFunc(ctx, email)
}
