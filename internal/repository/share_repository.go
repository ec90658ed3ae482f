package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pulseflow-board-api/internal/domain"
)

// ShareRepository defines the interface for share grant data access
type ShareRepository interface {
	Create(ctx context.Context, share *domain.Share) error
	FindByBoardAndUser(ctx context.Context, boardID, userID uuid.UUID) (*domain.Share, error)
	FindByBoardID(ctx context.Context, boardID uuid.UUID) ([]*domain.Share, error)
	Delete(ctx context.Context, boardID, userID uuid.UUID) error
	FindOrphaned(ctx context.Context) ([]*domain.Share, error)
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
}

// shareRepositoryImpl is the GORM implementation of ShareRepository
type shareRepositoryImpl struct {
	db *gorm.DB
}

// NewShareRepository creates a new instance of ShareRepository
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepositoryImpl{db: db}
}

// Create creates a new share grant
func (r *shareRepositoryImpl) Create(ctx context.Context, share *domain.Share) error {
	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(share).Error
}

// FindByBoardAndUser finds a share grant for a (board, user) pair
func (r *shareRepositoryImpl) FindByBoardAndUser(ctx context.Context, boardID, userID uuid.UUID) (*domain.Share, error) {
	var share domain.Share
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// FindByBoardID finds all share grants for a board
func (r *shareRepositoryImpl) FindByBoardID(ctx context.Context, boardID uuid.UUID) ([]*domain.Share, error) {
	var shares []*domain.Share
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

// Delete revokes a share grant
func (r *shareRepositoryImpl) Delete(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&domain.Share{}).Error
}

// FindOrphaned returns share rows whose board or user no longer exists.
// Orphans appear when an account is removed in the identity directory.
func (r *shareRepositoryImpl) FindOrphaned(ctx context.Context) ([]*domain.Share, error) {
	var shares []*domain.Share
	boardIDs := r.db.Model(&domain.Board{}).Select("id")
	userIDs := r.db.Model(&domain.User{}).Select("id")
	if err := r.db.WithContext(ctx).
		Where("board_id NOT IN (?) OR user_id NOT IN (?)", boardIDs, userIDs).
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

// DeleteBatch deletes multiple share grants by their IDs
func (r *shareRepositoryImpl) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Share{}).Error
}
