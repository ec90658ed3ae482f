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

// ShareService defines the interface for the sharing protocol's server side:
// directory lookup plus idempotent grant creation.
type ShareService interface {
	ShareBoard(ctx context.Context, boardID uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error)
	LookupUser(ctx context.Context, email string) (*dto.UserRow, error)
}

// shareServiceImpl is the implementation of ShareService
type shareServiceImpl struct {
	shareRepo     repository.ShareRepository
	boardRepo     repository.BoardRepository
	userRepo      repository.UserRepository
	allowedDomain string
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewShareService creates a new instance of ShareService. allowedDomain is
// the organization email suffix invitees must match; empty disables the
// policy check.
func NewShareService(
	shareRepo repository.ShareRepository,
	boardRepo repository.BoardRepository,
	userRepo repository.UserRepository,
	allowedDomain string,
	m *metrics.Metrics,
	logger *zap.Logger,
) ShareService {
	return &shareServiceImpl{
		shareRepo:     shareRepo,
		boardRepo:     boardRepo,
		userRepo:      userRepo,
		allowedDomain: allowedDomain,
		metrics:       m,
		logger:        logger,
	}
}

// ShareBoard grants the invitee access to the board. The actor must pass the
// write predicate on the board, the invitee must be a registered user whose
// email matches the domain policy, and granting an existing collaborator is
// a no-op success.
func (s *shareServiceImpl) ShareBoard(ctx context.Context, boardID uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	board, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Board not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch board", err.Error())
	}

	shares, err := s.shareRepo.FindByBoardID(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch shares", err.Error())
	}
	collaborators := make([]uuid.UUID, 0, len(shares))
	for _, share := range shares {
		collaborators = append(collaborators, share.UserID)
	}

	if !access.CanAccess(actorID, board.OwnerID, collaborators, access.ModeWrite) {
		s.logger.Warn("Rejected share attempt",
			zap.String("board_id", boardID.String()),
			zap.String("actor_id", actorID.String()))
		return nil, response.NewAppError(response.ErrCodeForbidden, "Access denied", "")
	}

	invitee, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "User not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch user", err.Error())
	}

	// The client validates the policy before calling; this check is the
	// authoritative one.
	if err := s.checkDomainPolicy(invitee.Email); err != nil {
		return nil, err
	}

	if invitee.ID == board.OwnerID {
		return nil, response.NewAppError(response.ErrCodeValidation, "Cannot share a board with its owner", "")
	}

	// Idempotent grant: an existing share is returned as success
	existing, err := s.shareRepo.FindByBoardAndUser(ctx, boardID, invitee.ID)
	if err == nil {
		return toShareResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check existing share", err.Error())
	}

	share := &domain.Share{BoardID: boardID, UserID: invitee.ID}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		// Lost a race against an identical grant; the unique index makes
		// the outcome equivalent to success
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			if existing, findErr := s.shareRepo.FindByBoardAndUser(ctx, boardID, invitee.ID); findErr == nil {
				return toShareResponse(existing), nil
			}
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create share", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementBoardShared()
	}
	s.logger.Info("Board shared",
		zap.String("board_id", boardID.String()),
		zap.String("invitee_id", invitee.ID.String()))

	return toShareResponse(share), nil
}

// LookupUser resolves an email to a directory row
func (s *shareServiceImpl) LookupUser(ctx context.Context, email string) (*dto.UserRow, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Email must not be empty", "")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "User not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch user", err.Error())
	}

	return &dto.UserRow{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

// checkDomainPolicy enforces the organization email suffix policy
func (s *shareServiceImpl) checkDomainPolicy(email string) error {
	if s.allowedDomain == "" {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(s.allowedDomain)) {
		return response.NewAppError(response.ErrCodeValidation,
			"Email domain is not allowed by the organization policy", "")
	}
	return nil
}

// toShareResponse converts domain.Share to dto.ShareResponse
func toShareResponse(share *domain.Share) *dto.ShareResponse {
	return &dto.ShareResponse{
		BoardID:   share.BoardID,
		UserID:    share.UserID,
		CreatedAt: share.CreatedAt,
	}
}
