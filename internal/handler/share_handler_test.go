package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"pulseflow-board-api/internal/dto"
	"pulseflow-board-api/internal/response"
)

func setupShareRouter(svc *MockShareService, actorID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if actorID != uuid.Nil {
			c.Set("user_id", actorID)
		}
	})

	h := NewShareHandler(svc)
	router.POST("/api/boards/:boardId/shares", h.ShareBoard)
	router.GET("/api/users/lookup", h.LookupUser)
	return router
}

func TestShareBoard_Success(t *testing.T) {
	boardID := uuid.New()
	inviteeID := uuid.New()
	svc := &MockShareService{
		ShareBoardFunc: func(ctx context.Context, id uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error) {
			assert.Equal(t, boardID, id)
			assert.Equal(t, inviteeID, req.UserID)
			return &dto.ShareResponse{BoardID: boardID, UserID: inviteeID, CreatedAt: time.Now()}, nil
		},
	}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "POST", "/api/boards/"+boardID.String()+"/shares",
		dto.CreateShareRequest{UserID: inviteeID})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), inviteeID.String())
}

func TestShareBoard_InvalidBoardID(t *testing.T) {
	svc := &MockShareService{}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "POST", "/api/boards/nope/shares",
		dto.CreateShareRequest{UserID: uuid.New()})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid board ID")
}

func TestShareBoard_MissingUserID(t *testing.T) {
	svc := &MockShareService{}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "POST", "/api/boards/"+uuid.New().String()+"/shares",
		map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestShareBoard_DomainPolicyViolation(t *testing.T) {
	svc := &MockShareService{
		ShareBoardFunc: func(ctx context.Context, id uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error) {
			return nil, response.NewAppError(response.ErrCodeValidation,
				"Sharing is limited to pulseflow.com accounts", "")
		},
	}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "POST", "/api/boards/"+uuid.New().String()+"/shares",
		dto.CreateShareRequest{UserID: uuid.New()})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pulseflow.com")
}

func TestShareBoard_Forbidden(t *testing.T) {
	svc := &MockShareService{
		ShareBoardFunc: func(ctx context.Context, id uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error) {
			return nil, response.NewAppError(response.ErrCodeForbidden, "No access to this board", "")
		},
	}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "POST", "/api/boards/"+uuid.New().String()+"/shares",
		dto.CreateShareRequest{UserID: uuid.New()})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLookupUser_Success(t *testing.T) {
	userID := uuid.New()
	svc := &MockShareService{
		LookupUserFunc: func(ctx context.Context, email string) (*dto.UserRow, error) {
			assert.Equal(t, "casey@pulseflow.com", email)
			return &dto.UserRow{ID: userID, Email: "casey@pulseflow.com", Name: "Casey"}, nil
		},
	}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "GET", "/api/users/lookup?email=casey@pulseflow.com", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestLookupUser_MissingEmail(t *testing.T) {
	svc := &MockShareService{}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "GET", "/api/users/lookup", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email query parameter is required")
}

func TestLookupUser_NotFound(t *testing.T) {
	svc := &MockShareService{
		LookupUserFunc: func(ctx context.Context, email string) (*dto.UserRow, error) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "No user with this email", "")
		},
	}
	router := setupShareRouter(svc, uuid.New())

	w := performJSON(router, "GET", "/api/users/lookup?email=nobody@pulseflow.com", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
