package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pulseflow-board-api/internal/dto"
	"pulseflow-board-api/internal/response"
	"pulseflow-board-api/internal/service"
)

type ShareHandler struct {
	shareService service.ShareService
}

func NewShareHandler(shareService service.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

// ShareBoard godoc
// @Summary      Share board with user
// @Description  Grants an already-registered user access to a board. Granting the same user twice succeeds without creating a second share.
// @Tags         shares
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.CreateShareRequest true "User to grant access to"
// @Success      201 {object} response.SuccessResponse{data=dto.ShareResponse} "Share granted"
// @Failure      400 {object} response.ErrorResponse "Invalid request or policy violation"
// @Failure      403 {object} response.ErrorResponse "No access to this board"
// @Failure      404 {object} response.ErrorResponse "Board or user not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /boards/{boardId}/shares [post]
func (h *ShareHandler) ShareBoard(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid board ID")
		return
	}

	var req dto.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	share, err := h.shareService.ShareBoard(ctx, boardID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, share)
}

// LookupUser godoc
// @Summary      Look up user by email
// @Description  Resolves an email address to a registered user, for building share invitations
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email query string true "Email address"
// @Success      200 {object} response.SuccessResponse{data=dto.UserRow} "User found"
// @Failure      400 {object} response.ErrorResponse "Missing email parameter"
// @Failure      404 {object} response.ErrorResponse "No user with this email"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /users/lookup [get]
func (h *ShareHandler) LookupUser(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Email query parameter is required")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	user, err := h.shareService.LookupUser(ctx, email)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}
