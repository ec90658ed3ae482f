package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pulseflow-board-api/internal/dto"
	"pulseflow-board-api/internal/response"
	"pulseflow-board-api/internal/service"
)

type BoardHandler struct {
	boardService service.BoardService
}

func NewBoardHandler(boardService service.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// ListBoards godoc
// @Summary      List accessible boards
// @Description  Returns every board the authenticated user owns or was invited to
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardRow} "Boards retrieved"
// @Failure      401 {object} response.ErrorResponse "Not authenticated"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /boards [get]
func (h *BoardHandler) ListBoards(c *gin.Context) {
	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	boards, err := h.boardService.ListBoards(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, boards)
}

// CreateBoard godoc
// @Summary      Create board
// @Description  Creates a board owned by the authenticated user, with optional initial columns
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBoardRequest true "Board definition"
// @Success      201 {object} response.SuccessResponse{data=dto.BoardRow} "Board created"
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      401 {object} response.ErrorResponse "Not authenticated"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /boards [post]
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	board, err := h.boardService.CreateBoard(ctx, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, board)
}

// UpdateBoard godoc
// @Summary      Update board
// @Description  Replaces the board's name and full column/task/subtask tree
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.UpdateBoardRequest true "Updated board tree"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardRow} "Board updated"
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      403 {object} response.ErrorResponse "No access to this board"
// @Failure      404 {object} response.ErrorResponse "Board not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /boards/{boardId} [put]
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid board ID")
		return
	}

	var req dto.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	board, err := h.boardService.UpdateBoard(ctx, boardID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// DeleteBoard godoc
// @Summary      Delete board
// @Description  Deletes a board with all of its columns, tasks, subtasks and shares
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse "Board deleted"
// @Failure      400 {object} response.ErrorResponse "Invalid board ID"
// @Failure      403 {object} response.ErrorResponse "No access to this board"
// @Failure      404 {object} response.ErrorResponse "Board not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /boards/{boardId} [delete]
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid board ID")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(ctx, boardID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccessMessage(c, http.StatusOK, nil, "Board deleted")
}
