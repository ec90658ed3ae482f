package boardstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulseflow-board-api/internal/dto"
	"pulseflow-board-api/internal/middleware"
	"pulseflow-board-api/internal/response"
)

// HTTPGateway talks to the board API over its REST surface. Writes that are
// not naturally idempotent carry an Idempotency-Key header so a retried
// request cannot apply twice.
type HTTPGateway struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPGateway creates a gateway against the API at baseURL, e.g.
// "http://localhost:8003/api". token is the bearer token of the actor.
func NewHTTPGateway(baseURL, token string, logger *zap.Logger) *HTTPGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// FetchBoards returns every board visible to the actor
func (g *HTTPGateway) FetchBoards(ctx context.Context) ([]Board, error) {
	var rows []dto.BoardRow
	if err := g.call(ctx, http.MethodGet, "/boards", nil, false, &rows); err != nil {
		return nil, err
	}
	boards := make([]Board, len(rows))
	for i, row := range rows {
		boards[i] = fromBoardRow(row)
	}
	return boards, nil
}

// InsertBoard persists a new board tree
func (g *HTTPGateway) InsertBoard(ctx context.Context, board Board) (Board, error) {
	req := dto.CreateBoardRequest{Name: board.Name, Columns: toColumnPayloads(board.Columns)}
	var row dto.BoardRow
	if err := g.call(ctx, http.MethodPost, "/boards", req, true, &row); err != nil {
		return Board{}, err
	}
	return fromBoardRow(row), nil
}

// UpdateBoard replaces a board's name and tree
func (g *HTTPGateway) UpdateBoard(ctx context.Context, board Board) (Board, error) {
	req := dto.UpdateBoardRequest{Name: board.Name, Columns: toColumnPayloads(board.Columns)}
	var row dto.BoardRow
	path := "/boards/" + board.ID.String()
	if err := g.call(ctx, http.MethodPut, path, req, false, &row); err != nil {
		return Board{}, err
	}
	return fromBoardRow(row), nil
}

// DeleteBoard removes a board and its tree
func (g *HTTPGateway) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	return g.call(ctx, http.MethodDelete, "/boards/"+boardID.String(), nil, true, nil)
}

// FindUserByEmail resolves an email through the directory lookup
func (g *HTTPGateway) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var row dto.UserRow
	path := "/users/lookup?email=" + url.QueryEscape(email)
	if err := g.call(ctx, http.MethodGet, path, nil, false, &row); err != nil {
		return User{}, err
	}
	return User{ID: row.ID, Email: row.Email, Name: row.Name}, nil
}

// InsertShare grants a user access to a board
func (g *HTTPGateway) InsertShare(ctx context.Context, boardID, userID uuid.UUID) error {
	req := dto.CreateShareRequest{UserID: userID}
	path := "/boards/" + boardID.String() + "/shares"
	return g.call(ctx, http.MethodPost, path, req, true, nil)
}

// call performs one request and decodes the success envelope's data into out.
// dedupe attaches a fresh idempotency key.
func (g *HTTPGateway) call(ctx context.Context, method, path string, body interface{}, dedupe bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return newTransportError("failed to encode request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return newTransportError("failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if dedupe {
		req.Header.Set(middleware.IdempotencyHeader, uuid.New().String())
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return newTransportError("request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError("failed to read response", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return newTransportError("failed to decode response", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return newTransportError("failed to decode response data", err)
	}
	return nil
}

// decodeAPIError maps the API's error envelope onto the store's error kinds
func decodeAPIError(status int, payload []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Error.Code == "" {
		return newTransportError(fmt.Sprintf("request failed with status %d", status), nil)
	}

	var kind Kind
	switch envelope.Error.Code {
	case response.ErrCodeValidation:
		kind = KindValidation
	case response.ErrCodeUnauthorized, response.ErrCodeForbidden:
		kind = KindPermission
	case response.ErrCodeNotFound:
		kind = KindNotFound
	default:
		kind = KindTransport
	}
	return &Error{Kind: kind, Message: envelope.Error.Message}
}

func fromBoardRow(row dto.BoardRow) Board {
	board := Board{
		ID:            row.ID,
		Name:          row.Name,
		OwnerID:       row.OwnerID,
		OwnerEmail:    row.OwnerEmail,
		OwnerName:     row.OwnerName,
		Collaborators: row.CollaboratorIDs,
	}
	for _, col := range row.Columns {
		column := Column{ID: col.ID, Name: col.Name}
		for _, task := range col.Tasks {
			t := Task{
				ID:          task.ID,
				Title:       task.Title,
				Description: task.Description,
				Status:      task.Status,
			}
			for _, sub := range task.Subtasks {
				t.Subtasks = append(t.Subtasks, Subtask{
					ID:        sub.ID,
					Title:     sub.Title,
					Completed: sub.IsCompleted,
				})
			}
			column.Tasks = append(column.Tasks, t)
		}
		board.Columns = append(board.Columns, column)
	}
	return board
}

// toColumnPayloads converts a column tree to request payloads. Nil IDs stay
// nil so the server assigns identities.
func toColumnPayloads(columns []Column) []dto.ColumnPayload {
	out := make([]dto.ColumnPayload, 0, len(columns))
	for _, col := range columns {
		payload := dto.ColumnPayload{ID: optionalID(col.ID), Name: col.Name}
		for _, task := range col.Tasks {
			taskPayload := dto.TaskPayload{
				ID:          optionalID(task.ID),
				Title:       task.Title,
				Description: task.Description,
			}
			for _, sub := range task.Subtasks {
				taskPayload.Subtasks = append(taskPayload.Subtasks, dto.SubtaskPayload{
					ID:          optionalID(sub.ID),
					Title:       sub.Title,
					IsCompleted: sub.Completed,
				})
			}
			payload.Tasks = append(payload.Tasks, taskPayload)
		}
		out = append(out, payload)
	}
	return out
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	copied := id
	return &copied
}
