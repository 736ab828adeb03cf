package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wireboard-server/internal/core"
	"github.com/vovakirdan/wireboard-server/internal/proto"
	"github.com/vovakirdan/wireboard-server/internal/store"
)

// ErrorResponse is the JSON error body of REST endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomService serves the durable room state over REST.
type RoomService interface {
	History(ctx context.Context, roomCode string, reader core.Identity, limit int) ([]core.ChatMessage, error)
	LoadBoard(ctx context.Context, roomCode string, reader core.Identity) (*store.Board, error)
	SaveBoard(ctx context.Context, roomCode string, actor core.Identity, snapshot string) error
}

// RoomHandlers provides HTTP handlers for room history and board snapshots.
type RoomHandlers struct {
	rooms RoomService
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(rooms RoomService, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		rooms: rooms,
		log:   logger,
	}
}

// History returns recent chat messages, oldest first.
// GET /api/rooms/:code/messages?limit=N
func (h *RoomHandlers) History(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	code := c.Param("code")
	msgs, err := h.rooms.History(c.Request.Context(), code, identity, limit)
	if err != nil {
		h.fail(c, err, code, "failed to load history")
		return
	}

	c.JSON(http.StatusOK, lo.Map(msgs, func(m core.ChatMessage, _ int) proto.ChatRecord {
		return ChatRecord(&m)
	}))
}

// GetBoard returns the current board snapshot.
// GET /api/rooms/:code/board
func (h *RoomHandlers) GetBoard(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	code := c.Param("code")
	board, err := h.rooms.LoadBoard(c.Request.Context(), code, identity)
	if err != nil {
		h.fail(c, err, code, "failed to load board")
		return
	}

	resp := proto.BoardSnapshot{
		RoomID:    board.RoomID,
		Snapshot:  board.Snapshot,
		UpdatedBy: board.UpdatedBy,
	}
	if !board.UpdatedAt.IsZero() {
		resp.UpdatedAt = &board.UpdatedAt
	}
	c.JSON(http.StatusOK, resp)
}

// SaveBoard replaces the board snapshot.
// PUT /api/rooms/:code/board
func (h *RoomHandlers) SaveBoard(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req proto.SaveBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid save board request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	code := c.Param("code")
	if err := h.rooms.SaveBoard(c.Request.Context(), code, identity, *req.Snapshot); err != nil {
		h.fail(c, err, code, "failed to save board")
		return
	}

	h.log.Info().Str("room", code).Str("user_id", identity.UserID).Msg("board snapshot saved")
	c.Status(http.StatusNoContent)
}

func (h *RoomHandlers) fail(c *gin.Context, err error, code, msg string) {
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Room not found"})
	case errors.Is(err, core.ErrBoardNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Board not found"})
	case errors.Is(err, core.ErrAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Access denied"})
	default:
		h.log.Error().Err(err).Str("room", code).Msg(msg)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
