package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wireboard-server/internal/core"
	"github.com/vovakirdan/wireboard-server/internal/store"
)

// DefaultHistoryLimit caps History when the caller asks for no limit.
const DefaultHistoryLimit = 50

// ErrEmptyMessage is returned when a chat message has no text.
var ErrEmptyMessage = errors.New("empty message")

// Service writes the durable side effects of relayed events and serves the
// read paths for chat history and board snapshots.
type Service struct {
	store        store.Store
	historyLimit int
	log          *zerolog.Logger
}

// New creates a persistence service. historyLimit bounds History results.
func New(st store.Store, historyLimit int, logger *zerolog.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store:        st,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// PersistChat stores a chat message and returns it enriched with the
// sender's display fields as read back from the store.
func (s *Service) PersistChat(ctx context.Context, roomCode string, sender core.Identity, text string) (*core.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.room(ctx, roomCode)
	if err != nil {
		return nil, err
	}

	msg := &store.Message{
		RoomID:   room.ID,
		SenderID: sender.UserID,
		Body:     text,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	stored, err := s.store.GetMessageWithSender(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("reload message %s: %w", msg.ID, err)
	}

	s.log.Debug().
		Str("room", roomCode).
		Str("user_id", sender.UserID).
		Str("message_id", stored.ID).
		Msg("chat message persisted")
	return chatFromStore(stored), nil
}

// ClearBoard resets the room's board snapshot on behalf of actor.
func (s *Service) ClearBoard(ctx context.Context, roomCode string, actor core.Identity) error {
	room, err := s.room(ctx, roomCode)
	if err != nil {
		return err
	}

	if err := s.store.ClearBoard(ctx, room.ID, actor.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.ErrBoardNotFound
		}
		return fmt.Errorf("clear board: %w", err)
	}

	s.log.Info().
		Str("room", roomCode).
		Str("user_id", actor.UserID).
		Msg("board cleared")
	return nil
}

// History returns up to limit most recent chat messages of a room, oldest
// first. Only participants may read it.
func (s *Service) History(ctx context.Context, roomCode string, reader core.Identity, limit int) ([]core.ChatMessage, error) {
	room, err := s.authorize(ctx, roomCode, reader)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	msgs, err := s.store.ListMessages(ctx, room.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return lo.Map(msgs, func(m *store.MessageWithSender, _ int) core.ChatMessage {
		return *chatFromStore(m)
	}), nil
}

// LoadBoard returns the room's current board snapshot.
func (s *Service) LoadBoard(ctx context.Context, roomCode string, reader core.Identity) (*store.Board, error) {
	room, err := s.authorize(ctx, roomCode, reader)
	if err != nil {
		return nil, err
	}

	board, err := s.store.GetBoard(ctx, room.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, core.ErrBoardNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}
	return board, nil
}

// SaveBoard replaces the room's board snapshot, attributed to actor.
func (s *Service) SaveBoard(ctx context.Context, roomCode string, actor core.Identity, snapshot string) error {
	room, err := s.authorize(ctx, roomCode, actor)
	if err != nil {
		return err
	}

	if err := s.store.SaveBoard(ctx, room.ID, snapshot, actor.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.ErrBoardNotFound
		}
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

func (s *Service) room(ctx context.Context, code string) (*store.Room, error) {
	room, err := s.store.GetRoomByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, core.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room %s: %w", code, err)
	}
	return room, nil
}

func (s *Service) authorize(ctx context.Context, code string, who core.Identity) (*store.Room, error) {
	room, err := s.room(ctx, code)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.IsParticipant(ctx, room.ID, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, core.ErrAccessDenied
	}
	return room, nil
}

func chatFromStore(m *store.MessageWithSender) *core.ChatMessage {
	return &core.ChatMessage{
		ID:     m.ID,
		RoomID: m.RoomID,
		Sender: core.Identity{
			UserID:   m.Sender.ID,
			Username: m.Sender.Username,
			Avatar:   m.Sender.Avatar,
		},
		Text:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

var _ core.Persister = (*Service)(nil)
