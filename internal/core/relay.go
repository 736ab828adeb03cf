package core

import (
	"context"
	"errors"
	"runtime/debug"
)

type handlerFunc func(ctx context.Context, s *Session, cmd *Command)

// dispatchTable maps every command kind to its handler. A kind added to
// CommandKind without a handler is caught by the dispatch table test.
func (h *Hub) dispatchTable() [commandKindCount]handlerFunc {
	return [commandKindCount]handlerFunc{
		CommandJoinRoom:           h.handleJoin,
		CommandLeaveRoom:          h.handleLeave,
		CommandDrawingUpdate:      h.handleDrawing,
		CommandChatMessage:        h.handleChat,
		CommandVoiceToggle:        h.handleVoiceToggle,
		CommandVoiceReady:         h.relayToPeers(EventVoiceReady),
		CommandWebRTCOffer:        h.relayToPeers(EventWebRTCOffer),
		CommandWebRTCAnswer:       h.relayToPeers(EventWebRTCAnswer),
		CommandWebRTCICECandidate: h.relayToPeers(EventWebRTCICECandidate),
	}
}

// dispatch runs one command. Failures never escape: they are logged and
// reported to the originating session only.
func (h *Hub) dispatch(s *Session, cmd *Command) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().
				Interface("panic", r).
				Str("session_id", s.ID).
				Str("event", cmd.Kind.String()).
				Bytes("stack", debug.Stack()).
				Msg("event handler panicked")
			s.Fail(errInternal)
		}
	}()

	if cmd == nil || cmd.Kind < 0 || cmd.Kind >= commandKindCount || h.handlers[cmd.Kind] == nil {
		s.Fail(errUnknownEvent)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.HandlerTimeout)
	defer cancel()

	h.handlers[cmd.Kind](ctx, s, cmd)
}

// activeRoom returns the session's room. Events from sessions without a room
// are dropped without a report.
func (h *Hub) activeRoom(s *Session, cmd *Command) (string, bool) {
	code := s.Room()
	if code == "" {
		h.log.Debug().
			Str("session_id", s.ID).
			Str("event", cmd.Kind.String()).
			Msg("dropping event from session without room")
		return "", false
	}
	return code, true
}

func (h *Hub) handleJoin(ctx context.Context, s *Session, cmd *Command) {
	h.join(ctx, s, cmd.Room)
}

func (h *Hub) handleLeave(_ context.Context, s *Session, cmd *Command) {
	if _, ok := h.activeRoom(s, cmd); !ok {
		return
	}
	h.leave(s)
}

// handleDrawing relays the update to peers stamped with the sender's identity.
// A clear is relayed first and then persisted; a failed reset is reported to
// the actor only.
func (h *Hub) handleDrawing(ctx context.Context, s *Session, cmd *Command) {
	code, ok := h.activeRoom(s, cmd)
	if !ok || cmd.Drawing == nil {
		return
	}

	update := *cmd.Drawing
	update.UserID = s.Identity.UserID
	h.Broadcast(code, s, &Event{Kind: EventDrawingUpdate, Room: code, User: s.Identity, Drawing: &update})

	if update.Type != DrawingClear || h.persister == nil {
		return
	}
	if err := h.persister.ClearBoard(ctx, code, s.Identity); err != nil {
		h.log.Warn().Err(err).
			Str("session_id", s.ID).
			Str("room", code).
			Msg("board clear not persisted")
		switch {
		case errors.Is(err, ErrRoomNotFound):
			s.Fail(errRoomNotFound)
		case errors.Is(err, ErrBoardNotFound):
			s.Fail(errBoardNotFound)
		default:
			s.Fail(errClearFailed)
		}
	}
}

// handleChat persists the message and only then delivers the stored record to
// the whole room, sender included.
func (h *Hub) handleChat(ctx context.Context, s *Session, cmd *Command) {
	code, ok := h.activeRoom(s, cmd)
	if !ok {
		return
	}
	if h.persister == nil {
		s.Fail(errSendFailed)
		return
	}

	msg, err := h.persister.PersistChat(ctx, code, s.Identity, cmd.Text)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			s.Fail(errRoomNotFound)
			return
		}
		h.log.Error().Err(err).
			Str("session_id", s.ID).
			Str("room", code).
			Msg("persist chat message")
		s.Fail(errSendFailed)
		return
	}

	h.Broadcast(code, nil, &Event{Kind: EventChatMessage, Room: code, User: s.Identity, Chat: msg})
}

func (h *Hub) handleVoiceToggle(_ context.Context, s *Session, cmd *Command) {
	code, ok := h.activeRoom(s, cmd)
	if !ok {
		return
	}
	h.Broadcast(code, s, &Event{Kind: EventVoiceToggle, Room: code, User: s.Identity, Enabled: cmd.Enabled})
}

// relayToPeers builds a handler that forwards the command's opaque signal
// payload to the room, excluding the sender, tagged with the sender identity.
func (h *Hub) relayToPeers(kind EventKind) handlerFunc {
	return func(_ context.Context, s *Session, cmd *Command) {
		code, ok := h.activeRoom(s, cmd)
		if !ok {
			return
		}
		h.Broadcast(code, s, &Event{Kind: kind, Room: code, User: s.Identity, Signal: cmd.Signal})
	}
}
