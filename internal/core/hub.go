package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard-server/internal/store"
)

// HubConfig tunes per-session resources.
type HubConfig struct {
	// SessionBuffer is the capacity of each session's inbound and outbound queues.
	SessionBuffer int
	// HandlerTimeout bounds the store I/O of a single event handler.
	HandlerTimeout time.Duration
}

// DefaultHubConfig returns the settings used when none are provided.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SessionBuffer:  64,
		HandlerTimeout: 10 * time.Second,
	}
}

// Hub owns sessions and live room membership and relays events between them.
// Each session's commands are processed sequentially by its own dispatcher
// goroutine; membership changes and fan-out share one lock so a broadcast
// always sees a consistent member set.
type Hub struct {
	cfg       HubConfig
	directory RoomDirectory
	persister Persister
	log       *zerolog.Logger
	handlers  [commandKindCount]handlerFunc

	mu       sync.Mutex
	sessions map[string]*Session
	rooms    map[string]*Room
	stopped  bool
}

// NewHub creates a hub. persister may be nil, in which case chat messages
// are rejected and board clears are relayed without persistence.
func NewHub(cfg HubConfig, directory RoomDirectory, persister Persister, logger *zerolog.Logger) *Hub {
	defaults := DefaultHubConfig()
	if cfg.SessionBuffer <= 0 {
		cfg.SessionBuffer = defaults.SessionBuffer
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = defaults.HandlerTimeout
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	h := &Hub{
		cfg:       cfg,
		directory: directory,
		persister: persister,
		log:       logger,
		sessions:  make(map[string]*Session),
		rooms:     make(map[string]*Room),
	}
	h.handlers = h.dispatchTable()
	return h
}

// Run blocks until ctx is cancelled, then closes every live session.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for id, s := range h.sessions {
		s.close()
		delete(h.sessions, id)
	}
	h.rooms = make(map[string]*Room)
	h.log.Info().Msg("hub stopped")
}

// Connect registers an authenticated identity as a new session and starts its
// dispatcher. The returned session is closed immediately if the hub has stopped.
func (h *Hub) Connect(identity Identity) *Session {
	s := newSession(uuid.NewString(), identity, h.cfg.SessionBuffer)

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		s.close()
		return s
	}
	h.sessions[s.ID] = s
	h.mu.Unlock()

	go h.serve(s)

	h.log.Info().
		Str("session_id", s.ID).
		Str("user_id", identity.UserID).
		Msg("session connected")
	return s
}

// Disconnect closes the session. If it was joined, the remaining peers of
// its room receive exactly one user-left notice. Calling it twice is a no-op.
func (h *Hub) Disconnect(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.ID]; !ok {
		s.close()
		return
	}
	delete(h.sessions, s.ID)

	if code := s.Room(); code != "" {
		h.leaveLocked(s, code)
	}
	s.close()

	h.log.Info().
		Str("session_id", s.ID).
		Str("user_id", s.Identity.UserID).
		Msg("session disconnected")
}

// Session looks up a live session by ID.
func (h *Hub) Session(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Members returns the number of sessions currently joined to a room.
func (h *Hub) Members(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[code]; ok {
		return room.Len()
	}
	return 0
}

// Broadcast delivers event to the current members of room except exclude.
// Members are resolved at send time.
func (h *Hub) Broadcast(room string, exclude *Session, event *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(room, exclude, event)
}

func (h *Hub) broadcastLocked(code string, exclude *Session, event *Event) {
	room, ok := h.rooms[code]
	if !ok {
		return
	}
	for _, s := range room.Broadcast(event, exclude) {
		h.log.Warn().
			Str("session_id", s.ID).
			Str("room", code).
			Msg("session outbound queue full, evicting")
	}
}

func (h *Hub) serve(s *Session) {
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.commands:
			if s.State() == StateClosed {
				return
			}
			h.dispatch(s, cmd)
		}
	}
}

// join validates authorization against the room directory and then, under
// the hub lock, switches the session into the room and notifies its peers.
func (h *Hub) join(ctx context.Context, s *Session, code string) {
	logger := h.log.With().Str("session_id", s.ID).Str("user_id", s.Identity.UserID).Str("room", code).Logger()

	if h.directory == nil {
		s.Fail(errJoinFailed)
		return
	}

	room, err := h.directory.GetRoomByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Debug().Msg("join rejected: room not found")
			s.Fail(errRoomNotFound)
			return
		}
		logger.Error().Err(err).Msg("join: lookup room")
		s.Fail(errJoinFailed)
		return
	}

	allowed, err := h.directory.IsParticipant(ctx, room.ID, s.Identity.UserID)
	if err != nil {
		logger.Error().Err(err).Msg("join: check participant")
		s.Fail(errJoinFailed)
		return
	}
	if !allowed {
		logger.Info().Msg("join rejected: access denied")
		s.Fail(errAccessDenied)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, live := h.sessions[s.ID]; !live {
		return
	}

	current := s.Room()
	if current == code {
		return
	}
	if current != "" {
		h.leaveLocked(s, current)
	}

	live, ok := h.rooms[code]
	if !ok {
		live = NewRoom(code)
		h.rooms[code] = live
	}
	live.Add(s)
	s.setRoom(code)

	h.broadcastLocked(code, s, &Event{Kind: EventUserJoined, Room: code, User: s.Identity})
	logger.Info().Int("members", live.Len()).Msg("session joined room")
}

// leave removes the session from its current room, if any.
func (h *Hub) leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	code := s.Room()
	if code == "" {
		return
	}
	h.leaveLocked(s, code)
}

func (h *Hub) leaveLocked(s *Session, code string) {
	room, ok := h.rooms[code]
	if ok && room.Remove(s) {
		h.broadcastLocked(code, s, &Event{Kind: EventUserLeft, Room: code, User: s.Identity})
		if room.Empty() {
			delete(h.rooms, code)
		}
	}
	s.setRoom("")

	h.log.Info().
		Str("session_id", s.ID).
		Str("user_id", s.Identity.UserID).
		Str("room", code).
		Msg("session left room")
}
