package core

import "sync"

// SessionState is the lifecycle state of a session. A connection that fails
// authentication never becomes a session.
type SessionState int

const (
	// StateAuthenticated is a live session that has not joined a room.
	StateAuthenticated SessionState = iota + 1
	// StateJoined is a live session that belongs to exactly one room.
	StateJoined
	// StateClosed is terminal.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one live connection's authenticated, room-scoped state.
type Session struct {
	ID       string
	Identity Identity

	commands chan *Command
	events   chan *Event
	done     chan struct{}
	evicted  chan struct{}

	closeOnce sync.Once
	evictOnce sync.Once

	mu    sync.RWMutex
	room  string
	state SessionState
}

func newSession(id string, identity Identity, buffer int) *Session {
	if buffer <= 0 {
		buffer = 1
	}
	return &Session{
		ID:       id,
		Identity: identity,
		commands: make(chan *Command, buffer),
		events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
		evicted:  make(chan struct{}),
		state:    StateAuthenticated,
	}
}

// Room returns the code of the joined room, or "" when not joined.
func (s *Session) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Events returns the outbound queue of the session.
func (s *Session) Events() <-chan *Event {
	return s.events
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Evicted is closed when the session could not keep up with its outbound queue.
func (s *Session) Evicted() <-chan struct{} {
	return s.evicted
}

// Submit queues an inbound command. Blocks while the inbound queue is full,
// which preserves per-session order. Returns false once the session is closed.
func (s *Session) Submit(cmd *Command) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.commands <- cmd:
		return true
	case <-s.done:
		return false
	}
}

// Fail sends a targeted error event to this session only.
func (s *Session) Fail(err *CoreError) {
	s.deliver(&Event{Kind: EventError, Room: s.Room(), Error: err})
}

// deliver enqueues an event without blocking. A full queue evicts the session
// rather than dropping the event silently.
func (s *Session) deliver(ev *Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	default:
		s.evictOnce.Do(func() { close(s.evicted) })
		return false
	}
}

func (s *Session) setRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.room = code
	if code == "" {
		s.state = StateAuthenticated
	} else {
		s.state = StateJoined
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		s.room = ""
		s.mu.Unlock()
		close(s.done)
	})
}
