package core

// Room is the live membership set of a room code. It is guarded by the Hub lock.
type Room struct {
	Code     string
	sessions map[*Session]struct{}
}

// NewRoom constructs a room with no sessions.
func NewRoom(code string) *Room {
	return &Room{
		Code:     code,
		sessions: make(map[*Session]struct{}),
	}
}

// Add inserts a session into the room. Returns true if newly added.
func (r *Room) Add(s *Session) bool {
	if _, exists := r.sessions[s]; exists {
		return false
	}
	r.sessions[s] = struct{}{}
	return true
}

// Remove deletes a session from the room. Returns true if removed.
func (r *Room) Remove(s *Session) bool {
	if _, exists := r.sessions[s]; !exists {
		return false
	}
	delete(r.sessions, s)
	return true
}

// Broadcast sends an event to every session in the room except exclude.
// It returns the sessions that could not accept the event.
func (r *Room) Broadcast(event *Event, exclude *Session) []*Session {
	var dropped []*Session
	for s := range r.sessions {
		if s == exclude {
			continue
		}
		select {
		case <-s.evicted:
			continue
		default:
		}
		if !s.deliver(event) {
			dropped = append(dropped, s)
		}
	}
	return dropped
}

// Len returns the number of sessions in the room.
func (r *Room) Len() int {
	return len(r.sessions)
}

// Empty returns true if no sessions are in the room.
func (r *Room) Empty() bool {
	return len(r.sessions) == 0
}
