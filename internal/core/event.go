package core

import (
	"encoding/json"
	"time"
)

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventUserJoined notifies room peers about a user joining.
	EventUserJoined EventKind = iota
	// EventUserLeft notifies room peers about a user leaving or disconnecting.
	EventUserLeft
	// EventDrawingUpdate relays a canvas operation.
	EventDrawingUpdate
	// EventChatMessage delivers a persisted chat message.
	EventChatMessage
	// EventVoiceToggle relays a voice presence hint.
	EventVoiceToggle
	// EventVoiceReady relays readiness to receive an audio offer.
	EventVoiceReady
	// EventWebRTCOffer relays an offer.
	EventWebRTCOffer
	// EventWebRTCAnswer relays an answer.
	EventWebRTCAnswer
	// EventWebRTCICECandidate relays an ICE candidate.
	EventWebRTCICECandidate
	// EventError notifies a single session about a failure.
	EventError
)

// ChatMessage is a persisted chat message enriched with sender display fields.
type ChatMessage struct {
	ID        string
	RoomID    string
	Sender    Identity
	Text      string
	CreatedAt time.Time
}

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	User    Identity // originating user for relayed and membership events
	Drawing *DrawingUpdate
	Chat    *ChatMessage
	Enabled bool
	Signal  json.RawMessage
	Error   *CoreError
}
