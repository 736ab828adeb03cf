package proto

import (
	"encoding/json"
	"time"
)

// Envelope is the frame shape in both directions: an event name and its payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Event names.
const (
	TypeJoinRoom           = "join-room"
	TypeLeaveRoom          = "leave-room"
	TypeDrawingUpdate      = "drawing-update"
	TypeChatMessage        = "chat-message"
	TypeVoiceToggle        = "voice-toggle"
	TypeVoiceReady         = "voice-ready"
	TypeWebRTCOffer        = "webrtc-offer"
	TypeWebRTCAnswer       = "webrtc-answer"
	TypeWebRTCICECandidate = "webrtc-ice-candidate"

	TypeUserJoined = "user-joined"
	TypeUserLeft   = "user-left"
	TypeError      = "error"
)

// DrawingData is a stroke, shape, cursor move or board clear. Coordinates are
// optional because each sub-kind uses a different subset. UserID is ignored
// inbound and stamped by the server outbound.
type DrawingData struct {
	Type        string   `json:"type" validate:"required,oneof=draw clear shape cursor"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	PrevX       *float64 `json:"prevX,omitempty"`
	PrevY       *float64 `json:"prevY,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Color       string   `json:"color,omitempty" validate:"max=64"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" validate:"omitempty,gte=0"`
	Tool        string   `json:"tool,omitempty" validate:"max=32"`
	UserID      string   `json:"userId,omitempty"`
}

// ChatData is a chat message from the client.
type ChatData struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// VoiceToggleData announces the sender's microphone state.
type VoiceToggleData struct {
	IsEnabled *bool `json:"isEnabled" validate:"required"`
}

// OfferData carries an opaque session description offer.
type OfferData struct {
	Offer json.RawMessage `json:"offer" validate:"required"`
}

// AnswerData carries an opaque session description answer.
type AnswerData struct {
	Answer json.RawMessage `json:"answer" validate:"required"`
}

// CandidateData carries an opaque ICE candidate.
type CandidateData struct {
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

// UserEvent is the payload of user-joined, user-left and voice-ready.
type UserEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Sender is the display form of a chat message author.
type Sender struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// ChatRecord is the persisted chat message as broadcast and as served by history.
type ChatRecord struct {
	ID        string    `json:"_id"`
	RoomID    string    `json:"roomId"`
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoiceToggleEvent is the relayed form of voice-toggle.
type VoiceToggleEvent struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	IsEnabled bool   `json:"isEnabled"`
}

// SignalEvent is the relayed form of the WebRTC signaling events. Exactly one
// of Offer, Answer and Candidate is set.
type SignalEvent struct {
	UserID    string          `json:"userId"`
	Username  string          `json:"username,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// BoardSnapshot is the REST form of a room board.
type BoardSnapshot struct {
	RoomID    string     `json:"roomId"`
	Snapshot  string     `json:"snapshot"`
	UpdatedBy *string    `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// SaveBoardRequest is the body of PUT /api/rooms/:code/board.
type SaveBoardRequest struct {
	Snapshot *string `json:"snapshot" binding:"required"`
}
