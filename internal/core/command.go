package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom joins the live session of a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom leaves the current room.
	CommandLeaveRoom
	// CommandDrawingUpdate relays a stroke, shape, cursor or clear.
	CommandDrawingUpdate
	// CommandChatMessage persists and broadcasts a chat message.
	CommandChatMessage
	// CommandVoiceToggle announces that the sender enabled or disabled voice.
	CommandVoiceToggle
	// CommandVoiceReady announces that the sender can receive an audio offer.
	CommandVoiceReady
	// CommandWebRTCOffer relays a session description offer.
	CommandWebRTCOffer
	// CommandWebRTCAnswer relays a session description answer.
	CommandWebRTCAnswer
	// CommandWebRTCICECandidate relays an ICE candidate.
	CommandWebRTCICECandidate

	commandKindCount
)

var commandKindNames = [commandKindCount]string{
	CommandJoinRoom:           "join-room",
	CommandLeaveRoom:          "leave-room",
	CommandDrawingUpdate:      "drawing-update",
	CommandChatMessage:        "chat-message",
	CommandVoiceToggle:        "voice-toggle",
	CommandVoiceReady:         "voice-ready",
	CommandWebRTCOffer:        "webrtc-offer",
	CommandWebRTCAnswer:       "webrtc-answer",
	CommandWebRTCICECandidate: "webrtc-ice-candidate",
}

func (k CommandKind) String() string {
	if k < 0 || k >= commandKindCount {
		return "unknown"
	}
	return commandKindNames[k]
}

// Drawing sub-kinds.
const (
	DrawingDraw   = "draw"
	DrawingClear  = "clear"
	DrawingShape  = "shape"
	DrawingCursor = "cursor"
)

// DrawingUpdate is a single canvas operation. Each update carries enough state
// to be applied on its own.
type DrawingUpdate struct {
	Type        string
	X           *float64
	Y           *float64
	PrevX       *float64
	PrevY       *float64
	Width       *float64
	Height      *float64
	Color       string
	StrokeWidth *float64
	Tool        string
	UserID      string
}

// Command represents an action requested by a session.
type Command struct {
	Kind    CommandKind
	Room    string          // CommandJoinRoom
	Text    string          // CommandChatMessage
	Drawing *DrawingUpdate  // CommandDrawingUpdate
	Enabled bool            // CommandVoiceToggle
	Signal  json.RawMessage // CommandWebRTC*, relayed opaquely
}
