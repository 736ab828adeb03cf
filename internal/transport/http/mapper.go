package http

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/vovakirdan/wireboard-server/internal/core"
	"github.com/vovakirdan/wireboard-server/internal/proto"
)

const maxRoomCodeLen = 64

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	errInvalidPayload = core.NewError(core.ErrCodeBadRequest, "Invalid payload")
	errUnknownEvent   = core.NewError(core.ErrCodeUnknownEvent, "Unknown event")
	errRateLimited    = core.NewError(core.ErrCodeRateLimited, "Rate limit exceeded")
)

// decode unmarshals and validates an inbound payload.
func decode[T any](raw json.RawMessage) (*T, bool) {
	var v T
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil, false
	}
	if validate.Struct(&v) != nil {
		return nil, false
	}
	return &v, true
}

// inboundToCommand maps a client frame to a core command. A non-nil error
// is reported to the client and the connection stays open.
func inboundToCommand(env proto.Envelope) (*core.Command, *core.CoreError) {
	switch env.Type {
	case proto.TypeJoinRoom:
		var code string
		if err := json.Unmarshal(env.Data, &code); err != nil {
			return nil, errInvalidPayload
		}
		code = strings.TrimSpace(code)
		if code == "" || len(code) > maxRoomCodeLen {
			return nil, errInvalidPayload
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: code}, nil

	case proto.TypeLeaveRoom:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil

	case proto.TypeDrawingUpdate:
		d, ok := decode[proto.DrawingData](env.Data)
		if !ok {
			return nil, errInvalidPayload
		}
		return &core.Command{
			Kind: core.CommandDrawingUpdate,
			Drawing: &core.DrawingUpdate{
				Type:        d.Type,
				X:           d.X,
				Y:           d.Y,
				PrevX:       d.PrevX,
				PrevY:       d.PrevY,
				Width:       d.Width,
				Height:      d.Height,
				Color:       d.Color,
				StrokeWidth: d.StrokeWidth,
				Tool:        d.Tool,
			},
		}, nil

	case proto.TypeChatMessage:
		d, ok := decode[proto.ChatData](env.Data)
		if !ok || strings.TrimSpace(d.Text) == "" {
			return nil, errInvalidPayload
		}
		return &core.Command{Kind: core.CommandChatMessage, Text: d.Text}, nil

	case proto.TypeVoiceToggle:
		d, ok := decode[proto.VoiceToggleData](env.Data)
		if !ok {
			return nil, errInvalidPayload
		}
		return &core.Command{Kind: core.CommandVoiceToggle, Enabled: lo.FromPtr(d.IsEnabled)}, nil

	case proto.TypeVoiceReady:
		return &core.Command{Kind: core.CommandVoiceReady}, nil

	case proto.TypeWebRTCOffer:
		d, ok := decode[proto.OfferData](env.Data)
		if !ok || isJSONNull(d.Offer) {
			return nil, errInvalidPayload
		}
		return &core.Command{Kind: core.CommandWebRTCOffer, Signal: d.Offer}, nil

	case proto.TypeWebRTCAnswer:
		d, ok := decode[proto.AnswerData](env.Data)
		if !ok || isJSONNull(d.Answer) {
			return nil, errInvalidPayload
		}
		return &core.Command{Kind: core.CommandWebRTCAnswer, Signal: d.Answer}, nil

	case proto.TypeWebRTCICECandidate:
		d, ok := decode[proto.CandidateData](env.Data)
		if !ok || isJSONNull(d.Candidate) {
			return nil, errInvalidPayload
		}
		return &core.Command{Kind: core.CommandWebRTCICECandidate, Signal: d.Candidate}, nil

	default:
		return nil, errUnknownEvent
	}
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func userEvent(id core.Identity) proto.UserEvent {
	return proto.UserEvent{UserID: id.UserID, Username: id.Username, Avatar: id.Avatar}
}

// ChatRecord converts a persisted chat message to its wire form.
func ChatRecord(m *core.ChatMessage) proto.ChatRecord {
	return proto.ChatRecord{
		ID:     m.ID,
		RoomID: m.RoomID,
		Sender: proto.Sender{
			ID:       m.Sender.UserID,
			Username: m.Sender.Username,
			Avatar:   m.Sender.Avatar,
		},
		Message:   m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserJoined:
		return proto.Outbound{Type: proto.TypeUserJoined, Data: userEvent(event.User)}
	case core.EventUserLeft:
		return proto.Outbound{Type: proto.TypeUserLeft, Data: userEvent(event.User)}
	case core.EventDrawingUpdate:
		d := event.Drawing
		if d == nil {
			d = &core.DrawingUpdate{}
		}
		return proto.Outbound{
			Type: proto.TypeDrawingUpdate,
			Data: proto.DrawingData{
				Type:        d.Type,
				X:           d.X,
				Y:           d.Y,
				PrevX:       d.PrevX,
				PrevY:       d.PrevY,
				Width:       d.Width,
				Height:      d.Height,
				Color:       d.Color,
				StrokeWidth: d.StrokeWidth,
				Tool:        d.Tool,
				UserID:      d.UserID,
			},
		}
	case core.EventChatMessage:
		if event.Chat == nil {
			return proto.Outbound{Type: proto.TypeError, Data: "Failed to send message"}
		}
		return proto.Outbound{Type: proto.TypeChatMessage, Data: ChatRecord(event.Chat)}
	case core.EventVoiceToggle:
		return proto.Outbound{
			Type: proto.TypeVoiceToggle,
			Data: proto.VoiceToggleEvent{
				UserID:    event.User.UserID,
				Username:  event.User.Username,
				IsEnabled: event.Enabled,
			},
		}
	case core.EventVoiceReady:
		return proto.Outbound{Type: proto.TypeVoiceReady, Data: userEvent(event.User)}
	case core.EventWebRTCOffer:
		return proto.Outbound{Type: proto.TypeWebRTCOffer, Data: signalEvent(event, func(s *proto.SignalEvent) { s.Offer = event.Signal })}
	case core.EventWebRTCAnswer:
		return proto.Outbound{Type: proto.TypeWebRTCAnswer, Data: signalEvent(event, func(s *proto.SignalEvent) { s.Answer = event.Signal })}
	case core.EventWebRTCICECandidate:
		return proto.Outbound{Type: proto.TypeWebRTCICECandidate, Data: signalEvent(event, func(s *proto.SignalEvent) { s.Candidate = event.Signal })}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.TypeError, Data: "Internal server error"}
		}
		return proto.Outbound{Type: proto.TypeError, Data: event.Error.Message}
	default:
		return proto.Outbound{Type: proto.TypeError, Data: "Internal server error"}
	}
}

func signalEvent(event *core.Event, set func(*proto.SignalEvent)) proto.SignalEvent {
	s := proto.SignalEvent{UserID: event.User.UserID, Username: event.User.Username}
	set(&s)
	return s
}
