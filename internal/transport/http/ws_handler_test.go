package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireboard-server/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t, testConfig())

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocketRejectsUnauthenticated(t *testing.T) {
	env := startTestServer(t, testConfig())

	tests := map[string]string{
		"no token":      "",
		"garbage token": "?token=garbage",
	}
	for name, query := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			_, resp, err := websocket.Dial(ctx, env.wsURL()+query, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestWebSocketAcceptsQueryToken(t *testing.T) {
	env := startTestServer(t, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, env.wsURL()+"?token="+env.token(t, env.alice), nil)
	require.NoError(t, err)
	alice := newWSClient(t, conn)

	alice.send(t, proto.TypeJoinRoom, "ROOM42")
	waitMembers(t, env.hub, "ROOM42", 1)
}

func TestAccessDeniedThenGrantedJoin(t *testing.T) {
	env := startTestServer(t, testConfig())

	alice := env.dial(t, env.alice)
	bob := env.dial(t, env.bob)

	alice.send(t, proto.TypeJoinRoom, "ROOM42")
	waitMembers(t, env.hub, "ROOM42", 1)

	bob.send(t, proto.TypeJoinRoom, "ROOM42")
	assert.Equal(t, "Access denied", bob.expectError(t))
	alice.expectSilence(t, 100*time.Millisecond)
	assert.Equal(t, 1, env.hub.Members("ROOM42"))

	require.NoError(t, env.store.AddParticipant(context.Background(), env.room.ID, env.bob.ID))
	bob.send(t, proto.TypeJoinRoom, "ROOM42")

	var joined proto.UserEvent
	require.NoError(t, json.Unmarshal(alice.expect(t, proto.TypeUserJoined).Data, &joined))
	assert.Equal(t, env.bob.ID, joined.UserID)
	assert.Equal(t, "bob", joined.Username)
}

func TestJoinUnknownRoom(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice := env.dial(t, env.alice)

	alice.send(t, proto.TypeJoinRoom, "GHOST")
	assert.Equal(t, "Room not found", alice.expectError(t))
}

// joinBoth joins alice and bob to ROOM42 and drains alice's join notice.
func joinBoth(t *testing.T, env *testEnv) (*wsClient, *wsClient) {
	t.Helper()

	require.NoError(t, env.store.AddParticipant(context.Background(), env.room.ID, env.bob.ID))
	alice := env.dial(t, env.alice)
	bob := env.dial(t, env.bob)

	alice.send(t, proto.TypeJoinRoom, "ROOM42")
	waitMembers(t, env.hub, "ROOM42", 1)
	bob.send(t, proto.TypeJoinRoom, "ROOM42")
	alice.expect(t, proto.TypeUserJoined)
	return alice, bob
}

func TestChatMessageReachesWholeRoomOnce(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice, bob := joinBoth(t, env)

	alice.send(t, proto.TypeChatMessage, map[string]any{"text": "hi"})

	for _, c := range []*wsClient{alice, bob} {
		var rec proto.ChatRecord
		require.NoError(t, json.Unmarshal(c.expect(t, proto.TypeChatMessage).Data, &rec))
		assert.Equal(t, "hi", rec.Message)
		assert.Equal(t, "alice", rec.Sender.Username)
		assert.Equal(t, env.alice.ID, rec.Sender.ID)
		assert.Equal(t, "alice.png", rec.Sender.Avatar)
		assert.Equal(t, env.room.ID, rec.RoomID)
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())
		c.expectSilence(t, 100*time.Millisecond)
	}

	history, err := env.store.ListMessages(context.Background(), env.room.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestDrawingUpdateStampedAndNotEchoed(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice, bob := joinBoth(t, env)

	for i := range 5 {
		bob.send(t, proto.TypeDrawingUpdate, map[string]any{
			"type":   "draw",
			"x":      i,
			"y":      1,
			"prevX":  i - 1,
			"prevY":  1,
			"color":  "#ff0000",
			"userId": "mallory",
		})
	}

	for i := range 5 {
		var d proto.DrawingData
		require.NoError(t, json.Unmarshal(alice.expect(t, proto.TypeDrawingUpdate).Data, &d))
		assert.Equal(t, env.bob.ID, d.UserID)
		require.NotNil(t, d.X)
		assert.Equal(t, float64(i), *d.X)
		assert.Equal(t, "#ff0000", d.Color)
	}
	bob.expectSilence(t, 100*time.Millisecond)
}

func TestBoardClearResetsSnapshot(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice, bob := joinBoth(t, env)

	ctx := context.Background()
	require.NoError(t, env.store.SaveBoard(ctx, env.room.ID, "data:image/png;base64,AAAA", env.alice.ID))

	alice.send(t, proto.TypeDrawingUpdate, map[string]any{"type": "clear"})
	bob.expect(t, proto.TypeDrawingUpdate)

	require.Eventually(t, func() bool {
		board, err := env.store.GetBoard(ctx, env.room.ID)
		return err == nil && board.Snapshot == ""
	}, 2*time.Second, 10*time.Millisecond)
	alice.expectSilence(t, 100*time.Millisecond)
}

func TestSignalingRelayedWithSenderIdentity(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice, bob := joinBoth(t, env)

	alice.send(t, proto.TypeVoiceToggle, map[string]any{"isEnabled": true})
	alice.send(t, proto.TypeVoiceReady, nil)
	alice.send(t, proto.TypeWebRTCOffer, map[string]any{"offer": map[string]any{"type": "offer", "sdp": "v=0"}})
	bob.send(t, proto.TypeWebRTCAnswer, map[string]any{"answer": map[string]any{"type": "answer", "sdp": "v=0"}})
	bob.send(t, proto.TypeWebRTCICECandidate, map[string]any{"candidate": map[string]any{"candidate": "candidate:1", "sdpMid": "0"}})

	var toggle proto.VoiceToggleEvent
	require.NoError(t, json.Unmarshal(bob.expect(t, proto.TypeVoiceToggle).Data, &toggle))
	assert.Equal(t, proto.VoiceToggleEvent{UserID: env.alice.ID, Username: "alice", IsEnabled: true}, toggle)

	var ready proto.UserEvent
	require.NoError(t, json.Unmarshal(bob.expect(t, proto.TypeVoiceReady).Data, &ready))
	assert.Equal(t, env.alice.ID, ready.UserID)

	var offer proto.SignalEvent
	require.NoError(t, json.Unmarshal(bob.expect(t, proto.TypeWebRTCOffer).Data, &offer))
	assert.Equal(t, env.alice.ID, offer.UserID)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0"}`, string(offer.Offer))

	var answer proto.SignalEvent
	require.NoError(t, json.Unmarshal(alice.expect(t, proto.TypeWebRTCAnswer).Data, &answer))
	assert.Equal(t, env.bob.ID, answer.UserID)

	var candidate proto.SignalEvent
	require.NoError(t, json.Unmarshal(alice.expect(t, proto.TypeWebRTCICECandidate).Data, &candidate))
	assert.JSONEq(t, `{"candidate":"candidate:1","sdpMid":"0"}`, string(candidate.Candidate))
}

func TestInvalidFramesKeepConnectionOpen(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice := env.dial(t, env.alice)

	alice.send(t, proto.TypeDrawingUpdate, map[string]any{"type": "spray"})
	assert.Equal(t, "Invalid payload", alice.expectError(t))

	alice.send(t, proto.TypeChatMessage, map[string]any{"text": ""})
	assert.Equal(t, "Invalid payload", alice.expectError(t))

	alice.send(t, "dance", nil)
	assert.Equal(t, "Unknown event", alice.expectError(t))

	alice.send(t, proto.TypeJoinRoom, "ROOM42")
	waitMembers(t, env.hub, "ROOM42", 1)
}

func TestMistypedEnvelopeKeepsConnectionOpen(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice := env.dial(t, env.alice)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, alice.conn, map[string]any{"type": 5}))
	assert.Equal(t, "Invalid payload", alice.expectError(t))

	require.NoError(t, wsjson.Write(ctx, alice.conn, []string{"join-room", "ROOM42"}))
	assert.Equal(t, "Invalid payload", alice.expectError(t))

	alice.send(t, proto.TypeJoinRoom, "ROOM42")
	waitMembers(t, env.hub, "ROOM42", 1)
}

func TestDisconnectNotifiesPeers(t *testing.T) {
	env := startTestServer(t, testConfig())
	alice, bob := joinBoth(t, env)

	_ = bob.conn.Close(websocket.StatusNormalClosure, "bye")

	var left proto.UserEvent
	require.NoError(t, json.Unmarshal(alice.expect(t, proto.TypeUserLeft).Data, &left))
	assert.Equal(t, env.bob.ID, left.UserID)
	alice.expectSilence(t, 100*time.Millisecond)
	waitMembers(t, env.hub, "ROOM42", 1)
}

func TestRateLimitReportedOncePerWindow(t *testing.T) {
	cfg := testConfig()
	cfg.EventsPerMinute = 2
	env := startTestServer(t, cfg)
	alice := env.dial(t, env.alice)

	// Events before joining are dropped silently but still count.
	for range 5 {
		alice.send(t, proto.TypeVoiceReady, nil)
	}

	assert.Equal(t, "Rate limit exceeded", alice.expectError(t))
	alice.expectSilence(t, 150*time.Millisecond)
}
