package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireboard-server/internal/auth"
	"github.com/vovakirdan/wireboard-server/internal/config"
	"github.com/vovakirdan/wireboard-server/internal/core"
	"github.com/vovakirdan/wireboard-server/internal/service/persist"
	"github.com/vovakirdan/wireboard-server/internal/store"
	"github.com/vovakirdan/wireboard-server/internal/store/sqlite"
)

const testSecret = "test-secret"

type testEnv struct {
	ts    *httptest.Server
	hub   *core.Hub
	store store.Store
	jwt   *auth.JWTConfig
	room  *store.Room
	alice *store.User
	bob   *store.User
}

func testConfig() config.Config {
	return config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		MaxMessageBytes:   1 << 20,
		SessionBuffer:     64,
		HistoryLimit:      50,
	}
}

// startTestServer runs the full stack on an in-memory store seeded with
// alice (owner of ROOM42) and bob (not a participant).
func startTestServer(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	alice, err := st.CreateUser(ctx, "alice", "alice.png")
	require.NoError(t, err)
	bob, err := st.CreateUser(ctx, "bob", "")
	require.NoError(t, err)
	room, err := st.CreateRoom(ctx, "ROOM42", "Design review", &alice.ID)
	require.NoError(t, err)

	logger := zerolog.Nop()
	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(testSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtConfig, &logger)
	persister := persist.New(st, cfg.HistoryLimit, &logger)

	hub := core.NewHub(core.HubConfig{SessionBuffer: cfg.SessionBuffer, HandlerTimeout: time.Second}, st, persister, &logger)
	hubCtx, cancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)
	t.Cleanup(cancel)

	server := NewServer(hub, authService, persister, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:    ts,
		hub:   hub,
		store: st,
		jwt:   jwtConfig,
		room:  room,
		alice: alice,
		bob:   bob,
	}
}

func (e *testEnv) token(t *testing.T, u *store.User) string {
	t.Helper()
	token, err := auth.GenerateToken(e.jwt, u.ID, u.Username)
	require.NoError(t, err)
	return token
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

// frame is an inbound server frame with its payload left raw.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsClient reads frames on a background goroutine so tests can wait for
// frames or assert silence without cancelling reads on the connection.
type wsClient struct {
	conn   *websocket.Conn
	frames chan frame
	closed chan struct{}
	err    error
}

func (e *testEnv) dial(t *testing.T, u *store.User) *wsClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, e.wsURL(), &websocket.DialOptions{
		HTTPHeader: map[string][]string{"Authorization": {"Bearer " + e.token(t, u)}},
	})
	require.NoError(t, err)
	return newWSClient(t, conn)
}

func newWSClient(t *testing.T, conn *websocket.Conn) *wsClient {
	t.Helper()

	c := &wsClient{
		conn:   conn,
		frames: make(chan frame, 128),
		closed: make(chan struct{}),
	}
	go func() {
		defer close(c.closed)
		for {
			var f frame
			if err := wsjson.Read(context.Background(), conn, &f); err != nil {
				c.err = err
				return
			}
			c.frames <- f
		}
	}()
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return c
}

func (c *wsClient) send(t *testing.T, typ string, data any) {
	t.Helper()

	msg := map[string]any{"type": typ}
	if data != nil {
		msg["data"] = data
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, c.conn, msg))
}

// expect waits for the next frame of the given type, skipping others.
func (c *wsClient) expect(t *testing.T, typ string) frame {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case f := <-c.frames:
			if f.Type == typ {
				return f
			}
		case <-c.closed:
			t.Fatalf("connection closed while waiting for %q: %v", typ, c.err)
		case <-timeout:
			t.Fatalf("timed out waiting for %q", typ)
		}
	}
}

// expectError waits for an error frame and returns its message.
func (c *wsClient) expectError(t *testing.T) string {
	t.Helper()

	var msg string
	require.NoError(t, json.Unmarshal(c.expect(t, "error").Data, &msg))
	return msg
}

func (c *wsClient) expectSilence(t *testing.T, wait time.Duration) {
	t.Helper()

	select {
	case f := <-c.frames:
		t.Fatalf("unexpected frame %s: %s", f.Type, f.Data)
	case <-time.After(wait):
	}
}

func waitMembers(t *testing.T, hub *core.Hub, code string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Members(code) == n }, 2*time.Second, 5*time.Millisecond)
}
