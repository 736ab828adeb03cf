package core_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireboard-server/internal/core"
	"github.com/vovakirdan/wireboard-server/internal/store"
)

// fakeDirectory is an in-memory RoomDirectory whose participant sets can be
// changed while the hub is running.
type fakeDirectory struct {
	mu           sync.Mutex
	rooms        map[string]*store.Room
	participants map[string]map[string]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		rooms:        make(map[string]*store.Room),
		participants: make(map[string]map[string]bool),
	}
}

func (d *fakeDirectory) addRoom(code string, userIDs ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := "id-" + code
	d.rooms[code] = &store.Room{ID: id, Code: code}
	d.participants[id] = make(map[string]bool)
	for _, uid := range userIDs {
		d.participants[id][uid] = true
	}
}

func (d *fakeDirectory) grant(code, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.participants["id-"+code][userID] = true
}

func (d *fakeDirectory) GetRoomByCode(_ context.Context, code string) (*store.Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[code]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", code, store.ErrNotFound)
	}
	return room, nil
}

func (d *fakeDirectory) IsParticipant(_ context.Context, roomID, userID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.participants[roomID][userID], nil
}

var (
	alice = core.Identity{UserID: "u-alice", Username: "alice", Avatar: "alice.png"}
	bob   = core.Identity{UserID: "u-bob", Username: "bob"}
	carol = core.Identity{UserID: "u-carol", Username: "carol"}
)

func startHub(t *testing.T, dir core.RoomDirectory, persister core.Persister) *core.Hub {
	t.Helper()

	hub := core.NewHub(core.HubConfig{SessionBuffer: 16, HandlerTimeout: time.Second}, dir, persister, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func joinRoom(t *testing.T, s *core.Session, code string) {
	t.Helper()

	require.True(t, s.Submit(&core.Command{Kind: core.CommandJoinRoom, Room: code}))
	require.Eventually(t, func() bool { return s.Room() == code }, 2*time.Second, 5*time.Millisecond,
		"session %s did not join %s", s.Identity.Username, code)
}

// mustEvent waits for the next event of the given kind, skipping others.
func mustEvent(t *testing.T, s *core.Session, kind core.EventKind) *core.Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev != nil && ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received by %s", kind, s.Identity.Username)
			return nil
		}
	}
}

// expectSilence asserts that the session receives no event within wait.
func expectSilence(t *testing.T, s *core.Session, wait time.Duration) {
	t.Helper()

	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected event for %s: %+v", s.Identity.Username, ev)
	case <-time.After(wait):
	}
}
