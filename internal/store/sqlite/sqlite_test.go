package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireboard-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "a.png")
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "a.png", alice.Avatar)

	_, err = s.CreateUser(ctx, "alice", "")
	assert.True(t, errors.Is(err, store.ErrConflict), "expected ErrConflict, got %v", err)

	_, err = s.GetUserByID(ctx, "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestCreateRoomRegistersOwnerAndBoard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "bob", "")
	require.NoError(t, err)

	room, err := s.CreateRoom(ctx, "ROOM42", "Design review", &alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "ROOM42", room.Code)
	require.NotNil(t, room.OwnerID)
	assert.Equal(t, alice.ID, *room.OwnerID)

	ok, err := s.IsParticipant(ctx, room.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsParticipant(ctx, room.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddParticipant(ctx, room.ID, bob.ID))
	require.NoError(t, s.AddParticipant(ctx, room.ID, bob.ID))

	participants, err := s.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, participants)

	board, err := s.GetBoard(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, board.Snapshot)

	_, err = s.CreateRoom(ctx, "ROOM42", "dup", nil)
	assert.True(t, errors.Is(err, store.ErrConflict), "expected ErrConflict, got %v", err)

	_, err = s.GetRoomByCode(ctx, "NOPE")
	assert.True(t, errors.Is(err, store.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestMessagesJoinSenderAndListOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "alice.png")
	require.NoError(t, err)
	room, err := s.CreateRoom(ctx, "ROOM42", "", &alice.ID)
	require.NoError(t, err)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, text := range []string{"one", "two", "three"} {
		msg := &store.Message{
			RoomID:    room.ID,
			SenderID:  alice.ID,
			Body:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.CreateMessage(ctx, msg))
		assert.NotEmpty(t, msg.ID)
	}

	latest, err := s.ListMessages(ctx, room.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "two", latest[0].Body)
	assert.Equal(t, "three", latest[1].Body)
	assert.Equal(t, "alice", latest[1].Sender.Username)

	enriched, err := s.GetMessageWithSender(ctx, latest[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "alice.png", enriched.Sender.Avatar)
	assert.True(t, enriched.CreatedAt.Equal(base.Add(time.Second)))

	_, err = s.GetMessageWithSender(ctx, "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestBoardSaveAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	room, err := s.CreateRoom(ctx, "ROOM42", "", &alice.ID)
	require.NoError(t, err)

	require.NoError(t, s.SaveBoard(ctx, room.ID, "data:image/png;base64,AAAA", alice.ID))

	board, err := s.GetBoard(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", board.Snapshot)
	require.NotNil(t, board.UpdatedBy)
	assert.Equal(t, alice.ID, *board.UpdatedBy)

	require.NoError(t, s.ClearBoard(ctx, room.ID, alice.ID))
	board, err = s.GetBoard(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, board.Snapshot)

	err = s.ClearBoard(ctx, "no-such-room", alice.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound), "expected ErrNotFound, got %v", err)
}
