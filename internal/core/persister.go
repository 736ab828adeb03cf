//go:generate go run go.uber.org/mock/mockgen -source=persister.go -destination=mocks/mock_persister.go -package=mocks
package core

import (
	"context"

	"github.com/vovakirdan/wireboard-server/internal/store"
)

// Persister performs the durable side effects of relayed events.
type Persister interface {
	// PersistChat stores a chat message and returns it re-read with sender
	// display fields. Returns ErrRoomNotFound for unknown room codes.
	PersistChat(ctx context.Context, roomCode string, sender Identity, text string) (*ChatMessage, error)

	// ClearBoard resets the room's board snapshot on behalf of actor.
	// Returns ErrRoomNotFound or ErrBoardNotFound when there is nothing to clear.
	ClearBoard(ctx context.Context, roomCode string, actor Identity) error
}

// RoomDirectory resolves room codes and authorized participants.
type RoomDirectory interface {
	GetRoomByCode(ctx context.Context, code string) (*store.Room, error)
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)
}
