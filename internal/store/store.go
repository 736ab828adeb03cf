package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("already exists")
)

// User represents an identity known to the system.
type User struct {
	ID        string
	Username  string
	Avatar    string
	CreatedAt time.Time
}

// Room represents a collaboration room. Code is the short human-shareable
// identifier; ID is the durable storage key.
type Room struct {
	ID        string
	Code      string
	Name      string
	OwnerID   *string
	CreatedAt time.Time
}

// Message represents a persisted chat message.
type Message struct {
	ID        string
	RoomID    string
	SenderID  string
	Body      string
	CreatedAt time.Time
}

// MessageWithSender is a message joined with its sender's display fields.
type MessageWithSender struct {
	Message
	Sender User
}

// Board holds the persisted raster snapshot of a room's canvas.
type Board struct {
	RoomID    string
	Snapshot  string
	UpdatedBy *string
	UpdatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user.
	CreateUser(ctx context.Context, username, avatar string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// RoomStore handles room and participant persistence.
type RoomStore interface {
	// CreateRoom creates a room, registers the owner as a participant and
	// creates an empty board for it.
	CreateRoom(ctx context.Context, code, name string, ownerID *string) (*Room, error)

	// GetRoomByCode retrieves a room by its short code.
	GetRoomByCode(ctx context.Context, code string) (*Room, error)

	// AddParticipant authorizes a user for a room.
	AddParticipant(ctx context.Context, roomID, userID string) error

	// IsParticipant checks whether the user is authorized for the room.
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)

	// ListParticipants lists authorized user IDs of a room.
	ListParticipants(ctx context.Context, roomID string) ([]string, error)
}

// MessageStore handles chat message persistence.
type MessageStore interface {
	// CreateMessage persists a message. ID and CreatedAt are assigned when empty.
	CreateMessage(ctx context.Context, msg *Message) error

	// GetMessageWithSender re-reads a message joined with sender display fields.
	GetMessageWithSender(ctx context.Context, id string) (*MessageWithSender, error)

	// ListMessages returns up to limit most recent messages of a room, oldest first.
	ListMessages(ctx context.Context, roomID string, limit int) ([]*MessageWithSender, error)
}

// BoardStore handles board snapshot persistence.
type BoardStore interface {
	// GetBoard retrieves the board of a room.
	GetBoard(ctx context.Context, roomID string) (*Board, error)

	// SaveBoard replaces the board snapshot.
	SaveBoard(ctx context.Context, roomID, snapshot, actorID string) error

	// ClearBoard resets the board snapshot to empty.
	ClearBoard(ctx context.Context, roomID, actorID string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore
	BoardStore

	// Close closes the underlying database connection.
	Close() error
}
