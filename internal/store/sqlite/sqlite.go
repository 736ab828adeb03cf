package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/wireboard-server/internal/store"
)

//go:embed schema.sql
var schema string

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema or seed rows.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate applies the embedded schema. It is idempotent.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ==== UserStore implementation ====

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, avatar string) (*store.User, error) {
	query := `
		INSERT INTO users (id, username, avatar, created_at)
		VALUES (?, ?, ?, ?)
	`
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, query, id, username, avatar, s.now()); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user: %w", store.ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, username, avatar, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Avatar,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ==== RoomStore implementation ====

// CreateRoom creates a room with its owner as first participant and an empty board.
func (s *SQLiteStore) CreateRoom(ctx context.Context, code, name string, ownerID *string) (*store.Room, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := s.now()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rooms (id, code, name, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, code, name, ownerID, now); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert room: %w", store.ErrConflict)
		}
		return nil, fmt.Errorf("insert room: %w", err)
	}

	if ownerID != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO room_participants (room_id, user_id, added_at)
			VALUES (?, ?, ?)
		`, id, *ownerID, now); err != nil {
			return nil, fmt.Errorf("insert owner participant: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO boards (room_id, snapshot, updated_by, updated_at)
		VALUES (?, '', ?, ?)
	`, id, ownerID, now); err != nil {
		return nil, fmt.Errorf("insert board: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.GetRoomByCode(ctx, code)
}

// GetRoomByCode retrieves a room by its short code.
func (s *SQLiteStore) GetRoomByCode(ctx context.Context, code string) (*store.Room, error) {
	query := `
		SELECT id, code, name, owner_id, created_at
		FROM rooms
		WHERE code = ?
	`
	var room store.Room
	var ownerID sql.NullString
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&room.ID,
		&room.Code,
		&room.Name,
		&ownerID,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %s: %w", code, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query room: %w", err)
	}

	if ownerID.Valid {
		room.OwnerID = &ownerID.String
	}

	return &room, nil
}

// AddParticipant authorizes a user for a room. Adding twice is a no-op.
func (s *SQLiteStore) AddParticipant(ctx context.Context, roomID, userID string) error {
	query := `
		INSERT OR IGNORE INTO room_participants (room_id, user_id, added_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, roomID, userID, s.now()); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// IsParticipant checks whether the user is authorized for the room.
func (s *SQLiteStore) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM room_participants WHERE room_id = ? AND user_id = ?
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, roomID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return exists, nil
}

// ListParticipants lists authorized user IDs of a room.
func (s *SQLiteStore) ListParticipants(ctx context.Context, roomID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM room_participants
		WHERE room_id = ?
		ORDER BY added_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	return userIDs, rows.Err()
}

// ==== MessageStore implementation ====

// CreateMessage persists a message. ID and CreatedAt are assigned when empty.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}

	query := `
		INSERT INTO messages (id, room_id, sender_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, msg.ID, msg.RoomID, msg.SenderID, msg.Body, msg.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

const messageWithSenderColumns = `
	m.id, m.room_id, m.sender_id, m.body, m.created_at,
	u.id, u.username, u.avatar, u.created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessageWithSender(row rowScanner) (*store.MessageWithSender, error) {
	var msg store.MessageWithSender
	err := row.Scan(
		&msg.ID,
		&msg.RoomID,
		&msg.SenderID,
		&msg.Body,
		&msg.CreatedAt,
		&msg.Sender.ID,
		&msg.Sender.Username,
		&msg.Sender.Avatar,
		&msg.Sender.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetMessageWithSender re-reads a message joined with sender display fields.
func (s *SQLiteStore) GetMessageWithSender(ctx context.Context, id string) (*store.MessageWithSender, error) {
	query := `SELECT ` + messageWithSenderColumns + `
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = ?
	`
	msg, err := scanMessageWithSender(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return msg, nil
}

// ListMessages returns up to limit most recent messages of a room, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, roomID string, limit int) ([]*store.MessageWithSender, error) {
	query := `SELECT ` + messageWithSenderColumns + `
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = ?
		ORDER BY m.created_at DESC, m.rowid DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.MessageWithSender
	for rows.Next() {
		msg, err := scanMessageWithSender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

// ==== BoardStore implementation ====

// GetBoard retrieves the board of a room.
func (s *SQLiteStore) GetBoard(ctx context.Context, roomID string) (*store.Board, error) {
	query := `
		SELECT room_id, snapshot, updated_by, updated_at
		FROM boards
		WHERE room_id = ?
	`
	var board store.Board
	var updatedBy sql.NullString
	err := s.db.QueryRowContext(ctx, query, roomID).Scan(
		&board.RoomID,
		&board.Snapshot,
		&updatedBy,
		&board.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("board %s: %w", roomID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query board: %w", err)
	}
	if updatedBy.Valid {
		board.UpdatedBy = &updatedBy.String
	}
	return &board, nil
}

// SaveBoard replaces the board snapshot.
func (s *SQLiteStore) SaveBoard(ctx context.Context, roomID, snapshot, actorID string) error {
	return s.updateBoard(ctx, roomID, snapshot, actorID)
}

// ClearBoard resets the board snapshot to empty.
func (s *SQLiteStore) ClearBoard(ctx context.Context, roomID, actorID string) error {
	return s.updateBoard(ctx, roomID, "", actorID)
}

func (s *SQLiteStore) updateBoard(ctx context.Context, roomID, snapshot, actorID string) error {
	query := `
		UPDATE boards
		SET snapshot = ?, updated_by = ?, updated_at = ?
		WHERE room_id = ?
	`
	result, err := s.db.ExecContext(ctx, query, snapshot, actorID, s.now(), roomID)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("board %s: %w", roomID, store.ErrNotFound)
	}
	return nil
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
