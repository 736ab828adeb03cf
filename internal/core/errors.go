package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound  = "room_not_found"
	ErrCodeAccessDenied  = "access_denied"
	ErrCodeBoardNotFound = "board_not_found"
	ErrCodeJoinFailed    = "join_failed"
	ErrCodeSendFailed    = "send_failed"
	ErrCodeClearFailed   = "clear_failed"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnknownEvent  = "unknown_event"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeInternal      = "internal"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrBoardNotFound   = errors.New("board not found")
	ErrUnauthenticated = errors.New("authentication failed")
)

// CoreError wraps a code and the human-readable message delivered to the client.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// NewError builds a CoreError.
func NewError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

var (
	errRoomNotFound  = NewError(ErrCodeRoomNotFound, "Room not found")
	errAccessDenied  = NewError(ErrCodeAccessDenied, "Access denied")
	errBoardNotFound = NewError(ErrCodeBoardNotFound, "Board not found")
	errJoinFailed    = NewError(ErrCodeJoinFailed, "Failed to join room")
	errSendFailed    = NewError(ErrCodeSendFailed, "Failed to send message")
	errClearFailed   = NewError(ErrCodeClearFailed, "Failed to clear board")
	errUnknownEvent  = NewError(ErrCodeUnknownEvent, "Unknown event")
	errInternal      = NewError(ErrCodeInternal, "Internal server error")
)
