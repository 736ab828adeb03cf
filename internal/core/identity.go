package core

// Identity is an authenticated user as seen by the relay.
type Identity struct {
	UserID   string
	Username string
	Avatar   string
}
