package store

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	// ErrConflict signals a uniqueness violation (username, email, or patient idx).
	ErrConflict = errors.New("already exists")
	// ErrNotFound covers both "no such row" and "row owned by someone else"; callers
	// must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is the single failure mode of Authenticate, regardless of
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
