package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized marks a 401 from the backend: the session token is no
	// longer valid. The client has already fired the unauthorized hook by the
	// time a caller sees this.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrInvalidCredentials is returned by Login when the backend rejects the
	// email/password pair.
	ErrInvalidCredentials = errors.New("api: invalid credentials")
)

// Error carries a backend rejection. Message is the backend's own text so it
// can be shown verbatim; when the backend sent none, Error() falls back to a
// generic line.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
