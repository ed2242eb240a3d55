// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxNameLen = 72

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
)

type UserID string

// User is the identity resolved by the token verifier at handshake time.
// It is never taken from client payloads after the handshake.
type User struct {
	ID    UserID `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
}

// NewUser validates the display name before an identity enters the system.
func NewUser(id UserID, email, name string) (*User, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &User{ID: id, Email: email, Name: name}, nil
}
