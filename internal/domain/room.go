package domain

import "errors"

const MaxRoomIDLen = 64

var ErrBadRoomID = errors.New("malformed room id")

type RoomID string

// Room is the fan-out scope for events, keyed by an externally issued
// project identifier. Metadata comes from the project directory.
type Room struct {
	ID   RoomID `json:"id"`
	Name string `json:"name,omitempty"`
}

// ValidateRoomID checks the identifier syntactically, before any lookup.
// Accepts 1..MaxRoomIDLen chars of [A-Za-z0-9_-], which covers both
// hex object ids and human-assigned slugs.
func ValidateRoomID(raw string) (RoomID, error) {
	if len(raw) == 0 || len(raw) > MaxRoomIDLen {
		return "", ErrBadRoomID
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return "", ErrBadRoomID
		}
	}
	return RoomID(raw), nil
}
