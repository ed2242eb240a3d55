package app

import "errors"

// Handshake rejection taxonomy. Callers need to distinguish these:
// re-login, request access, and fix-the-navigation are different
// client-side recovery paths.
var (
	ErrInvalidRoom  = errors.New("invalid room id")
	ErrRoomNotFound = errors.New("room not found")
	ErrMissingToken = errors.New("unauthorized: no token provided")
	ErrInvalidToken = errors.New("unauthorized: invalid token")
	ErrForbidden    = errors.New("forbidden: not a member of this room")
)

// RejectionReason labels a handshake error for metrics and close frames.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRoom):
		return "invalid_room"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "internal"
	}
}
