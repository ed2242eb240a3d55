package core

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/wirenest/roomcast/internal/domain"
)

// Connection states, in lifecycle order.
const (
	StateConnecting int32 = iota
	StateOpen
	StateClosing
	StateClosed
)

// Session is one admitted, live connection bound to a user identity and a
// room. The transport layer owns it for its lifetime; the registry only
// references it.
type Session struct {
	ID    SessionID
	User  domain.User
	Room  domain.RoomID
	state atomic.Int32

	transport Sender
}

func NewSession(user domain.User, room domain.RoomID, transport Sender) *Session {
	s := &Session{
		ID:        SessionID(uuid.NewString()),
		User:      user,
		Room:      room,
		transport: transport,
	}
	s.state.Store(StateConnecting)
	return s
}

func (s *Session) State() int32 { return s.state.Load() }

// MarkOpen flips the session into the open state once pumps are running.
func (s *Session) MarkOpen() { s.state.CompareAndSwap(StateConnecting, StateOpen) }

// TrySend forwards to the transport unless the session is already closing.
func (s *Session) TrySend(f Frame) error {
	if s.state.Load() >= StateClosing {
		return ErrSessionClosed
	}
	return s.transport.TrySend(f)
}

// Close is idempotent and safe from any goroutine.
func (s *Session) Close() {
	if !s.state.CompareAndSwap(StateOpen, StateClosing) &&
		!s.state.CompareAndSwap(StateConnecting, StateClosing) {
		return
	}
	s.transport.Close()
	s.state.Store(StateClosed)
}
