package core

// Frame is a marshaled wire payload ready for transport.
type Frame []byte

type SessionID string

// Sender abstracts the outbound side of a member's transport.
// Owned by the adapter; the adapter must Close() it.
type Sender interface {
	// TrySend enqueues a frame without blocking. Returns an error when the
	// peer's outbound queue is full or the transport is gone; the caller
	// drops the frame for that recipient only.
	TrySend(Frame) error
	Close()
}

// DeliveryResult reports fan-out stats back to the router.
// Dropped recipients are counted, never retried.
type DeliveryResult struct {
	Sent    int
	Dropped int
}

// RoomInfo is a read-only view for APIs (no transport, no member identities).
type RoomInfo struct {
	ID          string `json:"id"`
	MemberCount int    `json:"member_count"`
}
