package core

import "errors"

var (
	// ErrBackpressure means a recipient's outbound queue is full.
	ErrBackpressure = errors.New("backpressure: send queue full")
	// ErrSessionClosed means the session is closing or closed.
	ErrSessionClosed = errors.New("session closed")
)
