package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wirenest/roomcast/internal/core"
)

// wsConn pairs a websocket connection with its outbound queue. The queue
// is drained by a single write pump, which keeps per-sender delivery
// order intact for each recipient.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
		done: make(chan struct{}),
	}
}

// TrySend never blocks: a full queue means the recipient is too slow and
// the frame is dropped for it.
func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrSessionClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.conn.Close()
}
