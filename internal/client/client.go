// Package client is the consuming side of the messaging core: it keeps
// at most one live connection per Manager, re-dials on unexpected drops
// and exposes a send/receive facade decoupled from connection identity.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wirenest/roomcast/internal/config"
	"github.com/wirenest/roomcast/internal/core"
)

// Connection states.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

// Built-in signal names, dispatched through the same listener map as
// application events.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"
)

var ErrNotConnected = errors.New("not connected")

// Handler receives the payload of one event. Registering a handler for
// an event name replaces the previous one; listeners never stack.
type Handler func(payload json.RawMessage)

type Options struct {
	// URL of the chat endpoint, e.g. "ws://localhost:8080/ws/chat".
	URL string
	// MaxAttempts bounds each (re)connect cycle, initial dial included.
	MaxAttempts int
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	// WriteTimeout bounds each outbound write. Zero means 5s.
	WriteTimeout time.Duration
}

// Manager guards a single connection slot. Connect while a connection is
// live reuses it instead of opening a second one.
type Manager struct {
	opts Options

	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	handlers   map[string]Handler
	room       string
	credential string
	closing    bool
	cancelDial context.CancelFunc
}

// FromConfig builds a Manager with the service's client settings.
func FromConfig(cfg config.ClientConfig, endpoint string) *Manager {
	return New(Options{
		URL:         endpoint,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  time.Duration(cfg.RetryDelay) * time.Millisecond,
	})
}

func New(opts Options) *Manager {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Manager{
		opts:     opts,
		handlers: make(map[string]Handler),
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect dials the room endpoint. Idempotent: when a connection is
// already live (or being established) it returns nil without dialing.
func (m *Manager) Connect(ctx context.Context, roomID, credential string) error {
	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		return nil
	}
	m.state = Connecting
	m.room = roomID
	m.credential = credential
	m.closing = false
	dialCtx, cancel := context.WithCancel(ctx)
	m.cancelDial = cancel
	m.mu.Unlock()

	conn, err := m.dialWithRetry(dialCtx)
	cancel()
	if err != nil {
		m.mu.Lock()
		m.state = Disconnected
		m.mu.Unlock()
		return err
	}

	// Disconnect may have raced the dial; honor the teardown.
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	m.conn = conn
	m.state = Connected
	m.mu.Unlock()

	m.emit(EventConnect, nil)
	go m.readLoop(ctx, conn)
	return nil
}

// Send marshals and writes one event envelope.
func (m *Manager) Send(event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	frame, err := core.Envelope{Event: event, Payload: body}.Encode()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connected || m.conn == nil {
		return ErrNotConnected
	}
	_ = m.conn.SetWriteDeadline(time.Now().Add(m.opts.WriteTimeout))
	return m.conn.WriteMessage(websocket.TextMessage, frame)
}

// On registers the single active listener for an event name.
func (m *Manager) On(event string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = h
}

// Off removes the listener for an event name.
func (m *Manager) Off(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, event)
}

// Disconnect closes the connection, clears every registered listener and
// frees the slot so a later Connect starts fresh.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.state == Disconnected {
		m.mu.Unlock()
		return
	}
	m.closing = true
	conn := m.conn
	m.conn = nil
	m.state = Disconnected
	m.room = ""
	m.credential = ""
	cancelDial := m.cancelDial
	m.mu.Unlock()

	// Abort any (re)connect cycle still dialing.
	if cancelDial != nil {
		cancelDial()
	}

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}

	m.emit(EventDisconnect, nil)

	m.mu.Lock()
	m.handlers = make(map[string]Handler)
	m.mu.Unlock()
}

func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.onDrop(ctx, conn, err)
			return
		}
		var env core.Envelope
		if jerr := json.Unmarshal(data, &env); jerr != nil || env.Event == "" {
			log.Debug().Str("module", "client").Err(jerr).Msg("bad frame")
			continue
		}
		m.emit(env.Event, env.Payload)
	}
}

// onDrop handles a read failure: deliberate disconnects end the loop,
// anything else enters the bounded reconnect cycle.
func (m *Manager) onDrop(ctx context.Context, conn *websocket.Conn, cause error) {
	m.mu.Lock()
	if m.closing || m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = Reconnecting
	dialCtx, cancel := context.WithCancel(ctx)
	m.cancelDial = cancel
	m.mu.Unlock()

	log.Warn().Str("module", "client").Err(cause).Msg("connection lost, reconnecting")
	m.emit(EventDisconnect, nil)

	next, err := m.dialWithRetry(dialCtx)
	cancel()
	if err != nil {
		m.mu.Lock()
		m.state = Disconnected
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		_ = next.Close()
		return
	}
	m.conn = next
	m.state = Connected
	m.mu.Unlock()

	m.emit(EventConnect, nil)
	go m.readLoop(ctx, next)
}

// dialWithRetry attempts up to MaxAttempts dials, RetryDelay apart.
// Exhausting the bound surfaces exactly one connect_error signal.
func (m *Manager) dialWithRetry(ctx context.Context) (*websocket.Conn, error) {
	m.mu.Lock()
	endpoint, err := m.endpoint()
	m.mu.Unlock()
	if err != nil {
		m.emitError(err)
		return nil, err
	}

	var conn *websocket.Conn
	operation := func() error {
		c, _, derr := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
		if derr != nil {
			return derr
		}
		conn = c
		return nil
	}

	strategy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(m.opts.RetryDelay),
			uint64(m.opts.MaxAttempts-1),
		),
		ctx,
	)

	if err := backoff.RetryNotify(operation, strategy, func(err error, d time.Duration) {
		log.Debug().Str("module", "client").Err(err).Dur("next_in", d).Msg("dial failed, retrying")
	}); err != nil {
		// A cycle aborted by Disconnect is a teardown, not a failure.
		m.mu.Lock()
		deliberate := m.closing
		m.mu.Unlock()
		if !deliberate {
			m.emitError(err)
		}
		return nil, err
	}
	return conn, nil
}

func (m *Manager) endpoint() (string, error) {
	u, err := url.Parse(m.opts.URL)
	if err != nil {
		return "", fmt.Errorf("bad endpoint url: %w", err)
	}
	q := u.Query()
	q.Set("roomId", m.room)
	q.Set("token", m.credential)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (m *Manager) emit(event string, payload json.RawMessage) {
	m.mu.Lock()
	h := m.handlers[event]
	m.mu.Unlock()
	if h != nil {
		h(payload)
	}
}

func (m *Manager) emitError(err error) {
	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	m.emit(EventConnectError, body)
}
