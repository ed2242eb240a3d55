package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wirenest/roomcast/internal/auth"
	"github.com/wirenest/roomcast/internal/core"
	"github.com/wirenest/roomcast/internal/directory"
	"github.com/wirenest/roomcast/internal/domain"
	"github.com/wirenest/roomcast/internal/metrics"
)

// Admission is the outcome of a successful authenticate-then-authorize
// sequence, before a transport is bound to it.
type Admission struct {
	User domain.User
	Room domain.Room
}

// Handshake runs once per incoming connection attempt.
type Handshake struct {
	Verifier  auth.Verifier
	Directory directory.Directory
	Registry  *core.Registry

	// Timeout bounds the wait on the external verifier and directory
	// calls; an unbounded wait leaks connections under collaborator
	// slowness.
	Timeout time.Duration

	// RequireMembership gates admission on room membership. See the
	// access-semantics note in DESIGN.md.
	RequireMembership bool
}

// Admit authenticates and authorizes one connection attempt, in order,
// short-circuiting on the first failure: room id syntax, room existence,
// credential presence, credential validity, room membership. A rejection
// never mutates the registry.
func (h *Handshake) Admit(ctx context.Context, rawToken, roomCandidate string) (*Admission, error) {
	roomID, err := domain.ValidateRoomID(roomCandidate)
	if err != nil {
		return nil, h.reject(fmt.Errorf("%w: %q", ErrInvalidRoom, roomCandidate))
	}

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	room, err := h.Directory.Lookup(ctx, roomID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, h.reject(fmt.Errorf("%w: %s", ErrRoomNotFound, roomID))
		}
		return nil, h.reject(fmt.Errorf("room lookup: %w", err))
	}

	if rawToken == "" {
		return nil, h.reject(ErrMissingToken)
	}
	user, err := h.Verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, h.reject(fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}

	if h.RequireMembership {
		ok, err := h.Directory.IsMember(ctx, user.ID, roomID)
		if err != nil {
			return nil, h.reject(fmt.Errorf("membership check: %w", err))
		}
		if !ok {
			return nil, h.reject(fmt.Errorf("%w: user %s room %s", ErrForbidden, user.ID, roomID))
		}
	}

	// The transport may have gone away while we waited on collaborators;
	// never admit a connection that no longer exists.
	if err := ctx.Err(); err != nil {
		return nil, h.reject(err)
	}

	return &Admission{User: user, Room: room}, nil
}

// Register binds a transport to an admission and registers the session
// into the room, creating the room entry if absent. Registration is
// atomic with respect to concurrent handshakes for the same room.
func (h *Handshake) Register(adm *Admission, transport core.Sender) *core.Session {
	sess := core.NewSession(adm.User, adm.Room.ID, transport)
	h.Registry.Join(adm.Room.ID, sess)
	sess.MarkOpen()
	metrics.AdmissionsTotal.Inc()
	metrics.ActiveSessions.Inc()
	return sess
}

// Release undoes Register on disconnect. Safe to call more than once.
func (h *Handshake) Release(sess *core.Session) {
	if sess.State() == core.StateClosed {
		return
	}
	h.Registry.Leave(sess.Room, sess)
	sess.Close()
	metrics.ActiveSessions.Dec()
}

func (h *Handshake) reject(err error) error {
	metrics.RejectionsTotal.WithLabelValues(RejectionReason(err)).Inc()
	log.Warn().Str("module", "app.handshake").Err(err).Msg("connection rejected")
	return err
}
