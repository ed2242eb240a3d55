package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wirenest/roomcast/internal/domain"
)

// room is a threadsafe in-memory member set. It never closes
// adapter-owned resources.
type room struct {
	id      domain.RoomID
	mu      sync.RWMutex
	members map[SessionID]*Session
}

func newRoom(id domain.RoomID) *room {
	return &room{id: id, members: make(map[SessionID]*Session)}
}

func (r *room) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[s.ID] = s
}

// remove reports whether the session was present.
func (r *room) remove(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		return false
	}
	delete(r.members, sid)
	return true
}

func (r *room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *room) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.members))
	for _, s := range r.members {
		out = append(out, s)
	}
	return out
}

// Registry maps room ids to the sessions currently connected to them.
// Rooms are created lazily on first join and removed when the last
// member leaves. The registry lock serializes room create/remove; each
// room's own lock serializes member-set mutation.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*room)}
}

// Join registers the session into its room, creating the room if absent.
// A session belongs to at most one room; joining removes it from any
// previous room first.
func (g *Registry) Join(roomID domain.RoomID, s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, r := range g.rooms {
		if id == roomID {
			continue
		}
		if r.remove(s.ID) && r.size() == 0 {
			delete(g.rooms, id)
		}
	}
	r, ok := g.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		g.rooms[roomID] = r
	}
	r.add(s)
	log.Info().Str("module", "core.registry").Str("sid", string(s.ID)).
		Str("user", string(s.User.ID)).Str("room", string(roomID)).Msg("member joined")
}

// Leave removes the session from the room and deallocates the room when
// its member set becomes empty. Removing a session that is not present
// is a no-op, which guards against double-disconnect races.
func (g *Registry) Leave(roomID domain.RoomID, s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[roomID]
	if !ok {
		return
	}
	if !r.remove(s.ID) {
		return
	}
	if r.size() == 0 {
		delete(g.rooms, roomID)
	}
	log.Info().Str("module", "core.registry").Str("sid", string(s.ID)).
		Str("room", string(roomID)).Msg("member left")
}

// MembersOf returns a snapshot of the room's member set. Unknown rooms
// yield an empty slice.
func (g *Registry) MembersOf(roomID domain.RoomID) []*Session {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.snapshot()
}

// Broadcast fans a frame out to the room's members. Delivery is
// best-effort: recipients whose queue is full are counted as dropped and
// skipped, never retried.
func (g *Registry) Broadcast(roomID domain.RoomID, from SessionID, f Frame, excludeSender bool) DeliveryResult {
	res := DeliveryResult{}
	for _, m := range g.MembersOf(roomID) {
		if excludeSender && m.ID == from {
			continue
		}
		if err := m.TrySend(f); err != nil {
			res.Dropped++
			continue
		}
		res.Sent++
	}
	log.Debug().Str("module", "core.registry").Str("room", string(roomID)).
		Str("from", string(from)).Int("sent", res.Sent).Int("dropped", res.Dropped).Msg("broadcast result")
	return res
}

// RoomCount reports the current member count without copying the set.
func (g *Registry) RoomCount(roomID domain.RoomID) int {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if !ok {
		return 0
	}
	return r.size()
}

// UserConnected reports whether the user still has a live session in
// any room. Per-user cleanup must wait until this turns false.
func (g *Registry) UserConnected(uid domain.UserID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, r := range g.rooms {
		for _, s := range r.snapshot() {
			if s.User.ID == uid {
				return true
			}
		}
	}
	return false
}

// Rooms lists live rooms for the info API.
func (g *Registry) Rooms() []RoomInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]RoomInfo, 0, len(g.rooms))
	for id, r := range g.rooms {
		out = append(out, RoomInfo{ID: string(id), MemberCount: r.size()})
	}
	return out
}
