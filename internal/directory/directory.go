// Package directory is the project-directory collaborator: room existence
// and room membership live outside this service.
package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/wirenest/roomcast/internal/domain"
)

var ErrNotFound = errors.New("room not found")

// Directory answers the two questions the handshake needs.
// Implementations may perform network I/O and must honor ctx.
type Directory interface {
	// Lookup resolves a room id to its metadata, or ErrNotFound.
	Lookup(ctx context.Context, id domain.RoomID) (domain.Room, error)
	// IsMember reports whether the user belongs to the room.
	IsMember(ctx context.Context, user domain.UserID, room domain.RoomID) (bool, error)
}

// Memory is an in-process Directory for tests and single-binary dev mode.
type Memory struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]domain.Room
	members map[domain.RoomID]map[domain.UserID]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		rooms:   make(map[domain.RoomID]domain.Room),
		members: make(map[domain.RoomID]map[domain.UserID]struct{}),
	}
}

func (m *Memory) AddRoom(room domain.Room, members ...domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	set := make(map[domain.UserID]struct{}, len(members))
	for _, u := range members {
		set[u] = struct{}{}
	}
	m.members[room.ID] = set
}

func (m *Memory) AddMember(room domain.RoomID, user domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if set, ok := m.members[room]; ok {
		set[user] = struct{}{}
	}
}

func (m *Memory) Lookup(_ context.Context, id domain.RoomID) (domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, ErrNotFound
	}
	return room, nil
}

func (m *Memory) IsMember(_ context.Context, user domain.UserID, room domain.RoomID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.members[room]
	if !ok {
		return false, nil
	}
	_, ok = set[user]
	return ok, nil
}
