package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirenest/roomcast/internal/domain"
)

type fakeSender struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
}

func (f *fakeSender) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSender) Close() {}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newTestSession(name string, room domain.RoomID) (*Session, *fakeSender) {
	tr := &fakeSender{}
	s := NewSession(domain.User{ID: domain.UserID(name), Name: name}, room, tr)
	s.MarkOpen()
	return s, tr
}

func TestJoinCreatesRoomLazily(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.Rooms())

	s, _ := newTestSession("alice", "proj1")
	reg.Join("proj1", s)

	require.Len(t, reg.Rooms(), 1)
	assert.Equal(t, 1, reg.RoomCount("proj1"))
}

func TestConcurrentJoinsSameNewRoom(t *testing.T) {
	const n = 64
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _ := newTestSession(fmt.Sprintf("user-%d", i), "proj1")
			reg.Join("proj1", s)
		}(i)
	}
	wg.Wait()

	// Exactly one room, no lost registrations.
	require.Len(t, reg.Rooms(), 1)
	assert.Equal(t, n, reg.RoomCount("proj1"))
	assert.Len(t, reg.MembersOf("proj1"), n)
}

func TestLeaveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a, _ := newTestSession("alice", "proj1")
	b, _ := newTestSession("bob", "proj1")
	reg.Join("proj1", a)
	reg.Join("proj1", b)

	reg.Leave("proj1", a)
	reg.Leave("proj1", a) // double-disconnect race: no-op

	assert.Equal(t, 1, reg.RoomCount("proj1"))
	assert.Len(t, reg.MembersOf("proj1"), 1)
}

func TestEmptyRoomIsRemoved(t *testing.T) {
	reg := NewRegistry()
	s, _ := newTestSession("alice", "proj1")
	reg.Join("proj1", s)
	reg.Leave("proj1", s)

	assert.Empty(t, reg.MembersOf("proj1"))
	assert.Empty(t, reg.Rooms(), "empty room entry must not leak")
}

func TestSessionBelongsToAtMostOneRoom(t *testing.T) {
	reg := NewRegistry()
	s, _ := newTestSession("alice", "proj1")
	reg.Join("proj1", s)
	reg.Join("proj2", s)

	assert.Equal(t, 0, reg.RoomCount("proj1"))
	assert.Equal(t, 1, reg.RoomCount("proj2"))
	require.Len(t, reg.Rooms(), 1)
	assert.Equal(t, "proj2", reg.Rooms()[0].ID)
}

func TestBroadcastFanout(t *testing.T) {
	reg := NewRegistry()
	a, trA := newTestSession("a", "proj1")
	b, trB := newTestSession("b", "proj1")
	c, trC := newTestSession("c", "proj1")
	reg.Join("proj1", a)
	reg.Join("proj1", b)
	reg.Join("proj1", c)

	res := reg.Broadcast("proj1", a.ID, Frame(`{"event":"x"}`), true)
	assert.Equal(t, DeliveryResult{Sent: 2}, res)
	assert.Equal(t, 0, trA.count(), "excludeSender must skip the source")
	assert.Equal(t, 1, trB.count())
	assert.Equal(t, 1, trC.count())

	res = reg.Broadcast("proj1", a.ID, Frame(`{"event":"y"}`), false)
	assert.Equal(t, DeliveryResult{Sent: 3}, res)
	assert.Equal(t, 1, trA.count())
}

func TestBroadcastDropsSlowRecipients(t *testing.T) {
	reg := NewRegistry()
	a, _ := newTestSession("a", "proj1")
	b, trB := newTestSession("b", "proj1")
	c, trC := newTestSession("c", "proj1")
	trB.full = true
	reg.Join("proj1", a)
	reg.Join("proj1", b)
	reg.Join("proj1", c)

	res := reg.Broadcast("proj1", a.ID, Frame(`{}`), true)
	assert.Equal(t, DeliveryResult{Sent: 1, Dropped: 1}, res)
	assert.Equal(t, 0, trB.count())
	assert.Equal(t, 1, trC.count(), "a slow recipient must not abort the rest of the fan-out")
}

func TestUserConnectedAcrossRooms(t *testing.T) {
	reg := NewRegistry()
	s1, _ := newTestSession("alice", "proj1")
	s2, _ := newTestSession("alice", "proj2")
	reg.Join("proj1", s1)
	reg.Join("proj2", s2)

	assert.True(t, reg.UserConnected("alice"))

	reg.Leave("proj1", s1)
	assert.True(t, reg.UserConnected("alice"), "a second live session keeps the user connected")

	reg.Leave("proj2", s2)
	assert.False(t, reg.UserConnected("alice"))
	assert.False(t, reg.UserConnected("nobody"))
}

func TestClosedSessionRefusesFrames(t *testing.T) {
	s, _ := newTestSession("a", "proj1")
	s.Close()
	assert.ErrorIs(t, s.TrySend(Frame(`{}`)), ErrSessionClosed)
	assert.Equal(t, StateClosed, s.State())
}
