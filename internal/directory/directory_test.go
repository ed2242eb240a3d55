package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirenest/roomcast/internal/domain"
)

func TestMemoryLookup(t *testing.T) {
	dir := NewMemory()
	dir.AddRoom(domain.Room{ID: "proj1", Name: "Project One"}, "alice")

	room, err := dir.Lookup(context.Background(), "proj1")
	require.NoError(t, err)
	assert.Equal(t, "Project One", room.Name)

	_, err = dir.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryMembership(t *testing.T) {
	dir := NewMemory()
	dir.AddRoom(domain.Room{ID: "proj1"}, "alice")
	dir.AddMember("proj1", "bob")

	for user, want := range map[domain.UserID]bool{
		"alice": true,
		"bob":   true,
		"eve":   false,
	} {
		ok, err := dir.IsMember(context.Background(), user, "proj1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "user %s", user)
	}

	// Membership in an unknown room is simply false, not an error.
	ok, err := dir.IsMember(context.Background(), "alice", "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}
