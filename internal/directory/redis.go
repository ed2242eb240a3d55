package directory

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/wirenest/roomcast/internal/domain"
)

// Redis reads the project directory the CRUD application maintains:
// a hash per room for metadata and a set per room for member user ids.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func roomKey(id domain.RoomID) string    { return fmt.Sprintf("room:%s", id) }
func membersKey(id domain.RoomID) string { return fmt.Sprintf("room:%s:members", id) }

func (r *Redis) Lookup(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	fields, err := r.client.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return domain.Room{}, fmt.Errorf("directory lookup: %w", err)
	}
	if len(fields) == 0 {
		return domain.Room{}, ErrNotFound
	}
	return domain.Room{ID: id, Name: fields["name"]}, nil
}

func (r *Redis) IsMember(ctx context.Context, user domain.UserID, room domain.RoomID) (bool, error) {
	ok, err := r.client.SIsMember(ctx, membersKey(room), string(user)).Result()
	if err != nil {
		return false, fmt.Errorf("directory membership: %w", err)
	}
	return ok, nil
}
