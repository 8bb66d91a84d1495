package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoomIndex mirrors room creation into Redis.
// Notes:
//   - The registry itself stays in-process; Redis only carries liveness
//     markers and the creator → codes set for external tooling.
//   - Markers expire on their own; rooms are never evicted in-process, so
//     the TTL is what an out-of-band reaper would key on.
type RoomIndex struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomIndex(client *redis.Client, ttl time.Duration) *RoomIndex {
	return &RoomIndex{client: client, ttl: ttl}
}

func (i *RoomIndex) RecordRoom(ctx context.Context, code, creatorSessionID string) error {
	pipe := i.client.Pipeline()
	pipe.Set(ctx, i.liveKey(code), "1", i.ttl)
	if creatorSessionID != "" {
		pipe.SAdd(ctx, i.creatorKey(creatorSessionID), code)
		pipe.Expire(ctx, i.creatorKey(creatorSessionID), i.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (i *RoomIndex) liveKey(code string) string {
	return "room:live:" + code
}

func (i *RoomIndex) creatorKey(sessionID string) string {
	return "room:creator:" + sessionID
}
