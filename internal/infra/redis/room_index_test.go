package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRoomIndexRecordsMarkers(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	index := NewRoomIndex(client, time.Minute)

	if err := index.RecordRoom(context.Background(), "ABC123", "sess-1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	if !mr.Exists("room:live:ABC123") {
		t.Fatalf("expected liveness marker to be set")
	}
	members, err := client.SMembers(context.Background(), "room:creator:sess-1").Result()
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 1 || members[0] != "ABC123" {
		t.Fatalf("expected creator set with ABC123, got %v", members)
	}
}
