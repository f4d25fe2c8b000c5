package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"brainup-client/internal/domain"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSnapshotStore(client, time.Minute)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, "default"); err != nil || ok {
		t.Fatalf("expected no snapshot yet, ok=%v err=%v", ok, err)
	}

	snap := domain.LeaderboardSnapshot{
		SessionID: "default",
		Participants: []domain.Participant{
			{ID: "p1", Name: "Alice", Score: 4, Active: false},
			{ID: "p2", Name: "Bob", Score: 6, Active: true},
		},
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:roster:default") {
		t.Fatalf("expected redis key to be set")
	}

	loaded, ok, err := store.Load(ctx, "default")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(loaded.Participants) != 2 || loaded.Participants[1].Score != 6 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
}

func TestSnapshotExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSnapshotStore(client, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, domain.LeaderboardSnapshot{SessionID: "default"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := store.Load(ctx, "default"); err != nil || ok {
		t.Fatalf("expected snapshot expired, ok=%v err=%v", ok, err)
	}
}
