package memory

import (
	"context"
	"testing"

	"brainup-client/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, "default"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	snap := domain.LeaderboardSnapshot{
		SessionID:    "default",
		Participants: []domain.Participant{{ID: "p1", Name: "Alice", Score: 4}},
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.Load(ctx, "default")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(loaded.Participants) != 1 || loaded.Participants[0].Name != "Alice" {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
}
