package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"brainup-client/internal/domain"
)

// SnapshotStore persists leaderboard snapshots in Redis so a restarted admin
// console can restore historical standings. Entries expire after the
// configured TTL; a stale board is worse than an empty one.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

func (s *SnapshotStore) Save(ctx context.Context, snap domain.LeaderboardSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(snap.SessionID), data, s.ttl).Err()
}

func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (domain.LeaderboardSnapshot, bool, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.LeaderboardSnapshot{}, false, nil
	}
	if err != nil {
		return domain.LeaderboardSnapshot{}, false, err
	}

	var snap domain.LeaderboardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.LeaderboardSnapshot{}, false, err
	}
	return snap, true, nil
}

func (s *SnapshotStore) key(sessionID string) string {
	return "quiz:roster:" + sessionID
}
