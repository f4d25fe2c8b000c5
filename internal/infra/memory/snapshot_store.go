package memory

import (
	"context"
	"sync"

	"brainup-client/internal/domain"
)

// SnapshotStore keeps leaderboard snapshots in process memory. It is the
// default when no Redis is configured; history then lives only as long as the
// console run.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.LeaderboardSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]domain.LeaderboardSnapshot),
	}
}

func (s *SnapshotStore) Save(_ context.Context, snap domain.LeaderboardSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.SessionID] = snap
	return nil
}

func (s *SnapshotStore) Load(_ context.Context, sessionID string) (domain.LeaderboardSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[sessionID]
	return snap, ok, nil
}
