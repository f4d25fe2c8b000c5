package roster

import (
	"encoding/json"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"brainup-client/internal/domain"
)

// Roster is the admin-side view of every participant observed on the push
// stream. The stream is at-least-once with no ordering across reconnects, so
// joins are idempotent and exits only flip the active flag; nothing is ever
// removed. All mutation goes through Apply so the invariants hold at a single
// choke point.
type Roster struct {
	session string

	mu      sync.RWMutex
	order   []string
	entries map[string]*domain.Participant
}

func New(session string) *Roster {
	return &Roster{
		session: session,
		entries: make(map[string]*domain.Participant),
	}
}

// Apply dispatches one stream event to the matching handler. Unrecognized
// kinds are logged and ignored.
func (r *Roster) Apply(ev domain.Event) {
	switch ev.Kind {
	case domain.EventPlayerJoined:
		r.ApplyJoined(ev.Data)
	case domain.EventPlayerExited:
		r.ApplyExited(ev.Data)
	default:
		log.Debug().Str("event", string(ev.Kind)).Msg("ignoring unhandled stream event")
	}
}

// ApplyJoined records a participant from a player.joined payload. A replayed
// join for an id that is already active changes nothing; a join for an
// inactive id is a reconnect and refreshes name, score, and the active flag.
func (r *Roster) ApplyJoined(data []byte) {
	p, ok := parseParticipant(data, domain.EventPlayerJoined)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, known := r.entries[p.ID]
	if !known {
		r.entries[p.ID] = &p
		r.order = append(r.order, p.ID)
		return
	}
	if existing.Active {
		return
	}
	existing.Name = p.Name
	existing.Score = p.Score
	existing.Active = true
}

// ApplyExited marks a participant offline. Name and score are preserved for
// the historical leaderboard; an unknown id is a no-op.
func (r *Roster) ApplyExited(data []byte) {
	p, ok := parseParticipant(data, domain.EventPlayerExited)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, known := r.entries[p.ID]; known {
		existing.Active = false
	}
}

func parseParticipant(data []byte, kind domain.EventKind) (domain.Participant, bool) {
	var p domain.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("event", string(kind)).Msg("discarding malformed participant payload")
		return domain.Participant{}, false
	}
	if p.ID == "" {
		log.Warn().Str("event", string(kind)).Msg("discarding participant payload without id")
		return domain.Participant{}, false
	}
	return p, true
}

// Leaderboard returns every participant sorted by score descending, ties in
// arrival order. It is recomputed on every call, never cached.
func (r *Roster) Leaderboard() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Len reports the total number of participants ever seen.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// OnlineCount reports how many participants are currently connected.
func (r *Roster) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.entries {
		if p.Active {
			n++
		}
	}
	return n
}

// AverageScore is the mean score across the whole roster, active or not,
// rounded to one decimal place. An empty roster averages to 0.
func (r *Roster) AverageScore() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.entries) == 0 {
		return 0
	}
	sum := 0
	for _, p := range r.entries {
		sum += p.Score
	}
	avg := float64(sum) / float64(len(r.entries))
	return math.Round(avg*10) / 10
}

// Snapshot captures the roster in arrival order for persistence.
func (r *Roster) Snapshot() domain.LeaderboardSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	participants := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		participants = append(participants, *r.entries[id])
	}
	return domain.LeaderboardSnapshot{
		SessionID:    r.session,
		Participants: participants,
		UpdatedAt:    time.Now(),
	}
}

// Restore seeds the roster from a stored snapshot. Restored participants
// start inactive until their next joined event. Ids already present win over
// the snapshot.
func (r *Roster) Restore(snap domain.LeaderboardSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range snap.Participants {
		if _, known := r.entries[p.ID]; known {
			continue
		}
		restored := p
		restored.Active = false
		r.entries[p.ID] = &restored
		r.order = append(r.order, p.ID)
	}
}
