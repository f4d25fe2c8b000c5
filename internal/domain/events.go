package domain

import "encoding/json"

// EventKind names a server-push notification type.
type EventKind string

const (
	// EventPlayerJoined carries a Participant that entered the session.
	EventPlayerJoined EventKind = "player.joined"
	// EventPlayerExited carries a Participant that left; only the id is honored.
	EventPlayerExited EventKind = "player.exited"
	// EventQuestionChanged carries the Question pushed to participants.
	EventQuestionChanged EventKind = "question.changed"
)

// Event is one envelope off the push stream. Data stays raw until the
// consumer knows the kind; unrecognized kinds are tolerated.
type Event struct {
	Kind EventKind       `json:"event"`
	Data json.RawMessage `json:"data"`
}
