package domain

import "time"

// Participant represents one quiz-taker as seen on the admin push stream.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Active bool   `json:"active"`
}

// Question is the prompt currently shown to a participant. Alternatives are
// referenced by zero-based index; CorrectAnswer points into them.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Alternatives  []string `json:"alternatives"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Valid reports whether the correct-answer index points at an alternative.
func (q Question) Valid() bool {
	return len(q.Alternatives) > 0 && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Alternatives)
}

// AnswerSubmission is the payload sent to the answer command endpoint.
// SelectedAnswer is nil when the participant never chose an alternative.
type AnswerSubmission struct {
	QuestionID     int  `json:"questionId"`
	SelectedAnswer *int `json:"selectedAnswer"`
	TimeUsed       int  `json:"timeUsed"`
}

// Outcome classifies a finished question for display.
type Outcome string

const (
	// OutcomeNone means no result is available yet.
	OutcomeNone Outcome = ""
	// OutcomeCorrect means the submitted answer matched the correct index.
	OutcomeCorrect Outcome = "correct"
	// OutcomeIncorrect means a wrong choice was submitted or stood at timeout.
	OutcomeIncorrect Outcome = "incorrect"
	// OutcomeTimeout means time ran out with no alternative selected.
	OutcomeTimeout Outcome = "timeout"
)

// LeaderboardSnapshot captures the full roster at a point in time so a
// restarted admin console can restore historical standings.
type LeaderboardSnapshot struct {
	SessionID    string        `json:"sessionId"`
	Participants []Participant `json:"participants"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
