package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"brainup-client/internal/domain"
)

// State is the lifecycle phase of the current question.
type State int

const (
	// Waiting means no question is active.
	Waiting State = iota
	// Active means a question is shown and the countdown is running.
	Active
	// Answered means an answer was submitted or time expired.
	Answered
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Active:
		return "active"
	case Answered:
		return "answered"
	}
	return "unknown"
}

// Urgency is the derived display classification of remaining time.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
)

// Submitter sends the participant's answer to the command endpoint.
type Submitter interface {
	SubmitAnswer(ctx context.Context, sub domain.AnswerSubmission) error
}

// Machine drives one question at a time through Waiting -> Active -> Answered
// and owns the countdown. Every exit from Active cancels the ticker, and a
// tick that raced a transition sees stale state and does nothing, so a
// timeout can never fire against a question the participant already left.
type Machine struct {
	submitter Submitter
	clock     clockwork.Clock
	duration  int

	mu         sync.Mutex
	state      State
	question   *domain.Question
	remaining  int
	timerOn    bool
	selected   *int
	submitting bool
	answered   bool
	showResult bool
	stopTick   chan struct{}
	gen        uint64
}

// NewMachine builds a machine counting down from seconds (defaults to 10).
func NewMachine(submitter Submitter, clock clockwork.Clock, seconds int) *Machine {
	if seconds <= 0 {
		seconds = 10
	}
	return &Machine{
		submitter: submitter,
		clock:     clock,
		duration:  seconds,
		remaining: seconds,
		state:     Waiting,
	}
}

// StartQuestion replaces the active question and restarts the countdown.
// Questions whose correct-answer index is out of range are logged and
// ignored.
func (m *Machine) StartQuestion(q domain.Question) {
	if !q.Valid() {
		log.Warn().Int("question_id", q.ID).Msg("ignoring question with invalid correct-answer index")
		return
	}

	m.mu.Lock()
	m.cancelTickerLocked()
	current := q
	m.question = &current
	m.state = Active
	m.remaining = m.duration
	m.timerOn = true
	m.selected = nil
	m.submitting = false
	m.answered = false
	m.showResult = false
	m.gen++
	gen := m.gen
	stop := make(chan struct{})
	m.stopTick = stop
	m.mu.Unlock()

	go m.countdown(gen, stop)

	log.Info().Int("question_id", q.ID).Int("seconds", m.duration).Msg("question active")
}

func (m *Machine) countdown(gen uint64, stop chan struct{}) {
	ticker := m.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			if !m.tick(gen) {
				return
			}
		case <-stop:
			return
		}
	}
}

// tick applies one countdown step and reports whether the ticker should keep
// running. Ticks from a stale generation are no-ops.
func (m *Machine) tick(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || !m.timerOn || m.answered || m.state != Active {
		return false
	}
	m.remaining--
	if m.remaining > 0 {
		return true
	}
	m.remaining = 0
	m.timerOn = false
	m.answered = true
	m.showResult = true
	m.state = Answered
	log.Info().Int("question_id", m.question.ID).Msg("countdown expired")
	return false
}

// Select records the participant's choice. Re-selecting overwrites; nothing
// is sent until Submit. Out-of-range indexes and attempts after answering or
// expiry are silent no-ops.
func (m *Machine) Select(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active || m.answered || m.remaining <= 0 || m.question == nil {
		return
	}
	if i < 0 || i >= len(m.question.Alternatives) {
		return
	}
	choice := i
	m.selected = &choice
}

// Submit sends the selected answer. The countdown stops before the request
// goes out so a timeout cannot race the submission into a second Answered
// transition. On failure the countdown stays frozen and the participant may
// submit again.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Active || m.selected == nil || m.submitting || m.answered {
		m.mu.Unlock()
		return nil
	}
	m.submitting = true
	m.timerOn = false
	m.cancelTickerLocked()
	gen := m.gen
	sub := domain.AnswerSubmission{
		QuestionID:     m.question.ID,
		SelectedAnswer: m.selected,
		TimeUsed:       m.duration - m.remaining,
	}
	m.mu.Unlock()

	err := m.submitter.SubmitAnswer(ctx, sub)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// A new question replaced this one while the request was in
		// flight; its result must not leak into the new state.
		return err
	}
	m.submitting = false
	if err != nil {
		log.Error().Err(err).Int("question_id", sub.QuestionID).Msg("answer submission failed")
		return err
	}
	m.answered = true
	m.showResult = true
	m.state = Answered
	log.Info().Int("question_id", sub.QuestionID).Int("time_used", sub.TimeUsed).Msg("answer submitted")
	return nil
}

// AwaitNext clears a finished question and returns to Waiting with every
// field back at its initial value.
func (m *Machine) AwaitNext() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Answered {
		return
	}
	m.cancelTickerLocked()
	m.state = Waiting
	m.question = nil
	m.remaining = m.duration
	m.timerOn = false
	m.selected = nil
	m.submitting = false
	m.answered = false
	m.showResult = false
	m.gen++
}

// Close cancels the countdown. Safe to call more than once.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTickerLocked()
	m.timerOn = false
	m.gen++
}

func (m *Machine) cancelTickerLocked() {
	if m.stopTick != nil {
		close(m.stopTick)
		m.stopTick = nil
	}
}

// Outcome classifies the finished question. It is OutcomeNone until a result
// is ready to show.
func (m *Machine) Outcome() domain.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.question == nil || !m.showResult {
		return domain.OutcomeNone
	}
	if m.selected == nil {
		return domain.OutcomeTimeout
	}
	if *m.selected == m.question.CorrectAnswer {
		return domain.OutcomeCorrect
	}
	return domain.OutcomeIncorrect
}

// Progress reports remaining time as a percentage of the full countdown.
func (m *Machine) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.remaining*100) / float64(m.duration)
}

// Urgency maps remaining time onto the three visual tiers.
func (m *Machine) Urgency() Urgency {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.remaining > 7:
		return UrgencyLow
	case m.remaining >= 4:
		return UrgencyMedium
	default:
		return UrgencyHigh
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining
}

// Selected returns the chosen alternative index, or nil.
func (m *Machine) Selected() *int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return nil
	}
	choice := *m.selected
	return &choice
}

// Question returns a copy of the active question, or nil while waiting.
func (m *Machine) Question() *domain.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.question == nil {
		return nil
	}
	q := *m.question
	return &q
}

func (m *Machine) ShowResult() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showResult
}

func (m *Machine) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}
