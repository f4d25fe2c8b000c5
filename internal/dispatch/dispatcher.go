package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"brainup-client/internal/domain"
)

// State is the dispatcher's acknowledgment phase.
type State int

const (
	// Idle means no selection is shown.
	Idle State = iota
	// Pending means a question-change command is in flight.
	Pending
	// Confirmed means the server acknowledged; shown for the confirm window.
	Confirmed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	}
	return "unknown"
}

// Commander sends the question-change command to the server.
type Commander interface {
	ChangeQuestion(ctx context.Context, n int) error
}

// Dispatcher sends an administrator's question selection and tracks transient
// acknowledgment state. One command is in flight at a time; a confirmation is
// shown for a fixed window and then clears. Failures revert straight to Idle
// so a selection that did not take effect is never shown as confirmed.
type Dispatcher struct {
	commander Commander
	clock     clockwork.Clock
	window    time.Duration

	mu       sync.Mutex
	state    State
	question int
	revoke   chan struct{}
}

func New(commander Commander, clock clockwork.Clock, window time.Duration) *Dispatcher {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &Dispatcher{commander: commander, clock: clock, window: window}
}

// Select sends the question-change command for question n. While a previous
// selection is in flight it returns domain.ErrSelectionPending and sends
// nothing. There is no automatic retry.
func (d *Dispatcher) Select(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("question number must be positive, got %d", n)
	}

	d.mu.Lock()
	if d.state == Pending {
		d.mu.Unlock()
		return domain.ErrSelectionPending
	}
	d.cancelRevertLocked()
	d.state = Pending
	d.question = n
	d.mu.Unlock()

	err := d.commander.ChangeQuestion(ctx, n)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Int("question", n).Msg("question change failed")
		d.state = Idle
		d.question = 0
		return err
	}

	d.state = Confirmed
	revoke := make(chan struct{})
	d.revoke = revoke
	go d.revertAfterWindow(n, revoke)
	log.Info().Int("question", n).Msg("question change confirmed")
	return nil
}

// revertAfterWindow clears the confirmation once the display window passes,
// unless a newer selection already replaced it.
func (d *Dispatcher) revertAfterWindow(n int, revoke chan struct{}) {
	timer := d.clock.NewTimer(d.window)
	defer timer.Stop()

	select {
	case <-timer.Chan():
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.state == Confirmed && d.question == n && d.revoke == revoke {
			d.state = Idle
			d.question = 0
			d.revoke = nil
		}
	case <-revoke:
	}
}

func (d *Dispatcher) cancelRevertLocked() {
	if d.revoke != nil {
		close(d.revoke)
		d.revoke = nil
	}
}

// State returns the current phase and the question number it refers to
// (0 when idle).
func (d *Dispatcher) State() (State, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.question
}
