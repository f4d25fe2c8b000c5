package dispatch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"brainup-client/internal/dispatch"
	"brainup-client/internal/domain"
)

func TestSelectConfirmsThenReverts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cmd := &recordingCommander{}
	d := dispatch.New(cmd, clock, 2*time.Second)

	if err := d.Select(context.Background(), 3); err != nil {
		t.Fatalf("select: %v", err)
	}
	if state, n := d.State(); state != dispatch.Confirmed || n != 3 {
		t.Fatalf("expected Confirmed(3), got %v(%d)", state, n)
	}

	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	waitFor(t, func() bool {
		state, _ := d.State()
		return state == dispatch.Idle
	})
	if _, n := d.State(); n != 0 {
		t.Fatalf("expected no question selected after revert, got %d", n)
	}
}

func TestConcurrentSelectionRejectedWhilePending(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cmd := &blockingCommander{started: make(chan struct{}), release: make(chan struct{})}
	d := dispatch.New(cmd, clock, 2*time.Second)

	done := make(chan error, 1)
	go func() { done <- d.Select(context.Background(), 1) }()
	<-cmd.started

	if err := d.Select(context.Background(), 2); !errors.Is(err, domain.ErrSelectionPending) {
		t.Fatalf("expected ErrSelectionPending, got %v", err)
	}

	close(cmd.release)
	if err := <-done; err != nil {
		t.Fatalf("first select: %v", err)
	}
	if got := cmd.calls.Load(); got != 1 {
		t.Fatalf("expected one outbound command, got %d", got)
	}
}

func TestFailureRevertsToIdleWithoutConfirmation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cmd := &recordingCommander{err: errors.New("server unreachable")}
	d := dispatch.New(cmd, clock, 2*time.Second)

	if err := d.Select(context.Background(), 5); err == nil {
		t.Fatalf("expected error from failed command")
	}
	if state, n := d.State(); state != dispatch.Idle || n != 0 {
		t.Fatalf("failed selection must show nothing confirmed, got %v(%d)", state, n)
	}
}

func TestNewerConfirmationSurvivesStaleRevert(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cmd := &recordingCommander{}
	d := dispatch.New(cmd, clock, 2*time.Second)

	if err := d.Select(context.Background(), 1); err != nil {
		t.Fatalf("select 1: %v", err)
	}
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	if err := d.Select(context.Background(), 2); err != nil {
		t.Fatalf("select 2: %v", err)
	}
	// Give the cancelled revert goroutine time to drop its timer so the
	// remaining waiter is the new window.
	time.Sleep(20 * time.Millisecond)
	clock.BlockUntil(1)

	// The window of the first confirmation would elapse here; it must not
	// clear the newer one.
	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	if state, n := d.State(); state != dispatch.Confirmed || n != 2 {
		t.Fatalf("stale revert cleared a newer confirmation: %v(%d)", state, n)
	}

	clock.Advance(time.Second)
	waitFor(t, func() bool {
		state, _ := d.State()
		return state == dispatch.Idle
	})
}

func TestRejectsNonPositiveQuestion(t *testing.T) {
	d := dispatch.New(&recordingCommander{}, clockwork.NewFakeClock(), 2*time.Second)
	if err := d.Select(context.Background(), 0); err == nil {
		t.Fatalf("expected error for question 0")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

type recordingCommander struct {
	calls atomic.Int32
	err   error
}

func (r *recordingCommander) ChangeQuestion(_ context.Context, _ int) error {
	r.calls.Add(1)
	return r.err
}

type blockingCommander struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingCommander) ChangeQuestion(_ context.Context, _ int) error {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return nil
}
