package modest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOperation_WaitForObservesStop(t *testing.T) {
	op := NewOperation(func(op *Operation) error { return nil })
	go func() {
		time.Sleep(10 * time.Millisecond)
		op.markStopped(nil)
	}()
	require.True(t, op.WaitFor())
	require.True(t, op.HasStopped())
}

func TestOperation_BodyErrorIsStored(t *testing.T) {
	boom := errBoom
	op := NewOperation(func(op *Operation) error { return boom })
	err := op.runBody()
	require.ErrorIs(t, err, ErrBodyFailed)
	require.ErrorIs(t, err, boom)
}

func TestOperation_BodyPanicIsContained(t *testing.T) {
	op := NewOperation(func(op *Operation) error { panic("kaboom") })
	err := op.runBody()
	require.ErrorIs(t, err, ErrBodyFailed)
}

// TestOperation_InterruptCooperativeBody exercises scenario S4: a body
// that polls its own interruption and exits promptly once Interrupt is
// called.
func TestOperation_InterruptCooperativeBody(t *testing.T) {
	e := NewEngine(WithMaxWorkers(1))
	e.Start()
	defer e.Stop()

	exited := make(chan struct{})
	op := NewOperation(func(op *Operation) error {
		defer close(exited)
		for !op.IsInterrupted() {
			time.Sleep(time.Millisecond)
		}
		return nil
	})
	e.Queue(op)

	require.Eventually(t, func() bool { return op.HasStarted() }, time.Second, time.Millisecond)
	op.Interrupt()

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("body never observed interruption")
	}
	require.True(t, op.WaitFor())
	require.True(t, op.IsInterrupted())
	require.True(t, op.HasStopped())
}

func TestOperation_GuardAndMutatorIgnoredAfterStart(t *testing.T) {
	op := NewOperation(func(op *Operation) error { return nil })
	op.markStarted()
	op.SetGuard(GuardFunc{})
	op.SetStateMutator(MutatorFunc{})
	require.Nil(t, op.guard)
	require.Nil(t, op.mutator)
}

// TestOperation_CleanupRunsExactlyOnceOnNormalStop exercises invariant 7
// (reference release timing): the cleanup hook fires once markStopped
// runs, not before, and not again.
func TestOperation_CleanupRunsExactlyOnceOnNormalStop(t *testing.T) {
	var released int
	op := NewOperationWithCleanup(func(op *Operation) error { return nil }, func() { released++ })
	require.Equal(t, 0, released)
	_ = op.runBody()
	require.Equal(t, 0, released, "cleanup must not fire before the operation actually stops")
	op.markStopped(nil)
	require.Equal(t, 1, released)
}

// TestOperation_CleanupRunsOnceEvenWhenCanceledBeforeRunning exercises the
// dispatcher's cancel path (body never runs) still releases the ref.
func TestOperation_CleanupRunsOnceEvenWhenCanceledBeforeRunning(t *testing.T) {
	var released int
	op := NewOperationWithCleanup(func(op *Operation) error {
		t.Fatal("body must never run for a canceled operation")
		return nil
	}, func() { released++ })
	op.markCanceled()
	op.markStopped(nil)
	require.Equal(t, 1, released)
}

var errBoom = newTestError("boom")

type testError struct{ msg string }

func newTestError(msg string) error { return &testError{msg} }

func (e *testError) Error() string { return e.msg }
