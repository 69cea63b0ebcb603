package modest

import (
	"context"
	"fmt"

	"github.com/digitalbazaar/monarch-sub010/rt"
)

// RunnableFunc is a user operation body. It receives the Operation so it
// can cooperatively check IsInterrupted (the framework never forcibly
// aborts a body); a non-nil return is recorded as the operation's
// BodyFailed error, same as a recovered panic.
type RunnableFunc func(op *Operation) error

// Operation is a unit of work with a one-way lifecycle: queued, then
// either running or canceled, always ending at stopped. Its runnable is
// held behind an rt.Ref, so a body that owns a resource it must not
// leave for GC (a file handle, a lease, a connection) can hand its
// release to NewOperationWithCleanup and be sure it runs exactly once,
// the instant the operation reaches stopped -- whether the body ran,
// failed, or was canceled before ever starting.
type Operation struct {
	runnableRef rt.Ref[RunnableFunc]
	monitor     *rt.Monitor

	guard   OperationGuard
	mutator StateMutator

	started     bool
	interrupted bool
	canceled    bool
	stopped     bool
	err         error

	// executingFlag is the interrupt flag of whatever worker is
	// currently running this operation's body, if any. Interrupt sets
	// it directly so a body blocked in a monitor wait notices without
	// needing to poll IsInterrupted.
	executingFlag *rt.InterruptFlag
}

// NewOperation wraps runnable in a fresh, unqueued Operation with no
// cleanup hook. Equivalent to NewOperationWithCleanup(runnable, nil).
func NewOperation(runnable RunnableFunc) *Operation {
	return NewOperationWithCleanup(runnable, nil)
}

// NewOperationWithCleanup wraps runnable in a fresh, unqueued Operation
// whose release hook runs exactly once when the operation reaches
// stopped, regardless of whether the body ran, returned an error,
// panicked, or was canceled before ever starting. release may be nil.
func NewOperationWithCleanup(runnable RunnableFunc, release func()) *Operation {
	return &Operation{
		runnableRef: rt.NewRef(runnable, release),
		monitor:     rt.NewMonitor(),
	}
}

// SetGuard replaces the operation's guard. Ignored once the operation
// has started running.
func (op *Operation) SetGuard(g OperationGuard) {
	op.monitor.Enter()
	defer op.monitor.Exit()
	if op.started {
		return
	}
	op.guard = g
}

// AddGuard chains g after any existing guard, in declaration order.
// Ignored once the operation has started running.
func (op *Operation) AddGuard(g OperationGuard) {
	op.monitor.Enter()
	defer op.monitor.Exit()
	if op.started {
		return
	}
	if op.guard == nil {
		op.guard = g
	} else {
		op.guard = &GuardChain{G1: op.guard, G2: g}
	}
}

// SetStateMutator replaces the operation's mutator. Ignored once the
// operation has started running.
func (op *Operation) SetStateMutator(m StateMutator) {
	op.monitor.Enter()
	defer op.monitor.Exit()
	if op.started {
		return
	}
	op.mutator = m
}

// AddStateMutator chains m after any existing mutator, in declaration
// order. Ignored once the operation has started running.
func (op *Operation) AddStateMutator(m StateMutator) {
	op.monitor.Enter()
	defer op.monitor.Exit()
	if op.started {
		return
	}
	if op.mutator == nil {
		op.mutator = m
	} else {
		op.mutator = &MutatorChain{M1: op.mutator, M2: m}
	}
}

// Interrupt sets the operation's interrupted flag and, if a body is
// currently running, wakes whatever it's blocked on so it can notice.
// Advisory only: a body that never checks IsInterrupted or calls an
// interruptible primitive will run to completion regardless.
func (op *Operation) Interrupt() {
	op.monitor.Enter()
	op.interrupted = true
	flag := op.executingFlag
	op.monitor.NotifyAll()
	op.monitor.Exit()
	flag.Set()
}

// IsInterrupted reports whether Interrupt has been called.
func (op *Operation) IsInterrupted() bool {
	op.monitor.Enter()
	defer op.monitor.Exit()
	return op.interrupted
}

// IsCanceled reports whether the dispatcher canceled this operation
// before its body ran.
func (op *Operation) IsCanceled() bool {
	op.monitor.Enter()
	defer op.monitor.Exit()
	return op.canceled
}

// HasStopped reports whether the operation has reached its terminal
// state.
func (op *Operation) HasStopped() bool {
	op.monitor.Enter()
	defer op.monitor.Exit()
	return op.stopped
}

// HasStarted reports whether the dispatcher has begun running this
// operation (its guard permitted it and a worker was reserved for it).
// The flag is set before the pre-mutators run and before the body is
// handed to the worker.
func (op *Operation) HasStarted() bool {
	op.monitor.Enter()
	defer op.monitor.Exit()
	return op.started
}

// Err returns the error that caused the body to fail, if any. Only
// meaningful after HasStopped returns true.
func (op *Operation) Err() error {
	op.monitor.Enter()
	defer op.monitor.Exit()
	return op.err
}

// WaitFor blocks until the operation reaches stopped, with no way to
// abort the wait early. Always returns true.
func (op *Operation) WaitFor() bool {
	op.monitor.Enter()
	defer op.monitor.Exit()
	for !op.stopped {
		op.monitor.Wait(nil, 0)
	}
	return true
}

// WaitForInterrupt blocks until the operation reaches stopped or flag is
// set, whichever comes first. Returns true if it observed stopped,
// false if it returned early due to flag.
func (op *Operation) WaitForInterrupt(flag *rt.InterruptFlag) bool {
	op.monitor.Enter()
	defer op.monitor.Exit()
	for !op.stopped {
		if flag.IsSet() {
			return false
		}
		if res := op.monitor.Wait(flag, 0); res == rt.WaitInterrupted && !op.stopped {
			return false
		}
	}
	return true
}

// WaitForContext blocks until the operation reaches stopped or ctx is
// done, whichever comes first, returning ctx.Err() in the latter case.
func (op *Operation) WaitForContext(ctx context.Context) error {
	if op.HasStopped() {
		return nil
	}
	flag := rt.NewInterruptFlag()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			flag.Set()
		case <-done:
		}
	}()
	if op.WaitForInterrupt(flag) {
		return nil
	}
	return ctx.Err()
}

func (op *Operation) canExecute(state *State) bool {
	op.monitor.Enter()
	g := op.guard
	op.monitor.Exit()
	return g == nil || g.CanExecute(op, state)
}

func (op *Operation) mustCancel(state *State) bool {
	op.monitor.Enter()
	g := op.guard
	op.monitor.Exit()
	return g != nil && g.MustCancel(op, state)
}

func (op *Operation) runPreMutators(state *State) (err error) {
	op.monitor.Enter()
	m := op.mutator
	op.monitor.Exit()
	if m == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("modest: pre-mutator panic: %v", r)
		}
	}()
	return m.MutatePre(op, state)
}

func (op *Operation) runPostMutators(state *State) (err error) {
	op.monitor.Enter()
	m := op.mutator
	op.monitor.Exit()
	if m == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("modest: post-mutator panic: %v", r)
		}
	}()
	return m.MutatePost(op, state)
}

func (op *Operation) setExecuting(flag *rt.InterruptFlag) {
	op.monitor.Enter()
	op.executingFlag = flag
	op.monitor.Exit()
}

// runBody invokes the user runnable, converting a panic or a returned
// error alike into a BodyFailed error.
func (op *Operation) runBody() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrBodyFailed, r)
		}
	}()
	runnable := op.runnableRef.Get()
	if runnable == nil {
		return nil
	}
	if e := runnable(op); e != nil {
		return fmt.Errorf("%w: %v", ErrBodyFailed, e)
	}
	return nil
}

func (op *Operation) markStarted() {
	op.monitor.Enter()
	op.started = true
	op.monitor.Exit()
}

func (op *Operation) markCanceled() {
	op.monitor.Enter()
	op.canceled = true
	op.monitor.Exit()
}

// markStopped is the one terminal transition, reached exactly once from
// either the cancel path or a completed trampoline, so it is also the
// one place the runnable's Ref is released.
func (op *Operation) markStopped(err error) {
	op.monitor.Enter()
	op.stopped = true
	if err != nil {
		op.err = err
	}
	op.monitor.NotifyAll()
	op.monitor.Exit()
	op.runnableRef.Release()
}
