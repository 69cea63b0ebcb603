package modest

import (
	"sync"
	"sync/atomic"

	"github.com/digitalbazaar/monarch-sub010/rt"
)

// OperationDispatcher is the single dedicated goroutine that owns the
// queue: it wakes on every enqueue, on every worker completion, and
// (indirectly, via re-evaluating the whole queue on every wake) after
// any mutator changes engine state. Nothing else ever mutates the
// queue.
type OperationDispatcher struct {
	monitor *rt.Monitor
	queue   []*Operation

	pool  *rt.WorkerPool
	state *State
	log   *rt.Logger

	stopping atomic.Bool
	wg       sync.WaitGroup
}

func newDispatcher(pool *rt.WorkerPool, state *State, log *rt.Logger) *OperationDispatcher {
	return &OperationDispatcher{
		monitor: rt.NewMonitor(),
		pool:    pool,
		state:   state,
		log:     log,
	}
}

// enqueue appends op to the tail of the queue and wakes the dispatch
// loop.
func (d *OperationDispatcher) enqueue(op *Operation) {
	d.monitor.Enter()
	d.queue = append(d.queue, op)
	d.monitor.NotifyAll()
	d.monitor.Exit()
}

// wake re-evaluates the queue without adding anything to it, used by a
// completing worker to let the dispatcher notice newly-free capacity,
// and by anything that changed engine state out from under a guard.
func (d *OperationDispatcher) wake() {
	d.monitor.Enter()
	d.monitor.NotifyAll()
	d.monitor.Exit()
}

// run is the dispatch loop. It exits once stopping has been requested
// and the queue has been fully drained.
func (d *OperationDispatcher) run() {
	defer d.wg.Done()
	d.monitor.Enter()
	for {
		progressed := d.tick()
		if d.stopping.Load() && len(d.queue) == 0 {
			d.monitor.Exit()
			return
		}
		if !progressed {
			d.monitor.Wait(nil, 0)
		}
	}
}

// tick scans the queue once in order, canceling operations whose guard
// demands it and dispatching operations whose guard permits it and for
// which a worker is available. Must be called with the monitor held.
// Returns true if anything was canceled or dispatched, signalling the
// caller should re-scan immediately rather than sleep.
func (d *OperationDispatcher) tick() bool {
	progressed := false
	remaining := d.queue[:0]
	for _, op := range d.queue {
		d.state.LockShared()
		mustCancel := op.mustCancel(d.state)
		canExec := !mustCancel && op.canExecute(d.state)
		d.state.UnlockShared()

		if mustCancel {
			d.cancelOperation(op)
			progressed = true
			continue
		}

		if canExec {
			if w, ok := d.pool.TryReserve(); ok {
				op.markStarted()
				d.runPreMutators(op)
				d.pool.Dispatch(w, d.trampoline(op, w))
				progressed = true
				continue
			}
		}

		remaining = append(remaining, op)
	}
	d.queue = remaining
	return progressed
}

func (d *OperationDispatcher) runPreMutators(op *Operation) {
	d.state.LockExclusive()
	err := op.runPreMutators(d.state)
	d.state.UnlockExclusive()
	if err != nil {
		d.log.Err().Err(err).Str("phase", "pre").Log("modest: mutator failed")
	}
}

// cancelOperation drives an operation straight to stopped without ever
// running its body: mark canceled, run post-mutators (symmetric with a
// normal completion even though the body never executed), mark stopped.
func (d *OperationDispatcher) cancelOperation(op *Operation) {
	op.markCanceled()
	d.state.LockExclusive()
	err := op.runPostMutators(d.state)
	d.state.UnlockExclusive()
	if err != nil {
		d.log.Err().Err(err).Str("phase", "post-cancel").Log("modest: mutator failed")
	}
	op.markStopped(nil)
}

// trampoline builds the job handed to a reserved worker: run the body
// (unless already interrupted), then the post-mutator chain, then
// publish the stopped transition, then wake the dispatcher so it can
// notice the freed-up capacity and re-evaluate the queue.
func (d *OperationDispatcher) trampoline(op *Operation, w *rt.Worker) rt.Job {
	return func() {
		var bodyErr error
		if !op.IsInterrupted() {
			op.setExecuting(w.CurrentInterruptFlag())
			bodyErr = op.runBody()
		}

		d.state.LockExclusive()
		postErr := op.runPostMutators(d.state)
		d.state.UnlockExclusive()
		if postErr != nil {
			d.log.Err().Err(postErr).Str("phase", "post").Log("modest: mutator failed")
		}

		op.markStopped(bodyErr)
		d.wake()
	}
}

// drainAndStop runs the stop sequence: transition to draining, wake any
// idle workers (so they notice shutdown promptly), cancel every
// still-queued operation, then wait for every started body to finish.
func (d *OperationDispatcher) drainAndStop() {
	d.stopping.Store(true)
	d.pool.InterruptAll()

	d.monitor.Enter()
	queued := d.queue
	d.queue = nil
	d.monitor.NotifyAll()
	d.monitor.Exit()

	for _, op := range queued {
		d.cancelOperation(op)
	}

	d.wg.Wait()

	d.pool.Stop()
	d.pool.JoinAll()
}
