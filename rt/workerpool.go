package rt

import (
	"sync"
	"sync/atomic"
)

// Unbounded is the sentinel passed to NewWorkerPool or SetMaxWorkers to
// mean "no fixed cap on concurrently live workers". It is a large finite
// number rather than true infinity, since the pool's spawn capacity is
// modelled as a semaphore; in practice no workload will ever queue
// enough concurrent jobs to notice the difference.
const Unbounded = 1 << 30

// Stats is a point-in-time snapshot of a WorkerPool's gauges.
type Stats struct {
	Live       int64 // goroutines currently spawned, idle or running
	Idle       int64 // of Live, currently parked awaiting a job
	MaxWorkers int64
}

// WorkerPool bounds the number of concurrently live job-executing
// goroutines. Unlike simply capping a channel of goroutines, spawn
// capacity here is released only when a worker goroutine actually
// terminates by idle expiry -- not when it merely finishes a job and
// goes back to idle, and not when it retires at shutdown, since a
// stopped pool spawns nothing -- so MaxWorkers bounds total
// concurrently-alive workers, matching the original JobThreadPool.
//
// Passing MaxWorkers == 0 to NewWorkerPool selects inline execution:
// Run and TryRun simply call the job on the caller's own goroutine, no
// workers are ever spawned.
type WorkerPool struct {
	monitor *Monitor // guards idle/live bookkeeping below
	idle    []*Worker
	live    map[uint64]*Worker

	permits *semaphore
	nextID  atomic.Uint64
	wg      sync.WaitGroup

	maxWorkers   atomic.Int64
	idleExpire   atomic.Int64 // milliseconds; 0 means never expire
	stopped      atomic.Bool
	log          atomic.Pointer[Logger]
}

// NewWorkerPool constructs a pool with the given initial MaxWorkers (see
// Unbounded) and idle-expiry window in milliseconds (0 disables
// expiry). Both are live-tunable afterward via SetMaxWorkers and
// SetIdleExpireMs.
func NewWorkerPool(maxWorkers int64, idleExpireMs int64, log *Logger) *WorkerPool {
	if log == nil {
		log = DiscardLogger()
	}
	p := &WorkerPool{
		monitor: NewMonitor(),
		live:    make(map[uint64]*Worker),
		permits: newSemaphore(maxWorkers),
	}
	p.maxWorkers.Store(maxWorkers)
	p.idleExpire.Store(idleExpireMs)
	p.log.Store(log)
	return p
}

func (p *WorkerPool) logger() *Logger { return p.log.Load() }

func (p *WorkerPool) isStopped() bool { return p.stopped.Load() }

func (p *WorkerPool) idleExpireMs() int64 { return p.idleExpire.Load() }

// SetIdleExpireMs changes the idle-expiry window. Existing idle workers
// observe the new value the next time their wait loop re-evaluates it,
// i.e. at their current wait's next wake.
func (p *WorkerPool) SetIdleExpireMs(ms int64) {
	p.idleExpire.Store(ms)
}

// SetMaxWorkers changes the live-worker cap. Shrinking does not evict
// already-running workers; it only reduces future spawn capacity as
// workers naturally retire, until Live falls to the new cap.
func (p *WorkerPool) SetMaxWorkers(max int64) {
	old := p.maxWorkers.Swap(max)
	p.permits.adjust(max - old)
}

// Run executes job on a pooled worker, blocking until one is available
// (reused from idle, or newly spawned within capacity) if the pool is
// at its MaxWorkers cap. If the pool was constructed with MaxWorkers ==
// 0, job runs inline on the calling goroutine.
func (p *WorkerPool) Run(job Job) {
	if p.maxWorkers.Load() == 0 {
		job()
		return
	}
	w := p.acquireWorker(true)
	if w == nil {
		// pool stopped while we were acquiring; run inline so the
		// caller's job is not silently dropped.
		job()
		return
	}
	w.assign(job)
}

// TryRun attempts to run job without blocking, returning false if no
// idle worker exists and the pool is already at MaxWorkers capacity.
func (p *WorkerPool) TryRun(job Job) bool {
	if p.maxWorkers.Load() == 0 {
		job()
		return true
	}
	w := p.acquireWorker(false)
	if w == nil {
		return false
	}
	w.assign(job)
	return true
}

// TryReserve claims a worker without assigning it a job, for callers
// that must do additional work (e.g. running pre-dispatch hooks) between
// deciding a job is runnable and actually handing it to the worker.
// Reports (nil, false) if no worker is available right now. A reserved
// worker must eventually be given to Dispatch.
func (p *WorkerPool) TryReserve() (*Worker, bool) {
	if p.maxWorkers.Load() == 0 {
		return nil, false
	}
	w := p.acquireWorker(false)
	if w == nil {
		return nil, false
	}
	return w, true
}

// Dispatch assigns job to a worker previously obtained from TryReserve.
func (p *WorkerPool) Dispatch(w *Worker, job Job) {
	w.assign(job)
}

// acquireWorker returns an idle worker if one exists, else spawns a new
// one if spawn capacity allows (blocking on it if blocking is true).
// Returns nil if non-blocking and no worker is available, or if the
// pool has been stopped.
func (p *WorkerPool) acquireWorker(blocking bool) *Worker {
	p.monitor.Enter()
	if p.stopped.Load() {
		p.monitor.Exit()
		return nil
	}
	if n := len(p.idle); n > 0 {
		w := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.monitor.Exit()
		return w
	}
	p.monitor.Exit()

	if blocking {
		p.permits.acquire()
	} else if !p.permits.tryAcquire() {
		return nil
	}

	if p.stopped.Load() {
		p.permits.release()
		return nil
	}
	return p.spawnWorker()
}

func (p *WorkerPool) spawnWorker() *Worker {
	w := newWorker(p, p.nextID.Add(1))
	p.monitor.Enter()
	p.live[w.id] = w
	p.monitor.Exit()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		w.run()
	}()
	return w
}

// returnToIdle is called by a worker after finishing a job. Returns
// false if the pool has been stopped in the meantime, in which case the
// worker must retire instead of parking.
func (p *WorkerPool) returnToIdle(w *Worker) bool {
	p.monitor.Enter()
	defer p.monitor.Exit()
	if p.stopped.Load() {
		return false
	}
	p.idle = append(p.idle, w)
	return true
}

// onWorkerRetired removes a terminated worker from the live set and
// returns its spawn permit to the pool (unless the pool has already
// been torn down, in which case permits are moot).
func (p *WorkerPool) onWorkerRetired(w *Worker, fromIdleExpiry bool) {
	p.monitor.Enter()
	delete(p.live, w.id)
	for i, iw := range p.idle {
		if iw == w {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			break
		}
	}
	p.monitor.Exit()
	if fromIdleExpiry {
		p.permits.release()
	}
}

// InterruptAll sets the current interrupt flag of every live worker,
// waking any that are idle (so they notice pool shutdown promptly) and
// signalling any that are mid-job that cooperative cancellation has been
// requested.
func (p *WorkerPool) InterruptAll() {
	p.monitor.Enter()
	workers := make([]*Worker, 0, len(p.live))
	for _, w := range p.live {
		workers = append(workers, w)
	}
	p.monitor.Exit()
	for _, w := range workers {
		w.CurrentInterruptFlag().Set()
		w.monitor.Enter()
		w.monitor.NotifyAll()
		w.monitor.Exit()
	}
}

// Stop prevents any further job from being assigned, wakes every idle
// worker so it retires, and returns immediately; call JoinAll to wait
// for every worker goroutine to actually exit.
func (p *WorkerPool) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	p.monitor.Enter()
	workers := make([]*Worker, 0, len(p.live))
	for _, w := range p.live {
		workers = append(workers, w)
	}
	p.idle = nil
	p.monitor.Exit()
	for _, w := range workers {
		w.monitor.Enter()
		w.monitor.NotifyAll()
		w.monitor.Exit()
	}
}

// JoinAll blocks until every worker goroutine the pool has ever spawned
// has returned. Call Stop first, or this blocks forever on a pool still
// accepting work.
func (p *WorkerPool) JoinAll() {
	p.wg.Wait()
}

// Stats returns a snapshot of the pool's current gauges.
func (p *WorkerPool) Stats() Stats {
	p.monitor.Enter()
	live := int64(len(p.live))
	idle := int64(len(p.idle))
	p.monitor.Exit()
	return Stats{Live: live, Idle: idle, MaxWorkers: p.maxWorkers.Load()}
}
