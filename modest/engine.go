package modest

import (
	"runtime"
	"sync/atomic"

	"github.com/digitalbazaar/monarch-sub010/rt"
)

type engineLifecycle int32

const (
	engineCreated engineLifecycle = iota
	engineRunning
	engineStopped
)

// Option configures an Engine. See WithMaxWorkers, WithIdleExpireMs and
// WithLogger.
type Option func(*engineConfig)

type engineConfig struct {
	maxWorkers   int64
	idleExpireMs int64
	log          *rt.Logger
}

// WithMaxWorkers sets the worker pool's cap (see rt.Unbounded). Default
// is runtime.GOMAXPROCS(0).
func WithMaxWorkers(n int64) Option {
	return func(c *engineConfig) { c.maxWorkers = n }
}

// WithIdleExpireMs sets how long an idle worker waits before
// self-terminating, in milliseconds. 0 (the default) means never expire.
func WithIdleExpireMs(ms int64) Option {
	return func(c *engineConfig) { c.idleExpireMs = ms }
}

// WithLogger sets the structured logger the engine, its dispatcher and
// its worker pool log through. Default discards everything.
func WithLogger(log *rt.Logger) Option {
	return func(c *engineConfig) { c.log = log }
}

// Engine is the public entry point of the concurrency core: queue
// operations, start the dispatcher, stop everything and drain. Starting
// an already-started (or already-stopped) engine is a no-op; likewise
// for stopping.
type Engine struct {
	state       atomic.Int32
	pool        *rt.WorkerPool
	dispatcher  *OperationDispatcher
	engineState *State
	log         *rt.Logger
}

// NewEngine constructs an Engine in the created (not yet started) state.
func NewEngine(opts ...Option) *Engine {
	cfg := engineConfig{maxWorkers: int64(runtime.GOMAXPROCS(0))}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.log == nil {
		cfg.log = rt.DiscardLogger()
	}

	st := NewState()
	pool := rt.NewWorkerPool(cfg.maxWorkers, cfg.idleExpireMs, cfg.log)
	e := &Engine{
		pool:        pool,
		engineState: st,
		log:         cfg.log,
	}
	e.dispatcher = newDispatcher(pool, st, cfg.log)
	return e
}

// Start begins dispatching queued operations. No-op if already started
// or already stopped.
func (e *Engine) Start() {
	if !e.state.CompareAndSwap(int32(engineCreated), int32(engineRunning)) {
		return
	}
	e.dispatcher.wg.Add(1)
	go e.dispatcher.run()
}

// Stop transitions the dispatcher to draining, cancels every not-yet-run
// queued operation, interrupts worker threads, and blocks until every
// already-running body has finished and every worker has terminated.
// No-op if already stopped. This holds even for an engine that was never
// Started: Queue still accepts operations onto the dispatcher's queue
// before Start runs the dispatch loop, so those operations must still be
// canceled here rather than left to wait forever.
func (e *Engine) Stop() {
	if e.state.CompareAndSwap(int32(engineRunning), int32(engineStopped)) {
		e.dispatcher.drainAndStop()
		return
	}
	if e.state.CompareAndSwap(int32(engineCreated), int32(engineStopped)) {
		e.dispatcher.drainAndStop()
	}
}

// isStopped reports whether Stop has completed (or begun -- the states
// are merged since no caller can observe a partially-stopped engine
// except via blocking on Stop itself).
func (e *Engine) isStopped() bool {
	return engineLifecycle(e.state.Load()) == engineStopped
}

// Queue hands op to the dispatcher. If the engine has already been
// stopped, op is routed directly into the cancel path instead, exactly
// as if it had been queued before the stop and never become runnable.
func (e *Engine) Queue(op *Operation) {
	if e.isStopped() {
		e.dispatcher.cancelOperation(op)
		return
	}
	e.dispatcher.enqueue(op)
}

// Pool returns the engine's worker pool, for callers that want to read
// Stats or tune capacity live.
func (e *Engine) Pool() *rt.WorkerPool {
	return e.pool
}

// State returns the engine's shared key/value state store.
func (e *Engine) State() *State {
	return e.engineState
}
