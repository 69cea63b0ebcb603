package rt

import (
	"sync"
	"time"
)

// WaitResult reports why a call to Monitor.Wait returned.
type WaitResult int

const (
	// WaitNotified means another goroutine called Notify/NotifyAll while
	// this waiter was parked.
	WaitNotified WaitResult = iota
	// WaitTimedOut means the timeout elapsed with no notification.
	WaitTimedOut
	// WaitInterrupted means the supplied InterruptFlag was set while
	// parked, or was already set at the time Wait was called.
	WaitInterrupted
)

// gen is a monotonic broadcast channel: closing it wakes every goroutine
// parked on the current generation, then a fresh channel replaces it so
// later waiters park on the next generation. It plays the role a
// sync.Cond's internal notify list would, but composes with select so a
// wait can also race a timeout and an interrupt channel.
type gen struct {
	mu sync.Mutex
	ch chan struct{}
}

func newGen() *gen { return &gen{ch: make(chan struct{})} }

func (g *gen) current() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch
}

func (g *gen) advance() {
	g.mu.Lock()
	old := g.ch
	g.ch = make(chan struct{})
	g.mu.Unlock()
	close(old)
}

// Monitor is a re-entrant mutex paired with a condition variable, modelled
// on the original's Object: a single goroutine may Enter it recursively,
// and may Wait inside it, which releases the monitor for the duration of
// the wait and reacquires it (at the original recursion depth) before
// returning. Unlike sync.Cond, Wait here accepts an optional timeout and
// an optional *InterruptFlag, since the spec requires both.
type Monitor struct {
	mu         sync.Mutex
	ownerFree  *gen // advanced whenever the monitor becomes unowned
	condNotify *gen // advanced only by Notify/NotifyAll
	owner      uint64
	depth      int
}

// NewMonitor returns an unlocked Monitor.
func NewMonitor() *Monitor {
	return &Monitor{ownerFree: newGen(), condNotify: newGen()}
}

// Enter acquires the monitor, blocking if another goroutine holds it.
// Recursive: a goroutine that already owns the monitor just increments
// its hold depth.
func (m *Monitor) Enter() {
	gid := goroutineID()
	for {
		m.mu.Lock()
		if m.owner == 0 || m.owner == gid {
			m.owner = gid
			m.depth++
			m.mu.Unlock()
			return
		}
		waitCh := m.ownerFree.current()
		m.mu.Unlock()
		<-waitCh
	}
}

// Exit releases one level of ownership. Panics if the calling goroutine
// does not hold the monitor, mirroring the original's assertion that
// unlock is always paired with a matching lock.
func (m *Monitor) Exit() {
	gid := goroutineID()
	m.mu.Lock()
	if m.owner != gid {
		m.mu.Unlock()
		panic("rt: Monitor.Exit called by a goroutine that does not own it")
	}
	m.depth--
	if m.depth == 0 {
		m.owner = 0
		m.mu.Unlock()
		m.ownerFree.advance()
		return
	}
	m.mu.Unlock()
}

// Wait releases the monitor (regardless of recursion depth) and parks the
// calling goroutine until Notify/NotifyAll is called, timeoutMs elapses
// (0 means wait indefinitely), or flag is set. It then reacquires the
// monitor at the original depth before returning. The caller must hold
// the monitor when calling Wait.
func (m *Monitor) Wait(flag *InterruptFlag, timeoutMs int64) WaitResult {
	gid := goroutineID()
	m.mu.Lock()
	if m.owner != gid {
		m.mu.Unlock()
		panic("rt: Monitor.Wait called by a goroutine that does not own it")
	}
	savedDepth := m.depth
	m.owner = 0
	m.depth = 0
	notifyCh := m.condNotify.current()
	m.mu.Unlock()
	m.ownerFree.advance()

	result := WaitNotified
	if flag.IsSet() {
		result = WaitInterrupted
	} else {
		var timeoutCh <-chan time.Time
		if timeoutMs > 0 {
			timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
			defer timer.Stop()
			timeoutCh = timer.C
		}
		select {
		case <-notifyCh:
			result = WaitNotified
		case <-timeoutCh:
			result = WaitTimedOut
		case <-flag.Done():
			result = WaitInterrupted
		}
	}

	m.Enter()
	m.mu.Lock()
	m.depth = savedDepth
	m.mu.Unlock()
	return result
}

// Notify wakes at least one waiter. Since Go offers no single-target
// wakeup primitive as cheap as a broadcast, Notify is implemented as
// NotifyAll; callers relying on wait/notify for mutual exclusion (rather
// than for an edge-triggered condition) are unaffected because every
// woken waiter re-validates its condition after reacquiring the monitor.
func (m *Monitor) Notify() {
	m.NotifyAll()
}

// NotifyAll wakes every goroutine currently parked in Wait.
func (m *Monitor) NotifyAll() {
	m.condNotify.advance()
}
