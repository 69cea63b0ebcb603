package rt

import "sync/atomic"

// InterruptFlag is the thread-local-equivalent this package substitutes for
// the native per-thread interrupted bit the original runtime exposed.
// Go has no supported way to attach state to "the calling goroutine", so
// instead of faking one with a global registry, every blocking operation
// that wants to be interruptible is handed an explicit *InterruptFlag by
// its caller. A flag is single-shot: once Set, it stays set, matching the
// "sticky until explicitly cleared by the owner" semantics of the
// original's per-thread flag.
type InterruptFlag struct {
	set  atomic.Bool
	done chan struct{}
}

// NewInterruptFlag returns a fresh, unset flag.
func NewInterruptFlag() *InterruptFlag {
	return &InterruptFlag{done: make(chan struct{})}
}

// Set marks the flag interrupted and wakes any waiter blocked on Done.
// Idempotent.
func (f *InterruptFlag) Set() {
	if f == nil {
		return
	}
	if f.set.CompareAndSwap(false, true) {
		close(f.done)
	}
}

// IsSet reports whether Set has been called.
func (f *InterruptFlag) IsSet() bool {
	if f == nil {
		return false
	}
	return f.set.Load()
}

// Done returns a channel that closes the moment Set is called. A nil
// *InterruptFlag behaves as "never interrupted": Done returns nil, which
// blocks forever in a select, the correct behaviour for an absent flag.
func (f *InterruptFlag) Done() <-chan struct{} {
	if f == nil {
		return nil
	}
	return f.done
}
