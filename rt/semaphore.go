package rt

import "sync"

// semaphore is a counting semaphore whose capacity can be adjusted live,
// which is the property a plain buffered channel lacks and SetMaxWorkers
// needs: growing or shrinking the pool's spawn capacity without
// recreating the underlying channel out from under blocked acquirers.
type semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	avail int64
}

func newSemaphore(n int64) *semaphore {
	s := &semaphore{avail: n}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// acquire blocks until a permit is available.
func (s *semaphore) acquire() {
	s.mu.Lock()
	for s.avail <= 0 {
		s.cond.Wait()
	}
	s.avail--
	s.mu.Unlock()
}

// tryAcquire takes a permit only if one is immediately available.
func (s *semaphore) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.avail <= 0 {
		return false
	}
	s.avail--
	return true
}

// release returns a permit to the pool.
func (s *semaphore) release() {
	s.mu.Lock()
	s.avail++
	s.cond.Signal()
	s.mu.Unlock()
}

// adjust changes total capacity by delta (which may be negative),
// waking blocked acquirers if it grew.
func (s *semaphore) adjust(delta int64) {
	s.mu.Lock()
	s.avail += delta
	if delta > 0 {
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}
