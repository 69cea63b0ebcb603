package modest

import "github.com/digitalbazaar/monarch-sub010/rt"

// State is the caller-supplied engine state: an opaque key/value store
// guards read and mutators write. The core imposes no schema on it; it
// only guarantees the holding discipline -- shared for the duration of a
// single guard evaluation, exclusive for the duration of a single
// mutator call.
type State struct {
	lock *rt.SharedLock
	data map[string]any
}

// NewState returns an empty State.
func NewState() *State {
	return &State{lock: rt.NewSharedLock(), data: make(map[string]any)}
}

// Get reads a value by key. Callers outside a guard evaluation must
// bracket this with LockShared/UnlockShared (or LockExclusive) themselves.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set writes a value by key. Callers outside a mutator hook must
// bracket this with LockExclusive/UnlockExclusive themselves.
func (s *State) Set(key string, value any) {
	s.data[key] = value
}

// LockShared, UnlockShared, LockExclusive and UnlockExclusive expose the
// underlying discipline directly, for guards/mutators that need to read
// or write several keys as one atomic unit rather than one Get/Set call.
func (s *State) LockShared()      { s.lock.LockShared() }
func (s *State) UnlockShared()    { s.lock.UnlockShared() }
func (s *State) LockExclusive()   { s.lock.LockExclusive() }
func (s *State) UnlockExclusive() { s.lock.UnlockExclusive() }
