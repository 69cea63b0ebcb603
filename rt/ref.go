package rt

import "sync/atomic"

// refBlock is the shared, atomically reference-counted control block
// backing every clone of a Ref[T]. It is allocated once per logical
// value and torn down exactly once, when the count reaches zero.
type refBlock struct {
	count   atomic.Int64
	release func()
}

// Ref is a reference-counted handle, the Go analogue of the original's
// Collectable<T>: many call sites can hold independent handles to the
// same underlying value, and the release callback fires exactly once,
// when the last handle is released, regardless of which goroutine held
// it or in what order handles were dropped.
//
// Go has no copy constructor to hook, so unlike Collectable<T>, a Ref
// does not automatically bump the refcount on assignment -- callers that
// want to hand out another independent handle to the same value must
// call Clone explicitly. A Ref obtained via NewRef or Clone owns exactly
// one count and must be balanced by exactly one Release.
type Ref[T any] struct {
	val   T
	block *refBlock
}

// NewRef wraps val in a Ref with an initial count of one. release, if
// non-nil, runs exactly once, when the count reaches zero; it must not
// block on anything the caller holds while releasing its own handle.
func NewRef[T any](val T, release func()) Ref[T] {
	b := &refBlock{release: release}
	b.count.Store(1)
	return Ref[T]{val: val, block: b}
}

// IsNull reports whether r is the zero Ref, holding no value and no
// count.
func (r Ref[T]) IsNull() bool {
	return r.block == nil
}

// Get returns the referenced value. Valid for the lifetime of any handle
// the caller holds; undefined once every handle has been released.
func (r Ref[T]) Get() T {
	return r.val
}

// Clone returns a new independent handle to the same value, incrementing
// the shared count. The returned handle must be Released independently
// of r.
func (r Ref[T]) Clone() Ref[T] {
	if r.block != nil {
		r.block.count.Add(1)
	}
	return r
}

// Release drops this handle's count. When the count reaches zero the
// release callback supplied to NewRef runs on the releasing goroutine.
// Release is idempotent-unsafe by design, matching the original: calling
// it twice on the same handle double-decrements, the same bug class the
// original's manual reference counting permitted. Callers own exactly
// one Release per handle they hold.
func (r Ref[T]) Release() {
	if r.block == nil {
		return
	}
	if r.block.count.Add(-1) == 0 && r.block.release != nil {
		r.block.release()
	}
}

// Equal reports whether r and other refer to the same control block,
// i.e. originated from the same NewRef call.
func (r Ref[T]) Equal(other Ref[T]) bool {
	return r.block == other.block
}
