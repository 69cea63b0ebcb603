package modest

// OperationGuard exposes the two predicates the dispatcher consults for
// every queued operation on every dispatch pass: whether it may run now,
// and whether it must instead be abandoned. Implementations must treat
// state as read-only -- the dispatcher holds it shared while calling
// either method.
type OperationGuard interface {
	CanExecute(op *Operation, state *State) bool
	MustCancel(op *Operation, state *State) bool
}

// GuardChain composes two guards. CanExecute requires both to agree;
// MustCancel fires if either demands cancellation -- a chain is never
// more permissive than its strictest link.
type GuardChain struct {
	G1 OperationGuard
	G2 OperationGuard
}

func (c *GuardChain) CanExecute(op *Operation, state *State) bool {
	if c.G1 != nil && !c.G1.CanExecute(op, state) {
		return false
	}
	return c.G2 == nil || c.G2.CanExecute(op, state)
}

func (c *GuardChain) MustCancel(op *Operation, state *State) bool {
	if c.G1 != nil && c.G1.MustCancel(op, state) {
		return true
	}
	return c.G2 != nil && c.G2.MustCancel(op, state)
}

// GuardFunc adapts a pair of predicate functions to OperationGuard for
// callers that don't need a dedicated type.
type GuardFunc struct {
	CanExecuteFunc func(op *Operation, state *State) bool
	MustCancelFunc func(op *Operation, state *State) bool
}

func (f GuardFunc) CanExecute(op *Operation, state *State) bool {
	if f.CanExecuteFunc == nil {
		return true
	}
	return f.CanExecuteFunc(op, state)
}

func (f GuardFunc) MustCancel(op *Operation, state *State) bool {
	if f.MustCancelFunc == nil {
		return false
	}
	return f.MustCancelFunc(op, state)
}
