package modest

import "errors"

// Sentinel errors for engine lifecycle transitions and body failures.
// Lifecycle errors are not currently returned anywhere -- start/stop are
// idempotent no-ops per the engine contract -- but are kept as named
// values so callers have something concrete to errors.Is against if that
// changes, and so logging call sites have a stable identity to attach.
var (
	ErrAlreadyStarted = errors.New("modest: engine already started")
	ErrAlreadyStopped = errors.New("modest: engine already stopped")

	// ErrBodyFailed wraps any error (returned or recovered from a panic)
	// that terminated an operation's body abnormally. It is stored on
	// the Operation and retrievable via Operation.Err after HasStopped.
	ErrBodyFailed = errors.New("modest: operation body failed")
)
