package rt

import "runtime"

// goroutineID extracts the calling goroutine's numeric id by parsing the
// header line of runtime.Stack. It is used exclusively to identify the
// owner of a Monitor or SharedLock for reentrancy checks -- Go has no
// public goroutine-id API, so this is the same trick the teacher's
// event loop uses to establish thread affinity (see eventloop.getGoroutineID).
//
// This is deliberately the only place in rt that relies on stack-trace
// parsing; everything else (interruption, wait/notify) uses explicit
// handles passed by the caller rather than goroutine-local lookups.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
