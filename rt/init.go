package rt

import (
	"go.uber.org/automaxprocs/maxprocs"
)

// init right-sizes GOMAXPROCS to the host's cgroup CPU quota before any
// WorkerPool computes a default capacity from runtime.GOMAXPROCS(0) --
// without it, a container limited to e.g. 2 CPUs would still see the
// host's full core count and size its default pool accordingly.
func init() {
	_, _ = maxprocs.Set()
}
