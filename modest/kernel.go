package modest

// Version is the Kernel's reported version string.
const Version = "1.0"

// Kernel is the conventional top-level entry point wrapping an Engine:
// construct one, Start it, RunOperation as many times as needed, Stop
// it. It adds nothing over calling Engine directly except a narrower,
// more discoverable surface for the common case.
type Kernel struct {
	engine *Engine
}

// NewKernel constructs a Kernel around a freshly-built Engine.
func NewKernel(opts ...Option) *Kernel {
	return &Kernel{engine: NewEngine(opts...)}
}

// Start starts the underlying engine.
func (k *Kernel) Start() { k.engine.Start() }

// Stop stops the underlying engine, draining as Engine.Stop documents.
func (k *Kernel) Stop() { k.engine.Stop() }

// RunOperation queues op on the underlying engine.
func (k *Kernel) RunOperation(op *Operation) { k.engine.Queue(op) }

// Engine returns the Kernel's underlying Engine, for callers that need
// the fuller surface (Pool, State).
func (k *Kernel) Engine() *Engine { return k.engine }

// Version returns the Kernel's version string.
func (k *Kernel) Version() string { return Version }
