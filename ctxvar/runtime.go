package ctxvar

import "github.com/google/uuid"

import "github.com/sirgallo/logger"


var cLog = logger.NewCustomLog("ctxvar")


//============================================= thread-state collaborator (§6)


// ThreadState is the external collaborator the spec calls out explicitly
// (§1, §6): "the thread-state machinery from which the current context is
// obtained" is the host's responsibility, not the core's. chamt has no
// notion of an OS thread — Go code instead owns an explicit handle (one per
// goroutine that needs Context semantics) and threads it through every call
// that needs "the current context", rather than reaching for goroutine-local
// storage tricks.
type ThreadState interface {
	// Read returns the current context, the per-thread context version
	// counter, and a stable identifier for this thread.
	Read() (ctx *Context, version uint64, threadID uint64)
	// Write installs ctx as current and bumps the version counter.
	Write(ctx *Context, version uint64)
}

// Runtime is the default ThreadState: an explicit handle representing one
// logical "thread" of Context/Variable use. It is not safe for concurrent
// use by multiple goroutines simultaneously — same as CPython's per-thread
// state, a Runtime belongs to whichever single goroutine currently holds it.
type Runtime struct {
	id         uint64
	currentCtx *Context
	version    uint64
}

// NewRuntime allocates a Runtime with a fresh, process-unique thread
// identity derived from a UUID, for hosts that don't already have their own
// notion of thread identity to supply.
func NewRuntime() *Runtime {
	id := uuid.New()
	hi := uint64(0)
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
	}

	return &Runtime{id: hi}
}

// Read implements ThreadState.
func (rt *Runtime) Read() (*Context, uint64, uint64) {
	return rt.currentCtx, rt.version, rt.id
}

// Write implements ThreadState.
func (rt *Runtime) Write(ctx *Context, version uint64) {
	rt.currentCtx = ctx
	rt.version = version
}

// bumpVersion advances rt's ctx_version without changing the current
// context, used by Variable.Set/Reset (§4.9: "ctx_version... increments on
// every context enter, exit, or set").
func (rt *Runtime) bumpVersion() {
	ctx, version, _ := rt.Read()
	rt.Write(ctx, version+1)
}
