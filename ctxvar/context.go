package ctxvar

import "github.com/sirgallo/chamt"


//============================================= Context (§4.9)


// Context is a stackable environment wrapping a chamt.Map of Variable ->
// value bindings. prev forms the stack of contexts this one was entered on
// top of; entered is true iff this context currently sits somewhere on that
// stack.
type Context struct {
	vars    *chamt.Map
	prev    *Context
	entered bool
}

// New returns an empty Context.
func New() *Context {
	return &Context{vars: chamt.NewEmpty()}
}

// Copy returns a new Context sharing ctx's Map — O(1), by structural
// sharing, the same guarantee a chamt.Map gives its own callers.
func Copy(ctx *Context) *Context {
	return &Context{vars: ctx.vars}
}

// CopyCurrent returns a copy of rt's current context (a fresh empty Context
// if rt has none yet).
func CopyCurrent(rt *Runtime) *Context {
	cur, _, _ := rt.Read()
	if cur == nil {
		return New()
	}
	return Copy(cur)
}

// Enter pushes ctx onto rt as the current context.
func (ctx *Context) Enter(rt *Runtime) error {
	if ctx.entered {
		return newOpError("Enter", RuntimeErrorKind, ErrAlreadyEntered)
	}

	cur, version, _ := rt.Read()
	ctx.prev = cur
	ctx.entered = true
	rt.Write(ctx, version+1)

	return nil
}

// Exit pops ctx off rt, restoring the context it was entered on top of.
func (ctx *Context) Exit(rt *Runtime) error {
	if !ctx.entered {
		return newOpError("Exit", RuntimeErrorKind, ErrNotEntered)
	}

	cur, version, _ := rt.Read()
	if cur != ctx {
		return newOpError("Exit", RuntimeErrorKind, ErrWrongContext)
	}

	rt.Write(ctx.prev, version+1)
	ctx.prev = nil
	ctx.entered = false

	return nil
}

// Run enters ctx, invokes fn, and exits ctx on every return path —
// including a panic or error from fn — mirroring the teacher's
// defer-based cleanup discipline around resources that must always be
// released.
func (ctx *Context) Run(rt *Runtime, fn func() (any, error)) (result any, err error) {
	if enterErr := ctx.Enter(rt); enterErr != nil {
		return nil, enterErr
	}

	defer func() {
		if exitErr := ctx.Exit(rt); exitErr != nil {
			cLog.Error("context exit failed during Run:", exitErr.Error())
		}
	}()

	return fn()
}

// Get looks up key (which must be a *Variable) in ctx's bindings, returning
// def if unbound.
func (ctx *Context) Get(key chamt.Key, def any) (any, error) {
	if _, ok := key.(*Variable); !ok {
		return nil, newOpError("Get", TypeErrorKind, ErrNotVariable)
	}

	val, found, err := ctx.vars.Find(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return def, nil
	}

	return val, nil
}

// Contains reports whether key is bound in ctx.
func (ctx *Context) Contains(key chamt.Key) (bool, error) {
	if _, ok := key.(*Variable); !ok {
		return false, newOpError("Contains", TypeErrorKind, ErrNotVariable)
	}

	_, found, err := ctx.vars.Find(key)
	return found, err
}

// Len returns the number of bindings in ctx.
func (ctx *Context) Len() int64 {
	return ctx.vars.Len()
}

// Keys returns an iterator over the bound variables.
func (ctx *Context) Keys() *chamt.KeyIterator {
	return ctx.vars.Keys()
}

// Values returns an iterator over the bound values.
func (ctx *Context) Values() *chamt.ValueIterator {
	return ctx.vars.Values()
}

// Items returns an iterator over (variable, value) entries.
func (ctx *Context) Items() *chamt.ItemIterator {
	return ctx.vars.Items()
}

// Equal reports whether ctx and other hold the same bindings.
func (ctx *Context) Equal(other *Context) (bool, error) {
	return ctx.vars.Equal(other.vars)
}
