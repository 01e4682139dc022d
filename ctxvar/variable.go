package ctxvar

import "sync/atomic"
import "unsafe"

import "github.com/sirgallo/chamt"
import "github.com/sirgallo/chamt/murmur"


//============================================= Variable (§4.9)


// cacheEntry is the fast-path cache payload: the value observed plus the
// (threadID, ctxVersion) pair it is valid for. Stored behind a single
// atomic.Pointer so a reader never observes a torn combination of value and
// version — the concurrency note in §5 calls this out explicitly.
type cacheEntry struct {
	value      any
	threadID   uint64
	ctxVersion uint64
}

// Variable is a host-facing variable identity: a name, an optional default,
// a trie hash computed once at creation, and a fast-path cache of its last
// successful lookup.
type Variable struct {
	name       string
	def        any
	hasDefault bool
	hash       int64
	mayCycle   bool
	cache      atomic.Pointer[cacheEntry]
}

// Options configures a new Variable.
type Options struct {
	// Default is returned by Get when the variable is unbound and the
	// caller supplied no explicit default.
	Default any
	// HasDefault distinguishes "no default" from "default is nil".
	HasDefault bool
	// MayCycle reports whether this variable's name or default may
	// participate in a reference cycle (§6). Go's GC traces cycles
	// itself, so this predicate is informational only here — see
	// DESIGN.md — but hosts embedding chamt in a refcounted runtime would
	// wire it to their cycle collector the way CPython's hamt.c does.
	MayCycle func() bool
}

// NewVariable creates a Variable. Its trie hash is computed immediately,
// mixing the variable's own address with the hash of its name (§4.9) so
// that two variables sharing a name never collide, and sequentially
// allocated variables spread well across a trie level.
func NewVariable(name string, opts Options) *Variable {
	v := &Variable{
		name:       name,
		def:        opts.Default,
		hasDefault: opts.HasDefault,
		mayCycle:   opts.MayCycle != nil && opts.MayCycle(),
	}

	addr := int64(uintptr(unsafe.Pointer(v)))
	nameHash := int64(murmur.Hash32([]byte(name), 1))
	v.hash = addr ^ nameHash

	if v.mayCycle {
		cLog.Debug("variable may participate in a reference cycle:", name)
	}

	return v
}

// Hash implements chamt.Key.
func (v *Variable) Hash() (int64, error) {
	return v.hash, nil
}

// Equal implements chamt.Key. Variables are compared by identity: two
// Variable values with the same name are still distinct keys.
func (v *Variable) Equal(other chamt.Key) (bool, error) {
	ov, ok := other.(*Variable)
	if !ok {
		return false, nil
	}
	return v == ov, nil
}

// Name returns the variable's name.
func (v *Variable) Name() string { return v.name }

func (v *Variable) loadCache() *cacheEntry {
	return v.cache.Load()
}

func (v *Variable) storeCache(value any, threadID, ctxVersion uint64) {
	v.cache.Store(&cacheEntry{value: value, threadID: threadID, ctxVersion: ctxVersion})
}

func (v *Variable) invalidateCache() {
	v.cache.Store(nil)
}

// Get resolves v's value in rt's current context. def, if non-nil, takes
// precedence over v's own configured default when v is unbound.
func (v *Variable) Get(rt *Runtime, def *any) (any, error) {
	cur, version, threadID := rt.Read()

	if entry := v.loadCache(); entry != nil && entry.threadID == threadID && entry.ctxVersion == version {
		return entry.value, nil
	}

	if cur == nil {
		return v.resolveDefault(def)
	}

	val, found, err := cur.vars.Find(v)
	if err != nil {
		return nil, err
	}

	if !found {
		return v.resolveDefault(def)
	}

	v.storeCache(val, threadID, version)
	return val, nil
}

func (v *Variable) resolveDefault(def *any) (any, error) {
	if def != nil {
		return *def, nil
	}
	if v.hasDefault {
		return v.def, nil
	}
	return nil, newOpError("Get", LookupErrorKind, ErrNoBinding)
}

// Set rebinds v to value in rt's current context (creating and entering an
// implicit empty context first if rt has none), invalidating v's cache and
// returning a Token that can restore the prior binding exactly once.
func (v *Variable) Set(rt *Runtime, value any) (*Token, error) {
	cur, _, _ := rt.Read()
	if cur == nil {
		cur = New()
		if err := cur.Enter(rt); err != nil {
			return nil, err
		}
	}

	oldVal, hadOld, err := cur.vars.Find(v)
	if err != nil {
		return nil, err
	}

	newMap, err := cur.vars.Assoc(v, value)
	if err != nil {
		return nil, err
	}
	cur.vars = newMap

	v.invalidateCache()
	rt.bumpVersion()

	tok := &Token{ctx: cur, variable: v}
	if hadOld {
		tok.oldValue = oldVal
		tok.hasOld = true
	}

	return tok, nil
}

// Reset restores the binding token recorded before the Set that produced
// it. A token may be used for exactly one Reset.
func (v *Variable) Reset(rt *Runtime, tok *Token) error {
	if tok.used {
		return newOpError("Reset", RuntimeErrorKind, ErrAlreadyUsed)
	}
	if tok.variable != v {
		return newOpError("Reset", ValueErrorKind, ErrWrongVariable)
	}

	cur, _, _ := rt.Read()
	if tok.ctx != cur {
		return newOpError("Reset", ValueErrorKind, ErrWrongContext)
	}

	tok.used = true

	if !tok.hasOld {
		// Fast path from original_source/Python/context.c's contextvar_reset:
		// if the binding is already absent from this context, there is
		// nothing to remove — skip the without() call and only invalidate
		// the cache and bump the version.
		if _, found, err := cur.vars.Find(v); err != nil {
			return err
		} else if !found {
			v.invalidateCache()
			rt.bumpVersion()
			return nil
		}

		newMap, err := cur.vars.Without(v)
		if err != nil {
			return err
		}
		cur.vars = newMap
	} else {
		newMap, err := cur.vars.Assoc(v, tok.oldValue)
		if err != nil {
			return err
		}
		cur.vars = newMap
	}

	v.invalidateCache()
	rt.bumpVersion()

	return nil
}
