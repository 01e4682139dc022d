package ctxvar

import "testing"

import "github.com/stretchr/testify/require"


func TestVariableGetNoBindingNoDefault(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	v := NewVariable("unbound", Options{})

	_, err := v.Get(rt, nil)
	r.Error(err)

	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(LookupErrorKind, opErr.Kind)
}

func TestVariableGetConfiguredDefault(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	v := NewVariable("greeting", Options{Default: "hello", HasDefault: true})

	val, err := v.Get(rt, nil)
	r.NoError(err)
	r.Equal("hello", val)
}

func TestVariableGetExplicitDefaultOverridesConfigured(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	v := NewVariable("greeting", Options{Default: "hello", HasDefault: true})

	var override any = "bonjour"
	val, err := v.Get(rt, &override)
	r.NoError(err)
	r.Equal("bonjour", val)
}

func TestVariableSetGetImplicitContext(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	cur, _, _ := rt.Read()
	r.Nil(cur)

	v := NewVariable("x", Options{})
	_, err := v.Set(rt, 42)
	r.NoError(err)

	cur, _, _ = rt.Read()
	r.NotNil(cur, "Set with no current context must create and enter one implicitly")

	val, err := v.Get(rt, nil)
	r.NoError(err)
	r.Equal(42, val)
}

func TestVariableSetResetRoundTrip(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx := New()
	r.NoError(ctx.Enter(rt))
	defer ctx.Exit(rt)

	v := NewVariable("x", Options{Default: 0, HasDefault: true})

	tok1, err := v.Set(rt, 1)
	r.NoError(err)

	val, err := v.Get(rt, nil)
	r.NoError(err)
	r.Equal(1, val)

	tok2, err := v.Set(rt, 2)
	r.NoError(err)

	val, err = v.Get(rt, nil)
	r.NoError(err)
	r.Equal(2, val)

	r.NoError(v.Reset(rt, tok2))
	val, err = v.Get(rt, nil)
	r.NoError(err)
	r.Equal(1, val)

	r.NoError(v.Reset(rt, tok1))
	val, err = v.Get(rt, nil)
	r.NoError(err)
	r.Equal(0, val, "resetting past the first Set must restore the unbound-with-default state")
}

func TestVariableResetUnboundRemovesBinding(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx := New()
	r.NoError(ctx.Enter(rt))
	defer ctx.Exit(rt)

	v := NewVariable("x", Options{})

	tok, err := v.Set(rt, 1)
	r.NoError(err)

	bound, err := ctx.Contains(v)
	r.NoError(err)
	r.True(bound)

	r.NoError(v.Reset(rt, tok))

	bound, err = ctx.Contains(v)
	r.NoError(err)
	r.False(bound)
}

func TestVariableResetTwiceFails(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx := New()
	r.NoError(ctx.Enter(rt))
	defer ctx.Exit(rt)

	v := NewVariable("x", Options{})
	tok, err := v.Set(rt, 1)
	r.NoError(err)

	r.NoError(v.Reset(rt, tok))

	err = v.Reset(rt, tok)
	r.Error(err)
	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(RuntimeErrorKind, opErr.Kind)
}

func TestVariableResetWrongVariableFails(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx := New()
	r.NoError(ctx.Enter(rt))
	defer ctx.Exit(rt)

	v1 := NewVariable("x", Options{})
	v2 := NewVariable("y", Options{})

	tok, err := v1.Set(rt, 1)
	r.NoError(err)

	err = v2.Reset(rt, tok)
	r.Error(err)
	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(ValueErrorKind, opErr.Kind)
}

func TestVariableResetWrongContextFails(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx1 := New()
	r.NoError(ctx1.Enter(rt))

	v := NewVariable("x", Options{})
	tok, err := v.Set(rt, 1)
	r.NoError(err)

	r.NoError(ctx1.Exit(rt))

	ctx2 := New()
	r.NoError(ctx2.Enter(rt))
	defer ctx2.Exit(rt)

	err = v.Reset(rt, tok)
	r.Error(err)
	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(ValueErrorKind, opErr.Kind)
}

func TestVariableIdentityHashDistinguishesSameName(t *testing.T) {
	r := require.New(t)

	v1 := NewVariable("dup", Options{})
	v2 := NewVariable("dup", Options{})

	h1, err := v1.Hash()
	r.NoError(err)
	h2, err := v2.Hash()
	r.NoError(err)
	r.NotEqual(h1, h2)

	eq, err := v1.Equal(v2)
	r.NoError(err)
	r.False(eq)

	eq, err = v1.Equal(v1)
	r.NoError(err)
	r.True(eq)
}

func TestVariableCachePerThreadVersion(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx := New()
	r.NoError(ctx.Enter(rt))
	defer ctx.Exit(rt)

	v := NewVariable("x", Options{})
	_, err := v.Set(rt, 1)
	r.NoError(err)

	val, err := v.Get(rt, nil)
	r.NoError(err)
	r.Equal(1, val)

	entry := v.loadCache()
	r.NotNil(entry)
	r.Equal(1, entry.value)

	_, err = v.Set(rt, 2)
	r.NoError(err)
	r.Nil(v.loadCache(), "a Set must invalidate the fast-path cache")

	val, err = v.Get(rt, nil)
	r.NoError(err)
	r.Equal(2, val)
}
