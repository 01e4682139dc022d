package ctxvar

import "testing"

import "github.com/stretchr/testify/require"

import "github.com/sirgallo/chamt"


func TestContextEnterExit(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	cur, _, _ := rt.Read()
	r.Nil(cur)

	ctx := New()
	r.NoError(ctx.Enter(rt))

	cur, _, _ = rt.Read()
	r.Same(ctx, cur)

	r.NoError(ctx.Exit(rt))
	cur, _, _ = rt.Read()
	r.Nil(cur)
}

func TestContextDoubleEnterFails(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx := New()
	r.NoError(ctx.Enter(rt))

	err := ctx.Enter(rt)
	r.Error(err)
	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(RuntimeErrorKind, opErr.Kind)

	r.NoError(ctx.Exit(rt))
}

func TestContextExitWithoutEnterFails(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx := New()

	err := ctx.Exit(rt)
	r.Error(err)
	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(RuntimeErrorKind, opErr.Kind)
}

func TestContextExitWrongContextFails(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	ctx1 := New()
	ctx2 := New()

	r.NoError(ctx1.Enter(rt))
	r.NoError(ctx2.Enter(rt))

	err := ctx1.Exit(rt)
	r.Error(err)
	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(RuntimeErrorKind, opErr.Kind)

	r.NoError(ctx2.Exit(rt))
}

func TestContextRunRestoresPrevious(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	outer := New()
	r.NoError(outer.Enter(rt))

	inner := New()
	result, err := inner.Run(rt, func() (any, error) {
		cur, _, _ := rt.Read()
		return cur, nil
	})
	r.NoError(err)
	r.Same(inner, result)

	cur, _, _ := rt.Read()
	r.Same(outer, cur)

	r.NoError(outer.Exit(rt))
}

func TestContextGetRequiresVariableKey(t *testing.T) {
	r := require.New(t)

	ctx := New()
	_, err := ctx.Get(stubKey{}, nil)
	r.Error(err)

	var opErr *OpError
	r.ErrorAs(err, &opErr)
	r.Equal(TypeErrorKind, opErr.Kind)
}

func TestContextCopyIsStructurallyShared(t *testing.T) {
	r := require.New(t)

	rt := NewRuntime()
	v := NewVariable("x", Options{})

	ctx := New()
	r.NoError(ctx.Enter(rt))

	_, err := v.Set(rt, 1)
	r.NoError(err)

	snap := CopyCurrent(rt)
	r.NoError(ctx.Exit(rt))

	val, found, err := snap.vars.Find(v)
	r.NoError(err)
	r.True(found)
	r.Equal(1, val)
}

// stubKey is a minimal chamt.Key used only to exercise the "must be a
// Variable" guard on Context.Get/Contains.
type stubKey struct{}

func (stubKey) Hash() (int64, error) { return 1, nil }
func (stubKey) Equal(other chamt.Key) (bool, error) {
	_, ok := other.(stubKey)
	return ok, nil
}
