package chamt

import "github.com/sirgallo/logger"


var cLog = logger.NewCustomLog("chamt")


//============================================= Map façade (§4.8)


// ValueEqualer lets a value opt into host-defined equality for Map.Equal,
// the same way Key.Equal defines equality for keys. Values that don't
// implement it fall back to Go's == operator.
type ValueEqualer interface {
	ValueEqual(other any) (bool, error)
}

// Map is the top-level persistent mapping: a root node plus the count of
// entries reachable from it. Map values are never mutated after
// construction — Assoc and Without always return a new *Map, sharing every
// subtree unaffected by the edit with the original.
type Map struct {
	root  node
	count int64
}

// emptyMap is the process-wide shared empty Map singleton (§3, §5). It must
// never be mutated; NewEmpty always returns this exact pointer.
var emptyMap = &Map{root: emptyBitmap, count: 0}

// NewEmpty returns the shared empty Map.
func NewEmpty() *Map {
	return emptyMap
}

// Len returns the number of entries in m.
func (m *Map) Len() int64 {
	return m.count
}

// Assoc returns a Map with key bound to val, sharing every subtree of m
// that the new binding doesn't touch. If key is already bound to val (by
// host equality), Assoc returns m unchanged (by pointer identity).
func (m *Map) Assoc(key Key, val any) (*Map, error) {
	hash, err := hashKey(key)
	if err != nil {
		return nil, newOpError("Assoc", HashErrorKind, err)
	}

	newRoot, inserted, err := nodeAssoc(m.root, 0, hash, key, val)
	if err != nil {
		return nil, newOpError("Assoc", classifyErr(err), err)
	}

	if newRoot == m.root {
		return m, nil
	}

	newCount := m.count
	if inserted {
		newCount++
	}

	cLog.Debug("assoc: count", newCount)
	return &Map{root: newRoot, count: newCount}, nil
}

// Without returns a Map with key's binding removed, or m unchanged (by
// pointer identity) if key was not present.
func (m *Map) Without(key Key) (*Map, error) {
	if m.count == 0 {
		return m, nil
	}

	hash, err := hashKey(key)
	if err != nil {
		return nil, newOpError("Without", HashErrorKind, err)
	}

	res, err := nodeWithout(m.root, 0, hash, key)
	if err != nil {
		return nil, newOpError("Without", classifyErr(err), err)
	}

	switch res.outcome {
	case outcomeNotFound:
		return m, nil
	case outcomeEmpty:
		return emptyMap, nil
	default:
		return &Map{root: res.node, count: m.count - 1}, nil
	}
}

// Find looks up key, returning (value, true, nil) on a hit, (nil, false,
// nil) on a clean miss, or a non-nil error if a host callback failed.
func (m *Map) Find(key Key) (any, bool, error) {
	if m.count == 0 {
		return nil, false, nil
	}

	hash, err := hashKey(key)
	if err != nil {
		return nil, false, newOpError("Find", HashErrorKind, err)
	}

	val, found, err := nodeFind(m.root, 0, hash, key)
	if err != nil {
		return nil, false, newOpError("Find", classifyErr(err), err)
	}

	return val, found, nil
}

// Get is Find with a KeyError on miss instead of a boolean, for callers that
// want the §7 KeyError taxonomy directly.
func (m *Map) Get(key Key) (any, error) {
	val, found, err := m.Find(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newOpError("Get", KeyErrorKind, ErrKeyNotFound)
	}
	return val, nil
}

// Items returns an iterator over (key, value) entries.
func (m *Map) Items() *ItemIterator {
	return &ItemIterator{it: newIterator(m.root)}
}

// Keys returns an iterator over keys.
func (m *Map) Keys() *KeyIterator {
	return &KeyIterator{it: newIterator(m.root)}
}

// Values returns an iterator over values.
func (m *Map) Values() *ValueIterator {
	return &ValueIterator{it: newIterator(m.root)}
}

// Equal reports whether m and other hold the same key/value entries. Per
// the Design Notes' open question about the source's subset-walking
// equality routine, the length check is a required short-circuit, not just
// an optimization: it is what turns the iterate-and-compare loop into a
// true equality test instead of a one-directional subset test.
func (m *Map) Equal(other *Map) (bool, error) {
	if m == other {
		return true, nil
	}
	if m.count != other.count {
		return false, nil
	}

	items := m.Items()
	for {
		entry, ok := items.Next()
		if !ok {
			break
		}

		otherVal, found, err := other.Find(entry.Key)
		if err != nil {
			return false, err
		}
		if !found {
			return false, nil
		}

		eq, err := valuesEqual(entry.Val, otherVal)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}

	return true, nil
}

// valuesEqual compares two values using ValueEqualer if the value provides
// it, falling back to Go's == for comparable dynamic types. A panic from a
// non-comparable dynamic type (slice, map, func) surfaces as EqError rather
// than crashing the caller.
func valuesEqual(a, b any) (eq bool, err error) {
	if ve, ok := a.(ValueEqualer); ok {
		return ve.ValueEqual(b)
	}

	defer func() {
		if r := recover(); r != nil {
			eq, err = false, ErrEqFailed
		}
	}()

	return a == b, nil
}

// classifyErr maps an internal sentinel error to its §7 Kind.
func classifyErr(err error) Kind {
	switch err {
	case ErrHashFailed:
		return HashErrorKind
	case ErrEqFailed:
		return EqErrorKind
	default:
		return MemoryErrorKind
	}
}
