package chamt

import "github.com/sirgallo/chamt/internal/pool"
import "github.com/sirgallo/utils"

//============================================= depth-first iterator (§4.7)


// framePool recycles iterator scratch stacks across short-lived walks; see
// internal/pool for why this is safe where pooling trie nodes would not be.
var framePool = pool.New[iterFrame](64)


// iterFrame is one level of the iterator's explicit stack: the node being
// walked and the next index to visit within it.
type iterFrame struct {
	n   node
	idx int
}

// Iterator walks a Map's entries depth-first. It holds no references beyond
// its own stack frames — the tree itself is immutable, so nothing the
// iterator visits can be mutated out from under it, and the stack is
// pre-sized to maxDepth so a full walk never grows the backing array.
type Iterator struct {
	stack []iterFrame
}

// newIterator returns an iterator positioned at root, ready for the first
// call to next. Its scratch stack comes from framePool.
func newIterator(root node) *Iterator {
	stack := append(framePool.Get(), iterFrame{n: root, idx: 0})
	return &Iterator{stack: stack}
}

// release returns it's scratch stack to framePool. Calling it after the
// walk is exhausted, or to abandon a partial walk early, lets the next
// Map.Items()/Keys()/Values() call skip a fresh allocation.
func (it *Iterator) release() {
	framePool.Put(it.stack[:0])
	it.stack = nil
}

// next advances the walk and returns the next (key, value) pair, or
// ok == false once every entry has been visited.
func (it *Iterator) next() (Key, any, bool) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]

		switch n := top.n.(type) {
		case *bitmapNode:
			if top.idx >= len(n.slots) {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}

			s := n.slots[top.idx]
			top.idx++

			if s.isLeaf() {
				return s.key, s.val, true
			}
			it.stack = append(it.stack, iterFrame{n: s.child, idx: 0})

		case *collisionNode:
			if top.idx >= len(n.pairs) {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}

			p := n.pairs[top.idx]
			top.idx++
			return p.key, p.val, true

		case *arrayNode:
			for top.idx < 32 && n.children[top.idx] == nil {
				top.idx++
			}
			if top.idx >= 32 {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}

			child := n.children[top.idx]
			top.idx++
			it.stack = append(it.stack, iterFrame{n: child, idx: 0})

		default:
			panic("chamt: unreachable node variant")
		}
	}

	return nil, utils.GetZero[any](), false
}

// KeyIterator projects the walk down to just keys.
type KeyIterator struct{ it *Iterator }

// Next returns the next key, or ok == false when exhausted.
func (ki *KeyIterator) Next() (Key, bool) {
	k, _, ok := ki.it.next()
	return k, ok
}

// Release returns the iterator's scratch stack to the pool. Optional — only
// useful to callers that walk many Maps and want to avoid reallocating a
// stack per walk.
func (ki *KeyIterator) Release() { ki.it.release() }

// ValueIterator projects the walk down to just values.
type ValueIterator struct{ it *Iterator }

// Next returns the next value, or ok == false when exhausted.
func (vi *ValueIterator) Next() (any, bool) {
	_, v, ok := vi.it.next()
	return v, ok
}

// Release returns the iterator's scratch stack to the pool.
func (vi *ValueIterator) Release() { vi.it.release() }

// Entry is one (key, value) pair yielded by an ItemIterator.
type Entry struct {
	Key Key
	Val any
}

// ItemIterator projects the walk down to (key, value) pairs.
type ItemIterator struct{ it *Iterator }

// Next returns the next entry, or ok == false when exhausted.
func (ei *ItemIterator) Next() (Entry, bool) {
	k, v, ok := ei.it.next()
	if !ok {
		return Entry{}, false
	}
	return Entry{Key: k, Val: v}, true
}

// Release returns the iterator's scratch stack to the pool.
func (ei *ItemIterator) Release() { ei.it.release() }
