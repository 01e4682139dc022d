package chamt

import "fmt"

//============================================= structural validation


// Validate walks m's tree and checks the node-invariant properties of §8
// (11-15): no bitmapNode exceeds 16 slots, no arrayNode has fewer than 16
// children, every collisionNode has >= 2 pairwise-distinct keys sharing one
// hash, no bitmapNode nests a single-leaf bitmapNode as a child, and depth
// never exceeds maxDepth. It is grounded in the original hamt.c's node-dump
// debug printers, reworked here as a checker instead of a printer.
func (m *Map) Validate() error {
	return validateNode(m.root, 0)
}

func validateNode(n node, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("chamt: depth %d exceeds maximum %d", depth, maxDepth)
	}

	switch t := n.(type) {
	case *bitmapNode:
		if popcount(t.bitmap) != len(t.slots) {
			return fmt.Errorf("chamt: bitmapNode popcount %d != slot count %d", popcount(t.bitmap), len(t.slots))
		}
		if len(t.slots) > 16 {
			return fmt.Errorf("chamt: bitmapNode has %d slots, exceeds 16", len(t.slots))
		}

		for _, s := range t.slots {
			if s.isLeaf() {
				continue
			}
			if child, ok := s.child.(*bitmapNode); ok && len(child.slots) == 1 && child.slots[0].isLeaf() {
				return fmt.Errorf("chamt: single-leaf bitmapNode nested as a child at depth %d", depth)
			}
			if err := validateNode(s.child, depth+1); err != nil {
				return err
			}
		}

	case *arrayNode:
		if t.count < 16 {
			return fmt.Errorf("chamt: arrayNode has %d children, expected >= 16", t.count)
		}

		counted := 0
		for _, child := range t.children {
			if child == nil {
				continue
			}
			counted++
			if err := validateNode(child, depth+1); err != nil {
				return err
			}
		}
		if counted != t.count {
			return fmt.Errorf("chamt: arrayNode count %d != actual non-empty children %d", t.count, counted)
		}

	case *collisionNode:
		if len(t.pairs) < 2 {
			return fmt.Errorf("chamt: collisionNode has %d pairs, expected >= 2", len(t.pairs))
		}
		for i := range t.pairs {
			for j := i + 1; j < len(t.pairs); j++ {
				eq, err := keysEqual(t.pairs[i].key, t.pairs[j].key)
				if err != nil {
					return err
				}
				if eq {
					return fmt.Errorf("chamt: collisionNode has duplicate key at indices %d,%d", i, j)
				}
			}
		}

	default:
		return fmt.Errorf("chamt: unreachable node variant at depth %d", depth)
	}

	return nil
}
