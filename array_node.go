package chamt

//============================================= arrayNode operations (§4.4)


func arrayAssoc(a *arrayNode, shift uint, hash int32, key Key, val any) (node, bool, error) {
	idx := mask(hash, shift)
	existing := a.children[idx]

	if existing == nil {
		copyChildren := a.children
		copyChildren[idx] = newLeafBitmap(shift+bitChunkSize, hash, key, val)
		return &arrayNode{count: a.count + 1, children: copyChildren}, true, nil
	}

	newChild, inserted, err := nodeAssoc(existing, shift+bitChunkSize, hash, key, val)
	if err != nil {
		return nil, false, err
	}
	if newChild == existing {
		return a, false, nil
	}

	copyChildren := a.children
	copyChildren[idx] = newChild
	return &arrayNode{count: a.count, children: copyChildren}, inserted, nil
}

func arrayWithout(a *arrayNode, shift uint, hash int32, key Key) (withoutResult, error) {
	idx := mask(hash, shift)
	existing := a.children[idx]

	if existing == nil {
		return withoutResult{outcome: outcomeNotFound}, nil
	}

	sub, err := nodeWithout(existing, shift+bitChunkSize, hash, key)
	if err != nil {
		return withoutResult{}, err
	}

	switch sub.outcome {
	case outcomeNotFound:
		return sub, nil
	case outcomeEmpty:
		newCount := a.count - 1
		if newCount == 0 {
			return withoutResult{outcome: outcomeEmpty}, nil
		}
		if newCount >= 16 {
			copyChildren := a.children
			copyChildren[idx] = nil
			return withoutResult{outcome: outcomeNewNode, node: &arrayNode{count: newCount, children: copyChildren}}, nil
		}
		return withoutResult{outcome: outcomeNewNode, node: demoteToBitmap(a, int(idx))}, nil
	default:
		copyChildren := a.children
		copyChildren[idx] = sub.node
		return withoutResult{outcome: outcomeNewNode, node: &arrayNode{count: a.count, children: copyChildren}}, nil
	}
}

// demoteToBitmap rebuilds an arrayNode with ≤15 remaining children as a
// bitmapNode (§4.4). removeIdx, if >= 0, is excluded from the rebuild (the
// slot whose child just went empty); every surviving one-leaf bitmapNode
// child is inlined directly as a leaf slot per §3's no-nested-single-leaf
// invariant.
func demoteToBitmap(a *arrayNode, removeIdx int) *bitmapNode {
	var bitmap uint32
	var slots []slot

	for i := 0; i < 32; i++ {
		if i == removeIdx || a.children[i] == nil {
			continue
		}

		bitmap |= 1 << uint(i)
		child := a.children[i]

		if bn, ok := child.(*bitmapNode); ok && len(bn.slots) == 1 && bn.slots[0].isLeaf() {
			leaf := bn.slots[0]
			slots = append(slots, slot{key: leaf.key, val: leaf.val})
		} else {
			slots = append(slots, slot{child: child})
		}
	}

	return &bitmapNode{bitmap: bitmap, slots: slots}
}

func arrayFind(a *arrayNode, shift uint, hash int32, key Key) (any, bool, error) {
	idx := mask(hash, shift)
	existing := a.children[idx]
	if existing == nil {
		return nil, false, nil
	}
	return nodeFind(existing, shift+bitChunkSize, hash, key)
}
