package chamt

//============================================= bitmapNode operations (§4.3)


// newLeafBitmap builds a fresh single-leaf bitmapNode holding (key, val) at
// the slot its hash maps to for the given shift.
func newLeafBitmap(shift uint, hash int32, key Key, val any) *bitmapNode {
	return &bitmapNode{
		bitmap: bitpos(hash, shift),
		slots:  []slot{{key: key, val: val}},
	}
}

// mergeLeaves builds the subtree that replaces a leaf slot when a second,
// distinct key maps to it: a 2-pair collisionNode if the hashes coincide,
// otherwise successive single-leaf bitmapNodes assoc'd together at shift+5.
func mergeLeaves(shift uint, hash1 int32, key1 Key, val1 any, hash2 int32, key2 Key, val2 any) (node, error) {
	if hash1 == hash2 {
		return &collisionNode{hash: hash1, pairs: []kv{{key1, val1}, {key2, val2}}}, nil
	}

	base := newLeafBitmap(shift+bitChunkSize, hash1, key1, val1)
	merged, _, err := bitmapAssoc(base, shift+bitChunkSize, hash2, key2, val2)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// insertSlot returns a copy of slots with s inserted at idx.
func insertSlot(slots []slot, idx int, s slot) []slot {
	out := make([]slot, len(slots)+1)
	copy(out, slots[:idx])
	out[idx] = s
	copy(out[idx+1:], slots[idx:])
	return out
}

// removeSlotAt returns a copy of slots with the entry at idx removed.
func removeSlotAt(slots []slot, idx int) []slot {
	out := make([]slot, len(slots)-1)
	copy(out, slots[:idx])
	copy(out[idx:], slots[idx+1:])
	return out
}

// replaceSlot returns a copy of slots with the entry at idx replaced by s.
func replaceSlot(slots []slot, idx int, s slot) []slot {
	out := make([]slot, len(slots))
	copy(out, slots)
	out[idx] = s
	return out
}

// promoteToArray rebuilds a 16-slot bitmapNode plus one new pair as a 17-child
// arrayNode, per the §4.3 promotion rule.
func promoteToArray(b *bitmapNode, shift uint, newHash int32, newKey Key, newVal any) (node, error) {
	an := &arrayNode{}

	// Slot order in a bitmapNode already matches ascending bit position, so
	// positions are re-derived by walking the bitmap rather than re-hashing
	// child subtrees.
	bit := uint32(0)
	slotIdx := 0
	for i := 0; i < 32; i++ {
		if b.bitmap&(1<<uint(i)) == 0 {
			continue
		}
		s := b.slots[slotIdx]
		slotIdx++
		bit = uint32(i)

		if s.isLeaf() {
			h, err := hashKey(s.key)
			if err != nil {
				return nil, err
			}
			an.children[bit] = newLeafBitmap(shift+bitChunkSize, h, s.key, s.val)
		} else {
			an.children[bit] = s.child
		}
		an.count++
	}

	newIdx := mask(newHash, shift)
	an.children[newIdx] = newLeafBitmap(shift+bitChunkSize, newHash, newKey, newVal)
	an.count++

	return an, nil
}

func bitmapAssoc(b *bitmapNode, shift uint, hash int32, key Key, val any) (node, bool, error) {
	bit := bitpos(hash, shift)
	idx := bitindex(b.bitmap, bit)

	if b.bitmap&bit != 0 {
		s := b.slots[idx]

		if !s.isLeaf() {
			newChild, inserted, err := nodeAssoc(s.child, shift+bitChunkSize, hash, key, val)
			if err != nil {
				return nil, false, err
			}
			if newChild == s.child {
				return b, false, nil
			}

			newSlots := replaceSlot(b.slots, idx, slot{child: newChild})
			return &bitmapNode{bitmap: b.bitmap, slots: newSlots}, inserted, nil
		}

		eq, err := keysEqual(key, s.key)
		if err != nil {
			return nil, false, err
		}

		if eq {
			sameVal, err := valuesEqual(s.val, val)
			if err != nil {
				return nil, false, err
			}
			if sameVal {
				return b, false, nil
			}
			newSlots := replaceSlot(b.slots, idx, slot{key: s.key, val: val})
			return &bitmapNode{bitmap: b.bitmap, slots: newSlots}, false, nil
		}

		existingHash, err := hashKey(s.key)
		if err != nil {
			return nil, false, err
		}

		sub, err := mergeLeaves(shift, existingHash, s.key, s.val, hash, key, val)
		if err != nil {
			return nil, false, err
		}

		newSlots := replaceSlot(b.slots, idx, slot{child: sub})
		return &bitmapNode{bitmap: b.bitmap, slots: newSlots}, true, nil
	}

	if popcount(b.bitmap) >= 16 {
		an, err := promoteToArray(b, shift, hash, key, val)
		if err != nil {
			return nil, false, err
		}
		return an, true, nil
	}

	newSlots := insertSlot(b.slots, idx, slot{key: key, val: val})
	return &bitmapNode{bitmap: b.bitmap | bit, slots: newSlots}, true, nil
}

func bitmapWithout(b *bitmapNode, shift uint, hash int32, key Key) (withoutResult, error) {
	bit := bitpos(hash, shift)
	if b.bitmap&bit == 0 {
		return withoutResult{outcome: outcomeNotFound}, nil
	}

	idx := bitindex(b.bitmap, bit)
	s := b.slots[idx]

	if !s.isLeaf() {
		sub, err := nodeWithout(s.child, shift+bitChunkSize, hash, key)
		if err != nil {
			return withoutResult{}, err
		}

		switch sub.outcome {
		case outcomeNotFound:
			return sub, nil
		case outcomeEmpty:
			panic("chamt: invariant violation — without() on a child returned Empty")
		default:
			if childBitmap, ok := sub.node.(*bitmapNode); ok && len(childBitmap.slots) == 1 && childBitmap.slots[0].isLeaf() {
				leaf := childBitmap.slots[0]
				newSlots := replaceSlot(b.slots, idx, slot{key: leaf.key, val: leaf.val})
				return withoutResult{outcome: outcomeNewNode, node: &bitmapNode{bitmap: b.bitmap, slots: newSlots}}, nil
			}

			newSlots := replaceSlot(b.slots, idx, slot{child: sub.node})
			return withoutResult{outcome: outcomeNewNode, node: &bitmapNode{bitmap: b.bitmap, slots: newSlots}}, nil
		}
	}

	eq, err := keysEqual(key, s.key)
	if err != nil {
		return withoutResult{}, err
	}
	if !eq {
		return withoutResult{outcome: outcomeNotFound}, nil
	}

	if len(b.slots) == 1 {
		return withoutResult{outcome: outcomeEmpty}, nil
	}

	newSlots := removeSlotAt(b.slots, idx)
	return withoutResult{outcome: outcomeNewNode, node: &bitmapNode{bitmap: b.bitmap &^ bit, slots: newSlots}}, nil
}

func bitmapFind(b *bitmapNode, shift uint, hash int32, key Key) (any, bool, error) {
	bit := bitpos(hash, shift)
	if b.bitmap&bit == 0 {
		return nil, false, nil
	}

	idx := bitindex(b.bitmap, bit)
	s := b.slots[idx]

	if !s.isLeaf() {
		return nodeFind(s.child, shift+bitChunkSize, hash, key)
	}

	eq, err := keysEqual(key, s.key)
	if err != nil {
		return nil, false, err
	}
	if !eq {
		return nil, false, nil
	}
	return s.val, true, nil
}
