package chamt

//============================================= collisionNode operations (§4.5)


func collisionAssoc(c *collisionNode, shift uint, hash int32, key Key, val any) (node, bool, error) {
	if hash != c.hash {
		// Wrap this collision under a fresh bitmapNode at this level and
		// assoc the new pair into it, per §4.5.
		wrapper := &bitmapNode{
			bitmap: bitpos(c.hash, shift),
			slots:  []slot{{child: c}},
		}
		return bitmapAssoc(wrapper, shift, hash, key, val)
	}

	for i, p := range c.pairs {
		eq, err := keysEqual(key, p.key)
		if err != nil {
			return nil, false, err
		}
		if eq {
			sameVal, err := valuesEqual(p.val, val)
			if err != nil {
				return nil, false, err
			}
			if sameVal {
				return c, false, nil
			}
			newPairs := make([]kv, len(c.pairs))
			copy(newPairs, c.pairs)
			newPairs[i] = kv{key: key, val: val}
			return &collisionNode{hash: c.hash, pairs: newPairs}, false, nil
		}
	}

	newPairs := make([]kv, len(c.pairs)+1)
	copy(newPairs, c.pairs)
	newPairs[len(c.pairs)] = kv{key: key, val: val}
	return &collisionNode{hash: c.hash, pairs: newPairs}, true, nil
}

func collisionWithout(c *collisionNode, shift uint, hash int32, key Key) (withoutResult, error) {
	if hash != c.hash {
		return withoutResult{outcome: outcomeNotFound}, nil
	}

	for i, p := range c.pairs {
		eq, err := keysEqual(key, p.key)
		if err != nil {
			return withoutResult{}, err
		}
		if !eq {
			continue
		}

		if len(c.pairs) == 2 {
			other := c.pairs[1-i]
			demoted := &bitmapNode{
				bitmap: bitpos(hash, shift),
				slots:  []slot{{key: other.key, val: other.val}},
			}
			return withoutResult{outcome: outcomeNewNode, node: demoted}, nil
		}

		newPairs := make([]kv, 0, len(c.pairs)-1)
		newPairs = append(newPairs, c.pairs[:i]...)
		newPairs = append(newPairs, c.pairs[i+1:]...)
		return withoutResult{outcome: outcomeNewNode, node: &collisionNode{hash: c.hash, pairs: newPairs}}, nil
	}

	return withoutResult{outcome: outcomeNotFound}, nil
}

func collisionFind(c *collisionNode, hash int32, key Key) (any, bool, error) {
	if hash != c.hash {
		return nil, false, nil
	}

	for _, p := range c.pairs {
		eq, err := keysEqual(key, p.key)
		if err != nil {
			return nil, false, err
		}
		if eq {
			return p.val, true, nil
		}
	}

	return nil, false, nil
}
