package chamt

import "bytes"

import "github.com/sirgallo/chamt/murmur"


//============================================= default Key implementations


// widen64 combines two Murmur32 passes (distinct seeds) into a 64-bit hash,
// giving Key implementations here a hash wider than the trie's own 32-bit
// internal representation — exactly the shape §4.1 expects a host hash to
// take before the hash adapter folds it back down.
func widen64(data []byte) int64 {
	hi := murmur.Hash32(data, 1)
	lo := murmur.Hash32(data, 2)
	return int64(hi)<<32 | int64(lo)
}

// BytesKey is the default Key implementation for raw byte-slice keys.
type BytesKey []byte

// Hash implements Key.
func (k BytesKey) Hash() (int64, error) {
	return widen64(k), nil
}

// Equal implements Key.
func (k BytesKey) Equal(other Key) (bool, error) {
	o, ok := other.(BytesKey)
	if !ok {
		return false, nil
	}
	return bytes.Equal(k, o), nil
}

// StringKey is the default Key implementation for string keys.
type StringKey string

// Hash implements Key.
func (k StringKey) Hash() (int64, error) {
	return widen64([]byte(k)), nil
}

// Equal implements Key.
func (k StringKey) Equal(other Key) (bool, error) {
	o, ok := other.(StringKey)
	if !ok {
		return false, nil
	}
	return k == o, nil
}
