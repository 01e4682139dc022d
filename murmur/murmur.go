package murmur

import "encoding/binary"


//============================================= Murmur32


// a prime number that serves as a multiplier during mixing. Distributes bits and improves randomness
const c32_1 = 0x85ebca6b
// a prime number also used for mixing. Enhances distribution of hash value
const c32_2 = 0xc2b2ae35
// added to hash after each chunk is mixed in. Contributes to finalization step
const c32_3 = 0xe6546b64
// multiplied in the finalization step. Provides additional mixing effect
const c32_4 = 0x1b873593
// multiplier in the finalization step. Again, improves hash value distribution
const c32_5 = 0x5c4bcea9


// Hash32 is the Murmur32 non-cryptographic hash function, carried over
// verbatim from the trie's prior mmap-backed incarnation: chamt's default
// keys (BytesKey, StringKey) still need a fast, well-distributed 32-bit hash
// over byte slices, and the bit mixing here must not be "improved" per the
// Design Notes.
func Hash32(data []byte, seed uint32) uint32 {
	hash := seed

	length := uint32(len(data))
	total4ByteChunks := len(data) / 4

	for idx := range make([]int, total4ByteChunks) {
		startIdxOfChunk := idx * 4
		endIdxOfChunk := (idx + 1) * 4
		chunk := binary.LittleEndian.Uint32(data[startIdxOfChunk:endIdxOfChunk])

		rotateRight32(&hash, chunk)
	}

	handleRemainingBytes32(&hash, data)

	hash ^= length
	hash ^= hash >> 16
	hash *= c32_4
	hash ^= hash >> 13
	hash *= c32_5
	hash ^= hash >> 16

	return hash
}

// rotateRight32
//	For each 4-byte chunk, a series of rotations, mixings, and XOR operations are applied.
func rotateRight32(hash *uint32, chunk uint32) {
	chunk *= c32_1
	chunk = (chunk << 15) | (chunk >> 17) // Rotate left by 15
	chunk *= c32_2

	*hash ^= chunk
	*hash = (*hash << 13) | (*hash >> 19) // Rotate left by 13
	*hash = *hash*5 + c32_3
}

// handleRemainingBytes32
//	If there are any remaining bytes that are not a chunk of 4, perform mixing and rotating on these chunks.
func handleRemainingBytes32(hash *uint32, dataAsBytes []byte) {
	remaining := dataAsBytes[len(dataAsBytes)-len(dataAsBytes)%4:]

	if len(remaining) > 0 {
		var chunk uint32

		switch len(remaining) {
		case 3:
			chunk |= uint32(remaining[2]) << 16
			fallthrough
		case 2:
			chunk |= uint32(remaining[1]) << 8
			fallthrough
		case 1:
			chunk |= uint32(remaining[0])
			chunk *= c32_1
			chunk = (chunk << 15) | (chunk >> 17) // Rotate left by 15
			chunk *= c32_2
			*hash ^= chunk
		}
	}
}
