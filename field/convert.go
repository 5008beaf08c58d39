package field

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// ElementSize is the number of bytes packed into one field element when
// encoding arbitrary byte strings (e.g. a context tag) as scalars. 31 bytes
// keeps every chunk strictly below the BN254 scalar field's modulus.
const ElementSize = 31

// BytesToElements packs data into numChunks field elements of elementSize
// big-endian bytes each. A short final chunk is padded with trailing zero
// bytes, and any chunk beyond the input is zero. It mirrors the chunk-then-pad discipline used to turn
// a context/topic byte string into Poseidon2 absorb inputs.
func BytesToElements(data []byte, numChunks, elementSize int) []*big.Int {
	elements := make([]*big.Int, numChunks)
	buf := make([]byte, elementSize)

	for i := 0; i < numChunks; i++ {
		for j := range buf {
			buf[j] = 0
		}

		start := i * elementSize
		if start >= len(data) {
			elements[i] = big.NewInt(0)
			continue
		}

		end := start + elementSize
		if end > len(data) {
			end = len(data)
		}
		copy(buf, data[start:end])

		elements[i] = new(big.Int).SetBytes(buf)
	}

	return elements
}

// ElementsToBytes is the inverse of BytesToElements, truncated to
// originalSize bytes (0 means "keep everything").
func ElementsToBytes(elements []*big.Int, elementSize, originalSize int) []byte {
	result := make([]byte, 0, len(elements)*elementSize)
	tmp := make([]byte, elementSize)

	for _, v := range elements {
		for i := range tmp {
			tmp[i] = 0
		}
		valueBytes := v.Bytes()
		if len(valueBytes) > elementSize {
			valueBytes = valueBytes[len(valueBytes)-elementSize:]
		}
		copy(tmp[elementSize-len(valueBytes):], valueBytes)
		result = append(result, tmp...)
	}

	if originalSize > 0 && originalSize < len(result) {
		result = result[:originalSize]
	}
	return result
}

// ContextElement packs an arbitrary context/topic byte string into a single
// field element, truncating to ElementSize bytes. Most contexts (an event
// id, a vote topic, a withdrawal denomination tag) fit comfortably within
// 31 bytes; callers needing more should hash the context first.
func ContextElement(context []byte) *big.Int {
	return BytesToElements(context, 1, ElementSize)[0]
}

// Witness mirrors a Digest as a gnark [Width]frontend.Variable assignment,
// used when filling a circuit witness from native big.Int values.
func Witness(d Digest) [Width]frontend.Variable {
	var out [Width]frontend.Variable
	for i, e := range d {
		out[i] = e
	}
	return out
}

// WitnessSlice converts a slice of native big.Int scalars into
// frontend.Variable assignments, in order.
func WitnessSlice(elems []*big.Int) []frontend.Variable {
	out := make([]frontend.Variable, len(elems))
	for i, e := range elems {
		out[i] = e
	}
	return out
}
