package encoding

import "math/bits"

const bitsTableSize = 2048 // 2^11

var bitsTable [bitsTableSize]uint8

func init() {
	for i := range bitsTable {
		bitsTable[i] = uint8(bitsClassic(uint64(i)))
	}
}

// bitsClassic is the reference definition: 1 for 0, otherwise ceil(log2(v+1)).
func bitsClassic(v uint64) int {
	if v == 0 {
		return 1
	}

	return bits.Len64(v)
}

// Bits returns the number of bits needed to represent v, counting 0 as one bit.
//
// Values below 2048 come from a table; larger values are shifted down 11 bits
// at a time until they fall into the table.
func Bits(v uint64) int {
	n := 0
	for v >= bitsTableSize {
		v >>= 11
		n += 11
	}

	return n + int(bitsTable[v])
}
