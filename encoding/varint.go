package encoding

import "math/bits"

// MaxVarintLen64 is the longest encoding of a 64-bit magnitude.
const MaxVarintLen64 = 10

// UvarintSize returns the number of bytes PutUvarint writes for v.
func UvarintSize(v uint64) int {
	return (bits.Len64(v|1) + 6) / 7
}

// VarintSize returns the number of bytes the zigzag varint of v occupies.
func VarintSize(v int64) int {
	return UvarintSize(Zigzag(v))
}

// PutUvarint encodes v into buf and returns the number of bytes written.
// buf must hold at least UvarintSize(v) bytes.
func PutUvarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)

	return i + 1
}

// AppendUvarint appends the encoding of v to dst.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// Uvarint decodes a varint from the front of buf.
//
// It returns the value and the number of bytes consumed. n == 0 means buf
// ended before the terminating byte; n < 0 means the value overflows 64 bits
// and -n bytes were examined.
func Uvarint(buf []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, b := range buf {
		if i == MaxVarintLen64 {
			return 0, -(i + 1)
		}
		if b < 0x80 {
			if i == MaxVarintLen64-1 && b > 1 {
				return 0, -(i + 1)
			}

			return x | uint64(b)<<s, i + 1
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}

	return 0, 0
}

// Zigzag maps signed to unsigned so that values near zero stay small:
// 0→0, -1→1, 1→2, -2→3.
func Zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63) //nolint:gosec
}

// Unzigzag reverses Zigzag.
func Unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1) //nolint:gosec
}
