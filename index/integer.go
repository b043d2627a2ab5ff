package index

import (
	"math"

	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/internal/pool"
)

// Integer is the set of element types handled by the integer pipeline.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Int64Codec is the integer column codec every integer width delegates to.
//
// Store divides the column by its common factor, then delta encodes it:
//
//	[version:u8][factor:uvarint][delta block]
//
// The factor is the largest value configured with WithFactors that divides
// every element, or 1. Timestamps rounded to the second, prices in whole
// cents and similar columns shrink to a fraction of their delta width this way.
type Int64Codec struct {
	factors []int64
}

// NewInt64Codec creates an Int64Codec.
func NewInt64Codec(opts ...Option) (*Int64Codec, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Int64Codec{factors: c.factors}, nil
}

// Factor returns the factor Store would pick for values.
func (c *Int64Codec) Factor(values []int64) int64 {
	if len(values) == 0 {
		return 1
	}

	for i := len(c.factors) - 1; i >= 0; i-- {
		f := c.factors[i]
		if f > 1 && dividesAll(values, f) {
			return f
		}
	}

	return 1
}

func dividesAll(values []int64, f int64) bool {
	for _, v := range values {
		if v%f != 0 {
			return false
		}
	}

	return true
}

// Store writes values as one integer column.
func (c *Int64Codec) Store(w *encoding.Writer, values []int64) error {
	w.WriteUint8(formatVersion)

	factor := c.Factor(values)
	w.WriteUvarint(uint64(factor)) //nolint:gosec
	if factor == 1 {
		return encoding.Compress(w, values)
	}

	scaled, release := pool.GetInt64Slice(len(values))
	defer release()

	var stats encoding.DeltaStats
	for i, v := range values {
		scaled[i] = v / factor
		stats.Add(scaled[i])
	}

	return encoding.CompressWithStats(w, scaled, &stats)
}

// Load reads an integer column of len(dst) values.
func (c *Int64Codec) Load(r *encoding.Reader, dst []int64) error {
	return c.LoadFunc(r, len(dst), func(i int, v int64) { dst[i] = v })
}

// LoadFunc reads an integer column of count values and hands each to set.
func (c *Int64Codec) LoadFunc(r *encoding.Reader, count int, set func(i int, v int64)) error {
	if err := readVersion(r); err != nil {
		return err
	}

	off := r.Offset()
	f, err := r.ReadUvarint()
	if err != nil {
		return err
	}
	if f == 0 || f > math.MaxInt64 {
		return errs.DataErrf(off, errs.ErrCorruptData, "integer column factor %d", f)
	}
	factor := int64(f)

	if factor == 1 {
		return encoding.Decompress(r, count, set)
	}

	return encoding.Decompress(r, count, func(i int, v int64) { set(i, v*factor) })
}

// IntegerCodec stores columns of any integer width through an Int64Codec.
//
// Values widen to int64 on store; unsigned 64-bit values keep their bit
// pattern. On load every value must fit T again, otherwise the column is
// reported as corrupt.
type IntegerCodec[T Integer] struct {
	base *Int64Codec
}

// NewIntegerCodec creates an IntegerCodec for T.
func NewIntegerCodec[T Integer](opts ...Option) (*IntegerCodec[T], error) {
	base, err := NewInt64Codec(opts...)
	if err != nil {
		return nil, err
	}

	return &IntegerCodec[T]{base: base}, nil
}

// Store writes values as one integer column.
func (c *IntegerCodec[T]) Store(w *encoding.Writer, values []T) error {
	wide, release := pool.GetInt64Slice(len(values))
	defer release()

	for i, v := range values {
		wide[i] = int64(v)
	}

	return c.base.Store(w, wide)
}

// Load reads an integer column of len(dst) values.
func (c *IntegerCodec[T]) Load(r *encoding.Reader, dst []T) error {
	return LoadConverted(c.base, r, dst, narrow[T])
}

func narrow[T Integer](v int64) (T, bool) {
	n := T(v)
	return n, int64(n) == v
}

// LoadConverted reads an integer column of len(dst) values through c and
// stores conv of each into dst. A value conv rejects fails the load with
// errs.ErrCorruptData once the column has been read.
func LoadConverted[T any](c *Int64Codec, r *encoding.Reader, dst []T, conv func(int64) (T, bool)) error {
	start := r.Offset()
	bad := -1
	err := c.LoadFunc(r, len(dst), func(i int, v int64) {
		n, ok := conv(v)
		if !ok && bad < 0 {
			bad = i
		}
		dst[i] = n
	})
	if err != nil {
		return err
	}
	if bad >= 0 {
		return errs.DataErrf(start, errs.ErrCorruptData, "value %d does not fit %T", bad, dst[bad])
	}

	return nil
}
