package index

import (
	"context"
	"fmt"

	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/internal/pool"
	"github.com/stssoft/persist/logging"
)

const formatVersion = format.IndexVersion

// scaler converts one element type to and from its decimal-scaled integer.
type scaler[T any] interface {
	// quantize returns v*10^digits as an integer and whether restore gives v back.
	quantize(v T, digits int) (int64, bool)
	restore(q int64, digits int) T
	writeNative(w *encoding.Writer, values []T)
	readNative(r *encoding.Reader, dst []T) error
	name() string
}

// ScaledCodec stores floating point and decimal columns.
//
// Store looks for the smallest number of decimal digits d such that every
// value v becomes an integer round(v*10^d) that converts back to v exactly,
// then delta encodes those integers:
//
//	[version:u8][digits:i8][delta block]
//
// If no d up to the digit cap reproduces every value, the column is written
// with digits = -1 followed by every value at native width. A column of
// prices with two decimals therefore costs about as much as a column of
// small integers, while arbitrary measurements still round-trip bit-exactly.
//
// The digits scan stops early once the cap is reached; a second pass over
// the column verifies the chosen scale and tries larger ones before giving up.
type ScaledCodec[T any] struct {
	ops       scaler[T]
	maxDigits int
	logger    *logging.Logger
}

func newScaledCodec[T any](ops scaler[T], opts []Option) (*ScaledCodec[T], error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &ScaledCodec[T]{ops: ops, maxDigits: c.maxDigits, logger: c.logger}, nil
}

// Digits returns the scale Store would use for values, or format.DigitsNative.
func (c *ScaledCodec[T]) Digits(values []T) int {
	scaled, release := pool.GetInt64Slice(len(values))
	defer release()

	var stats encoding.DeltaStats
	d, err := c.quantizeAll(values, scaled, &stats)
	if err != nil {
		return int(format.DigitsNative)
	}

	return d
}

// Store writes values as one column.
func (c *ScaledCodec[T]) Store(w *encoding.Writer, values []T) error {
	w.WriteUint8(formatVersion)

	scaled, release := pool.GetInt64Slice(len(values))
	defer release()

	var stats encoding.DeltaStats
	digits, err := c.quantizeAll(values, scaled, &stats)
	if err != nil {
		c.logger.LogNativeFallback(context.Background(), c.ops.name(), len(values), err)
		w.WriteInt8(format.DigitsNative)
		c.ops.writeNative(w, values)

		return w.Err()
	}

	w.WriteInt8(int8(digits)) //nolint:gosec

	return encoding.CompressWithStats(w, scaled, &stats)
}

// Load reads a column of len(dst) values.
func (c *ScaledCodec[T]) Load(r *encoding.Reader, dst []T) error {
	if err := readVersion(r); err != nil {
		return err
	}

	off := r.Offset()
	digits, err := r.ReadInt8()
	if err != nil {
		return err
	}
	if digits == format.DigitsNative {
		return c.ops.readNative(r, dst)
	}
	if digits < 0 || digits > maxLoadDigits {
		return errs.DataErrf(off, errs.ErrCorruptData, "%s column digits %d", c.ops.name(), digits)
	}

	d := int(digits)

	return encoding.Decompress(r, len(dst), func(i int, q int64) {
		dst[i] = c.ops.restore(q, d)
	})
}

// quantizeAll fills dst and stats with the scaled column and returns the
// scale used. errs.ErrPrecisionOverflow means the column must be stored natively.
func (c *ScaledCodec[T]) quantizeAll(values []T, dst []int64, stats *encoding.DeltaStats) (int, error) {
	digits, err := c.scanDigits(values)
	if err != nil {
		return 0, err
	}

	for ; digits <= c.maxDigits; digits++ {
		if c.quantizeInto(values, dst, digits, stats) {
			return digits, nil
		}
	}

	return 0, fmt.Errorf("%w: no scale up to %d digits reproduces every value", errs.ErrPrecisionOverflow, c.maxDigits)
}

// scanDigits returns the running maximum of the digits each value needs.
func (c *ScaledCodec[T]) scanDigits(values []T) (int, error) {
	digits := 0
	for i, v := range values {
		for {
			if _, ok := c.ops.quantize(v, digits); ok {
				break
			}
			digits++
			if digits > c.maxDigits {
				return 0, fmt.Errorf("%w: value %d needs more than %d digits", errs.ErrPrecisionOverflow, i, c.maxDigits)
			}
		}
		if digits == c.maxDigits {
			break
		}
	}

	return digits, nil
}

func (c *ScaledCodec[T]) quantizeInto(values []T, dst []int64, digits int, stats *encoding.DeltaStats) bool {
	stats.Reset()
	for i, v := range values {
		q, ok := c.ops.quantize(v, digits)
		if !ok {
			return false
		}
		dst[i] = q
		stats.Add(q)
	}

	return true
}
