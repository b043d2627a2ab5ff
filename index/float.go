package index

import (
	"math"

	"github.com/stssoft/persist/encoding"
)

// pow10 holds the exactly representable powers of ten used as scales.
var pow10 = [maxLoadDigits + 1]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9,
	1e10, 1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18,
}

// twoPow63 is the first float64 outside the int64 range.
const twoPow63 = float64(1 << 63)

// scaleFloat returns round(v*10^digits) when it fits an int64.
// NaN, infinities and negative zero never fit.
func scaleFloat(v float64, digits int) (int64, bool) {
	if v == 0 && math.Signbit(v) {
		return 0, false
	}
	s := v * pow10[digits]
	if !(s > -twoPow63 && s < twoPow63) {
		return 0, false
	}

	return int64(math.Round(s)), true
}

type float64Ops struct{}

func (float64Ops) quantize(v float64, digits int) (int64, bool) {
	q, ok := scaleFloat(v, digits)
	if !ok {
		return 0, false
	}

	return q, float64(q)/pow10[digits] == v
}

func (float64Ops) restore(q int64, digits int) float64 {
	return float64(q) / pow10[digits]
}

func (float64Ops) writeNative(w *encoding.Writer, values []float64) {
	w.WriteFloat64s(values)
}

func (float64Ops) readNative(r *encoding.Reader, dst []float64) error {
	return r.ReadFloat64s(dst)
}

func (float64Ops) name() string { return "float64" }

// float32 values are scaled in float64 and compared after narrowing back.
type float32Ops struct{}

func (float32Ops) quantize(v float32, digits int) (int64, bool) {
	q, ok := scaleFloat(float64(v), digits)
	if !ok {
		return 0, false
	}

	return q, float32(float64(q)/pow10[digits]) == v
}

func (float32Ops) restore(q int64, digits int) float32 {
	return float32(float64(q) / pow10[digits])
}

func (float32Ops) writeNative(w *encoding.Writer, values []float32) {
	w.WriteFloat32s(values)
}

func (float32Ops) readNative(r *encoding.Reader, dst []float32) error {
	return r.ReadFloat32s(dst)
}

func (float32Ops) name() string { return "float32" }

// NewFloat64Codec creates the float64 column codec.
func NewFloat64Codec(opts ...Option) (*ScaledCodec[float64], error) {
	return newScaledCodec[float64](float64Ops{}, opts)
}

// NewFloat32Codec creates the float32 column codec.
func NewFloat32Codec(opts ...Option) (*ScaledCodec[float32], error) {
	return newScaledCodec[float32](float32Ops{}, opts)
}
