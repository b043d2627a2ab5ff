package index

import (
	"github.com/shopspring/decimal"

	"github.com/stssoft/persist/encoding"
)

// decimal values scale exactly; the only failures are more than the capped
// number of fractional digits and coefficients beyond int64.
type decimalOps struct{}

func (decimalOps) quantize(v decimal.Decimal, digits int) (int64, bool) {
	s := v.Shift(int32(digits)) //nolint:gosec
	if !s.IsInteger() {
		return 0, false
	}
	b := s.BigInt()
	if !b.IsInt64() {
		return 0, false
	}

	return b.Int64(), true
}

func (decimalOps) restore(q int64, digits int) decimal.Decimal {
	return decimal.New(q, -int32(digits)) //nolint:gosec
}

func (decimalOps) writeNative(w *encoding.Writer, values []decimal.Decimal) {
	for _, v := range values {
		w.WriteDecimal(v)
	}
}

func (decimalOps) readNative(r *encoding.Reader, dst []decimal.Decimal) error {
	for i := range dst {
		v, err := r.ReadDecimal()
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return nil
}

func (decimalOps) name() string { return "decimal" }

// NewDecimalCodec creates the decimal column codec.
//
// Decoded values compare Equal to the stored ones; their exponent is the
// column scale, so 1.5 stored next to 2.25 reads back as 1.50.
func NewDecimalCodec(opts ...Option) (*ScaledCodec[decimal.Decimal], error) {
	return newScaledCodec[decimal.Decimal](decimalOps{}, opts)
}
