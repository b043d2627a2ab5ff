package encoding

import (
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/internal/options"
	"github.com/stssoft/persist/internal/pool"
)

// DecimalSize is the native fixed width of a decimal: a 32-bit exponent and a
// 96-bit two's complement coefficient.
const DecimalSize = 16

// Option configures a Writer or a Reader.
type Option = options.Option[*config]

type config struct {
	engine endian.EndianEngine
}

// WithEngine selects the byte order of fixed-width values. Little-endian by default.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New("WithEngine", func(c *config) error {
		if engine == nil {
			return fmt.Errorf("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

func newConfig(opts []Option) (*config, error) {
	c := &config{engine: endian.GetLittleEndianEngine()}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Writer is the byte sink of every codec.
//
// It tracks the number of bytes written and keeps the first error; once an
// error is recorded all further writes are dropped. A Writer is not safe for
// concurrent use.
type Writer struct {
	w       io.Writer
	bb      *pool.ByteBuffer
	engine  endian.EndianEngine
	scratch [DecimalSize]byte
	n       int64
	err     error
}

// NewWriter creates a Writer on top of w.
//
// An invalid option is recorded as the Writer's error.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	wr := &Writer{w: w}
	if bb, ok := w.(*pool.ByteBuffer); ok {
		wr.bb = bb
	}

	c, err := newConfig(opts)
	if err != nil {
		wr.engine = endian.GetLittleEndianEngine()
		wr.err = err

		return wr
	}
	wr.engine = c.engine

	return wr
}

// Engine returns the byte order in use.
func (w *Writer) Engine() endian.EndianEngine {
	return w.engine
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int64 {
	return w.n
}

// Err returns the first error met by the Writer.
func (w *Writer) Err() error {
	return w.err
}

// Fail records err unless an error is already recorded.
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// WriteBytes writes p verbatim.
func (w *Writer) WriteBytes(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	if w.bb != nil {
		w.bb.B = append(w.bb.B, p...)
		w.n += int64(len(p))

		return
	}

	n, err := w.w.Write(p)
	w.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	w.Fail(err)
}

// WriteString writes the bytes of s verbatim.
func (w *Writer) WriteString(s string) {
	if w.err != nil || len(s) == 0 {
		return
	}
	if w.bb != nil {
		w.bb.B = append(w.bb.B, s...)
		w.n += int64(len(s))

		return
	}
	w.WriteBytes([]byte(s))
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) {
	if w.bb != nil && w.err == nil {
		w.bb.B = append(w.bb.B, v)
		w.n++

		return
	}
	w.scratch[0] = v
	w.WriteBytes(w.scratch[:1])
}

// WriteInt8 writes v as one byte.
func (w *Writer) WriteInt8(v int8) {
	w.WriteUint8(uint8(v))
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteUint16 writes v in 2 bytes in the Writer byte order.
func (w *Writer) WriteUint16(v uint16) {
	w.engine.PutUint16(w.scratch[:2], v)
	w.WriteBytes(w.scratch[:2])
}

// WriteInt16 writes v in 2 bytes in the Writer byte order.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteUint32 writes v in 4 bytes in the Writer byte order.
func (w *Writer) WriteUint32(v uint32) {
	w.engine.PutUint32(w.scratch[:4], v)
	w.WriteBytes(w.scratch[:4])
}

// WriteInt32 writes v in 4 bytes in the Writer byte order.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 writes v in 8 bytes in the Writer byte order.
func (w *Writer) WriteUint64(v uint64) {
	w.engine.PutUint64(w.scratch[:8], v)
	w.WriteBytes(w.scratch[:8])
}

// WriteInt64 writes v in 8 bytes in the Writer byte order.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteFloat32 writes the IEEE 754 bits of v.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes the IEEE 754 bits of v.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteUvarint writes v in UvarintSize(v) bytes.
func (w *Writer) WriteUvarint(v uint64) {
	n := PutUvarint(w.scratch[:], v)
	w.WriteBytes(w.scratch[:n])
}

// WriteVarint writes the zigzag mapping of v as a uvarint.
func (w *Writer) WriteVarint(v int64) {
	w.WriteUvarint(Zigzag(v))
}

// WriteInt64s writes every element of values at 8 bytes each.
func (w *Writer) WriteInt64s(values []int64) {
	w.writeFixed(len(values), 8, func(dst []byte, i int) {
		w.engine.PutUint64(dst, uint64(values[i]))
	})
}

// WriteFloat64s writes every element of values at 8 bytes each.
func (w *Writer) WriteFloat64s(values []float64) {
	w.writeFixed(len(values), 8, func(dst []byte, i int) {
		w.engine.PutUint64(dst, math.Float64bits(values[i]))
	})
}

// WriteFloat32s writes every element of values at 4 bytes each.
func (w *Writer) WriteFloat32s(values []float32) {
	w.writeFixed(len(values), 4, func(dst []byte, i int) {
		w.engine.PutUint32(dst, math.Float32bits(values[i]))
	})
}

// writeFixed encodes count items of width bytes each in a single write.
func (w *Writer) writeFixed(count, width int, put func(dst []byte, i int)) {
	if w.err != nil || count == 0 {
		return
	}

	var tmp *pool.ByteBuffer
	dst := w.bb
	if dst == nil {
		tmp = pool.GetBlockBuffer()
		defer pool.PutBlockBuffer(tmp)
		dst = tmp
	}

	start := len(dst.B)
	dst.Grow(count * width)
	dst.B = dst.B[:start+count*width]
	for i := range count {
		off := start + i*width
		put(dst.B[off:off+width], i)
	}

	if tmp != nil {
		w.WriteBytes(tmp.B)
	} else {
		w.n += int64(count * width)
	}
}

var (
	twoPow96   = new(big.Int).Lsh(big.NewInt(1), 96)
	maxCoef96  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 95), big.NewInt(1))
	minCoef96  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 95))
	lowMask64  = new(big.Int).SetUint64(math.MaxUint64)
	highMask32 = new(big.Int).SetUint64(math.MaxUint32)
)

// WriteDecimal writes d at DecimalSize bytes: the exponent as int32, then the
// coefficient as a 96-bit two's complement integer (low 64 bits, then high 32).
//
// A coefficient outside the signed 96-bit range records errs.ErrInvalidArgument.
func (w *Writer) WriteDecimal(d decimal.Decimal) {
	if w.err != nil {
		return
	}

	coef := d.Coefficient()
	if coef.Cmp(maxCoef96) > 0 || coef.Cmp(minCoef96) < 0 {
		w.Fail(fmt.Errorf("%w: decimal %s does not fit a 96-bit coefficient", errs.ErrInvalidArgument, d.String()))
		return
	}
	if coef.Sign() < 0 {
		coef.Add(coef, twoPow96)
	}

	lo := new(big.Int).And(coef, lowMask64).Uint64()
	hi := new(big.Int).And(new(big.Int).Rsh(coef, 64), highMask32).Uint64()

	w.engine.PutUint32(w.scratch[0:4], uint32(d.Exponent()))
	w.engine.PutUint64(w.scratch[4:12], lo)
	w.engine.PutUint32(w.scratch[12:16], uint32(hi))
	w.WriteBytes(w.scratch[:DecimalSize])
}
