package encoding

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
)

// Reader is the byte source of every codec.
//
// A Reader created by NewBytesReader decodes straight from the slice; one
// created by NewReader pulls from an io.Reader. A Reader is not safe for
// concurrent use.
type Reader struct {
	r       io.Reader
	data    []byte
	inMem   bool
	engine  endian.EndianEngine
	scratch [DecimalSize]byte
	off     int64
}

// NewReader creates a Reader pulling from r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Reader{r: r, engine: c.engine}, nil
}

// NewBytesReader creates a Reader over data. The slice is not copied.
func NewBytesReader(data []byte, opts ...Option) (*Reader, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Reader{data: data, inMem: true, engine: c.engine}, nil
}

// Engine returns the byte order in use.
func (r *Reader) Engine() endian.EndianEngine {
	return r.engine
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Remaining returns the number of unread bytes of a bytes reader, or -1 when
// the Reader streams from an io.Reader.
func (r *Reader) Remaining() int {
	if !r.inMem {
		return -1
	}

	return len(r.data) - int(r.off)
}

// errAt wraps a sentinel with the current offset.
func (r *Reader) errAt(err error, format string, args ...any) error {
	return errs.DataErrf(r.off, err, format, args...)
}

// view returns the next n bytes without copying when possible.
// The returned slice is only valid until the next call.
func (r *Reader) view(n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, r.errAt(errs.ErrInvalidArgument, "negative length %d reading %s", n, what)
	}

	if r.inMem {
		if len(r.data)-int(r.off) < n {
			return nil, r.errAt(errs.ErrUnexpectedEOF, "reading %s (%d bytes)", what, n)
		}
		p := r.data[r.off : r.off+int64(n)]
		r.off += int64(n)

		return p, nil
	}

	var p []byte
	if n <= len(r.scratch) {
		p = r.scratch[:n]
	} else {
		p = make([]byte, n)
	}
	m, err := io.ReadFull(r.r, p)
	r.off += int64(m)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, r.errAt(errs.ErrUnexpectedEOF, "reading %s (%d bytes)", what, n)
		}

		return nil, r.errAt(err, "reading %s", what)
	}

	return p, nil
}

// ReadFull fills p.
func (r *Reader) ReadFull(p []byte) error {
	v, err := r.view(len(p), "bytes")
	if err != nil {
		return err
	}
	copy(p, v)

	return nil
}

// ReadBytes returns the next n bytes in a newly allocated slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	v, err := r.view(n, "bytes")
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, v)

	return out, nil
}

// ReadString returns the next n bytes as a string.
func (r *Reader) ReadString(n int) (string, error) {
	v, err := r.view(n, "string")
	if err != nil {
		return "", err
	}

	return string(v), nil
}

// Skip discards the next n bytes.
func (r *Reader) Skip(n int) error {
	if r.inMem {
		_, err := r.view(n, "skipped bytes")
		return err
	}
	if n < 0 {
		return r.errAt(errs.ErrInvalidArgument, "negative skip %d", n)
	}
	m, err := io.CopyN(io.Discard, r.r, int64(n))
	r.off += m
	if err != nil {
		return r.errAt(errs.ErrUnexpectedEOF, "skipping %d bytes", n)
	}

	return nil
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.inMem && int(r.off) < len(r.data) {
		v := r.data[r.off]
		r.off++

		return v, nil
	}
	p, err := r.view(1, "uint8")
	if err != nil {
		return 0, err
	}

	return p[0], nil
}

// ReadInt8 reads one byte as a signed value.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadUint16 reads 2 bytes in the Reader byte order.
func (r *Reader) ReadUint16() (uint16, error) {
	p, err := r.view(2, "uint16")
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(p), nil
}

// ReadInt16 reads 2 bytes in the Reader byte order.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads 4 bytes in the Reader byte order.
func (r *Reader) ReadUint32() (uint32, error) {
	p, err := r.view(4, "uint32")
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(p), nil
}

// ReadInt32 reads 4 bytes in the Reader byte order.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads 8 bytes in the Reader byte order.
func (r *Reader) ReadUint64() (uint64, error) {
	p, err := r.view(8, "uint64")
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(p), nil
}

// ReadInt64 reads 8 bytes in the Reader byte order.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads the IEEE 754 bits of a float32.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads the IEEE 754 bits of a float64.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadUvarint reads a varint written by WriteUvarint.
//
// A stream that ends before the terminating byte, or a varint longer than
// MaxVarintLen64 bytes, fails with errs.ErrMalformedVarint.
func (r *Reader) ReadUvarint() (uint64, error) {
	start := r.off

	if r.inMem {
		v, n := Uvarint(r.data[r.off:])
		if n <= 0 {
			return 0, errs.DataErrf(start, errs.ErrMalformedVarint, "reading uvarint")
		}
		r.off += int64(n)

		return v, nil
	}

	var x uint64
	var s uint
	for i := range MaxVarintLen64 {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, errs.DataErrf(start, errs.ErrMalformedVarint, "reading uvarint")
		}
		if b < 0x80 {
			if i == MaxVarintLen64-1 && b > 1 {
				break
			}

			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}

	return 0, errs.DataErrf(start, errs.ErrMalformedVarint, "reading uvarint: overflows 64 bits")
}

// ReadVarint reads a zigzag varint written by WriteVarint.
func (r *Reader) ReadVarint() (int64, error) {
	v, err := r.ReadUvarint()
	return Unzigzag(v), err
}

// ReadCount reads a uvarint that must fit a non-negative int no larger than limit.
// A limit <= 0 disables the upper bound.
func (r *Reader) ReadCount(limit int) (int, error) {
	start := r.off
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 || (limit > 0 && v > uint64(limit)) {
		return 0, errs.DataErrf(start, errs.ErrCorruptData, "count %d out of range", v)
	}

	return int(v), nil
}

// ReadInt64s fills dst with fixed-width values written by WriteInt64s.
func (r *Reader) ReadInt64s(dst []int64) error {
	for i := range dst {
		v, err := r.ReadInt64()
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return nil
}

// ReadFloat64s fills dst with fixed-width values written by WriteFloat64s.
func (r *Reader) ReadFloat64s(dst []float64) error {
	for i := range dst {
		v, err := r.ReadFloat64()
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return nil
}

// ReadFloat32s fills dst with fixed-width values written by WriteFloat32s.
func (r *Reader) ReadFloat32s(dst []float32) error {
	for i := range dst {
		v, err := r.ReadFloat32()
		if err != nil {
			return err
		}
		dst[i] = v
	}

	return nil
}

// ReadDecimal reads a decimal written by WriteDecimal.
func (r *Reader) ReadDecimal() (decimal.Decimal, error) {
	p, err := r.view(DecimalSize, "decimal")
	if err != nil {
		return decimal.Decimal{}, err
	}

	exp := int32(r.engine.Uint32(p[0:4]))
	lo := r.engine.Uint64(p[4:12])
	hi := r.engine.Uint32(p[12:16])

	coef := new(big.Int).SetUint64(uint64(hi))
	coef.Lsh(coef, 64)
	coef.Or(coef, new(big.Int).SetUint64(lo))
	if hi&0x80000000 != 0 {
		coef.Sub(coef, twoPow96)
	}

	return decimal.NewFromBigInt(coef, exp), nil
}

// String describes the reader position, for error messages.
func (r *Reader) String() string {
	if r.inMem {
		return fmt.Sprintf("bytes reader at %d/%d", r.off, len(r.data))
	}

	return fmt.Sprintf("stream reader at %d", r.off)
}
