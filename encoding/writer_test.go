package encoding

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/internal/pool"
)

type limitedWriter struct {
	buf   bytes.Buffer
	limit int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.buf.Len()+len(p) > l.limit {
		return 0, errors.New("disk full")
	}

	return l.buf.Write(p)
}

func writeAll(w *Writer) {
	w.WriteBool(true)
	w.WriteInt8(-3)
	w.WriteUint16(0xBEEF)
	w.WriteInt32(-123456)
	w.WriteUint64(math.MaxUint64 - 1)
	w.WriteFloat32(1.5)
	w.WriteFloat64(-2.25)
	w.WriteVarint(-300)
	w.WriteString("héllo")
	w.WriteInt64s([]int64{1, -2, 3})
	w.WriteFloat64s([]float64{0.5, math.Inf(-1)})
	w.WriteFloat32s([]float32{3.25})
}

func readAll(t *testing.T, r *Reader) {
	t.Helper()

	b, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, b)

	i8, err := r.ReadInt8()
	require.NoError(t, err)
	require.Equal(t, int8(-3), i8)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), u16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(-123456), i32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64-1), u64)

	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	require.Equal(t, float32(1.5), f32)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	require.Equal(t, -2.25, f64)

	v, err := r.ReadVarint()
	require.NoError(t, err)
	require.Equal(t, int64(-300), v)

	s, err := r.ReadString(len("héllo"))
	require.NoError(t, err)
	require.Equal(t, "héllo", s)

	ints := make([]int64, 3)
	require.NoError(t, r.ReadInt64s(ints))
	require.Equal(t, []int64{1, -2, 3}, ints)

	floats := make([]float64, 2)
	require.NoError(t, r.ReadFloat64s(floats))
	require.Equal(t, 0.5, floats[0])
	require.True(t, math.IsInf(floats[1], -1))

	f32s := make([]float32, 1)
	require.NoError(t, r.ReadFloat32s(f32s))
	require.Equal(t, []float32{3.25}, f32s)
}

func TestWriterReader_RoundTrip(t *testing.T) {
	engines := map[string]endian.EndianEngine{
		"little": endian.GetLittleEndianEngine(),
		"big":    endian.GetBigEndianEngine(),
	}

	for name, engine := range engines {
		t.Run(name, func(t *testing.T) {
			bb := pool.NewByteBuffer(64)
			w := NewWriter(bb, WithEngine(engine))
			writeAll(w)
			require.NoError(t, w.Err())
			require.Equal(t, int64(bb.Len()), w.Len())

			// The generic io.Writer path produces identical bytes.
			var buf bytes.Buffer
			sw := NewWriter(&buf, WithEngine(engine))
			writeAll(sw)
			require.NoError(t, sw.Err())
			require.Equal(t, bb.Bytes(), buf.Bytes())
			require.Equal(t, w.Len(), sw.Len())

			r, err := NewBytesReader(bb.Bytes(), WithEngine(engine))
			require.NoError(t, err)
			readAll(t, r)
			require.Equal(t, 0, r.Remaining())

			sr, err := NewReader(bytes.NewReader(buf.Bytes()), WithEngine(engine))
			require.NoError(t, err)
			readAll(t, sr)
			require.Equal(t, -1, sr.Remaining())
		})
	}
}

func TestWriter_ByteOrder(t *testing.T) {
	bb := pool.NewByteBuffer(8)
	NewWriter(bb).WriteUint32(0x01020304)
	require.Equal(t, []byte{4, 3, 2, 1}, bb.Bytes())

	bb.Reset()
	NewWriter(bb, WithEngine(endian.GetBigEndianEngine())).WriteUint32(0x01020304)
	require.Equal(t, []byte{1, 2, 3, 4}, bb.Bytes())
}

func TestWriter_StickyError(t *testing.T) {
	lw := &limitedWriter{limit: 4}
	w := NewWriter(lw)
	w.WriteUint32(1)
	require.NoError(t, w.Err())

	w.WriteUint8(2)
	require.EqualError(t, w.Err(), "disk full")

	w.WriteUint64(3)
	require.Equal(t, int64(4), w.Len())
	require.Equal(t, 4, lw.buf.Len())

	w.Fail(errors.New("later"))
	require.EqualError(t, w.Err(), "disk full")
}

func TestWriter_InvalidOption(t *testing.T) {
	w := NewWriter(pool.NewByteBuffer(8), WithEngine(nil))
	require.ErrorIs(t, w.Err(), errs.ErrInvalidArgument)

	_, err := NewBytesReader(nil, WithEngine(nil))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestDecimal_RoundTrip(t *testing.T) {
	values := []decimal.Decimal{
		decimal.Zero,
		decimal.RequireFromString("1.5"),
		decimal.RequireFromString("-123456789.000000001"),
		decimal.RequireFromString("79228162514264337593543950335"),
		decimal.RequireFromString("-39614081257132168796771975168"),
		decimal.New(1, 20),
	}

	for _, d := range values {
		bb := pool.NewByteBuffer(DecimalSize)
		w := NewWriter(bb)
		w.WriteDecimal(d)
		if d.Coefficient().BitLen() > 95 && d.Sign() > 0 {
			require.ErrorIs(t, w.Err(), errs.ErrInvalidArgument, d.String())
			continue
		}
		require.NoError(t, w.Err(), d.String())
		require.Equal(t, DecimalSize, bb.Len())

		r, err := NewBytesReader(bb.Bytes())
		require.NoError(t, err)
		got, err := r.ReadDecimal()
		require.NoError(t, err)
		require.True(t, d.Equal(got), "want %s got %s", d, got)
	}
}

func TestReader_Truncated(t *testing.T) {
	r, err := NewBytesReader([]byte{1, 2, 3})
	require.NoError(t, err)
	_, err = r.ReadUint32()
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)

	var de *errs.DataError
	require.ErrorAs(t, err, &de)
	require.Equal(t, int64(0), de.Offset)

	sr, err := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	require.NoError(t, err)
	_, err = sr.ReadUint64()
	require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
}

func TestReader_SkipAndCount(t *testing.T) {
	data := AppendUvarint([]byte{9, 9, 9}, 1<<40)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, r.Skip(3))
	_, err = r.ReadCount(0)
	require.ErrorIs(t, err, errs.ErrCorruptData)

	r, err = NewBytesReader(AppendUvarint(nil, 10))
	require.NoError(t, err)
	_, err = r.ReadCount(5)
	require.ErrorIs(t, err, errs.ErrCorruptData)

	r, err = NewBytesReader([]byte{1})
	require.NoError(t, err)
	require.ErrorIs(t, r.Skip(2), errs.ErrUnexpectedEOF)
}
