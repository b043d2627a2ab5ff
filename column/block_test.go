package column

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/index"
	"github.com/stssoft/persist/internal/hash"
	"github.com/stssoft/persist/logging"
)

type blockData struct {
	ts     []int64
	price  []float64
	ratio  []float32
	amount []decimal.Decimal
	qty    []uint16
	delta  []int8
	ids    []uint64
}

func sampleData() blockData {
	d := blockData{}
	for i := range 200 {
		d.ts = append(d.ts, 1_700_000_000_000+int64(i)*1000)
		d.price = append(d.price, 100+float64(i%17)*0.25)
		d.ratio = append(d.ratio, float32(i%5)*0.5)
		d.amount = append(d.amount, decimal.New(int64(i*137), -2))
		d.qty = append(d.qty, uint16(i*300))
		d.delta = append(d.delta, int8(i%256-128))
		d.ids = append(d.ids, math.MaxUint64-uint64(i))
	}

	return d
}

func buildBlock(t *testing.T, d blockData, opts ...Option) []byte {
	t.Helper()

	enc, err := NewEncoder(opts...)
	require.NoError(t, err)
	require.NoError(t, enc.AddInt64("ts", d.ts))
	require.NoError(t, enc.AddFloat64("price", d.price))
	require.NoError(t, enc.AddFloat32("ratio", d.ratio))
	require.NoError(t, enc.AddDecimal("amount", d.amount))
	require.NoError(t, AddIntegers(enc, "qty", d.qty))
	require.NoError(t, AddIntegers(enc, "delta", d.delta))
	require.NoError(t, AddIntegers(enc, "ids", d.ids))
	require.Equal(t, 7, enc.Len())

	data, err := enc.Finish()
	require.NoError(t, err)

	return data
}

// reseal recomputes the trailing checksum of a little-endian block.
func reseal(data []byte) {
	body := data[:len(data)-checksumSize]
	binary.LittleEndian.PutUint64(data[len(body):], hash.Sum64(body))
}

func TestBlock_RoundTrip(t *testing.T) {
	d := sampleData()

	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}
	engines := []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()}

	for _, ct := range compressions {
		for _, engine := range engines {
			t.Run(ct.String()+"/"+endian.OrderOf(engine).String(), func(t *testing.T) {
				data := buildBlock(t, d, WithCompression(ct), WithByteOrder(engine))
				require.Equal(t, Magic, string(data[:4]))

				blk, err := Decode(data)
				require.NoError(t, err)
				require.Equal(t, format.BlockVersion, blk.Version())
				require.Equal(t, ct, blk.Compression())
				require.Equal(t, endian.OrderOf(engine), blk.ByteOrder())
				require.Equal(t, 7, blk.Len())
				require.Equal(t, len(data), blk.Size())

				ts, err := blk.Int64s("ts")
				require.NoError(t, err)
				require.Equal(t, d.ts, ts)

				price, err := blk.Float64s("price")
				require.NoError(t, err)
				require.Equal(t, d.price, price)

				ratio, err := blk.Float32s("ratio")
				require.NoError(t, err)
				require.Equal(t, d.ratio, ratio)

				amount, err := blk.Decimals("amount")
				require.NoError(t, err)
				require.Len(t, amount, len(d.amount))
				for i := range amount {
					require.True(t, d.amount[i].Equal(amount[i]), "amount[%d]", i)
				}

				qty, err := Integers[uint16](blk, "qty")
				require.NoError(t, err)
				require.Equal(t, d.qty, qty)

				delta, err := Integers[int8](blk, "delta")
				require.NoError(t, err)
				require.Equal(t, d.delta, delta)

				ids, err := Integers[uint64](blk, "ids")
				require.NoError(t, err)
				require.Equal(t, d.ids, ids)

				require.NoError(t, blk.Verify())
			})
		}
	}
}

func TestBlock_Directory(t *testing.T) {
	data := buildBlock(t, sampleData())
	blk, err := Decode(data)
	require.NoError(t, err)

	cols := blk.Columns()
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
		require.Equal(t, 200, c.Count)
		require.Positive(t, c.Size)
	}
	require.Equal(t, []string{"ts", "price", "ratio", "amount", "qty", "delta", "ids"}, names)

	info, err := blk.Column("qty")
	require.NoError(t, err)
	require.Equal(t, format.ColumnUint16, info.Type)

	info, err = blk.Column("ids")
	require.NoError(t, err)
	require.Equal(t, format.ColumnUint64, info.Type)

	_, err = blk.Column("missing")
	require.ErrorIs(t, err, errs.ErrColumnNotFound)

	cols[0].Name = "mutated"
	_, err = blk.Column("ts")
	require.NoError(t, err)
}

func TestBlock_Stat(t *testing.T) {
	enc, err := NewEncoder(WithIndexOptions(index.WithFactors(10, 1000)))
	require.NoError(t, err)
	require.NoError(t, enc.AddInt64("ms", []int64{5000, 7000, 12000}))
	require.NoError(t, enc.AddFloat64("px", []float64{1.5, 2.25, 3}))
	require.NoError(t, enc.AddFloat64("raw", []float64{1, math.NaN(), 2}))
	data, err := enc.Finish()
	require.NoError(t, err)

	blk, err := Decode(data, WithIndexOptions(index.WithFactors(10, 1000)))
	require.NoError(t, err)

	st, err := blk.Stat("ms")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), st.Header.Factor)
	require.Equal(t, st.Size, st.RawSize)

	st, err = blk.Stat("px")
	require.NoError(t, err)
	require.Equal(t, int8(2), st.Header.Digits)
	require.False(t, st.Header.Native())

	st, err = blk.Stat("raw")
	require.NoError(t, err)
	require.True(t, st.Header.Native())

	vals, err := blk.Float64s("raw")
	require.NoError(t, err)
	require.Equal(t, 1.0, vals[0])
	require.True(t, math.IsNaN(vals[1]))

	ms, err := blk.Int64s("ms")
	require.NoError(t, err)
	require.Equal(t, []int64{5000, 7000, 12000}, ms)

	_, err = blk.Stat("missing")
	require.ErrorIs(t, err, errs.ErrColumnNotFound)
}

func TestBlock_Payload(t *testing.T) {
	data := buildBlock(t, sampleData(), WithCompression(format.CompressionZstd))
	blk, err := Decode(data)
	require.NoError(t, err)

	raw, err := blk.Payload("ts")
	require.NoError(t, err)
	require.Equal(t, format.IndexVersion, raw[0])

	_, err = blk.Payload("nope")
	require.ErrorIs(t, err, errs.ErrColumnNotFound)
}

func TestBlock_TypeMismatch(t *testing.T) {
	blk, err := Decode(buildBlock(t, sampleData()))
	require.NoError(t, err)

	_, err = blk.Float64s("ts")
	require.ErrorIs(t, err, errs.ErrColumnTypeMismatch)

	_, err = Integers[int16](blk, "qty")
	require.ErrorIs(t, err, errs.ErrColumnTypeMismatch)

	_, err = blk.Int64s("price")
	require.ErrorIs(t, err, errs.ErrColumnTypeMismatch)

	// int reads 64-bit columns
	ts, err := Integers[int](blk, "ts")
	require.NoError(t, err)
	require.Len(t, ts, 200)
}

func TestBlock_Empty(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	data, err := enc.Finish()
	require.NoError(t, err)
	require.Len(t, data, headerSize+1+checksumSize)

	blk, err := Decode(data)
	require.NoError(t, err)
	require.Zero(t, blk.Len())
	require.Empty(t, blk.Columns())
	require.NoError(t, blk.Verify())
}

func TestBlock_EmptyColumn(t *testing.T) {
	enc, err := NewEncoder(WithCompression(format.CompressionS2))
	require.NoError(t, err)
	require.NoError(t, enc.AddInt64("none", nil))
	require.NoError(t, enc.AddFloat64("nothing", []float64{}))
	data, err := enc.Finish()
	require.NoError(t, err)

	blk, err := Decode(data)
	require.NoError(t, err)
	got, err := blk.Int64s("none")
	require.NoError(t, err)
	require.Empty(t, got)
	fs, err := blk.Float64s("nothing")
	require.NoError(t, err)
	require.Empty(t, fs)
}

func TestEncoder_Errors(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	require.ErrorIs(t, enc.AddInt64("", []int64{1}), errs.ErrInvalidArgument)
	require.ErrorIs(t, enc.AddInt64(string(make([]byte, MaxNameLen+1)), []int64{1}), errs.ErrInvalidArgument)

	require.NoError(t, enc.AddInt64("a", []int64{1}))
	require.ErrorIs(t, enc.AddFloat64("a", []float64{1}), errs.ErrInvalidArgument)
	require.Equal(t, 1, enc.Len())

	_, err = enc.Finish()
	require.NoError(t, err)
	_, err = enc.Finish()
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	require.ErrorIs(t, enc.AddInt64("b", []int64{1}), errs.ErrInvalidArgument)
}

func TestEncoder_ChecksumTrailer(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		enc, err := NewEncoder(WithByteOrder(engine), WithCompression(format.CompressionS2))
		require.NoError(t, err)
		require.NoError(t, enc.AddInt64("ts", []int64{10, 20, 30, 40}))
		require.NoError(t, enc.AddFloat64("px", []float64{1.5, 2.25}))
		data, err := enc.Finish()
		require.NoError(t, err)

		body := data[:len(data)-checksumSize]
		require.Equal(t, hash.Sum64(body), engine.Uint64(data[len(body):]))
	}
}

func TestEncoder_InvalidOptions(t *testing.T) {
	_, err := NewEncoder(WithCompression(format.CompressionType(0x42)))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = NewEncoder(WithByteOrder(nil))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	// The index codecs reject it after the compression codec was resolved.
	enc, err := NewEncoder(WithIndexOptions(index.WithMaxDigits(99)))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	require.Nil(t, enc)
}

func TestDecode_Corruption(t *testing.T) {
	good := buildBlock(t, sampleData())

	t.Run("magic", func(t *testing.T) {
		data := bytes.Clone(good)
		data[0] = 'X'
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)

		_, err = Decode(nil)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("short", func(t *testing.T) {
		_, err := Decode([]byte(Magic))
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("version", func(t *testing.T) {
		data := bytes.Clone(good)
		data[4] = format.BlockVersion + 1
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidFormatVersion)
	})

	t.Run("order", func(t *testing.T) {
		data := bytes.Clone(good)
		data[5] = 7
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("checksum", func(t *testing.T) {
		for _, pos := range []int{7, len(good) / 2, len(good) - checksumSize - 1, len(good) - 1} {
			data := bytes.Clone(good)
			data[pos] ^= 0x55
			_, err := Decode(data)
			require.ErrorIs(t, err, errs.ErrChecksumMismatch, "flipped byte %d", pos)

			var de *errs.DataError
			require.ErrorAs(t, err, &de)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Decode(good[:len(good)-1])
		require.Error(t, err)
	})

	t.Run("compression", func(t *testing.T) {
		data := bytes.Clone(good)
		data[6] = 0x42
		reseal(data)
		_, err := Decode(data)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("column count", func(t *testing.T) {
		enc, err := NewEncoder()
		require.NoError(t, err)
		data, err := enc.Finish()
		require.NoError(t, err)
		data[headerSize] = 100
		reseal(data)
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("column type", func(t *testing.T) {
		enc, err := NewEncoder()
		require.NoError(t, err)
		require.NoError(t, enc.AddInt64("a", []int64{1, 2, 3}))
		data, err := enc.Finish()
		require.NoError(t, err)
		// header, count, nameLen, name
		data[headerSize+3] = 0x7f
		reseal(data)
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		enc, err := NewEncoder()
		require.NoError(t, err)
		data, err := enc.Finish()
		require.NoError(t, err)
		body := append(bytes.Clone(data[:len(data)-checksumSize]), 0xAA)
		data = append(body, make([]byte, checksumSize)...)
		reseal(data)
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})
}

func TestBlock_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	enc, err := NewEncoder(WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, enc.AddInt64("a", []int64{1}))
	data, err := enc.Finish()
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"msg":"column block build"`)
	require.Contains(t, buf.String(), `"component":"column"`)

	buf.Reset()
	data[len(data)-1] ^= 1
	_, err = Decode(data, WithLogger(logger))
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	require.Contains(t, buf.String(), `"level":"ERROR"`)
	require.Contains(t, buf.String(), "column block open failed")
}
