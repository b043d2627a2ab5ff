package column

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/stssoft/persist/compress"
	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/index"
	"github.com/stssoft/persist/internal/hash"
	"github.com/stssoft/persist/internal/pool"
)

// Encoder builds one column block.
//
// Columns are encoded as they are added; Finish assembles the header and
// checksum. An Encoder is not safe for concurrent use and cannot be reused
// after Finish.
type Encoder struct {
	cfg   *config
	codec compress.Codec

	i64 *index.Int64Codec
	f64 *index.ScaledCodec[float64]
	f32 *index.ScaledCodec[float32]
	dec *index.ScaledCodec[decimal.Decimal]

	names    map[string]struct{}
	body     *pool.ByteBuffer
	columns  int
	finished bool
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		cfg:   cfg,
		codec: codec,
		names: make(map[string]struct{}),
	}
	if e.i64, err = index.NewInt64Codec(cfg.indexOpts...); err != nil {
		return nil, err
	}
	if e.f64, err = index.NewFloat64Codec(cfg.indexOpts...); err != nil {
		return nil, err
	}
	if e.f32, err = index.NewFloat32Codec(cfg.indexOpts...); err != nil {
		return nil, err
	}
	if e.dec, err = index.NewDecimalCodec(cfg.indexOpts...); err != nil {
		return nil, err
	}
	e.body = pool.GetBlockBuffer()

	return e, nil
}

// Len returns the number of columns added so far.
func (e *Encoder) Len() int {
	return e.columns
}

// AddInt64 adds an int64 column.
func (e *Encoder) AddInt64(name string, values []int64) error {
	return addColumn(e, name, format.ColumnInt64, e.i64, values)
}

// AddFloat64 adds a float64 column.
func (e *Encoder) AddFloat64(name string, values []float64) error {
	return addColumn(e, name, format.ColumnFloat64, e.f64, values)
}

// AddFloat32 adds a float32 column.
func (e *Encoder) AddFloat32(name string, values []float32) error {
	return addColumn(e, name, format.ColumnFloat32, e.f32, values)
}

// AddDecimal adds a decimal column.
func (e *Encoder) AddDecimal(name string, values []decimal.Decimal) error {
	return addColumn(e, name, format.ColumnDecimal, e.dec, values)
}

// AddIntegers adds an integer column of any width. int and uint are stored
// as 64-bit columns.
func AddIntegers[T index.Integer](e *Encoder, name string, values []T) error {
	codec, err := index.NewIntegerCodec[T](e.cfg.indexOpts...)
	if err != nil {
		return err
	}

	return addColumn(e, name, integerType[T](), codec, values)
}

func addColumn[T any](e *Encoder, name string, typ format.ColumnType, codec index.Codec[T], values []T) error {
	if e.finished {
		return fmt.Errorf("%w: encoder already finished", errs.ErrInvalidArgument)
	}
	if err := e.claim(name); err != nil {
		return err
	}

	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	w := encoding.NewWriter(bb, encoding.WithEngine(e.cfg.engine))
	if err := codec.Store(w, values); err != nil {
		return fmt.Errorf("column %q: %w", name, err)
	}
	payload, err := e.codec.Compress(bb.Bytes())
	if err != nil {
		return fmt.Errorf("column %q: %w", name, err)
	}

	bw := encoding.NewWriter(e.body, encoding.WithEngine(e.cfg.engine))
	bw.WriteUvarint(uint64(len(name)))
	bw.WriteString(name)
	bw.WriteUint8(uint8(typ))
	bw.WriteUvarint(uint64(len(values)))
	bw.WriteUvarint(uint64(len(payload)))
	bw.WriteBytes(payload)
	if err := bw.Err(); err != nil {
		return err
	}

	e.names[name] = struct{}{}
	e.columns++

	return nil
}

func (e *Encoder) claim(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty column name", errs.ErrInvalidArgument)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: column name longer than %d bytes", errs.ErrInvalidArgument, MaxNameLen)
	}
	if _, dup := e.names[name]; dup {
		return fmt.Errorf("%w: duplicate column %q", errs.ErrInvalidArgument, name)
	}

	return nil
}

// Finish returns the encoded block.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, fmt.Errorf("%w: encoder already finished", errs.ErrInvalidArgument)
	}
	e.finished = true
	defer func() {
		pool.PutBlockBuffer(e.body)
		e.body = nil
	}()

	size := headerSize + encoding.UvarintSize(uint64(e.columns)) + e.body.Len() + checksumSize
	out := pool.NewByteBuffer(size)
	sum := hash.NewDigest()

	// Everything before the trailer goes through the digest as it is written.
	w := encoding.NewWriter(io.MultiWriter(out, sum), encoding.WithEngine(e.cfg.engine))
	w.WriteString(Magic)
	w.WriteUint8(format.BlockVersion)
	w.WriteUint8(uint8(endian.OrderOf(e.cfg.engine)))
	w.WriteUint8(uint8(e.cfg.compression))
	w.WriteUvarint(uint64(e.columns))
	w.WriteBytes(e.body.Bytes())

	tail := encoding.NewWriter(out, encoding.WithEngine(e.cfg.engine))
	if w.Err() == nil {
		tail.WriteUint64(sum.Sum64())
	}

	err := errors.Join(w.Err(), tail.Err())
	e.cfg.logger.LogBlock(context.Background(), "build", e.columns, int64(out.Len()), err)
	if err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
