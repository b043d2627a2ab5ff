package column

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stssoft/persist/compress"
	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/index"
	"github.com/stssoft/persist/internal/hash"
)

// Block is a decoded column block.
//
// Decode verifies the block and parses its directory; column payloads are
// decompressed and decoded on request. A Block keeps a reference to the data
// given to Decode, which must not be modified while the Block is in use.
// Reading columns is safe for concurrent use.
type Block struct {
	data        []byte
	version     uint8
	order       endian.Order
	engine      endian.EndianEngine
	compression format.CompressionType
	codec       compress.Codec
	columns     []Info
	byName      map[string]int
	cfg         *config
}

// Decode verifies data and parses its column directory.
//
// It fails with errs.ErrInvalidMagic when data is not a column block,
// errs.ErrInvalidFormatVersion for an unknown block version and
// errs.ErrChecksumMismatch when the content does not match its checksum.
func Decode(data []byte, opts ...Option) (*Block, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	b, err := decode(data, cfg)
	if err != nil {
		cfg.logger.LogBlock(context.Background(), "open", 0, int64(len(data)), err)
		return nil, err
	}
	cfg.logger.LogBlock(context.Background(), "open", len(b.columns), int64(len(data)), nil)

	return b, nil
}

func decode(data []byte, cfg *config) (*Block, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, errs.DataErrf(0, errs.ErrInvalidMagic, "column block")
	}
	if len(data) < headerSize+1+checksumSize {
		return nil, errs.DataErrf(int64(len(data)), errs.ErrUnexpectedEOF, "column block of %d bytes", len(data))
	}

	b := &Block{data: data, cfg: cfg}

	b.version = data[len(Magic)]
	if b.version != format.BlockVersion {
		return nil, errs.DataErrf(int64(len(Magic)), errs.ErrInvalidFormatVersion,
			"column block version %d, want %d", b.version, format.BlockVersion)
	}

	b.order = endian.Order(data[len(Magic)+1])
	engine, err := b.order.Engine()
	if err != nil {
		return nil, errs.DataErrf(int64(len(Magic)+1), errs.ErrCorruptData, "%v", err)
	}
	b.engine = engine

	body := data[:len(data)-checksumSize]
	want := engine.Uint64(data[len(body):])
	if got := hash.Sum64(body); got != want {
		return nil, errs.DataErrf(int64(len(body)), errs.ErrChecksumMismatch,
			"column block checksum %016x, computed %016x", want, got)
	}

	b.compression = format.CompressionType(data[len(Magic)+2])
	if b.codec, err = compress.GetCodec(b.compression); err != nil {
		return nil, errs.DataErrf(int64(len(Magic)+2), errs.ErrCorruptData, "%v", err)
	}

	if err := b.parseDirectory(body); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Block) parseDirectory(body []byte) error {
	r, err := encoding.NewBytesReader(body, encoding.WithEngine(b.engine))
	if err != nil {
		return err
	}
	if err := r.Skip(headerSize); err != nil {
		return err
	}

	countOff := r.Offset()
	n, err := r.ReadCount(0)
	if err != nil {
		return err
	}
	// every column takes at least five bytes
	if n > r.Remaining()/5 {
		return errs.DataErrf(countOff, errs.ErrCorruptData, "%d columns in %d bytes", n, r.Remaining())
	}

	b.columns = make([]Info, 0, n)
	b.byName = make(map[string]int, n)
	for range n {
		start := r.Offset()
		nameLen, err := r.ReadCount(MaxNameLen)
		if err != nil {
			return err
		}
		name, err := r.ReadString(nameLen)
		if err != nil {
			return err
		}
		if _, dup := b.byName[name]; dup || name == "" {
			return errs.DataErrf(start, errs.ErrCorruptData, "column name %q", name)
		}

		typOff := r.Offset()
		t, err := r.ReadUint8()
		if err != nil {
			return err
		}
		typ := format.ColumnType(t)
		if !typ.Valid() {
			return errs.DataErrf(typOff, errs.ErrCorruptData, "column %q type %d", name, t)
		}

		count, err := r.ReadCount(0)
		if err != nil {
			return err
		}
		size, err := r.ReadCount(0)
		if err != nil {
			return err
		}
		off := int(r.Offset())
		if err := r.Skip(size); err != nil {
			return err
		}

		b.byName[name] = len(b.columns)
		b.columns = append(b.columns, Info{Name: name, Type: typ, Count: count, Offset: off, Size: size})
	}

	if r.Remaining() != 0 {
		return errs.DataErrf(r.Offset(), errs.ErrCorruptData, "%d trailing bytes after column directory", r.Remaining())
	}

	return nil
}

// Version returns the block format version.
func (b *Block) Version() uint8 {
	return b.version
}

// Compression returns the algorithm the column payloads are compressed with.
func (b *Block) Compression() format.CompressionType {
	return b.compression
}

// ByteOrder returns the byte order of the fixed-width values in the block.
func (b *Block) ByteOrder() endian.Order {
	return b.order
}

// Size returns the encoded block length.
func (b *Block) Size() int {
	return len(b.data)
}

// Len returns the number of columns.
func (b *Block) Len() int {
	return len(b.columns)
}

// Columns returns the column directory in the order the columns were added.
func (b *Block) Columns() []Info {
	out := make([]Info, len(b.columns))
	copy(out, b.columns)

	return out
}

// Column returns the directory entry of name, or errs.ErrColumnNotFound.
func (b *Block) Column(name string) (Info, error) {
	i, ok := b.byName[name]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", errs.ErrColumnNotFound, name)
	}

	return b.columns[i], nil
}

// Payload returns the decompressed index codec payload of name.
func (b *Block) Payload(name string) ([]byte, error) {
	info, err := b.Column(name)
	if err != nil {
		return nil, err
	}

	return b.payload(info)
}

func (b *Block) payload(info Info) ([]byte, error) {
	raw, err := b.codec.Decompress(b.data[info.Offset : info.Offset+info.Size])
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", info.Name, err)
	}

	return raw, nil
}

// Stat decompresses the payload of name and reads its index codec header.
func (b *Block) Stat(name string) (Stat, error) {
	info, err := b.Column(name)
	if err != nil {
		return Stat{}, err
	}
	raw, err := b.payload(info)
	if err != nil {
		return Stat{}, err
	}

	r, err := encoding.NewBytesReader(raw, encoding.WithEngine(b.engine))
	if err != nil {
		return Stat{}, err
	}
	h, err := index.ReadHeader(r, info.Type)
	if err != nil {
		return Stat{}, fmt.Errorf("column %q: %w", name, err)
	}

	return Stat{Info: info, Header: h, RawSize: len(raw)}, nil
}

// Verify decodes every column, reporting the first failure.
func (b *Block) Verify() error {
	for _, info := range b.columns {
		var err error
		switch info.Type {
		case format.ColumnInt8:
			_, err = Integers[int8](b, info.Name)
		case format.ColumnInt16:
			_, err = Integers[int16](b, info.Name)
		case format.ColumnInt32:
			_, err = Integers[int32](b, info.Name)
		case format.ColumnInt64:
			_, err = b.Int64s(info.Name)
		case format.ColumnUint8:
			_, err = Integers[uint8](b, info.Name)
		case format.ColumnUint16:
			_, err = Integers[uint16](b, info.Name)
		case format.ColumnUint32:
			_, err = Integers[uint32](b, info.Name)
		case format.ColumnUint64:
			_, err = Integers[uint64](b, info.Name)
		case format.ColumnFloat32:
			_, err = b.Float32s(info.Name)
		case format.ColumnFloat64:
			_, err = b.Float64s(info.Name)
		case format.ColumnDecimal:
			_, err = b.Decimals(info.Name)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Int64s decodes the int64 column name.
func (b *Block) Int64s(name string) ([]int64, error) {
	codec, err := index.NewInt64Codec(b.cfg.indexOpts...)
	if err != nil {
		return nil, err
	}

	return loadColumn(b, name, format.ColumnInt64, codec)
}

// Float64s decodes the float64 column name.
func (b *Block) Float64s(name string) ([]float64, error) {
	codec, err := index.NewFloat64Codec(b.cfg.indexOpts...)
	if err != nil {
		return nil, err
	}

	return loadColumn(b, name, format.ColumnFloat64, codec)
}

// Float32s decodes the float32 column name.
func (b *Block) Float32s(name string) ([]float32, error) {
	codec, err := index.NewFloat32Codec(b.cfg.indexOpts...)
	if err != nil {
		return nil, err
	}

	return loadColumn(b, name, format.ColumnFloat32, codec)
}

// Decimals decodes the decimal column name.
func (b *Block) Decimals(name string) ([]decimal.Decimal, error) {
	codec, err := index.NewDecimalCodec(b.cfg.indexOpts...)
	if err != nil {
		return nil, err
	}

	return loadColumn(b, name, format.ColumnDecimal, codec)
}

// Integers decodes the integer column name as T. The column must have been
// added with the same width and signedness; int and uint read 64-bit columns.
func Integers[T index.Integer](b *Block, name string) ([]T, error) {
	codec, err := index.NewIntegerCodec[T](b.cfg.indexOpts...)
	if err != nil {
		return nil, err
	}

	return loadColumn(b, name, integerType[T](), codec)
}

func loadColumn[T any](b *Block, name string, typ format.ColumnType, codec index.Codec[T]) ([]T, error) {
	info, err := b.Column(name)
	if err != nil {
		return nil, err
	}
	if info.Type != typ {
		return nil, fmt.Errorf("%w: column %q is %s, read as %s", errs.ErrColumnTypeMismatch, name, info.Type, typ)
	}

	raw, err := b.payload(info)
	if err != nil {
		return nil, err
	}
	r, err := encoding.NewBytesReader(raw, encoding.WithEngine(b.engine))
	if err != nil {
		return nil, err
	}

	out := make([]T, info.Count)
	if err := codec.Load(r, out); err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("column %q: %w", name,
			errs.DataErrf(r.Offset(), errs.ErrCorruptData, "%d trailing payload bytes", r.Remaining()))
	}

	return out, nil
}
