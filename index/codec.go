package index

import (
	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
)

// Codec stores and loads one index column of T.
type Codec[T any] interface {
	// Store writes values as one column.
	Store(w *encoding.Writer, values []T) error
	// Load reads a column of exactly len(dst) values into dst.
	Load(r *encoding.Reader, dst []T) error
}

var (
	_ Codec[int64]   = (*Int64Codec)(nil)
	_ Codec[uint16]  = (*IntegerCodec[uint16])(nil)
	_ Codec[float64] = (*ScaledCodec[float64])(nil)
)

func readVersion(r *encoding.Reader) error {
	off := r.Offset()
	v, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if v != format.IndexVersion {
		return errs.DataErrf(off, errs.ErrInvalidFormatVersion, "index column version %d, want %d", v, format.IndexVersion)
	}

	return nil
}

// Header is the fixed prefix of a stored column.
type Header struct {
	Version uint8
	// Factor is the common divisor of an integer column.
	Factor uint64
	// Digits is the decimal scale of a floating or decimal column, or
	// format.DigitsNative when the values are stored at native width.
	Digits int8
}

// Native reports whether the column payload is stored at native width.
func (h Header) Native() bool {
	return h.Digits == format.DigitsNative
}

// ReadHeader reads the prefix of a column of type typ without its payload.
func ReadHeader(r *encoding.Reader, typ format.ColumnType) (Header, error) {
	if !typ.Valid() {
		return Header{}, errs.DataErrf(r.Offset(), errs.ErrCorruptData, "column type %d", uint8(typ))
	}
	if err := readVersion(r); err != nil {
		return Header{}, err
	}

	h := Header{Version: format.IndexVersion}
	if typ.IsInteger() {
		f, err := r.ReadUvarint()
		if err != nil {
			return Header{}, err
		}
		h.Factor = f

		return h, nil
	}

	d, err := r.ReadInt8()
	if err != nil {
		return Header{}, err
	}
	h.Digits = d

	return h, nil
}
