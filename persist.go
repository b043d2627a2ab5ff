// Package persist is a compact binary serialization library for typed values
// and numeric index columns.
//
// It has two halves:
//
//   - The object codec (package object) turns any supported Go type into a
//     deterministic byte layout driven by a cached type schema (package schema).
//   - The numeric index codecs (package index) store numeric sequences as
//     delta encoded, bit packed columns, scaling decimal fractions to integers
//     when that is lossless.
//
// Column blocks (package column) group named index columns with optional
// compression and a checksum, and package store keeps records and column
// blocks in an embedded bbolt database.
//
// # Basic Usage
//
// Encoding a value:
//
//	type Trade struct {
//	    ID    int64
//	    Price decimal.Decimal
//	    Tags  []string
//	}
//
//	data, err := persist.Marshal(Trade{ID: 7, Price: decimal.RequireFromString("10.25")})
//	if err != nil {
//	    return err
//	}
//
//	var t Trade
//	err = persist.Unmarshal(data, &t)
//
// Storing a column:
//
//	var buf bytes.Buffer
//	err := persist.StoreColumn(&buf, []float64{10.25, 10.5, 10.75})
//
//	prices := make([]float64, 3)
//	err = persist.LoadColumn(&buf, prices)
//
// This package provides convenient top-level wrappers. For reusable codecs,
// streaming and configuration, use the object and index packages directly.
package persist

import (
	"io"
	"reflect"

	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/index"
	"github.com/stssoft/persist/object"
)

// Number is the element type set of StoreColumn and LoadColumn.
type Number interface {
	index.Integer | ~float32 | ~float64
}

// Marshal encodes v with the object codec of T.
func Marshal[T any](v T, opts ...object.Option) ([]byte, error) {
	codec, err := object.For[T](opts...)
	if err != nil {
		return nil, err
	}

	return codec.Marshal(v)
}

// Unmarshal decodes data, which must hold exactly one value, into dst.
// opts must match the options given to Marshal.
func Unmarshal[T any](data []byte, dst *T, opts ...object.Option) error {
	codec, err := object.For[T](opts...)
	if err != nil {
		return err
	}

	return codec.Unmarshal(data, dst)
}

// Size returns the number of bytes Marshal produces for v.
func Size[T any](v T, opts ...object.Option) (int, error) {
	codec, err := object.For[T](opts...)
	if err != nil {
		return 0, err
	}

	return codec.Size(v)
}

// StoreColumn writes values to w as one numeric index column.
//
// Integer columns go through the factor and delta pipeline; floating point
// columns are scaled to integers when lossless and stored natively otherwise.
// The column does not record its length; LoadColumn needs it.
func StoreColumn[T Number](w io.Writer, values []T, opts ...index.Option) error {
	wr := encoding.NewWriter(w)
	if err := wr.Err(); err != nil {
		return err
	}

	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float64:
		codec, err := index.NewFloat64Codec(opts...)
		if err != nil {
			return err
		}

		return codec.Store(wr, convert[T, float64](values))
	case reflect.Float32:
		codec, err := index.NewFloat32Codec(opts...)
		if err != nil {
			return err
		}

		return codec.Store(wr, convert[T, float32](values))
	default:
		codec, err := index.NewInt64Codec(opts...)
		if err != nil {
			return err
		}

		return codec.Store(wr, convert[T, int64](values))
	}
}

// LoadColumn reads a column written by StoreColumn for the same T into dst,
// which must have the stored length.
func LoadColumn[T Number](r io.Reader, dst []T, opts ...index.Option) error {
	rd, err := encoding.NewReader(r)
	if err != nil {
		return err
	}

	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float64:
		codec, err := index.NewFloat64Codec(opts...)
		if err != nil {
			return err
		}
		tmp := make([]float64, len(dst))
		if err := codec.Load(rd, tmp); err != nil {
			return err
		}
		for i, v := range tmp {
			dst[i] = T(v)
		}

		return nil
	case reflect.Float32:
		codec, err := index.NewFloat32Codec(opts...)
		if err != nil {
			return err
		}
		tmp := make([]float32, len(dst))
		if err := codec.Load(rd, tmp); err != nil {
			return err
		}
		for i, v := range tmp {
			dst[i] = T(v)
		}

		return nil
	default:
		codec, err := index.NewInt64Codec(opts...)
		if err != nil {
			return err
		}

		return index.LoadConverted(codec, rd, dst, func(v int64) (T, bool) {
			n := T(v)
			return n, int64(n) == v
		})
	}
}

func convert[T, U Number](values []T) []U {
	out := make([]U, len(values))
	for i, v := range values {
		out[i] = U(v)
	}

	return out
}
