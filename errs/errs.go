// Package errs defines the error values shared by every persist package.
//
// Callers match failures with errors.Is against the sentinel values below.
// Errors that carry a stream position or a type path wrap the sentinels in
// *DataError and *SchemaError respectively, so errors.Is keeps working and
// errors.As exposes the extra context.
package errs

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrMalformedVarint is returned when a varint is truncated or longer than 10 bytes.
	ErrMalformedVarint = errors.New("malformed varint")

	// ErrInvalidFormatVersion is returned when a column payload was written by an incompatible version.
	ErrInvalidFormatVersion = errors.New("invalid format version")

	// ErrUnsupportedSchema is returned when a type shape cannot be represented on the wire.
	ErrUnsupportedSchema = errors.New("unsupported schema")

	// ErrPrecisionOverflow signals that a value cannot be scaled to a 64-bit integer
	// without losing precision. The numeric index codecs recover from it internally.
	ErrPrecisionOverflow = errors.New("precision overflow")

	// ErrInvalidArgument is returned for programmer errors: count mismatches,
	// negative lengths, invalid options.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnexpectedEOF is returned when the source ends in the middle of a value.
	ErrUnexpectedEOF = errors.New("unexpected end of data")

	// ErrCorruptData is returned when decoded header fields are out of range.
	ErrCorruptData = errors.New("corrupt data")

	// ErrNilValue is returned when an absent value is met at a position whose
	// null policy does not allow a presence marker.
	ErrNilValue = errors.New("nil value not allowed by null policy")

	// ErrChecksumMismatch is returned when a column block fails checksum verification.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrInvalidMagic is returned when a column block does not start with the expected magic.
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrColumnNotFound is returned when a column block has no column with the requested name.
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnTypeMismatch is returned when a column is decoded as a different element type
	// than it was stored with.
	ErrColumnTypeMismatch = errors.New("column type mismatch")

	// ErrNotFound is returned by the store when a key is absent.
	ErrNotFound = errors.New("not found")
)

// DataError describes a decode failure at a byte offset of a source.
type DataError struct {
	Offset int64
	Err    error
	Msg    string
}

// DataErrf builds a *DataError wrapping err.
func DataErrf(off int64, err error, format string, args ...any) error {
	return &DataError{Offset: off, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *DataError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("at offset %d: %v", e.Offset, e.Err)
	}

	return fmt.Sprintf("%s at offset %d: %v", e.Msg, e.Offset, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// SchemaError describes a type shape rejected while building a schema.
//
// Path is the member path from the root type, e.g. ".Orders[].Lines{key}".
type SchemaError struct {
	Type reflect.Type
	Path string
	Err  error
	Msg  string
}

// SchemaErrf builds a *SchemaError wrapping ErrUnsupportedSchema.
func SchemaErrf(typ reflect.Type, path string, format string, args ...any) error {
	return &SchemaError{Type: typ, Path: path, Err: ErrUnsupportedSchema, Msg: fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s: %s", e.Err, e.Type, e.Msg)
	}

	return fmt.Sprintf("%v: %s%s: %s", e.Err, e.Type, e.Path, e.Msg)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
