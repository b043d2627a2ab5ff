package column

import (
	"reflect"

	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/index"
)

const (
	// Magic opens every column block.
	Magic = "PCOL"

	// MaxNameLen bounds the byte length of a column name.
	MaxNameLen = 1024

	// headerSize covers magic, version, order and compression.
	headerSize   = len(Magic) + 3
	checksumSize = 8
)

// Info describes one column of a block.
type Info struct {
	Name  string
	Type  format.ColumnType
	Count int
	// Offset is the position of the stored payload within the block.
	Offset int
	// Size is the stored, possibly compressed, payload length.
	Size int
}

// Stat extends Info with what is learnt by decompressing the payload.
type Stat struct {
	Info
	// Header is the index codec prefix of the payload.
	Header index.Header
	// RawSize is the payload length before compression.
	RawSize int
}

// integerType maps an integer element type to its column tag.
func integerType[T index.Integer]() format.ColumnType {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int8:
		return format.ColumnInt8
	case reflect.Int16:
		return format.ColumnInt16
	case reflect.Int32:
		return format.ColumnInt32
	case reflect.Uint8:
		return format.ColumnUint8
	case reflect.Uint16:
		return format.ColumnUint16
	case reflect.Uint32:
		return format.ColumnUint32
	case reflect.Uint64, reflect.Uint:
		return format.ColumnUint64
	default:
		return format.ColumnInt64
	}
}
