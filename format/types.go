// Package format holds the one-byte tags persisted in column payloads and blocks.
package format

type (
	CompressionType uint8
	ColumnType      uint8
)

// IndexVersion is the format tag written first by every numeric index codec.
const IndexVersion uint8 = 40

// BlockVersion is the format tag of a column block header.
const BlockVersion uint8 = 1

// DigitsNative marks a floating/decimal column stored at native fixed width.
const DigitsNative int8 = -1

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores column payloads as encoded.
	CompressionZstd CompressionType = 0x2 // CompressionZstd compresses column payloads with Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 compresses column payloads with S2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 compresses column payloads with LZ4.
)

const (
	ColumnInt8    ColumnType = 0x01
	ColumnInt16   ColumnType = 0x02
	ColumnInt32   ColumnType = 0x03
	ColumnInt64   ColumnType = 0x04
	ColumnUint8   ColumnType = 0x05
	ColumnUint16  ColumnType = 0x06
	ColumnUint32  ColumnType = 0x07
	ColumnUint64  ColumnType = 0x08
	ColumnFloat32 ColumnType = 0x09
	ColumnFloat64 ColumnType = 0x0A
	ColumnDecimal ColumnType = 0x0B
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a case-sensitive compression name back to its tag.
func ParseCompression(name string) (CompressionType, bool) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		if c.String() == name {
			return c, true
		}
	}

	return 0, false
}

func (c ColumnType) String() string {
	switch c {
	case ColumnInt8:
		return "int8"
	case ColumnInt16:
		return "int16"
	case ColumnInt32:
		return "int32"
	case ColumnInt64:
		return "int64"
	case ColumnUint8:
		return "uint8"
	case ColumnUint16:
		return "uint16"
	case ColumnUint32:
		return "uint32"
	case ColumnUint64:
		return "uint64"
	case ColumnFloat32:
		return "float32"
	case ColumnFloat64:
		return "float64"
	case ColumnDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// IsInteger reports whether the column stores integers through the factor pipeline.
func (c ColumnType) IsInteger() bool {
	return c >= ColumnInt8 && c <= ColumnUint64
}

// Valid reports whether c is a known column type.
func (c ColumnType) Valid() bool {
	return c >= ColumnInt8 && c <= ColumnDecimal
}
