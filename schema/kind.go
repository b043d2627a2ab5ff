package schema

import "fmt"

// Kind classifies a schema node.
type Kind uint8

const (
	KindPrimitive Kind = iota + 1
	KindEnum
	KindGuid
	KindString
	KindBytes
	KindKeyValue
	KindNullable
	KindSequence
	KindMap
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindGuid:
		return "guid"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindKeyValue:
		return "keyvalue"
	case KindNullable:
		return "nullable"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Prim is the wire type of a Primitive or Enum node.
type Prim uint8

const (
	PrimBool Prim = iota + 1
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimDecimal
	PrimDateTime
	PrimTimeSpan
)

var primInfo = [...]struct {
	name string
	size int
}{
	PrimBool:     {"bool", 1},
	PrimInt8:     {"int8", 1},
	PrimInt16:    {"int16", 2},
	PrimInt32:    {"int32", 4},
	PrimInt64:    {"int64", 8},
	PrimUint8:    {"uint8", 1},
	PrimUint16:   {"uint16", 2},
	PrimUint32:   {"uint32", 4},
	PrimUint64:   {"uint64", 8},
	PrimFloat32:  {"float32", 4},
	PrimFloat64:  {"float64", 8},
	PrimDecimal:  {"decimal", 16},
	PrimDateTime: {"datetime", 8},
	PrimTimeSpan: {"timespan", 8},
}

func (p Prim) String() string {
	if p == 0 || int(p) >= len(primInfo) {
		return fmt.Sprintf("Prim(%d)", uint8(p))
	}

	return primInfo[p].name
}

// Size returns the fixed wire width of p in bytes.
func (p Prim) Size() int {
	if p == 0 || int(p) >= len(primInfo) {
		return 0
	}

	return primInfo[p].size
}

// GuidSize is the wire width of a Guid.
const GuidSize = 16

// NullPolicy decides at which depths a presence marker is written.
type NullPolicy uint8

const (
	// All writes a marker for every nullable position, the root included.
	All NullPolicy = iota
	// OnlyMembers writes markers below the root; the root value must be present.
	OnlyMembers
	// None never writes a marker; every value must be present.
	None
)

func (p NullPolicy) String() string {
	switch p {
	case All:
		return "All"
	case OnlyMembers:
		return "OnlyMembers"
	case None:
		return "None"
	default:
		return fmt.Sprintf("NullPolicy(%d)", uint8(p))
	}
}

// Valid reports whether p is a known policy.
func (p NullPolicy) Valid() bool {
	return p <= None
}

// nullableAt reports whether a nullable-capable position at depth gets a marker.
func (p NullPolicy) nullableAt(depth int) bool {
	switch p {
	case All:
		return true
	case OnlyMembers:
		return depth > 0
	default:
		return false
	}
}
