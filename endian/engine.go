// Package endian selects the byte order of fixed-width primitives on the wire.
//
// Every fixed-width value written by the persist codecs (integers, floats,
// datetime ticks, the native fallback of the index codecs) goes through an
// EndianEngine. Little-endian is the default and the only order the column
// block format records as 0; big-endian is available for interoperability
// with readers that expect network order.
//
//	w := encoding.NewWriter(buf, encoding.WithEngine(endian.GetBigEndianEngine()))
//
// All functions and values in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Order is the one-byte tag that records an engine inside a persisted header.
type Order uint8

const (
	LittleEndian Order = 0x0
	BigEndian    Order = 0x1
)

func (o Order) String() string {
	switch o {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "unknown"
	}
}

// Engine returns the engine for the tag.
func (o Order) Engine() (EndianEngine, error) {
	switch o {
	case LittleEndian:
		return binary.LittleEndian, nil
	case BigEndian:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order tag 0x%02x", uint8(o))
	}
}

// OrderOf returns the tag describing engine.
func OrderOf(engine EndianEngine) Order {
	if engine == EndianEngine(binary.BigEndian) {
		return BigEndian
	}

	return LittleEndian
}

// ParseOrder parses "little"/"le" or "big"/"be", case-insensitively.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "le", "":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown byte order %q", s)
	}
}

// CheckEndianness reports the host byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100: the low byte comes first on little-endian hosts.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
