package schema

import (
	"reflect"
	"strconv"
	"strings"
)

// Schema is the classification of one type at one position.
//
// Nodes form a graph: recursive types point back to a node already being
// described, so walks over Elem, Key and Fields must guard against cycles.
type Schema struct {
	// Type is the Go type of the value at this position.
	Type reflect.Type
	Kind Kind
	// Prim is set for Primitive and Enum nodes.
	Prim Prim
	// Nullable reports whether a presence marker is written at this position.
	Nullable bool
	// Key is the key schema of Map and KeyValue nodes.
	Key *Schema
	// Elem is the element schema of Nullable and Sequence nodes and the value
	// schema of Map and KeyValue nodes.
	Elem *Schema
	// Fields lists the members of a Record node in wire order.
	Fields []Field

	fixedSize   int
	fingerprint uint64
	desc        string
}

// Field is one member of a Record.
type Field struct {
	// Name is the field name, or its persist tag name.
	Name string
	// Index is the position of the field in its struct, for reflect.Value.Field.
	Index  int
	Schema *Schema
}

// FixedSize returns the encoded size of every value at this position when it
// does not depend on the value.
func (s *Schema) FixedSize() (int, bool) {
	return s.fixedSize, s.fixedSize >= 0
}

// Fingerprint returns a 64-bit hash of the canonical layout description.
//
// Two schemas with equal fingerprints describe the same wire layout; any
// change of member order, member name, kind, width or nullability changes it.
func (s *Schema) Fingerprint() uint64 {
	return s.fingerprint
}

// String returns the canonical layout description.
func (s *Schema) String() string {
	return s.desc
}

// describe writes the canonical layout. Composite nodes met again on the
// current path are written as a back reference to their depth.
func (s *Schema) describe(sb *strings.Builder, path []*Schema) {
	if s.Nullable {
		sb.WriteByte('?')
	}

	switch s.Kind {
	case KindPrimitive, KindEnum, KindGuid, KindString, KindBytes:
	default:
		for i, p := range path {
			if p == s {
				sb.WriteByte('@')
				sb.WriteString(strconv.Itoa(i))

				return
			}
		}
		path = append(path, s)
	}

	switch s.Kind {
	case KindPrimitive:
		sb.WriteString(s.Prim.String())
	case KindEnum:
		sb.WriteString("enum(")
		sb.WriteString(s.Prim.String())
		sb.WriteByte(')')
	case KindGuid, KindString, KindBytes:
		sb.WriteString(s.Kind.String())
	case KindKeyValue:
		sb.WriteString("kv<")
		s.Key.describe(sb, path)
		sb.WriteByte(',')
		s.Elem.describe(sb, path)
		sb.WriteByte('>')
	case KindNullable:
		sb.WriteByte('*')
		s.Elem.describe(sb, path)
	case KindSequence:
		sb.WriteByte('[')
		if s.Type.Kind() == reflect.Array {
			sb.WriteString(strconv.Itoa(s.Type.Len()))
		}
		sb.WriteByte(']')
		s.Elem.describe(sb, path)
	case KindMap:
		sb.WriteString("map[")
		s.Key.describe(sb, path)
		sb.WriteByte(']')
		s.Elem.describe(sb, path)
	case KindRecord:
		sb.WriteByte('{')
		for i, f := range s.Fields {
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(f.Name)
			sb.WriteByte(':')
			f.Schema.describe(sb, path)
		}
		sb.WriteByte('}')
	}
}

// computeFixedSize returns the constant encoded size of s, or -1.
func computeFixedSize(s *Schema, visiting map[*Schema]bool) int {
	switch s.Kind {
	case KindPrimitive, KindEnum:
		return s.Prim.Size()
	case KindGuid:
		return GuidSize
	case KindKeyValue:
		k := computeFixedSize(s.Key, visiting)
		v := computeFixedSize(s.Elem, visiting)
		if k < 0 || v < 0 {
			return -1
		}

		return k + v
	case KindRecord:
		if visiting[s] {
			return -1
		}
		visiting[s] = true
		defer delete(visiting, s)

		total := 0
		for _, f := range s.Fields {
			n := computeFixedSize(f.Schema, visiting)
			if n < 0 {
				return -1
			}
			total += n
		}

		return total
	default:
		// Strings, collections and nullable values carry a length or a marker.
		return -1
	}
}
