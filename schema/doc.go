// Package schema classifies Go types for the object codec.
//
// A Schema is built once per type and policy, cached for the lifetime of the
// process and never modified afterwards; it is safe to share between
// goroutines. Building walks the type tree and rejects shapes that cannot be
// represented on the wire (channels, functions, interfaces, maps with
// composite keys) before any value is encoded.
//
// # Type mapping
//
//	bool, intN, uintN, floatN     Primitive, fixed width (int and uint take 8 bytes)
//	decimal.Decimal               Primitive, 16 bytes
//	time.Time                     Primitive, 100ns ticks since 0001-01-01 UTC
//	time.Duration                 Primitive, 100ns ticks
//	named integer types           Enum, encoded as the underlying integer
//	uuid.UUID                     Guid, 16 bytes
//	string                        String
//	[]byte                        Bytes
//	KeyValue[K, V]                KeyValue, key then value without a marker of its own
//	*T                            Nullable
//	[]T, [N]T                     Sequence
//	map[K]V                       Map, K must be Primitive, String, Enum or Guid
//	struct                        Record, exported fields in declaration order
//
// A struct field tagged `persist:"-"` is skipped; `persist:"name"` renames it
// in the schema description.
//
// # Null policy
//
// Strings, byte slices, slices, maps and pointers may carry a one-byte
// presence marker. NullPolicy decides where: everywhere (All), below the root
// only (OnlyMembers), or nowhere (None). The positions are fixed when the
// schema is built, so the wire layout of a type is a pure function of its
// Schema.
package schema
