// Package object encodes Go values to the persist wire format.
//
// A codec is compiled once per type from its schema.Schema into a tree of
// encode, decode and size procedures and cached for the lifetime of the
// process. Encoding walks the value in schema order:
//
//	record:            [member0][member1]...[memberN]
//	string, bytes:     [marker:u8 if nullable][length:uvarint][raw bytes]
//	sequence, map:     [marker:u8 if nullable][count:uvarint][elements...]
//	pointer:           [marker:u8 if nullable][pointee]
//	primitive, enum:   fixed width, never a marker
//
// Map entries are written in ascending key order, so equal values always
// produce equal bytes.
//
// Size returns exactly the number of bytes Encode writes for the same value
// without encoding it. Marshal relies on it to allocate the output once.
//
//	codec, err := object.For[Order]()
//	if err != nil {
//	    return err
//	}
//	data, err := codec.Marshal(order)
//	...
//	var back Order
//	err = codec.Unmarshal(data, &back)
//
// A value absent where the null policy allows no marker cannot be encoded:
// a nil pointer fails with errs.ErrNilValue, while nil slices and maps are
// written as empty ones.
package object
