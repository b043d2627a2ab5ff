// Package encoding provides the low-level building blocks of the persist wire format.
//
// It contains the byte sink and source used by every codec, the varint codec,
// the bit-width helper and the delta column codec that the numeric index codecs
// delegate to.
//
// # Sink and Source
//
// Writer wraps any io.Writer. Writes never return an error; the first failure
// is kept and reported by Err, so a codec can emit a whole value and check once:
//
//	bb := pool.GetRecordBuffer()
//	defer pool.PutRecordBuffer(bb)
//
//	w := encoding.NewWriter(bb)
//	w.WriteUvarint(3)
//	w.WriteFloat64(1.5)
//	if err := w.Err(); err != nil {
//	    return err
//	}
//
// When the target is a *pool.ByteBuffer the Writer appends to it directly.
//
// Reader wraps an io.Reader, or a byte slice through NewBytesReader, and returns
// an error from every call. Running out of data is reported as
// errs.ErrUnexpectedEOF (errs.ErrMalformedVarint inside a varint) wrapped in an
// *errs.DataError that records the offset.
//
// # Varint
//
// Unsigned magnitudes are written 7 bits per byte, low group first, with the
// high bit of each byte set when more bytes follow. UvarintSize(v) is always
// equal to the number of bytes WriteUvarint(v) emits. Signed values are zigzag
// mapped first so that small negative numbers stay short.
//
// # Delta column
//
// A delta block stores an ordered int64 sequence as:
//
//	[count:uvarint]
//	[first:zigzag varint]                      if count > 0
//	[minDelta:zigzag varint][width:u8][packed] if count > 1
//
// where packed holds count-1 values (delta[i] - minDelta) at width bits each,
// least significant bit first. Width is 0 when every delta is equal, which makes
// arithmetic progressions (sequential ids, regular timestamps) cost a handful
// of bytes regardless of length. Arithmetic wraps, so every int64 sequence
// decodes bit-exactly.
package encoding
