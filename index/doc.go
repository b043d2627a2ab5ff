// Package index implements the numeric index column codecs.
//
// An index column is an ordered sequence of one primitive numeric type. Every
// codec writes a format version byte first and routes the values through the
// delta column codec of package encoding whenever it can:
//
//	integers:        [version:u8][factor:uvarint][delta block of v/factor]
//	floats/decimals: [version:u8][digits:i8][delta block of round(v*10^digits)]
//	                 [version:u8][-1:i8][count x native fixed-width values]
//
// Integer codecs divide every value by the largest configured factor that
// divides all of them. Narrow integer types (8, 16 and 32 bits, signed or not)
// widen into the same 64-bit pipeline.
//
// Floating point and decimal codecs look for the smallest number of decimal
// digits that turns every value into an integer which converts back to the
// identical value. When no such scale exists within the digit cap (15 by
// default), when a scaled value leaves the int64 range, or when the column
// holds NaN, infinities or negative zero, the column is stored at native width
// instead. That fallback never surfaces as an error.
//
// The number of values is not part of a column; callers record it and size the
// destination slice accordingly:
//
//	codec, _ := index.NewFloat64Codec()
//	_ = codec.Store(w, prices)
//	...
//	out := make([]float64, n)
//	err := codec.Load(r, out)
package index
