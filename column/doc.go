// Package column stores a named set of numeric index columns as one block.
//
// Every column is written by the numeric index codec of its element type and
// optionally compressed. A block is self-describing and checksummed:
//
//	[magic:"PCOL"][version:u8][order:u8][compression:u8][columnCount:uvarint]
//	repeated columnCount times:
//	    [nameLen:uvarint][name][type:u8][count:uvarint][payloadLen:uvarint][payload]
//	[xxhash64:u64]
//
// The checksum covers every preceding byte and is written in the block's byte
// order, which also governs the fixed-width values inside the payloads.
//
// Building a block:
//
//	enc, err := column.NewEncoder(column.WithCompression(format.CompressionZstd))
//	if err != nil {
//	    return err
//	}
//	_ = enc.AddInt64("ts", timestamps)
//	_ = enc.AddFloat64("price", prices)
//	data, err := enc.Finish()
//
// Reading it back:
//
//	blk, err := column.Decode(data)
//	if err != nil {
//	    return err // errs.ErrChecksumMismatch, errs.ErrInvalidMagic, ...
//	}
//	prices, err := blk.Float64s("price")
package column
