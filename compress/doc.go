// Package compress provides the payload compressors of persist column blocks.
//
// A column block stores every column as the output of a numeric index codec.
// Those payloads are already delta encoded; compression is an optional second
// stage chosen per block and recorded as a format.CompressionType tag:
//
//   - None: payload stored as encoded (default)
//   - Zstd: best ratio, moderate speed
//   - S2:   balanced ratio and speed
//   - LZ4:  fastest decompression
//
// Codecs are obtained by tag:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// # Zstd implementations
//
// Zstandard uses github.com/klauspost/compress/zstd by default. Building with
// the gozstd tag (and cgo enabled) switches to github.com/valyala/gozstd; the
// frames are interchangeable.
package compress
