package compress

import "github.com/stssoft/persist/format"

// ZstdCompressor compresses payloads with Zstandard.
//
// It gives the best ratio of the built-in codecs and suits blocks that are
// written once and kept, such as the index snapshots of a store. The pure Go
// implementation is used unless the module is built with the gozstd tag and
// cgo enabled; both produce standard zstd frames.
type ZstdCompressor struct{}

var _ Codec = ZstdCompressor{}

// NewZstdCompressor creates a zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type returns format.CompressionZstd.
func (ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}
