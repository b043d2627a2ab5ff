package compress

import "github.com/stssoft/persist/format"

// NoOpCompressor stores payloads as encoded.
//
// Delta encoded columns are often already small enough that a general purpose
// compressor only adds framing, so this is the default of column blocks.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

// NewNoOpCompressor creates a codec that passes data through.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Type returns format.CompressionNone.
func (NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns data itself; the result shares memory with the input.
func (NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself; the result shares memory with the input.
func (NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
