package compress

import (
	"fmt"

	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
)

// Compressor compresses an encoded column payload.
//
// The returned slice is owned by the caller. The input is never modified,
// though the no-op codec returns it as is.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor.
//
// Corrupt input is reported as errs.ErrCorruptData.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions and names the tag persisted in a column block.
//
// Implementations are stateless values and safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor

	Type() format.CompressionType
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in Codec for compressionType.
//
// An unknown tag fails with errs.ErrInvalidArgument.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type %s (0x%02x)",
		errs.ErrInvalidArgument, compressionType, uint8(compressionType))
}

// corrupt wraps a decompression failure of the named algorithm.
func corrupt(algo string, err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrCorruptData, algo, err)
}
