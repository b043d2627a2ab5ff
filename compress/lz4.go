package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
)

// MaxLZ4BlockSize bounds the decompressed size an LZ4 payload may announce.
const MaxLZ4BlockSize = 128 << 20

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses payloads as a single LZ4 block.
//
// An LZ4 block does not record its decompressed size, so the payload is
// framed as:
//
//	[rawLen:uvarint][block]
//
// When the block would not be smaller than the input, the input is stored
// verbatim after the length; a body exactly rawLen bytes long is therefore raw.
type LZ4Compressor struct{}

var _ Codec = LZ4Compressor{}

// NewLZ4Compressor creates an LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Type returns format.CompressionLZ4.
func (LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress frames data as its length followed by one LZ4 block.
func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	hdr := encoding.UvarintSize(uint64(len(data)))
	dst := make([]byte, hdr+lz4.CompressBlockBound(len(data)))
	encoding.PutUvarint(dst, uint64(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[hdr:])
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		n = copy(dst[hdr:], data)
	}

	return dst[:hdr+n], nil
}

// Decompress reverses Compress.
func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	rawLen, hdr := encoding.Uvarint(data)
	if hdr <= 0 {
		return nil, corrupt("lz4", errs.ErrMalformedVarint)
	}
	if rawLen > MaxLZ4BlockSize {
		return nil, corrupt("lz4", fmt.Errorf("block announces %d bytes", rawLen))
	}

	body := data[hdr:]
	out := make([]byte, rawLen)
	if len(body) == int(rawLen) {
		copy(out, body)
		return out, nil
	}

	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, corrupt("lz4", err)
	}
	if n != int(rawLen) {
		return nil, corrupt("lz4", fmt.Errorf("block holds %d bytes, header announces %d", n, rawLen))
	}

	return out, nil
}
