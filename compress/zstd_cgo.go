//go:build gozstd && cgo

package compress

import "github.com/valyala/gozstd"

const gozstdLevel = 3

// Compress encodes data as one zstd frame.
func (ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, gozstdLevel), nil
}

// Decompress decodes a zstd frame.
func (ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, corrupt("zstd", err)
	}

	return out, nil
}
