package compress

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
)

func allCodecs() []Codec {
	return []Codec{
		NewNoOpCompressor(),
		NewZstdCompressor(),
		NewS2Compressor(),
		NewLZ4Compressor(),
	}
}

func testPayload(size int, kind string) []byte {
	data := make([]byte, size)
	switch kind {
	case "zeros":
	case "pattern":
		pattern := []byte("column payload 0123456789")
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	default:
		rng := rand.New(rand.NewSource(int64(size)))
		_, _ = rng.Read(data)
	}

	return data
}

func TestGetCodec(t *testing.T) {
	for _, c := range allCodecs() {
		got, err := GetCodec(c.Type())
		require.NoError(t, err)
		require.Equal(t, c.Type(), got.Type())
	}

	_, err := GetCodec(format.CompressionType(0x7f))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = GetCodec(0)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestCodecs_Type(t *testing.T) {
	require.Equal(t, format.CompressionNone, NewNoOpCompressor().Type())
	require.Equal(t, format.CompressionZstd, NewZstdCompressor().Type())
	require.Equal(t, format.CompressionS2, NewS2Compressor().Type())
	require.Equal(t, format.CompressionLZ4, NewLZ4Compressor().Type())
}

func TestCodecs_EmptyData(t *testing.T) {
	for _, c := range allCodecs() {
		t.Run(c.Type().String(), func(t *testing.T) {
			packed, err := c.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, packed)

			out, err := c.Decompress(packed)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	sizes := []int{1, 7, 64, 1024, 64 * 1024}
	kinds := []string{"zeros", "pattern", "random"}

	for _, c := range allCodecs() {
		for _, kind := range kinds {
			for _, size := range sizes {
				t.Run(fmt.Sprintf("%s/%s/%d", c.Type(), kind, size), func(t *testing.T) {
					data := testPayload(size, kind)
					orig := bytes.Clone(data)

					packed, err := c.Compress(data)
					require.NoError(t, err)
					require.Equal(t, orig, data, "input must not be modified")

					out, err := c.Decompress(packed)
					require.NoError(t, err)
					require.Equal(t, orig, out)
				})
			}
		}
	}
}

func TestCodecs_Shrink(t *testing.T) {
	data := testPayload(64*1024, "pattern")
	for _, c := range allCodecs() {
		if c.Type() == format.CompressionNone {
			continue
		}
		packed, err := c.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(packed), len(data)/4, c.Type().String())
	}
}

func TestCodecs_InvalidData(t *testing.T) {
	garbage := []byte{0xff, 0xfe, 0xfd, 0xfc, 0x01, 0x02, 0x03, 0x04, 0x05}
	for _, c := range allCodecs() {
		if c.Type() == format.CompressionNone {
			continue
		}
		t.Run(c.Type().String(), func(t *testing.T) {
			_, err := c.Decompress(garbage)
			require.ErrorIs(t, err, errs.ErrCorruptData)
		})
	}
}

func TestLZ4_StoresIncompressibleRaw(t *testing.T) {
	data := testPayload(512, "random")
	c := NewLZ4Compressor()

	packed, err := c.Compress(data)
	require.NoError(t, err)
	// two byte length prefix followed by the raw input
	require.Len(t, packed, 2+len(data))
	require.Equal(t, data, packed[2:])

	out, err := c.Decompress(packed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestLZ4_RejectsOversizedHeader(t *testing.T) {
	// uvarint of 1<<40
	hdr := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x20, 0x00}
	_, err := NewLZ4Compressor().Decompress(hdr)
	require.ErrorIs(t, err, errs.ErrCorruptData)

	_, err = NewLZ4Compressor().Decompress([]byte{0x80})
	require.ErrorIs(t, err, errs.ErrCorruptData)
	require.ErrorIs(t, err, errs.ErrMalformedVarint)
}

func TestLZ4_TruncatedBlock(t *testing.T) {
	c := NewLZ4Compressor()
	packed, err := c.Compress(testPayload(4096, "pattern"))
	require.NoError(t, err)

	_, err = c.Decompress(packed[:len(packed)-3])
	require.ErrorIs(t, err, errs.ErrCorruptData)
}

func TestCodecs_ConcurrentUsage(t *testing.T) {
	data := testPayload(8*1024, "pattern")

	for _, c := range allCodecs() {
		t.Run(c.Type().String(), func(t *testing.T) {
			var wg sync.WaitGroup
			errCh := make(chan error, 16)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 20 {
						packed, err := c.Compress(data)
						if err != nil {
							errCh <- err
							return
						}
						out, err := c.Decompress(packed)
						if err != nil {
							errCh <- err
							return
						}
						if !bytes.Equal(out, data) {
							errCh <- fmt.Errorf("%s: round trip mismatch", c.Type())
							return
						}
					}
				}()
			}
			wg.Wait()
			close(errCh)
			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}
