package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.sum, String(tt.data))
			require.Equal(t, tt.sum, Sum64([]byte(tt.data)))
		})
	}
}

func TestDigest_MatchesOneShot(t *testing.T) {
	d := NewDigest()
	_, _ = d.Write([]byte("column"))
	_, _ = d.WriteString(" block")

	require.Equal(t, String("column block"), d.Sum64())
}
