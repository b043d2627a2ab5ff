package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stssoft/persist/column"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/index"
	"github.com/stssoft/persist/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()

	return out.String(), err
}

func writeBlock(t *testing.T) string {
	t.Helper()

	enc, err := column.NewEncoder(
		column.WithCompression(format.CompressionS2),
		column.WithIndexOptions(index.WithFactors(1000)),
	)
	require.NoError(t, err)
	require.NoError(t, enc.AddInt64("ts", []int64{1000, 2000, 3000}))
	require.NoError(t, enc.AddFloat64("px", []float64{1.25, 1.5}))
	require.NoError(t, column.AddIntegers(enc, "qty", []uint8{1, 2, 3, 4}))
	data, err := enc.Finish()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "block.pcol")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestInspectCommand(t *testing.T) {
	path := writeBlock(t)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "compression: S2")
	assert.Contains(t, out, "order: little")
	assert.Contains(t, out, "columns: 3")
	assert.Regexp(t, `ts\s+int64\s+3\s+\d+\s+\d+\s+factor=1000`, out)
	assert.Regexp(t, `px\s+float64\s+2\s+\d+\s+\d+\s+digits=2`, out)
	assert.Regexp(t, `qty\s+uint8\s+4\s+\d+\s+\d+\s+factor=1`, out)
}

func TestVerifyCommand(t *testing.T) {
	path := writeBlock(t)

	out, err := run(t, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 3 columns")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)/2] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = run(t, "verify", path)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	_, err = run(t, "verify", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = run(t, "verify")
	require.Error(t, err)
}

type row struct {
	Price float64
	Qty   int32
}

func TestStoreCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")

	db, err := store.Open(path)
	require.NoError(t, err)
	tbl, err := store.OpenTable[string, row](db, "rows")
	require.NoError(t, err)
	require.NoError(t, tbl.PutAll([]string{"a", "b"}, []row{{1.5, 1}, {2.5, 2}}))
	_, err = tbl.BuildIndex("px",
		store.Float64Column("price", func(_ string, r row) float64 { return r.Price }),
		store.IntegerColumn("qty", func(_ string, r row) int32 { return r.Qty }),
	)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := run(t, "tables", path)
	require.NoError(t, err)
	assert.Regexp(t, `rows\s+2\s+px`, out)

	out, err = run(t, "index", path, "rows", "px", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "compression: Zstd")
	assert.Regexp(t, `price\s+float64\s+2`, out)
	assert.Regexp(t, `qty\s+int32\s+2`, out)

	_, err = run(t, "index", path, "rows", "nope")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLogFormatFlag(t *testing.T) {
	path := writeBlock(t)

	_, err := run(t, "verify", "-v", "--log-format", "json", path)
	require.NoError(t, err)

	_, err = run(t, "verify", "--log-format", "xml", path)
	require.ErrorContains(t, err, "unknown log format")
}
