package errs

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataError(t *testing.T) {
	err := DataErrf(12, ErrMalformedVarint, "reading count")

	require.ErrorIs(t, err, ErrMalformedVarint)
	require.Equal(t, "reading count at offset 12: malformed varint", err.Error())

	var de *DataError
	require.True(t, errors.As(fmt.Errorf("decode: %w", err), &de))
	require.Equal(t, int64(12), de.Offset)
}

func TestDataError_NoMessage(t *testing.T) {
	err := &DataError{Offset: 3, Err: ErrUnexpectedEOF}

	require.Equal(t, "at offset 3: unexpected end of data", err.Error())
}

func TestSchemaError(t *testing.T) {
	typ := reflect.TypeOf(map[struct{ A int }]string{})

	err := SchemaErrf(typ, ".Lookup", "map key must be primitive")
	require.ErrorIs(t, err, ErrUnsupportedSchema)
	require.Contains(t, err.Error(), ".Lookup: map key must be primitive")

	err = SchemaErrf(typ, "", "map key must be primitive")
	require.NotContains(t, err.Error(), "..")

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, typ, se.Type)
}
