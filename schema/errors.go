package schema

import (
	"reflect"

	"github.com/stssoft/persist/errs"
)

func unsupported(typ reflect.Type, path, format string, args ...any) error {
	return errs.SchemaErrf(typ, path, format, args...)
}
