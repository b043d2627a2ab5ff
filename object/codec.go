package object

import (
	"context"
	"fmt"
	"reflect"

	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/internal/pool"
	"github.com/stssoft/persist/schema"
)

// KeyValue is a key and value pair encoded without a marker of its own.
type KeyValue[K, V any] = schema.KeyValue[K, V]

// Untyped is the codec of one type, working on values passed as any or
// reflect.Value. It is safe for concurrent use.
type Untyped struct {
	typ    reflect.Type
	schema *schema.Schema
	root   *proc
	engine endian.EndianEngine
}

// New creates the codec of typ.
//
// Shapes that cannot be encoded are rejected here with errs.ErrUnsupportedSchema.
func New(typ reflect.Type, opts ...Option) (*Untyped, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newUntyped(typ, c)
}

func newUntyped(typ reflect.Type, c *config) (*Untyped, error) {
	if c.order != nil {
		b, err := schema.NewBuilder(c.policy, schema.WithMemberOrder(c.order), schema.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		s, err := b.Build(typ)
		if err != nil {
			return nil, err
		}

		return &Untyped{typ: typ, schema: s, root: compile(s), engine: c.engine}, nil
	}

	s, err := schema.Build(typ, c.policy)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.WithComponent("object").LogSchemaBuilt(context.Background(), typ, s.Kind.String(), len(s.Fields), s.Fingerprint())
	}

	return &Untyped{typ: typ, schema: s, root: cachedProc(s), engine: c.engine}, nil
}

// Type returns the type handled by the codec.
func (u *Untyped) Type() reflect.Type {
	return u.typ
}

// Schema returns the schema the codec was compiled from.
func (u *Untyped) Schema() *schema.Schema {
	return u.schema
}

func (u *Untyped) check(v reflect.Value) error {
	if !v.IsValid() || v.Type() != u.typ {
		return fmt.Errorf("%w: codec of %s got %v", errs.ErrInvalidArgument, u.typ, v)
	}

	return nil
}

// valueOf turns v into a value of the codec type; a nil interface becomes
// the zero value of nilable types.
func (u *Untyped) valueOf(v any) reflect.Value {
	if v == nil && canBeNil(u.typ) {
		return reflect.Zero(u.typ)
	}

	return reflect.ValueOf(v)
}

func canBeNil(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		return true
	default:
		return false
	}
}

// EncodeValue writes v to w.
func (u *Untyped) EncodeValue(w *encoding.Writer, v reflect.Value) error {
	if err := u.check(v); err != nil {
		return err
	}
	if err := u.root.enc(w, v); err != nil {
		return err
	}

	return w.Err()
}

// Encode writes v, which must hold a value of the codec type, to w.
func (u *Untyped) Encode(w *encoding.Writer, v any) error {
	return u.EncodeValue(w, u.valueOf(v))
}

// SizeValue returns the number of bytes EncodeValue writes for v.
func (u *Untyped) SizeValue(v reflect.Value) (int, error) {
	if err := u.check(v); err != nil {
		return 0, err
	}

	return u.root.size(v)
}

// Size returns the number of bytes Encode writes for v.
func (u *Untyped) Size(v any) (int, error) {
	return u.SizeValue(u.valueOf(v))
}

// DecodeValue reads one value from r into the settable v.
func (u *Untyped) DecodeValue(r *encoding.Reader, v reflect.Value) error {
	if err := u.check(v); err != nil {
		return err
	}
	if !v.CanSet() {
		return fmt.Errorf("%w: decoding into unsettable %s", errs.ErrInvalidArgument, u.typ)
	}

	return u.root.dec(r, v)
}

// Decode reads one value from r.
func (u *Untyped) Decode(r *encoding.Reader) (any, error) {
	ptr := reflect.New(u.typ)
	if err := u.root.dec(r, ptr.Elem()); err != nil {
		return nil, err
	}

	return ptr.Elem().Interface(), nil
}

// MarshalValue encodes v into a new slice of exactly SizeValue(v) bytes.
func (u *Untyped) MarshalValue(v reflect.Value) ([]byte, error) {
	n, err := u.SizeValue(v)
	if err != nil {
		return nil, err
	}

	bb := &pool.ByteBuffer{B: make([]byte, 0, n)}
	w := encoding.NewWriter(bb, encoding.WithEngine(u.engine))
	if err := u.EncodeValue(w, v); err != nil {
		return nil, err
	}

	return bb.B, nil
}

// Marshal encodes v into a new slice.
func (u *Untyped) Marshal(v any) ([]byte, error) {
	return u.MarshalValue(u.valueOf(v))
}

// UnmarshalValue decodes data, which must hold exactly one value, into v.
func (u *Untyped) UnmarshalValue(data []byte, v reflect.Value) error {
	r, err := encoding.NewBytesReader(data, encoding.WithEngine(u.engine))
	if err != nil {
		return err
	}
	if err := u.DecodeValue(r, v); err != nil {
		return err
	}
	if rem := r.Remaining(); rem != 0 {
		return errs.DataErrf(r.Offset(), errs.ErrCorruptData, "%d trailing bytes after %s", rem, u.typ)
	}

	return nil
}

// Unmarshal decodes data, which must hold exactly one value.
func (u *Untyped) Unmarshal(data []byte) (any, error) {
	ptr := reflect.New(u.typ)
	if err := u.UnmarshalValue(data, ptr.Elem()); err != nil {
		return nil, err
	}

	return ptr.Elem().Interface(), nil
}

// Codec is the typed codec of T. It is safe for concurrent use.
type Codec[T any] struct {
	u *Untyped
}

// For creates the codec of T.
//
// Without WithMemberOrder the compiled procedures come from a process-wide
// cache, so calling For repeatedly for the same type and policy is cheap.
func For[T any](opts ...Option) (*Codec[T], error) {
	u, err := New(reflect.TypeFor[T](), opts...)
	if err != nil {
		return nil, err
	}

	return &Codec[T]{u: u}, nil
}

// Must panics if err is not nil. It is meant for package-level codecs:
//
//	var orderCodec = object.Must(object.For[Order]())
func Must[T any](c *Codec[T], err error) *Codec[T] {
	if err != nil {
		panic(err)
	}

	return c
}

// Untyped returns the reflection based view of the codec.
func (c *Codec[T]) Untyped() *Untyped {
	return c.u
}

// Schema returns the schema the codec was compiled from.
func (c *Codec[T]) Schema() *schema.Schema {
	return c.u.schema
}

// Encode writes v to w.
func (c *Codec[T]) Encode(w *encoding.Writer, v T) error {
	return c.u.EncodeValue(w, reflect.ValueOf(&v).Elem())
}

// Decode reads one value from r.
func (c *Codec[T]) Decode(r *encoding.Reader) (T, error) {
	var v T
	err := c.DecodeInto(r, &v)

	return v, err
}

// DecodeInto reads one value from r into dst.
func (c *Codec[T]) DecodeInto(r *encoding.Reader, dst *T) error {
	return c.u.root.dec(r, reflect.ValueOf(dst).Elem())
}

// Size returns the number of bytes Encode writes for v.
func (c *Codec[T]) Size(v T) (int, error) {
	return c.u.root.size(reflect.ValueOf(&v).Elem())
}

// Marshal encodes v into a new slice of exactly Size(v) bytes.
func (c *Codec[T]) Marshal(v T) ([]byte, error) {
	return c.u.MarshalValue(reflect.ValueOf(&v).Elem())
}

// Unmarshal decodes data, which must hold exactly one value, into dst.
func (c *Codec[T]) Unmarshal(data []byte, dst *T) error {
	return c.u.UnmarshalValue(data, reflect.ValueOf(dst).Elem())
}
