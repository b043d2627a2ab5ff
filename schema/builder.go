package schema

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/internal/hash"
	"github.com/stssoft/persist/internal/options"
	"github.com/stssoft/persist/logging"
)

// MemberOrder ranks the members of a record. Members are sorted by ascending
// rank; equal ranks keep declaration order.
//
//	byName := func(owner reflect.Type, f reflect.StructField) int {
//	    return ranks[owner.Name()+"."+f.Name]
//	}
type MemberOrder func(owner reflect.Type, f reflect.StructField) int

// Option configures a Builder.
type Option = options.Option[*Builder]

// WithMemberOrder sets the member ranking of every record the Builder meets.
func WithMemberOrder(order MemberOrder) Option {
	return options.NoError("WithMemberOrder", func(b *Builder) {
		b.order = order
	})
}

// WithLogger sets the logger receiving a debug record per built schema.
func WithLogger(l *logging.Logger) Option {
	return options.NoError("WithLogger", func(b *Builder) {
		b.logger = logging.OrNoop(l).WithComponent("schema")
	})
}

type nodeKey struct {
	typ      reflect.Type
	nullable bool
}

// Builder builds and caches schemas for one null policy and member order.
type Builder struct {
	policy NullPolicy
	order  MemberOrder
	logger *logging.Logger

	// roots and nodes are only written under mu.
	roots sync.Map // reflect.Type -> *Schema
	nodes sync.Map // nodeKey -> *Schema
	mu    sync.Mutex
}

// NewBuilder creates a Builder with an empty cache.
func NewBuilder(policy NullPolicy, opts ...Option) (*Builder, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: null policy %d", errs.ErrInvalidArgument, policy)
	}

	b := &Builder{policy: policy, logger: logging.NoopLogger()}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

var defaultBuilders = [...]*Builder{
	All:         {policy: All, logger: logging.NoopLogger()},
	OnlyMembers: {policy: OnlyMembers, logger: logging.NoopLogger()},
	None:        {policy: None, logger: logging.NoopLogger()},
}

// Build returns the schema of typ under policy in declaration order, from
// the process-wide cache.
func Build(typ reflect.Type, policy NullPolicy) (*Schema, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: null policy %d", errs.ErrInvalidArgument, policy)
	}

	return defaultBuilders[policy].Build(typ)
}

// Policy returns the null policy of the Builder.
func (b *Builder) Policy() NullPolicy {
	return b.policy
}

// Build returns the schema of typ as a root value.
func (b *Builder) Build(typ reflect.Type) (*Schema, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: nil type", errs.ErrInvalidArgument)
	}
	if s, ok := b.roots.Load(typ); ok {
		return s.(*Schema), nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.roots.Load(typ); ok {
		return s.(*Schema), nil
	}

	st := &buildState{b: b, pending: make(map[nodeKey]*Schema)}
	root, err := st.node(typ, 0, "")
	if err != nil {
		return nil, err
	}

	for key, s := range st.pending {
		s.fixedSize = computeFixedSize(s, make(map[*Schema]bool))
		var sb strings.Builder
		s.describe(&sb, nil)
		s.desc = sb.String()
		s.fingerprint = hash.String(s.desc)
		b.nodes.Store(key, s)
	}
	b.roots.Store(typ, root)

	b.logger.LogSchemaBuilt(context.Background(), typ, root.Kind.String(), len(root.Fields), root.fingerprint)

	return root, nil
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	decimalType  = reflect.TypeFor[decimal.Decimal]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
	bytesType    = reflect.TypeFor[[]byte]()
	kvMarker     = reflect.TypeFor[keyValueMarker]()
)

type buildState struct {
	b       *Builder
	pending map[nodeKey]*Schema
}

// canBeNull reports whether values of typ can be absent.
func canBeNull(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Pointer:
		return true
	default:
		return false
	}
}

func (st *buildState) node(typ reflect.Type, depth int, path string) (*Schema, error) {
	key := nodeKey{typ: typ, nullable: canBeNull(typ) && st.b.policy.nullableAt(depth)}
	if s, ok := st.pending[key]; ok {
		return s, nil
	}
	if s, ok := st.b.nodes.Load(key); ok {
		return s.(*Schema), nil
	}

	s := &Schema{Type: typ, Nullable: key.nullable}
	st.pending[key] = s
	if err := st.classify(s, depth, path); err != nil {
		return nil, err
	}

	return s, nil
}

func (st *buildState) classify(s *Schema, depth int, path string) error {
	typ := s.Type

	switch typ {
	case timeType:
		s.Kind, s.Prim = KindPrimitive, PrimDateTime
		return nil
	case durationType:
		s.Kind, s.Prim = KindPrimitive, PrimTimeSpan
		return nil
	case decimalType:
		s.Kind, s.Prim = KindPrimitive, PrimDecimal
		return nil
	case uuidType:
		s.Kind = KindGuid
		return nil
	case bytesType:
		s.Kind = KindBytes
		return nil
	}

	if prim, ok := primOf(typ.Kind()); ok {
		s.Kind, s.Prim = KindPrimitive, prim
		if typ.PkgPath() != "" && isIntegerPrim(prim) {
			s.Kind = KindEnum
		}

		return nil
	}

	switch typ.Kind() {
	case reflect.String:
		s.Kind = KindString

		return nil

	case reflect.Pointer:
		if typ.Elem().Kind() == reflect.Pointer {
			return unsupported(typ, path, "pointer to pointer")
		}
		s.Kind = KindNullable
		// The pointer carries the marker; the pointee sits at the same depth
		// but never gets one of its own.
		elem, err := st.elemNode(typ.Elem(), path+"*")
		if err != nil {
			return err
		}
		s.Elem = elem

		return nil

	case reflect.Slice, reflect.Array:
		if typ.Kind() == reflect.Slice && typ.Elem().Kind() == reflect.Uint8 && typ.Elem().PkgPath() == "" {
			s.Kind = KindBytes
			return nil
		}
		s.Kind = KindSequence
		elem, err := st.node(typ.Elem(), depth+1, path+"[]")
		if err != nil {
			return err
		}
		s.Elem = elem

		return nil

	case reflect.Map:
		s.Kind = KindMap
		key, err := st.node(typ.Key(), depth+1, path+"{key}")
		if err != nil {
			return err
		}
		if !validMapKey(key) {
			return unsupported(typ, path, "map key %s is not a primitive, string, enum or guid", typ.Key())
		}
		elem, err := st.node(typ.Elem(), depth+1, path+"{}")
		if err != nil {
			return err
		}
		s.Key, s.Elem = key, elem

		return nil

	case reflect.Struct:
		if typ.Implements(kvMarker) && typ.NumField() == 2 && typ.Field(0).Name == "Key" {
			return st.keyValue(s, depth, path)
		}

		return st.record(s, depth, path)

	default:
		return unsupported(typ, path, "kind %s", typ.Kind())
	}
}

// elemNode builds the pointee of a pointer: same nesting, no marker.
func (st *buildState) elemNode(typ reflect.Type, path string) (*Schema, error) {
	key := nodeKey{typ: typ, nullable: false}
	if s, ok := st.pending[key]; ok {
		return s, nil
	}
	if s, ok := st.b.nodes.Load(key); ok {
		return s.(*Schema), nil
	}

	s := &Schema{Type: typ}
	st.pending[key] = s
	// depth 1 keeps members of the pointee nullable under OnlyMembers.
	if err := st.classify(s, 1, path); err != nil {
		return nil, err
	}

	return s, nil
}

func (st *buildState) keyValue(s *Schema, depth int, path string) error {
	s.Kind = KindKeyValue
	k, err := st.node(s.Type.Field(0).Type, depth+1, path+".Key")
	if err != nil {
		return err
	}
	v, err := st.node(s.Type.Field(1).Type, depth+1, path+".Value")
	if err != nil {
		return err
	}
	s.Key, s.Elem = k, v

	return nil
}

func (st *buildState) record(s *Schema, depth int, path string) error {
	s.Kind = KindRecord
	typ := s.Type

	type ranked struct {
		sf   reflect.StructField
		rank int
	}
	members := make([]ranked, 0, typ.NumField())
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag := sf.Tag.Get("persist"); tag == "-" {
			continue
		}
		r := 0
		if st.b.order != nil {
			r = st.b.order(typ, sf)
		}
		members = append(members, ranked{sf: sf, rank: r})
	}
	slices.SortStableFunc(members, func(a, b ranked) int {
		return cmp.Compare(a.rank, b.rank)
	})

	s.Fields = make([]Field, 0, len(members))
	for _, m := range members {
		name := m.sf.Name
		if tag := m.sf.Tag.Get("persist"); tag != "" {
			name = tag
		}
		fs, err := st.node(m.sf.Type, depth+1, path+"."+m.sf.Name)
		if err != nil {
			return err
		}
		s.Fields = append(s.Fields, Field{Name: name, Index: m.sf.Index[0], Schema: fs})
	}

	return nil
}

func primOf(k reflect.Kind) (Prim, bool) {
	switch k {
	case reflect.Bool:
		return PrimBool, true
	case reflect.Int8:
		return PrimInt8, true
	case reflect.Int16:
		return PrimInt16, true
	case reflect.Int32:
		return PrimInt32, true
	case reflect.Int64, reflect.Int:
		return PrimInt64, true
	case reflect.Uint8:
		return PrimUint8, true
	case reflect.Uint16:
		return PrimUint16, true
	case reflect.Uint32:
		return PrimUint32, true
	case reflect.Uint64, reflect.Uint:
		return PrimUint64, true
	case reflect.Float32:
		return PrimFloat32, true
	case reflect.Float64:
		return PrimFloat64, true
	default:
		return 0, false
	}
}

func isIntegerPrim(p Prim) bool {
	return p >= PrimInt8 && p <= PrimUint64
}

func validMapKey(s *Schema) bool {
	switch s.Kind {
	case KindEnum, KindGuid, KindString:
		return true
	case KindPrimitive:
		return s.Prim != PrimDecimal
	default:
		return false
	}
}
