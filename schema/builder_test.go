package schema

import (
	"bytes"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/logging"
)

type Color int16

type Line struct {
	SKU   string
	Qty   int32
	Price decimal.Decimal
}

type Order struct {
	ID       uuid.UUID
	Placed   time.Time
	TTL      time.Duration
	Color    Color
	Lines    []Line
	Tags     map[int]string
	Note     *string
	Payload  []byte
	internal int
	Skipped  string `persist:"-"`
	Renamed  bool   `persist:"flag"`
}

type Node struct {
	Value    int
	Next     *Node
	Children []Node
}

type Point struct {
	X, Y float64
}

func TestBuild_Order(t *testing.T) {
	s, err := Build(reflect.TypeFor[Order](), OnlyMembers)
	require.NoError(t, err)

	require.Equal(t, KindRecord, s.Kind)
	require.False(t, s.Nullable)

	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	require.Equal(t, []string{"ID", "Placed", "TTL", "Color", "Lines", "Tags", "Note", "Payload", "flag"}, names)

	byName := func(name string) *Schema {
		for _, f := range s.Fields {
			if f.Name == name {
				return f.Schema
			}
		}
		t.Fatalf("no field %s", name)

		return nil
	}

	require.Equal(t, KindGuid, byName("ID").Kind)
	require.Equal(t, PrimDateTime, byName("Placed").Prim)
	require.Equal(t, PrimTimeSpan, byName("TTL").Prim)
	require.Equal(t, KindEnum, byName("Color").Kind)
	require.Equal(t, PrimInt16, byName("Color").Prim)

	lines := byName("Lines")
	require.Equal(t, KindSequence, lines.Kind)
	require.True(t, lines.Nullable)
	require.Equal(t, KindRecord, lines.Elem.Kind)
	require.True(t, lines.Elem.Fields[0].Schema.Nullable, "member strings carry a marker")
	require.Equal(t, PrimDecimal, lines.Elem.Fields[2].Schema.Prim)

	tags := byName("Tags")
	require.Equal(t, KindMap, tags.Kind)
	require.Equal(t, PrimInt64, tags.Key.Prim)
	require.Equal(t, KindString, tags.Elem.Kind)

	note := byName("Note")
	require.Equal(t, KindNullable, note.Kind)
	require.True(t, note.Nullable)
	require.False(t, note.Elem.Nullable)

	require.Equal(t, KindBytes, byName("Payload").Kind)
	require.Equal(t, 10, s.Fields[len(s.Fields)-1].Index)
}

func TestBuild_NullPolicy(t *testing.T) {
	typ := reflect.TypeFor[[]string]()

	tests := []struct {
		policy       NullPolicy
		root, member bool
	}{
		{All, true, true},
		{OnlyMembers, false, true},
		{None, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			s, err := Build(typ, tt.policy)
			require.NoError(t, err)
			require.Equal(t, tt.root, s.Nullable)
			require.Equal(t, tt.member, s.Elem.Nullable)
		})
	}
}

func TestBuild_PrimitivesNeverNullable(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeFor[int](),
		reflect.TypeFor[Color](),
		reflect.TypeFor[uuid.UUID](),
		reflect.TypeFor[Point](),
		reflect.TypeFor[KeyValue[int, string]](),
	} {
		s, err := Build(typ, All)
		require.NoError(t, err)
		require.False(t, s.Nullable, typ.String())
	}
}

func TestBuild_Recursive(t *testing.T) {
	s, err := Build(reflect.TypeFor[Node](), All)
	require.NoError(t, err)

	next := s.Fields[1].Schema
	require.Equal(t, KindNullable, next.Kind)
	require.Same(t, s, next.Elem)

	children := s.Fields[2].Schema
	require.Same(t, s, children.Elem)

	_, fixed := s.FixedSize()
	require.False(t, fixed)
	require.Equal(t, "{Value:int64;Next:?*@0;Children:?[]@0}", s.String())
}

func TestBuild_RecursiveSlice(t *testing.T) {
	type Tree []Tree

	s, err := Build(reflect.TypeFor[Tree](), All)
	require.NoError(t, err)
	require.Same(t, s, s.Elem)
	require.Equal(t, "?[]?@0", s.String())
}

func TestBuild_FixedSize(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		size int
		ok   bool
	}{
		{reflect.TypeFor[int32](), 4, true},
		{reflect.TypeFor[Point](), 16, true},
		{reflect.TypeFor[KeyValue[uuid.UUID, bool]](), 17, true},
		{reflect.TypeFor[time.Time](), 8, true},
		{reflect.TypeFor[string](), 0, false},
		{reflect.TypeFor[[2]int8](), 0, false},
		{reflect.TypeFor[Line](), 0, false},
	}

	for _, tt := range tests {
		s, err := Build(tt.typ, None)
		require.NoError(t, err)
		n, ok := s.FixedSize()
		require.Equal(t, tt.ok, ok, tt.typ.String())
		if ok {
			require.Equal(t, tt.size, n, tt.typ.String())
		}
	}
}

func TestBuild_StringMapKey(t *testing.T) {
	s, err := Build(reflect.TypeFor[map[string]int32](), All)
	require.NoError(t, err)
	require.Equal(t, KindMap, s.Kind)
	require.Equal(t, KindString, s.Key.Kind)
	require.True(t, s.Key.Nullable)

	s, err = Build(reflect.TypeFor[map[string]int32](), None)
	require.NoError(t, err)
	require.False(t, s.Key.Nullable)
}

func TestBuild_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		path string
	}{
		{"record map key", reflect.TypeFor[map[Point]int](), ""},
		{"decimal map key", reflect.TypeFor[map[decimal.Decimal]int](), ""},
		{"channel", reflect.TypeFor[chan int](), ""},
		{"nested func", reflect.TypeFor[struct{ F []func() }](), ".F[]"},
		{"interface member", reflect.TypeFor[struct{ V any }](), ".V"},
		{"pointer to pointer", reflect.TypeFor[**int](), ""},
		{"complex", reflect.TypeFor[complex128](), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.typ, All)
			require.ErrorIs(t, err, errs.ErrUnsupportedSchema)

			var se *errs.SchemaError
			require.ErrorAs(t, err, &se)
			require.Equal(t, tt.path, se.Path)
		})
	}
}

func TestBuilder_MemberOrder(t *testing.T) {
	reverse := func(owner reflect.Type, f reflect.StructField) int {
		return -f.Index[0]
	}
	b, err := NewBuilder(All, WithMemberOrder(reverse))
	require.NoError(t, err)

	s, err := b.Build(reflect.TypeFor[Line]())
	require.NoError(t, err)
	require.Equal(t, "Price", s.Fields[0].Name)
	require.Equal(t, 2, s.Fields[0].Index)
	require.Equal(t, "SKU", s.Fields[2].Name)

	def, err := Build(reflect.TypeFor[Line](), All)
	require.NoError(t, err)
	require.NotEqual(t, def.Fingerprint(), s.Fingerprint())
}

func TestBuilder_StableOrderOnTies(t *testing.T) {
	b, err := NewBuilder(None, WithMemberOrder(func(reflect.Type, reflect.StructField) int { return 0 }))
	require.NoError(t, err)

	s, err := b.Build(reflect.TypeFor[Line]())
	require.NoError(t, err)
	require.Equal(t, "SKU", s.Fields[0].Name)
	require.Equal(t, "Price", s.Fields[2].Name)
}

func TestBuild_Cached(t *testing.T) {
	typ := reflect.TypeFor[Order]()

	var wg sync.WaitGroup
	results := make([]*Schema, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := Build(typ, All)
			if err == nil {
				results[i] = s
			}
		}()
	}
	wg.Wait()

	for _, s := range results {
		require.Same(t, results[0], s)
	}
}

func TestFingerprint_Policy(t *testing.T) {
	a, err := Build(reflect.TypeFor[Line](), All)
	require.NoError(t, err)
	b, err := Build(reflect.TypeFor[Line](), None)
	require.NoError(t, err)

	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	require.Equal(t, "{SKU:?string;Qty:int32;Price:decimal}", a.String())
	require.Equal(t, "{SKU:string;Qty:int32;Price:decimal}", b.String())
}

func TestBuilder_LogsBuild(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, err := NewBuilder(All, WithLogger(logger))
	require.NoError(t, err)
	_, err = b.Build(reflect.TypeFor[Point]())
	require.NoError(t, err)
	require.Contains(t, buf.String(), "schema built")
	require.Contains(t, buf.String(), "members=2")

	buf.Reset()
	_, err = b.Build(reflect.TypeFor[Point]())
	require.NoError(t, err)
	require.Empty(t, buf.String())
}

func TestNewBuilder_InvalidPolicy(t *testing.T) {
	_, err := NewBuilder(NullPolicy(9))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}
