package object

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/schema"
)

type (
	encodeFunc func(w *encoding.Writer, v reflect.Value) error
	decodeFunc func(r *encoding.Reader, v reflect.Value) error
	sizeFunc   func(v reflect.Value) (int, error)
)

// proc is the compiled form of one schema node.
//
// Decoders receive a settable value and overwrite it completely.
type proc struct {
	enc  encodeFunc
	dec  decodeFunc
	size sizeFunc
	// fixed is the constant encoded size, or -1.
	fixed int
	// minSize is a lower bound of the encoded size, used to reject counts
	// larger than the remaining input.
	minSize int
}

// procs caches the compiled procedures of schemas from the process-wide
// schema cache.
var procs sync.Map // *schema.Schema -> *proc

func cachedProc(s *schema.Schema) *proc {
	if p, ok := procs.Load(s); ok {
		return p.(*proc)
	}
	p, _ := procs.LoadOrStore(s, compile(s))

	return p.(*proc)
}

func compile(s *schema.Schema) *proc {
	c := &compiler{procs: make(map[*schema.Schema]*proc)}
	return c.proc(s)
}

type compiler struct {
	procs map[*schema.Schema]*proc
}

func (c *compiler) proc(s *schema.Schema) *proc {
	if p, ok := c.procs[s]; ok {
		return p
	}

	p := &proc{fixed: -1}
	if n, ok := s.FixedSize(); ok {
		p.fixed, p.minSize = n, n
	}
	// Registered before the children so that recursive types resolve to it.
	c.procs[s] = p

	switch s.Kind {
	case schema.KindPrimitive, schema.KindEnum:
		p.enc, p.dec = primitiveProcs(s.Prim)
	case schema.KindGuid:
		p.enc, p.dec = guidProcs()
	case schema.KindString:
		c.stringProc(p, s)
	case schema.KindBytes:
		c.bytesProc(p, s)
	case schema.KindKeyValue:
		c.keyValueProc(p, s)
	case schema.KindNullable:
		c.nullableProc(p, s)
	case schema.KindSequence:
		c.sequenceProc(p, s)
	case schema.KindMap:
		c.mapProc(p, s)
	case schema.KindRecord:
		c.recordProc(p, s)
	default:
		panic(fmt.Sprintf("object: unexpected schema kind %s", s.Kind))
	}

	if p.fixed >= 0 {
		n := p.fixed
		p.size = func(reflect.Value) (int, error) { return n, nil }
	}

	return p
}

func markerSize(nullable bool) int {
	if nullable {
		return 1
	}

	return 0
}

func nilValue(typ reflect.Type) error {
	return fmt.Errorf("%w: %s", errs.ErrNilValue, typ)
}

// readPresence reads the marker of a nullable position.
func readPresence(r *encoding.Reader, nullable bool) (bool, error) {
	if !nullable {
		return true, nil
	}

	return r.ReadBool()
}

// readCount reads a length or element count and rejects counts that cannot
// fit in the remaining input of a bytes reader.
func readCount(r *encoding.Reader, minElem int) (int, error) {
	off := r.Offset()
	n, err := r.ReadCount(0)
	if err != nil {
		return 0, err
	}
	if rem := r.Remaining(); rem >= 0 && minElem > 0 && n > rem/minElem {
		return 0, errs.DataErrf(off, errs.ErrCorruptData, "count %d exceeds the %d remaining bytes", n, rem)
	}

	return n, nil
}

func (c *compiler) stringProc(p *proc, s *schema.Schema) {
	nullable := s.Nullable
	marker := markerSize(nullable)
	p.minSize = 1

	// Go strings are never absent: a nullable position always reads present.
	p.enc = func(w *encoding.Writer, v reflect.Value) error {
		if nullable {
			w.WriteBool(true)
		}
		str := v.String()
		w.WriteUvarint(uint64(len(str)))
		w.WriteString(str)

		return nil
	}
	p.dec = func(r *encoding.Reader, v reflect.Value) error {
		present, err := readPresence(r, nullable)
		if err != nil {
			return err
		}
		if !present {
			v.SetString("")
			return nil
		}
		n, err := readCount(r, 1)
		if err != nil {
			return err
		}
		str, err := r.ReadString(n)
		if err != nil {
			return err
		}
		v.SetString(str)

		return nil
	}
	p.size = func(v reflect.Value) (int, error) {
		n := v.Len()
		return marker + encoding.UvarintSize(uint64(n)) + n, nil
	}
}

func (c *compiler) bytesProc(p *proc, s *schema.Schema) {
	nullable := s.Nullable
	marker := markerSize(nullable)
	p.minSize = 1

	p.enc = func(w *encoding.Writer, v reflect.Value) error {
		if nullable {
			if v.IsNil() {
				w.WriteBool(false)
				return nil
			}
			w.WriteBool(true)
		}
		b := v.Bytes()
		w.WriteUvarint(uint64(len(b)))
		w.WriteBytes(b)

		return nil
	}
	p.dec = func(r *encoding.Reader, v reflect.Value) error {
		present, err := readPresence(r, nullable)
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		n, err := readCount(r, 1)
		if err != nil {
			return err
		}
		b, err := r.ReadBytes(n)
		if err != nil {
			return err
		}
		v.SetBytes(b)

		return nil
	}
	p.size = func(v reflect.Value) (int, error) {
		if nullable && v.IsNil() {
			return 1, nil
		}
		n := v.Len()

		return marker + encoding.UvarintSize(uint64(n)) + n, nil
	}
}

func (c *compiler) keyValueProc(p *proc, s *schema.Schema) {
	key, val := c.proc(s.Key), c.proc(s.Elem)
	p.minSize = key.minSize + val.minSize

	p.enc = func(w *encoding.Writer, v reflect.Value) error {
		if err := key.enc(w, v.Field(0)); err != nil {
			return err
		}

		return val.enc(w, v.Field(1))
	}
	p.dec = func(r *encoding.Reader, v reflect.Value) error {
		if err := key.dec(r, v.Field(0)); err != nil {
			return err
		}

		return val.dec(r, v.Field(1))
	}
	p.size = func(v reflect.Value) (int, error) {
		k, err := key.size(v.Field(0))
		if err != nil {
			return 0, err
		}
		n, err := val.size(v.Field(1))

		return k + n, err
	}
}

func (c *compiler) nullableProc(p *proc, s *schema.Schema) {
	nullable := s.Nullable
	marker := markerSize(nullable)
	typ, elemType := s.Type, s.Type.Elem()
	elem := c.proc(s.Elem)
	// An absent value is the marker alone.
	p.minSize = elem.minSize
	if nullable {
		p.minSize = 1
	}

	p.enc = func(w *encoding.Writer, v reflect.Value) error {
		if v.IsNil() {
			if !nullable {
				return nilValue(typ)
			}
			w.WriteBool(false)

			return nil
		}
		if nullable {
			w.WriteBool(true)
		}

		return elem.enc(w, v.Elem())
	}
	p.dec = func(r *encoding.Reader, v reflect.Value) error {
		present, err := readPresence(r, nullable)
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		ptr := reflect.New(elemType)
		if err := elem.dec(r, ptr.Elem()); err != nil {
			return err
		}
		v.Set(ptr)

		return nil
	}
	p.size = func(v reflect.Value) (int, error) {
		if v.IsNil() {
			if !nullable {
				return 0, nilValue(typ)
			}

			return 1, nil
		}
		n, err := elem.size(v.Elem())

		return marker + n, err
	}
}

func (c *compiler) sequenceProc(p *proc, s *schema.Schema) {
	nullable := s.Nullable
	marker := markerSize(nullable)
	typ := s.Type
	isArray := typ.Kind() == reflect.Array
	elem := c.proc(s.Elem)
	p.minSize = 1

	p.enc = func(w *encoding.Writer, v reflect.Value) error {
		if nullable {
			if !isArray && v.IsNil() {
				w.WriteBool(false)
				return nil
			}
			w.WriteBool(true)
		}
		n := v.Len()
		w.WriteUvarint(uint64(n))
		for i := range n {
			if err := elem.enc(w, v.Index(i)); err != nil {
				return err
			}
		}

		return nil
	}
	p.dec = func(r *encoding.Reader, v reflect.Value) error {
		present, err := readPresence(r, nullable)
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		off := r.Offset()
		n, err := readCount(r, elem.minSize)
		if err != nil {
			return err
		}

		target := v
		if isArray {
			if n != v.Len() {
				return errs.DataErrf(off, errs.ErrCorruptData, "%s holds %d elements, got %d", typ, v.Len(), n)
			}
		} else {
			target = reflect.MakeSlice(typ, n, n)
		}
		for i := range n {
			if err := elem.dec(r, target.Index(i)); err != nil {
				return err
			}
		}
		if !isArray {
			v.Set(target)
		}

		return nil
	}
	p.size = func(v reflect.Value) (int, error) {
		if nullable && !isArray && v.IsNil() {
			return 1, nil
		}
		n := v.Len()
		total := marker + encoding.UvarintSize(uint64(n))
		if elem.fixed >= 0 {
			return total + n*elem.fixed, nil
		}
		for i := range n {
			sz, err := elem.size(v.Index(i))
			if err != nil {
				return 0, err
			}
			total += sz
		}

		return total, nil
	}
}

type mapEntry struct {
	key, val reflect.Value
}

func (c *compiler) mapProc(p *proc, s *schema.Schema) {
	nullable := s.Nullable
	marker := markerSize(nullable)
	typ := s.Type
	key, val := c.proc(s.Key), c.proc(s.Elem)
	compareKeys := keyComparator(s.Key)
	p.minSize = 1

	sortedEntries := func(v reflect.Value) []mapEntry {
		entries := make([]mapEntry, 0, v.Len())
		it := v.MapRange()
		for it.Next() {
			entries = append(entries, mapEntry{key: it.Key(), val: it.Value()})
		}
		slices.SortFunc(entries, func(a, b mapEntry) int {
			return compareKeys(a.key, b.key)
		})

		return entries
	}

	p.enc = func(w *encoding.Writer, v reflect.Value) error {
		if nullable {
			if v.IsNil() {
				w.WriteBool(false)
				return nil
			}
			w.WriteBool(true)
		}
		w.WriteUvarint(uint64(v.Len()))
		for _, e := range sortedEntries(v) {
			if err := key.enc(w, e.key); err != nil {
				return err
			}
			if err := val.enc(w, e.val); err != nil {
				return err
			}
		}

		return nil
	}
	p.dec = func(r *encoding.Reader, v reflect.Value) error {
		present, err := readPresence(r, nullable)
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		n, err := readCount(r, key.minSize+val.minSize)
		if err != nil {
			return err
		}

		m := reflect.MakeMapWithSize(typ, n)
		// SetMapIndex copies, so one key and one value are reused for every entry.
		k := reflect.New(typ.Key()).Elem()
		e := reflect.New(typ.Elem()).Elem()
		for range n {
			if err := key.dec(r, k); err != nil {
				return err
			}
			if err := val.dec(r, e); err != nil {
				return err
			}
			m.SetMapIndex(k, e)
		}
		v.Set(m)

		return nil
	}
	p.size = func(v reflect.Value) (int, error) {
		if nullable && v.IsNil() {
			return 1, nil
		}
		n := v.Len()
		total := marker + encoding.UvarintSize(uint64(n))
		if key.fixed >= 0 && val.fixed >= 0 {
			return total + n*(key.fixed+val.fixed), nil
		}
		it := v.MapRange()
		for it.Next() {
			ks, err := key.size(it.Key())
			if err != nil {
				return 0, err
			}
			vs, err := val.size(it.Value())
			if err != nil {
				return 0, err
			}
			total += ks + vs
		}

		return total, nil
	}
}

type fieldProc struct {
	name  string
	index int
	p     *proc
}

func (c *compiler) recordProc(p *proc, s *schema.Schema) {
	fields := make([]fieldProc, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = fieldProc{name: f.Name, index: f.Index, p: c.proc(f.Schema)}
	}
	if p.fixed < 0 {
		// Members still being compiled (recursive types) count as 0.
		p.minSize = 0
		for _, f := range fields {
			p.minSize += f.p.minSize
		}
	}

	p.enc = func(w *encoding.Writer, v reflect.Value) error {
		for _, f := range fields {
			if err := f.p.enc(w, v.Field(f.index)); err != nil {
				return fmt.Errorf("%s: %w", f.name, err)
			}
		}

		return nil
	}
	p.dec = func(r *encoding.Reader, v reflect.Value) error {
		for _, f := range fields {
			if err := f.p.dec(r, v.Field(f.index)); err != nil {
				return fmt.Errorf("%s: %w", f.name, err)
			}
		}

		return nil
	}
	p.size = func(v reflect.Value) (int, error) {
		total := 0
		for _, f := range fields {
			if f.p.fixed >= 0 {
				total += f.p.fixed
				continue
			}
			n, err := f.p.size(v.Field(f.index))
			if err != nil {
				return 0, fmt.Errorf("%s: %w", f.name, err)
			}
			total += n
		}

		return total, nil
	}
}
