package encoding

import (
	"fmt"

	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/internal/pool"
)

// DeltaStats accumulates what a delta block needs to know about a sequence
// before it is written: its length, first value and the spread of deltas.
//
// Callers that already walk the values (for quantization, say) feed them to
// Add and hand the stats to CompressWithStats, saving a second pass.
type DeltaStats struct {
	count    int
	first    int64
	prev     int64
	minDelta int64
	maxDelta int64
}

// Add appends v to the tracked sequence.
func (s *DeltaStats) Add(v int64) {
	switch s.count {
	case 0:
		s.first = v
	case 1:
		d := v - s.prev
		s.minDelta, s.maxDelta = d, d
	default:
		d := v - s.prev
		if d < s.minDelta {
			s.minDelta = d
		}
		if d > s.maxDelta {
			s.maxDelta = d
		}
	}
	s.prev = v
	s.count++
}

// Reset clears the stats for reuse.
func (s *DeltaStats) Reset() {
	*s = DeltaStats{}
}

// Count returns the number of values added.
func (s *DeltaStats) Count() int {
	return s.count
}

// MinDelta returns the smallest delta seen; zero for fewer than two values.
func (s *DeltaStats) MinDelta() int64 {
	return s.minDelta
}

// Width returns the bit width of each packed delta.
//
// It is 0 when there is at most one delta value to distinguish.
func (s *DeltaStats) Width() int {
	if s.count < 2 || s.maxDelta == s.minDelta {
		return 0
	}

	return Bits(uint64(s.maxDelta - s.minDelta)) //nolint:gosec
}

// Size returns the exact number of bytes the block will occupy.
func (s *DeltaStats) Size() int {
	n := UvarintSize(uint64(s.count)) //nolint:gosec
	if s.count == 0 {
		return n
	}
	n += VarintSize(s.first)
	if s.count == 1 {
		return n
	}

	return n + VarintSize(s.minDelta) + 1 + packedLen(s.count-1, s.Width())
}

func packedLen(n, width int) int {
	return (n*width + 7) / 8
}

// DeltaSize returns the number of bytes Compress writes for values.
func DeltaSize(values []int64) int {
	var s DeltaStats
	for _, v := range values {
		s.Add(v)
	}

	return s.Size()
}

// Compress writes values as a delta block.
func Compress(w *Writer, values []int64) error {
	var s DeltaStats
	for _, v := range values {
		s.Add(v)
	}

	return CompressWithStats(w, values, &s)
}

// CompressWithStats writes values as a delta block using stats gathered by
// the caller. The stats must describe exactly values; a count mismatch is
// reported as errs.ErrInvalidArgument and nothing is written.
func CompressWithStats(w *Writer, values []int64, stats *DeltaStats) error {
	if stats.Count() != len(values) {
		return fmt.Errorf("%w: delta stats cover %d values, got %d", errs.ErrInvalidArgument, stats.Count(), len(values))
	}

	w.WriteUvarint(uint64(len(values)))
	if len(values) == 0 {
		return w.Err()
	}
	w.WriteVarint(values[0])
	if len(values) == 1 {
		return w.Err()
	}

	width := stats.Width()
	w.WriteVarint(stats.minDelta)
	w.WriteUint8(uint8(width)) //nolint:gosec
	if width == 0 {
		return w.Err()
	}

	bb := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(bb)

	bb.Grow(packedLen(len(values)-1, width))
	p := bitPacker{dst: bb.B}
	prev := values[0]
	for _, v := range values[1:] {
		p.write(uint64(v-prev-stats.minDelta), width) //nolint:gosec
		prev = v
	}
	bb.B = p.flush()
	w.WriteBytes(bb.B)

	return w.Err()
}

// Decompress reads a delta block holding exactly count values and hands each
// one to emit in order.
//
// A block holding a different number of values is a caller error and fails
// with errs.ErrInvalidArgument before emit is called.
func Decompress(r *Reader, count int, emit func(i int, v int64)) error {
	n, err := r.ReadCount(0)
	if err != nil {
		return err
	}
	if n != count {
		return fmt.Errorf("%w: delta block holds %d values, %d requested", errs.ErrInvalidArgument, n, count)
	}

	return decompressBody(r, n, emit)
}

// DecompressAll reads a delta block of any length into a new slice.
func DecompressAll(r *Reader) ([]int64, error) {
	n, err := r.ReadCount(0)
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	err = decompressBody(r, n, func(i int, v int64) { out[i] = v })
	if err != nil {
		return nil, err
	}

	return out, nil
}

func decompressBody(r *Reader, n int, emit func(i int, v int64)) error {
	if n == 0 {
		return nil
	}
	first, err := r.ReadVarint()
	if err != nil {
		return err
	}
	if n == 1 {
		emit(0, first)
		return nil
	}

	minDelta, err := r.ReadVarint()
	if err != nil {
		return err
	}
	widthOff := r.Offset()
	w, err := r.ReadUint8()
	if err != nil {
		return err
	}
	width := int(w)
	if width > 64 {
		return errs.DataErrf(widthOff, errs.ErrCorruptData, "delta width %d", width)
	}

	if width == 0 {
		prev := first
		emit(0, prev)
		for i := 1; i < n; i++ {
			prev += minDelta
			emit(i, prev)
		}

		return nil
	}

	packed, err := r.view(packedLen(n-1, width), "packed deltas")
	if err != nil {
		return err
	}
	// view may alias the Reader scratch for short streamed blocks.
	if !r.inMem {
		packed = append([]byte(nil), packed...)
	}

	u := bitUnpacker{src: packed}
	prev := first
	emit(0, prev)
	for i := 1; i < n; i++ {
		prev += minDelta + int64(u.read(width)) //nolint:gosec
		emit(i, prev)
	}

	return nil
}

// bitPacker appends values of arbitrary width, least significant bit first.
// acc holds fewer than 8 pending bits between writes.
type bitPacker struct {
	dst []byte
	acc uint64
	n   uint
}

func (p *bitPacker) write(v uint64, width int) {
	w := uint(width)
	for w > 0 {
		k := min(w, 32)
		p.acc |= (v & (1<<k - 1)) << p.n
		p.n += k
		v >>= k
		w -= k
		for p.n >= 8 {
			p.dst = append(p.dst, byte(p.acc))
			p.acc >>= 8
			p.n -= 8
		}
	}
}

func (p *bitPacker) flush() []byte {
	if p.n > 0 {
		p.dst = append(p.dst, byte(p.acc))
		p.acc, p.n = 0, 0
	}

	return p.dst
}

type bitUnpacker struct {
	src []byte
	pos int
	acc uint64
	n   uint
}

func (u *bitUnpacker) read(width int) uint64 {
	var v uint64
	var shift uint
	w := uint(width)
	for w > 0 {
		k := min(w, 32)
		for u.n < k {
			u.acc |= uint64(u.src[u.pos]) << u.n
			u.pos++
			u.n += 8
		}
		v |= (u.acc & (1<<k - 1)) << shift
		u.acc >>= k
		u.n -= k
		shift += k
		w -= k
	}

	return v
}
