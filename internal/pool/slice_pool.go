package pool

import "sync"

// SlicePool recycles slices of T used as per-call scratch space.
//
// A slice obtained from Get belongs to the caller until the returned release
// function runs; it must not be retained afterwards.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty SlicePool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return new([]T) },
		},
	}
}

// Get returns a slice of exactly size elements and its release function.
// The contents of the slice are unspecified.
//
//	values, release := pool.GetInt64Slice(count)
//	defer release()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	if cap(*ptr) < size {
		*ptr = make([]T, size)
	} else {
		*ptr = (*ptr)[:size]
	}

	return *ptr, func() { p.pool.Put(ptr) }
}

var int64SlicePool = NewSlicePool[int64]()

// GetInt64Slice returns a pooled int64 scratch slice of the given size.
func GetInt64Slice(size int) ([]int64, func()) {
	return int64SlicePool.Get(size)
}
