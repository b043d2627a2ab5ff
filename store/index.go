package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	"github.com/stssoft/persist/column"
	"github.com/stssoft/persist/index"
)

// IndexColumn extracts one numeric column of an index snapshot from every row.
type IndexColumn[K, V any] struct {
	name    string
	collect func() (add func(K, V), flush func(*column.Encoder) error)
}

func newIndexColumn[K, V, N any](name string, fn func(K, V) N, add func(*column.Encoder, string, []N) error) IndexColumn[K, V] {
	return IndexColumn[K, V]{
		name: name,
		collect: func() (func(K, V), func(*column.Encoder) error) {
			var values []N
			return func(k K, v V) { values = append(values, fn(k, v)) },
				func(enc *column.Encoder) error { return add(enc, name, values) }
		},
	}
}

// Int64Column extracts an int64 column.
func Int64Column[K, V any](name string, fn func(K, V) int64) IndexColumn[K, V] {
	return newIndexColumn(name, fn, (*column.Encoder).AddInt64)
}

// Float64Column extracts a float64 column.
func Float64Column[K, V any](name string, fn func(K, V) float64) IndexColumn[K, V] {
	return newIndexColumn(name, fn, (*column.Encoder).AddFloat64)
}

// Float32Column extracts a float32 column.
func Float32Column[K, V any](name string, fn func(K, V) float32) IndexColumn[K, V] {
	return newIndexColumn(name, fn, (*column.Encoder).AddFloat32)
}

// DecimalColumn extracts a decimal column.
func DecimalColumn[K, V any](name string, fn func(K, V) decimal.Decimal) IndexColumn[K, V] {
	return newIndexColumn(name, fn, (*column.Encoder).AddDecimal)
}

// IntegerColumn extracts an integer column of any width.
func IntegerColumn[K, V any, T index.Integer](name string, fn func(K, V) T) IndexColumn[K, V] {
	return newIndexColumn(name, fn, column.AddIntegers[T])
}

// BuildIndex snapshots cols over every row into the index name, replacing any
// previous snapshot of that name, and returns the decoded block.
//
// Rows are read and the snapshot is written in one transaction.
func (t *Table[K, V]) BuildIndex(name string, cols ...IndexColumn[K, V]) (*column.Block, error) {
	if err := validName("index", name); err != nil {
		return nil, err
	}

	var data []byte
	err := t.db.bdb.Update(func(btx *bbolt.Tx) error {
		adds := make([]func(K, V), len(cols))
		flushes := make([]func(*column.Encoder) error, len(cols))
		for i, c := range cols {
			adds[i], flushes[i] = c.collect()
		}

		err := t.scan(btx, func(k K, v V) bool {
			for _, add := range adds {
				add(k, v)
			}
			return true
		})
		if err != nil {
			return err
		}

		enc, err := column.NewEncoder(
			column.WithCompression(t.db.cfg.compression),
			column.WithLogger(t.db.cfg.logger),
		)
		if err != nil {
			return err
		}
		for _, flush := range flushes {
			if err := flush(enc); err != nil {
				return err
			}
		}
		if data, err = enc.Finish(); err != nil {
			return err
		}

		return t.indexes(btx).Put([]byte(name), data)
	})
	t.db.cfg.logger.LogStore(context.Background(), "build index "+t.name+"/"+name, t.db.path, err)
	if err != nil {
		return nil, fmt.Errorf("table %q index %q: %w", t.name, name, err)
	}

	return column.Decode(data, column.WithLogger(t.db.cfg.logger))
}

// LoadIndex reads the index snapshot name, or fails with errs.ErrNotFound.
func (t *Table[K, V]) LoadIndex(name string) (*column.Block, error) {
	return t.db.LoadIndex(t.name, name)
}

// DropIndex deletes the index snapshot name.
func (t *Table[K, V]) DropIndex(name string) error {
	return t.db.DropIndex(t.name, name)
}

// Indexes lists the index snapshot names of the table in byte order.
func (t *Table[K, V]) Indexes() ([]string, error) {
	var names []string
	err := t.db.bdb.View(func(btx *bbolt.Tx) error {
		return t.indexes(btx).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})

	return names, err
}
