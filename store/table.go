package store

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/errs"
	"github.com/stssoft/persist/object"
	"github.com/stssoft/persist/schema"
)

// Table maps keys of type K to values of type V inside a DB.
// It is safe for concurrent use.
type Table[K, V any] struct {
	db     *DB
	name   string
	bucket []byte
	keys   *object.Codec[K]
	values *object.Codec[V]
}

// OpenTable opens the table name of db, creating its buckets when missing.
// opts configure the value codec.
func OpenTable[K, V any](db *DB, name string, opts ...object.Option) (*Table[K, V], error) {
	if err := validName("table", name); err != nil {
		return nil, err
	}

	keys, err := object.For[K](
		object.WithNullPolicy(schema.None),
		object.WithByteOrder(endian.GetBigEndianEngine()),
	)
	if err != nil {
		return nil, fmt.Errorf("table %q key: %w", name, err)
	}
	values, err := object.For[V](opts...)
	if err != nil {
		return nil, fmt.Errorf("table %q value: %w", name, err)
	}

	t := &Table[K, V]{db: db, name: name, bucket: []byte(name), keys: keys, values: values}
	err = db.bdb.Update(func(btx *bbolt.Tx) error {
		root, err := btx.CreateBucketIfNotExists(t.bucket)
		if err != nil {
			return err
		}
		if _, err := root.CreateBucketIfNotExists(dataBucket); err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(indexBucket)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}

	return t, nil
}

// Name returns the table name.
func (t *Table[K, V]) Name() string {
	return t.name
}

func (t *Table[K, V]) data(btx *bbolt.Tx) *bbolt.Bucket {
	return btx.Bucket(t.bucket).Bucket(dataBucket)
}

func (t *Table[K, V]) indexes(btx *bbolt.Tx) *bbolt.Bucket {
	return btx.Bucket(t.bucket).Bucket(indexBucket)
}

// Put stores value under key, replacing any previous value.
func (t *Table[K, V]) Put(key K, value V) error {
	k, err := t.keys.Marshal(key)
	if err != nil {
		return fmt.Errorf("table %q key: %w", t.name, err)
	}
	v, err := t.values.Marshal(value)
	if err != nil {
		return fmt.Errorf("table %q value: %w", t.name, err)
	}

	return t.db.bdb.Update(func(btx *bbolt.Tx) error {
		return t.data(btx).Put(k, v)
	})
}

// PutAll stores every pair in one transaction. keys and values must have the
// same length.
func (t *Table[K, V]) PutAll(keys []K, values []V) error {
	if len(keys) != len(values) {
		return fmt.Errorf("%w: %d keys, %d values", errs.ErrInvalidArgument, len(keys), len(values))
	}

	type pair struct{ k, v []byte }
	pairs := make([]pair, len(keys))
	for i := range keys {
		k, err := t.keys.Marshal(keys[i])
		if err != nil {
			return fmt.Errorf("table %q key %d: %w", t.name, i, err)
		}
		v, err := t.values.Marshal(values[i])
		if err != nil {
			return fmt.Errorf("table %q value %d: %w", t.name, i, err)
		}
		pairs[i] = pair{k, v}
	}

	return t.db.bdb.Update(func(btx *bbolt.Tx) error {
		b := t.data(btx)
		for _, p := range pairs {
			if err := b.Put(p.k, p.v); err != nil {
				return err
			}
		}

		return nil
	})
}

// Get returns the value stored under key, or errs.ErrNotFound.
func (t *Table[K, V]) Get(key K) (V, error) {
	var out V
	k, err := t.keys.Marshal(key)
	if err != nil {
		return out, fmt.Errorf("table %q key: %w", t.name, err)
	}

	err = t.db.bdb.View(func(btx *bbolt.Tx) error {
		v := t.data(btx).Get(k)
		if v == nil {
			return fmt.Errorf("%w: key %v in table %q", errs.ErrNotFound, key, t.name)
		}
		if err := t.values.Unmarshal(v, &out); err != nil {
			return fmt.Errorf("table %q value: %w", t.name, err)
		}

		return nil
	})

	return out, err
}

// Has reports whether key is present.
func (t *Table[K, V]) Has(key K) (bool, error) {
	k, err := t.keys.Marshal(key)
	if err != nil {
		return false, fmt.Errorf("table %q key: %w", t.name, err)
	}

	var found bool
	err = t.db.bdb.View(func(btx *bbolt.Tx) error {
		found = t.data(btx).Get(k) != nil
		return nil
	})

	return found, err
}

// Delete removes key. Deleting a missing key is not an error.
func (t *Table[K, V]) Delete(key K) error {
	k, err := t.keys.Marshal(key)
	if err != nil {
		return fmt.Errorf("table %q key: %w", t.name, err)
	}

	return t.db.bdb.Update(func(btx *bbolt.Tx) error {
		return t.data(btx).Delete(k)
	})
}

// Len returns the number of rows.
func (t *Table[K, V]) Len() (int, error) {
	var n int
	err := t.db.bdb.View(func(btx *bbolt.Tx) error {
		n = t.data(btx).Stats().KeyN
		return nil
	})

	return n, err
}

// Scan calls fn for every row in encoded key order until fn returns false.
//
// fn runs inside a read transaction and must not write to the DB.
func (t *Table[K, V]) Scan(fn func(key K, value V) bool) error {
	return t.db.bdb.View(func(btx *bbolt.Tx) error {
		return t.scan(btx, fn)
	})
}

func (t *Table[K, V]) scan(btx *bbolt.Tx, fn func(key K, value V) bool) error {
	c := t.data(btx).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var key K
		if err := t.keys.Unmarshal(k, &key); err != nil {
			return fmt.Errorf("table %q key: %w", t.name, err)
		}
		var value V
		if err := t.values.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("table %q value: %w", t.name, err)
		}
		if !fn(key, value) {
			return nil
		}
	}

	return nil
}
