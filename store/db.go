package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.etcd.io/bbolt"

	"github.com/stssoft/persist/column"
	"github.com/stssoft/persist/errs"
)

var (
	dataBucket  = []byte("data")
	indexBucket = []byte("index")
)

// DB is an open store. It is safe for concurrent use.
type DB struct {
	bdb  *bbolt.DB
	path string
	cfg  *config
}

// TableInfo summarizes one table of a DB.
type TableInfo struct {
	Name    string
	Rows    int
	Indexes []string
}

// Open opens or creates the database file at path.
func Open(path string, opts ...Option) (*DB, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	bdb, err := bbolt.Open(path, 0o666, cfg.bolt)
	cfg.logger.LogStore(context.Background(), "open", path, err)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	return &DB{bdb: bdb, path: path, cfg: cfg}, nil
}

// Close releases the database file.
func (db *DB) Close() error {
	err := db.bdb.Close()
	db.cfg.logger.LogStore(context.Background(), "close", db.path, err)
	if err != nil {
		return fmt.Errorf("store: closing: %w", err)
	}

	return nil
}

// Path returns the file path the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Bolt returns the underlying database.
func (db *DB) Bolt() *bbolt.DB {
	return db.bdb
}

// Tables lists the tables of the database in name order.
func (db *DB) Tables() ([]TableInfo, error) {
	var out []TableInfo
	err := db.bdb.View(func(btx *bbolt.Tx) error {
		return btx.ForEach(func(name []byte, root *bbolt.Bucket) error {
			data := root.Bucket(dataBucket)
			if data == nil {
				return nil
			}
			info := TableInfo{Name: string(name), Rows: data.Stats().KeyN}
			if idx := root.Bucket(indexBucket); idx != nil {
				_ = idx.ForEach(func(k, _ []byte) error {
					info.Indexes = append(info.Indexes, string(k))
					return nil
				})
			}
			out = append(out, info)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b TableInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return out, nil
}

// LoadIndex reads the index snapshot name of table without knowing the
// table's key and value types.
func (db *DB) LoadIndex(table, name string) (*column.Block, error) {
	var data []byte
	err := db.bdb.View(func(btx *bbolt.Tx) error {
		root := btx.Bucket([]byte(table))
		if root == nil {
			return fmt.Errorf("%w: table %q", errs.ErrNotFound, table)
		}
		idx := root.Bucket(indexBucket)
		var v []byte
		if idx != nil {
			v = idx.Get([]byte(name))
		}
		if v == nil {
			return fmt.Errorf("%w: index %q of table %q", errs.ErrNotFound, name, table)
		}
		data = slices.Clone(v)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return column.Decode(data, column.WithLogger(db.cfg.logger))
}

// DropIndex deletes the index snapshot name of table. Dropping a missing
// index is not an error.
func (db *DB) DropIndex(table, name string) error {
	return db.bdb.Update(func(btx *bbolt.Tx) error {
		root := btx.Bucket([]byte(table))
		if root == nil {
			return nil
		}
		idx := root.Bucket(indexBucket)
		if idx == nil {
			return nil
		}

		return idx.Delete([]byte(name))
	})
}

func validName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", errs.ErrInvalidArgument, kind)
	}

	return nil
}
