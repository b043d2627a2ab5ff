// Package store keeps persist-encoded records in an embedded bbolt database.
//
// A DB holds any number of tables. Each table is a top-level bucket with two
// nested buckets: "data" maps encoded keys to encoded values, and "index"
// holds column block snapshots built from the rows.
//
//	db, err := store.Open("quotes.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	quotes, err := store.OpenTable[string, Quote](db, "quotes")
//	if err != nil {
//	    return err
//	}
//	err = quotes.Put("ACME", Quote{Bid: 10.25, Ask: 10.5})
//
// Values are encoded with the object codec of V. Keys are encoded with the
// object codec of K under schema.None and big-endian byte order, so a key
// type must not contain pointers and Scan visits non-negative fixed-width
// integer keys in ascending order.
//
// # Index snapshots
//
// BuildIndex walks every row once and stores the extracted columns as a
// column block; LoadIndex reads it back. A snapshot is not maintained by Put
// or Delete; rebuild it when the rows change. The i-th value of every column
// belongs to the i-th row in key order at build time.
package store
