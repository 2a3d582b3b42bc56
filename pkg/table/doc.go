// Package table defines the generic record-table contract.
//
// A [Table] stores entries of one type E, each addressed by an opaque
// [Key] the table issues on insert. Keys are never reused and are bound to
// the table instance that issued them: a key from another table never
// resolves.
//
// Three implementations live in sub-packages:
//
//	memtable  in-process, append ordered
//	kvtable   persistent, on a pebble LSM store
//	sqltable  relational, through a relational.Backend
//
// All of them validate queries with [Prepare] and return the same rows in
// the same order for the same sequence of operations.
package table
