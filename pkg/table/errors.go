package table

import (
	"errors"

	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

var (
	// ErrKeyNotFound is returned by mutations on a key that is invalid, was
	// removed, or was issued by another table.
	ErrKeyNotFound = errors.New("key not found")

	// ErrBackendFailure wraps storage failures.
	ErrBackendFailure = errors.New("backend failure")
)

// Re-exported so callers can match every table error with one import.
var (
	ErrInvalidQuery    = query.ErrInvalidQuery
	ErrWrongType       = value.ErrWrongType
	ErrSchemaMismatch  = record.ErrSchemaMismatch
	ErrFieldNotMatched = record.ErrFieldNotMatched
)
