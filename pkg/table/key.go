package table

import (
	"fmt"
	"strconv"

	"github.com/segmentio/ksuid"
)

// Key addresses one entry in the table that issued it. The zero Key is
// invalid.
type Key[E any] struct {
	owner ksuid.KSUID
	id    uint64
	valid bool
}

// Valid reports whether the key was issued for a stored entry. Inserts that
// fail return an invalid key.
func (k Key[E]) Valid() bool { return k.valid }

// ID returns the table-local sequence id; zero for an invalid key.
func (k Key[E]) ID() uint64 {
	if !k.valid {
		return 0
	}
	return k.id
}

func (k Key[E]) String() string {
	if !k.valid {
		return "invalid"
	}
	return strconv.FormatUint(k.id, 10)
}

// Issuer mints and resolves the keys of one table instance.
type Issuer[E any] struct {
	owner ksuid.KSUID
}

// NewIssuer returns an issuer with a fresh instance identity.
func NewIssuer[E any]() Issuer[E] {
	return Issuer[E]{owner: ksuid.New()}
}

// Identity returns the instance identity stamped into every issued key.
func (i Issuer[E]) Identity() ksuid.KSUID { return i.owner }

// Issue returns the valid key for sequence id.
func (i Issuer[E]) Issue(id uint64) Key[E] {
	return Key[E]{owner: i.owner, id: id, valid: true}
}

// Invalid returns a key that never resolves.
func (i Issuer[E]) Invalid() Key[E] {
	return Key[E]{owner: i.owner}
}

// Resolve returns the sequence id of k if k is valid and was issued here.
func (i Issuer[E]) Resolve(k Key[E]) (uint64, bool) {
	if !k.valid || k.owner != i.owner {
		return 0, false
	}
	return k.id, true
}

// Parse rebinds the textual form of a key to this issuer. Whether the
// entry exists is left to the table.
func (i Issuer[E]) Parse(text string) (Key[E], error) {
	id, err := strconv.ParseUint(text, 10, 64)
	if err != nil || id == 0 {
		return Key[E]{}, fmt.Errorf("%w: malformed key %q", ErrKeyNotFound, text)
	}
	return i.Issue(id), nil
}
