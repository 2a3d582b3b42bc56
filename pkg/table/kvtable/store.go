package kvtable

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Store is a pebble database shared by the tables opened on it.
type Store struct {
	db *pebble.DB
}

// OpenStore opens (creating if needed) the pebble database at path.
func OpenStore(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// read returns a copy of the value at key. ok is false when key is absent.
func (s *Store) read(key []byte) (data []byte, ok bool, err error) {
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	return append([]byte(nil), v...), true, nil
}

func (s *Store) has(key []byte) (bool, error) {
	_, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (s *Store) scan(lower, upper []byte, fn func(key, data []byte) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			_ = iter.Close()
			return err
		}
	}
	return iter.Close()
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
