package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage is an associative structure for storing (string, string) pairs. It acts as a map but
// uses linear search instead, which proves to be more efficient on relatively low amount of
// entries, which often enough is the case. Keys are compared case-insensitively, however the
// casing a key was first seen with is the one reported back.
type Storage struct {
	pairs []Pair
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// Add adds a new pair of key and value. If the key is already presented, the value is stored
// under its first-seen casing.
func (s *Storage) Add(key, value string) *Storage {
	if k, found := s.key(key); found {
		key = k
	}

	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Set replaces all the values of the key by the passed ones. The replacement takes the place
// of the first existing pair and inherits its casing; new keys are appended.
func (s *Storage) Set(key string, values ...string) *Storage {
	first := s.index(key)
	if first == -1 {
		for _, value := range values {
			s.pairs = append(s.pairs, Pair{key, value})
		}

		return s
	}

	key = s.pairs[first].Key
	pairs := make([]Pair, 0, len(s.pairs)+len(values))
	pairs = append(pairs, s.pairs[:first]...)
	for _, value := range values {
		pairs = append(pairs, Pair{key, value})
	}

	for _, pair := range s.pairs[first:] {
		if !strcomp.EqualFold(pair.Key, key) {
			pairs = append(pairs, pair)
		}
	}

	s.pairs = pairs
	return s
}

// Delete removes every pair with the matching key.
func (s *Storage) Delete(key string) *Storage {
	n := 0
	for _, pair := range s.pairs {
		if !strcomp.EqualFold(pair.Key, key) {
			s.pairs[n] = pair
			n++
		}
	}

	clear(s.pairs[n:])
	s.pairs = s.pairs[:n]
	return s
}

// Values returns all values by the key in their insertion order. Returns nil if key
// doesn't exist. The returned slice is always a fresh copy.
func (s *Storage) Values(key string) (values []string) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			values = append(values, pair.Value)
		}
	}

	return values
}

// Keys returns an iterator over unique keys in order of their first appearance.
func (s *Storage) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make([]string, 0, len(s.pairs))

		for _, pair := range s.pairs {
			if contains(seen, pair.Key) {
				continue
			}

			seen = append(seen, pair.Key)
			if !yield(pair.Key) {
				break
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	return s.index(key) != -1
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

// Clone creates a deep copy, which may be used later or stored somewhere safely. However,
// it comes at cost of an allocation.
func (s *Storage) Clone() *Storage {
	return &Storage{
		pairs: clone(s.pairs),
	}
}

func (s *Storage) index(key string) int {
	for i, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return i
		}
	}

	return -1
}

func (s *Storage) key(key string) (string, bool) {
	if i := s.index(key); i != -1 {
		return s.pairs[i].Key, true
	}

	return "", false
}

func contains(collection []string, key string) bool {
	for _, element := range collection {
		if strcomp.EqualFold(element, key) {
			return true
		}
	}

	return false
}

func clone[T any](source []T) []T {
	if len(source) == 0 {
		return nil
	}

	newSlice := make([]T, len(source))
	copy(newSlice, source)

	return newSlice
}
