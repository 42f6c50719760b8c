// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

package container

import (
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// HashSet is built on HashMap (spec §4.1): a set keyed by hash/eq, adding
// peek and full set algebra. Set-algebra results inherit the hash/eq of the
// first argument and carry no destructors, matching spec.
type HashSet[T any] struct {
	m       *HashMap[T, struct{}]
	hash    HashFunc[T]
	eq      EqualFunc[T]
	hashTag uintptr
	eqTag   uintptr
}

// NewHashSet builds an empty set using hash/eq for membership, optionally
// owning its elements via dtor.
func NewHashSet[T any](hash HashFunc[T], eq EqualFunc[T], dtor Destructor[T]) *HashSet[T] {
	return &HashSet[T]{
		m:       NewHashMap[T, struct{}](hash, eq, dtor, nil),
		hash:    hash,
		eq:      eq,
		hashTag: funcAddr(hash),
		eqTag:   funcAddr(eq),
	}
}

// Insert adds v. If an equal element is already present, v replaces it and
// the displaced element is freed through the set's destructor, if any.
func (s *HashSet[T]) Insert(v T) { s.m.Insert(v, struct{}{}) }

// InsertAll adds every element of o.
func (s *HashSet[T]) InsertAll(o *HashSet[T]) {
	it := o.m.Keys()
	for {
		v, ok := it.Next()
		if !ok {
			return
		}
		s.Insert(v)
	}
}

// Remove deletes v, returning whether it was present.
func (s *HashSet[T]) Remove(v T) bool {
	_, ok := s.m.Remove(v)
	return ok
}

// RemoveAll deletes every element of o that is present in s.
func (s *HashSet[T]) RemoveAll(o *HashSet[T]) {
	it := o.m.Keys()
	for {
		v, ok := it.Next()
		if !ok {
			return
		}
		s.Remove(v)
	}
}

// Contains reports membership.
func (s *HashSet[T]) Contains(v T) bool { return s.m.Contains(v) }

// Size returns the number of elements.
func (s *HashSet[T]) Size() int { return s.m.Size() }

// Destroy frees every owned element.
func (s *HashSet[T]) Destroy() { s.m.Destroy() }

// Peek returns an arbitrary element. Fails with SET_EMPTY if the set has no
// elements, per spec §4.1.
func (s *HashSet[T]) Peek() (T, error) {
	it := s.m.Keys()
	v, ok := it.Next()
	if !ok {
		var zero T
		return zero, sonerr.New(sonerr.KindSetEmpty, "Peek: set is empty")
	}
	return v, nil
}

// Iterator walks the set's elements.
func (s *HashSet[T]) Iterator() *KeyIterator[T, struct{}] { return s.m.Keys() }

func (s *HashSet[T]) sameFuncs(o *HashSet[T]) bool {
	return s.hashTag == o.hashTag && s.eqTag == o.eqTag
}

// GetUnion returns a new set of every element in s or o. Fails with
// SET_ALGEBRA_MISMATCH if hash/eq differ.
func (s *HashSet[T]) GetUnion(o *HashSet[T]) (*HashSet[T], error) {
	if !s.sameFuncs(o) {
		return nil, sonerr.New(sonerr.KindSetAlgebraMismatch, "GetUnion: hash/eq mismatch")
	}
	out := NewHashSet[T](s.hash, s.eq, nil)
	out.InsertAll(s)
	out.InsertAll(o)
	return out, nil
}

// GetIntersection returns a new set of elements present in both s and o.
func (s *HashSet[T]) GetIntersection(o *HashSet[T]) (*HashSet[T], error) {
	if !s.sameFuncs(o) {
		return nil, sonerr.New(sonerr.KindSetAlgebraMismatch, "GetIntersection: hash/eq mismatch")
	}
	out := NewHashSet[T](s.hash, s.eq, nil)
	it := s.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if o.Contains(v) {
			out.Insert(v)
		}
	}
	return out, nil
}

// GetDifference returns a new set of elements of s not present in o.
func (s *HashSet[T]) GetDifference(o *HashSet[T]) (*HashSet[T], error) {
	if !s.sameFuncs(o) {
		return nil, sonerr.New(sonerr.KindSetAlgebraMismatch, "GetDifference: hash/eq mismatch")
	}
	out := NewHashSet[T](s.hash, s.eq, nil)
	it := s.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if !o.Contains(v) {
			out.Insert(v)
		}
	}
	return out, nil
}

// Equals reports whether s and o hold the same elements. Fails with
// SET_ALGEBRA_MISMATCH if hash/eq differ.
func (s *HashSet[T]) Equals(o *HashSet[T]) (bool, error) {
	if !s.sameFuncs(o) {
		return false, sonerr.New(sonerr.KindSetAlgebraMismatch, "Equals: hash/eq mismatch")
	}
	if s.Size() != o.Size() {
		return false, nil
	}
	it := s.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if !o.Contains(v) {
			return false, nil
		}
	}
	return true, nil
}

// IsSubset reports whether every element of s is in o.
func (s *HashSet[T]) IsSubset(o *HashSet[T]) (bool, error) {
	if !s.sameFuncs(o) {
		return false, sonerr.New(sonerr.KindSetAlgebraMismatch, "IsSubset: hash/eq mismatch")
	}
	it := s.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if !o.Contains(v) {
			return false, nil
		}
	}
	return true, nil
}
