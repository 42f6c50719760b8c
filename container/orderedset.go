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
	"reflect"

	"github.com/google/btree"

	"github.com/benedictpaten/sonlib-go/sonerr"
)

// btreeDegree is the branching factor handed to google/btree; the source's
// sonLibSortedSet is a red-black tree, but a B-tree gives the same ordered
// API with better cache locality and is what this module's teacher already
// depends on for its own ordered indices.
const btreeDegree = 32

// OrderedSet is the balanced-tree-backed set of spec §4.1, keyed by an
// arbitrary comparator.
type OrderedSet[T any] struct {
	t       *btree.BTreeG[T]
	cmp     func(a, b T) int
	cmpAddr uintptr
}

// NewOrderedSet builds an empty set ordered by cmp.
func NewOrderedSet[T any](cmp func(a, b T) int) *OrderedSet[T] {
	less := func(a, b T) bool { return cmp(a, b) < 0 }
	return &OrderedSet[T]{
		t:       btree.NewG[T](btreeDegree, less),
		cmp:     cmp,
		cmpAddr: funcAddr(cmp),
	}
}

func funcAddr(f any) uintptr {
	return reflect.ValueOf(f).Pointer()
}

// Insert adds v, replacing any element the comparator treats as equal.
func (s *OrderedSet[T]) Insert(v T) {
	s.t.ReplaceOrInsert(v)
}

// Remove deletes the element the comparator treats as equal to v and
// returns it, without invoking any destructor — destruction-through-remove
// is the caller's responsibility, per spec §4.1.
func (s *OrderedSet[T]) Remove(v T) (T, bool) {
	return s.t.Delete(v)
}

// Search returns the element equal to v under the comparator, or the zero
// value and false (the "miss sentinel").
func (s *OrderedSet[T]) Search(v T) (T, bool) {
	return s.t.Get(v)
}

// Length returns the number of elements.
func (s *OrderedSet[T]) Length() int { return s.t.Len() }

// First returns the smallest element, or the zero value and false if empty.
func (s *OrderedSet[T]) First() (T, bool) { return s.t.Min() }

// Last returns the largest element, or the zero value and false if empty.
func (s *OrderedSet[T]) Last() (T, bool) { return s.t.Max() }

// SearchLessThan returns the nearest element strictly less than v.
func (s *OrderedSet[T]) SearchLessThan(v T) (T, bool) {
	var found T
	ok := false
	s.t.DescendLessOrEqual(v, func(item T) bool {
		if s.cmp(item, v) < 0 {
			found, ok = item, true
			return false
		}
		return true
	})
	return found, ok
}

// SearchLessThanOrEqual returns the nearest element <= v.
func (s *OrderedSet[T]) SearchLessThanOrEqual(v T) (T, bool) {
	var found T
	ok := false
	s.t.DescendLessOrEqual(v, func(item T) bool {
		found, ok = item, true
		return false
	})
	return found, ok
}

// SearchGreaterThan returns the nearest element strictly greater than v.
func (s *OrderedSet[T]) SearchGreaterThan(v T) (T, bool) {
	var found T
	ok := false
	s.t.AscendGreaterOrEqual(v, func(item T) bool {
		if s.cmp(item, v) > 0 {
			found, ok = item, true
			return false
		}
		return true
	})
	return found, ok
}

// SearchGreaterThanOrEqual returns the nearest element >= v.
func (s *OrderedSet[T]) SearchGreaterThanOrEqual(v T) (T, bool) {
	var found T
	ok := false
	s.t.AscendGreaterOrEqual(v, func(item T) bool {
		found, ok = item, true
		return false
	})
	return found, ok
}

// ForwardIterator walks the set in ascending order.
func (s *OrderedSet[T]) ForwardIterator() *SetIterator[T] {
	items := s.collect(true)
	return &SetIterator[T]{items: items}
}

// BackwardIterator walks the set in descending order.
func (s *OrderedSet[T]) BackwardIterator() *SetIterator[T] {
	items := s.collect(false)
	return &SetIterator[T]{items: items}
}

// ForwardIteratorFrom walks ascending starting at element v. Fails with
// SORTED_SET_ITER_FROM_MISSING if v is not present, per spec §4.1.
func (s *OrderedSet[T]) ForwardIteratorFrom(v T) (*SetIterator[T], error) {
	if _, ok := s.t.Get(v); !ok {
		return nil, sonerr.New(sonerr.KindSortedSetIterMiss, "ForwardIteratorFrom: element not present")
	}
	var items []T
	s.t.AscendGreaterOrEqual(v, func(item T) bool {
		items = append(items, item)
		return true
	})
	return &SetIterator[T]{items: items}, nil
}

func (s *OrderedSet[T]) collect(ascending bool) []T {
	items := make([]T, 0, s.t.Len())
	visit := func(item T) bool {
		items = append(items, item)
		return true
	}
	if ascending {
		s.t.Ascend(visit)
	} else {
		s.t.Descend(visit)
	}
	return items
}

// SetIterator is a cursor over a snapshot of an OrderedSet's contents taken
// at iterator-construction time (mutating the set mid-iteration does not
// retroactively change an already-built iterator, which keeps iteration
// semantics simple and matches the source's "walk the underlying BST"
// behavior for any traversal that doesn't itself mutate the tree).
type SetIterator[T any] struct {
	items []T
	pos   int
}

// Next returns the next element and true, or the zero value and false when
// exhausted.
func (it *SetIterator[T]) Next() (T, bool) {
	var zero T
	if it.pos >= len(it.items) {
		return zero, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}

// Copy returns an independent cursor at the same position.
func (it *SetIterator[T]) Copy() *SetIterator[T] {
	return &SetIterator[T]{items: it.items, pos: it.pos}
}

func (s *OrderedSet[T]) sameComparator(o *OrderedSet[T]) bool {
	return s.cmpAddr == o.cmpAddr
}

// Union returns a new set holding every element of s and o. Fails with
// SET_ALGEBRA_MISMATCH unless both sets share the same comparator function.
func (s *OrderedSet[T]) Union(o *OrderedSet[T]) (*OrderedSet[T], error) {
	if !s.sameComparator(o) {
		return nil, sonerr.New(sonerr.KindSetAlgebraMismatch, "Union: comparator mismatch")
	}
	out := NewOrderedSet[T](s.cmp)
	s.t.Ascend(func(item T) bool { out.Insert(item); return true })
	o.t.Ascend(func(item T) bool { out.Insert(item); return true })
	return out, nil
}

// Intersection returns a new set holding elements present in both s and o.
func (s *OrderedSet[T]) Intersection(o *OrderedSet[T]) (*OrderedSet[T], error) {
	if !s.sameComparator(o) {
		return nil, sonerr.New(sonerr.KindSetAlgebraMismatch, "Intersection: comparator mismatch")
	}
	out := NewOrderedSet[T](s.cmp)
	s.t.Ascend(func(item T) bool {
		if _, ok := o.t.Get(item); ok {
			out.Insert(item)
		}
		return true
	})
	return out, nil
}

// Difference returns a new set holding elements of s not present in o.
func (s *OrderedSet[T]) Difference(o *OrderedSet[T]) (*OrderedSet[T], error) {
	if !s.sameComparator(o) {
		return nil, sonerr.New(sonerr.KindSetAlgebraMismatch, "Difference: comparator mismatch")
	}
	out := NewOrderedSet[T](s.cmp)
	s.t.Ascend(func(item T) bool {
		if _, ok := o.t.Get(item); !ok {
			out.Insert(item)
		}
		return true
	})
	return out, nil
}
