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

// IntTuple is an immutable fixed-length tuple of int64s (spec §3/§4.1).
// Order is part of identity: hashing and comparison are not commutative
// over positions.
type IntTuple struct {
	vals []int64
}

// NewIntTuple copies vs into a new tuple of length len(vs).
func NewIntTuple(vs ...int64) *IntTuple {
	cp := make([]int64, len(vs))
	copy(cp, vs)
	return &IntTuple{vals: cp}
}

// Length returns the tuple's arity.
func (t *IntTuple) Length() int { return len(t.vals) }

// Get returns the value at position i.
func (t *IntTuple) Get(i int) int64 { return t.vals[i] }

// Cmp lexicographically compares t to o position by position; a shorter
// prefix is less than any proper extension of equal positions.
func (t *IntTuple) Cmp(o *IntTuple) int {
	n := t.Length()
	if o.Length() < n {
		n = o.Length()
	}
	for i := 0; i < n; i++ {
		if t.vals[i] < o.vals[i] {
			return -1
		}
		if t.vals[i] > o.vals[i] {
			return 1
		}
	}
	switch {
	case t.Length() < o.Length():
		return -1
	case t.Length() > o.Length():
		return 1
	default:
		return 0
	}
}

// Hash combines position and value so that permuting a tuple's entries
// changes its hash, matching the "order is part of identity" invariant.
func (t *IntTuple) Hash() uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	for i, v := range t.vals {
		h ^= uint64(i)*0x9E3779B97F4A7C15 + uint64(v)
		h *= 1099511628211 // FNV prime
	}
	return h
}

// Equals reports structural equality.
func (t *IntTuple) Equals(o *IntTuple) bool {
	if t.Length() != o.Length() {
		return false
	}
	for i, v := range t.vals {
		if v != o.vals[i] {
			return false
		}
	}
	return true
}

// DoubleTuple is the float64 analogue of IntTuple.
type DoubleTuple struct {
	vals []float64
}

// NewDoubleTuple copies vs into a new tuple.
func NewDoubleTuple(vs ...float64) *DoubleTuple {
	cp := make([]float64, len(vs))
	copy(cp, vs)
	return &DoubleTuple{vals: cp}
}

// Length returns the tuple's arity.
func (t *DoubleTuple) Length() int { return len(t.vals) }

// Get returns the value at position i.
func (t *DoubleTuple) Get(i int) float64 { return t.vals[i] }

// Cmp lexicographically compares t to o, shorter-prefix-is-less.
func (t *DoubleTuple) Cmp(o *DoubleTuple) int {
	n := t.Length()
	if o.Length() < n {
		n = o.Length()
	}
	for i := 0; i < n; i++ {
		if t.vals[i] < o.vals[i] {
			return -1
		}
		if t.vals[i] > o.vals[i] {
			return 1
		}
	}
	switch {
	case t.Length() < o.Length():
		return -1
	case t.Length() > o.Length():
		return 1
	default:
		return 0
	}
}

// Hash combines position and value, see IntTuple.Hash.
func (t *DoubleTuple) Hash() uint64 {
	var h uint64 = 1469598103934665603
	for i, v := range t.vals {
		bits := int64(v * 1e9)
		h ^= uint64(i)*0x9E3779B97F4A7C15 + uint64(bits)
		h *= 1099511628211
	}
	return h
}

// Equals reports structural equality.
func (t *DoubleTuple) Equals(o *DoubleTuple) bool {
	if t.Length() != o.Length() {
		return false
	}
	for i, v := range t.vals {
		if v != o.vals[i] {
			return false
		}
	}
	return true
}

// IntTupleCmp is a ready-made comparator for use with OrderedSet/Sequence.Sort.
func IntTupleCmp(a, b *IntTuple) int { return a.Cmp(b) }

// IntTupleHash and IntTupleEq adapt IntTuple to HashMap/HashSet.
func IntTupleHash(t *IntTuple) uint64 { return t.Hash() }
func IntTupleEq(a, b *IntTuple) bool  { return a.Equals(b) }
