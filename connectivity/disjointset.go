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

package connectivity

import (
	"github.com/benedictpaten/sonlib-go/container"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// dsNode is one object's record in the disjoint-set companion of spec
// §4.6: a parent pointer and rank for find/union, plus next/prev links
// threading every member of a component into a circular list so the
// component can be iterated without walking the union-find tree itself.
type dsNode struct {
	id     int64
	parent *dsNode
	rank   int
	next   *dsNode
	prev   *dsNode
}

// DisjointSet is the classical link-by-rank, path-compressed union-find
// structure spec §4.6 pairs with the Euler-tour forest.
type DisjointSet struct {
	nodes map[int64]*dsNode
}

// NewDisjointSet returns an empty disjoint-set structure.
func NewDisjointSet() *DisjointSet {
	return &DisjointSet{nodes: make(map[int64]*dsNode)}
}

// MakeSet adds id as a new singleton component.
func (d *DisjointSet) MakeSet(id int64) error {
	if _, exists := d.nodes[id]; exists {
		return sonerr.Newf(sonerr.KindDuplicateKey, "disjointset: %d already exists", id)
	}
	n := &dsNode{id: id}
	n.parent = n
	n.next, n.prev = n, n
	d.nodes[id] = n
	return nil
}

func (d *DisjointSet) findNode(id int64) (*dsNode, error) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, sonerr.Newf(sonerr.KindGeneral, "disjointset: no such element %d", id)
	}
	// Collect the path to the root, then repoint every node on it
	// directly at the root (path compression).
	var path []*dsNode
	for n.parent != n {
		path = append(path, n)
		n = n.parent
	}
	root := n
	for _, p := range path {
		p.parent = root
	}
	return root, nil
}

// Find returns the representative id of id's component.
func (d *DisjointSet) Find(id int64) (int64, error) {
	root, err := d.findNode(id)
	if err != nil {
		return 0, err
	}
	return root.id, nil
}

// Union merges the components containing a and b, linking the
// lower-rank root under the higher-rank root and splicing their sibling
// lists together.
func (d *DisjointSet) Union(a, b int64) error {
	ra, err := d.findNode(a)
	if err != nil {
		return err
	}
	rb, err := d.findNode(b)
	if err != nil {
		return err
	}
	if ra == rb {
		return nil
	}
	if ra.rank < rb.rank {
		ra, rb = rb, ra
	}
	rb.parent = ra
	if ra.rank == rb.rank {
		ra.rank++
	}

	// Splice the two circular sibling lists into one.
	aNext, bNext := ra.next, rb.next
	ra.next, bNext.prev = bNext, ra
	rb.next, aNext.prev = aNext, rb
	return nil
}

// ComponentMembers returns every element sharing id's component, as a hash
// set — the "iterator walks component roots... yields the set of its
// members as a hash set" primitive of spec §4.6.
func (d *DisjointSet) ComponentMembers(id int64) (*container.HashSet[int64], error) {
	start, ok := d.nodes[id]
	if !ok {
		return nil, sonerr.Newf(sonerr.KindGeneral, "disjointset: no such element %d", id)
	}
	out := container.NewHashSet[int64](identityHash, identityEq, nil)
	cur := start
	for {
		out.Insert(cur.id)
		cur = cur.next
		if cur == start {
			break
		}
	}
	return out, nil
}

// Roots returns the representative id of every current component, in
// unspecified order — the "iterator walks component roots" half of spec
// §4.6's disjoint-set iterator.
func (d *DisjointSet) Roots() []int64 {
	var roots []int64
	for id, n := range d.nodes {
		if n.parent == n {
			roots = append(roots, id)
		}
	}
	return roots
}
