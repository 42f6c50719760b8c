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

import "github.com/benedictpaten/sonlib-go/sonrand"

// nodeKind distinguishes the two kinds of payload an Euler-tour treap node
// can carry, per spec §4.6: every graph vertex is one treap node, and every
// graph edge owns a forward and a backward half-edge, each its own node.
type nodeKind int

const (
	vertexNode nodeKind = iota
	halfEdgeNode
)

// treapNode is one position in an Euler tour: a randomly-prioritized binary
// search tree node ordered by in-order position (not by an explicit key),
// carrying either a vertex or a half-edge. count is the subtree size,
// maintained as 1 + count(left) + count(right) at all times.
type treapNode struct {
	priority uint64
	count    int
	left     *treapNode
	right    *treapNode
	parent   *treapNode

	kind     nodeKind
	vertexID int64
	edgeID   int64
	forward  bool
}

func count(n *treapNode) int {
	if n == nil {
		return 0
	}
	return n.count
}

func update(n *treapNode) {
	if n == nil {
		return
	}
	n.count = 1 + count(n.left) + count(n.right)
}

func setLeft(p, c *treapNode) {
	p.left = c
	if c != nil {
		c.parent = p
	}
}

func setRight(p, c *treapNode) {
	p.right = c
	if c != nil {
		c.parent = p
	}
}

func treapRoot(n *treapNode) *treapNode {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// rank returns n's 0-based in-order position within its own treap, found
// by walking parent pointers and summing left-subtree sizes — the
// predecessor/successor-via-root-walk primitive spec §3 calls for.
func rank(n *treapNode) int {
	r := count(n.left)
	cur := n
	for cur.parent != nil {
		p := cur.parent
		if p.right == cur {
			r += count(p.left) + 1
		}
		cur = p
	}
	return r
}

// merge concatenates two treaps whose in-order sequences are already
// adjacent (every element of l precedes every element of r), preserving
// heap order on priority. Both arguments (and the result) have parent set
// to nil at the root; merge does not touch l.parent/r.parent beyond that.
func merge(l, r *treapNode) *treapNode {
	if l == nil {
		if r != nil {
			r.parent = nil
		}
		return r
	}
	if r == nil {
		l.parent = nil
		return l
	}
	if l.priority > r.priority {
		setRight(l, merge(l.right, r))
		l.parent = nil
		update(l)
		return l
	}
	setLeft(r, merge(l, r.left))
	r.parent = nil
	update(r)
	return r
}

// split divides the treap rooted at n into (left, right) where left holds
// the first k in-order elements and right holds the rest. Both results
// have parent nil at their root.
func split(n *treapNode, k int) (*treapNode, *treapNode) {
	if n == nil {
		return nil, nil
	}
	leftCount := count(n.left)
	if k <= leftCount {
		l, r := split(n.left, k)
		setLeft(n, r)
		n.parent = nil
		update(n)
		if l != nil {
			l.parent = nil
		}
		return l, n
	}
	l, r := split(n.right, k-leftCount-1)
	setRight(n, l)
	n.parent = nil
	update(n)
	if r != nil {
		r.parent = nil
	}
	return n, r
}

// splitBefore splits n's treap so that n becomes the first element of the
// right-hand result, per spec §4.6's "split-before" cut primitive.
func splitBefore(n *treapNode) (*treapNode, *treapNode) {
	root := treapRoot(n)
	return split(root, rank(n))
}

// makeRoot cyclically rotates n's tour so that n's occurrence becomes the
// first element, implementing the "make-root" step of link, per spec §4.6.
func makeRoot(n *treapNode) *treapNode {
	root := treapRoot(n)
	before, after := split(root, rank(n))
	return merge(after, before)
}

func newVertexTreapNode(rng *sonrand.Source, vertexID int64) *treapNode {
	return &treapNode{priority: rng.Uint64(), count: 1, kind: vertexNode, vertexID: vertexID}
}

func newHalfEdgeTreapNode(rng *sonrand.Source, edgeID int64, forward bool) *treapNode {
	return &treapNode{priority: rng.Uint64(), count: 1, kind: halfEdgeNode, edgeID: edgeID, forward: forward}
}

// walk calls visit on every node of the subtree rooted at n, in-order.
func walk(n *treapNode, visit func(*treapNode)) {
	if n == nil {
		return
	}
	walk(n.left, visit)
	visit(n)
	walk(n.right, visit)
}

// checkInvariants verifies, for the subtree rooted at n, that count is
// correct at every node and that priority obeys max-heap order — the two
// invariants spec §4.6 names explicitly.
func checkInvariants(n *treapNode) bool {
	if n == nil {
		return true
	}
	if n.count != 1+count(n.left)+count(n.right) {
		return false
	}
	if n.left != nil && (n.left.priority > n.priority || n.left.parent != n) {
		return false
	}
	if n.right != nil && (n.right.priority > n.priority || n.right.parent != n) {
		return false
	}
	return checkInvariants(n.left) && checkInvariants(n.right)
}
