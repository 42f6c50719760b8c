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

// Package newick implements the rooted tree model of spec C3: optional
// branch lengths and labels, parse/serialize, MRCA, re-rooting and cloning.
// Node carries a type-parameterized Info slot in place of the source's
// void* clientData, per the Design Notes: ordinary Go ownership rules
// replace caller-managed lifetime tracking.
package newick

import "math"

// Unset is the branch-length sentinel ("+∞ meaning unset" in spec §3).
const Unset = math.MaxFloat64

// Node is a rooted-tree node. Info is an arbitrary payload the tree itself
// never frees (it has no destructor slot); NJ/guided-NJ/reconciliation hang
// a phylogeny.Info value off of it (see the phylogeny package).
type Node[Info any] struct {
	Label        string
	BranchLength float64 // Unset if not given
	Info         Info

	parent   *Node[Info]
	children []*Node[Info]
}

// NewNode returns a childless, parentless, unset-branch-length node.
func NewNode[Info any](label string) *Node[Info] {
	return &Node[Info]{Label: label, BranchLength: Unset}
}

// HasBranchLength reports whether BranchLength was explicitly set.
func (n *Node[Info]) HasBranchLength() bool { return n.BranchLength != Unset }

// Parent returns the node's parent, or nil at the root.
func (n *Node[Info]) Parent() *Node[Info] { return n.parent }

// Children returns the node's children in order. Callers must not mutate
// the returned slice; use SetChild/SetParent to restructure.
func (n *Node[Info]) Children() []*Node[Info] { return n.children }

// NumChildren returns len(Children()).
func (n *Node[Info]) NumChildren() int { return len(n.children) }

// IsLeaf reports whether n has no children.
func (n *Node[Info]) IsLeaf() bool { return len(n.children) == 0 }

// FindChild returns the first child with the exact label, or nil.
func (n *Node[Info]) FindChild(label string) *Node[Info] {
	for _, c := range n.children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// SetParent detaches child from any previous parent, then appends it as
// parent's last child. parent == nil just detaches child.
func SetParent[Info any](child, parent *Node[Info]) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = parent
	if parent != nil {
		parent.children = append(parent.children, child)
	}
}

func (n *Node[Info]) removeChild(child *Node[Info]) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// SetChild replaces (or extends) parent's child list at index i with
// child, detaching child from any previous parent first. i == len(children)
// appends.
func SetChild[Info any](parent *Node[Info], i int, child *Node[Info]) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = parent
	if i == len(parent.children) {
		parent.children = append(parent.children, child)
		return
	}
	if parent.children[i] != nil {
		parent.children[i].parent = nil
	}
	parent.children[i] = child
}

// GetRoot walks parent pointers to the root of n's tree.
func (n *Node[Info]) GetRoot() *Node[Info] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// GetNumNodes counts nodes in the subtree rooted at n, n included.
func (n *Node[Info]) GetNumNodes() int {
	count := 1
	for _, c := range n.children {
		count += c.GetNumNodes()
	}
	return count
}

// GetMRCA returns the deepest common ancestor of a and b, or nil if they do
// not share a root (spec §9's open question: cross-tree MRCA fails
// gracefully by returning nil rather than panicking).
func GetMRCA[Info any](a, b *Node[Info]) *Node[Info] {
	if a.GetRoot() != b.GetRoot() {
		return nil
	}
	ancestors := make(map[*Node[Info]]int)
	depth := 0
	for n := a; n != nil; n = n.parent {
		ancestors[n] = depth
		depth++
	}
	for n := b; n != nil; n = n.parent {
		if _, ok := ancestors[n]; ok {
			return n
		}
	}
	return nil // unreachable given the shared-root check above
}

// CloneNode returns a copy of n alone (no parent, no children), preserving
// Label, BranchLength and Info.
func (n *Node[Info]) CloneNode() *Node[Info] {
	return &Node[Info]{Label: n.Label, BranchLength: n.BranchLength, Info: n.Info}
}

// CloneSubtree returns a deep structural copy of the subtree rooted at n;
// the clone has no parent even if n did.
func (n *Node[Info]) CloneSubtree() *Node[Info] {
	out := n.CloneNode()
	for _, c := range n.children {
		SetParent(c.CloneSubtree(), out)
	}
	return out
}

// Equals reports structural equality: same labels, branch lengths (bitwise,
// so two Unset nodes compare equal) and children in order.
func (n *Node[Info]) Equals(o *Node[Info]) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Label != o.Label || n.BranchLength != o.BranchLength {
		return false
	}
	if len(n.children) != len(o.children) {
		return false
	}
	for i, c := range n.children {
		if !c.Equals(o.children[i]) {
			return false
		}
	}
	return true
}

// SortChildren recursively sorts every node's children in the subtree
// rooted at n according to cmp.
func (n *Node[Info]) SortChildren(cmp func(a, b *Node[Info]) int) {
	sortNodesStable(n.children, cmp)
	for _, c := range n.children {
		c.SortChildren(cmp)
	}
}

func sortNodesStable[Info any](nodes []*Node[Info], cmp func(a, b *Node[Info]) int) {
	for i := 1; i < len(nodes); i++ {
		j := i
		for j > 0 && cmp(nodes[j-1], nodes[j]) > 0 {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
			j--
		}
	}
}

// ReRoot returns a new tree whose root sits on the branch directly above
// node, at distanceAboveNode from node. The new root has two children: a
// clone of node's subtree at branch length distanceAboveNode, and a clone
// of the rest of the original tree (rooted where node used to attach) at
// branch length (original node branch length - distanceAboveNode). If the
// original root would be left with a single child, it is spliced out and
// the two branches that met at it are joined into one. Neither input tree
// is mutated.
func ReRoot[Info any](node *Node[Info], distanceAboveNode float64) *Node[Info] {
	below := node.CloneSubtree()
	below.BranchLength = distanceAboveNode

	above := rerootAbove(node, node.parent, distanceAboveNode)
	below.parent = nil
	above.parent = nil

	newRoot := NewNode[Info]("")
	SetParent(below, newRoot)
	SetParent(above, newRoot)
	return newRoot
}

// rerootAbove reconstructs, as a fresh subtree hanging below a synthetic
// root, everything that sits on the "other side" of the node/parent edge
// being split: parent's other children, plus parent's own path back to the
// original root (that path is re-hung through parent by recursing upward).
func rerootAbove[Info any](originalChild, parent *Node[Info], distanceAboveOriginalChild float64) *Node[Info] {
	out := parent.CloneNode()
	out.BranchLength = Unset
	for _, sibling := range parent.children {
		if sibling == originalChild {
			continue
		}
		SetParent(sibling.CloneSubtree(), out)
	}
	if parent.parent != nil {
		grand := rerootAbove(parent, parent.parent, 0)
		SetParent(grand, out)
	}
	if originalChild.HasBranchLength() {
		out.BranchLength = originalChild.BranchLength - distanceAboveOriginalChild
	}
	if parent.parent == nil && len(out.children) == 1 {
		only := out.children[0]
		SetParent[Info](only, nil)
		if only.HasBranchLength() && out.HasBranchLength() {
			only.BranchLength += out.BranchLength
		}
		return only
	}
	return out
}
