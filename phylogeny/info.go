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

// Package phylogeny is the distance-based phylogenetic inference core of
// spec C7: neighbor-joining, species-guided neighbor-joining, bootstrap
// partition scoring and at-most-binary gene/species reconciliation. It is
// built on the generic tree of package newick and the dense matrix of
// package matrix.
package phylogeny

import (
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/benedictpaten/sonlib-go/newick"
)

// Event tags how a gene-tree node reconciles against the species tree.
type Event int

const (
	EventLeaf Event = iota
	EventDuplication
	EventSpeciation
)

func (e Event) String() string {
	switch e {
	case EventLeaf:
		return "LEAF"
	case EventDuplication:
		return "DUPLICATION"
	case EventSpeciation:
		return "SPECIATION"
	default:
		return "UNKNOWN"
	}
}

// Reconciliation points a gene-tree node at the species-tree node (of
// species-payload type S) it reconciles to, and the event that produced it.
type Reconciliation[S any] struct {
	Species *newick.Node[S]
	Event   Event
}

// Info is the clientData payload spec §3 attaches to every node of a
// phylogeny tree: an indexing record (matrix index, leaves-below bitmap,
// bootstrap counters) plus an optional reconciliation record.
type Info[S any] struct {
	// MatrixIndex is >= 0 at a leaf (its column/row in the input matrix),
	// -1 at internal nodes.
	MatrixIndex int
	// LeavesBelow is the bitmap of matrix indices reachable below this
	// node; nil until indexing has been computed.
	LeavesBelow *roaring.Bitmap

	NumBootstraps    int
	BootstrapSupport float64

	Reconciliation *Reconciliation[S]
}

// Node is a gene (or scored/reconciled) tree node.
type Node[S any] = newick.Node[Info[S]]

func newLeaf[S any](index int, totalLeaves int) *Node[S] {
	bm := roaring.New()
	bm.Add(uint32(index))
	n := newick.NewNode[Info[S]](strconv.Itoa(index))
	n.Info = Info[S]{MatrixIndex: index, LeavesBelow: bm}
	return n
}

func newInternal[S any](left, right *Node[S]) *Node[S] {
	n := newick.NewNode[Info[S]]("")
	n.Info = Info[S]{MatrixIndex: -1, LeavesBelow: roaring.Or(left.Info.LeavesBelow, right.Info.LeavesBelow)}
	newick.SetParent(left, n)
	newick.SetParent(right, n)
	return n
}

// recomputeLeavesBelow recomputes MatrixIndex/LeavesBelow bottom-up for
// every node in the subtree rooted at n. Needed after ReRoot, whose cloned
// "other side" nodes keep their pre-rerooting Info even though the set of
// leaves below them changed with the new topology.
func recomputeLeavesBelow[S any](n *Node[S]) *roaring.Bitmap {
	if n.IsLeaf() {
		if n.Info.LeavesBelow == nil {
			bm := roaring.New()
			bm.Add(uint32(n.Info.MatrixIndex))
			n.Info.LeavesBelow = bm
		}
		return n.Info.LeavesBelow
	}
	n.Info.MatrixIndex = -1
	bm := roaring.New()
	for _, c := range n.Children() {
		bm = roaring.Or(bm, recomputeLeavesBelow(c))
	}
	n.Info.LeavesBelow = bm
	return bm
}
