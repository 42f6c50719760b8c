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

package phylogeny

import (
	"github.com/benedictpaten/sonlib-go/newick"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// ReconcileAtMostBinary reconciles every node of geneTree against the
// species nodes named in leafToSpecies, filling in Info.Reconciliation
// post-order. Internal nodes must have exactly 0 or 2 children; a leaf
// missing from leafToSpecies, or an internal node with the wrong arity, is
// an error. geneTree is not rerooted.
func ReconcileAtMostBinary[S any](geneTree *Node[S], leafToSpecies map[*Node[S]]*newick.Node[S]) error {
	_, err := reconcileAtMostBinaryR(geneTree, leafToSpecies)
	return err
}

func reconcileAtMostBinaryR[S any](gene *Node[S], leafToSpecies map[*Node[S]]*newick.Node[S]) (*newick.Node[S], error) {
	if gene.IsLeaf() {
		species, ok := leafToSpecies[gene]
		if !ok {
			return nil, sonerr.Newf(sonerr.KindPhyloUnmappedLeaf, "reconcileAtMostBinary: leaf %q has no species mapping", gene.Label)
		}
		gene.Info.Reconciliation = &Reconciliation[S]{Species: species, Event: EventLeaf}
		return species, nil
	}
	if gene.NumChildren() != 2 {
		return nil, sonerr.Newf(sonerr.KindPhyloNotBinary, "reconcileAtMostBinary: node %q has %d children, want 0 or 2", gene.Label, gene.NumChildren())
	}
	leftSpecies, err := reconcileAtMostBinaryR(gene.Children()[0], leafToSpecies)
	if err != nil {
		return nil, err
	}
	rightSpecies, err := reconcileAtMostBinaryR(gene.Children()[1], leafToSpecies)
	if err != nil {
		return nil, err
	}
	species := newick.GetMRCA(leftSpecies, rightSpecies)
	event := EventSpeciation
	if leftSpecies == species || rightSpecies == species {
		event = EventDuplication
	}
	gene.Info.Reconciliation = &Reconciliation[S]{Species: species, Event: event}
	return species, nil
}

// ReconciliationCostAtMostBinary counts the duplications and losses implied
// by tree's reconciliation, as filled in by ReconcileAtMostBinary. A node's
// children contribute a loss for every ancestor skipped between their
// species and this node's species (nodes with a single child don't
// represent a lineage split and aren't counted), plus one more if this node
// is a duplication whose children reconcile to different species.
func ReconciliationCostAtMostBinary[S any](tree *Node[S]) (dups, losses int) {
	recon := tree.Info.Reconciliation
	if recon.Event == EventDuplication {
		dups++
	}
	if !tree.IsLeaf() {
		left, right := tree.Children()[0], tree.Children()[1]
		leftSpecies := left.Info.Reconciliation.Species
		rightSpecies := right.Info.Reconciliation.Species
		if leftSpecies.Parent() != recon.Species {
			losses += skips(leftSpecies, recon.Species)
		}
		if rightSpecies.Parent() != recon.Species {
			losses += skips(rightSpecies, recon.Species)
		}
		if leftSpecies != rightSpecies && recon.Event == EventDuplication {
			losses++
		}
	}
	for _, c := range tree.Children() {
		cd, cl := ReconciliationCostAtMostBinary(c)
		dups += cd
		losses += cl
	}
	return dups, losses
}

// RootAndReconcileAtMostBinary tries rerooting geneTree halfway along every
// edge that has a branch length, leaf edges included, except the root's own
// two branches (which together already form the current root's edge), and
// keeps whichever rerooting reconciles against
// leafToSpecies with the fewest duplications. It returns the winning
// rerooted, reconciled tree.
//
// This re-evaluates the full reconciliation at each candidate rather than
// tracking the O(1) per-edge cost delta: ReRoot clones the nodes on the far
// side of the split, so an incremental scheme would need its own bookkeeping
// to follow reconciliation state across those clones. Recomputing from
// scratch at every candidate costs an extra factor of tree size but is easy
// to check against ReconcileAtMostBinary/ReconciliationCostAtMostBinary
// directly.
func RootAndReconcileAtMostBinary[S any](geneTree *Node[S], leafToSpecies map[*Node[S]]*newick.Node[S]) (*Node[S], error) {
	if geneTree.IsLeaf() {
		return geneTree, nil
	}

	labelToSpecies := make(map[string]*newick.Node[S], len(leafToSpecies))
	for leaf, species := range leafToSpecies {
		labelToSpecies[leaf.Label] = species
	}

	mapping, err := mapLeavesByLabel(geneTree, labelToSpecies)
	if err != nil {
		return nil, err
	}
	if err := ReconcileAtMostBinary(geneTree, mapping); err != nil {
		return nil, err
	}
	best := geneTree
	bestDups, _ := ReconciliationCostAtMostBinary(geneTree)

	var candidates []*Node[S]
	for _, child := range geneTree.Children() {
		for _, grandchild := range child.Children() {
			walkAll(grandchild, func(n *Node[S]) {
				if n.HasBranchLength() {
					candidates = append(candidates, n)
				}
			})
		}
	}

	for _, c := range candidates {
		rerooted := newick.ReRoot(c, c.BranchLength/2)
		candidateMapping, err := mapLeavesByLabel(rerooted, labelToSpecies)
		if err != nil {
			return nil, err
		}
		if err := ReconcileAtMostBinary(rerooted, candidateMapping); err != nil {
			return nil, err
		}
		dups, _ := ReconciliationCostAtMostBinary(rerooted)
		if dups < bestDups {
			bestDups, best = dups, rerooted
		}
	}

	return best, nil
}

// mapLeavesByLabel rebuilds a leafToSpecies map keyed by tree's own leaf
// nodes, looking each one up by label in labelToSpecies. Needed because
// ReRoot clones nodes, so a map keyed by the pre-rerooting leaf pointers
// doesn't reach the rerooted tree's leaves.
func mapLeavesByLabel[S any](tree *Node[S], labelToSpecies map[string]*newick.Node[S]) (map[*Node[S]]*newick.Node[S], error) {
	out := make(map[*Node[S]]*newick.Node[S])
	var err error
	walkLeaves(tree, func(n *Node[S]) {
		if err != nil {
			return
		}
		species, ok := labelToSpecies[n.Label]
		if !ok {
			err = sonerr.Newf(sonerr.KindPhyloUnmappedLeaf, "rootAndReconcileAtMostBinary: leaf %q has no species mapping", n.Label)
			return
		}
		out[n] = species
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
