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

import "github.com/benedictpaten/sonlib-go/newick"

// matchFunc decides whether partitionToScore's support should be
// incremented given the deepest bootstrap candidate with a leaf set that is
// a superset of (or equal to) its own.
type matchFunc[S any] func(partitionToScore, originalPartition, bootstrap *Node[S]) bool

func exactPartitionMatch[S any](partitionToScore, _, bootstrap *Node[S]) bool {
	return partitionToScore.Info.LeavesBelow.Equals(bootstrap.Info.LeavesBelow)
}

// reconciliationPartitionMatch additionally requires the parents' event and
// species to agree; two roots are considered a match.
func reconciliationPartitionMatch[S any](partitionToScore, originalPartition, bootstrap *Node[S]) bool {
	if !exactPartitionMatch(partitionToScore, originalPartition, bootstrap) {
		return false
	}
	partitionParent := originalPartition.Parent()
	bootstrapParent := bootstrap.Parent()
	if partitionParent == nil && bootstrapParent == nil {
		return true
	}
	if partitionParent == nil || bootstrapParent == nil {
		return false
	}
	pr := partitionParent.Info.Reconciliation
	br := bootstrapParent.Info.Reconciliation
	if pr == nil || br == nil {
		return false
	}
	return pr.Event == br.Event && pr.Species == br.Species
}

// descendToCandidate walks down bootstrap to the deepest node whose
// leaves-below set is still a superset of partition's, then applies match.
func descendToCandidate[S any](partitionToScore, originalPartition, bootstrap *Node[S], match matchFunc[S]) bool {
	for _, child := range bootstrap.Children() {
		if partitionToScore.Info.LeavesBelow.IsSubset(child.Info.LeavesBelow) {
			return descendToCandidate(partitionToScore, originalPartition, child, match)
		}
	}
	return match(partitionToScore, originalPartition, bootstrap)
}

func scoreAgainst[S any](tree, original *Node[S], bootstraps []*Node[S], match matchFunc[S]) *Node[S] {
	scored := tree.CloneNode()
	for i, child := range tree.Children() {
		newick.SetParent(scoreAgainst(child, original.Children()[i], bootstraps, match), scored)
	}
	for _, b := range bootstraps {
		if descendToCandidate(scored, original, b, match) {
			scored.Info.NumBootstraps++
		}
	}
	if len(bootstraps) > 0 {
		scored.Info.BootstrapSupport = float64(scored.Info.NumBootstraps) / float64(len(bootstraps))
	}
	return scored
}

// ScoreFromBootstraps returns a clone of tree with NumBootstraps and
// BootstrapSupport filled in: for each bootstrap tree, every partition of
// tree is compared against the deepest node of the bootstrap whose
// leaves-below set is a superset of its own, and the count is incremented
// on an exact bitmap match. The root always gets full support since every
// bootstrap necessarily has the same total leaf set as its root.
func ScoreFromBootstraps[S any](tree *Node[S], bootstraps []*Node[S]) *Node[S] {
	return scoreAgainst(tree, tree, bootstraps, exactPartitionMatch[S])
}

// ScoreReconciliationFromBootstraps is ScoreFromBootstraps but additionally
// requires the parent's reconciliation event and species to match; its
// scores are always <= the plain bootstrap score.
func ScoreReconciliationFromBootstraps[S any](tree *Node[S], bootstraps []*Node[S]) *Node[S] {
	return scoreAgainst(tree, tree, bootstraps, reconciliationPartitionMatch[S])
}
