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
	"github.com/benedictpaten/sonlib-go/matrix"
	"github.com/benedictpaten/sonlib-go/newick"
)

// SpeciesIndex assigns every node of a species tree a dense [0,numNodes)
// index, breadth-first from the root. It's the indirection guided
// neighbor-joining and its join-cost matrix are keyed by.
func SpeciesIndex[S any](speciesTree *newick.Node[S]) map[*newick.Node[S]]int {
	index := make(map[*newick.Node[S]]int)
	queue := []*newick.Node[S]{speciesTree}
	next := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		index[n] = next
		next++
		queue = append(queue, n.Children()...)
	}
	return index
}

// skips counts the ancestors of descendant strictly between it and ancestor
// that have more than one child (nodes with exactly one child don't
// represent a lineage split and so can't correspond to a loss).
func skips[S any](descendant, ancestor *newick.Node[S]) int {
	if descendant == ancestor {
		return 0
	}
	count := 0
	for n := descendant.Parent(); n != ancestor; n = n.Parent() {
		if n.NumChildren() > 1 {
			count++
		}
	}
	return count
}

// ComputeJoinCosts builds the join-cost matrix guided neighbor-joining uses
// to bias joins toward a reconciliation with few duplications and losses
// against speciesTree. For species nodes i, j with MRCA m: if either i or j
// is m itself (one is an ancestor of the other, or they're equal), one
// duplication cost is added; costPerLoss is added per skipped node on each
// side, plus one more if the pair is ancestor/descendant but not equal.
func ComputeJoinCosts[S any](speciesTree *newick.Node[S], costPerDup, costPerLoss float64) (*matrix.Matrix, map[*newick.Node[S]]int) {
	index := SpeciesIndex(speciesTree)
	byIndex := make([]*newick.Node[S], len(index))
	for n, i := range index {
		byIndex[i] = n
	}

	n := len(index)
	costs := matrix.New(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			si, sj := byIndex[i], byIndex[j]
			m := newick.GetMRCA(si, sj)
			isDup := si == m || sj == m
			cost := 0.0
			if isDup {
				cost += costPerDup
			}
			numLosses := skips(si, m) + skips(sj, m)
			if isDup && si != sj {
				numLosses++
			}
			cost += costPerLoss * float64(numLosses)
			costs.Set(i, j, cost)
		}
	}
	return costs, index
}

// MRCAMatrix precomputes, for every pair of species-tree indices (as
// assigned by index), the index of their MRCA — guided neighbor-joining
// consults this on every join instead of re-walking the species tree.
func MRCAMatrix[S any](speciesTree *newick.Node[S], index map[*newick.Node[S]]int) [][]int {
	n := len(index)
	byIndex := make([]*newick.Node[S], n)
	for node, i := range index {
		byIndex[i] = node
	}
	out := make([][]int, n)
	for i := range out {
		out[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			mrca := newick.GetMRCA(byIndex[i], byIndex[j])
			out[i][j] = index[mrca]
			out[j][i] = out[i][j]
		}
	}
	return out
}
