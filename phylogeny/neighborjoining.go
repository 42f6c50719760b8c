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
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// NeighborJoining builds a tree over the k leaves of a symmetric distance
// matrix (only the strict lower triangle is read) via the standard
// Saitou-Nei Q-criterion, tie-breaking on the lower (i, j) pair. The result
// is rooted halfway along the longest branch to one of outgroups if any are
// given, otherwise halfway along the globally longest branch.
func NeighborJoining[S any](dist *matrix.Matrix, outgroups []int) (*Node[S], error) {
	k := dist.N
	if dist.N != dist.M {
		return nil, sonerr.Newf(sonerr.KindMatrixShapeMismatch, "neighborJoining: distance matrix must be square, got (%d,%d)", dist.N, dist.M)
	}
	if k < 3 {
		return nil, sonerr.Newf(sonerr.KindOutOfRange, "neighborJoining: need at least 3 leaves, got %d", k)
	}

	d := make([][]float64, k)
	for i := range d {
		d[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			if i != j {
				d[i][j] = symmetricCell(dist, i, j)
			}
		}
	}

	active := make([]*Node[S], k)
	for i := 0; i < k; i++ {
		active[i] = newLeaf[S](i, k)
	}
	liveIdx := make([]int, k) // liveIdx[slot] gives the original d-row/col this active[slot] occupies
	for i := range liveIdx {
		liveIdx[i] = i
	}

	for len(active) > 2 {
		n := len(active)
		sum := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					sum[i] += d[liveIdx[i]][liveIdx[j]]
				}
			}
		}

		bestI, bestJ := -1, -1
		bestQ := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				q := float64(n-2)*d[liveIdx[i]][liveIdx[j]] - sum[i] - sum[j]
				if bestI == -1 || q < bestQ {
					bestQ, bestI, bestJ = q, i, j
				}
			}
		}

		dij := d[liveIdx[bestI]][liveIdx[bestJ]]
		delta := (sum[bestI] - sum[bestJ]) / float64(n-2)
		li := 0.5 * (dij + delta)
		lj := dij - li
		if li < 0 {
			li, lj = 0, dij
		} else if lj < 0 {
			li, lj = dij, 0
		}

		left, right := active[bestI], active[bestJ]
		left.BranchLength = li
		right.BranchLength = lj
		merged := newInternal[S](left, right)

		newRow := make([]float64, k)
		for m := 0; m < k; m++ {
			newRow[m] = (d[liveIdx[bestI]][m] + d[liveIdx[bestJ]][m] - dij) / 2
		}
		mergedSlot := liveIdx[bestI]
		d[mergedSlot] = newRow
		for m := 0; m < k; m++ {
			d[m][mergedSlot] = newRow[m]
		}

		nextActive := make([]*Node[S], 0, n-1)
		nextLive := make([]int, 0, n-1)
		for i := 0; i < n; i++ {
			if i == bestI || i == bestJ {
				continue
			}
			nextActive = append(nextActive, active[i])
			nextLive = append(nextLive, liveIdx[i])
		}
		nextActive = append(nextActive, merged)
		nextLive = append(nextLive, mergedSlot)
		active, liveIdx = nextActive, nextLive
	}

	left, right := active[0], active[1]
	dij := d[liveIdx[0]][liveIdx[1]]
	left.BranchLength = dij / 2
	right.BranchLength = dij / 2
	root := newInternal[S](left, right)

	return rootAtLongestBranch(root, outgroups), nil
}

func symmetricCell(m *matrix.Matrix, i, j int) float64 {
	if i > j {
		return m.Get(i, j)
	}
	return m.Get(j, i)
}

// rootAtLongestBranch finds, among outgroup leaves if any are given
// (otherwise among every node), the one with the longest pendant branch,
// and re-roots the tree halfway along it.
func rootAtLongestBranch[S any](root *Node[S], outgroups []int) *Node[S] {
	var best *Node[S]
	bestLen := -1.0

	consider := func(n *Node[S]) {
		if n == root || !n.HasBranchLength() {
			return
		}
		if n.BranchLength > bestLen {
			bestLen = n.BranchLength
			best = n
		}
	}

	if len(outgroups) > 0 {
		wanted := make(map[int]bool, len(outgroups))
		for _, o := range outgroups {
			wanted[o] = true
		}
		walkLeaves(root, func(n *Node[S]) {
			if wanted[n.Info.MatrixIndex] {
				consider(n)
			}
		})
	} else {
		walkAll(root, consider)
	}

	if best == nil {
		return root
	}
	reRooted := newick.ReRoot(best, best.BranchLength/2)
	recomputeLeavesBelow[S](reRooted)
	return reRooted
}

func walkAll[S any](n *Node[S], f func(*Node[S])) {
	f(n)
	for _, c := range n.Children() {
		walkAll(c, f)
	}
}

func walkLeaves[S any](n *Node[S], f func(*Node[S])) {
	if n.IsLeaf() {
		f(n)
		return
	}
	for _, c := range n.Children() {
		walkLeaves(c, f)
	}
}
