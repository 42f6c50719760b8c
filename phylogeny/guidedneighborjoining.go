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
	"math"

	"github.com/benedictpaten/sonlib-go/matrix"
	"github.com/benedictpaten/sonlib-go/newick"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// GuidedNeighborJoining runs neighbor-joining guided by a precomputed
// species-tree join-cost matrix. similarity is packed as cell (i,j) with
// i<j holding the similarity count between i and j and i>j holding the
// difference count; matrixIndexToJoinCostIndex maps a leaf's row/column in
// similarity to its row/column in joinCosts and speciesMRCAMatrix;
// speciesIndex is the mapping (as produced by SpeciesIndex/ComputeJoinCosts)
// used to attach a Reconciliation to every internal node of the result. The
// returned tree always has exactly 2k-1 nodes with fresh indexing.
func GuidedNeighborJoining[S any](
	similarity *matrix.Matrix,
	joinCosts *matrix.Matrix,
	matrixIndexToJoinCostIndex map[int]int,
	speciesIndex map[*newick.Node[S]]int,
	speciesMRCAMatrix [][]int,
) (*Node[S], error) {
	k := similarity.N
	if similarity.N != similarity.M {
		return nil, sonerr.Newf(sonerr.KindMatrixShapeMismatch, "guidedNeighborJoining: similarity matrix must be square, got (%d,%d)", similarity.N, similarity.M)
	}
	if k < 3 {
		return nil, sonerr.Newf(sonerr.KindOutOfRange, "guidedNeighborJoining: need at least 3 leaves, got %d", k)
	}
	indexToSpecies := make(map[int]*newick.Node[S], len(speciesIndex))
	for n, i := range speciesIndex {
		indexToSpecies[i] = n
	}
	mrca := speciesMRCAMatrix

	recon := make([]int, k)
	for i := 0; i < k; i++ {
		recon[i] = matrixIndexToJoinCostIndex[i]
	}

	distances := make([][]float64, k)
	confidences := make([][]float64, k)
	joinDistances := make([][]float64, k)
	for i := 0; i < k; i++ {
		distances[i] = make([]float64, k)
		confidences[i] = make([]float64, k)
		joinDistances[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			sim := similarity.Get(i, j)
			diff := similarity.Get(j, i)
			count := sim + diff
			confidences[i][j] = count
			if count != 0 {
				distances[i][j] = diff / count
			} else {
				distances[i][j] = math.MaxFloat64
			}
		}
	}

	r := make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			r[i] += packedDistance(distances).get(i, j)
		}
		r[i] /= float64(k - 2)
	}

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if confidences[i][j] != 0 {
				joinDistances[i][j] = joinCosts.Get(recon[i], recon[j]) / confidences[i][j]
			} else {
				joinDistances[i][j] = joinCosts.Get(recon[i], recon[j])
			}
		}
	}

	nodes := make([]*Node[S], k)
	for i := 0; i < k; i++ {
		nodes[i] = newLeaf[S](i, k)
	}

	for joinsLeft := k - 1; joinsLeft > 0; joinsLeft-- {
		mini, minj := -1, -1
		minScore := 0.0
		for i := 0; i < k; i++ {
			if recon[i] == -1 {
				continue
			}
			for j := i + 1; j < k; j++ {
				if recon[j] == -1 {
					continue
				}
				score := distances[i][j] + joinDistances[i][j] - r[i] - r[j]
				if mini == -1 || score < minScore {
					minScore, mini, minj = score, i, j
				}
			}
		}

		dij := distances[mini][minj]
		li := (dij + r[mini] - r[minj]) / 2
		lj := dij - li
		if li < 0 {
			li, lj = 0, dij
		} else if lj < 0 {
			li, lj = dij, 0
		}

		left, right := nodes[mini], nodes[minj]
		left.BranchLength = li
		right.BranchLength = lj
		nodes[mini] = newInternal[S](left, right)
		nodes[minj] = nil

		reconI, reconJ := recon[mini], recon[minj]
		recon[mini] = mrca[reconI][reconJ]
		recon[minj] = -1
		if species, ok := indexToSpecies[recon[mini]]; ok {
			event := EventSpeciation
			if reconI == recon[mini] || reconJ == recon[mini] {
				event = EventDuplication
			}
			nodes[mini].Info.Reconciliation = &Reconciliation[S]{Species: species, Event: event}
		}

		for kk := 0; kk < k; kk++ {
			if kk == mini || recon[kk] == -1 {
				continue
			}
			distMiniK := packedDistance(distances).get(mini, kk)
			distMinjK := packedDistance(distances).get(minj, kk)
			confMiniK := packedDistance(confidences).get(mini, kk)
			confMinjK := packedDistance(confidences).get(minj, kk)
			newConf := (confMiniK + confMinjK) / 2
			newDist := (distMiniK + distMinjK - dij) / 2
			setSymmetric(confidences, mini, kk, newConf)
			setSymmetric(distances, mini, kk, newDist)
			if newConf != 0 {
				setSymmetric(joinDistances, mini, kk, joinCosts.Get(recon[mini], recon[kk])/newConf)
			} else {
				setSymmetric(joinDistances, mini, kk, joinCosts.Get(recon[mini], recon[kk]))
			}
			if joinsLeft > 2 {
				r[kk] = (r[kk]*float64(joinsLeft-1) - distMiniK - distMinjK + newDist) / float64(joinsLeft-2)
			} else {
				r[kk] = 0
			}
		}

		r[mini] = 0
		if joinsLeft > 2 {
			for kk := 0; kk < k; kk++ {
				if recon[kk] == -1 || kk == mini {
					continue
				}
				r[mini] += packedDistance(distances).get(mini, kk)
			}
			r[mini] /= float64(joinsLeft - 2)
		}
	}

	return nodes[0], nil
}

// packedDistance lets the upper-triangle-only distance, confidence and
// join-distance matrices be read with either index first.
type packedDistance [][]float64

func (p packedDistance) get(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return p[i][j]
}

func setSymmetric(m [][]float64, i, j int, v float64) {
	if i > j {
		i, j = j, i
	}
	m[i][j] = v
}
