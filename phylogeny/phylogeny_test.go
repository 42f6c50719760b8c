// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package phylogeny_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/matrix"
	"github.com/benedictpaten/sonlib-go/newick"
	"github.com/benedictpaten/sonlib-go/phylogeny"
)

type noSpecies struct{}

func leavesOf(n *phylogeny.Node[noSpecies]) []string {
	if n.IsLeaf() {
		return []string{n.Label}
	}
	var out []string
	for _, c := range n.Children() {
		out = append(out, leavesOf(c)...)
	}
	return out
}

// symmetricDistance builds a 4-leaf matrix with a clean (a,b),(c,d) split:
// a-b and c-d are close, everything across the split is far.
func symmetricDistance() *matrix.Matrix {
	m := matrix.New(4, 4)
	d := [4][4]float64{
		{0, 0, 0, 0},
		{2, 0, 0, 0},
		{11, 11, 0, 0},
		{11, 11, 2, 0},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m.Set(i, j, d[i][j])
		}
	}
	return m
}

func TestNeighborJoiningTopology(t *testing.T) {
	root, err := phylogeny.NeighborJoining[noSpecies](symmetricDistance(), nil)
	require.NoError(t, err)
	require.Equal(t, 7, root.GetNumNodes())
	require.ElementsMatch(t, []string{"0", "1", "2", "3"}, leavesOf(root))
}

func TestNeighborJoiningRejectsNonSquare(t *testing.T) {
	m := &matrix.Matrix{N: 3, M: 4}
	_, err := phylogeny.NeighborJoining[noSpecies](m, nil)
	require.Error(t, err)
}

func TestNeighborJoiningRejectsTooFewLeaves(t *testing.T) {
	m := matrix.New(2, 2)
	_, err := phylogeny.NeighborJoining[noSpecies](m, nil)
	require.Error(t, err)
}

func TestNeighborJoiningWithOutgroup(t *testing.T) {
	root, err := phylogeny.NeighborJoining[noSpecies](symmetricDistance(), []int{0})
	require.NoError(t, err)
	require.Equal(t, 7, root.GetNumNodes())
}

func buildSpeciesTree(t *testing.T) *newick.Node[noSpecies] {
	t.Helper()
	tree, err := newick.Parse[noSpecies]("((human,chimp)primate,mouse)root;")
	require.NoError(t, err)
	return tree
}

func TestComputeJoinCostsSelfIsOneDuplication(t *testing.T) {
	speciesTree := buildSpeciesTree(t)
	costs, index := phylogeny.ComputeJoinCosts(speciesTree, 1.0, 1.0)
	// A species is its own MRCA, so joining it with itself is one
	// duplication (costPerDup = 1) and no losses.
	for node, i := range index {
		require.Equal(t, 1.0, costs.Get(i, i), node.Label)
	}
}

func TestComputeJoinCostsChargesDuplication(t *testing.T) {
	speciesTree := buildSpeciesTree(t)
	costs, index := phylogeny.ComputeJoinCosts(speciesTree, 1.0, 1.0)
	human := speciesTree.FindChild("primate").FindChild("human")
	primate := speciesTree.FindChild("primate")
	// human is a descendant of primate, so joining them forces a duplication.
	cost := costs.Get(index[human], index[primate])
	require.GreaterOrEqual(t, cost, 1.0)
}

func TestSpeciesIndexIsDense(t *testing.T) {
	speciesTree := buildSpeciesTree(t)
	index := phylogeny.SpeciesIndex(speciesTree)
	require.Equal(t, speciesTree.GetNumNodes(), len(index))
	seen := make(map[int]bool)
	for _, i := range index {
		require.False(t, seen[i], "index %d reused", i)
		seen[i] = true
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, len(index))
	}
}

func TestMRCAMatrixSymmetric(t *testing.T) {
	speciesTree := buildSpeciesTree(t)
	index := phylogeny.SpeciesIndex(speciesTree)
	m := phylogeny.MRCAMatrix(speciesTree, index)
	n := len(index)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.Equal(t, m[i][j], m[j][i])
		}
	}
}

// similarityMatrix packs i<j as the similarity count and i>j as the
// difference count between leaves i and j, as GuidedNeighborJoining expects.
func similarityMatrix(n int, sim, diff func(i, j int) float64) *matrix.Matrix {
	m := matrix.New(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i < j {
				m.Set(i, j, sim(i, j))
			} else if i > j {
				m.Set(i, j, diff(j, i))
			}
		}
	}
	return m
}

func TestGuidedNeighborJoiningProducesFullyResolvedTree(t *testing.T) {
	speciesTree := buildSpeciesTree(t)
	joinCosts, speciesIndex := phylogeny.ComputeJoinCosts(speciesTree, 1.0, 1.0)
	mrca := phylogeny.MRCAMatrix(speciesTree, speciesIndex)

	human := speciesTree.FindChild("primate").FindChild("human")
	chimp := speciesTree.FindChild("primate").FindChild("chimp")
	mouse := speciesTree.FindChild("mouse")

	// Three genes: 0 from human, 1 from chimp, 2 from mouse. 0 and 1 are
	// near-identical; 2 is distant from both.
	sim := similarityMatrix(3, func(i, j int) float64 {
		if i == 0 && j == 1 {
			return 9
		}
		return 1
	}, func(i, j int) float64 {
		if i == 0 && j == 1 {
			return 1
		}
		return 9
	})
	matrixIndexToJoinCostIndex := map[int]int{
		0: speciesIndex[human],
		1: speciesIndex[chimp],
		2: speciesIndex[mouse],
	}

	root, err := phylogeny.GuidedNeighborJoining[noSpecies](sim, joinCosts, matrixIndexToJoinCostIndex, speciesIndex, mrca)
	require.NoError(t, err)
	require.Equal(t, 5, root.GetNumNodes())
	require.ElementsMatch(t, []string{"0", "1", "2"}, leavesOf(root))
}

func TestGuidedNeighborJoiningRejectsTooFewLeaves(t *testing.T) {
	speciesTree := buildSpeciesTree(t)
	joinCosts, speciesIndex := phylogeny.ComputeJoinCosts(speciesTree, 1.0, 1.0)
	mrca := phylogeny.MRCAMatrix(speciesTree, speciesIndex)
	m := matrix.New(2, 2)
	_, err := phylogeny.GuidedNeighborJoining[noSpecies](m, joinCosts, nil, speciesIndex, mrca)
	require.Error(t, err)
}

func TestScoreFromBootstrapsRootAlwaysFull(t *testing.T) {
	tree, err := phylogeny.NeighborJoining[noSpecies](symmetricDistance(), nil)
	require.NoError(t, err)
	b1, err := phylogeny.NeighborJoining[noSpecies](symmetricDistance(), nil)
	require.NoError(t, err)

	scored := phylogeny.ScoreFromBootstraps(tree, []*phylogeny.Node[noSpecies]{b1})
	require.Equal(t, 1.0, scored.Info.BootstrapSupport)
	require.Equal(t, 1, scored.Info.NumBootstraps)
}

func TestScoreFromBootstrapsNoBootstraps(t *testing.T) {
	tree, err := phylogeny.NeighborJoining[noSpecies](symmetricDistance(), nil)
	require.NoError(t, err)
	scored := phylogeny.ScoreFromBootstraps(tree, nil)
	require.Equal(t, 0, scored.Info.NumBootstraps)
	require.Equal(t, 0.0, scored.Info.BootstrapSupport)
}

func buildGeneTree(t *testing.T) (*phylogeny.Node[noSpecies], map[*phylogeny.Node[noSpecies]]*newick.Node[noSpecies]) {
	t.Helper()
	gene, err := newick.Parse[phylogeny.Info[noSpecies]]("((h1,h2)hdup,mm)root;")
	require.NoError(t, err)
	speciesTree := buildSpeciesTree(t)
	human := speciesTree.FindChild("primate").FindChild("human")
	mouse := speciesTree.FindChild("mouse")
	leafToSpecies := map[*phylogeny.Node[noSpecies]]*newick.Node[noSpecies]{
		gene.FindChild("hdup").FindChild("h1"): human,
		gene.FindChild("hdup").FindChild("h2"): human,
		gene.FindChild("mm"):                   mouse,
	}
	return gene, leafToSpecies
}

func TestReconcileAtMostBinaryDetectsDuplication(t *testing.T) {
	gene, leafToSpecies := buildGeneTree(t)
	require.NoError(t, phylogeny.ReconcileAtMostBinary(gene, leafToSpecies))

	hdup := gene.FindChild("hdup")
	require.Equal(t, phylogeny.EventDuplication, hdup.Info.Reconciliation.Event)

	dups, losses := phylogeny.ReconciliationCostAtMostBinary(gene)
	require.Equal(t, 1, dups)
	require.GreaterOrEqual(t, losses, 0)
}

func TestReconcileAtMostBinaryUnmappedLeaf(t *testing.T) {
	gene, leafToSpecies := buildGeneTree(t)
	delete(leafToSpecies, gene.FindChild("mm"))
	err := phylogeny.ReconcileAtMostBinary(gene, leafToSpecies)
	require.Error(t, err)
}

func TestReconcileAtMostBinaryRejectsNonBinary(t *testing.T) {
	gene, err := newick.Parse[phylogeny.Info[noSpecies]]("(h1,h2,mm)root;")
	require.NoError(t, err)
	speciesTree := buildSpeciesTree(t)
	human := speciesTree.FindChild("primate").FindChild("human")
	mouse := speciesTree.FindChild("mouse")
	leafToSpecies := map[*phylogeny.Node[noSpecies]]*newick.Node[noSpecies]{
		gene.FindChild("h1"): human,
		gene.FindChild("h2"): human,
		gene.FindChild("mm"): mouse,
	}
	err = phylogeny.ReconcileAtMostBinary(gene, leafToSpecies)
	require.Error(t, err)
}

func TestRootAndReconcileAtMostBinaryReturnsReconciledTree(t *testing.T) {
	gene, leafToSpecies := buildGeneTree(t)
	for _, n := range []*phylogeny.Node[noSpecies]{
		gene.FindChild("hdup").FindChild("h1"),
		gene.FindChild("hdup").FindChild("h2"),
		gene.FindChild("hdup"),
		gene.FindChild("mm"),
	} {
		n.BranchLength = 1
	}

	best, err := phylogeny.RootAndReconcileAtMostBinary(gene, leafToSpecies)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"h1", "h2", "mm"}, leavesOf(best))
	require.NotNil(t, best.Info.Reconciliation)
}
