// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package newick_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/newick"
)

type noInfo struct{}

func TestNewickRoundTripBattery(t *testing.T) {
	battery := []string{
		"(((a,b,(c,))d),e)f;",
		";",
		"f;",
		"();",
	}
	for _, s := range battery {
		n, err := newick.Parse[noInfo](s)
		require.NoError(t, err, s)
		got := newick.Serialize[noInfo](n)
		require.Equal(t, s, got)
	}
}

// TestNewickEndToEndScenario2 is spec §8 end-to-end scenario 2.
func TestNewickEndToEndScenario2(t *testing.T) {
	root, err := newick.Parse[noInfo]("((a,b)c,d)e;")
	require.NoError(t, err)

	c := root.FindChild("c")
	require.NotNil(t, c)
	b := c.FindChild("b")
	require.NotNil(t, b)

	newRoot := newick.ReRoot[noInfo](b, 0.25)
	require.Equal(t, 2, newRoot.NumChildren())

	var bChild, other *newick.Node[noInfo]
	for _, ch := range newRoot.Children() {
		if ch.Label == "b" {
			bChild = ch
		} else {
			other = ch
		}
	}
	require.NotNil(t, bChild)
	require.NotNil(t, other)
	require.Equal(t, 0.25, bChild.BranchLength)

	labels := collectLabels(other, nil)
	require.ElementsMatch(t, []string{"a", "c", "d"}, labels)
}

func collectLabels(n *newick.Node[noInfo], acc []string) []string {
	if n.Label != "" {
		acc = append(acc, n.Label)
	}
	for _, c := range n.Children() {
		acc = collectLabels(c, acc)
	}
	return acc
}

func TestGetMRCA(t *testing.T) {
	root, err := newick.Parse[noInfo]("((a,b)c,d)e;")
	require.NoError(t, err)
	a := root.FindChild("c").FindChild("a")
	b := root.FindChild("c").FindChild("b")
	d := root.FindChild("d")

	mrca := newick.GetMRCA(a, b)
	require.Equal(t, "c", mrca.Label)

	mrca2 := newick.GetMRCA(a, d)
	require.Equal(t, "e", mrca2.Label)
}

func TestGetMRCACrossTreeIsNil(t *testing.T) {
	t1, _ := newick.Parse[noInfo]("(a,b)c;")
	t2, _ := newick.Parse[noInfo]("(x,y)z;")
	a := t1.FindChild("a")
	x := t2.FindChild("x")
	require.Nil(t, newick.GetMRCA(a, x))
}

func TestCloneSubtreeIndependent(t *testing.T) {
	root, _ := newick.Parse[noInfo]("(a,b)c;")
	clone := root.CloneSubtree()
	require.True(t, root.Equals(clone))
	require.Nil(t, clone.Parent())

	clone.FindChild("a").Label = "z"
	require.Equal(t, "a", root.FindChild("a").Label)
}

func TestSortChildren(t *testing.T) {
	root, _ := newick.Parse[noInfo]("(c,a,b)r;")
	root.SortChildren(func(a, b *newick.Node[noInfo]) int {
		switch {
		case a.Label < b.Label:
			return -1
		case a.Label > b.Label:
			return 1
		default:
			return 0
		}
	})
	var labels []string
	for _, c := range root.Children() {
		labels = append(labels, c.Label)
	}
	require.Equal(t, []string{"a", "b", "c"}, labels)
}
