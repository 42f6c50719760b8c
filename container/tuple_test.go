// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/benedictpaten/sonlib-go/container"
)

func TestIntTupleShorterPrefixIsLess(t *testing.T) {
	a := container.NewIntTuple(1, 2)
	b := container.NewIntTuple(1, 2, 3)
	require.Less(t, a.Cmp(b), 0)
	require.Greater(t, b.Cmp(a), 0)
}

func TestIntTupleCmpReflexiveAntisymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		xs := make([]int64, n)
		ys := make([]int64, n)
		for i := range xs {
			xs[i] = rapid.Int64Range(-100, 100).Draw(rt, "x")
			ys[i] = rapid.Int64Range(-100, 100).Draw(rt, "y")
		}
		x := container.NewIntTuple(xs...)
		y := container.NewIntTuple(ys...)
		require.Equal(t, 0, x.Cmp(x))
		if x.Cmp(y) < 0 {
			require.Greater(t, y.Cmp(x), 0)
		} else if x.Cmp(y) > 0 {
			require.Less(t, y.Cmp(x), 0)
		} else {
			require.Equal(t, 0, y.Cmp(x))
		}
	})
}

func TestIntTupleHashConsistentWithEquals(t *testing.T) {
	a := container.NewIntTuple(1, 2, 3)
	b := container.NewIntTuple(1, 2, 3)
	require.True(t, a.Equals(b))
	require.Equal(t, a.Hash(), b.Hash())
}

func TestIntTupleOrderIsPartOfIdentity(t *testing.T) {
	a := container.NewIntTuple(1, 2)
	b := container.NewIntTuple(2, 1)
	require.False(t, a.Equals(b))
}
