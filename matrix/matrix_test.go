// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/matrix"
)

func TestJukesCantorZeroIsIdentity(t *testing.T) {
	for _, k := range []int{2, 4, 10} {
		jc := matrix.JukesCantor(0, k)
		id := matrix.Identity(k)
		require.True(t, matrix.Equal(jc, id, 1e-9))
	}
}

func TestMultiplyByIdentity(t *testing.T) {
	a := matrix.New(3, 3)
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for i, v := range vals {
		a.Set(i/3, i%3, v)
	}
	id := matrix.Identity(3)
	out, err := matrix.Multiply(a, id)
	require.NoError(t, err)
	require.True(t, matrix.Equal(a, out, 1e-12))
}

func TestAddZero(t *testing.T) {
	a := matrix.New(2, 2)
	a.Set(0, 0, 5)
	zero := matrix.New(2, 2)
	out, err := matrix.Add(zero, a)
	require.NoError(t, err)
	require.True(t, matrix.Equal(a, out, 1e-12))
}

func TestShapeMismatch(t *testing.T) {
	a := matrix.New(2, 2)
	b := matrix.New(3, 3)
	_, err := matrix.Add(a, b)
	require.Error(t, err)
}

func TestDijkstraShortestPaths(t *testing.T) {
	g := matrix.NewGraph(4)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 2)
	g.AddEdge(0, 2, 10)
	g.AddEdge(2, 3, 1)
	dist := g.ShortestPaths(0)
	require.Equal(t, 0.0, dist[0])
	require.Equal(t, 1.0, dist[1])
	require.Equal(t, 3.0, dist[2])
	require.Equal(t, 4.0, dist[3])
}

func TestDijkstraUnreachable(t *testing.T) {
	g := matrix.NewGraph(2)
	dist := g.ShortestPaths(0)
	require.True(t, math.IsInf(dist[1], 1))
}
