// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/container"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

func intCmp(a, b int) int { return a - b }

// TestOrderedSetEndToEndScenario1 is spec §8 end-to-end scenario 1.
func TestOrderedSetEndToEndScenario1(t *testing.T) {
	s := container.NewOrderedSet[int](intCmp)
	for _, v := range []int{1, 5, -1, 10, 3, 12, 3, -10, -10} {
		s.Insert(v)
	}
	require.Equal(t, 7, s.Length())
	first, _ := s.First()
	last, _ := s.Last()
	require.Equal(t, -10, first)
	require.Equal(t, 12, last)

	var fwd []int
	it := s.ForwardIterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		fwd = append(fwd, v)
	}
	require.Equal(t, []int{-10, -1, 1, 3, 5, 10, 12}, fwd)

	var bwd []int
	bit := s.BackwardIterator()
	for {
		v, ok := bit.Next()
		if !ok {
			break
		}
		bwd = append(bwd, v)
	}
	require.Equal(t, []int{12, 10, 5, 3, 1, -1, -10}, bwd)
}

func TestOrderedSetSearchNearest(t *testing.T) {
	s := container.NewOrderedSet[int](intCmp)
	for _, v := range []int{10, 20, 30} {
		s.Insert(v)
	}
	v, ok := s.SearchLessThan(20)
	require.True(t, ok)
	require.Equal(t, 10, v)

	v, ok = s.SearchLessThanOrEqual(20)
	require.True(t, ok)
	require.Equal(t, 20, v)

	v, ok = s.SearchGreaterThan(20)
	require.True(t, ok)
	require.Equal(t, 30, v)

	v, ok = s.SearchGreaterThanOrEqual(20)
	require.True(t, ok)
	require.Equal(t, 20, v)

	_, ok = s.SearchGreaterThan(30)
	require.False(t, ok)
}

func TestOrderedSetAlgebra(t *testing.T) {
	a := container.NewOrderedSet[int](intCmp)
	b := container.NewOrderedSet[int](intCmp)
	for _, v := range []int{1, 2, 3} {
		a.Insert(v)
	}
	for _, v := range []int{2, 3, 4} {
		b.Insert(v)
	}
	union, err := a.Union(b)
	require.NoError(t, err)
	require.Equal(t, 4, union.Length())

	inter, err := a.Intersection(b)
	require.NoError(t, err)
	require.Equal(t, 2, inter.Length())

	diff, err := a.Difference(b)
	require.NoError(t, err)
	require.Equal(t, 1, diff.Length())
	v, _ := diff.First()
	require.Equal(t, 1, v)
}

func TestOrderedSetAlgebraMismatch(t *testing.T) {
	a := container.NewOrderedSet[int](intCmp)
	b := container.NewOrderedSet[int](func(a, b int) int { return b - a })
	_, err := a.Union(b)
	require.Error(t, err)
	kind, ok := sonerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, sonerr.KindSetAlgebraMismatch, kind)
}

func TestOrderedSetIteratorFromMissing(t *testing.T) {
	s := container.NewOrderedSet[int](intCmp)
	s.Insert(1)
	_, err := s.ForwardIteratorFrom(99)
	require.Error(t, err)
	kind, _ := sonerr.KindOf(err)
	require.Equal(t, sonerr.KindSortedSetIterMiss, kind)
}

func TestOrderedSetRemoveDoesNotDestroy(t *testing.T) {
	s := container.NewOrderedSet[int](intCmp)
	s.Insert(42)
	v, ok := s.Remove(42)
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.Equal(t, 0, s.Length())
}
