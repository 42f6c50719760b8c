// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/container"
)

func identityHash(k int) uint64 { return uint64(k) }
func identityEq(a, b int) bool  { return a == b }

func TestHashMapInsertSearchRemoveLaws(t *testing.T) {
	m := container.NewHashMap[int, string](identityHash, identityEq, nil, nil)
	m.Insert(1, "a")
	v, ok := m.Search(1)
	require.True(t, ok)
	require.Equal(t, "a", v)

	m.Insert(1, "b")
	v, ok = m.Search(1)
	require.True(t, ok)
	require.Equal(t, "b", v)

	_, ok = m.Remove(1)
	require.True(t, ok)
	_, ok = m.Search(1)
	require.False(t, ok)
}

func TestHashMapInvertRoundTrip(t *testing.T) {
	m := container.NewHashMap[int, int](identityHash, identityEq, nil, nil)
	m.Insert(1, 10)
	m.Insert(2, 20)
	m.Insert(3, 30)

	inv := container.Invert[int, int](m, identityHash, identityEq, nil, nil)
	back := container.Invert[int, int](inv, identityHash, identityEq, nil, nil)

	it := m.Keys()
	for {
		k, ok := it.Next()
		if !ok {
			break
		}
		v1, _ := m.Search(k)
		v2, ok := back.Search(k)
		require.True(t, ok)
		require.Equal(t, v1, v2)
	}
}

func TestHashMapInvertCollisionFirstWins(t *testing.T) {
	m := container.NewHashMap[int, int](identityHash, identityEq, nil, nil)
	m.Insert(1, 100)
	m.Insert(2, 100) // same value -> collision when inverted
	inv := container.Invert[int, int](m, identityHash, identityEq, nil, nil)
	k, ok := inv.Search(100)
	require.True(t, ok)
	require.Equal(t, 1, k)
}

func TestHashSetAlgebra(t *testing.T) {
	a := container.NewHashSet[int](identityHash, identityEq, nil)
	b := container.NewHashSet[int](identityHash, identityEq, nil)
	for _, v := range []int{1, 2, 3} {
		a.Insert(v)
	}
	for _, v := range []int{2, 3, 4} {
		b.Insert(v)
	}
	u, err := a.GetUnion(b)
	require.NoError(t, err)
	require.Equal(t, 4, u.Size())

	i, err := a.GetIntersection(b)
	require.NoError(t, err)
	require.Equal(t, 2, i.Size())

	sub, err := i.IsSubset(a)
	require.NoError(t, err)
	require.True(t, sub)
}

func TestHashSetPeekEmpty(t *testing.T) {
	s := container.NewHashSet[int](identityHash, identityEq, nil)
	_, err := s.Peek()
	require.Error(t, err)
}
