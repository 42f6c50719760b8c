// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/container"
)

func TestSequenceAppendPopLaws(t *testing.T) {
	s := container.NewSequence[int]()
	for i := 0; i < 5; i++ {
		before := s.Length()
		s.Append(i)
		require.Equal(t, i, s.Peek())
		require.Equal(t, before+1, s.Length())
	}
	for i := 4; i >= 0; i-- {
		peeked := s.Peek()
		popped := s.Pop()
		require.Equal(t, peeked, popped)
		require.Equal(t, i, popped)
	}
	require.Equal(t, 0, s.Length())
}

func TestSequenceReverseInvolution(t *testing.T) {
	s := container.NewSequence[int]()
	for _, v := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		s.Append(v)
	}
	orig := make([]int, s.Length())
	for i := range orig {
		orig[i] = s.Get(i)
	}
	s.Reverse()
	s.Reverse()
	for i := range orig {
		require.Equal(t, orig[i], s.Get(i))
	}
}

func TestSequenceSortStable(t *testing.T) {
	type pair struct{ key, seq int }
	s := container.NewSequence[pair]()
	s.Append(pair{1, 0})
	s.Append(pair{0, 1})
	s.Append(pair{1, 2})
	s.Append(pair{0, 3})
	s.Sort(func(a, b pair) int { return a.key - b.key })
	want := []pair{{0, 1}, {0, 3}, {1, 0}, {1, 2}}
	for i, w := range want {
		require.Equal(t, w, s.Get(i))
	}
}

func TestSequenceNilIsEmpty(t *testing.T) {
	var s *container.Sequence[int]
	require.Equal(t, 0, s.Length())
	it := s.ForwardIterator()
	_, ok := it.Next()
	require.False(t, ok)
}

func TestSequenceIteratorBothDirections(t *testing.T) {
	s := container.NewSequence[int]()
	for i := 0; i < 4; i++ {
		s.Append(i)
	}
	fwd := s.ForwardIterator()
	var seen []int
	for {
		v, ok := fwd.Next()
		if !ok {
			break
		}
		seen = append(seen, v)
	}
	require.Equal(t, []int{0, 1, 2, 3}, seen)

	bwd := s.BackwardIterator()
	seen = nil
	for {
		v, ok := bwd.Previous()
		if !ok {
			break
		}
		seen = append(seen, v)
	}
	require.Equal(t, []int{3, 2, 1, 0}, seen)
}

func TestSequenceRemoveAtAndByIdentity(t *testing.T) {
	s := container.NewSequence[int]()
	for i := 0; i < 5; i++ {
		s.Append(i)
	}
	require.Equal(t, 2, s.RemoveAt(2))
	require.Equal(t, 4, s.Length())

	ok := s.RemoveFirstMatchByIdentity(4, func(a, b int) bool { return a == b })
	require.True(t, ok)
	require.False(t, s.ContainsByIdentity(4, func(a, b int) bool { return a == b }))
}

func TestSequenceGetSortedSet(t *testing.T) {
	s := container.NewSequence[int]()
	for _, v := range []int{5, 1, 3} {
		s.Append(v)
	}
	os := s.GetSortedSet(func(a, b int) int { return a - b })
	require.Equal(t, 3, os.Length())
	first, _ := os.First()
	require.Equal(t, 1, first)
}
