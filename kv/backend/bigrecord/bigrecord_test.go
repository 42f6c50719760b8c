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

package bigrecord

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/sonerr"
)

func TestInsertGetRemove(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir(), "chromFasta", false)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, 42, []byte("acgtacgt")))

	ok, err := s.Contains(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	v, found, err := s.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("acgtacgt"), v)

	require.NoError(t, s.Remove(ctx, 42))
	err = s.Remove(ctx, 42)
	require.Error(t, err)
	assert.Equal(t, sonerr.KindMissingKey, mustKind(t, err))
}

func TestFileNaming(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, "myDb", false)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, 3, []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var found bool
	for _, e := range entries {
		if e.Name() == "myDb.BIG__RECORD__FILE__3" {
			found = true
		}
	}
	assert.True(t, found, "expected myDb.BIG__RECORD__FILE__3 in %v", entries)
}

func TestGetPartial(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir(), "db", false)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, 1, []byte("0123456789")))
	v, err := s.GetPartial(ctx, 1, 3, 4, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("3456"), v)
}

func TestCompressedRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir(), "db", true)
	require.NoError(t, err)
	defer s.Close()

	payload := []byte(strings.Repeat("abcd", 100))
	require.NoError(t, s.Insert(ctx, 1, payload))

	v, found, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payload, v)

	_, err = s.GetPartial(ctx, 1, 0, 4, int64(len(payload)))
	require.Error(t, err)
	assert.Equal(t, sonerr.KindUnsupported, mustKind(t, err))
}

func TestReopenRecoversKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, "db", false)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, 5, []byte("v")))
	require.NoError(t, s.Close())

	s2, err := Open(dir, "db", false)
	require.NoError(t, err)
	defer s2.Close()

	ok, err := s2.Contains(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteFromDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, "db", false)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, 1, []byte("a")))
	require.NoError(t, s.Insert(ctx, 2, []byte("b")))

	require.NoError(t, s.DeleteFromDisk(ctx))

	n, err := s.NumberOfRecords(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), marker))
	}
	require.NoError(t, s.Close())
}

func mustKind(t *testing.T, err error) sonerr.Kind {
	t.Helper()
	k, ok := sonerr.KindOf(err)
	require.True(t, ok, "error %v carries no sonerr.Kind", err)
	return k
}
