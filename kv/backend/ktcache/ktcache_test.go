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

package ktcache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/kv"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// fakeRemote is an in-process stand-in for the remote cache server, per
// spec §1's explicit non-goal that its wire details are out of scope.
type fakeRemote struct {
	mu      sync.Mutex
	records map[int64][]byte
}

func newFakeRemote() *fakeRemote { return &fakeRemote{records: make(map[int64][]byte)} }

func (f *fakeRemote) Get(ctx context.Context, key int64) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.records[key]
	return v, ok, nil
}

func (f *fakeRemote) Contains(ctx context.Context, key int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[key]
	return ok, nil
}

func (f *fakeRemote) Set(ctx context.Context, key int64, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeRemote) Remove(ctx context.Context, key int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, key)
	return nil
}

func (f *fakeRemote) IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := int64(0)
	if v, ok := f.records[key]; ok {
		for _, b := range v {
			cur = cur<<8 | int64(b)
		}
	}
	cur += delta
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = byte(cur)
		cur >>= 8
	}
	cur = 0
	for _, b := range out {
		cur = cur<<8 | int64(b)
	}
	f.records[key] = out
	return cur, nil
}

func (f *fakeRemote) BulkGet(ctx context.Context, keys []int64) (map[int64][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64][]byte)
	for _, k := range keys {
		if v, ok := f.records[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeRemote) BulkSet(ctx context.Context, kvs map[int64][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range kvs {
		f.records[k] = v
	}
	return nil
}

func (f *fakeRemote) NumberOfRecords(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func (f *fakeRemote) DeleteFromDisk(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = make(map[int64][]byte)
	return nil
}

func TestInsertGetRemove(t *testing.T) {
	ctx := context.Background()
	s, err := Open(newFakeRemote(), Limits{MaxRecordSize: 1024}, t.TempDir(), "db")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, 1, []byte("hello")))
	v, found, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("hello"), v)

	require.NoError(t, s.Remove(ctx, 1))
	err = s.Remove(ctx, 1)
	require.Error(t, err)
	k, _ := sonerr.KindOf(err)
	assert.Equal(t, sonerr.KindMissingKey, k)
}

func TestOversizeRecordDivertedToBigRecord(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s, err := Open(remote, Limits{MaxRecordSize: 4}, t.TempDir(), "db")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, 1, []byte("this value is too big")))
	_, onRemote, _ := remote.Get(ctx, 1)
	assert.False(t, onRemote, "oversize record must not land on the remote")

	v, found, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("this value is too big"), v)
}

func TestIncrementInt64(t *testing.T) {
	ctx := context.Background()
	s, err := Open(newFakeRemote(), Limits{MaxRecordSize: 1024}, t.TempDir(), "db")
	require.NoError(t, err)
	defer s.Close()

	v, err := s.IncrementInt64(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 10, v)
	v, err = s.IncrementInt64(ctx, 1, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 15, v)
}

func TestBulkSetFlushesOnRecordCountThreshold(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s, err := Open(remote, Limits{MaxRecordSize: 1024, MaxBulkSetNumRecords: 2}, t.TempDir(), "db")
	require.NoError(t, err)
	defer s.Close()

	err = s.BulkSet(ctx, bulkRequests(5))
	require.NoError(t, err)

	n, err := s.NumberOfRecords(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func bulkRequests(n int) []kv.BulkSetRequest {
	out := make([]kv.BulkSetRequest, n)
	for i := 0; i < n; i++ {
		out[i] = kv.BulkSetRequest{Key: int64(i), Value: []byte{byte(i)}}
	}
	return out
}
