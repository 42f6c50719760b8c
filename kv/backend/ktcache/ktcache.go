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

// Package ktcache is the remote cache backend of spec §4.5 ("KT", kyoto
// tycoon): a session to a remote server enforcing max_record_size
// (diverting oversize records to a sibling big-record-file handle),
// flushing bulk writes on either byte or record-count thresholds, and
// converting integers to and from big-endian wire form.
package ktcache

import (
	"context"
	"encoding/binary"

	"github.com/cenkalti/backoff/v4"

	"github.com/benedictpaten/sonlib-go/internal/intmath"
	"github.com/benedictpaten/sonlib-go/kv"
	"github.com/benedictpaten/sonlib-go/kv/backend/bigrecord"
	"github.com/benedictpaten/sonlib-go/kv/backend/ktcache/ktrpc"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// RemoteClient is the subset of ktrpc.Client's surface ktcache depends on,
// kept as an interface so tests can substitute an in-memory fake instead
// of dialing a real server (spec §1: the server's wire details are out of
// scope; only this contract matters).
type RemoteClient interface {
	Get(ctx context.Context, key int64) ([]byte, bool, error)
	Contains(ctx context.Context, key int64) (bool, error)
	Set(ctx context.Context, key int64, value []byte) error
	Remove(ctx context.Context, key int64) error
	IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error)
	BulkGet(ctx context.Context, keys []int64) (map[int64][]byte, error)
	BulkSet(ctx context.Context, kvs map[int64][]byte) error
	NumberOfRecords(ctx context.Context) (int64, error)
	DeleteFromDisk(ctx context.Context) error
}

// Limits carries the three thresholds spec §6's config document names for
// the remote backend.
type Limits struct {
	MaxRecordSize        int64
	MaxBulkSetSize       int64
	MaxBulkSetNumRecords int
}

// Store is the ktcache backend. It owns two handles: the remote client
// itself, and a sibling big-record file store for records too large for
// the remote (spec §4.5).
type Store struct {
	kv.Unsupported

	remote   RemoteClient
	big      *bigrecord.Store
	limits   Limits
	diverted map[int64]bool
}

// Open wires a remote client to a sibling big-record-file handle rooted
// at bigRecordDir, for the given database name.
func Open(remote RemoteClient, limits Limits, bigRecordDir, databaseName string) (*Store, error) {
	big, err := bigrecord.Open(bigRecordDir, databaseName, false)
	if err != nil {
		return nil, err
	}
	return &Store{remote: remote, big: big, limits: limits, diverted: make(map[int64]bool)}, nil
}

func retryable(ctx context.Context, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if sonerr.Is(err, sonerr.KindRetryTransaction) {
			return err // retried
		}
		return backoff.Permanent(err)
	}, b)
}

func (s *Store) overLimit(value []byte) bool {
	return s.limits.MaxRecordSize > 0 && int64(len(value)) > s.limits.MaxRecordSize
}

func (s *Store) Contains(ctx context.Context, key int64) (bool, error) {
	if s.diverted[key] {
		return s.big.Contains(ctx, key)
	}
	var found bool
	err := retryable(ctx, func() error {
		var e error
		found, e = s.remote.Contains(ctx, key)
		return e
	})
	return found, err
}

func (s *Store) Get(ctx context.Context, key int64) ([]byte, bool, error) {
	if s.diverted[key] {
		return s.big.Get(ctx, key)
	}
	var v []byte
	var found bool
	err := retryable(ctx, func() error {
		var e error
		v, found, e = s.remote.Get(ctx, key)
		return e
	})
	return v, found, err
}

func (s *Store) Get2(ctx context.Context, key int64) ([]byte, int64, bool, error) {
	v, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return v, 0, found, err
	}
	return v, int64(len(v)), true, nil
}

func (s *Store) GetPartial(ctx context.Context, key int64, offset, size, totalSize int64) ([]byte, error) {
	v, found, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, sonerr.Newf(sonerr.KindMissingKey, "GetPartial: key %d not found", key)
	}
	if offset < 0 || size < 0 || offset+size > int64(len(v)) || totalSize != int64(len(v)) {
		return nil, sonerr.Newf(sonerr.KindOutOfRange, "GetPartial: region [%d,%d) out of range for record of size %d", offset, offset+size, len(v))
	}
	return append([]byte(nil), v[offset:offset+size]...), nil
}

func (s *Store) GetInt64(ctx context.Context, key int64) (int64, bool, error) {
	v, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return 0, found, err
	}
	if len(v) != 8 {
		return 0, false, sonerr.Newf(sonerr.KindGeneral, "GetInt64: record is %d bytes, not 8", len(v))
	}
	return int64(binary.BigEndian.Uint64(v)), true, nil
}

func (s *Store) set(ctx context.Context, key int64, value []byte) error {
	if s.overLimit(value) {
		s.diverted[key] = true
		return s.big.Set(ctx, key, value)
	}
	delete(s.diverted, key)
	return retryable(ctx, func() error { return s.remote.Set(ctx, key, value) })
}

func (s *Store) Insert(ctx context.Context, key int64, value []byte) error {
	ok, err := s.Contains(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return sonerr.Newf(sonerr.KindDuplicateKey, "Insert: key %d already exists", key)
	}
	return s.set(ctx, key, value)
}

func (s *Store) Update(ctx context.Context, key int64, value []byte) error {
	ok, err := s.Contains(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return sonerr.Newf(sonerr.KindMissingKey, "Update: key %d not found", key)
	}
	return s.set(ctx, key, value)
}

func (s *Store) Set(ctx context.Context, key int64, value []byte) error {
	return s.set(ctx, key, value)
}

func (s *Store) InsertInt64(ctx context.Context, key int64, value int64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(value))
	return s.Insert(ctx, key, b)
}

func (s *Store) UpdateInt64(ctx context.Context, key int64, value int64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(value))
	return s.Update(ctx, key, b)
}

// IncrementInt64 is the remote's native atomic operation; diverted
// (big-record) keys cannot use it.
func (s *Store) IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error) {
	if s.diverted[key] {
		return 0, sonerr.New(sonerr.KindUnsupported, "IncrementInt64 is not supported on a diverted big record")
	}
	var result int64
	err := retryable(ctx, func() error {
		var e error
		result, e = s.remote.IncrementInt64(ctx, key, delta)
		return e
	})
	return result, err
}

func (s *Store) BulkGet(ctx context.Context, keys []int64) ([]kv.BulkResult, error) {
	out := make([]kv.BulkResult, len(keys))
	var remoteKeys []int64
	for i, k := range keys {
		out[i].Key = k
		if s.diverted[k] {
			v, _, err := s.big.Get(ctx, k)
			if err != nil {
				return nil, err
			}
			out[i].Value = v
		} else {
			remoteKeys = append(remoteKeys, k)
		}
	}
	if len(remoteKeys) == 0 {
		return out, nil
	}
	var fetched map[int64][]byte
	err := retryable(ctx, func() error {
		var e error
		fetched, e = s.remote.BulkGet(ctx, remoteKeys)
		return e
	})
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		if v, ok := fetched[k]; ok {
			out[i].Value = v
		}
	}
	return out, nil
}

func (s *Store) BulkGetRange(ctx context.Context, firstKey int64, n int64) ([]kv.BulkResult, error) {
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = firstKey + int64(i)
	}
	return s.BulkGet(ctx, keys)
}

// BulkSet flushes to the remote whenever either max_bulk_set_size (bytes)
// or max_bulk_set_num_records is about to be exceeded, per spec §4.5.
func (s *Store) BulkSet(ctx context.Context, requests []kv.BulkSetRequest) error {
	batch := make(map[int64][]byte)
	var batchBytes int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		toSend := batch
		err := retryable(ctx, func() error { return s.remote.BulkSet(ctx, toSend) })
		batch = make(map[int64][]byte)
		batchBytes = 0
		return err
	}

	for _, r := range requests {
		if s.overLimit(r.Value) {
			if err := flush(); err != nil {
				return err
			}
			if err := s.set(ctx, r.Key, r.Value); err != nil {
				return err
			}
			continue
		}
		nextBytes, overflow := intmath.SafeAdd(uint64(batchBytes), uint64(len(r.Value)))
		wouldExceedBytes := s.limits.MaxBulkSetSize > 0 && (overflow || int64(nextBytes) > s.limits.MaxBulkSetSize)
		wouldExceedCount := s.limits.MaxBulkSetNumRecords > 0 && len(batch)+1 > s.limits.MaxBulkSetNumRecords
		if wouldExceedBytes || wouldExceedCount {
			if err := flush(); err != nil {
				return err
			}
			nextBytes, _ = intmath.SafeAdd(uint64(batchBytes), uint64(len(r.Value)))
		}
		delete(s.diverted, r.Key)
		batch[r.Key] = r.Value
		batchBytes = int64(nextBytes)
	}
	return flush()
}

func (s *Store) BulkRemove(ctx context.Context, keys []int64) error {
	for _, k := range keys {
		if err := s.Remove(ctx, k); err != nil && !sonerr.Is(err, sonerr.KindMissingKey) {
			return err
		}
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key int64) error {
	ok, err := s.Contains(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return sonerr.Newf(sonerr.KindMissingKey, "Remove: key %d not found", key)
	}
	if s.diverted[key] {
		delete(s.diverted, key)
		return s.big.Remove(ctx, key)
	}
	return retryable(ctx, func() error { return s.remote.Remove(ctx, key) })
}

func (s *Store) NumberOfRecords(ctx context.Context) (int64, error) {
	n, err := s.remote.NumberOfRecords(ctx)
	if err != nil {
		return 0, err
	}
	bn, err := s.big.NumberOfRecords(ctx)
	if err != nil {
		return 0, err
	}
	return n + bn, nil
}

func (s *Store) DeleteFromDisk(ctx context.Context) error {
	if err := s.remote.DeleteFromDisk(ctx); err != nil {
		return err
	}
	return s.big.DeleteFromDisk(ctx)
}

func (s *Store) Close() error {
	return s.big.Close()
}
