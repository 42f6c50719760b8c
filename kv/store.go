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

// Package kv is the pluggable key→value persistence layer of spec C5: a
// single abstract Store contract plus several concrete backends (embedded
// B-tree, remote cache, relational table, opaque big-record file), and a
// size-bounded LRU byte cache that can front any of them.
package kv

import "context"

// Record pairs an int64 key with an opaque byte blob, the uniform record
// shape of spec §3.
type Record struct {
	Key   int64
	Value []byte
}

// BulkResult is one entry of a bulk read: Value is nil on a miss.
type BulkResult struct {
	Key   int64
	Value []byte
}

// BulkSetRequest is one entry of a bulk write.
type BulkSetRequest struct {
	Key   int64
	Value []byte
}

// Store is the abstract contract every backend satisfies (spec §4.5).
// Backends that don't support an operation return an error carrying
// sonerr.KindUnsupported; embedding Unsupported supplies that refusal for
// every method a backend does not implement itself.
type Store interface {
	Contains(ctx context.Context, key int64) (bool, error)

	Get(ctx context.Context, key int64) ([]byte, bool, error)
	// Get2 additionally reports the full record size even when a partial
	// read elsewhere only fetched a fragment of it.
	Get2(ctx context.Context, key int64) ([]byte, int64, bool, error)
	GetPartial(ctx context.Context, key int64, offset, size, totalSize int64) ([]byte, error)
	GetInt64(ctx context.Context, key int64) (int64, bool, error)

	BulkGet(ctx context.Context, keys []int64) ([]BulkResult, error)
	BulkGetRange(ctx context.Context, firstKey int64, n int64) ([]BulkResult, error)

	Insert(ctx context.Context, key int64, value []byte) error
	Update(ctx context.Context, key int64, value []byte) error
	Set(ctx context.Context, key int64, value []byte) error

	InsertInt64(ctx context.Context, key int64, value int64) error
	UpdateInt64(ctx context.Context, key int64, value int64) error
	IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error)

	BulkSet(ctx context.Context, requests []BulkSetRequest) error
	BulkRemove(ctx context.Context, keys []int64) error

	Remove(ctx context.Context, key int64) error

	NumberOfRecords(ctx context.Context) (int64, error)

	// DeleteFromDisk destroys on-disk state; the handle becomes unusable
	// afterwards.
	DeleteFromDisk(ctx context.Context) error

	// Close releases in-process resources (connections, file handles)
	// without touching on-disk state.
	Close() error
}
