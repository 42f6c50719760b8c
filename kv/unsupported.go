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

package kv

import (
	"context"

	"github.com/benedictpaten/sonlib-go/sonerr"
)

// Unsupported is embedded by backends that don't implement every Store
// operation: spec §4.5 says a backend "may refuse an op by returning a
// not-supported indication, which the wrapper turns into KV_UNSUPPORTED" —
// embedding this struct IS that refusal, for whichever methods the backend
// doesn't override.
type Unsupported struct{}

func unsupported(op string) error {
	return sonerr.Newf(sonerr.KindUnsupported, "%s is not supported by this backend", op)
}

func (Unsupported) Contains(ctx context.Context, key int64) (bool, error) {
	return false, unsupported("Contains")
}
func (Unsupported) Get(ctx context.Context, key int64) ([]byte, bool, error) {
	return nil, false, unsupported("Get")
}
func (Unsupported) Get2(ctx context.Context, key int64) ([]byte, int64, bool, error) {
	return nil, 0, false, unsupported("Get2")
}
func (Unsupported) GetPartial(ctx context.Context, key int64, offset, size, totalSize int64) ([]byte, error) {
	return nil, unsupported("GetPartial")
}
func (Unsupported) GetInt64(ctx context.Context, key int64) (int64, bool, error) {
	return 0, false, unsupported("GetInt64")
}
func (Unsupported) BulkGet(ctx context.Context, keys []int64) ([]BulkResult, error) {
	return nil, unsupported("BulkGet")
}
func (Unsupported) BulkGetRange(ctx context.Context, firstKey int64, n int64) ([]BulkResult, error) {
	return nil, unsupported("BulkGetRange")
}
func (Unsupported) Insert(ctx context.Context, key int64, value []byte) error {
	return unsupported("Insert")
}
func (Unsupported) Update(ctx context.Context, key int64, value []byte) error {
	return unsupported("Update")
}
func (Unsupported) Set(ctx context.Context, key int64, value []byte) error {
	return unsupported("Set")
}
func (Unsupported) InsertInt64(ctx context.Context, key int64, value int64) error {
	return unsupported("InsertInt64")
}
func (Unsupported) UpdateInt64(ctx context.Context, key int64, value int64) error {
	return unsupported("UpdateInt64")
}
func (Unsupported) IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error) {
	return 0, unsupported("IncrementInt64")
}
func (Unsupported) BulkSet(ctx context.Context, requests []BulkSetRequest) error {
	return unsupported("BulkSet")
}
func (Unsupported) BulkRemove(ctx context.Context, keys []int64) error {
	return unsupported("BulkRemove")
}
func (Unsupported) Remove(ctx context.Context, key int64) error {
	return unsupported("Remove")
}
func (Unsupported) NumberOfRecords(ctx context.Context) (int64, error) {
	return 0, unsupported("NumberOfRecords")
}
func (Unsupported) DeleteFromDisk(ctx context.Context) error {
	return unsupported("DeleteFromDisk")
}
func (Unsupported) Close() error { return nil }
