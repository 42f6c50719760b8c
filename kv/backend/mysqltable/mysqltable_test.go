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

package mysqltable

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/kv"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{db: db, table: "records"}, mock
}

func TestInsertGet(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO `records`").
		WithArgs(int64(1), []byte("hello")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Insert(ctx, 1, []byte("hello")))

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte("hello"))
	mock.ExpectQuery("SELECT value FROM `records`").WithArgs(int64(1)).WillReturnRows(rows)
	v, found, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("hello"), v)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicateKey(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO `records`").
		WithArgs(int64(1), []byte("x")).
		WillReturnError(assert.AnError)
	err := s.Insert(ctx, 1, []byte("x"))
	require.Error(t, err)
	k, _ := sonerr.KindOf(err)
	assert.Equal(t, sonerr.KindDuplicateKey, k)
}

func TestUpdateMissingKey(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE `records`").
		WithArgs([]byte("x"), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.Update(ctx, 9, []byte("x"))
	require.Error(t, err)
	k, _ := sonerr.KindOf(err)
	assert.Equal(t, sonerr.KindMissingKey, k)
}

func TestSetIsReplace(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("REPLACE INTO `records`").
		WithArgs(int64(1), []byte("v2")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Set(ctx, 1, []byte("v2")))
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestIncrementInt64RunsInTransaction asserts spec §4.5's requirement that
// increment executes inside a server-side transaction: a SELECT ... FOR
// UPDATE followed by a REPLACE, wrapped in begin/commit.
func TestIncrementInt64RunsInTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT value FROM `records` WHERE id = \\? FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64Bytes(10)))
	mock.ExpectExec("REPLACE INTO `records`").
		WithArgs(int64(1), int64Bytes(15)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := s.IncrementInt64(ctx, 1, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 15, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementInt64StartsFromZeroWhenMissing(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT value FROM `records` WHERE id = \\? FOR UPDATE").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec("REPLACE INTO `records`").
		WithArgs(int64(2), int64Bytes(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := s.IncrementInt64(ctx, 2, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, result)
}

func TestBulkSetRunsInSingleTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("REPLACE INTO `records`").WithArgs(int64(1), []byte{1}).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("REPLACE INTO `records`").WithArgs(int64(2), []byte{2}).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.BulkSet(ctx, requestsFor(1, 2))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMissingKey(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM `records`").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.Remove(ctx, 5)
	require.Error(t, err)
	k, _ := sonerr.KindOf(err)
	assert.Equal(t, sonerr.KindMissingKey, k)
}

func TestNumberOfRecords(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM `records`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	n, err := s.NumberOfRecords(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func requestsFor(keys ...int64) []kv.BulkSetRequest {
	out := make([]kv.BulkSetRequest, len(keys))
	for i, k := range keys {
		out[i] = kv.BulkSetRequest{Key: k, Value: []byte{byte(k)}}
	}
	return out
}
