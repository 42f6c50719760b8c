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

// Package mysqltable is the relational backend of spec §4.5: one row per
// record, `set` implemented as REPLACE, `increment` executed inside a
// server-side transaction.
package mysqltable

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/benedictpaten/sonlib-go/kv"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// Store is the MySQL-backed Store. Every operation runs against a single
// table, one row per record, columns (id BIGINT PRIMARY KEY, value
// LONGBLOB NOT NULL).
type Store struct {
	kv.Unsupported

	db    *sql.DB
	table string
}

// DSN builds a go-sql-driver/mysql data source name from the connection
// parameters spec §6's config document carries for this backend.
func DSN(user, password, host string, port int, databaseName string) string {
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", user, password, host, port, databaseName)
}

// Open connects to dsn and ensures table exists.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, sonerr.Wrap(sonerr.KindGeneral, err, "mysqltable: open")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, sonerr.Wrap(sonerr.KindGeneral, err, "mysqltable: ping")
	}
	s := &Store{db: db, table: table}
	createStmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS `%s` (id BIGINT PRIMARY KEY, value LONGBLOB NOT NULL)", table)
	if _, err := db.ExecContext(ctx, createStmt); err != nil {
		db.Close()
		return nil, sonerr.Wrap(sonerr.KindGeneral, err, "mysqltable: create table")
	}
	return s, nil
}

func (s *Store) Contains(ctx context.Context, key int64) (bool, error) {
	var exists bool
	q := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM `%s` WHERE id = ?)", s.table)
	err := s.db.QueryRowContext(ctx, q, key).Scan(&exists)
	if err != nil {
		return false, sonerr.Wrap(sonerr.KindGeneral, err, "Contains")
	}
	return exists, nil
}

func (s *Store) Get(ctx context.Context, key int64) ([]byte, bool, error) {
	var value []byte
	q := fmt.Sprintf("SELECT value FROM `%s` WHERE id = ?", s.table)
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, sonerr.Wrap(sonerr.KindGeneral, err, "Get")
	}
	return value, true, nil
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
	var n int64
	for _, b := range v {
		n = n<<8 | int64(b)
	}
	return n, true, nil
}

func (s *Store) BulkGet(ctx context.Context, keys []int64) ([]kv.BulkResult, error) {
	out := make([]kv.BulkResult, len(keys))
	for i, k := range keys {
		v, found, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		out[i] = kv.BulkResult{Key: k}
		if found {
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

func (s *Store) Insert(ctx context.Context, key int64, value []byte) error {
	q := fmt.Sprintf("INSERT INTO `%s` (id, value) VALUES (?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, key, value)
	if err != nil {
		return sonerr.Wrapf(sonerr.KindDuplicateKey, err, "Insert: key %d already exists", key)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, key int64, value []byte) error {
	q := fmt.Sprintf("UPDATE `%s` SET value = ? WHERE id = ?", s.table)
	res, err := s.db.ExecContext(ctx, q, value, key)
	if err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "Update")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "Update: rows affected")
	}
	if n == 0 {
		return sonerr.Newf(sonerr.KindMissingKey, "Update: key %d not found", key)
	}
	return nil
}

// Set is REPLACE, per spec §4.5.
func (s *Store) Set(ctx context.Context, key int64, value []byte) error {
	q := fmt.Sprintf("REPLACE INTO `%s` (id, value) VALUES (?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, key, value)
	if err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "Set")
	}
	return nil
}

func int64Bytes(v int64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func (s *Store) InsertInt64(ctx context.Context, key int64, value int64) error {
	return s.Insert(ctx, key, int64Bytes(value))
}

func (s *Store) UpdateInt64(ctx context.Context, key int64, value int64) error {
	return s.Update(ctx, key, int64Bytes(value))
}

// IncrementInt64 runs inside a server-side transaction, per spec §4.5.
func (s *Store) IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, sonerr.Wrap(sonerr.KindGeneral, err, "IncrementInt64: begin")
	}
	defer tx.Rollback()

	var cur []byte
	q := fmt.Sprintf("SELECT value FROM `%s` WHERE id = ? FOR UPDATE", s.table)
	err = tx.QueryRowContext(ctx, q, key).Scan(&cur)
	var curVal int64
	switch {
	case err == sql.ErrNoRows:
		curVal = 0
	case err != nil:
		return 0, sonerr.Wrap(sonerr.KindGeneral, err, "IncrementInt64: select")
	default:
		if len(cur) != 8 {
			return 0, sonerr.Newf(sonerr.KindGeneral, "IncrementInt64: record is %d bytes, not 8", len(cur))
		}
		for _, b := range cur {
			curVal = curVal<<8 | int64(b)
		}
	}
	result := curVal + delta
	replaceQ := fmt.Sprintf("REPLACE INTO `%s` (id, value) VALUES (?, ?)", s.table)
	if _, err := tx.ExecContext(ctx, replaceQ, key, int64Bytes(result)); err != nil {
		return 0, sonerr.Wrap(sonerr.KindGeneral, err, "IncrementInt64: replace")
	}
	if err := tx.Commit(); err != nil {
		return 0, sonerr.Wrap(sonerr.KindGeneral, err, "IncrementInt64: commit")
	}
	return result, nil
}

func (s *Store) BulkSet(ctx context.Context, requests []kv.BulkSetRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "BulkSet: begin")
	}
	defer tx.Rollback()
	q := fmt.Sprintf("REPLACE INTO `%s` (id, value) VALUES (?, ?)", s.table)
	for _, r := range requests {
		if _, err := tx.ExecContext(ctx, q, r.Key, r.Value); err != nil {
			return sonerr.Wrap(sonerr.KindGeneral, err, "BulkSet")
		}
	}
	if err := tx.Commit(); err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "BulkSet: commit")
	}
	return nil
}

func (s *Store) BulkRemove(ctx context.Context, keys []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "BulkRemove: begin")
	}
	defer tx.Rollback()
	q := fmt.Sprintf("DELETE FROM `%s` WHERE id = ?", s.table)
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, q, k); err != nil {
			return sonerr.Wrap(sonerr.KindGeneral, err, "BulkRemove")
		}
	}
	if err := tx.Commit(); err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "BulkRemove: commit")
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key int64) error {
	q := fmt.Sprintf("DELETE FROM `%s` WHERE id = ?", s.table)
	res, err := s.db.ExecContext(ctx, q, key)
	if err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "Remove")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "Remove: rows affected")
	}
	if n == 0 {
		return sonerr.Newf(sonerr.KindMissingKey, "Remove: key %d not found", key)
	}
	return nil
}

func (s *Store) NumberOfRecords(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM `%s`", s.table)
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, sonerr.Wrap(sonerr.KindGeneral, err, "NumberOfRecords")
	}
	return n, nil
}

func (s *Store) DeleteFromDisk(ctx context.Context) error {
	q := fmt.Sprintf("DROP TABLE IF EXISTS `%s`", s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "DeleteFromDisk")
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
