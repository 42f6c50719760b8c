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

// Package boltstore is the embedded B-tree backend of spec §4.5 ("TC" in
// the source, tokyo cabinet): a single on-disk file under database_dir.
// Partial reads load the whole stored value and slice it; increments are a
// read-modify-write inside a single bbolt write transaction, which makes
// them atomic. bbolt is the pure-Go embedded B-tree this module's teacher
// pulls in (erigon itself rides an mdbx-go cgo binding for the equivalent
// role; bbolt is the portable stand-in already present in the dependency
// graph).
package boltstore

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/benedictpaten/sonlib-go/internal/sonlog"
	"github.com/benedictpaten/sonlib-go/kv"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

var bucketName = []byte("records")

// Store is the bbolt-backed embedded B-tree Store.
type Store struct {
	kv.Unsupported
	db   *bolt.DB
	path string
}

// Open opens (creating if absent) a single-file B-tree database under
// databaseDir, named "sonlib.db".
func Open(databaseDir string) (*Store, error) {
	if err := os.MkdirAll(databaseDir, 0o700); err != nil {
		return nil, sonerr.Wrap(sonerr.KindGeneral, err, "boltstore: mkdir database_dir")
	}
	path := filepath.Join(databaseDir, "sonlib.db")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, sonerr.Wrap(sonerr.KindGeneral, err, "boltstore: open")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketName)
		return e
	})
	if err != nil {
		db.Close()
		return nil, sonerr.Wrap(sonerr.KindGeneral, err, "boltstore: create bucket")
	}
	sonlog.Info("boltstore opened", "path", path)
	return &Store{db: db, path: path}, nil
}

func keyBytes(key int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(key))
	return b
}

func (s *Store) Contains(ctx context.Context, key int64) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketName).Get(keyBytes(key)) != nil
		return nil
	})
	return found, err
}

func (s *Store) Get(ctx context.Context, key int64) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(keyBytes(key))
		if v == nil {
			return nil
		}
		found = true
		out = append([]byte(nil), v...)
		return nil
	})
	return out, found, err
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

func (s *Store) BulkGet(ctx context.Context, keys []int64) ([]kv.BulkResult, error) {
	out := make([]kv.BulkResult, len(keys))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for i, k := range keys {
			out[i].Key = k
			if v := b.Get(keyBytes(k)); v != nil {
				out[i].Value = append([]byte(nil), v...)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) BulkGetRange(ctx context.Context, firstKey int64, n int64) ([]kv.BulkResult, error) {
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = firstKey + int64(i)
	}
	return s.BulkGet(ctx, keys)
}

func (s *Store) Insert(ctx context.Context, key int64, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get(keyBytes(key)) != nil {
			return sonerr.Newf(sonerr.KindDuplicateKey, "Insert: key %d already exists", key)
		}
		return b.Put(keyBytes(key), value)
	})
}

func (s *Store) Update(ctx context.Context, key int64, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get(keyBytes(key)) == nil {
			return sonerr.Newf(sonerr.KindMissingKey, "Update: key %d not found", key)
		}
		return b.Put(keyBytes(key), value)
	})
}

func (s *Store) Set(ctx context.Context, key int64, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(keyBytes(key), value)
	})
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

func (s *Store) IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error) {
	var result int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		cur := int64(0)
		if v := b.Get(keyBytes(key)); v != nil {
			if len(v) != 8 {
				return sonerr.Newf(sonerr.KindGeneral, "IncrementInt64: record is %d bytes, not 8", len(v))
			}
			cur = int64(binary.BigEndian.Uint64(v))
		}
		result = cur + delta
		out := make([]byte, 8)
		binary.BigEndian.PutUint64(out, uint64(result))
		return b.Put(keyBytes(key), out)
	})
	return result, err
}

func (s *Store) BulkSet(ctx context.Context, requests []kv.BulkSetRequest) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, r := range requests {
			if err := b.Put(keyBytes(r.Key), r.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) BulkRemove(ctx context.Context, keys []int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, k := range keys {
			if err := b.Delete(keyBytes(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Remove(ctx context.Context, key int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get(keyBytes(key)) == nil {
			return sonerr.Newf(sonerr.KindMissingKey, "Remove: key %d not found", key)
		}
		return b.Delete(keyBytes(key))
	})
}

func (s *Store) NumberOfRecords(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bolt.Tx) error {
		n = int64(tx.Bucket(bucketName).Stats().KeyN)
		return nil
	})
	return n, err
}

func (s *Store) DeleteFromDisk(ctx context.Context) error {
	path := s.path
	if err := s.db.Close(); err != nil {
		return sonerr.Wrap(sonerr.KindGeneral, err, "DeleteFromDisk: close")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return sonerr.Wrap(sonerr.KindGeneral, err, "DeleteFromDisk: remove file")
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
