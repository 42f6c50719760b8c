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

// Package ktrpc is the remote cache server's wire contract, per spec §1's
// explicit non-goal: "the concrete wire details of the remote cache server
// ... only the contract it must satisfy matters." No server is specified
// or provided here — only a thin gRPC client exercising that contract
// against whatever conn the caller dials. Request and response payloads
// are generic structpb.Struct documents rather than a hand-maintained
// .proto-generated message set, since no concrete server schema is in
// scope.
package ktrpc

import (
	"context"
	"encoding/base64"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a small hand-written gRPC client for the remote cache.
type Client struct {
	cc *grpc.ClientConn
}

// NewClient wraps an already-dialed connection.
func NewClient(cc *grpc.ClientConn) *Client { return &Client{cc: cc} }

func keyString(key int64) string { return strconv.FormatInt(key, 10) }

func encodeBytes(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func decodeBytes(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

func (c *Client) call(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get fetches the value for key; found is false on a miss.
func (c *Client) Get(ctx context.Context, key int64) (value []byte, found bool, err error) {
	resp, err := c.call(ctx, "/ktrpc.KTCache/Get", map[string]any{"key": keyString(key)})
	if err != nil {
		return nil, false, err
	}
	f, ok := resp.Fields["found"]
	if !ok || !f.GetBoolValue() {
		return nil, false, nil
	}
	v, err := decodeBytes(resp.Fields["value"].GetStringValue())
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Contains reports whether key exists on the remote.
func (c *Client) Contains(ctx context.Context, key int64) (bool, error) {
	resp, err := c.call(ctx, "/ktrpc.KTCache/Contains", map[string]any{"key": keyString(key)})
	if err != nil {
		return false, err
	}
	return resp.Fields["found"].GetBoolValue(), nil
}

// Set writes key/value, upserting.
func (c *Client) Set(ctx context.Context, key int64, value []byte) error {
	_, err := c.call(ctx, "/ktrpc.KTCache/Set", map[string]any{
		"key": keyString(key), "value": encodeBytes(value),
	})
	return err
}

// Remove deletes key; the contract is idempotent (no error on a miss),
// matching a typical cache server's semantics — callers wanting
// KV_MISSING_KEY semantics check Contains first.
func (c *Client) Remove(ctx context.Context, key int64) error {
	_, err := c.call(ctx, "/ktrpc.KTCache/Remove", map[string]any{"key": keyString(key)})
	return err
}

// IncrementInt64 is the remote's native atomic increment (spec §4.5).
func (c *Client) IncrementInt64(ctx context.Context, key int64, delta int64) (int64, error) {
	resp, err := c.call(ctx, "/ktrpc.KTCache/Increment", map[string]any{
		"key": keyString(key), "delta": keyString(delta),
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(resp.Fields["result"].GetStringValue(), 10, 64)
}

// BulkGet fetches many keys in one round trip.
func (c *Client) BulkGet(ctx context.Context, keys []int64) (map[int64][]byte, error) {
	keyStrs := make([]any, len(keys))
	for i, k := range keys {
		keyStrs[i] = keyString(k)
	}
	resp, err := c.call(ctx, "/ktrpc.KTCache/BulkGet", map[string]any{"keys": keyStrs})
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]byte)
	entries := resp.Fields["entries"].GetStructValue()
	if entries == nil {
		return out, nil
	}
	for ks, v := range entries.Fields {
		k, perr := strconv.ParseInt(ks, 10, 64)
		if perr != nil {
			continue
		}
		b, derr := decodeBytes(v.GetStringValue())
		if derr != nil {
			return nil, derr
		}
		out[k] = b
	}
	return out, nil
}

// BulkSet writes many key/value pairs in one round trip.
func (c *Client) BulkSet(ctx context.Context, kvs map[int64][]byte) error {
	entries := make(map[string]any, len(kvs))
	for k, v := range kvs {
		entries[keyString(k)] = encodeBytes(v)
	}
	_, err := c.call(ctx, "/ktrpc.KTCache/BulkSet", map[string]any{"entries": entries})
	return err
}

// NumberOfRecords reports the remote's total record count.
func (c *Client) NumberOfRecords(ctx context.Context) (int64, error) {
	resp, err := c.call(ctx, "/ktrpc.KTCache/NumberOfRecords", map[string]any{})
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(resp.Fields["count"].GetStringValue(), 10, 64)
}

// DeleteFromDisk destroys all remote state for this database.
func (c *Client) DeleteFromDisk(ctx context.Context) error {
	_, err := c.call(ctx, "/ktrpc.KTCache/DeleteFromDisk", map[string]any{})
	return err
}
