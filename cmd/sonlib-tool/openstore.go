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

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/benedictpaten/sonlib-go/kv"
	"github.com/benedictpaten/sonlib-go/kv/backend/boltstore"
	"github.com/benedictpaten/sonlib-go/kv/backend/ktcache"
	"github.com/benedictpaten/sonlib-go/kv/backend/ktcache/ktrpc"
	"github.com/benedictpaten/sonlib-go/kv/backend/mysqltable"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

// openStore reads the config document at path off fs and dials up the
// backend it names.
func openStore(ctx context.Context, fs afero.Fs, path string) (kv.Store, error) {
	if path == "" {
		return nil, sonerr.New(sonerr.KindConfigInvalid, "openStore: --config is required")
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, sonerr.Wrap(sonerr.KindConfigInvalid, err, "openStore: read config")
	}

	var cfg *kv.Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err = kv.ParseConfigJSON(data)
	} else {
		cfg, err = kv.ParseConfigXML(data)
	}
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case kv.BackendEmbeddedBTree:
		return boltstore.Open(cfg.DatabaseDir)
	case kv.BackendRelational:
		dsn := mysqltable.DSN(cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DatabaseName)
		return mysqltable.Open(ctx, dsn, cfg.TableName)
	case kv.BackendRemoteCache:
		cc, err := grpc.NewClient(
			fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, sonerr.Wrap(sonerr.KindGeneral, err, "openStore: dial kyoto_tycoon")
		}
		remote := ktrpc.NewClient(cc)
		limits := ktcache.Limits{
			MaxRecordSize:        cfg.MaxRecordSize,
			MaxBulkSetSize:       cfg.MaxBulkSetSize,
			MaxBulkSetNumRecords: cfg.MaxBulkSetNumRecords,
		}
		return ktcache.Open(remote, limits, cfg.DatabaseDir, cfg.DatabaseName)
	default:
		return nil, sonerr.Newf(sonerr.KindConfigInvalid, "openStore: unsupported backend %q", cfg.Type)
	}
}
