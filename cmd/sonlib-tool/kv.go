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
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/benedictpaten/sonlib-go/internal/sonlog"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

func newKVCmd(fs afero.Fs, flags *rootFlags) *cobra.Command {
	kvCmd := &cobra.Command{
		Use:   "kv",
		Short: "Read and write records through the KV store contract",
	}

	kvCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored at key, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return sonerr.Wrap(sonerr.KindOutOfRange, err, "kv get: parse key")
			}
			store, err := openStore(cmd.Context(), fs, flags.configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			value, found, err := store.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !found {
				sonlog.Info("kv get: miss", "key", key)
				return sonerr.Newf(sonerr.KindMissingKey, "no record at key %d", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(value))
			return nil
		},
	})

	kvCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Upsert a value at key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return sonerr.Wrap(sonerr.KindOutOfRange, err, "kv set: parse key")
			}
			store, err := openStore(cmd.Context(), fs, flags.configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Set(cmd.Context(), key, []byte(args[1])); err != nil {
				return err
			}
			sonlog.Info("kv set", "key", key)
			return nil
		},
	})

	kvCmd.AddCommand(&cobra.Command{
		Use:   "incr <key> <delta>",
		Short: "Atomically add delta to the int64 stored at key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return sonerr.Wrap(sonerr.KindOutOfRange, err, "kv incr: parse key")
			}
			delta, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return sonerr.Wrap(sonerr.KindOutOfRange, err, "kv incr: parse delta")
			}
			store, err := openStore(cmd.Context(), fs, flags.configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			newValue, err := store.IncrementInt64(cmd.Context(), key, delta)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newValue)
			return nil
		},
	})

	kvCmd.AddCommand(&cobra.Command{
		Use:   "rm <key>",
		Short: "Remove the record at key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return sonerr.Wrap(sonerr.KindOutOfRange, err, "kv rm: parse key")
			}
			store, err := openStore(cmd.Context(), fs, flags.configPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Remove(cmd.Context(), key)
		},
	})

	kvCmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of records in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), fs, flags.configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.NumberOfRecords(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	})

	return kvCmd
}
