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
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/benedictpaten/sonlib-go/internal/sonlog"
)

type rootFlags struct {
	configPath string
	logFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	fs := afero.NewOsFs()

	root := &cobra.Command{
		Use:           "sonlib-tool",
		Short:         "KV store and phylogenetic inference CLI for sonlib-go",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zapcore.ParseLevel(flags.logLevel)
			if err != nil {
				return err
			}
			sonlog.Configure(level, flags.logFile, 100)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a st_kv_database_conf XML or JSON document")
	root.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "write logs to this file instead of stderr")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newKVCmd(fs, flags))
	root.AddCommand(newPhyloCmd(fs))
	root.AddCommand(newVersionCmd())

	return root
}
