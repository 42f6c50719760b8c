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
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/benedictpaten/sonlib-go/matrix"
	"github.com/benedictpaten/sonlib-go/newick"
	"github.com/benedictpaten/sonlib-go/phylogeny"
	"github.com/benedictpaten/sonlib-go/sonerr"
)

func newPhyloCmd(fs afero.Fs) *cobra.Command {
	var outgroupsFlag string

	phyloCmd := &cobra.Command{
		Use:   "phylo",
		Short: "Build trees from distance matrices via neighbor-joining",
	}

	njCmd := &cobra.Command{
		Use:   "nj <matrix-file>",
		Short: "Run neighbor-joining over a plain-text distance matrix and print the result as Newick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := afero.ReadFile(fs, args[0])
			if err != nil {
				return sonerr.Wrap(sonerr.KindGeneral, err, "phylo nj: read matrix file")
			}
			dist, err := parseDistanceMatrix(data)
			if err != nil {
				return err
			}
			outgroups, err := parseOutgroups(outgroupsFlag)
			if err != nil {
				return err
			}

			root, err := phylogeny.NeighborJoining[struct{}](dist, outgroups)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newick.Serialize[phylogeny.Info[struct{}]](root))
			return nil
		},
	}
	njCmd.Flags().StringVar(&outgroupsFlag, "outgroups", "", "comma-separated leaf indices to root against")
	phyloCmd.AddCommand(njCmd)

	return phyloCmd
}

// parseDistanceMatrix reads a matrix file shaped as:
//
//	<n>
//	<row 0: n whitespace-separated floats>
//	...
//	<row n-1>
func parseDistanceMatrix(data []byte) (*matrix.Matrix, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, sonerr.New(sonerr.KindConfigInvalid, "parseDistanceMatrix: empty file")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, sonerr.Wrap(sonerr.KindConfigInvalid, err, "parseDistanceMatrix: first line must be the leaf count")
	}

	m := matrix.New(n, n)
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return nil, sonerr.Newf(sonerr.KindConfigInvalid, "parseDistanceMatrix: expected %d rows, got %d", n, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != n {
			return nil, sonerr.Newf(sonerr.KindConfigInvalid, "parseDistanceMatrix: row %d has %d entries, want %d", i, len(fields), n)
		}
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, sonerr.Wrapf(sonerr.KindConfigInvalid, err, "parseDistanceMatrix: row %d col %d", i, j)
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}

func parseOutgroups(flag string) ([]int, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return nil, nil
	}
	var out []int
	for _, s := range strings.Split(flag, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, sonerr.Wrapf(sonerr.KindOutOfRange, err, "parseOutgroups: %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}
