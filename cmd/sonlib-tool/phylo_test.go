// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestParseDistanceMatrix(t *testing.T) {
	data := []byte("3\n0 2 11\n2 0 11\n11 11 0\n")
	m, err := parseDistanceMatrix(data)
	require.NoError(t, err)
	require.Equal(t, 3, m.N)
	require.Equal(t, 3, m.M)
	require.Equal(t, 11.0, m.Get(2, 0))
}

func TestParseDistanceMatrixRejectsMismatchedRow(t *testing.T) {
	data := []byte("3\n0 2\n2 0 11\n11 11 0\n")
	_, err := parseDistanceMatrix(data)
	require.Error(t, err)
}

func TestParseOutgroups(t *testing.T) {
	out, err := parseOutgroups("1, 3,5")
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 5}, out)

	out, err = parseOutgroups("")
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestParseOutgroupsRejectsNonInteger(t *testing.T) {
	_, err := parseOutgroups("1,x")
	require.Error(t, err)
}

func TestPhyloNJCommandPrintsNewick(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "dist.txt", []byte("4\n0 2 11 11\n2 0 11 11\n11 11 0 2\n11 11 2 0\n"), 0o644))

	cmd := newPhyloCmd(fs)
	cmd.SetArgs([]string{"nj", "dist.txt"})
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), ";")
}
