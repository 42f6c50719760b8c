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

// Package matrix implements the dense matrix and small weighted graph of
// spec C4.
package matrix

import (
	"math"

	"github.com/benedictpaten/sonlib-go/sonerr"
)

// Matrix is a row-major n×m matrix of float64.
type Matrix struct {
	N, M  int
	cells []float64
}

// New returns an n×m zero matrix.
func New(n, m int) *Matrix {
	return &Matrix{N: n, M: m, cells: make([]float64, n*m)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func (m *Matrix) idx(r, c int) int { return r*m.M + c }

// Get returns cell (r, c).
func (m *Matrix) Get(r, c int) float64 { return m.cells[m.idx(r, c)] }

// Set assigns cell (r, c).
func (m *Matrix) Set(r, c int, v float64) { m.cells[m.idx(r, c)] = v }

func checkShape(a, b *Matrix) error {
	if a.N != b.N || a.M != b.M {
		return sonerr.Newf(sonerr.KindMatrixShapeMismatch, "shape (%d,%d) vs (%d,%d)", a.N, a.M, b.N, b.M)
	}
	return nil
}

// Add returns a+b elementwise. Fails MATRIX_SHAPE_MISMATCH on shape
// disagreement.
func Add(a, b *Matrix) (*Matrix, error) {
	if err := checkShape(a, b); err != nil {
		return nil, err
	}
	out := New(a.N, a.M)
	for i := range out.cells {
		out.cells[i] = a.cells[i] + b.cells[i]
	}
	return out, nil
}

// Multiply returns a*b, shape-checked: a.M must equal b.N.
func Multiply(a, b *Matrix) (*Matrix, error) {
	if a.M != b.N {
		return nil, sonerr.Newf(sonerr.KindMatrixShapeMismatch, "multiply: a is (%d,%d), b is (%d,%d)", a.N, a.M, b.N, b.M)
	}
	out := New(a.N, b.M)
	for i := 0; i < a.N; i++ {
		for k := 0; k < a.M; k++ {
			aik := a.Get(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < b.M; j++ {
				out.Set(i, j, out.Get(i, j)+aik*b.Get(k, j))
			}
		}
	}
	return out, nil
}

// MultiplyVector returns a*v. Fails MATRIX_SHAPE_MISMATCH if len(v) != a.M.
func MultiplyVector(a *Matrix, v []float64) ([]float64, error) {
	if len(v) != a.M {
		return nil, sonerr.Newf(sonerr.KindMatrixShapeMismatch, "multiplyVector: matrix has %d cols, vector has %d", a.M, len(v))
	}
	out := make([]float64, a.N)
	for i := 0; i < a.N; i++ {
		var sum float64
		for j := 0; j < a.M; j++ {
			sum += a.Get(i, j) * v[j]
		}
		out[i] = sum
	}
	return out, nil
}

// ScaleAndAdd returns scale*a + b, shape-checked.
func ScaleAndAdd(scale float64, a, b *Matrix) (*Matrix, error) {
	if err := checkShape(a, b); err != nil {
		return nil, err
	}
	out := New(a.N, a.M)
	for i := range out.cells {
		out.cells[i] = scale*a.cells[i] + b.cells[i]
	}
	return out, nil
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := New(m.N, m.M)
	copy(out.cells, m.cells)
	return out
}

// Equal reports whether a and b agree cell-by-cell within epsilon. Matrices
// of different shape are never equal.
func Equal(a, b *Matrix, epsilon float64) bool {
	if a.N != b.N || a.M != b.M {
		return false
	}
	for i := range a.cells {
		if math.Abs(a.cells[i]-b.cells[i]) > epsilon {
			return false
		}
	}
	return true
}

// JukesCantor returns the standard n-letter-alphabet Jukes-Cantor
// substitution matrix for evolutionary distance d: diagonal entries are
// 1/n + (n-1)/n * exp(-n*d/(n-1)), off-diagonal entries are
// 1/n - 1/n * exp(-n*d/(n-1)). For d == 0 this is the identity matrix.
func JukesCantor(d float64, n int) *Matrix {
	out := New(n, n)
	if n == 1 {
		out.Set(0, 0, 1)
		return out
	}
	nf := float64(n)
	exp := math.Exp(-nf * d / (nf - 1))
	diag := 1/nf + (nf-1)/nf*exp
	off := 1/nf - 1/nf*exp
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				out.Set(i, j, diag)
			} else {
				out.Set(i, j, off)
			}
		}
	}
	return out
}
