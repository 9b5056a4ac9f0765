// SPDX-License-Identifier: MIT
// Package linalg_test contains test helpers
//
// Purpose:
//   • Build small deterministic fixtures in either storage order.
//   • Convert views to gonum mat types for reference computations.

package linalg_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// tol is the absolute/relative tolerance used for floating-point comparisons.
const tol = 1e-12

// orders lists both storage layouts for table-driven tests.
var orders = []linalg.Order{linalg.RowMajor, linalg.ColMajor}

// mustContext creates a live context and registers its destruction.
func mustContext(t testing.TB) *linalg.Context {
	t.Helper()
	ctx, err := linalg.NewContext()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Destroy() })

	return ctx
}

// mustMatrix builds a matrix from row literals in the requested order.
func mustMatrix(t testing.TB, rows [][]float64, order linalg.Order) *linalg.Matrix {
	t.Helper()
	m, err := linalg.NewMatrix(len(rows), len(rows[0]), order)
	require.NoError(t, err)
	for i := range rows {
		for j := range rows[i] {
			require.NoError(t, m.Set(i, j, rows[i][j]))
		}
	}

	return m
}

// randMatrix builds an r×c matrix with entries in [-1,1) from a fixed seed.
func randMatrix(t testing.TB, r, c int, order linalg.Order, seed int64) *linalg.Matrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m, err := linalg.NewMatrix(r, c, order)
	require.NoError(t, err)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.NoError(t, m.Set(i, j, 2*rng.Float64()-1))
		}
	}

	return m
}

// toMat converts a view into a gonum *mat.Dense (row-major copy).
func toMat(t testing.TB, m *linalg.Matrix) *mat.Dense {
	t.Helper()
	out := mat.NewDense(m.Rows, m.Cols, nil)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			v, err := m.At(i, j)
			require.NoError(t, err)
			out.Set(i, j, v)
		}
	}

	return out
}

// requireMatrixApprox asserts m ≈ want entrywise.
func requireMatrixApprox(t testing.TB, want mat.Matrix, m *linalg.Matrix) {
	t.Helper()
	require.True(t, mat.EqualApprox(want, toMat(t, m), tol), "want\n%v\ngot\n%v",
		mat.Formatted(want), m)
}
