// SPDX-License-Identifier: MIT

package linalg_test

import (
	"testing"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestSolveLUMatchesGonum solves a random well-conditioned system in both orders.
func TestSolveLUMatchesGonum(t *testing.T) {
	ctx := mustContext(t)
	const n = 5
	for _, order := range orders {
		t.Run(order.String(), func(t *testing.T) {
			A := randMatrix(t, n, n, order, 41)
			for i := 0; i < n; i++ { // diagonal dominance keeps it far from singular
				v, _ := A.At(i, i)
				require.NoError(t, A.Set(i, i, v+float64(n)))
			}
			b := []float64{1, -2, 3, -4, 5}

			var want mat.VecDense
			require.NoError(t, want.SolveVec(toMat(t, A), mat.NewVecDense(n, append([]float64(nil), b...))))

			x := linalg.VectorFromSlice(append([]float64(nil), b...))
			require.NoError(t, linalg.SolveLU(ctx, A, x, make([]int, n), 0))
			require.InDeltaSlice(t, want.RawVector().Data, x.ToSlice(), 1e-10)
		})
	}
}

// TestSolveLUSingular reports ErrSingular for exact and numerical rank loss and leaves x alone.
func TestSolveLUSingular(t *testing.T) {
	ctx := mustContext(t)
	cases := map[string][][]float64{
		"zero":       {{0, 0}, {0, 0}},
		"rank-one":   {{1, 2}, {2, 4}},
		"near-equal": {{1, 1}, {1, 1 + 1e-17}},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			A := mustMatrix(t, rows, linalg.ColMajor)
			x := linalg.VectorFromSlice([]float64{1, 1})
			err := linalg.SolveLU(ctx, A, x, make([]int, 2), 0)
			require.ErrorIs(t, err, linalg.ErrSingular)
			require.ErrorIs(t, err, linalg.ErrBackend)
			require.Equal(t, []float64{1, 1}, x.Data)
		})
	}
}

// TestLUFactorRcond checks the condition estimate on a diagonal matrix.
func TestLUFactorRcond(t *testing.T) {
	ctx := mustContext(t)
	A := mustMatrix(t, [][]float64{{4, 0}, {0, 1}}, linalg.RowMajor)
	rcond, err := linalg.LUFactor(ctx, A, make([]int, 2))
	require.NoError(t, err)
	require.InDelta(t, 0.25, rcond, 1e-12)

	x := linalg.VectorFromSlice([]float64{8, 3})
	require.NoError(t, linalg.LUSolve(ctx, A, x, make([]int, 2)))
	require.InDeltaSlice(t, []float64{2, 3}, x.ToSlice(), tol)
}

// TestSolveLUShapeErrors covers non-square and short-pivot inputs.
func TestSolveLUShapeErrors(t *testing.T) {
	ctx := mustContext(t)
	A := randMatrix(t, 2, 3, linalg.RowMajor, 5)
	_, err := linalg.LUFactor(ctx, A, make([]int, 3))
	require.ErrorIs(t, err, linalg.ErrDimensionMismatch)

	sq := randMatrix(t, 3, 3, linalg.RowMajor, 6)
	_, err = linalg.LUFactor(ctx, sq, make([]int, 2))
	require.ErrorIs(t, err, linalg.ErrDimensionMismatch)

	err = linalg.SolveLU(ctx, sq, linalg.VectorFromSlice([]float64{1, 2}), make([]int, 3), 0)
	require.ErrorIs(t, err, linalg.ErrDimensionMismatch)
}
