// SPDX-License-Identifier: MIT

package linalg

import (
	"math"

	"gonum.org/v1/gonum/lapack"
)

const (
	opLUFactor = "LUFactor"
	opLUSolve  = "LUSolve"
	opSolveLU  = "SolveLU"
)

// DefaultRcondMin is the reciprocal condition number below which SolveLU
// reports a factorization as numerically singular (float64 unit roundoff).
const DefaultRcondMin = 0x1p-53

// LUFactor computes the pivoted factorization P·A = L·U in place and returns
// an estimate of A's reciprocal condition number.
//
// Implementation:
//   - Stage 1: validate ctx, square A and len(pivot) >= n.
//   - Stage 2: norm of A (before it is overwritten), then Dgetrf.
//   - Stage 3: exact zero pivot → ErrSingular; else Dgecon estimate.
//
// Behavior highlights:
//   - A holds the factors afterwards even when ErrSingular is returned.
//
// Errors:
//   - ErrUnallocated, ErrDimensionMismatch, ErrSingular.
//
// Complexity:
//   - Time O(n³), Space O(n) workspace.
func LUFactor(ctx *Context, A *Matrix, pivot []int) (float64, error) {
	if err := ctx.check(opLUFactor); err != nil {
		return 0, err
	}
	if err := A.validate(); err != nil {
		return 0, linalgErrorf(opLUFactor, err)
	}
	n := A.Rows
	if A.Cols != n || len(pivot) < n {
		return 0, linalgErrorf(opLUFactor, ErrDimensionMismatch)
	}
	work := make([]float64, 4*n)
	iwork := make([]int, n)
	anorm := ctx.lapack.Dlange(lapack.MaxColumnSum, n, n, A.Data, A.LD, work)
	if ok := ctx.lapack.Dgetrf(n, n, A.Data, A.LD, pivot[:n]); !ok {
		return 0, linalgErrorf(opLUFactor, ErrSingular)
	}
	if anorm == 0 || math.IsNaN(anorm) || math.IsInf(anorm, 0) {
		return 0, linalgErrorf(opLUFactor, ErrSingular)
	}
	rcond := ctx.lapack.Dgecon(lapack.MaxColumnSum, n, A.Data, A.LD, anorm, work, iwork)

	return rcond, nil
}

// LUSolve solves A·x = b in place using factors produced by LUFactor on the
// same Matrix (x holds b on entry).
func LUSolve(ctx *Context, LU *Matrix, x Vector, pivot []int) error {
	if err := checkVectors(ctx, opLUSolve, x); err != nil {
		return err
	}
	if err := LU.validate(); err != nil {
		return linalgErrorf(opLUSolve, err)
	}
	n := LU.Rows
	if LU.Cols != n || x.Size != n || len(pivot) < n {
		return linalgErrorf(opLUSolve, ErrDimensionMismatch)
	}
	// x is passed as a row-major n×1 matrix: element i at Data[i*Stride].
	ctx.lapack.Dgetrs(rawTrans(LU, false), n, 1, LU.Data, LU.LD, pivot[:n], x.Data, x.Stride)

	return nil
}

// SolveLU factors A in place and solves A·x = b, treating any factorization
// whose reciprocal condition number is below rcondMin as singular.
// rcondMin <= 0 selects DefaultRcondMin.
//
// Errors:
//   - ErrSingular when the system is (numerically) singular; x is untouched then.
//   - ErrUnallocated, ErrDimensionMismatch.
//
// AI-Hints:
//   - Callers that can degrade gracefully should test errors.Is(err, ErrSingular)
//     and skip the update instead of aborting.
func SolveLU(ctx *Context, A *Matrix, x Vector, pivot []int, rcondMin float64) error {
	if rcondMin <= 0 {
		rcondMin = DefaultRcondMin
	}
	if err := checkVectors(ctx, opSolveLU, x); err != nil {
		return err
	}
	if A != nil && x.Size != A.Rows {
		return linalgErrorf(opSolveLU, ErrDimensionMismatch)
	}
	rcond, err := LUFactor(ctx, A, pivot)
	if err != nil {
		return linalgErrorf(opSolveLU, err)
	}
	if rcond < rcondMin {
		return linalgErrorf(opSolveLU, ErrSingular)
	}

	return LUSolve(ctx, A, x, pivot)
}
