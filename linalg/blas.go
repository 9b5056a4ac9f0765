// SPDX-License-Identifier: MIT

// Package linalg - BLAS level 1/2/3 wrappers bound to a Context.
//
// Purpose:
//   - Route every call through the Context's backend (no global blas64 state).
//   - Validate handles, views and shapes up front and return sentinels; the
//     backend's own panics are never reached from valid inputs.
//   - Hide the storage order: column-major operands are passed as their
//     row-major transposes with flipped transpose flags (see types.go).
package linalg

import "gonum.org/v1/gonum/blas"

const (
	opAxpy = "Axpy"
	opNrm2 = "Nrm2"
	opScal = "Scal"
	opAsum = "Asum"
	opDot  = "Dot"
	opGemv = "Gemv"
	opGemm = "Gemm"
	opTrsv = "Trsv"
)

// checkVectors validates the context and every vector view.
func checkVectors(ctx *Context, tag string, vs ...Vector) error {
	if err := ctx.check(tag); err != nil {
		return err
	}
	for _, v := range vs {
		if err := v.validate(); err != nil {
			return linalgErrorf(tag, err)
		}
	}

	return nil
}

// Axpy computes y += alpha·x.
func Axpy(ctx *Context, alpha float64, x, y Vector) error {
	if err := checkVectors(ctx, opAxpy, x, y); err != nil {
		return err
	}
	if x.Size != y.Size {
		return linalgErrorf(opAxpy, ErrDimensionMismatch)
	}
	ctx.blas.Daxpy(x.Size, alpha, x.Data, x.Stride, y.Data, y.Stride)

	return nil
}

// Nrm2 returns the Euclidean norm of x.
func Nrm2(ctx *Context, x Vector) (float64, error) {
	if err := checkVectors(ctx, opNrm2, x); err != nil {
		return 0, err
	}

	return ctx.blas.Dnrm2(x.Size, x.Data, x.Stride), nil
}

// Scal computes x *= alpha.
func Scal(ctx *Context, alpha float64, x Vector) error {
	if err := checkVectors(ctx, opScal, x); err != nil {
		return err
	}
	ctx.blas.Dscal(x.Size, alpha, x.Data, x.Stride)

	return nil
}

// Asum returns the sum of magnitudes of x.
func Asum(ctx *Context, x Vector) (float64, error) {
	if err := checkVectors(ctx, opAsum, x); err != nil {
		return 0, err
	}

	return ctx.blas.Dasum(x.Size, x.Data, x.Stride), nil
}

// Dot returns xᵀy.
func Dot(ctx *Context, x, y Vector) (float64, error) {
	if err := checkVectors(ctx, opDot, x, y); err != nil {
		return 0, err
	}
	if x.Size != y.Size {
		return 0, linalgErrorf(opDot, ErrDimensionMismatch)
	}

	return ctx.blas.Ddot(x.Size, x.Data, x.Stride, y.Data, y.Stride), nil
}

// Gemv computes y = alpha·op(A)·x + beta·y with op(A) = A or Aᵀ.
//
// Implementation:
//   - Stage 1: validate ctx, A, x, y.
//   - Stage 2: check len(x) = cols(op(A)), len(y) = rows(op(A)).
//   - Stage 3: call Dgemv on A's row-major storage with the flipped flag.
//
// Errors:
//   - ErrUnallocated, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func Gemv(ctx *Context, trans blas.Transpose, alpha float64, A *Matrix, x Vector, beta float64, y Vector) error {
	if err := checkVectors(ctx, opGemv, x, y); err != nil {
		return err
	}
	if err := A.validate(); err != nil {
		return linalgErrorf(opGemv, err)
	}
	rows, cols := A.Rows, A.Cols
	if isTrans(trans) {
		rows, cols = cols, rows
	}
	if x.Size != cols || y.Size != rows {
		return linalgErrorf(opGemv, ErrDimensionMismatch)
	}
	rr, rc := rawDims(A)
	ctx.blas.Dgemv(rawTrans(A, isTrans(trans)), rr, rc, alpha, A.Data, A.LD,
		x.Data, x.Stride, beta, y.Data, y.Stride)

	return nil
}

// Gemm computes C = alpha·op(A)·op(B) + beta·C.
//
// Implementation:
//   - Stage 1: validate ctx, A, B, C and conformability (M×K)(K×N) → M×N.
//   - Stage 2: row-major C: one Dgemm over raw A, raw B.
//     Column-major C: compute Cᵀ = op(B)ᵀ·op(A)ᵀ on raw storage.
//
// Errors:
//   - ErrUnallocated, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(M*N*K), Space O(1).
func Gemm(ctx *Context, transA, transB blas.Transpose, alpha float64, A, B *Matrix, beta float64, C *Matrix) error {
	if err := ctx.check(opGemm); err != nil {
		return err
	}
	for _, m := range []*Matrix{A, B, C} {
		if err := m.validate(); err != nil {
			return linalgErrorf(opGemm, err)
		}
	}
	tA, tB := isTrans(transA), isTrans(transB)
	m, k := A.Rows, A.Cols
	if tA {
		m, k = k, m
	}
	kb, n := B.Rows, B.Cols
	if tB {
		kb, n = n, kb
	}
	if k != kb || C.Rows != m || C.Cols != n {
		return linalgErrorf(opGemm, ErrDimensionMismatch)
	}
	if C.Order == RowMajor {
		ctx.blas.Dgemm(rawTrans(A, tA), rawTrans(B, tB), m, n, k, alpha,
			A.Data, A.LD, B.Data, B.LD, beta, C.Data, C.LD)
		return nil
	}
	ctx.blas.Dgemm(rawTrans(B, !tB), rawTrans(A, !tA), n, m, k, alpha,
		B.Data, B.LD, A.Data, A.LD, beta, C.Data, C.LD)

	return nil
}

// Trsv solves op(A)·x = b in place (x holds b on entry) for triangular A.
// uplo and diag describe A in logical (not storage) terms.
func Trsv(ctx *Context, uplo blas.Uplo, trans blas.Transpose, diag blas.Diag, A *Matrix, x Vector) error {
	if err := checkVectors(ctx, opTrsv, x); err != nil {
		return err
	}
	if err := A.validate(); err != nil {
		return linalgErrorf(opTrsv, err)
	}
	if A.Rows != A.Cols || x.Size != A.Rows {
		return linalgErrorf(opTrsv, ErrDimensionMismatch)
	}
	ul := uplo
	if A.Order == ColMajor {
		ul = flipUplo(uplo)
	}
	ctx.blas.Dtrsv(ul, rawTrans(A, isTrans(trans)), diag, A.Rows, A.Data, A.LD, x.Data, x.Stride)

	return nil
}
