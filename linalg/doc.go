// SPDX-License-Identifier: MIT

// Package linalg is the dense linear-algebra layer that the acceleration and
// equilibration engines are written against.
//
// What it provides:
//
//   - Context: an explicit execution handle bound to one BLAS and one LAPACK
//     backend (gonum pure-Go by default). Every numeric call takes it as the
//     first argument, so independent sessions never share hidden state.
//   - Matrix: a 2-D view (rows, cols, leading dimension, row/column-major).
//   - Vector: a strided 1-D view; Row/Col of a Matrix share its storage.
//   - Elementwise kernels (scale, add-constant, reciprocal, abs, pow, mul,
//     sub, copy, uniform fill) with contiguous fast paths.
//   - BLAS level 1/2/3 wrappers (Axpy, Nrm2, Scal, Asum, Dot, Gemv, Gemm, Trsv)
//     and a pivoted LU factor/solve with a condition-number guard.
//   - The shared status taxonomy (ErrUnallocated, ErrOverwrite, ...) and the
//     FirstErr/MaxErr accumulation helpers used by every package.
//
// Layout:
//
//	gonum's BLAS and LAPACK are row-major. A column-major m×n matrix with
//	leading dimension ld is handed to them as the row-major n×m matrix with
//	the same ld, and the requested transpose is flipped accordingly. Callers
//	never see this; they pick whichever Order suits their column access.
//
// Concurrency:
//
//	A Context is NOT safe for concurrent use. Views carry no locks either;
//	one logical call sequence per Context at a time.
//
// Usage:
//
//	ctx, err := linalg.NewContext()
//	if err != nil { ... }
//	defer ctx.Destroy()
//
//	A, _ := linalg.NewMatrix(3, 3, linalg.ColMajor)
//	x, _ := linalg.NewVector(3)
//	y, _ := linalg.NewVector(3)
//	_ = linalg.Gemv(ctx, blas.NoTrans, 1, A, x, 0, y)
package linalg
