// Package optkit collects the numerical building blocks that first-order
// convex solvers lean on: diagonal preconditioning, step size bounds and
// fixed-point acceleration.
//
// 🚀 What is optkit?
//
//	A small, dependency-light toolkit that brings together:
//		• Dense and sparse operators behind one Apply/Adjoint contract
//		• Regularized Sinkhorn-Knopp equilibration (dense buffers and operators)
//		• Power-iteration estimates of the operator 2-norm
//		• Type-II Anderson acceleration of fixed-point maps
//
// ✨ Why choose optkit?
//
//   - Explicit resources: BLAS/LAPACK handles live in a linalg.Context
//   - Errors, not panics: every operation returns a wrapped sentinel
//   - Pure Go: gonum BLAS/LAPACK, no cgo
//   - Quiet by default: inject a zerolog.Logger to see what happens inside
//
// Packages:
//
//	linalg/      Context, strided Vector, Matrix in either storage order, BLAS/LAPACK
//	operator/    Dense, Sparse (CSR/CSC), Diagonal and Func operators + capability table
//	equil/       RegularizedSinkhornKnopp, OperatorRegularizedSinkhorn, EstimateNorm
//	anderson/    Accelerator (Init/SetX0/Accelerate/Free)
//	cmd/optkit   CLI over YAML problem files
//
// Quick example (scale a sparse operator in place):
//
//	op, _ := operator.FromTriplets(operator.KindSparseCSR, m, n, is, js, vs)
//	d, _ := linalg.NewVector(m)
//	e, _ := linalg.NewVector(n)
//	res, err := equil.OperatorRegularizedSinkhorn(nil, op, d, e, 1)
//
//	go get github.com/katalvlaran/optkit
package optkit
