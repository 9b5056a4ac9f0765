// SPDX-License-Identifier: MIT

// Package equil computes diagonal equilibration scalings and operator norm
// estimates.
//
// What & Why:
//
//	Ill-scaled problem data slows first-order solvers. Regularized
//	Sinkhorn-Knopp finds row scales d and column scales e so that
//	diag(d)·|A|·diag(e) has rows and columns of comparable 1-norm; the small
//	regularization keeps all-zero rows and columns from producing Inf.
//	EstimateNorm runs power iteration on AᵀA to approximate ‖A‖₂, the step
//	size bound most splitting methods need.
//
// Entry points:
//
//   - RegularizedSinkhornKnopp: dense input buffer → scaled dense output.
//   - OperatorRegularizedSinkhorn: scales a transformable operator in place,
//     optionally in a p-norm sense (pnorm ≠ 1).
//   - EstimateNorm: any operator, products only.
//
// Contexts:
//
//	Every entry point takes a *linalg.Context. Passing nil creates a
//	temporary context that is destroyed on every exit path; a release failure
//	is folded into the returned error with linalg.MaxErr.
//
// Convergence:
//
//	Running out of iterations is not an error. Sinkhorn calls report it in
//	Result.Converged; EstimateNorm returns its last estimate.
package equil
