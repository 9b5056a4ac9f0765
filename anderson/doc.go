// SPDX-License-Identifier: MIT

// Package anderson implements a Type-II Anderson-mixing difference
// accelerator for fixed-point iterations x ← T(x).
//
// What & Why:
//
//	A plain fixed-point iteration converges linearly at best. Anderson mixing
//	keeps a sliding window of the last m differences of iterates (DX), map
//	outputs (DF) and residuals (DG) and, once the window is warm, replaces the
//	raw map output by the combination that minimizes the residual in the
//	least-squares sense:
//
//	  gamma   = (DXᵀ·DG)⁻¹ · (DXᵀ·f)
//	  iterate = iterate − DF·gamma
//
//	The window is a circular buffer over m = lookback−1 columns, so each call
//	costs O(n·m + m³) regardless of how many calls came before.
//
// Lifecycle:
//
//	var acc anderson.Accelerator
//	acc.Init(n, lookback)   // Uninitialized → Initialized
//	acc.SetX0(x0)           // → Seeded
//	for ... {
//	    T(x, out)           // caller's map
//	    acc.Accelerate(out) // → Running; out becomes the next x
//	}
//	acc.Free()              // → Freed; a second Free is ErrUnallocated
//
// Robustness:
//
//	A singular or ill-conditioned normal-equations matrix is not an error:
//	that call skips mixing and the sequence degrades to the plain iteration.
//	Stats reports how many mixes were applied and skipped.
//
// Reductions:
//
//	WithReduction projects iterates onto a sub-space before differencing, so
//	only part of a larger state vector drives the extrapolation.
//	PrefixReduction keeps a leading block.
//
// Concurrency:
//
//	An Accelerator is not safe for concurrent use. Separate instances own
//	separate contexts and buffers and may run in parallel.
package anderson
