// SPDX-License-Identifier: MIT

// Package operator defines linear operators consumed by the equilibration and
// norm-estimation engines, together with the capability table that decides
// which of them may be transformed in place.
//
// What & Why:
//
//	Every Operator can apply itself (y = A·x) and its adjoint (x = Aᵀ·y).
//	Equilibration additionally needs to snapshot, take magnitudes, raise to a
//	power, rescale and restore the stored entries. Only operators that own an
//	explicit entry array can do that, so the extra capability lives in the
//	Transformable interface and AsTransformable grants it by Kind:
//
//	  Kind            Apply/Adjoint   Transformable
//	  KindDense       yes             yes (*Dense)
//	  KindSparseCSR   yes             yes (*Sparse)
//	  KindSparseCSC   yes             yes (*Sparse)
//	  KindDiagonal    yes             no  (*Diagonal)
//	  KindAbstract    yes             no  (*Func)
//	  KindInvalid     -               no  (zero value, e.g. &Sparse{})
//
// Contexts:
//
//	Apply and Adjoint take the *linalg.Context of the caller. Dense operators
//	route through BLAS and require a live context; sparse, diagonal and
//	function operators ignore it (nil is accepted).
//
// Errors:
//
//	All methods return the linalg sentinels (ErrDimensionMismatch,
//	ErrUnallocated, ErrUnsupportedOperator) wrapped with a call-site tag.
//
// Concurrency:
//
//	Operators are not safe for concurrent mutation. Concurrent Apply calls on
//	an operator nobody is transforming are fine for *Sparse and *Diagonal.
package operator
