// SPDX-License-Identifier: MIT
// Package: equil
//
// Purpose:
//   - Regularized Sinkhorn-Knopp scaling for dense buffers and transformable
//     operators, sharing one iteration driven by Apply/Adjoint.
//
// Determinism & Performance:
//   - Deterministic for a fixed input; no randomness.
//   - Per round: one Apply, one Adjoint and O(rows+cols) vector work.
//   - Allocates the two residual vectors (and, for operators, one snapshot
//     of the stored entries) per call.

package equil

import (
	"fmt"
	"math"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/katalvlaran/optkit/operator"
)

const (
	opDense    = "RegularizedSinkhornKnopp"
	opOperator = "OperatorRegularizedSinkhorn"
)

// Result reports how a Sinkhorn-Knopp call ended.
type Result struct {
	Iterations int     // rounds executed
	NormD      float64 // ‖d − d_prev‖₂ of the last round
	NormE      float64 // ‖e − e_prev‖₂ of the last round
	Converged  bool    // both norms fell below the tolerance
}

// RegularizedSinkhornKnopp computes row scales d and column scales e for the
// rows×cols matrix stored in aIn (layout given by order) and writes
// diag(d)·aIn·diag(e) into aOut.
//
// Implementation:
//   - Stage 1: validate aOut, d, e and len(aIn) = rows·cols before any write.
//   - Stage 2: aOut := |aIn|; d := 1; e := 0.
//   - Stage 3: up to maxIter rounds of
//     e = Aᵀd; e += ε/len(e); e = 1/e; e *= len(d)
//     d = A·e; d += ε/len(d); d = 1/d; d *= len(e)
//     stopping once ‖d−d_prev‖₂ and ‖e−e_prev‖₂ are both below tol.
//   - Stage 4: aOut := aIn; scale rows by d and columns by e.
//
// Errors:
//   - ErrDimensionMismatch, ErrUnallocated (nothing written).
//   - Backend errors from the context.
//
// Complexity:
//   - Time O(iter·rows·cols), Space O(rows+cols).
func RegularizedSinkhornKnopp(ctx *linalg.Context, aIn []float64, aOut *linalg.Matrix, d, e linalg.Vector, order linalg.Order, opts ...Option) (Result, error) {
	o := gatherOptions(DefaultSinkhornMaxIter, DefaultSinkhornTolerance, opts...)
	if aIn == nil {
		return Result{}, fmt.Errorf("%s: A_in: %w", opDense, linalg.ErrUnallocated)
	}
	if err := linalg.ValidateScalings(aOut, d, e); err != nil {
		return Result{}, fmt.Errorf("%s: %w", opDense, err)
	}
	in, err := linalg.MatrixFromSlice(aOut.Rows, aOut.Cols, aIn, order)
	if err != nil {
		return Result{}, fmt.Errorf("%s: A_in: %w", opDense, err)
	}

	var res Result
	err = withContext(ctx, opDense, o, func(c *linalg.Context) error {
		if err := aOut.CopyFrom(in); err != nil {
			return err
		}
		if err := aOut.Abs(); err != nil {
			return err
		}
		if err := linalg.FirstErr(d.SetAll(1), e.SetAll(0)); err != nil {
			return err
		}
		var iterErr error
		res, iterErr = iterate(c, &operator.Dense{M: aOut}, d, e, o)
		if iterErr != nil {
			return iterErr
		}
		err := aOut.CopyFrom(in)
		err = linalg.FirstErr(err, aOut.ScaleRows(d))

		return linalg.FirstErr(err, aOut.ScaleCols(e))
	})
	if err != nil {
		return res, fmt.Errorf("%s: %w", opDense, err)
	}
	logResult(o, opDense, res)

	return res, nil
}

// OperatorRegularizedSinkhorn scales a dense or sparse operator in place:
// A := diag(d)·A·diag(e), with d and e computed on |A|^pnorm and mapped back
// by the power 1/pnorm.
//
// Implementation:
//   - Stage 1: capability check (AsTransformable), then dims and pnorm.
//   - Stage 2: snapshot entries (Export), A := |A|, A := A^pnorm when pnorm ≠ 1.
//   - Stage 3: the Sinkhorn-Knopp rounds of RegularizedSinkhornKnopp via
//     Apply/Adjoint, with the same successive-round residual test.
//   - Stage 4: d, e ^= 1/pnorm; restore entries (Import); scale left by d
//     and right by e.
//
// Behavior highlights:
//   - Unsupported kinds fail before d or e are touched.
//   - When a later stage fails the original entries, d and e are restored.
//
// Errors:
//   - ErrUnsupportedOperator for diagonal/abstract kinds.
//   - ErrDimensionMismatch for len(d) != rows or len(e) != cols.
//   - ErrOutOfBounds for pnorm that is not finite and positive.
//   - ErrUnallocated for a nil or typed-nil operator or dead context.
//
// Complexity:
//   - Time O(iter·cost(Apply+Adjoint) + nnz), Space O(nnz + rows + cols).
func OperatorRegularizedSinkhorn(ctx *linalg.Context, op operator.Operator, d, e linalg.Vector, pnorm float64, opts ...Option) (Result, error) {
	o := gatherOptions(DefaultSinkhornMaxIter, DefaultSinkhornTolerance, opts...)
	t, err := operator.AsTransformable(op)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", opOperator, err)
	}
	rows, cols := t.Dims()
	if err = linalg.FirstErr(linalg.ValidateVecLen(d, rows), linalg.ValidateVecLen(e, cols)); err != nil {
		return Result{}, fmt.Errorf("%s: %w", opOperator, err)
	}
	if math.IsNaN(pnorm) || math.IsInf(pnorm, 0) || pnorm <= 0 {
		return Result{}, fmt.Errorf("%s: pnorm=%g: %w", opOperator, pnorm, linalg.ErrOutOfBounds)
	}

	var res Result
	err = withContext(ctx, opOperator, o, func(c *linalg.Context) (err error) {
		snapshot, err := t.Export()
		if err != nil {
			return err
		}
		d0, e0, err := copyScales(d, e)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				undo := linalg.FirstErr(t.Import(snapshot), linalg.FirstErr(d.CopyFrom(d0), e.CopyFrom(e0)))
				err = linalg.MaxErr(err, undo)
			}
		}()
		if err = t.Abs(); err != nil {
			return err
		}
		if err = d.SetAll(1); err != nil {
			return err
		}
		if pnorm != 1 {
			if err = t.Pow(pnorm); err != nil {
				return err
			}
		}
		if res, err = iterate(c, t, d, e, o); err != nil {
			return err
		}
		if pnorm != 1 {
			if err = linalg.FirstErr(d.Pow(1/pnorm), e.Pow(1/pnorm)); err != nil {
				return err
			}
		}
		if err = t.Import(snapshot); err != nil {
			return err
		}
		if err = t.ScaleLeft(d); err != nil {
			return err
		}

		return t.ScaleRight(e)
	})
	if err != nil {
		return res, fmt.Errorf("%s: %w", opOperator, err)
	}
	logResult(o, opOperator, res)

	return res, nil
}

// copyScales returns fresh copies of d and e.
func copyScales(d, e linalg.Vector) (linalg.Vector, linalg.Vector, error) {
	d0, err := linalg.NewVector(d.Size)
	if err != nil {
		return d0, d0, err
	}
	e0, err := linalg.NewVector(e.Size)
	if err != nil {
		return d0, e0, err
	}

	return d0, e0, linalg.FirstErr(d0.CopyFrom(d), e0.CopyFrom(e))
}

// iterate runs the Sinkhorn-Knopp rounds on a non-negative operator.
// d must hold the starting row scales; e is overwritten in the first round.
func iterate(ctx *linalg.Context, op operator.Operator, d, e linalg.Vector, o Options) (Result, error) {
	var res Result
	rows, cols := d.Size, e.Size
	dDiff, err := linalg.NewVector(rows)
	if err != nil {
		return res, err
	}
	eDiff, err := linalg.NewVector(cols)
	if err != nil {
		return res, err
	}
	m, n := float64(rows), float64(cols)

	for k := 0; k < o.maxIter; k++ {
		// e = 1 / (Aᵀd + ε/n) · m
		err = op.Adjoint(ctx, d, e)
		err = linalg.FirstErr(err, e.AddConstant(o.reg/n))
		err = linalg.FirstErr(err, e.Recip())
		err = linalg.FirstErr(err, e.Scale(m))

		// d = 1 / (A·e + ε/m) · n
		err = linalg.FirstErr(err, op.Apply(ctx, e, d))
		err = linalg.FirstErr(err, d.AddConstant(o.reg/m))
		err = linalg.FirstErr(err, d.Recip())
		err = linalg.FirstErr(err, d.Scale(n))

		// residuals against the previous round
		err = linalg.FirstErr(err, linalg.Axpy(ctx, -1, d, dDiff))
		err = linalg.FirstErr(err, linalg.Axpy(ctx, -1, e, eDiff))
		if err != nil {
			return res, err
		}
		if res.NormD, err = linalg.Nrm2(ctx, dDiff); err != nil {
			return res, err
		}
		if res.NormE, err = linalg.Nrm2(ctx, eDiff); err != nil {
			return res, err
		}
		res.Iterations = k + 1
		if res.NormD < o.tol && res.NormE < o.tol {
			res.Converged = true
			break
		}
		if err = linalg.FirstErr(dDiff.CopyFrom(d), eDiff.CopyFrom(e)); err != nil {
			return res, err
		}
	}

	return res, nil
}

func logResult(o Options, tag string, res Result) {
	ev := o.logger.Debug()
	if !res.Converged {
		ev = o.logger.Warn()
	}
	ev.Str("op", tag).
		Int("iterations", res.Iterations).
		Float64("norm_d", res.NormD).
		Float64("norm_e", res.NormE).
		Bool("converged", res.Converged).
		Msg("equil: sinkhorn-knopp finished")
}
