// SPDX-License-Identifier: MIT

package equil

import (
	"fmt"
	"math"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/katalvlaran/optkit/operator"
)

const opNorm = "EstimateNorm"

// EstimateNorm approximates the spectral norm ‖A‖₂ by power iteration on AᵀA:
//
//	‖A‖ ≈ ‖(AᵀA)ⁿx‖ / ‖A(AᵀA)ⁿ⁻¹x‖
//
// for a random start x ~ U[0,1)^cols.
//
// Implementation:
//   - Stage 1: draw x from WithRand's source or the process-wide one.
//   - Stage 2: up to maxIter rounds of Ax = A·x; x = Aᵀ·Ax;
//     est = ‖x‖/‖Ax‖; x /= ‖x‖; stop once |est_prev − est| <= tol·est.
//
// Errors:
//   - ErrDivideByZero when ‖x‖ or ‖Ax‖ vanishes (e.g. the zero operator).
//   - ErrUnallocated for a nil or typed-nil operator or dead context.
//   - Errors returned by the operator's products.
//
// Complexity:
//   - Time O(iter·cost(Apply+Adjoint)), Space O(rows+cols).
func EstimateNorm(ctx *linalg.Context, op operator.Operator, opts ...Option) (float64, error) {
	o := gatherOptions(DefaultNormMaxIter, DefaultNormTolerance, opts...)
	if !operator.Allocated(op) {
		return 0, fmt.Errorf("%s: %w", opNorm, linalg.ErrUnallocated)
	}
	rows, cols := op.Dims()
	if rows <= 0 || cols <= 0 {
		return 0, fmt.Errorf("%s: empty operator: %w", opNorm, linalg.ErrDimensionMismatch)
	}
	x, err := linalg.NewVector(cols)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opNorm, err)
	}
	ax, err := linalg.NewVector(rows)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opNorm, err)
	}
	if err = x.UniformRand(o.rand, 0, 1); err != nil {
		return 0, fmt.Errorf("%s: %w", opNorm, err)
	}

	var est float64
	iters := 0
	err = withContext(ctx, opNorm, o, func(c *linalg.Context) error {
		for k := 0; k < o.maxIter; k++ {
			prev := est
			if err := op.Apply(c, x, ax); err != nil {
				return err
			}
			if err := op.Adjoint(c, ax, x); err != nil {
				return err
			}
			normX, err := linalg.Nrm2(c, x)
			if err != nil {
				return err
			}
			normAx, err := linalg.Nrm2(c, ax)
			if err != nil {
				return err
			}
			if normX == 0 || normAx == 0 {
				return linalg.ErrDivideByZero
			}
			est = normX / normAx
			iters = k + 1
			if err = x.Scale(1 / normX); err != nil {
				return err
			}
			if math.Abs(prev-est) <= o.tol*est {
				break
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opNorm, err)
	}
	o.logger.Debug().Int("iterations", iters).Float64("estimate", est).Msg("equil: norm estimated")

	return est, nil
}
