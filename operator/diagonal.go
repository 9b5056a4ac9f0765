// SPDX-License-Identifier: MIT

package operator

import (
	"fmt"

	"github.com/katalvlaran/optkit/linalg"
)

// Diagonal is the square operator diag(D). It supports products only.
type Diagonal struct {
	D linalg.Vector
}

var _ Operator = (*Diagonal)(nil)

// NewDiagonal wraps the given entries (no copy).
func NewDiagonal(entries []float64) (*Diagonal, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("NewDiagonal: %w", linalg.ErrDimensionMismatch)
	}

	return &Diagonal{D: linalg.VectorFromSlice(entries)}, nil
}

// Kind implements Operator.
func (o *Diagonal) Kind() Kind { return KindDiagonal }

// Dims implements Operator.
func (o *Diagonal) Dims() (int, int) {
	if o == nil {
		return 0, 0
	}

	return o.D.Size, o.D.Size
}

// Apply computes y = D∘x.
func (o *Diagonal) Apply(_ *linalg.Context, x, y linalg.Vector) error {
	if err := checkApply("Diagonal.Apply", x, o.D.Size, y, o.D.Size); err != nil {
		return err
	}
	if err := y.CopyFrom(x); err != nil {
		return err
	}

	return y.Mul(o.D)
}

// Adjoint is Apply: a diagonal operator is self-adjoint.
func (o *Diagonal) Adjoint(ctx *linalg.Context, y, x linalg.Vector) error {
	return o.Apply(ctx, y, x)
}
