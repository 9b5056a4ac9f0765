// SPDX-License-Identifier: MIT

package operator

import (
	"fmt"

	"github.com/katalvlaran/optkit/linalg"
)

// Func is a matrix-free operator defined by its two products.
//
// MatVec must write A·src into dst and MatTransVec must write Aᵀ·src into dst.
// Both receive views whose lengths already match Dims.
type Func struct {
	Rows, Cols  int
	MatVec      func(dst, src linalg.Vector) error
	MatTransVec func(dst, src linalg.Vector) error
}

var _ Operator = (*Func)(nil)

// Kind implements Operator.
func (f *Func) Kind() Kind { return KindAbstract }

// Dims implements Operator.
func (f *Func) Dims() (int, int) {
	if f == nil {
		return 0, 0
	}

	return f.Rows, f.Cols
}

// Apply computes y = A·x via MatVec.
func (f *Func) Apply(_ *linalg.Context, x, y linalg.Vector) error {
	if f.MatVec == nil {
		return fmt.Errorf("Func.Apply: %w", linalg.ErrUnallocated)
	}
	if err := checkApply("Func.Apply", x, f.Cols, y, f.Rows); err != nil {
		return err
	}

	return f.MatVec(y, x)
}

// Adjoint computes x = Aᵀ·y via MatTransVec.
func (f *Func) Adjoint(_ *linalg.Context, y, x linalg.Vector) error {
	if f.MatTransVec == nil {
		return fmt.Errorf("Func.Adjoint: %w", linalg.ErrUnallocated)
	}
	if err := checkApply("Func.Adjoint", y, f.Rows, x, f.Cols); err != nil {
		return err
	}

	return f.MatTransVec(x, y)
}
