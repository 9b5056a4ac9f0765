// SPDX-License-Identifier: MIT
// Package: operator
//
// Purpose:
//   - Dense operator backed by a *linalg.Matrix in either storage order.
//   - Products go through the caller's Context (BLAS Gemv); transformations
//     are the linalg Matrix kernels.
//
// Complexity:
//   - Apply/Adjoint O(r*c); Export/Import O(r*c) with one allocation on Export.

package operator

import (
	"fmt"

	"github.com/katalvlaran/optkit/linalg"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/mat"
)

// Dense is a Transformable operator over an explicit matrix.
// The matrix is shared, not copied: transformations are visible to the owner of M.
type Dense struct {
	M *linalg.Matrix
}

// Compile-time interface check.
var _ Transformable = (*Dense)(nil)

// NewDense wraps m after validating it.
func NewDense(m *linalg.Matrix) (*Dense, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("NewDense: %w", err)
	}

	return &Dense{M: m}, nil
}

// NewDenseFromMat wraps the storage of a gonum *mat.Dense (row-major, shared).
func NewDenseFromMat(a *mat.Dense) (*Dense, error) {
	if a == nil || a.IsEmpty() {
		return nil, fmt.Errorf("NewDenseFromMat: %w", linalg.ErrUnallocated)
	}
	raw := a.RawMatrix()

	return NewDense(&linalg.Matrix{
		Rows:  raw.Rows,
		Cols:  raw.Cols,
		LD:    raw.Stride,
		Data:  raw.Data,
		Order: linalg.RowMajor,
	})
}

// Kind implements Operator.
func (o *Dense) Kind() Kind { return KindDense }

// Dims implements Operator.
func (o *Dense) Dims() (int, int) {
	if o == nil || o.M == nil {
		return 0, 0
	}

	return o.M.Rows, o.M.Cols
}

// Apply computes y = M·x.
func (o *Dense) Apply(ctx *linalg.Context, x, y linalg.Vector) error {
	if err := o.M.Validate(); err != nil {
		return fmt.Errorf("Dense.Apply: %w", err)
	}
	if err := checkApply("Dense.Apply", x, o.M.Cols, y, o.M.Rows); err != nil {
		return err
	}

	return linalg.Gemv(ctx, blas.NoTrans, 1, o.M, x, 0, y)
}

// Adjoint computes x = Mᵀ·y.
func (o *Dense) Adjoint(ctx *linalg.Context, y, x linalg.Vector) error {
	if err := o.M.Validate(); err != nil {
		return fmt.Errorf("Dense.Adjoint: %w", err)
	}
	if err := checkApply("Dense.Adjoint", y, o.M.Rows, x, o.M.Cols); err != nil {
		return err
	}

	return linalg.Gemv(ctx, blas.Trans, 1, o.M, y, 0, x)
}

// Export returns the entries packed in the matrix's own order.
func (o *Dense) Export() ([]float64, error) {
	if err := o.M.Validate(); err != nil {
		return nil, fmt.Errorf("Dense.Export: %w", err)
	}
	out := make([]float64, o.M.Rows*o.M.Cols)
	if err := o.M.CopyToSlice(out, o.M.Order); err != nil {
		return nil, fmt.Errorf("Dense.Export: %w", err)
	}

	return out, nil
}

// Import restores entries produced by Export.
func (o *Dense) Import(snapshot []float64) error {
	if err := o.M.Validate(); err != nil {
		return fmt.Errorf("Dense.Import: %w", err)
	}
	if snapshot == nil {
		return fmt.Errorf("Dense.Import: %w", linalg.ErrUnallocated)
	}

	return o.M.CopyFromSlice(snapshot, o.M.Order)
}

// Abs implements Transformable.
func (o *Dense) Abs() error { return o.M.Abs() }

// Pow implements Transformable.
func (o *Dense) Pow(p float64) error { return o.M.Pow(p) }

// ScaleLeft implements Transformable.
func (o *Dense) ScaleLeft(d linalg.Vector) error { return o.M.ScaleRows(d) }

// ScaleRight implements Transformable.
func (o *Dense) ScaleRight(e linalg.Vector) error { return o.M.ScaleCols(e) }
