// SPDX-License-Identifier: MIT

package operator

import (
	"fmt"
	"reflect"

	"github.com/katalvlaran/optkit/linalg"
)

// Kind tags the storage behind an Operator.
type Kind int

const (
	// KindInvalid is the zero Kind; no operator is valid with it.
	KindInvalid Kind = iota
	// KindDense is an explicit dense matrix (*Dense).
	KindDense
	// KindSparseCSR is a compressed-sparse-row matrix (*Sparse).
	KindSparseCSR
	// KindSparseCSC is a compressed-sparse-column matrix (*Sparse).
	KindSparseCSC
	// KindDiagonal is a diagonal scaling (*Diagonal).
	KindDiagonal
	// KindAbstract is a matrix-free operator known only through its products (*Func).
	KindAbstract
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindDense:
		return "dense"
	case KindSparseCSR:
		return "sparse-csr"
	case KindSparseCSC:
		return "sparse-csc"
	case KindDiagonal:
		return "diagonal"
	case KindAbstract:
		return "abstract"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transformable reports whether operators of this kind expose Transformable.
func (k Kind) Transformable() bool {
	return k == KindDense || k == KindSparseCSR || k == KindSparseCSC
}

// Operator is a linear map from R^cols to R^rows.
type Operator interface {
	// Kind reports the storage tag used for capability checks.
	Kind() Kind

	// Dims returns (rows, cols) of the represented matrix.
	Dims() (rows, cols int)

	// Apply computes y = A·x. len(x) = cols, len(y) = rows.
	Apply(ctx *linalg.Context, x, y linalg.Vector) error

	// Adjoint computes x = Aᵀ·y. len(y) = rows, len(x) = cols.
	Adjoint(ctx *linalg.Context, y, x linalg.Vector) error
}

// Transformable is an Operator whose stored entries can be rewritten in place.
//
// Export returns a snapshot of the stored entries and Import restores one,
// so a caller can run Abs/Pow, compute scalings on the transformed
// operator and then put the original values back before ScaleLeft/ScaleRight.
type Transformable interface {
	Operator

	// Export copies the stored entries into a new slice.
	Export() ([]float64, error)

	// Import overwrites the stored entries from a snapshot made by Export.
	Import(snapshot []float64) error

	// Abs replaces each stored entry by its magnitude.
	Abs() error

	// Pow raises each stored entry to the power p.
	Pow(p float64) error

	// ScaleLeft applies A := diag(d)·A, len(d) = rows.
	ScaleLeft(d linalg.Vector) error

	// ScaleRight applies A := A·diag(e), len(e) = cols.
	ScaleRight(e linalg.Vector) error
}

// Allocated reports whether op refers to a usable operator: it is false for
// a nil interface, a typed nil pointer and a *Dense without a matrix.
func Allocated(op Operator) bool {
	switch o := op.(type) {
	case nil:
		return false
	case *Dense:
		return o != nil && o.M != nil
	case *Sparse:
		return o != nil
	case *Diagonal:
		return o != nil
	case *Func:
		return o != nil
	}
	v := reflect.ValueOf(op)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return !v.IsNil()
	default:
		return true
	}
}

// AsTransformable grants the Transformable capability by Kind.
//
// Implementation:
//   - Stage 1: reject nil and unallocated operators (see Allocated).
//   - Stage 2: reject kinds outside {Dense, SparseCSR, SparseCSC}.
//   - Stage 3: reject implementations that claim such a kind without the methods.
//
// Errors:
//   - ErrUnallocated for a nil, typed-nil or empty *Dense operator.
//   - ErrUnsupportedOperator otherwise, including KindInvalid.
func AsTransformable(op Operator) (Transformable, error) {
	if !Allocated(op) {
		return nil, fmt.Errorf("AsTransformable: %w", linalg.ErrUnallocated)
	}
	if !op.Kind().Transformable() {
		return nil, fmt.Errorf("AsTransformable(%s): %w", op.Kind(), linalg.ErrUnsupportedOperator)
	}
	t, ok := op.(Transformable)
	if !ok {
		return nil, fmt.Errorf("AsTransformable(%s, %T): %w", op.Kind(), op, linalg.ErrUnsupportedOperator)
	}

	return t, nil
}

// checkApply validates the operand pair of a product: in has length n, out has length m.
func checkApply(tag string, in linalg.Vector, n int, out linalg.Vector, m int) error {
	if err := linalg.ValidateVecLen(in, n); err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	if err := linalg.ValidateVecLen(out, m); err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}

	return nil
}
