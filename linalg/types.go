// SPDX-License-Identifier: MIT

package linalg

import "gonum.org/v1/gonum/blas"

// Order selects the memory layout of a Matrix.
type Order int

const (
	// RowMajor stores element (i,j) at Data[i*LD+j]; LD >= Cols.
	RowMajor Order = iota
	// ColMajor stores element (i,j) at Data[i+j*LD]; LD >= Rows.
	ColMajor
)

// String implements fmt.Stringer.
func (o Order) String() string {
	switch o {
	case RowMajor:
		return "row-major"
	case ColMajor:
		return "col-major"
	default:
		return "unknown-order"
	}
}

func (o Order) valid() bool { return o == RowMajor || o == ColMajor }

// rawTrans returns the transpose flag to pass to row-major BLAS so that the
// raw storage of m yields m (want=false) or mᵀ (want=true).
// Row-major storage is m itself; column-major storage read row-major is mᵀ.
func rawTrans(m *Matrix, want bool) blas.Transpose {
	if want != (m.Order == ColMajor) {
		return blas.Trans
	}

	return blas.NoTrans
}

// rawDims returns the shape of m's storage read as a row-major matrix.
func rawDims(m *Matrix) (rows, cols int) {
	if m.Order == ColMajor {
		return m.Cols, m.Rows
	}

	return m.Rows, m.Cols
}

// isTrans reports whether t requests a transpose.
func isTrans(t blas.Transpose) bool { return t == blas.Trans || t == blas.ConjTrans }

// flipUplo swaps Upper/Lower; a triangle of m is the opposite triangle of mᵀ.
func flipUplo(u blas.Uplo) blas.Uplo {
	if u == blas.Upper {
		return blas.Lower
	}

	return blas.Upper
}
