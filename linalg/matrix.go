// SPDX-License-Identifier: MIT

// Package linalg - Matrix storage (row- or column-major) & safe accessors.
//
// Purpose:
//   - Provide a flat buffer with an explicit leading dimension so that a
//     Matrix can be a window into a larger allocation.
//   - Guarantee safety at the public surface: At/Set/Row/Col return errors
//     instead of panicking.
//   - Expose Row/Col as strided Vector views (no copy); mutations through a
//     view are visible in the Matrix.
//
// AI-Hints:
//   - Pick ColMajor when the hot loop walks columns (Col(j) is then contiguous).
//   - Kernels walk each storage "line" (row in row-major, column in
//     col-major) contiguously; LD padding is never touched.
//
// Complexity quicksheet:
//   - NewMatrix: O(r*c) zero-init; At/Set/Row/Col: O(1); Clone: O(r*c).
package linalg

import (
	"fmt"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt        = "At"
	ctxSet       = "Set"
	ctxRow       = "Row"
	ctxCol       = "Col"
	ctxNewMatrix = "NewMatrix"
	ctxFromSlice = "MatrixFromSlice"
)

// ---------- Formatting literals ----------

const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// matrixErrorf wraps an error with a uniform Matrix context and callsite indices.
func matrixErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Matrix.%s(%d,%d): %w", method, row, col, err)
}

// Matrix is a dense 2-D view.
//   - Rows, Cols hold the logical shape.
//   - LD is the leading dimension: distance between consecutive rows
//     (RowMajor) or columns (ColMajor) in Data.
//   - Data is the backing buffer, possibly shared with other views.
type Matrix struct {
	Rows, Cols int
	LD         int
	Data       []float64
	Order      Order
}

// Compile-time assertion for fmt.Stringer conformance.
var _ fmt.Stringer = (*Matrix)(nil)

// NewMatrix allocates a rows×cols zero matrix in the given order.
//
// Implementation:
//   - Stage 1: validate rows>0, cols>0 and the order tag.
//   - Stage 2: allocate a tight buffer (LD = Cols for RowMajor, Rows for ColMajor).
//
// Errors:
//   - ErrDimensionMismatch for non-positive shapes or an unknown order.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewMatrix(rows, cols int, order Order) (*Matrix, error) {
	if rows <= 0 || cols <= 0 || !order.valid() {
		return nil, matrixErrorf(ctxNewMatrix, rows, cols, ErrDimensionMismatch)
	}
	ld := cols
	if order == ColMajor {
		ld = rows
	}

	return &Matrix{Rows: rows, Cols: cols, LD: ld, Data: make([]float64, rows*cols), Order: order}, nil
}

// MatrixFromSlice wraps data (no copy) as a rows×cols matrix with a tight LD.
// Returns ErrDimensionMismatch when len(data) != rows*cols.
func MatrixFromSlice(rows, cols int, data []float64, order Order) (*Matrix, error) {
	if rows <= 0 || cols <= 0 || !order.valid() || len(data) != rows*cols {
		return nil, matrixErrorf(ctxFromSlice, rows, cols, ErrDimensionMismatch)
	}
	ld := cols
	if order == ColMajor {
		ld = rows
	}

	return &Matrix{Rows: rows, Cols: cols, LD: ld, Data: data, Order: order}, nil
}

// validate checks that m is allocated and its header is consistent.
//
// Errors:
//   - ErrUnallocated for a nil receiver or nil Data.
//   - ErrDimensionMismatch for bad shapes, LD, order or short Data.
func (m *Matrix) validate() error {
	if m == nil || m.Data == nil {
		return ErrUnallocated
	}
	if m.Rows <= 0 || m.Cols <= 0 || !m.Order.valid() {
		return ErrDimensionMismatch
	}
	lines, width := rawDims(m)
	if m.LD < width || len(m.Data) < (lines-1)*m.LD+width {
		return ErrDimensionMismatch
	}

	return nil
}

// Validate is the exported form of validate, wrapped with a tag.
func (m *Matrix) Validate() error {
	if err := m.validate(); err != nil {
		return linalgErrorf("Matrix.Validate", err)
	}

	return nil
}

// offset computes the flat index of (i,j) without bounds checks.
func (m *Matrix) offset(i, j int) int {
	if m.Order == ColMajor {
		return i + j*m.LD
	}

	return i*m.LD + j
}

// inBounds reports whether (i,j) is a valid logical index.
func (m *Matrix) inBounds(i, j int) bool {
	return i >= 0 && i < m.Rows && j >= 0 && j < m.Cols
}

// At retrieves element (i,j) or ErrOutOfBounds.
func (m *Matrix) At(i, j int) (float64, error) {
	if !m.inBounds(i, j) {
		return 0, matrixErrorf(ctxAt, i, j, ErrOutOfBounds)
	}

	return m.Data[m.offset(i, j)], nil
}

// Set assigns element (i,j) or returns ErrOutOfBounds.
func (m *Matrix) Set(i, j int, v float64) error {
	if !m.inBounds(i, j) {
		return matrixErrorf(ctxSet, i, j, ErrOutOfBounds)
	}
	m.Data[m.offset(i, j)] = v

	return nil
}

// Row returns row i as a Vector view sharing storage with m.
// Stride is 1 for RowMajor and LD for ColMajor.
func (m *Matrix) Row(i int) (Vector, error) {
	if i < 0 || i >= m.Rows {
		return Vector{}, matrixErrorf(ctxRow, i, 0, ErrOutOfBounds)
	}
	if m.Order == ColMajor {
		return Vector{Size: m.Cols, Stride: m.LD, Data: m.Data[i : i+(m.Cols-1)*m.LD+1]}, nil
	}
	start := i * m.LD

	return Vector{Size: m.Cols, Stride: 1, Data: m.Data[start : start+m.Cols]}, nil
}

// Col returns column j as a Vector view sharing storage with m.
// Stride is 1 for ColMajor and LD for RowMajor.
func (m *Matrix) Col(j int) (Vector, error) {
	if j < 0 || j >= m.Cols {
		return Vector{}, matrixErrorf(ctxCol, 0, j, ErrOutOfBounds)
	}
	if m.Order == RowMajor {
		return Vector{Size: m.Rows, Stride: m.LD, Data: m.Data[j : j+(m.Rows-1)*m.LD+1]}, nil
	}
	start := j * m.LD

	return Vector{Size: m.Rows, Stride: 1, Data: m.Data[start : start+m.Rows]}, nil
}

// line returns storage line k (row k for RowMajor, column k for ColMajor)
// as a contiguous slice of its logical width.
func (m *Matrix) line(k int) []float64 {
	_, width := rawDims(m)
	start := k * m.LD

	return m.Data[start : start+width]
}

// Clone returns a deep, tightly packed copy with the same order.
func (m *Matrix) Clone() *Matrix {
	out, _ := NewMatrix(m.Rows, m.Cols, m.Order)
	lines, _ := rawDims(m)
	for k := 0; k < lines; k++ {
		copy(out.line(k), m.line(k))
	}

	return out
}

// String implements fmt.Stringer: one bracketed line per logical row.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.Rows; i++ {
		sb.WriteString(_fmtRowOpen)
		for j := 0; j < m.Cols; j++ {
			if j > 0 {
				sb.WriteString(_fmtSep)
			}
			fmt.Fprintf(&sb, "%g", m.Data[m.offset(i, j)])
		}
		sb.WriteString(_fmtRowClose)
	}

	return sb.String()
}
