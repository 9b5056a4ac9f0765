// SPDX-License-Identifier: MIT

// Package linalg - strided Vector views.
//
// Purpose:
//   - Provide the 1-D view used by every kernel: Size logical elements,
//     element k at Data[k*Stride].
//   - Views are values; copying a Vector copies the header, not the storage.
//
// Complexity quicksheet:
//   - NewVector: O(n) zero-init; At/Set: O(1); Subvector: O(1); ToSlice: O(n).
package linalg

import (
	"fmt"
	"strings"
)

const (
	ctxVecAt  = "Vector.At"
	ctxVecSet = "Vector.Set"
	ctxVecSub = "Vector.Subvector"
)

// Vector is a strided 1-D view over a float64 buffer.
type Vector struct {
	Size   int       // logical length
	Stride int       // distance between consecutive elements, >= 1
	Data   []float64 // backing storage; len >= 1+(Size-1)*Stride when Size > 0
}

// NewVector allocates a contiguous zero vector of length n.
// Returns ErrDimensionMismatch for n < 0.
func NewVector(n int) (Vector, error) {
	if n < 0 {
		return Vector{}, linalgErrorf("NewVector", ErrDimensionMismatch)
	}

	return Vector{Size: n, Stride: 1, Data: make([]float64, n)}, nil
}

// VectorFromSlice wraps data as a contiguous view (no copy).
func VectorFromSlice(data []float64) Vector {
	return Vector{Size: len(data), Stride: 1, Data: data}
}

// validate checks that v is allocated and its header is consistent with Data.
//
// Errors:
//   - ErrUnallocated when Data is nil.
//   - ErrDimensionMismatch for negative sizes, non-positive strides or short Data.
func (v Vector) validate() error {
	if v.Data == nil {
		return ErrUnallocated
	}
	if v.Size < 0 || v.Stride < 1 {
		return ErrDimensionMismatch
	}
	if v.Size > 0 && len(v.Data) < 1+(v.Size-1)*v.Stride {
		return ErrDimensionMismatch
	}

	return nil
}

// Validate is the exported form of validate, wrapped with a tag.
func (v Vector) Validate() error {
	if err := v.validate(); err != nil {
		return linalgErrorf("Vector.Validate", err)
	}

	return nil
}

// contiguous returns the flat window of v when Stride == 1.
func (v Vector) contiguous() ([]float64, bool) {
	if v.Stride != 1 {
		return nil, false
	}

	return v.Data[:v.Size], true
}

// At returns element i or ErrOutOfBounds.
func (v Vector) At(i int) (float64, error) {
	if i < 0 || i >= v.Size {
		return 0, fmt.Errorf("%s(%d): %w", ctxVecAt, i, ErrOutOfBounds)
	}

	return v.Data[i*v.Stride], nil
}

// Set assigns element i or returns ErrOutOfBounds.
func (v Vector) Set(i int, x float64) error {
	if i < 0 || i >= v.Size {
		return fmt.Errorf("%s(%d): %w", ctxVecSet, i, ErrOutOfBounds)
	}
	v.Data[i*v.Stride] = x

	return nil
}

// Subvector returns the view of n elements starting at offset, sharing storage.
func (v Vector) Subvector(offset, n int) (Vector, error) {
	if offset < 0 || n < 0 || offset+n > v.Size {
		return Vector{}, fmt.Errorf("%s(%d,%d): %w", ctxVecSub, offset, n, ErrOutOfBounds)
	}
	if n == 0 {
		return Vector{Size: 0, Stride: v.Stride, Data: v.Data[:0]}, nil
	}
	start := offset * v.Stride

	return Vector{Size: n, Stride: v.Stride, Data: v.Data[start : start+(n-1)*v.Stride+1]}, nil
}

// ToSlice copies the logical elements of v into a new contiguous slice.
func (v Vector) ToSlice() []float64 {
	out := make([]float64, v.Size)
	for i := range out {
		out[i] = v.Data[i*v.Stride]
	}

	return out
}

// String implements fmt.Stringer for debugging.
func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteString(_fmtRowOpen)
	for i := 0; i < v.Size; i++ {
		if i > 0 {
			sb.WriteString(_fmtSep)
		}
		fmt.Fprintf(&sb, "%g", v.Data[i*v.Stride])
	}
	sb.WriteString("]")

	return sb.String()
}
