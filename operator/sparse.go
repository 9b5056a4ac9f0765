// SPDX-License-Identifier: MIT
// Package: operator
//
// Purpose:
//   - Compressed sparse operator in CSR or CSC layout, the minimal storage
//     that satisfies the Transformable capability for sparse kinds.
//   - Construction validates the compressed arrays once; products and
//     transformations then run without further index checks.
//
// Layout:
//   - CSR: row i owns Val[Ptr[i]:Ptr[i+1]] with column indices in Ind.
//   - CSC: column j owns Val[Ptr[j]:Ptr[j+1]] with row indices in Ind.
//
// Complexity:
//   - Apply/Adjoint O(nnz + rows + cols); Abs/Pow/Scale O(nnz);
//     FromTriplets O(nnz + major) using a counting sort.

package operator

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/viterin/vek"
)

// Sparse is a compressed sparse matrix in CSR or CSC layout.
// Ptr, Ind and Val are exposed for interop; mutate them only through methods
// unless the invariants of NewSparseCSR/NewSparseCSC are preserved.
type Sparse struct {
	kind       Kind
	rows, cols int
	Ptr        []int
	Ind        []int
	Val        []float64
}

var _ Transformable = (*Sparse)(nil)

// NewSparseCSR wraps CSR arrays (no copy) after validation.
//
// Errors:
//   - ErrDimensionMismatch for non-positive shapes, len(ptr) != rows+1,
//     non-monotone ptr or len(ind) != len(val) != ptr[rows].
//   - ErrOutOfBounds for a column index outside [0, cols).
func NewSparseCSR(rows, cols int, ptr, ind []int, val []float64) (*Sparse, error) {
	return newSparse(KindSparseCSR, rows, cols, ptr, ind, val)
}

// NewSparseCSC wraps CSC arrays (no copy) after validation. See NewSparseCSR.
func NewSparseCSC(rows, cols int, ptr, ind []int, val []float64) (*Sparse, error) {
	return newSparse(KindSparseCSC, rows, cols, ptr, ind, val)
}

func newSparse(kind Kind, rows, cols int, ptr, ind []int, val []float64) (*Sparse, error) {
	tag := fmt.Sprintf("NewSparse(%s)", kind)
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%s: %w", tag, linalg.ErrDimensionMismatch)
	}
	major, minor := rows, cols
	if kind == KindSparseCSC {
		major, minor = cols, rows
	}
	if len(ptr) != major+1 || ptr[0] != 0 {
		return nil, fmt.Errorf("%s: ptr: %w", tag, linalg.ErrDimensionMismatch)
	}
	for k := 0; k < major; k++ {
		if ptr[k+1] < ptr[k] {
			return nil, fmt.Errorf("%s: ptr[%d]: %w", tag, k+1, linalg.ErrDimensionMismatch)
		}
	}
	nnz := ptr[major]
	if len(ind) != nnz || len(val) != nnz {
		return nil, fmt.Errorf("%s: nnz: %w", tag, linalg.ErrDimensionMismatch)
	}
	for k, j := range ind {
		if j < 0 || j >= minor {
			return nil, fmt.Errorf("%s: ind[%d]=%d: %w", tag, k, j, linalg.ErrOutOfBounds)
		}
	}

	return &Sparse{kind: kind, rows: rows, cols: cols, Ptr: ptr, Ind: ind, Val: val}, nil
}

// FromTriplets builds a CSR or CSC operator from coordinate triplets
// (is[k], js[k], vs[k]). Duplicate coordinates are summed; explicit zeros are kept.
//
// Implementation:
//   - Stage 1: validate kind, lengths and every coordinate.
//   - Stage 2: count entries per major line, prefix-sum into Ptr.
//   - Stage 3: scatter, then sort each line by minor index and merge duplicates.
//
// Errors:
//   - ErrUnsupportedOperator when kind is not KindSparseCSR/KindSparseCSC.
//   - ErrDimensionMismatch, ErrOutOfBounds.
func FromTriplets(kind Kind, rows, cols int, is, js []int, vs []float64) (*Sparse, error) {
	const tag = "FromTriplets"
	if kind != KindSparseCSR && kind != KindSparseCSC {
		return nil, fmt.Errorf("%s(%s): %w", tag, kind, linalg.ErrUnsupportedOperator)
	}
	if rows <= 0 || cols <= 0 || len(is) != len(vs) || len(js) != len(vs) {
		return nil, fmt.Errorf("%s: %w", tag, linalg.ErrDimensionMismatch)
	}
	for k := range vs {
		if is[k] < 0 || is[k] >= rows || js[k] < 0 || js[k] >= cols {
			return nil, fmt.Errorf("%s: (%d,%d): %w", tag, is[k], js[k], linalg.ErrOutOfBounds)
		}
	}
	majorIdx, minorIdx, major := is, js, rows
	if kind == KindSparseCSC {
		majorIdx, minorIdx, major = js, is, cols
	}

	// Stage 2: counts → offsets.
	ptr := make([]int, major+1)
	for _, a := range majorIdx {
		ptr[a+1]++
	}
	for k := 0; k < major; k++ {
		ptr[k+1] += ptr[k]
	}

	// Stage 3: scatter.
	next := append([]int(nil), ptr[:major]...)
	ind := make([]int, len(vs))
	val := make([]float64, len(vs))
	for k, a := range majorIdx {
		p := next[a]
		ind[p], val[p] = minorIdx[k], vs[k]
		next[a]++
	}

	// Sort lines and merge duplicates, compacting in place.
	w := 0
	for k := 0; k < major; k++ {
		lo, hi := ptr[k], ptr[k+1]
		line := lineSorter{ind: ind[lo:hi], val: val[lo:hi]}
		sort.Stable(line)
		ptr[k] = w
		for p := lo; p < hi; p++ {
			if p > lo && ind[p] == ind[w-1] {
				val[w-1] += val[p]
				continue
			}
			ind[w], val[w] = ind[p], val[p]
			w++
		}
	}
	ptr[major] = w

	return newSparse(kind, rows, cols, ptr, ind[:w:w], val[:w:w])
}

// lineSorter orders one compressed line by minor index, carrying values along.
type lineSorter struct {
	ind []int
	val []float64
}

func (s lineSorter) Len() int           { return len(s.ind) }
func (s lineSorter) Less(a, b int) bool { return s.ind[a] < s.ind[b] }
func (s lineSorter) Swap(a, b int) {
	s.ind[a], s.ind[b] = s.ind[b], s.ind[a]
	s.val[a], s.val[b] = s.val[b], s.val[a]
}

// Kind implements Operator.
func (s *Sparse) Kind() Kind {
	if s == nil {
		return KindInvalid
	}

	return s.kind
}

// Dims implements Operator.
func (s *Sparse) Dims() (int, int) {
	if s == nil {
		return 0, 0
	}

	return s.rows, s.cols
}

// NNZ returns the number of stored entries.
func (s *Sparse) NNZ() int { return len(s.Val) }

// Apply computes y = A·x.
func (s *Sparse) Apply(_ *linalg.Context, x, y linalg.Vector) error {
	if err := checkApply("Sparse.Apply", x, s.cols, y, s.rows); err != nil {
		return err
	}
	s.product(s.kind == KindSparseCSR, x, y)

	return nil
}

// Adjoint computes x = Aᵀ·y.
func (s *Sparse) Adjoint(_ *linalg.Context, y, x linalg.Vector) error {
	if err := checkApply("Sparse.Adjoint", y, s.rows, x, s.cols); err != nil {
		return err
	}
	s.product(s.kind == KindSparseCSC, y, x)

	return nil
}

// product computes out = B·in where B is the stored matrix read line by line.
// gather=true: each line produces one output (dot form, CSR·x or CSCᵀ·y).
// gather=false: each line scatters into out (axpy form, CSC·x or CSRᵀ·y).
func (s *Sparse) product(gather bool, in, out linalg.Vector) {
	major := len(s.Ptr) - 1
	if gather {
		for k := 0; k < major; k++ {
			var sum float64
			for p := s.Ptr[k]; p < s.Ptr[k+1]; p++ {
				sum += s.Val[p] * in.Data[s.Ind[p]*in.Stride]
			}
			out.Data[k*out.Stride] = sum
		}
		return
	}
	for i := 0; i < out.Size; i++ {
		out.Data[i*out.Stride] = 0
	}
	for k := 0; k < major; k++ {
		a := in.Data[k*in.Stride]
		if a == 0 {
			continue
		}
		for p := s.Ptr[k]; p < s.Ptr[k+1]; p++ {
			out.Data[s.Ind[p]*out.Stride] += s.Val[p] * a
		}
	}
}

// Export returns a copy of Val.
func (s *Sparse) Export() ([]float64, error) {
	if s.Val == nil {
		return nil, fmt.Errorf("Sparse.Export: %w", linalg.ErrUnallocated)
	}

	return append(make([]float64, 0, len(s.Val)), s.Val...), nil
}

// Import restores Val from a snapshot of the same length.
func (s *Sparse) Import(snapshot []float64) error {
	if snapshot == nil {
		return fmt.Errorf("Sparse.Import: %w", linalg.ErrUnallocated)
	}
	if len(snapshot) != len(s.Val) {
		return fmt.Errorf("Sparse.Import: %w", linalg.ErrDimensionMismatch)
	}
	copy(s.Val, snapshot)

	return nil
}

// Abs implements Transformable.
func (s *Sparse) Abs() error {
	vek.Abs_Inplace(s.Val)
	return nil
}

// Pow implements Transformable.
func (s *Sparse) Pow(p float64) error {
	for k, v := range s.Val {
		s.Val[k] = math.Pow(v, p)
	}

	return nil
}

// ScaleLeft applies A := diag(d)·A.
func (s *Sparse) ScaleLeft(d linalg.Vector) error {
	if err := linalg.ValidateVecLen(d, s.rows); err != nil {
		return fmt.Errorf("Sparse.ScaleLeft: %w", err)
	}
	s.scale(s.kind == KindSparseCSR, d)

	return nil
}

// ScaleRight applies A := A·diag(e).
func (s *Sparse) ScaleRight(e linalg.Vector) error {
	if err := linalg.ValidateVecLen(e, s.cols); err != nil {
		return fmt.Errorf("Sparse.ScaleRight: %w", err)
	}
	s.scale(s.kind == KindSparseCSC, e)

	return nil
}

// scale multiplies entries by f indexed by the major line (byMajor) or by Ind.
func (s *Sparse) scale(byMajor bool, f linalg.Vector) {
	major := len(s.Ptr) - 1
	for k := 0; k < major; k++ {
		for p := s.Ptr[k]; p < s.Ptr[k+1]; p++ {
			if byMajor {
				s.Val[p] *= f.Data[k*f.Stride]
			} else {
				s.Val[p] *= f.Data[s.Ind[p]*f.Stride]
			}
		}
	}
}

// ToDense materializes the operator into a new matrix in the given order.
func (s *Sparse) ToDense(order linalg.Order) (*linalg.Matrix, error) {
	m, err := linalg.NewMatrix(s.rows, s.cols, order)
	if err != nil {
		return nil, fmt.Errorf("Sparse.ToDense: %w", err)
	}
	major := len(s.Ptr) - 1
	for k := 0; k < major; k++ {
		for p := s.Ptr[k]; p < s.Ptr[k+1]; p++ {
			i, j := k, s.Ind[p]
			if s.kind == KindSparseCSC {
				i, j = j, k
			}
			v, _ := m.At(i, j)
			_ = m.Set(i, j, v+s.Val[p])
		}
	}

	return m, nil
}
