// SPDX-License-Identifier: MIT
// Package: linalg
//
// Purpose:
//   - In-place elementwise kernels on Vector and Matrix views (scale,
//     add-constant, reciprocal, abs, pow, mul, div, sub, add, copy, fill).
//   - Contiguous windows go through github.com/viterin/vek; strided views fall
//     back to a plain indexed loop with the same result.
//
// Determinism & Performance:
//   - Fixed loop orders; no allocation.
//   - Matrix kernels walk storage lines (rows for RowMajor, columns for
//     ColMajor) so LD padding is never read or written.
//
// AI-Hints:
//   - Keep hot vectors contiguous (Stride == 1) to stay on the vek path.

package linalg

import (
	"math"
	"math/rand"

	"github.com/viterin/vek"
)

// ---------- Vector kernels ----------

// unary applies fn to every element of v; fast handles the contiguous case.
func (v Vector) unary(tag string, fn func(float64) float64, fast func([]float64)) error {
	if err := v.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	if flat, ok := v.contiguous(); ok && fast != nil {
		fast(flat)
		return nil
	}
	for i := 0; i < v.Size; i++ {
		k := i * v.Stride
		v.Data[k] = fn(v.Data[k])
	}

	return nil
}

// binary sets v[i] = fn(v[i], y[i]); fast handles the case where both are contiguous.
func (v Vector) binary(tag string, y Vector, fn func(a, b float64) float64, fast func(dst, s []float64)) error {
	if err := v.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	if err := y.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	if v.Size != y.Size {
		return linalgErrorf(tag, ErrDimensionMismatch)
	}
	dst, okD := v.contiguous()
	src, okS := y.contiguous()
	if okD && okS && fast != nil {
		fast(dst, src)
		return nil
	}
	for i := 0; i < v.Size; i++ {
		k := i * v.Stride
		v.Data[k] = fn(v.Data[k], y.Data[i*y.Stride])
	}

	return nil
}

// SetAll assigns a to every element.
func (v Vector) SetAll(a float64) error {
	return v.unary("Vector.SetAll", func(float64) float64 { return a }, func(x []float64) {
		for i := range x {
			x[i] = a
		}
	})
}

// Scale multiplies every element by a.
func (v Vector) Scale(a float64) error {
	return v.unary("Vector.Scale", func(x float64) float64 { return x * a }, func(x []float64) {
		vek.MulNumber_Inplace(x, a)
	})
}

// AddConstant adds a to every element.
func (v Vector) AddConstant(a float64) error {
	return v.unary("Vector.AddConstant", func(x float64) float64 { return x + a }, func(x []float64) {
		vek.AddNumber_Inplace(x, a)
	})
}

// Recip replaces every element by its reciprocal (1/0 yields +Inf, as IEEE-754).
func (v Vector) Recip() error {
	return v.unary("Vector.Recip", func(x float64) float64 { return 1 / x }, vek.Inv_Inplace)
}

// Abs replaces every element by its magnitude.
func (v Vector) Abs() error {
	return v.unary("Vector.Abs", math.Abs, vek.Abs_Inplace)
}

// Pow raises every element to the real exponent p.
func (v Vector) Pow(p float64) error {
	return v.unary("Vector.Pow", func(x float64) float64 { return math.Pow(x, p) }, nil)
}

// Mul sets v[i] *= y[i].
func (v Vector) Mul(y Vector) error {
	return v.binary("Vector.Mul", y, func(a, b float64) float64 { return a * b }, vek.Mul_Inplace)
}

// Div sets v[i] /= y[i].
func (v Vector) Div(y Vector) error {
	return v.binary("Vector.Div", y, func(a, b float64) float64 { return a / b }, vek.Div_Inplace)
}

// Sub sets v[i] -= y[i].
func (v Vector) Sub(y Vector) error {
	return v.binary("Vector.Sub", y, func(a, b float64) float64 { return a - b }, vek.Sub_Inplace)
}

// Add sets v[i] += y[i].
func (v Vector) Add(y Vector) error {
	return v.binary("Vector.Add", y, func(a, b float64) float64 { return a + b }, vek.Add_Inplace)
}

// CopyFrom sets v[i] = src[i].
func (v Vector) CopyFrom(src Vector) error {
	return v.binary("Vector.CopyFrom", src, func(_, b float64) float64 { return b }, func(dst, s []float64) {
		copy(dst, s)
	})
}

// UniformRand fills v with samples from U[lo, hi).
// r == nil draws from the process-wide math/rand source.
func (v Vector) UniformRand(r *rand.Rand, lo, hi float64) error {
	if hi < lo {
		return linalgErrorf("Vector.UniformRand", ErrOutOfBounds)
	}
	draw := rand.Float64
	if r != nil {
		draw = r.Float64
	}
	span := hi - lo

	return v.unary("Vector.UniformRand", func(float64) float64 { return lo + span*draw() }, nil)
}

// AllFinite reports whether no element is NaN or ±Inf.
func (v Vector) AllFinite() bool {
	for i := 0; i < v.Size; i++ {
		x := v.Data[i*v.Stride]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}

// ---------- Matrix kernels ----------

// eachLine runs fn over every storage line of m after validation.
func (m *Matrix) eachLine(tag string, fn func(k int, line []float64)) error {
	if err := m.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	lines, _ := rawDims(m)
	for k := 0; k < lines; k++ {
		fn(k, m.line(k))
	}

	return nil
}

// Abs replaces every entry by its magnitude.
func (m *Matrix) Abs() error {
	return m.eachLine("Matrix.Abs", func(_ int, line []float64) { vek.Abs_Inplace(line) })
}

// Pow raises every entry to the real exponent p.
func (m *Matrix) Pow(p float64) error {
	return m.eachLine("Matrix.Pow", func(_ int, line []float64) {
		for i, x := range line {
			line[i] = math.Pow(x, p)
		}
	})
}

// Scale multiplies every entry by a.
func (m *Matrix) Scale(a float64) error {
	return m.eachLine("Matrix.Scale", func(_ int, line []float64) { vek.MulNumber_Inplace(line, a) })
}

// CopyFrom copies src into m. Shapes must match; orders and LDs may differ.
func (m *Matrix) CopyFrom(src *Matrix) error {
	const tag = "Matrix.CopyFrom"
	if err := src.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	if err := m.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	if m.Rows != src.Rows || m.Cols != src.Cols {
		return linalgErrorf(tag, ErrDimensionMismatch)
	}
	if m.Order == src.Order {
		lines, _ := rawDims(m)
		for k := 0; k < lines; k++ {
			copy(m.line(k), src.line(k))
		}
		return nil
	}
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			m.Data[m.offset(i, j)] = src.Data[src.offset(i, j)]
		}
	}

	return nil
}

// CopyFromSlice copies a tightly packed rows*cols buffer laid out in order into m.
// Returns ErrDimensionMismatch when len(src) != Rows*Cols; m is untouched then.
func (m *Matrix) CopyFromSlice(src []float64, order Order) error {
	const tag = "Matrix.CopyFromSlice"
	if err := m.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	view, err := MatrixFromSlice(m.Rows, m.Cols, src, order)
	if err != nil {
		return linalgErrorf(tag, ErrDimensionMismatch)
	}

	return m.CopyFrom(view)
}

// CopyToSlice writes m into a tightly packed rows*cols buffer laid out in order.
func (m *Matrix) CopyToSlice(dst []float64, order Order) error {
	const tag = "Matrix.CopyToSlice"
	if err := m.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	view, err := MatrixFromSlice(m.Rows, m.Cols, dst, order)
	if err != nil {
		return linalgErrorf(tag, ErrDimensionMismatch)
	}

	return view.CopyFrom(m)
}

// ScaleRows multiplies row i by d[i] (m := diag(d)·m).
func (m *Matrix) ScaleRows(d Vector) error {
	return m.scaleBy("Matrix.ScaleRows", d, RowMajor)
}

// ScaleCols multiplies column j by e[j] (m := m·diag(e)).
func (m *Matrix) ScaleCols(e Vector) error {
	return m.scaleBy("Matrix.ScaleCols", e, ColMajor)
}

// scaleBy multiplies along the logical axis whose lines are contiguous in
// lineOrder. When m is stored in lineOrder each line gets one scalar,
// otherwise each line is multiplied elementwise by s.
func (m *Matrix) scaleBy(tag string, s Vector, lineOrder Order) error {
	if err := m.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	if err := s.validate(); err != nil {
		return linalgErrorf(tag, err)
	}
	want := m.Rows
	if lineOrder == ColMajor {
		want = m.Cols
	}
	if s.Size != want {
		return linalgErrorf(tag, ErrDimensionMismatch)
	}
	flat, contiguous := s.contiguous()

	return m.eachLine(tag, func(k int, line []float64) {
		if m.Order == lineOrder {
			vek.MulNumber_Inplace(line, s.Data[k*s.Stride])
			return
		}
		if contiguous {
			vek.Mul_Inplace(line, flat)
			return
		}
		for i := range line {
			line[i] *= s.Data[i*s.Stride]
		}
	})
}
