// SPDX-License-Identifier: MIT
// Test-only accessors for internal state; compiled only with `go test`.

package anderson

import "github.com/katalvlaran/optkit/linalg"

// Window is a dense copy of the accelerator state, rows of DX/DF/DG are
// vector components and columns are window slots.
type Window struct {
	DX, DF, DG [][]float64
	F, G, X    []float64
	Gamma      []float64
	Iter       int
}

// Snapshot copies the internal buffers of a live accelerator.
func Snapshot(a *Accelerator) Window {
	return Window{
		DX:    dense(a.dx),
		DF:    dense(a.df),
		DG:    dense(a.dg),
		F:     a.f.ToSlice(),
		G:     a.g.ToSlice(),
		X:     a.x.ToSlice(),
		Gamma: a.gamma.ToSlice(),
		Iter:  a.iter,
	}
}

func dense(m *linalg.Matrix) [][]float64 {
	out := make([][]float64, m.Rows)
	for i := range out {
		row, _ := m.Row(i)
		out[i] = row.ToSlice()
	}

	return out
}
