// SPDX-License-Identifier: MIT

package anderson_test

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/katalvlaran/optkit/anderson"
	"github.com/katalvlaran/optkit/linalg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// affine is the contraction T(x) = M·x + b used by the regression tests.
// Its fixed point is (I−M)⁻¹·b ≈ [2.8846153846, 4.4230769231, 5.4807692308].
var (
	affineM = [3][3]float64{{0.5, 0.1, 0}, {0, 0.3, 0.2}, {0.1, 0, 0.4}}
	affineB = [3]float64{1, 2, 3}
	fixed   = []float64{2.884615384615384, 4.4230769230769225, 5.48076923076923}
)

func affine(x []float64) []float64 {
	out := make([]float64, 3)
	for i := range out {
		out[i] = affineB[i]
		for j := range x {
			out[i] += affineM[i][j] * x[j]
		}
	}

	return out
}

func mustInit(t *testing.T, n, lookback int, opts ...anderson.Option) *anderson.Accelerator {
	t.Helper()
	acc := new(anderson.Accelerator)
	require.NoError(t, acc.Init(n, lookback, opts...))
	t.Cleanup(func() {
		if acc.Live() {
			_ = acc.Free()
		}
	})

	return acc
}

// run drives the accelerated iteration from x0 for calls steps and returns every output.
func run(t *testing.T, acc *anderson.Accelerator, x0 []float64, calls int) [][]float64 {
	t.Helper()
	require.NoError(t, acc.SetX0(linalg.VectorFromSlice(append([]float64(nil), x0...))))
	cur := x0
	outs := make([][]float64, 0, calls)
	for k := 0; k < calls; k++ {
		out := affine(cur)
		require.NoError(t, acc.Accelerate(linalg.VectorFromSlice(out)))
		outs = append(outs, out)
		cur = out
	}

	return outs
}

// TestInitClampsLookback checks lookback−1 > n clamps instead of failing.
func TestInitClampsLookback(t *testing.T) {
	acc := mustInit(t, 3, 10)
	n, lb := acc.Dims()
	require.Equal(t, 3, n)
	require.Equal(t, 4, lb)

	acc2 := mustInit(t, 5, 3)
	_, lb = acc2.Dims()
	require.Equal(t, 3, lb)
}

// TestInitErrors covers the rejected argument combinations.
func TestInitErrors(t *testing.T) {
	var nilAcc *anderson.Accelerator
	require.ErrorIs(t, nilAcc.Init(3, 2), linalg.ErrUnallocated)

	var acc anderson.Accelerator
	require.ErrorIs(t, acc.Init(0, 2), linalg.ErrDimensionMismatch)
	require.ErrorIs(t, acc.Init(3, 1), linalg.ErrDimensionMismatch)
	require.ErrorIs(t, acc.Init(3, 2, anderson.WithReduction(4, anderson.PrefixReduction)), linalg.ErrDimensionMismatch)
	require.False(t, acc.Live())
}

// TestReinitIsOverwrite ensures a live accelerator rejects Init and keeps its state.
func TestReinitIsOverwrite(t *testing.T) {
	acc := mustInit(t, 3, 3)
	run(t, acc, []float64{0, 0, 0}, 3)
	before := anderson.Snapshot(acc)

	require.ErrorIs(t, acc.Init(7, 5), linalg.ErrOverwrite)
	require.Equal(t, before, anderson.Snapshot(acc))
	n, lb := acc.Dims()
	require.Equal(t, 3, n)
	require.Equal(t, 3, lb)
}

// TestFreeLifecycle covers never-initialized, double free and use after free.
func TestFreeLifecycle(t *testing.T) {
	var acc anderson.Accelerator
	require.ErrorIs(t, acc.Free(), linalg.ErrUnallocated)

	require.NoError(t, acc.Init(2, 2))
	require.NoError(t, acc.Free())
	require.ErrorIs(t, acc.Free(), linalg.ErrUnallocated)

	v := linalg.VectorFromSlice([]float64{1, 2})
	require.ErrorIs(t, acc.SetX0(v), linalg.ErrUnallocated)
	require.ErrorIs(t, acc.Accelerate(v), linalg.ErrUnallocated)
	require.ErrorIs(t, acc.Reset(), linalg.ErrUnallocated)

	// A freed accelerator can be initialized again.
	require.NoError(t, acc.Init(2, 2))
	require.NoError(t, acc.Free())

	var nilAcc *anderson.Accelerator
	require.ErrorIs(t, nilAcc.Free(), linalg.ErrUnallocated)
}

// TestSizeMismatch leaves the state untouched.
func TestSizeMismatch(t *testing.T) {
	acc := mustInit(t, 3, 3)
	before := anderson.Snapshot(acc)

	require.ErrorIs(t, acc.SetX0(linalg.VectorFromSlice([]float64{1, 2})), linalg.ErrDimensionMismatch)
	require.ErrorIs(t, acc.Accelerate(linalg.VectorFromSlice([]float64{1, 2, 3, 4})), linalg.ErrDimensionMismatch)
	require.ErrorIs(t, acc.Accelerate(linalg.Vector{}), linalg.ErrUnallocated)
	require.Equal(t, before, anderson.Snapshot(acc))
}

// TestIdentityMapNeverMoves feeds a converged fixed point: the iterate must not
// change before warm-up, and afterwards the zero residual window is singular.
func TestIdentityMapNeverMoves(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	const lookback = 4
	acc := mustInit(t, 3, lookback, anderson.WithLogger(logger))

	xStar := []float64{1.5, -2, 0.25}
	require.NoError(t, acc.SetX0(linalg.VectorFromSlice(append([]float64(nil), xStar...))))
	for k := 0; k < 3*lookback; k++ {
		out := append([]float64(nil), xStar...)
		require.NoError(t, acc.Accelerate(linalg.VectorFromSlice(out)))
		require.Equal(t, xStar, out, "call %d", k)
	}

	st := acc.Stats()
	require.Equal(t, 3*lookback, st.Iterations)
	require.Zero(t, st.Mixed)
	require.Equal(t, 3*lookback-lookback-1, st.Skipped)
	require.Contains(t, logs.String(), "mix skipped")
}

// TestAffineNormalEquations checks, on every mixing call, that gamma solves
// (DXᵀ·DG)·gamma = DXᵀ·rhs for the window used and that the output equals f − DF·gamma.
func TestAffineNormalEquations(t *testing.T) {
	for _, tc := range []struct {
		name string
		rhs  anderson.RHS
	}{{"map-output", anderson.RHSMapOutput}, {"residual", anderson.RHSResidual}} {
		t.Run(tc.name, func(t *testing.T) {
			acc := mustInit(t, 3, 3, anderson.WithRHS(tc.rhs))
			cur := []float64{0, 0, 0}
			require.NoError(t, acc.SetX0(linalg.VectorFromSlice([]float64{0, 0, 0})))

			checked := 0
			for k := 0; k < 10; k++ {
				pre := anderson.Snapshot(acc)
				mixedBefore := acc.Stats().Mixed
				out := affine(cur)
				require.NoError(t, acc.Accelerate(linalg.VectorFromSlice(out)))
				cur = out
				if acc.Stats().Mixed == mixedBefore {
					continue
				}
				checked++
				post := anderson.Snapshot(acc)
				rhs := post.F
				if tc.rhs == anderson.RHSResidual {
					rhs = post.G
				}
				requireNormalEquations(t, pre.DX, post.DG, rhs, post.Gamma)
				for i := range out {
					want, scale := post.F[i], 1+math.Abs(post.F[i])
					for q := range post.Gamma {
						want -= post.DF[i][q] * post.Gamma[q]
						scale += math.Abs(post.DF[i][q] * post.Gamma[q])
					}
					require.InDelta(t, want, out[i], 1e-12*scale)
				}
			}
			require.Positive(t, checked)
		})
	}
}

// requireNormalEquations asserts (DXᵀDG)·gamma ≈ DXᵀ·rhs relative to the row scale.
func requireNormalEquations(t *testing.T, dx, dg [][]float64, rhs, gamma []float64) {
	t.Helper()
	m := len(gamma)
	for p := 0; p < m; p++ {
		var lhs, scale, want float64
		for q := 0; q < m; q++ {
			var a float64
			for k := range dx {
				a += dx[k][p] * dg[k][q]
			}
			lhs += a * gamma[q]
			scale += math.Abs(a * gamma[q])
		}
		for k := range dx {
			want += dx[k][p] * rhs[k]
		}
		require.InDelta(t, want, lhs, 1e-9*(1+scale+math.Abs(want)), "row %d", p)
	}
}

// TestAffineRegression compares against values computed by hand for lookback 3 from x0 = 0.
func TestAffineRegression(t *testing.T) {
	// Before warm-up the output is the plain iteration.
	plain := [][]float64{
		{1, 2, 3},
		{1.7, 3.2, 4.3},
		{2.17, 3.82, 4.89},
		{2.467, 4.124, 5.173},
	}

	t.Run("map-output", func(t *testing.T) {
		acc := mustInit(t, 3, 3)
		outs := run(t, acc, []float64{0, 0, 0}, 5)
		for k := range plain {
			require.InDeltaSlice(t, plain[k], outs[k], 1e-12)
		}
		require.InDeltaSlice(t, []float64{7.144858651346525, 8.950054559288944, 9.65997097280253}, outs[4], 1e-9)
		require.Equal(t, anderson.Stats{Iterations: 5, Mixed: 1}, acc.Stats())
	})

	t.Run("residual", func(t *testing.T) {
		acc := mustInit(t, 3, 3, anderson.WithRHS(anderson.RHSResidual))
		outs := run(t, acc, []float64{0, 0, 0}, 12)
		for k := range plain {
			require.InDeltaSlice(t, plain[k], outs[k], 1e-12)
		}
		require.InDeltaSlice(t, []float64{2.8861980266142937, 4.422502631649807, 5.4705145295958095}, outs[4], 1e-9)
		require.InDeltaSlice(t, []float64{2.884615391719958, 4.42307692298691, 5.48076926976938}, outs[11], 1e-9)
		require.InDeltaSlice(t, fixed, outs[11], 1e-7)

		// The plain iteration is still far away after the same number of steps.
		x := []float64{0, 0, 0}
		for k := 0; k < 12; k++ {
			x = affine(x)
		}
		require.Greater(t, math.Abs(x[0]-fixed[0]), 1e-5)
	})
}

// TestAccelerateRollsBackOnFailure fails the reduction at each of its two
// call sites after warm-up and checks that the call leaves no trace and can
// be retried to the same result as an instance that never failed.
func TestAccelerateRollsBackOnFailure(t *testing.T) {
	errReduce := errors.New("reduce failed")
	// gamma is per-call scratch and is not part of the carried state.
	window := func(acc *anderson.Accelerator) anderson.Window {
		w := anderson.Snapshot(acc)
		w.Gamma = nil

		return w
	}
	for _, stage := range []int{1, 2} {
		calls, failAt := 0, -1
		flaky := func(dst, src linalg.Vector, _ int) error {
			calls++
			if calls == failAt {
				return errReduce
			}
			return dst.CopyFrom(src)
		}
		acc := mustInit(t, 3, 3, anderson.WithReduction(3, flaky))
		twin := mustInit(t, 3, 3)
		x0 := []float64{0, 0, 0}
		run(t, acc, x0, 5)
		outs := run(t, twin, x0, 5)

		next := affine(outs[len(outs)-1])
		iterate := append([]float64(nil), next...)
		before, stats := window(acc), acc.Stats()
		failAt = calls + stage
		err := acc.Accelerate(linalg.VectorFromSlice(iterate))
		require.ErrorIs(t, err, errReduce, "stage %d", stage)
		require.Equal(t, before, window(acc), "stage %d", stage)
		require.Equal(t, stats, acc.Stats(), "stage %d", stage)
		require.Equal(t, next, iterate, "stage %d", stage)

		want := append([]float64(nil), next...)
		require.NoError(t, acc.Accelerate(linalg.VectorFromSlice(iterate)))
		require.NoError(t, twin.Accelerate(linalg.VectorFromSlice(want)))
		require.Equal(t, want, iterate, "stage %d", stage)
		require.Equal(t, anderson.Snapshot(twin), anderson.Snapshot(acc), "stage %d", stage)
	}
}

// TestPrefixReduction accelerates only the leading block.
func TestPrefixReduction(t *testing.T) {
	acc := mustInit(t, 3, 3, anderson.WithReduction(2, anderson.PrefixReduction))
	run(t, acc, []float64{1, 1, 1}, 6)
	w := anderson.Snapshot(acc)
	require.Zero(t, w.X[2])
	require.Zero(t, w.G[2])
	for _, row := range w.DG[2:] {
		for _, v := range row {
			require.Zero(t, v)
		}
	}

	dst, _ := linalg.NewVector(3)
	require.ErrorIs(t, anderson.PrefixReduction(dst, linalg.VectorFromSlice([]float64{1, 2, 3}), 4), linalg.ErrOutOfBounds)
	require.NoError(t, anderson.PrefixReduction(dst, linalg.VectorFromSlice([]float64{1, 2, 3}), 3))
	require.Equal(t, []float64{1, 2, 3}, dst.ToSlice())
}

// TestReset returns to the Initialized state without reallocating.
func TestReset(t *testing.T) {
	acc := mustInit(t, 3, 3)
	first := run(t, acc, []float64{0, 0, 0}, 6)

	require.NoError(t, acc.Reset())
	w := anderson.Snapshot(acc)
	require.Zero(t, w.Iter)
	require.Equal(t, []float64{0, 0, 0}, w.X)
	require.Equal(t, anderson.Stats{}, acc.Stats())

	second := run(t, acc, []float64{0, 0, 0}, 6)
	require.Equal(t, first, second)
}

// TestIndependentInstances runs accelerators concurrently; each must match a sequential run.
func TestIndependentInstances(t *testing.T) {
	ref := run(t, mustInit(t, 3, 3, anderson.WithRHS(anderson.RHSResidual)), []float64{0, 0, 0}, 10)

	const workers = 4
	results := make([][]float64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var acc anderson.Accelerator
			if err := acc.Init(3, 3, anderson.WithRHS(anderson.RHSResidual)); err != nil {
				return
			}
			defer acc.Free()
			cur := []float64{0, 0, 0}
			_ = acc.SetX0(linalg.VectorFromSlice([]float64{0, 0, 0}))
			for k := 0; k < 10; k++ {
				out := affine(cur)
				if err := acc.Accelerate(linalg.VectorFromSlice(out)); err != nil {
					return
				}
				cur = out
			}
			results[w] = cur
		}(w)
	}
	wg.Wait()
	for w := range results {
		require.Equal(t, ref[9], results[w], "worker %d", w)
	}
}

// TestOptionPanics verifies programmer errors in option constructors.
func TestOptionPanics(t *testing.T) {
	require.Panics(t, func() { anderson.WithReduction(-1, nil) })
	require.Panics(t, func() { anderson.WithReduction(2, nil) })
	require.Panics(t, func() { anderson.WithSingularThreshold(0) })
	require.Panics(t, func() { anderson.WithSingularThreshold(math.NaN()) })
	require.Panics(t, func() { anderson.WithRHS(anderson.RHS(9)) })
	require.NotPanics(t, func() { anderson.WithReduction(0, nil) })
}
