// SPDX-License-Identifier: MIT
// Package: anderson
//
// Purpose:
//   - Own the circular window (DX, DF, DG), the normal-equations workspace
//     (DXDG, pivot, gamma) and the scratch vectors (f, g, x).
//   - Own one BLAS context and one LAPACK context for the lifetime of the
//     accelerator; Free releases both exactly once.
//
// Determinism & Performance:
//   - All buffers are allocated in Init; Accelerate allocates only the LU
//     workspace inside linalg.LUFactor (O(m)).
//   - Buffers are column-major so every window column is a contiguous Vector.

package anderson

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/optkit/linalg"
	"gonum.org/v1/gonum/blas"
)

const (
	opInit       = "Accelerator.Init"
	opFree       = "Accelerator.Free"
	opSetX0      = "Accelerator.SetX0"
	opAccelerate = "Accelerator.Accelerate"
	opReset      = "Accelerator.Reset"
)

// Stats summarizes the calls made since Init or Reset.
type Stats struct {
	Iterations int // Accelerate calls completed
	Mixed      int // calls that applied iterate −= DF·gamma
	Skipped    int // post-warm-up calls whose normal equations were singular
}

// Accelerator is a Type-II Anderson difference accelerator.
// The zero value is Uninitialized; call Init before use.
type Accelerator struct {
	vectorDim   int
	lookbackDim int

	dx, df, dg *linalg.Matrix // vectorDim × m, col-major
	dxdg       *linalg.Matrix // m × m, col-major, overwritten by LU
	pivot      []int
	gamma      linalg.Vector // m

	f, g, x linalg.Vector // previous map output, residual, extrapolation point
	xr      linalg.Vector // reduction output
	undo    rollback      // pre-call copies restored when Accelerate fails

	blasCtx   *linalg.Context
	lapackCtx *linalg.Context

	reduce     Reduction
	nReduction int
	opts       Options

	iter  int
	stats Stats
	live  bool
}

// rollback holds the state one Accelerate call may overwrite.
type rollback struct {
	f, g, x             linalg.Vector
	dfCol, dgCol, dxCol linalg.Vector
	iterate             linalg.Vector
}

func (r *rollback) vectors() []*linalg.Vector {
	return []*linalg.Vector{&r.f, &r.g, &r.x, &r.dfCol, &r.dgCol, &r.dxCol, &r.iterate}
}

// Init allocates all buffers and both contexts.
//
// Implementation:
//   - Stage 1: reject nil receivers, live instances and degenerate sizes.
//   - Stage 2: clamp lookbackDim to vectorDim+1 (window wider than the space).
//   - Stage 3: allocate buffers, then the BLAS and LAPACK contexts; any
//     failure releases what was acquired.
//
// Errors:
//   - ErrUnallocated for a nil receiver.
//   - ErrOverwrite when already initialized (state untouched).
//   - ErrDimensionMismatch for vectorDim < 1 or lookbackDim < 2.
//
// Complexity:
//   - Time O(n·m + m²), Space O(n·m + m²).
func (a *Accelerator) Init(vectorDim, lookbackDim int, opts ...Option) (err error) {
	if a == nil {
		return fmt.Errorf("%s: %w", opInit, linalg.ErrUnallocated)
	}
	if a.live {
		return fmt.Errorf("%s: %w", opInit, linalg.ErrOverwrite)
	}
	if vectorDim < 1 || lookbackDim < 2 {
		return fmt.Errorf("%s(%d,%d): %w", opInit, vectorDim, lookbackDim, linalg.ErrDimensionMismatch)
	}
	o := gatherOptions(opts...)
	if o.nReduction > vectorDim {
		return fmt.Errorf("%s: reduction %d > %d: %w", opInit, o.nReduction, vectorDim, linalg.ErrDimensionMismatch)
	}
	if lookbackDim-1 > vectorDim {
		o.logger.Debug().Int("requested", lookbackDim).Int("clamped", vectorDim+1).Msg("anderson: lookback clamped")
		lookbackDim = vectorDim + 1
	}
	m := lookbackDim - 1

	*a = Accelerator{vectorDim: vectorDim, lookbackDim: lookbackDim, opts: o, reduce: identityReduction}
	if o.nReduction > 0 {
		a.reduce, a.nReduction = o.reduction, o.nReduction
	}
	defer func() {
		if err != nil {
			err = linalg.MaxErr(err, a.release())
			*a = Accelerator{}
		}
	}()

	for _, p := range []**linalg.Matrix{&a.dx, &a.df, &a.dg} {
		if *p, err = linalg.NewMatrix(vectorDim, m, linalg.ColMajor); err != nil {
			return fmt.Errorf("%s: %w", opInit, err)
		}
	}
	if a.dxdg, err = linalg.NewMatrix(m, m, linalg.ColMajor); err != nil {
		return fmt.Errorf("%s: %w", opInit, err)
	}
	a.pivot = make([]int, m)
	for _, p := range append([]*linalg.Vector{&a.f, &a.g, &a.x, &a.xr}, a.undo.vectors()...) {
		if *p, err = linalg.NewVector(vectorDim); err != nil {
			return fmt.Errorf("%s: %w", opInit, err)
		}
	}
	if a.gamma, err = linalg.NewVector(m); err != nil {
		return fmt.Errorf("%s: %w", opInit, err)
	}
	if a.blasCtx, err = linalg.NewContext(); err != nil {
		return fmt.Errorf("%s: blas: %w", opInit, err)
	}
	if a.lapackCtx, err = linalg.NewContext(); err != nil {
		return fmt.Errorf("%s: lapack: %w", opInit, err)
	}
	a.live = true
	o.logger.Debug().Int("vector_dim", vectorDim).Int("lookback_dim", lookbackDim).Msg("anderson: initialized")

	return nil
}

// release destroys whichever contexts exist and reports the most severe error.
func (a *Accelerator) release() error {
	var err error
	if a.blasCtx != nil {
		err = linalg.MaxErr(err, a.blasCtx.Destroy())
	}
	if a.lapackCtx != nil {
		err = linalg.MaxErr(err, a.lapackCtx.Destroy())
	}

	return err
}

// Free releases all buffers and both contexts.
//
// Errors:
//   - ErrUnallocated for a nil, never-initialized or already-freed accelerator.
//   - Otherwise the most severe context teardown error (nil on success).
func (a *Accelerator) Free() error {
	if a == nil || !a.live {
		return fmt.Errorf("%s: %w", opFree, linalg.ErrUnallocated)
	}
	err := a.release()
	logger := a.opts.logger
	*a = Accelerator{}
	logger.Debug().Err(err).Msg("anderson: freed")
	if err != nil {
		return fmt.Errorf("%s: %w", opFree, err)
	}

	return nil
}

// Live reports whether the accelerator is initialized and not yet freed.
func (a *Accelerator) Live() bool { return a != nil && a.live }

// Dims returns (vectorDim, lookbackDim) after clamping.
func (a *Accelerator) Dims() (vectorDim, lookbackDim int) { return a.vectorDim, a.lookbackDim }

// Stats returns the call counters.
func (a *Accelerator) Stats() Stats { return a.stats }

// check guards every public operation on a live instance.
func (a *Accelerator) check(tag string) error {
	if a == nil || !a.live {
		return fmt.Errorf("%s: %w", tag, linalg.ErrUnallocated)
	}

	return nil
}

// SetX0 seeds the extrapolation point: DX[:,0] −= reduce(x0), x := reduce(x0).
//
// Errors:
//   - ErrUnallocated before Init or after Free.
//   - ErrDimensionMismatch when len(x0) != vectorDim (no state change).
func (a *Accelerator) SetX0(x0 linalg.Vector) error {
	if err := a.check(opSetX0); err != nil {
		return err
	}
	if err := linalg.ValidateVecLen(x0, a.vectorDim); err != nil {
		return fmt.Errorf("%s: %w", opSetX0, err)
	}
	if err := a.reduce(a.xr, x0, a.nReduction); err != nil {
		return fmt.Errorf("%s: %w", opSetX0, err)
	}
	col, err := a.dx.Col(0)
	if err != nil {
		return fmt.Errorf("%s: %w", opSetX0, err)
	}
	if err = col.Sub(a.xr); err != nil {
		return fmt.Errorf("%s: %w", opSetX0, err)
	}

	return a.x.CopyFrom(a.xr)
}

// Accelerate replaces iterate, the raw output of the fixed-point map at the
// current point, by the extrapolated next point.
//
// Implementation (idx = iter mod m, next = (iter+1) mod m):
//   - Stage 1: DF[:,idx] = f − iterate; f := iterate.
//   - Stage 2: g' = reduce(iterate) − x; DG[:,idx] = g − g'; g := g'.
//   - Stage 3: when iter > lookbackDim solve (DXᵀDG)·gamma = DXᵀf; on success
//     iterate −= DF·gamma, on a singular system skip the mix.
//   - Stage 4: DX[:,next] = x − reduce(iterate); x := reduce(iterate).
//   - Stage 5: iter++.
//
// Errors:
//   - ErrUnallocated before Init or after Free.
//   - ErrDimensionMismatch when len(iterate) != vectorDim (no state change).
//   - Reduction and backend errors other than singularity are returned with
//     iterate, the window, f, g, x and the counters restored to their
//     pre-call values, so the call can be retried.
//
// Complexity:
//   - Time O(n·m² + m³), Space O(m) for the LU workspace.
func (a *Accelerator) Accelerate(iterate linalg.Vector) (err error) {
	if err = a.check(opAccelerate); err != nil {
		return err
	}
	if err = linalg.ValidateVecLen(iterate, a.vectorDim); err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}
	m := a.lookbackDim - 1
	idx, next := a.iter%m, (a.iter+1)%m
	fcol, err := a.df.Col(idx)
	if err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}
	gcol, err := a.dg.Col(idx)
	if err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}
	xcol, err := a.dx.Col(next)
	if err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}
	live := []linalg.Vector{a.f, a.g, a.x, fcol, gcol, xcol, iterate}
	if err = a.save(live); err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}
	stats := a.stats
	defer func() {
		if err != nil {
			err = linalg.MaxErr(err, a.restore(live))
			a.stats = stats
		}
	}()

	// Stage 1.
	if err = linalg.FirstErr(fcol.CopyFrom(a.f), a.f.CopyFrom(iterate)); err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}
	if err = fcol.Sub(a.f); err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}

	// Stage 2.
	if err = gcol.CopyFrom(a.g); err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}
	if err = a.reduce(a.xr, iterate, a.nReduction); err != nil {
		return fmt.Errorf("%s: reduce: %w", opAccelerate, err)
	}
	err = a.g.CopyFrom(a.xr)
	err = linalg.FirstErr(err, a.g.Sub(a.x))
	err = linalg.FirstErr(err, gcol.Sub(a.g))
	if err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}

	// Stage 3.
	if a.iter > a.lookbackDim {
		if err = a.mix(iterate); err != nil {
			return fmt.Errorf("%s: %w", opAccelerate, err)
		}
	}

	// Stage 4.
	if err = a.reduce(a.xr, iterate, a.nReduction); err != nil {
		return fmt.Errorf("%s: reduce: %w", opAccelerate, err)
	}
	err = xcol.CopyFrom(a.x)
	err = linalg.FirstErr(err, xcol.Sub(a.xr))
	err = linalg.FirstErr(err, a.x.CopyFrom(a.xr))
	if err != nil {
		return fmt.Errorf("%s: %w", opAccelerate, err)
	}

	// Stage 5.
	a.iter++
	a.stats.Iterations = a.iter

	return nil
}

// save copies the vectors Accelerate may overwrite, in rollback.vectors order.
func (a *Accelerator) save(live []linalg.Vector) error {
	var err error
	for k, p := range a.undo.vectors() {
		err = linalg.FirstErr(err, p.CopyFrom(live[k]))
	}

	return err
}

// restore writes the saved copies back.
func (a *Accelerator) restore(live []linalg.Vector) error {
	var err error
	for k, p := range a.undo.vectors() {
		err = linalg.FirstErr(err, live[k].CopyFrom(*p))
	}

	return err
}

// mix solves the normal equations and applies iterate −= DF·gamma.
// A singular system is absorbed: the call is counted as skipped and nil is returned.
func (a *Accelerator) mix(iterate linalg.Vector) error {
	solveErr := a.solve()
	if errors.Is(solveErr, linalg.ErrSingular) {
		a.stats.Skipped++
		a.opts.logger.Debug().Int("iter", a.iter).Msg("anderson: singular normal equations, mix skipped")
		return nil
	}
	if solveErr != nil {
		return solveErr
	}
	if err := linalg.Gemv(a.blasCtx, blas.NoTrans, -1, a.df, a.gamma, 1, iterate); err != nil {
		return err
	}
	a.stats.Mixed++

	return nil
}

// solve computes gamma = (DXᵀ·DG)⁻¹·(DXᵀ·rhs) with rhs = f (or g under
// RHSResidual); DXDG is overwritten by its LU factors.
func (a *Accelerator) solve() error {
	if err := linalg.Gemm(a.blasCtx, blas.Trans, blas.NoTrans, 1, a.dx, a.dg, 0, a.dxdg); err != nil {
		return err
	}
	rhs := a.f
	if a.opts.rhs == RHSResidual {
		rhs = a.g
	}
	if err := linalg.Gemv(a.blasCtx, blas.Trans, 1, a.dx, rhs, 0, a.gamma); err != nil {
		return err
	}

	return linalg.SolveLU(a.lapackCtx, a.dxdg, a.gamma, a.pivot, a.opts.rcondMin)
}

// Reset zeroes the window, scratch vectors and counters while keeping the
// buffers and contexts. The accelerator returns to the Initialized state.
func (a *Accelerator) Reset() error {
	if err := a.check(opReset); err != nil {
		return err
	}
	for _, mtx := range []*linalg.Matrix{a.dx, a.df, a.dg, a.dxdg} {
		clear(mtx.Data)
	}
	for _, v := range []linalg.Vector{a.f, a.g, a.x, a.xr, a.gamma} {
		clear(v.Data)
	}
	for _, p := range a.undo.vectors() {
		clear(p.Data)
	}
	a.iter = 0
	a.stats = Stats{}

	return nil
}
