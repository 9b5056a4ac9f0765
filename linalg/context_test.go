// SPDX-License-Identifier: MIT

package linalg_test

import (
	"testing"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/stretchr/testify/require"
	gblas "gonum.org/v1/gonum/blas/gonum"
)

// TestContextLifecycle covers create → destroy → destroy again.
func TestContextLifecycle(t *testing.T) {
	ctx, err := linalg.NewContext()
	require.NoError(t, err)
	require.True(t, ctx.Live())
	require.Equal(t, linalg.DefaultBackendName, ctx.Info().Backend)

	require.NoError(t, ctx.Destroy())
	require.False(t, ctx.Live())
	require.ErrorIs(t, ctx.Destroy(), linalg.ErrUnallocated)

	var nilCtx *linalg.Context
	require.ErrorIs(t, nilCtx.Destroy(), linalg.ErrUnallocated)
	require.False(t, nilCtx.Live())
}

// TestDestroyedContextRejectsCalls ensures use-after-destroy is an error, not a panic.
func TestDestroyedContextRejectsCalls(t *testing.T) {
	ctx, err := linalg.NewContext()
	require.NoError(t, err)
	require.NoError(t, ctx.Destroy())

	x := linalg.VectorFromSlice([]float64{3, 4})
	_, err = linalg.Nrm2(ctx, x)
	require.ErrorIs(t, err, linalg.ErrUnallocated)
	_, err = linalg.Nrm2(nil, x)
	require.ErrorIs(t, err, linalg.ErrUnallocated)
}

// TestContextOptions checks option wiring and constructor panics.
func TestContextOptions(t *testing.T) {
	ctx, err := linalg.NewContext(linalg.WithBLAS(gblas.Implementation{}), linalg.WithBackendName("custom"))
	require.NoError(t, err)
	defer ctx.Destroy()
	require.Equal(t, "custom", ctx.Info().Backend)

	require.Panics(t, func() { linalg.WithBLAS(nil) })
	require.Panics(t, func() { linalg.WithLAPACK(nil) })
	require.Panics(t, func() { linalg.WithBackendName("") })
}

// TestAcquire covers both the borrowed and the temporary paths.
func TestAcquire(t *testing.T) {
	owned := mustContext(t)
	got, release, err := linalg.Acquire(owned)
	require.NoError(t, err)
	require.Same(t, owned, got)
	require.NoError(t, release())
	require.True(t, owned.Live(), "borrowed context must survive release")

	tmp, release, err := linalg.Acquire(nil)
	require.NoError(t, err)
	require.True(t, tmp.Live())
	require.NoError(t, release())
	require.False(t, tmp.Live(), "temporary context must be destroyed by release")

	dead, err := linalg.NewContext()
	require.NoError(t, err)
	require.NoError(t, dead.Destroy())
	_, release, err = linalg.Acquire(dead)
	require.ErrorIs(t, err, linalg.ErrUnallocated)
	require.NoError(t, release())
}
