// SPDX-License-Identifier: MIT

package linalg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/stretchr/testify/require"
)

// TestSingularIsBackend verifies that a singular factorization is also a backend failure.
func TestSingularIsBackend(t *testing.T) {
	require.ErrorIs(t, linalg.ErrSingular, linalg.ErrBackend)
	require.False(t, errors.Is(linalg.ErrBackend, linalg.ErrSingular))
}

// TestSeverityOrdering checks the documented ranking, including wrapped errors.
func TestSeverityOrdering(t *testing.T) {
	require.Equal(t, linalg.SeverityNone, linalg.Severity(nil))
	require.Equal(t, linalg.SeverityGeneric, linalg.Severity(errors.New("other")))
	require.Equal(t, linalg.SeverityBackend, linalg.Severity(linalg.ErrSingular))
	require.Equal(t, linalg.SeverityUnallocated,
		linalg.Severity(fmt.Errorf("Free: %w", linalg.ErrUnallocated)))

	ranked := []error{
		linalg.ErrBackend,
		linalg.ErrDivideByZero,
		linalg.ErrUnsupportedOperator,
		linalg.ErrDimensionMismatch,
		linalg.ErrOutOfBounds,
		linalg.ErrOverwrite,
		linalg.ErrUnallocated,
	}
	for i := 1; i < len(ranked); i++ {
		require.Greater(t, linalg.Severity(ranked[i]), linalg.Severity(ranked[i-1]))
	}
}

// TestMaxErrFirstErr exercises the two accumulation policies.
func TestMaxErrFirstErr(t *testing.T) {
	dim := fmt.Errorf("a: %w", linalg.ErrDimensionMismatch)
	un := fmt.Errorf("b: %w", linalg.ErrUnallocated)

	require.Equal(t, un, linalg.MaxErr(dim, un))
	require.Equal(t, un, linalg.MaxErr(un, dim))
	require.Equal(t, dim, linalg.MaxErr(nil, dim))
	require.Nil(t, linalg.MaxErr(nil, nil))

	require.Equal(t, dim, linalg.FirstErr(dim, un))
	require.Equal(t, un, linalg.FirstErr(nil, un))
}
