// SPDX-License-Identifier: MIT
// Package linalg: status taxonomy shared by every optkit package.
// This file defines the package-level sentinels, their severity ranking and
// the two accumulation helpers used at call sites (FirstErr) and in teardown
// paths (MaxErr). Algorithms MUST return these sentinels (optionally wrapped
// with fmt.Errorf("Tag: %w", ErrX)) and tests MUST match them via errors.Is.

package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrBackend is the generic failure class for backend (BLAS/LAPACK) errors.
	ErrBackend = errors.New("optkit: backend failure")

	// ErrSingular marks a numerically singular factorization. It is a backend
	// failure, so errors.Is(err, ErrBackend) also holds.
	ErrSingular = fmt.Errorf("%w: singular matrix", ErrBackend)

	// ErrDivideByZero signals a degenerate norm inside an iterative estimate.
	ErrDivideByZero = errors.New("optkit: divide by zero")

	// ErrUnsupportedOperator rejects operator kinds outside the supported set.
	ErrUnsupportedOperator = errors.New("optkit: unsupported operator kind")

	// ErrDimensionMismatch indicates incompatible shapes or sizes between arguments.
	ErrDimensionMismatch = errors.New("optkit: dimension mismatch")

	// ErrOutOfBounds indicates an index or shift outside the valid range.
	ErrOutOfBounds = errors.New("optkit: index out of bounds")

	// ErrOverwrite rejects re-initialization of a live instance.
	ErrOverwrite = errors.New("optkit: overwrite of live instance")

	// ErrUnallocated signals a missing buffer, handle or instance (nil, freed, never initialized).
	ErrUnallocated = errors.New("optkit: unallocated")
)

// Severity ranks, lowest to highest. The numbering leaves room between classes.
const (
	SeverityNone        = 0
	SeverityGeneric     = 1
	SeverityBackend     = 5
	SeverityDivide      = 7
	SeverityUnsupported = 8
	SeverityDimension   = 9
	SeverityBounds      = 10
	SeverityOverwrite   = 100
	SeverityUnallocated = 101
)

// severityTable is ordered from most to least severe so that an error wrapping
// several sentinels reports the highest matching class.
var severityTable = []struct {
	err  error
	rank int
}{
	{ErrUnallocated, SeverityUnallocated},
	{ErrOverwrite, SeverityOverwrite},
	{ErrOutOfBounds, SeverityBounds},
	{ErrDimensionMismatch, SeverityDimension},
	{ErrUnsupportedOperator, SeverityUnsupported},
	{ErrDivideByZero, SeverityDivide},
	{ErrBackend, SeverityBackend},
}

// Severity returns the rank of err in the status taxonomy.
// nil ranks SeverityNone; errors outside the taxonomy rank SeverityGeneric.
// Complexity: O(k) errors.Is probes, k = number of sentinels.
func Severity(err error) int {
	if err == nil {
		return SeverityNone
	}
	for _, s := range severityTable {
		if errors.Is(err, s.err) {
			return s.rank
		}
	}

	return SeverityGeneric
}

// FirstErr keeps the first error seen: it returns prev when non-nil, otherwise next.
// Use it to accumulate errors along a multi-step call while still running
// best-effort steps after the first failure.
func FirstErr(prev, next error) error {
	if prev != nil {
		return prev
	}

	return next
}

// MaxErr returns the more severe of a and b (ties keep a).
// Teardown paths run every release step and fold results through MaxErr, so
// the caller sees the worst failure rather than merely the first one.
func MaxErr(a, b error) error {
	if Severity(b) > Severity(a) {
		return b
	}

	return a
}

// linalgErrorf wraps err with an operation tag, preserving the sentinel via %w.
// Only call with err != nil.
func linalgErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
