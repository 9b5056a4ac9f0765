// SPDX-License-Identifier: MIT
// Package: linalg
//
// Purpose:
//  - Single source of truth for the shape/allocation guards that the engines
//    run before touching any buffer.
//  - Return wrapped sentinels so call sites can match with errors.Is.
//
// Determinism & Performance:
//  - All checks are pure, O(1) and allocate nothing.

package linalg

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return linalgErrorf(tag, err)
}

// ValidateVecLen ensures v is allocated and has exactly n elements.
//
// Errors: ErrUnallocated, ErrDimensionMismatch.
// Complexity: O(1).
func ValidateVecLen(v Vector, n int) error {
	if err := v.validate(); err != nil {
		return validatorErrorf("ValidateVecLen", err)
	}
	if v.Size != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateShape ensures m is allocated and is rows×cols.
//
// Errors: ErrUnallocated, ErrDimensionMismatch.
// Complexity: O(1).
func ValidateShape(m *Matrix, rows, cols int) error {
	if err := m.validate(); err != nil {
		return validatorErrorf("ValidateShape", err)
	}
	if m.Rows != rows || m.Cols != cols {
		return validatorErrorf("ValidateShape", ErrDimensionMismatch)
	}

	return nil
}

// ValidateScalings – Composite: rows×cols matrix → len(d) == rows → len(e) == cols.
// This is the guard every equilibration entry point runs before writing.
func ValidateScalings(m *Matrix, d, e Vector) error {
	if err := m.validate(); err != nil {
		return validatorErrorf("ValidateScalings", err)
	}
	if err := ValidateVecLen(d, m.Rows); err != nil {
		return validatorErrorf("ValidateScalings: d", err)
	}
	if err := ValidateVecLen(e, m.Cols); err != nil {
		return validatorErrorf("ValidateScalings: e", err)
	}

	return nil
}
