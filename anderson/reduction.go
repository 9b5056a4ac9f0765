// SPDX-License-Identifier: MIT

package anderson

import (
	"fmt"

	"github.com/katalvlaran/optkit/linalg"
)

// Reduction writes the projection of src onto an n-dimensional comparison
// space into dst. dst and src have the accelerator's vector dimension and
// never alias.
type Reduction func(dst, src linalg.Vector, n int) error

// PrefixReduction keeps the first n components of src and zeroes the rest.
// Use it when the accelerated unknowns form a leading block of the state.
func PrefixReduction(dst, src linalg.Vector, n int) error {
	if n < 0 || n > src.Size {
		return fmt.Errorf("PrefixReduction(%d): %w", n, linalg.ErrOutOfBounds)
	}
	if err := dst.CopyFrom(src); err != nil {
		return fmt.Errorf("PrefixReduction: %w", err)
	}
	tail, err := dst.Subvector(n, dst.Size-n)
	if err != nil {
		return fmt.Errorf("PrefixReduction: %w", err)
	}

	return tail.SetAll(0)
}

// identityReduction copies src into dst.
func identityReduction(dst, src linalg.Vector, _ int) error {
	return dst.CopyFrom(src)
}
