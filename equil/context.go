// SPDX-License-Identifier: MIT

package equil

import (
	"fmt"

	"github.com/katalvlaran/optkit/linalg"
)

// withContext runs fn on ctx, or on a temporary context when ctx is nil.
// The temporary context is destroyed on every exit path and a teardown
// failure is folded into the result with linalg.MaxErr.
func withContext(ctx *linalg.Context, tag string, o Options, fn func(*linalg.Context) error) error {
	temporary := ctx == nil
	c, release, err := linalg.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	if temporary {
		o.logger.Debug().Str("op", tag).Msg("equil: temporary context created")
	}

	err = fn(c)
	if relErr := release(); relErr != nil {
		err = linalg.MaxErr(err, fmt.Errorf("%s: release: %w", tag, relErr))
	}
	if temporary {
		o.logger.Debug().Str("op", tag).Bool("live", c.Live()).Msg("equil: temporary context released")
	}

	return err
}
