// SPDX-License-Identifier: MIT

// Package anderson: functional configuration for Accelerator.Init.
//
// Design goals:
//   - Defaults reproduce plain Type-II mixing: identity reduction, silent
//     logger, singular threshold linalg.DefaultRcondMin.
//   - Safe by construction: WithX panics on nonsensical values (programmer error).
package anderson

import (
	"math"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/rs/zerolog"
)

// DefaultSingularThreshold is the reciprocal condition number below which the
// normal equations are treated as singular and the mix is skipped.
const DefaultSingularThreshold = linalg.DefaultRcondMin

const (
	panicReductionDim  = "anderson: WithReduction: n must be >= 0"
	panicReductionFunc = "anderson: WithReduction: fn must be non-nil when n > 0"
	panicThreshold     = "anderson: WithSingularThreshold: rcond must be finite and in (0, 1]"
	panicRHS           = "anderson: WithRHS: unknown right-hand side"
)

// RHS selects the vector projected onto the window in the normal equations
// (DXᵀ·DG)·gamma = DXᵀ·rhs.
type RHS int

const (
	// RHSMapOutput uses the latest map output f. This is the default.
	RHSMapOutput RHS = iota
	// RHSResidual uses the latest residual g = reduce(f) − x, the textbook
	// Type-II choice; prefer it when the map output is far from zero.
	RHSResidual
)

// Option mutates accelerator options.
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	reduction  Reduction
	nReduction int
	rcondMin   float64
	rhs        RHS
	logger     zerolog.Logger
}

// WithReduction installs a projection applied to every iterate before it is
// differenced. n == 0 selects the identity regardless of fn.
func WithReduction(n int, fn Reduction) Option {
	if n < 0 {
		panic(panicReductionDim)
	}
	if n > 0 && fn == nil {
		panic(panicReductionFunc)
	}

	return func(o *Options) {
		o.nReduction = n
		o.reduction = fn
	}
}

// WithSingularThreshold sets the reciprocal-condition cut-off for skipping a mix.
func WithSingularThreshold(rcond float64) Option {
	if math.IsNaN(rcond) || rcond <= 0 || rcond > 1 {
		panic(panicThreshold)
	}

	return func(o *Options) { o.rcondMin = rcond }
}

// WithRHS selects the right-hand side of the normal equations.
func WithRHS(r RHS) Option {
	if r != RHSMapOutput && r != RHSResidual {
		panic(panicRHS)
	}

	return func(o *Options) { o.rhs = r }
}

// WithLogger routes debug events (skipped mixes, lifecycle) to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

func defaultOptions() Options {
	return Options{
		rcondMin: DefaultSingularThreshold,
		logger:   zerolog.Nop(),
	}
}

func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
