// SPDX-License-Identifier: MIT

package equil

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultSinkhornMaxIter caps the number of Sinkhorn-Knopp rounds.
	DefaultSinkhornMaxIter = 300

	// DefaultSinkhornTolerance bounds ‖d−d_prev‖₂ and ‖e−e_prev‖₂ at convergence.
	DefaultSinkhornTolerance = 1e-2

	// DefaultRegularization is the mass ε spread over each scaling vector
	// (ε/len added to every entry before the reciprocal).
	DefaultRegularization = 1e-4

	// DefaultNormMaxIter caps the number of power iterations in EstimateNorm.
	DefaultNormMaxIter = 50

	// DefaultNormTolerance is the relative change that stops EstimateNorm.
	DefaultNormTolerance = 1e-5
)

const (
	panicMaxIter        = "equil: WithMaxIter: n must be >= 1"
	panicTolerance      = "equil: WithTolerance: tol must be finite and > 0"
	panicRegularization = "equil: WithRegularization: eps must be finite and >= 0"
	panicNilRand        = "equil: WithRand: source must be non-nil"
)

// Option mutates call options.
type Option func(*Options)

// Options holds the effective configuration of one call.
// Zero maxIter/tol select the defaults of the routine being called.
type Options struct {
	maxIter int
	tol     float64
	reg     float64
	logger  zerolog.Logger
	rand    *rand.Rand
}

// WithMaxIter overrides the iteration cap.
func WithMaxIter(n int) Option {
	if n < 1 {
		panic(panicMaxIter)
	}

	return func(o *Options) { o.maxIter = n }
}

// WithTolerance overrides the stopping tolerance.
func WithTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		panic(panicTolerance)
	}

	return func(o *Options) { o.tol = tol }
}

// WithRegularization overrides ε in the Sinkhorn updates. ε = 0 gives the
// classical, unregularized iteration (all-zero rows then yield +Inf scales).
func WithRegularization(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicRegularization)
	}

	return func(o *Options) { o.reg = eps }
}

// WithLogger routes debug events (convergence, temporary contexts) to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithRand makes EstimateNorm draw its start vector from r instead of the
// process-wide math/rand source.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic(panicNilRand)
	}

	return func(o *Options) { o.rand = r }
}

// gatherOptions applies opts over the defaults of one routine.
func gatherOptions(maxIter int, tol float64, opts ...Option) Options {
	o := Options{reg: DefaultRegularization, logger: zerolog.Nop()}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	if o.maxIter == 0 {
		o.maxIter = maxIter
	}
	if o.tol == 0 {
		o.tol = tol
	}

	return o
}
