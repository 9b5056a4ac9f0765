// SPDX-License-Identifier: MIT

// Package linalg: functional configuration for Context creation.
//
// Design goals:
//   - No global state: the chosen backends live inside the Context only.
//   - Safe by construction: WithX panics on nonsensical values (programmer error).
//   - Defaults are gonum's pure-Go BLAS and LAPACK implementations.
package linalg

import (
	"gonum.org/v1/gonum/blas"
	gblas "gonum.org/v1/gonum/blas/gonum"
	"gonum.org/v1/gonum/lapack"
	glapack "gonum.org/v1/gonum/lapack/gonum"
)

// DefaultBackendName labels contexts built on the default gonum backends.
const DefaultBackendName = "gonum"

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicNilBLAS    = "linalg: WithBLAS: implementation must be non-nil"
	panicNilLAPACK  = "linalg: WithLAPACK: implementation must be non-nil"
	panicEmptyLabel = "linalg: WithBackendName: name must be non-empty"
)

// Option mutates Context options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective Context configuration after applying Option setters.
type Options struct {
	blas   blas.Float64   // level 1–3 kernels
	lapack lapack.Float64 // factorizations
	name   string         // reported by Context.Info
}

// WithBLAS binds the Context to a specific BLAS implementation
// (e.g., a cgo netlib binding). Panics on nil.
func WithBLAS(impl blas.Float64) Option {
	if impl == nil {
		panic(panicNilBLAS)
	}

	return func(o *Options) { o.blas = impl }
}

// WithLAPACK binds the Context to a specific LAPACK implementation. Panics on nil.
func WithLAPACK(impl lapack.Float64) Option {
	if impl == nil {
		panic(panicNilLAPACK)
	}

	return func(o *Options) { o.lapack = impl }
}

// WithBackendName sets the label reported by Context.Info. Panics on "".
func WithBackendName(name string) Option {
	if name == "" {
		panic(panicEmptyLabel)
	}

	return func(o *Options) { o.name = name }
}

// defaultOptions returns the single source of truth for zero-value behavior.
func defaultOptions() Options {
	return Options{
		blas:   gblas.Implementation{},
		lapack: glapack.Implementation{},
		name:   DefaultBackendName,
	}
}

// gatherOptions applies opts over the defaults. nil options are skipped.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
