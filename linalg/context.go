// SPDX-License-Identifier: MIT

package linalg

import (
	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/lapack"
)

const (
	ctxNewContext = "NewContext"
	ctxDestroy    = "Context.Destroy"
)

// Context is an opaque handle bound to one execution backend.
// It is created live by NewContext and becomes unusable after Destroy;
// every numeric call in this package validates it first.
//
// A Context is NOT safe for concurrent use.
type Context struct {
	blas   blas.Float64
	lapack lapack.Float64
	name   string
	live   bool
}

// Info describes the backend a Context is bound to.
type Info struct {
	Backend  string   // backend label (DefaultBackendName unless overridden)
	Features []string // CPU features visible to the process, e.g. "avx2", "fma", "asimd"
}

// NewContext creates a live Context.
//
// Implementation:
//   - Stage 1: resolve options over the gonum defaults.
//   - Stage 2: return the live handle.
//
// Errors:
//   - ErrBackend if an option left a backend unset.
//
// Complexity:
//   - Time O(1), Space O(1).
func NewContext(opts ...Option) (*Context, error) {
	o := gatherOptions(opts...)
	if o.blas == nil || o.lapack == nil {
		return nil, linalgErrorf(ctxNewContext, ErrBackend)
	}

	return &Context{blas: o.blas, lapack: o.lapack, name: o.name, live: true}, nil
}

// Destroy releases the Context. Destroying a nil or already destroyed
// Context returns ErrUnallocated instead of panicking.
func (c *Context) Destroy() error {
	if err := c.check(ctxDestroy); err != nil {
		return err
	}
	c.live = false
	c.blas = nil
	c.lapack = nil

	return nil
}

// Live reports whether c can still be used for numeric calls.
func (c *Context) Live() bool { return c != nil && c.live }

// Info reports the backend label and the CPU features seen by the process.
func (c *Context) Info() Info {
	info := Info{Backend: DefaultBackendName}
	if c != nil && c.name != "" {
		info.Backend = c.name
	}
	features := []struct {
		on   bool
		name string
	}{
		{cpu.X86.HasAVX, "avx"},
		{cpu.X86.HasAVX2, "avx2"},
		{cpu.X86.HasFMA, "fma"},
		{cpu.X86.HasAVX512F, "avx512f"},
		{cpu.ARM64.HasASIMD, "asimd"},
		{cpu.ARM64.HasSVE, "sve"},
	}
	for _, f := range features {
		if f.on {
			info.Features = append(info.Features, f.name)
		}
	}

	return info
}

// check validates the handle before use.
func (c *Context) check(tag string) error {
	if c == nil || !c.live {
		return linalgErrorf(tag, ErrUnallocated)
	}

	return nil
}

// Acquire returns a usable Context and its matching release function.
// When ctx is non-nil it is validated and returned with a no-op release;
// otherwise a temporary Context is created and release destroys it.
// Callers defer release so the temporary handle is freed on every exit path.
//
// AI-Hints:
//   - Fold the release error into the call's result with MaxErr.
func Acquire(ctx *Context, opts ...Option) (*Context, func() error, error) {
	if ctx != nil {
		if err := ctx.check("Acquire"); err != nil {
			return nil, noRelease, err
		}
		return ctx, noRelease, nil
	}
	tmp, err := NewContext(opts...)
	if err != nil {
		return nil, noRelease, err
	}

	return tmp, tmp.Destroy, nil
}

func noRelease() error { return nil }
