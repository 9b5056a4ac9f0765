// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/katalvlaran/optkit/anderson"
	"github.com/katalvlaran/optkit/equil"
	"github.com/katalvlaran/optkit/linalg"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ---------- equil ----------

func newEquilCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equil FILE",
		Short: "Equilibrate a matrix with regularized Sinkhorn-Knopp",
		Long: `Computes row scales d and column scales e so that diag(d)·|A|·diag(e)
has balanced row and column 1-norms. Dense 1-norm problems use the
buffer variant; sparse input, --operator or a pnorm other than 1 scale
the operator in place.`,
		Args: cobra.ExactArgs(1),
		RunE: runEquil,
	}
	cmd.Flags().Float64("pnorm", 0, "Equilibrate in the p-norm sense (0 = value from file)")
	cmd.Flags().Bool("operator", false, "Force the operator variant for dense input")

	return cmd
}

func runEquil(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0])
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	if v, _ := cmd.Flags().GetFloat64("pnorm"); v != 0 {
		p.Sinkhorn.PNorm = v
	}
	forceOp, _ := cmd.Flags().GetBool("operator")

	opts := []equil.Option{equil.WithLogger(logger)}
	if p.Sinkhorn.MaxIter > 0 {
		opts = append(opts, equil.WithMaxIter(p.Sinkhorn.MaxIter))
	}
	if p.Sinkhorn.Tolerance > 0 {
		opts = append(opts, equil.WithTolerance(p.Sinkhorn.Tolerance))
	}
	if p.Sinkhorn.Regularization != nil {
		opts = append(opts, equil.WithRegularization(*p.Sinkhorn.Regularization))
	}

	m := &p.Matrix
	entries, order, err := m.Dense()
	if err != nil {
		return err
	}
	d, err := linalg.NewVector(m.Rows)
	if err != nil {
		return err
	}
	e, err := linalg.NewVector(m.Cols)
	if err != nil {
		return err
	}

	var res equil.Result
	variant := "dense"
	if m.Format == "dense" && p.Sinkhorn.PNorm == 1 && !forceOp {
		out, err := linalg.NewMatrix(m.Rows, m.Cols, order)
		if err != nil {
			return err
		}
		if res, err = equil.RegularizedSinkhornKnopp(nil, entries, out, d, e, order, opts...); err != nil {
			return err
		}
	} else {
		op, err := m.Operator()
		if err != nil {
			return err
		}
		variant = "operator/" + op.Kind().String()
		if res, err = equil.OperatorRegularizedSinkhorn(nil, op, d, e, p.Sinkhorn.PNorm, opts...); err != nil {
			return err
		}
	}

	rowNorms, colNorms := scaledNorms(entries, order, m.Rows, m.Cols, d.ToSlice(), e.ToSlice(), p.Sinkhorn.PNorm)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "variant:     %s (pnorm %g)\n", variant, p.Sinkhorn.PNorm)
	fmt.Fprintf(w, "iterations:  %d (converged: %t)\n", res.Iterations, res.Converged)
	fmt.Fprintf(w, "d:           %.6g\n", d.ToSlice())
	fmt.Fprintf(w, "e:           %.6g\n", e.ToSlice())
	printSpread(w, "row norms:", rowNorms)
	printSpread(w, "col norms:", colNorms)

	return nil
}

// scaledNorms returns the p-norms of the rows and columns of diag(d)·A·diag(e).
func scaledNorms(a []float64, order linalg.Order, rows, cols int, d, e []float64, pnorm float64) ([]float64, []float64) {
	rowNorms := make([]float64, rows)
	colNorms := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			k := i*cols + j
			if order == linalg.ColMajor {
				k = i + j*rows
			}
			v := math.Pow(math.Abs(d[i]*a[k]*e[j]), pnorm)
			rowNorms[i] += v
			colNorms[j] += v
		}
	}
	for _, s := range [][]float64{rowNorms, colNorms} {
		for i := range s {
			s[i] = math.Pow(s[i], 1/pnorm)
		}
	}

	return rowNorms, colNorms
}

func printSpread(w io.Writer, label string, v []float64) {
	lo, hi := floats.Min(v), floats.Max(v)
	ratio := math.Inf(1)
	if lo > 0 {
		ratio = hi / lo
	}
	fmt.Fprintf(w, "%-12s min %.6g  max %.6g  ratio %.4g\n", label, lo, hi, ratio)
}

// ---------- normest ----------

func newNormestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normest FILE",
		Short: "Estimate the spectral norm of a matrix by power iteration",
		Args:  cobra.ExactArgs(1),
		RunE:  runNormest,
	}
	cmd.Flags().Int64("seed", 0, "Seed for the random start vector (0 = value from file, else 1)")
	cmd.Flags().Bool("exact", false, "Also compute the largest singular value by SVD")

	return cmd
}

func runNormest(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0])
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	seed := p.Norm.Seed
	if v, _ := cmd.Flags().GetInt64("seed"); v != 0 {
		seed = v
	}
	if seed == 0 {
		seed = 1
	}

	opts := []equil.Option{equil.WithLogger(logger), equil.WithRand(rand.New(rand.NewSource(seed)))}
	if p.Norm.MaxIter > 0 {
		opts = append(opts, equil.WithMaxIter(p.Norm.MaxIter))
	}
	if p.Norm.Tolerance > 0 {
		opts = append(opts, equil.WithTolerance(p.Norm.Tolerance))
	}
	op, err := p.Matrix.Operator()
	if err != nil {
		return err
	}
	est, err := equil.EstimateNorm(nil, op, opts...)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "estimate:  %.10g\n", est)

	if exact, _ := cmd.Flags().GetBool("exact"); exact {
		sigma, err := spectralNorm(&p.Matrix)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "svd:       %.10g\n", sigma)
		if sigma > 0 {
			fmt.Fprintf(w, "rel. err:  %.3g\n", math.Abs(est-sigma)/sigma)
		}
	}

	return nil
}

// spectralNorm returns the largest singular value of the materialized matrix.
func spectralNorm(m *MatrixSpec) (float64, error) {
	entries, order, err := m.Dense()
	if err != nil {
		return 0, err
	}
	a, err := linalg.MatrixFromSlice(m.Rows, m.Cols, entries, order)
	if err != nil {
		return 0, err
	}
	rowMajor := make([]float64, m.Rows*m.Cols)
	if err = a.CopyToSlice(rowMajor, linalg.RowMajor); err != nil {
		return 0, err
	}
	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(m.Rows, m.Cols, rowMajor), mat.SVDNone) {
		return 0, fmt.Errorf("normest: SVD did not converge: %w", linalg.ErrBackend)
	}

	return floats.Max(svd.Values(nil)), nil
}

// ---------- anderson ----------

func newAndersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anderson FILE",
		Short: "Compare plain and Anderson-accelerated iteration of x ← A·x + b",
		Long: `Runs the affine fixed-point map x ← A·x + b from the problem file twice,
once plain and once through the Anderson accelerator, and prints the
fixed-point residual ‖A·x + b − x‖₂ of both sequences after every step.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnderson,
	}
	cmd.Flags().String("rhs", "", "Normal-equations right-hand side: residual | map-output (default residual)")
	cmd.Flags().Int("lookback", 0, "Window length (0 = value from file)")
	cmd.Flags().Int("iterations", 0, "Number of map applications (0 = value from file)")

	return cmd
}

func parseRHS(s string) (anderson.RHS, error) {
	switch s {
	case "", "residual":
		return anderson.RHSResidual, nil
	case "map-output":
		return anderson.RHSMapOutput, nil
	default:
		return 0, fmt.Errorf("%w: unknown rhs %q", errProblem, s)
	}
}

func runAnderson(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0])
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	cfg := p.Anderson
	if v, _ := cmd.Flags().GetString("rhs"); v != "" {
		cfg.RHS = v
	}
	if v, _ := cmd.Flags().GetInt("lookback"); v != 0 {
		cfg.Lookback = v
	}
	if v, _ := cmd.Flags().GetInt("iterations"); v != 0 {
		cfg.Iterations = v
	}
	rhs, err := parseRHS(cfg.RHS)
	if err != nil {
		return err
	}
	n := p.Matrix.Rows
	if p.Matrix.Cols != n {
		return fmt.Errorf("%w: anderson needs a square map, got %dx%d", errProblem, n, p.Matrix.Cols)
	}

	op, err := p.Matrix.Operator()
	if err != nil {
		return err
	}
	ctx, err := linalg.NewContext()
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	b := make([]float64, n)
	copy(b, p.Offset)
	x0 := make([]float64, n)
	copy(x0, p.X0)
	plain := linalg.VectorFromSlice(append([]float64(nil), x0...))
	fast := linalg.VectorFromSlice(append([]float64(nil), x0...))
	tmp, err := linalg.NewVector(n)
	if err != nil {
		return err
	}
	offset := linalg.VectorFromSlice(b)

	// step applies x ← A·x + b in place.
	step := func(x linalg.Vector) error {
		if err := op.Apply(ctx, x, tmp); err != nil {
			return err
		}
		if err := tmp.Add(offset); err != nil {
			return err
		}

		return x.CopyFrom(tmp)
	}
	// residual returns ‖A·x + b − x‖₂.
	residual := func(x linalg.Vector) (float64, error) {
		if err := op.Apply(ctx, x, tmp); err != nil {
			return 0, err
		}
		if err := tmp.Add(offset); err != nil {
			return 0, err
		}

		return floats.Distance(tmp.ToSlice(), x.ToSlice(), 2), nil
	}

	var acc anderson.Accelerator
	if err = acc.Init(n, cfg.Lookback, anderson.WithRHS(rhs), anderson.WithLogger(logger)); err != nil {
		return err
	}
	defer acc.Free()
	if err = acc.SetX0(fast); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%5s  %14s  %14s\n", "step", "plain", "anderson")
	for k := 1; k <= cfg.Iterations; k++ {
		if err = linalg.FirstErr(step(plain), step(fast)); err != nil {
			return err
		}
		if err = acc.Accelerate(fast); err != nil {
			return err
		}
		rp, err := residual(plain)
		if err != nil {
			return err
		}
		rf, err := residual(fast)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%5d  %14.6e  %14.6e\n", k, rp, rf)
	}
	st := acc.Stats()
	fmt.Fprintf(w, "mixed %d of %d calls, %d skipped as singular\n", st.Mixed, st.Iterations, st.Skipped)
	fmt.Fprintf(w, "x: %.8g\n", fast.ToSlice())

	return nil
}
