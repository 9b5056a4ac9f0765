// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
matrix:
  rows: 4
  cols: 3
  data: [1, -2, 0,
         0, 3, 1,
         4, 0, -5,
         2, 2, 2]
`

const diagYAML = `
matrix:
  rows: 4
  cols: 4
  format: csr
  triplets:
    - [2, 2, -1.2]
    - [0, 0, 0.5]
    - [3, 3, 2]
    - [1, 1, 3]
norm:
  seed: 5
`

const affineYAML = `
matrix:
  rows: 2
  cols: 2
  order: col-major
  data: [0.9, 0, 0, 0.5]
offset: [1, 1]
x0: [0, 5]
anderson:
  lookback: 3
  iterations: 12
`

func writeProblem(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()

	return out.String(), errOut.String(), err
}

// field returns the text after label on the first line that starts with it.
func field(t *testing.T, out, label string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	t.Fatalf("no %q line in:\n%s", label, out)

	return ""
}

func TestParseProblemDefaults(t *testing.T) {
	p, err := parseProblem([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Equal(t, "dense", p.Matrix.Format)
	require.Equal(t, "row-major", p.Matrix.Order)
	require.Equal(t, 1.0, p.Sinkhorn.PNorm)
	require.Nil(t, p.Sinkhorn.Regularization)
	require.Equal(t, defaultLookback, p.Anderson.Lookback)
	require.Equal(t, defaultIterations, p.Anderson.Iterations)
}

func TestParseProblemRejects(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"unknown key":    "matrix: {rows: 1, cols: 1, data: [1]}\nbogus: 1\n",
		"bad shape":      "matrix: {rows: 0, cols: 1}\n",
		"short data":     "matrix: {rows: 2, cols: 2, data: [1, 2, 3]}\n",
		"unknown format": "matrix: {rows: 1, cols: 1, format: coo}\n",
		"unknown order":  "matrix: {rows: 1, cols: 1, order: diagonal, data: [1]}\n",
		"bad triplet":    "matrix: {rows: 1, cols: 1, format: csr, triplets: [[0, 0]]}\n",
		"offset length":  "matrix: {rows: 1, cols: 1, data: [1]}\noffset: [1, 2]\n",
		"x0 length":      "matrix: {rows: 1, cols: 1, data: [1]}\nx0: [1, 2]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseProblem([]byte(body))
			require.ErrorIs(t, err, errProblem)
		})
	}
}

func TestMatrixSpecDenseFromTriplets(t *testing.T) {
	p, err := parseProblem([]byte(diagYAML))
	require.NoError(t, err)
	got, order, err := p.Matrix.Dense()
	require.NoError(t, err)
	require.Equal(t, linalg.RowMajor, order)
	require.Equal(t, []float64{
		0.5, 0, 0, 0,
		0, 3, 0, 0,
		0, 0, -1.2, 0,
		0, 0, 0, 2,
	}, got)

	op, err := p.Matrix.Operator()
	require.NoError(t, err)
	require.Equal(t, "sparse-csr", op.Kind().String())
}

func TestLoadProblemMissingFile(t *testing.T) {
	_, err := loadProblem(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "optkit v"+version)
}

func TestEquilCommand(t *testing.T) {
	path := writeProblem(t, fixtureYAML)

	out, _, err := run(t, "equil", path)
	require.NoError(t, err)
	require.Equal(t, "dense (pnorm 1)", field(t, out, "variant:"))
	require.Equal(t, "5 (converged: true)", field(t, out, "iterations:"))
	require.Contains(t, out, "row norms:")

	out, _, err = run(t, "equil", "--operator", path)
	require.NoError(t, err)
	require.Equal(t, "operator/dense (pnorm 1)", field(t, out, "variant:"))
	require.Equal(t, "5 (converged: true)", field(t, out, "iterations:"))

	out, _, err = run(t, "equil", "--pnorm", "2", path)
	require.NoError(t, err)
	require.Equal(t, "operator/dense (pnorm 2)", field(t, out, "variant:"))
	require.Equal(t, "8 (converged: true)", field(t, out, "iterations:"))
}

func TestEquilCommandVerboseLogs(t *testing.T) {
	path := writeProblem(t, fixtureYAML)
	_, logs, err := run(t, "equil", "-v", path)
	require.NoError(t, err)
	require.Contains(t, logs, "equil: sinkhorn-knopp finished")
	require.Contains(t, logs, "equil: temporary context released")

	_, logs, err = run(t, "equil", path)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestNormestCommand(t *testing.T) {
	path := writeProblem(t, diagYAML)
	out, _, err := run(t, "normest", "--exact", path)
	require.NoError(t, err)

	var est, sigma, rel float64
	_, err = fmt.Sscan(field(t, out, "estimate:"), &est)
	require.NoError(t, err)
	_, err = fmt.Sscan(field(t, out, "svd:"), &sigma)
	require.NoError(t, err)
	_, err = fmt.Sscan(field(t, out, "rel. err:"), &rel)
	require.NoError(t, err)
	require.InEpsilon(t, 3, est, 1e-5)
	require.InEpsilon(t, 3, sigma, 1e-12)
	require.Less(t, rel, 1e-5)
}

func TestAndersonCommand(t *testing.T) {
	path := writeProblem(t, affineYAML)
	out, _, err := run(t, "anderson", path)
	require.NoError(t, err)
	require.Contains(t, out, "step")

	var x0, x1 float64
	_, err = fmt.Sscanf(field(t, out, "x:"), "[%g %g]", &x0, &x1)
	require.NoError(t, err)
	require.InDelta(t, 10, x0, 1e-6)
	require.InDelta(t, 2, x1, 1e-6)

	_, _, err = run(t, "anderson", "--rhs", "map-output", "--iterations", "4", path)
	require.NoError(t, err)

	_, _, err = run(t, "anderson", "--rhs", "newton", path)
	require.ErrorIs(t, err, errProblem)

	_, _, err = run(t, "anderson", writeProblem(t, fixtureYAML))
	require.ErrorIs(t, err, errProblem)
}
