// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/katalvlaran/optkit/linalg"
	"github.com/katalvlaran/optkit/operator"
	"gopkg.in/yaml.v3"
)

// errProblem marks malformed problem files.
var errProblem = errors.New("optkit: invalid problem file")

// Problem is the YAML document every subcommand reads.
//
// Example:
//
//	matrix:
//	  rows: 2
//	  cols: 2
//	  format: dense        # dense | csr | csc
//	  order: row-major     # row-major | col-major (dense only)
//	  data: [0.5, 0.1, 0, 0.3]
//	offset: [1, 2]         # b in the anderson map x ← A·x + b
//	x0: [0, 0]
//	sinkhorn:
//	  max_iter: 300
//	  pnorm: 1
type Problem struct {
	Matrix   MatrixSpec   `yaml:"matrix"`
	Offset   []float64    `yaml:"offset"`
	X0       []float64    `yaml:"x0"`
	Sinkhorn SinkhornSpec `yaml:"sinkhorn"`
	Norm     NormSpec     `yaml:"norm"`
	Anderson AndersonSpec `yaml:"anderson"`
}

// MatrixSpec describes the operator. Dense matrices list Data in Order;
// sparse ones list Triplets as [row, col, value].
type MatrixSpec struct {
	Rows     int         `yaml:"rows"`
	Cols     int         `yaml:"cols"`
	Format   string      `yaml:"format"`
	Order    string      `yaml:"order"`
	Data     []float64   `yaml:"data"`
	Triplets [][]float64 `yaml:"triplets"`
}

// SinkhornSpec overrides the equilibration defaults; zero values keep them.
type SinkhornSpec struct {
	MaxIter        int      `yaml:"max_iter"`
	Tolerance      float64  `yaml:"tolerance"`
	Regularization *float64 `yaml:"regularization"`
	PNorm          float64  `yaml:"pnorm"`
}

// NormSpec overrides the norm estimate defaults.
type NormSpec struct {
	MaxIter   int     `yaml:"max_iter"`
	Tolerance float64 `yaml:"tolerance"`
	Seed      int64   `yaml:"seed"`
}

// AndersonSpec configures the acceleration demo.
type AndersonSpec struct {
	Lookback   int    `yaml:"lookback"`
	Iterations int    `yaml:"iterations"`
	RHS        string `yaml:"rhs"`
}

const (
	defaultLookback   = 5
	defaultIterations = 25
)

// loadProblem reads and validates a problem file.
func loadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	return parseProblem(data)
}

// parseProblem decodes a YAML document and fills defaults.
//
// Errors:
//   - errProblem for unknown keys, formats or orders and for shape mismatches.
func parseProblem(data []byte) (*Problem, error) {
	var p Problem
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", errProblem, err)
	}

	m := &p.Matrix
	if m.Rows <= 0 || m.Cols <= 0 {
		return nil, fmt.Errorf("%w: matrix shape %dx%d", errProblem, m.Rows, m.Cols)
	}
	if m.Format == "" {
		m.Format = "dense"
	}
	if m.Order == "" {
		m.Order = linalg.RowMajor.String()
	}
	if _, err := m.order(); err != nil {
		return nil, err
	}
	switch m.Format {
	case "dense":
		if len(m.Data) != m.Rows*m.Cols {
			return nil, fmt.Errorf("%w: dense data has %d entries, want %d", errProblem, len(m.Data), m.Rows*m.Cols)
		}
	case "csr", "csc":
		for k, t := range m.Triplets {
			if len(t) != 3 {
				return nil, fmt.Errorf("%w: triplet %d has %d fields", errProblem, k, len(t))
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", errProblem, m.Format)
	}

	if p.Offset != nil && len(p.Offset) != m.Rows {
		return nil, fmt.Errorf("%w: offset has %d entries, want %d", errProblem, len(p.Offset), m.Rows)
	}
	if p.X0 != nil && len(p.X0) != m.Cols {
		return nil, fmt.Errorf("%w: x0 has %d entries, want %d", errProblem, len(p.X0), m.Cols)
	}
	if p.Sinkhorn.PNorm == 0 {
		p.Sinkhorn.PNorm = 1
	}
	if p.Anderson.Lookback == 0 {
		p.Anderson.Lookback = defaultLookback
	}
	if p.Anderson.Iterations == 0 {
		p.Anderson.Iterations = defaultIterations
	}

	return &p, nil
}

func (m *MatrixSpec) order() (linalg.Order, error) {
	switch m.Order {
	case linalg.RowMajor.String():
		return linalg.RowMajor, nil
	case linalg.ColMajor.String():
		return linalg.ColMajor, nil
	default:
		return 0, fmt.Errorf("%w: unknown order %q", errProblem, m.Order)
	}
}

// Operator builds a fresh transformable operator from the description.
func (m *MatrixSpec) Operator() (operator.Transformable, error) {
	order, err := m.order()
	if err != nil {
		return nil, err
	}
	if m.Format == "dense" {
		data := append([]float64(nil), m.Data...)
		a, err := linalg.MatrixFromSlice(m.Rows, m.Cols, data, order)
		if err != nil {
			return nil, err
		}

		return operator.NewDense(a)
	}

	return m.sparse()
}

func (m *MatrixSpec) sparse() (*operator.Sparse, error) {
	kind := operator.KindSparseCSR
	if m.Format == "csc" {
		kind = operator.KindSparseCSC
	}
	is := make([]int, len(m.Triplets))
	js := make([]int, len(m.Triplets))
	vs := make([]float64, len(m.Triplets))
	for k, t := range m.Triplets {
		is[k], js[k], vs[k] = int(t[0]), int(t[1]), t[2]
	}

	return operator.FromTriplets(kind, m.Rows, m.Cols, is, js, vs)
}

// Dense returns the entries packed in the configured order, materializing
// sparse input.
func (m *MatrixSpec) Dense() ([]float64, linalg.Order, error) {
	order, err := m.order()
	if err != nil {
		return nil, 0, err
	}
	if m.Format == "dense" {
		return append([]float64(nil), m.Data...), order, nil
	}
	s, err := m.sparse()
	if err != nil {
		return nil, 0, err
	}
	a, err := s.ToDense(order)
	if err != nil {
		return nil, 0, err
	}
	out := make([]float64, m.Rows*m.Cols)
	if err = a.CopyToSlice(out, order); err != nil {
		return nil, 0, err
	}

	return out, order, nil
}
