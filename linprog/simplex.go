// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linprog

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const defaultTol = 1e-9

// SimplexSolver solves problems with gonum's simplex method. The zero
// value is ready to use.
type SimplexSolver struct {
	// Tol is the pivot tolerance passed to the simplex; zero means a
	// reasonable default.
	Tol float64
}

// Solve lowers the problem to gonum's general LP form
// (min c'x s.t. Gx <= h, Ax = b, x free) and maps the standard-form
// solution back to the problem's variables.
func (s SimplexSolver) Solve(p *Problem) (*Solution, error) {
	n := len(p.obj)
	if n == 0 {
		return &Solution{}, nil
	}

	c := make([]float64, n)
	copy(c, p.obj)
	if p.sense == Maximize {
		for i := range c {
			c[i] = -c[i]
		}
	}

	var gRows, aRows [][]float64
	var h, b []float64
	row := func(coefs map[int]float64, neg bool) []float64 {
		r := make([]float64, n)
		for i, v := range coefs {
			if neg {
				v = -v
			}
			r[i] = v
		}
		return r
	}
	for _, con := range p.cons {
		switch con.Op {
		case LE:
			gRows, h = append(gRows, row(con.Coefs, false)), append(h, con.RHS)
		case GE:
			gRows, h = append(gRows, row(con.Coefs, true)), append(h, -con.RHS)
		case EQ:
			aRows, b = append(aRows, row(con.Coefs, false)), append(b, con.RHS)
		}
	}
	for i, nn := range p.nonneg {
		if nn {
			r := make([]float64, n)
			r[i] = -1
			gRows, h = append(gRows, r), append(h, 0)
		}
	}

	var g, a mat.Matrix
	if len(gRows) > 0 {
		g = denseOf(gRows, n)
	}
	if len(aRows) > 0 {
		a = denseOf(aRows, n)
	}

	tol := s.Tol
	if tol == 0 {
		tol = defaultTol
	}

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	opt, xStd, err := lp.Simplex(cStd, aStd, bStd, tol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, ErrInfeasible
		case errors.Is(err, lp.ErrUnbounded):
			return nil, ErrUnbounded
		default:
			return nil, fmt.Errorf("linprog: simplex: %w", err)
		}
	}

	// Convert splits every free variable into a positive and a negative
	// part: the standard solution is laid out [x+ x- slack].
	x := make([]float64, n)
	for i := range x {
		x[i] = xStd[i] - xStd[n+i]
	}
	if p.sense == Maximize {
		opt = -opt
	}
	return &Solution{Objective: opt, X: x}, nil
}

func denseOf(rows [][]float64, n int) *mat.Dense {
	m := mat.NewDense(len(rows), n, nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}
