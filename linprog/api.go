// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linprog models small linear programs and solves them through
// an injected Solver capability, keeping the allocation mechanisms
// independent of the solving technology linked in.
package linprog

import "errors"

var (
	ErrInfeasible = errors.New("linprog: problem is infeasible")
	ErrUnbounded  = errors.New("linprog: problem is unbounded")
)

type Sense int

const (
	Minimize Sense = iota
	Maximize
)

type Op int

const (
	LE Op = iota // <=
	GE           // >=
	EQ           // ==
)

// Constraint is one linear constraint: sum(Coefs[i] * x[i]) Op RHS.
// Coefs is sparse, keyed by variable index.
type Constraint struct {
	Coefs map[int]float64
	Op    Op
	RHS   float64
}

// Problem is a linear program under construction. The zero value is
// unusable; start with NewProblem.
type Problem struct {
	sense  Sense
	obj    []float64
	nonneg []bool
	cons   []Constraint
}

func NewProblem(sense Sense) *Problem {
	return &Problem{sense: sense}
}

// AddVar declares a variable with the given objective coefficient and
// returns its index. Non-negative variables get an implicit x >= 0.
func (p *Problem) AddVar(objCoef float64, nonNegative bool) int {
	p.obj = append(p.obj, objCoef)
	p.nonneg = append(p.nonneg, nonNegative)
	return len(p.obj) - 1
}

// NumVars returns the number of declared variables.
func (p *Problem) NumVars() int { return len(p.obj) }

// AddConstraint appends one linear constraint.
func (p *Problem) AddConstraint(coefs map[int]float64, op Op, rhs float64) {
	p.cons = append(p.cons, Constraint{Coefs: coefs, Op: op, RHS: rhs})
}

// Solution is an optimal primal assignment.
type Solution struct {
	Objective float64
	X         []float64
}

// Solver is the opaque optimization backend: it returns an optimal
// objective value and a feasible assignment, or reports why it cannot.
type Solver interface {
	Solve(p *Problem) (*Solution, error)
}
