// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spo implements the SP-O mechanism: an iterative,
// optimization-based allocation that each round gives at most one item
// per remaining agent via a rank-based integer assignment, then derives
// canonical per-item prices from a dual pricing program.
//
// Reference: Atef Yekta, Day (2020), "Optimization-based Mechanisms for
// the Course Allocation Problem", https://doi.org/10.1287/ijoc.2018.0849
package spo

import (
	"sort"

	"github.com/someonegg/fairalloc"
	"github.com/someonegg/fairalloc/linprog"
)

const mechName = "SP-O"

// Mechanism runs SP-O against a builder. The zero value uses the
// simplex solver and discards the trace.
type Mechanism struct {
	Solver linprog.Solver
	Tracer fairalloc.Tracer
}

// Algorithm adapts a default Mechanism to the fairalloc.Algorithm shape.
func Algorithm() fairalloc.Algorithm {
	return Mechanism{}.Run
}

func (m Mechanism) init() Mechanism {
	if m.Solver == nil {
		m.Solver = linprog.SimplexSolver{}
	}
	if m.Tracer == nil {
		m.Tracer = fairalloc.NopTracer{}
	}
	return m
}

// Run executes one SP-O allocation. The number of rounds is the largest
// remaining agent capacity at start; every round allocates at most one
// item per agent. A round whose solve fails is reported through the
// tracer and assigns nothing; the run itself never fails on solver
// trouble.
func (m Mechanism) Run(b *fairalloc.Builder) error {
	m = m.init()

	rounds := 0
	for _, agent := range b.RemainingAgents() {
		if c := b.RemainingAgentCapacity(agent); c > rounds {
			rounds = c
		}
	}

	for round := 1; round <= rounds; round++ {
		if b.Done() {
			break
		}
		m.runRound(b, round)
	}
	return nil
}

// ranking holds one round's rank weights: for every agent, eligible
// items carry weight |eligible|, |eligible|-1, ... 1 from most to least
// preferred; ineligible items carry the "never chosen" weight zero.
type ranking struct {
	agents  []string
	items   []string
	itemIdx map[string]int
	weight  map[string]map[string]float64 // agent -> eligible item -> weight
}

func rankRound(b *fairalloc.Builder) *ranking {
	r := &ranking{
		agents:  b.RemainingAgents(),
		items:   b.RemainingItems(),
		itemIdx: make(map[string]int),
		weight:  make(map[string]map[string]float64),
	}
	for i, item := range r.items {
		r.itemIdx[item] = i
	}
	for _, agent := range r.agents {
		eligible := b.RemainingItemsForAgent(agent)
		// Most preferred first; value ties keep the stable item order.
		sort.SliceStable(eligible, func(i, j int) bool {
			return b.EffectiveValue(agent, eligible[i]) > b.EffectiveValue(agent, eligible[j])
		})
		w := make(map[string]float64, len(eligible))
		for rank, item := range eligible {
			w[item] = float64(len(eligible) - rank)
		}
		r.weight[agent] = w
	}
	return r
}

func (r *ranking) weightOf(agent, item string) float64 {
	return r.weight[agent][item]
}

func (m Mechanism) runRound(b *fairalloc.Builder, round int) {
	r := rankRound(b)
	if len(r.agents) == 0 || len(r.items) == 0 {
		return
	}

	assigned, rankZ, ok := m.solveAssignment(b, r, round)
	if !ok {
		return
	}

	m.solvePrices(b, r, round, rankZ)

	// Commit in stable agent order; the assignment honors remaining
	// capacities and the forbidden set by construction, so Give cannot
	// trip its contract here.
	for _, agent := range r.agents {
		if item, got := assigned[agent]; got {
			b.Give(agent, item)
		}
	}
	m.Tracer.Round(mechName, round, len(assigned))
}

// solveAssignment is the primal stage: a 0/1 assignment maximizing the
// total rank weight, one item per agent this round, item loads within
// remaining capacity, forbidden pairs excluded. Ties on rank weight
// break toward higher total effective value, which makes the chosen
// optimum deterministic; the scale factor keeps the two objectives
// lexicographic. rankZ is the rank-only optimal objective.
func (m Mechanism) solveAssignment(b *fairalloc.Builder, r *ranking, round int) (map[string]string, float64, bool) {
	scale := 1.0
	for _, agent := range r.agents {
		best := 0.0
		for _, item := range r.items {
			if v := b.EffectiveValue(agent, item); v > best {
				best = v
			}
		}
		scale += best
	}

	p := linprog.NewProblem(linprog.Maximize)
	type varKey struct{ agent, item string }
	vars := make(map[varKey]int)
	perAgent := make(map[string]map[int]float64)
	perItem := make(map[string]map[int]float64)
	// Variables are declared in stable (agent, item) order so that the
	// simplex walks an identical tableau on identical rounds.
	for _, agent := range r.agents {
		for _, item := range r.items {
			w, eligible := r.weight[agent][item]
			if !eligible {
				continue
			}
			x := p.AddVar(w*scale+b.EffectiveValue(agent, item), true)
			vars[varKey{agent, item}] = x
			if perAgent[agent] == nil {
				perAgent[agent] = make(map[int]float64)
			}
			perAgent[agent][x] = 1
			if perItem[item] == nil {
				perItem[item] = make(map[int]float64)
			}
			perItem[item][x] = 1
		}
	}
	for _, agent := range r.agents {
		if coefs := perAgent[agent]; coefs != nil {
			p.AddConstraint(coefs, linprog.LE, 1)
		}
	}
	for _, item := range r.items {
		if coefs := perItem[item]; coefs != nil {
			p.AddConstraint(coefs, linprog.LE, float64(b.RemainingItemCapacity(item)))
		}
	}

	sol, err := m.Solver.Solve(p)
	if err != nil {
		m.Tracer.Infeasible(mechName, round, err)
		return nil, 0, false
	}

	// The assignment polytope is integral; rounding at one half only
	// guards against solver noise.
	assigned := make(map[string]string)
	rankZ := 0.0
	for key, x := range vars {
		if sol.X[x] > 0.5 {
			assigned[key.agent] = key.item
			rankZ += r.weightOf(key.agent, key.item)
		}
	}
	return assigned, rankZ, true
}

// solvePrices is the dual stage and its refinement: first minimize
// Z*D + sum(cap*p) + sum(v) subject to
// p[item] + v[agent] + weight*D >= value for every pair, then pin the
// canonical minimal prices by re-minimizing sum(cap*p) with the first
// optimum held as an equality. Prices are diagnostics only: failures
// are soft and the round's assignment stands.
func (m Mechanism) solvePrices(b *fairalloc.Builder, r *ranking, round int, rankZ float64) {
	// Both stages share the variables (D free, one price per item, one
	// value per agent) and the covering constraints; they differ in the
	// objective, and the refinement pins the dual optimum.
	build := func(refineTo float64, refine bool) (*linprog.Problem, []int) {
		p := linprog.NewProblem(linprog.Minimize)
		dObj := rankZ
		if refine {
			dObj = 0
		}
		d := p.AddVar(dObj, false)
		itemVars := make([]int, len(r.items))
		for j, item := range r.items {
			itemVars[j] = p.AddVar(float64(b.RemainingItemCapacity(item)), true)
		}
		agentVars := make([]int, len(r.agents))
		for i := range r.agents {
			vObj := 1.0
			if refine {
				vObj = 0
			}
			agentVars[i] = p.AddVar(vObj, true)
		}
		for i, agent := range r.agents {
			for j, item := range r.items {
				p.AddConstraint(map[int]float64{
					itemVars[j]:  1,
					agentVars[i]: 1,
					d:            r.weightOf(agent, item),
				}, linprog.GE, b.EffectiveValue(agent, item))
			}
		}
		if refine {
			pin := make(map[int]float64, len(itemVars)+len(agentVars)+1)
			pin[d] = rankZ
			for j, item := range r.items {
				pin[itemVars[j]] = float64(b.RemainingItemCapacity(item))
			}
			for _, v := range agentVars {
				pin[v] = 1
			}
			p.AddConstraint(pin, linprog.EQ, refineTo)
		}
		return p, itemVars
	}

	dual, dualItemVars := build(0, false)
	dualSol, err := m.Solver.Solve(dual)
	if err != nil {
		m.Tracer.Infeasible(mechName, round, err)
		return
	}

	prices := make(map[string]float64, len(r.items))
	refine, itemVars := build(dualSol.Objective, true)
	refineSol, err := m.Solver.Solve(refine)
	if err != nil {
		// Keep the unrefined prices.
		m.Tracer.Infeasible(mechName, round, err)
		for j, item := range r.items {
			prices[item] = dualSol.X[dualItemVars[j]]
		}
		m.Tracer.Prices(mechName, round, prices)
		return
	}
	for j, item := range r.items {
		prices[item] = refineSol.X[itemVars[j]]
	}
	m.Tracer.Prices(mechName, round, prices)
}
