// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matching implements iterated maximum matching: each round a
// maximum-value assignment gives at most one item per remaining agent,
// until capacities run out.
//
// Reference: Brustle, Dippel, Narayan, Suzuki, Vetta (2020),
// "One Dollar Each Eliminates Envy", https://arxiv.org/abs/1912.02797
package matching

import (
	"github.com/someonegg/fairalloc"
	"github.com/someonegg/fairalloc/linprog"
)

const mechName = "iterated-matching"

// Mechanism runs iterated maximum matching against a builder. The zero
// value uses the simplex solver, no utility adjustment, and discards
// the trace.
type Mechanism struct {
	// AdjustUtilities compensates an agent whose round value fell short
	// of its best achievable round value: the difference is added as a
	// bonus on the agent's best remaining item, raising its priority in
	// later rounds.
	AdjustUtilities bool

	Solver linprog.Solver
	Tracer fairalloc.Tracer
}

// Algorithm adapts a Mechanism without utility adjustment.
func Algorithm() fairalloc.Algorithm {
	return Mechanism{}.Run
}

// AdjustedAlgorithm adapts a Mechanism with utility adjustment.
func AdjustedAlgorithm() fairalloc.Algorithm {
	return Mechanism{AdjustUtilities: true}.Run
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

// Run iterates rounds of maximum-value matching until no further legal
// gift is possible. Agents matched to nothing in a round are retired.
// A solver failure ends the run softly: it is reported through the
// tracer and nothing further is assigned.
func (m Mechanism) Run(b *fairalloc.Builder) error {
	m = m.init()

	// bonus[agent][item] tops up the effective value when
	// AdjustUtilities is set.
	bonus := make(map[string]map[string]float64)
	value := func(agent, item string) float64 {
		return b.EffectiveValue(agent, item) + bonus[agent][item]
	}

	for round := 1; !b.Done(); round++ {
		agents := b.RemainingAgents()
		matched, ok := m.matchRound(b, value, round)
		if !ok {
			return nil
		}

		for _, agent := range agents {
			if _, got := matched[agent]; !got {
				b.RemoveAgent(agent)
			}
		}
		if len(matched) == 0 {
			return nil
		}

		// Best achievable round value per matched agent, taken before
		// any give mutates the remaining sets.
		var bestBefore map[string]float64
		if m.AdjustUtilities {
			bestBefore = make(map[string]float64, len(matched))
			for agent := range matched {
				best := 0.0
				for _, item := range b.RemainingItemsForAgent(agent) {
					if v := value(agent, item); v > best {
						best = v
					}
				}
				bestBefore[agent] = best
			}
		}

		for _, agent := range agents {
			if item, got := matched[agent]; got {
				b.Give(agent, item)
			}
		}
		m.Tracer.Round(mechName, round, len(matched))

		if m.AdjustUtilities {
			m.compensate(b, value, bonus, matched, bestBefore)
		}
	}
	return nil
}

// matchRound solves one maximum-value assignment: at most one item per
// agent, item loads within remaining capacity, forbidden pairs
// excluded.
func (m Mechanism) matchRound(b *fairalloc.Builder, value func(agent, item string) float64, round int) (map[string]string, bool) {
	agents := b.RemainingAgents()
	items := b.RemainingItems()

	p := linprog.NewProblem(linprog.Maximize)
	type varKey struct{ agent, item string }
	vars := make(map[varKey]int)
	perAgent := make(map[string]map[int]float64)
	perItem := make(map[string]map[int]float64)
	for _, agent := range agents {
		for _, item := range b.RemainingItemsForAgent(agent) {
			x := p.AddVar(value(agent, item), true)
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
	for _, agent := range agents {
		if coefs := perAgent[agent]; coefs != nil {
			p.AddConstraint(coefs, linprog.LE, 1)
		}
	}
	for _, item := range items {
		if coefs := perItem[item]; coefs != nil {
			p.AddConstraint(coefs, linprog.LE, float64(b.RemainingItemCapacity(item)))
		}
	}

	sol, err := m.Solver.Solve(p)
	if err != nil {
		m.Tracer.Infeasible(mechName, round, err)
		return nil, false
	}

	matched := make(map[string]string)
	for key, x := range vars {
		if sol.X[x] > 0.5 {
			matched[key.agent] = key.item
		}
	}
	return matched, true
}

// compensate adds the shortfall between the best achievable and the
// received round value as a bonus on the agent's best remaining item.
func (m Mechanism) compensate(b *fairalloc.Builder, value func(agent, item string) float64,
	bonus map[string]map[string]float64, matched map[string]string, bestBefore map[string]float64) {

	for agent, item := range matched {
		if b.RemainingAgentCapacity(agent) == 0 {
			continue
		}
		diff := bestBefore[agent] - value(agent, item)
		if diff <= 0 {
			continue
		}
		remaining := b.RemainingItemsForAgent(agent)
		if len(remaining) == 0 {
			continue
		}
		next := remaining[0]
		for _, it := range remaining[1:] {
			if value(agent, it) > value(agent, next) {
				next = it
			}
		}
		if bonus[agent] == nil {
			bonus[agent] = make(map[string]float64)
		}
		bonus[agent][next] += diff
	}
}
