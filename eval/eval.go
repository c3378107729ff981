// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eval computes fairness metrics over a finished allocation:
// utilitarian and egalitarian value, envy, and deficit. It only reads
// the instance and the allocation; it contains no allocation logic.
package eval

import (
	"sort"

	"github.com/someonegg/fairalloc"
)

// Matrix holds, for every ordered pair of agents (i, j), the value
// agent i assigns to the bundle agent j received.
type Matrix struct {
	agents []string
	own    map[string]float64            // value of own bundle
	cross  map[string]map[string]float64 // i -> j -> i's value of j's bundle
	best   map[string]float64            // best value i could get from any bundle of its capacity
}

// NewMatrix evaluates the allocation against the instance. Pass a
// normalized instance (Instance.NormalizeValues) to compare agents on a
// common scale.
func NewMatrix(inst *fairalloc.Instance, alloc fairalloc.Allocation) *Matrix {
	m := &Matrix{
		agents: inst.Agents(),
		own:    make(map[string]float64),
		cross:  make(map[string]map[string]float64),
		best:   make(map[string]float64),
	}
	for _, i := range m.agents {
		row := make(map[string]float64, len(m.agents))
		for _, j := range m.agents {
			v := 0.0
			for _, item := range alloc[j] {
				v += inst.Value(i, item)
			}
			row[j] = v
		}
		m.cross[i] = row
		m.own[i] = row[i]
		m.best[i] = bestPossible(inst, i)
	}
	return m
}

// bestPossible is the fair-share target: the sum of the agent's top
// values over as many non-conflicting items as its capacity allows.
func bestPossible(inst *fairalloc.Instance, agent string) float64 {
	var vals []float64
	for _, item := range inst.Items() {
		if inst.AgentConflicts(agent, item) {
			continue
		}
		vals = append(vals, inst.Value(agent, item))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	n := inst.AgentCapacity(agent)
	if n > len(vals) {
		n = len(vals)
	}
	sum := 0.0
	for _, v := range vals[:n] {
		sum += v
	}
	return sum
}

// UtilitarianValue is the sum over agents of the value of their own
// bundle.
func (m *Matrix) UtilitarianValue() float64 {
	sum := 0.0
	for _, agent := range m.agents {
		sum += m.own[agent]
	}
	return sum
}

// EgalitarianValue is the minimum over agents of the value of their own
// bundle.
func (m *Matrix) EgalitarianValue() float64 {
	min := 0.0
	for i, agent := range m.agents {
		if v := m.own[agent]; i == 0 || v < min {
			min = v
		}
	}
	return min
}

// envyOf is how much the agent prefers the most enviable other bundle
// over its own, floored at zero.
func (m *Matrix) envyOf(agent string) float64 {
	worst := 0.0
	for _, other := range m.agents {
		if other == agent {
			continue
		}
		if e := m.cross[agent][other] - m.own[agent]; e > worst {
			worst = e
		}
	}
	return worst
}

// MaxEnvy is the largest pairwise envy across agents.
func (m *Matrix) MaxEnvy() float64 {
	worst := 0.0
	for _, agent := range m.agents {
		if e := m.envyOf(agent); e > worst {
			worst = e
		}
	}
	return worst
}

// MeanEnvy averages each agent's envy.
func (m *Matrix) MeanEnvy() float64 {
	if len(m.agents) == 0 {
		return 0
	}
	sum := 0.0
	for _, agent := range m.agents {
		sum += m.envyOf(agent)
	}
	return sum / float64(len(m.agents))
}

// deficitOf is the agent's shortfall from its fair-share target.
func (m *Matrix) deficitOf(agent string) float64 {
	if d := m.best[agent] - m.own[agent]; d > 0 {
		return d
	}
	return 0
}

// MaxDeficit is the largest shortfall from the fair-share target.
func (m *Matrix) MaxDeficit() float64 {
	worst := 0.0
	for _, agent := range m.agents {
		if d := m.deficitOf(agent); d > worst {
			worst = d
		}
	}
	return worst
}

// MeanDeficit averages each agent's shortfall.
func (m *Matrix) MeanDeficit() float64 {
	if len(m.agents) == 0 {
		return 0
	}
	sum := 0.0
	for _, agent := range m.agents {
		sum += m.deficitOf(agent)
	}
	return sum / float64(len(m.agents))
}

// AgentValue returns the agent's value of its own bundle.
func (m *Matrix) AgentValue(agent string) float64 { return m.own[agent] }

// AgentDeficit returns the agent's shortfall from its fair-share target.
func (m *Matrix) AgentDeficit(agent string) float64 { return m.deficitOf(agent) }

// Agents returns the agents in instance order.
func (m *Matrix) Agents() []string { return m.agents }
