// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fairalloc

import (
	"fmt"
	"math"
)

// Instance is an immutable description of one allocation problem:
// agents, items, capacities, valuations and conflicts. Build it once
// with NewInstance and share it freely; every Divide call derives its
// own mutable state from it.
type Instance struct {
	agents []Agent
	items  []Item

	agentIdx map[string]int
	itemIdx  map[string]int

	values    map[string]map[string]float64
	agentConf map[string]map[string]bool
	itemConf  map[string]map[string]bool
}

// NewInstance validates and compiles a problem description. It fails on
// negative capacities, non-finite or negative valuations, duplicate IDs,
// and valuations or conflicts that reference unknown agents/items.
func NewInstance(agents []Agent, items []Item, valuations Valuations) (*Instance, error) {
	in := &Instance{
		agents:    append([]Agent(nil), agents...),
		items:     append([]Item(nil), items...),
		agentIdx:  make(map[string]int, len(agents)),
		itemIdx:   make(map[string]int, len(items)),
		values:    make(map[string]map[string]float64, len(agents)),
		agentConf: make(map[string]map[string]bool),
		itemConf:  make(map[string]map[string]bool),
	}

	for i, a := range in.agents {
		if a.ID == "" {
			return nil, fmt.Errorf("agent %d: empty ID", i)
		}
		if _, dup := in.agentIdx[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agent %q", a.ID)
		}
		if a.Capacity < 0 {
			return nil, fmt.Errorf("agent %q: negative capacity %d", a.ID, a.Capacity)
		}
		in.agentIdx[a.ID] = i
	}
	for i, it := range in.items {
		if it.ID == "" {
			return nil, fmt.Errorf("item %d: empty ID", i)
		}
		if _, dup := in.itemIdx[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item %q", it.ID)
		}
		if it.Capacity < 0 {
			return nil, fmt.Errorf("item %q: negative capacity %d", it.ID, it.Capacity)
		}
		in.itemIdx[it.ID] = i
	}

	for agent, row := range valuations {
		if _, ok := in.agentIdx[agent]; !ok {
			return nil, fmt.Errorf("valuations reference unknown agent %q", agent)
		}
		vals := make(map[string]float64, len(row))
		for item, v := range row {
			if _, ok := in.itemIdx[item]; !ok {
				return nil, fmt.Errorf("valuations of %q reference unknown item %q", agent, item)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("valuation of %q for %q is %v, want finite non-negative", agent, item, v)
			}
			vals[item] = v
		}
		in.values[agent] = vals
	}

	for _, a := range in.agents {
		for _, item := range a.Conflicts {
			if _, ok := in.itemIdx[item]; !ok {
				return nil, fmt.Errorf("agent %q conflicts with unknown item %q", a.ID, item)
			}
			addConf(in.agentConf, a.ID, item)
		}
	}
	// Item conflicts are stored symmetrically.
	for _, it := range in.items {
		for _, other := range it.Conflicts {
			if _, ok := in.itemIdx[other]; !ok {
				return nil, fmt.Errorf("item %q conflicts with unknown item %q", it.ID, other)
			}
			addConf(in.itemConf, it.ID, other)
			addConf(in.itemConf, other, it.ID)
		}
	}

	return in, nil
}

func addConf(m map[string]map[string]bool, key, val string) {
	if m[key] == nil {
		m[key] = make(map[string]bool)
	}
	m[key][val] = true
}

// Agents returns agent IDs in declaration order.
func (in *Instance) Agents() []string {
	ids := make([]string, len(in.agents))
	for i, a := range in.agents {
		ids[i] = a.ID
	}
	return ids
}

// Items returns item IDs in declaration order.
func (in *Instance) Items() []string {
	ids := make([]string, len(in.items))
	for i, it := range in.items {
		ids[i] = it.ID
	}
	return ids
}

func (in *Instance) HasAgent(agent string) bool {
	_, ok := in.agentIdx[agent]
	return ok
}

func (in *Instance) HasItem(item string) bool {
	_, ok := in.itemIdx[item]
	return ok
}

// AgentCapacity returns the maximum number of items the agent may receive.
func (in *Instance) AgentCapacity(agent string) int {
	if i, ok := in.agentIdx[agent]; ok {
		return in.agents[i].Capacity
	}
	return 0
}

// ItemCapacity returns the maximum number of agents the item may serve.
func (in *Instance) ItemCapacity(item string) int {
	if i, ok := in.itemIdx[item]; ok {
		return in.items[i].Capacity
	}
	return 0
}

// Value returns the agent's valuation for the item, zero if undeclared.
func (in *Instance) Value(agent, item string) float64 {
	return in.values[agent][item]
}

// AgentConflicts reports whether the agent can never receive the item.
func (in *Instance) AgentConflicts(agent, item string) bool {
	return in.agentConf[agent][item]
}

// ItemConflicts reports whether the two items cannot share a bundle.
func (in *Instance) ItemConflicts(item, other string) bool {
	return in.itemConf[item][other]
}

// NormalizeValues returns a derived instance whose valuations are scaled
// so that every agent's values sum to total. Agents whose values sum to
// zero are left untouched. Scaling is per-agent and order-preserving, so
// algorithms that only compare values of a single agent are unaffected.
func (in *Instance) NormalizeValues(total float64) *Instance {
	out := *in
	out.values = make(map[string]map[string]float64, len(in.values))
	for agent, row := range in.values {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		scaled := make(map[string]float64, len(row))
		if sum > 0 {
			for item, v := range row {
				scaled[item] = v * total / sum
			}
		} else {
			for item, v := range row {
				scaled[item] = v
			}
		}
		out.values[agent] = scaled
	}
	return &out
}
