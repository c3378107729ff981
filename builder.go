// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fairalloc

import "fmt"

type pair struct {
	agent, item string
}

// Builder tracks the mutable state of one allocation run: remaining
// agent/item capacities, the forbidden (agent, item) pairs, and the
// bundles given so far. A Builder is owned exclusively by the single
// algorithm invocation that holds it; it is not safe for concurrent use
// and must not be shared across runs.
//
// At all times, for every agent,
//
//	len(bundle) + remaining capacity == Instance.AgentCapacity
//
// and symmetrically for items, except for agents explicitly retired
// with RemoveAgent.
type Builder struct {
	inst   *Instance
	tracer Tracer

	remAgents map[string]int
	remItems  map[string]int
	forbidden map[pair]bool
	bundles   map[string][]string
}

// NewBuilder derives a fresh builder from the instance. The forbidden
// set starts as the instance's agent conflicts; item conflicts join it
// lazily as Give propagates them.
func NewBuilder(inst *Instance, tracer Tracer) *Builder {
	if tracer == nil {
		tracer = NopTracer{}
	}
	b := &Builder{
		inst:      inst,
		tracer:    tracer,
		remAgents: make(map[string]int, len(inst.agents)),
		remItems:  make(map[string]int, len(inst.items)),
		forbidden: make(map[pair]bool),
		bundles:   make(map[string][]string, len(inst.agents)),
	}
	for _, a := range inst.agents {
		if a.Capacity > 0 {
			b.remAgents[a.ID] = a.Capacity
		}
		b.bundles[a.ID] = nil
	}
	for _, it := range inst.items {
		if it.Capacity > 0 {
			b.remItems[it.ID] = it.Capacity
		}
	}
	for agent, items := range inst.agentConf {
		for item := range items {
			b.forbidden[pair{agent, item}] = true
		}
	}
	return b
}

// Instance returns the immutable problem the builder was derived from.
func (b *Builder) Instance() *Instance { return b.inst }

// RemainingAgents returns the agents with remaining capacity, in
// instance declaration order. This stable order is the default
// iteration order of every algorithm.
func (b *Builder) RemainingAgents() []string {
	var out []string
	for _, a := range b.inst.agents {
		if b.remAgents[a.ID] > 0 {
			out = append(out, a.ID)
		}
	}
	return out
}

// RemainingItems returns the items with remaining capacity, in instance
// declaration order.
func (b *Builder) RemainingItems() []string {
	var out []string
	for _, it := range b.inst.items {
		if b.remItems[it.ID] > 0 {
			out = append(out, it.ID)
		}
	}
	return out
}

// RemainingItemsForAgent returns the items the agent could legally
// receive right now: remaining capacity, not forbidden for the agent,
// not already in its bundle, and not conflicting with a bundled item.
// Order is the stable RemainingItems order.
func (b *Builder) RemainingItemsForAgent(agent string) []string {
	var out []string
	for _, it := range b.inst.items {
		if b.remItems[it.ID] > 0 && !b.forbidden[pair{agent, it.ID}] {
			out = append(out, it.ID)
		}
	}
	return out
}

// RemainingAgentCapacity returns how many more items the agent may
// receive, zero if exhausted or retired.
func (b *Builder) RemainingAgentCapacity(agent string) int {
	return b.remAgents[agent]
}

// RemainingItemCapacity returns how many more agents the item may
// serve, zero if exhausted.
func (b *Builder) RemainingItemCapacity(item string) int {
	return b.remItems[item]
}

// EffectiveValue returns the value an algorithm should rank the item
// by, for the given agent.
func (b *Builder) EffectiveValue(agent, item string) float64 {
	return b.inst.Value(agent, item)
}

// Forbidden reports whether (agent, item) is currently an illegal gift.
func (b *Builder) Forbidden(agent, item string) bool {
	return b.forbidden[pair{agent, item}]
}

// Give assigns item to agent: both remaining capacities drop by one,
// the item joins the agent's bundle, and every item conflicting with it
// becomes forbidden for this agent. Give panics if the agent or item is
// exhausted or the pair is forbidden; that can only happen when the
// calling algorithm violates its contract, never on valid input.
func (b *Builder) Give(agent, item string) {
	if b.remAgents[agent] <= 0 {
		panic(fmt.Sprintf("fairalloc: give %q to %q: agent has no remaining capacity", item, agent))
	}
	if b.remItems[item] <= 0 {
		panic(fmt.Sprintf("fairalloc: give %q to %q: item has no remaining capacity", item, agent))
	}
	if b.forbidden[pair{agent, item}] {
		panic(fmt.Sprintf("fairalloc: give %q to %q: pair is forbidden", item, agent))
	}

	b.bundles[agent] = append(b.bundles[agent], item)
	b.forbidden[pair{agent, item}] = true
	for other := range b.inst.itemConf[item] {
		b.forbidden[pair{agent, other}] = true
	}

	if b.remAgents[agent]--; b.remAgents[agent] == 0 {
		delete(b.remAgents, agent)
	}
	if b.remItems[item]--; b.remItems[item] == 0 {
		delete(b.remItems, item)
	}

	b.tracer.Gave(agent, item, b.EffectiveValue(agent, item))
}

// RemoveAgent retires the agent from future consideration without
// touching its bundle. Idempotent; a typical caller is an algorithm
// that found the agent's eligible set empty.
func (b *Builder) RemoveAgent(agent string) {
	if _, ok := b.remAgents[agent]; !ok {
		return
	}
	delete(b.remAgents, agent)
	b.tracer.AgentDone(agent)
}

// Done reports whether no further legal gift is possible: every item or
// every agent has zero remaining capacity.
func (b *Builder) Done() bool {
	return len(b.remItems) == 0 || len(b.remAgents) == 0
}

// Bundles returns a copy of the current bundles, items in pick order.
// Every agent of the instance is present, possibly with a nil bundle.
func (b *Builder) Bundles() map[string][]string {
	out := make(map[string][]string, len(b.bundles))
	for agent, bundle := range b.bundles {
		out[agent] = append([]string(nil), bundle...)
	}
	return out
}
