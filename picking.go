// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fairalloc

import "fmt"

// PickingSequence returns an algorithm that cyclically walks order,
// each turn giving the current agent its most valuable eligible item.
// An agent with exhausted capacity is skipped; an agent with no
// eligible item is retired. The walk stops once no further legal gift
// is possible.
//
// Ties on value break toward the first item in the stable
// RemainingItems order, so repeated runs produce identical output.
func PickingSequence(order []string) Algorithm {
	return func(b *Builder) error {
		if err := checkOrder(b, order); err != nil {
			return err
		}
		if len(order) == 0 {
			return nil
		}
		progress := true
		for i := 0; ; i = (i + 1) % len(order) {
			if b.Done() {
				return nil
			}
			if i == 0 {
				// A full cycle in which nobody picked and nobody was
				// retired can never make progress again.
				if !progress {
					return nil
				}
				progress = false
			}
			agent := order[i]
			if b.RemainingAgentCapacity(agent) == 0 {
				continue
			}
			items := b.RemainingItemsForAgent(agent)
			if len(items) == 0 {
				b.RemoveAgent(agent)
				progress = true
				continue
			}
			best := items[0]
			for _, item := range items[1:] {
				if b.EffectiveValue(agent, item) > b.EffectiveValue(agent, best) {
					best = item
				}
			}
			b.Give(agent, best)
			progress = true
		}
	}
}

// RoundRobin walks the agents cyclically, one pick per lap. A nil
// order means instance declaration order.
func RoundRobin(order []string) Algorithm {
	return func(b *Builder) error {
		return PickingSequence(defaultOrder(b, order))(b)
	}
}

// SerialDictatorship gives each agent all of its picks before moving to
// the next agent: the order is flattened so every agent appears
// capacity times consecutively. A nil order means instance declaration
// order.
func SerialDictatorship(order []string) Algorithm {
	return func(b *Builder) error {
		order = defaultOrder(b, order)
		if err := checkOrder(b, order); err != nil {
			return err
		}
		var flat []string
		for _, agent := range order {
			for n := b.RemainingAgentCapacity(agent); n > 0; n-- {
				flat = append(flat, agent)
			}
		}
		return PickingSequence(flat)(b)
	}
}

// BidirectionalRoundRobin alternates the walk direction each lap
// (the "ABCCBA" pattern), reducing positional bias. A nil order means
// instance declaration order.
func BidirectionalRoundRobin(order []string) Algorithm {
	return func(b *Builder) error {
		order = defaultOrder(b, order)
		both := make([]string, 0, 2*len(order))
		both = append(both, order...)
		for i := len(order) - 1; i >= 0; i-- {
			both = append(both, order[i])
		}
		return PickingSequence(both)(b)
	}
}

func defaultOrder(b *Builder, order []string) []string {
	if order != nil {
		return order
	}
	return b.RemainingAgents()
}

func checkOrder(b *Builder, order []string) error {
	for _, agent := range order {
		if !b.inst.HasAgent(agent) {
			return fmt.Errorf("agent order references unknown agent %q", agent)
		}
	}
	return nil
}
