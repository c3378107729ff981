// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fairalloc

import (
	"reflect"
	"testing"
)

func divideOrFatal(t *testing.T, algo Algorithm, inst *Instance) Allocation {
	t.Helper()
	alloc, err := Divide(algo, inst, nil)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	return alloc
}

func TestRoundRobin(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	alloc := divideOrFatal(t, RoundRobin(nil), inst)

	want := Allocation{
		"Alice": {"c1", "c2"},
		"Bob":   {"c1", "c2", "c3"},
		"Chana": {"c2", "c3"},
		"Dana":  {"c3"},
	}
	if !reflect.DeepEqual(alloc, want) {
		t.Errorf("RoundRobin = %v, want %v", alloc, want)
	}
}

func TestBidirectionalRoundRobin(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	alloc := divideOrFatal(t, BidirectionalRoundRobin(nil), inst)

	want := Allocation{
		"Alice": {"c1", "c3"},
		"Bob":   {"c1", "c2", "c3"},
		"Chana": {"c2", "c3"},
		"Dana":  {"c2", "c3"},
	}
	if !reflect.DeepEqual(alloc, want) {
		t.Errorf("BidirectionalRoundRobin = %v, want %v", alloc, want)
	}
}

func TestRoundRobin_ItemConflict(t *testing.T) {
	agents := makeAgents(map[string]int{"Alice": 2, "Bob": 3, "Chana": 2, "Dana": 3},
		[]string{"Alice", "Bob", "Chana", "Dana"})
	items := []Item{
		{ID: "c1", Capacity: 2, Conflicts: []string{"c2"}},
		{ID: "c2", Capacity: 3},
		{ID: "c3", Capacity: 4},
	}
	inst := courseInstance(t, agents, items)
	alloc := divideOrFatal(t, RoundRobin(nil), inst)

	want := Allocation{
		"Alice": {"c1", "c3"},
		"Bob":   {"c1", "c3"},
		"Chana": {"c2", "c3"},
		"Dana":  {"c2", "c3"},
	}
	if !reflect.DeepEqual(alloc, want) {
		t.Errorf("RoundRobin with item conflict = %v, want %v", alloc, want)
	}
}

func TestRoundRobin_AgentConflict(t *testing.T) {
	agents := []Agent{
		{ID: "Alice", Capacity: 2, Conflicts: []string{"c1", "c2"}},
		{ID: "Bob", Capacity: 3},
		{ID: "Chana", Capacity: 2},
		{ID: "Dana", Capacity: 3},
	}
	inst := courseInstance(t, agents, nil)
	alloc := divideOrFatal(t, RoundRobin(nil), inst)

	want := Allocation{
		"Alice": {"c3"},
		"Bob":   {"c1", "c2", "c3"},
		"Chana": {"c2", "c3"},
		"Dana":  {"c1", "c2", "c3"},
	}
	if !reflect.DeepEqual(alloc, want) {
		t.Errorf("RoundRobin with agent conflict = %v, want %v", alloc, want)
	}
}

func TestSerialDictatorship(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	alloc := divideOrFatal(t, SerialDictatorship(nil), inst)

	want := Allocation{
		"Alice": {"c1", "c2"},
		"Bob":   {"c1", "c2", "c3"},
		"Chana": {"c2", "c3"},
		"Dana":  {"c3"},
	}
	if !reflect.DeepEqual(alloc, want) {
		t.Errorf("SerialDictatorship = %v, want %v", alloc, want)
	}
}

func TestPickingSequence_CustomOrder(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	order := []string{"Alice", "Bob", "Chana", "Dana", "Dana", "Chana", "Bob", "Alice"}
	alloc := divideOrFatal(t, PickingSequence(order), inst)

	want := Allocation{
		"Alice": {"c1", "c3"},
		"Bob":   {"c1", "c2", "c3"},
		"Chana": {"c2", "c3"},
		"Dana":  {"c2", "c3"},
	}
	if !reflect.DeepEqual(alloc, want) {
		t.Errorf("PickingSequence(%v) = %v, want %v", order, alloc, want)
	}
}

func TestPickingSequence_UnknownAgent(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	_, err := Divide(PickingSequence([]string{"Alice", "ghost"}), inst, nil)
	if err == nil {
		t.Error("expected error for unknown agent in order")
	}
}

func TestPickingSequence_EmptyOrder(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	alloc := divideOrFatal(t, PickingSequence(nil), inst)
	for agent, bundle := range alloc {
		if len(bundle) != 0 {
			t.Errorf("empty order must allocate nothing, agent %s got %v", agent, bundle)
		}
	}
}

// An order covering only some of the agents must still terminate once
// those agents are exhausted, even while others hold capacity.
func TestPickingSequence_PartialOrderTerminates(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	alloc := divideOrFatal(t, PickingSequence([]string{"Alice"}), inst)

	if got := alloc["Alice"]; !reflect.DeepEqual(got, []string{"c1", "c2"}) {
		t.Errorf("Alice = %v, want [c1 c2]", got)
	}
	for _, other := range []string{"Bob", "Chana", "Dana"} {
		if len(alloc[other]) != 0 {
			t.Errorf("agent %s outside the order must receive nothing, got %v", other, alloc[other])
		}
	}
}

func TestPickingSequence_Deterministic(t *testing.T) {
	// Equal values everywhere force the tie-break on every pick.
	flat := map[string]float64{"c1": 5, "c2": 5, "c3": 5}
	inst, err := NewInstance(
		makeAgents(map[string]int{"Alice": 2, "Bob": 2}, []string{"Alice", "Bob"}),
		makeItems(map[string]int{"c1": 1, "c2": 1, "c3": 2}, []string{"c1", "c2", "c3"}),
		Valuations{"Alice": flat, "Bob": flat},
	)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	first := divideOrFatal(t, RoundRobin(nil), inst)
	for i := 0; i < 10; i++ {
		again := divideOrFatal(t, RoundRobin(nil), inst)
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}

	// Ties break toward the first item in instance order.
	want := Allocation{
		"Alice": {"c1", "c3"},
		"Bob":   {"c2", "c3"},
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("tie-break allocation = %v, want %v", first, want)
	}
}
