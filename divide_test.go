// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fairalloc

import (
	"errors"
	"reflect"
	"sort"
	"testing"
)

func TestDivide_SortedBundles(t *testing.T) {
	inst := courseInstance(t, nil, nil)

	// Pick in descending item order so the raw bundle is unsorted.
	algo := Algorithm(func(b *Builder) error {
		b.Give("Alice", "c3")
		b.Give("Alice", "c1")
		return nil
	})
	alloc, err := Divide(algo, inst, nil)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if got := alloc["Alice"]; !sort.StringsAreSorted(got) {
		t.Errorf("bundle %v must be sorted", got)
	}
	if got := alloc["Alice"]; !reflect.DeepEqual(got, []string{"c1", "c3"}) {
		t.Errorf("Alice = %v, want [c1 c3]", got)
	}
}

func TestDivide_EmptyBundlesPresent(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	alloc, err := Divide(Algorithm(func(b *Builder) error { return nil }), inst, nil)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if len(alloc) != 4 {
		t.Fatalf("allocation has %d agents, want 4", len(alloc))
	}
	for agent, bundle := range alloc {
		if len(bundle) != 0 {
			t.Errorf("agent %s got %v, want empty bundle", agent, bundle)
		}
	}
}

func TestDivide_AlgorithmError(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	boom := errors.New("boom")
	alloc, err := Divide(Algorithm(func(b *Builder) error { return boom }), inst, nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if alloc != nil {
		t.Errorf("alloc = %v, want nil on error", alloc)
	}
}

// Each Divide call runs against a fresh builder, so repeated runs are
// independent.
func TestDivide_IndependentRuns(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	first, err := Divide(RoundRobin(nil), inst, nil)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	second, err := Divide(RoundRobin(nil), inst, nil)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("independent runs differ: %v vs %v", first, second)
	}
}

type recordTracer struct {
	NopTracer
	gave    []pair
	retired []string
}

func (t *recordTracer) Gave(agent, item string, value float64) {
	t.gave = append(t.gave, pair{agent, item})
}

func (t *recordTracer) AgentDone(agent string) {
	t.retired = append(t.retired, agent)
}

func TestDivide_Tracer(t *testing.T) {
	inst := courseInstance(t, nil, nil)
	tracer := &recordTracer{}
	if _, err := Divide(RoundRobin(nil), inst, tracer); err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if len(tracer.gave) != 8 {
		t.Errorf("traced %d gives, want 8", len(tracer.gave))
	}
	if tracer.gave[0] != (pair{"Alice", "c1"}) {
		t.Errorf("first give = %v, want Alice/c1", tracer.gave[0])
	}
	if !reflect.DeepEqual(tracer.retired, []string{"Dana"}) {
		t.Errorf("retired = %v, want [Dana]", tracer.retired)
	}
}
