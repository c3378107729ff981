// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fairalloc

import "sort"

// Divide is the external entry point of the package: it derives a fresh
// builder from the instance, runs the algorithm against it, and returns
// the resulting bundles. Agents that received nothing are present with
// an empty bundle. Each bundle is sorted, so identical runs produce
// identical allocations regardless of pick order.
//
// tracer may be nil. The builder is private to this call; run Divide
// again for an independent allocation.
func Divide(algo Algorithm, inst *Instance, tracer Tracer) (Allocation, error) {
	b := NewBuilder(inst, tracer)
	if err := algo(b); err != nil {
		return nil, err
	}
	out := make(Allocation, len(inst.agents))
	for agent, bundle := range b.bundles {
		sorted := append([]string(nil), bundle...)
		sort.Strings(sorted)
		out[agent] = sorted
	}
	return out, nil
}
