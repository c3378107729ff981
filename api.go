// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fairalloc provides fair-division algorithms that allocate
// discrete, capacity-limited items among agents with heterogeneous
// valuations, subject to agent/item capacities and pairwise conflicts.
package fairalloc

// Agent describes one receiver of items.
type Agent struct {
	ID       string
	Capacity int
	// Conflicts lists item IDs this agent can never receive,
	// e.g. because of scheduling clashes.
	Conflicts []string
}

// Item describes one allocatable unit with a seat capacity.
type Item struct {
	ID       string
	Capacity int
	// Conflicts lists item IDs that cannot coexist with this item
	// in a single agent's bundle. The relation is symmetric; declaring
	// one direction is enough.
	Conflicts []string
}

// Valuations maps agent ID -> item ID -> value. Missing entries are
// treated as zero.
type Valuations map[string]map[string]float64

// Allocation is the final result of a division: agent ID -> the items
// the agent received. Divide returns bundles in sorted item order so
// that equal runs compare equal.
type Allocation map[string][]string

// Algorithm is an allocation procedure. It communicates solely through
// the builder: it queries remaining supply/demand and commits assignments
// with Give until exhausted or its own termination condition holds.
type Algorithm func(b *Builder) error
