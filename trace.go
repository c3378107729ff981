// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fairalloc

import (
	log "github.com/sirupsen/logrus"
)

// Tracer observes an allocation run. Implementations must tolerate any
// call order and may no-op; tracing is never load-bearing for
// correctness.
type Tracer interface {
	// Gave is called after every committed assignment.
	Gave(agent, item string, value float64)
	// AgentDone is called when an agent is retired from the loop.
	AgentDone(agent string)
	// Round is called by iterative mechanisms with a per-round summary.
	Round(mech string, round, assigned int)
	// Prices is called by price-computing mechanisms with the canonical
	// per-item prices of a round.
	Prices(mech string, round int, prices map[string]float64)
	// Infeasible is called when a solver reports no usable solution for
	// a round. The round assigns nothing further; the run continues.
	Infeasible(mech string, round int, err error)
}

// NopTracer discards everything.
type NopTracer struct{}

func (NopTracer) Gave(string, string, float64) {}

func (NopTracer) AgentDone(string) {}

func (NopTracer) Round(string, int, int) {}

func (NopTracer) Prices(string, int, map[string]float64) {}

func (NopTracer) Infeasible(string, int, error) {}

// LogTracer writes the trace to a logrus logger.
type LogTracer struct {
	L log.FieldLogger
}

func (t LogTracer) Gave(agent, item string, value float64) {
	t.L.WithFields(log.Fields{"agent": agent, "item": item, "value": value}).Info("gave item")
}

func (t LogTracer) AgentDone(agent string) {
	t.L.WithField("agent", agent).Info("agent cannot pick any more items")
}

func (t LogTracer) Round(mech string, round, assigned int) {
	t.L.WithFields(log.Fields{"mech": mech, "round": round, "assigned": assigned}).Info("round complete")
}

func (t LogTracer) Prices(mech string, round int, prices map[string]float64) {
	t.L.WithFields(log.Fields{"mech": mech, "round": round, "prices": prices}).Info("round prices")
}

func (t LogTracer) Infeasible(mech string, round int, err error) {
	t.L.WithFields(log.Fields{"mech": mech, "round": round, "err": err}).Warn("solver found no usable solution")
}
