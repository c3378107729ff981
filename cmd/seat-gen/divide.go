// Copyright 2025 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"

	"github.com/someonegg/fairalloc"
	"github.com/someonegg/fairalloc/eval"
	"github.com/someonegg/fairalloc/matching"
	"github.com/someonegg/fairalloc/spo"
)

type instanceFile struct {
	Agents     []agentSpec          `json:"agents"`
	Items      []itemSpec           `json:"items"`
	Valuations fairalloc.Valuations `json:"valuations"`
}

type agentSpec struct {
	ID        string   `json:"id"`
	Capacity  int      `json:"cap"`
	Conflicts []string `json:"conflicts,omitempty"`
}

type itemSpec struct {
	ID        string   `json:"id"`
	Capacity  int      `json:"cap"`
	Conflicts []string `json:"conflicts,omitempty"`
}

type allocFile struct {
	Bundles fairalloc.Allocation `json:"bundles"`
}

func doDivide(instPath, allocPath, algoName string, normalize float64, verbose bool) error {
	inst, err := loadInstance(instPath, normalize)
	if err != nil {
		return fmt.Errorf("load instance file failed: %w", err)
	}

	algo, err := algorithmByName(algoName)
	if err != nil {
		return err
	}

	var tracer fairalloc.Tracer
	if verbose {
		log.SetLevel(log.DebugLevel)
		tracer = fairalloc.LogTracer{L: log.StandardLogger()}
	}

	alloc, err := fairalloc.Divide(algo, inst, tracer)
	if err != nil {
		return fmt.Errorf("divide failed: %w", err)
	}

	if err := writeAlloc(allocPath, alloc); err != nil {
		return fmt.Errorf("write alloc file failed: %w", err)
	}

	printMetrics(inst, alloc)
	return nil
}

func doEval(instPath, allocPath string, normalize float64) error {
	inst, err := loadInstance(instPath, normalize)
	if err != nil {
		return fmt.Errorf("load instance file failed: %w", err)
	}

	alloc, err := loadAlloc(allocPath)
	if err != nil {
		return fmt.Errorf("load alloc file failed: %w", err)
	}

	printMetrics(inst, alloc)
	return nil
}

func algorithmByName(name string) (fairalloc.Algorithm, error) {
	switch name {
	case "round-robin":
		return fairalloc.RoundRobin(nil), nil
	case "serial":
		return fairalloc.SerialDictatorship(nil), nil
	case "bidirectional":
		return fairalloc.BidirectionalRoundRobin(nil), nil
	case "spo":
		return spo.Algorithm(), nil
	case "matching":
		return matching.Algorithm(), nil
	case "matching-adjusted":
		return matching.AdjustedAlgorithm(), nil
	}
	return nil, fmt.Errorf("unknown algorithm %q", name)
}

func loadInstance(file string, normalize float64) (*fairalloc.Instance, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var spec instanceFile
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&spec); err != nil {
		return nil, err
	}

	agents := make([]fairalloc.Agent, len(spec.Agents))
	for i, a := range spec.Agents {
		agents[i] = fairalloc.Agent{ID: a.ID, Capacity: a.Capacity, Conflicts: a.Conflicts}
	}
	items := make([]fairalloc.Item, len(spec.Items))
	for i, it := range spec.Items {
		items[i] = fairalloc.Item{ID: it.ID, Capacity: it.Capacity, Conflicts: it.Conflicts}
	}

	inst, err := fairalloc.NewInstance(agents, items, spec.Valuations)
	if err != nil {
		return nil, err
	}
	if normalize > 0 {
		inst = inst.NormalizeValues(normalize)
	}
	return inst, nil
}

func loadAlloc(file string) (fairalloc.Allocation, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var af allocFile
	if err := json.Unmarshal(data, &af); err != nil {
		return nil, err
	}
	return af.Bundles, nil
}

func writeAlloc(file string, alloc fairalloc.Allocation) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "   ")
	if err := encoder.Encode(allocFile{Bundles: alloc}); err != nil {
		return err
	}
	return os.WriteFile(file, buf.Bytes(), 0644)
}

func printMetrics(inst *fairalloc.Instance, alloc fairalloc.Allocation) {
	m := eval.NewMatrix(inst, alloc)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Agent", "Bundle", "Value", "Deficit"})
	for _, agent := range m.Agents() {
		table.Append([]string{
			agent,
			fmt.Sprintf("%v", alloc[agent]),
			fmt.Sprintf("%.2f", m.AgentValue(agent)),
			fmt.Sprintf("%.2f", m.AgentDeficit(agent)),
		})
	}
	table.Render()

	summary := tablewriter.NewWriter(os.Stdout)
	summary.SetHeader([]string{"Utilitarian", "Egalitarian", "Max Envy", "Mean Envy", "Max Deficit", "Mean Deficit"})
	summary.Append([]string{
		fmt.Sprintf("%.2f", m.UtilitarianValue()),
		fmt.Sprintf("%.2f", m.EgalitarianValue()),
		fmt.Sprintf("%.2f", m.MaxEnvy()),
		fmt.Sprintf("%.2f", m.MeanEnvy()),
		fmt.Sprintf("%.2f", m.MaxDeficit()),
		fmt.Sprintf("%.2f", m.MeanDeficit()),
	})
	summary.Render()
}
