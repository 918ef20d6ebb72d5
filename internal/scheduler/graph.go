// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"sort"

	"github.com/millwright-dev/millwright/internal/shopfloor"
)

// Dependency graph over the operations of one scheduler run. Edges
// declared against operation ids outside the run's scope are dropped.
type dependencyGraph struct {
	ops map[string]shopfloor.Operation
	// Operation ids sorted lexicographically, for deterministic iteration.
	order []string
	// Known-id predecessor and successor sets, mutually consistent.
	preds map[string]map[string]bool
	succs map[string]map[string]bool
}

// Build the dependency graph from declared predecessor and successor
// lists. Relations are mirrored so that either declaration suffices.
func newDependencyGraph(ops []shopfloor.Operation) *dependencyGraph {
	g := &dependencyGraph{
		ops:   make(map[string]shopfloor.Operation, len(ops)),
		preds: make(map[string]map[string]bool, len(ops)),
		succs: make(map[string]map[string]bool, len(ops)),
	}
	for _, op := range ops {
		g.ops[op.ID] = op
		g.order = append(g.order, op.ID)
		g.preds[op.ID] = make(map[string]bool)
		g.succs[op.ID] = make(map[string]bool)
	}
	sort.Strings(g.order)
	addEdge := func(from, to string) {
		if _, ok := g.ops[from]; !ok {
			return
		}
		if _, ok := g.ops[to]; !ok {
			return
		}
		g.preds[to][from] = true
		g.succs[from][to] = true
	}
	for _, op := range ops {
		for _, pred := range op.Predecessors {
			addEdge(pred, op.ID)
		}
		for _, succ := range op.Successors {
			addEdge(op.ID, succ)
		}
	}
	return g
}

// Sorted predecessor ids of the given operation.
func (g *dependencyGraph) predecessors(id string) []string {
	ids := make([]string, 0, len(g.preds[id]))
	for pred := range g.preds[id] {
		ids = append(ids, pred)
	}
	sort.Strings(ids)
	return ids
}

// Detect cycles with a three-color depth-first search. Every back edge
// yields one cycle, reported as the operation ids on the stack between
// the two endpoints.
func (g *dependencyGraph) cycles() [][]string {
	const (
		white = 0 // unvisited
		gray  = 1 // on stack
		black = 2 // done
	)
	colors := make(map[string]int, len(g.ops))
	var stack []string
	var found [][]string

	var visit func(id string)
	visit = func(id string) {
		colors[id] = gray
		stack = append(stack, id)
		succs := make([]string, 0, len(g.succs[id]))
		for succ := range g.succs[id] {
			succs = append(succs, succ)
		}
		sort.Strings(succs)
		for _, succ := range succs {
			switch colors[succ] {
			case white:
				visit(succ)
			case gray:
				// Back edge: the cycle is the stack portion from succ to id.
				for i, member := range stack {
					if member == succ {
						cycle := make([]string, len(stack)-i)
						copy(cycle, stack[i:])
						found = append(found, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[id] = black
	}
	for _, id := range g.order {
		if colors[id] == white {
			visit(id)
		}
	}
	return found
}

// Layer the operations into batches: each batch contains operations
// whose predecessors have all been emitted in earlier batches, so
// operations within one batch have no precedence relation among
// themselves. If a cycle blocks progress, all remaining operations
// form a final degenerate batch.
func (g *dependencyGraph) batches() [][]string {
	inDegree := make(map[string]int, len(g.ops))
	for _, id := range g.order {
		inDegree[id] = len(g.preds[id])
	}
	emitted := make(map[string]bool, len(g.ops))

	var result [][]string
	for len(emitted) < len(g.ops) {
		var batch []string
		for _, id := range g.order {
			if !emitted[id] && inDegree[id] == 0 {
				batch = append(batch, id)
			}
		}
		if len(batch) == 0 {
			// Cycle fallback: emit everything that is left.
			for _, id := range g.order {
				if !emitted[id] {
					batch = append(batch, id)
				}
			}
			result = append(result, batch)
			return result
		}
		for _, id := range batch {
			emitted[id] = true
			for succ := range g.succs[id] {
				inDegree[succ]--
			}
		}
		result = append(result, batch)
	}
	return result
}
