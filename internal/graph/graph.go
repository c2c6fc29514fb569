// Package graph analyses the condition dependencies between fields. Every
// conditioned field has one edge pointing at the field its condition targets;
// the analyzer rejects cyclic graphs and otherwise returns an evaluation order
// in which targets always precede the fields that depend on them.
package graph

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
)

// Plan is the result of a successful analysis.
type Plan struct {
	// Order lists field ids so that each conditioned field comes after its
	// target. Unrelated fields keep their declaration order.
	Order []string
}

type node struct {
	id    string
	index int
	edges []int
}

// Analyze builds the dependency graph of def. It expects a definition that
// already passed the metadata checks; references to unknown ids are ignored.
// A cyclic graph yields a *formerrors.ErrorList holding one
// KindCircularReference entry per field on a cycle.
func Analyze(def definition.FormDefinition) (Plan, error) {
	nodes := buildNodes(def)

	if errs := detectCycles(nodes); errs.HasErrors() {
		return Plan{}, errs
	}
	return Plan{Order: topoOrder(nodes)}, nil
}

func buildNodes(def definition.FormDefinition) []node {
	index := def.IndexByID()
	nodes := make([]node, len(def.Fields))
	for i, field := range def.Fields {
		nodes[i] = node{id: field.ID, index: i}
	}
	for i, field := range def.Fields {
		if index[field.ID] != i || field.Condition == nil {
			continue
		}
		target, ok := index[field.Condition.TargetFieldID]
		if !ok {
			continue
		}
		nodes[i].edges = append(nodes[i].edges, target)
	}
	return nodes
}

const (
	unvisited = iota
	onStack
	done
)

type frame struct {
	node int
	next int
}

// detectCycles walks the graph depth first using an explicit stack. A node
// met again while still on the stack closes a cycle; the stack segment from
// that node to the top is the cycle. Each participating node is reported
// once, however many entry points lead to it.
func detectCycles(nodes []node) *formerrors.ErrorList {
	errs := formerrors.NewErrorList()
	state := make([]int, len(nodes))
	reported := make(map[int]bool)

	for start := range nodes {
		if state[start] != unvisited {
			continue
		}

		stack := []frame{{node: start}}
		state[start] = onStack

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			current := nodes[top.node]

			if top.next >= len(current.edges) {
				state[top.node] = done
				stack = stack[:len(stack)-1]
				continue
			}

			next := current.edges[top.next]
			top.next++

			switch state[next] {
			case unvisited:
				state[next] = onStack
				stack = append(stack, frame{node: next})
			case onStack:
				cycle := cycleFrom(stack, next)
				path := describe(nodes, cycle)
				for _, member := range cycle {
					if reported[member] {
						continue
					}
					reported[member] = true
					errs.Addf(
						formerrors.KindCircularReference,
						nodes[member].id,
						fmt.Sprintf("fields[%d].condition.targetFieldId", nodes[member].index),
						"field %q participates in a circular condition: %s",
						nodes[member].id,
						path,
					)
				}
			}
		}
	}

	return errs
}

// cycleFrom returns the node indices on the stack starting at entry.
func cycleFrom(stack []frame, entry int) []int {
	for i := range stack {
		if stack[i].node != entry {
			continue
		}
		cycle := make([]int, 0, len(stack)-i)
		for _, f := range stack[i:] {
			cycle = append(cycle, f.node)
		}
		return cycle
	}
	return nil
}

func describe(nodes []node, cycle []int) string {
	if len(cycle) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cycle)+1)
	for _, member := range cycle {
		parts = append(parts, nodes[member].id)
	}
	parts = append(parts, nodes[cycle[0]].id)
	return strings.Join(parts, " -> ")
}

// topoOrder runs Kahn's algorithm, always releasing the ready node with the
// lowest declaration index so independent fields stay in place.
func topoOrder(nodes []node) []string {
	pending := make([]int, len(nodes))
	dependents := make([][]int, len(nodes))
	for i, n := range nodes {
		for _, target := range n.edges {
			pending[i]++
			dependents[target] = append(dependents[target], i)
		}
	}

	ready := &indexHeap{}
	for i := range nodes {
		if pending[i] == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]string, 0, len(nodes))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, nodes[i].id)
		for _, dep := range dependents[i] {
			pending[dep]--
			if pending[dep] == 0 {
				heap.Push(ready, dep)
			}
		}
	}
	return order
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
