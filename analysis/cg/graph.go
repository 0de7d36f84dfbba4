// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cg

import (
	"fmt"
	"sort"

	"github.com/awslabs/ar-droid-tools/analysis/domain"
)

// CallGraph is the view of a call graph needed by the seeding layer.
type CallGraph interface {
	// Nodes returns all the nodes of the graph, ordered by id
	Nodes() []*Node

	// Node returns the node of method in context ctx, or nil if there is no such node
	Node(method domain.MethodRef, ctx Context) *Node

	// Preds returns the direct callers of n
	Preds(n *Node) []*Node

	// Succs returns the direct callees of n
	Succs(n *Node) []*Node

	// Entries returns the entry program points of n in the interprocedural control-flow graph
	Entries(n *Node) []ProgramPoint
}

type methodInContext struct {
	method domain.MethodRef
	ctx    Context
}

// Graph is a call graph with explicit nodes and edges. It implements CallGraph.
type Graph struct {
	nodes   map[domain.NodeID]*Node
	byKey   map[methodInContext]*Node
	succs   map[domain.NodeID]map[domain.NodeID]bool
	preds   map[domain.NodeID]map[domain.NodeID]bool
	entries map[domain.NodeID][]int
	roots   []*Node
	nextID  domain.NodeID
}

// NewGraph returns an empty call graph
func NewGraph() *Graph {
	return &Graph{
		nodes:   map[domain.NodeID]*Node{},
		byKey:   map[methodInContext]*Node{},
		succs:   map[domain.NodeID]map[domain.NodeID]bool{},
		preds:   map[domain.NodeID]map[domain.NodeID]bool{},
		entries: map[domain.NodeID][]int{},
	}
}

// AddNode adds a node to the graph and assigns its id. If a node for the same method and context already exists,
// that node is returned instead and n is not added.
func (g *Graph) AddNode(n *Node) *Node {
	key := methodInContext{n.Method, n.Context}
	if existing, ok := g.byKey[key]; ok {
		return existing
	}
	n.ID = g.nextID
	g.nextID++
	g.nodes[n.ID] = n
	g.byKey[key] = n
	g.succs[n.ID] = map[domain.NodeID]bool{}
	g.preds[n.ID] = map[domain.NodeID]bool{}
	return n
}

// AddEdge adds a call edge from caller to callee. Both nodes must be in the graph.
func (g *Graph) AddEdge(caller *Node, callee *Node) error {
	if g.nodes[caller.ID] != caller || g.nodes[callee.ID] != callee {
		return fmt.Errorf("edge %s -> %s: both nodes must be in the graph", caller, callee)
	}
	g.succs[caller.ID][callee.ID] = true
	g.preds[callee.ID][caller.ID] = true
	return nil
}

// AddRoot marks n as an entrypoint node of the call graph
func (g *Graph) AddRoot(n *Node) {
	g.roots = append(g.roots, n)
}

// Roots returns the entrypoint nodes of the call graph
func (g *Graph) Roots() []*Node {
	return g.roots
}

// SetEntries sets the entry blocks of n. Nodes without explicit entries have block 0 as entry if they have at least
// one block, and no entry otherwise.
func (g *Graph) SetEntries(n *Node, blocks ...int) {
	g.entries[n.ID] = blocks
}

// Len returns the number of nodes in the graph
func (g *Graph) Len() int {
	return len(g.nodes)
}

// NodeByID returns the node with the given id, or nil
func (g *Graph) NodeByID(id domain.NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns all the nodes of the graph, ordered by id
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return nodes
}

// Node returns the node of method in context ctx, or nil
func (g *Graph) Node(method domain.MethodRef, ctx Context) *Node {
	return g.byKey[methodInContext{method, ctx}]
}

// Preds returns the direct callers of n, ordered by id
func (g *Graph) Preds(n *Node) []*Node {
	return g.collect(g.preds[n.ID])
}

// Succs returns the direct callees of n, ordered by id
func (g *Graph) Succs(n *Node) []*Node {
	return g.collect(g.succs[n.ID])
}

// HasEdge returns true when there is a call edge from caller to callee
func (g *Graph) HasEdge(caller *Node, callee *Node) bool {
	return g.succs[caller.ID][callee.ID]
}

// Entries returns the entry program points of n
func (g *Graph) Entries(n *Node) []ProgramPoint {
	blocks, ok := g.entries[n.ID]
	if !ok {
		if n.Blocks <= 0 {
			return nil
		}
		blocks = []int{0}
	}
	points := make([]ProgramPoint, len(blocks))
	for i, b := range blocks {
		points[i] = ProgramPoint{Node: n.ID, Block: b}
	}
	return points
}

func (g *Graph) collect(ids map[domain.NodeID]bool) []*Node {
	nodes := make([]*Node, 0, len(ids))
	for id := range ids {
		nodes = append(nodes, g.nodes[id])
	}
	sortNodes(nodes)
	return nodes
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}
