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


// Package graphutil adapts call graphs to the graph libraries used by the analyses: gonum's graph.Directed and
// yourbasic's graph.Iterator.
package graphutil

import (
	"sort"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"gonum.org/v1/gonum/graph"
)

// CGraph is an abstraction over a callgraph to work with existing graph libraries. It implements the methods to
// satisfy graph.Iterator and Gonum's graph.Directed
type CGraph struct {
	// The order of the graph: all node ids are smaller than the order
	order int

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// Keys are all the node IDs, in increasing order
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool

	// rev is the reverse of Edges
	rev map[int64]map[int64]bool
}

// NewCallgraphIterator returns a new call graph iterator where node ids correspond the ID of each callgraph node
func NewCallgraphIterator(g cg.CallGraph) CGraph {
	nodes := g.Nodes()
	idmap := make(map[int64]CNode, len(nodes))
	edges := make(map[int64]map[int64]bool, len(nodes))
	keys := make([]int64, 0, len(nodes))
	order := 0
	for _, node := range nodes {
		id := int64(node.ID)
		keys = append(keys, id)
		idmap[id] = CNode{node}
		edges[id] = map[int64]bool{}
		for _, callee := range g.Succs(node) {
			edges[id][int64(callee.ID)] = true
		}
		if int(id) >= order {
			order = int(id) + 1
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return CGraph{
		order: order,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
		rev:   reverse(edges),
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order is the same as in origin, meaning that node indices will stay consistent across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	idmap := make(map[int64]CNode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, 0, len(include))

	for _, i := range include {
		if n, ok := original.IDMap[i]; ok {
			if _, dup := idmap[i]; !dup {
				keys = append(keys, i)
			}
			idmap[i] = n
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, i := range keys {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
			}
		}
	}

	return CGraph{
		order: original.Order(),
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
		rev:   reverse(edges),
	}
}

// Induced returns the subgraph of original induced by the nodes satisfying keep.
func Induced(original CGraph, keep func(*cg.Node) bool) CGraph {
	var include []int64
	for _, id := range original.Keys {
		if keep(original.IDMap[id].Node) {
			include = append(include, id)
		}
	}
	return Subgraph(original, include)
}

func reverse(edges map[int64]map[int64]bool) map[int64]map[int64]bool {
	rev := make(map[int64]map[int64]bool, len(edges))
	for x, out := range edges {
		for y := range out {
			if rev[y] == nil {
				rev[y] = map[int64]bool{}
			}
			rev[y][x] = true
		}
	}
	return rev
}

// Len returns the number of nodes in the graph
func (c CGraph) Len() int {
	return len(c.Keys)
}

// Size returns the number of edges in the graph
func (c CGraph) Size() int {
	n := 0
	for _, out := range c.Edges {
		n += len(out)
	}
	return n
}

// CallNodes returns the call graph nodes of the graph, ordered by id
func (c CGraph) CallNodes() []*cg.Node {
	nodes := make([]*cg.Node, len(c.Keys))
	for i, k := range c.Keys {
		nodes[i] = c.IDMap[k].Node
	}
	return nodes
}

// Contains returns true when the call graph node n is in the graph
func (c CGraph) Contains(n *cg.Node) bool {
	if n == nil {
		return false
	}
	cn, ok := c.IDMap[int64(n.ID)]
	return ok && cn.Node == n
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.IDMap[int64(v)]; !ok {
		return false
	}
	for _, w := range sortedKeys(c.Edges[int64(v)]) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (c CGraph) Node(id int64) graph.Node {
	n, ok := c.IDMap[id]
	if !ok {
		return nil
	}
	return n
}

// Nodes returns the set of nodes in the graph
func (c CGraph) Nodes() graph.Nodes {
	keys := make([]int64, len(c.Keys))
	copy(keys, c.Keys)
	return newNodeSet(c.IDMap, keys)
}

// From returns the set of nodes reachable from the id
func (c CGraph) From(id int64) graph.Nodes {
	return newNodeSet(c.IDMap, sortedKeys(c.Edges[id]))
}

// To returns the set of nodes that can reach the node with the id
func (c CGraph) To(id int64) graph.Nodes {
	return newNodeSet(c.IDMap, sortedKeys(c.rev[id]))
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.HasEdgeFromTo(xid, yid) || c.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo returns a boolean indicating whether a directed edge from uid to vid exists
func (c CGraph) HasEdgeFromTo(uid, vid int64) bool {
	return c.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if c.Edges[uid][vid] {
		return CEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

func sortedKeys(m map[int64]bool) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// *************** Nodes implementation **********************

// CNode is a wrapper around a *cg.Node that implements the graph.Node interface
type CNode struct {
	Node *cg.Node
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return int64(n.Node.ID)
}

func (n CNode) String() string {
	if n.Node == nil {
		return ""
	}
	return n.Node.String()
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]CNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]
	// invariant: -1 <= cur <= len(ids)
	cur int
}

func newNodeSet(nodes map[int64]CNode, ids []int64) *NodeSet {
	return &NodeSet{nodes: nodes, ids: ids, cur: -1}
}

// Next moves the current node to the next, and returns true if such a node exists.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids) {
		ns.cur++
	}
	return ns.cur < len(ns.ids)
}

// Len returns the number of nodes remaining in the iterator
func (ns *NodeSet) Len() int {
	if ns.cur < 0 {
		return len(ns.ids)
	}
	if ns.cur >= len(ns.ids) {
		return 0
	}
	return len(ns.ids) - ns.cur - 1
}

// Reset resets the iterator to its initial state, before the first node
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node returns the current node in the set, or nil when Next has not been called or returned false
func (ns *NodeSet) Node() graph.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return ns.nodes[ns.ids[ns.cur]]
}

// *************** Edge implementation **********************

// CEdge implements the graph.Edge interface
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the origin of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}
