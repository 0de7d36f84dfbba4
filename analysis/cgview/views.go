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


// Package cgview derives filtered views of a call graph, used to report on the application code and on the seams
// between the application and the platform.
package cgview

import (
	"fmt"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/internal/funcutil"
	"github.com/awslabs/ar-droid-tools/internal/graphutil"
	"github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// Views are the three vertex-induced subgraphs of a call graph
type Views struct {
	// Application contains the application nodes and the synthetic nodes
	Application graphutil.CGraph

	// OneHop contains the application nodes and the nodes that call or are called by application nodes
	OneHop graphutil.CGraph

	// Boundary contains the primordial nodes that call application nodes, and the application nodes called by
	// primordial nodes
	Boundary graphutil.CGraph
}

// IsApplication is the default application code predicate: the node's code is loaded by the application loader
func IsApplication(n *cg.Node) bool {
	return n.IsApplication()
}

// Build returns the views of g. isApp decides which nodes are application code; if nil, IsApplication is used.
func Build(logger *config.LogGroup, g cg.CallGraph, isApp func(*cg.Node) bool) *Views {
	if isApp == nil {
		isApp = IsApplication
	}
	full := graphutil.NewCallgraphIterator(g)
	views := &Views{
		Application: graphutil.Induced(full, func(n *cg.Node) bool {
			return isApp(n) || n.Synthetic
		}),
		OneHop: graphutil.Induced(full, func(n *cg.Node) bool {
			return isApp(n) || funcutil.Exists(g.Preds(n), isApp) || funcutil.Exists(g.Succs(n), isApp)
		}),
		Boundary: graphutil.Induced(full, func(n *cg.Node) bool {
			if isApp(n) {
				return funcutil.Exists(g.Preds(n), func(p *cg.Node) bool { return !isApp(p) })
			}
			return funcutil.Exists(g.Succs(n), isApp)
		}),
	}
	if logger != nil {
		logger.Debugf("call graph: %s", Stats(full))
		logger.Debugf("application view: %s", Stats(views.Application))
		logger.Debugf("one-hop view: %s", Stats(views.OneHop))
		logger.Debugf("boundary view: %s", Stats(views.Boundary))
	}
	return views
}

// ViewStats summarizes the structure of a view
type ViewStats struct {
	// Nodes is the number of nodes
	Nodes int
	// Edges is the number of call edges
	Edges int
	// Loops is the number of directly recursive nodes
	Loops int
	// Isolated is the number of nodes that call no other node of the view
	Isolated int
	// Recursive is the number of strongly connected components with more than one node
	Recursive int
}

func (s ViewStats) String() string {
	return fmt.Sprintf("%d nodes, %d edges, %d self-loops, %d isolated, %d recursive components",
		s.Nodes, s.Edges, s.Loops, s.Isolated, s.Recursive)
}

// Stats returns the statistics of view
func Stats(view graphutil.CGraph) ViewStats {
	check := graph.Check(view)
	recursive := 0
	for _, scc := range topo.TarjanSCC(view) {
		if len(scc) > 1 {
			recursive++
		}
	}
	return ViewStats{
		Nodes: view.Len(),
		Edges: view.Size(),
		Loops: check.Loops,
		// vertices that are not in the view have no out-edges either
		Isolated:  check.Isolated - (view.Order() - view.Len()),
		Recursive: recursive,
	}
}

// Cycles returns at most limit elementary cycles of view (all of them if limit <= 0), as sequences of call graph
// nodes that start and end with the same node.
func Cycles(view graphutil.CGraph, limit int) [][]*cg.Node {
	var cycles [][]*cg.Node
	for _, ids := range graphutil.FindAllElementaryCycles(view, limit) {
		cycles = append(cycles, funcutil.Map(ids, func(id int64) *cg.Node { return view.IDMap[id].Node }))
	}
	return cycles
}
