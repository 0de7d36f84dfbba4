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
	"testing"

	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func method(name string) domain.MethodRef {
	return domain.MethodRef{Package: "com/example", Class: "Main", Name: name, Descriptor: "()V"}
}

func TestGraphNodesAndEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(&Node{Method: method("a"), Loader: Application, Blocks: 2})
	b := g.AddNode(&Node{Method: method("b"), Loader: Primordial})
	c := g.AddNode(&Node{Method: method("c"), Context: "ctx1", Blocks: 1})

	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(a, c))
	require.NoError(t, g.AddEdge(c, a))

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []*Node{a, b, c}, g.Nodes())
	assert.Equal(t, []*Node{b, c}, g.Succs(a))
	assert.Equal(t, []*Node{c}, g.Preds(a))
	assert.Empty(t, g.Succs(b))
	assert.True(t, g.HasEdge(c, a))
	assert.False(t, g.HasEdge(b, a))

	assert.Same(t, c, g.Node(method("c"), "ctx1"))
	assert.Nil(t, g.Node(method("c"), Everywhere))
	assert.Same(t, b, g.NodeByID(b.ID))
}

func TestAddNodeDeduplicatesMethodInContext(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(&Node{Method: method("a")})
	again := g.AddNode(&Node{Method: method("a")})
	other := g.AddNode(&Node{Method: method("a"), Context: "k"})
	assert.Same(t, a, again)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, g.Len())
}

func TestAddEdgeRejectsForeignNodes(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(&Node{Method: method("a")})
	foreign := &Node{ID: 42, Method: method("x")}
	assert.Error(t, g.AddEdge(a, foreign))
}

func TestEntries(t *testing.T) {
	g := NewGraph()
	withBlocks := g.AddNode(&Node{Method: method("a"), Blocks: 3})
	noBlocks := g.AddNode(&Node{Method: method("b")})
	explicit := g.AddNode(&Node{Method: method("c"), Blocks: 5})
	g.SetEntries(explicit, 0, 2)

	assert.Equal(t, []ProgramPoint{{Node: withBlocks.ID, Block: 0}}, g.Entries(withBlocks))
	assert.Empty(t, g.Entries(noBlocks))
	assert.Equal(t, []ProgramPoint{{Node: explicit.ID, Block: 0}, {Node: explicit.ID, Block: 2}},
		g.Entries(explicit))
}

func TestNodeParams(t *testing.T) {
	n := &Node{Method: method("onReceive"), Params: []int{1, 2, 3},
		ParamTypes: []domain.TypeRef{domain.ClassType("LReceiver;")}}
	v, err := n.Param(2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	_, err = n.Param(3)
	assert.Error(t, err)
	assert.Equal(t, domain.ClassType("LReceiver;"), n.ParamType(0))
	assert.True(t, n.ParamType(1).IsZero())
}
