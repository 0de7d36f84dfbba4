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


// Package cg contains the call graph model consumed by the taint seeding layer: call graph nodes (methods in a
// calling context), the class loader each node comes from and the program points (basic blocks in context) where
// taint facts are recorded.
//
// The call graph itself is built by an external collaborator; see the frontends in analysis/model and
// analysis/gofront.
package cg

import (
	"fmt"

	"github.com/awslabs/ar-droid-tools/analysis/domain"
)

// Loader identifies where the code of a node comes from.
type Loader int

const (
	// Primordial code is the platform and library code
	Primordial Loader = iota
	// Application code is the code of the analyzed application
	Application
)

func (l Loader) String() string {
	if l == Application {
		return "Application"
	}
	return "Primordial"
}

// Context is the calling context of a node. The Everywhere context is the default, context-insensitive context.
type Context string

// Everywhere is the context of context-insensitive nodes
const Everywhere Context = ""

// Node is a call graph node: a method analyzed in a specific context.
type Node struct {
	// ID is the identifier of the node, unique within its call graph
	ID domain.NodeID

	// Method is the method of the node
	Method domain.MethodRef

	// Context is the calling context of the node
	Context Context

	// Loader is the class loader of the method
	Loader Loader

	// Synthetic is true when the method is not in the program but injected by the framework model
	Synthetic bool

	// Params are the value numbers of the parameters of the method, in order. For instance methods, the receiver is
	// the first parameter.
	Params []int

	// ParamTypes are the static types of the parameters. ParamTypes[i] is the type of Params[i].
	ParamTypes []domain.TypeRef

	// Blocks is the number of basic blocks in the control-flow graph of the method.
	Blocks int
}

// IsApplication returns true when the node's code is application code
func (n *Node) IsApplication() bool {
	return n != nil && n.Loader == Application
}

// IsPrimordial returns true when the node's code is platform or library code
func (n *Node) IsPrimordial() bool {
	return n != nil && n.Loader == Primordial
}

// Param returns the value number of the i-th parameter, or an error if the method does not have i+1 parameters.
func (n *Node) Param(i int) (int, error) {
	if i < 0 || i >= len(n.Params) {
		return -1, fmt.Errorf("%s has %d parameters, no parameter %d", n.Method, len(n.Params), i)
	}
	return n.Params[i], nil
}

// ParamType returns the static type of the i-th parameter, or the zero type if it is not known.
func (n *Node) ParamType(i int) domain.TypeRef {
	if i < 0 || i >= len(n.ParamTypes) {
		return domain.TypeRef{}
	}
	return n.ParamTypes[i]
}

func (n *Node) String() string {
	if n == nil {
		return "<nil node>"
	}
	if n.Context == Everywhere {
		return fmt.Sprintf("Node: %s Context: Everywhere", n.Method)
	}
	return fmt.Sprintf("Node: %s Context: %s", n.Method, n.Context)
}

// ProgramPoint identifies a basic block within the control-flow graph of a call graph node.
type ProgramPoint struct {
	Node  domain.NodeID
	Block int
}

func (p ProgramPoint) String() string {
	return fmt.Sprintf("BB[%d]@n%d", p.Block, p.Node)
}

// Less orders program points by node then block
func (p ProgramPoint) Less(o ProgramPoint) bool {
	if p.Node != o.Node {
		return p.Node < o.Node
	}
	return p.Block < o.Block
}
