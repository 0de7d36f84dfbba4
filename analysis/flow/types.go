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


// Package flow contains the flow types, which record why a domain element entered the taint domain, and the taint
// fact map that collects the seeded elements per program point.
package flow

import (
	"fmt"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
)

// Kind is the discriminator of a flow type
type Kind int

const (
	// EntryArgSource is the kind of flows of entry arguments that are sources themselves
	EntryArgSource Kind = iota
	// EntryArgBinderSource is the kind of flows of objects reachable from a binder entry argument
	EntryArgBinderSource
)

func (k Kind) String() string {
	switch k {
	case EntryArgSource:
		return "EntryArgSource"
	case EntryArgBinderSource:
		return "EntryArgBinderSource"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is the provenance of taint facts. Implementations must be comparable: two flow types of the same variant with
// equal fields are the same key in a Facts map.
type Type interface {
	fmt.Stringer

	// Kind returns the variant of the flow type
	Kind() Kind

	// Origin returns the call graph node the flow originates from
	Origin() *cg.Node
}

// EntryArgSourceFlow is the flow of an argument of an entrypoint that is a source.
type EntryArgSourceFlow struct {
	Node *cg.Node
	Arg  int
}

// NewEntryArgSourceFlow returns the flow for argument arg of node
func NewEntryArgSourceFlow(node *cg.Node, arg int) EntryArgSourceFlow {
	return EntryArgSourceFlow{Node: node, Arg: arg}
}

// Kind returns EntryArgSource
func (f EntryArgSourceFlow) Kind() Kind { return EntryArgSource }

// Origin returns the entrypoint node
func (f EntryArgSourceFlow) Origin() *cg.Node { return f.Node }

func (f EntryArgSourceFlow) String() string {
	return fmt.Sprintf("EntryArgSourceFlow(%s, arg %d)", f.Node.Method, f.Arg)
}

// EntryArgBinderSourceFlow is the flow of the objects reachable from Instance, an object the argument Arg of Node may
// point to. Objects passed to binder entrypoints are shared with other processes: everything reachable from them is
// tainted.
type EntryArgBinderSourceFlow struct {
	Instance domain.InstanceID
	Node     *cg.Node
	Arg      int
}

// NewEntryArgBinderSourceFlow returns the flow for the object instance reachable from argument arg of node
func NewEntryArgBinderSourceFlow(instance domain.InstanceID, node *cg.Node, arg int) EntryArgBinderSourceFlow {
	return EntryArgBinderSourceFlow{Instance: instance, Node: node, Arg: arg}
}

// Kind returns EntryArgBinderSource
func (f EntryArgBinderSourceFlow) Kind() Kind { return EntryArgBinderSource }

// Origin returns the entrypoint node
func (f EntryArgBinderSourceFlow) Origin() *cg.Node { return f.Node }

func (f EntryArgBinderSourceFlow) String() string {
	return fmt.Sprintf("EntryArgBinderSourceFlow(%s, %s, arg %d)", f.Instance, f.Node.Method, f.Arg)
}
