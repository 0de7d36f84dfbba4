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


package domain

import (
	"fmt"
	"strings"
)

// NodeID identifies a call graph node (a method in a calling context) within one call graph.
type NodeID int64

// FieldRef references an instance field declared by a class.
type FieldRef struct {
	// Class is the name of the declaring class
	Class string
	// Name is the name of the field
	Name string
	// Type is the declared (static) type of the field
	Type TypeRef
}

func (f FieldRef) String() string {
	return f.Class + "." + f.Name
}

// Valid returns true when the field reference can be resolved: it has a declaring class, a name and a type.
func (f FieldRef) Valid() bool {
	return f.Class != "" && f.Name != "" && !f.Type.IsZero()
}

// MethodRef references a method. Package and Class may be empty for top-level functions.
type MethodRef struct {
	Package    string
	Class      string
	Name       string
	Descriptor string
}

// Signature returns a string that uniquely identifies the method, in the form pkg.Class.name(descriptor)
func (m MethodRef) Signature() string {
	var b strings.Builder
	if m.Package != "" {
		b.WriteString(m.Package)
		b.WriteString(".")
	}
	if m.Class != "" {
		b.WriteString(m.Class)
		b.WriteString(".")
	}
	b.WriteString(m.Name)
	b.WriteString(m.Descriptor)
	return b.String()
}

func (m MethodRef) String() string {
	return m.Signature()
}

// InstanceID is the abstract identity of a heap object as modeled by the points-to analysis.
// An instance with an empty Site is a concrete-type key: the single abstract object standing for every instance of
// Type. Instances with a Site are allocation-site keys.
type InstanceID struct {
	Type TypeRef
	Site string
}

// IsConcreteTypeKey returns true when the instance represents all objects of its type
func (i InstanceID) IsConcreteTypeKey() bool {
	return i.Site == ""
}

func (i InstanceID) String() string {
	if i.Site == "" {
		return fmt.Sprintf("[%s]", i.Type)
	}
	return fmt.Sprintf("[%s@%s]", i.Type, i.Site)
}

// ConcreteTypeKey returns the instance identity that stands for all the objects of type t.
func ConcreteTypeKey(t TypeRef) InstanceID {
	return InstanceID{Type: t}
}

// AllocationSite returns the instance identity of the objects of type t allocated at site.
func AllocationSite(t TypeRef, site string) InstanceID {
	return InstanceID{Type: t, Site: site}
}
